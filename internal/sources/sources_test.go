package sources_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urban-gardening-assistant/cultivation-planner/internal/domain"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/sources"
)

func TestStaticFieldSourceReturnsConfiguredValues(t *testing.T) {
	src := sources.StaticFieldSource{Values: []domain.Field{{FieldID: "f1", Area: 100}}}
	fields, err := src.Fields(context.Background())
	require.NoError(t, err)
	assert.Len(t, fields, 1)
}

func TestStaticWeatherSourceRejectsNilSeries(t *testing.T) {
	src := sources.StaticWeatherSource{}
	_, err := src.Weather(context.Background())
	assert.ErrorIs(t, err, domain.ErrInputError)
}

type failingCropSource struct{ calls int }

func (f *failingCropSource) Crops(ctx context.Context) ([]domain.Crop, error) {
	f.calls++
	return nil, errors.New("upstream unavailable")
}

func TestBreakerCropSourcePropagatesUnderlyingError(t *testing.T) {
	inner := &failingCropSource{}
	wrapped := sources.NewBreakerCropSource(inner, nil)
	_, err := wrapped.Crops(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

type countingWeatherSource struct {
	calls  int
	series *domain.WeatherSeries
}

func (c *countingWeatherSource) Weather(ctx context.Context) (*domain.WeatherSeries, error) {
	c.calls++
	return c.series, nil
}

func TestCachedWeatherSourceFetchesOnce(t *testing.T) {
	inner := &countingWeatherSource{series: &domain.WeatherSeries{}}
	cached := sources.NewCachedWeatherSource(inner, "2024-01-01:2024-06-01")

	first, err := cached.Weather(context.Background())
	require.NoError(t, err)
	second, err := cached.Weather(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedWeatherSourceSeparatesKeys(t *testing.T) {
	inner := &countingWeatherSource{series: &domain.WeatherSeries{}}
	a := sources.NewCachedWeatherSource(inner, "horizon-a")
	b := sources.NewCachedWeatherSource(inner, "horizon-b")

	_, err := a.Weather(context.Background())
	require.NoError(t, err)
	_, err = b.Weather(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}
