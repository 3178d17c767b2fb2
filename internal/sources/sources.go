// Package sources defines the narrow collaborator interfaces used to fetch
// fields, crops, weather, and interaction rules, plus simple in-memory
// implementations suitable for tests and the reference HTTP binding.
package sources

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/urban-gardening-assistant/cultivation-planner/internal/domain"
)

// FieldSource yields the fields available for planning.
type FieldSource interface {
	Fields(ctx context.Context) ([]domain.Field, error)
}

// CropSource yields the crops available for planning.
type CropSource interface {
	Crops(ctx context.Context) ([]domain.Crop, error)
}

// WeatherSource yields a contiguous, date-ordered weather series spanning at
// least the planning horizon plus the longest crop's growth window.
type WeatherSource interface {
	Weather(ctx context.Context) (*domain.WeatherSeries, error)
}

// InteractionRuleSource yields the crop-family interaction rules; may be
// empty.
type InteractionRuleSource interface {
	Rules(ctx context.Context) ([]domain.InteractionRule, error)
}

// StaticFieldSource serves a fixed, in-memory field list.
type StaticFieldSource struct{ Values []domain.Field }

func (s StaticFieldSource) Fields(ctx context.Context) ([]domain.Field, error) {
	return s.Values, nil
}

// StaticCropSource serves a fixed, in-memory crop list.
type StaticCropSource struct{ Values []domain.Crop }

func (s StaticCropSource) Crops(ctx context.Context) ([]domain.Crop, error) {
	return s.Values, nil
}

// StaticWeatherSource serves a fixed, pre-validated weather series.
type StaticWeatherSource struct{ Series *domain.WeatherSeries }

func (s StaticWeatherSource) Weather(ctx context.Context) (*domain.WeatherSeries, error) {
	if s.Series == nil {
		return nil, fmt.Errorf("%w: no weather series configured", domain.ErrInputError)
	}
	return s.Series, nil
}

// StaticInteractionRuleSource serves a fixed, in-memory rule list.
type StaticInteractionRuleSource struct{ Values []domain.InteractionRule }

func (s StaticInteractionRuleSource) Rules(ctx context.Context) ([]domain.InteractionRule, error) {
	return s.Values, nil
}

const weatherCacheTTL = 15 * time.Minute

// CachedWeatherSource wraps a WeatherSource backed by a slow collaborator
// (a remote weather API, a database query spanning years of daily
// observations) with a short-lived in-process cache keyed by cacheKey, so
// repeated Optimize runs over the same horizon don't refetch the series.
type CachedWeatherSource struct {
	inner    WeatherSource
	cacheKey string
	cache    *cache.Cache
}

// NewCachedWeatherSource builds a CachedWeatherSource. cacheKey should
// identify the horizon the wrapped source serves (e.g. "2024-01-01:2024-06-01")
// so distinct horizons don't collide in the shared cache.
func NewCachedWeatherSource(inner WeatherSource, cacheKey string) *CachedWeatherSource {
	return &CachedWeatherSource{
		inner:    inner,
		cacheKey: cacheKey,
		cache:    cache.New(weatherCacheTTL, 2*weatherCacheTTL),
	}
}

func (s *CachedWeatherSource) Weather(ctx context.Context) (*domain.WeatherSeries, error) {
	if cached, found := s.cache.Get(s.cacheKey); found {
		return cached.(*domain.WeatherSeries), nil
	}

	series, err := s.inner.Weather(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(s.cacheKey, series, cache.DefaultExpiration)
	return series, nil
}
