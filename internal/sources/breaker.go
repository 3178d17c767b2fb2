package sources

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/urban-gardening-assistant/cultivation-planner/internal/domain"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/utils/logger"
)

// breakerSettings trips after at least 3 requests with a 60% failure ratio
// and holds the breaker open for 60s before probing again.
func breakerSettings(name string, log *zap.Logger) gobreaker.Settings {
	return gobreaker.Settings{
		Name:    name,
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if log != nil {
				logger.Info(log, "source circuit breaker state change", zap.String("breaker", name), zap.String("from", from.String()), zap.String("to", to.String()))
			}
		},
	}
}

// BreakerFieldSource wraps a network-backed FieldSource with a circuit
// breaker so a collaborator outage degrades to a typed error instead of
// hanging or cascading retries.
type BreakerFieldSource struct {
	inner   FieldSource
	breaker *gobreaker.CircuitBreaker
}

func NewBreakerFieldSource(inner FieldSource, log *zap.Logger) *BreakerFieldSource {
	return &BreakerFieldSource{inner: inner, breaker: gobreaker.NewCircuitBreaker(breakerSettings("field-source", log))}
}

func (s *BreakerFieldSource) Fields(ctx context.Context) ([]domain.Field, error) {
	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.inner.Fields(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Field), nil
}

// BreakerCropSource wraps a network-backed CropSource with a circuit
// breaker.
type BreakerCropSource struct {
	inner   CropSource
	breaker *gobreaker.CircuitBreaker
}

func NewBreakerCropSource(inner CropSource, log *zap.Logger) *BreakerCropSource {
	return &BreakerCropSource{inner: inner, breaker: gobreaker.NewCircuitBreaker(breakerSettings("crop-source", log))}
}

func (s *BreakerCropSource) Crops(ctx context.Context) ([]domain.Crop, error) {
	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.inner.Crops(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Crop), nil
}

// BreakerWeatherSource wraps a network-backed WeatherSource with a circuit
// breaker.
type BreakerWeatherSource struct {
	inner   WeatherSource
	breaker *gobreaker.CircuitBreaker
}

func NewBreakerWeatherSource(inner WeatherSource, log *zap.Logger) *BreakerWeatherSource {
	return &BreakerWeatherSource{inner: inner, breaker: gobreaker.NewCircuitBreaker(breakerSettings("weather-source", log))}
}

func (s *BreakerWeatherSource) Weather(ctx context.Context) (*domain.WeatherSeries, error) {
	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.inner.Weather(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.WeatherSeries), nil
}

// BreakerInteractionRuleSource wraps a network-backed InteractionRuleSource
// with a circuit breaker.
type BreakerInteractionRuleSource struct {
	inner   InteractionRuleSource
	breaker *gobreaker.CircuitBreaker
}

func NewBreakerInteractionRuleSource(inner InteractionRuleSource, log *zap.Logger) *BreakerInteractionRuleSource {
	return &BreakerInteractionRuleSource{inner: inner, breaker: gobreaker.NewCircuitBreaker(breakerSettings("interaction-rule-source", log))}
}

func (s *BreakerInteractionRuleSource) Rules(ctx context.Context) ([]domain.InteractionRule, error) {
	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.inner.Rules(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.InteractionRule), nil
}
