package periods

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/urban-gardening-assistant/cultivation-planner/internal/domain"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/utils/logger"
)

// cachedTemplate mirrors domain.PeriodTemplate minus the *domain.Crop
// pointer, which a cache entry cannot carry across a process boundary; the
// crop is rehydrated from the caller-supplied catalog on read.
type cachedTemplate struct {
	StartDate      time.Time `json:"start_date"`
	CompletionDate time.Time `json:"completion_date"`
	GrowthDays     int       `json:"growth_days"`
	AccumulatedGDD float64   `json:"accumulated_gdd"`
	YieldFactor    float64   `json:"yield_factor"`
}

// RedisTemplateCache fronts Generate with a cache-aside layer keyed on
// (crop_id, horizon_start, horizon_end, a hash of the weather series'
// dates, effective means and maxima): repeated plans over the same
// weather/horizon skip re-running the sliding window. The key does not
// cover the crop's stage requirements or temperature profile. Template generation
// is pure and cheap per call, so this is a throughput optimization, never a
// correctness dependency — a cache miss or a down Redis instance simply
// falls through to Generate.
type RedisTemplateCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisTemplateCache wraps an existing redis client. ttl of 0 disables
// expiry (entries live until evicted). log may be nil.
func NewRedisTemplateCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisTemplateCache {
	return &RedisTemplateCache{client: client, ttl: ttl, log: log}
}

func cacheKey(cropID string, weather *domain.WeatherSeries, horizonStart, horizonEnd time.Time) string {
	h := fnv.New64a()
	if weather != nil {
		for i := 0; i < weather.Len(); i++ {
			day := weather.At(i)
			mean, ok := day.EffectiveMean()
			fmt.Fprintf(h, "%s|%v|%t|", day.Date.Format(isoDate), mean, ok)
			if day.TemperatureMax != nil {
				fmt.Fprintf(h, "%v", *day.TemperatureMax)
			}
			h.Write([]byte{';'})
		}
	}
	return fmt.Sprintf("cultivation-planner:periods:%s:%s:%s:%016x", cropID, horizonStart.Format(isoDate), horizonEnd.Format(isoDate), h.Sum64())
}

// GetOrGenerate returns the cached templates for (crop, weather,
// horizonStart, horizonEnd) if present, else calls Generate, stores the
// result, and returns it. Any Redis error is logged and treated as a cache
// miss.
func (c *RedisTemplateCache) GetOrGenerate(ctx context.Context, crop *domain.Crop, weather *domain.WeatherSeries, horizonStart, horizonEnd time.Time) ([]domain.PeriodTemplate, error) {
	key := cacheKey(crop.CropID, weather, horizonStart, horizonEnd)

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var cached []cachedTemplate
		if err := json.Unmarshal(raw, &cached); err == nil {
			return hydrate(crop, cached), nil
		}
		logger.Debug(c.log, "periods cache: failed to decode cached entry, regenerating", zap.String("crop_id", crop.CropID), zap.Error(err))
	} else if err != redis.Nil {
		logger.Debug(c.log, "periods cache: read miss", zap.String("crop_id", crop.CropID), zap.Error(err))
	}

	templates, err := Generate(crop, weather, horizonStart, horizonEnd)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(dehydrate(templates)); err == nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			logger.Debug(c.log, "periods cache: write failed", zap.String("crop_id", crop.CropID), zap.Error(err))
		}
	}

	return templates, nil
}

func dehydrate(templates []domain.PeriodTemplate) []cachedTemplate {
	out := make([]cachedTemplate, len(templates))
	for i, t := range templates {
		out[i] = cachedTemplate{
			StartDate:      t.StartDate,
			CompletionDate: t.CompletionDate,
			GrowthDays:     t.GrowthDays,
			AccumulatedGDD: t.AccumulatedGDD,
			YieldFactor:    t.YieldFactor,
		}
	}
	return out
}

func hydrate(crop *domain.Crop, cached []cachedTemplate) []domain.PeriodTemplate {
	out := make([]domain.PeriodTemplate, len(cached))
	for i, c := range cached {
		out[i] = domain.PeriodTemplate{
			Crop:           crop,
			StartDate:      c.StartDate,
			CompletionDate: c.CompletionDate,
			GrowthDays:     c.GrowthDays,
			AccumulatedGDD: c.AccumulatedGDD,
			YieldFactor:    c.YieldFactor,
		}
	}
	return out
}
