package domain

import (
	"fmt"
	"time"
)

// WeatherDay is one day of a contiguous, date-ordered weather series.
type WeatherDay struct {
	Date            time.Time
	TemperatureMean *float64
	TemperatureMax  *float64
	TemperatureMin  *float64
}

// EffectiveMean resolves the day's mean temperature: use
// TemperatureMean when present, else the average of max/min, else 0 (the
// day contributes no GDD) with ok=false so callers can tell the two apart.
func (w WeatherDay) EffectiveMean() (value float64, ok bool) {
	if w.TemperatureMean != nil {
		return *w.TemperatureMean, true
	}
	if w.TemperatureMax != nil && w.TemperatureMin != nil {
		return (*w.TemperatureMax + *w.TemperatureMin) / 2, true
	}
	return 0, false
}

// WeatherSeries is a densely-indexed, date-ordered, contiguous run of
// WeatherDay records. Contiguity is validated once at construction so every
// downstream consumer can index by offset instead of re-searching by date.
type WeatherSeries struct {
	days    []WeatherDay
	indexOf map[time.Time]int
}

// NewWeatherSeries validates contiguity (no gaps, strictly increasing
// dates) and builds a date index once.
func NewWeatherSeries(days []WeatherDay) (*WeatherSeries, error) {
	if len(days) == 0 {
		return nil, fmt.Errorf("%w: weather series is empty", ErrInputError)
	}
	indexOf := make(map[time.Time]int, len(days))
	for i, d := range days {
		day := normalizeDate(d.Date)
		if i > 0 {
			prev := normalizeDate(days[i-1].Date)
			if !day.After(prev) {
				return nil, fmt.Errorf("%w: weather series dates must be strictly increasing (day %d)", ErrInputError, i)
			}
			if day.Sub(prev) != 24*time.Hour {
				return nil, fmt.Errorf("%w: weather series has a gap between %s and %s", ErrInputError, prev.Format("2006-01-02"), day.Format("2006-01-02"))
			}
		}
		indexOf[day] = i
	}
	return &WeatherSeries{days: days, indexOf: indexOf}, nil
}

func normalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Len returns the number of days in the series.
func (s *WeatherSeries) Len() int { return len(s.days) }

// At returns the i-th day (0-indexed).
func (s *WeatherSeries) At(i int) WeatherDay { return s.days[i] }

// IndexOf returns the offset of the given date, and whether it exists in
// the series.
func (s *WeatherSeries) IndexOf(date time.Time) (int, bool) {
	i, ok := s.indexOf[normalizeDate(date)]
	return i, ok
}

// FirstIndexOnOrAfter returns the smallest offset whose date is >= the
// given date. It returns false only if the target falls after the last day
// in the series; a target before the first day clamps to offset 0 (the
// generator starts its window at "the first date >= horizon_start", which
// already handles a horizon starting before weather begins by simply
// beginning at day 0).
func (s *WeatherSeries) FirstIndexOnOrAfter(target time.Time) (int, bool) {
	target = normalizeDate(target)
	first := s.FirstDate()
	if target.Before(first) || !target.After(first) {
		return 0, true
	}
	if target.After(s.LastDate()) {
		return 0, false
	}
	// Contiguity (enforced at construction) guarantees every day between
	// first and last is present, so offset arithmetic is exact.
	offset := int(target.Sub(first).Hours() / 24)
	return offset, true
}

// LastDate returns the date of the final day in the series.
func (s *WeatherSeries) LastDate() time.Time {
	return normalizeDate(s.days[len(s.days)-1].Date)
}

// FirstDate returns the date of the first day in the series.
func (s *WeatherSeries) FirstDate() time.Time {
	return normalizeDate(s.days[0].Date)
}
