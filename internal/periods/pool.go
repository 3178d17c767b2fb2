package periods

import (
	"sort"
	"time"

	"github.com/urban-gardening-assistant/cultivation-planner/internal/domain"
)

// cropTemplates holds one crop's template set in two independent orderings
// so Top and Near can both avoid a linear scan.
type cropTemplates struct {
	byRank []domain.PeriodTemplate // as produced by RankAndTruncate
	byDate []domain.PeriodTemplate // sorted by start_date ascending
}

// Pool is the field-independent template store (C3): built once per plan by
// the orchestrator from Generate + RankAndTruncate, then handed out
// immutably to every solver. Pool itself performs no generation.
type Pool struct {
	byCrop map[string]*cropTemplates
}

// NewPool builds an empty pool.
func NewPool() *Pool {
	return &Pool{byCrop: make(map[string]*cropTemplates)}
}

// Add registers rankOrdered (already ranked and truncated) as the template
// set for cropID. Calling Add twice for the same crop replaces its set.
func (p *Pool) Add(cropID string, rankOrdered []domain.PeriodTemplate) {
	byDate := make([]domain.PeriodTemplate, len(rankOrdered))
	copy(byDate, rankOrdered)
	sort.Slice(byDate, func(i, j int) bool {
		return byDate[i].StartDate.Before(byDate[j].StartDate)
	})
	p.byCrop[cropID] = &cropTemplates{byRank: rankOrdered, byDate: byDate}
}

// Top returns the first k templates by rank for cropID.
func (p *Pool) Top(cropID string, k int) []domain.PeriodTemplate {
	entry, ok := p.byCrop[cropID]
	if !ok {
		return nil
	}
	if k < 0 || k > len(entry.byRank) {
		k = len(entry.byRank)
	}
	return entry.byRank[:k]
}

// All returns every template held for cropID, in rank order.
func (p *Pool) All(cropID string) []domain.PeriodTemplate {
	return p.Top(cropID, -1)
}

// Near returns cropID's templates whose start_date is within toleranceDays
// of d, in date order, located by binary search over the date-sorted
// index.
func (p *Pool) Near(cropID string, d time.Time, toleranceDays int) []domain.PeriodTemplate {
	entry, ok := p.byCrop[cropID]
	if !ok {
		return nil
	}
	tolerance := time.Duration(toleranceDays) * 24 * time.Hour
	lowerBound := d.Add(-tolerance)
	upperBound := d.Add(tolerance)

	lo := sort.Search(len(entry.byDate), func(i int) bool {
		return !entry.byDate[i].StartDate.Before(lowerBound)
	})
	hi := sort.Search(len(entry.byDate), func(i int) bool {
		return entry.byDate[i].StartDate.After(upperBound)
	})
	if lo >= hi {
		return nil
	}
	return entry.byDate[lo:hi]
}

// Crops returns the crop IDs registered in the pool, sorted for determinism.
func (p *Pool) Crops() []string {
	ids := make([]string, 0, len(p.byCrop))
	for id := range p.byCrop {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
