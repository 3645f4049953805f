package domain

import "time"

// Quote is one observed exchange rate with provenance.
type Quote struct {
	Pair      Pair
	Rate      float64
	UpdatedAt time.Time
	Source    string
	Meta      map[string]any
}

// Age reports how old the quote is relative to now.
func (q Quote) Age(now time.Time) time.Duration { return now.Sub(q.UpdatedAt) }

// RateCache is the in-memory view of the latest quote per pair. It is
// re-derived from the durable document at the start of every operation,
// never held as a long-lived authoritative mirror.
type RateCache struct {
	Pairs       map[string]Quote
	LastRefresh *time.Time
}

func NewRateCache() RateCache {
	return RateCache{Pairs: map[string]Quote{}}
}
