package domain

import "time"

// HistoryRecord is one append-only entry in the exchange-rate log. Records
// are identified by pair plus observation time and are never rewritten.
type HistoryRecord struct {
	ID        string
	Pair      Pair
	Rate      float64
	Timestamp time.Time
	Source    string
	Meta      map[string]any
}

// HistoryRecordFromQuote tags a quote with its synthetic log identifier.
func HistoryRecordFromQuote(q Quote) HistoryRecord {
	return HistoryRecord{
		ID:        q.Pair.Key() + "_" + q.UpdatedAt.UTC().Format(time.RFC3339),
		Pair:      q.Pair,
		Rate:      q.Rate,
		Timestamp: q.UpdatedAt,
		Source:    q.Source,
		Meta:      q.Meta,
	}
}
