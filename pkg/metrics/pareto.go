package metrics

import (
	"sort"

	"clinic-kpi-report/pkg/models"
)

// RankedEntry is a (key, measure) pair awaiting concentration ranking.
type RankedEntry struct {
	Key   string
	Value float64
}

// ConcentrationRow extends a ranked entry with its share of the grand total
// and the running cumulative share up to and including it.
type ConcentrationRow struct {
	Key             string  `json:"key"`
	Value           float64 `json:"valor"`
	Share           float64 `json:"participacion"`
	CumulativeShare float64 `json:"participacion_acumulada"`
}

// Concentration sorts entries descending by value (keys break ties) and
// computes each row's share of the grand total plus the running cumulative
// share. The cumulative column is non-decreasing and ends at 100% when the
// total is positive; a zero grand total yields all-zero shares.
func Concentration(entries []RankedEntry) []ConcentrationRow {
	sorted := append([]RankedEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool {
		vi := models.SafeNumber(sorted[i].Value)
		vj := models.SafeNumber(sorted[j].Value)
		if vi != vj {
			return vi > vj
		}
		return sorted[i].Key < sorted[j].Key
	})

	total := 0.0
	for _, entry := range sorted {
		total += models.SafeNumber(entry.Value)
	}

	rows := make([]ConcentrationRow, len(sorted))
	cumulative := 0.0
	for i, entry := range sorted {
		value := models.SafeNumber(entry.Value)
		share := 0.0
		if total != 0 {
			share = value / total * 100
		}
		cumulative += share
		rows[i] = ConcentrationRow{
			Key:             entry.Key,
			Value:           value,
			Share:           share,
			CumulativeShare: cumulative,
		}
	}
	return rows
}

// TopShare returns the combined share of the first n ranked rows. With n at
// or beyond the row count it returns the final cumulative share.
func TopShare(rows []ConcentrationRow, n int) float64 {
	if len(rows) == 0 || n <= 0 {
		return 0
	}
	if n >= len(rows) {
		n = len(rows)
	}
	return rows[n-1].CumulativeShare
}
