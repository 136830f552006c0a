package metrics

import "clinic-kpi-report/pkg/models"

// DefaultCollectionRate is the assumed share of outstanding debt the clinic
// actually collects. This is an estimation parameter, not measured data: the
// source views do not carry real collected amounts yet, so any figure built
// on it must be labeled an estimate.
const DefaultCollectionRate = 0.75

// ProjectedCollections estimates collectible debt from a total balance and a
// collection-rate estimate. Rates outside [0, 1] clamp to the valid range.
func ProjectedCollections(totalDebt, rate float64) float64 {
	totalDebt = models.SafeNumber(totalDebt)
	rate = models.SafeNumber(rate)
	if rate < 0 {
		rate = 0
	}
	if rate > 1 {
		rate = 1
	}
	return totalDebt * rate
}
