package metrics

import (
	"sort"

	"clinic-kpi-report/pkg/models"
)

// AggregatedDimension is one group of marketing rows: summed measures plus
// the ratios derived from those sums.
type AggregatedDimension struct {
	Key            string  `json:"key"`
	Leads          float64 `json:"leads"`
	Converted      float64 `json:"convertidos"`
	Revenue        float64 `json:"ingresos"`
	ConversionRate float64 `json:"tasa_conversion"`
	RevenuePerLead float64 `json:"ingreso_por_lead"`
}

// Aggregate groups marketing rows by the given key and sums their measures.
// Ratios are computed from the group sums, never by averaging per-row ratios:
// averaging a 10/20 group with a 1/100 group must yield 11/120, not the
// midpoint of 50% and 1%. Output is sorted ascending by key; callers that
// want a ranking apply SortByMeasure.
func Aggregate(rows []models.ChannelRow, key func(models.ChannelRow) string) []AggregatedDimension {
	groups := map[string]*AggregatedDimension{}
	for _, row := range rows {
		k := key(row)
		dim, ok := groups[k]
		if !ok {
			dim = &AggregatedDimension{Key: k}
			groups[k] = dim
		}
		dim.Leads += models.SafeNumber(row.Leads)
		dim.Converted += models.SafeNumber(row.Converted)
		dim.Revenue += models.SafeNumber(row.Revenue)
	}

	result := make([]AggregatedDimension, 0, len(groups))
	for _, dim := range groups {
		dim.ConversionRate = safeRatio(dim.Converted, dim.Leads) * 100
		dim.RevenuePerLead = safeRatio(dim.Revenue, dim.Leads)
		result = append(result, *dim)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})
	return result
}

// ByChannel groups rows by marketing channel.
func ByChannel(row models.ChannelRow) string { return row.Channel }

// ByMonth groups rows by month key (YYYY-MM, so key order is chronological).
func ByMonth(row models.ChannelRow) string { return row.Month }

// SortByMeasure orders dimensions descending by the given measure, breaking
// ties ascending by key so equal inputs always produce the same output. The
// input slice is left untouched.
func SortByMeasure(dims []AggregatedDimension, measure func(AggregatedDimension) float64) []AggregatedDimension {
	sorted := append([]AggregatedDimension(nil), dims...)
	sort.Slice(sorted, func(i, j int) bool {
		mi, mj := measure(sorted[i]), measure(sorted[j])
		if mi != mj {
			return mi > mj
		}
		return sorted[i].Key < sorted[j].Key
	})
	return sorted
}

func safeRatio(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}
