package metrics

import "clinic-kpi-report/pkg/models"

// AgingBucket is the derived debt total for one day-range segment.
type AgingBucket struct {
	Label     string  `json:"segmento"`
	MinDays   float64 `json:"dias_min"`
	MaxDays   float64 `json:"dias_max"` // -1 on the open-ended tail
	Clients   int     `json:"clientes"`
	TotalDebt float64 `json:"deuda_total"`
	AvgDebt   float64 `json:"deuda_promedio"`
}

// The ranges partition the whole days axis: every record lands in exactly one
// bucket, including the open 180+ tail. Emitted in ascending-risk order, not
// by magnitude.
var agingRanges = []struct {
	label    string
	min, max float64
}{
	{"0-30", 0, 30},
	{"31-60", 31, 60},
	{"61-90", 61, 90},
	{"91-180", 91, 180},
	{"180+", 181, -1},
}

// AgingBuckets partitions clients into debt-aging segments by days since last
// visit, summing total debt and averaging it per bucket.
func AgingBuckets(clients []models.ClientRow) []AgingBucket {
	buckets := make([]AgingBucket, len(agingRanges))
	for i, r := range agingRanges {
		buckets[i] = AgingBucket{Label: r.label, MinDays: r.min, MaxDays: r.max}
	}

	for _, client := range clients {
		days := models.SafeNumber(client.DaysSinceVisit)
		idx := bucketIndex(days)
		buckets[idx].Clients++
		buckets[idx].TotalDebt += client.TotalDebt()
	}

	for i := range buckets {
		if buckets[i].Clients > 0 {
			buckets[i].AvgDebt = buckets[i].TotalDebt / float64(buckets[i].Clients)
		}
	}
	return buckets
}

func bucketIndex(days float64) int {
	for i, r := range agingRanges {
		if r.max < 0 {
			return i
		}
		if days <= r.max {
			return i
		}
	}
	return len(agingRanges) - 1
}
