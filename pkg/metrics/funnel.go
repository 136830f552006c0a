package metrics

import "clinic-kpi-report/pkg/models"

// Canonical pipeline order. Stages not in this list are ignored; stages with
// no clients are dropped before percentages are computed.
var CanonicalStages = []string{"Lead", "Consulta", "Tratamiento", "Recurrente"}

// StageCount is a raw stage tally before funnel derivation.
type StageCount struct {
	Stage string
	Count float64
}

// FunnelStage is one derived funnel step. Conversion is nil for the first
// stage: there is no previous step to convert from.
type FunnelStage struct {
	Stage      string   `json:"etapa"`
	Count      float64  `json:"clientes"`
	Percentage float64  `json:"porcentaje"`
	Conversion *float64 `json:"conversion,omitempty"`
	Loss       float64  `json:"perdida"`
}

// BuildFunnel sums counts per canonical stage and derives
// percentage-of-first, stage-over-stage conversion, and absolute loss. If the
// first surviving stage somehow has count 0 the denominator clamps to 1, so
// the funnel renders zeros instead of failing.
func BuildFunnel(rows []StageCount) []FunnelStage {
	totals := map[string]float64{}
	for _, row := range rows {
		totals[row.Stage] += models.SafeNumber(row.Count)
	}

	stages := make([]FunnelStage, 0, len(CanonicalStages))
	for _, name := range CanonicalStages {
		if totals[name] <= 0 {
			continue
		}
		stages = append(stages, FunnelStage{Stage: name, Count: totals[name]})
	}
	if len(stages) == 0 {
		return stages
	}

	first := stages[0].Count
	if first == 0 {
		first = 1
	}
	for i := range stages {
		stages[i].Percentage = stages[i].Count / first * 100
		if i == 0 {
			continue
		}
		previous := stages[i-1].Count
		conversion := stages[i].Count / previous * 100
		stages[i].Conversion = &conversion
		stages[i].Loss = previous - stages[i].Count
	}
	return stages
}

// StageCountsFromClients tallies clients per pipeline stage.
func StageCountsFromClients(clients []models.ClientRow) []StageCount {
	totals := map[string]float64{}
	for _, client := range clients {
		totals[client.Stage]++
	}
	counts := make([]StageCount, 0, len(CanonicalStages))
	for _, name := range CanonicalStages {
		counts = append(counts, StageCount{Stage: name, Count: totals[name]})
	}
	return counts
}
