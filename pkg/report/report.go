// Package report composes the derivation core into the full dashboard
// report: one Build call per run, everything derived from the rows the
// caller already loaded.
package report

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"clinic-kpi-report/pkg/metrics"
	"clinic-kpi-report/pkg/models"
)

const (
	defaultTopN = 10
	dateLayout  = "2006-01-02"
)

// Options controls a report build.
type Options struct {
	AsOf           time.Time
	TopN           int
	CollectionRate float64 // estimation parameter, see metrics.DefaultCollectionRate
	SkippedRows    int     // invalid input rows the loader dropped, echoed in the summary
}

// Summary is the headline card block of the dashboard.
type Summary struct {
	AsOf                   string                          `json:"corte"`
	TotalClients           int                             `json:"total_clientes"`
	TotalDebt              float64                         `json:"deuda_total"`
	DebtTQP                float64                         `json:"deuda_tqp"`
	DebtExtras             float64                         `json:"deuda_extras"`
	AvgDebt                float64                         `json:"deuda_promedio"`
	MedianDebt             float64                         `json:"deuda_mediana"`
	AvgLTV                 float64                         `json:"ltv_promedio"`
	MedianLTV              float64                         `json:"ltv_mediana"`
	ProjectedCollections   float64                         `json:"cobro_proyectado"`
	CollectionRateEstimate float64                         `json:"tasa_cobro_estimada"` // estimate, not measured
	RiskCounts             map[metrics.RiskSegment]int     `json:"clientes_por_riesgo"`
	PriorityCounts         map[metrics.ContactPriority]int `json:"clientes_por_prioridad"`
	MessageCounts          map[metrics.MessageType]int     `json:"clientes_por_mensaje"`
	SkippedRows            int                             `json:"filas_descartadas"`
}

// MonthTrend compares the two most recent months of marketing data.
type MonthTrend struct {
	CurrentMonth  string  `json:"mes_actual"`
	PreviousMonth string  `json:"mes_anterior"`
	LeadsTrend    float64 `json:"tendencia_leads"`
	RevenueTrend  float64 `json:"tendencia_ingresos"`
}

// DebtMix is the TQP vs extras composition of total debt.
type DebtMix struct {
	TQPShare    float64 `json:"participacion_tqp"`
	ExtrasShare float64 `json:"participacion_extras"`
}

// ClientAssessment is one client's derived risk record plus the outreach
// script that goes with it.
type ClientAssessment struct {
	FullName       string                  `json:"nombre_completo"`
	LTV            float64                 `json:"ltv"`
	DaysSinceVisit float64                 `json:"dias_sin_visita"`
	Debt           float64                 `json:"deuda"`
	Risk           metrics.RiskSegment     `json:"segmento_riesgo"`
	Priority       metrics.ContactPriority `json:"prioridad"`
	Message        metrics.MessageType     `json:"tipo_mensaje"`
	Script         string                  `json:"guion"`
}

// Report is everything the dashboard renders for one cut of data.
type Report struct {
	Summary       Summary                       `json:"resumen"`
	Channels      []metrics.AggregatedDimension `json:"canales"`
	Months        []metrics.AggregatedDimension `json:"meses"`
	MonthTrend    MonthTrend                    `json:"tendencia_mensual"`
	Funnel        []metrics.FunnelStage         `json:"embudo"`
	Aging         []metrics.AgingBucket         `json:"antiguedad_deuda"`
	Concentration []metrics.ConcentrationRow    `json:"concentracion_ltv"`
	Top3Share     float64                       `json:"participacion_top3"`
	Top10Share    float64                       `json:"participacion_top10"`
	DebtMix       DebtMix                       `json:"composicion_deuda"`
	TopDebtors    []ClientAssessment            `json:"mayores_deudores"`
	Clients       []ClientAssessment            `json:"clientes"`
}

// Build derives the full report from client and marketing rows. Pure
// composition over the metrics package: same rows in, same report out.
func Build(clients []models.ClientRow, marketing []models.ChannelRow, opts Options) Report {
	if opts.TopN <= 0 {
		opts.TopN = defaultTopN
	}
	if opts.CollectionRate <= 0 {
		opts.CollectionRate = metrics.DefaultCollectionRate
	}
	asOf := opts.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}

	assessments := assessClients(clients)

	channels := metrics.SortByMeasure(
		metrics.Aggregate(marketing, metrics.ByChannel),
		func(d metrics.AggregatedDimension) float64 { return d.Revenue },
	)
	months := metrics.Aggregate(marketing, metrics.ByMonth)

	ltvEntries := make([]metrics.RankedEntry, 0, len(clients))
	debts := make([]float64, 0, len(clients))
	ltvs := make([]float64, 0, len(clients))
	totalTQP, totalExtras := 0.0, 0.0
	for _, client := range clients {
		ltvEntries = append(ltvEntries, metrics.RankedEntry{
			Key:   client.FullName,
			Value: models.SafeNumber(client.LTV),
		})
		debts = append(debts, client.TotalDebt())
		ltvs = append(ltvs, models.SafeNumber(client.LTV))
		totalTQP += models.SafeNumber(client.DebtTQP)
		totalExtras += models.SafeNumber(client.DebtExtras)
	}
	concentration := metrics.Concentration(ltvEntries)
	totalDebt := totalTQP + totalExtras

	r := Report{
		Summary:       buildSummary(asOf, assessments, debts, ltvs, totalDebt, totalTQP, totalExtras, opts),
		Channels:      channels,
		Months:        months,
		MonthTrend:    monthTrend(months),
		Funnel:        metrics.BuildFunnel(metrics.StageCountsFromClients(clients)),
		Aging:         metrics.AgingBuckets(clients),
		Concentration: concentration,
		Top3Share:     metrics.TopShare(concentration, 3),
		Top10Share:    metrics.TopShare(concentration, 10),
		DebtMix:       debtMix(totalTQP, totalExtras),
		TopDebtors:    topDebtors(assessments, opts.TopN),
		Clients:       assessments,
	}
	return r
}

func assessClients(clients []models.ClientRow) []ClientAssessment {
	assessments := make([]ClientAssessment, 0, len(clients))
	for _, client := range clients {
		ltv := models.SafeNumber(client.LTV)
		days := models.SafeNumber(client.DaysSinceVisit)
		debt := client.TotalDebt()
		classification := metrics.Classify(ltv, days, debt)
		assessments = append(assessments, ClientAssessment{
			FullName:       client.FullName,
			LTV:            ltv,
			DaysSinceVisit: days,
			Debt:           debt,
			Risk:           classification.Risk,
			Priority:       classification.Priority,
			Message:        classification.Message,
			Script: metrics.GenerateScript(metrics.ScriptInput{
				FullName:       client.FullName,
				LTV:            ltv,
				DaysSinceVisit: days,
				Debt:           debt,
				Message:        classification.Message,
			}),
		})
	}
	sort.Slice(assessments, func(i, j int) bool {
		ri, _ := priorityRank(assessments[i].Priority)
		rj, _ := priorityRank(assessments[j].Priority)
		if ri != rj {
			return ri > rj
		}
		if assessments[i].Debt != assessments[j].Debt {
			return assessments[i].Debt > assessments[j].Debt
		}
		return assessments[i].FullName < assessments[j].FullName
	})
	return assessments
}

func buildSummary(asOf time.Time, assessments []ClientAssessment, debts, ltvs []float64, totalDebt, totalTQP, totalExtras float64, opts Options) Summary {
	summary := Summary{
		AsOf:                   asOf.Format(dateLayout),
		TotalClients:           len(assessments),
		TotalDebt:              totalDebt,
		DebtTQP:                totalTQP,
		DebtExtras:             totalExtras,
		AvgDebt:                meanOf(debts),
		MedianDebt:             medianOf(debts),
		AvgLTV:                 meanOf(ltvs),
		MedianLTV:              medianOf(ltvs),
		ProjectedCollections:   metrics.ProjectedCollections(totalDebt, opts.CollectionRate),
		CollectionRateEstimate: opts.CollectionRate,
		RiskCounts:             map[metrics.RiskSegment]int{},
		PriorityCounts:         map[metrics.ContactPriority]int{},
		MessageCounts:          map[metrics.MessageType]int{},
		SkippedRows:            opts.SkippedRows,
	}
	for _, assessment := range assessments {
		summary.RiskCounts[assessment.Risk]++
		summary.PriorityCounts[assessment.Priority]++
		summary.MessageCounts[assessment.Message]++
	}
	return summary
}

func monthTrend(months []metrics.AggregatedDimension) MonthTrend {
	if len(months) < 2 {
		return MonthTrend{}
	}
	current := months[len(months)-1]
	previous := months[len(months)-2]
	return MonthTrend{
		CurrentMonth:  current.Key,
		PreviousMonth: previous.Key,
		LeadsTrend:    metrics.Trend(current.Leads, previous.Leads),
		RevenueTrend:  metrics.Trend(current.Revenue, previous.Revenue),
	}
}

func debtMix(totalTQP, totalExtras float64) DebtMix {
	total := totalTQP + totalExtras
	if total == 0 {
		return DebtMix{}
	}
	return DebtMix{
		TQPShare:    totalTQP / total * 100,
		ExtrasShare: totalExtras / total * 100,
	}
}

func topDebtors(assessments []ClientAssessment, topN int) []ClientAssessment {
	ranked := append([]ClientAssessment(nil), assessments...)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Debt != ranked[j].Debt {
			return ranked[i].Debt > ranked[j].Debt
		}
		return ranked[i].FullName < ranked[j].FullName
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

func medianOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.LinInterp, sorted, nil)
}

func priorityRank(priority metrics.ContactPriority) (int, bool) {
	switch priority {
	case metrics.PriorityLow:
		return 0, true
	case metrics.PriorityMedium:
		return 1, true
	case metrics.PriorityHigh:
		return 2, true
	case metrics.PriorityCritical:
		return 3, true
	default:
		return 0, false
	}
}
