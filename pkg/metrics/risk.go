package metrics

// RiskSegment grades how far a client has drifted from the clinic.
type RiskSegment string

const (
	RiskLow    RiskSegment = "low"
	RiskMedium RiskSegment = "medium"
	RiskHigh   RiskSegment = "high"
)

// ContactPriority grades how urgently a client should be contacted.
type ContactPriority string

const (
	PriorityLow      ContactPriority = "low"
	PriorityMedium   ContactPriority = "medium"
	PriorityHigh     ContactPriority = "high"
	PriorityCritical ContactPriority = "critical"
)

// MessageType selects the outreach template for a client. Tags are the wire
// values the dashboard already uses.
type MessageType string

const (
	MessageEstandar  MessageType = "estandar"
	MessageAltoValor MessageType = "alto_valor"
	MessagePremium   MessageType = "premium"
)

// Classification thresholds. The portfolio view and the recency heatmap carry
// different day cutoffs on purpose; product has not unified them, so neither
// does this package. Keep the two rule sets separate.
const (
	portfolioHighRiskDays   = 90
	portfolioMediumRiskDays = 60

	heatmapMediumDays = 30
	heatmapHighDays   = 60

	criticalDebt = 500_000
	highDebt     = 1_000_000
	mediumDebt   = 100_000
	highDays     = 60
	mediumDays   = 30
	criticalDays = 90
	premiumLTV   = 1_000_000
	highValueLTV = 500_000
)

// Classification is the derived risk profile of a single client.
type Classification struct {
	Risk     RiskSegment     `json:"segmento_riesgo"`
	Priority ContactPriority `json:"prioridad"`
	Message  MessageType     `json:"tipo_mensaje"`
}

// Classify maps a client's (LTV, days since last visit, outstanding debt)
// tuple to its portfolio classification. Pure decision table: rules evaluate
// top to bottom, first match wins.
func Classify(ltv, daysSinceVisit, debt float64) Classification {
	return Classification{
		Risk:     portfolioRisk(daysSinceVisit),
		Priority: contactPriority(daysSinceVisit, debt),
		Message:  messageType(ltv),
	}
}

func portfolioRisk(days float64) RiskSegment {
	switch {
	case days > portfolioHighRiskDays:
		return RiskHigh
	case days > portfolioMediumRiskDays:
		return RiskMedium
	default:
		return RiskLow
	}
}

func contactPriority(days, debt float64) ContactPriority {
	switch {
	case days > criticalDays && debt > criticalDebt:
		return PriorityCritical
	case days > highDays || debt > highDebt:
		return PriorityHigh
	case days > mediumDays || debt > mediumDebt:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func messageType(ltv float64) MessageType {
	switch {
	case ltv >= premiumLTV:
		return MessagePremium
	case ltv >= highValueLTV:
		return MessageAltoValor
	default:
		return MessageEstandar
	}
}

// RecencySegment is the heatmap's day-cutoff variant (30/60) of the risk
// segment. It deliberately disagrees with Classify's portfolio cutoffs
// (60/90); both rule sets exist in the product today.
func RecencySegment(days float64) RiskSegment {
	switch {
	case days > heatmapHighDays:
		return RiskHigh
	case days > heatmapMediumDays:
		return RiskMedium
	default:
		return RiskLow
	}
}
