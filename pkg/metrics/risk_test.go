package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		ltv          float64
		days         float64
		debt         float64
		wantRisk     RiskSegment
		wantPriority ContactPriority
		wantMessage  MessageType
	}{
		{
			name: "premium critical client",
			ltv:  1_200_000, days: 95, debt: 600_000,
			wantRisk: RiskHigh, wantPriority: PriorityCritical, wantMessage: MessagePremium,
		},
		{
			name: "healthy low-value client",
			ltv:  50_000, days: 10, debt: 5_000,
			wantRisk: RiskLow, wantPriority: PriorityLow, wantMessage: MessageEstandar,
		},
		{
			name: "large debt alone reaches high priority",
			ltv:  200_000, days: 5, debt: 1_500_000,
			wantRisk: RiskLow, wantPriority: PriorityHigh, wantMessage: MessageEstandar,
		},
		{
			name: "stale but small debt avoids critical",
			ltv:  700_000, days: 120, debt: 50_000,
			wantRisk: RiskHigh, wantPriority: PriorityHigh, wantMessage: MessageAltoValor,
		},
		{
			name: "middle recency band",
			ltv:  100_000, days: 75, debt: 20_000,
			wantRisk: RiskMedium, wantPriority: PriorityHigh, wantMessage: MessageEstandar,
		},
		{
			name: "medium by debt only",
			ltv:  100_000, days: 12, debt: 150_000,
			wantRisk: RiskLow, wantPriority: PriorityMedium, wantMessage: MessageEstandar,
		},
		{
			name: "ltv boundary is inclusive",
			ltv:  1_000_000, days: 0, debt: 0,
			wantRisk: RiskLow, wantPriority: PriorityLow, wantMessage: MessagePremium,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.ltv, tt.days, tt.debt)
			assert.Equal(t, tt.wantRisk, got.Risk)
			assert.Equal(t, tt.wantPriority, got.Priority)
			assert.Equal(t, tt.wantMessage, got.Message)
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	first := Classify(800_000, 45, 200_000)
	second := Classify(800_000, 45, 200_000)
	assert.Equal(t, first, second)
}

// The heatmap cutoffs disagree with the portfolio cutoffs on purpose; make
// sure the two variants keep diverging in the band between them.
func TestRecencySegmentVariantDiffersFromPortfolio(t *testing.T) {
	assert.Equal(t, RiskMedium, RecencySegment(45))
	assert.Equal(t, RiskLow, Classify(0, 45, 0).Risk)

	assert.Equal(t, RiskHigh, RecencySegment(75))
	assert.Equal(t, RiskMedium, Classify(0, 75, 0).Risk)

	assert.Equal(t, RiskLow, RecencySegment(20))
	assert.Equal(t, RiskHigh, RecencySegment(61))
}
