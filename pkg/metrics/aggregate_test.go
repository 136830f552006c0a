package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-kpi-report/pkg/models"
)

func TestAggregateSumsBeforeRatios(t *testing.T) {
	// Group A converts 10/20 (50%), group B 1/100 (1%). Merged into one key
	// the combined rate must be 11/120, not the midpoint of the two rates.
	rows := []models.ChannelRow{
		{Channel: "Instagram", Leads: 20, Converted: 10, Revenue: 400},
		{Channel: "Instagram", Leads: 100, Converted: 1, Revenue: 100},
	}

	dims := Aggregate(rows, ByChannel)
	require.Len(t, dims, 1)
	assert.Equal(t, "Instagram", dims[0].Key)
	assert.InDelta(t, 120, dims[0].Leads, 1e-9)
	assert.InDelta(t, 11.0/120.0*100, dims[0].ConversionRate, 1e-9)
	assert.InDelta(t, 500.0/120.0, dims[0].RevenuePerLead, 1e-9)
}

func TestAggregateZeroLeads(t *testing.T) {
	dims := Aggregate([]models.ChannelRow{{Channel: "Referido", Revenue: 250}}, ByChannel)
	require.Len(t, dims, 1)
	assert.Zero(t, dims[0].ConversionRate)
	assert.Zero(t, dims[0].RevenuePerLead)
}

func TestAggregateByMonthChronological(t *testing.T) {
	rows := []models.ChannelRow{
		{Channel: "Instagram", Month: "2026-02", Leads: 5},
		{Channel: "Google", Month: "2026-01", Leads: 7},
		{Channel: "Referido", Month: "2026-01", Leads: 3},
	}
	dims := Aggregate(rows, ByMonth)
	require.Len(t, dims, 2)
	assert.Equal(t, "2026-01", dims[0].Key)
	assert.InDelta(t, 10, dims[0].Leads, 1e-9)
	assert.Equal(t, "2026-02", dims[1].Key)
}

func TestSortByMeasureDeterministicTies(t *testing.T) {
	dims := []AggregatedDimension{
		{Key: "Google", Revenue: 100},
		{Key: "Ads", Revenue: 100},
		{Key: "Instagram", Revenue: 300},
	}
	ranked := SortByMeasure(dims, func(d AggregatedDimension) float64 { return d.Revenue })

	require.Len(t, ranked, 3)
	assert.Equal(t, "Instagram", ranked[0].Key)
	assert.Equal(t, "Ads", ranked[1].Key)
	assert.Equal(t, "Google", ranked[2].Key)
	// Input order untouched.
	assert.Equal(t, "Google", dims[0].Key)
}

func TestAggregateIdempotent(t *testing.T) {
	rows := []models.ChannelRow{
		{Channel: "Instagram", Month: "2026-01", Leads: 20, Converted: 4, Revenue: 900},
		{Channel: "Google", Month: "2026-01", Leads: 15, Converted: 6, Revenue: 1200},
	}
	first := Aggregate(rows, ByChannel)
	second := Aggregate(rows, ByChannel)
	assert.Equal(t, first, second)
	assert.InDelta(t, 20, rows[0].Leads, 1e-9)
}
