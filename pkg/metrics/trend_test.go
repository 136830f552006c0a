package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrend(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		previous float64
		want     float64
	}{
		{name: "both zero", current: 0, previous: 0, want: 0},
		{name: "came from nothing", current: 100, previous: 0, want: 100},
		{name: "growth", current: 150, previous: 100, want: 50},
		{name: "decline", current: 50, previous: 100, want: -50},
		{name: "dropped to zero", current: 0, previous: 80, want: -100},
		{name: "nan current degrades to zero", current: math.NaN(), previous: 0, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Trend(tt.current, tt.previous)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.False(t, math.IsNaN(got))
			assert.False(t, math.IsInf(got, 0))
		})
	}
}

func TestProjectedCollections(t *testing.T) {
	assert.InDelta(t, 75, ProjectedCollections(100, DefaultCollectionRate), 1e-9)
	assert.Zero(t, ProjectedCollections(100, -1))
	assert.InDelta(t, 100, ProjectedCollections(100, 2), 1e-9)
	assert.Zero(t, ProjectedCollections(math.NaN(), 0.75))
}
