package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcentrationMonotonicToHundred(t *testing.T) {
	entries := []RankedEntry{
		{Key: "Ana", Value: 50},
		{Key: "Berta", Value: 200},
		{Key: "Carla", Value: 125},
		{Key: "Diana", Value: 25},
	}

	rows := Concentration(entries)
	require.Len(t, rows, 4)

	assert.Equal(t, "Berta", rows[0].Key)
	assert.Equal(t, "Carla", rows[1].Key)

	previous := 0.0
	for _, row := range rows {
		assert.GreaterOrEqual(t, row.CumulativeShare, previous)
		previous = row.CumulativeShare
	}
	assert.InDelta(t, 100, rows[len(rows)-1].CumulativeShare, 1e-6)
	assert.InDelta(t, 50, rows[0].Share, 1e-9)
}

func TestConcentrationZeroTotal(t *testing.T) {
	rows := Concentration([]RankedEntry{{Key: "Ana"}, {Key: "Berta"}})
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Zero(t, row.Share)
		assert.Zero(t, row.CumulativeShare)
	}
}

func TestConcentrationTieBreakByKey(t *testing.T) {
	rows := Concentration([]RankedEntry{
		{Key: "Zoe", Value: 10},
		{Key: "Ana", Value: 10},
	})
	assert.Equal(t, "Ana", rows[0].Key)
	assert.Equal(t, "Zoe", rows[1].Key)
}

func TestConcentrationDoesNotMutateInput(t *testing.T) {
	entries := []RankedEntry{
		{Key: "Ana", Value: 1},
		{Key: "Berta", Value: 9},
	}
	Concentration(entries)
	assert.Equal(t, "Ana", entries[0].Key)
	assert.InDelta(t, 1, entries[0].Value, 1e-9)
}

func TestTopShare(t *testing.T) {
	rows := Concentration([]RankedEntry{
		{Key: "A", Value: 60},
		{Key: "B", Value: 25},
		{Key: "C", Value: 10},
		{Key: "D", Value: 5},
	})
	assert.InDelta(t, 85, TopShare(rows, 2), 1e-9)
	assert.InDelta(t, 100, TopShare(rows, 10), 1e-6)
	assert.Zero(t, TopShare(rows, 0))
	assert.Zero(t, TopShare(nil, 3))
}
