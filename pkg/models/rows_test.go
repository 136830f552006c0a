package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"", 0},
		{"   ", 0},
		{"1200", 1200},
		{"$450000", 450000},
		{"1,234,567.89", 1234567.89},
		{"1.234.567,89", 1234567.89},
		{"1234,5", 1234.5},
		{"-300", -300},
		{"n/a", 0},
		{"12x", 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, ParseAmount(tt.raw), 1e-9, "raw %q", tt.raw)
	}
}

func TestSafeNumber(t *testing.T) {
	assert.Zero(t, SafeNumber(math.NaN()))
	assert.Zero(t, SafeNumber(math.Inf(1)))
	assert.Zero(t, SafeNumber(math.Inf(-1)))
	assert.InDelta(t, 42.5, SafeNumber(42.5), 1e-9)
}

func TestClientRowTotalDebt(t *testing.T) {
	row := ClientRow{DebtTQP: 300_000, DebtExtras: 50_000}
	assert.InDelta(t, 350_000, row.TotalDebt(), 1e-9)

	corrupt := ClientRow{DebtTQP: math.NaN(), DebtExtras: 100}
	assert.InDelta(t, 100, corrupt.TotalDebt(), 1e-9)
}
