package metrics

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Tone is the presentation color class attached to a value. The frontend maps
// these straight to styles; the core only ever decides which one applies.
type Tone string

const (
	TonePositive Tone = "positive"
	ToneNeutral  Tone = "neutral"
	ToneNegative Tone = "negative"
)

const (
	currencyMillion  = 1_000_000
	currencyThousand = 1_000
)

// FormatCurrency renders an amount with K/M abbreviation above the usual
// dashboard thresholds. Non-finite input renders the placeholder instead of
// ever reaching Sprintf.
func FormatCurrency(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "N/A"
	}
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	switch {
	case v >= currencyMillion:
		return fmt.Sprintf("%s$%.1fM", sign, v/currencyMillion)
	case v >= currencyThousand:
		return fmt.Sprintf("%s$%.1fK", sign, v/currencyThousand)
	default:
		return fmt.Sprintf("%s$%.0f", sign, v)
	}
}

// FormatPercent renders a percentage with a fixed number of decimals.
func FormatPercent(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "N/A"
	}
	if decimals < 0 {
		decimals = 0
	}
	return fmt.Sprintf("%.*f%%", decimals, v)
}

// FormatNumber renders an integer count with thousands grouping.
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "N/A"
	}
	negative := v < 0
	digits := strconv.FormatFloat(math.Abs(math.Round(v)), 'f', 0, 64)
	var grouped strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(d)
	}
	if negative {
		return "-" + grouped.String()
	}
	return grouped.String()
}

// TrendTone classifies a trend percentage for display.
func TrendTone(pct float64) Tone {
	switch {
	case pct > 0:
		return TonePositive
	case pct < 0:
		return ToneNegative
	default:
		return ToneNeutral
	}
}

var riskTones = map[RiskSegment]Tone{
	RiskLow:    TonePositive,
	RiskMedium: ToneNeutral,
	RiskHigh:   ToneNegative,
}

// RiskTone maps a risk segment to its display tone. Unknown tags fall back to
// neutral rather than failing.
func RiskTone(segment RiskSegment) Tone {
	if tone, ok := riskTones[segment]; ok {
		return tone
	}
	return ToneNeutral
}

var priorityTones = map[ContactPriority]Tone{
	PriorityLow:      TonePositive,
	PriorityMedium:   ToneNeutral,
	PriorityHigh:     ToneNegative,
	PriorityCritical: ToneNegative,
}

// PriorityTone maps a contact priority to its display tone.
func PriorityTone(priority ContactPriority) Tone {
	if tone, ok := priorityTones[priority]; ok {
		return tone
	}
	return ToneNeutral
}

// RecencyTone grades days since last visit on the 30/60/90 display cutoffs.
// These are the heatmap cutoffs, which differ from the portfolio classifier's
// (see RecencySegment).
func RecencyTone(days float64) Tone {
	switch {
	case days <= 30:
		return TonePositive
	case days <= 90:
		return ToneNeutral
	default:
		return ToneNegative
	}
}
