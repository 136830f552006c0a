package models

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ClientRow is one row of the client portfolio view: who the client is, where
// they sit in the pipeline, and the money attached to them. Numeric fields
// arrive already aggregated upstream and may be missing; callers get zeros,
// never NaN.
type ClientRow struct {
	FullName       string  `json:"nombre_completo"`
	Stage          string  `json:"etapa"`
	Channel        string  `json:"canal"`
	LTV            float64 `json:"ltv"`
	DaysSinceVisit float64 `json:"dias_sin_visita"`
	DebtTQP        float64 `json:"deuda_tqp"`
	DebtExtras     float64 `json:"deuda_extras"`
}

// TotalDebt is the outstanding balance across both debt subsystems.
func (c ClientRow) TotalDebt() float64 {
	return SafeNumber(c.DebtTQP) + SafeNumber(c.DebtExtras)
}

// ChannelRow is one row of the monthly marketing view.
type ChannelRow struct {
	Channel   string  `json:"canal"`
	Month     string  `json:"mes"`
	Leads     float64 `json:"leads"`
	Converted float64 `json:"convertidos"`
	Revenue   float64 `json:"ingresos"`
}

// ParseAmount parses a money or count cell into a float64. It tolerates a
// currency prefix, thousands separators and surrounding space, and returns 0
// for anything it cannot read. Parsing goes through decimal so "1.234.567,89"
// style inputs never accumulate binary rounding before the core sees them.
func ParseAmount(raw string) float64 {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return 0
	}
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if strings.Contains(cleaned, ",") && strings.Contains(cleaned, ".") {
		// Latin format: dot groups thousands, comma marks decimals.
		if strings.LastIndex(cleaned, ",") > strings.LastIndex(cleaned, ".") {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	} else if strings.Count(cleaned, ",") == 1 {
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	} else {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}
	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0
	}
	return SafeNumber(value.InexactFloat64())
}

// SafeNumber collapses NaN and infinities to 0 so a corrupt upstream value
// degrades to a blank metric instead of poisoning every ratio downstream.
func SafeNumber(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
