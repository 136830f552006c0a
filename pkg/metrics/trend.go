// Package metrics holds the derivation core of the clinic dashboard: pure,
// synchronous transformations from portfolio and marketing rows to the
// derived records the report and the frontend render. Nothing in this package
// performs I/O, mutates its inputs, or keeps state between calls.
package metrics

import "clinic-kpi-report/pkg/models"

// Trend returns the percentage change from previous to current. A previous
// period of 0 is a policy case, not a numeric accident: a metric that came
// from nothing reads as +100% when it now has value and 0% when it still has
// none, instead of surfacing Inf or NaN.
func Trend(current, previous float64) float64 {
	current = models.SafeNumber(current)
	previous = models.SafeNumber(previous)
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - previous) / previous * 100
}
