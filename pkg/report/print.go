package report

import (
	"fmt"
	"strings"

	"clinic-kpi-report/pkg/metrics"
)

// Print writes the human-readable report to stdout.
func Print(r Report) {
	fmt.Println("Clinic KPI Report")
	fmt.Println(strings.Repeat("=", 42))
	fmt.Printf("As of: %s\n", r.Summary.AsOf)
	fmt.Printf("Clients: %s\n", metrics.FormatNumber(float64(r.Summary.TotalClients)))
	fmt.Printf("Outstanding debt: %s (TQP %s | extras %s)\n",
		metrics.FormatCurrency(r.Summary.TotalDebt),
		metrics.FormatCurrency(r.Summary.DebtTQP),
		metrics.FormatCurrency(r.Summary.DebtExtras),
	)
	fmt.Printf("Debt avg/median: %s / %s\n",
		metrics.FormatCurrency(r.Summary.AvgDebt),
		metrics.FormatCurrency(r.Summary.MedianDebt),
	)
	fmt.Printf("LTV avg/median: %s / %s\n",
		metrics.FormatCurrency(r.Summary.AvgLTV),
		metrics.FormatCurrency(r.Summary.MedianLTV),
	)
	fmt.Printf("Projected collections: %s (estimated rate %s)\n",
		metrics.FormatCurrency(r.Summary.ProjectedCollections),
		metrics.FormatPercent(r.Summary.CollectionRateEstimate*100, 0),
	)
	fmt.Printf("Risk: low %d | medium %d | high %d\n",
		r.Summary.RiskCounts[metrics.RiskLow],
		r.Summary.RiskCounts[metrics.RiskMedium],
		r.Summary.RiskCounts[metrics.RiskHigh],
	)
	fmt.Printf("Priority: low %d | medium %d | high %d | critical %d\n",
		r.Summary.PriorityCounts[metrics.PriorityLow],
		r.Summary.PriorityCounts[metrics.PriorityMedium],
		r.Summary.PriorityCounts[metrics.PriorityHigh],
		r.Summary.PriorityCounts[metrics.PriorityCritical],
	)
	if r.Summary.SkippedRows > 0 {
		fmt.Printf("Invalid rows skipped: %d\n", r.Summary.SkippedRows)
	}

	if len(r.Funnel) > 0 {
		fmt.Println("\nFunnel")
		fmt.Println(strings.Repeat("-", 42))
		for _, stage := range r.Funnel {
			line := fmt.Sprintf("%s | %s clients | %s of top",
				stage.Stage,
				metrics.FormatNumber(stage.Count),
				metrics.FormatPercent(stage.Percentage, 1),
			)
			if stage.Conversion != nil {
				line += fmt.Sprintf(" | conversion %s | lost %s",
					metrics.FormatPercent(*stage.Conversion, 1),
					metrics.FormatNumber(stage.Loss),
				)
			}
			fmt.Println(line)
		}
	}

	if len(r.Channels) > 0 {
		fmt.Println("\nChannels")
		fmt.Println(strings.Repeat("-", 42))
		for _, channel := range r.Channels {
			fmt.Printf("%s | leads %s | conversion %s | revenue %s | per lead %s\n",
				channel.Key,
				metrics.FormatNumber(channel.Leads),
				metrics.FormatPercent(channel.ConversionRate, 1),
				metrics.FormatCurrency(channel.Revenue),
				metrics.FormatCurrency(channel.RevenuePerLead),
			)
		}
	}

	if r.MonthTrend.CurrentMonth != "" {
		fmt.Println("\nMonth over month")
		fmt.Println(strings.Repeat("-", 42))
		fmt.Printf("%s vs %s | leads %s | revenue %s\n",
			r.MonthTrend.CurrentMonth,
			r.MonthTrend.PreviousMonth,
			metrics.FormatPercent(r.MonthTrend.LeadsTrend, 1),
			metrics.FormatPercent(r.MonthTrend.RevenueTrend, 1),
		)
	}

	fmt.Println("\nDebt aging")
	fmt.Println(strings.Repeat("-", 42))
	for _, bucket := range r.Aging {
		fmt.Printf("%s days | %d clients | total %s | avg %s\n",
			bucket.Label,
			bucket.Clients,
			metrics.FormatCurrency(bucket.TotalDebt),
			metrics.FormatCurrency(bucket.AvgDebt),
		)
	}

	if len(r.Concentration) > 0 {
		fmt.Println("\nLTV concentration")
		fmt.Println(strings.Repeat("-", 42))
		fmt.Printf("Top 3 hold %s of LTV, top 10 hold %s\n",
			metrics.FormatPercent(r.Top3Share, 1),
			metrics.FormatPercent(r.Top10Share, 1),
		)
	}

	if len(r.TopDebtors) > 0 {
		fmt.Println("\nTop debtors")
		fmt.Println(strings.Repeat("-", 42))
		for _, client := range r.TopDebtors {
			name := client.FullName
			if name == "" {
				name = "Unknown"
			}
			fmt.Printf("%s | debt %s | %d days | risk %s | priority %s\n",
				name,
				metrics.FormatCurrency(client.Debt),
				int(client.DaysSinceVisit),
				client.Risk,
				client.Priority,
			)
		}
	}
}
