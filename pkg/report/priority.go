package report

import (
	"fmt"
	"strings"

	"clinic-kpi-report/pkg/metrics"
)

// ParsePriority maps a user-supplied tag (flag or query parameter) to a
// contact priority.
func ParsePriority(value string) (metrics.ContactPriority, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "low":
		return metrics.PriorityLow, nil
	case "medium":
		return metrics.PriorityMedium, nil
	case "high":
		return metrics.PriorityHigh, nil
	case "critical":
		return metrics.PriorityCritical, nil
	default:
		return "", fmt.Errorf("invalid priority: %s", value)
	}
}

// FilterByPriority returns the assessments at or above the given priority,
// preserving order.
func FilterByPriority(clients []ClientAssessment, minPriority metrics.ContactPriority) []ClientAssessment {
	threshold, ok := priorityRank(minPriority)
	if !ok {
		return nil
	}
	filtered := make([]ClientAssessment, 0, len(clients))
	for _, client := range clients {
		rank, ok := priorityRank(client.Priority)
		if !ok || rank < threshold {
			continue
		}
		filtered = append(filtered, client)
	}
	return filtered
}
