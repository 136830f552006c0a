package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
)

// WriteJSON saves the full report as indented JSON.
func WriteJSON(r Report, path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// WriteContactSheet saves a CSV of clients at or above the minimum contact
// priority, one outreach script per row, ready for the front desk.
func WriteContactSheet(r Report, path string, minPriority string) error {
	threshold, err := ParsePriority(minPriority)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{
		"nombre_completo",
		"prioridad",
		"segmento_riesgo",
		"tipo_mensaje",
		"dias_sin_visita",
		"deuda",
		"ltv",
		"guion",
	}); err != nil {
		return err
	}

	for _, client := range FilterByPriority(r.Clients, threshold) {
		record := []string{
			client.FullName,
			string(client.Priority),
			string(client.Risk),
			string(client.Message),
			fmt.Sprintf("%d", int(client.DaysSinceVisit)),
			fmt.Sprintf("%.0f", client.Debt),
			fmt.Sprintf("%.0f", client.LTV),
			client.Script,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
