// Package database holds the data-access collaborators around the core: CSV
// ingestion, reads from the pre-aggregated Postgres views, and persistence of
// finished report runs.
package database

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"clinic-kpi-report/pkg/models"
)

// LoadClients reads client portfolio rows from a CSV export. Rows without a
// client name are dropped and counted; malformed numeric cells coerce to 0.
// Partial data renders as zeros downstream, it never aborts the run.
func LoadClients(path string) ([]models.ClientRow, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("unable to read header: %w", err)
	}

	colMap := normalizeHeaders(headers)
	nameIdx, ok := findColumn(colMap, []string{"nombre_completo", "nombre", "full_name", "client_name", "cliente"})
	if !ok {
		return nil, 0, errors.New("missing nombre_completo column")
	}
	stageIdx, _ := findColumn(colMap, []string{"etapa", "stage", "etapa_embudo"})
	channelIdx, _ := findColumn(colMap, []string{"canal", "channel", "canal_origen"})
	ltvIdx, _ := findColumn(colMap, []string{"ltv", "valor_vida", "lifetime_value"})
	daysIdx, _ := findColumn(colMap, []string{"dias_sin_visita", "dias_ultima_visita", "days_since_visit"})
	tqpIdx, _ := findColumn(colMap, []string{"deuda_tqp", "debt_tqp", "saldo_tqp"})
	extrasIdx, _ := findColumn(colMap, []string{"deuda_extras", "debt_extras", "saldo_extras"})

	rows := []models.ClientRow{}
	skipped := 0
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, 0, fmt.Errorf("unable to read CSV: %w", err)
		}
		if len(record) == 0 {
			continue
		}

		name := getValue(record, nameIdx)
		if name == "" {
			skipped++
			continue
		}

		rows = append(rows, models.ClientRow{
			FullName:       name,
			Stage:          getValue(record, stageIdx),
			Channel:        getValue(record, channelIdx),
			LTV:            models.ParseAmount(getValue(record, ltvIdx)),
			DaysSinceVisit: models.ParseAmount(getValue(record, daysIdx)),
			DebtTQP:        models.ParseAmount(getValue(record, tqpIdx)),
			DebtExtras:     models.ParseAmount(getValue(record, extrasIdx)),
		})
	}
	return rows, skipped, nil
}

// LoadMarketing reads monthly marketing rows from a CSV export. Rows missing
// both channel and month are dropped and counted.
func LoadMarketing(path string) ([]models.ChannelRow, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("unable to read header: %w", err)
	}

	colMap := normalizeHeaders(headers)
	channelIdx, ok := findColumn(colMap, []string{"canal", "channel", "canal_origen"})
	if !ok {
		return nil, 0, errors.New("missing canal column")
	}
	monthIdx, _ := findColumn(colMap, []string{"mes", "month", "periodo"})
	leadsIdx, _ := findColumn(colMap, []string{"leads", "prospectos"})
	convertedIdx, _ := findColumn(colMap, []string{"convertidos", "converted", "conversiones"})
	revenueIdx, _ := findColumn(colMap, []string{"ingresos", "revenue", "ventas"})

	rows := []models.ChannelRow{}
	skipped := 0
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, 0, fmt.Errorf("unable to read CSV: %w", err)
		}
		if len(record) == 0 {
			continue
		}

		channel := getValue(record, channelIdx)
		month := getValue(record, monthIdx)
		if channel == "" && month == "" {
			skipped++
			continue
		}

		rows = append(rows, models.ChannelRow{
			Channel:   channel,
			Month:     month,
			Leads:     models.ParseAmount(getValue(record, leadsIdx)),
			Converted: models.ParseAmount(getValue(record, convertedIdx)),
			Revenue:   models.ParseAmount(getValue(record, revenueIdx)),
		})
	}
	return rows, skipped, nil
}

func normalizeHeaders(headers []string) map[string]int {
	result := make(map[string]int, len(headers))
	for idx, header := range headers {
		normalized := normalizeHeader(header)
		if _, exists := result[normalized]; !exists {
			result[normalized] = idx
		}
	}
	return result
}

func normalizeHeader(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = strings.ReplaceAll(value, " ", "")
	value = strings.ReplaceAll(value, "_", "")
	value = strings.ReplaceAll(value, "-", "")
	return value
}

func findColumn(headers map[string]int, names []string) (int, bool) {
	for _, name := range names {
		if idx, ok := headers[normalizeHeader(name)]; ok {
			return idx, true
		}
	}
	return -1, false
}

func getValue(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
