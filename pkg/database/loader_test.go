package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rows.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadClients(t *testing.T) {
	csvData := "Nombre Completo,Etapa,Canal,LTV,dias_sin_visita,deuda_tqp,deuda_extras\n" +
		"\"Rojas, Ana\",Lead,Instagram,\"1,200,000\",95,500000,100000\n" +
		"Berta Muñoz,Consulta,Google,600000,45,150000,\n" +
		",Lead,Instagram,100,5,0,0\n" +
		"Carla Díaz,Tratamiento,Instagram,n/a,10,,5000\n"

	rows, skipped, err := LoadClients(writeTempCSV(t, csvData))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 1, skipped)

	assert.Equal(t, "Rojas, Ana", rows[0].FullName)
	assert.InDelta(t, 1_200_000, rows[0].LTV, 1e-9)
	assert.InDelta(t, 95, rows[0].DaysSinceVisit, 1e-9)

	assert.Equal(t, "Berta Muñoz", rows[1].FullName)
	assert.InDelta(t, 600000, rows[1].LTV, 1e-9)
	assert.Zero(t, rows[1].DebtExtras)

	// Garbage numerics degrade to zero instead of failing the load.
	assert.Zero(t, rows[2].LTV)
	assert.InDelta(t, 5000, rows[2].DebtExtras, 1e-9)
}

func TestLoadClientsHeaderSynonyms(t *testing.T) {
	csvData := "client_name,stage,channel,lifetime_value,days_since_visit,debt_tqp,debt_extras\n" +
		"Diana Soto,Recurrente,Referido,150000,200,0,0\n"

	rows, skipped, err := LoadClients(writeTempCSV(t, csvData))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Zero(t, skipped)
	assert.Equal(t, "Diana Soto", rows[0].FullName)
	assert.Equal(t, "Recurrente", rows[0].Stage)
}

func TestLoadClientsMissingNameColumn(t *testing.T) {
	csvData := "etapa,ltv\nLead,100\n"
	_, _, err := LoadClients(writeTempCSV(t, csvData))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nombre_completo")
}

func TestLoadMarketing(t *testing.T) {
	csvData := "canal,mes,leads,convertidos,ingresos\n" +
		"Instagram,2026-06,40,8,$900000\n" +
		"Google,2026-06,20,2,300000\n" +
		",,,,\n"

	rows, skipped, err := LoadMarketing(writeTempCSV(t, csvData))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, skipped)
	assert.InDelta(t, 900000, rows[0].Revenue, 1e-9)
	assert.Equal(t, "2026-06", rows[0].Month)
}

func TestLoadMarketingMissingChannelColumn(t *testing.T) {
	csvData := "mes,leads\n2026-06,10\n"
	_, _, err := LoadMarketing(writeTempCSV(t, csvData))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "canal")
}

func TestSanitizeSchema(t *testing.T) {
	schema, err := sanitizeSchema("  clinic_kpi ")
	require.NoError(t, err)
	assert.Equal(t, "clinic_kpi", schema)

	_, err = sanitizeSchema("")
	assert.Error(t, err)
	_, err = sanitizeSchema("bad;drop")
	assert.Error(t, err)
	_, err = sanitizeSchema("1nope")
	assert.Error(t, err)
}

func TestNullString(t *testing.T) {
	assert.False(t, nullString("  ").Valid)
	got := nullString("monthly")
	assert.True(t, got.Valid)
	assert.Equal(t, "monthly", got.String)
}
