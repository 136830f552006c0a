package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"clinic-kpi-report/pkg/models"
)

// Config points the database collaborators at one Postgres schema.
type Config struct {
	URL    string
	Schema string
	Tag    string
}

// URLFromEnv resolves the database URL the way the rest of the tooling does:
// the dedicated variable first, then the generic one.
func URLFromEnv() string {
	if value := strings.TrimSpace(os.Getenv("CLINIC_KPI_DB_URL")); value != "" {
		return value
	}
	return strings.TrimSpace(os.Getenv("DATABASE_URL"))
}

// FetchClients reads the pre-aggregated client portfolio view. Nullable
// measures scan through sql.Null types and coerce to 0, matching the lenient
// policy of the CSV path.
func FetchClients(ctx context.Context, cfg Config) ([]models.ClientRow, error) {
	schema, err := sanitizeSchema(cfg.Schema)
	if err != nil {
		return nil, err
	}

	db, err := openDB(ctx, cfg.URL)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`
		SELECT nombre_completo, etapa, canal, ltv, dias_sin_visita, deuda_tqp, deuda_extras
		FROM %s.clinic_client_portfolio`, schema))
	if err != nil {
		return nil, fmt.Errorf("query client portfolio view: %w", err)
	}
	defer rows.Close()

	clients := []models.ClientRow{}
	for rows.Next() {
		var name string
		var stage, channel sql.NullString
		var ltv, days, tqp, extras sql.NullFloat64
		if err := rows.Scan(&name, &stage, &channel, &ltv, &days, &tqp, &extras); err != nil {
			return nil, fmt.Errorf("scan client row: %w", err)
		}
		clients = append(clients, models.ClientRow{
			FullName:       name,
			Stage:          stage.String,
			Channel:        channel.String,
			LTV:            models.SafeNumber(ltv.Float64),
			DaysSinceVisit: models.SafeNumber(days.Float64),
			DebtTQP:        models.SafeNumber(tqp.Float64),
			DebtExtras:     models.SafeNumber(extras.Float64),
		})
	}
	return clients, rows.Err()
}

// FetchMarketing reads the pre-aggregated monthly marketing view.
func FetchMarketing(ctx context.Context, cfg Config) ([]models.ChannelRow, error) {
	schema, err := sanitizeSchema(cfg.Schema)
	if err != nil {
		return nil, err
	}

	db, err := openDB(ctx, cfg.URL)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`
		SELECT canal, mes, leads, convertidos, ingresos
		FROM %s.clinic_channel_monthly`, schema))
	if err != nil {
		return nil, fmt.Errorf("query channel monthly view: %w", err)
	}
	defer rows.Close()

	marketing := []models.ChannelRow{}
	for rows.Next() {
		var channel, month sql.NullString
		var leads, converted, revenue sql.NullFloat64
		if err := rows.Scan(&channel, &month, &leads, &converted, &revenue); err != nil {
			return nil, fmt.Errorf("scan marketing row: %w", err)
		}
		marketing = append(marketing, models.ChannelRow{
			Channel:   channel.String,
			Month:     month.String,
			Leads:     models.SafeNumber(leads.Float64),
			Converted: models.SafeNumber(converted.Float64),
			Revenue:   models.SafeNumber(revenue.Float64),
		})
	}
	return marketing, rows.Err()
}

func openDB(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
