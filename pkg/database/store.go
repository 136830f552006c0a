package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"clinic-kpi-report/pkg/report"
)

const storeTimeout = 12 * time.Second

// Seed initializes the report schema and stores the given report as the
// first run if no run exists yet. Returns an empty run id when data was
// already present.
func Seed(rpt report.Report, cfg Config) (string, error) {
	schema, err := sanitizeSchema(cfg.Schema)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	db, err := openDB(ctx, cfg.URL)
	if err != nil {
		return "", err
	}
	defer db.Close()

	if err := ensureSchema(ctx, db, schema); err != nil {
		return "", err
	}

	var count int
	if err := db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s.kpi_runs`, schema)).Scan(&count); err != nil {
		return "", err
	}
	if count > 0 {
		return "", nil
	}

	return storeReportTx(ctx, db, rpt, schema, cfg.Tag)
}

// Store persists a report run, creating the schema on first use.
func Store(rpt report.Report, cfg Config) (string, error) {
	schema, err := sanitizeSchema(cfg.Schema)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	db, err := openDB(ctx, cfg.URL)
	if err != nil {
		return "", err
	}
	defer db.Close()

	if err := ensureSchema(ctx, db, schema); err != nil {
		return "", err
	}

	return storeReportTx(ctx, db, rpt, schema, cfg.Tag)
}

func storeReportTx(ctx context.Context, db *sql.DB, rpt report.Report, schema string, tag string) (string, error) {
	runID := uuid.New()
	asOf, err := time.Parse("2006-01-02", rpt.Summary.AsOf)
	if err != nil {
		return "", fmt.Errorf("invalid report date: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s.kpi_runs (
			id, as_of, total_clients, total_debt, debt_tqp, debt_extras,
			avg_debt, median_debt, avg_ltv, median_ltv,
			projected_collections, collection_rate_estimate,
			top3_share, top10_share, skipped_rows, run_tag
		) VALUES (
			$1,$2,$3,$4,$5,$6,
			$7,$8,$9,$10,
			$11,$12,
			$13,$14,$15,$16
		)`, schema),
		runID,
		asOf,
		rpt.Summary.TotalClients,
		rpt.Summary.TotalDebt,
		rpt.Summary.DebtTQP,
		rpt.Summary.DebtExtras,
		rpt.Summary.AvgDebt,
		rpt.Summary.MedianDebt,
		rpt.Summary.AvgLTV,
		rpt.Summary.MedianLTV,
		rpt.Summary.ProjectedCollections,
		rpt.Summary.CollectionRateEstimate,
		rpt.Top3Share,
		rpt.Top10Share,
		rpt.Summary.SkippedRows,
		nullString(tag),
	)
	if err != nil {
		return "", err
	}

	insertClientSQL := fmt.Sprintf(`
		INSERT INTO %s.kpi_clients (
			id, run_id, full_name, ltv, days_since_visit, debt,
			risk_segment, priority, message_type, script
		) VALUES (
			$1,$2,$3,$4,$5,$6,
			$7,$8,$9,$10
		)`, schema)

	for _, client := range rpt.Clients {
		_, err = tx.ExecContext(ctx, insertClientSQL,
			uuid.New(),
			runID,
			client.FullName,
			client.LTV,
			client.DaysSinceVisit,
			client.Debt,
			string(client.Risk),
			string(client.Priority),
			string(client.Message),
			client.Script,
		)
		if err != nil {
			return "", err
		}
	}

	insertChannelSQL := fmt.Sprintf(`
		INSERT INTO %s.kpi_channels (
			id, run_id, channel, leads, converted, revenue, conversion_rate, revenue_per_lead
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8
		)`, schema)

	for _, channel := range rpt.Channels {
		_, err = tx.ExecContext(ctx, insertChannelSQL,
			uuid.New(),
			runID,
			channel.Key,
			channel.Leads,
			channel.Converted,
			channel.Revenue,
			channel.ConversionRate,
			channel.RevenuePerLead,
		)
		if err != nil {
			return "", err
		}
	}

	insertFunnelSQL := fmt.Sprintf(`
		INSERT INTO %s.kpi_funnel (
			id, run_id, stage, position, client_count, percentage, conversion, loss
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8
		)`, schema)

	for position, stage := range rpt.Funnel {
		var conversion sql.NullFloat64
		if stage.Conversion != nil {
			conversion = sql.NullFloat64{Float64: *stage.Conversion, Valid: true}
		}
		_, err = tx.ExecContext(ctx, insertFunnelSQL,
			uuid.New(),
			runID,
			stage.Stage,
			position,
			stage.Count,
			stage.Percentage,
			conversion,
			stage.Loss,
		)
		if err != nil {
			return "", err
		}
	}

	insertAgingSQL := fmt.Sprintf(`
		INSERT INTO %s.kpi_aging (
			id, run_id, segment, client_count, total_debt, avg_debt
		) VALUES (
			$1,$2,$3,$4,$5,$6
		)`, schema)

	for _, bucket := range rpt.Aging {
		_, err = tx.ExecContext(ctx, insertAgingSQL,
			uuid.New(),
			runID,
			bucket.Label,
			bucket.Clients,
			bucket.TotalDebt,
			bucket.AvgDebt,
		)
		if err != nil {
			return "", err
		}
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return runID.String(), nil
}

func ensureSchema(ctx context.Context, db *sql.DB, schema string) error {
	if _, err := db.ExecContext(ctx, fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, schema)); err != nil {
		return err
	}

	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.kpi_runs (
			id uuid PRIMARY KEY,
			as_of date NOT NULL,
			total_clients integer NOT NULL,
			total_debt numeric(14,2) NOT NULL,
			debt_tqp numeric(14,2) NOT NULL,
			debt_extras numeric(14,2) NOT NULL,
			avg_debt numeric(14,2) NOT NULL,
			median_debt numeric(14,2) NOT NULL,
			avg_ltv numeric(14,2) NOT NULL,
			median_ltv numeric(14,2) NOT NULL,
			projected_collections numeric(14,2) NOT NULL,
			collection_rate_estimate numeric(5,4) NOT NULL,
			top3_share numeric(7,4) NOT NULL,
			top10_share numeric(7,4) NOT NULL,
			skipped_rows integer NOT NULL,
			run_tag text,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, schema))
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.kpi_clients (
			id uuid PRIMARY KEY,
			run_id uuid NOT NULL REFERENCES %s.kpi_runs(id) ON DELETE CASCADE,
			full_name text NOT NULL,
			ltv numeric(14,2) NOT NULL,
			days_since_visit numeric(8,2) NOT NULL,
			debt numeric(14,2) NOT NULL,
			risk_segment text NOT NULL,
			priority text NOT NULL,
			message_type text NOT NULL,
			script text NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, schema, schema))
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.kpi_channels (
			id uuid PRIMARY KEY,
			run_id uuid NOT NULL REFERENCES %s.kpi_runs(id) ON DELETE CASCADE,
			channel text NOT NULL,
			leads numeric(12,2) NOT NULL,
			converted numeric(12,2) NOT NULL,
			revenue numeric(14,2) NOT NULL,
			conversion_rate numeric(7,4) NOT NULL,
			revenue_per_lead numeric(14,2) NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, schema, schema))
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.kpi_funnel (
			id uuid PRIMARY KEY,
			run_id uuid NOT NULL REFERENCES %s.kpi_runs(id) ON DELETE CASCADE,
			stage text NOT NULL,
			position integer NOT NULL,
			client_count numeric(12,2) NOT NULL,
			percentage numeric(7,4) NOT NULL,
			conversion numeric(7,4),
			loss numeric(12,2) NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, schema, schema))
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.kpi_aging (
			id uuid PRIMARY KEY,
			run_id uuid NOT NULL REFERENCES %s.kpi_runs(id) ON DELETE CASCADE,
			segment text NOT NULL,
			client_count integer NOT NULL,
			total_debt numeric(14,2) NOT NULL,
			avg_debt numeric(14,2) NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, schema, schema))
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_kpi_clients_run_idx ON %s.kpi_clients (run_id)`, schema, schema))
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_kpi_clients_priority_idx ON %s.kpi_clients (priority)`, schema, schema))
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_kpi_channels_run_idx ON %s.kpi_channels (run_id)`, schema, schema))
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_kpi_funnel_run_idx ON %s.kpi_funnel (run_id)`, schema, schema))
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_kpi_aging_run_idx ON %s.kpi_aging (run_id)`, schema, schema))
	return err
}

func sanitizeSchema(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", errors.New("db schema is required")
	}
	valid := regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
	if !valid.MatchString(value) {
		return "", fmt.Errorf("invalid schema name: %s", value)
	}
	return value, nil
}

func nullString(value string) sql.NullString {
	if strings.TrimSpace(value) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
