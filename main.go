package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"clinic-kpi-report/pkg/database"
	"clinic-kpi-report/pkg/metrics"
	"clinic-kpi-report/pkg/models"
	"clinic-kpi-report/pkg/report"
	"clinic-kpi-report/pkg/server"
)

const (
	defaultTopN     = 10
	defaultSchema   = "clinic_kpi"
	defaultPriority = "high"
)

func main() {
	clientsPath := flag.String("clients", "", "Path to client portfolio CSV")
	marketingPath := flag.String("marketing", "", "Optional path to monthly marketing CSV")
	fromDB := flag.Bool("from-db", false, "Read rows from the Postgres views instead of CSV")
	asOf := flag.String("as-of", "", "Report as-of date (YYYY-MM-DD)")
	topN := flag.Int("top", defaultTopN, "Top N debtors to show")
	collectionRate := flag.Float64("collection-rate", metrics.DefaultCollectionRate, "Estimated collection rate (0-1); an assumption, not measured data")
	jsonOut := flag.String("json", "", "Optional JSON output path")
	contactsOut := flag.String("contacts", "", "Optional CSV output with outreach scripts")
	minPriority := flag.String("min-priority", defaultPriority, "Minimum priority for the contact sheet (low, medium, high, critical)")
	dbEnabled := flag.Bool("db", false, "Store report in Postgres (requires CLINIC_KPI_DB_URL or DATABASE_URL)")
	dbSchema := flag.String("db-schema", defaultSchema, "Postgres schema for report tables and source views")
	dbTag := flag.String("db-tag", "", "Optional label for this report run")
	initDB := flag.Bool("init-db", false, "Initialize report schema and seed it with this run if empty")
	serveAddr := flag.String("serve", "", "Serve the report API on this address (e.g. :8080) after building")
	refreshEvery := flag.Duration("refresh", 0, "Rebuild the report from the DB views on this interval while serving")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	_ = godotenv.Load()
	log := newLogger(*verbose)

	if *clientsPath == "" && !*fromDB {
		exitWithError(log, errors.New("--clients is required unless --from-db is set"))
	}
	if *collectionRate <= 0 || *collectionRate > 1 {
		exitWithError(log, errors.New("--collection-rate must be within (0, 1]"))
	}

	asOfDate := time.Now()
	if *asOf != "" {
		parsed, err := time.Parse("2006-01-02", strings.TrimSpace(*asOf))
		if err != nil {
			exitWithError(log, fmt.Errorf("invalid --as-of date: %w", err))
		}
		asOfDate = parsed
	}

	needsDB := *fromDB || *dbEnabled || *initDB || (*serveAddr != "" && *refreshEvery > 0)
	var dbCfg database.Config
	if needsDB {
		url := database.URLFromEnv()
		if url == "" {
			exitWithError(log, errors.New("database URL missing; set CLINIC_KPI_DB_URL or DATABASE_URL"))
		}
		dbCfg = database.Config{URL: url, Schema: *dbSchema, Tag: *dbTag}
	}

	opts := report.Options{
		AsOf:           asOfDate,
		TopN:           *topN,
		CollectionRate: *collectionRate,
	}

	clients, marketing, skipped, err := loadRows(log, *clientsPath, *marketingPath, *fromDB, dbCfg)
	if err != nil {
		exitWithError(log, err)
	}
	opts.SkippedRows = skipped

	rpt := report.Build(clients, marketing, opts)
	report.Print(rpt)

	if *jsonOut != "" {
		if err := report.WriteJSON(rpt, *jsonOut); err != nil {
			exitWithError(log, err)
		}
		fmt.Printf("\nJSON report saved to %s\n", *jsonOut)
	}

	if *contactsOut != "" {
		if err := report.WriteContactSheet(rpt, *contactsOut, *minPriority); err != nil {
			exitWithError(log, err)
		}
		fmt.Printf("Contact sheet saved to %s\n", *contactsOut)
	}

	if *dbEnabled || *initDB {
		seeded := false
		if *initDB {
			runID, err := database.Seed(rpt, dbCfg)
			if err != nil {
				exitWithError(log, err)
			}
			if runID != "" {
				seeded = true
				log.Info().Str("run_id", runID).Msg("seeded Postgres with initial report run")
			} else {
				log.Info().Msg("report data already present; skipping seed")
			}
		}
		if *dbEnabled {
			if seeded {
				log.Info().Msg("skipped duplicate insert; current report already used for seed")
			} else {
				runID, err := database.Store(rpt, dbCfg)
				if err != nil {
					exitWithError(log, err)
				}
				log.Info().Str("run_id", runID).Msg("stored report run in Postgres")
			}
		}
	}

	if *serveAddr != "" {
		if err := serve(log, rpt, *serveAddr, *refreshEvery, needsDB, dbCfg, opts); err != nil {
			exitWithError(log, err)
		}
	}
}

func loadRows(log zerolog.Logger, clientsPath, marketingPath string, fromDB bool, dbCfg database.Config) ([]models.ClientRow, []models.ChannelRow, int, error) {
	if fromDB {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		clients, err := database.FetchClients(ctx, dbCfg)
		if err != nil {
			return nil, nil, 0, err
		}
		marketing, err := database.FetchMarketing(ctx, dbCfg)
		if err != nil {
			return nil, nil, 0, err
		}
		log.Debug().Int("clients", len(clients)).Int("marketing", len(marketing)).Msg("fetched rows from views")
		return clients, marketing, 0, nil
	}

	clients, skippedClients, err := database.LoadClients(clientsPath)
	if err != nil {
		return nil, nil, 0, err
	}
	skipped := skippedClients

	var marketing []models.ChannelRow
	if marketingPath != "" {
		rows, skippedMarketing, err := database.LoadMarketing(marketingPath)
		if err != nil {
			return nil, nil, 0, err
		}
		marketing = rows
		skipped += skippedMarketing
	}
	if skipped > 0 {
		log.Warn().Int("rows", skipped).Msg("skipped invalid input rows")
	}
	return clients, marketing, skipped, nil
}

func serve(log zerolog.Logger, rpt report.Report, addr string, refreshEvery time.Duration, hasDB bool, dbCfg database.Config, opts report.Options) error {
	cache := server.NewCache()
	cache.Set(rpt)

	var refresher server.Refresher
	if refreshEvery > 0 {
		if !hasDB {
			return errors.New("--refresh requires a database URL to rebuild from")
		}
		refresher = func(ctx context.Context) (report.Report, error) {
			clients, err := database.FetchClients(ctx, dbCfg)
			if err != nil {
				return report.Report{}, err
			}
			marketing, err := database.FetchMarketing(ctx, dbCfg)
			if err != nil {
				return report.Report{}, err
			}
			rebuildOpts := opts
			rebuildOpts.AsOf = time.Now()
			rebuildOpts.SkippedRows = 0
			return report.Build(clients, marketing, rebuildOpts), nil
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Config{
		Addr:         addr,
		Log:          log,
		Cache:        cache,
		Refresh:      refresher,
		RefreshEvery: refreshEvery,
	})
	return srv.Start(ctx)
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	// Diagnostics go to stderr; stdout stays clean for the report itself.
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

func exitWithError(log zerolog.Logger, err error) {
	log.Error().Err(err).Msg("run failed")
	os.Exit(1)
}
