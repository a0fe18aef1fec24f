package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"satn_chatbot/internal/adapters/observability"
	"satn_chatbot/internal/adapters/wordpress"
	"satn_chatbot/internal/app"
	"satn_chatbot/internal/domain"
	"satn_chatbot/internal/shared"
	mysqlrepo "satn_chatbot/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := &cobra.Command{
		Use:           "etl",
		Short:         "Listing ETL for the SATN chatbot database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		migrateCmd(cfg),
		wpSyncCmd(cfg),
		wpPingCmd(cfg),
		xmlImportCmd(cfg),
		fixListingsCmd(cfg),
	)

	if err := root.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("etl failed")
		stop()
		os.Exit(1)
	}
}

func openDB(ctx context.Context, cfg shared.Config) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	db.SetMaxOpenConns(cfg.ETLWorkers + 2)
	db.SetConnMaxLifetime(time.Hour)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	log.Info().Msg("db ping ok")
	return db, nil
}

func newWP(cfg shared.Config) (*wordpress.Client, error) {
	if cfg.WPAPIURL == "" {
		return nil, fmt.Errorf("WP_API_URL is not set")
	}
	return wordpress.New(cfg.WPAPIURL, cfg.WPUser, cfg.WPAppPassword, 5)
}

// withIngestion opens the database and hands a ready ingestion service to fn.
func withIngestion(ctx context.Context, cfg shared.Config, wp *wordpress.Client, fn func(*app.IngestionService) (app.IngestStats, error)) error {
	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := mysqlrepo.Migrate(ctx, db); err != nil {
		return err
	}

	// a nil *Client must not become a non-nil interface
	var src domain.WordPressClient
	if wp != nil {
		src = wp
	}
	ing := app.NewIngestionService(src, mysqlrepo.New(db), cfg.ETLWorkers).WithObserver(observability.ObserveETL)

	start := time.Now()
	st, err := fn(ing)
	log.Info().
		Int("pages", st.Pages).
		Int("upserted", st.Upserted).
		Int("skipped", st.Skipped).
		Int("failed", st.Failed).
		Int("failed_pages", st.FailedPages).
		Dur("took", time.Since(start)).
		Msg("etl run finished")
	return err
}

func migrateCmd(cfg shared.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			return mysqlrepo.Migrate(cmd.Context(), db)
		},
	}
}

func wpSyncCmd(cfg shared.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "wp-sync",
		Short: "Pull every published listing from the WordPress REST API",
		RunE: func(cmd *cobra.Command, args []string) error {
			wp, err := newWP(cfg)
			if err != nil {
				return err
			}
			log.Info().Str("base", cfg.WPAPIURL).Int("workers", cfg.ETLWorkers).Msg("wordpress sync starting")
			return withIngestion(cmd.Context(), cfg, wp, func(ing *app.IngestionService) (app.IngestStats, error) {
				return ing.SyncWordPress(cmd.Context())
			})
		},
	}
}

func wpPingCmd(cfg shared.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "wp-ping",
		Short: "Check the WordPress API is reachable with the configured credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			wp, err := newWP(cfg)
			if err != nil {
				return err
			}
			if err := wp.Ping(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "WordPress API OK")
			return nil
		},
	}
}

func xmlImportCmd(cfg shared.Config) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "xml-import",
		Short: "Load listings from a WordPress WXR export",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()
			items, err := wordpress.ParseWXR(f)
			if err != nil {
				return fmt.Errorf("parse %s: %w", file, err)
			}
			log.Info().Str("file", file).Int("items", len(items)).Msg("export parsed")
			return withIngestion(cmd.Context(), cfg, nil, func(ing *app.IngestionService) (app.IngestStats, error) {
				return ing.ImportExport(cmd.Context(), items)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the WXR export")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func fixListingsCmd(cfg shared.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "fix-listings",
		Short: "Repair encoding and strip HTML from stored listing text",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIngestion(cmd.Context(), cfg, nil, func(ing *app.IngestionService) (app.IngestStats, error) {
				return ing.FixListings(cmd.Context())
			})
		},
	}
}
