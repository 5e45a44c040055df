package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gmaps-scraper/config"
	"gmaps-scraper/scraper/gmaps"
	"gmaps-scraper/services"
	"gmaps-scraper/storage"
	"gmaps-scraper/utils"
)

type options struct {
	search  string
	total   int
	input   string
	verbose bool
}

// NewRootCmd creates the gmaps-scraper command. Flag defaults come from cfg.
func NewRootCmd(cfg *config.Config) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "gmaps-scraper",
		Short: "Incrementally scrape businesses from Google Maps searches",
		Long: `gmaps-scraper runs Google Maps searches and keeps only businesses it has
never collected before. A business is identified by its name, phone number
and address.

New businesses are appended to the master table and to a table for the
search. Searches come from --search or, one per line, from the input file.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cfg, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.search, "search", "s", "", "Single search to run, e.g. \"cafes in Berlin\"")
	cmd.Flags().IntVarP(&opts.total, "total", "t", cfg.DefaultTotal, "Number of NEW unique businesses to scrape per search")
	cmd.Flags().StringVar(&opts.input, "input", cfg.InputFile, "File with one search per line, used when --search is not set")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := NewRootCmd(config.Load()).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts *options, out io.Writer) error {
	logger := utils.NewLogger(opts.verbose)

	cfg.DefaultTotal = opts.total
	if err := cfg.Validate(); err != nil {
		return err
	}

	queries, err := config.ResolveQueries(opts.search, opts.input)
	if err != nil {
		return err
	}

	logger.Info("=== Google Maps scraper starting ===")
	logger.Info("Config: %d searches | %d new per search | storage: %s in %q",
		len(queries), opts.total, cfg.StorageBackend, cfg.DataDir)

	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	var mirror storage.RecordWriter
	if cfg.PostgresEnabled {
		retry := &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		}
		pw, err := storage.NewPostgresWriter(ctx, cfg.DSN(), retry)
		if err != nil {
			logger.Error("Make sure PostgreSQL is running: docker compose up -d")
			return fmt.Errorf("connect to PostgreSQL: %w", err)
		}
		defer pw.Close()
		logger.Info("Mirroring to PostgreSQL, run %s", pw.RunID())
		mirror = pw
	}

	browser, err := gmaps.NewBrowser(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer browser.Close()

	pacer := utils.NewPacer()
	pipeline := services.NewPipeline(services.PipelineOptions{
		Store:     store,
		Source:    gmaps.NewListingSource(browser, cfg, pacer, logger),
		Extractor: gmaps.NewExtractor(browser, logger),
		Mirror:    mirror,
		Out:       out,
		Logger:    logger,
	})

	reports, err := pipeline.RunAll(ctx, queries, opts.total)
	logger.Debug("Spent %v waiting for the page to settle", pacer.Waited())
	printSummary(out, reports)
	return err
}

func openStore(cfg *config.Config, logger *utils.Logger) (storage.TableStore, error) {
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		s, err := storage.OpenSQLiteStore(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		logger.Info("Using SQLite database %s", s.Path())
		return s, nil
	default:
		return storage.NewCSVStore(cfg.DataDir, cfg.DatedQueryDirs), nil
	}
}

func printSummary(w io.Writer, reports []*services.QueryReport) {
	var total int
	for _, r := range reports {
		if r == nil || r.Drive == nil {
			continue
		}
		total += r.Drive.Accepted
	}
	fmt.Fprintf(w, "  Done. %d searches, %d new businesses.\n\n", len(reports), total)
}
