package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"aqiclean/internal/config"
	"aqiclean/internal/files"
	"aqiclean/internal/infrastructure"
	"aqiclean/internal/operations"
	"aqiclean/internal/store"
	"aqiclean/pkg/contracts"
)

// CLI is the command line of aqiclean
type CLI struct {
	Output  string           `arg:"" optional:"" name:"output" help:"Destination CSV file (default AQI_Data_Cleaned.csv)."`
	Version kong.VersionFlag `help:"Print version and exit."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one consolidation and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var cli CLI
	exited := false
	parser, err := kong.New(&cli,
		kong.Name(config.AppName),
		kong.Description("Consolidate per-city yearly AQI workbooks into one cleaned CSV."),
		kong.Vars{"version": contracts.GetFullVersionString()},
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) { exited = true }),
	)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if _, err := parser.Parse(args); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	if exited {
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	cfg = cfg.WithOutput(cli.Output)

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logger, using default: %v\n", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	ctx, runID := infrastructure.EnsureRunID(ctx)
	logger.InfoContext(ctx, "Starting AQI consolidation",
		slog.String("version", contracts.Version),
		slog.String("run_id", runID),
		slog.String("root_dir", cfg.Pipeline.RootDir),
		slog.String("output", cfg.Pipeline.OutputFile))

	tracing, err := infrastructure.InitializeTracing(cfg.Tracing, logger)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to initialize tracing", slog.String("error", err.Error()))
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Tracing shutdown failed", slog.String("error", err.Error()))
		}
	}()

	deps := operations.Dependencies{Tracer: tracing.Tracer, Logger: logger}
	if cfg.Store.SQLitePath != "" {
		db, err := store.Open(ctx, cfg.Store.SQLitePath, logger)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to open SQLite mirror", slog.String("error", err.Error()))
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		defer db.Close()
		deps.Mirror = db
	}

	state, err := operations.NewManager(cfg, deps).Execute(ctx)
	if err != nil {
		if errors.Is(err, files.ErrOutputLocked) {
			fmt.Fprintln(stderr, "Could not remove file. Please ensure it is not open in another program.")
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if state.Summary.NoData {
		fmt.Fprintln(stdout, "No data processed.")
		return 0
	}

	fmt.Fprintf(stdout, "Data restructuring and cleaning complete. Saved to '%s'.\n", state.Summary.OutputPath)
	return 0
}
