// Package main provides the termgraph CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matsen/termgraph/internal/config"
	"github.com/matsen/termgraph/internal/logging"
	"github.com/matsen/termgraph/internal/metrics"
	"github.com/matsen/termgraph/internal/term"
	"github.com/matsen/termgraph/internal/view"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// Flags that override config values.
var (
	flagDataset   string
	flagMetadata  string
	flagConfigDir string
	flagLogLevel  string
	flagEngine    string
	flagSeed      uint64
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "termgraph",
	Short: "Interactive glossary term graph",
	Long: `termgraph builds an interactive graph view of a glossary.

Each term is a node; each parent->child relationship is an edge. Nodes are
sized by their number of children and placed by a force simulation. The
rendered page supports pan and zoom, hover tooltips with each term's title
and summary, and click-to-pin neighborhood highlighting.

Terms are read from a JSON (or JSONL) file or URL. Tooltip text comes from
<name>.md documents with title: and summary: front matter.

All commands output JSON by default; use --human for readable output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&flagDataset, "dataset", "", "Term dataset file or URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagMetadata, "metadata", "", "Directory or base URL of <name>.md documents (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "Directory to search for termgraph.yml (default: working directory)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagEngine, "layout", "", "Layout engine: force or circle (overrides config)")
	rootCmd.PersistentFlags().Uint64Var(&flagSeed, "seed", 0, "Layout seed (overrides config when non-zero)")
	rootCmd.Version = Version

	// .env supplies TERMGRAPH_* overrides; a missing file is fine.
	_ = godotenv.Load()
}

// mustLoadConfig loads configuration and applies flag overrides, exits on error.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load(flagConfigDir)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return cfg
}

// applyFlags overlays command-line flags onto cfg.
func applyFlags(cfg *config.Config) {
	if flagDataset != "" {
		cfg.Dataset = config.ExpandPath(flagDataset)
	}
	if flagMetadata != "" {
		cfg.Metadata = config.ExpandPath(flagMetadata)
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if flagEngine != "" {
		cfg.Layout.Engine = flagEngine
	}
	if flagSeed != 0 {
		cfg.Layout.Seed = flagSeed
	}
}

// mustNewLogger builds the logger configured by cfg, exits on error.
func mustNewLogger(cfg *config.Config) *zap.Logger {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		exitWithError(ExitConfigError, "creating logger: %v", err)
	}
	return logger
}

// viewOptions converts the effective config to view pipeline options.
func viewOptions(cfg *config.Config) view.Options {
	return view.Options{
		Dataset:      cfg.Dataset,
		Metadata:     cfg.Metadata,
		FeaturedName: cfg.FeaturedName,
		Engine:       cfg.Layout.Engine,
		Layout:       cfg.LayoutEngineConfig(),
		BaseRadius:   cfg.Layout.BaseRadius,
		RadiusRange:  cfg.Layout.RadiusRange,
		Scene:        cfg.SceneOptions(),
		HTML:         cfg.HTMLOptions(),
		Concurrency:  cfg.Fetch.Concurrency,
		RateLimit:    cfg.Fetch.RateLimit,
		Timeout:      cfg.FetchTimeout(),
	}
}

// mustLoadView runs the full pipeline for cfg, exits on error.
func mustLoadView(ctx context.Context, cfg *config.Config, logger *zap.Logger, m *metrics.Collector) *view.View {
	if cfg.Dataset == "" {
		fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
		os.Exit(ExitConfigError)
	}

	opts := []view.Option{view.WithLogger(logger)}
	if m != nil {
		opts = append(opts, view.WithMetrics(m))
	}
	v, err := view.Load(ctx, viewOptions(cfg), opts...)
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}
	return v
}

// exitCodeFor maps pipeline errors to exit codes.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, config.ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, term.ErrDatasetNotFound), errors.Is(err, term.ErrInvalidDataset):
		return ExitDataError
	default:
		return ExitError
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
