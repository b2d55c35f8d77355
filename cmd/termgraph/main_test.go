package main

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/matsen/termgraph/internal/config"
	"github.com/matsen/termgraph/internal/metadata"
	"github.com/matsen/termgraph/internal/term"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid config", fmt.Errorf("loading: %w", config.ErrInvalidConfig), ExitConfigError},
		{"missing dataset", fmt.Errorf("loading dataset: %w", term.ErrDatasetNotFound), ExitDataError},
		{"malformed dataset", fmt.Errorf("loading dataset: %w", term.ErrInvalidDataset), ExitDataError},
		{"other", errors.New("boom"), ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestApplyFlags(t *testing.T) {
	defer func() {
		flagDataset, flagMetadata, flagLogLevel, flagEngine, flagSeed = "", "", "", "", 0
	}()

	cfg := config.Default()
	cfg.Dataset = "from-config.json"
	applyFlags(cfg)
	if cfg.Dataset != "from-config.json" {
		t.Errorf("unset flag overrode dataset: %q", cfg.Dataset)
	}

	flagDataset = "glossary.json"
	flagMetadata = "terms"
	flagLogLevel = "debug"
	flagEngine = "circle"
	flagSeed = 7
	applyFlags(cfg)

	if cfg.Dataset != "glossary.json" || cfg.Metadata != "terms" {
		t.Errorf("paths = %q, %q", cfg.Dataset, cfg.Metadata)
	}
	if cfg.Log.Level != "debug" || cfg.Layout.Engine != "circle" || cfg.Layout.Seed != 7 {
		t.Errorf("overrides not applied: %+v %+v", cfg.Log, cfg.Layout)
	}
}

func TestViewOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Dataset = "glossary.json"
	cfg.FeaturedName = "AI"
	cfg.Fetch.TimeoutSeconds = 3
	cfg.Render.ColorByCategory = true

	opts := viewOptions(cfg)

	if opts.Dataset != "glossary.json" || opts.FeaturedName != "AI" {
		t.Errorf("opts = %+v", opts)
	}
	if opts.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, want 3s", opts.Timeout)
	}
	if !opts.Scene.ColorByCategory {
		t.Error("ColorByCategory not carried into scene options")
	}
	if opts.Layout.Width != cfg.Layout.Width || opts.Layout.Iterations != cfg.Layout.Iterations {
		t.Errorf("layout = %+v", opts.Layout)
	}
	if opts.HTML.InitialZoom != cfg.Render.InitialZoom {
		t.Errorf("InitialZoom = %v, want %v", opts.HTML.InitialZoom, cfg.Render.InitialZoom)
	}
}

func TestNewMetadataReport(t *testing.T) {
	got := newMetadataReport(metadata.Report{
		Loaded: 1,
		Failed: 2,
		Failures: map[string]error{
			"Zeta":  metadata.ErrNotFound,
			"Alpha": metadata.ErrFetchFailed,
		},
	})
	want := MetadataReport{Loaded: 1, Failed: 2, Fallbacks: []string{"Alpha", "Zeta"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("newMetadataReport() = %+v, want %+v", got, want)
	}
}

func TestTruncateList(t *testing.T) {
	tests := []struct {
		items []string
		max   int
		want  string
	}{
		{nil, 3, ""},
		{[]string{"a", "b"}, 3, "a, b"},
		{[]string{"a", "b", "c", "d"}, 2, "a, b, ... (2 more)"},
	}

	for _, tt := range tests {
		if got := truncateList(tt.items, tt.max); got != tt.want {
			t.Errorf("truncateList(%v, %d) = %q, want %q", tt.items, tt.max, got, tt.want)
		}
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"build", "config", "layout", "neighbors", "render", "serve"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
}
