// Package config handles termgraph configuration: defaults, the global and
// local YAML files, and TERMGRAPH_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/matsen/termgraph/internal/layout"
	"github.com/matsen/termgraph/internal/metadata"
	"github.com/matsen/termgraph/internal/render"
	"github.com/matsen/termgraph/internal/tooltip"
	"github.com/matsen/termgraph/internal/viz"
)

// Config is the effective termgraph configuration.
type Config struct {
	Dataset      string `yaml:"dataset,omitempty" json:"dataset,omitempty"`
	Metadata     string `yaml:"metadata,omitempty" json:"metadata,omitempty"`
	FeaturedName string `yaml:"featured_name,omitempty" json:"featured_name,omitempty"`

	Layout LayoutConfig `yaml:"layout" json:"layout"`
	Render RenderConfig `yaml:"render" json:"render"`
	Fetch  FetchConfig  `yaml:"fetch" json:"fetch"`
	Server ServerConfig `yaml:"server" json:"server"`
	Log    LogConfig    `yaml:"log" json:"log"`
}

// LayoutConfig holds the layout engine constants.
type LayoutConfig struct {
	Engine         string  `yaml:"engine" json:"engine" validate:"oneof=force circle"`
	Width          float64 `yaml:"width" json:"width" validate:"gt=0"`
	Height         float64 `yaml:"height" json:"height" validate:"gt=0"`
	Iterations     int     `yaml:"iterations" json:"iterations" validate:"min=1,max=100000"`
	LinkDistance   float64 `yaml:"link_distance" json:"link_distance" validate:"gt=0"`
	Charge         float64 `yaml:"charge" json:"charge"`
	Theta          float64 `yaml:"theta" json:"theta" validate:"gte=0,lte=2"`
	CollidePadding float64 `yaml:"collide_padding" json:"collide_padding" validate:"gte=0"`
	Epsilon        float64 `yaml:"epsilon" json:"epsilon" validate:"gte=0"`
	Seed           uint64  `yaml:"seed" json:"seed"`
	BaseRadius     float64 `yaml:"base_radius" json:"base_radius" validate:"gt=0"`
	RadiusRange    float64 `yaml:"radius_range" json:"radius_range" validate:"gte=0"`
}

// RenderConfig holds page and tooltip settings.
type RenderConfig struct {
	Title           string  `yaml:"title" json:"title"`
	MinZoom         float64 `yaml:"min_zoom" json:"min_zoom" validate:"gt=0"`
	MaxZoom         float64 `yaml:"max_zoom" json:"max_zoom" validate:"gtefield=MinZoom"`
	InitialZoom     float64 `yaml:"initial_zoom" json:"initial_zoom" validate:"gtefield=MinZoom,ltefield=MaxZoom"`
	ColorByCategory bool    `yaml:"color_by_category" json:"color_by_category"`
	Search          bool    `yaml:"search" json:"search"`
	Legend          bool    `yaml:"legend" json:"legend"`
	FadeInMS        int     `yaml:"fade_in_ms" json:"fade_in_ms" validate:"gte=0"`
	FadeOutMS       int     `yaml:"fade_out_ms" json:"fade_out_ms" validate:"gte=0"`
	TooltipOffsetX  float64 `yaml:"tooltip_offset_x" json:"tooltip_offset_x"`
	TooltipOffsetY  float64 `yaml:"tooltip_offset_y" json:"tooltip_offset_y"`
}

// FetchConfig bounds metadata and dataset fetching.
type FetchConfig struct {
	Concurrency    int     `yaml:"concurrency" json:"concurrency" validate:"min=1,max=256"`
	RateLimit      float64 `yaml:"rate_limit" json:"rate_limit" validate:"gt=0"`
	TimeoutSeconds int     `yaml:"timeout_seconds" json:"timeout_seconds" validate:"min=1"`
}

// ServerConfig configures `termgraph serve`.
type ServerConfig struct {
	Addr           string   `yaml:"addr" json:"addr" validate:"required,hostname_port"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty" json:"allowed_origins,omitempty"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	Development bool   `yaml:"development" json:"development"`
}

// Environment overrides, also read from .env.
const (
	EnvDataset  = "TERMGRAPH_DATASET"
	EnvMetadata = "TERMGRAPH_METADATA"
	EnvAddr     = "TERMGRAPH_ADDR"
	EnvLogLevel = "TERMGRAPH_LOG_LEVEL"
	EnvSeed     = "TERMGRAPH_SEED"
	EnvEngine   = "TERMGRAPH_LAYOUT"
)

// DefaultAddr is the default listen address for serve.
const DefaultAddr = "localhost:8080"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

var validate = validator.New()

// Default returns the built-in configuration.
func Default() *Config {
	lc := layout.DefaultConfig()
	return &Config{
		Layout: LayoutConfig{
			Engine:         "force",
			Width:          lc.Width,
			Height:         lc.Height,
			Iterations:     lc.Iterations,
			LinkDistance:   lc.LinkDistance,
			Charge:         lc.Charge,
			Theta:          lc.Theta,
			CollidePadding: lc.CollidePadding,
			Epsilon:        lc.Epsilon,
			Seed:           lc.Seed,
			BaseRadius:     layout.DefaultBaseRadius,
			RadiusRange:    layout.DefaultRadiusRange,
		},
		Render: RenderConfig{
			Title:          render.DefaultTitle,
			MinZoom:        render.DefaultMinZoom,
			MaxZoom:        render.DefaultMaxZoom,
			InitialZoom:    render.DefaultInitialZoom,
			Search:         true,
			Legend:         true,
			FadeInMS:       int(tooltip.DefaultFadeIn.Milliseconds()),
			FadeOutMS:      int(tooltip.DefaultFadeOut.Milliseconds()),
			TooltipOffsetX: tooltip.DefaultOffset.X,
			TooltipOffsetY: tooltip.DefaultOffset.Y,
		},
		Fetch: FetchConfig{
			Concurrency:    metadata.DefaultConcurrency,
			RateLimit:      metadata.DefaultRateLimit,
			TimeoutSeconds: int(metadata.DefaultTimeout.Seconds()),
		},
		Server: ServerConfig{Addr: DefaultAddr},
		Log:    LogConfig{Level: "info"},
	}
}

// Load builds the effective config: defaults, then the global file, then
// termgraph.yml in dir, then environment overrides. Missing files are
// skipped. The result is validated.
func Load(dir string) (*Config, error) {
	cfg := Default()

	for _, path := range []string{GlobalConfigPath(), LocalConfigPath(dir)} {
		if path == "" {
			continue
		}
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.Dataset = ExpandPath(cfg.Dataset)
	cfg.Metadata = ExpandPath(cfg.Metadata)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFile overlays the keys present in a YAML file onto c.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv applies TERMGRAPH_* overrides using lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDataset); ok && v != "" {
		c.Dataset = v
	}
	if v, ok := lookup(EnvMetadata); ok && v != "" {
		c.Metadata = v
	}
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v, ok := lookup(EnvEngine); ok && v != "" {
		c.Layout.Engine = v
	}
	if v, ok := lookup(EnvSeed); ok && v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an unsigned integer", ErrInvalidConfig, EnvSeed, v)
		}
		c.Layout.Seed = seed
	}
	return nil
}

// Validate checks every field constraint.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, formatValidationError(err))
	}
	return nil
}

// formatValidationError reports the first failed constraint in a readable form.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	for _, e := range validationErrs {
		field := e.Namespace()
		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min", "gte":
			return fmt.Errorf("%s: must be at least %s", field, e.Param())
		case "max", "lte":
			return fmt.Errorf("%s: must not exceed %s", field, e.Param())
		case "gt":
			return fmt.Errorf("%s: must be greater than %s", field, e.Param())
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s]", field, e.Param())
		case "gtefield", "ltefield":
			return fmt.Errorf("%s: out of range relative to %s", field, e.Param())
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}
	return err
}

// Save writes c as YAML to path, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// LayoutEngineConfig converts to the layout package's config.
func (c *Config) LayoutEngineConfig() layout.Config {
	return layout.Config{
		Width:          c.Layout.Width,
		Height:         c.Layout.Height,
		Iterations:     c.Layout.Iterations,
		LinkDistance:   c.Layout.LinkDistance,
		Charge:         c.Layout.Charge,
		Theta:          c.Layout.Theta,
		CollidePadding: c.Layout.CollidePadding,
		Epsilon:        c.Layout.Epsilon,
		Seed:           c.Layout.Seed,
	}
}

// SceneOptions converts to scene construction options.
func (c *Config) SceneOptions() render.Options {
	opts := render.DefaultOptions(c.Layout.Width, c.Layout.Height)
	opts.ColorByCategory = c.Render.ColorByCategory
	return opts
}

// HTMLOptions converts to page generation options.
func (c *Config) HTMLOptions() render.HTMLOptions {
	return render.HTMLOptions{
		Title:         c.Render.Title,
		MinZoom:       c.Render.MinZoom,
		MaxZoom:       c.Render.MaxZoom,
		InitialZoom:   c.Render.InitialZoom,
		TooltipOffset: viz.Point{X: c.Render.TooltipOffsetX, Y: c.Render.TooltipOffsetY},
		FadeIn:        time.Duration(c.Render.FadeInMS) * time.Millisecond,
		FadeOut:       time.Duration(c.Render.FadeOutMS) * time.Millisecond,
		ShowSearch:    c.Render.Search,
		ShowLegend:    c.Render.Legend,
	}
}

// FetchTimeout returns the per-request timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
