// Package view assembles one glossary graph view: load, build, size, lay
// out, describe and render, then mount the interaction state.
package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/matsen/termgraph/internal/interact"
	"github.com/matsen/termgraph/internal/layout"
	"github.com/matsen/termgraph/internal/logging"
	"github.com/matsen/termgraph/internal/metadata"
	"github.com/matsen/termgraph/internal/metrics"
	"github.com/matsen/termgraph/internal/render"
	"github.com/matsen/termgraph/internal/term"
	"github.com/matsen/termgraph/internal/tooltip"
	"github.com/matsen/termgraph/internal/viz"
)

var (
	// ErrAlreadyMounted is returned by Mount on a mounted view.
	ErrAlreadyMounted = errors.New("view already mounted")
	// ErrNotMounted is returned when interaction is attempted on an unmounted view.
	ErrNotMounted = errors.New("view not mounted")
	// ErrUnknownNode is returned for ids that are not in the graph.
	ErrUnknownNode = errors.New("unknown node")
)

// Options configures the view pipeline.
type Options struct {
	// Dataset is a file path or http(s) URL of the term records.
	Dataset string
	// Metadata is a directory or base URL of <name>.md documents. Empty
	// skips fetching; every node then shows fallback text.
	Metadata     string
	FeaturedName string

	Engine      string
	Layout      layout.Config
	BaseRadius  float64
	RadiusRange float64

	Scene render.Options
	HTML  render.HTMLOptions

	Concurrency int
	RateLimit   float64
	Timeout     time.Duration
}

// DefaultOptions returns the default pipeline options.
func DefaultOptions() Options {
	lc := layout.DefaultConfig()
	return Options{
		Engine:      "force",
		Layout:      lc,
		BaseRadius:  layout.DefaultBaseRadius,
		RadiusRange: layout.DefaultRadiusRange,
		Scene:       render.DefaultOptions(lc.Width, lc.Height),
		HTML:        render.DefaultHTMLOptions(),
		Concurrency: metadata.DefaultConcurrency,
		RateLimit:   metadata.DefaultRateLimit,
		Timeout:     metadata.DefaultTimeout,
	}
}

// withDefaults fills unset groups of options from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Engine == "" {
		o.Engine = d.Engine
	}
	if o.Layout.Width == 0 {
		o.Layout.Width = d.Layout.Width
	}
	if o.Layout.Height == 0 {
		o.Layout.Height = d.Layout.Height
	}
	if o.BaseRadius == 0 {
		o.BaseRadius = d.BaseRadius
	}
	if o.Scene.Width == 0 || o.Scene.Height == 0 {
		colorByCategory := o.Scene.ColorByCategory
		o.Scene = render.DefaultOptions(o.Layout.Width, o.Layout.Height)
		o.Scene.ColorByCategory = colorByCategory
	}
	if o.HTML.MinZoom == 0 {
		o.HTML = d.HTML
	}
	if o.Concurrency == 0 {
		o.Concurrency = d.Concurrency
	}
	if o.RateLimit == 0 {
		o.RateLimit = d.RateLimit
	}
	if o.Timeout == 0 {
		o.Timeout = d.Timeout
	}
	return o
}

// View is one graph view instance. The graph, positions and scene are
// fixed once built; interaction state exists only while mounted.
type View struct {
	id      string
	opts    Options
	logger  *zap.Logger
	metrics *metrics.Collector
	fetcher metadata.Fetcher
	engine  layout.Engine

	graph  *viz.Graph
	scene  *render.Scene
	report metadata.Report

	mu         sync.Mutex
	controller *interact.Controller
	tooltip    *tooltip.Presenter
	onSelect   func(id string)
}

// Option configures a View.
type Option func(*View)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(v *View) {
		v.logger = logger
	}
}

// WithMetrics records pipeline metrics on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(v *View) {
		v.metrics = c
	}
}

// WithFetcher overrides the metadata fetcher chosen from Options.Metadata.
func WithFetcher(f metadata.Fetcher) Option {
	return func(v *View) {
		v.fetcher = f
	}
}

// WithEngine overrides the layout engine chosen from Options.Engine.
func WithEngine(e layout.Engine) Option {
	return func(v *View) {
		v.engine = e
	}
}

// WithOnSelect registers a callback fired when a node is pinned (its id)
// or unpinned ("") on the mounted controller.
func WithOnSelect(fn func(id string)) Option {
	return func(v *View) {
		v.onSelect = fn
	}
}

// Load reads the dataset named by opts.Dataset and builds a view from it.
// A dataset failure is fatal for the view.
func Load(ctx context.Context, opts Options, viewOpts ...Option) (*View, error) {
	if opts.Dataset == "" {
		return nil, fmt.Errorf("no dataset configured")
	}
	records, err := term.Load(ctx, opts.Dataset)
	if err != nil {
		return nil, fmt.Errorf("loading dataset: %w", err)
	}
	return Build(ctx, records, opts, viewOpts...)
}

// Build runs the pipeline on records: build the model, size nodes, lay
// out, fetch metadata for every node behind one barrier, then render.
func Build(ctx context.Context, records []term.Record, opts Options, viewOpts ...Option) (*View, error) {
	opts = opts.withDefaults()
	v := &View{
		id:     "termgraph-" + uuid.NewString(),
		opts:   opts,
		logger: zap.NewNop(),
	}
	for _, opt := range viewOpts {
		opt(v)
	}
	v.logger = logging.OrNop(v.logger)

	var buildOpts []viz.BuildOption
	if opts.FeaturedName != "" {
		buildOpts = append(buildOpts, viz.WithFeaturedName(opts.FeaturedName))
	}
	v.graph = viz.Build(records, buildOpts...)
	v.graph.AssignRadii(opts.BaseRadius, opts.RadiusRange)

	stats := v.graph.Stats()
	if stats.Dangling > 0 {
		v.logger.Warn("dataset has dangling edges; they will not be drawn",
			zap.Int("dangling", stats.Dangling))
	}
	if v.metrics != nil {
		v.metrics.SetGraph(stats)
	}

	if err := v.layout(ctx); err != nil {
		return nil, err
	}
	v.describe(ctx)

	scene, err := render.BuildScene(v.graph, opts.Scene)
	if err != nil {
		return nil, fmt.Errorf("building scene: %w", err)
	}
	v.scene = scene

	v.logger.Info("view built",
		zap.String("view", v.id),
		zap.Int("nodes", stats.Nodes),
		zap.Int("edges", stats.Edges),
		zap.Int("metadataFallbacks", v.report.Failed),
	)
	return v, nil
}

func (v *View) layout(ctx context.Context) error {
	engine := v.engine
	if engine == nil {
		var err error
		engine, err = layout.New(v.opts.Engine, v.opts.Layout, layout.WithLogger(v.logger))
		if err != nil {
			return err
		}
	}

	start := time.Now()
	positions, err := engine.Compute(ctx, v.graph)
	if err != nil {
		return fmt.Errorf("computing layout: %w", err)
	}
	if v.metrics != nil {
		v.metrics.ObserveLayout(time.Since(start))
	}
	v.graph.Place(positions)
	return nil
}

// describe fetches metadata for every node name and waits for all fetches
// to settle. Failures become fallback text.
func (v *View) describe(ctx context.Context) {
	fetcher := v.fetcher
	if fetcher == nil && v.opts.Metadata != "" {
		fetcher = metadata.NewFetcher(v.opts.Metadata,
			metadata.WithHTTPClient(&http.Client{Timeout: v.opts.Timeout}),
			metadata.WithRateLimit(v.opts.RateLimit),
		)
	}
	if fetcher == nil {
		v.graph.Describe(metadata.Lookup(nil))
		return
	}

	loaderOpts := []metadata.LoaderOption{
		metadata.WithConcurrency(v.opts.Concurrency),
		metadata.WithLogger(v.logger),
	}
	if v.metrics != nil {
		loaderOpts = append(loaderOpts, metadata.WithResultHook(v.metrics.ObserveMetadata))
	}

	results, report := metadata.NewLoader(fetcher, loaderOpts...).LoadAll(ctx, v.graph.Names())
	v.report = report
	v.graph.Describe(metadata.Lookup(results))
}

// ID returns the view's unique DOM id.
func (v *View) ID() string {
	return v.id
}

// Graph returns the built graph.
func (v *View) Graph() *viz.Graph {
	return v.graph
}

// Scene returns the rendered scene.
func (v *View) Scene() *render.Scene {
	return v.scene
}

// Report returns the metadata load summary.
func (v *View) Report() metadata.Report {
	return v.report
}

// Mount attaches fresh interaction state to the view.
func (v *View) Mount() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.controller != nil {
		return ErrAlreadyMounted
	}

	v.controller = interact.NewController(v.graph)
	if v.onSelect != nil {
		v.controller.OnSelect(v.onSelect)
	}
	v.tooltip = tooltip.NewPresenter(v.controller,
		tooltip.WithOffset(v.opts.HTML.TooltipOffset),
		tooltip.WithFades(v.opts.HTML.FadeIn, v.opts.HTML.FadeOut),
	)
	if v.metrics != nil {
		v.metrics.ViewsMounted.Inc()
	}
	v.logger.Debug("view mounted", zap.String("view", v.id))
	return nil
}

// Unmount discards interaction state. It is safe to call more than once.
func (v *View) Unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.controller == nil {
		return
	}

	v.controller.Reset()
	v.tooltip.Hide()
	v.controller, v.tooltip = nil, nil
	if v.metrics != nil {
		v.metrics.ViewsMounted.Dec()
	}
	v.logger.Debug("view unmounted", zap.String("view", v.id))
}

// Mounted reports whether the view has interaction state.
func (v *View) Mounted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.controller != nil
}

// Controller returns the interaction controller of a mounted view.
func (v *View) Controller() (*interact.Controller, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.controller == nil {
		return nil, ErrNotMounted
	}
	return v.controller, nil
}

// Tooltip returns the tooltip presenter of a mounted view.
func (v *View) Tooltip() (*tooltip.Presenter, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.tooltip == nil {
		return nil, ErrNotMounted
	}
	return v.tooltip, nil
}

// Neighbors returns the sorted neighbor ids of id.
func (v *View) Neighbors(id string) ([]string, error) {
	if !v.graph.Has(id) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	return v.graph.Adjacency()[id], nil
}

// HTML renders the view as a self-contained page.
func (v *View) HTML() (string, error) {
	return render.GenerateHTML(render.Page{ID: v.id, Graph: v.graph, Scene: v.scene}, v.opts.HTML)
}

// WriteSVG writes the view's scene as a standalone SVG.
func (v *View) WriteSVG(w io.Writer) error {
	return render.WriteSVG(w, v.scene)
}
