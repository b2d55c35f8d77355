package metadata

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/matsen/termgraph/internal/viz"
)

// DefaultConcurrency bounds simultaneous metadata fetches.
const DefaultConcurrency = 8

// Report summarizes one LoadAll call.
type Report struct {
	Loaded   int              `json:"loaded"`
	Failed   int              `json:"failed"`
	Failures map[string]error `json:"-"`
}

// Loader fetches metadata for many terms at once.
type Loader struct {
	fetcher     Fetcher
	concurrency int
	logger      *zap.Logger
	onResult    func(name string, err error)
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithConcurrency sets how many fetches run at once.
func WithConcurrency(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// WithLogger sets the logger for per-term failures.
func WithLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithResultHook registers a callback invoked once per term after its
// fetch settles; err is nil on success.
func WithResultHook(fn func(name string, err error)) LoaderOption {
	return func(l *Loader) {
		l.onResult = fn
	}
}

// NewLoader creates a loader over fetcher.
func NewLoader(fetcher Fetcher, opts ...LoaderOption) *Loader {
	l := &Loader{
		fetcher:     fetcher,
		concurrency: DefaultConcurrency,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Fallback is the metadata shown for a term whose document could not be used.
func Fallback(name string) Metadata {
	return Metadata{Title: name, Summary: viz.FallbackSummary}
}

// Load fetches and parses the document for one term. Missing fields are
// filled with fallbacks; a missing or unreadable document is an error.
func (l *Loader) Load(ctx context.Context, name string) (Metadata, error) {
	data, err := l.fetcher.Fetch(ctx, name)
	if err != nil {
		return Fallback(name), err
	}

	meta, ok := Parse(string(data))
	if !ok {
		return Fallback(name), fmt.Errorf("%s: no front matter block", name)
	}
	if meta.Title == "" {
		meta.Title = name
	}
	if meta.Summary == "" {
		meta.Summary = viz.FallbackSummary
	}
	return meta, nil
}

// LoadAll fetches metadata for every name concurrently and returns once all
// fetches have settled. Each failure is replaced by Fallback(name); no single
// failure aborts the others. The result has one entry per name.
func (l *Loader) LoadAll(ctx context.Context, names []string) (map[string]Metadata, Report) {
	results := make(map[string]Metadata, len(names))
	report := Report{Failures: make(map[string]error)}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(l.concurrency)

	for _, name := range names {
		g.Go(func() error {
			meta, err := l.Load(ctx, name)
			if err != nil {
				l.logger.Debug("metadata unavailable, using fallback",
					zap.String("term", name),
					zap.Error(err),
				)
			}
			if l.onResult != nil {
				l.onResult(name, err)
			}

			mu.Lock()
			defer mu.Unlock()
			results[name] = meta
			if err != nil {
				report.Failed++
				report.Failures[name] = err
			} else {
				report.Loaded++
			}
			return nil
		})
	}
	_ = g.Wait()

	if report.Failed > 0 {
		l.logger.Info("metadata loaded with fallbacks",
			zap.Int("loaded", report.Loaded),
			zap.Int("failed", report.Failed),
		)
	}
	return results, report
}

// Lookup adapts a LoadAll result to viz.Graph.Describe.
func Lookup(results map[string]Metadata) func(name string) (string, string) {
	return func(name string) (string, string) {
		m, ok := results[name]
		if !ok {
			m = Fallback(name)
		}
		return m.Title, m.Summary
	}
}
