package metadata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 10 * time.Second

	// DefaultRateLimit caps remote metadata requests per second.
	DefaultRateLimit = 20.0

	// MaxDocumentSize bounds how much of a metadata document is read.
	MaxDocumentSize = 1024 * 1024
)

var (
	// ErrNotFound indicates there is no metadata document for a term.
	ErrNotFound = errors.New("metadata not found")

	// ErrFetchFailed indicates the metadata source returned an error.
	ErrFetchFailed = errors.New("metadata fetch failed")
)

// Fetcher retrieves the raw metadata document for a term name.
type Fetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// FileName returns the document name for a term: the name with path
// separators replaced, plus ".md".
func FileName(name string) string {
	return strings.NewReplacer("/", "-", "\\", "-").Replace(name) + ".md"
}

// DirFetcher reads documents from a local content directory.
type DirFetcher struct {
	Root string
}

// Fetch reads <root>/<name>.md.
func (d DirFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(d.Root, FileName(name))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// HTTPFetcher is a rate-limited client for documents served under a base URL.
type HTTPFetcher struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(f *HTTPFetcher) {
		f.httpClient = hc
	}
}

// WithRateLimit sets the request rate in requests per second.
func WithRateLimit(perSecond float64) HTTPOption {
	return func(f *HTTPFetcher) {
		f.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// NewHTTPFetcher creates a fetcher for <baseURL>/<name>.md.
func NewHTTPFetcher(baseURL string, opts ...HTTPOption) *HTTPFetcher {
	f := &HTTPFetcher{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads the document for name.
func (f *HTTPFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	u := f.baseURL + "/" + url.PathEscape(FileName(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, u)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d for %s", ErrFetchFailed, resp.StatusCode, u)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", u, err)
	}
	return data, nil
}

// NewFetcher picks an HTTPFetcher for http(s) sources and a DirFetcher otherwise.
func NewFetcher(source string, opts ...HTTPOption) Fetcher {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return NewHTTPFetcher(source, opts...)
	}
	return DirFetcher{Root: source}
}
