package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matsen/termgraph/internal/viz"
)

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestCollector(t *testing.T) {
	c := NewCollector()

	c.ObserveMetadata("AI", nil)
	c.ObserveMetadata("ML", nil)
	c.ObserveMetadata("Ghost", errors.New("not found"))
	c.ObserveLayout(25 * time.Millisecond)
	c.SetGraph(viz.Stats{Nodes: 12, Edges: 15, Dangling: 2})
	c.ObserveRequest(http.MethodGet, "/graph.json", http.StatusOK, time.Millisecond)
	c.ViewsMounted.Inc()

	body := scrape(t, c)

	for _, want := range []string{
		`termgraph_metadata_fetches_total{result="ok"} 2`,
		`termgraph_metadata_fetches_total{result="fallback"} 1`,
		`termgraph_graph_nodes 12`,
		`termgraph_graph_edges 15`,
		`termgraph_graph_dangling_edges 2`,
		`termgraph_layout_duration_seconds_count 1`,
		`termgraph_http_requests_total{method="GET",route="/graph.json",status="200"} 1`,
		`termgraph_views_mounted 1`,
	} {
		assert.True(t, strings.Contains(body, want), "metrics missing %q", want)
	}
}

func TestCollector_Independent(t *testing.T) {
	a := NewCollector()
	b := NewCollector()

	a.ObserveMetadata("AI", nil)

	assert.Contains(t, scrape(t, a), `termgraph_metadata_fetches_total{result="ok"} 1`)
	assert.NotContains(t, scrape(t, b), `result="ok"`)
}
