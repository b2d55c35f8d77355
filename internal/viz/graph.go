package viz

import (
	"sort"
	"strings"

	"github.com/matsen/termgraph/internal/term"
)

// Graph holds the node and edge sets of one graph view. Nodes are addressed
// through an id index; edges store ids only.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	index map[string]int
}

// BuildOption configures Build.
type BuildOption func(*buildConfig)

type buildConfig struct {
	featuredName string
}

// WithFeaturedName marks the term with this exact name as featured, in
// addition to records that set the featured flag themselves.
func WithFeaturedName(name string) BuildOption {
	return func(c *buildConfig) {
		c.featuredName = name
	}
}

// Build converts term records into a graph: one node per record and one
// edge per (record, child) pair. Child ids are not checked against the node
// set; unresolvable edges are skipped later by layout and rendering.
func Build(records []term.Record, opts ...BuildOption) *Graph {
	var cfg buildConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	g := &Graph{
		Nodes: make([]Node, 0, len(records)),
		Edges: make([]Edge, 0),
		index: make(map[string]int, len(records)),
	}

	for _, rec := range records {
		g.Nodes = append(g.Nodes, newNode(rec, cfg))
		if _, seen := g.index[rec.ID]; !seen {
			g.index[rec.ID] = len(g.Nodes) - 1
		}
		for _, child := range rec.Children {
			g.Edges = append(g.Edges, Edge{Source: rec.ID, Target: child})
		}
	}

	return g
}

// newNode creates a graph node from a term record.
func newNode(rec term.Record, cfg buildConfig) Node {
	return Node{
		ID:              rec.ID,
		Name:            rec.Name,
		ConnectionCount: len(rec.Children),
		Featured:        rec.Featured || (cfg.featuredName != "" && rec.Name == cfg.featuredName),
		Categories:      rec.Categories,
	}
}

// IsEmpty returns true if the graph has no nodes.
func (g *Graph) IsEmpty() bool {
	return len(g.Nodes) == 0
}

// Lookup returns the node with the given id. With duplicate ids the first
// record wins.
func (g *Graph) Lookup(id string) (*Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return &g.Nodes[i], true
}

// Has reports whether id resolves to a node.
func (g *Graph) Has(id string) bool {
	_, ok := g.index[id]
	return ok
}

// Resolve returns both endpoints of e, or ok=false when either is dangling.
func (g *Graph) Resolve(e Edge) (source, target *Node, ok bool) {
	source, sok := g.Lookup(e.Source)
	target, tok := g.Lookup(e.Target)
	if !sok || !tok {
		return nil, nil, false
	}
	return source, target, true
}

// UniqueIDs returns node ids in input order, each id once.
func (g *Graph) UniqueIDs() []string {
	ids := make([]string, 0, len(g.index))
	for i, n := range g.Nodes {
		if g.index[n.ID] == i {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// Neighbors returns the ids connected to id by exactly one edge, in either
// direction. Dangling endpoints and unknown ids contribute nothing.
func (g *Graph) Neighbors(id string) map[string]bool {
	neighbors := make(map[string]bool)
	if !g.Has(id) {
		return neighbors
	}

	for _, e := range g.Edges {
		switch {
		case e.Source == id && e.Target != id && g.Has(e.Target):
			neighbors[e.Target] = true
		case e.Target == id && e.Source != id && g.Has(e.Source):
			neighbors[e.Source] = true
		}
	}
	return neighbors
}

// Adjacency returns the sorted neighbor list of every node id.
func (g *Graph) Adjacency() map[string][]string {
	adj := make(map[string][]string, len(g.index))
	for _, id := range g.UniqueIDs() {
		adj[id] = []string{}
	}

	seen := make(map[[2]string]bool)
	add := func(a, b string) {
		key := [2]string{a, b}
		if seen[key] {
			return
		}
		seen[key] = true
		adj[a] = append(adj[a], b)
	}

	for _, e := range g.Edges {
		if e.Source == e.Target || !g.Has(e.Source) || !g.Has(e.Target) {
			continue
		}
		add(e.Source, e.Target)
		add(e.Target, e.Source)
	}

	for id := range adj {
		sort.Strings(adj[id])
	}
	return adj
}

// MaxConnectionCount returns the largest connection count in the graph.
func (g *Graph) MaxConnectionCount() int {
	maxCount := 0
	for _, n := range g.Nodes {
		if n.ConnectionCount > maxCount {
			maxCount = n.ConnectionCount
		}
	}
	return maxCount
}

// RadiusScale returns the linear count->radius mapping used for node sizes:
// base + (count/maxCount) * span. All nodes get base when maxCount is 0.
func RadiusScale(base, span float64, maxCount int) func(count int) float64 {
	return func(count int) float64 {
		if maxCount <= 0 {
			return base
		}
		return base + float64(count)/float64(maxCount)*span
	}
}

// AssignRadii sizes every node by relative connectivity.
func (g *Graph) AssignRadii(base, span float64) {
	scale := RadiusScale(base, span, g.MaxConnectionCount())
	for i := range g.Nodes {
		g.Nodes[i].Radius = scale(g.Nodes[i].ConnectionCount)
	}
}

// Place records layout positions. Nodes missing from positions stay unplaced.
func (g *Graph) Place(positions map[string]Point) {
	for i := range g.Nodes {
		p, ok := positions[g.Nodes[i].ID]
		if !ok {
			continue
		}
		g.Nodes[i].X = p.X
		g.Nodes[i].Y = p.Y
		g.Nodes[i].Placed = true
	}
}

// Describe fills title and summary from a lookup keyed by node name.
// Empty values fall back to the node name and FallbackSummary.
func (g *Graph) Describe(lookup func(name string) (title, summary string)) {
	for i := range g.Nodes {
		title, summary := lookup(g.Nodes[i].Name)
		if title == "" {
			title = g.Nodes[i].Name
		}
		if summary == "" {
			summary = FallbackSummary
		}
		g.Nodes[i].Title = title
		g.Nodes[i].Summary = summary
	}
}

// Names returns the distinct node names in input order.
func (g *Graph) Names() []string {
	seen := make(map[string]bool, len(g.Nodes))
	names := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if seen[n.Name] {
			continue
		}
		seen[n.Name] = true
		names = append(names, n.Name)
	}
	return names
}

// Search returns the ids of nodes whose name contains query, case-insensitively.
func (g *Graph) Search(query string) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	var ids []string
	for _, id := range g.UniqueIDs() {
		n, _ := g.Lookup(id)
		if strings.Contains(strings.ToLower(n.Name), query) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Stats counts nodes, edges, and edges with an unresolvable endpoint.
func (g *Graph) Stats() Stats {
	s := Stats{Nodes: len(g.Nodes), Edges: len(g.Edges)}
	for _, e := range g.Edges {
		if _, _, ok := g.Resolve(e); !ok {
			s.Dangling++
		}
	}
	for _, n := range g.Nodes {
		if n.Featured {
			s.Featured++
		}
	}
	return s
}
