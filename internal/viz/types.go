// Package viz provides the glossary graph model behind the graph view.
package viz

// FallbackSummary is shown when a term's metadata could not be loaded.
const FallbackSummary = "Summary not available"

// Point is a position in layout space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node represents one glossary term in the graph.
type Node struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Sizing; fixed at build time
	ConnectionCount int     `json:"connectionCount"`
	Radius          float64 `json:"radius"`

	// Layout result, unset until Place
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Placed bool    `json:"placed"`

	// Tooltip metadata, filled by Describe
	Title   string `json:"title,omitempty"`
	Summary string `json:"summary,omitempty"`

	Featured   bool     `json:"featured,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

// DisplayTitle returns the title, or the node name when none was loaded.
func (n Node) DisplayTitle() string {
	if n.Title == "" {
		return n.Name
	}
	return n.Title
}

// DisplaySummary returns the summary, or FallbackSummary when none was loaded.
func (n Node) DisplaySummary() string {
	if n.Summary == "" {
		return FallbackSummary
	}
	return n.Summary
}

// Position returns the node's layout position.
func (n Node) Position() Point {
	return Point{X: n.X, Y: n.Y}
}

// Edge is a directed parent->child relationship between two term ids.
// Edges are never rewritten; endpoints resolve through Graph.Lookup.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Stats summarizes a graph for footers and CLI output.
type Stats struct {
	Nodes    int `json:"nodes"`
	Edges    int `json:"edges"`
	Dangling int `json:"dangling"`
	Featured int `json:"featured"`
}
