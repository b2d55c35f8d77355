// Package render draws a laid-out graph as an SVG scene and wraps it in a
// self-contained interactive HTML page.
package render

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/matsen/termgraph/internal/viz"
)

const (
	DefaultNodeFill     = "#93C5FD"
	DefaultFeaturedFill = "#F97316"
	DefaultNodeStroke   = "#3B82F6"
	DefaultLabelColor   = "#1E3A8A"
	DefaultLabelGap     = 4.0
	MinFontSize         = 8.0
)

// Palette colors categories in sorted category order.
var Palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// ErrNilGraph is returned when rendering without a graph.
var ErrNilGraph = errors.New("graph cannot be nil")

// Options configures scene construction.
type Options struct {
	Width  float64
	Height float64

	NodeFill     string
	FeaturedFill string
	NodeStroke   string
	LabelColor   string
	LabelGap     float64

	// ColorByCategory fills non-featured nodes by their first category.
	ColorByCategory bool
}

// DefaultOptions returns the default scene options for a canvas size.
func DefaultOptions(width, height float64) Options {
	return Options{
		Width:        width,
		Height:       height,
		NodeFill:     DefaultNodeFill,
		FeaturedFill: DefaultFeaturedFill,
		NodeStroke:   DefaultNodeStroke,
		LabelColor:   DefaultLabelColor,
		LabelGap:     DefaultLabelGap,
	}
}

// Line is one drawn edge. Edge is the index into Graph.Edges.
type Line struct {
	Edge   int     `json:"edge"`
	Source string  `json:"source"`
	Target string  `json:"target"`
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
	X2     float64 `json:"x2"`
	Y2     float64 `json:"y2"`
}

// Circle is one drawn node.
type Circle struct {
	ID       string  `json:"id"`
	CX       float64 `json:"cx"`
	CY       float64 `json:"cy"`
	R        float64 `json:"r"`
	Fill     string  `json:"fill"`
	Featured bool    `json:"featured,omitempty"`
	Category string  `json:"category,omitempty"`
}

// Label is the name text under a node, anchored at its top center.
type Label struct {
	ID       string  `json:"id"`
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	FontSize float64 `json:"fontSize"`
}

// LegendEntry maps a category to its fill color.
type LegendEntry struct {
	Category string `json:"category"`
	Color    string `json:"color"`
}

// Scene is everything drawn inside the view's single viewport group.
type Scene struct {
	Width      float64       `json:"width"`
	Height     float64       `json:"height"`
	Stroke     string        `json:"stroke"`
	LabelColor string        `json:"labelColor"`
	Lines      []Line        `json:"lines"`
	Circles    []Circle      `json:"circles"`
	Labels     []Label       `json:"labels"`
	Legend     []LegendEntry `json:"legend,omitempty"`
	Stats      viz.Stats     `json:"stats"`
}

// IsEmpty reports whether nothing would be drawn.
func (s *Scene) IsEmpty() bool {
	return s == nil || len(s.Circles) == 0
}

// BuildScene converts a placed graph into drawable primitives. Edges whose
// endpoints are missing or unplaced are skipped. Each id is drawn once, at
// the first node carrying it.
func BuildScene(g *viz.Graph, opts Options) (*Scene, error) {
	if g == nil {
		return nil, ErrNilGraph
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %vx%v", opts.Width, opts.Height)
	}

	scene := &Scene{
		Width:      opts.Width,
		Height:     opts.Height,
		Stroke:     opts.NodeStroke,
		LabelColor: opts.LabelColor,
		Lines:      make([]Line, 0, len(g.Edges)),
		Circles:    make([]Circle, 0, len(g.Nodes)),
		Labels:     make([]Label, 0, len(g.Nodes)),
		Stats:      g.Stats(),
	}

	colors := categoryColors(g)
	if opts.ColorByCategory {
		scene.Legend = legend(colors)
	}

	for i, e := range g.Edges {
		src, tgt, ok := g.Resolve(e)
		if !ok || !src.Placed || !tgt.Placed {
			continue
		}
		scene.Lines = append(scene.Lines, Line{
			Edge:   i,
			Source: e.Source,
			Target: e.Target,
			X1:     src.X,
			Y1:     src.Y,
			X2:     tgt.X,
			Y2:     tgt.Y,
		})
	}

	for _, id := range g.UniqueIDs() {
		n, _ := g.Lookup(id)
		if !n.Placed {
			continue
		}

		c := Circle{ID: n.ID, CX: n.X, CY: n.Y, R: n.Radius, Fill: opts.NodeFill, Featured: n.Featured}
		if len(n.Categories) > 0 {
			c.Category = n.Categories[0]
		}
		switch {
		case n.Featured:
			c.Fill = opts.FeaturedFill
		case opts.ColorByCategory && c.Category != "":
			c.Fill = colors[c.Category]
		}
		scene.Circles = append(scene.Circles, c)

		scene.Labels = append(scene.Labels, Label{
			ID:       n.ID,
			Text:     n.Name,
			X:        n.X,
			Y:        n.Y + n.Radius + opts.LabelGap,
			FontSize: math.Max(MinFontSize, n.Radius/3),
		})
	}

	return scene, nil
}

// categoryColors assigns palette colors to first categories in sorted order.
func categoryColors(g *viz.Graph) map[string]string {
	seen := make(map[string]bool)
	var cats []string
	for _, n := range g.Nodes {
		if len(n.Categories) == 0 || seen[n.Categories[0]] {
			continue
		}
		seen[n.Categories[0]] = true
		cats = append(cats, n.Categories[0])
	}
	sort.Strings(cats)

	colors := make(map[string]string, len(cats))
	for i, c := range cats {
		colors[c] = Palette[i%len(Palette)]
	}
	return colors
}

func legend(colors map[string]string) []LegendEntry {
	entries := make([]LegendEntry, 0, len(colors))
	for c, col := range colors {
		entries = append(entries, LegendEntry{Category: c, Color: col})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Category < entries[j].Category })
	return entries
}
