// Package interact implements the hover/pin highlight state machine of a
// graph view and the visual state it implies.
package interact

import (
	"sync"

	"github.com/matsen/termgraph/internal/viz"
)

// Mode is the controller state.
type Mode int

const (
	// Neutral means no node is pinned; hover highlights are allowed.
	Neutral Mode = iota
	// Pinned means one node is fixed as highlighted and hover is disabled.
	Pinned
)

func (m Mode) String() string {
	if m == Pinned {
		return "pinned"
	}
	return "neutral"
}

// Visual constants shared with the page runtime.
const (
	FullOpacity        = 1.0
	DimOpacity         = 0.1
	DefaultEdgeColor   = "#ccc"
	DefaultEdgeWidth   = 1.0
	HighlightEdgeColor = "#333"
	HighlightEdgeWidth = 2.0
)

// NodeStyle is the computed appearance of a node and its label.
type NodeStyle struct {
	Opacity float64 `json:"opacity"`
	Focus   bool    `json:"focus,omitempty"`
}

// EdgeStyle is the computed appearance of one edge.
type EdgeStyle struct {
	Source  string  `json:"source"`
	Target  string  `json:"target"`
	Opacity float64 `json:"opacity"`
	Color   string  `json:"color"`
	Width   float64 `json:"width"`
}

// VisualState is the full highlight state of a view. Edges are in graph
// edge order.
type VisualState struct {
	Mode         string               `json:"mode"`
	Focus        string               `json:"focus,omitempty"`
	HoverEnabled bool                 `json:"hoverEnabled"`
	Nodes        map[string]NodeStyle `json:"nodes"`
	Edges        []EdgeStyle          `json:"edges"`
}

// Controller owns the interaction state of one mounted view.
type Controller struct {
	mu       sync.Mutex
	graph    *viz.Graph
	mode     Mode
	pinned   string
	hovered  string
	onSelect func(id string)
}

// NewController creates a controller in the Neutral state.
func NewController(g *viz.Graph) *Controller {
	return &Controller{graph: g}
}

// OnSelect registers fn to be called with the pinned node id on pin and
// with "" on unpin. It runs after the state change, outside the lock.
func (c *Controller) OnSelect(fn func(id string)) {
	c.mu.Lock()
	c.onSelect = fn
	c.mu.Unlock()
}

// Mode returns the current state.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Pinned returns the pinned node id, or "" in Neutral.
func (c *Controller) Pinned() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pinned
}

// HoverEnabled reports whether hover highlights and tooltips are active.
func (c *Controller) HoverEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode == Neutral
}

// Hover highlights id's neighborhood temporarily. It is ignored while a
// node is pinned or when id is not in the graph. It reports whether the
// hover was applied.
func (c *Controller) Hover(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == Pinned || !c.graph.Has(id) {
		return false
	}
	c.hovered = id
	return true
}

// Unhover clears a temporary hover highlight.
func (c *Controller) Unhover() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hovered = ""
}

// ClickNode toggles the pin on id. Clicking the pinned node unpins it;
// clicking any other node moves the pin there. The result is always true
// for known nodes, meaning the event is consumed and must not propagate to
// the background handler. Unknown ids are not handled.
func (c *Controller) ClickNode(id string) (handled bool) {
	c.mu.Lock()
	if !c.graph.Has(id) {
		c.mu.Unlock()
		return false
	}

	var selected string
	if c.mode == Pinned && c.pinned == id {
		c.mode, c.pinned = Neutral, ""
	} else {
		c.mode, c.pinned = Pinned, id
		selected = id
	}
	c.hovered = ""
	fn := c.onSelect
	c.mu.Unlock()

	if fn != nil {
		fn(selected)
	}
	return true
}

// ClickBackground returns to Neutral. It is a no-op in Neutral.
func (c *Controller) ClickBackground() {
	c.mu.Lock()
	wasPinned := c.mode == Pinned
	c.mode, c.pinned, c.hovered = Neutral, "", ""
	fn := c.onSelect
	c.mu.Unlock()

	if wasPinned && fn != nil {
		fn("")
	}
}

// Reset drops all state, as when the view is unmounted.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode, c.pinned, c.hovered = Neutral, "", ""
}

// Focus returns the node whose neighborhood is highlighted: the pinned
// node if any, otherwise the hovered node, otherwise "".
func (c *Controller) Focus() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focus()
}

func (c *Controller) focus() string {
	if c.mode == Pinned {
		return c.pinned
	}
	return c.hovered
}

// State computes the current visual state.
func (c *Controller) State() VisualState {
	c.mu.Lock()
	focus, mode := c.focus(), c.mode
	c.mu.Unlock()

	vs := Compute(c.graph, focus)
	vs.Mode = mode.String()
	vs.HoverEnabled = mode == Neutral
	return vs
}

// Compute derives the visual state for a focus node. With no focus every
// node and edge is at full opacity in the default style. With a focus, the
// focus and its neighbors are at full opacity and everything else is dimmed;
// edges touching the focus get the highlight style.
func Compute(g *viz.Graph, focus string) VisualState {
	vs := VisualState{
		Mode:         Neutral.String(),
		Focus:        focus,
		HoverEnabled: true,
		Nodes:        make(map[string]NodeStyle, len(g.Nodes)),
		Edges:        make([]EdgeStyle, 0, len(g.Edges)),
	}

	var neighbors map[string]bool
	if focus != "" {
		neighbors = g.Neighbors(focus)
	}

	for _, n := range g.Nodes {
		style := NodeStyle{Opacity: FullOpacity}
		if focus != "" {
			style.Focus = n.ID == focus
			if !style.Focus && !neighbors[n.ID] {
				style.Opacity = DimOpacity
			}
		}
		if _, seen := vs.Nodes[n.ID]; !seen {
			vs.Nodes[n.ID] = style
		}
	}

	for _, e := range g.Edges {
		style := EdgeStyle{
			Source:  e.Source,
			Target:  e.Target,
			Opacity: FullOpacity,
			Color:   DefaultEdgeColor,
			Width:   DefaultEdgeWidth,
		}
		if focus != "" {
			if e.Source == focus || e.Target == focus {
				style.Color = HighlightEdgeColor
				style.Width = HighlightEdgeWidth
			} else {
				style.Opacity = DimOpacity
			}
		}
		vs.Edges = append(vs.Edges, style)
	}

	return vs
}
