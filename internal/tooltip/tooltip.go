// Package tooltip models the floating info box shown while hovering a node.
package tooltip

import (
	"sync"
	"time"

	"github.com/matsen/termgraph/internal/viz"
)

const (
	DefaultFadeIn  = 200 * time.Millisecond
	DefaultFadeOut = 500 * time.Millisecond
	// VisibleOpacity is the resting opacity of a shown tooltip.
	VisibleOpacity = 0.9
)

// DefaultOffset keeps the box clear of the pointer.
var DefaultOffset = viz.Point{X: 10, Y: -10}

// Gate reports whether hover interactions are currently allowed.
type Gate interface {
	HoverEnabled() bool
}

// State is what the page should display.
type State struct {
	Visible    bool          `json:"visible"`
	NodeID     string        `json:"nodeId,omitempty"`
	Title      string        `json:"title,omitempty"`
	Summary    string        `json:"summary,omitempty"`
	Position   viz.Point     `json:"position"`
	Opacity    float64       `json:"opacity"`
	Transition time.Duration `json:"transition"`
}

// Presenter tracks tooltip visibility, content and position.
type Presenter struct {
	mu      sync.Mutex
	gate    Gate
	offset  viz.Point
	fadeIn  time.Duration
	fadeOut time.Duration
	state   State
}

// Option configures a Presenter.
type Option func(*Presenter)

// WithOffset sets the pointer offset.
func WithOffset(offset viz.Point) Option {
	return func(p *Presenter) {
		p.offset = offset
	}
}

// WithFades sets the fade-in and fade-out durations.
func WithFades(in, out time.Duration) Option {
	return func(p *Presenter) {
		p.fadeIn, p.fadeOut = in, out
	}
}

// NewPresenter creates a hidden tooltip. A nil gate always allows hover.
func NewPresenter(gate Gate, opts ...Option) *Presenter {
	p := &Presenter{
		gate:    gate,
		offset:  DefaultOffset,
		fadeIn:  DefaultFadeIn,
		fadeOut: DefaultFadeOut,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Show displays node's title and summary at pointer plus offset, fading in.
// It does nothing and returns false while hover is disabled.
func (p *Presenter) Show(node *viz.Node, pointer viz.Point) bool {
	if node == nil || (p.gate != nil && !p.gate.HoverEnabled()) {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = State{
		Visible:    true,
		NodeID:     node.ID,
		Title:      node.DisplayTitle(),
		Summary:    node.DisplaySummary(),
		Position:   p.place(pointer),
		Opacity:    VisibleOpacity,
		Transition: p.fadeIn,
	}
	return true
}

// Move tracks the pointer while the tooltip is visible.
func (p *Presenter) Move(pointer viz.Point) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.Visible {
		p.state.Position = p.place(pointer)
	}
}

// Hide fades the tooltip out. Content is kept so the fade shows it.
func (p *Presenter) Hide() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Visible = false
	p.state.Opacity = 0
	p.state.Transition = p.fadeOut
}

// State returns a snapshot of the tooltip.
func (p *Presenter) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Offset returns the configured pointer offset.
func (p *Presenter) Offset() viz.Point {
	return p.offset
}

// FadeIn returns the fade-in duration.
func (p *Presenter) FadeIn() time.Duration {
	return p.fadeIn
}

// FadeOut returns the fade-out duration.
func (p *Presenter) FadeOut() time.Duration {
	return p.fadeOut
}

func (p *Presenter) place(pointer viz.Point) viz.Point {
	return viz.Point{X: pointer.X + p.offset.X, Y: pointer.Y + p.offset.Y}
}
