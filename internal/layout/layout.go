// Package layout computes static node positions for the graph view.
//
// Layouts run once, synchronously, and return frozen positions; nothing in
// this package observes intermediate simulation steps.
package layout

import (
	"context"
	"fmt"

	"github.com/matsen/termgraph/internal/viz"
)

// Positions maps node ids to their final layout coordinates.
type Positions map[string]viz.Point

// Engine computes positions for every resolvable node of a graph.
type Engine interface {
	Compute(ctx context.Context, g *viz.Graph) (Positions, error)
}

// Defaults for the force simulation.
const (
	DefaultWidth          = 960
	DefaultHeight         = 720
	DefaultIterations     = 300
	DefaultLinkDistance   = 150
	DefaultCharge         = -300
	DefaultTheta          = 0.9
	DefaultCollidePadding = 4
	DefaultVelocityDecay  = 0.4
	DefaultAlphaMin       = 0.001
	DefaultRelaxPasses    = 200
	DefaultSeed           = 1
	DefaultPadding        = 50

	// Node sizing: BaseRadius + (count/maxCount) * RadiusRange.
	DefaultBaseRadius  = 12
	DefaultRadiusRange = 40
)

// Config configures layout parameters.
type Config struct {
	Width      float64 // Canvas width
	Height     float64 // Canvas height
	Iterations int     // Fixed step budget

	LinkDistance   float64 // Spring rest length between connected nodes
	Charge         float64 // Many-body strength; negative repels
	Theta          float64 // Barnes-Hut accuracy; 0 computes every pair exactly
	CollidePadding float64 // Extra separation added to each node radius
	VelocityDecay  float64 // Fraction of velocity lost per step
	AlphaMin       float64 // Alpha reached at the end of the step budget
	Epsilon        float64 // Stop early once the largest step movement is below this; 0 disables
	RelaxPasses    int     // Overlap relaxation passes after the budget
	Seed           uint64  // Seed for separating coincident nodes

	Padding float64 // Circular layout margin
}

// DefaultConfig returns the layout defaults.
func DefaultConfig() Config {
	return Config{
		Width:          DefaultWidth,
		Height:         DefaultHeight,
		Iterations:     DefaultIterations,
		LinkDistance:   DefaultLinkDistance,
		Charge:         DefaultCharge,
		Theta:          DefaultTheta,
		CollidePadding: DefaultCollidePadding,
		VelocityDecay:  DefaultVelocityDecay,
		AlphaMin:       DefaultAlphaMin,
		RelaxPasses:    DefaultRelaxPasses,
		Seed:           DefaultSeed,
		Padding:        DefaultPadding,
	}
}

// withDefaults fills zero-valued fields. Charge, Theta, Epsilon and
// CollidePadding keep explicit zeros.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Width == 0 {
		c.Width = d.Width
	}
	if c.Height == 0 {
		c.Height = d.Height
	}
	if c.Iterations == 0 {
		c.Iterations = d.Iterations
	}
	if c.LinkDistance == 0 {
		c.LinkDistance = d.LinkDistance
	}
	if c.VelocityDecay == 0 {
		c.VelocityDecay = d.VelocityDecay
	}
	if c.AlphaMin == 0 {
		c.AlphaMin = d.AlphaMin
	}
	if c.RelaxPasses == 0 {
		c.RelaxPasses = d.RelaxPasses
	}
	if c.Seed == 0 {
		c.Seed = d.Seed
	}
	if c.Padding == 0 {
		c.Padding = d.Padding
	}
	return c
}

// ValidNames lists the supported layout algorithm names.
var ValidNames = []string{"force", "circle"}

// New returns the engine registered under name.
func New(name string, cfg Config, opts ...Option) (Engine, error) {
	switch name {
	case "", "force":
		return NewForceLayout(cfg, opts...), nil
	case "circle":
		return NewCircularLayout(cfg), nil
	default:
		return nil, fmt.Errorf("invalid layout %q: must be force or circle", name)
	}
}
