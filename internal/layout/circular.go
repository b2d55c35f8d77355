package layout

import (
	"context"
	"math"

	"github.com/matsen/termgraph/internal/viz"
)

// CircularLayout arranges nodes evenly on a circle around the canvas center.
type CircularLayout struct {
	config Config
}

// NewCircularLayout creates a new circular layout.
func NewCircularLayout(config Config) *CircularLayout {
	return &CircularLayout{config: config.withDefaults()}
}

// Compute places nodes on a circle in input order.
func (cl *CircularLayout) Compute(ctx context.Context, g *viz.Graph) (Positions, error) {
	ids := g.UniqueIDs()
	positions := make(Positions, len(ids))
	if len(ids) == 0 {
		return positions, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	centerX := cl.config.Width / 2
	centerY := cl.config.Height / 2
	if len(ids) == 1 {
		positions[ids[0]] = viz.Point{X: centerX, Y: centerY}
		return positions, nil
	}

	// Grow the circle when the canvas is too small to keep neighbours apart.
	maxRadius := 0.0
	for _, id := range ids {
		n, _ := g.Lookup(id)
		maxRadius = math.Max(maxRadius, n.Radius+cl.config.CollidePadding)
	}
	angleStep := 2 * math.Pi / float64(len(ids))
	radius := math.Min(centerX, centerY) - cl.config.Padding
	radius = math.Max(radius, maxRadius/math.Sin(angleStep/2))

	for i, id := range ids {
		angle := float64(i) * angleStep
		positions[id] = viz.Point{
			X: centerX + radius*math.Cos(angle),
			Y: centerY + radius*math.Sin(angle),
		}
	}

	return positions, nil
}
