package layout

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/matsen/termgraph/internal/viz"
)

const (
	// initialRadius and initialAngle seed nodes on a phyllotaxis spiral.
	initialRadius = 10.0
	// distanceMin2 caps many-body forces between nearly coincident bodies.
	distanceMin2 = 1.0
	// relaxTolerance is the overlap left alone by relax.
	relaxTolerance = 1e-9
)

var initialAngle = math.Pi * (3 - math.Sqrt(5))

// ForceLayout implements the force-directed layout: link springs,
// many-body repulsion, centering and collision avoidance, run for a fixed
// step budget and then frozen.
type ForceLayout struct {
	config Config
	logger *zap.Logger
}

// Option configures a ForceLayout.
type Option func(*ForceLayout)

// WithLogger sets the logger used for layout diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(f *ForceLayout) {
		f.logger = logger
	}
}

// NewForceLayout creates a force-directed layout.
func NewForceLayout(config Config, opts ...Option) *ForceLayout {
	f := &ForceLayout{config: config.withDefaults(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Config returns the effective configuration.
func (f *ForceLayout) Config() Config {
	return f.config
}

// Compute runs the simulation for the configured step budget and returns
// the final positions. An empty graph yields empty positions.
func (f *ForceLayout) Compute(ctx context.Context, g *viz.Graph) (Positions, error) {
	start := time.Now()
	sim := newSimulation(g, f.config)
	if len(sim.bodies) == 0 {
		return Positions{}, nil
	}

	steps := 0
	for steps < f.config.Iterations {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("layout stopped after %d steps: %w", steps, err)
		}
		moved := sim.step()
		steps++
		if f.config.Epsilon > 0 && moved < f.config.Epsilon {
			break
		}
	}
	passes := sim.relax(f.config.RelaxPasses)

	f.logger.Debug("force layout computed",
		zap.Int("nodes", len(sim.bodies)),
		zap.Int("links", len(sim.links)),
		zap.Int("steps", steps),
		zap.Int("relaxPasses", passes),
		zap.Duration("duration", time.Since(start)),
	)

	return sim.positions(), nil
}

// body is the simulation state of one node.
type body struct {
	id     string
	x, y   float64
	vx, vy float64
	r      float64
}

// spring is a resolved edge between two bodies.
type spring struct {
	source, target int
	strength       float64
	bias           float64
}

type simulation struct {
	cfg        Config
	bodies     []body
	links      []spring
	alpha      float64
	alphaDecay float64
	rng        *rand.Rand
}

func newSimulation(g *viz.Graph, cfg Config) *simulation {
	s := &simulation{
		cfg:        cfg,
		alpha:      1,
		alphaDecay: 1 - math.Pow(cfg.AlphaMin, 1/float64(cfg.Iterations)),
		rng:        rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
	}

	cx, cy := cfg.Width/2, cfg.Height/2
	slot := make(map[string]int)
	for i, id := range g.UniqueIDs() {
		n, _ := g.Lookup(id)
		radius := initialRadius * math.Sqrt(0.5+float64(i))
		angle := float64(i) * initialAngle
		s.bodies = append(s.bodies, body{
			id: id,
			x:  cx + radius*math.Cos(angle),
			y:  cy + radius*math.Sin(angle),
			r:  n.Radius,
		})
		slot[id] = i
	}

	degree := make([]int, len(s.bodies))
	for _, e := range g.Edges {
		si, sok := slot[e.Source]
		ti, tok := slot[e.Target]
		if !sok || !tok || si == ti {
			continue
		}
		s.links = append(s.links, spring{source: si, target: ti})
		degree[si]++
		degree[ti]++
	}
	for i := range s.links {
		l := &s.links[i]
		ds, dt := float64(degree[l.source]), float64(degree[l.target])
		l.strength = 1 / math.Min(ds, dt)
		l.bias = ds / (ds + dt)
	}

	return s
}

// step advances the simulation once and returns the largest movement.
func (s *simulation) step() float64 {
	s.alpha += (0 - s.alpha) * s.alphaDecay

	s.applyLinks()
	if s.cfg.Charge != 0 {
		s.applyManyBody()
	}
	s.applyCollide()

	moved := 0.0
	keep := 1 - s.cfg.VelocityDecay
	for i := range s.bodies {
		b := &s.bodies[i]
		b.vx *= keep
		b.vy *= keep
		b.x += b.vx
		b.y += b.vy
		moved = math.Max(moved, math.Hypot(b.vx, b.vy))
	}

	s.applyCenter()
	return moved
}

func (s *simulation) jiggle() float64 {
	return (s.rng.Float64() - 0.5) * 1e-6
}

// applyLinks pulls connected bodies toward the link distance.
func (s *simulation) applyLinks() {
	for _, l := range s.links {
		src, tgt := &s.bodies[l.source], &s.bodies[l.target]
		x := tgt.x + tgt.vx - src.x - src.vx
		y := tgt.y + tgt.vy - src.y - src.vy
		if x == 0 {
			x = s.jiggle()
		}
		if y == 0 {
			y = s.jiggle()
		}
		d := math.Hypot(x, y)
		k := (d - s.cfg.LinkDistance) / d * s.alpha * l.strength
		x *= k
		y *= k
		tgt.vx -= x * l.bias
		tgt.vy -= y * l.bias
		src.vx += x * (1 - l.bias)
		src.vy += y * (1 - l.bias)
	}
}

// applyManyBody applies the charge between every pair of bodies, through a
// quadtree when Theta is set.
func (s *simulation) applyManyBody() {
	if s.cfg.Theta > 0 {
		tree := buildQuadtree(s.bodies, s.cfg.Charge)
		theta2 := s.cfg.Theta * s.cfg.Theta
		for i := range s.bodies {
			s.visit(tree, i, theta2)
		}
		return
	}

	for i := range s.bodies {
		b := &s.bodies[i]
		for j := range s.bodies {
			if i == j {
				continue
			}
			dx, dy := s.bodies[j].x-b.x, s.bodies[j].y-b.y
			s.charge(b, dx, dy, s.cfg.Charge)
		}
	}
}

// visit accumulates the Barnes-Hut force of q on body i.
func (s *simulation) visit(q *quad, i int, theta2 float64) {
	if q == nil || q.charge == 0 {
		return
	}
	b := &s.bodies[i]

	if !q.leaf() {
		dx, dy := q.cx-b.x, q.cy-b.y
		w := q.x1 - q.x0
		if w*w/theta2 < dx*dx+dy*dy {
			s.charge(b, dx, dy, q.charge)
			return
		}
		for _, kid := range q.kids {
			s.visit(kid, i, theta2)
		}
		return
	}

	for _, j := range q.members {
		if j == i {
			continue
		}
		dx, dy := s.bodies[j].x-b.x, s.bodies[j].y-b.y
		s.charge(b, dx, dy, s.cfg.Charge)
	}
}

func (s *simulation) charge(b *body, dx, dy, strength float64) {
	if dx == 0 {
		dx = s.jiggle()
	}
	if dy == 0 {
		dy = s.jiggle()
	}
	l := dx*dx + dy*dy
	if l < distanceMin2 {
		l = math.Sqrt(distanceMin2 * l)
	}
	w := strength * s.alpha / l
	b.vx += dx * w
	b.vy += dy * w
}

// applyCollide separates bodies closer than their radii plus padding,
// moving the smaller body further.
func (s *simulation) applyCollide() {
	pad := s.cfg.CollidePadding
	for i := range s.bodies {
		a := &s.bodies[i]
		ri := a.r + pad
		ri2 := ri * ri
		for j := i + 1; j < len(s.bodies); j++ {
			b := &s.bodies[j]
			rj := b.r + pad
			r := ri + rj
			x := a.x + a.vx - b.x - b.vx
			y := a.y + a.vy - b.y - b.vy
			l := x*x + y*y
			if l >= r*r {
				continue
			}
			if x == 0 {
				x = s.jiggle()
				l += x * x
			}
			if y == 0 {
				y = s.jiggle()
				l += y * y
			}
			d := math.Sqrt(l)
			k := (r - d) / d
			x *= k
			y *= k
			rj2 := rj * rj
			share := rj2 / (ri2 + rj2)
			a.vx += x * share
			a.vy += y * share
			b.vx -= x * (1 - share)
			b.vy -= y * (1 - share)
		}
	}
}

// applyCenter translates all bodies so their mean sits on the canvas center.
func (s *simulation) applyCenter() {
	var sx, sy float64
	for _, b := range s.bodies {
		sx += b.x
		sy += b.y
	}
	n := float64(len(s.bodies))
	dx := s.cfg.Width/2 - sx/n
	dy := s.cfg.Height/2 - sy/n
	for i := range s.bodies {
		s.bodies[i].x += dx
		s.bodies[i].y += dy
	}
}

// relax removes remaining overlaps by projecting overlapping pairs apart.
// It returns the number of passes used.
func (s *simulation) relax(maxPasses int) int {
	pad := s.cfg.CollidePadding
	for pass := 1; pass <= maxPasses; pass++ {
		moved := false
		for i := range s.bodies {
			a := &s.bodies[i]
			ra := a.r + pad
			for j := i + 1; j < len(s.bodies); j++ {
				b := &s.bodies[j]
				rb := b.r + pad
				minDist := ra + rb
				dx, dy := b.x-a.x, b.y-a.y
				d := math.Hypot(dx, dy)
				if d >= minDist-relaxTolerance {
					continue
				}
				if d == 0 {
					dx, dy = s.jiggle(), s.jiggle()
					d = math.Hypot(dx, dy)
				}
				overlap := minDist - d
				share := rb * rb / (ra*ra + rb*rb)
				ux, uy := dx/d, dy/d
				a.x -= ux * overlap * share
				a.y -= uy * overlap * share
				b.x += ux * overlap * (1 - share)
				b.y += uy * overlap * (1 - share)
				moved = true
			}
		}
		if !moved {
			return pass
		}
	}
	return maxPasses
}

func (s *simulation) positions() Positions {
	pos := make(Positions, len(s.bodies))
	for _, b := range s.bodies {
		pos[b.id] = viz.Point{X: b.x, Y: b.y}
	}
	return pos
}
