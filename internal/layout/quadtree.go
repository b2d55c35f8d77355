package layout

import "math"

// maxQuadDepth stops subdivision for nearly coincident bodies.
const maxQuadDepth = 32

// quad is a Barnes-Hut quadtree cell. Leaves list their member bodies;
// internal cells aggregate the charge and center of charge of their kids.
type quad struct {
	x0, y0, x1, y1 float64
	kids           [4]*quad
	members        []int
	charge         float64
	cx, cy         float64
}

// buildQuadtree indexes bodies in a square cell covering all of them and
// accumulates charges for the given per-body strength.
func buildQuadtree(bodies []body, strength float64) *quad {
	x0, y0 := math.Inf(1), math.Inf(1)
	x1, y1 := math.Inf(-1), math.Inf(-1)
	for _, b := range bodies {
		x0, y0 = math.Min(x0, b.x), math.Min(y0, b.y)
		x1, y1 = math.Max(x1, b.x), math.Max(y1, b.y)
	}
	side := math.Max(math.Max(x1-x0, y1-y0), 1)

	root := &quad{x0: x0, y0: y0, x1: x0 + side, y1: y0 + side}
	for i := range bodies {
		root.insert(bodies, i, 0)
	}
	root.accumulate(bodies, strength)
	return root
}

func (q *quad) leaf() bool {
	return q.kids[0] == nil && q.kids[1] == nil && q.kids[2] == nil && q.kids[3] == nil
}

func (q *quad) insert(bodies []body, i, depth int) {
	if q.leaf() {
		if len(q.members) == 0 || depth >= maxQuadDepth || coincident(bodies[q.members[0]], bodies[i]) {
			q.members = append(q.members, i)
			return
		}
		existing := q.members
		q.members = nil
		for _, j := range existing {
			q.child(bodies[j]).insert(bodies, j, depth+1)
		}
	}
	q.child(bodies[i]).insert(bodies, i, depth+1)
}

// child returns the quadrant containing b, creating it on demand.
func (q *quad) child(b body) *quad {
	mx, my := (q.x0+q.x1)/2, (q.y0+q.y1)/2
	idx := 0
	if b.x >= mx {
		idx |= 1
	}
	if b.y >= my {
		idx |= 2
	}
	if q.kids[idx] == nil {
		k := &quad{x0: q.x0, y0: q.y0, x1: mx, y1: my}
		if idx&1 != 0 {
			k.x0, k.x1 = mx, q.x1
		}
		if idx&2 != 0 {
			k.y0, k.y1 = my, q.y1
		}
		q.kids[idx] = k
	}
	return q.kids[idx]
}

func (q *quad) accumulate(bodies []body, strength float64) {
	if q.leaf() {
		if len(q.members) == 0 {
			return
		}
		var sx, sy float64
		for _, j := range q.members {
			sx += bodies[j].x
			sy += bodies[j].y
		}
		n := float64(len(q.members))
		q.cx, q.cy = sx/n, sy/n
		q.charge = strength * n
		return
	}

	var weight, sx, sy float64
	for _, k := range q.kids {
		if k == nil {
			continue
		}
		k.accumulate(bodies, strength)
		w := math.Abs(k.charge)
		q.charge += k.charge
		weight += w
		sx += w * k.cx
		sy += w * k.cy
	}
	if weight > 0 {
		q.cx, q.cy = sx/weight, sy/weight
	}
}

func coincident(a, b body) bool {
	return a.x == b.x && a.y == b.y
}
