package geom

// Rect is an axis-aligned rectangle anchored at (X, Z) with positive
// Width/Height extending toward +X/+Z.
type Rect struct {
	X, Z, Width, Height float64
}

// BBox returns the rectangle itself — it is already its own bounding box.
func (r Rect) BBox() Rect { return r }

// Contains reports whether p falls inside the rectangle. The lower/left
// edges (X, Z) belong to the rectangle; the upper/right edges (X+Width,
// Z+Height) do not, so adjacent tiles tile the plane without ambiguity.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width &&
		p.Z >= r.Z && p.Z < r.Z+r.Height
}

// Dimensions returns the rectangle's extent aligned to a direction of
// travel: N/S travel takes the rectangle's Width as the road width and
// its Height as the segment length; E/W travel swaps the two.
func (r Rect) Dimensions(heading Direction) (width, length float64) {
	switch heading {
	case North, South:
		return r.Width, r.Height
	default:
		return r.Height, r.Width
	}
}

// Circle is a disc centered at (X, Z) with the given radius.
type Circle struct {
	X, Z, Radius float64
}

// BBox returns the circle's axis-aligned bounding square.
func (c Circle) BBox() Rect {
	return Rect{X: c.X - c.Radius, Z: c.Z - c.Radius, Width: 2 * c.Radius, Height: 2 * c.Radius}
}

// Contains reports whether p lies within the circle (dist² ≤ r²).
func (c Circle) Contains(p Point) bool {
	dx := p.X - c.X
	dz := p.Z - c.Z
	r := c.Radius
	return dx*dx+dz*dz <= r*r
}

// Dimensions returns the circle's diameter for both the width and length
// axes — a circular area or sector contributes the same extent regardless
// of heading.
func (c Circle) Dimensions(Direction) (width, length float64) {
	d := 2 * c.Radius
	return d, d
}

// Polygon is a closed region described by three or more vertices in order.
type Polygon struct {
	Points []Point
}

// BBox returns the axis-aligned bounding box of the polygon's vertices.
func (p Polygon) BBox() Rect {
	if len(p.Points) == 0 {
		return Rect{}
	}
	minX, maxX := p.Points[0].X, p.Points[0].X
	minZ, maxZ := p.Points[0].Z, p.Points[0].Z
	for _, pt := range p.Points[1:] {
		if pt.X < minX {
			minX = pt.X
		}
		if pt.X > maxX {
			maxX = pt.X
		}
		if pt.Z < minZ {
			minZ = pt.Z
		}
		if pt.Z > maxZ {
			maxZ = pt.Z
		}
	}
	return Rect{X: minX, Z: minZ, Width: maxX - minX, Height: maxZ - minZ}
}

// Contains reports whether pt lies inside the polygon using the even-odd
// (ray-casting) rule. Points exactly on an edge count as inside — this
// spec standardizes on closed edges rather than the half-open convention
// some source maps used.
func (p Polygon) Contains(pt Point) bool {
	n := len(p.Points)
	if n < 3 {
		return false
	}
	if onAnyEdge(p.Points, pt) {
		return true
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		a, b := p.Points[i], p.Points[j]
		if (a.Z > pt.Z) != (b.Z > pt.Z) {
			xCross := a.X + (pt.Z-a.Z)*(b.X-a.X)/(b.Z-a.Z)
			if pt.X < xCross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

func onAnyEdge(pts []Point, pt Point) bool {
	n := len(pts)
	for i := 0; i < n; i++ {
		a := pts[i]
		b := pts[(i+1)%n]
		if onSegment(a, b, pt) {
			return true
		}
	}
	return false
}

func onSegment(a, b, pt Point) bool {
	// Collinearity via cross product, then bounding-box check.
	cross := (b.X-a.X)*(pt.Z-a.Z) - (b.Z-a.Z)*(pt.X-a.X)
	const epsilon = 1e-9
	if cross > epsilon || cross < -epsilon {
		return false
	}
	minX, maxX := a.X, b.X
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	minZ, maxZ := a.Z, b.Z
	if minZ > maxZ {
		minZ, maxZ = maxZ, minZ
	}
	return pt.X >= minX && pt.X <= maxX && pt.Z >= minZ && pt.Z <= maxZ
}

// Polyline is an open chain of two or more points. It has no interior —
// Contains always returns false — and contributes width-only geometry
// such as a narrow path backing shape.
type Polyline struct {
	Points []Point
}

// BBox returns the axis-aligned bounding box of the polyline's vertices.
func (p Polyline) BBox() Rect {
	if len(p.Points) == 0 {
		return Rect{}
	}
	minX, maxX := p.Points[0].X, p.Points[0].X
	minZ, maxZ := p.Points[0].Z, p.Points[0].Z
	for _, pt := range p.Points[1:] {
		if pt.X < minX {
			minX = pt.X
		}
		if pt.X > maxX {
			maxX = pt.X
		}
		if pt.Z < minZ {
			minZ = pt.Z
		}
		if pt.Z > maxZ {
			maxZ = pt.Z
		}
	}
	return Rect{X: minX, Z: minZ, Width: maxX - minX, Height: maxZ - minZ}
}

// Contains always reports false: a polyline has no interior.
func (p Polyline) Contains(Point) bool { return false }

// Shape is implemented by every geometric primitive usable as shape
// backing for an Area, Sector, Path, Beacon, or Marker.
type Shape interface {
	BBox() Rect
	Contains(Point) bool
}
