package geom

import "math"

// Rect is an axis-aligned rectangle defined by its min corner and size.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// NewRect creates a rect from a min corner and size
func NewRect(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, Width: w, Height: h}
}

// Contains reports whether p lies inside the rect (edges inclusive)
func (r Rect) Contains(p Vector2) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Center returns the rect's center point
func (r Rect) Center() Vector2 {
	return Vector2{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Diagonal returns the length of the rect's diagonal
func (r Rect) Diagonal() float64 {
	return math.Sqrt(r.Width*r.Width + r.Height*r.Height)
}

// Union returns the smallest rect containing both r and other
func (r Rect) Union(other Rect) Rect {
	minX := math.Min(r.X, other.X)
	minY := math.Min(r.Y, other.Y)
	maxX := math.Max(r.X+r.Width, other.X+other.Width)
	maxY := math.Max(r.Y+r.Height, other.Y+other.Height)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Shape is a closed 2D region. Any container shape (rectangle, ellipse,
// polygon) implementing this interface can hold energy chunks.
type Shape interface {
	Contains(p Vector2) bool
	Bounds() Rect
}

// RectangleShape is a Shape backed by an axis-aligned rectangle.
type RectangleShape struct {
	Rect Rect
}

func (s RectangleShape) Contains(p Vector2) bool { return s.Rect.Contains(p) }
func (s RectangleShape) Bounds() Rect            { return s.Rect }

// EllipseShape is an axis-aligned ellipse given by center and radii.
type EllipseShape struct {
	Center Vector2
	RX, RY float64
}

// Contains uses the normalized-radius test (dx/rx)² + (dy/ry)² <= 1
func (s EllipseShape) Contains(p Vector2) bool {
	if s.RX <= 0 || s.RY <= 0 {
		return false
	}
	dx := (p.X - s.Center.X) / s.RX
	dy := (p.Y - s.Center.Y) / s.RY
	return dx*dx+dy*dy <= 1
}

func (s EllipseShape) Bounds() Rect {
	return Rect{X: s.Center.X - s.RX, Y: s.Center.Y - s.RY, Width: 2 * s.RX, Height: 2 * s.RY}
}

// PolygonShape is a closed polygon given by its vertices in order.
// The closing edge from the last vertex back to the first is implicit.
type PolygonShape struct {
	Vertices []Vector2
}

// Contains uses the even-odd ray crossing rule.
func (s PolygonShape) Contains(p Vector2) bool {
	n := len(s.Vertices)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		vi, vj := s.Vertices[i], s.Vertices[j]
		if (vi.Y > p.Y) != (vj.Y > p.Y) &&
			p.X < (vj.X-vi.X)*(p.Y-vi.Y)/(vj.Y-vi.Y)+vi.X {
			inside = !inside
		}
		j = i
	}
	return inside
}

func (s PolygonShape) Bounds() Rect {
	if len(s.Vertices) == 0 {
		return Rect{}
	}
	minX, minY := s.Vertices[0].X, s.Vertices[0].Y
	maxX, maxY := minX, minY
	for _, v := range s.Vertices[1:] {
		minX = math.Min(minX, v.X)
		minY = math.Min(minY, v.Y)
		maxX = math.Max(maxX, v.X)
		maxY = math.Max(maxY, v.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
