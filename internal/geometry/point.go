package geometry

import (
	"fmt"
	"math"
)

// Point is a 2D coordinate with sub-pixel precision.
type Point struct {
	X float64 `json:"x"` // Horizontal position (0 = leftmost pixel center)
	Y float64 `json:"y"` // Vertical position (0 = topmost pixel center)
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale returns p with both coordinates multiplied by f.
func (p Point) Scale(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// String formats the point as "(x,y)".
func (p Point) String() string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}

// cross returns the z component of the cross product of a and b.
func cross(a, b Point) float64 {
	return a.X*b.Y - a.Y*b.X
}

// Quad is four points in no particular order, as produced by polygon
// approximation.
type Quad [4]Point

// OrderedQuad is a quadrilateral whose corners have been assigned roles.
type OrderedQuad struct {
	TopLeft     Point `json:"top_left"`
	TopRight    Point `json:"top_right"`
	BottomRight Point `json:"bottom_right"`
	BottomLeft  Point `json:"bottom_left"`
}

// Points returns the corners in role order: top-left, top-right,
// bottom-right, bottom-left.
func (q OrderedQuad) Points() [4]Point {
	return [4]Point{q.TopLeft, q.TopRight, q.BottomRight, q.BottomLeft}
}

// Scale returns the quadrilateral with every corner multiplied by f.
func (q OrderedQuad) Scale(f float64) OrderedQuad {
	return OrderedQuad{
		TopLeft:     q.TopLeft.Scale(f),
		TopRight:    q.TopRight.Scale(f),
		BottomRight: q.BottomRight.Scale(f),
		BottomLeft:  q.BottomLeft.Scale(f),
	}
}

// TargetSize returns the integer width and height of the rectangle the
// quadrilateral is rectified into.
//
// Width is the longer of the top and bottom edges, height the longer of the
// left and right edges, both truncated toward zero.
func (q OrderedQuad) TargetSize() (width, height int) {
	w, h := q.edges()
	return int(w), int(h)
}

// TargetArea returns the untruncated area of the target rectangle. It is
// NaN or +Inf when a corner is not finite.
func (q OrderedQuad) TargetArea() float64 {
	w, h := q.edges()
	return w * h
}

func (q OrderedQuad) edges() (width, height float64) {
	width = math.Max(q.BottomLeft.Dist(q.BottomRight), q.TopLeft.Dist(q.TopRight))
	height = math.Max(q.TopLeft.Dist(q.BottomLeft), q.TopRight.Dist(q.BottomRight))
	return width, height
}

// TargetCorners returns the destination corners for a width×height target
// in role order: (0,0), (W-1,0), (W-1,H-1), (0,H-1).
func TargetCorners(width, height int) [4]Point {
	w := float64(width - 1)
	h := float64(height - 1)
	return [4]Point{{0, 0}, {w, 0}, {w, h}, {0, h}}
}
