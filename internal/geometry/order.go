package geometry

import (
	"math"

	"github.com/ironsheep/docscan-mcp/internal/scanerr"
)

// minCornerSine is the smallest |sin| of the turn at a corner before the
// three points around it count as collinear.
const minCornerSine = 1e-3

var roleNames = [4]string{"top-left", "top-right", "bottom-right", "bottom-left"}

// Order assigns the four points their canonical corner roles.
//
// The points may come in any order. Roles are chosen by coordinate sum and
// difference (see the package documentation). Order fails with
// scanerr.ErrDegenerateQuadrilateral if pts does not hold exactly four points,
// if two roles resolve to the same point, or if the ordered corners are
// collinear or do not form a convex quadrilateral.
func Order(pts []Point) (OrderedQuad, error) {
	if len(pts) != 4 {
		return OrderedQuad{}, scanerr.New(scanerr.StageOrderer, scanerr.ErrDegenerateQuadrilateral,
			"need exactly 4 points, got %d", len(pts))
	}

	sum := func(i int) float64 { return pts[i].X + pts[i].Y }
	diff := func(i int) float64 { return pts[i].Y - pts[i].X }

	tl, tr, br, bl := 0, 0, 0, 0
	for i := 1; i < 4; i++ {
		s, d := sum(i), diff(i)
		p := pts[i]

		if s < sum(tl) || (s == sum(tl) && p.Y < pts[tl].Y) {
			tl = i
		}
		if s > sum(br) || (s == sum(br) && p.Y > pts[br].Y) {
			br = i
		}
		if d < diff(tr) || (d == diff(tr) && p.X > pts[tr].X) {
			tr = i
		}
		if d > diff(bl) || (d == diff(bl) && p.X < pts[bl].X) {
			bl = i
		}
	}

	roles := [4]int{tl, tr, br, bl}
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			if roles[i] == roles[j] {
				return OrderedQuad{}, scanerr.New(scanerr.StageOrderer, scanerr.ErrDegenerateQuadrilateral,
					"%s and %s both resolve to point %v", roleNames[i], roleNames[j], pts[roles[i]])
			}
		}
	}

	q := OrderedQuad{
		TopLeft:     pts[tl],
		TopRight:    pts[tr],
		BottomRight: pts[br],
		BottomLeft:  pts[bl],
	}
	if err := q.Validate(); err != nil {
		return OrderedQuad{}, err
	}
	return q, nil
}

// Validate checks that no three consecutive corners are collinear and that
// the corners turn the same way at every vertex (a convex, non-crossing
// outline running clockwise on screen).
func (q OrderedQuad) Validate() error {
	c := q.Points()
	for i := 0; i < 4; i++ {
		a, b, d := c[i], c[(i+1)%4], c[(i+2)%4]
		e1 := b.Sub(a)
		e2 := d.Sub(b)
		lengths := math.Hypot(e1.X, e1.Y) * math.Hypot(e2.X, e2.Y)
		turn := cross(e1, e2)

		if lengths == 0 || math.Abs(turn) <= minCornerSine*lengths {
			return scanerr.New(scanerr.StageOrderer, scanerr.ErrDegenerateQuadrilateral,
				"%s %v, %s %v and %s %v are collinear",
				roleNames[i], a, roleNames[(i+1)%4], b, roleNames[(i+2)%4], d)
		}
		if turn < 0 {
			return scanerr.New(scanerr.StageOrderer, scanerr.ErrDegenerateQuadrilateral,
				"corners are not convex at %s %v", roleNames[(i+1)%4], b)
		}
	}
	return nil
}
