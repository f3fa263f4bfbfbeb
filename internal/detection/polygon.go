package detection

import (
	"math"

	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"github.com/ironsheep/docscan-mcp/internal/scanerr"
)

// Area returns the area enclosed by c using the shoelace formula. The sign
// of the traversal is ignored.
func Area(c Curve) float64 {
	n := len(c)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		p, q := c[i], c[(i+1)%n]
		sum += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(sum) / 2
}

// ArcLength returns the perimeter of c, including the closing edge.
func ArcLength(c Curve) float64 {
	n := len(c)
	if n < 2 {
		return 0
	}
	var total float64
	for i := 0; i < n; i++ {
		total += c[i].Dist(c[(i+1)%n])
	}
	return total
}

// Approximate reduces c to a closed polygon with the Douglas-Peucker
// algorithm. The tolerance is fraction × ArcLength(c): a point is kept when
// it lies farther than the tolerance from the chord of its chain.
//
// The curve is split into two chains at a pair of mutually distant points so
// that the result stays closed. Kept points keep their order along c.
//
// The returned slice may have any length; callers that need a quadrilateral
// check it.
func Approximate(c Curve, fraction float64) (Curve, error) {
	if !(fraction > 0) || math.IsInf(fraction, 0) {
		return nil, scanerr.New(scanerr.StageApproximator, scanerr.ErrInvalidConfiguration,
			"tolerance fraction %g is not positive", fraction)
	}

	n := len(c)
	if n < 3 {
		return append(Curve(nil), c...), nil
	}

	eps := fraction * ArcLength(c)
	a := farthestFrom(c, c[0])
	b := farthestFrom(c, c[a])
	if a == b {
		return Curve{c[a]}, nil
	}

	keep := make([]bool, n)
	keep[a] = true
	keep[b] = true
	simplifyChain(c, a, b, eps, keep)
	simplifyChain(c, b, a, eps, keep)

	out := make(Curve, 0, 8)
	for i, k := range keep {
		if k {
			out = append(out, c[i])
		}
	}
	return out, nil
}

// farthestFrom returns the index of the point of c farthest from p. Ties go
// to the lowest index.
func farthestFrom(c Curve, p geometry.Point) int {
	best, bestDist := 0, -1.0
	for i, q := range c {
		if d := p.Dist(q); d > bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// simplifyChain runs Douglas-Peucker on the chain of c that walks forward
// (wrapping) from index from to index to, marking the points it keeps.
func simplifyChain(c Curve, from, to int, eps float64, keep []bool) {
	n := len(c)
	length := (to - from + n) % n
	at := func(k int) int { return (from + k) % n }

	type span struct{ lo, hi int }
	stack := []span{{0, length}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.hi-s.lo < 2 {
			continue
		}

		p, q := c[at(s.lo)], c[at(s.hi)]
		split, dmax := -1, eps
		for k := s.lo + 1; k < s.hi; k++ {
			if d := segmentDistance(c[at(k)], p, q); d > dmax {
				split, dmax = k, d
			}
		}
		if split < 0 {
			continue
		}
		keep[at(split)] = true
		stack = append(stack, span{s.lo, split}, span{split, s.hi})
	}
}

// segmentDistance returns the distance from p to the segment ab.
func segmentDistance(p, a, b geometry.Point) float64 {
	ab := b.Sub(a)
	ap := p.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 == 0 {
		return p.Dist(a)
	}
	t := (ap.X*ab.X + ap.Y*ab.Y) / l2
	switch {
	case t < 0:
		t = 0
	case t > 1:
		t = 1
	}
	return p.Dist(geometry.Pt(a.X+t*ab.X, a.Y+t*ab.Y))
}
