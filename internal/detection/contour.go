package detection

import (
	"image"

	"github.com/ironsheep/docscan-mcp/internal/geometry"
)

// Curve is a closed boundary: consecutive points are joined by an edge and
// the last point joins the first. Points are pixel centres.
type Curve []geometry.Point

// moore lists the eight neighbour offsets in clockwise screen order
// starting east: E, SE, S, SW, W, NW, N, NE.
var moore = [8]image.Point{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

const west = 4

// dirIndex returns the moore index of a unit offset.
func dirIndex(d image.Point) int {
	for i, m := range moore {
		if m == d {
			return i
		}
	}
	return -1
}

// binaryGrid is a foreground mask indexed [y][x].
type binaryGrid struct {
	cells         [][]bool
	width, height int
}

func newBinaryGrid(mask *image.Gray) *binaryGrid {
	b := mask.Bounds()
	g := &binaryGrid{
		cells:  make([][]bool, b.Dy()),
		width:  b.Dx(),
		height: b.Dy(),
	}
	for y := 0; y < g.height; y++ {
		g.cells[y] = make([]bool, g.width)
		row := mask.Pix[mask.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < g.width; x++ {
			g.cells[y][x] = row[x] != 0
		}
	}
	return g
}

func (g *binaryGrid) inside(p image.Point) bool {
	return p.X >= 0 && p.X < g.width && p.Y >= 0 && p.Y < g.height
}

func (g *binaryGrid) fg(p image.Point) bool {
	return g.inside(p) && g.cells[p.Y][p.X]
}

func newVisited(width, height int) [][]bool {
	v := make([][]bool, height)
	for y := range v {
		v[y] = make([]bool, width)
	}
	return v
}

// FindOuterContours traces the outer boundary of every foreground region of
// mask that is not enclosed by another region. Non-zero samples are
// foreground.
//
// Foreground is 8-connected and background 4-connected. Holes inside a
// region (printed text, for example) never produce curves, and regions that
// sit inside such holes are skipped. Curves run clockwise on screen, start at
// the region's top-most then left-most pixel, and have straight runs
// compressed to their end points.
func FindOuterContours(mask *image.Gray) []Curve {
	g := newBinaryGrid(mask)
	if g.width == 0 || g.height == 0 {
		return nil
	}

	exterior := markExterior(g)
	visited := newVisited(g.width, g.height)

	var curves []Curve
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			if !g.cells[y][x] || visited[y][x] {
				continue
			}
			floodFill(g, visited, image.Pt(x, y))

			// The first raster pixel of a region has background to its west.
			// If that background is reachable from the border the region is
			// outermost.
			if x > 0 && !exterior[y][x-1] {
				continue
			}
			curves = append(curves, compress(traceBoundary(g, image.Pt(x, y))))
		}
	}
	return curves
}

// markExterior flags the background reachable from the image border through
// 4-connected background pixels.
func markExterior(g *binaryGrid) [][]bool {
	exterior := newVisited(g.width, g.height)
	stack := make([]image.Point, 0, 2*(g.width+g.height))
	for x := 0; x < g.width; x++ {
		stack = append(stack, image.Pt(x, 0), image.Pt(x, g.height-1))
	}
	for y := 0; y < g.height; y++ {
		stack = append(stack, image.Pt(0, y), image.Pt(g.width-1, y))
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !g.inside(p) || exterior[p.Y][p.X] || g.cells[p.Y][p.X] {
			continue
		}
		exterior[p.Y][p.X] = true
		stack = append(stack,
			image.Pt(p.X+1, p.Y), image.Pt(p.X-1, p.Y),
			image.Pt(p.X, p.Y+1), image.Pt(p.X, p.Y-1))
	}
	return exterior
}

// floodFill marks the 8-connected foreground region containing start.
func floodFill(g *binaryGrid, visited [][]bool, start image.Point) {
	stack := []image.Point{start}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !g.fg(p) || visited[p.Y][p.X] {
			continue
		}
		visited[p.Y][p.X] = true

		for _, d := range moore {
			stack = append(stack, p.Add(d))
		}
	}
}

// nextBoundary scans the neighbours of cur clockwise, starting just after the
// backtrack direction, and returns the first foreground pixel along with the
// backtrack direction to use from it.
func nextBoundary(g *binaryGrid, cur image.Point, back int) (image.Point, int, bool) {
	for k := 1; k <= 8; k++ {
		d := (back + k) % 8
		p := cur.Add(moore[d])
		if !g.fg(p) {
			continue
		}
		prev := cur.Add(moore[(d+7)%8])
		return p, dirIndex(prev.Sub(p)), true
	}
	return cur, back, false
}

// traceBoundary follows the outer boundary of the region whose first raster
// pixel is start, using Moore-neighbour tracing with Jacob's stopping
// criterion.
func traceBoundary(g *binaryGrid, start image.Point) []image.Point {
	points := []image.Point{start}

	next, back, ok := nextBoundary(g, start, west)
	if !ok {
		return points
	}
	first := next

	limit := 4*g.width*g.height + 8
	for i := 0; i < limit; i++ {
		cur := next
		next, back, _ = nextBoundary(g, cur, back)
		if cur == start && next == first {
			break
		}
		points = append(points, cur)
	}
	return points
}

// compress drops points that lie inside a straight run of equal moves and
// converts the rest to geometry points.
func compress(points []image.Point) Curve {
	n := len(points)
	if n < 3 {
		c := make(Curve, n)
		for i, p := range points {
			c[i] = geometry.Pt(float64(p.X), float64(p.Y))
		}
		return c
	}

	c := make(Curve, 0, n)
	for i, p := range points {
		prev := points[(i+n-1)%n]
		next := points[(i+1)%n]
		if p.Sub(prev) == next.Sub(p) {
			continue
		}
		c = append(c, geometry.Pt(float64(p.X), float64(p.Y)))
	}
	return c
}
