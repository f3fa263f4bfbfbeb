package detection

import (
	"fmt"
	"image"
	"sort"

	imgproc "github.com/ironsheep/docscan-mcp/internal/imaging"
	"github.com/ironsheep/docscan-mcp/internal/scanerr"
)

// Selection names a policy for picking the document among the extracted
// curves.
type Selection string

const (
	// BestQuad ranks the largest curves by area and takes the first one
	// that approximates to four vertices.
	BestQuad Selection = "best_quad"

	// LargestArea takes the curve enclosing the most area.
	LargestArea Selection = "largest_area"
)

// Selection defaults.
const (
	DefaultThreshold  = 60
	DefaultCandidates = 5

	bestQuadEpsilon    = 0.02
	largestAreaEpsilon = 0.009
)

// ParseSelection validates a selection name. The empty string selects
// BestQuad.
func ParseSelection(name string) (Selection, error) {
	switch Selection(name) {
	case "", BestQuad:
		return BestQuad, nil
	case LargestArea:
		return LargestArea, nil
	default:
		return "", fmt.Errorf("unknown selection %q (want %q or %q)", name, BestQuad, LargestArea)
	}
}

// DefaultEpsilon returns the arc-length tolerance fraction used by s.
func (s Selection) DefaultEpsilon() float64 {
	if s == LargestArea {
		return largestAreaEpsilon
	}
	return bestQuadEpsilon
}

// Region is the curve chosen as the document and its polygon approximation.
type Region struct {
	// Boundary is the selected outer curve.
	Boundary Curve `json:"-"`

	// Vertices is the approximated polygon. Best-quad selection always
	// yields four; largest-area selection may yield any number.
	Vertices Curve `json:"vertices"`

	// Area is the area enclosed by Boundary in square pixels.
	Area float64 `json:"area"`

	// Perimeter is the arc length of Boundary in pixels.
	Perimeter float64 `json:"perimeter"`

	// Candidates is the number of outer curves found in the mask.
	Candidates int `json:"candidates"`
}

// Extract builds the foreground mask of img at threshold and returns the
// outer boundary of every top-level foreground region.
//
// # Errors
//
//   - scanerr.ErrNoRegionFound if the mask has no foreground
func Extract(img image.Image, threshold uint8) ([]Curve, error) {
	curves := FindOuterContours(imgproc.ForegroundMask(img, threshold))
	if len(curves) == 0 {
		return nil, scanerr.New(scanerr.StageExtractor, scanerr.ErrNoRegionFound,
			"no foreground above threshold %d", threshold)
	}
	return curves, nil
}

// Select applies the named policy. limit is only used by BestQuad.
func Select(curves []Curve, mode Selection, fraction float64, limit int) (*Region, error) {
	switch mode {
	case LargestArea:
		return SelectLargest(curves, fraction)
	case BestQuad, "":
		return SelectBestQuad(curves, fraction, limit)
	default:
		return nil, scanerr.New(scanerr.StageConfig, scanerr.ErrInvalidConfiguration,
			"unknown selection %q", mode)
	}
}

// SelectLargest picks the curve with the largest area and approximates it.
// The first curve wins a tie.
func SelectLargest(curves []Curve, fraction float64) (*Region, error) {
	if len(curves) == 0 {
		return nil, scanerr.New(scanerr.StageExtractor, scanerr.ErrNoRegionFound, "no curves to select from")
	}

	best, bestArea := 0, Area(curves[0])
	for i := 1; i < len(curves); i++ {
		if a := Area(curves[i]); a > bestArea {
			best, bestArea = i, a
		}
	}

	vertices, err := Approximate(curves[best], fraction)
	if err != nil {
		return nil, err
	}
	return &Region{
		Boundary:   curves[best],
		Vertices:   vertices,
		Area:       bestArea,
		Perimeter:  ArcLength(curves[best]),
		Candidates: len(curves),
	}, nil
}

// SelectBestQuad ranks curves by area, largest first, and returns the first
// of the top limit whose approximation has exactly four vertices. Curves
// with equal area keep their extraction order. A limit below 1 considers
// every curve.
//
// # Errors
//
//   - scanerr.ErrNoRegionFound if no ranked curve approximates to four vertices
//   - scanerr.ErrInvalidConfiguration if fraction is not positive
func SelectBestQuad(curves []Curve, fraction float64, limit int) (*Region, error) {
	if len(curves) == 0 {
		return nil, scanerr.New(scanerr.StageExtractor, scanerr.ErrNoRegionFound, "no curves to select from")
	}

	areas := make([]float64, len(curves))
	order := make([]int, len(curves))
	for i, c := range curves {
		areas[i] = Area(c)
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return areas[order[i]] > areas[order[j]] })

	if limit < 1 || limit > len(order) {
		limit = len(order)
	}
	for _, idx := range order[:limit] {
		vertices, err := Approximate(curves[idx], fraction)
		if err != nil {
			return nil, err
		}
		if len(vertices) != 4 {
			continue
		}
		return &Region{
			Boundary:   curves[idx],
			Vertices:   vertices,
			Area:       areas[idx],
			Perimeter:  ArcLength(curves[idx]),
			Candidates: len(curves),
		}, nil
	}

	return nil, scanerr.New(scanerr.StageApproximator, scanerr.ErrNoRegionFound,
		"none of the %d largest regions approximates to four vertices", limit)
}
