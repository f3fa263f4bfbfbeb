package scanner

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/docscan-mcp/internal/detection"
	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"github.com/ironsheep/docscan-mcp/internal/scanerr"
)

// createRectangleImage draws a white inclusive rectangle on black.
func createRectangleImage(width, height, x0, y0, x1, y1 int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.RGBA{0, 0, 0, 255}
			if x >= x0 && x <= x1 && y >= y0 && y <= y1 {
				c = color.RGBA{255, 255, 255, 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

// createDiamondImage draws a white square rotated by 45 degrees on black.
func createDiamondImage(width, height, cx, cy, r int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.RGBA{0, 0, 0, 255}
			if iabs(x-cx)+iabs(y-cy) <= r {
				c = color.RGBA{255, 255, 255, 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

// createQuadImage fills the convex quadrilateral with clockwise corners c
// with white on black.
func createQuadImage(width, height int, c [4]geometry.Point) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			inside := true
			for i := 0; i < 4; i++ {
				a, b := c[i], c[(i+1)%4]
				cross := (b.X-a.X)*(float64(y)-a.Y) - (b.Y-a.Y)*(float64(x)-a.X)
				if cross < 0 {
					inside = false
					break
				}
			}
			col := color.RGBA{0, 0, 0, 255}
			if inside {
				col = color.RGBA{255, 255, 255, 255}
			}
			img.Set(x, y, col)
		}
	}
	return img
}

func iabs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func checkCorners(t *testing.T, got geometry.OrderedQuad, want [4]geometry.Point, tol float64) {
	t.Helper()
	for i, p := range got.Points() {
		if p.Dist(want[i]) > tol {
			t.Errorf("corner %d: got %v, want within %v of %v", i, p, tol, want[i])
		}
	}
}

func TestScan_AxisAlignedRectangle(t *testing.T) {
	img := createRectangleImage(700, 500, 100, 100, 500, 400)

	res, err := Scan(img, nil, nil)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	checkCorners(t, res.Corners, [4]geometry.Point{
		geometry.Pt(100, 100), geometry.Pt(500, 100), geometry.Pt(500, 400), geometry.Pt(100, 400),
	}, 1.5)

	if res.Width != 400 || res.Height != 300 {
		t.Fatalf("size: got %dx%d, want 400x300", res.Width, res.Height)
	}
	if b := res.Rectified.Bounds(); b.Dx() != res.Width || b.Dy() != res.Height {
		t.Fatalf("raster bounds %v do not match %dx%d", b, res.Width, res.Height)
	}

	// The traced corners sit on the blurred edge and may each be off by a
	// pixel, so the outermost rows and columns can pick up dark background
	// through the slight slant. Inside that band the page is uniformly white.
	for y := 3; y < res.Height-3; y++ {
		for x := 3; x < res.Width-3; x++ {
			r, g, b, _ := res.Rectified.At(x, y).RGBA()
			if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
				t.Fatalf("pixel (%d,%d) is not white: %d,%d,%d", x, y, r>>8, g>>8, b>>8)
			}
		}
	}

	if res.Detection == nil || res.Detection.Candidates != 1 || res.Detection.Scale != 1 {
		t.Errorf("unexpected detection report: %+v", res.Detection)
	}
	if res.Paper.HSL.L < 90 {
		t.Errorf("paper lightness %d, want a white page", res.Paper.HSL.L)
	}
	if res.Scanned != nil || res.Binarized {
		t.Error("binarization should be off by default")
	}
	if res.Output() != res.Rectified {
		t.Error("Output should be the rectified raster when not binarized")
	}
}

func TestScan_Binarized(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Binarize = true

	res, err := Scan(createRectangleImage(700, 500, 100, 100, 500, 400), cfg, nil)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if res.Scanned == nil || !res.Binarized {
		t.Fatal("expected a binarized result")
	}
	if res.Output() != image.Image(res.Scanned) {
		t.Error("Output should be the scanned raster")
	}
	for _, v := range res.Scanned.Pix {
		if v != 0 && v != 255 {
			t.Fatalf("scan contains value %d", v)
		}
	}
	if got := res.Scanned.GrayAt(res.Width/2, res.Height/2).Y; got != 255 {
		t.Errorf("page centre: got %d, want 255", got)
	}
}

func TestScan_RotatedSquare(t *testing.T) {
	// A 200px square turned by 20 degrees about (350,250).
	want := [4]geometry.Point{
		geometry.Pt(290.23, 121.83), geometry.Pt(478.17, 190.23),
		geometry.Pt(409.77, 378.17), geometry.Pt(221.83, 309.77),
	}
	img := createQuadImage(700, 500, want)

	res, err := Scan(img, nil, nil)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	checkCorners(t, res.Corners, want, 3)

	if res.Width < 198 || res.Width > 204 || res.Height < 198 || res.Height > 204 {
		t.Errorf("size: got %dx%d, want about 200x200", res.Width, res.Height)
	}
}

func TestScanner_RectifyExplicitCorners(t *testing.T) {
	s, err := New(nil, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	corners := []geometry.Point{
		geometry.Pt(150, 250), geometry.Pt(350, 450), geometry.Pt(550, 250), geometry.Pt(350, 50),
	}
	res, err := s.Rectify(createDiamondImage(700, 500, 350, 250, 200), corners)
	if err != nil {
		t.Fatalf("Rectify failed: %v", err)
	}
	if res.Width != 282 || res.Height != 282 {
		t.Errorf("size: got %dx%d, want 282x282", res.Width, res.Height)
	}
	if res.Detection != nil {
		t.Error("explicit corners should not produce a detection report")
	}
	if res.Corners.TopLeft != geometry.Pt(350, 50) || res.Corners.BottomLeft != geometry.Pt(150, 250) {
		t.Errorf("unexpected ordering: %+v", res.Corners)
	}
}

func TestScanner_RectifyDegenerateCorners(t *testing.T) {
	s, err := New(nil, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	corners := []geometry.Point{
		geometry.Pt(0, 0), geometry.Pt(50, 50), geometry.Pt(100, 100), geometry.Pt(0, 100),
	}
	_, err = s.Rectify(createRectangleImage(120, 120, 10, 10, 100, 100), corners)
	if !errors.Is(err, scanerr.ErrDegenerateQuadrilateral) {
		t.Errorf("got %v, want ErrDegenerateQuadrilateral", err)
	}
}

func TestScanner_RectifyOversizedCorners(t *testing.T) {
	s, err := New(nil, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	tests := []struct {
		name    string
		corners []geometry.Point
	}{
		{"far outside", []geometry.Point{
			geometry.Pt(0, 0), geometry.Pt(1e6, 0), geometry.Pt(1e6, 1e6), geometry.Pt(0, 1e6),
		}},
		{"beyond condition limit", []geometry.Point{
			geometry.Pt(0, 0), geometry.Pt(1e9, 0), geometry.Pt(1e9, 1e9), geometry.Pt(0, 1e9),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.Rectify(createRectangleImage(50, 50, 10, 10, 40, 40), tt.corners)
			if !errors.Is(err, scanerr.ErrInvalidConfiguration) {
				t.Fatalf("got %v, want ErrInvalidConfiguration", err)
			}
			if res != nil {
				t.Error("no result should be returned with an error")
			}
		})
	}
}

func TestScan_DetectionDownscale(t *testing.T) {
	img := createRectangleImage(1400, 1000, 200, 200, 1000, 800)
	cfg := DefaultConfig()
	cfg.DetectionHeight = 500

	res, err := Scan(img, cfg, nil)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if res.Detection.Scale != 2 {
		t.Errorf("scale: got %v, want 2", res.Detection.Scale)
	}
	checkCorners(t, res.Corners, [4]geometry.Point{
		geometry.Pt(200, 200), geometry.Pt(1000, 200), geometry.Pt(1000, 800), geometry.Pt(200, 800),
	}, 4)
	if res.Width < 798 || res.Width > 806 || res.Height < 598 || res.Height > 606 {
		t.Errorf("size: got %dx%d, want about 800x600 at full resolution", res.Width, res.Height)
	}
}

func TestScan_SubImageCoordinates(t *testing.T) {
	big := createRectangleImage(800, 600, 150, 150, 550, 450)
	sub := big.SubImage(image.Rect(50, 50, 750, 550))

	res, err := Scan(sub, nil, nil)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	checkCorners(t, res.Corners, [4]geometry.Point{
		geometry.Pt(100, 100), geometry.Pt(500, 100), geometry.Pt(500, 400), geometry.Pt(100, 400),
	}, 2)
}

func TestScan_Failures(t *testing.T) {
	disc := image.NewRGBA(image.Rect(0, 0, 300, 300))
	for y := 0; y < 300; y++ {
		for x := 0; x < 300; x++ {
			c := color.RGBA{0, 0, 0, 255}
			if (x-150)*(x-150)+(y-150)*(y-150) <= 100*100 {
				c = color.RGBA{255, 255, 255, 255}
			}
			disc.Set(x, y, c)
		}
	}
	largest := DefaultConfig()
	largest.Selection = detection.LargestArea

	badBlock := DefaultConfig()
	badBlock.BlockSize = 4

	tests := []struct {
		name  string
		img   image.Image
		cfg   *Config
		want  error
		stage string
	}{
		{"blank photograph", createRectangleImage(200, 100, -1, -1, -1, -1), nil, scanerr.ErrNoRegionFound, scanerr.StageExtractor},
		{"no quadrilateral", disc, nil, scanerr.ErrNoRegionFound, scanerr.StageApproximator},
		{"largest area not a quadrilateral", disc, largest, scanerr.ErrDegenerateQuadrilateral, scanerr.StageOrderer},
		{"even block size", disc, badBlock, scanerr.ErrInvalidConfiguration, scanerr.StageConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Scan(tt.img, tt.cfg, nil)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			if res != nil {
				t.Error("no result may be returned with an error")
			}
			if got := scanerr.StageOf(err); got != tt.stage {
				t.Errorf("stage: got %q, want %q", got, tt.stage)
			}
		})
	}
}

func TestScanner_DebugLogging(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetLevel(logrus.DebugLevel)

	s, err := New(nil, log)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := s.Scan(createRectangleImage(300, 200, 50, 40, 250, 160)); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"region selected", "document rectified", "vertices=4"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestNew_DoesNotAliasConfig(t *testing.T) {
	cfg := DefaultConfig()
	s, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	cfg.Threshold = 200
	if s.Config().Threshold != 60 {
		t.Error("Scanner should keep its own copy of the configuration")
	}
}
