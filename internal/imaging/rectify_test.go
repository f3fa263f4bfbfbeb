package imaging

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"github.com/ironsheep/docscan-mcp/internal/scanerr"
)

func gradientImage(width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x + y)})
		}
	}
	return img
}

func checkerboard(width, height, cell int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

func fullFrame(width, height int) geometry.OrderedQuad {
	w, h := float64(width-1), float64(height-1)
	return geometry.OrderedQuad{
		TopLeft:     geometry.Pt(0, 0),
		TopRight:    geometry.Pt(w, 0),
		BottomRight: geometry.Pt(w, h),
		BottomLeft:  geometry.Pt(0, h),
	}
}

func TestRectify_FullFrameNearIdentity(t *testing.T) {
	src := gradientImage(100, 80)

	res, err := Rectify(src, fullFrame(100, 80), Bilinear)
	if err != nil {
		t.Fatalf("Rectify failed: %v", err)
	}
	if res.Width != 99 || res.Height != 79 {
		t.Fatalf("size: got %dx%d, want 99x79", res.Width, res.Height)
	}

	out, ok := res.Image.(*image.Gray)
	if !ok {
		t.Fatalf("gray source should produce *image.Gray, got %T", res.Image)
	}
	for y := 0; y < res.Height; y++ {
		for x := 0; x < res.Width; x++ {
			got := int(out.GrayAt(x, y).Y)
			want := int(src.GrayAt(x, y).Y)
			if abs(got-want) > 3 {
				t.Fatalf("pixel (%d,%d): got %d, want ~%d", x, y, got, want)
			}
		}
	}
}

func TestRectify_CornersMapToTarget(t *testing.T) {
	q := geometry.OrderedQuad{
		TopLeft:     geometry.Pt(20, 30),
		TopRight:    geometry.Pt(180, 20),
		BottomRight: geometry.Pt(190, 140),
		BottomLeft:  geometry.Pt(10, 150),
	}

	res, err := Rectify(checkerboard(200, 160, 8), q, Bilinear)
	if err != nil {
		t.Fatalf("Rectify failed: %v", err)
	}

	wantW, wantH := q.TargetSize()
	if res.Width != wantW || res.Height != wantH {
		t.Fatalf("size: got %dx%d, want %dx%d", res.Width, res.Height, wantW, wantH)
	}
	if b := res.Image.Bounds(); b.Dx() != wantW || b.Dy() != wantH {
		t.Fatalf("raster bounds %v do not match %dx%d", b, wantW, wantH)
	}

	targets := geometry.TargetCorners(res.Width, res.Height)
	for i, src := range q.Points() {
		got, ok := res.Homography.Apply(src)
		if !ok {
			t.Fatalf("corner %d mapped to infinity", i)
		}
		if math.Abs(got.X-targets[i].X) > 1e-6 || math.Abs(got.Y-targets[i].Y) > 1e-6 {
			t.Errorf("corner %d: got %v, want %v", i, got, targets[i])
		}
	}
}

func TestRectify_OutOfBoundsBlack(t *testing.T) {
	src := createInMemoryImage(20, 20, color.RGBA{255, 255, 255, 255})
	q := geometry.OrderedQuad{
		TopLeft:     geometry.Pt(-10, -10),
		TopRight:    geometry.Pt(29, -10),
		BottomRight: geometry.Pt(29, 29),
		BottomLeft:  geometry.Pt(-10, 29),
	}

	res, err := Rectify(src, q, Bilinear)
	if err != nil {
		t.Fatalf("Rectify failed: %v", err)
	}
	out, ok := res.Image.(*image.NRGBA)
	if !ok {
		t.Fatalf("color source should produce *image.NRGBA, got %T", res.Image)
	}

	if c := out.NRGBAAt(0, 0); c != (color.NRGBA{0, 0, 0, 255}) {
		t.Errorf("outside sample: got %v, want opaque black", c)
	}
	if c := out.NRGBAAt(res.Width/2, res.Height/2); c != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("inside sample: got %v, want white", c)
	}
}

func TestRectify_NearestKeepsSourceValues(t *testing.T) {
	q := geometry.OrderedQuad{
		TopLeft:     geometry.Pt(5.3, 7.1),
		TopRight:    geometry.Pt(90.7, 3.9),
		BottomRight: geometry.Pt(95.2, 70.4),
		BottomLeft:  geometry.Pt(2.6, 66.8),
	}
	src := checkerboard(100, 80, 3)

	nearest, err := Rectify(src, q, Nearest)
	if err != nil {
		t.Fatalf("Rectify nearest failed: %v", err)
	}
	for _, v := range nearest.Image.(*image.Gray).Pix {
		if v != 0 && v != 255 {
			t.Fatalf("nearest sampling produced %d, want only 0 or 255", v)
		}
	}

	bilinear, err := Rectify(src, q, Bilinear)
	if err != nil {
		t.Fatalf("Rectify bilinear failed: %v", err)
	}
	blended := false
	for _, v := range bilinear.Image.(*image.Gray).Pix {
		if v != 0 && v != 255 {
			blended = true
			break
		}
	}
	if !blended {
		t.Error("bilinear sampling should blend neighbouring pixels")
	}
}

func TestRectify_SourceUnmodified(t *testing.T) {
	src := gradientImage(50, 50)
	before := append([]uint8(nil), src.Pix...)

	if _, err := Rectify(src, fullFrame(50, 50), Bilinear); err != nil {
		t.Fatalf("Rectify failed: %v", err)
	}
	for i := range before {
		if src.Pix[i] != before[i] {
			t.Fatal("Rectify modified its source image")
		}
	}
}

func TestRectify_EmptyTarget(t *testing.T) {
	p := geometry.Pt(10, 10)
	q := geometry.OrderedQuad{TopLeft: p, TopRight: p, BottomRight: p, BottomLeft: p}

	_, err := Rectify(gradientImage(20, 20), q, Bilinear)
	if !errors.Is(err, scanerr.ErrSingularTransform) {
		t.Errorf("got %v, want ErrSingularTransform", err)
	}
}

func TestRectify_OversizedTarget(t *testing.T) {
	q := geometry.OrderedQuad{
		TopLeft:     geometry.Pt(0, 0),
		TopRight:    geometry.Pt(1e6, 0),
		BottomRight: geometry.Pt(1e6, 1e6),
		BottomLeft:  geometry.Pt(0, 1e6),
	}

	res, err := Rectify(gradientImage(50, 50), q, Bilinear)
	if !errors.Is(err, scanerr.ErrSingularTransform) {
		t.Fatalf("got %v, want ErrSingularTransform", err)
	}
	if res != nil {
		t.Error("no result should be returned with an error")
	}
}

func TestCheckTargetSize(t *testing.T) {
	square := func(side float64) geometry.OrderedQuad {
		return geometry.OrderedQuad{
			TopLeft:     geometry.Pt(0, 0),
			TopRight:    geometry.Pt(side, 0),
			BottomRight: geometry.Pt(side, side),
			BottomLeft:  geometry.Pt(0, side),
		}
	}

	tests := []struct {
		name    string
		src     image.Rectangle
		q       geometry.OrderedQuad
		wantErr bool
	}{
		{"small source within floor", image.Rect(0, 0, 50, 50), square(2000), false},
		{"small source over floor", image.Rect(0, 0, 50, 50), square(2049), true},
		{"large source within four times", image.Rect(0, 0, 4000, 3000), square(6900), false},
		{"large source over four times", image.Rect(0, 0, 4000, 3000), square(7000), true},
		{"infinite corner", image.Rect(0, 0, 50, 50), square(math.Inf(1)), true},
		{"NaN corner", image.Rect(0, 0, 50, 50), square(math.NaN()), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckTargetSize(tt.src, tt.q)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckTargetSize error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseInterpolation(t *testing.T) {
	tests := []struct {
		in      string
		want    Interpolation
		wantErr bool
	}{
		{"", Bilinear, false},
		{"bilinear", Bilinear, false},
		{"nearest", Nearest, false},
		{"bicubic", "", true},
	}

	for _, tt := range tests {
		got, err := ParseInterpolation(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseInterpolation(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseInterpolation(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
