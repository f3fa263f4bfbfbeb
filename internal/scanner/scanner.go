package scanner

import (
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/docscan-mcp/internal/detection"
	"github.com/ironsheep/docscan-mcp/internal/geometry"
	imgproc "github.com/ironsheep/docscan-mcp/internal/imaging"
	"github.com/ironsheep/docscan-mcp/internal/scanerr"
)

// Detection describes the document found in a photograph. Coordinates and
// measurements are in source-photograph pixels.
type Detection struct {
	// Corners are the ordered document corners.
	Corners geometry.OrderedQuad `json:"corners"`

	// Vertices is the approximated polygon before ordering.
	Vertices []geometry.Point `json:"vertices"`

	// Area and Perimeter describe the selected boundary curve.
	Area      float64 `json:"area"`
	Perimeter float64 `json:"perimeter"`

	// Candidates is the number of outer curves found in the mask.
	Candidates int `json:"candidates"`

	// Scale is the factor from the detection raster to the photograph;
	// 1 when detection ran at full resolution.
	Scale float64 `json:"scale"`
}

// Result is the output of one pipeline run.
type Result struct {
	// Detection is nil when the caller supplied the corners.
	Detection *Detection `json:"detection,omitempty"`

	Corners    geometry.OrderedQuad `json:"corners"`
	Width      int                  `json:"width"`
	Height     int                  `json:"height"`
	Homography geometry.Homography  `json:"homography"`

	// Paper is the mean colour of the rectified document.
	Paper imgproc.ColorResult `json:"paper"`

	Binarized bool `json:"binarized"`

	// Rectified is the flattened document.
	Rectified image.Image `json:"-"`

	// Scanned is the binarized document, or nil if binarization is off.
	Scanned *image.Gray `json:"-"`
}

// Output returns the final raster: the scan if binarization ran, the
// rectified document otherwise.
func (r *Result) Output() image.Image {
	if r.Scanned != nil {
		return r.Scanned
	}
	return r.Rectified
}

// Scanner runs the pipeline with a fixed configuration. It holds no
// per-image state and is safe for concurrent use.
type Scanner struct {
	cfg Config
	log logrus.FieldLogger
}

// New validates cfg and returns a Scanner using it. A nil cfg selects
// DefaultConfig and a nil log discards output.
func New(cfg *Config, log logrus.FieldLogger) (*Scanner, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := *cfg
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}
	return &Scanner{cfg: c, log: log}, nil
}

// Config returns the validated configuration.
func (s *Scanner) Config() Config {
	return s.cfg
}

// Detect locates the document in img and orders its corners.
func (s *Scanner) Detect(img image.Image) (*Detection, error) {
	work, scale := s.detectionRaster(img)

	curves, err := detection.Extract(work, uint8(s.cfg.Threshold))
	if err != nil {
		return nil, err
	}
	region, err := detection.Select(curves, s.cfg.Selection, s.cfg.EffectiveEpsilon(), s.cfg.Candidates)
	if err != nil {
		return nil, err
	}

	vertices := make([]geometry.Point, len(region.Vertices))
	for i, v := range region.Vertices {
		vertices[i] = v.Scale(scale)
	}
	s.log.WithFields(logrus.Fields{
		"curves":   len(curves),
		"vertices": len(vertices),
		"area":     region.Area * scale * scale,
	}).Debug("region selected")

	corners, err := geometry.Order(vertices)
	if err != nil {
		return nil, err
	}

	return &Detection{
		Corners:    corners,
		Vertices:   vertices,
		Area:       region.Area * scale * scale,
		Perimeter:  region.Perimeter * scale,
		Candidates: region.Candidates,
		Scale:      scale,
	}, nil
}

// detectionRaster returns the raster detection runs on and the factor that
// maps its coordinates back onto img.
func (s *Scanner) detectionRaster(img image.Image) (image.Image, float64) {
	h := img.Bounds().Dy()
	target := s.cfg.DetectionHeight
	if target <= 0 || target >= h {
		return img, 1
	}
	small := imaging.Resize(img, 0, target, imaging.Box)
	return small, float64(h) / float64(small.Bounds().Dy())
}

// Scan detects the document in img, rectifies it and, if configured,
// binarizes the result.
func (s *Scanner) Scan(img image.Image) (*Result, error) {
	det, err := s.Detect(img)
	if err != nil {
		return nil, err
	}
	res, err := s.rectify(img, det.Corners)
	if err != nil {
		return nil, err
	}
	res.Detection = det
	return res, nil
}

// Rectify flattens the region bounded by corners, given in any order,
// skipping detection. Binarization follows the configuration.
//
// Corners whose target rectangle exceeds imaging.TargetBudget of img are
// rejected with scanerr.ErrInvalidConfiguration.
func (s *Scanner) Rectify(img image.Image, corners []geometry.Point) (*Result, error) {
	q, err := geometry.Order(corners)
	if err != nil {
		return nil, err
	}
	if err := imgproc.CheckTargetSize(img.Bounds(), q); err != nil {
		return nil, scanerr.New(scanerr.StageConfig, scanerr.ErrInvalidConfiguration, "corners: %v", err)
	}
	return s.rectify(img, q)
}

func (s *Scanner) rectify(img image.Image, q geometry.OrderedQuad) (*Result, error) {
	r, err := imgproc.Rectify(img, q, s.cfg.Interpolation)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"width":  r.Width,
		"height": r.Height,
	}).Debug("document rectified")

	res := &Result{
		Corners:    q,
		Width:      r.Width,
		Height:     r.Height,
		Homography: r.Homography,
		Paper:      imgproc.PaperColor(r.Image),
		Rectified:  r.Image,
	}

	if s.cfg.Binarize {
		scanned, err := s.Binarize(r.Image)
		if err != nil {
			return nil, err
		}
		res.Scanned = scanned
		res.Binarized = true
	}
	return res, nil
}

// Binarize applies the scan effect with the configured block size and
// offset.
func (s *Scanner) Binarize(img image.Image) (*image.Gray, error) {
	return imgproc.Binarize(img, s.cfg.BlockSize, s.cfg.Offset)
}

// Scan runs the full pipeline on img with cfg. A nil cfg selects
// DefaultConfig and a nil log discards output.
func Scan(img image.Image, cfg *Config, log logrus.FieldLogger) (*Result, error) {
	s, err := New(cfg, log)
	if err != nil {
		return nil, err
	}
	return s.Scan(img)
}
