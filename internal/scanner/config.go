package scanner

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/ironsheep/docscan-mcp/internal/detection"
	imgproc "github.com/ironsheep/docscan-mcp/internal/imaging"
	"github.com/ironsheep/docscan-mcp/internal/scanerr"
)

// Config holds the pipeline parameters. Fields may be loaded from a JSON
// file and overridden by command-line flags or tool arguments.
type Config struct {
	// Threshold is the global cutoff (0-255) applied to the smoothed
	// luminance. Brighter pixels are foreground.
	Threshold int `json:"threshold"`

	// Selection picks the document among the extracted curves.
	Selection detection.Selection `json:"selection"`

	// Epsilon is the approximation tolerance as a fraction of the curve's
	// arc length. Zero selects the default of the selection mode.
	Epsilon float64 `json:"epsilon"`

	// Candidates is how many of the largest curves best-quad selection
	// tries before giving up.
	Candidates int `json:"candidates"`

	// DetectionHeight, when positive and smaller than the photograph,
	// runs detection on a copy resized to this height. The corners are
	// scaled back and rectification uses the full-resolution photograph.
	DetectionHeight int `json:"detection_height"`

	// Interpolation is the resampling mode of the rectifier.
	Interpolation imgproc.Interpolation `json:"interpolation"`

	// Binarize enables the scan effect on the rectified document.
	Binarize bool `json:"binarize"`

	// BlockSize is the odd side length of the adaptive threshold window.
	BlockSize int `json:"block_size"`

	// Offset is subtracted from the local mean to form each threshold.
	Offset float64 `json:"offset"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Threshold:       detection.DefaultThreshold,
		Selection:       detection.BestQuad,
		Epsilon:         0,
		Candidates:      detection.DefaultCandidates,
		DetectionHeight: 0,
		Interpolation:   imgproc.Bilinear,
		Binarize:        false,
		BlockSize:       imgproc.DefaultBlockSize,
		Offset:          imgproc.DefaultOffset,
	}
}

func invalid(format string, args ...interface{}) error {
	return scanerr.New(scanerr.StageConfig, scanerr.ErrInvalidConfiguration, format, args...)
}

// Validate rejects values the pipeline cannot run with. Empty selection and
// interpolation names are replaced by their defaults.
func (c *Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 255 {
		return invalid("threshold %d outside 0..255", c.Threshold)
	}

	sel, err := detection.ParseSelection(string(c.Selection))
	if err != nil {
		return invalid("%v", err)
	}
	c.Selection = sel

	if math.IsNaN(c.Epsilon) || math.IsInf(c.Epsilon, 0) || c.Epsilon < 0 {
		return invalid("tolerance fraction %g must be finite and not negative", c.Epsilon)
	}
	if c.Candidates < 1 {
		return invalid("candidates %d must be at least 1", c.Candidates)
	}
	if c.DetectionHeight < 0 {
		return invalid("detection height %d is negative", c.DetectionHeight)
	}

	interp, err := imgproc.ParseInterpolation(string(c.Interpolation))
	if err != nil {
		return invalid("%v", err)
	}
	c.Interpolation = interp

	if err := imgproc.ValidateBlockSize(c.BlockSize); err != nil {
		return invalid("block size %d must be odd and at least 3", c.BlockSize)
	}
	if math.IsNaN(c.Offset) || math.IsInf(c.Offset, 0) {
		return invalid("offset %g is not finite", c.Offset)
	}
	return nil
}

// EffectiveEpsilon returns the tolerance fraction the approximator uses.
func (c *Config) EffectiveEpsilon() float64 {
	if c.Epsilon == 0 {
		return c.Selection.DefaultEpsilon()
	}
	return c.Epsilon
}

// LoadConfig reads configuration from the given JSON file path. Fields
// absent from the file keep their defaults. If path is empty or the file
// does not exist it returns DefaultConfig().
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
