package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/docscan-mcp/internal/detection"
	imgproc "github.com/ironsheep/docscan-mcp/internal/imaging"
	"github.com/ironsheep/docscan-mcp/internal/scanner"
)

// scanFlags are the command-line overrides of the scan subcommand.
type scanFlags struct {
	output     string
	configPath string
	threshold  int
	mode       string
	epsilon    float64
	height     int
	binarize   bool
	blockSize  int
	offset     float64
	nearest    bool
}

func newScanFlagSet(f *scanFlags, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: docscan-mcp scan [flags] <image>")
		fmt.Fprintln(stderr)
		fs.PrintDefaults()
	}

	fs.StringVar(&f.output, "o", "", "Output path (default <image>_scan.png)")
	fs.StringVar(&f.configPath, "config", "", "JSON scanner configuration file")
	fs.IntVar(&f.threshold, "threshold", detection.DefaultThreshold, "Luminance cutoff (0-255) for the document mask")
	fs.StringVar(&f.mode, "mode", string(detection.BestQuad), "Region selection: best_quad or largest_area")
	fs.Float64Var(&f.epsilon, "epsilon", 0, "Approximation tolerance as a fraction of the outline length (0 = mode default)")
	fs.IntVar(&f.height, "height", 0, "Detect on a copy resized to this height (0 = full resolution)")
	fs.BoolVar(&f.binarize, "binarize", false, "Apply the black-and-white scan effect")
	fs.IntVar(&f.blockSize, "block-size", imgproc.DefaultBlockSize, "Odd window size of the scan threshold")
	fs.Float64Var(&f.offset, "offset", imgproc.DefaultOffset, "Constant subtracted from the local mean")
	fs.BoolVar(&f.nearest, "nearest", false, "Use nearest-neighbour instead of bilinear resampling")
	return fs
}

// configure loads the -config file and applies the flags that were set on
// the command line over it.
func (f *scanFlags) configure(fs *flag.FlagSet) (*scanner.Config, error) {
	cfg, err := scanner.LoadConfig(f.configPath)
	if err != nil {
		return nil, err
	}

	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "threshold":
			cfg.Threshold = f.threshold
		case "mode":
			cfg.Selection = detection.Selection(f.mode)
		case "epsilon":
			cfg.Epsilon = f.epsilon
		case "height":
			cfg.DetectionHeight = f.height
		case "binarize":
			cfg.Binarize = f.binarize
		case "block-size":
			cfg.BlockSize = f.blockSize
		case "offset":
			cfg.Offset = f.offset
		case "nearest":
			if f.nearest {
				cfg.Interpolation = imgproc.Nearest
			} else {
				cfg.Interpolation = imgproc.Bilinear
			}
		}
	})
	return cfg, nil
}

// defaultOutputPath returns <dir>/<base>_scan.png for input.
func defaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_scan.png"
}

// runScan implements the scan subcommand: load one photograph, run the
// pipeline and write the result. A summary goes to stdout; usage and flag
// errors go to stderr.
func runScan(args []string, stdout, stderr io.Writer, log logrus.FieldLogger) error {
	var f scanFlags
	fs := newScanFlagSet(&f, stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("scan needs exactly one image")
	}
	input := fs.Arg(0)
	if f.output == "" {
		f.output = defaultOutputPath(input)
	}

	cfg, err := f.configure(fs)
	if err != nil {
		return err
	}

	img, err := imgproc.NewImageCache().Load(input)
	if err != nil {
		return err
	}

	res, err := scanner.Scan(img, cfg, log.WithField("image", input))
	if err != nil {
		return err
	}
	if err := imgproc.Save(res.Output(), f.output); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"output":    f.output,
		"width":     res.Width,
		"height":    res.Height,
		"binarized": res.Binarized,
	}).Info("document scanned")

	q := res.Corners
	fmt.Fprintf(stdout, "corners: top-left %v, top-right %v, bottom-right %v, bottom-left %v\n",
		q.TopLeft, q.TopRight, q.BottomRight, q.BottomLeft)
	fmt.Fprintf(stdout, "output:  %s (%dx%d)\n", f.output, res.Width, res.Height)
	return nil
}
