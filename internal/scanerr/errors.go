// Package scanerr defines the failure kinds shared by every stage of the
// document scanning pipeline.
//
// Each kind is a sentinel error. Stages report failures as *StageError values
// that carry the stage name and a human-readable reason, and that match their
// kind through errors.Is:
//
//	_, err := scanner.Scan(img, cfg, nil)
//	if errors.Is(err, scanerr.ErrNoRegionFound) {
//	    // ask the user for a better photograph
//	}
//
// None of the failures are retried: the pipeline is deterministic for a given
// input and configuration.
package scanerr

import (
	"errors"
	"fmt"
)

// Failure kinds.
var (
	// ErrNoRegionFound means the mask held no foreground curves, or none of
	// the ranked candidates approximated to exactly four vertices.
	ErrNoRegionFound = errors.New("no region found")

	// ErrDegenerateQuadrilateral means two corner roles resolved to the same
	// point, or the ordered corners are collinear or not convex.
	ErrDegenerateQuadrilateral = errors.New("degenerate quadrilateral")

	// ErrSingularTransform means the homography could not be solved or
	// inverted, or the target rectangle has a non-positive side.
	ErrSingularTransform = errors.New("singular transform")

	// ErrInvalidConfiguration means a parameter was rejected before the
	// pipeline ran.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// Stage names used in StageError messages.
const (
	StageConfig       = "configuration"
	StageExtractor    = "region extractor"
	StageApproximator = "vertex approximator"
	StageOrderer      = "corner orderer"
	StageRectifier    = "projective rectifier"
	StageBinarizer    = "scan-effect binarizer"
)

// StageError is a failure of one pipeline stage.
type StageError struct {
	Stage  string // pipeline stage that failed
	Kind   error  // one of the Err* sentinels
	Reason string // what exactly went wrong
}

// New returns a StageError for stage with the given kind and formatted reason.
func New(stage string, kind error, format string, args ...interface{}) *StageError {
	return &StageError{
		Stage:  stage,
		Kind:   kind,
		Reason: fmt.Sprintf(format, args...),
	}
}

// Error formats the failure as "<stage>: <kind>: <reason>".
func (e *StageError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %s", e.Stage, e.Kind, e.Reason)
}

// Unwrap exposes the failure kind to errors.Is.
func (e *StageError) Unwrap() error {
	return e.Kind
}

// StageOf returns the stage recorded in err, or "" if err is not a StageError.
func StageOf(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
