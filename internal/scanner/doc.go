// Package scanner turns a photograph of a document into a flat, scanned-looking
// page.
//
// A Scanner is built from a validated Config and runs the stages in order:
//
//  1. Region extraction and vertex approximation (package detection),
//     optionally on a copy resized to Config.DetectionHeight.
//  2. Corner ordering (package geometry).
//  3. Projective rectification of the full-resolution photograph.
//  4. The optional scan effect, an adaptive Gaussian threshold.
//
// Every stage failure is a *scanerr.StageError; no partial raster is
// returned with an error. Configuration problems are reported by New before
// any stage runs.
//
// Rectify skips detection when the caller already knows the four corners.
//
// Scanners hold no per-image state. One Scanner may serve many goroutines.
package scanner
