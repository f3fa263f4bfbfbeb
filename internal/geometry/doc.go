// Package geometry provides the planar geometry of document rectification:
// sub-pixel points, quadrilaterals, canonical corner ordering, and the 3×3
// homography that maps a photographed page onto a fronto-parallel rectangle.
//
// # Coordinate System
//
// Coordinates are real-valued image coordinates:
//   - Origin (0, 0) at the center of the top-left pixel
//   - X increases rightward
//   - Y increases downward
//
// Sub-pixel precision is kept everywhere in this package. Truncation to
// integer pixels only happens when a raster is resampled.
//
// # Corner Roles
//
// An OrderedQuad names its corners by role, always in the sequence
// top-left, top-right, bottom-right, bottom-left. Order assigns roles from
// the coordinate sum (x+y) and difference (y-x) of each point:
//   - top-left: minimum sum
//   - bottom-right: maximum sum
//   - top-right: minimum difference
//   - bottom-left: maximum difference
//
// Exact ties are broken toward the side each role faces (top-left prefers the
// smaller y, top-right the larger x, bottom-right the larger y, bottom-left
// the smaller x), which resolves squares rotated by exactly 45°.
//
// # Homography
//
// Homography is a row-major 3×3 matrix normalized so that its bottom-right
// entry is 1. It is solved from four point correspondences as an 8×8 linear
// system using gonum.
package geometry
