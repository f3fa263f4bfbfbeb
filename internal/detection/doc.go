// Package detection locates the document region in a photograph.
//
// Detection runs in two steps. Extract thresholds the smoothed luminance of
// the photograph and traces the outer boundary of every top-level
// foreground region as a Curve. A selection policy then reduces candidate
// curves to polygons with Approximate and picks the document:
//
//   - BestQuad ranks the largest curves (five by default) by area and takes
//     the first whose approximation has exactly four vertices.
//   - LargestArea takes the curve enclosing the most area, whatever its
//     vertex count.
//
// # Boundary Tracing
//
// Foreground pixels are 8-connected and background pixels 4-connected.
// Only outermost boundaries are traced: holes such as printed text inside a
// page never split the region, and anything drawn inside a hole is ignored.
// Curve points are pixel centres, so a filled rectangle covering columns
// 100..500 has vertices at x = 100 and x = 500.
//
// # Tolerance
//
// Approximate keeps a point when it lies farther than fraction × perimeter
// from the chord it would otherwise be merged into. BestQuad uses 0.02 and
// LargestArea 0.009 unless the caller overrides it.
package detection
