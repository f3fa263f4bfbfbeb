// Package imaging provides the raster operations of the document scanner.
//
// It covers the pixel-level stages of the pipeline: luminance conversion,
// smoothing and thresholding for region extraction, projective warping for
// rectification, and the adaptive Gaussian threshold that gives the scanned
// look. Loading, encoding, colour reporting and outline previews for the MCP
// server live here too. All operations work with standard Go image.Image
// types and use a coordinate system where (0,0) is the top-left pixel of the
// image, X increases rightward, and Y increases downward. Images whose bounds
// do not start at the origin are treated as if they did.
//
// # Outputs
//
//   - Luminance and ForegroundMask return *image.Gray with values 0 or 255
//     for masks
//   - Rectify returns *image.Gray for grayscale input and *image.NRGBA
//     otherwise
//   - Binarize always returns *image.Gray holding only 0 and 255
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. All other operations are
// stateless and never modify their input.
//
// # Color Representation
//
// Colors are returned in multiple formats for flexibility:
//   - Hex: 6-character format "#rrggbb"
//   - RGB: 8-bit components (0-255)
//   - HSL: Hue (0-360), Saturation (0-100), Lightness (0-100)
//
// # Performance Considerations
//
// For repeated operations on the same image, use ImageCache to avoid redundant
// disk reads. Large images may consume significant memory when cached.
// Consider using Evict() or Clear() to manage memory for long-running processes.
package imaging
