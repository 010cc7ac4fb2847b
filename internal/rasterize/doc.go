// Package rasterize burns vector geometries into pixel coverage masks.
//
// Geometries are projected into fractional pixel space through the inverse
// of the window transform, so all scan conversion happens on a unit grid and
// sheared transforms need no special cases.
//
// # Rasterization Rules
//
// Two inclusion rules are supported, matching the two GDAL burn modes:
//
//   - Center-in (default): a pixel is covered when its center lies inside
//     the geometry. Polygon interiors are filled by an even-odd scanline
//     pass over the ring edges; line strings burn the cells visited by a
//     Bresenham walk between consecutive vertices.
//   - All-touched: a pixel is covered when the geometry intersects any part
//     of its footprint. Implemented as the center-in result plus a
//     supercover grid traversal of every boundary segment, which visits
//     each cell a segment passes through.
//
// # Points
//
// Point and multi-point geometries are ill-defined under either rule, so
// each point is first replaced by its owning pixel's footprint rectangle,
// shrunk by 1% of the smaller pixel dimension to keep neighboring pixels
// from being included when a point sits exactly on a pixel edge. The
// resulting multi-polygon goes through the ordinary polygon path.
//
// # Fractional Coverage
//
// FracMask estimates per-pixel coverage fractions by rasterizing at an
// integer multiple of the native resolution and rebinning: each native pixel
// receives the mean of its scale×scale block of oversampled cells. This is a
// numerical approximation of geometric area, not an exact computation; the
// default factor of 10 gives 1% resolution per axis.
package rasterize
