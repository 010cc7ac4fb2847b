// Package raster supplies windowed reads over gridded numeric data.
//
// A Source exposes a raster's shape, affine transform, optional nodata
// value, and windowed reads returning row-major float64 buffers. Two
// implementations are provided: MemorySource wraps a buffer already in
// memory, and FileSource decodes a grayscale image file georeferenced by an
// ESRI world file sitting next to it (slope.tif + slope.tfw). 16-bit
// grayscale samples are read as their integer values, so quantized data
// survives the trip through an image container.
//
// Sources are read-only after construction and safe for concurrent reads.
// The Cache keeps one open Source per path so a run over many geometries
// decodes each raster once.
package raster
