// Package viz renders zone windows as images for visual inspection.
//
// RenderValues paints a zone's pixel values on a perceptual color ramp and
// RenderStates paints the pixel classification directly. Both are meant for
// debugging coverage and classification questions ("why is this pixel not
// counted?") rather than for cartographic output.
package viz
