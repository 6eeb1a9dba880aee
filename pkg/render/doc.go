// Package render rasterizes carousel slides to PNG.
//
// Content slides are drawn from the PanelLayout that layout.FontSurface
// produces, so a gig occupies exactly the height the measuring estimator
// reported for it. A Renderer owns font faces and must not be shared between
// goroutines; create one per worker.
package render
