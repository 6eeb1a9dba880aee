// Package layout partitions an ordered list of gigs into fixed-height slides.
//
// The pipeline is three steps:
//
//	est := layout.NewAnalyticEstimator(layout.DefaultStyle())
//	set, err := layout.Pack(records, est, 872)
//	set = layout.Limit(set, layout.MaxContentSlides)
//
// Pack is a greedy first-fit over the input order: gigs are never reordered
// and every gig lands on exactly one slide. A gig taller than the budget is
// isolated on its own slide and reported as a warning rather than dropped.
// Limit keeps the first N slides of an over-long set and records how many
// slides and gigs were cut.
//
// Two height estimators are provided. AnalyticEstimator is a closed-form
// function of the title length. MeasuringEstimator lays the panel out on a
// Surface backed by real font metrics, the same surface the renderer draws
// with, so measured heights match what ends up in the PNG.
package layout
