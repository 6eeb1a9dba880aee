package layout

import (
	errs "gigslides/pkg/errors"
	"gigslides/pkg/gig"
)

// Pack distributes gigs over slides of budget pixels, first-fit in input order.
// A gig that exactly fills the remaining space stays on the slide. A gig
// taller than the budget gets a warning and a slide of its own; the next gig
// always starts a new slide after it.
//
// Input is validated up front so an error never comes with a partial result.
func Pack(gigs []gig.Record, est HeightEstimator, budget int) (SlideSet, error) {
	if budget <= 0 {
		return SlideSet{}, errs.InvalidInput("budget must be positive, got %d", budget)
	}
	if est == nil {
		return SlideSet{}, errs.InvalidInput("height estimator is required")
	}
	for _, g := range gigs {
		if err := g.Validate(); err != nil {
			return SlideSet{}, err
		}
	}

	heights := make([]int, len(gigs))
	for i, g := range gigs {
		h := est.EstimateHeight(g)
		if h < 0 {
			return SlideSet{}, errs.InvalidInput("estimator returned negative height %d for gig %d", h, i)
		}
		heights[i] = h
	}

	set := SlideSet{Slides: []Slide{}, Warnings: []Warning{}}
	current := Slide{}
	for i, g := range gigs {
		h := heights[i]
		oversize := h > budget
		if oversize {
			set.Warnings = append(set.Warnings, Warning{
				Kind:      WarningOversize,
				ItemIndex: i,
				Height:    h,
				Budget:    budget,
			})
		}

		if len(current.Gigs) > 0 && current.Height+h > budget {
			set.Slides = append(set.Slides, current)
			current = Slide{Offset: i}
		}

		current.Gigs = append(current.Gigs, g)
		current.Heights = append(current.Heights, h)
		current.Height += h
		current.Oversize = current.Oversize || oversize
	}
	if len(current.Gigs) > 0 {
		set.Slides = append(set.Slides, current)
	}

	return set, nil
}
