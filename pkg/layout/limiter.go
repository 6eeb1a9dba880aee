package layout

// Limit keeps the first maxSlides slides. When slides are cut it sets
// Truncated and appends a slide_count_exceeded warning. A set already within
// the cap is returned unchanged, and maxSlides <= 0 disables the cap.
func Limit(set SlideSet, maxSlides int) SlideSet {
	if maxSlides <= 0 || len(set.Slides) <= maxSlides {
		return set
	}

	dropped := set.Slides[maxSlides:]
	droppedGigs := 0
	for _, s := range dropped {
		droppedGigs += len(s.Gigs)
	}

	kept := make([]Slide, maxSlides)
	copy(kept, set.Slides[:maxSlides])

	warnings := make([]Warning, len(set.Warnings), len(set.Warnings)+1)
	copy(warnings, set.Warnings)
	warnings = append(warnings, Warning{
		Kind:          WarningSlideCountExceeded,
		ItemIndex:     dropped[0].Offset,
		Budget:        maxSlides,
		DroppedSlides: len(dropped),
		DroppedGigs:   droppedGigs,
	})

	return SlideSet{Slides: kept, Warnings: warnings, Truncated: true}
}
