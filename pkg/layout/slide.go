package layout

import (
	"fmt"

	"gigslides/pkg/gig"
)

// MaxContentSlides is Instagram's 10-image carousel cap minus the title slide
const MaxContentSlides = 9

// WarningKind classifies a packing warning
type WarningKind string

const (
	WarningOversize           WarningKind = "oversize"
	WarningSlideCountExceeded WarningKind = "slide_count_exceeded"
)

// Warning is a non-fatal packing problem. For oversize warnings ItemIndex,
// Height and Budget describe the gig; for slide-count warnings Budget holds
// the slide cap and the Dropped fields count what was cut.
type Warning struct {
	Kind          WarningKind `json:"kind"`
	ItemIndex     int         `json:"item_index"`
	Height        int         `json:"height"`
	Budget        int         `json:"budget"`
	DroppedSlides int         `json:"dropped_slides,omitempty"`
	DroppedGigs   int         `json:"dropped_gigs,omitempty"`
}

func (w Warning) String() string {
	switch w.Kind {
	case WarningOversize:
		return fmt.Sprintf("gig %d is %dpx tall, taller than the %dpx slide", w.ItemIndex, w.Height, w.Budget)
	case WarningSlideCountExceeded:
		return fmt.Sprintf("%d slides (%d gigs) dropped to stay within %d content slides", w.DroppedSlides, w.DroppedGigs, w.Budget)
	default:
		return string(w.Kind)
	}
}

// Slide is a contiguous run of gigs that fits the height budget, or a single
// oversize gig.
type Slide struct {
	Gigs     []gig.Record `json:"gigs"`
	Heights  []int        `json:"heights"`
	Height   int          `json:"height"`
	Offset   int          `json:"offset"`
	Oversize bool         `json:"oversize,omitempty"`
}

// SlideSet is the result of packing and limiting
type SlideSet struct {
	Slides    []Slide   `json:"slides"`
	Warnings  []Warning `json:"warnings"`
	Truncated bool      `json:"truncated"`
}

// GigCount returns the number of gigs across all slides
func (s SlideSet) GigCount() int {
	n := 0
	for _, slide := range s.Slides {
		n += len(slide.Gigs)
	}
	return n
}

// WarningsOf returns the warnings of one kind
func (s SlideSet) WarningsOf(kind WarningKind) []Warning {
	var out []Warning
	for _, w := range s.Warnings {
		if w.Kind == kind {
			out = append(out, w)
		}
	}
	return out
}
