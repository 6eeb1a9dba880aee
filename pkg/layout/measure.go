package layout

import (
	"strings"
	"sync"

	"gigslides/pkg/gig"
)

// DefaultMaxGenreTags is how many genre tags a panel shows
const DefaultMaxGenreTags = 2

// ItemMargin is the fixed gap between stacked panels
const ItemMargin = 1

const genreSeparator = " · "

// Panel is the text content of one gig panel
type Panel struct {
	Title     string
	Genre     string
	Venue     string
	Suburb    string
	StartTime string
	Price     string
}

// BuildPanel selects the text a gig shows. Only the first maxGenreTags
// genre tags are kept.
func BuildPanel(g gig.Record, maxGenreTags int) Panel {
	if maxGenreTags <= 0 {
		maxGenreTags = DefaultMaxGenreTags
	}
	tags := g.GenreTags
	if len(tags) > maxGenreTags {
		tags = tags[:maxGenreTags]
	}

	return Panel{
		Title:     firstNonEmpty(g.DisplayName, g.Name),
		Genre:     strings.Join(tags, genreSeparator),
		Venue:     firstNonEmpty(g.DisplayVenue, g.Venue.Name),
		Suburb:    g.Suburb,
		StartTime: g.StartTime,
		Price:     g.DisplayPrice,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// MeasuringEstimator measures each panel on a Surface and adds the inter-item
// margin. Calls are serialized because the surface's font faces are stateful.
type MeasuringEstimator struct {
	mu           sync.Mutex
	surface      Surface
	MaxGenreTags int
	Margin       int
}

// NewMeasuringEstimator wraps a surface
func NewMeasuringEstimator(surface Surface) *MeasuringEstimator {
	return &MeasuringEstimator{
		surface:      surface,
		MaxGenreTags: DefaultMaxGenreTags,
		Margin:       ItemMargin,
	}
}

// EstimateHeight implements HeightEstimator
func (e *MeasuringEstimator) EstimateHeight(g gig.Record) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	h := e.surface.Layout(BuildPanel(g, e.MaxGenreTags)).CSSHeight() + e.Margin
	if h < 0 {
		return 0
	}
	return h
}
