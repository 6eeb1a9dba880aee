package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gigslides/pkg/gig"
)

func named(name string) gig.Record {
	return gig.Record{ID: name, Name: name, Venue: gig.Venue{Name: "The Tote"}}
}

func TestAnalyticEstimator(t *testing.T) {
	est := NewAnalyticEstimator(DefaultStyle())

	tests := []struct {
		name  string
		title string
		lines int
		want  int
	}{
		{"empty title counts as one line", "", 1, 72},
		{"short", "Amyl", 1, 72},
		{"exactly one line", strings.Repeat("x", 35), 1, 72},
		{"one over wraps", strings.Repeat("x", 36), 2, 96},
		{"three lines", strings.Repeat("x", 71), 3, 120},
		{"counts runes not bytes", strings.Repeat("é", 35), 1, 72},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.lines, est.NameLines(tt.title))
			assert.Equal(t, tt.want, est.EstimateHeight(named(tt.title)))
		})
	}
}

func TestAnalyticEstimatorFallsBackToDefaultWidth(t *testing.T) {
	est := NewAnalyticEstimator(Style{BaseHeight: 64, LineHeight: 24, Padding: 8})
	assert.Equal(t, 96, est.EstimateHeight(named(strings.Repeat("x", 40))))
}

func TestAnalyticEstimatorNeverNegative(t *testing.T) {
	est := NewAnalyticEstimator(Style{CharsPerLine: 10, BaseHeight: -100})
	assert.Equal(t, 0, est.EstimateHeight(named("short")))
}

func TestParseStrategy(t *testing.T) {
	for in, want := range map[string]Strategy{
		"":         StrategyAnalytic,
		"analytic": StrategyAnalytic,
		"DOM":      StrategyDOM,
		"measured": StrategyDOM,
	} {
		got, err := ParseStrategy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseStrategy("vibes")
	assert.Error(t, err)
}

func TestNewEstimator(t *testing.T) {
	est, err := NewEstimator(StrategyAnalytic, DefaultStyle(), nil)
	require.NoError(t, err)
	assert.IsType(t, &AnalyticEstimator{}, est)

	_, err = NewEstimator(StrategyDOM, DefaultStyle(), nil)
	assert.Error(t, err)

	est, err = NewEstimator(StrategyDOM, DefaultStyle(), fixedSurface(70))
	require.NoError(t, err)
	assert.Equal(t, 71, est.EstimateHeight(named("x")))
}

type fixedSurface int

func (f fixedSurface) Layout(Panel) PanelLayout {
	return PanelLayout{Height: int(f), Scale: 1}
}

func TestBuildPanel(t *testing.T) {
	rec := gig.Record{
		Name:         "the band",
		DisplayName:  "The Band",
		Venue:        gig.Venue{Name: "the tote"},
		DisplayVenue: "The Tote",
		Suburb:       "Collingwood",
		StartTime:    "20:00",
		GenreTags:    []string{"Punk", "Garage", "Noise"},
		DisplayPrice: "Free",
	}

	p := BuildPanel(rec, 2)
	assert.Equal(t, "The Band", p.Title)
	assert.Equal(t, "Punk · Garage", p.Genre)
	assert.Equal(t, "The Tote", p.Venue)
	assert.Equal(t, "Collingwood", p.Suburb)
	assert.Equal(t, "20:00", p.StartTime)
	assert.Equal(t, "Free", p.Price)

	assert.Equal(t, "Punk", BuildPanel(rec, 1).Genre)
	assert.Equal(t, "the band", BuildPanel(gig.Record{Name: "the band"}, 0).Title)
}
