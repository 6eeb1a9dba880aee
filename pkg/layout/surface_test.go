package layout

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gigslides/pkg/gig"
)

func newSurface(t *testing.T, scale float64) *FontSurface {
	t.Helper()
	s, err := NewFontSurface(DefaultMetrics(), scale)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func fullRecord(name string) gig.Record {
	return gig.Record{
		ID:           name,
		Name:         name,
		DisplayName:  name,
		Venue:        gig.Venue{Name: "Corner Hotel"},
		DisplayVenue: "Corner Hotel",
		Suburb:       "Richmond",
		StartTime:    "20:30",
		DisplayPrice: "$Ticketed",
	}
}

func TestFontSurfaceSingleLinePanel(t *testing.T) {
	s := newSurface(t, 1)
	m := DefaultMetrics()

	l := s.Layout(BuildPanel(fullRecord("Amyl"), 2))

	want := m.TitleLineHeight + 2*m.BodyLineHeight + 2*m.PanelPadding
	assert.Equal(t, want, l.Height)
	assert.Equal(t, want, l.CSSHeight())
	assert.Equal(t, m.ContentWidth, l.Width)
}

func TestFontSurfaceWrapsLongTitles(t *testing.T) {
	s := newSurface(t, 1)

	short := s.Layout(BuildPanel(fullRecord("Amyl"), 2))
	long := s.Layout(BuildPanel(fullRecord(strings.Repeat("Supercalifragilistic Expialidocious ", 5)), 2))

	assert.Greater(t, long.Height, short.Height)
	for _, run := range long.Runs {
		assert.LessOrEqual(t, run.X+Advance(s.Face(run.Face), run.Text), long.Width, run.Text)
	}
}

func TestFontSurfaceGenreOnlyBesideShortTitle(t *testing.T) {
	s := newSurface(t, 1)

	rec := fullRecord("Amyl")
	rec.GenreTags = []string{"Punk"}
	l := s.Layout(BuildPanel(rec, 2))
	assert.True(t, hasRun(l, FaceGenre))

	rec = fullRecord(strings.Repeat("Long Title ", 10))
	rec.GenreTags = []string{"Punk"}
	l = s.Layout(BuildPanel(rec, 2))
	assert.False(t, hasRun(l, FaceGenre))
}

func TestFontSurfaceTruncatesLongGenre(t *testing.T) {
	s := newSurface(t, 1)

	rec := fullRecord("Amyl and the Sniffers")
	rec.GenreTags = []string{strings.Repeat("Psychedelic Garage Punk ", 8)}
	l := s.Layout(BuildPanel(rec, 2))

	var genre *TextRun
	for i := range l.Runs {
		if l.Runs[i].Face == FaceGenre {
			genre = &l.Runs[i]
		}
	}
	require.NotNil(t, genre)
	assert.True(t, strings.HasSuffix(genre.Text, "…"), genre.Text)
	assert.LessOrEqual(t, genre.X+Advance(s.Face(FaceGenre), genre.Text), l.Width)
	assert.Equal(t, s.Layout(BuildPanel(fullRecord("Amyl and the Sniffers"), 2)).Height, l.Height)
}

func TestFontSurfaceScaleKeepsCSSHeight(t *testing.T) {
	one := newSurface(t, 1).Layout(BuildPanel(fullRecord("Amyl"), 2))
	two := newSurface(t, 2).Layout(BuildPanel(fullRecord("Amyl"), 2))

	assert.Equal(t, 2*one.Height, two.Height)
	assert.Equal(t, one.CSSHeight(), two.CSSHeight())
}

func TestWrapTextBreaksLongWords(t *testing.T) {
	s := newSurface(t, 1)
	face := s.Face(FaceTitle)

	lines := WrapText(face, strings.Repeat("W", 80), 200)
	require.Greater(t, len(lines), 1)
	for _, line := range lines {
		assert.LessOrEqual(t, Advance(face, line), 200)
	}
	assert.Equal(t, strings.Repeat("W", 80), strings.Join(lines, ""))

	assert.Equal(t, []string{""}, WrapText(face, "   ", 200))
}

func TestTruncate(t *testing.T) {
	s := newSurface(t, 1)
	face := s.Face(FaceBody)

	assert.Equal(t, "Corner", Truncate(face, "Corner", 500))

	cut := Truncate(face, strings.Repeat("Very Long Venue Name ", 10), 120)
	assert.True(t, strings.HasSuffix(cut, "…"))
	assert.LessOrEqual(t, Advance(face, cut), 120)
}

func TestMeasuringEstimator(t *testing.T) {
	s := newSurface(t, 1)
	est := NewMeasuringEstimator(s)

	single := est.EstimateHeight(fullRecord("Amyl"))
	assert.Equal(t, s.Layout(BuildPanel(fullRecord("Amyl"), 2)).CSSHeight()+ItemMargin, single)
	assert.Equal(t, single, est.EstimateHeight(fullRecord("Amyl")), "stable for the same input")

	long := est.EstimateHeight(fullRecord(strings.Repeat("Supercalifragilistic ", 8)))
	assert.Greater(t, long, single)
}

func TestMeasuringEstimatorSerializesCalls(t *testing.T) {
	est := NewMeasuringEstimator(newSurface(t, 1))
	want := est.EstimateHeight(fullRecord("Amyl"))

	var wg sync.WaitGroup
	results := make([]int, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = est.EstimateHeight(fullRecord("Amyl"))
		}(i)
	}
	wg.Wait()

	for _, h := range results {
		assert.Equal(t, want, h)
	}
}

func hasRun(l PanelLayout, kind FaceKind) bool {
	for _, r := range l.Runs {
		if r.Face == kind {
			return true
		}
	}
	return false
}
