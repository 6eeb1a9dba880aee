package caption

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gigslides/pkg/config"
	errs "gigslides/pkg/errors"
	"gigslides/pkg/gig"
)

func newBuilder(t *testing.T, handles Handles, mutate func(*config.CaptionConfig)) *Builder {
	t.Helper()
	cfg := config.DefaultConfig().Caption
	if mutate != nil {
		mutate(&cfg)
	}
	b, err := NewBuilder(cfg, handles, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	return b
}

func record(name, venueID, venue, start string) gig.Record {
	return gig.Record{Name: name, Venue: gig.Venue{ID: venueID, Name: venue}, StartTime: start}
}

func TestLoadHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "handles.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"42":"@cornerhotel","9":"espy_official"," 3 ":"  "}`), 0o644))

	h, err := LoadHandles(path)
	require.NoError(t, err)
	assert.Equal(t, Handles{"42": "@cornerhotel", "9": "@espy_official"}, h)

	empty, err := LoadHandles("")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = LoadHandles(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestForSlide(t *testing.T) {
	b := newBuilder(t, Handles{"42": "@cornerhotel"}, nil)
	date := time.Date(2024, 3, 9, 2, 0, 0, 0, time.UTC)

	got := b.ForSlide([]gig.Record{
		record("The Teskey Brothers", "42", "Corner Hotel", "20:00"),
		record("Open Mic", "9", "Espy", gig.NoStartTime),
	}, 1, 4, date, "St Kilda")

	want := "More information here: https://lml.live/?dateRange=today\n\n" +
		"🎵 Live Music Locator - St Kilda - Saturday, March 9, 2024\n" +
		"Slide 2 of 4\n\n" +
		"🎤 The Teskey Brothers @ Corner Hotel (@cornerhotel) - 20:00\n" +
		"🎤 Open Mic @ Espy - 23:59"
	assert.Equal(t, want, got)
}

func TestFormatDateUsesCaptionZone(t *testing.T) {
	b := newBuilder(t, nil, nil)
	// 15:00 UTC on the 8th is already the 9th in Melbourne
	assert.Equal(t, "Saturday, March 9, 2024", b.FormatDate(time.Date(2024, 3, 8, 15, 0, 0, 0, time.UTC)))
}

func TestNewBuilderRejectsBadZone(t *testing.T) {
	_, err := NewBuilder(config.CaptionConfig{TimeZone: "Mars/Olympus"}, nil, nil)
	assert.Error(t, err)
}

func TestSlideHandlesDeduplicates(t *testing.T) {
	b := newBuilder(t, Handles{"1": "@a", "2": "@b"}, nil)
	got := b.SlideHandles([]gig.Record{
		record("x", "1", "A", "19:00"),
		record("y", "3", "C", "19:30"),
		record("z", "1", "A", "21:00"),
		record("w", "2", "B", "22:00"),
	})
	assert.Equal(t, []string{"@a", "@b"}, got)
}

func TestSelectMentionsUnderLimitKeepsAll(t *testing.T) {
	b := newBuilder(t, nil, nil)
	got := b.SelectMentions([][]string{{"@a", "@b"}, {"@b", "@c"}})
	assert.Equal(t, []string{"@a", "@b", "@c"}, got)
}

func TestSelectMentionsCoversEverySlide(t *testing.T) {
	b := newBuilder(t, nil, func(c *config.CaptionConfig) { c.MaxMentions = 5 })

	var perSlide [][]string
	for s := 0; s < 4; s++ {
		var slide []string
		for i := 0; i < 6; i++ {
			slide = append(slide, fmt.Sprintf("@s%dv%d", s, i))
		}
		perSlide = append(perSlide, slide)
	}

	got := b.SelectMentions(perSlide)
	require.Len(t, got, 5)

	seen := map[string]bool{}
	for _, h := range got {
		assert.False(t, seen[h], "duplicate %s", h)
		seen[h] = true
	}
	for s := 0; s < 4; s++ {
		found := false
		for _, h := range got {
			if strings.HasPrefix(h, fmt.Sprintf("@s%d", s)) {
				found = true
			}
		}
		assert.True(t, found, "slide %d has no mention", s)
	}
}

func TestSelectMentionsDeterministicWithSeed(t *testing.T) {
	perSlide := [][]string{}
	for s := 0; s < 10; s++ {
		perSlide = append(perSlide, []string{fmt.Sprintf("@a%d", s), fmt.Sprintf("@b%d", s), fmt.Sprintf("@c%d", s)})
	}
	first := newBuilder(t, nil, nil).SelectMentions(perSlide)
	second := newBuilder(t, nil, nil).SelectMentions(perSlide)
	assert.Len(t, first, DefaultMaxMentions)
	assert.Equal(t, first, second)
}

func TestCarouselCaption(t *testing.T) {
	b := newBuilder(t, nil, nil)
	got, err := b.Carousel([][]string{{"@a"}, {"@b"}})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, b.Title()))
	assert.True(t, strings.HasSuffix(got, shoutoutPrefix+"@a @b"))

	plain, err := b.Carousel(nil)
	require.NoError(t, err)
	assert.Equal(t, b.Title(), plain)
}

func TestCarouselCaptionDropsMentionsToFit(t *testing.T) {
	b := newBuilder(t, nil, nil)
	limit := utf8Len(b.Title()) + utf8Len(shoutoutPrefix) + len("@aaaa @bbbb")
	b.maxLength = limit

	got, err := b.Carousel([][]string{{"@aaaa"}, {"@bbbb"}, {"@cccc"}})
	require.NoError(t, err)
	assert.LessOrEqual(t, utf8Len(got), limit)
	mentions := strings.Fields(strings.TrimPrefix(got, b.Title()+shoutoutPrefix))
	assert.Equal(t, []string{"@aaaa", "@bbbb"}, mentions)
}

func TestCheck(t *testing.T) {
	b := newBuilder(t, nil, func(c *config.CaptionConfig) { c.MaxLength = 5 })
	assert.NoError(t, b.Check("🎵🎵🎵🎵🎵"))
	err := b.Check("123456")
	assert.True(t, errs.IsType(err, errs.ErrorTypeInvalidInput))

	_, err = b.Carousel(nil)
	assert.Error(t, err)
}

func utf8Len(s string) int {
	return len([]rune(s))
}
