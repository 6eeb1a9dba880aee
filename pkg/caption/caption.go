// Package caption writes the per-slide and carousel captions, including the
// venue mentions.
package caption

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"

	"gigslides/pkg/config"
	errs "gigslides/pkg/errors"
	"gigslides/pkg/gig"
)

const (
	// DefaultMaxMentions stays under Instagram's mention limit
	DefaultMaxMentions = 19
	// DefaultMaxLength is Instagram's caption limit in characters
	DefaultMaxLength = 2200

	shoutoutPrefix = "\n\nShoutout to a random selection of today's venues (often there are too many to @ here): "
)

// Builder produces captions for one day's carousel
type Builder struct {
	handles     Handles
	publicURL   string
	zone        *time.Location
	maxMentions int
	maxLength   int
	rng         *rand.Rand
}

// NewBuilder creates a caption builder. rng drives mention selection; pass a
// seeded source for reproducible output.
func NewBuilder(cfg config.CaptionConfig, handles Handles, rng *rand.Rand) (*Builder, error) {
	zone, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid caption time zone %q: %w", cfg.TimeZone, err)
	}
	if handles == nil {
		handles = Handles{}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	b := &Builder{
		handles:     handles,
		publicURL:   cfg.PublicURL,
		zone:        zone,
		maxMentions: cfg.MaxMentions,
		maxLength:   cfg.MaxLength,
		rng:         rng,
	}
	if b.maxMentions <= 0 {
		b.maxMentions = DefaultMaxMentions
	}
	if b.maxLength <= 0 {
		b.maxLength = DefaultMaxLength
	}
	return b, nil
}

// Title is the caption of the title slide
func (b *Builder) Title() string {
	return "Live Music Locator is a not-for-profit service designed to make it possible to discover every gig playing at every venue across every genre at any one time.\n" +
		"This information will always be verified and free, importantly supporting musicians, our small to medium live music venues, and you the punters.\n" +
		"More detailed gig information here: " + b.publicURL
}

// FormatDate renders date like "Saturday, March 9, 2024" in the caption time zone
func (b *Builder) FormatDate(date time.Time) string {
	return date.In(b.zone).Format("Monday, January 2, 2006")
}

// ForSlide is the caption of content slide index (0-based) out of total
func (b *Builder) ForSlide(gigs []gig.Record, index, total int, date time.Time, regionTitle string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "More information here: %s\n\n", b.publicURL)
	fmt.Fprintf(&sb, "🎵 Live Music Locator - %s - %s\n", regionTitle, b.FormatDate(date))
	fmt.Fprintf(&sb, "Slide %d of %d\n\n", index+1, total)

	for i, g := range gigs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if handle := b.handles.Lookup(g.Venue.ID); handle != "" {
			fmt.Fprintf(&sb, "🎤 %s @ %s (%s) - %s", g.Name, g.Venue.Name, handle, g.StartTime)
		} else {
			fmt.Fprintf(&sb, "🎤 %s @ %s - %s", g.Name, g.Venue.Name, g.StartTime)
		}
	}
	return sb.String()
}

// SlideHandles returns the distinct venue handles of a slide in order
func (b *Builder) SlideHandles(gigs []gig.Record) []string {
	seen := make(map[string]bool)
	var out []string
	for _, g := range gigs {
		h := b.handles.Lookup(g.Venue.ID)
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	return out
}

// SelectMentions picks at most maxMentions distinct handles. When there are
// too many, one random handle per slide is taken first, in random slide order,
// then the remaining slots are filled at random.
func (b *Builder) SelectMentions(perSlide [][]string) []string {
	var all []string
	seen := make(map[string]bool)
	for _, handles := range perSlide {
		for _, h := range handles {
			if !seen[h] {
				seen[h] = true
				all = append(all, h)
			}
		}
	}
	if len(all) <= b.maxMentions {
		return all
	}

	chosen := make([]string, 0, b.maxMentions)
	picked := make(map[string]bool)
	for _, slide := range b.rng.Perm(len(perSlide)) {
		if len(chosen) >= b.maxMentions {
			break
		}
		var candidates []string
		for _, h := range perSlide[slide] {
			if !picked[h] {
				candidates = append(candidates, h)
			}
		}
		if len(candidates) == 0 {
			continue
		}
		h := candidates[b.rng.Intn(len(candidates))]
		picked[h] = true
		chosen = append(chosen, h)
	}

	var remaining []string
	for _, h := range all {
		if !picked[h] {
			remaining = append(remaining, h)
		}
	}
	b.rng.Shuffle(len(remaining), func(i, j int) { remaining[i], remaining[j] = remaining[j], remaining[i] })
	for _, h := range remaining {
		if len(chosen) >= b.maxMentions {
			break
		}
		chosen = append(chosen, h)
	}
	return chosen
}

// Carousel is the caption posted with the carousel: the title caption plus
// the venue shoutout. Mentions are dropped from the end until the caption
// fits the length limit.
func (b *Builder) Carousel(perSlide [][]string) (string, error) {
	title := b.Title()
	if err := b.Check(title); err != nil {
		return "", err
	}

	mentions := b.SelectMentions(perSlide)
	for len(mentions) > 0 {
		caption := title + shoutoutPrefix + strings.Join(mentions, " ")
		if b.Check(caption) == nil {
			return caption, nil
		}
		mentions = mentions[:len(mentions)-1]
	}
	return title, nil
}

// Check fails when caption is longer than the length limit
func (b *Builder) Check(caption string) error {
	if n := utf8.RuneCountInString(caption); n > b.maxLength {
		return errs.InvalidInput("caption is %d characters, limit is %d", n, b.maxLength)
	}
	return nil
}
