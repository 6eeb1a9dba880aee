// Package calendar exports a day's gigs as an iCalendar feed.
package calendar

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"gigslides/pkg/gig"
)

const (
	prodID = "-//lml.live//gigslides//EN"
	domain = "gigslides.lml.live"

	// DefaultDuration is how long a timed gig is assumed to run
	DefaultDuration = 3 * time.Hour

	emptyCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + prodID + "\r\nEND:VCALENDAR\r\n"
)

// Exporter builds calendars in a fixed time zone
type Exporter struct {
	loc      *time.Location
	duration time.Duration
	now      func() time.Time
}

// NewExporter creates an exporter for wall-clock start times in timeZone
func NewExporter(timeZone string) (*Exporter, error) {
	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", timeZone, err)
	}
	return &Exporter{loc: loc, duration: DefaultDuration, now: time.Now}, nil
}

// Encode writes one VEVENT per gig. Untimed gigs become all-day events.
func (e *Exporter) Encode(w io.Writer, name string, date time.Time, gigs []gig.Record) error {
	if len(gigs) == 0 {
		_, err := io.WriteString(w, emptyCalendar)
		return err
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, prodID)
	cal.Props.SetText(ical.PropCalendarScale, "GREGORIAN")
	cal.Props.SetText(ical.PropMethod, "PUBLISH")
	cal.Props.SetText("X-WR-CALNAME", name)
	cal.Props.SetText("X-WR-TIMEZONE", e.loc.String())

	stamp := e.now().UTC()
	for _, g := range gigs {
		ev, err := e.event(g, date, stamp)
		if err != nil {
			return err
		}
		cal.Children = append(cal.Children, ev.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func (e *Exporter) event(g gig.Record, date time.Time, stamp time.Time) (*ical.Event, error) {
	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropUID, uid(g, date))
	ev.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
	ev.Props.SetText(ical.PropSummary, firstNonEmpty(g.DisplayName, g.Name))
	ev.Props.SetText(ical.PropLocation, location(g))
	if desc := description(g); desc != "" {
		ev.Props.SetText(ical.PropDescription, desc)
	}
	if len(g.GenreTags) > 0 {
		ev.Props.SetText(ical.PropCategories, strings.Join(g.GenreTags, ","))
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, e.loc)
	if g.Untimed() {
		start := ical.NewProp(ical.PropDateTimeStart)
		start.SetDate(day)
		ev.Props.Set(start)
		return ev, nil
	}

	clock, err := time.Parse("15:04", g.StartTime)
	if err != nil {
		return nil, fmt.Errorf("gig %q has invalid start time %q: %w", g.ID, g.StartTime, err)
	}
	start := day.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute)
	ev.Props.SetDateTime(ical.PropDateTimeStart, start.UTC())
	ev.Props.SetDateTime(ical.PropDateTimeEnd, start.Add(e.duration).UTC())
	return ev, nil
}

// uid is stable for the same gig on the same day so re-exports update in place
func uid(g gig.Record, date time.Time) string {
	key := g.ID
	if key == "" {
		sum := sha256.Sum256([]byte(g.Name + "|" + g.Venue.Name + "|" + g.StartTime))
		key = fmt.Sprintf("%x", sum[:8])
	}
	return fmt.Sprintf("%s-%s@%s", key, date.Format("20060102"), domain)
}

func location(g gig.Record) string {
	venue := firstNonEmpty(g.DisplayVenue, g.Venue.Name)
	if g.Venue.Address != "" {
		return venue + ", " + g.Venue.Address
	}
	return venue
}

func description(g gig.Record) string {
	var parts []string
	if len(g.GenreTags) > 0 {
		parts = append(parts, strings.Join(g.GenreTags, " · "))
	}
	if g.DisplayPrice != "" {
		parts = append(parts, g.DisplayPrice)
	}
	return strings.Join(parts, "\n")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
