package calendar

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gigslides/pkg/gig"
)

func newExporter(t *testing.T) *Exporter {
	t.Helper()
	e, err := NewExporter("Australia/Melbourne")
	require.NoError(t, err)
	e.now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }
	return e
}

func records() []gig.Record {
	return []gig.Record{
		{
			ID: "101", Name: "THE MURLOCS", DisplayName: "The Murlocs",
			Venue:     gig.Venue{Name: "Corner Hotel", Address: "57 Swan St, Richmond 3121"},
			StartTime: "20:30", GenreTags: []string{"Rock", "Garage"}, DisplayPrice: "$Ticketed",
		},
		{
			ID: "102", Name: "open mic", DisplayName: "Open Mic",
			Venue:     gig.Venue{Name: "The Espy"},
			StartTime: gig.NoStartTime,
		},
	}
}

func decode(t *testing.T, data []byte) *ical.Calendar {
	t.Helper()
	cal, err := ical.NewDecoder(bytes.NewReader(data)).Decode()
	require.NoError(t, err)
	return cal
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, newExporter(t).Encode(&buf, "Richmond gigs", date, records()))

	cal := decode(t, buf.Bytes())
	events := cal.Events()
	require.Len(t, events, 2)

	timed := events[0]
	summary, err := timed.Props.Text(ical.PropSummary)
	require.NoError(t, err)
	assert.Equal(t, "The Murlocs", summary)

	loc, _ := time.LoadLocation("Australia/Melbourne")
	start, err := timed.DateTimeStart(loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 20, 30, 0, 0, loc).Unix(), start.Unix())

	end, err := timed.DateTimeEnd(loc)
	require.NoError(t, err)
	assert.Equal(t, DefaultDuration, end.Sub(start))

	where, _ := timed.Props.Text(ical.PropLocation)
	assert.Equal(t, "Corner Hotel, 57 Swan St, Richmond 3121", where)

	uidValue, _ := timed.Props.Text(ical.PropUID)
	assert.Equal(t, "101-20250301@gigslides.lml.live", uidValue)

	allDay := events[1].Props.Get(ical.PropDateTimeStart)
	require.NotNil(t, allDay)
	assert.Equal(t, "20250301", allDay.Value)
	assert.Equal(t, ical.ValueDate, allDay.ValueType())
}

func TestEncodeEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newExporter(t).Encode(&buf, "none", time.Now(), nil))
	assert.True(t, strings.HasPrefix(buf.String(), "BEGIN:VCALENDAR"))
	assert.Contains(t, buf.String(), "END:VCALENDAR")
}

func TestEncodeRejectsBadStartTime(t *testing.T) {
	gigs := records()[:1]
	gigs[0].StartTime = "late"
	err := newExporter(t).Encode(&bytes.Buffer{}, "x", time.Now(), gigs)
	assert.Error(t, err)
}

func TestUIDWithoutID(t *testing.T) {
	g := gig.Record{Name: "a", Venue: gig.Venue{Name: "b"}, StartTime: "20:00"}
	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, uid(g, date), uid(g, date))
	assert.True(t, strings.HasSuffix(uid(g, date), "-20250301@gigslides.lml.live"))
}

func TestNewExporterInvalidZone(t *testing.T) {
	_, err := NewExporter("Mars/Olympus")
	assert.Error(t, err)
}
