package gig

import (
	"sort"
	"strings"

	errs "gigslides/pkg/errors"
)

// NoStartTime sorts untimed gigs to the end of the day
const NoStartTime = "23:59"

// Venue identifies where a gig is on
type Venue struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	Postcode string `json:"postcode,omitempty"`
}

// PriceInfo holds the raw price signals from the listing
type PriceInfo struct {
	Tags    []string `json:"tags"`
	Amounts []string `json:"amounts"`
}

// Record is one normalized gig listing. It is treated as immutable after Normalize.
type Record struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Venue     Venue     `json:"venue"`
	StartTime string    `json:"start_time"`
	GenreTags []string  `json:"genre_tags"`
	PriceInfo PriceInfo `json:"price_info"`

	DisplayName  string `json:"display_name"`
	DisplayVenue string `json:"display_venue"`
	Suburb       string `json:"suburb"`
	Postcode     string `json:"postcode"`
	DisplayPrice string `json:"display_price"`
}

// Validate reports a record the packer cannot place
func (r Record) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errs.InvalidInput("gig %q has no name", r.ID)
	}
	if strings.TrimSpace(r.Venue.Name) == "" {
		return errs.InvalidInput("gig %q (%s) has no venue name", r.ID, r.Name)
	}
	return nil
}

// Untimed reports whether the listing had no start time
func (r Record) Untimed() bool {
	return r.StartTime == NoStartTime
}

// FromAPI converts a wire gig into a Record, filling the optional-field defaults
// and resolving the display fields once.
func FromAPI(g APIGig) Record {
	r := Record{
		ID:   g.ID.String(),
		Name: strings.TrimSpace(g.Name),
		Venue: Venue{
			ID:       g.Venue.ID.String(),
			Name:     strings.TrimSpace(g.Venue.Name),
			Address:  strings.TrimSpace(g.Venue.Address),
			Postcode: g.Venue.Postcode.String(),
		},
		StartTime: strings.TrimSpace(g.StartTime),
		GenreTags: nonNil(g.GenreTags),
		PriceInfo: PriceInfo{
			Tags:    nonNil(g.InformationTags),
			Amounts: []string{},
		},
	}
	if r.StartTime == "" {
		r.StartTime = NoStartTime
	}
	for _, p := range g.Prices {
		r.PriceInfo.Amounts = append(r.PriceInfo.Amounts, p.Amount.String())
	}

	r.DisplayName = TitleCase(r.Name)
	r.DisplayVenue = TitleCase(r.Venue.Name)
	r.Suburb = Suburb(r.Venue.Address)
	r.Postcode = Postcode(r.Venue.Postcode, r.Venue.Address)
	r.DisplayPrice = FormatPrice(r.PriceInfo)
	return r
}

// Normalize converts API gigs into records sorted by start time.
// The sort is stable so same-time gigs keep the API's order.
func Normalize(gigs []APIGig) []Record {
	records := make([]Record, 0, len(gigs))
	for _, g := range gigs {
		records = append(records, FromAPI(g))
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].StartTime < records[j].StartTime
	})
	return records
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
