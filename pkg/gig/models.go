package gig

import (
	"bytes"
	"encoding/json"
	"strings"
)

// APIGig is a gig as returned by the gigs query endpoint
type APIGig struct {
	ID              FlexString `json:"id"`
	Name            string     `json:"name"`
	Venue           APIVenue   `json:"venue"`
	StartTime       string     `json:"start_time"`
	GenreTags       []string   `json:"genre_tags"`
	InformationTags []string   `json:"information_tags"`
	Prices          []APIPrice `json:"prices"`
}

// APIVenue is the venue object embedded in each gig
type APIVenue struct {
	ID       FlexString `json:"id"`
	Name     string     `json:"name"`
	Address  string     `json:"address"`
	Postcode FlexString `json:"postcode"`
}

// APIPrice is one ticket price entry
type APIPrice struct {
	Amount      FlexString `json:"amount"`
	Description string     `json:"description"`
}

// FlexString decodes a JSON string or number into a string.
// The API is not consistent about quoting ids, postcodes and amounts.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string {
	return strings.TrimSpace(string(f))
}
