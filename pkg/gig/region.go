package gig

// Region is a named set of postcodes that gets its own daily carousel
type Region struct {
	ID        string
	Title     string
	postcodes map[string]bool
}

// NewRegion builds a region from its postcode list
func NewRegion(id, title string, postcodes []string) Region {
	set := make(map[string]bool, len(postcodes))
	for _, pc := range postcodes {
		set[pc] = true
	}
	return Region{ID: id, Title: title, postcodes: set}
}

// Contains reports whether the record's venue postcode belongs to the region
func (r Region) Contains(rec Record) bool {
	return rec.Postcode != "" && r.postcodes[rec.Postcode]
}

// Filter keeps the records inside the region, preserving order
func (r Region) Filter(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if r.Contains(rec) {
			out = append(out, rec)
		}
	}
	return out
}
