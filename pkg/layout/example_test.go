package layout_test

import (
	"fmt"

	"gigslides/pkg/gig"
	"gigslides/pkg/layout"
)

func ExamplePack() {
	heights := map[string]int{"a": 40, "b": 40, "c": 30, "d": 120, "e": 50}
	est := layout.EstimatorFunc(func(g gig.Record) int { return heights[g.Name] })

	var gigs []gig.Record
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		gigs = append(gigs, gig.Record{Name: name, Venue: gig.Venue{Name: "The Tote"}})
	}

	set, err := layout.Pack(gigs, est, 100)
	if err != nil {
		fmt.Println(err)
		return
	}
	set = layout.Limit(set, 3)

	for i, s := range set.Slides {
		fmt.Printf("slide %d: offset %d, %d gigs, %dpx, oversize=%t\n", i+1, s.Offset, len(s.Gigs), s.Height, s.Oversize)
	}
	for _, w := range set.Warnings {
		fmt.Println(w)
	}
	// Output:
	// slide 1: offset 0, 2 gigs, 80px, oversize=false
	// slide 2: offset 2, 1 gigs, 30px, oversize=false
	// slide 3: offset 3, 1 gigs, 120px, oversize=true
	// gig 3 is 120px tall, taller than the 100px slide
	// 1 slides (1 gigs) dropped to stay within 3 content slides
}
