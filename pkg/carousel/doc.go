// Package carousel runs the daily pipeline for one region: fetch the day's
// gigs, filter them to the region, pack them into slides, cap the slide
// count, render the PNGs and, when publishing, host them and post the
// carousel to Instagram.
//
// Build only touches the gigs API and the output directory:
//
//	p, err := carousel.New(cfg, carousel.Deps{Logger: log})
//	c, err := p.Build(ctx, date, region)
//	results, err := p.Render(ctx, c, false)
//
// Publish records every remote step in a checkpoint keyed by date and
// region, so a failed run can be resumed without posting twice:
//
//	res, err := p.Publish(ctx, c, carousel.PublishOptions{Resume: true})
package carousel
