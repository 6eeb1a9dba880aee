// Package instagram publishes carousels through the Instagram Graph API.
//
// Publishing is three steps: one item container per hosted image, a
// CAROUSEL container referencing the items, then media_publish on the
// carousel container.
//
//	pub := instagram.NewPublisher(cfg.Instagram, &cfg.Retry, log)
//	var children []string
//	for _, u := range imageURLs {
//	    id, err := pub.CreateItem(ctx, u)
//	    if err != nil {
//	        return err
//	    }
//	    children = append(children, id)
//	}
//	carouselID, err := pub.CreateCarousel(ctx, children, caption)
//	postID, err := pub.Publish(ctx, carouselID)
//
// Container creation is paced by Instagram.UploadInterval.
package instagram
