// Package ratelimit paces outbound API calls.
//
// TokenBucket allows a burst of requests per period and is used for the
// GitHub contents API. Interval enforces a minimum gap between calls and
// paces Graph API container creation.
//
//	pacer := ratelimit.NewInterval(time.Second)
//	for _, url := range urls {
//	    if err := pacer.Wait(ctx); err != nil {
//	        return err
//	    }
//	    // create container
//	}
package ratelimit
