// Package retry retries transient failures of the gig source, image host and
// Graph API calls with exponential backoff.
//
//	cfg := retry.FromConfig(ctx, &appCfg.Retry, log)
//	gigs, err := retry.DoWithResult(func() ([]gig.APIGig, error) {
//		return client.FetchGigs(ctx, date)
//	}, cfg)
//
// Only errors whose pkg/errors type is retryable (network, rate_limit,
// server_error) are retried by DefaultRetryIf. Context cancellation stops the
// loop immediately.
package retry
