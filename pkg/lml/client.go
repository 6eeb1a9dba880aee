// Package lml fetches the day's gig listings from the Live Music Locator API.
package lml

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"gigslides/internal/apiclient"
	"gigslides/pkg/config"
	"gigslides/pkg/gig"
	"gigslides/pkg/logger"
	"gigslides/pkg/retry"
)

const dateLayout = "2006-01-02"

// Client queries the gigs endpoint
type Client struct {
	api      *apiclient.Client
	baseURL  string
	location string
	retry    *config.RetryConfig
	logger   logger.Logger
}

// NewClient creates a gig source client from the source and retry settings
func NewClient(src config.SourceConfig, rc *config.RetryConfig, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	log = log.WithField("component", "lml")
	return &Client{
		api:      apiclient.New(src.Timeout, log),
		baseURL:  strings.TrimRight(src.BaseURL, "/"),
		location: src.Location,
		retry:    rc,
		logger:   log,
	}
}

// QueryURL returns the gigs query URL for a single day
func (c *Client) QueryURL(date time.Time) string {
	day := date.Format(dateLayout)
	q := url.Values{}
	q.Set("location", c.location)
	q.Set("date_from", day)
	q.Set("date_to", day)
	return c.baseURL + "/gigs/query?" + q.Encode()
}

// FetchGigs returns every gig listed for date, retrying transient failures
func (c *Client) FetchGigs(ctx context.Context, date time.Time) ([]gig.APIGig, error) {
	target := c.QueryURL(date)
	c.logger.DebugWithFields("fetching gigs", map[string]interface{}{
		"date": date.Format(dateLayout),
		"url":  target,
	})

	gigs, err := retry.DoWithResult(func() ([]gig.APIGig, error) {
		var out []gig.APIGig
		if err := c.api.GetJSON(ctx, target, &out); err != nil {
			return nil, err
		}
		return out, nil
	}, retry.FromConfig(ctx, c.retry, c.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch gigs for %s: %w", date.Format(dateLayout), err)
	}

	c.logger.InfoWithFields("fetched gigs", map[string]interface{}{
		"date":  date.Format(dateLayout),
		"count": len(gigs),
	})
	return gigs, nil
}
