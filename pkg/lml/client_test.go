package lml

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gigslides/pkg/config"
	errs "gigslides/pkg/errors"
	"gigslides/pkg/logger"
)

const sampleGigs = `[
  {
    "id": "g1",
    "name": "The Teskey Brothers",
    "venue": {"id": 42, "name": "Corner Hotel", "address": "57 Swan St, Richmond VIC 3121", "postcode": "3121"},
    "start_time": "20:00",
    "genre_tags": ["Soul", "Blues"],
    "information_tags": [],
    "prices": [{"amount": 45.5}]
  },
  {
    "id": 7,
    "name": "Open Mic",
    "venue": {"id": "9", "name": "Espy", "address": "11 The Esplanade, St Kilda 3182", "postcode": null},
    "start_time": null,
    "genre_tags": null,
    "information_tags": ["Free"],
    "prices": []
  }
]`

func testRetry() *config.RetryConfig {
	return &config.RetryConfig{Enabled: true, MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 1}
}

func newTestClient(base string) *Client {
	return NewClient(config.SourceConfig{BaseURL: base + "/", Location: "melbourne", Timeout: 5 * time.Second}, testRetry(), logger.NewTestLogger())
}

func TestQueryURL(t *testing.T) {
	c := newTestClient("https://api.lml.live")
	date := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "https://api.lml.live/gigs/query?date_from=2024-03-09&date_to=2024-03-09&location=melbourne", c.QueryURL(date))
}

func TestFetchGigs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gigs/query", r.URL.Path)
		assert.Equal(t, "2024-03-09", r.URL.Query().Get("date_from"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleGigs))
	}))
	defer server.Close()

	gigs, err := newTestClient(server.URL).FetchGigs(context.Background(), time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, gigs, 2)

	assert.Equal(t, "g1", gigs[0].ID.String())
	assert.Equal(t, "42", gigs[0].Venue.ID.String())
	assert.Equal(t, "45.5", gigs[0].Prices[0].Amount.String())
	assert.Equal(t, "7", gigs[1].ID.String())
	assert.Empty(t, gigs[1].Venue.Postcode.String())
	assert.Empty(t, gigs[1].StartTime)
}

func TestFetchGigsRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	gigs, err := newTestClient(server.URL).FetchGigs(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, gigs)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchGigsNotFoundIsNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchGigs(context.Background(), time.Now())
	require.Error(t, err)
	assert.True(t, errs.IsType(err, errs.ErrorTypeNotFound))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
