package apiclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "gigslides/pkg/errors"
	"gigslides/pkg/logger"
)

func TestGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{"name":"gig"}`))
	}))
	defer server.Close()

	c := New(5*time.Second, logger.NewTestLogger())
	var out struct{ Name string }
	require.NoError(t, c.GetJSON(context.Background(), server.URL, &out))
	assert.Equal(t, "gig", out.Name)
}

func TestDoJSONStatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   errs.ErrorType
		detail string
	}{
		{"graph error envelope", 400, `{"error":{"message":"Invalid parameter","code":100}}`, errs.ErrorTypeInvalidInput, "Invalid parameter"},
		{"github message", 401, `{"message":"Bad credentials"}`, errs.ErrorTypeAuth, "Bad credentials"},
		{"plain text", 503, `upstream down`, errs.ErrorTypeServerError, "upstream down"},
		{"rate limited", 429, ``, errs.ErrorTypeRateLimit, "Too Many Requests"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			log := logger.NewTestLogger()
			err := New(5*time.Second, log).GetJSON(context.Background(), server.URL, nil)
			require.Error(t, err)
			assert.True(t, errs.IsType(err, tt.want))
			assert.Contains(t, err.Error(), tt.detail)
			assert.True(t, log.HasMessage("API returned an error status"))
		})
	}
}

func TestDoJSONParsingError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	log := logger.NewTestLogger()
	var out map[string]interface{}
	err := New(5*time.Second, log).GetJSON(context.Background(), server.URL, &out)
	require.Error(t, err)
	assert.True(t, errs.IsType(err, errs.ErrorTypeParsing))

	msgs := log.GetMessagesByLevel("ERROR")
	require.Len(t, msgs, 1)
	assert.Equal(t, "<html>not json</html>", msgs[0].Fields["body_preview"])
}

func TestPostFormAndRedaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		values, err := url.ParseQuery(string(body))
		require.NoError(t, err)
		assert.Equal(t, "IMAGE", values.Get("media_type"))
		w.Write([]byte(`{"id":"123"}`))
	}))
	defer server.Close()

	log := logger.NewTestLogger()
	var out struct{ ID string }
	err := New(5*time.Second, log).PostForm(context.Background(), server.URL+"/media?access_token=secret", url.Values{"media_type": {"IMAGE"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, "123", out.ID)
	assert.NotContains(t, log.String(), "secret")
}

func TestNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	err := New(time.Second, logger.NewTestLogger()).GetJSON(context.Background(), addr, nil)
	require.Error(t, err)
	assert.True(t, errs.IsType(err, errs.ErrorTypeNetwork))
}

func TestCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := New(5*time.Second, logger.NewTestLogger()).GetJSON(ctx, server.URL, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
