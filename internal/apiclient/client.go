// Package apiclient is the JSON-over-HTTP client shared by the gig source,
// the GitHub image host, the Graph API publisher and the Slack notifier.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	errs "gigslides/pkg/errors"
	"gigslides/pkg/logger"
)

const (
	userAgent      = "gigslides/1.0 (+https://lml.live)"
	maxPreviewSize = 200
)

// Client performs requests with fixed headers and maps failures to typed errors
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	logger     logger.Logger
}

// New creates a client with the given timeout
func New(timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		headers: map[string]string{
			"User-Agent": userAgent,
			"Accept":     "application/json",
		},
		logger: log,
	}
}

// SetHeader sets a header sent with every request
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// Logger returns the client's logger
func (c *Client) Logger() logger.Logger {
	return c.logger
}

// Do sends a request. Transport failures become network errors; the
// response status is not inspected.
func (c *Client) Do(ctx context.Context, method, rawURL string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
		}
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	target := redact(req.URL)
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": method,
		"url":    target,
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   method,
			"url":      target,
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
		}
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   method,
		"url":      target,
		"status":   resp.StatusCode,
		"duration": duration,
	})
	return resp, nil
}

// DoJSON sends a request, fails on non-2xx statuses and decodes the body
// into target when target is non-nil.
func (c *Client) DoJSON(ctx context.Context, method, rawURL string, body io.Reader, contentType string, target interface{}) error {
	resp, err := c.Do(ctx, method, rawURL, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	if apiErr := errs.FromStatus(resp.StatusCode, errorDetail(data)); apiErr != nil {
		c.logger.WarnWithFields("API returned an error status", map[string]interface{}{
			"method": method,
			"url":    redact(resp.Request.URL),
			"status": resp.StatusCode,
			"type":   string(apiErr.Type),
		})
		return apiErr
	}

	if target == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          redact(resp.Request.URL),
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": preview(data),
		})
		return &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
			Code:    resp.StatusCode,
		}
	}
	return nil
}

// GetJSON performs a GET request and decodes the JSON response
func (c *Client) GetJSON(ctx context.Context, rawURL string, target interface{}) error {
	return c.DoJSON(ctx, http.MethodGet, rawURL, nil, "", target)
}

// PostForm sends url-encoded form values and decodes the JSON response
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values, target interface{}) error {
	return c.DoJSON(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", target)
}

// SendJSON encodes payload as the request body and decodes the JSON response
func (c *Client) SendJSON(ctx context.Context, method, rawURL string, payload, target interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return &errs.Error{
			Type:    errs.ErrorTypeInvalidInput,
			Message: fmt.Sprintf("failed to encode request: %v", err),
		}
	}
	return c.DoJSON(ctx, method, rawURL, bytes.NewReader(data), "application/json", target)
}

// errorDetail pulls a message out of common error envelopes:
// {"message": ...} (GitHub) and {"error": {"message": ...}} (Graph API).
func errorDetail(body []byte) string {
	var envelope struct {
		Message string `json:"message"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil {
		if envelope.Error.Message != "" {
			return envelope.Error.Message
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	return preview(body)
}

func preview(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxPreviewSize {
		s = s[:maxPreviewSize] + "..."
	}
	return s
}

// redact hides access tokens in logged URLs
func redact(u *url.URL) string {
	if u == nil {
		return ""
	}
	q := u.Query()
	if q.Get("access_token") == "" {
		return u.String()
	}
	q.Set("access_token", "REDACTED")
	clean := *u
	clean.RawQuery = q.Encode()
	return clean.String()
}
