// Package hosting gives rendered slides a public URL by committing them to a
// GitHub repository, where the Graph API can fetch them from raw.githubusercontent.com.
package hosting

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"gigslides/internal/apiclient"
	"gigslides/pkg/config"
	errs "gigslides/pkg/errors"
	"gigslides/pkg/logger"
	"gigslides/pkg/ratelimit"
	"gigslides/pkg/retry"
)

// Uploader publishes an image and returns its public URL
type Uploader interface {
	Upload(ctx context.Context, filename string, data []byte) (string, error)
}

// GitHub stores images through the repository contents API
type GitHub struct {
	api     *apiclient.Client
	cfg     config.HostingConfig
	retry   *config.RetryConfig
	limiter ratelimit.Limiter
	logger  logger.Logger
}

type contentResponse struct {
	SHA string `json:"sha"`
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

type deleteRequest struct {
	Message string `json:"message"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha"`
}

// NewGitHub creates a GitHub-backed uploader. Writes are limited to a burst
// of 10 per second.
func NewGitHub(cfg config.HostingConfig, rc *config.RetryConfig, log logger.Logger) *GitHub {
	if log == nil {
		log = logger.GetLogger()
	}
	log = log.WithField("component", "hosting")

	api := apiclient.New(30*time.Second, log)
	api.SetHeader("Accept", "application/vnd.github+json")
	api.SetHeader("X-GitHub-Api-Version", "2022-11-28")
	if cfg.Token != "" {
		api.SetHeader("Authorization", "Bearer "+cfg.Token)
	}

	return &GitHub{
		api:     api,
		cfg:     cfg,
		retry:   rc,
		limiter: ratelimit.NewTokenBucket(10, time.Second),
		logger:  log,
	}
}

func (g *GitHub) repoPath(filename string) string {
	return path.Join(g.cfg.Directory, filename)
}

func (g *GitHub) contentsURL(filename string) string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		strings.TrimRight(g.cfg.APIBaseURL, "/"),
		url.PathEscape(g.cfg.Owner), url.PathEscape(g.cfg.Repo),
		g.repoPath(filename))
}

// PublicURL returns the raw URL the file is served from once uploaded
func (g *GitHub) PublicURL(filename string) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s",
		strings.TrimRight(g.cfg.RawBaseURL, "/"),
		g.cfg.Owner, g.cfg.Repo, g.cfg.Branch, g.repoPath(filename))
}

// existingSHA returns the blob sha of filename, or "" when it does not exist yet
func (g *GitHub) existingSHA(ctx context.Context, filename string) (string, error) {
	var existing contentResponse
	err := g.api.GetJSON(ctx, g.contentsURL(filename)+"?ref="+url.QueryEscape(g.cfg.Branch), &existing)
	if errs.IsType(err, errs.ErrorTypeNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return existing.SHA, nil
}

// Upload creates or replaces filename in the hosting directory
func (g *GitHub) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errs.InvalidInput("refusing to upload empty file %s", filename)
	}

	err := retry.Do(func() error {
		if err := g.limiter.Wait(ctx); err != nil {
			return err
		}
		sha, err := g.existingSHA(ctx, filename)
		if err != nil {
			return err
		}
		req := putRequest{
			Message: "Add temporary image " + filename,
			Content: base64.StdEncoding.EncodeToString(data),
			Branch:  g.cfg.Branch,
			SHA:     sha,
		}
		return g.api.SendJSON(ctx, http.MethodPut, g.contentsURL(filename), req, nil)
	}, retry.FromConfig(ctx, g.retry, g.logger))
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", filename, err)
	}

	publicURL := g.PublicURL(filename)
	g.logger.DebugWithFields("uploaded image", map[string]interface{}{
		"file": filename,
		"size": len(data),
		"url":  publicURL,
	})
	return publicURL, nil
}

// Delete removes filename from the hosting directory. Missing files are ignored.
func (g *GitHub) Delete(ctx context.Context, filename string) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return err
	}
	sha, err := g.existingSHA(ctx, filename)
	if err != nil {
		return fmt.Errorf("failed to look up %s: %w", filename, err)
	}
	if sha == "" {
		return nil
	}
	req := deleteRequest{
		Message: "Remove temporary image " + filename,
		Branch:  g.cfg.Branch,
		SHA:     sha,
	}
	if err := g.api.SendJSON(ctx, http.MethodDelete, g.contentsURL(filename), req, nil); err != nil {
		return fmt.Errorf("failed to delete %s: %w", filename, err)
	}
	return nil
}
