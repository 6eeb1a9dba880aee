package instagram

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"gigslides/internal/apiclient"
	"gigslides/pkg/config"
	errs "gigslides/pkg/errors"
	"gigslides/pkg/logger"
	"gigslides/pkg/ratelimit"
	"gigslides/pkg/retry"
)

// Publisher creates and publishes carousel containers
type Publisher struct {
	api       *apiclient.Client
	endpoints Endpoints
	token     string
	retry     *config.RetryConfig
	pacer     ratelimit.Limiter
	logger    logger.Logger

	// PollInterval and PollAttempts bound WaitForContainer
	PollInterval time.Duration
	PollAttempts int
}

// NewPublisher creates a Graph API publisher
func NewPublisher(cfg config.InstagramConfig, rc *config.RetryConfig, log logger.Logger) *Publisher {
	if log == nil {
		log = logger.GetLogger()
	}
	log = log.WithField("component", "instagram")
	return &Publisher{
		api: apiclient.New(cfg.Timeout, log),
		endpoints: Endpoints{
			BaseURL:   cfg.GraphBaseURL,
			Version:   cfg.APIVersion,
			AccountID: cfg.BusinessAccountID,
		},
		token:        cfg.AccessToken,
		retry:        rc,
		pacer:        ratelimit.NewInterval(cfg.UploadInterval),
		logger:       log,
		PollInterval: 2 * time.Second,
		PollAttempts: 15,
	}
}

func (p *Publisher) post(ctx context.Context, endpoint string, form url.Values) (string, error) {
	form.Set("access_token", p.token)
	return retry.DoWithResult(func() (string, error) {
		var resp idResponse
		if err := p.api.PostForm(ctx, endpoint, form, &resp); err != nil {
			return "", err
		}
		if resp.ID == "" {
			return "", &errs.Error{Type: errs.ErrorTypeParsing, Message: "response has no id"}
		}
		return resp.ID, nil
	}, retry.FromConfig(ctx, p.retry, p.logger))
}

// CreateItem creates a carousel item container for a hosted image
func (p *Publisher) CreateItem(ctx context.Context, imageURL string) (string, error) {
	if _, err := url.ParseRequestURI(imageURL); err != nil || !strings.HasPrefix(imageURL, "http") {
		return "", errs.InvalidInput("invalid image URL %q", imageURL)
	}
	if err := p.pacer.Wait(ctx); err != nil {
		return "", err
	}

	id, err := p.post(ctx, p.endpoints.Media(), url.Values{
		"image_url":        {imageURL},
		"is_carousel_item": {"true"},
		"media_type":       {"IMAGE"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create item container for %s: %w", imageURL, err)
	}
	p.logger.DebugWithFields("created item container", map[string]interface{}{
		"container_id": id,
		"image_url":    imageURL,
	})
	return id, nil
}

// CreateCarousel creates the carousel container from item container ids
func (p *Publisher) CreateCarousel(ctx context.Context, children []string, caption string) (string, error) {
	if len(children) < MinCarouselItems || len(children) > MaxCarouselItems {
		return "", errs.InvalidInput("carousel needs %d to %d items, got %d", MinCarouselItems, MaxCarouselItems, len(children))
	}
	if err := p.pacer.Wait(ctx); err != nil {
		return "", err
	}

	id, err := p.post(ctx, p.endpoints.Media(), url.Values{
		"media_type": {"CAROUSEL"},
		"children":   {strings.Join(children, ",")},
		"caption":    {caption},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create carousel container: %w", err)
	}
	p.logger.InfoWithFields("created carousel container", map[string]interface{}{
		"container_id": id,
		"items":        len(children),
	})
	return id, nil
}

// ContainerStatus returns the status_code of a container
func (p *Publisher) ContainerStatus(ctx context.Context, id string) (string, error) {
	q := url.Values{}
	q.Set("fields", "status_code,status")
	q.Set("access_token", p.token)

	var resp statusResponse
	if err := p.api.GetJSON(ctx, p.endpoints.Container(id)+"?"+q.Encode(), &resp); err != nil {
		return "", err
	}
	if resp.StatusCode == StatusError || resp.StatusCode == StatusExpired {
		return resp.StatusCode, &errs.Error{
			Type:    errs.ErrorTypeServerError,
			Message: fmt.Sprintf("container %s is %s: %s", id, resp.StatusCode, resp.Status),
		}
	}
	return resp.StatusCode, nil
}

// WaitForContainer polls until the container is FINISHED
func (p *Publisher) WaitForContainer(ctx context.Context, id string) error {
	for attempt := 1; attempt <= p.PollAttempts; attempt++ {
		status, err := p.ContainerStatus(ctx, id)
		if err != nil {
			return err
		}
		if status == StatusFinished || status == StatusPublished || status == "" {
			return nil
		}
		p.logger.DebugWithFields("container not ready", map[string]interface{}{
			"container_id": id,
			"status":       status,
			"attempt":      attempt,
		})
		if err := retry.Wait(ctx, p.PollInterval); err != nil {
			return err
		}
	}
	return &errs.Error{
		Type:    errs.ErrorTypeServerError,
		Message: fmt.Sprintf("container %s not ready after %d checks", id, p.PollAttempts),
	}
}

// Publish publishes a carousel container and returns the media id of the post
func (p *Publisher) Publish(ctx context.Context, creationID string) (string, error) {
	if creationID == "" {
		return "", errs.InvalidInput("creation id is required")
	}
	id, err := p.post(ctx, p.endpoints.MediaPublish(), url.Values{
		"creation_id": {creationID},
	})
	if err != nil {
		return "", fmt.Errorf("failed to publish carousel %s: %w", creationID, err)
	}
	p.logger.InfoWithFields("published carousel", map[string]interface{}{
		"creation_id": creationID,
		"post_id":     id,
	})
	return id, nil
}
