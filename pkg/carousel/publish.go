package carousel

import (
	"context"
	"fmt"

	"gigslides/internal/uploader"
	"gigslides/pkg/checkpoint"
	errs "gigslides/pkg/errors"
	"gigslides/pkg/instagram"
	"gigslides/pkg/metrics"
)

// PublishOptions control how Publish treats an earlier run
type PublishOptions struct {
	// Resume continues from an unfinished checkpoint and reuses saved PNGs
	Resume bool
	// Force backs up and discards any checkpoint, including a published one
	Force bool
	// DryRun renders and builds the caption but makes no remote calls
	DryRun bool
	// Cleanup deletes the hosted images once the post is live
	Cleanup bool
}

// PublishResult describes what Publish did
type PublishResult struct {
	Region     string
	PostID     string
	CarouselID string
	Caption    string
	ImageURLs  []string
	Skipped    bool
	DryRun     bool
}

// remover is implemented by hosts that can delete what they uploaded
type remover interface {
	Delete(ctx context.Context, filename string) error
}

func (p *Pipeline) checkpoints(c *Carousel) (*checkpoint.Manager, error) {
	var (
		m   *checkpoint.Manager
		err error
	)
	if p.CheckpointDir != "" {
		m, err = checkpoint.NewManagerAt(p.CheckpointDir, c.Date, c.Region.ID)
	} else {
		m, err = checkpoint.NewManager(c.Date, c.Region.ID)
	}
	if err != nil {
		return nil, err
	}
	m.SetLogger(p.Logger.WithField("region", c.Region.ID))
	return m, nil
}

// Publish hosts the slides and posts the carousel. Every remote id is
// checkpointed as soon as it is known.
func (p *Pipeline) Publish(ctx context.Context, c *Carousel, opts PublishOptions) (*PublishResult, error) {
	log := p.Logger.WithField("region", c.Region.ID)
	result := &PublishResult{Region: c.Region.ID, DryRun: opts.DryRun}

	if c.TotalSlides() < instagram.MinCarouselItems {
		log.Warn("no gigs for region, nothing to publish")
		p.Metrics.ObservePublish(c.Region.ID, metrics.StatusSkipped)
		result.Skipped = true
		return result, nil
	}

	if opts.DryRun {
		return p.dryRun(ctx, c, opts, result)
	}

	cpm, err := p.checkpoints(c)
	if err != nil {
		return nil, err
	}
	cp, err := p.prepareCheckpoint(cpm, opts)
	if err != nil {
		return nil, err
	}
	if cp.Published() {
		log.InfoWithFields("carousel already published", map[string]interface{}{
			"post_id": cp.PostID,
		})
		p.Metrics.ObservePublish(c.Region.ID, metrics.StatusSkipped)
		result.Skipped = true
		result.PostID = cp.PostID
		return result, nil
	}

	if err := p.publish(ctx, c, cpm, cp, opts, result); err != nil {
		p.Metrics.ObservePublish(c.Region.ID, metrics.StatusFailed)
		if nerr := p.Notifier.SendError("Publish failed", fmt.Sprintf("%s: %v", c.Region.Title, err)); nerr != nil {
			log.WithError(nerr).Warn("failed to send failure notification")
		}
		return result, err
	}

	p.Metrics.ObservePublish(c.Region.ID, metrics.StatusPublished)
	log.InfoWithFields("carousel published", map[string]interface{}{
		"post_id": result.PostID,
		"slides":  len(result.ImageURLs),
	})
	msg := fmt.Sprintf("%s: %d gigs on %d slides", c.Region.Title, len(c.Gigs), c.TotalSlides())
	if nerr := p.Notifier.SendSuccess("Carousel published", msg); nerr != nil {
		log.WithError(nerr).Warn("failed to send success notification")
	}

	if opts.Cleanup {
		p.cleanup(ctx, c)
	}
	return result, nil
}

func (p *Pipeline) prepareCheckpoint(cpm *checkpoint.Manager, opts PublishOptions) (*checkpoint.Checkpoint, error) {
	if opts.Force && cpm.Exists() {
		if err := cpm.Backup(); err != nil {
			return nil, err
		}
		if err := cpm.Delete(); err != nil {
			return nil, err
		}
	}

	cp, err := cpm.Load()
	if err != nil {
		return nil, err
	}
	if cp == nil {
		return cpm.Create()
	}
	if !cp.Published() && !opts.Resume {
		return nil, errs.InvalidInput("an unfinished publish exists at %s; rerun with --resume or --force", cpm.Path())
	}
	return cp, nil
}

func (p *Pipeline) publish(ctx context.Context, c *Carousel, cpm *checkpoint.Manager, cp *checkpoint.Checkpoint, opts PublishOptions, result *PublishResult) error {
	jobs := p.jobs(c, opts.Resume)
	for i := range jobs {
		jobs[i].Host = cp.HostedURL(jobs[i].Index) == ""
	}

	pool := uploader.NewWorkerPool(p.cfg.Output.Workers, p.NewRenderer, p.Storage, p.Host, p.Logger)
	results, runErr := pool.Run(ctx, jobs)
	for _, r := range results {
		if r.PublicURL == "" {
			continue
		}
		if err := cpm.RecordHosted(cp, r.Job.Index, r.PublicURL); err != nil {
			return err
		}
	}
	if runErr != nil {
		return fmt.Errorf("failed to prepare slides: %w", runErr)
	}
	if err := p.writeCaptions(c); err != nil {
		return err
	}

	urls := make([]string, c.TotalSlides())
	for n := range urls {
		urls[n] = cp.HostedURL(n)
		if urls[n] == "" {
			return fmt.Errorf("slide %d has no hosted URL", n)
		}
	}
	result.ImageURLs = urls

	children := make([]string, len(urls))
	for n, u := range urls {
		if id := cp.ItemContainer(n); id != "" {
			children[n] = id
			continue
		}
		id, err := p.Publisher.CreateItem(ctx, u)
		if err != nil {
			return fmt.Errorf("failed to create item %d: %w", n, err)
		}
		if err := cpm.RecordItemContainer(cp, n, id); err != nil {
			return err
		}
		children[n] = id
	}

	text, err := p.caption(c)
	if err != nil {
		return err
	}
	result.Caption = text

	if cp.CarouselID == "" {
		id, err := p.Publisher.CreateCarousel(ctx, children, text)
		if err != nil {
			return fmt.Errorf("failed to create carousel: %w", err)
		}
		if err := cpm.RecordCarousel(cp, id); err != nil {
			return err
		}
	}
	result.CarouselID = cp.CarouselID

	if err := p.Publisher.WaitForContainer(ctx, cp.CarouselID); err != nil {
		return err
	}
	postID, err := p.Publisher.Publish(ctx, cp.CarouselID)
	if err != nil {
		return fmt.Errorf("failed to publish carousel: %w", err)
	}
	result.PostID = postID
	return cpm.RecordPublished(cp, postID)
}

func (p *Pipeline) dryRun(ctx context.Context, c *Carousel, opts PublishOptions, result *PublishResult) (*PublishResult, error) {
	if _, err := p.Render(ctx, c, opts.Resume); err != nil {
		return result, err
	}
	text, err := p.caption(c)
	if err != nil {
		return result, err
	}
	result.Caption = text
	for _, name := range c.Filenames() {
		result.ImageURLs = append(result.ImageURLs, p.Storage.Path(name))
	}
	p.Metrics.ObservePublish(c.Region.ID, metrics.StatusDryRun)
	p.Logger.InfoWithFields("dry run complete", map[string]interface{}{
		"region": c.Region.ID,
		"slides": len(result.ImageURLs),
	})
	return result, nil
}

// caption is the carousel caption with venue mentions from every content slide
func (p *Pipeline) caption(c *Carousel) (string, error) {
	perSlide := make([][]string, len(c.Set.Slides))
	for i, s := range c.Set.Slides {
		perSlide[i] = p.Captions.SlideHandles(s.Gigs)
	}
	return p.Captions.Carousel(perSlide)
}

func (p *Pipeline) cleanup(ctx context.Context, c *Carousel) {
	r, ok := p.Host.(remover)
	if !ok {
		return
	}
	for _, name := range c.Filenames() {
		if err := r.Delete(ctx, name); err != nil {
			p.Logger.WarnWithFields("failed to delete hosted image", map[string]interface{}{
				"file":  name,
				"error": err.Error(),
			})
		}
	}
}
