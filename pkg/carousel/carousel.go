package carousel

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gigslides/internal/uploader"
	"gigslides/pkg/caption"
	"gigslides/pkg/config"
	errs "gigslides/pkg/errors"
	"gigslides/pkg/gig"
	"gigslides/pkg/hosting"
	"gigslides/pkg/instagram"
	"gigslides/pkg/layout"
	"gigslides/pkg/lml"
	"gigslides/pkg/logger"
	"gigslides/pkg/metrics"
	"gigslides/pkg/render"
	"gigslides/pkg/storage"
	"gigslides/pkg/ui"
)

// GigSource fetches one day's listings
type GigSource interface {
	FetchGigs(ctx context.Context, date time.Time) ([]gig.APIGig, error)
}

// Publisher posts carousels; implemented by instagram.Publisher
type Publisher interface {
	CreateItem(ctx context.Context, imageURL string) (string, error)
	CreateCarousel(ctx context.Context, children []string, caption string) (string, error)
	WaitForContainer(ctx context.Context, id string) error
	Publish(ctx context.Context, creationID string) (string, error)
}

// Notifier reports publish outcomes; implemented by ui.Notifier
type Notifier interface {
	SendSuccess(title, message string) error
	SendError(title, message string) error
}

// Deps are the pipeline's collaborators. Nil fields are built from the config.
type Deps struct {
	Source      GigSource
	Storage     *storage.Manager
	Host        hosting.Uploader
	Publisher   Publisher
	Notifier    Notifier
	Captions    *caption.Builder
	Metrics     *metrics.Run
	NewRenderer uploader.RendererFactory
	// CheckpointDir overrides the user data directory
	CheckpointDir string
	Logger        logger.Logger
}

// Pipeline builds and publishes carousels
type Pipeline struct {
	cfg *config.Config
	Deps
}

// Carousel is one region's packed slides for a day
type Carousel struct {
	Date   time.Time
	Region config.RegionConfig
	Gigs   []gig.Record
	Set    layout.SlideSet
	Budget int
}

// TotalSlides counts the title slide plus the content slides
func (c *Carousel) TotalSlides() int {
	return len(c.Set.Slides) + 1
}

// Filenames lists the PNG names in carousel order; index 0 is the title slide
func (c *Carousel) Filenames() []string {
	names := make([]string, c.TotalSlides())
	for n := range names {
		names[n] = storage.SlideFilename(c.Date, c.Region.ID, n)
	}
	return names
}

// New wires a pipeline, filling any nil dependency from cfg
func New(cfg *config.Config, deps Deps) (*Pipeline, error) {
	if cfg == nil {
		return nil, errs.InvalidInput("config is required")
	}
	if deps.Logger == nil {
		deps.Logger = logger.GetLogger()
	}
	log := deps.Logger

	if deps.Source == nil {
		deps.Source = lml.NewClient(cfg.Source, &cfg.Retry, log)
	}
	if deps.Storage == nil {
		s, err := storage.NewManager(cfg.Output.Directory)
		if err != nil {
			return nil, err
		}
		deps.Storage = s
	}
	if deps.Captions == nil {
		handles := caption.Handles{}
		if cfg.Caption.VenueHandlesFile != "" {
			h, err := caption.LoadHandles(cfg.Caption.VenueHandlesFile)
			if err != nil {
				return nil, err
			}
			handles = h
		}
		b, err := caption.NewBuilder(cfg.Caption, handles, nil)
		if err != nil {
			return nil, err
		}
		deps.Captions = b
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	if deps.NewRenderer == nil {
		layoutCfg := cfg.Layout
		deps.NewRenderer = func() (uploader.SlideRenderer, error) {
			return render.New(layoutCfg)
		}
	}
	if deps.Host == nil {
		deps.Host = hosting.NewGitHub(cfg.Hosting, &cfg.Retry, log)
	}
	if deps.Publisher == nil {
		deps.Publisher = instagram.NewPublisher(cfg.Instagram, &cfg.Retry, log)
	}
	if deps.Notifier == nil {
		deps.Notifier = ui.NewNotifier(cfg.Notifications, log)
	}

	deps.Logger = log.WithField("component", "carousel")
	return &Pipeline{cfg: cfg, Deps: deps}, nil
}

// Fetch downloads and normalizes the day's gigs for every region
func (p *Pipeline) Fetch(ctx context.Context, date time.Time) ([]gig.Record, error) {
	raw, err := p.Source.FetchGigs(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch gigs: %w", err)
	}
	records := gig.Normalize(raw)
	p.Logger.InfoWithFields("gigs fetched", map[string]interface{}{
		"date":  date.Format("2006-01-02"),
		"count": len(records),
	})
	return records, nil
}

// Pack filters records to region and packs them into at most
// MaxContentSlides slides
func (p *Pipeline) Pack(records []gig.Record, date time.Time, region config.RegionConfig) (*Carousel, error) {
	gigs := gig.NewRegion(region.ID, region.Title, region.Postcodes).Filter(records)
	log := p.Logger.WithField("region", region.ID)

	est, closeEstimator, err := p.estimator()
	if err != nil {
		return nil, err
	}
	defer closeEstimator()

	budget := p.cfg.ContainerHeightPx()
	packed, err := layout.Pack(gigs, est, budget)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", region.ID, err)
	}
	set := layout.Limit(packed, p.cfg.Layout.MaxContentSlides)

	for _, w := range set.WarningsOf(layout.WarningOversize) {
		log.WarnWithFields("gig taller than slide", map[string]interface{}{
			"gig":    gigs[w.ItemIndex].Name,
			"index":  w.ItemIndex,
			"height": w.Height,
			"budget": w.Budget,
		})
	}
	for _, w := range set.WarningsOf(layout.WarningSlideCountExceeded) {
		log.WarnWithFields("carousel truncated", map[string]interface{}{
			"dropped_slides": w.DroppedSlides,
			"dropped_gigs":   w.DroppedGigs,
			"max_slides":     w.Budget,
		})
	}
	log.InfoWithFields("carousel packed", map[string]interface{}{
		"gigs":      len(gigs),
		"slides":    len(set.Slides),
		"truncated": set.Truncated,
		"estimator": p.cfg.Layout.Estimator,
	})
	p.Metrics.ObserveBuild(region.ID, len(gigs), set)

	return &Carousel{Date: date, Region: region, Gigs: gigs, Set: set, Budget: budget}, nil
}

// Build fetches and packs one region
func (p *Pipeline) Build(ctx context.Context, date time.Time, region config.RegionConfig) (*Carousel, error) {
	records, err := p.Fetch(ctx, date)
	if err != nil {
		return nil, err
	}
	return p.Pack(records, date, region)
}

// estimator returns the configured height estimator and a release func
func (p *Pipeline) estimator() (layout.HeightEstimator, func(), error) {
	strategy, err := layout.ParseStrategy(p.cfg.Layout.Estimator)
	if err != nil {
		return nil, nil, errs.InvalidInput("%v", err)
	}
	style := layout.Style{
		CharsPerLine: p.cfg.Layout.CharsPerLine,
		BaseHeight:   p.cfg.Layout.BaseHeight,
		LineHeight:   p.cfg.Layout.LineHeight,
		Padding:      p.cfg.Layout.Padding,
	}
	if strategy == layout.StrategyAnalytic {
		est, err := layout.NewEstimator(strategy, style, nil)
		return est, func() {}, err
	}

	// measured at scale 1 so heights come out in slide pixels
	surface, err := layout.NewFontSurface(layout.MetricsForWidth(p.cfg.Layout.SlideWidth), 1)
	if err != nil {
		return nil, nil, err
	}
	est := layout.NewMeasuringEstimator(surface)
	if p.cfg.Layout.MaxGenreTags > 0 {
		est.MaxGenreTags = p.cfg.Layout.MaxGenreTags
	}
	return est, func() { surface.Close() }, nil
}

// jobs describes every slide of c for the worker pool
func (p *Pipeline) jobs(c *Carousel, reuse bool) []uploader.Job {
	names := c.Filenames()
	jobs := make([]uploader.Job, 0, len(names))
	jobs = append(jobs, uploader.Job{
		Index:       0,
		Filename:    names[0],
		RegionTitle: c.Region.Title,
		Date:        c.Date,
		Reuse:       reuse,
	})
	for i := range c.Set.Slides {
		jobs = append(jobs, uploader.Job{
			Index:       i + 1,
			Filename:    names[i+1],
			Slide:       &c.Set.Slides[i],
			Page:        i,
			Total:       len(c.Set.Slides),
			RegionTitle: c.Region.Title,
			Date:        c.Date,
			Reuse:       reuse,
		})
	}
	return jobs
}

// Render writes every slide PNG and the caption sheet to the output directory
func (p *Pipeline) Render(ctx context.Context, c *Carousel, reuse bool) ([]uploader.Result, error) {
	pool := uploader.NewWorkerPool(p.cfg.Output.Workers, p.NewRenderer, p.Storage, nil, p.Logger)
	results, err := pool.Run(ctx, p.jobs(c, reuse))
	if err != nil {
		return results, fmt.Errorf("failed to render %s: %w", c.Region.ID, err)
	}
	if err := p.writeCaptions(c); err != nil {
		return results, err
	}
	p.Logger.InfoWithFields("slides rendered", map[string]interface{}{
		"region": c.Region.ID,
		"slides": len(results),
		"dir":    p.Storage.OutputDir(),
	})
	return results, nil
}

// CaptionsFilename names the caption sheet written beside the PNGs
func CaptionsFilename(date time.Time, region string) string {
	return fmt.Sprintf("gigs_%s_%s_captions.txt", date.Format("20060102"), region)
}

// SlideCaptions returns the title caption followed by one caption per content slide
func (p *Pipeline) SlideCaptions(c *Carousel) []string {
	out := []string{p.Captions.Title()}
	for i, s := range c.Set.Slides {
		out = append(out, p.Captions.ForSlide(s.Gigs, i, len(c.Set.Slides), c.Date, c.Region.Title))
	}
	return out
}

func (p *Pipeline) writeCaptions(c *Carousel) error {
	sheet := strings.Join(p.SlideCaptions(c), "\n\n----------\n\n") + "\n"
	name := CaptionsFilename(c.Date, c.Region.ID)
	if err := p.Storage.Save(name, strings.NewReader(sheet)); err != nil {
		return fmt.Errorf("failed to save captions: %w", err)
	}
	return nil
}

// WriteMetrics flushes the run metrics to the configured textfile
func (p *Pipeline) WriteMetrics() error {
	if err := p.Metrics.WriteTextfile(p.cfg.Metrics.Textfile); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
