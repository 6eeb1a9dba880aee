// Package uploader renders, saves and hosts slides with a pool of workers.
// Each worker owns its own renderer because font faces are not safe for
// concurrent use.
package uploader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"gigslides/pkg/hosting"
	"gigslides/pkg/layout"
	"gigslides/pkg/logger"
)

// Job is one slide to produce. Slide is nil for the title slide.
type Job struct {
	Index       int
	Filename    string
	Slide       *layout.Slide
	Page        int
	Total       int
	RegionTitle string
	Date        time.Time

	// Reuse skips rendering when Filename already exists in storage
	Reuse bool
	// Host uploads the file after saving
	Host bool
}

// Result is the outcome of a job
type Result struct {
	Job       Job
	PublicURL string
	Size      int
	Rendered  bool
	Duration  time.Duration
	Error     error
}

// SlideRenderer draws slides as PNG
type SlideRenderer interface {
	TitleSlide(w io.Writer, regionTitle string, date time.Time) error
	ContentSlide(w io.Writer, slide layout.Slide, page, total int, date time.Time) error
	Close() error
}

// RendererFactory creates a renderer for one worker
type RendererFactory func() (SlideRenderer, error)

// SlideStorage persists rendered slides
type SlideStorage interface {
	Exists(name string) bool
	Save(name string, r io.Reader) error
	Read(name string) ([]byte, error)
}

// WorkerPool manages concurrent slide workers
type WorkerPool struct {
	numWorkers  int
	jobQueue    chan Job
	resultQueue chan Result
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	newRenderer RendererFactory
	storage     SlideStorage
	host        hosting.Uploader
	logger      logger.Logger
}

// NewWorkerPool creates a pool. host may be nil when no job sets Host.
func NewWorkerPool(numWorkers int, newRenderer RendererFactory, storage SlideStorage, host hosting.Uploader, log logger.Logger) *WorkerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &WorkerPool{
		numWorkers:  numWorkers,
		jobQueue:    make(chan Job, numWorkers*2),
		resultQueue: make(chan Result, numWorkers),
		newRenderer: newRenderer,
		storage:     storage,
		host:        host,
		logger:      log.WithField("component", "uploader"),
	}
}

// Start launches the workers. Cancelling ctx stops them after their current job.
func (wp *WorkerPool) Start(ctx context.Context) {
	wp.ctx, wp.cancel = context.WithCancel(ctx)
	wp.logger.DebugWithFields("starting worker pool", map[string]interface{}{
		"num_workers": wp.numWorkers,
	})
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop closes the queue, waits for the workers and closes Results
func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
	wp.cancel()
	wp.logger.Debug("worker pool stopped")
}

// Submit queues a job
func (wp *WorkerPool) Submit(job Job) error {
	select {
	case wp.jobQueue <- job:
		return nil
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool is shutting down")
	}
}

// Results returns the result channel
func (wp *WorkerPool) Results() <-chan Result {
	return wp.resultQueue
}

// Run processes jobs and returns their results ordered by Index. The first
// job error is returned alongside the full result list.
func (wp *WorkerPool) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	wp.Start(ctx)

	results := make([]Result, 0, len(jobs))
	done := make(chan struct{})
	go func() {
		for r := range wp.Results() {
			results = append(results, r)
		}
		close(done)
	}()

	var submitErr error
	for _, job := range jobs {
		if err := wp.Submit(job); err != nil {
			submitErr = err
			break
		}
	}
	wp.Stop()
	<-done

	sort.Slice(results, func(i, j int) bool { return results[i].Job.Index < results[j].Job.Index })
	for _, r := range results {
		if r.Error != nil {
			return results, r.Error
		}
	}
	if submitErr == nil && len(results) < len(jobs) {
		submitErr = ctx.Err()
	}
	return results, submitErr
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	var renderer SlideRenderer
	var rendererErr error
	defer func() {
		if renderer != nil {
			renderer.Close()
		}
	}()

	for job := range wp.jobQueue {
		select {
		case <-wp.ctx.Done():
			wp.send(Result{Job: job, Error: wp.ctx.Err()})
			continue
		default:
		}

		if renderer == nil && rendererErr == nil && !wp.canReuse(job) {
			renderer, rendererErr = wp.newRenderer()
		}
		wp.send(wp.processJob(job, id, renderer, rendererErr))
	}
}

func (wp *WorkerPool) send(r Result) {
	wp.resultQueue <- r
}

func (wp *WorkerPool) canReuse(job Job) bool {
	return job.Reuse && wp.storage.Exists(job.Filename)
}

func (wp *WorkerPool) processJob(job Job, workerID int, renderer SlideRenderer, rendererErr error) Result {
	start := time.Now()
	result := Result{Job: job}
	fail := func(stage string, err error) Result {
		result.Error = fmt.Errorf("slide %d %s failed: %w", job.Index, stage, err)
		result.Duration = time.Since(start)
		wp.logger.ErrorWithFields("worker failed", map[string]interface{}{
			"worker_id": workerID,
			"file":      job.Filename,
			"stage":     stage,
			"error":     err.Error(),
		})
		return result
	}

	var data []byte
	if wp.canReuse(job) {
		existing, err := wp.storage.Read(job.Filename)
		if err != nil {
			return fail("read", err)
		}
		data = existing
	} else {
		if rendererErr != nil {
			return fail("render", rendererErr)
		}
		var buf bytes.Buffer
		var err error
		if job.Slide == nil {
			err = renderer.TitleSlide(&buf, job.RegionTitle, job.Date)
		} else {
			err = renderer.ContentSlide(&buf, *job.Slide, job.Page, job.Total, job.Date)
		}
		if err != nil {
			return fail("render", err)
		}
		data = buf.Bytes()
		if err := wp.storage.Save(job.Filename, bytes.NewReader(data)); err != nil {
			return fail("save", err)
		}
		result.Rendered = true
	}
	result.Size = len(data)

	if job.Host {
		if wp.host == nil {
			return fail("host", fmt.Errorf("no image host configured"))
		}
		url, err := wp.host.Upload(wp.ctx, job.Filename, data)
		if err != nil {
			return fail("host", err)
		}
		result.PublicURL = url
	}

	result.Duration = time.Since(start)
	wp.logger.DebugWithFields("slide ready", map[string]interface{}{
		"worker_id": workerID,
		"file":      job.Filename,
		"size":      result.Size,
		"rendered":  result.Rendered,
		"hosted":    result.PublicURL != "",
		"duration":  result.Duration,
	})
	return result
}

// NumWorkers returns the pool size
func (wp *WorkerPool) NumWorkers() int {
	return wp.numWorkers
}
