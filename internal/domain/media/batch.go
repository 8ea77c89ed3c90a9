package media

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BatchSession is the set of upload jobs created from one multi-file
// request, sharing one event stream. The session is complete once every job
// reached a terminal status; completion is reported exactly once.
type BatchSession struct {
	ID   string
	Jobs []*UploadJob

	events chan ProgressEvent
}

func NewBatchSession(jobs []*UploadJob) *BatchSession {
	return &BatchSession{
		ID:     uuid.NewString(),
		Jobs:   jobs,
		events: make(chan ProgressEvent, 64),
	}
}

// Events returns the live event stream. The channel is closed after the
// session-terminal event.
func (s *BatchSession) Events() <-chan ProgressEvent {
	return s.events
}

// Drain consumes and discards remaining events so upload workers never block
// after the consumer went away.
func (s *BatchSession) Drain() {
	for range s.events {
	}
}

// Orchestrator drives a batch session's jobs to completion with a bounded
// worker pool. Events are index-tagged so the consumer can reassemble
// per-file ordering. A job's failure is recorded on that job alone; the
// session always resolves and always emits its terminal event.
type Orchestrator struct {
	uploader    *Uploader
	concurrency int
	log         zerolog.Logger
}

func NewOrchestrator(uploader *Uploader, concurrency int, log zerolog.Logger) *Orchestrator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Orchestrator{
		uploader:    uploader,
		concurrency: concurrency,
		log:         log.With().Str("component", "batch-orchestrator").Logger(),
	}
}

// Run processes every job and closes the session's event stream after the
// done event. It blocks until the session is complete; callers wanting a
// live stream run it on its own goroutine and consume Events.
func (o *Orchestrator) Run(ctx context.Context, session *BatchSession) {
	sem := make(chan struct{}, o.concurrency)
	var wg sync.WaitGroup

	for _, job := range session.Jobs {
		wg.Add(1)
		sem <- struct{}{}
		go func(job *UploadJob) {
			defer wg.Done()
			defer func() { <-sem }()
			o.runJob(ctx, session, job)
		}(job)
	}

	wg.Wait()

	session.events <- ProgressEvent{Status: SessionDone, Progress: 100}
	close(session.events)

	o.log.Info().
		Str("session", session.ID).
		Int("jobs", len(session.Jobs)).
		Msg("batch session complete")
}

func (o *Orchestrator) runJob(ctx context.Context, session *BatchSession, job *UploadJob) {
	// Jobs rejected during request validation carry a preset error and
	// never reach the store.
	if job.Err != nil {
		job.Status = JobError
		session.events <- ProgressEvent{
			Index:    job.Index,
			Filename: job.Filename,
			Status:   string(JobError),
			Progress: 0,
			Error:    job.Err.Error(),
		}
		return
	}

	job.Status = JobUploading
	session.events <- ProgressEvent{
		Index:    job.Index,
		Filename: job.Filename,
		Status:   string(JobUploading),
		Progress: 0,
	}

	// Progress reflects locally read bytes and is clamped below 100 until
	// the remote call resolved, so 100 is observed only on success.
	sink := func(percent int) {
		if percent > 99 {
			percent = 99
		}
		if percent <= job.Progress {
			return
		}
		job.Progress = percent
		session.events <- ProgressEvent{
			Index:    job.Index,
			Filename: job.Filename,
			Status:   string(JobUploading),
			Progress: percent,
		}
	}

	asset, err := o.uploader.Upload(ctx, job, sink)
	if err != nil {
		job.Status = JobError
		job.Err = err
		o.log.Warn().
			Str("session", session.ID).
			Str("filename", job.Filename).
			Err(err).
			Msg("upload job failed")
		session.events <- ProgressEvent{
			Index:    job.Index,
			Filename: job.Filename,
			Status:   string(JobError),
			Progress: job.Progress,
			Error:    err.Error(),
		}
		return
	}

	job.Status = JobSuccess
	job.Progress = 100
	job.Asset = asset
	session.events <- ProgressEvent{
		Index:    job.Index,
		Filename: job.Filename,
		Status:   string(JobSuccess),
		Progress: 100,
		URL:      asset.URL,
		PublicID: asset.PublicID,
	}
}
