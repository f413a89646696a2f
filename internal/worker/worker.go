package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/dtaibeau/youtube-proj/internal/pipeline"
	"github.com/dtaibeau/youtube-proj/internal/source"
)

var tracer = otel.Tracer("github.com/dtaibeau/youtube-proj/internal/worker")

// Stage is a pipeline run state.
type Stage int

const (
	Idle Stage = iota
	Fetching
	Grouping
	Batching
	Attributing
	Merging
	Done
	Failed
)

func (s Stage) String() string {
	switch s {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case Grouping:
		return "grouping"
	case Batching:
		return "batching"
	case Attributing:
		return "attributing"
	case Merging:
		return "merging"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Options configures the worker.
type Options struct {
	Source     source.Source
	Attributor pipeline.Attributor
	Boundary   pipeline.Boundary

	BatchSize       int
	NoAsync         bool
	MaxConcurrent   int
	MaxRetries      int
	RateLimitPerMin int
	// RetryBackoff is the first retry delay; it doubles per attempt.
	RetryBackoff time.Duration

	// OnStage, if set, is called on every state transition.
	OnStage func(Stage)
}

// Report is what a successful run hands to the render sink.
type Report struct {
	RunID       string
	URL         string
	Title       string
	Description string
	Fragments   int
	Segments    int
	Batches     int
	Elapsed     time.Duration
	Result      *pipeline.Result
}

type run struct {
	id    string
	opts  Options
	stage Stage
	log   *slog.Logger
}

func (r *run) enter(s Stage) {
	r.log.Debug("stage transition", "from", r.stage, "to", s)
	r.stage = s
	if r.opts.OnStage != nil {
		r.opts.OnStage(s)
	}
}

// Run is the top-level orchestrator: fetch the transcript for url, then
// process it. Fetch failures are fatal; batch failures are not.
func Run(ctx context.Context, url string, opts Options) (*Report, error) {
	if opts.Source == nil {
		return nil, errors.New("worker: no transcript source")
	}
	r := newRun(opts)

	ctx, span := tracer.Start(ctx, "ytscribe.run")
	defer span.End()
	span.SetAttributes(attribute.String("run.id", r.id), attribute.String("video.url", url))

	r.enter(Fetching)
	video, err := fetch(ctx, opts.Source, url)
	if err != nil {
		r.enter(Failed)
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, err
	}
	r.log.Info("transcript fetched", "title", video.Title, "fragments", len(video.Fragments))

	rep, err := r.process(ctx, video)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return rep, nil
}

// Process runs grouping, batching, attribution and merging over an
// already-fetched video.
func Process(ctx context.Context, video *pipeline.Video, opts Options) (*Report, error) {
	return newRun(opts).process(ctx, video)
}

func newRun(opts Options) *run {
	id := uuid.NewString()
	return &run{
		id:   id,
		opts: opts,
		log:  slog.Default().With("run", id[:8]),
	}
}

func (r *run) process(ctx context.Context, video *pipeline.Video) (*Report, error) {
	if r.opts.Attributor == nil {
		return nil, errors.New("worker: no attributor")
	}
	start := time.Now()

	r.enter(Grouping)
	segments := pipeline.Group(video.Fragments, r.opts.Boundary)
	r.log.Info("transcript grouped", "fragments", len(video.Fragments), "segments", len(segments))

	r.enter(Batching)
	batches, err := pipeline.Split(segments, r.opts.BatchSize)
	if err != nil {
		r.enter(Failed)
		return nil, err
	}

	r.enter(Attributing)
	var outcomes []pipeline.BatchOutcome
	if !r.opts.NoAsync && len(batches) > 1 {
		outcomes, err = r.attributeConcurrent(ctx, video, batches)
	} else {
		outcomes, err = r.attributeSequential(ctx, video, batches)
	}
	if err != nil {
		r.enter(Failed)
		return nil, err
	}

	r.enter(Merging)
	result, err := pipeline.Merge(outcomes, len(batches))
	if err != nil {
		r.enter(Failed)
		return nil, err
	}
	for _, w := range result.Warnings {
		r.log.Warn("batch dropped from transcript", "batch", fmt.Sprintf("%d/%d", w.Batch, len(batches)), "err", w.Err)
	}

	r.enter(Done)
	r.log.Info("transcript attributed",
		"segments", len(result.Segments),
		"batches", len(batches),
		"failed_batches", len(result.Warnings))

	return &Report{
		RunID:       r.id,
		URL:         video.URL,
		Title:       video.Title,
		Description: video.Description,
		Fragments:   len(video.Fragments),
		Segments:    len(segments),
		Batches:     len(batches),
		Elapsed:     time.Since(start),
		Result:      result,
	}, nil
}

// fetch runs the source on its own goroutine and waits for it.
func fetch(ctx context.Context, src source.Source, url string) (*pipeline.Video, error) {
	type fetched struct {
		video *pipeline.Video
		err   error
	}
	ch := make(chan fetched, 1)
	go func() {
		v, err := src.Fetch(ctx, url)
		ch <- fetched{v, err}
	}()

	var f fetched
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case f = <-ch:
	}

	if f.err != nil {
		var fe *source.FetchError
		if errors.As(f.err, &fe) {
			return nil, f.err
		}
		return nil, &source.FetchError{Kind: source.Unknown, URL: url, Err: f.err}
	}
	if f.video == nil {
		return nil, &source.FetchError{Kind: source.Unknown, URL: url, Err: errors.New("source returned no video")}
	}
	return f.video, nil
}
