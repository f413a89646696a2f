package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/dtaibeau/youtube-proj/internal/llm"
	"github.com/dtaibeau/youtube-proj/internal/pipeline"
)

// attributeConcurrent dispatches every batch with bounded parallelism and
// rate limiting. Each call writes only its own slot, so completion order
// never affects output order. A failed batch fills its slot with the error;
// only cancellation aborts the whole group.
func (r *run) attributeConcurrent(ctx context.Context, video *pipeline.Video, batches []pipeline.Batch) ([]pipeline.BatchOutcome, error) {
	limit := r.opts.MaxConcurrent
	if limit < 1 {
		limit = 1
	}
	r.log.Info("starting concurrent attribution",
		"batches", len(batches),
		"max_concurrent", limit,
		"rate_limit_rpm", r.opts.RateLimitPerMin)

	limiter := newLimiter(r.opts.RateLimitPerMin)
	outcomes := make([]pipeline.BatchOutcome, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, b := range batches {
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return fmt.Errorf("rate limiter: %w", err)
			}
			outcomes[i] = r.attributeOne(gctx, video, b, len(batches))
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// newLimiter converts requests per minute to a token rate. Zero means
// unlimited.
func newLimiter(perMin int) *rate.Limiter {
	if perMin <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(float64(perMin)/60.0), 1)
}

// attributeOne performs the attribution call for one batch, retrying
// transient service failures when MaxRetries allows it.
func (r *run) attributeOne(ctx context.Context, video *pipeline.Video, b pipeline.Batch, total int) pipeline.BatchOutcome {
	label := fmt.Sprintf("%d/%d", b.Index+1, total)

	ctx, span := tracer.Start(ctx, "ytscribe.attribute_batch")
	defer span.End()
	span.SetAttributes(attribute.Int("batch.index", b.Index), attribute.Int("batch.segments", len(b.Segments)))

	req := pipeline.AttributionRequest{Title: video.Title, Description: video.Description, Batch: b}
	backoff := r.opts.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}

	var lastErr error
	for attempt := 0; attempt <= r.opts.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}

		r.log.Info("attributing batch", "batch", label, "segments", len(b.Segments))
		start := time.Now()
		segs, err := r.opts.Attributor.Attribute(ctx, req)
		if err == nil {
			r.log.Info("batch attributed", "batch", label, "segments", len(segs), "took", time.Since(start).Round(time.Millisecond))
			return pipeline.BatchOutcome{Done: true, Segments: segs}
		}
		lastErr = err

		if attempt == r.opts.MaxRetries || !llm.IsRetryable(err) {
			break
		}
		wait := backoff << uint(attempt)
		r.log.Warn("batch failed, retrying",
			"batch", label,
			"attempt", attempt+1,
			"backoff", wait,
			"err", err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			lastErr = ctx.Err()
		case <-timer.C:
		}
		if ctx.Err() != nil {
			break
		}
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, "attribution failed")
	r.log.Warn("batch attribution failed", "batch", label, "err", lastErr)
	return pipeline.BatchOutcome{Done: true, Err: asAttributionError(b.Index, lastErr)}
}

func asAttributionError(index int, err error) error {
	var ae *pipeline.AttributionError
	if errors.As(err, &ae) {
		return ae
	}
	return &pipeline.AttributionError{Batch: index, Err: err}
}
