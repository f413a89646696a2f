package worker

import (
	"context"

	"github.com/dtaibeau/youtube-proj/internal/pipeline"
)

// attributeSequential processes batches one at a time, in order.
func (r *run) attributeSequential(ctx context.Context, video *pipeline.Video, batches []pipeline.Batch) ([]pipeline.BatchOutcome, error) {
	outcomes := make([]pipeline.BatchOutcome, len(batches))
	limiter := newLimiter(r.opts.RateLimitPerMin)

	for i, b := range batches {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
		outcomes[i] = r.attributeOne(ctx, video, b, len(batches))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
