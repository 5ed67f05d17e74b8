package throttle

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// WriteThrottle paces outbound writes to the legacy EMR with a token
// bucket. The legacy server degrades badly under write bursts, so every
// enroll, disenroll, and start-visit passes through here before the
// request leaves the process.
type WriteThrottle struct {
	limiter *rate.Limiter
	log     *zap.Logger
}

// NewWriteThrottle builds a throttle allowing perSecond sustained writes
// with the given burst. A non-positive perSecond disables pacing.
func NewWriteThrottle(perSecond float64, burst int, log *zap.Logger) *WriteThrottle {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &WriteThrottle{
		limiter: rate.NewLimiter(limit, burst),
		log:     log,
	}
}

// Wait blocks until a token is available or the context ends.
func (t *WriteThrottle) Wait(ctx context.Context) error {
	if err := t.limiter.Wait(ctx); err != nil {
		t.log.Warn("WriteThrottle.Wait aborted", zap.Error(err))
		return err
	}
	return nil
}
