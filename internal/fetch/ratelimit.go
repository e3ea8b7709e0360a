package fetch

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// NewRateLimiter creates a new rate limiter with the specified bytes per second limit
func NewRateLimiter(bytesPerSecond int64) *rate.Limiter {
	// Convert bytes per second to tokens per second
	// Each token represents one byte
	return rate.NewLimiter(rate.Limit(bytesPerSecond), int(bytesPerSecond))
}

// limitedReader paces reads through a rate limiter
type limitedReader struct {
	ctx     context.Context
	r       io.Reader
	limiter *rate.Limiter
}

// newLimitedReader wraps r so reads never exceed the limiter's rate.
// A nil limiter returns r unchanged.
func newLimitedReader(ctx context.Context, r io.Reader, limiter *rate.Limiter) io.Reader {
	if limiter == nil {
		return r
	}
	return &limitedReader{ctx: ctx, r: r, limiter: limiter}
}

func (l *limitedReader) Read(p []byte) (int, error) {
	// Never request more tokens than the burst allows
	if burst := l.limiter.Burst(); len(p) > burst {
		p = p[:burst]
	}

	n, err := l.r.Read(p)
	if n > 0 {
		if werr := l.limiter.WaitN(l.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}
