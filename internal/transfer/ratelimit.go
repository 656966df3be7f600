package transfer

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// maxBurst caps a single read so WaitN never asks for more than the bucket holds
const maxBurst = 64 * 1024

func burstSize(bytesPerSec int64) int {
	if bytesPerSec < maxBurst {
		return int(bytesPerSec)
	}
	return maxBurst
}

type rateLimitedReader struct {
	ctx     context.Context
	r       io.Reader
	limiter *rate.Limiter
}

func newRateLimitedReader(ctx context.Context, r io.Reader, l *rate.Limiter) io.Reader {
	return &rateLimitedReader{ctx: ctx, r: r, limiter: l}
}

func (r *rateLimitedReader) Read(p []byte) (int, error) {
	if burst := r.limiter.Burst(); len(p) > burst {
		p = p[:burst]
	}

	n, err := r.r.Read(p)
	if n > 0 {
		if waitErr := r.limiter.WaitN(r.ctx, n); waitErr != nil {
			return n, waitErr
		}
	}
	return n, err
}
