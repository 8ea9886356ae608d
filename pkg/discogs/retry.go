package discogs

import (
	"context"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// attemptFunc performs one attempt of a request. attempt starts at 1.
type attemptFunc func(ctx context.Context, attempt int) (*Response, error)

// withRetry runs fn and retries it while the server answers 429.
//
// The n-th retry waits BackoffInterval * BackoffRate^(n-1). Once
// BackoffMaxRetries retries have been used, the error of the last attempt
// is returned unchanged. Other errors, including local queue rejections and
// transport failures, are returned immediately.
func (c *Client) withRetry(ctx context.Context, req *Request, fn attemptFunc) (*Response, error) {
	bo := c.newBackOff(c.Settings())

	for attempt := 1; ; attempt++ {
		resp, err := fn(ctx, attempt)
		if err == nil || !isRateLimited(err) {
			return resp, err
		}

		wait := bo.NextBackOff()
		if wait == backoff.Stop {
			return nil, err
		}

		c.logDebugf("discogs: %s %s rate limited, retrying in %v", req.Method, req.URL, wait)
		if !c.sleep(ctx, wait) {
			return nil, ctx.Err()
		}
	}
}

// newBackOff returns the retry schedule for the given settings: exponential,
// without jitter or elapsed-time cap, stopping after BackoffMaxRetries.
func (c *Client) newBackOff(s Settings) backoff.BackOff {
	if s.BackoffMaxRetries <= 0 {
		return &backoff.StopBackOff{}
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = s.BackoffInterval
	exp.Multiplier = s.BackoffRate
	exp.RandomizationFactor = 0
	exp.MaxInterval = time.Duration(math.MaxInt64)
	exp.MaxElapsedTime = 0
	exp.Clock = c.clock
	exp.Reset()

	return backoff.WithMaxRetries(exp, uint64(s.BackoffMaxRetries))
}

// sleep waits for the specified duration or until context is cancelled.
// Returns true if sleep completed, false if context was cancelled.
func (c *Client) sleep(ctx context.Context, d time.Duration) bool {
	t := c.clock.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
