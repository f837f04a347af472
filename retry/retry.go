// Package retry provides the two resilience combinators used against
// explorer services: bounded retry of one operation, and sequential
// fallback over an ordered list of providers.
package retry

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"
)

// Operation is a single logical request against one provider.
// Parameters are captured by the closure; it must be safe to invoke
// more than once.
type Operation[T any] func(ctx context.Context) (T, error)

type config struct {
	delay     time.Duration
	label     string
	permanent func(error) bool
}

type Option func(*config)

// WithDelay pauses d between failed attempts. Default is no pause.
func WithDelay(d time.Duration) Option {
	return func(c *config) {
		c.delay = d
	}
}

// WithLabel names the operation in log lines.
func WithLabel(label string) Option {
	return func(c *config) {
		c.label = label
	}
}

// WithPermanent stops retrying once isPermanent reports the error of an
// attempt as final.
func WithPermanent(isPermanent func(error) bool) Option {
	return func(c *config) {
		c.permanent = isPermanent
	}
}

// replaced in tests
var sleepFunc = sleepCtx

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Retry invokes op up to maxAttempts times and returns the first success.
// maxAttempts <= 1 means a single attempt. When every attempt fails the
// error of the final attempt is returned unchanged.
func Retry[T any](ctx context.Context, op Operation[T], maxAttempts int, opts ...Option) (T, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var result T
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, err
			}
			if cfg.delay > 0 {
				if sleepErr := sleepFunc(ctx, cfg.delay); sleepErr != nil {
					return result, err
				}
			}
		}

		result, err = op(ctx)
		if err == nil {
			return result, nil
		}
		if cfg.permanent != nil && cfg.permanent(err) {
			return result, err
		}

		if attempt < maxAttempts {
			logger.WithFields(logger.Fields{
				"op":      cfg.label,
				"attempt": attempt,
				"max":     maxAttempts,
			}).Debugf("attempt failed, retrying: %v", err)
		}
	}
	return result, err
}
