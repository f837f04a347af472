// Package confirmations polls a confirmation source in the background and
// reports the depth of a broadcast transaction to a tracked promise.
package confirmations

import (
	"context"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/TEENet-io/multiwallet/metrics"
)

const (
	POLL_INTERVAL = 5 * time.Second
)

// Target receives confirmation events. *tracked.Promise satisfies it.
type Target interface {
	EmitConfirmation(confirmations int64) bool
	Done() <-chan struct{}
}

// FetchFunc returns the confirmation count of the transaction being
// watched. Zero means not yet confirmed.
type FetchFunc func(ctx context.Context) (int64, error)

type config struct {
	interval time.Duration
	maxPolls int
	onCount  func(int64)
}

type Option func(*config)

func WithInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithMaxPolls stops the loop after n polls. n <= 0 means unbounded.
func WithMaxPolls(n int) Option {
	return func(c *config) {
		c.maxPolls = n
	}
}

// WithObserver is called with every successfully fetched count,
// including zero, before any event is emitted.
func WithObserver(fn func(confirmations int64)) Option {
	return func(c *config) {
		c.onCount = fn
	}
}

type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Stop ends the polling loop. Safe to call more than once.
func (s *Subscription) Stop() {
	s.once.Do(s.cancel)
}

// Done is closed once the polling loop has exited.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Subscribe starts polling fetch every interval. On each tick:
//   - isAborted() true: the loop exits without emitting
//   - fetch error: the tick is skipped
//   - count >= 1: a confirmation event is emitted and polling continues
//
// The loop also exits when target settles, when ctx is done, or after
// the configured number of polls. It never settles target itself.
func Subscribe(ctx context.Context, target Target, isAborted func() bool, fetch FetchFunc, opts ...Option) *Subscription {
	cfg := &config{interval: POLL_INTERVAL}
	for _, opt := range opts {
		opt(cfg)
	}
	if isAborted == nil {
		isAborted = func() bool { return false }
	}

	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(sub.done)
		defer sub.Stop()
		poll(ctx, target, isAborted, fetch, cfg)
	}()
	return sub
}

func poll(ctx context.Context, target Target, isAborted func() bool, fetch FetchFunc, cfg *config) {
	ticker := time.NewTicker(cfg.interval)
	defer ticker.Stop()

	polls := 0
	var last int64
	for {
		select {
		case <-ctx.Done():
			return
		case <-target.Done():
			return
		case <-ticker.C:
		}

		if isAborted() {
			logger.Debug("confirmation polling aborted")
			return
		}

		polls++
		count, err := fetch(ctx)
		if err != nil {
			metrics.ConfirmationPoll(metrics.OUTCOME_FAILURE)
			logger.WithField("poll", polls).Debugf("cannot fetch confirmations, skipping tick: %v", err)
		} else {
			if cfg.onCount != nil {
				cfg.onCount(count)
			}
			if count > last {
				metrics.ConfirmationPoll(metrics.OUTCOME_CONFIRMED)
				target.EmitConfirmation(count)
				last = count
			} else if count >= 1 {
				// a lagging provider may report less than already seen
				metrics.ConfirmationPoll(metrics.OUTCOME_CONFIRMED)
			} else {
				metrics.ConfirmationPoll(metrics.OUTCOME_UNCONFIRMED)
			}
		}

		if cfg.maxPolls > 0 && polls >= cfg.maxPolls {
			logger.WithField("polls", polls).Debug("confirmation polling reached its limit")
			return
		}
	}
}
