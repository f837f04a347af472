package retry

import (
	"context"
	"errors"
	"math/rand"

	logger "github.com/sirupsen/logrus"

	"github.com/TEENet-io/multiwallet/metrics"
)

var ErrNoEndpoints = errors.New("no endpoints available")

// Endpoint is one provider's rendition of a logical request.
// An Endpoint with a nil Op is absent and is skipped by Fallback.
type Endpoint[T any] struct {
	Name string
	Op   Operation[T]
}

func (e Endpoint[T]) Absent() bool {
	return e.Op == nil
}

// Fallback tries endpoints in order, one at a time, and returns the
// first success. Failures are logged and the next endpoint is tried.
// When all fail the last error is returned unchanged. A list with no
// usable entry yields ErrNoEndpoints.
func Fallback[T any](ctx context.Context, endpoints []Endpoint[T]) (T, error) {
	var result T
	var lastErr error
	tried := 0

	for _, ep := range endpoints {
		if ep.Absent() {
			continue
		}
		if tried > 0 && ctx.Err() != nil {
			break
		}
		tried++

		res, err := ep.Op(ctx)
		if err == nil {
			metrics.ProviderCall(ep.Name, metrics.OUTCOME_SUCCESS)
			return res, nil
		}

		metrics.ProviderCall(ep.Name, metrics.OUTCOME_FAILURE)
		logger.WithFields(logger.Fields{
			"endpoint": ep.Name,
			"position": tried,
		}).Warnf("provider failed, trying next: %v", err)
		lastErr = err
	}

	if tried == 0 {
		return result, ErrNoEndpoints
	}
	metrics.FallbackExhausted()
	return result, lastErr
}

// OnlyMainnet keeps ep on mainnet and yields an absent entry otherwise.
func OnlyMainnet[T any](mainnet bool, ep Endpoint[T]) Endpoint[T] {
	if !mainnet {
		return Endpoint[T]{Name: ep.Name}
	}
	return ep
}

// Shuffle returns a shuffled copy of eps.
func Shuffle[T any](eps []Endpoint[T]) []Endpoint[T] {
	out := make([]Endpoint[T], len(eps))
	copy(out, eps)
	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// Ordered builds an endpoint list: reliable providers in their given
// order, followed by the others in random order.
func Ordered[T any](reliable []Endpoint[T], others []Endpoint[T]) []Endpoint[T] {
	out := make([]Endpoint[T], 0, len(reliable)+len(others))
	out = append(out, reliable...)
	out = append(out, Shuffle(others)...)
	return out
}
