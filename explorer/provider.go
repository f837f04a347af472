// Package explorer holds the adapters that talk to third-party block
// explorer APIs. Every adapter normalises amounts to the smallest unit
// and reports transport or decoding problems as errors, so callers can
// fall back to another provider.
package explorer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/TEENet-io/multiwallet/btcman/utils"
	"github.com/TEENet-io/multiwallet/btcman/utxo"
	"github.com/TEENet-io/multiwallet/retry"
)

const (
	DEFAULT_ATTEMPTS = 5
	DEFAULT_TIMEOUT  = 30 * time.Second
	MAX_BODY_BYTES   = 8 << 20
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	ErrBadStatus         = errors.New("unexpected http status")
	ErrMalformedResponse = errors.New("malformed provider response")
	ErrRejected          = errors.New("provider rejected the request")
)

// Provider is one explorer service able to serve the three wallet
// queries. Implementations are safe for concurrent use.
type Provider interface {
	Name() string
	FetchUTXOs(ctx context.Context, address string, minConfirmations int64) ([]utxo.UTXO, error)
	FetchConfirmations(ctx context.Context, txID string) (int64, error)
	BroadcastTransaction(ctx context.Context, signedTxHex string) (string, error)
}

type Option func(*base)

func WithHTTPClient(c *http.Client) Option {
	return func(b *base) {
		if c != nil {
			b.client = c
		}
	}
}

// WithRateLimit paces requests to rps per second with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(b *base) {
		if rps > 0 {
			if burst < 1 {
				burst = 1
			}
			b.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithAttempts sets how often each call is retried against this
// provider before the error is handed to the caller.
func WithAttempts(n int) Option {
	return func(b *base) {
		b.attempts = n
	}
}

// WithName overrides the provider name used in logs and metrics.
func WithName(name string) Option {
	return func(b *base) {
		if name != "" {
			b.name = name
		}
	}
}

// base carries the plumbing shared by all HTTP adapters.
type base struct {
	name     string
	baseURL  string
	client   *http.Client
	limiter  *rate.Limiter
	attempts int
}

func newBase(name string, baseURL string, opts []Option) base {
	b := base{
		name:     name,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: DEFAULT_TIMEOUT},
		attempts: DEFAULT_ATTEMPTS,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *base) Name() string {
	return b.name
}

// do performs one HTTP request and returns the body of a 2xx response.
func (b *base) do(ctx context.Context, method string, path string, contentType string, body []byte) ([]byte, error) {
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MAX_BODY_BYTES))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return data, &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: truncate(string(data), 200)}
	}
	return data, nil
}

// StatusError is a non-2xx answer. It matches ErrBadStatus.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v: %s %s returned %d: %s", ErrBadStatus, e.Method, e.Path, e.Code, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrBadStatus
}

// ClientError reports a 4xx answer other than timeouts and throttling,
// which a repeat of the same request will not change.
func (e *StatusError) ClientError() bool {
	if e.Code == http.StatusRequestTimeout || e.Code == http.StatusTooManyRequests {
		return false
	}
	return e.Code >= 400 && e.Code < 500
}

func (b *base) getJSON(ctx context.Context, path string, out any) error {
	data, err := b.do(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedResponse, path, err)
	}
	return nil
}

// withRetry runs op with this provider's attempt budget. Rejections are
// final and end the attempts early.
func withRetry[T any](ctx context.Context, b *base, label string, op retry.Operation[T]) (T, error) {
	return retry.Retry(ctx, op, b.attempts,
		retry.WithLabel(b.name+" "+label),
		retry.WithPermanent(isRejected),
	)
}

func isRejected(err error) bool {
	return errors.Is(err, ErrRejected)
}

// alreadyKnownMarkers are node answers meaning the transaction was
// accepted earlier, by this provider or another one.
var alreadyKnownMarkers = []string{
	"already in block chain",
	"already in the block chain",
	"txn-already-known",
	"txn-already-in-mempool",
	"already have transaction",
	"transaction already exists",
	"\"code\":-27",
}

func isAlreadyKnown(msg string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range alreadyKnownMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// ResolveAlreadyKnown turns an "already known" broadcast rejection into
// success by computing the txid locally. Other errors pass through.
func ResolveAlreadyKnown(name string, signedTxHex string, err error) (string, error) {
	if err == nil || !isAlreadyKnown(err.Error()) {
		return "", err
	}
	txID, idErr := utils.TxIDFromHex(signedTxHex)
	if idErr != nil {
		return "", err
	}
	logger.WithFields(logger.Fields{
		"provider": name,
		"txid":     txID,
	}).Info("transaction already known to the network")
	return txID, nil
}

// broadcastError classifies a failed broadcast: "already known" answers
// resolve to the local txid, other 4xx answers become ErrRejected and the
// rest pass through so the caller may try again or elsewhere.
func broadcastError(name string, signedTxHex string, err error) (string, error) {
	txID, err := ResolveAlreadyKnown(name, signedTxHex, err)
	if err == nil {
		return txID, nil
	}
	var se *StatusError
	if errors.As(err, &se) && se.ClientError() && !isRejected(err) {
		return "", fmt.Errorf("%w: %w", ErrRejected, err)
	}
	return "", err
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
