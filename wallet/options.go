package wallet

import (
	"time"

	"github.com/TEENet-io/multiwallet/confirmations"
	"github.com/TEENet-io/multiwallet/tracked"
	"github.com/TEENet-io/multiwallet/txjournal"
)

const (
	DEFAULT_FEE            = 10000 // smallest unit
	DEFAULT_FETCH_ATTEMPTS = 2     // outer retry around the utxo fallback
)

// TxOptions describes how a balance is read or a send is made.
type TxOptions struct {
	Address           string // source address, defaults to the handler's own
	Confirmations     int64  // minimum confirmations of spent or counted utxos
	Fee               int64  // absolute fee in the smallest unit
	SubtractFee       bool   // take the fee out of the amount sent
	WaitConfirmations int64  // resolve once the tx reaches this depth, 0 resolves on broadcast

	listeners []func(*tracked.Promise[string])
}

type TxOption func(*TxOptions)

func newTxOptions(opts []TxOption) TxOptions {
	o := TxOptions{Fee: DEFAULT_FEE}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func FromAddress(address string) TxOption {
	return func(o *TxOptions) {
		o.Address = address
	}
}

func MinConfirmations(n int64) TxOption {
	return func(o *TxOptions) {
		o.Confirmations = n
	}
}

func WithFee(fee int64) TxOption {
	return func(o *TxOptions) {
		o.Fee = fee
	}
}

func SubtractFee() TxOption {
	return func(o *TxOptions) {
		o.SubtractFee = true
	}
}

func WaitConfirmations(n int64) TxOption {
	return func(o *TxOptions) {
		o.WaitConfirmations = n
	}
}

// WithListeners runs fn on the send's promise before any work starts,
// so handlers registered there see every event.
func WithListeners(fn func(p *tracked.Promise[string])) TxOption {
	return func(o *TxOptions) {
		o.listeners = append(o.listeners, fn)
	}
}

type handlerConfig struct {
	journal       txjournal.Journal
	fetchAttempts int
	pollInterval  time.Duration
	maxPolls      int
}

type Option func(*handlerConfig)

func newHandlerConfig(opts []Option) handlerConfig {
	cfg := handlerConfig{
		journal:       txjournal.Nop{},
		fetchAttempts: DEFAULT_FETCH_ATTEMPTS,
		pollInterval:  confirmations.POLL_INTERVAL,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func WithJournal(j txjournal.Journal) Option {
	return func(c *handlerConfig) {
		if j != nil {
			c.journal = j
		}
	}
}

func WithFetchAttempts(n int) Option {
	return func(c *handlerConfig) {
		c.fetchAttempts = n
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(c *handlerConfig) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithMaxPolls bounds confirmation polling of a send. 0 polls until the
// send settles or its context ends.
func WithMaxPolls(n int) Option {
	return func(c *handlerConfig) {
		c.maxPolls = n
	}
}
