// Package tracked implements a single-assignment asynchronous result that
// also publishes named progress events while it is still pending.
//
// A Promise starts Pending and settles exactly once, either Fulfilled
// with a value or Rejected with an error. Events emitted after settlement
// are dropped. Handlers registered on one promise run one at a time, in
// emission order, and for one event in registration order.
package tracked

import (
	"context"
	"sync"
)

type State int

const (
	Pending State = iota
	Fulfilled
	Rejected
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Fulfilled:
		return "fulfilled"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

const (
	EVENT_TRANSACTION_HASH = "transactionHash"
	EVENT_CONFIRMATION     = "confirmation"
)

// Event is a named milestone with an untyped payload.
// transactionHash carries a string, confirmation an int64.
type Event struct {
	Name    string
	Payload any
}

type Handler func(payload any)

type Promise[T any] struct {
	mu    sync.Mutex
	state State
	value T
	err   error
	done  chan struct{}

	handlers    map[string][]Handler
	onFulfilled []func(T)
	onRejected  []func(error)
	subs        []*subscription

	// dispatch queue, drained by whichever goroutine finds it idle
	queue       []func()
	dispatching bool
}

func New[T any]() *Promise[T] {
	return &Promise[T]{
		done:     make(chan struct{}),
		handlers: make(map[string][]Handler),
	}
}

// Resolved returns an already fulfilled promise.
func Resolved[T any](v T) *Promise[T] {
	p := New[T]()
	p.Resolve(v)
	return p
}

// RejectedWith returns an already rejected promise.
func RejectedWith[T any](err error) *Promise[T] {
	p := New[T]()
	p.Reject(err)
	return p
}

func (p *Promise[T]) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Done is closed once the promise settles.
func (p *Promise[T]) Done() <-chan struct{} {
	return p.done
}

// On registers handler for the named event. Handlers only observe
// events emitted after registration.
func (p *Promise[T]) On(name string, handler Handler) *Promise[T] {
	p.mu.Lock()
	p.handlers[name] = append(p.handlers[name], handler)
	p.mu.Unlock()
	return p
}

func (p *Promise[T]) OnTransactionHash(handler func(txHash string)) *Promise[T] {
	return p.On(EVENT_TRANSACTION_HASH, func(payload any) {
		if h, ok := payload.(string); ok {
			handler(h)
		}
	})
}

func (p *Promise[T]) OnConfirmation(handler func(confirmations int64)) *Promise[T] {
	return p.On(EVENT_CONFIRMATION, func(payload any) {
		if n, ok := payload.(int64); ok {
			handler(n)
		}
	})
}

// Emit publishes an event. It reports false when the promise has already
// settled, in which case nothing is delivered.
func (p *Promise[T]) Emit(name string, payload any) bool {
	p.mu.Lock()
	if p.state != Pending {
		p.mu.Unlock()
		return false
	}
	hs := append([]Handler(nil), p.handlers[name]...)
	ev := Event{Name: name, Payload: payload}
	for _, s := range p.subs {
		s.push(ev)
	}
	start := p.enqueueLocked(func() {
		for _, h := range hs {
			h(payload)
		}
	})
	p.mu.Unlock()

	if start {
		p.dispatch()
	}
	return true
}

func (p *Promise[T]) EmitTransactionHash(txHash string) bool {
	return p.Emit(EVENT_TRANSACTION_HASH, txHash)
}

func (p *Promise[T]) EmitConfirmation(confirmations int64) bool {
	return p.Emit(EVENT_CONFIRMATION, confirmations)
}

// Resolve fulfills the promise. Only the first settlement counts.
func (p *Promise[T]) Resolve(v T) bool {
	return p.settle(Fulfilled, v, nil)
}

// Reject fails the promise. Only the first settlement counts.
func (p *Promise[T]) Reject(err error) bool {
	var zero T
	return p.settle(Rejected, zero, err)
}

func (p *Promise[T]) settle(state State, v T, err error) bool {
	p.mu.Lock()
	if p.state != Pending {
		p.mu.Unlock()
		return false
	}
	p.state = state
	p.value = v
	p.err = err
	close(p.done)

	for _, s := range p.subs {
		s.close()
	}
	p.subs = nil

	var job func()
	if state == Fulfilled {
		cbs := p.onFulfilled
		job = func() {
			for _, cb := range cbs {
				cb(v)
			}
		}
	} else {
		cbs := p.onRejected
		job = func() {
			for _, cb := range cbs {
				cb(err)
			}
		}
	}
	p.onFulfilled = nil
	p.onRejected = nil
	p.handlers = make(map[string][]Handler)
	start := p.enqueueLocked(job)
	p.mu.Unlock()

	if start {
		p.dispatch()
	}
	return true
}

// Then registers a callback for fulfillment. If the promise is already
// fulfilled the callback is scheduled right away.
func (p *Promise[T]) Then(cb func(T)) *Promise[T] {
	p.mu.Lock()
	switch p.state {
	case Pending:
		p.onFulfilled = append(p.onFulfilled, cb)
		p.mu.Unlock()
	case Fulfilled:
		v := p.value
		start := p.enqueueLocked(func() { cb(v) })
		p.mu.Unlock()
		if start {
			p.dispatch()
		}
	default:
		p.mu.Unlock()
	}
	return p
}

// Catch registers a callback for rejection. It observes the error
// without recovering from it: Await still returns the error.
func (p *Promise[T]) Catch(cb func(error)) *Promise[T] {
	p.mu.Lock()
	switch p.state {
	case Pending:
		p.onRejected = append(p.onRejected, cb)
		p.mu.Unlock()
	case Rejected:
		err := p.err
		start := p.enqueueLocked(func() { cb(err) })
		p.mu.Unlock()
		if start {
			p.dispatch()
		}
	default:
		p.mu.Unlock()
	}
	return p
}

// Await blocks until the promise settles or ctx is done.
func (p *Promise[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.value, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result returns the settled value without blocking. ok is false while
// the promise is pending.
func (p *Promise[T]) Result() (value T, ok bool, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Pending {
		return value, false, nil
	}
	return p.value, true, p.err
}

// Subscribe returns a channel receiving every event emitted from now on.
// The channel is closed after the promise settles and the queued events
// are drained. On a settled promise the channel is closed immediately.
func (p *Promise[T]) Subscribe(buffer int) <-chan Event {
	s := newSubscription(buffer)
	p.mu.Lock()
	if p.state != Pending {
		s.close()
	} else {
		p.subs = append(p.subs, s)
	}
	p.mu.Unlock()
	go s.pump()
	return s.out
}

// enqueueLocked must be called with mu held. It reports whether the
// caller has to start dispatching.
func (p *Promise[T]) enqueueLocked(job func()) bool {
	p.queue = append(p.queue, job)
	if p.dispatching {
		return false
	}
	p.dispatching = true
	return true
}

func (p *Promise[T]) dispatch() {
	for {
		p.mu.Lock()
		if len(p.queue) == 0 {
			p.dispatching = false
			p.mu.Unlock()
			return
		}
		job := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()
		job()
	}
}
