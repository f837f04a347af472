package tracked

import "sync"

// subscription buffers events for one channel consumer so that emitters
// never block on a slow reader.
type subscription struct {
	mu     sync.Mutex
	queue  []Event
	closed bool
	signal chan struct{}
	out    chan Event
}

func newSubscription(buffer int) *subscription {
	if buffer < 0 {
		buffer = 0
	}
	return &subscription{
		signal: make(chan struct{}, 1),
		out:    make(chan Event, buffer),
	}
}

func (s *subscription) push(ev Event) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, ev)
	s.mu.Unlock()
	s.wake()
}

func (s *subscription) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.wake()
}

func (s *subscription) wake() {
	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *subscription) pump() {
	defer close(s.out)
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			ev := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()
			s.out <- ev
			continue
		}
		if s.closed {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
		<-s.signal
	}
}
