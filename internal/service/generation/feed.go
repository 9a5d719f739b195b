package generation

import (
	"sync"

	"terraai/internal/domain/services"
)

// sink serializes writes to one client's EventSink and drops them once
// the client is gone.
type sink struct {
	mu     sync.Mutex
	fn     services.EventSink
	closed bool
}

func (s *sink) send(ev services.GenerationEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendLocked(ev)
}

func (s *sink) sendLocked(ev services.GenerationEvent) {
	if s.closed || s.fn == nil {
		return
	}
	if err := s.fn(ev); err != nil {
		// client went away; keep generating, stop writing
		s.closed = true
	}
}

func (s *sink) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// feed fans the events of one generation turn out to every attached
// client. It ends when the turn has nothing more to report: after an
// error event, once the idle-save has run, or when the chat is reset.
type feed struct {
	mu    sync.Mutex
	sinks map[*sink]struct{}
	done  chan struct{}
	ended bool
}

func newFeed() *feed {
	return &feed{
		sinks: make(map[*sink]struct{}),
		done:  make(chan struct{}),
	}
}

// attach adds s. Attaching to an ended feed is a no-op.
func (f *feed) attach(s *sink) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ended {
		f.sinks[s] = struct{}{}
	}
}

// detach removes s and guarantees no write reaches it afterwards.
func (f *feed) detach(s *sink) {
	f.mu.Lock()
	delete(f.sinks, s)
	f.mu.Unlock()
	s.close()
}

func (f *feed) send(ev services.GenerationEvent) {
	f.mu.Lock()
	sinks := make([]*sink, 0, len(f.sinks))
	for s := range f.sinks {
		sinks = append(sinks, s)
	}
	f.mu.Unlock()

	for _, s := range sinks {
		s.send(ev)
	}
}

func (f *feed) end() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ended {
		return
	}
	f.ended = true
	f.sinks = make(map[*sink]struct{})
	close(f.done)
}
