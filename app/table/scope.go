package table

import (
	"sync"

	"observatory/app/interfaces"
)

// listenerScope owns the event subscriptions of one interaction session.
// Release cancels every subscription exactly once. Subscribing through a
// released scope is a no-op.
type listenerScope struct {
	mu       sync.Mutex
	bus      interfaces.EventBus
	cancels  []func()
	released bool
}

func newListenerScope(bus interfaces.EventBus) *listenerScope {
	return &listenerScope{bus: bus}
}

func (s *listenerScope) On(name string, cb func(data ...any)) {
	if s == nil || s.bus == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return
	}
	s.cancels = append(s.cancels, s.bus.On(name, cb))
}

func (s *listenerScope) Release() {
	if s == nil {
		return
	}
	s.mu.Lock()
	cancels := s.cancels
	s.cancels = nil
	s.released = true
	s.mu.Unlock()

	for _, cancel := range cancels {
		if cancel != nil {
			cancel()
		}
	}
}

func (s *listenerScope) Len() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cancels)
}
