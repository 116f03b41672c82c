package alarms

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Handler receives the name of an alarm when it fires.
type Handler func(ctx context.Context, name string)

// TimerSink implements Sink on top of process-local timers. Each alarm is
// a named timer that re-arms itself with its period after every fire.
type TimerSink struct {
	mu      sync.Mutex
	timers  map[string]*time.Timer
	handler Handler
	closed  bool
}

// NewTimerSink builds a TimerSink that invokes handler on each fire.
func NewTimerSink(handler Handler) *TimerSink {
	return &TimerSink{
		timers:  make(map[string]*time.Timer),
		handler: handler,
	}
}

// Create registers a repeating alarm, replacing any alarm with the same
// name. A firstFire in the past fires immediately.
func (s *TimerSink) Create(name string, firstFire time.Time, period time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if existing, ok := s.timers[name]; ok {
		existing.Stop()
	}

	delay := time.Until(firstFire)
	if delay < 0 {
		delay = 0
	}
	s.timers[name] = time.AfterFunc(delay, func() {
		s.fire(name, period)
	})
}

func (s *TimerSink) fire(name string, period time.Duration) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	// Re-arm before dispatching so a slow handler cannot delay the next
	// occurrence. The rescheduled timer replaces this fired one.
	if _, ok := s.timers[name]; ok {
		s.timers[name] = time.AfterFunc(period, func() {
			s.fire(name, period)
		})
	}
	handler := s.handler
	s.mu.Unlock()

	if handler != nil {
		handler(context.Background(), name)
	}
}

// ClearAll stops and removes every registered alarm.
func (s *TimerSink) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, timer := range s.timers {
		timer.Stop()
	}
	s.timers = make(map[string]*time.Timer)
}

// Pending returns the sorted names of currently registered alarms.
func (s *TimerSink) Pending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.timers))
	for name := range s.timers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close stops all alarms and rejects further Create calls.
func (s *TimerSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for _, timer := range s.timers {
		timer.Stop()
	}
	s.timers = make(map[string]*time.Timer)
}
