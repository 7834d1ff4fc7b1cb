// Package progress implements the observer plumbing that carries per-K
// progress of a sweep to the terminal UI, the structured log and the
// Prometheus gauges.
package progress

import (
	"slices"
	"sync"
)

// Update is a progress message for one sweep slot.
type Update struct {
	// Index is the position of the K value in the sweep.
	Index int
	// Value is the normalized progress of that slot (0.0 to 1.0).
	Value float64
	// Message, when non-empty, is a line to print above the progress bar.
	// Value is ignored for such updates.
	Message string
}

// Observer receives progress notifications.
type Observer interface {
	Update(index int, progress float64)
}

// Subject fans progress notifications out to its registered observers.
// It is safe for concurrent use.
type Subject struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewSubject returns a subject with no observers.
func NewSubject() *Subject {
	return &Subject{}
}

// Register adds an observer. Nil observers are ignored.
func (s *Subject) Register(o Observer) {
	if o == nil {
		return
	}
	s.mu.Lock()
	s.observers = append(s.observers, o)
	s.mu.Unlock()
}

// Unregister removes an observer previously registered.
func (s *Subject) Unregister(o Observer) {
	if o == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := slices.Index(s.observers, o); i >= 0 {
		s.observers = slices.Delete(s.observers, i, i+1)
	}
}

// Notify forwards an update to every observer.
func (s *Subject) Notify(index int, progress float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.observers {
		o.Update(index, progress)
	}
}

// ObserverCount returns the number of registered observers.
func (s *Subject) ObserverCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.observers)
}

// AsReporter returns a callback bound to index, suitable wherever a plain
// func(progress float64) reporter is expected.
func (s *Subject) AsReporter(index int) func(float64) {
	return func(progress float64) {
		s.Notify(index, progress)
	}
}

// Scaled maps a [0, 1] reporter onto the [from, to] band of report, so that
// the phases of one task can share a single progress value.
func Scaled(report func(float64), from, to float64) func(float64) {
	return func(p float64) {
		if p >= 1 {
			report(to)
			return
		}
		report(from + (to-from)*p)
	}
}
