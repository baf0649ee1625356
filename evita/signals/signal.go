// Package signals is a synchronous observer registry used to publish session
// events to loggers and recorders.
package signals

import (
	"reflect"
	"sync"

	"github.com/krew-solutions/evita-client-go/evita/disposable"
)

type Observer[E any] func(E)

type Signal[E any] interface {
	// Attach registers observer under observerID, or under the function
	// identity when no ID is given. Attaching a known ID again is a no-op.
	Attach(observer Observer[E], observerID ...any) disposable.Disposable
	Detach(observer Observer[E], observerID ...any)
	Notify(event E)
}

type registration[E any] struct {
	id       any
	observer Observer[E]
}

// SignalImp is safe for concurrent use. Observers run on the notifying
// goroutine in attachment order.
type SignalImp[E any] struct {
	mu            sync.RWMutex
	registrations []registration[E]
}

func NewSignal[E any]() *SignalImp[E] {
	return &SignalImp[E]{}
}

func (s *SignalImp[E]) Attach(observer Observer[E], observerID ...any) disposable.Disposable {
	id := identify(observer, observerID)
	s.mu.Lock()
	if s.indexOf(id) < 0 {
		s.registrations = append(s.registrations, registration[E]{id: id, observer: observer})
	}
	s.mu.Unlock()
	return disposable.NewDisposable(func() {
		s.Detach(observer, id)
	})
}

func (s *SignalImp[E]) Detach(observer Observer[E], observerID ...any) {
	id := identify(observer, observerID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		s.registrations = append(s.registrations[:i:i], s.registrations[i+1:]...)
	}
}

func (s *SignalImp[E]) Notify(event E) {
	s.mu.RLock()
	registrations := s.registrations
	s.mu.RUnlock()
	for _, r := range registrations {
		r.observer(event)
	}
}

// Len returns the number of attached observers.
func (s *SignalImp[E]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registrations)
}

func (s *SignalImp[E]) indexOf(id any) int {
	for i, r := range s.registrations {
		if r.id == id {
			return i
		}
	}
	return -1
}

func identify[E any](observer Observer[E], observerID []any) any {
	if len(observerID) > 0 {
		return observerID[0]
	}
	return reflect.ValueOf(observer).Pointer()
}
