package session

import (
	"time"

	"github.com/krew-solutions/evita-client-go/evita/signals"
)

type QueryStartedEvent struct {
	Query   string
	Params  []any
	Session DbSession
}

type QueryEndedEvent struct {
	Query        string
	Params       []any
	Session      DbSession
	ResponseTime time.Duration
	Err          error
}

// Events holds the signals of one pool; every session of the pool shares them.
type Events struct {
	onQueryStarted *signals.SignalImp[QueryStartedEvent]
	onQueryEnded   *signals.SignalImp[QueryEndedEvent]
}

func NewEvents() *Events {
	return &Events{
		onQueryStarted: signals.NewSignal[QueryStartedEvent](),
		onQueryEnded:   signals.NewSignal[QueryEndedEvent](),
	}
}

func (e *Events) OnQueryStarted() signals.Signal[QueryStartedEvent] {
	return e.onQueryStarted
}

func (e *Events) OnQueryEnded() signals.Signal[QueryEndedEvent] {
	return e.onQueryEnded
}

// Observe publishes the start of a statement and returns the function that
// publishes its end.
func (e *Events) Observe(s DbSession, query string, params []any) func(error) {
	e.onQueryStarted.Notify(QueryStartedEvent{Query: query, Params: params, Session: s})
	started := time.Now()
	return func(err error) {
		e.onQueryEnded.Notify(QueryEndedEvent{
			Query:        query,
			Params:       params,
			Session:      s,
			ResponseTime: time.Since(started),
			Err:          err,
		})
	}
}
