// Package session abstracts the database sessions the query log is written
// through. Implementations publish every statement as a pair of events.
package session

import (
	"context"

	"github.com/krew-solutions/evita-client-go/evita/signals"
)

type SessionCallback func(Session) error

type Session interface {
	Context() context.Context
	// Atomic runs callback in a transaction, or in a savepoint when the
	// session is already transactional.
	Atomic(SessionCallback) error
}

type SessionPool interface {
	Session(context.Context, SessionCallback) error
}

type Result interface {
	RowsAffected() (int64, error)
}

type Rows interface {
	Close() error
	Err() error
	Next() bool
	Scan(dest ...any) error
}

type Row interface {
	Scan(dest ...any) error
}

type DbConnection interface {
	Exec(query string, args ...any) (Result, error)
	Query(query string, args ...any) (Rows, error)
	QueryRow(query string, args ...any) Row
}

type DbSession interface {
	Session
	Connection() DbConnection
}

// Observable is implemented by sessions and pools that publish statement events.
type Observable interface {
	OnQueryStarted() signals.Signal[QueryStartedEvent]
	OnQueryEnded() signals.Signal[QueryEndedEvent]
}
