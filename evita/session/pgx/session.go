package pgx

import (
	"context"

	"github.com/hashicorp/go-multierror"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"

	"github.com/krew-solutions/evita-client-go/evita/session"
	"github.com/krew-solutions/evita-client-go/evita/session/result"
	"github.com/krew-solutions/evita-client-go/evita/signals"
)

// conn is implemented by both *pgxpool.Conn and pgx.Tx.
type conn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Session wraps a pooled connection. Depth 0 is outside any transaction,
// depth 1 is a transaction and deeper levels are savepoints.
type Session struct {
	ctx    context.Context
	conn   conn
	depth  int
	events *session.Events
}

func NewSession(ctx context.Context, c conn, events *session.Events) *Session {
	return &Session{
		ctx:    ctx,
		conn:   c,
		events: events,
	}
}

func (s *Session) Context() context.Context {
	return s.ctx
}

func (s *Session) Depth() int {
	return s.depth
}

func (s *Session) Connection() session.DbConnection {
	return &connection{session: s}
}

func (s *Session) OnQueryStarted() signals.Signal[session.QueryStartedEvent] {
	return s.events.OnQueryStarted()
}

func (s *Session) OnQueryEnded() signals.Signal[session.QueryEndedEvent] {
	return s.events.OnQueryEnded()
}

func (s *Session) Atomic(callback session.SessionCallback) error {
	scope := "transaction"
	if s.depth > 0 {
		scope = "savepoint"
	}
	tx, err := s.conn.Begin(s.ctx)
	if err != nil {
		return errors.Wrapf(err, "unable to start %s", scope)
	}

	nested := &Session{
		ctx:    s.ctx,
		conn:   tx,
		depth:  s.depth + 1,
		events: s.events,
	}
	if err := callback(nested); err != nil {
		if txErr := tx.Rollback(s.ctx); txErr != nil {
			return multierror.Append(err, txErr)
		}
		return err
	}

	if err := tx.Commit(s.ctx); err != nil {
		return errors.Wrapf(err, "failed to commit %s", scope)
	}
	return nil
}

type connection struct {
	session *Session
}

func (c *connection) Exec(query string, args ...any) (session.Result, error) {
	done := c.session.events.Observe(c.session, query, args)
	tag, err := c.session.conn.Exec(c.session.ctx, query, args...)
	done(err)
	if err != nil {
		return nil, err
	}
	return result.NewResult(tag.RowsAffected()), nil
}

func (c *connection) Query(query string, args ...any) (session.Rows, error) {
	done := c.session.events.Observe(c.session, query, args)
	r, err := c.session.conn.Query(c.session.ctx, query, args...)
	done(err)
	if err != nil {
		return nil, err
	}
	return &rows{r}, nil
}

func (c *connection) QueryRow(query string, args ...any) session.Row {
	done := c.session.events.Observe(c.session, query, args)
	return &row{row: c.session.conn.QueryRow(c.session.ctx, query, args...), done: done}
}

// rows adapts pgx.Rows, whose Close reports nothing, to session.Rows.
type rows struct {
	pgx.Rows
}

func (r *rows) Close() error {
	r.Rows.Close()
	return r.Rows.Err()
}

// row publishes the end of the statement once it is scanned, since pgx
// defers QueryRow errors to Scan.
type row struct {
	row  pgx.Row
	done func(error)
}

func (r *row) Scan(dest ...any) error {
	err := r.row.Scan(dest...)
	r.done(err)
	return err
}
