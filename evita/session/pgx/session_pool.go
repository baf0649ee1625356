// Package pgx implements sessions over a jackc/pgx connection pool.
package pgx

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/krew-solutions/evita-client-go/evita/session"
)

type SessionPool struct {
	*session.Events
	pool *pgxpool.Pool
}

func NewSessionPool(pool *pgxpool.Pool) *SessionPool {
	return &SessionPool{
		Events: session.NewEvents(),
		pool:   pool,
	}
}

// Open connects a new pool to the database at connString.
func Open(ctx context.Context, connString string) (*SessionPool, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, errors.Wrap(err, "invalid connection string")
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create connection pool")
	}
	return NewSessionPool(pool), nil
}

func (p *SessionPool) Session(ctx context.Context, callback session.SessionCallback) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return errors.Wrap(err, "unable to acquire connection")
	}
	defer conn.Release()

	return callback(NewSession(ctx, conn, p.Events))
}

func (p *SessionPool) Close() {
	p.pool.Close()
}

func (p *SessionPool) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}
