package pgx_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krew-solutions/evita-client-go/evita/session"
	sessionpgx "github.com/krew-solutions/evita-client-go/evita/session/pgx"
	"github.com/krew-solutions/evita-client-go/evita/utils/testutils"
)

func TestSessionPublishesStatements(t *testing.T) {
	pool := testutils.RequirePgSessionPool(t)

	var started []string
	var ended []session.QueryEndedEvent
	pool.OnQueryStarted().Attach(func(e session.QueryStartedEvent) { started = append(started, e.Query) }, "test")
	pool.OnQueryEnded().Attach(func(e session.QueryEndedEvent) { ended = append(ended, e) }, "test")

	err := pool.Session(context.Background(), func(s session.Session) error {
		var answer int
		if err := s.(session.DbSession).Connection().QueryRow("SELECT $1::int", 42).Scan(&answer); err != nil {
			return err
		}
		assert.Equal(t, 42, answer)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"SELECT $1::int"}, started)
	require.Len(t, ended, 1)
	assert.Equal(t, []any{42}, ended[0].Params)
	assert.NoError(t, ended[0].Err)
}

func TestSessionAtomicNesting(t *testing.T) {
	pool := testutils.RequirePgSessionPool(t)
	errRollback := errors.New("rollback")

	err := pool.Session(context.Background(), func(s session.Session) error {
		db := s.(*sessionpgx.Session)
		assert.Equal(t, 0, db.Depth())
		return s.Atomic(func(tx session.Session) error {
			txSession := tx.(*sessionpgx.Session)
			assert.Equal(t, 1, txSession.Depth())
			if _, err := txSession.Connection().Exec("CREATE TEMPORARY TABLE atomic_rows (id int) ON COMMIT DROP"); err != nil {
				return err
			}

			err := tx.Atomic(func(sp session.Session) error {
				assert.Equal(t, 2, sp.(*sessionpgx.Session).Depth())
				if _, err := sp.(session.DbSession).Connection().Exec("INSERT INTO atomic_rows VALUES (1)"); err != nil {
					return err
				}
				return errRollback
			})
			assert.ErrorIs(t, err, errRollback)

			var count int
			if err := txSession.Connection().QueryRow("SELECT count(*) FROM atomic_rows").Scan(&count); err != nil {
				return err
			}
			assert.Equal(t, 0, count)
			return nil
		})
	})
	require.NoError(t, err)
}

func TestSessionPoolRejectsCancelledContext(t *testing.T) {
	pool := testutils.RequirePgSessionPool(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := pool.Session(ctx, func(session.Session) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
