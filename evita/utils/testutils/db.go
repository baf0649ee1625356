package testutils

import (
	"context"
	"os"
	"testing"
	"time"

	sessionpgx "github.com/krew-solutions/evita-client-go/evita/session/pgx"
)

// PgConnString builds a connection string from DB_* variables, with the
// defaults of the development database.
func PgConnString() string {
	return "postgres://" + getEnv("DB_USERNAME", "devel") + ":" + getEnv("DB_PASSWORD", "devel") +
		"@" + getEnv("DB_HOST", "localhost") + ":" + getEnv("DB_PORT", "5432") +
		"/" + getEnv("DB_DATABASE", "devel_evita")
}

func NewPgSessionPool(ctx context.Context) (*sessionpgx.SessionPool, error) {
	return sessionpgx.Open(ctx, PgConnString())
}

// RequirePgSessionPool skips the test when no database answers within a second.
func RequirePgSessionPool(t *testing.T) *sessionpgx.SessionPool {
	t.Helper()
	if testing.Short() {
		t.Skip("database tests are skipped in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	pool, err := NewPgSessionPool(ctx)
	if err != nil {
		t.Skipf("database is not configured: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("database is not reachable: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
