// Package querylog stores the literal-free shapes of issued queries in
// PostgreSQL, together with their parameters, and reports which shapes are
// used the most.
package querylog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"

	"github.com/krew-solutions/evita-client-go/evita/query"
	"github.com/krew-solutions/evita-client-go/evita/session"
)

const DefaultTable = "evita_query_log"

type Entry struct {
	ID         ulid.ULID
	ClientID   uuid.UUID
	Collection string
	Shape      string
	Parameters []any
	RecordedAt time.Time
}

// ShapeStats aggregates the entries sharing a shape and a collection.
type ShapeStats struct {
	Shape      string
	Collection string
	Count      int64
	FirstSeen  time.Time
	LastSeen   time.Time
}

type Option func(*PgQueryLog)

func WithTable(table string) Option {
	return func(l *PgQueryLog) {
		l.table = table
	}
}

// WithClientID stamps entries with id instead of a random one.
func WithClientID(id uuid.UUID) Option {
	return func(l *PgQueryLog) {
		l.clientID = id
	}
}

func WithLogger(logger log.Logger) Option {
	return func(l *PgQueryLog) {
		l.logger = logger
	}
}

func WithCache(cache *ShapeCache) Option {
	return func(l *PgQueryLog) {
		l.cache = cache
	}
}

func WithClock(now func() time.Time) Option {
	return func(l *PgQueryLog) {
		l.now = now
	}
}

type PgQueryLog struct {
	table    string
	clientID uuid.UUID
	logger   log.Logger
	cache    *ShapeCache
	now      func() time.Time
}

func NewPgQueryLog(opts ...Option) *PgQueryLog {
	l := &PgQueryLog{
		table:    DefaultTable,
		clientID: uuid.New(),
		logger:   log.NewNopLogger(),
		now:      time.Now,
	}
	for i := range opts {
		opts[i](l)
	}
	if l.cache == nil {
		l.cache = NewShapeCache(DefaultCacheSize)
	}
	return l
}

func (l *PgQueryLog) ClientID() uuid.UUID {
	return l.clientID
}

// Setup creates the log table and its indexes if they do not exist.
func (l *PgQueryLog) Setup(ctx context.Context, pool session.SessionPool) error {
	return pool.Session(ctx, func(s session.Session) error {
		return s.Atomic(func(txSession session.Session) error {
			conn := txSession.(session.DbSession).Connection()
			for _, statement := range l.ddl() {
				if _, err := conn.Exec(statement); err != nil {
					return errors.Wrapf(err, "unable to set up %s", l.table)
				}
			}
			return nil
		})
	})
}

func (l *PgQueryLog) ddl() []string {
	return []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id char(26) PRIMARY KEY,
				client_id uuid NOT NULL,
				collection text NOT NULL DEFAULT '',
				shape text NOT NULL,
				parameters jsonb NOT NULL,
				recorded_at timestamptz NOT NULL
			)
		`, l.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_shape_idx ON %[1]s (shape, collection)`, l.table),
	}
}

// Record stores the parameterized rendering of q.
func (l *PgQueryLog) Record(s session.DbSession, q *query.Query) (Entry, error) {
	rendering := l.cache.Render(q)
	recordedAt := l.now().UTC()
	entry := Entry{
		ID:         ulid.MustNew(ulid.Timestamp(recordedAt), ulid.DefaultEntropy()),
		ClientID:   l.clientID,
		Shape:      rendering.Shape,
		Parameters: rendering.Parameters,
		RecordedAt: recordedAt,
	}
	if collection, ok := q.Collection(); ok {
		entry.Collection = collection.EntityType()
	}

	parameters, err := json.Marshal(entry.Parameters)
	if err != nil {
		return Entry{}, errors.Wrap(err, "unable to encode query parameters")
	}

	sql := fmt.Sprintf(`
		INSERT INTO %s (id, client_id, collection, shape, parameters, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, l.table)
	_, err = s.Connection().Exec(
		sql, entry.ID.String(), entry.ClientID.String(), entry.Collection, entry.Shape, parameters, entry.RecordedAt,
	)
	if err != nil {
		level.Error(l.logger).Log("msg", "unable to record query", "shape", entry.Shape, "err", err)
		return Entry{}, errors.Wrap(err, "unable to record query")
	}
	level.Debug(l.logger).Log("msg", "query recorded", "id", entry.ID, "collection", entry.Collection, "shape", entry.Shape)
	return entry, nil
}

// Shapes returns the most recorded shapes, most frequent first.
func (l *PgQueryLog) Shapes(s session.DbSession, limit int) ([]ShapeStats, error) {
	sql := fmt.Sprintf(`
		SELECT shape, collection, count(*), min(recorded_at), max(recorded_at)
		FROM %s
		GROUP BY shape, collection
		ORDER BY count(*) DESC, shape, collection
		LIMIT $1
	`, l.table)
	rows, err := s.Connection().Query(sql, limit)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read query shapes")
	}
	defer rows.Close()

	var stats []ShapeStats
	for rows.Next() {
		var st ShapeStats
		if err := rows.Scan(&st.Shape, &st.Collection, &st.Count, &st.FirstSeen, &st.LastSeen); err != nil {
			return nil, errors.Wrap(err, "unable to scan query shape")
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "unable to read query shapes")
	}
	return stats, nil
}

// Entries returns the entries recorded for shape, newest first.
func (l *PgQueryLog) Entries(s session.DbSession, shape string, limit int) ([]Entry, error) {
	sql := fmt.Sprintf(`
		SELECT id, client_id::text, collection, parameters, recorded_at
		FROM %s
		WHERE shape = $1
		ORDER BY id DESC
		LIMIT $2
	`, l.table)
	rows, err := s.Connection().Query(sql, shape, limit)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read query log")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var id, clientID string
		var parameters []byte
		entry := Entry{Shape: shape}
		if err := rows.Scan(&id, &clientID, &entry.Collection, &parameters, &entry.RecordedAt); err != nil {
			return nil, errors.Wrap(err, "unable to scan query log entry")
		}
		if entry.ID, err = ulid.ParseStrict(id); err != nil {
			return nil, errors.Wrapf(err, "invalid entry id %q", id)
		}
		if entry.ClientID, err = uuid.Parse(clientID); err != nil {
			return nil, errors.Wrapf(err, "invalid client id %q", clientID)
		}
		if err := json.Unmarshal(parameters, &entry.Parameters); err != nil {
			return nil, errors.Wrap(err, "unable to decode query parameters")
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "unable to read query log")
	}
	return entries, nil
}
