package querylog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/krew-solutions/evita-client-go/evita/query"
	"github.com/krew-solutions/evita-client-go/evita/query/printer"
	"github.com/krew-solutions/evita-client-go/evita/session"
	"github.com/krew-solutions/evita-client-go/evita/utils/testutils"
)

var recordedAt = time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC)

func productQuery(code string) *query.Query {
	return query.MustQuery(
		query.Collection("Product"),
		query.FilterBy(query.AttributeEquals("code", code)),
		query.Require(query.Page(1, 20)),
	)
}

func newTestLog(opts ...Option) *PgQueryLog {
	base := []Option{
		WithClientID(uuid.MustParse("6f1c1e9e-8a43-4d6c-9b0a-3b3c4f0f7a11")),
		WithClock(func() time.Time { return recordedAt }),
	}
	return NewPgQueryLog(append(base, opts...)...)
}

func TestPgQueryLog_Setup(t *testing.T) {
	stub := testutils.NewDbSessionStub()
	l := newTestLog(WithTable("shapes"))

	require.NoError(t, l.Setup(context.Background(), stub))

	require.Len(t, stub.Statements, 2)
	assert.Contains(t, stub.Statements[0].Query, "CREATE TABLE IF NOT EXISTS shapes")
	assert.Contains(t, stub.Statements[1].Query, "CREATE INDEX IF NOT EXISTS shapes_shape_idx ON shapes")
}

func TestPgQueryLog_Record(t *testing.T) {
	stub := testutils.NewDbSessionStub()
	l := newTestLog()

	entry, err := l.Record(stub, productQuery("x"))
	require.NoError(t, err)

	assert.Equal(t, "query(collection(?),filterBy(attributeEquals(?,?)),require(page(?,?)))", entry.Shape)
	assert.Equal(t, []any{"Product", "code", "x", 1, 20}, entry.Parameters)
	assert.Equal(t, "Product", entry.Collection)
	assert.Equal(t, recordedAt, entry.RecordedAt)
	assert.Equal(t, ulid.Timestamp(recordedAt), entry.ID.Time())
	assert.Equal(t, l.ClientID(), entry.ClientID)

	statement := stub.LastStatement()
	assert.Contains(t, statement.Query, "INSERT INTO evita_query_log")
	require.Len(t, statement.Params, 6)
	assert.Equal(t, entry.ID.String(), statement.Params[0])
	assert.Equal(t, "6f1c1e9e-8a43-4d6c-9b0a-3b3c4f0f7a11", statement.Params[1])
	assert.Equal(t, "Product", statement.Params[2])
	assert.Equal(t, entry.Shape, statement.Params[3])
	assert.JSONEq(t, `["Product","code","x",1,20]`, string(statement.Params[4].([]byte)))
	assert.Equal(t, recordedAt, statement.Params[5])
}

func TestPgQueryLog_RecordSharesShapeAcrossLiterals(t *testing.T) {
	stub := testutils.NewDbSessionStub()
	l := newTestLog()

	first, err := l.Record(stub, productQuery("x"))
	require.NoError(t, err)
	second, err := l.Record(stub, productQuery("y"))
	require.NoError(t, err)

	assert.Equal(t, first.Shape, second.Shape)
	assert.NotEqual(t, first.Parameters, second.Parameters)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestPgQueryLog_StoredParametersRebuildQuery(t *testing.T) {
	q := query.MustQuery(
		query.Collection("Product"),
		query.FilterBy(query.And(
			query.PriceBetween(decimal.RequireFromString("1.2"), decimal.NewFromInt(1000)),
			query.AttributeBetween("width", nil, 10),
			query.EntityLocaleEquals(language.English),
		)),
		query.OrderBy(query.AttributeNatural("name", query.Desc)),
		query.Require(query.EntityFetch(query.PriceContent(query.PriceModeNone))),
	)
	stub := testutils.NewDbSessionStub()
	entry, err := newTestLog().Record(stub, q)
	require.NoError(t, err)

	stored := stub.LastStatement().Params[4].([]byte)
	assert.JSONEq(t, `["Product","1.2","1000","width","null",10,"en","name","DESC","NONE"]`, string(stored))

	var params []any
	require.NoError(t, json.Unmarshal(stored, &params))
	rebuilt := entry.Shape
	for _, param := range params {
		rebuilt = strings.Replace(rebuilt, printer.Placeholder, printer.FormatLiteral(param), 1)
	}
	assert.Equal(t, q.String(), rebuilt)
}

func TestPgQueryLog_RecordFailure(t *testing.T) {
	var buf bytes.Buffer
	stub := testutils.NewDbSessionStub()
	stub.ExecErr = errors.New("connection reset")
	l := newTestLog(WithLogger(log.NewLogfmtLogger(&buf)))

	_, err := l.Record(stub, productQuery("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, stub.ExecErr)
	assert.Contains(t, err.Error(), "unable to record query")
	assert.Contains(t, buf.String(), `level=error msg="unable to record query"`)
}

func TestPgQueryLog_Shapes(t *testing.T) {
	first, last := recordedAt.Add(-time.Hour), recordedAt
	stub := testutils.NewDbSessionStub(testutils.NewRowsStub(
		[]any{"query(collection(?))", "Product", int64(3), first, last},
		[]any{"query(collection(?))", "Brand", int64(1), last, last},
	))
	l := newTestLog()

	stats, err := l.Shapes(stub, 10)
	require.NoError(t, err)

	assert.Equal(t, []ShapeStats{
		{Shape: "query(collection(?))", Collection: "Product", Count: 3, FirstSeen: first, LastSeen: last},
		{Shape: "query(collection(?))", Collection: "Brand", Count: 1, FirstSeen: last, LastSeen: last},
	}, stats)
	assert.Equal(t, []any{10}, stub.LastStatement().Params)
}

func TestPgQueryLog_Entries(t *testing.T) {
	id := ulid.MustNew(ulid.Timestamp(recordedAt), ulid.DefaultEntropy())
	clientID := uuid.New()
	stub := testutils.NewDbSessionStub(testutils.NewRowsStub(
		[]any{id.String(), clientID.String(), "Product", []byte(`["Product","code","x",1,20]`), recordedAt},
	))
	l := newTestLog()

	entries, err := l.Entries(stub, "query(collection(?))", 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, id, entries[0].ID)
	assert.Equal(t, clientID, entries[0].ClientID)
	assert.Equal(t, "query(collection(?))", entries[0].Shape)
	assert.Equal(t, []any{"Product", "code", "x", float64(1), float64(20)}, entries[0].Parameters)
}

func TestPgQueryLog_EntriesRejectsBadID(t *testing.T) {
	stub := testutils.NewDbSessionStub(testutils.NewRowsStub(
		[]any{"not-an-ulid", uuid.NewString(), "", []byte(`[]`), recordedAt},
	))
	_, err := newTestLog().Entries(stub, "query()", 5)
	assert.ErrorContains(t, err, "invalid entry id")
}

func TestLogQueries(t *testing.T) {
	var buf bytes.Buffer
	logger := level.NewFilter(log.NewLogfmtLogger(&buf), level.AllowDebug())
	stub := testutils.NewDbSessionStub()

	subscription := LogQueries(logger, stub)
	_, err := stub.Connection().Exec("SELECT 1")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `msg=statement query="SELECT 1" params=0`)

	stub.ExecErr = errors.New("boom")
	_, _ = stub.Connection().Exec("SELECT 2")
	assert.Contains(t, buf.String(), `level=error msg="statement failed" query="SELECT 2"`)

	subscription.Dispose()
	buf.Reset()
	_, _ = stub.Connection().Exec("SELECT 3")
	assert.Empty(t, buf.String())
}

func TestShapeCache(t *testing.T) {
	t.Run("hit", func(t *testing.T) {
		c := NewShapeCache(2)
		q := productQuery("x")
		first := c.Render(q)
		cached, ok := c.Get(q)
		require.True(t, ok)
		assert.Equal(t, first, cached)

		cached.Parameters[0] = "mutated"
		again, _ := c.Get(q)
		assert.Equal(t, "Product", again.Parameters[0])
	})

	t.Run("shape is the single line parameterized form", func(t *testing.T) {
		q := query.MustQuery(
			query.Collection("Product"),
			query.FilterBy(query.And(query.AttributeIsNull("a"), query.AttributeIsNull("b"))),
		)
		rendering := NewShapeCache(2).Render(q)
		shape, params := q.Parameterized()
		assert.Equal(t, shape, rendering.Shape)
		assert.Equal(t, params, rendering.Parameters)
		assert.NotContains(t, rendering.Shape, "\n")
	})

	t.Run("least recently used is evicted", func(t *testing.T) {
		c := NewShapeCache(2)
		a, b, d := productQuery("a"), productQuery("b"), productQuery("d")
		c.Render(a)
		c.Render(b)
		c.Get(a)
		c.Render(d)

		assert.Equal(t, 2, c.Len())
		_, ok := c.Get(b)
		assert.False(t, ok)
		_, ok = c.Get(a)
		assert.True(t, ok)
	})

	t.Run("disabled", func(t *testing.T) {
		c := NewShapeCache(0)
		rendering := c.Render(productQuery("x"))
		assert.NotEmpty(t, rendering.Shape)
		assert.Equal(t, 0, c.Len())
	})

	t.Run("clear", func(t *testing.T) {
		c := NewShapeCache(4)
		c.Render(productQuery("x"))
		c.Clear()
		assert.Equal(t, 0, c.Len())
	})

	t.Run("concurrent use", func(t *testing.T) {
		c := NewShapeCache(8)
		queries := make([]*query.Query, 16)
		for i := range queries {
			queries[i] = productQuery(fmt.Sprint(i))
		}
		var wg sync.WaitGroup
		for _, q := range queries {
			wg.Add(1)
			go func(q *query.Query) {
				defer wg.Done()
				c.Render(q)
			}(q)
		}
		wg.Wait()
		assert.Equal(t, 8, c.Len())
	})
}

func TestPgQueryLog_Integration(t *testing.T) {
	pool := testutils.RequirePgSessionPool(t)
	table := "evita_query_log_" + ulid.Make().String()
	l := newTestLog(WithTable(table))
	ctx := context.Background()

	require.NoError(t, l.Setup(ctx, pool))
	t.Cleanup(func() {
		_ = pool.Session(ctx, func(s session.Session) error {
			_, err := s.(session.DbSession).Connection().Exec("DROP TABLE " + table)
			return err
		})
	})

	err := pool.Session(ctx, func(s session.Session) error {
		db := s.(session.DbSession)
		for _, code := range []string{"x", "y", "z"} {
			if _, err := l.Record(db, productQuery(code)); err != nil {
				return err
			}
		}
		if _, err := l.Record(db, query.MustQuery(query.Collection("Brand"))); err != nil {
			return err
		}

		stats, err := l.Shapes(db, 10)
		if err != nil {
			return err
		}
		require.Len(t, stats, 2)
		assert.Equal(t, int64(3), stats[0].Count)
		assert.Equal(t, "Product", stats[0].Collection)

		entries, err := l.Entries(db, stats[0].Shape, 10)
		if err != nil {
			return err
		}
		require.Len(t, entries, 3)
		var params []any
		raw, _ := json.Marshal(entries[0].Parameters)
		require.NoError(t, json.Unmarshal(raw, &params))
		assert.Len(t, params, 5)
		return nil
	})
	require.NoError(t, err)
}
