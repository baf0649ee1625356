package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"

	"github.com/krew-solutions/evita-client-go/evita/session"
	"github.com/krew-solutions/evita-client-go/evita/session/result"
)

type Statement struct {
	Query  string
	Params []any
}

// DbSessionStub records statements and answers queries with scripted rows.
func NewDbSessionStub(rows ...*RowsStub) *DbSessionStub {
	return &DbSessionStub{
		Events:  session.NewEvents(),
		results: rows,
	}
}

type DbSessionStub struct {
	*session.Events
	Statements []Statement
	// ExecErr is returned by every Exec when set.
	ExecErr error
	results []*RowsStub
}

func (s *DbSessionStub) Context() context.Context {
	return context.Background()
}

func (s *DbSessionStub) Atomic(callback session.SessionCallback) error {
	return callback(s)
}

func (s *DbSessionStub) Connection() session.DbConnection {
	return &connectionStub{session: s}
}

// Session makes the stub usable as a pool handing out itself.
func (s *DbSessionStub) Session(ctx context.Context, callback session.SessionCallback) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return callback(s)
}

// Close lets the stub stand in for a pool.
func (s *DbSessionStub) Close() {}

func (s *DbSessionStub) LastStatement() Statement {
	if len(s.Statements) == 0 {
		return Statement{}
	}
	return s.Statements[len(s.Statements)-1]
}

func (s *DbSessionStub) record(query string, params []any) func(error) {
	s.Statements = append(s.Statements, Statement{Query: query, Params: params})
	return s.Observe(s, query, params)
}

func (s *DbSessionStub) nextRows() *RowsStub {
	if len(s.results) == 0 {
		return NewRowsStub()
	}
	rows := s.results[0]
	s.results = s.results[1:]
	return rows
}

type connectionStub struct {
	session *DbSessionStub
}

func (c *connectionStub) Exec(query string, args ...any) (session.Result, error) {
	done := c.session.record(query, args)
	done(c.session.ExecErr)
	if c.session.ExecErr != nil {
		return nil, c.session.ExecErr
	}
	return result.NewResult(1), nil
}

func (c *connectionStub) Query(query string, args ...any) (session.Rows, error) {
	c.session.record(query, args)(nil)
	return c.session.nextRows(), nil
}

func (c *connectionStub) QueryRow(query string, args ...any) session.Row {
	c.session.record(query, args)(nil)
	return &RowStub{rows: c.session.nextRows()}
}

func NewRowsStub(rows ...[]any) *RowsStub {
	return &RowsStub{rows: rows, idx: -1}
}

type RowsStub struct {
	rows   [][]any
	idx    int
	Closed bool
}

func (r *RowsStub) Close() error {
	r.Closed = true
	return nil
}

func (r *RowsStub) Err() error {
	return nil
}

func (r *RowsStub) Next() bool {
	r.idx++
	return r.idx < len(r.rows)
}

// Scan assigns or converts each value of the current row to its destination.
func (r *RowsStub) Scan(dest ...any) error {
	if r.idx < 0 || r.idx >= len(r.rows) {
		return sql.ErrNoRows
	}
	row := r.rows[r.idx]
	if len(row) != len(dest) {
		return fmt.Errorf("row has %d values, %d destinations given", len(row), len(dest))
	}
	for i, value := range row {
		if scanner, ok := dest[i].(sql.Scanner); ok {
			if err := scanner.Scan(value); err != nil {
				return err
			}
			continue
		}
		target := reflect.ValueOf(dest[i])
		if target.Kind() != reflect.Pointer || target.IsNil() {
			return fmt.Errorf("destination %d is not a pointer", i)
		}
		source := reflect.ValueOf(value)
		elem := target.Elem()
		switch {
		case !source.IsValid():
			elem.Set(reflect.Zero(elem.Type()))
		case source.Type().AssignableTo(elem.Type()):
			elem.Set(source)
		case source.Type().ConvertibleTo(elem.Type()):
			elem.Set(source.Convert(elem.Type()))
		default:
			return fmt.Errorf("cannot scan %T into %s", value, elem.Type())
		}
	}
	return nil
}

type RowStub struct {
	rows *RowsStub
}

func (r *RowStub) Scan(dest ...any) error {
	if !r.rows.Next() {
		return sql.ErrNoRows
	}
	return r.rows.Scan(dest...)
}
