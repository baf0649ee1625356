// Package query holds the constraint catalog and the Query aggregate that
// binds a collection, a filter, an ordering and requirements together.
package query

import (
	"errors"
	"fmt"

	"github.com/krew-solutions/evita-client-go/evita/query/constraint"
	"github.com/krew-solutions/evita-client-go/evita/query/printer"
)

var ErrDuplicatePart = errors.New("query: duplicate query part")

// Part is a top level section of a query.
type Part interface {
	constraint.Constraint
	queryPart()
}

// Query is immutable. The four parts are independent trees and are never
// validated against each other.
type Query struct {
	collection *CollectionNode
	filterBy   *FilterByNode
	orderBy    *OrderByNode
	require    *RequireNode
}

// NewQuery assembles a query from parts given in any order. Absent parts are skipped.
func NewQuery(parts ...Part) (*Query, error) {
	q := &Query{}
	for _, part := range parts {
		if constraint.IsAbsent(part) {
			continue
		}
		var duplicate bool
		switch p := part.(type) {
		case *CollectionNode:
			duplicate = q.collection != nil
			q.collection = p
		case *FilterByNode:
			duplicate = q.filterBy != nil
			q.filterBy = p
		case *OrderByNode:
			duplicate = q.orderBy != nil
			q.orderBy = p
		case *RequireNode:
			duplicate = q.require != nil
			q.require = p
		}
		if duplicate {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePart, part.Name())
		}
	}
	return q, nil
}

// MustQuery is NewQuery that panics on duplicate parts.
func MustQuery(parts ...Part) *Query {
	return constraint.Must(NewQuery(parts...))
}

func (q *Query) Collection() (*CollectionNode, bool) {
	return q.collection, q.collection != nil
}

func (q *Query) FilterBy() (*FilterByNode, bool) {
	return q.filterBy, q.filterBy != nil
}

func (q *Query) OrderBy() (*OrderByNode, bool) {
	return q.orderBy, q.orderBy != nil
}

func (q *Query) Require() (*RequireNode, bool) {
	return q.require, q.require != nil
}

// Parts returns the parts in rendering order; missing parts are nil.
func (q *Query) Parts() []constraint.Constraint {
	parts := make([]constraint.Constraint, 0, 4)
	if q.collection != nil {
		parts = append(parts, q.collection)
	}
	if q.filterBy != nil {
		parts = append(parts, q.filterBy)
	}
	if q.orderBy != nil {
		parts = append(parts, q.orderBy)
	}
	if q.require != nil {
		parts = append(parts, q.require)
	}
	return parts
}

// WithFilterBy returns a copy of q with the filter replaced.
func (q *Query) WithFilterBy(filterBy *FilterByNode) *Query {
	clone := *q
	clone.filterBy = filterBy
	return &clone
}

func (q *Query) WithOrderBy(orderBy *OrderByNode) *Query {
	clone := *q
	clone.orderBy = orderBy
	return &clone
}

func (q *Query) WithRequire(require *RequireNode) *Query {
	clone := *q
	clone.require = require
	return &clone
}

// Render renders the query text and, with printer.ExtractParameters, the
// positional parameters.
func (q *Query) Render(opts ...printer.Option) (text string, parameters []any) {
	return printer.RenderQuery(q, opts...)
}

// Parameterized renders the literal-free shape of the query for transport.
func (q *Query) Parameterized() (text string, parameters []any) {
	return q.Render(printer.ExtractParameters())
}

func (q *Query) String() string {
	text, _ := q.Render()
	return text
}

// PrettyString renders the query over several lines.
func (q *Query) PrettyString() string {
	text, _ := q.Render(printer.WithIndent("\t"))
	return text
}
