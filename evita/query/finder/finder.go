// Package finder locates constraints in a query tree without crossing into
// subtrees that open a separate query scope.
package finder

import (
	"errors"
	"fmt"

	"github.com/krew-solutions/evita-client-go/evita/option"
	"github.com/krew-solutions/evita-client-go/evita/query/constraint"
)

var ErrMoreThanOneResult = errors.New("finder: more than one constraint matches")

type Predicate func(constraint.Constraint) bool

// StopAtSeparateScope keeps a search inside the scope of its root.
func StopAtSeparateScope(c constraint.Constraint) bool {
	return c.Scope() == constraint.SeparateScope
}

// StopAtShape prunes every container of the given shape.
func StopAtShape(shape constraint.Shape) Predicate {
	return func(c constraint.Constraint) bool {
		return shape.Overlaps(c.Shape())
	}
}

// NewFinderVisitor collects the nodes accepted by match. A nil match collects
// nothing and a nil stop never prunes.
func NewFinderVisitor(match, stop Predicate) *FinderVisitor {
	return &FinderVisitor{
		match: match,
		stop:  stop,
	}
}

// FinderVisitor performs a pre-order search. It is single-use: the first
// visited node is the search root and is always expanded.
type FinderVisitor struct {
	match   Predicate
	stop    Predicate
	root    constraint.Constraint
	results []constraint.Constraint
}

func (v *FinderVisitor) Visit(c constraint.Constraint) error {
	isRoot := v.root == nil
	if isRoot {
		v.root = c
	}
	if v.match != nil && v.match(c) {
		v.results = append(v.results, c)
	}
	container, ok := c.(constraint.Container)
	if !ok {
		return nil
	}
	if !isRoot && v.stop != nil && v.stop(c) {
		return nil
	}
	for _, child := range container.Children() {
		if err := child.Accept(v); err != nil {
			return err
		}
	}
	for _, child := range container.AdditionalChildren() {
		if err := child.Accept(v); err != nil {
			return err
		}
	}
	return nil
}

func (v *FinderVisitor) Results() []constraint.Constraint {
	return v.results
}

// Result returns the single match. No match is Nothing, several matches is
// ErrMoreThanOneResult.
func (v *FinderVisitor) Result() (option.Option[constraint.Constraint], error) {
	switch len(v.results) {
	case 0:
		return option.Nothing[constraint.Constraint](), nil
	case 1:
		return option.Some(v.results[0]), nil
	default:
		return option.Nothing[constraint.Constraint](), fmt.Errorf(
			"%w: found %d constraints, first is %s", ErrMoreThanOneResult, len(v.results), v.results[0].Name(),
		)
	}
}

func typed[T constraint.Constraint](predicate func(T) bool) Predicate {
	return func(c constraint.Constraint) bool {
		t, ok := c.(T)
		if !ok {
			return false
		}
		return predicate == nil || predicate(t)
	}
}

func find(root constraint.Constraint, match, stop Predicate) *FinderVisitor {
	v := NewFinderVisitor(match, stop)
	if constraint.IsAbsent(root) {
		return v
	}
	// The visitor itself never fails.
	_ = root.Accept(v)
	return v
}

// FindConstraints returns every node of type T accepted by predicate, in
// pre-order. A nil predicate accepts every node of type T; a nil stop never prunes.
func FindConstraints[T constraint.Constraint](root constraint.Constraint, predicate func(T) bool, stop Predicate) []T {
	results := find(root, typed(predicate), stop).Results()
	found := make([]T, 0, len(results))
	for _, c := range results {
		found = append(found, c.(T))
	}
	return found
}

// FindConstraint is FindConstraints for callers expecting at most one match.
func FindConstraint[T constraint.Constraint](root constraint.Constraint, predicate func(T) bool, stop Predicate) (option.Option[T], error) {
	result, err := find(root, typed(predicate), stop).Result()
	if err != nil {
		return option.Nothing[T](), err
	}
	return option.Map(result, func(c constraint.Constraint) T {
		return c.(T)
	}), nil
}
