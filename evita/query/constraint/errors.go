package constraint

import (
	"errors"
	"fmt"
)

var (
	ErrConstraintArgument = errors.New("constraint: leaf argument must not be a constraint")
	ErrChildCategory      = errors.New("constraint: child category differs from container category")
	ErrAmbiguousChildren  = errors.New("constraint: ambiguous additional children")
	ErrOverlappingShape   = errors.New("constraint: shape overlaps the container shape")
)

// AmbiguousChildrenError names two additional children that cannot be told apart by shape.
type AmbiguousChildrenError struct {
	Container Shape
	First     Shape
	Second    Shape
}

func (e *AmbiguousChildrenError) Error() string {
	return fmt.Sprintf(
		"constraint: container %s has ambiguous additional children %s and %s",
		e.Container, e.First, e.Second,
	)
}

func (e *AmbiguousChildrenError) Unwrap() error {
	return ErrAmbiguousChildren
}

// Must panics if err is not nil. Factory helpers use it because a malformed
// tree is a programming error of the code that builds it.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
