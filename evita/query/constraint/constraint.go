package constraint

import (
	"fmt"
	"reflect"

	"github.com/hashicorp/go-multierror"

	"github.com/krew-solutions/evita-client-go/evita/option"
)

type Visitable interface {
	Accept(Visitor) error
}

// Visitor is called once per visited node. Container and leaf nodes are told
// apart by asserting the Container interface.
type Visitor interface {
	Visit(Constraint) error
}

type VisitorFunc func(Constraint) error

func (f VisitorFunc) Visit(c Constraint) error {
	return f(c)
}

type Constraint interface {
	Visitable
	Name() string
	Category() Category
	Shape() Shape
	Scope() Scope
	Arguments() []any
	IsApplicable() bool
}

type Container interface {
	Constraint
	Children() []Constraint
	AdditionalChildren() []Constraint
	ChildrenCount() int
	IsNecessary() bool
	AdditionalChild(Shape) (option.Option[Constraint], error)
	WithChildren(children, additionalChildren []Constraint) (Container, error)
}

// SuffixElider is implemented by constraints that encode one argument value
// in a suffix of their rendered name.
type SuffixElider interface {
	Suffix() (string, bool)
	IsArgImpliedInSuffix(arg any) bool
}

// IsAbsent reports whether v is nil or a nil pointer hidden in an interface.
func IsAbsent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Func:
		return rv.IsNil()
	}
	return false
}

type node struct {
	kind *Kind
	args []any
}

func (n node) Name() string {
	return n.kind.Name
}

func (n node) Category() Category {
	return n.kind.Category
}

func (n node) Shape() Shape {
	return n.kind.Shape()
}

func (n node) Scope() Scope {
	return n.kind.Scope
}

func (n node) Kind() *Kind {
	return n.kind
}

// Arguments returns a copy of the argument slots, absent ones included.
func (n node) Arguments() []any {
	args := make([]any, len(n.args))
	copy(args, n.args)
	return args
}

// LeafNode carries the state of a constraint without children.
// Concrete variants embed it and implement Accept.
type LeafNode struct {
	node
}

func NewLeaf(kind *Kind, args ...any) (LeafNode, error) {
	for i, arg := range args {
		if c, ok := arg.(Constraint); ok && !IsAbsent(c) {
			return LeafNode{}, fmt.Errorf(
				"%w: argument %d of %s is %s", ErrConstraintArgument, i, kind.Name, c.Name(),
			)
		}
	}
	return LeafNode{node{kind: kind, args: args}}, nil
}

func (n LeafNode) IsApplicable() bool {
	return n.kind.applicable(n.args, 0, false)
}

// ContainerNode carries the state of a constraint with children.
// Concrete variants embed it and implement Accept and WithChildren.
type ContainerNode struct {
	node
	children           []Constraint
	additionalChildren []Constraint
}

func NewContainer(kind *Kind, args []any, children, additionalChildren []Constraint) (ContainerNode, error) {
	var errs error
	kept := compact(children)
	for _, child := range kept {
		if child.Category() != kind.Category {
			errs = multierror.Append(errs, fmt.Errorf(
				"%w: %s cannot hold %s constraint %s",
				ErrChildCategory, kind.Name, child.Category(), child.Name(),
			))
		}
	}
	keptAdditional := compact(additionalChildren)
	if err := checkAmbiguity(kind.Shape(), keptAdditional); err != nil {
		errs = multierror.Append(errs, err)
	}
	if errs != nil {
		return ContainerNode{}, errs
	}
	return ContainerNode{
		node:               node{kind: kind, args: args},
		children:           kept,
		additionalChildren: keptAdditional,
	}, nil
}

func checkAmbiguity(container Shape, additionalChildren []Constraint) error {
	var errs error
	for i := range additionalChildren {
		for j := i + 1; j < len(additionalChildren); j++ {
			first, second := additionalChildren[i].Shape(), additionalChildren[j].Shape()
			if first.Overlaps(second) {
				errs = multierror.Append(errs, &AmbiguousChildrenError{
					Container: container,
					First:     first,
					Second:    second,
				})
			}
		}
	}
	return errs
}

func compact(constraints []Constraint) []Constraint {
	result := make([]Constraint, 0, len(constraints))
	for _, c := range constraints {
		if !IsAbsent(c) {
			result = append(result, c)
		}
	}
	return result
}

func (n ContainerNode) Children() []Constraint {
	children := make([]Constraint, len(n.children))
	copy(children, n.children)
	return children
}

func (n ContainerNode) AdditionalChildren() []Constraint {
	additionalChildren := make([]Constraint, len(n.additionalChildren))
	copy(additionalChildren, n.additionalChildren)
	return additionalChildren
}

func (n ContainerNode) ChildrenCount() int {
	return len(n.children) + len(n.additionalChildren)
}

func (n ContainerNode) IsApplicable() bool {
	return n.kind.applicable(n.args, n.ChildrenCount(), true)
}

func (n ContainerNode) IsNecessary() bool {
	return n.IsApplicable() && n.ChildrenCount() >= n.kind.NecessaryThreshold
}

// AdditionalChild returns the first additional child whose shape overlaps shape.
// Looking up a shape overlapping the container's own shape is a usage error.
func (n ContainerNode) AdditionalChild(shape Shape) (option.Option[Constraint], error) {
	if shape.Overlaps(n.Shape()) {
		return option.Nothing[Constraint](), fmt.Errorf(
			"%w: %s cannot be looked up in additional children of %s",
			ErrOverlappingShape, shape, n.Name(),
		)
	}
	for _, c := range n.additionalChildren {
		if shape.Overlaps(c.Shape()) {
			return option.Some(c), nil
		}
	}
	return option.Nothing[Constraint](), nil
}

// Rebuild returns a node of the same kind and arguments holding the given children.
func (n ContainerNode) Rebuild(children, additionalChildren []Constraint) (ContainerNode, error) {
	return NewContainer(n.kind, n.args, children, additionalChildren)
}

// AdditionalChildOf returns the first additional child of type T.
func AdditionalChildOf[T Constraint](c Container) option.Option[T] {
	for _, child := range c.AdditionalChildren() {
		if typed, ok := child.(T); ok {
			return option.Some(typed)
		}
	}
	return option.Nothing[T]()
}

// ChildOf returns the first child of type T.
func ChildOf[T Constraint](c Container) option.Option[T] {
	for _, child := range c.Children() {
		if typed, ok := child.(T); ok {
			return option.Some(typed)
		}
	}
	return option.Nothing[T]()
}
