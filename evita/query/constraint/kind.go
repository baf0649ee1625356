package constraint

import "fmt"

// Category is the sub-language a constraint belongs to.
type Category int

const (
	FilterCategory Category = iota + 1
	OrderCategory
	RequireCategory
	// HeadCategory holds query header constraints such as the collection selector.
	HeadCategory
)

func (c Category) String() string {
	switch c {
	case FilterCategory:
		return "Filter"
	case OrderCategory:
		return "Order"
	case RequireCategory:
		return "Require"
	case HeadCategory:
		return "Head"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// Scope tells searches whether a container opens a nested query context.
type Scope int

const (
	SharedScope Scope = iota
	SeparateScope
)

func (s Scope) String() string {
	if s == SeparateScope {
		return "separate"
	}
	return "shared"
}

// Shape identifies a concrete constraint variant.
// A Shape without a name stands for every variant of its category.
type Shape struct {
	Category Category
	Name     string
}

func CategoryShape(category Category) Shape {
	return Shape{Category: category}
}

func (s Shape) IsGeneral() bool {
	return s.Name == ""
}

// Overlaps reports whether s equals, generalizes or specializes other.
func (s Shape) Overlaps(other Shape) bool {
	if s.Category != other.Category {
		return false
	}
	return s.IsGeneral() || other.IsGeneral() || s.Name == other.Name
}

func (s Shape) String() string {
	if s.IsGeneral() {
		return s.Category.String() + "(*)"
	}
	return s.Name
}

// Kind declares a concrete constraint variant. Kinds are package level values
// shared by every node of the variant and are never modified after declaration.
type Kind struct {
	Name     string
	Category Category
	Scope    Scope

	// RequiredArgs is the number of leading argument slots that must be present
	// for the default applicability rule.
	RequiredArgs int

	// Applicable replaces the default rule: required arguments present and,
	// for containers, at least one child.
	Applicable func(args []any, childrenCount int) bool

	// NecessaryThreshold is the children count from which an applicable
	// container stops being redundant.
	NecessaryThreshold int
}

func (k *Kind) Shape() Shape {
	return Shape{Category: k.Category, Name: k.Name}
}

func (k *Kind) applicable(args []any, childrenCount int, container bool) bool {
	if k.Applicable != nil {
		return k.Applicable(args, childrenCount)
	}
	if len(args) < k.RequiredArgs {
		return false
	}
	for _, arg := range args[:k.RequiredArgs] {
		if IsAbsent(arg) {
			return false
		}
	}
	return !container || childrenCount > 0
}
