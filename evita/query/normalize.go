package query

import (
	"github.com/krew-solutions/evita-client-go/evita/query/constraint"
)

// Normalize returns an equivalent tree without inapplicable nodes and without
// containers made redundant by their children count. It returns nil when
// nothing applicable is left.
func Normalize(c constraint.Constraint) (constraint.Constraint, error) {
	return normalize(c, true)
}

func normalize(c constraint.Constraint, flatten bool) (constraint.Constraint, error) {
	if constraint.IsAbsent(c) {
		return nil, nil
	}
	container, ok := c.(constraint.Container)
	if !ok {
		if !c.IsApplicable() {
			return nil, nil
		}
		return c, nil
	}

	children, childrenChanged, err := normalizeAll(container.Children())
	if err != nil {
		return nil, err
	}
	additionalChildren, additionalChanged, err := normalizeAll(container.AdditionalChildren())
	if err != nil {
		return nil, err
	}
	if childrenChanged || additionalChanged {
		container, err = container.WithChildren(children, additionalChildren)
		if err != nil {
			return nil, err
		}
	}

	if !container.IsApplicable() {
		return nil, nil
	}
	if !flatten || container.IsNecessary() {
		return container, nil
	}
	if len(children) == 1 && len(additionalChildren) == 0 && !hasArguments(container.Arguments(), 0) {
		return children[0], nil
	}
	if container.ChildrenCount() == 0 {
		return nil, nil
	}
	return container, nil
}

func normalizeAll(constraints []constraint.Constraint) ([]constraint.Constraint, bool, error) {
	result := make([]constraint.Constraint, 0, len(constraints))
	changed := false
	for _, c := range constraints {
		normalized, err := normalize(c, true)
		if err != nil {
			return nil, false, err
		}
		if normalized != c {
			changed = true
		}
		if normalized != nil {
			result = append(result, normalized)
		}
	}
	return result, changed, nil
}

// Normalized returns a copy of q with every part normalized. Parts left with
// nothing applicable are removed; the collection is kept as is.
func (q *Query) Normalized() (*Query, error) {
	clone := *q
	var err error
	if clone.filterBy, err = normalizePart(q.filterBy); err != nil {
		return nil, err
	}
	if clone.orderBy, err = normalizePart(q.orderBy); err != nil {
		return nil, err
	}
	if clone.require, err = normalizePart(q.require); err != nil {
		return nil, err
	}
	return &clone, nil
}

func normalizePart[T constraint.Container](part T) (T, error) {
	var zero T
	if constraint.IsAbsent(part) {
		return zero, nil
	}
	normalized, err := normalize(part, false)
	if err != nil || normalized == nil {
		return zero, err
	}
	return normalized.(T), nil
}
