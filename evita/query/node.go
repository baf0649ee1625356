package query

import (
	"github.com/krew-solutions/evita-client-go/evita/query/constraint"
)

func alwaysApplicable(_ []any, _ int) bool {
	return true
}

func hasArguments(args []any, _ int) bool {
	for _, arg := range args {
		if !constraint.IsAbsent(arg) {
			return true
		}
	}
	return false
}

func leaf(kind *constraint.Kind, args ...any) constraint.LeafNode {
	return constraint.Must(constraint.NewLeaf(kind, args...))
}

func container(kind *constraint.Kind, args []any, children []constraint.Constraint, additionalChildren ...constraint.Constraint) constraint.ContainerNode {
	return constraint.Must(constraint.NewContainer(kind, args, children, additionalChildren))
}

func rebuild[T constraint.Container](
	n constraint.ContainerNode,
	children, additionalChildren []constraint.Constraint,
	wrap func(constraint.ContainerNode) T,
) (constraint.Container, error) {
	rebuilt, err := n.Rebuild(children, additionalChildren)
	if err != nil {
		return nil, err
	}
	return wrap(rebuilt), nil
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

func stringsOf(args []any) []string {
	values := make([]string, 0, len(args))
	for _, arg := range args {
		if s, ok := arg.(string); ok {
			values = append(values, s)
		}
	}
	return values
}
