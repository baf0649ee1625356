package constraint

var (
	andKind = &Kind{Name: "and", Category: FilterCategory, NecessaryThreshold: 2}
	notKind = &Kind{
		Name:     "not",
		Category: FilterCategory,
		Applicable: func(_ []any, childrenCount int) bool {
			return childrenCount == 1
		},
	}
	filterByKind        = &Kind{Name: "filterBy", Category: FilterCategory}
	orderByKind         = &Kind{Name: "orderBy", Category: OrderCategory}
	attributeEqualsKind = &Kind{Name: "attributeEquals", Category: FilterCategory, RequiredArgs: 2}
	attributeNatural    = &Kind{Name: "attributeNatural", Category: OrderCategory, RequiredArgs: 1}
	entityFetchKind     = &Kind{
		Name:     "entityFetch",
		Category: RequireCategory,
		Scope:    SeparateScope,
		Applicable: func(_ []any, _ int) bool {
			return true
		},
	}
	referenceContentKind = &Kind{Name: "referenceContent", Category: RequireCategory, RequiredArgs: 1}
	attributeContentKind = &Kind{Name: "attributeContent", Category: RequireCategory}
)

type testLeaf struct {
	LeafNode
}

func (c *testLeaf) Accept(v Visitor) error {
	return v.Visit(c)
}

func newTestLeaf(kind *Kind, args ...any) *testLeaf {
	return &testLeaf{Must(NewLeaf(kind, args...))}
}

type testContainer struct {
	ContainerNode
}

func (c *testContainer) Accept(v Visitor) error {
	return v.Visit(c)
}

func (c *testContainer) WithChildren(children, additionalChildren []Constraint) (Container, error) {
	n, err := c.Rebuild(children, additionalChildren)
	if err != nil {
		return nil, err
	}
	return &testContainer{n}, nil
}

func newTestContainer(kind *Kind, args []any, children []Constraint, additionalChildren ...Constraint) *testContainer {
	return &testContainer{Must(NewContainer(kind, args, children, additionalChildren))}
}
