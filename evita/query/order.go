package query

import (
	"github.com/krew-solutions/evita-client-go/evita/query/constraint"
)

var (
	orderByKind           = &constraint.Kind{Name: "orderBy", Category: constraint.OrderCategory}
	attributeNaturalKind  = &constraint.Kind{Name: "attributeNatural", Category: constraint.OrderCategory, RequiredArgs: 1}
	priceNaturalKind      = &constraint.Kind{Name: "priceNatural", Category: constraint.OrderCategory, Applicable: alwaysApplicable}
	randomKind            = &constraint.Kind{Name: "random", Category: constraint.OrderCategory, Applicable: alwaysApplicable}
	referencePropertyKind = &constraint.Kind{Name: "referenceProperty", Category: constraint.OrderCategory, RequiredArgs: 1}
)

// OrderBy is the root of the ordering part of a query. Children apply in order,
// later ones breaking ties of earlier ones.
func OrderBy(children ...constraint.Constraint) *OrderByNode {
	return &OrderByNode{container(orderByKind, nil, children)}
}

type OrderByNode struct {
	constraint.ContainerNode
}

func (c *OrderByNode) Accept(v constraint.Visitor) error {
	return v.Visit(c)
}

func (c *OrderByNode) WithChildren(children, additionalChildren []constraint.Constraint) (constraint.Container, error) {
	return rebuild(c.ContainerNode, children, additionalChildren, func(n constraint.ContainerNode) *OrderByNode {
		return &OrderByNode{n}
	})
}

func (c *OrderByNode) queryPart() {}

func AttributeNatural(attributeName string, direction OrderDirection) *AttributeNaturalNode {
	return &AttributeNaturalNode{leaf(attributeNaturalKind, attributeName, direction)}
}

type AttributeNaturalNode struct {
	constraint.LeafNode
}

func (c *AttributeNaturalNode) AttributeName() string {
	name, _ := c.Arguments()[0].(string)
	return name
}

func (c *AttributeNaturalNode) Direction() OrderDirection {
	direction, _ := c.Arguments()[1].(OrderDirection)
	return direction
}

func (c *AttributeNaturalNode) Accept(v constraint.Visitor) error {
	return v.Visit(c)
}

func PriceNatural(direction OrderDirection) *PriceNaturalNode {
	return &PriceNaturalNode{leaf(priceNaturalKind, direction)}
}

type PriceNaturalNode struct {
	constraint.LeafNode
}

func (c *PriceNaturalNode) Accept(v constraint.Visitor) error {
	return v.Visit(c)
}

func Random() *RandomNode {
	return &RandomNode{leaf(randomKind)}
}

type RandomNode struct {
	constraint.LeafNode
}

func (c *RandomNode) Accept(v constraint.Visitor) error {
	return v.Visit(c)
}

// ReferenceProperty orders by attributes of the named reference.
func ReferenceProperty(referenceName string, children ...constraint.Constraint) *ReferencePropertyNode {
	return &ReferencePropertyNode{container(referencePropertyKind, []any{referenceName}, children)}
}

type ReferencePropertyNode struct {
	constraint.ContainerNode
}

func (c *ReferencePropertyNode) ReferenceName() string {
	name, _ := c.Arguments()[0].(string)
	return name
}

func (c *ReferencePropertyNode) Accept(v constraint.Visitor) error {
	return v.Visit(c)
}

func (c *ReferencePropertyNode) WithChildren(children, additionalChildren []constraint.Constraint) (constraint.Container, error) {
	return rebuild(c.ContainerNode, children, additionalChildren, func(n constraint.ContainerNode) *ReferencePropertyNode {
		return &ReferencePropertyNode{n}
	})
}
