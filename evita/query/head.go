package query

import (
	"github.com/krew-solutions/evita-client-go/evita/query/constraint"
)

var collectionKind = &constraint.Kind{Name: "collection", Category: constraint.HeadCategory, RequiredArgs: 1}

// Collection selects the entity collection the query targets.
func Collection(entityType string) *CollectionNode {
	return &CollectionNode{leaf(collectionKind, entityType)}
}

type CollectionNode struct {
	constraint.LeafNode
}

func (c *CollectionNode) EntityType() string {
	entityType, _ := c.Arguments()[0].(string)
	return entityType
}

func (c *CollectionNode) Accept(v constraint.Visitor) error {
	return v.Visit(c)
}

func (c *CollectionNode) queryPart() {}
