package query

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"github.com/krew-solutions/evita-client-go/evita/query/constraint"
)

var (
	filterByKind   = &constraint.Kind{Name: "filterBy", Category: constraint.FilterCategory}
	andKind        = &constraint.Kind{Name: "and", Category: constraint.FilterCategory, NecessaryThreshold: 2}
	orKind         = &constraint.Kind{Name: "or", Category: constraint.FilterCategory, NecessaryThreshold: 2}
	userFilterKind = &constraint.Kind{Name: "userFilter", Category: constraint.FilterCategory}
	notKind        = &constraint.Kind{
		Name:     "not",
		Category: constraint.FilterCategory,
		Applicable: func(_ []any, childrenCount int) bool {
			return childrenCount == 1
		},
	}
	referenceHavingKind = &constraint.Kind{Name: "referenceHaving", Category: constraint.FilterCategory, RequiredArgs: 1}
	entityHavingKind    = &constraint.Kind{
		Name:     "entityHaving",
		Category: constraint.FilterCategory,
		Scope:    constraint.SeparateScope,
	}

	attributeEqualsKind     = &constraint.Kind{Name: "attributeEquals", Category: constraint.FilterCategory, RequiredArgs: 2}
	attributeContainsKind   = &constraint.Kind{Name: "attributeContains", Category: constraint.FilterCategory, RequiredArgs: 2}
	attributeStartsWithKind = &constraint.Kind{Name: "attributeStartsWith", Category: constraint.FilterCategory, RequiredArgs: 2}
	attributeIsNullKind     = &constraint.Kind{Name: "attributeIsNull", Category: constraint.FilterCategory, RequiredArgs: 1}
	attributeBetweenKind    = &constraint.Kind{
		Name:     "attributeBetween",
		Category: constraint.FilterCategory,
		Applicable: func(args []any, _ int) bool {
			return !constraint.IsAbsent(args[0]) && hasBound(args[1:])
		},
	}
	attributeInSetKind = &constraint.Kind{
		Name:     "attributeInSet",
		Category: constraint.FilterCategory,
		Applicable: func(args []any, _ int) bool {
			return !constraint.IsAbsent(args[0]) && hasArguments(args[1:], 0)
		},
	}
	entityPrimaryKeyInSetKind = &constraint.Kind{
		Name:       "entityPrimaryKeyInSet",
		Category:   constraint.FilterCategory,
		Applicable: hasArguments,
	}
	entityLocaleEqualsKind = &constraint.Kind{Name: "entityLocaleEquals", Category: constraint.FilterCategory, RequiredArgs: 1}
	priceInCurrencyKind    = &constraint.Kind{Name: "priceInCurrency", Category: constraint.FilterCategory, RequiredArgs: 1}
	priceInPriceListsKind  = &constraint.Kind{
		Name:       "priceInPriceLists",
		Category:   constraint.FilterCategory,
		Applicable: hasArguments,
	}
	priceBetweenKind = &constraint.Kind{
		Name:     "priceBetween",
		Category: constraint.FilterCategory,
		Applicable: func(args []any, _ int) bool {
			return hasBound(args)
		},
	}
)

// FilterBy is the root of the filter part of a query.
func FilterBy(children ...constraint.Constraint) *FilterByNode {
	return &FilterByNode{container(filterByKind, nil, children)}
}

type FilterByNode struct {
	constraint.ContainerNode
}

func (c *FilterByNode) Accept(v constraint.Visitor) error {
	return v.Visit(c)
}

func (c *FilterByNode) WithChildren(children, additionalChildren []constraint.Constraint) (constraint.Container, error) {
	return rebuild(c.ContainerNode, children, additionalChildren, func(n constraint.ContainerNode) *FilterByNode {
		return &FilterByNode{n}
	})
}

func (c *FilterByNode) queryPart() {}

func And(children ...constraint.Constraint) *AndNode {
	return &AndNode{container(andKind, nil, children)}
}

type AndNode struct {
	constraint.ContainerNode
}

func (c *AndNode) Accept(v constraint.Visitor) error {
	return v.Visit(c)
}

func (c *AndNode) WithChildren(children, additionalChildren []constraint.Constraint) (constraint.Container, error) {
	return rebuild(c.ContainerNode, children, additionalChildren, func(n constraint.ContainerNode) *AndNode {
		return &AndNode{n}
	})
}

func Or(children ...constraint.Constraint) *OrNode {
	return &OrNode{container(orKind, nil, children)}
}

type OrNode struct {
	constraint.ContainerNode
}

func (c *OrNode) Accept(v constraint.Visitor) error {
	return v.Visit(c)
}

func (c *OrNode) WithChildren(children, additionalChildren []constraint.Constraint) (constraint.Container, error) {
	return rebuild(c.ContainerNode, children, additionalChildren, func(n constraint.ContainerNode) *OrNode {
		return &OrNode{n}
	})
}

func Not(child constraint.Constraint) *NotNode {
	return &NotNode{container(notKind, nil, []constraint.Constraint{child})}
}

type NotNode struct {
	constraint.ContainerNode
}

func (c *NotNode) Accept(v constraint.Visitor) error {
	return v.Visit(c)
}

func (c *NotNode) WithChildren(children, additionalChildren []constraint.Constraint) (constraint.Container, error) {
	return rebuild(c.ContainerNode, children, additionalChildren, func(n constraint.ContainerNode) *NotNode {
		return &NotNode{n}
	})
}

// UserFilter marks the part of a filter driven by the end user, as opposed to
// the part fixed by the application.
func UserFilter(children ...constraint.Constraint) *UserFilterNode {
	return &UserFilterNode{container(userFilterKind, nil, children)}
}

type UserFilterNode struct {
	constraint.ContainerNode
}

func (c *UserFilterNode) Accept(v constraint.Visitor) error {
	return v.Visit(c)
}

func (c *UserFilterNode) WithChildren(children, additionalChildren []constraint.Constraint) (constraint.Container, error) {
	return rebuild(c.ContainerNode, children, additionalChildren, func(n constraint.ContainerNode) *UserFilterNode {
		return &UserFilterNode{n}
	})
}

// ReferenceHaving filters entities by the attributes of their references.
func ReferenceHaving(referenceName string, children ...constraint.Constraint) *ReferenceHavingNode {
	return &ReferenceHavingNode{container(referenceHavingKind, []any{referenceName}, children)}
}

type ReferenceHavingNode struct {
	constraint.ContainerNode
}

func (c *ReferenceHavingNode) ReferenceName() string {
	name, _ := c.Arguments()[0].(string)
	return name
}

func (c *ReferenceHavingNode) Accept(v constraint.Visitor) error {
	return v.Visit(c)
}

func (c *ReferenceHavingNode) WithChildren(children, additionalChildren []constraint.Constraint) (constraint.Container, error) {
	return rebuild(c.ContainerNode, children, additionalChildren, func(n constraint.ContainerNode) *ReferenceHavingNode {
		return &ReferenceHavingNode{n}
	})
}

// EntityHaving filters by the referenced entity itself and opens its scope.
func EntityHaving(children ...constraint.Constraint) *EntityHavingNode {
	return &EntityHavingNode{container(entityHavingKind, nil, children)}
}

type EntityHavingNode struct {
	constraint.ContainerNode
}

func (c *EntityHavingNode) Accept(v constraint.Visitor) error {
	return v.Visit(c)
}

func (c *EntityHavingNode) WithChildren(children, additionalChildren []constraint.Constraint) (constraint.Container, error) {
	return rebuild(c.ContainerNode, children, additionalChildren, func(n constraint.ContainerNode) *EntityHavingNode {
		return &EntityHavingNode{n}
	})
}

// AttributeNode is a filtering leaf whose first argument is an attribute name.
type AttributeNode struct {
	constraint.LeafNode
}

func (c AttributeNode) AttributeName() string {
	name, _ := c.Arguments()[0].(string)
	return name
}

func AttributeEquals(attributeName string, value any) *AttributeEqualsNode {
	return &AttributeEqualsNode{AttributeNode{leaf(attributeEqualsKind, attributeName, value)}}
}

type AttributeEqualsNode struct {
	AttributeNode
}

func (c *AttributeEqualsNode) Accept(v constraint.Visitor) error {
	return v.Visit(c)
}

func AttributeContains(attributeName, text string) *AttributeContainsNode {
	return &AttributeContainsNode{AttributeNode{leaf(attributeContainsKind, attributeName, text)}}
}

type AttributeContainsNode struct {
	AttributeNode
}

func (c *AttributeContainsNode) Accept(v constraint.Visitor) error {
	return v.Visit(c)
}

func AttributeStartsWith(attributeName, prefix string) *AttributeStartsWithNode {
	return &AttributeStartsWithNode{AttributeNode{leaf(attributeStartsWithKind, attributeName, prefix)}}
}

type AttributeStartsWithNode struct {
	AttributeNode
}

func (c *AttributeStartsWithNode) Accept(v constraint.Visitor) error {
	return v.Visit(c)
}

// AttributeBetween matches values in the closed range. A nil bound is replaced
// by Unbounded, so it is rendered and the other bound keeps its position.
func AttributeBetween(attributeName string, from, to any) *AttributeBetweenNode {
	return &AttributeBetweenNode{AttributeNode{leaf(attributeBetweenKind, attributeName, bound(from), bound(to))}}
}

type AttributeBetweenNode struct {
	AttributeNode
}

func (c *AttributeBetweenNode) Accept(v constraint.Visitor) error {
	return v.Visit(c)
}

func AttributeInSet(attributeName string, values ...any) *AttributeInSetNode {
	args := append([]any{attributeName}, values...)
	return &AttributeInSetNode{AttributeNode{leaf(attributeInSetKind, args...)}}
}

type AttributeInSetNode struct {
	AttributeNode
}

func (c *AttributeInSetNode) Accept(v constraint.Visitor) error {
	return v.Visit(c)
}

func AttributeIsNull(attributeName string) *AttributeIsNullNode {
	return &AttributeIsNullNode{AttributeNode{leaf(attributeIsNullKind, attributeName)}}
}

type AttributeIsNullNode struct {
	AttributeNode
}

func (c *AttributeIsNullNode) Accept(v constraint.Visitor) error {
	return v.Visit(c)
}

func EntityPrimaryKeyInSet(primaryKeys ...int) *EntityPrimaryKeyInSetNode {
	args := make([]any, len(primaryKeys))
	for i, pk := range primaryKeys {
		args[i] = pk
	}
	return &EntityPrimaryKeyInSetNode{leaf(entityPrimaryKeyInSetKind, args...)}
}

type EntityPrimaryKeyInSetNode struct {
	constraint.LeafNode
}

func (c *EntityPrimaryKeyInSetNode) PrimaryKeys() []int {
	args := c.Arguments()
	pks := make([]int, 0, len(args))
	for _, arg := range args {
		if pk, ok := arg.(int); ok {
			pks = append(pks, pk)
		}
	}
	return pks
}

func (c *EntityPrimaryKeyInSetNode) Accept(v constraint.Visitor) error {
	return v.Visit(c)
}

func EntityLocaleEquals(locale language.Tag) *EntityLocaleEqualsNode {
	return &EntityLocaleEqualsNode{leaf(entityLocaleEqualsKind, locale)}
}

type EntityLocaleEqualsNode struct {
	constraint.LeafNode
}

func (c *EntityLocaleEqualsNode) Locale() language.Tag {
	locale, _ := c.Arguments()[0].(language.Tag)
	return locale
}

func (c *EntityLocaleEqualsNode) Accept(v constraint.Visitor) error {
	return v.Visit(c)
}

func PriceInCurrency(currency string) *PriceInCurrencyNode {
	return &PriceInCurrencyNode{leaf(priceInCurrencyKind, currency)}
}

type PriceInCurrencyNode struct {
	constraint.LeafNode
}

func (c *PriceInCurrencyNode) Accept(v constraint.Visitor) error {
	return v.Visit(c)
}

func PriceInPriceLists(priceLists ...string) *PriceInPriceListsNode {
	return &PriceInPriceListsNode{leaf(priceInPriceListsKind, stringArgs(priceLists)...)}
}

type PriceInPriceListsNode struct {
	constraint.LeafNode
}

func (c *PriceInPriceListsNode) PriceLists() []string {
	return stringsOf(c.Arguments())
}

func (c *PriceInPriceListsNode) Accept(v constraint.Visitor) error {
	return v.Visit(c)
}

func PriceBetween(from, to decimal.Decimal) *PriceBetweenNode {
	return &PriceBetweenNode{leaf(priceBetweenKind, from, to)}
}

// PriceFrom is PriceBetween without an upper bound.
func PriceFrom(from decimal.Decimal) *PriceBetweenNode {
	return &PriceBetweenNode{leaf(priceBetweenKind, from, Unbounded)}
}

// PriceTo is PriceBetween without a lower bound.
func PriceTo(to decimal.Decimal) *PriceBetweenNode {
	return &PriceBetweenNode{leaf(priceBetweenKind, Unbounded, to)}
}

func bound(v any) any {
	if constraint.IsAbsent(v) {
		return Unbounded
	}
	return v
}

func hasBound(bounds []any) bool {
	for _, b := range bounds {
		if _, open := b.(OpenBound); !open && !constraint.IsAbsent(b) {
			return true
		}
	}
	return false
}

type PriceBetweenNode struct {
	constraint.LeafNode
}

func (c *PriceBetweenNode) Accept(v constraint.Visitor) error {
	return v.Visit(c)
}
