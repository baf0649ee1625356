package query

import (
	"golang.org/x/text/language"

	"github.com/krew-solutions/evita-client-go/evita/query/constraint"
)

const suffixAll = "All"

var (
	requireKind = &constraint.Kind{Name: "require", Category: constraint.RequireCategory}
	pageKind    = &constraint.Kind{Name: "page", Category: constraint.RequireCategory, RequiredArgs: 2}
	stripKind   = &constraint.Kind{Name: "strip", Category: constraint.RequireCategory, RequiredArgs: 2}

	entityFetchKind = &constraint.Kind{
		Name:       "entityFetch",
		Category:   constraint.RequireCategory,
		Scope:      constraint.SeparateScope,
		Applicable: alwaysApplicable,
	}
	entityGroupFetchKind = &constraint.Kind{
		Name:       "entityGroupFetch",
		Category:   constraint.RequireCategory,
		Scope:      constraint.SeparateScope,
		Applicable: alwaysApplicable,
	}
	attributeContentKind = &constraint.Kind{
		Name:       "attributeContent",
		Category:   constraint.RequireCategory,
		Applicable: alwaysApplicable,
	}
	associatedDataContentKind = &constraint.Kind{
		Name:       "associatedDataContent",
		Category:   constraint.RequireCategory,
		Applicable: alwaysApplicable,
	}
	priceContentKind = &constraint.Kind{
		Name:       "priceContent",
		Category:   constraint.RequireCategory,
		Applicable: alwaysApplicable,
	}
	referenceContentKind = &constraint.Kind{
		Name:       "referenceContent",
		Category:   constraint.RequireCategory,
		Applicable: alwaysApplicable,
	}
	dataInLocalesKind = &constraint.Kind{
		Name:       "dataInLocales",
		Category:   constraint.RequireCategory,
		Applicable: alwaysApplicable,
	}
	hierarchyContentKind = &constraint.Kind{
		Name:       "hierarchyContent",
		Category:   constraint.RequireCategory,
		Applicable: alwaysApplicable,
	}
	queryTelemetryKind = &constraint.Kind{
		Name:       "queryTelemetry",
		Category:   constraint.RequireCategory,
		Applicable: alwaysApplicable,
	}
)

// Require is the root of the requirement part of a query.
func Require(children ...constraint.Constraint) *RequireNode {
	return &RequireNode{container(requireKind, nil, children)}
}

type RequireNode struct {
	constraint.ContainerNode
}

func (c *RequireNode) Accept(v constraint.Visitor) error {
	return v.Visit(c)
}

func (c *RequireNode) WithChildren(children, additionalChildren []constraint.Constraint) (constraint.Container, error) {
	return rebuild(c.ContainerNode, children, additionalChildren, func(n constraint.ContainerNode) *RequireNode {
		return &RequireNode{n}
	})
}

func (c *RequireNode) queryPart() {}

// Page requests the page with the given 1-based number.
func Page(number, size int) *PageNode {
	return &PageNode{leaf(pageKind, number, size)}
}

type PageNode struct {
	constraint.LeafNode
}

func (c *PageNode) Number() int {
	number, _ := c.Arguments()[0].(int)
	return number
}

func (c *PageNode) Size() int {
	size, _ := c.Arguments()[1].(int)
	return size
}

func (c *PageNode) Accept(v constraint.Visitor) error {
	return v.Visit(c)
}

func Strip(offset, limit int) *StripNode {
	return &StripNode{leaf(stripKind, offset, limit)}
}

type StripNode struct {
	constraint.LeafNode
}

func (c *StripNode) Offset() int {
	offset, _ := c.Arguments()[0].(int)
	return offset
}

func (c *StripNode) Limit() int {
	limit, _ := c.Arguments()[1].(int)
	return limit
}

func (c *StripNode) Accept(v constraint.Visitor) error {
	return v.Visit(c)
}

// EntityFetch requests entity bodies. It opens a separate scope: requirements
// nested in it describe the fetched entity, not the queried one.
func EntityFetch(requirements ...constraint.Constraint) *EntityFetchNode {
	return &EntityFetchNode{container(entityFetchKind, nil, requirements)}
}

type EntityFetchNode struct {
	constraint.ContainerNode
}

func (c *EntityFetchNode) Accept(v constraint.Visitor) error {
	return v.Visit(c)
}

func (c *EntityFetchNode) WithChildren(children, additionalChildren []constraint.Constraint) (constraint.Container, error) {
	return rebuild(c.ContainerNode, children, additionalChildren, func(n constraint.ContainerNode) *EntityFetchNode {
		return &EntityFetchNode{n}
	})
}

func EntityGroupFetch(requirements ...constraint.Constraint) *EntityGroupFetchNode {
	return &EntityGroupFetchNode{container(entityGroupFetchKind, nil, requirements)}
}

type EntityGroupFetchNode struct {
	constraint.ContainerNode
}

func (c *EntityGroupFetchNode) Accept(v constraint.Visitor) error {
	return v.Visit(c)
}

func (c *EntityGroupFetchNode) WithChildren(children, additionalChildren []constraint.Constraint) (constraint.Container, error) {
	return rebuild(c.ContainerNode, children, additionalChildren, func(n constraint.ContainerNode) *EntityGroupFetchNode {
		return &EntityGroupFetchNode{n}
	})
}

// allWhenEmpty renders the All suffix for requirements listing nothing.
type allWhenEmpty struct {
	constraint.LeafNode
}

func (c allWhenEmpty) Suffix() (string, bool) {
	if hasArguments(c.Arguments(), 0) {
		return "", false
	}
	return suffixAll, true
}

func (c allWhenEmpty) IsArgImpliedInSuffix(any) bool {
	return false
}

func (c allWhenEmpty) IsAllRequested() bool {
	_, ok := c.Suffix()
	return ok
}

// AttributeContent requests the named attributes, or all of them when no name is given.
func AttributeContent(attributeNames ...string) *AttributeContentNode {
	return &AttributeContentNode{allWhenEmpty{leaf(attributeContentKind, stringArgs(attributeNames)...)}}
}

func AttributeContentAll() *AttributeContentNode {
	return AttributeContent()
}

type AttributeContentNode struct {
	allWhenEmpty
}

func (c *AttributeContentNode) AttributeNames() []string {
	return stringsOf(c.Arguments())
}

func (c *AttributeContentNode) Accept(v constraint.Visitor) error {
	return v.Visit(c)
}

func AssociatedDataContent(names ...string) *AssociatedDataContentNode {
	return &AssociatedDataContentNode{allWhenEmpty{leaf(associatedDataContentKind, stringArgs(names)...)}}
}

func AssociatedDataContentAll() *AssociatedDataContentNode {
	return AssociatedDataContent()
}

type AssociatedDataContentNode struct {
	allWhenEmpty
}

func (c *AssociatedDataContentNode) AssociatedDataNames() []string {
	return stringsOf(c.Arguments())
}

func (c *AssociatedDataContentNode) Accept(v constraint.Visitor) error {
	return v.Visit(c)
}

// DataInLocales requests localized data in the given locales, or in all of them.
func DataInLocales(locales ...language.Tag) *DataInLocalesNode {
	args := make([]any, len(locales))
	for i, locale := range locales {
		args[i] = locale
	}
	return &DataInLocalesNode{allWhenEmpty{leaf(dataInLocalesKind, args...)}}
}

func DataInLocalesAll() *DataInLocalesNode {
	return DataInLocales()
}

type DataInLocalesNode struct {
	allWhenEmpty
}

func (c *DataInLocalesNode) Locales() []language.Tag {
	args := c.Arguments()
	locales := make([]language.Tag, 0, len(args))
	for _, arg := range args {
		if locale, ok := arg.(language.Tag); ok {
			locales = append(locales, locale)
		}
	}
	return locales
}

func (c *DataInLocalesNode) Accept(v constraint.Visitor) error {
	return v.Visit(c)
}

// PriceContent requests prices in the given mode. The ALL and RESPECTING_FILTER
// modes are spelled as name suffixes instead of arguments.
func PriceContent(mode PriceContentMode, priceLists ...string) *PriceContentNode {
	args := append([]any{mode}, stringArgs(priceLists)...)
	return &PriceContentNode{leaf(priceContentKind, args...)}
}

func PriceContentAll() *PriceContentNode {
	return PriceContent(PriceModeAll)
}

func PriceContentRespectingFilter(priceLists ...string) *PriceContentNode {
	return PriceContent(PriceModeRespectingFilter, priceLists...)
}

type PriceContentNode struct {
	constraint.LeafNode
}

func (c *PriceContentNode) Mode() PriceContentMode {
	mode, _ := c.Arguments()[0].(PriceContentMode)
	return mode
}

func (c *PriceContentNode) AdditionalPriceLists() []string {
	return stringsOf(c.Arguments()[1:])
}

func (c *PriceContentNode) Suffix() (string, bool) {
	switch c.Mode() {
	case PriceModeAll:
		return suffixAll, true
	case PriceModeRespectingFilter:
		return "RespectingFilter", true
	default:
		return "", false
	}
}

func (c *PriceContentNode) IsArgImpliedInSuffix(arg any) bool {
	mode, ok := arg.(PriceContentMode)
	return ok && mode == c.Mode()
}

func (c *PriceContentNode) Accept(v constraint.Visitor) error {
	return v.Visit(c)
}

// ReferenceContent requests the named reference. Filter and order parts become
// additional children scoping the referenced entities, require parts become
// children.
func ReferenceContent(referenceName string, parts ...constraint.Constraint) *ReferenceContentNode {
	return newReferenceContent([]any{referenceName}, parts)
}

// ReferenceContentAll requests every reference of the entity.
func ReferenceContentAll(parts ...constraint.Constraint) *ReferenceContentNode {
	return newReferenceContent(nil, parts)
}

func newReferenceContent(args []any, parts []constraint.Constraint) *ReferenceContentNode {
	var children, additionalChildren []constraint.Constraint
	for _, part := range parts {
		if constraint.IsAbsent(part) {
			continue
		}
		if part.Category() == constraint.RequireCategory {
			children = append(children, part)
		} else {
			additionalChildren = append(additionalChildren, part)
		}
	}
	return &ReferenceContentNode{container(referenceContentKind, args, children, additionalChildren...)}
}

type ReferenceContentNode struct {
	constraint.ContainerNode
}

func (c *ReferenceContentNode) ReferenceNames() []string {
	return stringsOf(c.Arguments())
}

func (c *ReferenceContentNode) IsAllRequested() bool {
	_, ok := c.Suffix()
	return ok
}

func (c *ReferenceContentNode) Suffix() (string, bool) {
	if hasArguments(c.Arguments(), 0) {
		return "", false
	}
	return suffixAll, true
}

func (c *ReferenceContentNode) IsArgImpliedInSuffix(any) bool {
	return false
}

func (c *ReferenceContentNode) FilterBy() (*FilterByNode, bool) {
	return constraint.AdditionalChildOf[*FilterByNode](c).Get()
}

func (c *ReferenceContentNode) OrderBy() (*OrderByNode, bool) {
	return constraint.AdditionalChildOf[*OrderByNode](c).Get()
}

func (c *ReferenceContentNode) EntityFetch() (*EntityFetchNode, bool) {
	return constraint.ChildOf[*EntityFetchNode](c).Get()
}

func (c *ReferenceContentNode) Accept(v constraint.Visitor) error {
	return v.Visit(c)
}

func (c *ReferenceContentNode) WithChildren(children, additionalChildren []constraint.Constraint) (constraint.Container, error) {
	return rebuild(c.ContainerNode, children, additionalChildren, func(n constraint.ContainerNode) *ReferenceContentNode {
		return &ReferenceContentNode{n}
	})
}

// HierarchyContent requests the parent chain of hierarchical entities,
// optionally fetching the parents with the given requirements.
func HierarchyContent(requirements ...constraint.Constraint) *HierarchyContentNode {
	return &HierarchyContentNode{container(hierarchyContentKind, nil, requirements)}
}

type HierarchyContentNode struct {
	constraint.ContainerNode
}

func (c *HierarchyContentNode) Accept(v constraint.Visitor) error {
	return v.Visit(c)
}

func (c *HierarchyContentNode) WithChildren(children, additionalChildren []constraint.Constraint) (constraint.Container, error) {
	return rebuild(c.ContainerNode, children, additionalChildren, func(n constraint.ContainerNode) *HierarchyContentNode {
		return &HierarchyContentNode{n}
	})
}

func QueryTelemetry() *QueryTelemetryNode {
	return &QueryTelemetryNode{leaf(queryTelemetryKind)}
}

type QueryTelemetryNode struct {
	constraint.LeafNode
}

func (c *QueryTelemetryNode) Accept(v constraint.Visitor) error {
	return v.Visit(c)
}
