package query

import (
	"golang.org/x/text/language"

	"github.com/krew-solutions/evita-client-go/evita/option"
	"github.com/krew-solutions/evita-client-go/evita/query/finder"
)

const (
	DefaultPageNumber = 1
	DefaultPageSize   = 20
)

// Request describes what a query asks the server to return. Searches stay in
// the scope of the queried entity, requirements of referenced entities are
// not taken into account.
type Request struct {
	EntityType string

	// EntityFetch is Nothing when only primary keys are requested.
	EntityFetch option.Option[*EntityFetchNode]

	AttributeNames []string
	AllAttributes  bool

	AssociatedDataNames []string
	AllAssociatedData   bool

	// Locale is the locale the filter restricts entities to.
	Locale     option.Option[language.Tag]
	Locales    []language.Tag
	AllLocales bool

	PriceMode PriceContentMode

	ReferenceNames []string
	AllReferences  bool

	Offset int
	Limit  int

	Telemetry bool
}

func NewRequest(q *Query) (*Request, error) {
	r := &Request{
		EntityFetch: option.Nothing[*EntityFetchNode](),
		Locale:      option.Nothing[language.Tag](),
		Offset:      0,
		Limit:       DefaultPageSize,
	}
	if collection, ok := q.Collection(); ok {
		r.EntityType = collection.EntityType()
	}
	if err := r.readFilter(q); err != nil {
		return nil, err
	}
	if err := r.readRequire(q); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Request) RequiresEntity() bool {
	return r.EntityFetch.IsSome()
}

func (r *Request) readFilter(q *Query) error {
	filterBy, ok := q.FilterBy()
	if !ok {
		return nil
	}
	locale, err := finder.FindConstraint[*EntityLocaleEqualsNode](filterBy, nil, finder.StopAtSeparateScope)
	if err != nil {
		return err
	}
	r.Locale = option.Map(locale, (*EntityLocaleEqualsNode).Locale)
	return nil
}

func (r *Request) readRequire(q *Query) error {
	require, ok := q.Require()
	if !ok {
		return nil
	}
	if err := r.readWindow(require); err != nil {
		return err
	}
	telemetry := finder.FindConstraints[*QueryTelemetryNode](require, nil, finder.StopAtSeparateScope)
	r.Telemetry = len(telemetry) > 0

	entityFetch, err := finder.FindConstraint[*EntityFetchNode](require, nil, finder.StopAtSeparateScope)
	if err != nil {
		return err
	}
	r.EntityFetch = entityFetch
	fetch, ok := entityFetch.Get()
	if !ok {
		return nil
	}
	return r.readEntityFetch(fetch)
}

func (r *Request) readWindow(require *RequireNode) error {
	page, err := finder.FindConstraint[*PageNode](require, nil, finder.StopAtSeparateScope)
	if err != nil {
		return err
	}
	if p, ok := page.Get(); ok {
		r.Limit = p.Size()
		r.Offset = (max(p.Number(), DefaultPageNumber) - 1) * p.Size()
		return nil
	}
	strip, err := finder.FindConstraint[*StripNode](require, nil, finder.StopAtSeparateScope)
	if err != nil {
		return err
	}
	if s, ok := strip.Get(); ok {
		r.Offset = s.Offset()
		r.Limit = s.Limit()
	}
	return nil
}

func (r *Request) readEntityFetch(fetch *EntityFetchNode) error {
	attributes, err := finder.FindConstraint[*AttributeContentNode](fetch, nil, finder.StopAtSeparateScope)
	if err != nil {
		return err
	}
	if a, ok := attributes.Get(); ok {
		r.AttributeNames = a.AttributeNames()
		r.AllAttributes = a.IsAllRequested()
	}

	associatedData, err := finder.FindConstraint[*AssociatedDataContentNode](fetch, nil, finder.StopAtSeparateScope)
	if err != nil {
		return err
	}
	if a, ok := associatedData.Get(); ok {
		r.AssociatedDataNames = a.AssociatedDataNames()
		r.AllAssociatedData = a.IsAllRequested()
	}

	locales, err := finder.FindConstraint[*DataInLocalesNode](fetch, nil, finder.StopAtSeparateScope)
	if err != nil {
		return err
	}
	if l, ok := locales.Get(); ok {
		r.Locales = l.Locales()
		r.AllLocales = l.IsAllRequested()
	} else if locale, ok := r.Locale.Get(); ok {
		r.Locales = []language.Tag{locale}
	}

	price, err := finder.FindConstraint[*PriceContentNode](fetch, nil, finder.StopAtSeparateScope)
	if err != nil {
		return err
	}
	if p, ok := price.Get(); ok {
		r.PriceMode = p.Mode()
	}

	for _, reference := range finder.FindConstraints[*ReferenceContentNode](fetch, nil, finder.StopAtSeparateScope) {
		if reference.IsAllRequested() {
			r.AllReferences = true
			continue
		}
		r.ReferenceNames = append(r.ReferenceNames, reference.ReferenceNames()...)
	}
	return nil
}

// ReferenceFetch returns the requirements fetching the entities of the named
// reference, if the query asks for them.
func (r *Request) ReferenceFetch(referenceName string) (option.Option[*EntityFetchNode], error) {
	fetch, ok := r.EntityFetch.Get()
	if !ok {
		return option.Nothing[*EntityFetchNode](), nil
	}
	reference, err := finder.FindConstraint[*ReferenceContentNode](fetch, func(c *ReferenceContentNode) bool {
		for _, name := range c.ReferenceNames() {
			if name == referenceName {
				return true
			}
		}
		return false
	}, finder.StopAtSeparateScope)
	if err != nil {
		return option.Nothing[*EntityFetchNode](), err
	}
	ref, ok := reference.Get()
	if !ok {
		return option.Nothing[*EntityFetchNode](), nil
	}
	return finder.FindConstraint[*EntityFetchNode](ref, nil, finder.StopAtSeparateScope)
}
