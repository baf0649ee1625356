package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krew-solutions/evita-client-go/evita/query/printer"
)

func TestNormalize(t *testing.T) {
	render := func(t *testing.T, tree *FilterByNode) string {
		t.Helper()
		normalized, err := Normalize(tree)
		require.NoError(t, err)
		if normalized == nil {
			return ""
		}
		text, _ := printer.Render(normalized)
		return text
	}

	t.Run("single child and is flattened", func(t *testing.T) {
		tree := FilterBy(And(AttributeEquals("code", "x")))
		assert.Equal(t, "filterBy(attributeEquals(code,x))", render(t, tree))
	})

	t.Run("inapplicable leaves are dropped", func(t *testing.T) {
		tree := FilterBy(Or(
			AttributeEquals("code", nil),
			AttributeEquals("code", "x"),
			AttributeInSet("code"),
			AttributeEquals("name", "y"),
		))
		assert.Equal(t, "filterBy(or(attributeEquals(code,x),attributeEquals(name,y)))", render(t, tree))
	})

	t.Run("not without child is dropped", func(t *testing.T) {
		tree := FilterBy(
			Not(AttributeEquals("code", nil)),
			AttributeIsNull("name"),
		)
		assert.Equal(t, "filterBy(attributeIsNull(name))", render(t, tree))
	})

	t.Run("nothing applicable", func(t *testing.T) {
		tree := FilterBy(And(AttributeEquals("code", nil)))
		assert.Equal(t, "", render(t, tree))
	})

	t.Run("unchanged tree is returned as is", func(t *testing.T) {
		tree := FilterBy(AttributeIsNull("name"))
		normalized, err := Normalize(tree)
		require.NoError(t, err)
		assert.Same(t, tree, normalized)
	})

	t.Run("nested flattening", func(t *testing.T) {
		tree := FilterBy(And(Or(And(AttributeIsNull("a")))))
		assert.Equal(t, "filterBy(attributeIsNull(a))", render(t, tree))
	})

	t.Run("containers with arguments are kept", func(t *testing.T) {
		tree := FilterBy(ReferenceHaving("brand", And(AttributeIsNull("a"))))
		assert.Equal(t, "filterBy(referenceHaving(brand,attributeIsNull(a)))", render(t, tree))
	})
}

func TestQueryNormalized(t *testing.T) {
	q := MustQuery(
		Collection("Product"),
		FilterBy(And(AttributeEquals("code", nil))),
		OrderBy(Random()),
		Require(EntityFetch(AttributeContent("name")), Page(2, 10)),
	)

	normalized, err := q.Normalized()
	require.NoError(t, err)

	assert.Equal(t, "query(collection(Product),orderBy(random()),require(entityFetch(attributeContent(name)),page(2,10)))", normalized.String())
	_, ok := q.FilterBy()
	assert.True(t, ok, "original query must stay untouched")

	t.Run("root part is never flattened", func(t *testing.T) {
		q := MustQuery(FilterBy(And(AttributeIsNull("a"), AttributeIsNull("b"))))
		normalized, err := q.Normalized()
		require.NoError(t, err)
		filterBy, ok := normalized.FilterBy()
		require.True(t, ok)
		assert.Equal(t, 1, filterBy.ChildrenCount())
	})
}
