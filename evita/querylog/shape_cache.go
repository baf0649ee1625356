package querylog

import (
	"container/list"
	"slices"
	"sync"

	"github.com/krew-solutions/evita-client-go/evita/query"
)

const DefaultCacheSize = 256

// Rendering is the parameterized form of a query.
type Rendering struct {
	Shape      string
	Parameters []any
}

type cacheEntry struct {
	query     *query.Query
	rendering Rendering
}

// ShapeCache memoizes renderings of query values. Queries are immutable, so
// a rendering stays valid for as long as its query is cached.
type ShapeCache struct {
	mu    sync.Mutex
	items map[*query.Query]*list.Element
	order *list.List
	size  int
}

// NewShapeCache keeps at most size renderings; a non-positive size disables caching.
func NewShapeCache(size int) *ShapeCache {
	return &ShapeCache{
		items: make(map[*query.Query]*list.Element, max(size, 0)),
		order: list.New(),
		size:  size,
	}
}

// Render returns the cached rendering of q, rendering it on a miss. Shapes are
// always the single-line parameterized form, so equal queries share one shape.
func (c *ShapeCache) Render(q *query.Query) Rendering {
	if rendering, ok := c.Get(q); ok {
		return rendering
	}
	shape, params := q.Parameterized()
	c.add(q, Rendering{Shape: shape, Parameters: slices.Clone(params)})
	return Rendering{Shape: shape, Parameters: params}
}

func (c *ShapeCache) Get(q *query.Query) (Rendering, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.items[q]
	if !ok {
		return Rendering{}, false
	}
	c.order.MoveToBack(elem)
	rendering := elem.Value.(cacheEntry).rendering
	rendering.Parameters = slices.Clone(rendering.Parameters)
	return rendering, true
}

func (c *ShapeCache) add(q *query.Query, rendering Rendering) {
	if c.size <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[q]; ok {
		elem.Value = cacheEntry{query: q, rendering: rendering}
		c.order.MoveToBack(elem)
		return
	}
	c.items[q] = c.order.PushBack(cacheEntry{query: q, rendering: rendering})
	for len(c.items) > c.size {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(cacheEntry).query)
	}
}

func (c *ShapeCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *ShapeCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[*query.Query]*list.Element, max(c.size, 0))
	c.order.Init()
}
