package store

import (
	"context"
	"sync"
	"time"

	"github.com/kass/spatio/pkg/geometry"
	"github.com/kass/spatio/pkg/index"
)

// item is one stored key: its raw GeoJSON text (returned verbatim by
// GET) plus the parsed object used for indexing and predicates.
type item struct {
	key     string
	geojson string
	object  *geometry.Object
}

// collection is a single named bundle of items plus the R-tree index
// over their bboxes. Its own lock is the "single logical write lock"
// spec.md §4.5 describes for items+index together.
type collection struct {
	mu    sync.RWMutex
	items map[string]*item
	idx   *index.Index
}

func newCollection(timeout time.Duration) *collection {
	return &collection{
		items: make(map[string]*item),
		idx:   index.New(timeout),
	}
}

// set stores key under obj/geojsonText. SET always reports a store
// (returns true), the consistent choice spec.md §9 Open Question (a)
// leaves to the implementation.
func (c *collection) set(ctx context.Context, key, geojsonText string, obj *geometry.Object) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.items[key]; ok {
		if _, err := c.idx.Delete(ctx, existing.object.Bbox(), key); err != nil {
			return false, err
		}
	}
	if err := c.idx.Insert(ctx, obj.Bbox(), key); err != nil {
		return false, err
	}
	c.items[key] = &item{key: key, geojson: geojsonText, object: obj}
	return true, nil
}

func (c *collection) get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	it, ok := c.items[key]
	if !ok {
		return "", false
	}
	return it.geojson, true
}

func (c *collection) delete(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.items[key]
	if !ok {
		return false, nil
	}
	if _, err := c.idx.Delete(ctx, it.object.Bbox(), key); err != nil {
		return false, err
	}
	delete(c.items, key)
	return true, nil
}

func (c *collection) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Pair is one (key, GeoJSON text) result of INTERSECTS/WITHIN.
type Pair struct {
	Key     string
	GeoJSON string
}

func (c *collection) intersects(ctx context.Context, query *geometry.Object) ([]Pair, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	candidates, err := c.idx.Search(ctx, query.Bbox())
	if err != nil {
		return nil, err
	}
	var out []Pair
	for _, key := range candidates {
		it, ok := c.items[key]
		if !ok {
			continue
		}
		if geometry.Intersects(query, it.object) {
			out = append(out, Pair{Key: key, GeoJSON: it.geojson})
		}
	}
	return out, nil
}

func (c *collection) within(ctx context.Context, region *geometry.Object) ([]Pair, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	candidates, err := c.idx.Search(ctx, region.Bbox())
	if err != nil {
		return nil, err
	}
	var out []Pair
	for _, key := range candidates {
		it, ok := c.items[key]
		if !ok {
			continue
		}
		if geometry.Within(region, it.object) {
			out = append(out, Pair{Key: key, GeoJSON: it.geojson})
		}
	}
	return out, nil
}

// NearbyResult is one ranked NEARBY hit.
type NearbyResult struct {
	Key       string
	GeoJSON   string
	DistanceM float64
}

func (c *collection) nearby(ctx context.Context, query geometry.Point, k *int, radiusM *float64) ([]NearbyResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	hits, err := c.idx.Nearest(ctx, query, k, radiusM)
	if err != nil {
		return nil, err
	}
	out := make([]NearbyResult, 0, len(hits))
	for _, h := range hits {
		it, ok := c.items[h.Payload]
		if !ok {
			continue
		}
		out = append(out, NearbyResult{Key: h.Payload, GeoJSON: it.geojson, DistanceM: h.DistanceM})
	}
	return out, nil
}
