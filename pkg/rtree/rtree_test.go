package rtree

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/kass/spatio/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bb(x float64) geometry.BBox {
	return geometry.BBox{MinX: x, MinY: x, MaxX: x, MaxY: x}
}

func TestInsertAndLen(t *testing.T) {
	tr := NewDefault()
	for i := 0; i < 100; i++ {
		tr.Insert(bb(float64(i)), fmt.Sprintf("k%d", i))
	}
	assert.Equal(t, 100, tr.Len())
}

func TestSearchCompleteness(t *testing.T) {
	tr := NewDefault()
	boxes := map[string]geometry.BBox{}
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		x := r.Float64() * 100
		y := r.Float64() * 100
		b := geometry.BBox{MinX: x, MinY: y, MaxX: x + 1, MaxY: y + 1}
		key := fmt.Sprintf("item-%d", i)
		boxes[key] = b
		tr.Insert(b, key)
	}

	window := geometry.BBox{MinX: 20, MinY: 20, MaxX: 60, MaxY: 60}
	found := map[string]bool{}
	for _, p := range tr.Search(window) {
		found[p] = true
		assert.True(t, boxes[p].Intersects(window), "spurious payload %s", p)
	}
	for key, b := range boxes {
		if b.Intersects(window) {
			assert.True(t, found[key], "missing payload %s", key)
		}
	}
}

func TestDeleteRemovesEntry(t *testing.T) {
	tr := NewDefault()
	b := bb(5)
	tr.Insert(b, "x")
	assert.Equal(t, 1, tr.Len())

	removed := tr.Delete(b, "x")
	assert.True(t, removed)
	assert.Equal(t, 0, tr.Len())
	assert.Empty(t, tr.Search(geometry.BBox{MinX: -1000, MinY: -1000, MaxX: 1000, MaxY: 1000}))
}

func TestDeleteAbsentIsNoop(t *testing.T) {
	tr := NewDefault()
	tr.Insert(bb(1), "a")
	before := tr.Search(geometry.BBox{MinX: -10, MinY: -10, MaxX: 10, MaxY: 10})

	removed := tr.Delete(bb(99), "missing")
	assert.False(t, removed)
	assert.Equal(t, 1, tr.Len())

	after := tr.Search(geometry.BBox{MinX: -10, MinY: -10, MaxX: 10, MaxY: 10})
	assert.ElementsMatch(t, before, after)
}

func TestInsertDeleteCountInvariant(t *testing.T) {
	tr := NewDefault()
	r := rand.New(rand.NewSource(42))
	inserted := 0
	deleted := 0

	type item struct {
		b   geometry.BBox
		key string
	}
	var live []item

	for i := 0; i < 500; i++ {
		if len(live) > 0 && r.Intn(3) == 0 {
			idx := r.Intn(len(live))
			it := live[idx]
			require.True(t, tr.Delete(it.b, it.key))
			live = append(live[:idx], live[idx+1:]...)
			deleted++
		} else {
			x := r.Float64() * 1000
			y := r.Float64() * 1000
			b := geometry.BBox{MinX: x, MinY: y, MaxX: x + r.Float64()*5, MaxY: y + r.Float64()*5}
			key := fmt.Sprintf("i%d", i)
			tr.Insert(b, key)
			live = append(live, item{b, key})
			inserted++
		}
	}

	assert.Equal(t, inserted-deleted, tr.Len())
	assert.Equal(t, len(live), tr.Len())
}

func TestNearestOrdering(t *testing.T) {
	tr := NewDefault()
	pts := map[string][2]float64{
		"a": {0, 0},
		"b": {1, 0},
		"c": {3, 0},
		"d": {10, 0},
	}
	for k, p := range pts {
		tr.Insert(geometry.BBox{MinX: p[0], MinY: p[1], MaxX: p[0], MaxY: p[1]}, k)
	}

	k := 2
	results := tr.Nearest(geometry.Point{X: 0, Y: 0}, &k, nil)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Payload)
	assert.Equal(t, "b", results[1].Payload)
	assert.LessOrEqual(t, results[0].DistanceM, results[1].DistanceM)
}

func TestNearestRadius(t *testing.T) {
	tr := NewDefault()
	pts := map[string][2]float64{
		"a": {0, 0},
		"b": {1, 0},
		"c": {3, 0},
		"d": {10, 0},
	}
	for k, p := range pts {
		tr.Insert(geometry.BBox{MinX: p[0], MinY: p[1], MaxX: p[0], MaxY: p[1]}, k)
	}

	radius := 200000.0
	results := tr.Nearest(geometry.Point{X: 0, Y: 0}, nil, &radius)
	keys := map[string]bool{}
	for _, r := range results {
		keys[r.Payload] = true
	}
	assert.True(t, keys["a"])
	assert.True(t, keys["b"])
	assert.False(t, keys["c"])
	assert.False(t, keys["d"])
}

func TestClear(t *testing.T) {
	tr := NewDefault()
	tr.Insert(bb(1), "a")
	tr.Clear()
	assert.Equal(t, 0, tr.Len())
	assert.Empty(t, tr.Search(geometry.BBox{MinX: -100, MinY: -100, MaxX: 100, MaxY: 100}))
}
