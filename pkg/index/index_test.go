package index

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kass/spatio/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertSearch(t *testing.T) {
	ix := New(time.Second)
	ctx := context.Background()

	require.NoError(t, ix.Insert(ctx, geometry.BBox{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1}, "a"))
	n, err := ix.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	results, err := ix.Search(ctx, geometry.BBox{MinX: -1, MinY: -1, MaxX: 2, MaxY: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, results)
}

func TestCloneSharesState(t *testing.T) {
	ix := New(time.Second)
	ctx := context.Background()
	clone := ix.Clone()

	require.NoError(t, ix.Insert(ctx, geometry.BBox{MinX: 0, MinY: 0, MaxX: 0, MaxY: 0}, "a"))
	n, err := clone.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTimeoutDoesNotMutate(t *testing.T) {
	ix := New(10 * time.Millisecond)
	ctx := context.Background()
	require.NoError(t, ix.Insert(ctx, geometry.BBox{MinX: 0, MinY: 0, MaxX: 0, MaxY: 0}, "a"))

	ix.mu.Lock()
	defer ix.mu.Unlock()

	tight, cancel := context.WithTimeout(ctx, 5*time.Millisecond)
	defer cancel()
	err := ix.Insert(tight, geometry.BBox{MinX: 1, MinY: 1, MaxX: 1, MaxY: 1}, "b")
	assert.Error(t, err)
	var timeoutErr *TimeoutError
	assert.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, 1, ix.tree.Len())
}

func TestConcurrentReadersWriters(t *testing.T) {
	ix := New(time.Second)
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			x := float64(i)
			_ = ix.Insert(ctx, geometry.BBox{MinX: x, MinY: x, MaxX: x, MaxY: x}, "k")
			_, _ = ix.Search(ctx, geometry.BBox{MinX: -1000, MinY: -1000, MaxX: 1000, MaxY: 1000})
		}(i)
	}
	wg.Wait()
	n, err := ix.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, n)
}
