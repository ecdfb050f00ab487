package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kass/spatio/pkg/aof"
)

func intPtr(i int) *int             { return &i }
func floatPtr(f float64) *float64   { return &f }
func newTestDB(t *testing.T) *Database {
	t.Helper()
	return NewDatabase(nil, time.Second, zerolog.Nop())
}

const sfPoint = `{"type":"Point","coordinates":[-122.42,37.77]}`
const oaklandPoint = `{"type":"Point","coordinates":[-122.27,37.80]}`
const bayBBoxPolygon = `{"type":"Polygon","coordinates":[[[-123,37],[-123,38],[-122,38],[-122,37],[-123,37]]]}`

func TestSetGetDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	stored, err := db.Set(ctx, "fleet", "truck1", sfPoint)
	require.NoError(t, err)
	assert.True(t, stored)

	got, ok := db.Get("fleet", "truck1")
	require.True(t, ok)
	assert.JSONEq(t, sfPoint, got)

	_, ok = db.Get("fleet", "missing")
	assert.False(t, ok)

	removed, err := db.Delete(ctx, "fleet", "truck1")
	require.NoError(t, err)
	assert.True(t, removed)

	_, ok = db.Get("fleet", "truck1")
	assert.False(t, ok)

	removed, err = db.Delete(ctx, "fleet", "truck1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestSetRejectsInvalidGeoJSON(t *testing.T) {
	db := newTestDB(t)
	_, err := db.Set(context.Background(), "fleet", "truck1", `{"type":"Bogus"}`)
	assert.Error(t, err)
}

func TestDropAndKeys(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	_, err := db.Set(ctx, "fleet", "truck1", sfPoint)
	require.NoError(t, err)
	_, err = db.Set(ctx, "zones", "sf", bayBBoxPolygon)
	require.NoError(t, err)

	assert.Equal(t, []string{"fleet", "zones"}, db.Keys())

	assert.True(t, db.Drop("fleet"))
	assert.False(t, db.Drop("fleet"))
	assert.Equal(t, []string{"zones"}, db.Keys())
}

func TestIntersectsAndWithin(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	_, err := db.Set(ctx, "fleet", "truck-sf", sfPoint)
	require.NoError(t, err)
	_, err = db.Set(ctx, "fleet", "truck-oak", oaklandPoint)
	require.NoError(t, err)

	hits, err := db.Intersects(ctx, "fleet", bayBBoxPolygon)
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	within, err := db.Within(ctx, "fleet", bayBBoxPolygon)
	require.NoError(t, err)
	assert.Len(t, within, 2)

	hits, err = db.Intersects(ctx, "nonexistent", bayBBoxPolygon)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestNearby(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	_, err := db.Set(ctx, "fleet", "truck-sf", sfPoint)
	require.NoError(t, err)
	_, err = db.Set(ctx, "fleet", "truck-oak", oaklandPoint)
	require.NoError(t, err)

	results, err := db.Nearby(ctx, "fleet", -122.42, 37.77, intPtr(1), nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "truck-sf", results[0].Key)
	assert.InDelta(t, 0, results[0].DistanceM, 1)

	results, err = db.Nearby(ctx, "fleet", -122.42, 37.77, nil, floatPtr(1))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "truck-sf", results[0].Key)
}

func TestFlushAll(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	_, err := db.Set(ctx, "fleet", "truck1", sfPoint)
	require.NoError(t, err)
	_, err = db.Set(ctx, "zones", "sf", bayBBoxPolygon)
	require.NoError(t, err)

	n := db.FlushAll()
	assert.Equal(t, 2, n)
	assert.Empty(t, db.Keys())
}

func TestStats(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	_, err := db.Set(ctx, "fleet", "truck1", sfPoint)
	require.NoError(t, err)
	_, err = db.Delete(ctx, "fleet", "truck1")
	require.NoError(t, err)

	stats := db.Stats()
	assert.Equal(t, int64(2), stats.CommandsProcessed)
	assert.Equal(t, 1, stats.Collections)
	assert.Equal(t, 0, stats.Items)
	assert.GreaterOrEqual(t, stats.UptimeSeconds, 0.0)
}

func TestSetAppendsToAOFAndRecovers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spatio.aof")
	w, err := aof.OpenWriter(path, aof.SyncAlways, zerolog.Nop())
	require.NoError(t, err)

	db := NewDatabase(w, time.Second, zerolog.Nop())
	ctx := context.Background()
	_, err = db.Set(ctx, "fleet", "truck1", sfPoint)
	require.NoError(t, err)
	_, err = db.Set(ctx, "fleet", "truck2", oaklandPoint)
	require.NoError(t, err)
	removed, err := db.Delete(ctx, "fleet", "truck2")
	require.NoError(t, err)
	require.True(t, removed)
	require.NoError(t, w.Close())

	result, err := aof.Recover(path)
	require.NoError(t, err)
	require.Empty(t, result.Errors)
	require.Len(t, result.Commands, 3)

	replay := newTestDB(t)
	applied, errs := replay.ApplyRecovered(result.Commands)
	assert.Equal(t, 3, applied)
	assert.Empty(t, errs)

	got, ok := replay.Get("fleet", "truck1")
	require.True(t, ok)
	assert.JSONEq(t, sfPoint, got)

	_, ok = replay.Get("fleet", "truck2")
	assert.False(t, ok)

	assert.Equal(t, int64(0), replay.commandsProcessed.Load(), "recovery must not re-append or re-count as live commands")
}

func TestApplyRecoveredToleratesBadInsert(t *testing.T) {
	db := newTestDB(t)
	applied, errs := db.ApplyRecovered([]aof.Command{
		{Cmd: aof.KindInsert, Collection: "fleet", Key: "bad", GeoJSON: "not-geojson"},
		{Cmd: aof.KindInsert, Collection: "fleet", Key: "good", GeoJSON: sfPoint},
	})
	assert.Equal(t, 1, applied)
	assert.Len(t, errs, 1)

	_, ok := db.Get("fleet", "good")
	assert.True(t, ok)
}
