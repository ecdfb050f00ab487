// Package store orchestrates named collections of geo-tagged items on
// top of pkg/index, applying each mutation to in-memory state before
// appending it to the append-only log, and replaying that log on
// startup.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/kass/spatio/pkg/aof"
	"github.com/kass/spatio/pkg/geometry"
)

// Database is the top-level registry of collections. Its own lock
// guards the collections map; each collection then guards its own
// items and index.
type Database struct {
	mu          sync.RWMutex
	collections map[string]*collection
	aofWriter   *aof.Writer
	timeout     time.Duration
	log         zerolog.Logger

	commandsProcessed atomic.Int64
	startedAt         time.Time
}

// NewDatabase constructs an empty Database. aofWriter may be nil,
// matching SPATIO_AOF_ENABLED=false: mutations then apply only to
// memory and nothing is durable across restarts.
func NewDatabase(aofWriter *aof.Writer, timeout time.Duration, log zerolog.Logger) *Database {
	return &Database{
		collections: make(map[string]*collection),
		aofWriter:   aofWriter,
		timeout:     timeout,
		log:         log.With().Str("component", "store").Logger(),
		startedAt:   time.Now(),
	}
}

func (db *Database) getCollection(name string) (*collection, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	c, ok := db.collections[name]
	return c, ok
}

func (db *Database) getOrCreateCollection(name string) *collection {
	db.mu.RLock()
	c, ok := db.collections[name]
	db.mu.RUnlock()
	if ok {
		return c
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	if c, ok := db.collections[name]; ok {
		return c
	}
	c = newCollection(db.timeout)
	db.collections[name] = c
	return c
}

func (db *Database) appendAOF(cmd aof.Command) {
	if db.aofWriter == nil {
		return
	}
	cmd.TS = uint64(time.Now().UnixNano())
	if err := db.aofWriter.Append(cmd); err != nil {
		db.log.Warn().Err(err).Str("collection", cmd.Collection).Str("cmd", string(cmd.Cmd)).
			Msg("aof append failed, in-memory state already applied")
	}
}

// Set parses geojsonText, stores it under collection/key, and appends
// an INSERT record. In-memory state is mutated before the log is
// written, per spec.md §4.4's apply-then-log ordering.
func (db *Database) Set(ctx context.Context, collection, key, geojsonText string) (bool, error) {
	obj, err := geometry.ParseGeoJSON([]byte(geojsonText))
	if err != nil {
		return false, err
	}
	c := db.getOrCreateCollection(collection)
	stored, err := c.set(ctx, key, geojsonText, obj)
	if err != nil {
		return false, err
	}
	db.appendAOF(aof.Command{Cmd: aof.KindInsert, Collection: collection, Key: key, GeoJSON: geojsonText})
	db.commandsProcessed.Add(1)
	return stored, nil
}

// Get returns the raw GeoJSON text stored under collection/key.
func (db *Database) Get(collection, key string) (string, bool) {
	c, ok := db.getCollection(collection)
	if !ok {
		return "", false
	}
	return c.get(key)
}

// Delete removes key from collection, appending a DELETE record if
// anything was actually removed.
func (db *Database) Delete(ctx context.Context, collection, key string) (bool, error) {
	c, ok := db.getCollection(collection)
	if !ok {
		return false, nil
	}
	removed, err := c.delete(ctx, key)
	if err != nil {
		return false, err
	}
	if removed {
		db.appendAOF(aof.Command{Cmd: aof.KindDelete, Collection: collection, Key: key})
	}
	db.commandsProcessed.Add(1)
	return removed, nil
}

// Drop removes collection entirely, appending a DROP record if it
// existed.
func (db *Database) Drop(collection string) bool {
	db.mu.Lock()
	_, existed := db.collections[collection]
	delete(db.collections, collection)
	db.mu.Unlock()

	if existed {
		db.appendAOF(aof.Command{Cmd: aof.KindDrop, Collection: collection})
	}
	db.commandsProcessed.Add(1)
	return existed
}

// Keys lists collection names in lexical order.
func (db *Database) Keys() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make([]string, 0, len(db.collections))
	for name := range db.collections {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Intersects returns every item in collection whose geometry
// intersects the geometry described by queryGeoJSON.
func (db *Database) Intersects(ctx context.Context, collection, queryGeoJSON string) ([]Pair, error) {
	query, err := geometry.ParseGeoJSON([]byte(queryGeoJSON))
	if err != nil {
		return nil, err
	}
	c, ok := db.getCollection(collection)
	if !ok {
		return nil, nil
	}
	return c.intersects(ctx, query)
}

// Within returns every item in collection fully contained by the
// region described by regionGeoJSON.
func (db *Database) Within(ctx context.Context, collection, regionGeoJSON string) ([]Pair, error) {
	region, err := geometry.ParseGeoJSON([]byte(regionGeoJSON))
	if err != nil {
		return nil, err
	}
	c, ok := db.getCollection(collection)
	if !ok {
		return nil, nil
	}
	return c.within(ctx, region)
}

// Nearby returns items in collection nearest to (lon, lat), bounded
// by k and/or radiusM (either or both may be nil).
func (db *Database) Nearby(ctx context.Context, collection string, lon, lat float64, k *int, radiusM *float64) ([]NearbyResult, error) {
	c, ok := db.getCollection(collection)
	if !ok {
		return nil, nil
	}
	return c.nearby(ctx, geometry.Point{X: lon, Y: lat}, k, radiusM)
}

// FlushAll drops every collection, appending one DROP record per
// collection dropped. It supplements the commands named in spec.md
// §4.6 per SPEC_FULL.md §4.5.
func (db *Database) FlushAll() int {
	db.mu.Lock()
	names := make([]string, 0, len(db.collections))
	for name := range db.collections {
		names = append(names, name)
	}
	db.collections = make(map[string]*collection)
	db.mu.Unlock()

	sort.Strings(names)
	for _, name := range names {
		db.appendAOF(aof.Command{Cmd: aof.KindDrop, Collection: name})
	}
	db.commandsProcessed.Add(1)
	return len(names)
}

// ApplyRecovered replays commands recovered from the append-only log
// without re-appending them, per spec.md §4.4's startup recovery
// requirement. It returns the number of commands successfully
// applied and any errors encountered while applying the rest.
func (db *Database) ApplyRecovered(commands []aof.Command) (applied int, errs []error) {
	for _, cmd := range commands {
		switch cmd.Cmd {
		case aof.KindInsert:
			obj, err := geometry.ParseGeoJSON([]byte(cmd.GeoJSON))
			if err != nil {
				errs = append(errs, fmt.Errorf("replay insert %s/%s: %w", cmd.Collection, cmd.Key, err))
				continue
			}
			c := db.getOrCreateCollection(cmd.Collection)
			if _, err := c.set(context.Background(), cmd.Key, cmd.GeoJSON, obj); err != nil {
				errs = append(errs, fmt.Errorf("replay insert %s/%s: %w", cmd.Collection, cmd.Key, err))
				continue
			}
		case aof.KindDelete:
			c, ok := db.getCollection(cmd.Collection)
			if !ok {
				continue
			}
			if _, err := c.delete(context.Background(), cmd.Key); err != nil {
				errs = append(errs, fmt.Errorf("replay delete %s/%s: %w", cmd.Collection, cmd.Key, err))
				continue
			}
		case aof.KindDrop:
			db.mu.Lock()
			delete(db.collections, cmd.Collection)
			db.mu.Unlock()
		default:
			errs = append(errs, fmt.Errorf("replay: unknown command kind %q", cmd.Cmd))
			continue
		}
		applied++
	}
	return applied, errs
}
