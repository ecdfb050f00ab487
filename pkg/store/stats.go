package store

import "time"

// ServerStats backs the STATS command added in SPEC_FULL.md §4.6.
type ServerStats struct {
	CommandsProcessed int64
	Collections       int
	Items             int
	UptimeSeconds     float64
}

// Stats snapshots counters across every collection. Collection item
// counts are read under each collection's own lock; the snapshot is
// not a single atomic point-in-time view across collections, which is
// acceptable for a diagnostics command.
func (db *Database) Stats() ServerStats {
	db.mu.RLock()
	cols := make([]*collection, 0, len(db.collections))
	for _, c := range db.collections {
		cols = append(cols, c)
	}
	db.mu.RUnlock()

	items := 0
	for _, c := range cols {
		items += c.len()
	}

	return ServerStats{
		CommandsProcessed: db.commandsProcessed.Load(),
		Collections:       len(cols),
		Items:             items,
		UptimeSeconds:     time.Since(db.startedAt).Seconds(),
	}
}
