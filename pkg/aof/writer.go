package aof

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// SyncPolicy controls how aggressively the writer forces data to disk.
type SyncPolicy int

const (
	SyncAlways SyncPolicy = iota
	SyncEverySecond
	SyncNo
)

// flushThreshold is the "No" policy's ~1 MiB accumulated-write trigger.
const flushThreshold = 1 << 20

func (p SyncPolicy) String() string {
	switch p {
	case SyncAlways:
		return "always"
	case SyncEverySecond:
		return "everysec"
	case SyncNo:
		return "no"
	default:
		return "unknown"
	}
}

// ParseSyncPolicy parses the SPATIO_AOF_POLICY environment value.
func ParseSyncPolicy(s string) (SyncPolicy, error) {
	switch strings.ToLower(s) {
	case "always":
		return SyncAlways, nil
	case "everysec", "everysecond":
		return SyncEverySecond, nil
	case "no":
		return SyncNo, nil
	default:
		return 0, fmt.Errorf("unknown aof sync policy %q", s)
	}
}

// WriteError wraps an I/O failure encountered while appending. Per
// spec.md §7 it is logged but never rolls back an already-applied
// in-memory mutation.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string { return fmt.Sprintf("aof write failed: %v", e.Err) }
func (e *WriteError) Unwrap() error { return e.Err }

// Writer appends Commands to a line-delimited log file under one of
// the three sync policies described in spec.md §4.4.
type Writer struct {
	mu       sync.Mutex
	file     *os.File
	buf      *bufio.Writer
	policy   SyncPolicy
	lastSync time.Time
	pending  int
	log      zerolog.Logger
}

// OpenWriter opens path in append mode, creating it if absent.
func OpenWriter(path string, policy SyncPolicy, log zerolog.Logger) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open aof: %w", err)
	}
	return &Writer{
		file:     f,
		buf:      bufio.NewWriter(f),
		policy:   policy,
		lastSync: time.Now(),
		log:      log.With().Str("component", "aof").Logger(),
	}, nil
}

// Append serializes cmd as one JSON line and applies this writer's
// sync policy.
func (w *Writer) Append(cmd Command) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	line, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("encode aof command: %w", err)
	}
	line = append(line, '\n')

	if _, err := w.buf.Write(line); err != nil {
		w.log.Error().Err(err).Msg("aof append failed")
		return &WriteError{Err: err}
	}

	switch w.policy {
	case SyncAlways:
		if err := w.buf.Flush(); err != nil {
			w.log.Error().Err(err).Msg("aof flush failed")
			return &WriteError{Err: err}
		}
		if err := w.file.Sync(); err != nil {
			w.log.Error().Err(err).Msg("aof sync failed")
			return &WriteError{Err: err}
		}
	case SyncEverySecond:
		if err := w.buf.Flush(); err != nil {
			w.log.Error().Err(err).Msg("aof flush failed")
			return &WriteError{Err: err}
		}
		if time.Since(w.lastSync) >= time.Second {
			if err := w.file.Sync(); err != nil {
				w.log.Error().Err(err).Msg("aof sync failed")
				return &WriteError{Err: err}
			}
			w.lastSync = time.Now()
		}
	case SyncNo:
		w.pending += len(line)
		if w.pending >= flushThreshold {
			if err := w.buf.Flush(); err != nil {
				w.log.Error().Err(err).Msg("aof flush failed")
				return &WriteError{Err: err}
			}
			w.pending = 0
		}
	}
	return nil
}

// Close flushes any buffered bytes (without forcing an fsync) and
// closes the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	flushErr := w.buf.Flush()
	closeErr := w.file.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
