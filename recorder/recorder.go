// Package recorder persists a bounded number of raw stream payloads per
// stream to SQLite for offline debugging without slowing the live streams.
// The bound covers the database file, not a single run.
package recorder

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"dockdash/stream"

	_ "modernc.org/sqlite"
)

const preflightTimeout = 2 * time.Second

// Recorder persists a limited number of messages per stream into SQLite.
type Recorder struct {
	db             *sql.DB
	perStreamLimit int
	mu             sync.Mutex
	perStreamCount map[string]int
	closed         bool
	pending        sync.WaitGroup
}

// New opens (or creates) the SQLite database at path and ensures the schema
// exists. A database that fails its integrity check is moved aside first.
func New(path string, perStreamLimit int) (*Recorder, error) {
	if perStreamLimit <= 0 {
		return nil, errors.New("recorder: per-stream limit must be > 0")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("recorder: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("recorder: ensure dir: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		res, err := preflight(path, preflightTimeout, log.Printf)
		if err != nil {
			return nil, err
		}
		if res.Quarantined {
			log.Printf("Recorder: moved unreadable database to %s", res.QuarantinePath)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("recorder: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("recorder: init schema: %w", err)
	}
	counts, err := storedCounts(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("recorder: load counts: %w", err)
	}
	return &Recorder{
		db:             db,
		perStreamLimit: perStreamLimit,
		perStreamCount: counts,
	}, nil
}

// storedCounts seeds the per-stream limit from rows left by earlier runs.
func storedCounts(db *sql.DB) (map[string]int, error) {
	rows, err := db.Query(`SELECT stream, COUNT(*) FROM stream_records GROUP BY stream`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		counts[name] = n
	}
	return counts, rows.Err()
}

func initSchema(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS stream_records (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    stream TEXT NOT NULL,
    event TEXT,
    received_at INTEGER NOT NULL,
    payload BLOB
);
CREATE INDEX IF NOT EXISTS stream_records_stream ON stream_records(stream, received_at);`
	_, err := db.Exec(schema)
	return err
}

// Close waits for queued inserts and closes the underlying database.
func (r *Recorder) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()
	r.pending.Wait()
	return r.db.Close()
}

// Record stores msg if its stream has not reached the limit. The insert runs
// in the background.
func (r *Recorder) Record(msg stream.Message) {
	if r == nil || r.db == nil {
		return
	}
	name := strings.TrimSpace(msg.Stream)
	if name == "" {
		name = "unknown"
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	count := r.perStreamCount[name]
	if count >= r.perStreamLimit {
		r.mu.Unlock()
		return
	}
	r.perStreamCount[name] = count + 1
	r.pending.Add(1)
	r.mu.Unlock()

	payload := append([]byte(nil), msg.Data...)
	receivedAt := msg.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}
	go r.insert(name, msg.Event, receivedAt, payload)
}

func (r *Recorder) insert(name, event string, receivedAt time.Time, payload []byte) {
	defer r.pending.Done()
	_, err := r.db.Exec(`
INSERT INTO stream_records (stream, event, received_at, payload) VALUES (?, ?, ?, ?)`,
		name,
		event,
		receivedAt.UTC().UnixMilli(),
		payload,
	)
	if err != nil {
		log.Printf("Recorder: failed to insert %s payload: %v", name, err)
	}
}

// Flush blocks until every queued insert has finished.
func (r *Recorder) Flush() {
	if r == nil {
		return
	}
	r.pending.Wait()
}

// Count returns the number of stored payloads for name.
func (r *Recorder) Count(name string) (int, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("recorder: not open")
	}
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM stream_records WHERE stream = ?`, name).Scan(&n); err != nil {
		return 0, fmt.Errorf("recorder: count %s: %w", name, err)
	}
	return n, nil
}

// Latest returns the most recently stored payload for name.
func (r *Recorder) Latest(name string) ([]byte, bool, error) {
	if r == nil || r.db == nil {
		return nil, false, errors.New("recorder: not open")
	}
	var payload []byte
	err := r.db.QueryRow(`SELECT payload FROM stream_records WHERE stream = ? ORDER BY id DESC LIMIT 1`, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("recorder: latest %s: %w", name, err)
	}
	return payload, true, nil
}
