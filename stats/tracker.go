// Package stats tracks per-stream and per-action counters plus reconciliation
// totals for the dashboard footer and periodic console output.
package stats

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"dockdash/reconcile"

	"github.com/dustin/go-humanize"
)

// Tracker counts stream traffic, reconciliation work and action outcomes.
type Tracker struct {
	// counters live in sync.Map + atomic.Uint64 so per-message increments don't fight over a mutex
	messageCounts   sync.Map // stream -> *atomic.Uint64
	reconnectCounts sync.Map // stream -> *atomic.Uint64
	decodeFailures  sync.Map // stream -> *atomic.Uint64
	actionCounts    sync.Map // action -> *atomic.Uint64
	actionFailures  sync.Map // action -> *atomic.Uint64
	start           atomic.Int64
	bytesReceived   atomic.Uint64
	rowsInserted    atomic.Uint64
	rowsRemoved     atomic.Uint64
	cellsUpdated    atomic.Uint64
	emptyPlans      atomic.Uint64
}

// NewTracker creates a new stats tracker
func NewTracker() *Tracker {
	t := &Tracker{}
	t.start.Store(time.Now().UnixNano())
	return t
}

// RecordMessage counts one stream message of size bytes.
func (t *Tracker) RecordMessage(stream string, size int) {
	incrementCounter(&t.messageCounts, stream)
	if size > 0 {
		t.bytesReceived.Add(uint64(size))
	}
}

// RecordReconnect counts one scheduled reconnect of stream.
func (t *Tracker) RecordReconnect(stream string) {
	incrementCounter(&t.reconnectCounts, stream)
}

// RecordDecodeFailure counts one dropped, malformed payload.
func (t *Tracker) RecordDecodeFailure(stream string) {
	incrementCounter(&t.decodeFailures, stream)
}

// RecordPlan adds the work done by one reconciliation.
func (t *Tracker) RecordPlan(plan reconcile.Plan) {
	if plan.Empty() {
		t.emptyPlans.Add(1)
		return
	}
	t.rowsInserted.Add(uint64(len(plan.Inserted)))
	t.rowsRemoved.Add(uint64(len(plan.Removed)))
	t.cellsUpdated.Add(uint64(len(plan.Updates)))
}

// RecordAction counts one completed request; failed marks a non-nil error.
func (t *Tracker) RecordAction(action string, failed bool) {
	incrementCounter(&t.actionCounts, action)
	if failed {
		incrementCounter(&t.actionFailures, action)
	}
}

// GetMessageCounts returns a copy of per-stream message counts.
func (t *Tracker) GetMessageCounts() map[string]uint64 {
	return copyCounts(&t.messageCounts)
}

// GetReconnectCounts returns a copy of per-stream reconnect counts.
func (t *Tracker) GetReconnectCounts() map[string]uint64 {
	return copyCounts(&t.reconnectCounts)
}

// GetDecodeFailures returns a copy of per-stream decode failure counts.
func (t *Tracker) GetDecodeFailures() map[string]uint64 {
	return copyCounts(&t.decodeFailures)
}

// GetActionCounts returns a copy of per-action request counts.
func (t *Tracker) GetActionCounts() map[string]uint64 {
	return copyCounts(&t.actionCounts)
}

// GetActionFailures returns a copy of per-action failure counts.
func (t *Tracker) GetActionFailures() map[string]uint64 {
	return copyCounts(&t.actionFailures)
}

// GetTotal returns the total message count across all streams.
func (t *Tracker) GetTotal() uint64 {
	var total uint64
	t.messageCounts.Range(func(_, value any) bool {
		total += value.(*atomic.Uint64).Load()
		return true
	})
	return total
}

// BytesReceived returns the cumulative payload bytes.
func (t *Tracker) BytesReceived() uint64 {
	return t.bytesReceived.Load()
}

// RowsInserted returns the cumulative number of inserted rows.
func (t *Tracker) RowsInserted() uint64 {
	return t.rowsInserted.Load()
}

// RowsRemoved returns the cumulative number of removed rows.
func (t *Tracker) RowsRemoved() uint64 {
	return t.rowsRemoved.Load()
}

// CellsUpdated returns the cumulative number of rewritten cells.
func (t *Tracker) CellsUpdated() uint64 {
	return t.cellsUpdated.Load()
}

// EmptyPlans returns how many messages changed nothing on screen.
func (t *Tracker) EmptyPlans() uint64 {
	return t.emptyPlans.Load()
}

// GetUptime returns how long the tracker has been running
func (t *Tracker) GetUptime() time.Duration {
	start := t.start.Load()
	return time.Since(time.Unix(0, start))
}

// Reset resets all counters
func (t *Tracker) Reset() {
	for _, m := range []*sync.Map{&t.messageCounts, &t.reconnectCounts, &t.decodeFailures, &t.actionCounts, &t.actionFailures} {
		m.Range(func(key, _ any) bool {
			m.Delete(key)
			return true
		})
	}
	t.bytesReceived.Store(0)
	t.rowsInserted.Store(0)
	t.rowsRemoved.Store(0)
	t.cellsUpdated.Store(0)
	t.emptyPlans.Store(0)
	t.start.Store(time.Now().UnixNano())
}

// SnapshotLines returns human-readable stats ready for console display.
func (t *Tracker) SnapshotLines() []string {
	lines := make([]string, 0, 5)
	lines = append(lines, fmt.Sprintf("Messages: %d (%s) in %s",
		t.GetTotal(), humanize.Bytes(t.BytesReceived()), t.GetUptime().Truncate(time.Second)))
	lines = append(lines, formatMapCounts("Messages by stream", &t.messageCounts))
	lines = append(lines, formatMapCounts("Reconnects", &t.reconnectCounts))
	lines = append(lines, formatMapCounts("Decode failures", &t.decodeFailures))
	lines = append(lines, fmt.Sprintf("Rows: +%s -%s, cells updated %s, unchanged messages %s",
		humanize.Comma(int64(t.RowsInserted())), humanize.Comma(int64(t.RowsRemoved())),
		humanize.Comma(int64(t.CellsUpdated())), humanize.Comma(int64(t.EmptyPlans()))))
	lines = append(lines, formatMapCounts("Actions", &t.actionCounts)+" | "+formatMapCounts("failed", &t.actionFailures))
	return lines
}

// StatusLine is the one-line summary shown in the dashboard footer.
func (t *Tracker) StatusLine() string {
	var reconnects uint64
	t.reconnectCounts.Range(func(_, value any) bool {
		reconnects += value.(*atomic.Uint64).Load()
		return true
	})
	return fmt.Sprintf("msgs %s | %s | reconnects %d | cells %s",
		humanize.Comma(int64(t.GetTotal())), humanize.Bytes(t.BytesReceived()), reconnects,
		humanize.Comma(int64(t.CellsUpdated())))
}

func copyCounts(m *sync.Map) map[string]uint64 {
	counts := make(map[string]uint64)
	m.Range(func(key, value any) bool {
		counts[key.(string)] = value.(*atomic.Uint64).Load()
		return true
	})
	return counts
}

func formatMapCounts(label string, counts *sync.Map) string {
	snapshot := copyCounts(counts)
	keys := make([]string, 0, len(snapshot))
	for key := range snapshot {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var builder strings.Builder
	builder.WriteString(label)
	builder.WriteString(": ")
	for i, key := range keys {
		if i > 0 {
			builder.WriteString(", ")
		}
		fmt.Fprintf(&builder, "%s=%d", key, snapshot[key])
	}
	if len(keys) == 0 {
		builder.WriteString("(none)")
	}
	return builder.String()
}

func incrementCounter(m *sync.Map, key string) {
	if strings.TrimSpace(key) == "" {
		return
	}
	if value, ok := m.Load(key); ok {
		value.(*atomic.Uint64).Add(1)
		return
	}
	counter := &atomic.Uint64{}
	actual, loaded := m.LoadOrStore(key, counter)
	if loaded {
		actual.(*atomic.Uint64).Add(1)
		return
	}
	counter.Add(1)
}
