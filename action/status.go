package action

import (
	"strconv"
	"sync"

	"dockdash/reconcile"
)

// Status is one transient progress message, such as a running pull.
type Status struct {
	ID   string
	Tone reconcile.Tone
	Text string
}

// StatusBoard keeps status messages in creation order. Each message has its
// own id so concurrent pulls of the same image do not collide.
type StatusBoard struct {
	mu       sync.Mutex
	seq      uint64
	items    []Status
	onChange func([]Status)
}

// NewStatusBoard calls onChange (if non-nil) with the full list after every
// change, outside the board's lock.
func NewStatusBoard(onChange func([]Status)) *StatusBoard {
	return &StatusBoard{onChange: onChange}
}

// Add appends a message and returns its id.
func (b *StatusBoard) Add(tone reconcile.Tone, text string) string {
	b.mu.Lock()
	b.seq++
	id := "pull-" + strconv.FormatUint(b.seq, 10)
	b.items = append(b.items, Status{ID: id, Tone: tone, Text: text})
	snapshot := b.snapshotLocked()
	b.mu.Unlock()
	b.notify(snapshot)
	return id
}

// Update recolors and relabels the message with id.
func (b *StatusBoard) Update(id string, tone reconcile.Tone, text string) bool {
	b.mu.Lock()
	found := false
	for i := range b.items {
		if b.items[i].ID == id {
			b.items[i].Tone = tone
			b.items[i].Text = text
			found = true
			break
		}
	}
	snapshot := b.snapshotLocked()
	b.mu.Unlock()
	if found {
		b.notify(snapshot)
	}
	return found
}

// Remove drops the message with id.
func (b *StatusBoard) Remove(id string) bool {
	b.mu.Lock()
	found := false
	for i := range b.items {
		if b.items[i].ID == id {
			b.items = append(b.items[:i], b.items[i+1:]...)
			found = true
			break
		}
	}
	snapshot := b.snapshotLocked()
	b.mu.Unlock()
	if found {
		b.notify(snapshot)
	}
	return found
}

// List returns the messages in creation order.
func (b *StatusBoard) List() []Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

// Get returns the message with id.
func (b *StatusBoard) Get(id string) (Status, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, item := range b.items {
		if item.ID == id {
			return item, true
		}
	}
	return Status{}, false
}

func (b *StatusBoard) snapshotLocked() []Status {
	return append([]Status(nil), b.items...)
}

func (b *StatusBoard) notify(items []Status) {
	if b.onChange != nil {
		b.onChange(items)
	}
}
