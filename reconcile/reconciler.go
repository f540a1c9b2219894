package reconcile

import "sync"

// Reconciler owns the rendered state of one table: the previous-state cache,
// the row order, and the first-load flag.
type Reconciler[T Entity] struct {
	schema Schema[T]
	view   View

	mu        sync.Mutex
	cache     *Cache[T]
	rows      []string
	firstLoad bool
	loaded    bool
}

// New builds a Reconciler rendering into view.
func New[T Entity](schema Schema[T], view View) *Reconciler[T] {
	return &Reconciler[T]{
		schema:    schema,
		view:      view,
		cache:     NewCache[T](),
		firstLoad: true,
	}
}

// Schema returns the table schema.
func (r *Reconciler[T]) Schema() Schema[T] {
	return r.schema
}

// Replace reconciles a full snapshot. Afterwards the rendered ids are exactly
// the snapshot's ids.
func (r *Reconciler[T]) Replace(snapshot []T) Plan {
	r.mu.Lock()
	defer r.mu.Unlock()
	plan := Diff(r.schema, r.cache, r.rows, snapshot, r.firstLoad, true)
	r.commitLocked(plan, snapshot)
	return plan
}

// Upsert reconciles a single-entity delta. Other rows are left alone.
func (r *Reconciler[T]) Upsert(entity T) Plan {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot := []T{entity}
	plan := Diff(r.schema, r.cache, r.rows, snapshot, r.firstLoad, false)
	r.commitLocked(plan, snapshot)
	return plan
}

// Remove drops the row for id, if rendered. It does not end first load.
func (r *Reconciler[T]) Remove(id string) Plan {
	r.mu.Lock()
	defer r.mu.Unlock()
	var plan Plan
	for _, row := range r.rows {
		if row == id {
			plan.Removed = []string{id}
			break
		}
	}
	r.cache.Delete(id)
	if len(plan.Removed) > 0 {
		r.rows = removeIDs(r.rows, plan.Removed)
		Apply(r.view, plan)
	}
	return plan
}

func (r *Reconciler[T]) commitLocked(plan Plan, snapshot []T) {
	r.rows = removeIDs(r.rows, plan.Removed)
	for _, id := range plan.Removed {
		r.cache.Delete(id)
	}
	for _, ins := range plan.Inserted {
		if ins.Position == Top {
			r.rows = append([]string{ins.ID}, r.rows...)
		} else {
			r.rows = append(r.rows, ins.ID)
		}
	}
	seen := make(map[string]struct{}, len(snapshot))
	for _, entity := range snapshot {
		id := entity.EntityID()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		r.cache.Put(entity)
	}
	Apply(r.view, plan)
	r.firstLoad = false
	r.loaded = true
}

// Rows returns rendered ids top to bottom.
func (r *Reconciler[T]) Rows() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.rows...)
}

// Len returns the number of rendered rows.
func (r *Reconciler[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

// Get returns the cached entity for id.
func (r *Reconciler[T]) Get(id string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.Get(id)
}

// Loaded reports whether at least one message has been reconciled.
func (r *Reconciler[T]) Loaded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loaded
}

func removeIDs(rows []string, ids []string) []string {
	if len(ids) == 0 {
		return rows
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	out := rows[:0]
	for _, id := range rows {
		if _, ok := drop[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
