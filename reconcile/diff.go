package reconcile

// Diff computes the mutations that bring the rendered rows in line with
// snapshot. It reads cache and rendered but changes neither.
//
//   - With prune set, every rendered id absent from snapshot is removed, in
//     rendered order. Per-entity deltas pass prune=false.
//   - Ids with no rendered row are inserted at the bottom while firstLoad is
//     set and at the top afterwards; every column of a new row is written.
//   - For existing rows only columns whose tracked attribute differs from the
//     cached value are written.
//
// A repeated id in snapshot is processed once, at its first position.
func Diff[T Entity](schema Schema[T], cache *Cache[T], rendered []string, snapshot []T, firstLoad, prune bool) Plan {
	var plan Plan

	incoming := make(map[string]struct{}, len(snapshot))
	for _, entity := range snapshot {
		incoming[entity.EntityID()] = struct{}{}
	}
	present := make(map[string]struct{}, len(rendered))
	for _, id := range rendered {
		present[id] = struct{}{}
		if !prune {
			continue
		}
		if _, ok := incoming[id]; !ok {
			plan.Removed = append(plan.Removed, id)
		}
	}

	pos := Top
	if firstLoad {
		pos = Bottom
	}
	seen := make(map[string]struct{}, len(snapshot))
	for _, entity := range snapshot {
		id := entity.EntityID()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		_, exists := present[id]
		if !exists {
			plan.Inserted = append(plan.Inserted, Insert{ID: id, Position: pos})
		}
		prev, cached := cache.Get(id)
		for i, col := range schema.Columns {
			if exists && cached && Equal(prev.Attr(col.Attr), entity.Attr(col.Attr)) {
				continue
			}
			plan.Updates = append(plan.Updates, Update{
				ID:     id,
				Column: i,
				Attr:   col.Attr,
				Cell:   col.Render(entity),
			})
		}
	}
	return plan
}

// Apply performs plan against view: removals, then inserts, then cell writes.
func Apply(view View, plan Plan) {
	if view == nil {
		return
	}
	for _, id := range plan.Removed {
		view.RemoveRow(id)
	}
	for _, ins := range plan.Inserted {
		view.InsertRow(ins.ID, ins.Position)
	}
	for _, up := range plan.Updates {
		view.SetCell(up.ID, up.Column, up.Cell)
	}
}
