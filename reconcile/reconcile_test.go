package reconcile

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

type port struct {
	Private int
	Public  int
}

type box struct {
	ID    string
	State string
	Ports []port
}

func (b box) EntityID() string { return b.ID }

func (b box) Attr(name string) any {
	switch name {
	case "ID":
		return b.ID
	case "State":
		return b.State
	case "Ports":
		return b.Ports
	}
	return nil
}

var boxSchema = Schema[box]{
	Table: "boxes",
	Columns: []Column[box]{
		{Attr: "ID", Header: "ID", Render: func(b box) Cell { return Cell{Text: b.ID} }},
		{Attr: "State", Header: "State", Render: func(b box) Cell { return Cell{Text: b.State, Tone: ToneSuccess, Badge: true} }},
		{Attr: "Ports", Header: "Ports", Render: func(b box) Cell {
			parts := make([]string, 0, len(b.Ports))
			for _, p := range b.Ports {
				parts = append(parts, fmt.Sprintf("%d:%d", p.Public, p.Private))
			}
			return Cell{Text: strings.Join(parts, ", ")}
		}},
	},
}

// recordingView mirrors mutations into an ordered row list and logs each op.
type recordingView struct {
	rows  []string
	cells map[string][]string
	ops   []string
}

func newRecordingView() *recordingView {
	return &recordingView{cells: make(map[string][]string)}
}

func (v *recordingView) RemoveRow(id string) {
	v.ops = append(v.ops, "remove "+id)
	out := v.rows[:0]
	for _, row := range v.rows {
		if row != id {
			out = append(out, row)
		}
	}
	v.rows = out
	delete(v.cells, id)
}

func (v *recordingView) InsertRow(id string, pos Position) {
	v.ops = append(v.ops, fmt.Sprintf("insert %s %d", id, pos))
	if pos == Top {
		v.rows = append([]string{id}, v.rows...)
	} else {
		v.rows = append(v.rows, id)
	}
	v.cells[id] = make([]string, len(boxSchema.Columns))
}

func (v *recordingView) SetCell(id string, column int, cell Cell) {
	v.ops = append(v.ops, fmt.Sprintf("set %s %d %s", id, column, cell.Text))
	v.cells[id][column] = cell.Text
}

func (v *recordingView) reset() { v.ops = nil }

func TestFirstSnapshotAppendsInOrder(t *testing.T) {
	view := newRecordingView()
	r := New(boxSchema, view)

	plan := r.Replace([]box{{ID: "a", State: "running"}, {ID: "b", State: "exited"}})

	if len(plan.Removed) != 0 {
		t.Fatalf("expected no removals on first load, got %v", plan.Removed)
	}
	if want := []Insert{{ID: "a", Position: Bottom}, {ID: "b", Position: Bottom}}; !reflect.DeepEqual(plan.Inserted, want) {
		t.Fatalf("unexpected inserts %v", plan.Inserted)
	}
	if len(plan.Updates) != 6 {
		t.Fatalf("expected every cell written for new rows, got %d updates", len(plan.Updates))
	}
	if !reflect.DeepEqual(view.rows, []string{"a", "b"}) {
		t.Fatalf("unexpected rendered order %v", view.rows)
	}
	if !reflect.DeepEqual(r.Rows(), view.rows) {
		t.Fatalf("reconciler rows %v differ from view %v", r.Rows(), view.rows)
	}
	if !r.Loaded() {
		t.Fatalf("expected Loaded after first message")
	}
}

func TestLaterSnapshotRemovesPrependsAndPatches(t *testing.T) {
	view := newRecordingView()
	r := New(boxSchema, view)
	r.Replace([]box{{ID: "a", State: "running"}, {ID: "b", State: "running"}})
	view.reset()

	plan := r.Replace([]box{{ID: "b", State: "exited"}, {ID: "c", State: "running"}, {ID: "d", State: "paused"}})

	if !reflect.DeepEqual(plan.Removed, []string{"a"}) {
		t.Fatalf("expected a removed, got %v", plan.Removed)
	}
	if want := []Insert{{ID: "c", Position: Top}, {ID: "d", Position: Top}}; !reflect.DeepEqual(plan.Inserted, want) {
		t.Fatalf("unexpected inserts %v", plan.Inserted)
	}
	var bUpdates []string
	for _, up := range plan.Updates {
		if up.ID == "b" {
			bUpdates = append(bUpdates, up.Attr)
		}
	}
	if !reflect.DeepEqual(bUpdates, []string{"State"}) {
		t.Fatalf("expected only State patched for b, got %v", bUpdates)
	}
	if !reflect.DeepEqual(view.rows, []string{"d", "c", "b"}) {
		t.Fatalf("unexpected rendered order %v", view.rows)
	}
	if !reflect.DeepEqual(r.Rows(), view.rows) {
		t.Fatalf("reconciler rows %v differ from view %v", r.Rows(), view.rows)
	}
	if _, ok := r.Get("a"); ok {
		t.Fatalf("expected removed id evicted from cache")
	}
	if got, _ := r.Get("b"); got.State != "exited" {
		t.Fatalf("expected cache replaced with latest b, got %+v", got)
	}
}

func TestIdenticalSnapshotIsIdempotent(t *testing.T) {
	view := newRecordingView()
	r := New(boxSchema, view)
	snapshot := []box{
		{ID: "a", State: "running", Ports: []port{{Private: 80, Public: 8080}}},
		{ID: "b", State: "exited"},
	}
	r.Replace(snapshot)
	view.reset()

	resent := []box{
		{ID: "a", State: "running", Ports: []port{{Private: 80, Public: 8080}}},
		{ID: "b", State: "exited"},
	}
	plan := r.Replace(resent)
	if !plan.Empty() {
		t.Fatalf("expected empty plan for identical snapshot, got %+v", plan)
	}
	if len(view.ops) != 0 {
		t.Fatalf("expected no view operations, got %v", view.ops)
	}
}

func TestNestedAttributeChangeIsDetected(t *testing.T) {
	view := newRecordingView()
	r := New(boxSchema, view)
	r.Replace([]box{{ID: "a", State: "running", Ports: []port{{Private: 80, Public: 8080}}}})

	plan := r.Replace([]box{{ID: "a", State: "running", Ports: []port{{Private: 80, Public: 9090}}}})
	if len(plan.Updates) != 1 || plan.Updates[0].Attr != "Ports" || plan.Updates[0].Cell.Text != "9090:80" {
		t.Fatalf("expected a single Ports update, got %+v", plan.Updates)
	}
	if view.cells["a"][2] != "9090:80" {
		t.Fatalf("expected view cell patched, got %q", view.cells["a"][2])
	}
}

func TestEmptySnapshotClearsTable(t *testing.T) {
	view := newRecordingView()
	r := New(boxSchema, view)
	r.Replace([]box{{ID: "a"}, {ID: "b"}})

	plan := r.Replace(nil)
	if !reflect.DeepEqual(plan.Removed, []string{"a", "b"}) {
		t.Fatalf("expected all rows removed, got %v", plan.Removed)
	}
	if len(view.rows) != 0 || r.Len() != 0 {
		t.Fatalf("expected empty table, view=%v len=%d", view.rows, r.Len())
	}
}

func TestUpsertLeavesOtherRowsAndRemoveDeletes(t *testing.T) {
	view := newRecordingView()
	r := New(boxSchema, view)

	first := r.Upsert(box{ID: "a", State: "running"})
	if first.Inserted[0].Position != Bottom {
		t.Fatalf("expected first delta appended, got %v", first.Inserted)
	}
	second := r.Upsert(box{ID: "b", State: "running"})
	if second.Inserted[0].Position != Top {
		t.Fatalf("expected later delta prepended, got %v", second.Inserted)
	}
	if len(second.Removed) != 0 {
		t.Fatalf("per-entity delta must not remove rows, got %v", second.Removed)
	}
	if !reflect.DeepEqual(view.rows, []string{"b", "a"}) {
		t.Fatalf("unexpected rows %v", view.rows)
	}

	patch := r.Upsert(box{ID: "a", State: "paused"})
	if len(patch.Inserted) != 0 || len(patch.Updates) != 1 {
		t.Fatalf("expected single cell patch, got %+v", patch)
	}

	removed := r.Remove("a")
	if !reflect.DeepEqual(removed.Removed, []string{"a"}) || !reflect.DeepEqual(view.rows, []string{"b"}) {
		t.Fatalf("expected a removed, plan=%v rows=%v", removed.Removed, view.rows)
	}
	if again := r.Remove("a"); !again.Empty() {
		t.Fatalf("expected removing an absent id to be a no-op, got %+v", again)
	}
}

func TestReappearingIDIsFullyRendered(t *testing.T) {
	view := newRecordingView()
	r := New(boxSchema, view)
	r.Replace([]box{{ID: "a", State: "running"}})
	r.Replace(nil)

	plan := r.Replace([]box{{ID: "a", State: "running"}})
	if len(plan.Inserted) != 1 || len(plan.Updates) != len(boxSchema.Columns) {
		t.Fatalf("expected re-inserted row with every cell, got %+v", plan)
	}
}

func TestDiffDoesNotMutateInputs(t *testing.T) {
	cache := NewCache[box]()
	cache.Put(box{ID: "a", State: "running"})
	rendered := []string{"a"}

	plan := Diff(boxSchema, cache, rendered, []box{{ID: "a", State: "exited"}, {ID: "b"}}, false, true)

	if got, _ := cache.Get("a"); got.State != "running" {
		t.Fatalf("Diff mutated the cache: %+v", got)
	}
	if cache.Len() != 1 || len(rendered) != 1 {
		t.Fatalf("Diff mutated its inputs")
	}
	if len(plan.Inserted) != 1 || plan.Inserted[0].ID != "b" {
		t.Fatalf("unexpected inserts %v", plan.Inserted)
	}
}

func TestDiffDuplicateIDsProcessedOnce(t *testing.T) {
	plan := Diff(boxSchema, NewCache[box](), nil, []box{{ID: "a", State: "one"}, {ID: "a", State: "two"}}, true, true)
	if len(plan.Inserted) != 1 {
		t.Fatalf("expected one insert for duplicated id, got %v", plan.Inserted)
	}
	if plan.Updates[1].Cell.Text != "one" {
		t.Fatalf("expected first occurrence to win, got %q", plan.Updates[1].Cell.Text)
	}
}

func TestEqual(t *testing.T) {
	cases := []struct {
		a, b any
		want bool
	}{
		{"x", "x", true},
		{"x", "y", false},
		{int64(5), int64(5), true},
		{1.5, 1.5, true},
		{1.5, 2.5, false},
		{nil, nil, true},
		{nil, "x", false},
		{[]string{"/web"}, []string{"/web"}, true},
		{[]string{"/web"}, []string{"/db"}, false},
		{[]port{{80, 8080}}, []port{{80, 8080}}, true},
		{[]port{{80, 8080}}, nil, false},
		{map[string]int{"a": 1, "b": 2}, map[string]int{"b": 2, "a": 1}, true},
	}
	for i, tc := range cases {
		if got := Equal(tc.a, tc.b); got != tc.want {
			t.Fatalf("case %d: Equal(%v, %v) = %v, want %v", i, tc.a, tc.b, got, tc.want)
		}
	}
}
