package ui

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"dockdash/action"
	"dockdash/api"
	"dockdash/clock"
	"dockdash/config"
	"dockdash/reconcile"
	"dockdash/tables"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

var _ Surface = (*Dashboard)(nil)

type handlerLog struct {
	mu    sync.Mutex
	calls []string
}

func (h *handlerLog) add(call string) {
	h.mu.Lock()
	h.calls = append(h.calls, call)
	h.mu.Unlock()
}

func (h *handlerLog) list() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.calls...)
}

func newTestDashboard(t *testing.T, pages ...string) (*Dashboard, *handlerLog) {
	t.Helper()
	cfg := config.Default().UI
	if len(pages) > 0 {
		cfg.Pages = pages
	}
	calls := &handlerLog{}
	handlers := Handlers{
		ContainerAction: func(name, control string) { calls.add("container:" + name + ":" + control) },
		DeleteImages:    func(control string) { calls.add("images:" + control) },
		Compose:         func(name, project string) { calls.add("compose:" + name + ":" + project) },
		Inspect:         func(id string) { calls.add("inspect:" + id) },
	}
	d := newDashboard(cfg, handlers, clock.NewFake(time.Unix(1700000000, 0)), nil)
	t.Cleanup(d.Stop)
	return d, calls
}

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestPaneWriterBounds(t *testing.T) {
	writer := newPaneWriter(func(string) {})
	input := bytes.Repeat([]byte("a"), paneWriterMaxBytes*2)
	n, err := writer.Write(input)
	if err != nil {
		t.Fatalf("write error: %v", err)
	}
	if n != len(input) {
		t.Fatalf("expected write %d bytes, got %d", len(input), n)
	}
	if len(writer.buf) != paneWriterMaxBytes {
		t.Fatalf("expected buffer size %d, got %d", paneWriterMaxBytes, len(writer.buf))
	}
	if writer.droppedBytes == 0 {
		t.Fatalf("expected dropped bytes to be tracked")
	}
}

func TestPaneWriterSplitsLines(t *testing.T) {
	var lines []string
	writer := newPaneWriter(func(line string) { lines = append(lines, line) })
	writer.Write([]byte("Stream containerlist: connected\r\nAction "))
	writer.Write([]byte("containers/stop: boom\n"))
	want := []string{"Stream containerlist: connected", "Action containers/stop: boom"}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("lines = %q, want %q", lines, want)
	}
	if len(writer.buf) != 0 {
		t.Fatalf("partial buffer not drained: %q", writer.buf)
	}
}

func TestDashboardControlsDriveTables(t *testing.T) {
	d, _ := newTestDashboard(t)
	view := d.View(tables.Containers)
	view.InsertRow("a", reconcile.Bottom)
	view.InsertRow("b", reconcile.Bottom)
	d.containers.Toggle("b")

	if got := d.Checked(tables.Containers); !reflect.DeepEqual(got, []string{"b"}) {
		t.Fatalf("checked = %v", got)
	}
	if got := d.Checked("volumes"); got != nil {
		t.Fatalf("unknown table checked = %v", got)
	}
	d.SetRowBusy(tables.Containers, "b", true)
	d.scheduler.flush()
	if got := d.containers.table.GetCell(2, 0).Text; got != glyphBusy {
		t.Fatalf("busy selector = %q", got)
	}
	d.SetRowBusy(tables.Containers, "b", false)
	d.Uncheck(tables.Containers, "b")
	if got := d.Checked(tables.Containers); len(got) != 0 {
		t.Fatalf("checked after uncheck = %v", got)
	}
	if d.View("volumes") != nil {
		t.Fatalf("unknown table should have no view")
	}
}

func TestDashboardBusyControlIgnoresKey(t *testing.T) {
	d, calls := newTestDashboard(t)
	if !d.handlePageKey(tables.Containers, runeKey('S')) {
		t.Fatalf("stop key not consumed")
	}
	d.SetControl(containerControl("stop"), action.Busy)
	d.handlePageKey(tables.Containers, runeKey('S'))
	d.handlePageKey(tables.Containers, runeKey('s'))
	d.SetControl(containerControl("stop"), action.Idle)
	d.handlePageKey(tables.Containers, runeKey('S'))

	want := []string{
		"container:stop:containers-stop",
		"container:start:containers-start",
		"container:stop:containers-stop",
	}
	if got := calls.list(); !reflect.DeepEqual(got, want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	if d.ControlState(containerControl("stop")) != action.Idle {
		t.Fatalf("control not idle")
	}
}

func TestDashboardComposeControls(t *testing.T) {
	d, calls := newTestDashboard(t)
	set := reconcile.NewFileSet(d.ComposeView())
	set.Sync([]string{"web", "db"})
	d.scheduler.flush()
	if got := d.compose.SelectedProject(); got != "web" {
		t.Fatalf("selected project = %q", got)
	}

	d.handlePageKey("compose", runeKey('u'))
	d.SetControl(action.ComposeControl("up", "web"), action.Busy)
	if !d.compose.Busy("web", "up") {
		t.Fatalf("compose panel should show web up as busy")
	}
	d.handlePageKey("compose", runeKey('u'))
	d.handlePageKey("compose", runeKey('D'))
	d.SetControl(action.ComposeControl("up", "web"), action.Idle)
	if d.compose.Busy("web", "up") {
		t.Fatalf("compose busy state not cleared")
	}

	want := []string{"compose:up:web", "compose:down:web"}
	if got := calls.list(); !reflect.DeepEqual(got, want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}

	set.Sync([]string{"db"})
	d.scheduler.flush()
	if got := d.compose.Names(); !reflect.DeepEqual(got, []string{"db"}) {
		t.Fatalf("names = %v", got)
	}
}

func TestParseComposeControl(t *testing.T) {
	name, project, ok := parseComposeControl("delete-compose-my-app")
	if !ok || name != "delete" || project != "my-app" {
		t.Fatalf("got %q %q %v", name, project, ok)
	}
	if _, _, ok := parseComposeControl("prune"); ok {
		t.Fatalf("prune is not a compose control")
	}
}

type stubBackend struct {
	mu    sync.Mutex
	pulls []string
}

func (b *stubBackend) ContainerAction(context.Context, string, []string) error { return nil }
func (b *stubBackend) DeleteImages(context.Context, []string) error            { return nil }
func (b *stubBackend) PullImage(_ context.Context, image, tag string) error {
	b.mu.Lock()
	b.pulls = append(b.pulls, image+":"+tag)
	b.mu.Unlock()
	return nil
}
func (b *stubBackend) ComposeAction(context.Context, string, string) error { return nil }
func (b *stubBackend) UploadCompose(context.Context, string, string) error { return nil }
func (b *stubBackend) Prune(context.Context, []string) error               { return nil }
func (b *stubBackend) RunContainer(context.Context, api.RunConfig) error   { return nil }
func (b *stubBackend) ContainerInfo(context.Context, string) ([]byte, error) {
	return []byte("{}"), nil
}

func TestDashboardPullFormThroughDispatcher(t *testing.T) {
	d, _ := newTestDashboard(t)
	backend := &stubBackend{}
	board := action.NewStatusBoard(d.SetStatuses)
	dispatcher, err := action.NewDispatcher(action.Options{Backend: backend, Controls: d, Board: board, Clock: d.clock})
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	form := d.forms[action.FormPull]

	if _, err := dispatcher.Pull(context.Background(), "  ", ""); err == nil {
		t.Fatalf("expected validation error")
	}
	d.scheduler.flush()
	if got := form.status.GetText(true); !strings.Contains(got, action.MsgImageRequired) {
		t.Fatalf("validation text = %q", got)
	}

	form.form.GetFormItemByLabel(labelImage).(*tview.InputField).SetText("nginx")
	done, err := dispatcher.Pull(context.Background(), form.text(labelImage), form.text(labelTag))
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if res := <-done; res.Err != nil {
		t.Fatalf("pull failed: %v", res.Err)
	}
	d.scheduler.flush()
	if got := form.Validation(); got != "" {
		t.Fatalf("validation not cleared: %q", got)
	}
	if got := form.text(labelImage); got != "" {
		t.Fatalf("image input not cleared: %q", got)
	}
	if got := form.notes.GetText(true); !strings.Contains(got, "Successfully pulled nginx:latest") {
		t.Fatalf("status notes = %q", got)
	}
	if !reflect.DeepEqual(backend.pulls, []string{"nginx:latest"}) {
		t.Fatalf("pulls = %v", backend.pulls)
	}
}

func TestDashboardMessagesReachEventsAndToast(t *testing.T) {
	d, _ := newTestDashboard(t)
	now := d.clock.Now()
	toast := tables.NewToast(api.ServerMessage{Text: "Pruned 3 images", Category: "success", TimeSent: now.Unix()}, now)
	d.AppendMessage(toast)
	d.AppendSystem("Stream imagelist: connected")
	d.scheduler.flush()

	snapshot := d.eventsBuf.SnapshotInto(nil)
	if len(snapshot.Events) != 2 {
		t.Fatalf("events = %d", len(snapshot.Events))
	}
	if snapshot.Events[0].Kind != EventMessage || snapshot.Events[0].Tone != reconcile.ToneSuccess {
		t.Fatalf("message event = %+v", snapshot.Events[0])
	}
	if got := d.toastBar.GetText(true); !strings.Contains(got, "Pruned 3 images") {
		t.Fatalf("toast bar = %q", got)
	}
}

func TestDashboardSkipsDisabledPages(t *testing.T) {
	d, _ := newTestDashboard(t, "images", "events")
	if d.current != "images" {
		t.Fatalf("first page = %q", d.current)
	}
	d.showPage(tables.Containers)
	if d.current != "images" {
		t.Fatalf("disabled page shown: %q", d.current)
	}
	d.cyclePage(1)
	if d.current != "events" {
		t.Fatalf("cycle landed on %q", d.current)
	}
	d.cyclePage(1)
	if d.current != "images" {
		t.Fatalf("cycle wrap landed on %q", d.current)
	}
}

func TestDashboardStopIsIdempotent(t *testing.T) {
	d, _ := newTestDashboard(t)
	d.Stop()
	d.Stop()
	select {
	case <-d.Done():
	default:
		t.Fatalf("done channel not closed")
	}
}

func TestParseEnv(t *testing.T) {
	got := parseEnv("A=1, B = two ,=skip\nFLAG\n")
	want := []action.EnvVar{{Key: "A", Value: "1"}, {Key: "B", Value: "two"}, {Key: "FLAG"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("parseEnv = %+v, want %+v", got, want)
	}
}

func TestPruneFormSelectionAndClear(t *testing.T) {
	f := newPruneForm(func([]string) {}, func() {})
	f.form.GetFormItemByLabel("images").(*tview.Checkbox).SetChecked(true)
	f.form.GetFormItemByLabel("volumes").(*tview.Checkbox).SetChecked(true)
	if got := f.pruneSelection(); !reflect.DeepEqual(got, []string{"images", "volumes"}) {
		t.Fatalf("selection = %v", got)
	}
	f.clear()
	if got := f.pruneSelection(); len(got) != 0 {
		t.Fatalf("selection after clear = %v", got)
	}
}

func TestDashboardStatsPaneSwitch(t *testing.T) {
	d, _ := newTestDashboard(t)
	d.showPage(tables.Stats)
	if d.statsFocus.current() != focusable(d.stats) {
		t.Fatalf("expected stats table to hold focus first")
	}
	if !d.handlePageKey(tables.Stats, runeKey('w')) {
		t.Fatalf("expected w to be consumed on the stats page")
	}
	if d.statsFocus.current() != focusable(d.summaryBox) {
		t.Fatalf("expected summary pane to take focus")
	}
	if title := d.summary.GetTitle(); !strings.Contains(title, "▶ Dashboard") {
		t.Fatalf("expected focused summary title, got %q", title)
	}
	d.handlePageKey(tables.Stats, runeKey('w'))
	if d.statsFocus.current() != focusable(d.stats) {
		t.Fatalf("expected focus to wrap back to the table")
	}
}
