package main

import (
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"dockdash/action"
	"dockdash/reconcile"
	"dockdash/tables"
	"dockdash/ui"
)

// uiSurface is what main drives: the tview dashboard or the headless logger.
type uiSurface = ui.Surface

// headlessSurface renders to the log. It keeps row counts per table so the
// periodic stats show what a dashboard would display, and never selects rows.
type headlessSurface struct {
	mu       sync.Mutex
	tables   map[string]*headlessTable
	compose  *headlessCompose
	statuses string
	done     chan struct{}
	stopOnce sync.Once
}

func newHeadlessSurface() *headlessSurface {
	s := &headlessSurface{
		tables:  make(map[string]*headlessTable),
		compose: &headlessCompose{},
		done:    make(chan struct{}),
	}
	for _, name := range []string{tables.Containers, tables.Images, tables.Stats} {
		s.tables[name] = &headlessTable{name: name, rows: make(map[string]struct{})}
	}
	return s
}

func (s *headlessSurface) WaitReady() {}

func (s *headlessSurface) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

func (s *headlessSurface) Done() <-chan struct{} {
	return s.done
}

func (s *headlessSurface) View(table string) reconcile.View {
	if t, ok := s.tables[table]; ok {
		return t
	}
	return nil
}

func (s *headlessSurface) ComposeView() reconcile.FileView {
	return s.compose
}

func (s *headlessSurface) MarkLoaded(table string) {
	t, ok := s.tables[table]
	if !ok {
		return
	}
	t.mu.Lock()
	first := !t.loaded
	t.loaded = true
	rows := len(t.rows)
	t.mu.Unlock()
	if first {
		log.Printf("Table %s: loaded (%d rows)", table, rows)
	}
}

// Rows returns the number of rows currently shown in table.
func (s *headlessSurface) Rows(table string) int {
	t, ok := s.tables[table]
	if !ok {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

func (s *headlessSurface) Checked(string) []string         { return nil }
func (s *headlessSurface) SetRowBusy(string, string, bool) {}
func (s *headlessSurface) Uncheck(string, string)          {}
func (s *headlessSurface) ClearValidation(string)          {}
func (s *headlessSurface) ClearForm(string)                {}

func (s *headlessSurface) SetControl(control string, state action.ControlState) {
	log.Printf("Control %s: %s", control, state)
}

func (s *headlessSurface) ShowValidation(form, text string) {
	if text != "" {
		log.Printf("Form %s: %s", form, text)
	}
}

func (s *headlessSurface) AppendMessage(toast tables.Toast) {
	log.Printf("Message %s", toast.String())
}

func (s *headlessSurface) AppendAction(_ reconcile.Tone, line string) {
	log.Print(line)
}

func (s *headlessSurface) AppendStream(line string) {
	log.Print(line)
}

// AppendSystem is a no-op: system lines already come from the log.
func (s *headlessSurface) AppendSystem(string) {}

func (s *headlessSurface) SetStatuses(items []action.Status) {
	texts := make([]string, 0, len(items))
	for _, item := range items {
		texts = append(texts, item.Text)
	}
	joined := strings.Join(texts, "; ")
	s.mu.Lock()
	changed := joined != s.statuses
	s.statuses = joined
	s.mu.Unlock()
	if changed && joined != "" {
		log.Printf("Pull: %s", joined)
	}
}

func (s *headlessSurface) SetStats(status string, lines []string) {
	for _, line := range lines {
		log.Printf("Stats: %s", line)
	}
	if len(lines) == 0 && status != "" {
		log.Printf("Stats: %s", status)
	}
}

func (s *headlessSurface) ShowInfo(title, body string) {
	log.Printf("Info %s:\n%s", title, body)
}

func (s *headlessSurface) SystemWriter() io.Writer {
	return os.Stdout
}

type headlessTable struct {
	name   string
	mu     sync.Mutex
	rows   map[string]struct{}
	loaded bool
}

func (t *headlessTable) RemoveRow(id string) {
	t.mu.Lock()
	delete(t.rows, id)
	t.mu.Unlock()
}

func (t *headlessTable) InsertRow(id string, _ reconcile.Position) {
	t.mu.Lock()
	t.rows[id] = struct{}{}
	t.mu.Unlock()
}

func (t *headlessTable) SetCell(string, int, reconcile.Cell) {}

type headlessCompose struct{}

func (headlessCompose) AddFile(name string)    { log.Printf("Compose: project %s listed", name) }
func (headlessCompose) RemoveFile(name string) { log.Printf("Compose: project %s removed", name) }
