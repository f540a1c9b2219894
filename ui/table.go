package ui

import (
	"fmt"
	"strings"
	"sync"

	"dockdash/reconcile"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	glyphUnchecked = "☐"
	glyphChecked   = "☒"
	glyphBusy      = "⟳"
)

type opKind int

const (
	opRemove opKind = iota
	opInsert
	opCell
	opSelector
)

type tableOp struct {
	kind  opKind
	id    string
	pos   reconcile.Position
	col   int
	cell  reconcile.Cell
	glyph string
}

// tablePanel renders one reconciled table. Reconciler calls arrive on stream
// reader goroutines: they update the row model under mu and queue an op. The
// frame scheduler applies queued ops to the tview.Table on the UI goroutine,
// touching only the rows and cells named by each op. While a search filter is
// active the table is rebuilt from the model instead.
type tablePanel struct {
	name    string
	title   string
	headers []string
	table   *tview.Table
	sched   *frameScheduler
	metrics *Metrics
	// noSelect hides the selector column for read-only tables.
	noSelect bool

	mu      sync.Mutex
	order   []string
	cells   map[string][]reconcile.Cell
	checked map[string]bool
	busy    map[string]bool
	ops     []tableOp
	loaded  bool
	query   string
	rebuild bool

	// shown mirrors the data rows of table; UI goroutine only.
	shown []string
}

func newTablePanel(name, title string, headers []string, sched *frameScheduler, metrics *Metrics) *tablePanel {
	table := tview.NewTable().SetSelectable(true, false).SetFixed(1, 0)
	table.SetBorder(true).SetTitleAlign(tview.AlignLeft)
	table.SetBorderColor(uiBorderColor)
	table.SetTitleColor(uiTitleColor)
	p := &tablePanel{
		name:    name,
		title:   title,
		headers: headers,
		table:   table,
		sched:   sched,
		metrics: metrics,
		cells:   make(map[string][]reconcile.Cell),
		checked: make(map[string]bool),
		busy:    make(map[string]bool),
	}
	p.drawHeader()
	p.updateTitle(false, "", 0)
	return p
}

// readOnly hides selectors; call before the first row arrives.
func (p *tablePanel) readOnly() *tablePanel {
	p.noSelect = true
	return p
}

func (p *tablePanel) Primitive() tview.Primitive {
	return p.table
}

func (p *tablePanel) SetFocused(focused bool) {
	applyFocusBoxStyle(p.table.Box, p.title, focused)
	p.mu.Lock()
	loaded, query, rows := p.loaded, p.query, len(p.order)
	p.mu.Unlock()
	p.updateTitle(loaded, query, rows)
}

func (p *tablePanel) HandleScroll(event *tcell.EventKey) bool {
	return false
}

// RemoveRow implements reconcile.View.
func (p *tablePanel) RemoveRow(id string) {
	p.mu.Lock()
	p.order = removeString(p.order, id)
	delete(p.cells, id)
	delete(p.checked, id)
	delete(p.busy, id)
	p.ops = append(p.ops, tableOp{kind: opRemove, id: id})
	p.mu.Unlock()
	p.scheduleFlush()
}

// InsertRow implements reconcile.View.
func (p *tablePanel) InsertRow(id string, pos reconcile.Position) {
	p.mu.Lock()
	if pos == reconcile.Top {
		p.order = append([]string{id}, p.order...)
	} else {
		p.order = append(p.order, id)
	}
	p.cells[id] = make([]reconcile.Cell, len(p.headers))
	p.ops = append(p.ops, tableOp{kind: opInsert, id: id, pos: pos})
	p.mu.Unlock()
	p.scheduleFlush()
}

// SetCell implements reconcile.View.
func (p *tablePanel) SetCell(id string, column int, cell reconcile.Cell) {
	p.mu.Lock()
	row, ok := p.cells[id]
	if !ok || column < 0 || column >= len(row) {
		p.mu.Unlock()
		return
	}
	row[column] = cell
	p.ops = append(p.ops, tableOp{kind: opCell, id: id, col: column, cell: cell})
	p.mu.Unlock()
	p.scheduleFlush()
}

// MarkLoaded hides the loading indicator after the first message.
func (p *tablePanel) MarkLoaded() {
	p.mu.Lock()
	if p.loaded {
		p.mu.Unlock()
		return
	}
	p.loaded = true
	p.mu.Unlock()
	p.scheduleFlush()
}

// Checked returns the selected ids in display order. Rows hidden by the
// search filter are left out, so actions only touch what is on screen.
func (p *tablePanel) Checked() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, id := range p.order {
		if p.checked[id] && p.visibleLocked(id) {
			out = append(out, id)
		}
	}
	return out
}

// Toggle flips the selection of id. Busy rows keep their state.
func (p *tablePanel) Toggle(id string) {
	p.mu.Lock()
	if _, ok := p.cells[id]; !ok || p.busy[id] || p.noSelect {
		p.mu.Unlock()
		return
	}
	p.checked[id] = !p.checked[id]
	p.queueSelectorLocked(id)
	p.mu.Unlock()
	p.scheduleFlush()
}

// ToggleAll selects every visible row unless all of them are already
// selected, in which case it clears their selection.
func (p *tablePanel) ToggleAll() {
	if p.noSelect {
		return
	}
	p.mu.Lock()
	var visible []string
	for _, id := range p.order {
		if p.visibleLocked(id) {
			visible = append(visible, id)
		}
	}
	all := len(visible) > 0
	for _, id := range visible {
		if !p.checked[id] {
			all = false
			break
		}
	}
	for _, id := range visible {
		if p.busy[id] {
			continue
		}
		p.checked[id] = !all
		p.queueSelectorLocked(id)
	}
	p.mu.Unlock()
	p.scheduleFlush()
}

// Uncheck clears the selection of id.
func (p *tablePanel) Uncheck(id string) {
	p.mu.Lock()
	if !p.checked[id] {
		p.mu.Unlock()
		return
	}
	delete(p.checked, id)
	p.queueSelectorLocked(id)
	p.mu.Unlock()
	p.scheduleFlush()
}

// SetBusy swaps the selector of id for a progress glyph.
func (p *tablePanel) SetBusy(id string, busy bool) {
	p.mu.Lock()
	if _, ok := p.cells[id]; !ok {
		p.mu.Unlock()
		return
	}
	if busy {
		p.busy[id] = true
	} else {
		delete(p.busy, id)
	}
	p.queueSelectorLocked(id)
	p.mu.Unlock()
	p.scheduleFlush()
}

// SetFilter shows only rows whose rendered text matches query.
func (p *tablePanel) SetFilter(query string) {
	p.mu.Lock()
	p.query = strings.ToLower(strings.TrimSpace(query))
	p.rebuild = true
	p.mu.Unlock()
	p.scheduleFlush()
}

// SelectedID returns the id under the cursor. UI goroutine only.
func (p *tablePanel) SelectedID() string {
	row, _ := p.table.GetSelection()
	if row < 1 || row > len(p.shown) {
		return ""
	}
	return p.shown[row-1]
}

func (p *tablePanel) visibleLocked(id string) bool {
	return p.query == "" || matchQuery(p.query, rowText(p.cells[id]))
}

func (p *tablePanel) queueSelectorLocked(id string) {
	p.ops = append(p.ops, tableOp{kind: opSelector, id: id, glyph: p.glyphLocked(id)})
}

func (p *tablePanel) glyphLocked(id string) string {
	switch {
	case p.busy[id]:
		return glyphBusy
	case p.checked[id]:
		return glyphChecked
	default:
		return glyphUnchecked
	}
}

func (p *tablePanel) scheduleFlush() {
	if p.sched == nil {
		return
	}
	p.sched.Schedule("table:"+p.name, p.flush)
}

type tableRow struct {
	id    string
	glyph string
	cells []reconcile.Cell
}

func (p *tablePanel) flush() {
	p.mu.Lock()
	ops := p.ops
	p.ops = nil
	rebuild := p.rebuild || p.query != ""
	p.rebuild = false
	loaded, query := p.loaded, p.query
	var rows []tableRow
	if rebuild {
		rows = make([]tableRow, 0, len(p.order))
		for _, id := range p.order {
			rows = append(rows, tableRow{id: id, glyph: p.glyphLocked(id), cells: append([]reconcile.Cell(nil), p.cells[id]...)})
		}
	}
	total := len(p.order)
	p.mu.Unlock()

	if rebuild {
		p.redraw(rows, query)
		p.metrics.TableRebuild()
	} else {
		p.apply(ops)
		p.metrics.TableOps(len(ops))
	}
	p.updateTitle(loaded, query, total)
}

func (p *tablePanel) apply(ops []tableOp) {
	for _, op := range ops {
		switch op.kind {
		case opRemove:
			idx := indexOf(p.shown, op.id)
			if idx < 0 {
				continue
			}
			p.table.RemoveRow(idx + 1)
			p.shown = append(p.shown[:idx], p.shown[idx+1:]...)
		case opInsert:
			if op.pos == reconcile.Top && len(p.shown) > 0 {
				p.table.InsertRow(1)
				p.shown = append([]string{op.id}, p.shown...)
			} else {
				p.shown = append(p.shown, op.id)
			}
			row := indexOf(p.shown, op.id) + 1
			p.table.SetCell(row, 0, p.selectorCell(glyphUnchecked))
			for col := range p.headers {
				p.table.SetCell(row, col+1, renderCell(reconcile.Cell{}))
			}
		case opCell:
			if idx := indexOf(p.shown, op.id); idx >= 0 {
				p.table.SetCell(idx+1, op.col+1, renderCell(op.cell))
			}
		case opSelector:
			if idx := indexOf(p.shown, op.id); idx >= 0 {
				p.table.SetCell(idx+1, 0, p.selectorCell(op.glyph))
			}
		}
	}
}

func (p *tablePanel) redraw(rows []tableRow, query string) {
	selected := p.SelectedID()
	p.table.Clear()
	p.drawHeader()
	p.shown = p.shown[:0]
	for _, row := range rows {
		if query != "" && !matchQuery(query, rowText(row.cells)) {
			continue
		}
		p.shown = append(p.shown, row.id)
		r := len(p.shown)
		p.table.SetCell(r, 0, p.selectorCell(row.glyph))
		for col, cell := range row.cells {
			p.table.SetCell(r, col+1, renderCell(cell))
		}
	}
	if idx := indexOf(p.shown, selected); idx >= 0 {
		p.table.Select(idx+1, 0)
	}
}

func (p *tablePanel) drawHeader() {
	p.table.SetCell(0, 0, tview.NewTableCell(" ").SetSelectable(false))
	for i, header := range p.headers {
		p.table.SetCell(0, i+1, tview.NewTableCell(tview.Escape(header)).
			SetTextColor(uiTitleColor).
			SetAttributes(tcell.AttrBold).
			SetSelectable(false).
			SetExpansion(1))
	}
}

func (p *tablePanel) updateTitle(loaded bool, query string, rows int) {
	title := p.title
	switch {
	case !loaded:
		title += " (loading…)"
	case query != "":
		title = fmt.Sprintf("%s (%d/%d matching %q)", p.title, len(p.shown), rows, query)
	default:
		title = fmt.Sprintf("%s (%d)", p.title, rows)
	}
	p.table.SetTitle(accentText(tview.Escape(title)))
}

func (p *tablePanel) selectorCell(glyph string) *tview.TableCell {
	if p.noSelect {
		return tview.NewTableCell("")
	}
	color := tcell.ColorGray
	if glyph == glyphBusy {
		color = tcell.ColorYellow
	} else if glyph == glyphChecked {
		color = tcell.ColorGreen
	}
	return tview.NewTableCell(glyph).SetTextColor(color).SetAlign(tview.AlignCenter)
}

func renderCell(cell reconcile.Cell) *tview.TableCell {
	text := tview.Escape(cell.Text)
	if cell.Badge && cell.Text != "" {
		return tview.NewTableCell(" " + text + " ").
			SetTextColor(tcell.ColorBlack).
			SetBackgroundColor(toneColor(cell.Tone)).
			SetExpansion(1)
	}
	return tview.NewTableCell(text).SetTextColor(toneColor(cell.Tone)).SetExpansion(1)
}

func toneColor(tone reconcile.Tone) tcell.Color {
	switch tone {
	case reconcile.ToneSuccess:
		return tcell.ColorGreen
	case reconcile.ToneWarning:
		return tcell.ColorYellow
	case reconcile.ToneDanger:
		return tcell.ColorRed
	case reconcile.ToneSecondary:
		return tcell.ColorGray
	case reconcile.ToneInfo:
		return tcell.ColorAqua
	case reconcile.ToneMuted:
		return tcell.ColorDarkGray
	default:
		return tcell.ColorWhite
	}
}

// toneTag is the tview color tag matching toneColor.
func toneTag(tone reconcile.Tone) string {
	switch tone {
	case reconcile.ToneSuccess:
		return "[green]"
	case reconcile.ToneWarning:
		return "[yellow]"
	case reconcile.ToneDanger:
		return "[red]"
	case reconcile.ToneSecondary:
		return "[gray]"
	case reconcile.ToneInfo:
		return "[aqua]"
	case reconcile.ToneMuted:
		return "[darkgray]"
	default:
		return "[white]"
	}
}

func rowText(cells []reconcile.Cell) string {
	parts := make([]string, 0, len(cells))
	for _, cell := range cells {
		parts = append(parts, cell.Text)
	}
	return strings.Join(parts, " | ")
}

func indexOf(list []string, value string) int {
	for i, item := range list {
		if item == value {
			return i
		}
	}
	return -1
}

func removeString(list []string, value string) []string {
	if idx := indexOf(list, value); idx >= 0 {
		return append(list[:idx], list[idx+1:]...)
	}
	return list
}
