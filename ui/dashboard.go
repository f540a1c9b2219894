package ui

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"sync"
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

const (
	pageHelp = "help"
	pageInfo = "info"
)

var containerKeys = map[rune]string{
	's': "start",
	'S': "stop",
	'k': "kill",
	'r': "restart",
	'p': "pause",
	'u': "resume",
	'd': "delete",
}

var composeKeys = map[rune]string{
	'u': "up",
	'D': "down",
	'x': "delete",
}

// Handlers connect dashboard commands to the action dispatcher. They are
// called on the UI goroutine and must return without waiting on the backend.
type Handlers struct {
	ContainerAction func(action, control string)
	DeleteImages    func(control string)
	Pull            func(image, tag string)
	Compose         func(action, project string)
	Upload          func(project, contents string)
	Prune           func(objects []string)
	Run             func(req action.RunRequest)
	Inspect         func(id string)
}

// Dashboard implements the page-based tview UI.
type Dashboard struct {
	app       *tview.Application
	pages     *tview.Pages
	scheduler *frameScheduler
	clock     clock.Clock
	handlers  Handlers

	ctx      context.Context
	cancel   context.CancelFunc
	ready    chan struct{}
	done     chan struct{}
	doneOnce sync.Once
	stopOnce sync.Once

	metrics    *Metrics
	containers *tablePanel
	images     *tablePanel
	stats      *tablePanel
	compose    *composePanel
	eventsBuf  *BoundedEventBuffer
	eventsPage *eventPage
	forms      map[string]*formModal
	info       *tview.TextView
	summary    *tview.TextView
	summaryBox *focusBox
	toastBar   *tview.TextView
	footer     *tview.TextView
	search     *tview.InputField
	filter     *SearchFilter

	mu        sync.Mutex
	controls  map[string]action.ControlState
	statuses  []action.Status
	toast     tables.Toast
	hasToast  bool
	statsLine string
	summaryLn []string

	// UI goroutine only.
	pageOrder   []string
	pageIndex   int
	pagePresent map[string]bool
	current     string
	modal       string
	helpShown   bool
	statsFocus  focusGroup
}

// NewDashboard builds the dashboard and starts the tview application.
func NewDashboard(cfg config.UIConfig, handlers Handlers) *Dashboard {
	app := tview.NewApplication().EnableMouse(cfg.EnableMouse)
	d := newDashboard(cfg, handlers, clock.Real(), app)
	d.scheduler.Start()
	go func() {
		if err := app.Run(); err != nil {
			log.Printf("UI: tview error: %v", err)
		}
		d.markDone()
	}()
	return d
}

// newDashboard wires every page. A nil app builds the model without a
// terminal, which is how tests drive it.
func newDashboard(cfg config.UIConfig, handlers Handlers, clk clock.Clock, app *tview.Application) *Dashboard {
	ctx, cancel := context.WithCancel(context.Background())
	metrics := NewMetrics()
	d := &Dashboard{
		app:         app,
		pages:       tview.NewPages(),
		clock:       clk,
		handlers:    handlers,
		ctx:         ctx,
		cancel:      cancel,
		ready:       make(chan struct{}),
		done:        make(chan struct{}),
		metrics:     metrics,
		forms:       make(map[string]*formModal),
		controls:    make(map[string]action.ControlState),
		pageOrder:   cfg.Pages,
		pagePresent: make(map[string]bool),
	}
	d.scheduler = newFrameScheduler(app, cfg.TargetFPS, 100*time.Millisecond, metrics.ObserveRender)
	if app != nil {
		var once sync.Once
		app.SetBeforeDrawFunc(func(screen tcell.Screen) bool {
			once.Do(func() { close(d.ready) })
			return false
		})
	} else {
		close(d.ready)
	}

	d.containers = newTablePanel(tables.Containers, "Containers", tables.ContainerSchema.Headers(), d.scheduler, metrics)
	d.images = newTablePanel(tables.Images, "Images", tables.ImageSchema.Headers(), d.scheduler, metrics)
	d.stats = newTablePanel(tables.Stats, "Stats", tables.StatsSchema.Headers(), d.scheduler, metrics).readOnly()
	d.compose = newComposePanel("Compose projects", d.scheduler)

	policy := DropPolicy{
		MaxMessageBytes:  cfg.Events.MaxMessageBytes,
		EvictOnByteLimit: true,
		LogDrops:         cfg.Events.LogDrops,
	}
	d.eventsBuf = NewBoundedEventBuffer("events", cfg.Events.MaxEvents, int64(cfg.Events.MaxBytesMB)*1024*1024, policy, log.Printf)
	d.eventsPage = newEventPage(ctx, clk, "Events", d.eventsBuf, metrics)
	d.eventsPage.bindSearch(func() {
		d.scheduler.Schedule("events", d.eventsPage.refresh)
	})

	d.summary = newBoxedTextView("Dashboard")
	d.summary.SetScrollable(true)
	d.summaryBox = newFocusBox(d.summary, "Dashboard", true)
	d.statsFocus = newFocusGroup(d.stats, d.summaryBox)
	statsRoot := tview.NewFlex().
		AddItem(d.stats.Primitive(), 0, 3, true).
		AddItem(d.summary, 0, 1, false)

	d.addPage(tables.Containers, d.containers.Primitive())
	d.addPage(tables.Images, d.images.Primitive())
	d.addPage(tables.Stats, statsRoot)
	d.addPage("compose", d.compose.Primitive())
	d.addPage("events", d.eventsPage.root)
	d.pages.AddPage(pageHelp, buildHelpOverlay(), true, false)

	closeModal := func() { d.closeModal() }
	d.addForm(newPullForm(d.submitPull, closeModal))
	d.addForm(newRunForm(d.submitRun, closeModal))
	d.addForm(newUploadForm(d.submitUpload, closeModal))
	d.addForm(newPruneForm(d.submitPrune, closeModal))

	d.info = newBoxedTextView("Container info")
	d.info.SetScrollable(true).SetWrap(true)
	d.pages.AddPage(pageInfo, centered(d.info, 100, 30), true, false)

	d.filter = NewSearchFilter(ctx, clk)
	d.search = tview.NewInputField().SetLabel("Filter: ").SetFieldWidth(30)
	d.search.SetChangedFunc(func(text string) {
		d.filter.SetQuery(text, d.applyTableFilter)
	})
	d.toastBar = tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	d.footer = tview.NewTextView().SetDynamicColors(true).SetWrap(false)

	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(d.toastBar, 1, 0, false).
		AddItem(d.pages, 0, 1, true).
		AddItem(d.search, 1, 0, false).
		AddItem(d.footer, 2, 0, false)
	if app != nil {
		app.SetRoot(root, true)
		d.installKeybindings()
	}
	d.showFirstAvailablePage()
	d.renderFooter()
	return d
}

func (d *Dashboard) addPage(name string, page tview.Primitive) {
	if !d.pageEnabled(name) {
		return
	}
	d.pages.AddPage(name, page, true, false)
	d.pagePresent[name] = true
}

func (d *Dashboard) addForm(f *formModal) {
	d.forms[f.name] = f
	d.pages.AddPage(modalPage(f.name), f.page, true, false)
}

func modalPage(form string) string {
	return "form:" + form
}

func (d *Dashboard) installKeybindings() {
	d.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if d.modal != "" {
			if event.Key() == tcell.KeyEsc {
				d.closeModal()
				return nil
			}
			return event
		}
		if d.helpShown {
			if event.Key() == tcell.KeyEsc || event.Key() == tcell.KeyF1 || event.Rune() == '?' {
				d.toggleHelp(false)
			}
			return nil
		}

		focus := d.app.GetFocus()
		if focus == d.search {
			switch event.Key() {
			case tcell.KeyEsc:
				d.search.SetText("")
				d.focusPage()
				return nil
			case tcell.KeyEnter, tcell.KeyTab:
				d.focusPage()
				return nil
			}
			return event
		}
		if focus == d.eventsPage.search {
			switch event.Key() {
			case tcell.KeyEsc:
				d.eventsPage.handleInput(event, d.app)
				return nil
			case tcell.KeyEnter, tcell.KeyTab:
				d.focusPage()
				return nil
			}
			return event
		}

		switch event.Key() {
		case tcell.KeyF1:
			d.toggleHelp(true)
			return nil
		case tcell.KeyF2, tcell.KeyF3, tcell.KeyF4, tcell.KeyF5, tcell.KeyF6:
			idx := int(event.Key() - tcell.KeyF2)
			if idx < len(config.KnownPages) {
				d.showPage(config.KnownPages[idx])
			}
			return nil
		case tcell.KeyTab:
			d.cyclePage(1)
			return nil
		case tcell.KeyBacktab:
			d.cyclePage(-1)
			return nil
		case tcell.KeyCtrlC:
			go d.Stop()
			return nil
		}

		if d.current == "events" && d.eventsPage.handleInput(event, d.app) {
			return nil
		}
		if d.current == tables.Stats && d.statsFocus.handleScroll(d.app, event) {
			return nil
		}
		if d.handlePageKey(d.current, event) {
			return nil
		}

		switch event.Rune() {
		case 'q', 'Q':
			go d.Stop()
			return nil
		case '?':
			d.toggleHelp(true)
			return nil
		case 'X':
			d.openForm(action.FormPrune)
			return nil
		case '/':
			d.app.SetFocus(d.search)
			return nil
		}
		return event
	})
}

// handlePageKey runs the command bound to event on page and reports whether
// the key was consumed.
func (d *Dashboard) handlePageKey(page string, event *tcell.EventKey) bool {
	if event.Key() != tcell.KeyRune {
		return false
	}
	r := event.Rune()
	switch page {
	case tables.Containers:
		if name, ok := containerKeys[r]; ok {
			d.containerAction(name)
			return true
		}
		switch r {
		case ' ':
			d.containers.Toggle(d.containers.SelectedID())
			return true
		case 'a':
			d.containers.ToggleAll()
			return true
		case 'i':
			if id := d.containers.SelectedID(); id != "" && d.handlers.Inspect != nil {
				d.handlers.Inspect(id)
			}
			return true
		case 'R':
			d.openForm(action.FormRun)
			return true
		}
	case tables.Images:
		switch r {
		case ' ':
			d.images.Toggle(d.images.SelectedID())
			return true
		case 'a':
			d.images.ToggleAll()
			return true
		case 'd':
			d.deleteImages()
			return true
		case 'P':
			d.openForm(action.FormPull)
			return true
		}
	case tables.Stats:
		if r == 'w' {
			d.statsFocus.cycle(d.app, 1)
			return true
		}
	case "compose":
		if name, ok := composeKeys[r]; ok {
			d.composeAction(name, d.compose.SelectedProject())
			return true
		}
		if r == 'n' {
			d.openForm(action.FormCompose)
			return true
		}
	}
	return false
}

func containerControl(name string) string {
	return "containers-" + name
}

const imagesDeleteControl = "images-delete"

func (d *Dashboard) containerAction(name string) {
	control := containerControl(name)
	if d.ControlState(control) == action.Busy || d.handlers.ContainerAction == nil {
		return
	}
	d.handlers.ContainerAction(name, control)
}

func (d *Dashboard) deleteImages() {
	if d.ControlState(imagesDeleteControl) == action.Busy || d.handlers.DeleteImages == nil {
		return
	}
	d.handlers.DeleteImages(imagesDeleteControl)
}

func (d *Dashboard) composeAction(name, project string) {
	if project == "" || d.handlers.Compose == nil {
		return
	}
	if d.ControlState(action.ComposeControl(name, project)) == action.Busy {
		return
	}
	d.handlers.Compose(name, project)
}

func (d *Dashboard) submitPull(image, tag string) {
	if d.handlers.Pull != nil {
		d.handlers.Pull(image, tag)
	}
}

func (d *Dashboard) submitRun(req action.RunRequest) {
	if d.ControlState(action.FormRun) == action.Busy || d.handlers.Run == nil {
		return
	}
	d.handlers.Run(req)
}

func (d *Dashboard) submitUpload(project, contents string) {
	if d.ControlState(action.FormCompose) == action.Busy || d.handlers.Upload == nil {
		return
	}
	d.handlers.Upload(project, contents)
}

func (d *Dashboard) submitPrune(objects []string) {
	if d.ControlState(action.FormPrune) == action.Busy || d.handlers.Prune == nil {
		return
	}
	d.handlers.Prune(objects)
}

func (d *Dashboard) openForm(name string) {
	f, ok := d.forms[name]
	if !ok {
		return
	}
	f.render()
	if name == action.FormPull {
		d.renderStatuses()
	}
	d.openModal(modalPage(name), f.form)
}

func (d *Dashboard) openModal(page string, focus tview.Primitive) {
	d.modal = page
	d.pages.ShowPage(page)
	d.pages.SendToFront(page)
	d.setFocus(focus)
}

func (d *Dashboard) closeModal() {
	if d.modal == "" {
		return
	}
	d.pages.HidePage(d.modal)
	d.modal = ""
	d.focusPage()
}

func (d *Dashboard) toggleHelp(show bool) {
	d.helpShown = show
	if show {
		d.pages.ShowPage(pageHelp)
		d.pages.SendToFront(pageHelp)
		return
	}
	d.pages.HidePage(pageHelp)
}

func (d *Dashboard) showPage(name string) {
	if !d.pagePresent[name] {
		return
	}
	for i, page := range d.pageOrder {
		if page == name {
			d.pageIndex = i
			break
		}
	}
	d.current = name
	d.pages.SwitchToPage(name)
	d.metrics.PageSwitch()
	d.focusPage()
	d.renderFooter()
}

func (d *Dashboard) focusPage() {
	var target focusable
	switch d.current {
	case tables.Containers:
		target = d.containers
	case tables.Images:
		target = d.images
	case tables.Stats:
		d.statsFocus.set(d.app, d.statsFocus.index)
		return
	case "compose":
		target = d.compose
	case "events":
		d.setFocus(d.eventsPage.list)
		return
	default:
		return
	}
	target.SetFocused(true)
	d.setFocus(target.Primitive())
}

func (d *Dashboard) setFocus(p tview.Primitive) {
	if d.app != nil && p != nil {
		d.app.SetFocus(p)
	}
}

func (d *Dashboard) showFirstAvailablePage() {
	for _, name := range d.pageOrder {
		if d.pagePresent[name] {
			d.showPage(name)
			return
		}
	}
}

func (d *Dashboard) pageEnabled(name string) bool {
	for _, page := range d.pageOrder {
		if page == name {
			return true
		}
	}
	return false
}

func (d *Dashboard) cyclePage(delta int) {
	if len(d.pageOrder) == 0 {
		return
	}
	for i := 0; i < len(d.pageOrder); i++ {
		d.pageIndex += delta
		if d.pageIndex < 0 {
			d.pageIndex = len(d.pageOrder) - 1
		} else if d.pageIndex >= len(d.pageOrder) {
			d.pageIndex = 0
		}
		name := d.pageOrder[d.pageIndex]
		if d.pagePresent[name] {
			d.showPage(name)
			return
		}
	}
}

func (d *Dashboard) applyTableFilter() {
	query := d.filter.ActiveQuery()
	d.containers.SetFilter(query)
	d.images.SetFilter(query)
	d.stats.SetFilter(query)
}

func (d *Dashboard) WaitReady() {
	<-d.ready
}

func (d *Dashboard) Done() <-chan struct{} {
	return d.done
}

func (d *Dashboard) markDone() {
	d.doneOnce.Do(func() { close(d.done) })
}

// Stop drains pending frames and stops the application. Safe to call more
// than once and from any goroutine except the UI goroutine.
func (d *Dashboard) Stop() {
	d.stopOnce.Do(func() {
		d.cancel()
		d.filter.Stop()
		d.eventsPage.searchFilter.Stop()
		d.scheduler.Stop()
		if d.app != nil {
			d.app.Stop()
		}
		d.markDone()
	})
}

// View implements Surface.
func (d *Dashboard) View(table string) reconcile.View {
	if p := d.panel(table); p != nil {
		return p
	}
	return nil
}

// ComposeView implements Surface.
func (d *Dashboard) ComposeView() reconcile.FileView {
	return d.compose
}

func (d *Dashboard) panel(table string) *tablePanel {
	switch table {
	case tables.Containers:
		return d.containers
	case tables.Images:
		return d.images
	case tables.Stats:
		return d.stats
	}
	return nil
}

func (d *Dashboard) MarkLoaded(table string) {
	if p := d.panel(table); p != nil {
		p.MarkLoaded()
	}
}

// Checked implements action.Controls.
func (d *Dashboard) Checked(table string) []string {
	if p := d.panel(table); p != nil {
		return p.Checked()
	}
	return nil
}

// SetRowBusy implements action.Controls.
func (d *Dashboard) SetRowBusy(table, id string, busy bool) {
	if p := d.panel(table); p != nil {
		p.SetBusy(id, busy)
	}
}

// Uncheck implements action.Controls.
func (d *Dashboard) Uncheck(table, id string) {
	if p := d.panel(table); p != nil {
		p.Uncheck(id)
	}
}

// SetControl implements action.Controls. Busy controls ignore their keys
// until they return to Idle.
func (d *Dashboard) SetControl(control string, state action.ControlState) {
	d.mu.Lock()
	if state == action.Busy {
		d.controls[control] = state
	} else {
		delete(d.controls, control)
	}
	d.mu.Unlock()
	if name, project, ok := parseComposeControl(control); ok {
		d.compose.SetBusy(project, name, state == action.Busy)
	}
	d.scheduler.Schedule("footer", d.renderFooter)
}

// ControlState reports the state of control.
func (d *Dashboard) ControlState(control string) action.ControlState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.controls[control]
}

func parseComposeControl(control string) (name, project string, ok bool) {
	for _, name := range api.ComposeActions {
		prefix := action.ComposeControl(name, "")
		if strings.HasPrefix(control, prefix) && len(control) > len(prefix) {
			return name, control[len(prefix):], true
		}
	}
	return "", "", false
}

// ShowValidation implements action.Controls; the new text replaces any old one.
func (d *Dashboard) ShowValidation(form, text string) {
	f, ok := d.forms[form]
	if !ok {
		return
	}
	f.setValidation(text)
	d.scheduler.Schedule("validation:"+form, f.render)
}

// ClearValidation implements action.Controls.
func (d *Dashboard) ClearValidation(form string) {
	d.ShowValidation(form, "")
}

// ClearForm implements action.Controls.
func (d *Dashboard) ClearForm(form string) {
	f, ok := d.forms[form]
	if !ok {
		return
	}
	d.scheduler.Schedule("clear:"+form, f.clear)
}

func (d *Dashboard) SetStatuses(items []action.Status) {
	d.mu.Lock()
	d.statuses = append(d.statuses[:0], items...)
	d.mu.Unlock()
	d.scheduler.Schedule("statuses", d.renderStatuses)
}

func (d *Dashboard) renderStatuses() {
	d.mu.Lock()
	items := append([]action.Status(nil), d.statuses...)
	d.mu.Unlock()
	if f := d.forms[action.FormPull]; f != nil && f.notes != nil {
		f.notes.SetText(statusLines(items))
	}
	d.renderFooter()
}

func (d *Dashboard) AppendMessage(toast tables.Toast) {
	d.mu.Lock()
	d.toast = toast
	d.hasToast = true
	d.mu.Unlock()
	d.scheduler.Schedule("toast", d.renderToast)
	d.appendEvent(EventMessage, toast.Tone, toast.String())
}

func (d *Dashboard) renderToast() {
	d.mu.Lock()
	toast, ok := d.toast, d.hasToast
	d.mu.Unlock()
	if !ok {
		d.toastBar.SetText("")
		return
	}
	d.toastBar.SetText(fmt.Sprintf(" %s%s[-]  %s", toneTag(toast.Tone), tview.Escape(toast.Header), tview.Escape(toast.Body)))
}

func (d *Dashboard) AppendAction(tone reconcile.Tone, line string) {
	d.appendEvent(EventAction, tone, line)
}

func (d *Dashboard) AppendStream(line string) {
	d.appendEvent(EventStream, reconcile.ToneDefault, line)
}

func (d *Dashboard) AppendSystem(line string) {
	d.appendEvent(EventSystem, reconcile.ToneDefault, line)
}

func (d *Dashboard) appendEvent(kind EventKind, tone reconcile.Tone, line string) {
	event := StyledEvent{
		Timestamp: d.clock.Now().UTC(),
		Kind:      kind,
		Tone:      tone,
		Message:   line,
	}
	if d.eventsBuf.Append(event) {
		d.scheduler.Schedule("events", d.eventsPage.refresh)
	}
}

// SetStats shows status in the footer and lines in the stats page summary.
func (d *Dashboard) SetStats(status string, lines []string) {
	d.mu.Lock()
	d.statsLine = status
	d.summaryLn = append(d.summaryLn[:0], lines...)
	d.mu.Unlock()
	d.scheduler.Schedule("stats", func() {
		d.mu.Lock()
		text := strings.Join(d.summaryLn, "\n")
		d.mu.Unlock()
		d.summary.SetText(tview.Escape(text) + "\n\n" + d.metrics.Line())
		d.renderFooter()
	})
}

// ShowInfo opens the info view with body, usually a container's inspect JSON.
func (d *Dashboard) ShowInfo(title, body string) {
	d.scheduler.Schedule("info", func() {
		d.info.SetTitle(accentText(tview.Escape(title)))
		d.info.SetText(tview.Escape(body))
		d.info.ScrollToBeginning()
		if d.modal != "" {
			d.pages.HidePage(d.modal)
		}
		d.openModal(pageInfo, d.info)
	})
}

func (d *Dashboard) SystemWriter() io.Writer {
	return newPaneWriter(d.AppendSystem)
}

func (d *Dashboard) renderFooter() {
	d.mu.Lock()
	status := d.statsLine
	busy := make([]string, 0, len(d.controls))
	for control := range d.controls {
		busy = append(busy, control)
	}
	d.mu.Unlock()
	sort.Strings(busy)

	hints := pageHints(d.current) + "  " + accentText("F1") + " help  " + accentText("X") + " prune  " + accentText("/") + " filter  " + accentText("q") + " quit"
	line := status
	if len(busy) > 0 {
		line = fmt.Sprintf("[yellow]%s busy: %s[-]  %s", glyphBusy, tview.Escape(strings.Join(busy, ", ")), status)
	}
	d.footer.SetText(hints + "\n" + line)
}

func pageHints(page string) string {
	key := func(k, label string) string { return accentText(k) + " " + label + "  " }
	switch page {
	case tables.Containers:
		return key("Space", "select") + key("a", "all") + key("s", "start") + key("S", "stop") + key("k", "kill") +
			key("r", "restart") + key("p", "pause") + key("u", "resume") + key("d", "delete") + key("i", "info") + key("R", "run")
	case tables.Images:
		return key("Space", "select") + key("a", "all") + key("d", "delete") + key("P", "pull")
	case tables.Stats:
		return key("w", "switch pane")
	case "compose":
		return key("u", "up") + key("D", "down") + key("x", "delete") + key("n", "upload")
	case "events":
		return key("1-5", "filter") + key("/", "search")
	}
	return ""
}

func buildHelpOverlay() tview.Primitive {
	help := tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	help.SetText(strings.TrimSpace(fmt.Sprintf(`
KEYBOARD HELP

NAVIGATION
  %[1]sF1%[2]s Help   %[1]sF2%[2]s Containers   %[1]sF3%[2]s Images   %[1]sF4%[2]s Stats
  %[1]sF5%[2]s Compose   %[1]sF6%[2]s Events   Tab / Shift+Tab cycle pages
  / Filter tables   X Prune   q / Ctrl+C Quit   Esc Close dialog

CONTAINERS
  Space Select   a Select all   i Info   R Run container
  s Start  S Stop  k Kill  r Restart  p Pause  u Resume  d Delete

IMAGES
  Space Select   a Select all   d Delete   P Pull

STATS
  w Switch table / summary   ↑/↓ PageUp/Down Scroll summary

COMPOSE
  u Up   D Down   x Delete   n Upload project

EVENTS
  ↑/↓ or k/j Scroll   PageUp/Down Fast scroll   Home/End Top/Bottom
  1-5 Filter tabs   / Search   Esc Clear search
`, accentTag, accentReset)))
	help.SetBorder(true).SetTitle("Help")
	help.SetBorderColor(uiBorderColor)
	help.SetTitleColor(uiTitleColor)
	return centered(help, 74, 27)
}
