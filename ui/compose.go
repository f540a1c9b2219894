package ui

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// composePanel lists compose projects. It implements reconcile.FileView; like
// tablePanel it keeps its model under mu and redraws on the frame scheduler.
type composePanel struct {
	list  *tview.List
	title string
	sched *frameScheduler

	mu    sync.Mutex
	names []string
	// busy maps project to the compose actions in flight for it.
	busy map[string]map[string]bool

	// shown mirrors the list items; UI goroutine only.
	shown []string
}

func newComposePanel(title string, sched *frameScheduler) *composePanel {
	list := tview.NewList().ShowSecondaryText(true).SetHighlightFullLine(true)
	list.SetBorder(true).SetTitleAlign(tview.AlignLeft)
	list.SetBorderColor(uiBorderColor)
	list.SetTitleColor(uiTitleColor)
	list.SetSelectedBackgroundColor(tcell.ColorDarkSlateGray)
	p := &composePanel{
		list:  list,
		title: title,
		sched: sched,
		busy:  make(map[string]map[string]bool),
	}
	p.render()
	return p
}

func (p *composePanel) Primitive() tview.Primitive {
	return p.list
}

func (p *composePanel) SetFocused(focused bool) {
	p.mu.Lock()
	count := len(p.names)
	p.mu.Unlock()
	applyFocusBoxStyle(p.list.Box, fmt.Sprintf("%s (%d)", p.title, count), focused)
}

func (p *composePanel) HandleScroll(event *tcell.EventKey) bool {
	return false
}

// AddFile implements reconcile.FileView.
func (p *composePanel) AddFile(name string) {
	p.mu.Lock()
	if indexOf(p.names, name) < 0 {
		p.names = append(p.names, name)
	}
	p.mu.Unlock()
	p.scheduleRender()
}

// RemoveFile implements reconcile.FileView.
func (p *composePanel) RemoveFile(name string) {
	p.mu.Lock()
	p.names = removeString(p.names, name)
	delete(p.busy, name)
	p.mu.Unlock()
	p.scheduleRender()
}

// SetBusy records whether action is in flight for project.
func (p *composePanel) SetBusy(project, action string, busy bool) {
	p.mu.Lock()
	actions := p.busy[project]
	if busy {
		if actions == nil {
			actions = make(map[string]bool)
			p.busy[project] = actions
		}
		actions[action] = true
	} else if actions != nil {
		delete(actions, action)
		if len(actions) == 0 {
			delete(p.busy, project)
		}
	}
	p.mu.Unlock()
	p.scheduleRender()
}

// Busy reports whether action is in flight for project.
func (p *composePanel) Busy(project, action string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.busy[project][action]
}

// Names returns the listed projects in display order.
func (p *composePanel) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.names...)
}

// SelectedProject returns the project under the cursor. UI goroutine only.
func (p *composePanel) SelectedProject() string {
	idx := p.list.GetCurrentItem()
	if idx < 0 || idx >= len(p.shown) {
		return ""
	}
	return p.shown[idx]
}

func (p *composePanel) scheduleRender() {
	if p.sched == nil {
		return
	}
	p.sched.Schedule("compose", p.render)
}

func (p *composePanel) render() {
	p.mu.Lock()
	names := append([]string(nil), p.names...)
	secondary := make([]string, len(names))
	for i, name := range names {
		secondary[i] = busyLine(p.busy[name])
	}
	p.mu.Unlock()

	current := p.list.GetCurrentItem()
	p.list.Clear()
	for i, name := range names {
		p.list.AddItem(tview.Escape(name), secondary[i], 0, nil)
	}
	p.shown = names
	if current >= 0 && current < len(names) {
		p.list.SetCurrentItem(current)
	}
	p.list.SetTitle(accentText(fmt.Sprintf("%s (%d)", p.title, len(names))))
}

func busyLine(actions map[string]bool) string {
	if len(actions) == 0 {
		return "  [gray]u up · D down · x delete[-]"
	}
	names := make([]string, 0, len(actions))
	for action := range actions {
		names = append(names, action)
	}
	sort.Strings(names)
	return "  [yellow]" + glyphBusy + " " + strings.Join(names, ", ") + "…[-]"
}
