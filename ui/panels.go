package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	accentTag   = "[#ff69b4]"
	accentReset = "[-]"
)

var (
	uiBorderColor = tcell.ColorGray
	uiTitleColor  = tcell.ColorHotPink
	uiFocusColor  = tcell.ColorHotPink
)

// focusable abstracts a focusable primitive with optional scroll handling.
type focusable interface {
	Primitive() tview.Primitive
	SetFocused(focused bool)
	HandleScroll(event *tcell.EventKey) bool
}

// focusBox wraps a boxed TextView with focus styling metadata.
type focusBox struct {
	tv         *tview.TextView
	baseTitle  string
	scrollable bool
}

func newFocusBox(tv *tview.TextView, baseTitle string, scrollable bool) *focusBox {
	return &focusBox{
		tv:         tv,
		baseTitle:  baseTitle,
		scrollable: scrollable,
	}
}

func (b *focusBox) Primitive() tview.Primitive {
	if b == nil {
		return nil
	}
	return b.tv
}

func (b *focusBox) SetFocused(focused bool) {
	if b == nil {
		return
	}
	applyFocusBoxStyle(b.tv.Box, b.baseTitle, focused)
}

func (b *focusBox) HandleScroll(event *tcell.EventKey) bool {
	if b == nil || !b.scrollable {
		return false
	}
	return scrollTextView(b.tv, event)
}

// focusGroup manages focus cycling and scroll handling for a set of panes.
type focusGroup struct {
	items []focusable
	index int
}

func newFocusGroup(items ...focusable) focusGroup {
	filtered := make([]focusable, 0, len(items))
	for _, item := range items {
		if item == nil || item.Primitive() == nil {
			continue
		}
		filtered = append(filtered, item)
	}
	return focusGroup{items: filtered}
}

func (g *focusGroup) set(app *tview.Application, idx int) {
	if g == nil || len(g.items) == 0 {
		return
	}
	if idx < 0 || idx >= len(g.items) {
		idx = 0
	}
	g.index = idx
	for i, item := range g.items {
		item.SetFocused(i == idx)
	}
	if app != nil {
		app.SetFocus(g.items[idx].Primitive())
	}
}

func (g *focusGroup) cycle(app *tview.Application, delta int) {
	if g == nil || len(g.items) == 0 {
		return
	}
	next := g.index + delta
	if next < 0 {
		next = len(g.items) - 1
	} else if next >= len(g.items) {
		next = 0
	}
	g.set(app, next)
}

func (g *focusGroup) current() focusable {
	if g == nil || len(g.items) == 0 {
		return nil
	}
	return g.items[g.index]
}

func (g *focusGroup) handleScroll(app *tview.Application, event *tcell.EventKey) bool {
	if g == nil || app == nil || event == nil {
		return false
	}
	focused := app.GetFocus()
	for _, item := range g.items {
		if item.Primitive() == focused {
			return item.HandleScroll(event)
		}
	}
	return false
}

func applyFocusBoxStyle(box *tview.Box, title string, focused bool) {
	if box == nil {
		return
	}
	if focused {
		box.SetBorderColor(uiFocusColor)
		box.SetTitle(accentText("▶ " + title))
		return
	}
	box.SetBorderColor(uiBorderColor)
	box.SetTitle(accentText(title))
}

func newBoxedTextView(title string) *tview.TextView {
	tv := tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	tv.SetBorder(true)
	if title != "" {
		tv.SetTitle(accentText(title)).SetTitleAlign(tview.AlignLeft)
	}
	tv.SetBorderColor(uiBorderColor)
	tv.SetTitleColor(uiTitleColor)
	return tv
}

func scrollTextView(target *tview.TextView, event *tcell.EventKey) bool {
	if target == nil || event == nil {
		return false
	}
	row, col := target.GetScrollOffset()
	page := 10
	_, _, _, height := target.GetInnerRect()
	if height > 0 {
		page = height - 1
		if page < 1 {
			page = 1
		}
	}
	switch event.Key() {
	case tcell.KeyUp:
		if row > 0 {
			row--
		}
	case tcell.KeyDown:
		row++
	case tcell.KeyPgUp:
		row -= page
		if row < 0 {
			row = 0
		}
	case tcell.KeyPgDn:
		row += page
	case tcell.KeyHome:
		row = 0
	case tcell.KeyEnd:
		row = 1 << 30
	default:
		return false
	}
	target.ScrollTo(row, col)
	return true
}

func accentText(text string) string {
	if text == "" {
		return ""
	}
	return accentTag + text + accentReset
}

// centered wraps p in flexible padding so it floats over the page beneath.
func centered(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 1, true).
			AddItem(nil, 0, 1, false),
			width, 1, true).
		AddItem(nil, 0, 1, false)
}
