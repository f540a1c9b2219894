package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dockdash/clock"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const maxSearchResults = 1000

var eventFilterLabels = []string{"All", "Messages", "Actions", "Streams", "System"}

type eventPage struct {
	root   *tview.Flex
	header *tview.TextView
	footer *tview.TextView
	search *tview.InputField
	list   *VirtualList

	buffer       *BoundedEventBuffer
	filterIndex  int
	searchFilter *SearchFilter
	title        string
	metrics      *Metrics

	scratch []StyledEvent
}

func newEventPage(ctx context.Context, clk clock.Clock, title string, buffer *BoundedEventBuffer, metrics *Metrics) *eventPage {
	header := tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	footer := tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	search := tview.NewInputField().SetLabel("Search: ").SetFieldWidth(30)
	list := NewVirtualList()
	root := tview.NewFlex().SetDirection(tview.FlexRow)

	headerRow := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(header, 0, 3, false).
		AddItem(search, 0, 1, false)
	root.AddItem(headerRow, 1, 0, false)
	root.AddItem(list, 0, 1, true)
	root.AddItem(footer, 1, 0, false)

	page := &eventPage{
		root:         root,
		header:       header,
		footer:       footer,
		search:       search,
		list:         list,
		buffer:       buffer,
		searchFilter: NewSearchFilter(ctx, clk),
		title:        title,
		metrics:      metrics,
	}
	page.updateHeader()
	return page
}

// bindSearch routes debounced query changes through refresh.
func (p *eventPage) bindSearch(refresh func()) {
	p.search.SetChangedFunc(func(text string) {
		p.searchFilter.SetQuery(text, refresh)
	})
}

func (p *eventPage) handleInput(event *tcell.EventKey, app *tview.Application) bool {
	if p == nil || event == nil {
		return false
	}
	switch event.Key() {
	case tcell.KeyUp:
		p.list.ScrollUp(1)
		return true
	case tcell.KeyDown:
		p.list.ScrollDown(1)
		return true
	case tcell.KeyPgUp:
		p.list.ScrollUp(10)
		return true
	case tcell.KeyPgDn:
		p.list.ScrollDown(10)
		return true
	case tcell.KeyHome:
		p.list.ScrollToStart()
		return true
	case tcell.KeyEnd:
		p.list.ScrollToEnd()
		return true
	case tcell.KeyEsc:
		p.search.SetText("")
		if app != nil {
			app.SetFocus(p.list)
		}
		return true
	}

	switch event.Rune() {
	case '/':
		if app != nil {
			app.SetFocus(p.search)
		}
		return true
	case 'k':
		p.list.ScrollUp(1)
		return true
	case 'j':
		p.list.ScrollDown(1)
		return true
	case '1', '2', '3', '4', '5':
		p.filterIndex = int(event.Rune() - '1')
		p.refresh()
		return true
	}
	return false
}

func (p *eventPage) refresh() {
	if p == nil || p.buffer == nil {
		return
	}
	snapshot := p.buffer.SnapshotInto(p.scratch)
	p.scratch = snapshot.Events

	indices := p.filterSnapshot(snapshot.Events)
	p.list.SetSnapshot(snapshot.Events, indices)
	p.updateFooter(snapshot.Events, indices)
}

func (p *eventPage) filterSnapshot(events []StyledEvent) []int {
	if len(events) == 0 {
		return nil
	}
	query := p.searchFilter.ActiveQuery()
	start := time.Time{}
	if query != "" && p.metrics != nil {
		start = time.Now()
	}
	indices := make([]int, 0, len(events))
	for i, event := range events {
		if !matchFilter(p.filterIndex, event.Kind) {
			continue
		}
		if query != "" && !matchQuery(query, event.Message) {
			continue
		}
		indices = append(indices, i)
		if query != "" && len(indices) >= maxSearchResults {
			break
		}
	}
	if !start.IsZero() {
		p.metrics.ObserveSearch(time.Since(start))
	}
	if len(indices) == len(events) {
		return nil
	}
	return indices
}

func (p *eventPage) updateHeader() {
	var b strings.Builder
	b.WriteString(accentText(p.title) + "  ")
	for i, label := range eventFilterLabels {
		if i == p.filterIndex {
			fmt.Fprintf(&b, "[yellow]%d %s[-] ", i+1, label)
		} else {
			fmt.Fprintf(&b, "%d %s ", i+1, label)
		}
	}
	p.header.SetText(strings.TrimSpace(b.String()))
}

func (p *eventPage) updateFooter(events []StyledEvent, indices []int) {
	p.updateHeader()
	count, maxCount, bytes, maxBytes := p.buffer.BufferUsage()
	drops := p.buffer.DropSnapshot()
	filtered := len(events)
	if indices != nil {
		filtered = len(indices)
	}
	p.footer.SetText(fmt.Sprintf("Showing: %d  Buffer: %d/%d  Bytes: %s/%s  Drops: O:%d E:%d B:%d",
		filtered, count, maxCount, humanize.IBytes(uint64(bytes)), humanize.IBytes(uint64(maxBytes)),
		drops.Oversized, drops.Evicted, drops.ByteLimit))
}

func matchFilter(filterIndex int, kind EventKind) bool {
	switch filterIndex {
	case 1:
		return kind == EventMessage
	case 2:
		return kind == EventAction
	case 3:
		return kind == EventStream
	case 4:
		return kind == EventSystem
	default:
		return true
	}
}
