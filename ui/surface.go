package ui

import (
	"io"

	"dockdash/action"
	"dockdash/reconcile"
	"dockdash/tables"
)

// Surface abstracts the dashboard so a headless renderer can stand in for the
// tview one. Implementations must be safe for concurrent calls from stream
// readers, action goroutines and the stats loop.
type Surface interface {
	action.Controls

	WaitReady()
	Stop()
	// Done is closed once the surface has stopped, including when the user quits.
	Done() <-chan struct{}

	// View returns the renderer for one of the tables package tables.
	View(table string) reconcile.View
	ComposeView() reconcile.FileView
	// MarkLoaded hides a table's loading indicator.
	MarkLoaded(table string)

	AppendMessage(toast tables.Toast)
	AppendAction(tone reconcile.Tone, line string)
	AppendStream(line string)
	AppendSystem(line string)
	SetStatuses(items []action.Status)
	SetStats(status string, lines []string)
	ShowInfo(title, body string)
	SystemWriter() io.Writer
}
