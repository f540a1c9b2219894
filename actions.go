package main

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"dockdash/action"
	"dockdash/reconcile"
	"dockdash/tables"
	"dockdash/ui"
)

// commands binds dashboard keys to the dispatcher. The dashboard is built
// before the dispatcher (the dispatcher drives the dashboard's controls), so
// the dispatcher is attached afterwards.
type commands struct {
	ctx        context.Context
	surface    atomic.Pointer[uiSurface]
	dispatcher atomic.Pointer[action.Dispatcher]
}

func newCommands(ctx context.Context) *commands {
	return &commands{ctx: ctx}
}

func (c *commands) attach(surface uiSurface, dispatcher *action.Dispatcher) {
	c.surface.Store(&surface)
	c.dispatcher.Store(dispatcher)
}

func (c *commands) ready() (*action.Dispatcher, bool) {
	d := c.dispatcher.Load()
	if d == nil {
		log.Printf("Action: ignored, backend not ready")
		return nil, false
	}
	return d, true
}

// Purpose: Expose dispatcher operations as dashboard handlers.
// Key aspects: Each handler returns immediately; requests run on their own goroutines.
// Upstream: ui.Dashboard key bindings and forms.
// Downstream: action.Dispatcher.
func (c *commands) handlers() ui.Handlers {
	return ui.Handlers{
		ContainerAction: func(name, control string) {
			if d, ok := c.ready(); ok {
				_, err := d.PerformContainerAction(c.ctx, name, control)
				logCommandError("containers/"+name, err)
			}
		},
		DeleteImages: func(control string) {
			if d, ok := c.ready(); ok {
				d.PerformImageDelete(c.ctx, control)
			}
		},
		Pull: func(image, tag string) {
			if d, ok := c.ready(); ok {
				_, err := d.Pull(c.ctx, image, tag)
				logCommandError("images/pull", err)
			}
		},
		Compose: func(name, project string) {
			if d, ok := c.ready(); ok {
				_, err := d.Compose(c.ctx, name, project)
				logCommandError("compose/"+name, err)
			}
		},
		Upload: func(project, contents string) {
			if d, ok := c.ready(); ok {
				_, err := d.UploadCompose(c.ctx, project, contents)
				logCommandError("compose/upload", err)
			}
		},
		Prune: func(objects []string) {
			if d, ok := c.ready(); ok {
				_, err := d.Prune(c.ctx, objects)
				logCommandError("system/prune", err)
			}
		},
		Run: func(req action.RunRequest) {
			if d, ok := c.ready(); ok {
				_, err := d.RunContainer(c.ctx, req)
				logCommandError("containers/run", err)
			}
		},
		Inspect: func(id string) {
			if d, ok := c.ready(); ok {
				go c.inspect(d, id)
			}
		},
	}
}

func (c *commands) inspect(d *action.Dispatcher, id string) {
	surface := c.surface.Load()
	if surface == nil {
		return
	}
	doc, err := d.Inspect(c.ctx, id)
	if err != nil {
		(*surface).AppendAction(reconcile.ToneDanger, fmt.Sprintf("Info %s failed: %v", tables.ShortID(id), err))
		return
	}
	(*surface).ShowInfo("Container "+tables.ShortID(id), string(doc))
}

func logCommandError(name string, err error) {
	if err != nil {
		log.Printf("Action %s: not sent: %v", name, err)
	}
}

// Purpose: Report completed requests to stats and the events page.
// Key aspects: Successes and failures both produce one event line.
// Upstream: action.Dispatcher OnResult.
// Downstream: stats.Tracker.RecordAction and uiSurface.AppendAction.
func actionReporter(tracker interface{ RecordAction(string, bool) }, surface func() uiSurface) func(action.Result) {
	return func(res action.Result) {
		tracker.RecordAction(res.Action, res.Err != nil)
		s := surface()
		if s == nil {
			return
		}
		s.AppendAction(resultTone(res), resultLine(res))
	}
}

func resultTone(res action.Result) reconcile.Tone {
	if res.Err != nil {
		return reconcile.ToneDanger
	}
	return reconcile.ToneSuccess
}

func resultLine(res action.Result) string {
	target := ""
	switch len(res.IDs) {
	case 0:
	case 1:
		target = " " + tables.ShortID(res.IDs[0])
	default:
		target = fmt.Sprintf(" (%d targets)", len(res.IDs))
	}
	elapsed := res.Elapsed.Round(time.Millisecond)
	if res.Err != nil {
		return fmt.Sprintf("Action %s%s failed after %s: %v", res.Action, target, elapsed, res.Err)
	}
	return fmt.Sprintf("Action %s%s done in %s", res.Action, target, elapsed)
}
