package main

import (
	"fmt"
	"strings"
	"time"

	"dockdash/api"
	"dockdash/clock"
	"dockdash/config"
	"dockdash/reconcile"
	"dockdash/recorder"
	"dockdash/stats"
	"dockdash/stream"
	"dockdash/tables"
)

// feed routes stream messages into the reconcilers and the surface. Each
// handler runs on its stream's reader goroutine.
type feed struct {
	surface  uiSurface
	tracker  *stats.Tracker
	recorder *recorder.Recorder
	clock    clock.Clock

	containers *reconcile.Reconciler[api.Container]
	images     *reconcile.Reconciler[api.Image]
	stats      *reconcile.Reconciler[api.ContainerStats]
	compose    *reconcile.FileSet

	decodeLogs *throttledLog
}

// Purpose: Build the per-table reconcilers on top of the surface's views.
// Key aspects: rec may be nil (recorder disabled).
// Upstream: main startup.
// Downstream: reconcile.New and reconcile.NewFileSet.
func newFeed(surface uiSurface, tracker *stats.Tracker, rec *recorder.Recorder, clk clock.Clock, logInterval time.Duration) *feed {
	if clk == nil {
		clk = clock.Real()
	}
	return &feed{
		surface:    surface,
		tracker:    tracker,
		recorder:   rec,
		clock:      clk,
		containers: reconcile.New(tables.ContainerSchema, surface.View(tables.Containers)),
		images:     reconcile.New(tables.ImageSchema, surface.View(tables.Images)),
		stats:      reconcile.New(tables.StatsSchema, surface.View(tables.Stats)),
		compose:    reconcile.NewFileSet(surface.ComposeView()),
		decodeLogs: newThrottledLog(logInterval),
	}
}

// handler returns the message handler for a known stream name.
func (f *feed) handler(name string) (stream.Handler, error) {
	switch name {
	case config.StreamContainers:
		return f.onContainers, nil
	case config.StreamImages:
		return f.onImages, nil
	case config.StreamStats:
		return f.onStats, nil
	case config.StreamServerMessages:
		return f.onMessage, nil
	case config.StreamComposeFiles:
		return f.onComposeFiles, nil
	}
	return nil, fmt.Errorf("no handler for stream %q", name)
}

func (f *feed) observe(msg stream.Message) {
	f.tracker.RecordMessage(msg.Stream, len(msg.Data))
	if f.recorder != nil {
		f.recorder.Record(msg)
	}
}

// Purpose: Apply a full container list snapshot.
// Key aspects: First snapshot appends rows; later ones prepend new rows.
// Upstream: containerlist stream.
// Downstream: Reconciler.Replace.
func (f *feed) onContainers(msg stream.Message) {
	f.observe(msg)
	list, err := api.DecodeContainers(msg.Data)
	if err != nil {
		f.decodeFailed(msg, err)
		return
	}
	f.tracker.RecordPlan(f.containers.Replace(list))
	f.surface.MarkLoaded(tables.Containers)
}

func (f *feed) onImages(msg stream.Message) {
	f.observe(msg)
	list, err := api.DecodeImages(msg.Data)
	if err != nil {
		f.decodeFailed(msg, err)
		return
	}
	f.tracker.RecordPlan(f.images.Replace(list))
	f.surface.MarkLoaded(tables.Images)
}

// Purpose: Apply one per-container metrics delta.
// Key aspects: A delta with a Message removes the container's row.
// Upstream: containermetrics stream.
// Downstream: Reconciler.Upsert / Reconciler.Remove.
func (f *feed) onStats(msg stream.Message) {
	f.observe(msg)
	delta, err := api.DecodeStats(msg.Data)
	if err != nil {
		f.decodeFailed(msg, err)
		return
	}
	if delta.Deleted() {
		f.tracker.RecordPlan(f.stats.Remove(delta.ID))
	} else {
		f.tracker.RecordPlan(f.stats.Upsert(delta))
	}
	f.surface.MarkLoaded(tables.Stats)
}

func (f *feed) onMessage(msg stream.Message) {
	f.observe(msg)
	decoded, err := api.DecodeMessage(msg.Data)
	if err != nil {
		f.decodeFailed(msg, err)
		return
	}
	f.surface.AppendMessage(tables.NewToast(decoded, f.clock.Now()))
}

func (f *feed) onComposeFiles(msg stream.Message) {
	f.observe(msg)
	files, ok, err := api.DecodeComposeFiles(msg.Data)
	if err != nil {
		f.decodeFailed(msg, err)
		return
	}
	if !ok {
		return
	}
	added, removed := f.compose.Sync(files.Files)
	if len(added) > 0 || len(removed) > 0 {
		f.surface.AppendStream(composeChangeLine(added, removed))
	}
}

func composeChangeLine(added, removed []string) string {
	parts := make([]string, 0, 2)
	if len(added) > 0 {
		parts = append(parts, "+"+strings.Join(added, " +"))
	}
	if len(removed) > 0 {
		parts = append(parts, "-"+strings.Join(removed, " -"))
	}
	return "Compose projects: " + strings.Join(parts, " ")
}

func (f *feed) decodeFailed(msg stream.Message, err error) {
	f.tracker.RecordDecodeFailure(msg.Stream)
	f.decodeLogs.Printf(msg.Stream, "Stream %s: dropping malformed payload: %v", msg.Stream, err)
}

// Purpose: Surface stream connection changes.
// Key aspects: Every failure counts as one scheduled reconnect.
// Upstream: stream.Manager OnState.
// Downstream: stats.Tracker and the surface's events page.
func (f *feed) onState(name string, state stream.State, err error) {
	switch state {
	case stream.StateOpen:
		f.surface.AppendStream(fmt.Sprintf("Stream %s: connected", name))
	case stream.StateClosed:
		if err == nil {
			return
		}
		f.tracker.RecordReconnect(name)
		f.surface.AppendStream(fmt.Sprintf("Stream %s: disconnected: %v", name, err))
	}
}
