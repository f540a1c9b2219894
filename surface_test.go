package main

import (
	"testing"

	"dockdash/reconcile"
	"dockdash/tables"
)

func TestHeadlessSurfaceTracksRows(t *testing.T) {
	s := newHeadlessSurface()
	view := s.View(tables.Images)
	if view == nil {
		t.Fatalf("expected a view for the images table")
	}
	view.InsertRow("a", reconcile.Bottom)
	view.InsertRow("b", reconcile.Top)
	view.RemoveRow("a")
	if got := s.Rows(tables.Images); got != 1 {
		t.Fatalf("expected 1 row, got %d", got)
	}
	if s.View("volumes") != nil {
		t.Fatalf("expected no view for an unknown table")
	}
	if got := s.Checked(tables.Images); len(got) != 0 {
		t.Fatalf("headless surface never selects rows, got %v", got)
	}
}

func TestHeadlessSurfaceStopIsIdempotent(t *testing.T) {
	s := newHeadlessSurface()
	s.Stop()
	s.Stop()
	select {
	case <-s.Done():
	default:
		t.Fatalf("expected Done to be closed after Stop")
	}
}
