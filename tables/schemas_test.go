package tables

import (
	"testing"

	"dockdash/api"
	"dockdash/reconcile"
)

type cellGrid struct {
	rows  []string
	cells map[string]map[int]reconcile.Cell
}

func (g *cellGrid) RemoveRow(id string) {}

func (g *cellGrid) InsertRow(id string, pos reconcile.Position) {
	g.rows = append(g.rows, id)
	if g.cells == nil {
		g.cells = make(map[string]map[int]reconcile.Cell)
	}
	g.cells[id] = make(map[int]reconcile.Cell)
}

func (g *cellGrid) SetCell(id string, col int, cell reconcile.Cell) {
	g.cells[id][col] = cell
}

func TestContainerSchemaRendersRow(t *testing.T) {
	grid := &cellGrid{}
	r := reconcile.New(ContainerSchema, grid)
	r.Replace([]api.Container{{
		ID:     "0123456789abcdef0123",
		Names:  []string{"/web"},
		State:  "running",
		Status: "Up 2 hours",
		Image:  "nginx:latest",
		Ports:  []api.Port{{IP: "0.0.0.0", PrivatePort: 80, PublicPort: 8080, Type: "tcp"}},
	}})

	row := grid.cells["0123456789abcdef0123"]
	want := []string{"web", "0123456789ab", "running", "Up 2 hours", "nginx:latest", "8080:80"}
	for i, text := range want {
		if row[i].Text != text {
			t.Fatalf("column %d (%s): got %q, want %q", i, ContainerSchema.Columns[i].Header, row[i].Text, text)
		}
	}
	if row[2].Tone != reconcile.ToneSuccess || !row[2].Badge {
		t.Fatalf("expected state badge with success tone, got %+v", row[2])
	}
}

func TestImageAndStatsSchemas(t *testing.T) {
	images := &cellGrid{}
	reconcile.New(ImageSchema, images).Replace([]api.Image{{
		ID: "sha256:1", Name: "redis:7", Tag: "7", Created: 1700000000, NumContainers: 2, Size: 2 * 1073741824,
	}})
	img := images.cells["sha256:1"]
	if img[0].Text != "redis" || img[1].Text != "7" || img[3].Text != "2.00 GB" || img[4].Text != "2" {
		t.Fatalf("unexpected image row %+v", img)
	}

	stats := &cellGrid{}
	reconcile.New(StatsSchema, stats).Upsert(api.ContainerStats{
		ID: "c1", Name: "web", CpuPercent: 1.5, MemoryUsage: 1048576, MemoryLimit: 1073741824, MemoryPercent: 0.1,
	})
	st := stats.cells["c1"]
	if st[1].Text != "1.500 %" || st[2].Text != "1.00 MB" || st[3].Text != "1.00 GB" || st[4].Text != "0.100 %" {
		t.Fatalf("unexpected stats row %+v", st)
	}
}

func TestSchemaHeaders(t *testing.T) {
	headers := ContainerSchema.Headers()
	if len(headers) != 6 || headers[0] != "Name" || headers[5] != "Ports" {
		t.Fatalf("unexpected headers %v", headers)
	}
}
