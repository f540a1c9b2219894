package tables

import (
	"strconv"

	"dockdash/api"
	"dockdash/reconcile"
)

// Table names, shared with the action dispatcher's selection lookups.
const (
	Containers = "containers"
	Images     = "images"
	Stats      = "stats"
)

// ContainerSchema renders the containerlist stream.
var ContainerSchema = reconcile.Schema[api.Container]{
	Table: Containers,
	Columns: []reconcile.Column[api.Container]{
		{Attr: "Names", Header: "Name", Render: func(c api.Container) reconcile.Cell {
			return reconcile.Cell{Text: c.DisplayName()}
		}},
		{Attr: "ID", Header: "ID", Render: func(c api.Container) reconcile.Cell {
			return reconcile.Cell{Text: ShortID(c.ID), Tone: reconcile.ToneMuted}
		}},
		{Attr: "State", Header: "State", Render: func(c api.Container) reconcile.Cell {
			return reconcile.Cell{Text: c.State, Tone: StatusTone(c.State), Badge: true}
		}},
		{Attr: "Status", Header: "Status", Render: func(c api.Container) reconcile.Cell {
			return reconcile.Cell{Text: c.Status, Tone: StatusTone(c.Status), Badge: true}
		}},
		{Attr: "Image", Header: "Image", Render: func(c api.Container) reconcile.Cell {
			return reconcile.Cell{Text: c.Image}
		}},
		{Attr: "Ports", Header: "Ports", Render: func(c api.Container) reconcile.Cell {
			return reconcile.Cell{Text: PortBindings(c.Ports), Tone: reconcile.ToneInfo}
		}},
	},
}

// ImageSchema renders the imagelist stream.
var ImageSchema = reconcile.Schema[api.Image]{
	Table: Images,
	Columns: []reconcile.Column[api.Image]{
		{Attr: "Name", Header: "Name", Render: func(i api.Image) reconcile.Cell {
			return reconcile.Cell{Text: ImageName(i.Name)}
		}},
		{Attr: "Tag", Header: "Tag", Render: func(i api.Image) reconcile.Cell {
			return reconcile.Cell{Text: i.Tag, Tone: reconcile.ToneSecondary, Badge: true}
		}},
		{Attr: "Created", Header: "Created", Render: func(i api.Image) reconcile.Cell {
			return reconcile.Cell{Text: CreatedDate(i.Created)}
		}},
		{Attr: "Size", Header: "Size", Render: func(i api.Image) reconcile.Cell {
			return reconcile.Cell{Text: ConvertBytes(float64(i.Size))}
		}},
		{Attr: "NumContainers", Header: "Used by", Render: func(i api.Image) reconcile.Cell {
			return reconcile.Cell{Text: strconv.Itoa(i.NumContainers)}
		}},
	},
}

// StatsSchema renders containermetrics deltas.
var StatsSchema = reconcile.Schema[api.ContainerStats]{
	Table: Stats,
	Columns: []reconcile.Column[api.ContainerStats]{
		{Attr: "Name", Header: "Name", Render: func(s api.ContainerStats) reconcile.Cell {
			return reconcile.Cell{Text: s.Name}
		}},
		{Attr: "CpuPercent", Header: "CPU %", Render: func(s api.ContainerStats) reconcile.Cell {
			return reconcile.Cell{Text: Percent(s.CpuPercent)}
		}},
		{Attr: "MemoryUsage", Header: "Mem usage", Render: func(s api.ContainerStats) reconcile.Cell {
			return reconcile.Cell{Text: ConvertBytes(s.MemoryUsage)}
		}},
		{Attr: "MemoryLimit", Header: "Mem limit", Render: func(s api.ContainerStats) reconcile.Cell {
			return reconcile.Cell{Text: ConvertBytes(s.MemoryLimit)}
		}},
		{Attr: "MemoryPercent", Header: "Mem %", Render: func(s api.ContainerStats) reconcile.Cell {
			return reconcile.Cell{Text: Percent(s.MemoryPercent)}
		}},
	},
}
