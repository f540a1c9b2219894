// Package reconcile keeps rendered tables in step with streamed snapshots by
// diffing each snapshot against the previously seen state and touching only
// the rows and cells that changed.
package reconcile

// Tone is the semantic color of a rendered cell.
type Tone int

const (
	ToneDefault Tone = iota
	ToneSuccess
	ToneWarning
	ToneDanger
	ToneSecondary
	ToneInfo
	ToneMuted
)

func (t Tone) String() string {
	switch t {
	case ToneSuccess:
		return "success"
	case ToneWarning:
		return "warning"
	case ToneDanger:
		return "danger"
	case ToneSecondary:
		return "secondary"
	case ToneInfo:
		return "info"
	case ToneMuted:
		return "muted"
	default:
		return "default"
	}
}

// Cell is the display form of one attribute.
type Cell struct {
	Text  string
	Tone  Tone
	Badge bool
}

// Entity is a row-backed record with a stable identifier.
type Entity interface {
	EntityID() string
	// Attr returns the raw value of a tracked attribute.
	Attr(name string) any
}

// Column binds a tracked attribute to its rendering.
type Column[T Entity] struct {
	Attr   string
	Header string
	Render func(T) Cell
}

// Schema is the ordered column set of one table.
type Schema[T Entity] struct {
	Table   string
	Columns []Column[T]
}

// Headers returns the column headers in order.
func (s Schema[T]) Headers() []string {
	out := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		out[i] = col.Header
	}
	return out
}

// Position says where a new row goes.
type Position int

const (
	Bottom Position = iota
	Top
)

// Insert creates a row handle for a new identifier.
type Insert struct {
	ID       string
	Position Position
}

// Update rewrites one cell.
type Update struct {
	ID     string
	Column int
	Attr   string
	Cell   Cell
}

// Plan is the full set of mutations for one message.
type Plan struct {
	Removed  []string
	Inserted []Insert
	Updates  []Update
}

// Empty reports whether applying the plan would change nothing.
func (p Plan) Empty() bool {
	return len(p.Removed) == 0 && len(p.Inserted) == 0 && len(p.Updates) == 0
}

// View is the render target of a table.
type View interface {
	RemoveRow(id string)
	InsertRow(id string, pos Position)
	SetCell(id string, column int, cell Cell)
}
