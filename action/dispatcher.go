package action

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"dockdash/api"
	"dockdash/clock"
	"dockdash/reconcile"
	"dockdash/tables"

	"gopkg.in/yaml.v3"
)

var (
	ErrImageRequired          = errors.New("action: image name is required")
	ErrComposeFieldsRequired  = errors.New("action: project name and compose contents are required")
	ErrInvalidComposeYAML     = errors.New("action: compose contents are not valid YAML")
	ErrProjectRequired        = errors.New("action: compose project is required")
	ErrPruneSelectionRequired = errors.New("action: nothing selected to prune")
)

// Validation texts shown next to the offending form.
const (
	MsgImageRequired   = "Please specify an image"
	MsgFieldsRequired  = "Please fill out required fields."
	MsgPruneSelection  = "Select at least one object type to prune"
	defaultPullTTL     = 10 * time.Second
	defaultTagFallback = "latest"
)

// Backend is the subset of the REST client the dispatcher calls.
type Backend interface {
	ContainerAction(ctx context.Context, action string, ids []string) error
	DeleteImages(ctx context.Context, ids []string) error
	PullImage(ctx context.Context, image, tag string) error
	ComposeAction(ctx context.Context, action, project string) error
	UploadCompose(ctx context.Context, project, yamlContents string) error
	Prune(ctx context.Context, objects []string) error
	RunContainer(ctx context.Context, cfg api.RunConfig) error
	ContainerInfo(ctx context.Context, id string) ([]byte, error)
}

// Result describes one completed request.
type Result struct {
	Action  string
	Control string
	IDs     []string
	Err     error
	Elapsed time.Duration
}

// Options configures a Dispatcher.
type Options struct {
	Backend    Backend
	Controls   Controls
	Board      *StatusBoard
	Clock      clock.Clock
	PullTTL    time.Duration
	DefaultTag string
	// OnResult observes every completed request (stats, logging).
	OnResult func(Result)
}

// Dispatcher issues backend requests for user commands. Requests from
// different controls may overlap; nothing serializes them.
type Dispatcher struct {
	backend    Backend
	controls   Controls
	board      *StatusBoard
	clock      clock.Clock
	pullTTL    time.Duration
	defaultTag string
	onResult   func(Result)
}

// NewDispatcher fills defaults for unset options.
func NewDispatcher(opts Options) (*Dispatcher, error) {
	if opts.Backend == nil {
		return nil, errors.New("action: backend is required")
	}
	if opts.Controls == nil {
		return nil, errors.New("action: controls are required")
	}
	d := &Dispatcher{
		backend:    opts.Backend,
		controls:   opts.Controls,
		board:      opts.Board,
		clock:      opts.Clock,
		pullTTL:    opts.PullTTL,
		defaultTag: strings.TrimSpace(opts.DefaultTag),
		onResult:   opts.OnResult,
	}
	if d.board == nil {
		d.board = NewStatusBoard(nil)
	}
	if d.clock == nil {
		d.clock = clock.Real()
	}
	if d.pullTTL <= 0 {
		d.pullTTL = defaultPullTTL
	}
	if d.defaultTag == "" {
		d.defaultTag = defaultTagFallback
	}
	return d, nil
}

// Board returns the pull status board.
func (d *Dispatcher) Board() *StatusBoard {
	return d.board
}

// PerformContainerAction applies action to every checked container in a
// single request. An empty selection is still sent.
func (d *Dispatcher) PerformContainerAction(ctx context.Context, action, control string) (<-chan Result, error) {
	if !containsString(api.ContainerActions, action) {
		return nil, fmt.Errorf("%w: %q", api.ErrUnknownAction, action)
	}
	ids := d.controls.Checked(tables.Containers)
	return d.batch(ctx, tables.Containers, "containers/"+action, control, ids, func(ctx context.Context) error {
		return d.backend.ContainerAction(ctx, action, ids)
	}), nil
}

// PerformImageDelete removes every checked image in a single request.
func (d *Dispatcher) PerformImageDelete(ctx context.Context, control string) <-chan Result {
	ids := d.controls.Checked(tables.Images)
	return d.batch(ctx, tables.Images, "images/delete", control, ids, func(ctx context.Context) error {
		return d.backend.DeleteImages(ctx, ids)
	})
}

// batch marks rows and control busy, runs call, then restores everything
// regardless of the outcome.
func (d *Dispatcher) batch(ctx context.Context, table, name, control string, ids []string, call func(context.Context) error) <-chan Result {
	ids = append([]string(nil), ids...)
	for _, id := range ids {
		d.controls.SetRowBusy(table, id, true)
	}
	d.controls.SetControl(control, Busy)
	return d.run(ctx, name, control, ids, call, func(error) {
		for _, id := range ids {
			d.controls.SetRowBusy(table, id, false)
			d.controls.Uncheck(table, id)
		}
		d.controls.SetControl(control, Idle)
	})
}

// Pull validates the image, posts a progress message and pulls image:tag.
// The message turns into a success or failure notice and is removed after
// the configured TTL.
func (d *Dispatcher) Pull(ctx context.Context, image, tag string) (<-chan Result, error) {
	image = strings.TrimSpace(image)
	tag = strings.TrimSpace(tag)
	d.controls.ClearValidation(FormPull)
	if image == "" {
		d.controls.ShowValidation(FormPull, MsgImageRequired)
		return nil, ErrImageRequired
	}
	if tag == "" {
		tag = d.defaultTag
	}
	ref := image + ":" + tag
	statusID := d.board.Add(reconcile.ToneWarning, "Pulling "+ref)
	return d.run(ctx, "images/pull", FormPull, nil, func(ctx context.Context) error {
		return d.backend.PullImage(ctx, image, tag)
	}, func(err error) {
		if err == nil {
			d.board.Update(statusID, reconcile.ToneSuccess, "Successfully pulled "+ref)
			d.controls.ClearForm(FormPull)
		} else {
			d.board.Update(statusID, reconcile.ToneDanger, "Failed to pull "+ref+" (double check the image name)")
		}
		d.clock.AfterFunc(d.pullTTL, func() {
			d.board.Remove(statusID)
		})
	}), nil
}

// Compose runs up, down or delete against one project. The control is named
// after the action and project so each project button spins on its own.
func (d *Dispatcher) Compose(ctx context.Context, action, project string) (<-chan Result, error) {
	if !containsString(api.ComposeActions, action) {
		return nil, fmt.Errorf("%w: compose %q", api.ErrUnknownAction, action)
	}
	project = strings.TrimSpace(project)
	if project == "" {
		return nil, ErrProjectRequired
	}
	control := ComposeControl(action, project)
	d.controls.SetControl(control, Busy)
	return d.run(ctx, "compose/"+action, control, []string{project}, func(ctx context.Context) error {
		return d.backend.ComposeAction(ctx, action, project)
	}, func(error) {
		d.controls.SetControl(control, Idle)
	}), nil
}

// ComposeControl names the control for action on project.
func ComposeControl(action, project string) string {
	return action + "-compose-" + project
}

// UploadCompose stores a new compose project after checking that both
// fields are present and the contents parse as a YAML mapping.
func (d *Dispatcher) UploadCompose(ctx context.Context, project, contents string) (<-chan Result, error) {
	project = strings.TrimSpace(project)
	d.controls.ClearValidation(FormCompose)
	if project == "" || strings.TrimSpace(contents) == "" {
		d.controls.ShowValidation(FormCompose, MsgFieldsRequired)
		return nil, ErrComposeFieldsRequired
	}
	var doc map[string]any
	if err := yaml.Unmarshal([]byte(contents), &doc); err != nil {
		d.controls.ShowValidation(FormCompose, "Invalid YAML: "+firstLine(err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrInvalidComposeYAML, err)
	}
	if len(doc) == 0 {
		d.controls.ShowValidation(FormCompose, "Invalid YAML: document is empty")
		return nil, ErrInvalidComposeYAML
	}
	d.controls.SetControl(FormCompose, Busy)
	return d.run(ctx, "compose/upload", FormCompose, []string{project}, func(ctx context.Context) error {
		return d.backend.UploadCompose(ctx, project, contents)
	}, func(err error) {
		if err == nil {
			d.controls.ClearForm(FormCompose)
		}
		d.controls.SetControl(FormCompose, Idle)
	}), nil
}

// Prune removes unused objects. "all" selects every kind.
func (d *Dispatcher) Prune(ctx context.Context, objects []string) (<-chan Result, error) {
	d.controls.ClearValidation(FormPrune)
	selected, err := NormalizePrune(objects)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		d.controls.ShowValidation(FormPrune, MsgPruneSelection)
		return nil, ErrPruneSelectionRequired
	}
	d.controls.SetControl(FormPrune, Busy)
	return d.run(ctx, "system/prune", FormPrune, selected, func(ctx context.Context) error {
		return d.backend.Prune(ctx, selected)
	}, func(error) {
		d.controls.SetControl(FormPrune, Idle)
		d.controls.ClearForm(FormPrune)
	}), nil
}

// NormalizePrune lowercases and deduplicates object kinds, expanding "all".
// The result follows the backend's canonical order.
func NormalizePrune(objects []string) ([]string, error) {
	want := make(map[string]bool, len(api.PruneObjects))
	for _, obj := range objects {
		obj = strings.ToLower(strings.TrimSpace(obj))
		switch {
		case obj == "":
		case obj == "all":
			for _, kind := range api.PruneObjects {
				want[kind] = true
			}
		case containsString(api.PruneObjects, obj):
			want[obj] = true
		default:
			return nil, fmt.Errorf("%w: prune %q", api.ErrUnknownAction, obj)
		}
	}
	out := make([]string, 0, len(want))
	for _, kind := range api.PruneObjects {
		if want[kind] {
			out = append(out, kind)
		}
	}
	return out, nil
}

// RunContainer creates a container from the run form.
func (d *Dispatcher) RunContainer(ctx context.Context, req RunRequest) (<-chan Result, error) {
	d.controls.ClearValidation(FormRun)
	if strings.TrimSpace(req.Image) == "" {
		d.controls.ShowValidation(FormRun, MsgImageRequired)
		return nil, ErrImageRequired
	}
	cfg := BuildRunConfig(req, d.defaultTag)
	d.controls.SetControl(FormRun, Busy)
	return d.run(ctx, "containers/run", FormRun, nil, func(ctx context.Context) error {
		return d.backend.RunContainer(ctx, cfg)
	}, func(err error) {
		if err == nil {
			d.controls.ClearForm(FormRun)
		}
		d.controls.SetControl(FormRun, Idle)
	}), nil
}

// Inspect fetches the backend's inspect document for one container.
func (d *Dispatcher) Inspect(ctx context.Context, id string) ([]byte, error) {
	start := d.clock.Now()
	doc, err := d.backend.ContainerInfo(ctx, id)
	d.report(Result{Action: "containers/info", IDs: []string{id}, Err: err, Elapsed: d.clock.Now().Sub(start)})
	return doc, err
}

// run executes call in its own goroutine, then finish, then reports. The
// returned channel yields the Result once and is closed.
func (d *Dispatcher) run(ctx context.Context, name, control string, ids []string, call func(context.Context) error, finish func(error)) <-chan Result {
	if ctx == nil {
		ctx = context.Background()
	}
	done := make(chan Result, 1)
	start := d.clock.Now()
	go func() {
		defer close(done)
		err := call(ctx)
		if finish != nil {
			finish(err)
		}
		res := Result{Action: name, Control: control, IDs: ids, Err: err, Elapsed: d.clock.Now().Sub(start)}
		d.report(res)
		done <- res
	}()
	return done
}

func (d *Dispatcher) report(res Result) {
	if res.Err != nil {
		log.Printf("Action %s: %v", res.Action, res.Err)
	}
	if d.onResult != nil {
		d.onResult(res)
	}
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
