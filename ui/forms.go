package ui

import (
	"strings"
	"sync"

	"dockdash/action"
	"dockdash/api"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	labelImage        = "Image"
	labelTag          = "Tag"
	labelName         = "Container name"
	labelEnv          = "Environment"
	labelContainerPrt = "Container port"
	labelHostPort     = "Host port"
	labelProtocol     = "Protocol"
	labelVolume       = "Volume"
	labelTarget       = "Mount target"
	labelMode         = "Mode"
	labelProject      = "Project"
	labelContents     = "Compose YAML"
	labelPruneAll     = "all"
)

var (
	protocolOptions = []string{"tcp", "udp"}
	modeOptions     = []string{"rw", "ro"}
)

// formModal is a boxed tview.Form floating over the current page, with a
// validation line under it. Inputs are read and reset only on the UI
// goroutine; the validation text may be set from anywhere.
type formModal struct {
	name   string
	title  string
	form   *tview.Form
	status *tview.TextView
	notes  *tview.TextView
	page   tview.Primitive

	inputs    []*tview.InputField
	areas     []*tview.TextArea
	checks    []*tview.Checkbox
	dropdowns []*tview.DropDown

	mu         sync.Mutex
	validation string
}

func newFormModal(name, title string, width, height int, withNotes bool) *formModal {
	form := tview.NewForm().SetItemPadding(0)
	form.SetFieldBackgroundColor(tcell.ColorDarkSlateGray)
	form.SetButtonBackgroundColor(tcell.ColorDarkSlateGray)
	status := tview.NewTextView().SetDynamicColors(true)
	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(form, 0, 1, true).
		AddItem(status, 1, 0, false)
	f := &formModal{name: name, title: title, form: form, status: status}
	if withNotes {
		f.notes = tview.NewTextView().SetDynamicColors(true).SetWrap(true)
		root.AddItem(f.notes, 4, 0, false)
	}
	root.SetBorder(true).SetTitle(accentText(title)).SetTitleAlign(tview.AlignLeft)
	root.SetBorderColor(uiFocusColor)
	f.page = centered(root, width, height)
	return f
}

func (f *formModal) input(label string, width int) *tview.InputField {
	field := tview.NewInputField().SetLabel(label).SetFieldWidth(width)
	f.form.AddFormItem(field)
	f.inputs = append(f.inputs, field)
	return field
}

func (f *formModal) area(label string, width, height int) *tview.TextArea {
	area := tview.NewTextArea().SetLabel(label).SetSize(height, width)
	f.form.AddFormItem(area)
	f.areas = append(f.areas, area)
	return area
}

func (f *formModal) check(label string) *tview.Checkbox {
	box := tview.NewCheckbox().SetLabel(label)
	f.form.AddFormItem(box)
	f.checks = append(f.checks, box)
	return box
}

func (f *formModal) dropdown(label string, options []string) *tview.DropDown {
	dd := tview.NewDropDown().SetLabel(label).SetOptions(options, nil).SetCurrentOption(0)
	f.form.AddFormItem(dd)
	f.dropdowns = append(f.dropdowns, dd)
	return dd
}

func (f *formModal) text(label string) string {
	item := f.form.GetFormItemByLabel(label)
	switch field := item.(type) {
	case *tview.InputField:
		return field.GetText()
	case *tview.TextArea:
		return field.GetText()
	case *tview.DropDown:
		_, option := field.GetCurrentOption()
		return option
	}
	return ""
}

func (f *formModal) checked(label string) bool {
	if box, ok := f.form.GetFormItemByLabel(label).(*tview.Checkbox); ok {
		return box.IsChecked()
	}
	return false
}

// clear resets every input. UI goroutine only.
func (f *formModal) clear() {
	for _, field := range f.inputs {
		field.SetText("")
	}
	for _, area := range f.areas {
		area.SetText("", false)
	}
	for _, box := range f.checks {
		box.SetChecked(false)
	}
	for _, dd := range f.dropdowns {
		dd.SetCurrentOption(0)
	}
}

func (f *formModal) setValidation(text string) {
	f.mu.Lock()
	f.validation = text
	f.mu.Unlock()
}

func (f *formModal) Validation() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validation
}

func (f *formModal) render() {
	text := f.Validation()
	if text == "" {
		f.status.SetText("")
		return
	}
	f.status.SetText("[red]" + tview.Escape(text) + "[-]")
}

func newPullForm(submit func(image, tag string), cancel func()) *formModal {
	f := newFormModal(action.FormPull, "Pull image", 60, 14, true)
	f.input(labelImage, 36)
	f.input(labelTag, 20).SetPlaceholder("latest")
	f.form.AddButton("Pull", func() {
		submit(f.text(labelImage), f.text(labelTag))
	})
	f.form.AddButton("Close", cancel)
	f.form.SetCancelFunc(cancel)
	return f
}

func newRunForm(submit func(req action.RunRequest), cancel func()) *formModal {
	f := newFormModal(action.FormRun, "Run container", 70, 22, false)
	f.input(labelImage, 36)
	f.input(labelTag, 20).SetPlaceholder("latest")
	f.input(labelName, 30)
	f.input(labelEnv, 40).SetPlaceholder("KEY=value, OTHER=value")
	f.input(labelContainerPrt, 8)
	f.input(labelHostPort, 8)
	f.dropdown(labelProtocol, protocolOptions)
	f.input(labelVolume, 24)
	f.input(labelTarget, 30)
	f.dropdown(labelMode, modeOptions)
	f.form.AddButton("Run", func() {
		submit(action.RunRequest{
			Image:         f.text(labelImage),
			Tag:           f.text(labelTag),
			Name:          f.text(labelName),
			Env:           parseEnv(f.text(labelEnv)),
			ContainerPort: f.text(labelContainerPrt),
			HostPort:      f.text(labelHostPort),
			Protocol:      f.text(labelProtocol),
			VolumeName:    f.text(labelVolume),
			VolumeTarget:  f.text(labelTarget),
			VolumeMode:    f.text(labelMode),
		})
	})
	f.form.AddButton("Close", cancel)
	f.form.SetCancelFunc(cancel)
	return f
}

func newUploadForm(submit func(project, contents string), cancel func()) *formModal {
	f := newFormModal(action.FormCompose, "Upload compose project", 80, 24, false)
	f.input(labelProject, 30)
	f.area(labelContents, 60, 14)
	f.form.AddButton("Upload", func() {
		submit(f.text(labelProject), f.text(labelContents))
	})
	f.form.AddButton("Close", cancel)
	f.form.SetCancelFunc(cancel)
	return f
}

func newPruneForm(submit func(objects []string), cancel func()) *formModal {
	f := newFormModal(action.FormPrune, "Prune unused objects", 50, 14, false)
	f.check(labelPruneAll)
	for _, kind := range api.PruneObjects {
		f.check(kind)
	}
	f.form.AddButton("Prune", func() {
		submit(f.pruneSelection())
	})
	f.form.AddButton("Close", cancel)
	f.form.SetCancelFunc(cancel)
	return f
}

func (f *formModal) pruneSelection() []string {
	var objects []string
	if f.checked(labelPruneAll) {
		objects = append(objects, labelPruneAll)
	}
	for _, kind := range api.PruneObjects {
		if f.checked(kind) {
			objects = append(objects, kind)
		}
	}
	return objects
}

// parseEnv splits "A=1, B=2" (or one pair per line) into pairs. A pair
// without "=" keeps an empty value.
func parseEnv(text string) []action.EnvVar {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n' || r == ';'
	})
	var out []action.EnvVar
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		key, value, _ := strings.Cut(field, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		out = append(out, action.EnvVar{Key: key, Value: strings.TrimSpace(value)})
	}
	return out
}

func statusLines(items []action.Status) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(toneTag(item.Tone) + tview.Escape(item.Text) + "[-]")
	}
	return b.String()
}
