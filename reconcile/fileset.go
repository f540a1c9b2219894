package reconcile

import "sync"

// FileView renders a set of named items, such as compose projects.
type FileView interface {
	AddFile(name string)
	RemoveFile(name string)
}

// FileSet mirrors the latest list of names onto a FileView. New names are
// appended in list order; names missing from the list are removed.
type FileSet struct {
	view FileView

	mu    sync.Mutex
	names []string
}

// NewFileSet renders into view.
func NewFileSet(view FileView) *FileSet {
	return &FileSet{view: view}
}

// Sync reconciles names and returns what changed.
func (f *FileSet) Sync(names []string) (added, removed []string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	have := make(map[string]struct{}, len(f.names))
	for _, name := range f.names {
		have[name] = struct{}{}
	}
	want := make(map[string]struct{}, len(names))
	for _, name := range names {
		want[name] = struct{}{}
		if _, ok := have[name]; ok {
			continue
		}
		have[name] = struct{}{}
		f.names = append(f.names, name)
		added = append(added, name)
	}
	kept := f.names[:0]
	for _, name := range f.names {
		if _, ok := want[name]; ok {
			kept = append(kept, name)
			continue
		}
		removed = append(removed, name)
	}
	f.names = kept

	if f.view != nil {
		for _, name := range added {
			f.view.AddFile(name)
		}
		for _, name := range removed {
			f.view.RemoveFile(name)
		}
	}
	return added, removed
}

// Names returns the current names in display order.
func (f *FileSet) Names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.names...)
}
