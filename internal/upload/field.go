package upload

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// PreviewAllocator creates displayable URLs for in-memory files and releases
// the backing resource when the preview is dropped. Every allocated URL must
// be released exactly once.
type PreviewAllocator interface {
	Allocate(f *File) (string, error)
	Release(url string)
}

// Field manages one upload form field across its lifecycle: loading an
// external value, replacing the selection, removing single items and
// clearing. It allocates one preview URL per local file and guarantees the
// change callback receives nil, never an empty list, when the field empties.
type Field struct {
	multiple bool
	alloc    PreviewAllocator
	onChange func(Value)

	value    Value
	previews []Preview
	stale    bool
}

// NewField builds a field. The allocator is only consulted for local files;
// onChange may be nil for read-only hosts.
func NewField(multiple bool, alloc PreviewAllocator, onChange func(Value)) *Field {
	return &Field{multiple: multiple, alloc: alloc, onChange: onChange}
}

// Load installs an externally supplied value, as when an API payload is
// bound into the form on mount. Loaded descriptors behave like a selection
// for preview purposes but carry no file handles, so an untouched resubmit
// reuses them as-is. Load does not fire the change callback.
func (f *Field) Load(v Value) {
	f.releaseLocal()
	if v.IsLocal() {
		// External values are descriptors or URLs by definition; local
		// handles can only enter through Select.
		v = Empty()
	}
	f.value = v
	f.stale = true
}

// Select replaces the working set with a fresh selection. In single mode
// only the first file is kept. Previous local previews are released, one
// preview URL is allocated per new file, and the change callback fires with
// the new value.
func (f *Field) Select(files ...*File) error {
	if len(files) == 0 {
		return nil
	}
	if !f.multiple {
		files = files[:1]
	}
	for i, file := range files {
		url, err := f.alloc.Allocate(file)
		if err != nil {
			for _, done := range files[:i] {
				f.release(done)
			}
			return fmt.Errorf("allocate preview: %w", err)
		}
		file.previewURL = url
	}
	f.releaseLocal()
	f.value = Local(files...)
	f.stale = true
	f.changed()
	return nil
}

// RemoveAt drops the item at index i, renumbering the remainder. Removing
// the last item empties the field and the callback receives the empty value,
// whose payload is nil rather than an empty list.
func (f *Field) RemoveAt(i int) {
	if i < 0 || i >= f.value.Len() {
		return
	}
	switch {
	case f.value.IsLocal():
		files := f.value.files
		f.release(files[i])
		files = append(files[:i], files[i+1:]...)
		f.value = Local(files...)
	default:
		descriptors := f.value.descriptors
		descriptors = append(descriptors[:i], descriptors[i+1:]...)
		f.value = Remote(descriptors...)
	}
	f.stale = true
	f.changed()
}

// Clear empties the field, releasing any local previews, and fires the
// change callback with the empty value.
func (f *Field) Clear() {
	f.releaseLocal()
	f.value = Empty()
	f.stale = true
	f.changed()
}

// Value returns the current field value.
func (f *Field) Value() Value { return f.value }

// Previews returns the preview list for the current value. The list is
// recomputed only after the underlying set changes, so repeated renders do
// not allocate fresh previews.
func (f *Field) Previews() []Preview {
	if f.stale {
		f.previews = Normalize(f.value)
		f.stale = false
	}
	return f.previews
}

// Close releases all local preview resources. Call when the owning form
// unmounts.
func (f *Field) Close() {
	f.releaseLocal()
	f.value = Empty()
	f.previews = nil
	f.stale = false
}

func (f *Field) changed() {
	if f.onChange != nil {
		f.onChange(f.value)
	}
}

func (f *Field) releaseLocal() {
	for _, file := range f.value.files {
		f.release(file)
	}
}

func (f *Field) release(file *File) {
	if file.previewURL == "" || f.alloc == nil {
		return
	}
	f.alloc.Release(file.previewURL)
	file.previewURL = ""
}

// TempAllocator materializes previews as files under a temp directory and
// serves them via file:// URLs. Release removes the backing file.
type TempAllocator struct {
	Dir string

	mu    sync.Mutex
	paths map[string]string
}

// NewTempAllocator creates the preview directory if needed.
func NewTempAllocator(dir string) (*TempAllocator, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "tripdesk-previews")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create preview dir: %w", err)
	}
	return &TempAllocator{Dir: dir, paths: make(map[string]string)}, nil
}

// Allocate writes the file's bytes to a uniquely named temp file.
func (a *TempAllocator) Allocate(f *File) (string, error) {
	name := uuid.NewString() + "-" + filepath.Base(f.Name)
	p := filepath.Join(a.Dir, name)
	if err := os.WriteFile(p, f.Data, 0o600); err != nil {
		return "", fmt.Errorf("write preview: %w", err)
	}
	url := "file://" + p
	a.mu.Lock()
	a.paths[url] = p
	a.mu.Unlock()
	return url, nil
}

// Release deletes the backing temp file for a previously allocated URL.
func (a *TempAllocator) Release(url string) {
	a.mu.Lock()
	p, ok := a.paths[url]
	delete(a.paths, url)
	a.mu.Unlock()
	if ok {
		_ = os.Remove(p)
	}
}
