// Package upload reconciles the heterogeneous file values an admin form can
// carry — raw in-memory files, bare URL strings, previously uploaded
// descriptors, or lists mixing them — into one tagged value model with a
// uniform preview list and a canonical payload.
package upload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Descriptor is an already-uploaded file's metadata as returned by the
// upload service. Decoding accepts both url/fileUrl and mimeType/documentType
// spellings; URL and MimeType are the canonical fields after decode.
type Descriptor struct {
	URL      string `json:"url"`
	FileName string `json:"fileName,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

// UnmarshalJSON folds the alternate field spellings into the canonical ones.
func (d *Descriptor) UnmarshalJSON(data []byte) error {
	var raw struct {
		URL          string `json:"url"`
		FileURL      string `json:"fileUrl"`
		FileName     string `json:"fileName"`
		MimeType     string `json:"mimeType"`
		DocumentType string `json:"documentType"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.URL = raw.URL
	if d.URL == "" {
		d.URL = raw.FileURL
	}
	if d.URL == "" {
		return errors.New("upload: descriptor missing url")
	}
	d.FileName = raw.FileName
	d.MimeType = raw.MimeType
	if d.MimeType == "" {
		d.MimeType = raw.DocumentType
	}
	return nil
}

// File is an in-memory file handle from a fresh selection, before any
// network upload happens.
type File struct {
	Name        string
	ContentType string
	Data        []byte

	// previewURL is assigned by a Field's allocator and released with it.
	previewURL string
}

// NewFile builds an in-memory file handle.
func NewFile(name, contentType string, data []byte) *File {
	return &File{Name: name, ContentType: contentType, Data: data}
}

type valueKind int

const (
	kindEmpty valueKind = iota
	kindRemote
	kindLocal
)

// Value is the discriminated union over a form field's file state: Empty,
// Remote (descriptors loaded from the API) or Local (freshly selected
// in-memory files). A Loaded-from-API value carries no file handles, so
// resubmitting an untouched field reuses the original descriptors instead of
// re-uploading.
type Value struct {
	kind        valueKind
	descriptors []Descriptor
	files       []*File
}

// Empty is the absent value. It encodes to JSON null, never to an empty
// array, so downstream code can tell "cleared" from "never set".
func Empty() Value { return Value{} }

// Remote wraps descriptors loaded from an API payload.
func Remote(descriptors ...Descriptor) Value {
	if len(descriptors) == 0 {
		return Value{}
	}
	return Value{kind: kindRemote, descriptors: descriptors}
}

// Local wraps freshly selected in-memory files.
func Local(files ...*File) Value {
	if len(files) == 0 {
		return Value{}
	}
	return Value{kind: kindLocal, files: files}
}

// IsEmpty reports whether the value holds nothing.
func (v Value) IsEmpty() bool { return v.kind == kindEmpty }

// IsLocal reports whether the value holds in-memory files pending upload.
func (v Value) IsLocal() bool { return v.kind == kindLocal }

// Descriptors returns the remote descriptors, nil for other states.
func (v Value) Descriptors() []Descriptor { return v.descriptors }

// Files returns the local file handles, nil for other states.
func (v Value) Files() []*File { return v.files }

// Len returns how many items the value holds.
func (v Value) Len() int {
	switch v.kind {
	case kindRemote:
		return len(v.descriptors)
	case kindLocal:
		return len(v.files)
	}
	return 0
}

// Payload returns the canonical value handed upward on change: nil when
// empty, the single item when one, otherwise the slice. Local values yield
// *File items, remote values yield Descriptor items.
func (v Value) Payload() any {
	switch v.kind {
	case kindRemote:
		if len(v.descriptors) == 1 {
			return v.descriptors[0]
		}
		return v.descriptors
	case kindLocal:
		if len(v.files) == 1 {
			return v.files[0]
		}
		return v.files
	}
	return nil
}

// UnmarshalJSON accepts every shape an API payload can carry for a file
// field: null, a bare URL string, a descriptor object, or an array mixing
// strings and objects.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*v = Value{}
		return nil
	}
	switch trimmed[0] {
	case '"':
		var url string
		if err := json.Unmarshal(trimmed, &url); err != nil {
			return err
		}
		if url == "" {
			*v = Value{}
			return nil
		}
		*v = Remote(Descriptor{URL: url})
		return nil
	case '{':
		var d Descriptor
		if err := json.Unmarshal(trimmed, &d); err != nil {
			return err
		}
		*v = Remote(d)
		return nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		descriptors := make([]Descriptor, 0, len(items))
		for i, item := range items {
			var elem Value
			if err := elem.UnmarshalJSON(item); err != nil {
				return fmt.Errorf("upload: element %d: %w", i, err)
			}
			descriptors = append(descriptors, elem.descriptors...)
		}
		*v = Remote(descriptors...)
		return nil
	}
	return errors.New("upload: unsupported file value shape")
}

// MarshalJSON emits the canonical wire form: null when empty, one descriptor
// object when single, an array otherwise. Local files have no uploaded URL
// yet and must be pushed through the upload endpoint first.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindEmpty:
		return []byte("null"), nil
	case kindRemote:
		if len(v.descriptors) == 1 {
			return json.Marshal(v.descriptors[0])
		}
		return json.Marshal(v.descriptors)
	}
	return nil, errors.New("upload: local files must be uploaded before encoding")
}
