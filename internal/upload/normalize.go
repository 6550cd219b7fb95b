package upload

import (
	"net/url"
	"path"
	"strings"
)

// Kind classifies a preview for rendering: PDFs get a document frame,
// everything else is treated as an image.
type Kind string

const (
	KindPDF   Kind = "pdf"
	KindImage Kind = "image"
)

const pdfMimeType = "application/pdf"

// Preview is one displayable entry derived from a file value.
type Preview struct {
	URL  string
	Name string
	Kind Kind
}

// Normalize resolves a value into its preview list: one entry per item, each
// with a displayable URL, a best-effort file name and a PDF/image
// classification. Local files use the preview URL allocated by their Field.
func Normalize(v Value) []Preview {
	switch v.kind {
	case kindRemote:
		previews := make([]Preview, len(v.descriptors))
		for i, d := range v.descriptors {
			previews[i] = previewDescriptor(d)
		}
		return previews
	case kindLocal:
		previews := make([]Preview, len(v.files))
		for i, f := range v.files {
			previews[i] = previewFile(f)
		}
		return previews
	}
	return nil
}

func previewDescriptor(d Descriptor) Preview {
	name := d.FileName
	if name == "" {
		name = nameFromURL(d.URL)
	}
	return Preview{
		URL:  d.URL,
		Name: name,
		Kind: classify(d.MimeType, name),
	}
}

func previewFile(f *File) Preview {
	return Preview{
		URL:  f.previewURL,
		Name: f.Name,
		Kind: classify(f.ContentType, f.Name),
	}
}

// classify picks PDF or image. Priority: explicit mime type, then a
// case-insensitive .pdf suffix on the name; anything else is an image.
func classify(mimeType, name string) Kind {
	if mimeType != "" {
		if strings.EqualFold(mimeType, pdfMimeType) {
			return KindPDF
		}
		return KindImage
	}
	if strings.HasSuffix(strings.ToLower(name), ".pdf") {
		return KindPDF
	}
	return KindImage
}

func nameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" {
		return raw
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" {
		return raw
	}
	return base
}
