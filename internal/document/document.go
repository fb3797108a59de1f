// Package document validates local files selected for upload.
package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Kind classifies a supported document.
type Kind string

const (
	KindPDF      Kind = "pdf"
	KindMarkdown Kind = "markdown"
	KindText     Kind = "text"
)

// ErrUnsupported is returned for files whose extension is not accepted.
var ErrUnsupported = errors.New("unsupported document type")

var kinds = map[string]Kind{
	".pdf":      KindPDF,
	".md":       KindMarkdown,
	".markdown": KindMarkdown,
	".txt":      KindText,
}

// SupportedExtensions returns the accepted file extensions, dot included.
func SupportedExtensions() []string {
	return []string{".pdf", ".md", ".markdown", ".txt"}
}

// Document is a local file chosen for upload.
type Document struct {
	Path string
	Name string
	Size int64
	Kind Kind
}

// ContentType returns the MIME type sent with the upload.
func (d Document) ContentType() string {
	switch d.Kind {
	case KindPDF:
		return "application/pdf"
	case KindMarkdown:
		return "text/markdown"
	default:
		return "text/plain"
	}
}

// KindOf returns the document kind for a path, or ErrUnsupported.
func KindOf(path string) (Kind, error) {
	ext := strings.ToLower(filepath.Ext(path))
	k, ok := kinds[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	return k, nil
}

// Open validates that path names a non-empty regular file of a supported kind.
// The file is not read; it is streamed at upload time.
func Open(path string) (Document, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Document{}, errors.New("no file selected")
	}
	if strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	kind, err := KindOf(path)
	if err != nil {
		return Document{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to stat document: %w", err)
	}
	if !info.Mode().IsRegular() {
		return Document{}, fmt.Errorf("%s is not a regular file", path)
	}
	if info.Size() == 0 {
		return Document{}, fmt.Errorf("%s is empty", filepath.Base(path))
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	return Document{
		Path: abs,
		Name: filepath.Base(abs),
		Size: info.Size(),
		Kind: kind,
	}, nil
}
