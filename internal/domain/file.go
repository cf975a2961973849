package domain

import (
	"bytes"
	"io"
	"os"
	"strings"
)

// MaxUploadBytes is the client-side upload ceiling (10 MiB).
const MaxUploadBytes int64 = 10 * 1024 * 1024

// AllowedMIMETypes is the set of content types accepted for upload.
var AllowedMIMETypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
}

// FileHandle describes a local file selected for upload.
type FileHandle struct {
	Name     string
	Size     int64
	MIMEType string

	// Path is the local source of the bytes. Empty for in-memory handles.
	Path string
	// Pages is the PDF page count, or 0 when unknown.
	Pages int

	open func() (io.ReadCloser, error)
}

// NewMemoryFile returns a handle whose contents come from data.
func NewMemoryFile(name, mimeType string, data []byte) *FileHandle {
	return &FileHandle{
		Name:     name,
		Size:     int64(len(data)),
		MIMEType: mimeType,
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// WithOpener overrides how the handle's bytes are read. Useful for tests that
// describe a large file without allocating it.
func (f *FileHandle) WithOpener(open func() (io.ReadCloser, error)) *FileHandle {
	f.open = open
	return f
}

// Open returns a reader over the file contents.
func (f *FileHandle) Open() (io.ReadCloser, error) {
	if f.open != nil {
		return f.open()
	}
	return os.Open(f.Path)
}

// ValidateFile checks f against the allowed MIME set and the size ceiling.
// The MIME check runs first. A nil handle yields ErrNoFile.
func ValidateFile(f *FileHandle) error {
	if f == nil {
		return ErrNoFile
	}
	mimeType := strings.ToLower(strings.TrimSpace(f.MIMEType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if !AllowedMIMETypes[mimeType] {
		return &ValidationError{Kind: UnsupportedType, FileName: f.Name, MIMEType: f.MIMEType, Size: f.Size}
	}
	if f.Size > MaxUploadBytes {
		return &ValidationError{Kind: FileTooLarge, FileName: f.Name, MIMEType: f.MIMEType, Size: f.Size, Limit: MaxUploadBytes}
	}
	return nil
}
