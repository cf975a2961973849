// Package fileinfo turns local paths into upload-ready file handles.
package fileinfo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/JeevithaAnandhan/marksheetpro/internal/domain"
	"github.com/gabriel-vasile/mimetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Inspect stats path and sniffs its content type. The MIME type comes from the
// file's leading bytes rather than its extension. For PDFs the page count is
// read on a best-effort basis; a damaged PDF still yields a handle so the
// processing service can report on it.
func Inspect(path string) (*domain.FileHandle, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("detect content type of %s: %w", path, err)
	}

	fh := &domain.FileHandle{
		Name:     filepath.Base(path),
		Size:     info.Size(),
		MIMEType: mt.String(),
		Path:     path,
	}
	if mt.Is("application/pdf") {
		fh.Pages = pageCount(path)
	}
	return fh, nil
}

// InspectAll inspects every path, stopping at the first failure.
func InspectAll(paths []string) ([]*domain.FileHandle, error) {
	out := make([]*domain.FileHandle, 0, len(paths))
	for _, p := range paths {
		fh, err := Inspect(p)
		if err != nil {
			return nil, err
		}
		out = append(out, fh)
	}
	return out, nil
}

func pageCount(path string) int {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0
	}
	return n
}
