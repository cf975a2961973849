package fileinfo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/JeevithaAnandhan/marksheetpro/internal/domain"
	"github.com/JeevithaAnandhan/marksheetpro/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect_PDF(t *testing.T) {
	path := testutil.WriteFile(t, "marks.pdf", testutil.MinimalPDF())

	fh, err := Inspect(path)
	require.NoError(t, err)

	assert.Equal(t, "marks.pdf", fh.Name)
	assert.Equal(t, "application/pdf", fh.MIMEType)
	assert.Equal(t, path, fh.Path)
	assert.Equal(t, 1, fh.Pages)
	assert.NoError(t, domain.ValidateFile(fh))
}

func TestInspect_SniffsContentNotExtension(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	path := testutil.WriteFile(t, "scan.pdf", png)

	fh, err := Inspect(path)
	require.NoError(t, err)
	assert.Equal(t, "image/png", fh.MIMEType)
	assert.Zero(t, fh.Pages)
	assert.Equal(t, int64(len(png)), fh.Size)
}

func TestInspect_JPEG(t *testing.T) {
	path := testutil.WriteFile(t, "photo.jpg", []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00"))

	fh, err := Inspect(path)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", fh.MIMEType)
}

func TestInspect_UnsupportedContentFailsValidation(t *testing.T) {
	path := testutil.WriteFile(t, "notes.pdf", []byte("just some text\n"))

	fh, err := Inspect(path)
	require.NoError(t, err)

	var verr *domain.ValidationError
	require.ErrorAs(t, domain.ValidateFile(fh), &verr)
	assert.Equal(t, domain.UnsupportedType, verr.Kind)
}

func TestInspect_Errors(t *testing.T) {
	_, err := Inspect(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Inspect(t.TempDir())
	assert.Error(t, err)
}

func TestInspectAll(t *testing.T) {
	a := testutil.WriteFile(t, "a.pdf", testutil.MinimalPDF())
	b := testutil.WriteFile(t, "b.pdf", testutil.MinimalPDF())

	handles, err := InspectAll([]string{a, b})
	require.NoError(t, err)
	require.Len(t, handles, 2)
	assert.Equal(t, "b.pdf", handles[1].Name)

	_, err = InspectAll([]string{a, filepath.Join(t.TempDir(), "nope")})
	assert.Error(t, err)
}
