package client

import (
	"bytes"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddFilePart_BuildsMultipartBody(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("some document text"), 0o644))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, addFilePart(mw, path))
	require.NoError(t, mw.Close())

	reader := multipart.NewReader(&buf, mw.Boundary())
	part, err := reader.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "files", part.FormName())
	assert.Equal(t, "notes.txt", part.FileName())

	content, err := io.ReadAll(part)
	require.NoError(t, err)
	assert.Equal(t, "some document text", string(content))
}

func TestAddFilePart_MissingFile(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	err := addFilePart(mw, filepath.Join(t.TempDir(), "nope.pdf"))
	assert.Error(t, err)
}
