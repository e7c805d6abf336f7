package service

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeFileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fw, err := w.CreateFormFile("file", name)
	require.NoError(t, err)

	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))

	return req.MultipartForm.File["file"][0]
}

func TestSaveVideo(t *testing.T) {
	root := t.TempDir()
	viper.Set("storage.root", root)
	viper.Set("storage.public_prefix", "/uploads")

	content := []byte("pretend this is an mp4")
	stored, err := SaveVideo(makeFileHeader(t, "my video.mp4", content))
	require.NoError(t, err)

	// The client name must never leak into the storage path
	assert.NotContains(t, stored.Path, "my video")
	assert.True(t, strings.HasSuffix(stored.Key, ".mp4"))
	assert.Equal(t, int64(len(content)), stored.Size)
	assert.Equal(t, "/uploads/videos/"+stored.Key, stored.URL)

	onDisk, err := os.ReadFile(stored.Path)
	require.NoError(t, err)
	assert.Equal(t, content, onDisk)
}

func TestSaveVideoDistinctKeys(t *testing.T) {
	viper.Set("storage.root", t.TempDir())
	viper.Set("storage.public_prefix", "/uploads")

	content := []byte("same bytes twice")

	a, err := SaveVideo(makeFileHeader(t, "dup.mp4", content))
	require.NoError(t, err)

	b, err := SaveVideo(makeFileHeader(t, "dup.mp4", content))
	require.NoError(t, err)

	// Two uploads of identical bytes are two independent files
	assert.NotEqual(t, a.Key, b.Key)
}

func TestDeleteFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "gone.mp4")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))

	assert.True(t, DeleteFile(p))
	assert.NoFileExists(t, p)

	// Deleting a missing file is a quiet no-op
	assert.False(t, DeleteFile(p))
	assert.False(t, DeleteFile(""))
}

func TestThumbnailPath(t *testing.T) {
	assert.Equal(t, "/data/videos/abc.jpg", ThumbnailPath("/data/videos/abc.mp4"))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00"},
		{-3, "0:00"},
		{59, "0:59"},
		{60, "1:00"},
		{332.7, "5:32"},
		{3601, "60:01"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.seconds))
	}
}
