package services

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartFile(t *testing.T, field, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	t.Cleanup(func() { _ = req.MultipartForm.RemoveAll() })

	return req.MultipartForm.File[field][0]
}

func TestSaveTempAndRemove(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	s := NewStorageService(dir)
	require.NoError(t, s.EnsureUploadDir())

	path, err := s.SaveTemp(multipartFile(t, "audio_file", "answer.MP3", []byte("ID3 audio")))
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, ".mp3"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ID3 audio", string(data))

	s.Remove(path)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	s.Remove(path)
	s.Remove("")
}

func TestSaveTempUniquePaths(t *testing.T) {
	s := NewStorageService(t.TempDir())

	fh := multipartFile(t, "audio_file", "../../etc/passwd", []byte("x"))
	a, err := s.SaveTemp(fh)
	require.NoError(t, err)
	b, err := s.SaveTemp(fh)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, ".wav"), "unknown extensions are stored as .wav")
}

func TestSaveTempMissingDir(t *testing.T) {
	s := NewStorageService(filepath.Join(t.TempDir(), "never-created"))

	_, err := s.SaveTemp(multipartFile(t, "audio_file", "a.wav", []byte("x")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create temp file")
}
