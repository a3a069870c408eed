package blobstore

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), "default.jpg")
	require.NoError(t, err)
	return s
}

func TestPut(t *testing.T) {
	s := newTestStore(t)
	content := []byte("\xff\xd8\xff\xe0 fake jpeg")
	sum := sha256.Sum256(content)
	want := hex.EncodeToString(sum[:]) + ".jpg"

	name, err := s.Put(bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, want, name)

	got, err := os.ReadFile(filepath.Join(s.Dir(), name))
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestPutSameBytesTwice(t *testing.T) {
	s := newTestStore(t)
	content := []byte("same picture")

	first, err := s.Put(bytes.NewReader(content))
	require.NoError(t, err)
	second, err := s.Put(bytes.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, first, second)

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	var blobs int
	for _, e := range entries {
		if !e.IsDir() {
			blobs++
		}
	}
	assert.Equal(t, 1, blobs, "identical uploads must share one file")

	tmp, err := os.ReadDir(filepath.Join(s.Dir(), tmpDirName))
	require.NoError(t, err)
	assert.Empty(t, tmp, "temp files must not be left behind")
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "default.jpg"), []byte("placeholder"), 0o600))
	stored, err := s.Put(bytes.NewReader([]byte("real image")))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "..dots.jpg"), []byte("dotted"), 0o600))

	testCases := []struct {
		name         string
		imageName    string
		wantErr      error
		wantFallback bool
		wantBytes    string
	}{
		{name: "Stored blob", imageName: stored, wantBytes: "real image"},
		{name: "Missing blob falls back", imageName: "doesnotexist.jpg", wantFallback: true, wantBytes: "placeholder"},
		{name: "Leading dots are a plain name", imageName: "..dots.jpg", wantBytes: "dotted"},
		{name: "Missing leading-dots name falls back", imageName: "..x.jpg", wantFallback: true, wantBytes: "placeholder"},
		{name: "Wrong extension", imageName: "foo.png", wantErr: ErrInvalidName},
		{name: "Extension only", imageName: ".jpg", wantErr: ErrInvalidName},
		{name: "Path traversal", imageName: "../secret.jpg", wantErr: ErrInvalidPath},
		{name: "Nested path", imageName: "tmp/x.jpg", wantErr: ErrInvalidPath},
		{name: "Backslash path", imageName: `tmp\x.jpg`, wantErr: ErrInvalidPath},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l, err := s.Open(tc.imageName)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.ErrorIs(t, err, ErrInvalidName)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantFallback, l.Fallback)
			b, err := os.ReadFile(l.Path)
			require.NoError(t, err)
			assert.Equal(t, tc.wantBytes, string(b))
		})
	}
}

func TestOpenWithoutPlaceholder(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Open("doesnotexist.jpg")
	assert.ErrorIs(t, err, ErrPlaceholderMissing)
}

func TestNewRejectsBadPlaceholder(t *testing.T) {
	_, err := New(t.TempDir(), "default.png")
	assert.ErrorIs(t, err, ErrInvalidName)
}
