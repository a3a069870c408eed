// Package blobstore keeps uploaded images on disk under content-derived
// names.
//
// A blob is stored as <sha256 hex>.jpg, so uploading the same bytes twice
// yields the same name and simply replaces the file. Reads never fail for a
// missing blob: the store's placeholder image is returned instead.
package blobstore

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Ext is the only extension the store writes and serves.
const Ext = ".jpg"

const tmpDirName = "tmp"

var (
	// ErrInvalidName is returned for names that do not end in Ext or are
	// not a plain file name.
	ErrInvalidName = errors.New("image name must end with " + Ext)
	// ErrInvalidPath is the ErrInvalidName returned for names that contain a
	// directory component.
	ErrInvalidPath = fmt.Errorf("%w: image name must not contain a path", ErrInvalidName)
	// ErrPlaceholderMissing is returned when neither the requested blob nor
	// the placeholder exists.
	ErrPlaceholderMissing = errors.New("placeholder image is missing")
)

// Store manages content-addressed image files in a directory.
type Store struct {
	dir         string
	placeholder string
}

// Lookup is the result of Open. Fallback is set when the requested blob was
// absent and Path points at the placeholder.
type Lookup struct {
	Path     string
	Fallback bool
}

// New creates the directory if needed.
func New(dir, placeholder string) (*Store, error) {
	if err := ValidateName(placeholder); err != nil {
		return nil, fmt.Errorf("placeholder %q: %w", placeholder, err)
	}
	if err := os.MkdirAll(filepath.Join(dir, tmpDirName), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &Store{dir: dir, placeholder: placeholder}, nil
}

// Dir returns the directory blobs are stored in.
func (s *Store) Dir() string { return s.dir }

// Placeholder returns the fallback blob's name.
func (s *Store) Placeholder() string { return s.placeholder }

// Put streams r to a temp file while hashing it, then renames it to its
// content-addressed name, replacing any previous copy.
func (s *Store) Put(r io.Reader) (string, error) {
	f, err := os.CreateTemp(filepath.Join(s.dir, tmpDirName), "*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := f.Name()

	hasher := sha256.New()
	if _, err := io.Copy(io.MultiWriter(f, hasher), r); err != nil {
		return "", errors.Join(fmt.Errorf("failed to write image: %w", err), f.Close(), os.Remove(tmpPath))
	}
	if err := f.Close(); err != nil {
		return "", errors.Join(fmt.Errorf("failed to close temp file: %w", err), os.Remove(tmpPath))
	}

	name := hex.EncodeToString(hasher.Sum(nil)) + Ext
	if err := os.Rename(tmpPath, s.path(name)); err != nil {
		return "", errors.Join(fmt.Errorf("failed to move image into place: %w", err), os.Remove(tmpPath))
	}
	return name, nil
}

// Open resolves name to a file on disk, substituting the placeholder when
// the blob does not exist.
func (s *Store) Open(name string) (Lookup, error) {
	if err := ValidateName(name); err != nil {
		return Lookup{}, err
	}

	ok, err := s.Exists(name)
	if err != nil {
		return Lookup{}, err
	}
	if ok {
		return Lookup{Path: s.path(name)}, nil
	}

	ok, err = s.Exists(s.placeholder)
	if err != nil {
		return Lookup{}, err
	}
	if !ok {
		return Lookup{}, ErrPlaceholderMissing
	}
	return Lookup{Path: s.path(s.placeholder), Fallback: true}, nil
}

// Exists reports whether a regular file named name is stored.
func (s *Store) Exists(name string) (bool, error) {
	fi, err := os.Stat(s.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat image: %w", err)
	}
	return fi.Mode().IsRegular(), nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

// ValidateName checks that name ends in Ext and cannot escape the store
// directory.
func ValidateName(name string) error {
	if !strings.HasSuffix(name, Ext) || len(name) == len(Ext) {
		return ErrInvalidName
	}
	if strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return ErrInvalidPath
	}
	return nil
}
