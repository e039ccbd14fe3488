// storage.go - Upload directory and filename sanitization.
package server

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/afero"
)

// ErrInvalidFilename is returned when a client filename has no usable
// final path component.
var ErrInvalidFilename = errors.New("invalid filename")

const (
	uploadDirPerm  = 0750
	uploadFilePerm = 0644
)

// UploadedFile is one multipart file part held in memory between reading
// the request and writing it to the store.
type UploadedFile struct {
	Filename string
	Content  []byte
}

// UploadStore writes uploaded files into a single directory. Concurrent
// saves of the same name are not coordinated; the last write wins.
type UploadStore struct {
	fs  afero.Fs
	dir string
}

func NewUploadStore(fs afero.Fs, dir string) *UploadStore {
	return &UploadStore{fs: fs, dir: dir}
}

// NewLocalUploadStore stores files on the host filesystem.
func NewLocalUploadStore(dir string) *UploadStore {
	return NewUploadStore(afero.NewOsFs(), dir)
}

func (s *UploadStore) Dir() string {
	return s.dir
}

// Ensure creates the upload directory and its parents if missing.
func (s *UploadStore) Ensure() error {
	if err := s.fs.MkdirAll(s.dir, uploadDirPerm); err != nil {
		return fmt.Errorf("create upload dir %s: %w", s.dir, err)
	}
	return nil
}

// Save writes content under the basename of name, replacing any existing
// file, and returns the full path written.
func (s *UploadStore) Save(name string, content []byte) (string, error) {
	base, err := Basename(name)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(s.dir, base)
	if err := afero.WriteFile(s.fs, dst, content, uploadFilePerm); err != nil {
		return "", fmt.Errorf("write %s: %w", dst, err)
	}
	return dst, nil
}

// Basename returns the final path component of a client supplied filename.
// Both '/' and '\' count as separators so Windows style paths are stripped
// too. Names that reduce to "", "." or ".." are rejected, as are names
// containing NUL or invalid UTF-8, which JSON could not report back intact.
func Basename(name string) (string, error) {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	switch {
	case name == "", name == ".", name == "..":
		return "", ErrInvalidFilename
	case strings.ContainsRune(name, 0), !utf8.ValidString(name):
		return "", ErrInvalidFilename
	}
	return name, nil
}
