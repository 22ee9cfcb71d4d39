// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package blockio provides positioned, block-sized reads and writes against
// files laid out under a content-addressed data directory, used by sessions
// to stream package files one piece at a time.
package blockio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"code.hybscloud.com/blobfish/internal/blob"
)

const (
	dirMode  = 0o755
	fileMode = 0o644
)

// Store roots a package's files under <dataDir>/<pkgMD5Sum>/<filename>.
type Store struct {
	dataDir string
}

// New returns a Store rooted at dataDir (created lazily, not here).
func New(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

// Dir returns the directory a package's files are stored under.
func (s *Store) Dir(pkgMD5Sum string) string {
	return filepath.Join(s.dataDir, pkgMD5Sum)
}

// Path returns the destination path for one file of a package.
func (s *Store) Path(pkgMD5Sum, filename string) string {
	return filepath.Join(s.Dir(pkgMD5Sum), filename)
}

// Exists reports whether a package's directory is already present, the
// signal sessions use to short-circuit an already-seen transfer.
func (s *Store) Exists(pkgMD5Sum string) bool {
	_, err := os.Stat(s.Dir(pkgMD5Sum))
	return err == nil
}

// Handle is a positioned read/write handle for one destination file.
type Handle struct {
	f *os.File
}

// Create makes the package directory if needed and opens filename within it
// for positioned writes, truncating any previous content.
func (s *Store) Create(pkgMD5Sum, filename string) (*Handle, error) {
	if err := os.MkdirAll(s.Dir(pkgMD5Sum), dirMode); err != nil {
		return nil, fmt.Errorf("blockio: mkdir: %w", err)
	}
	f, err := os.OpenFile(s.Path(pkgMD5Sum, filename), os.O_RDWR|os.O_CREATE|os.O_TRUNC, fileMode)
	if err != nil {
		return nil, fmt.Errorf("blockio: create %s: %w", filename, err)
	}
	return &Handle{f: f}, nil
}

// Open opens an existing source file for positioned reads.
func Open(path string) (*Handle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("blockio: open %s: %w", path, err)
	}
	return &Handle{f: f}, nil
}

// ReadBlock reads piece number index (0-based) of blob.BlockSize bytes from
// the handle's current file, returning fewer bytes on the final, possibly
// short, piece (no bytes at all for the single piece of an empty file).
func (h *Handle) ReadBlock(index uint64) ([]byte, error) {
	buf := make([]byte, blob.BlockSize)
	n, err := h.f.ReadAt(buf, int64(index*blob.BlockSize))
	if n > 0 {
		return buf[:n], nil
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("blockio: read block %d: %w", index, err)
	}
	return buf[:0], nil
}

// WriteBlock writes data at piece number index (0-based).
func (h *Handle) WriteBlock(index uint64, data []byte) error {
	if _, err := h.f.WriteAt(data, int64(index*blob.BlockSize)); err != nil {
		return fmt.Errorf("blockio: write block %d: %w", index, err)
	}
	return nil
}

// Close closes the underlying file.
func (h *Handle) Close() error {
	return h.f.Close()
}
