// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package blob holds blobfish's domain types for an offered package and its
// files: digest computation, chunk accounting, and filename extraction. It
// has no notion of the wire format (see internal/wire) or of sessions.
package blob

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

var goos, goarch = runtime.GOOS, runtime.GOARCH

// BlockSize is the unit of file I/O and piece streaming (16384 bytes).
const BlockSize = 16384

// File describes one file within a Package.
//
// Path is a real filesystem path on the offerer and an opaque label on the
// acceptor (it is never dereferenced there; only Filename() is used, to
// derive the destination under the content-addressed data directory).
type File struct {
	Path   string
	Length uint64
	MD5Sum string
}

// Filename returns the final path component of Path.
func (f File) Filename() string {
	name := filepath.Base(f.Path)
	if name == "." || name == string(filepath.Separator) {
		return f.Path
	}
	return name
}

// ChunkCount returns the number of BlockSize pieces needed to cover Length,
// with the convention that a zero-length file still counts as one piece.
//
// This is ceiling division, not the bitwise-AND the reference implementation
// used (a known bug there, per the protocol description's open questions) —
// chunk_count must equal ⌈Length / BlockSize⌉, clamped up to 1.
func (f File) ChunkCount() uint64 {
	n := (f.Length + BlockSize - 1) / BlockSize
	if n == 0 {
		return 1
	}
	return n
}

// HashFile reads the file at path in BlockSize chunks and returns a File
// descriptor carrying its length and hex MD5 digest.
func HashFile(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("blob: hash %s: %w", path, err)
	}
	defer f.Close()

	h := md5.New()
	buf := make([]byte, BlockSize)
	var total uint64
	for {
		n, err := f.Read(buf)
		if n > 0 {
			total += uint64(n)
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return File{}, fmt.Errorf("blob: hash %s: %w", path, err)
		}
	}
	return File{Path: path, Length: total, MD5Sum: hex.EncodeToString(h.Sum(nil))}, nil
}

// Package is an offer descriptor: a named, digested set of files.
type Package struct {
	Name    string
	MD5Sum  string
	Author  string
	BuiltOn int64
	Expires *int64
	OS      string
	Arch    string
	Tags    []string
	Commit  string
	Files   []File
}

// Option customizes a Package built by NewPackage.
type Option func(*Package)

// WithAuthor sets the package author (default "").
func WithAuthor(author string) Option { return func(p *Package) { p.Author = author } }

// WithTags sets the package tags (default nil).
func WithTags(tags ...string) Option { return func(p *Package) { p.Tags = tags } }

// WithCommit sets the commit field (default "").
func WithCommit(commit string) Option { return func(p *Package) { p.Commit = commit } }

// WithExpires sets an expiry timestamp in milliseconds since the epoch.
func WithExpires(ms int64) Option { return func(p *Package) { p.Expires = &ms } }

// NewPackage hashes each path in order and computes the package digest from
// the resulting per-file digests, matching MyPkg::new in the reference
// implementation (os/arch default to the running process's GOOS/GOARCH).
func NewPackage(name string, paths []string, opts ...Option) (Package, error) {
	files := make([]File, len(paths))
	for i, p := range paths {
		f, err := HashFile(p)
		if err != nil {
			return Package{}, err
		}
		files[i] = f
	}
	pkg := Package{
		Name:   name,
		MD5Sum: Digest(files),
		OS:     goos,
		Arch:   goarch,
		Files:  files,
	}
	for _, opt := range opts {
		opt(&pkg)
	}
	return pkg, nil
}

// Digest computes a package digest as the hex MD5 of the concatenation of
// each file's hex MD5 digest, in order — matching the reference's
// `files.iter().fold(Md5::new(), |h, v| h.update(&v.md5sum))`, which hashes
// over the hex-string bytes of each per-file digest, not their raw bytes.
func Digest(files []File) string {
	h := md5.New()
	for _, f := range files {
		io.WriteString(h, f.MD5Sum)
	}
	return hex.EncodeToString(h.Sum(nil))
}
