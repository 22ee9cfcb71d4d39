// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package blob

import (
	"crypto/md5"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
)

func TestFileChunkCount(t *testing.T) {
	cases := []struct {
		length uint64
		want   uint64
	}{
		{0, 1},
		{1, 1},
		{BlockSize - 1, 1},
		{BlockSize, 1},
		{BlockSize + 1, 2},
		{BlockSize * 2, 2},
		{BlockSize*2 + 1, 3},
	}
	for _, tc := range cases {
		f := File{Length: tc.length}
		if got := f.ChunkCount(); got != tc.want {
			t.Errorf("ChunkCount(%d) = %d, want %d", tc.length, got, tc.want)
		}
	}
}

func TestFileFilename(t *testing.T) {
	f := File{Path: "/tmp/uploads/report.pdf"}
	if got := f.Filename(); got != "report.pdf" {
		t.Errorf("Filename() = %q, want %q", got, "report.pdf")
	}
}

func TestHashFileMatchesDirectMD5(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")
	content := make([]byte, BlockSize*2+37)
	for i := range content {
		content[i] = byte(i * 7)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	f, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	want := md5.Sum(content)
	if f.MD5Sum != hex.EncodeToString(want[:]) {
		t.Errorf("MD5Sum = %s, want %s", f.MD5Sum, hex.EncodeToString(want[:]))
	}
	if f.Length != uint64(len(content)) {
		t.Errorf("Length = %d, want %d", f.Length, len(content))
	}
	if f.ChunkCount() != 3 {
		t.Errorf("ChunkCount() = %d, want 3", f.ChunkCount())
	}
}

func TestDigestHashesHexDigestsNotRawBytes(t *testing.T) {
	files := []File{
		{MD5Sum: "d41d8cd98f00b204e9800998ecf8427e"},
		{MD5Sum: "098f6bcd4621d373cade4e832627b4f6"},
	}
	h := md5.New()
	h.Write([]byte(files[0].MD5Sum))
	h.Write([]byte(files[1].MD5Sum))
	want := hex.EncodeToString(h.Sum(nil))

	if got := Digest(files); got != want {
		t.Errorf("Digest() = %s, want %s", got, want)
	}
}

func TestNewPackage(t *testing.T) {
	dir := t.TempDir()
	path1 := filepath.Join(dir, "a.txt")
	path2 := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(path1, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write a.txt: %v", err)
	}
	if err := os.WriteFile(path2, []byte("world!"), 0o644); err != nil {
		t.Fatalf("write b.txt: %v", err)
	}

	pkg, err := NewPackage("greeting", []string{path1, path2}, WithAuthor("tester"), WithTags("demo"))
	if err != nil {
		t.Fatalf("NewPackage: %v", err)
	}
	if pkg.Name != "greeting" {
		t.Errorf("Name = %q", pkg.Name)
	}
	if pkg.Author != "tester" {
		t.Errorf("Author = %q", pkg.Author)
	}
	if len(pkg.Files) != 2 {
		t.Fatalf("len(Files) = %d, want 2", len(pkg.Files))
	}
	if pkg.MD5Sum != Digest(pkg.Files) {
		t.Errorf("MD5Sum = %s, want Digest(Files) = %s", pkg.MD5Sum, Digest(pkg.Files))
	}
}
