// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package blockio

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"code.hybscloud.com/blobfish/internal/blob"
)

func TestStoreCreatePathAndExists(t *testing.T) {
	store := New(t.TempDir())
	if store.Exists("digest") {
		t.Fatal("Exists reported true before any write")
	}

	h, err := store.Create("digest", "file.bin")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	h.Close()

	if !store.Exists("digest") {
		t.Fatal("Exists reported false after Create")
	}
	wantPath := filepath.Join(store.Dir("digest"), "file.bin")
	if store.Path("digest", "file.bin") != wantPath {
		t.Fatalf("Path = %s, want %s", store.Path("digest", "file.bin"), wantPath)
	}
}

func TestReadWriteBlockRoundTrip(t *testing.T) {
	store := New(t.TempDir())
	h, err := store.Create("digest", "file.bin")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer h.Close()

	block0 := bytes.Repeat([]byte{0xAA}, blob.BlockSize)
	block1 := []byte("short final block")

	if err := h.WriteBlock(0, block0); err != nil {
		t.Fatalf("WriteBlock(0): %v", err)
	}
	if err := h.WriteBlock(1, block1); err != nil {
		t.Fatalf("WriteBlock(1): %v", err)
	}

	got0, err := h.ReadBlock(0)
	if err != nil {
		t.Fatalf("ReadBlock(0): %v", err)
	}
	if !bytes.Equal(got0, block0) {
		t.Fatal("ReadBlock(0) mismatch")
	}

	got1, err := h.ReadBlock(1)
	if err != nil {
		t.Fatalf("ReadBlock(1): %v", err)
	}
	if !bytes.Equal(got1, block1) {
		t.Fatalf("ReadBlock(1) = %q, want %q", got1, block1)
	}
}

func TestOpenReadsSourceFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "src.bin")
	content := bytes.Repeat([]byte{1, 2, 3}, 100)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	h, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer h.Close()

	got, err := h.ReadBlock(0)
	if err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Fatal("ReadBlock(0) mismatch")
	}
}
