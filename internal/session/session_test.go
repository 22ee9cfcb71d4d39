// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package session

import (
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"

	"code.hybscloud.com/blobfish/internal/blob"
	"code.hybscloud.com/blobfish/internal/blockio"
	"code.hybscloud.com/blobfish/internal/metrics"
	"code.hybscloud.com/blobfish/internal/wire"
	"code.hybscloud.com/blobfish/framer"
)

func TestOfferAcceptExchangeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "payload.bin")
	content := make([]byte, blob.BlockSize*2+123)
	for i := range content {
		content[i] = byte(i * 3)
	}
	if err := os.WriteFile(srcPath, content, 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	pkg, err := blob.NewPackage("demo", []string{srcPath})
	if err != nil {
		t.Fatalf("NewPackage: %v", err)
	}

	offererConn, acceptorConn := net.Pipe()
	defer offererConn.Close()
	defer acceptorConn.Close()

	errs := make(chan error, 2)
	peers := make(chan []string, 1)
	store := blockio.New(filepath.Join(dir, "received"))

	go func() {
		offered, err := ReceiveOffer(acceptorConn)
		if err != nil {
			errs <- err
			return
		}
		negotiating, err := offered.Accept()
		if err != nil {
			errs <- err
			return
		}
		negotiating.AddPeers([]string{"10.0.0.1:8080"})
		exchanging, err := negotiating.Negotiate()
		if err != nil {
			errs <- err
			return
		}
		for i, n := 0, exchanging.FileCount(); i < n; i++ {
			if err := exchanging.ReceiveFile(store, metrics.Noop()); err != nil {
				errs <- err
				return
			}
		}
		errs <- nil
	}()

	go func() {
		outcome, err := NewOfferer(offererConn).Offer(pkg)
		if err != nil {
			errs <- err
			return
		}
		accepting, ok := outcome.(*Accepting)
		if !ok {
			errs <- errors.New("offer was not accepted")
			return
		}
		exchanging, err := accepting.Negotiate()
		if err != nil {
			errs <- err
			return
		}
		peers <- exchanging.Peers()
		if err := exchanging.SendFiles(blockio.Open, 1); err != nil {
			errs <- err
			return
		}
		errs <- nil
	}()

	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("session error: %v", err)
		}
	}

	if got := <-peers; len(got) != 1 || got[0] != "10.0.0.1:8080" {
		t.Fatalf("offerer peers = %v, want [10.0.0.1:8080]", got)
	}

	got, err := os.ReadFile(store.Path(pkg.MD5Sum, "payload.bin"))
	if err != nil {
		t.Fatalf("read received file: %v", err)
	}
	if len(got) != len(content) {
		t.Fatalf("received %d bytes, want %d", len(got), len(content))
	}
	for i := range content {
		if got[i] != content[i] {
			t.Fatalf("byte %d = %d, want %d", i, got[i], content[i])
		}
	}
}

func TestOfferRejected(t *testing.T) {
	offererConn, acceptorConn := net.Pipe()
	defer offererConn.Close()
	defer acceptorConn.Close()

	errs := make(chan error, 1)
	go func() {
		offered, err := ReceiveOffer(acceptorConn)
		if err != nil {
			errs <- err
			return
		}
		errs <- offered.Reject()
	}()

	pkg := blob.Package{Name: "demo", MD5Sum: "abc"}
	outcome, err := NewOfferer(offererConn).Offer(pkg)
	if err != nil {
		t.Fatalf("Offer: %v", err)
	}
	if _, ok := outcome.(Rejected); !ok {
		t.Fatalf("outcome = %T, want Rejected", outcome)
	}
	if err := <-errs; err != nil {
		t.Fatalf("acceptor error: %v", err)
	}
}

func TestOfferDeduped(t *testing.T) {
	offererConn, acceptorConn := net.Pipe()
	defer offererConn.Close()
	defer acceptorConn.Close()

	errs := make(chan error, 1)
	go func() {
		offered, err := ReceiveOffer(acceptorConn)
		if err != nil {
			errs <- err
			return
		}
		errs <- offered.Dedup()
	}()

	pkg := blob.Package{Name: "demo", MD5Sum: "abc"}
	outcome, err := NewOfferer(offererConn).Offer(pkg)
	if err != nil {
		t.Fatalf("Offer: %v", err)
	}
	if _, ok := outcome.(Deduped); !ok {
		t.Fatalf("outcome = %T, want Deduped", outcome)
	}
	if err := <-errs; err != nil {
		t.Fatalf("acceptor error: %v", err)
	}
}

func TestAckTrackerContiguousDoesNotBackfillGaps(t *testing.T) {
	tr := newAckTracker(0)
	if got := tr.contiguous(); got != 0 {
		t.Fatalf("contiguous() before any mark = %d, want 0", got)
	}
	tr.mark(2) // out of order; does not advance contiguous
	if got := tr.contiguous(); got != 0 {
		t.Fatalf("contiguous() after marking 2 only = %d, want 0", got)
	}
	tr.mark(0)
	if got := tr.contiguous(); got != 0 {
		t.Fatalf("contiguous() after marking 0 = %d, want 0", got)
	}
	tr.mark(1)
	// The earlier out-of-order mark(2) is never retroactively folded in:
	// contiguous lands on 1, not 2.
	if got := tr.contiguous(); got != 1 {
		t.Fatalf("contiguous() after marking 2,0,1 = %d, want 1", got)
	}
}

func TestReceiveFileRejectsOutOfBoundsPiece(t *testing.T) {
	offererConn, acceptorConn := net.Pipe()
	defer offererConn.Close()
	defer acceptorConn.Close()

	errs := make(chan error, 1)
	store := blockio.New(t.TempDir())
	go func() {
		fr := framer.New(acceptorConn, framer.WithValidTypes(wire.IsValidType))
		exch := &Exchanging{fr: fr, msg: wire.MyPkg{Name: "demo", MD5Sum: "digest"}}
		errs <- exch.ReceiveFile(store, metrics.Noop())
	}()

	fr := framer.New(offererConn, framer.WithValidTypes(wire.IsValidType))
	pe := wire.PieceExchange{Start: 0, End: 2, File: wire.File{Path: "f.bin", Length: 10, MD5Sum: "x"}}
	if err := writeMsg(fr, wire.TypePieceExchange, pe); err != nil {
		t.Fatalf("send piece exchange: %v", err)
	}
	if _, err := readMsg[wire.PieceExchangeAck](fr, wire.TypePieceExchangeAck); err != nil {
		t.Fatalf("read piece exchange ack: %v", err)
	}
	// Index 5 is outside the declared [0, 2) range.
	if err := writeMsg(fr, wire.TypePiece, wire.Piece{Index: 5, Data: []byte("x")}); err != nil {
		t.Fatalf("send out-of-bounds piece: %v", err)
	}

	err := <-errs
	if !errors.Is(err, ErrPieceOutOfBounds) {
		t.Fatalf("err = %v, want ErrPieceOutOfBounds", err)
	}
}
