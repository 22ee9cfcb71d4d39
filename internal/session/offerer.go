// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package session drives one peer-to-peer transfer end to end: the offer
// handshake, package-level negotiation, and the per-file piece exchange.
//
// Both sides are modeled as a chain of distinct Go types, one per protocol
// phase, each exposing only the methods legal in that phase. There is no
// single "Session" type with every method on it and a runtime phase check;
// advancing the protocol consumes the current phase's value and returns the
// next phase's type, so calling a method out of order is a compile error
// rather than a returned error.
package session

import (
	"fmt"
	"io"

	"code.hybscloud.com/blobfish/internal/blob"
	"code.hybscloud.com/blobfish/internal/blockio"
	"code.hybscloud.com/blobfish/internal/wire"
	"code.hybscloud.com/blobfish/framer"
)

// Dialed is a freshly connected offerer, before any message has been sent.
type Dialed struct {
	fr *framer.Framer
}

// NewOfferer wraps rw (typically a net.Conn already connected to an
// acceptor) as the start of an offer.
func NewOfferer(rw io.ReadWriter, opts ...framer.Option) *Dialed {
	opts = append([]framer.Option{framer.WithValidTypes(wire.IsValidType)}, opts...)
	return &Dialed{fr: framer.New(rw, opts...)}
}

// Offer sends pkg's announcement and reads back the acceptor's decision. The
// returned value's concrete type is Rejected, Deduped, or *Accepting —
// exactly one of which is legal to act on next.
func (d *Dialed) Offer(pkg blob.Package) (Outcome, error) {
	if err := writeMsg(d.fr, wire.TypeMyPkg, toWireMyPkg(pkg)); err != nil {
		return nil, fmt.Errorf("session: send offer: %w", err)
	}
	ack, err := readMsg[wire.MyPkgAck](d.fr, wire.TypeMyPkgAck)
	if err != nil {
		return nil, fmt.Errorf("session: read offer ack: %w", err)
	}
	switch {
	case !ack.Accepted():
		return Rejected{}, nil
	case ack.Deduped():
		return Deduped{}, nil
	default:
		return &Accepting{fr: d.fr, pkg: pkg}, nil
	}
}

// Outcome is the sealed result of an Offer call. Its only implementations
// are Rejected, Deduped, and *Accepting.
type Outcome interface {
	outcome()
}

// Rejected means the acceptor declined the package outright.
type Rejected struct{}

func (Rejected) outcome() {}

// Deduped means the acceptor already holds this exact package. The session
// is complete; no files are sent.
type Deduped struct{}

func (Deduped) outcome() {}

// Accepting means the acceptor wants the package and negotiation may begin.
type Accepting struct {
	fr    *framer.Framer
	pkg   blob.Package
	peers []string
}

func (*Accepting) outcome() {}

// AddPeers unions additional peer endpoints into this offerer's known set.
// Pure state mutation; no I/O. NegotiateMyPkg carries no peer list from
// offerer to acceptor, so this only affects what Negotiate's returned
// Exchanging reports via Peers, alongside whatever the acceptor echoes back.
func (a *Accepting) AddPeers(peers []string) {
	a.peers = unionPeers(a.peers, peers)
}

// Negotiate exchanges the package digest to confirm readiness before piece
// streaming begins, and unions the acceptor's offered peers (if any) into
// the set already known from AddPeers.
func (a *Accepting) Negotiate() (*Exchanging, error) {
	if err := writeMsg(a.fr, wire.TypeNegotiateMyPkg, wire.NegotiateMyPkg{MD5Sum: a.pkg.MD5Sum}); err != nil {
		return nil, fmt.Errorf("session: send negotiate: %w", err)
	}
	nack, err := readMsg[wire.NegotiateMyPkgAck](a.fr, wire.TypeNegotiateMyPkgAck)
	if err != nil {
		return nil, fmt.Errorf("session: read negotiate ack: %w", err)
	}
	if nack.MD5Sum != a.pkg.MD5Sum {
		return nil, fmt.Errorf("%w: negotiate ack: got %s, want %s", ErrDigestMismatch, nack.MD5Sum, a.pkg.MD5Sum)
	}
	return &Exchanging{fr: a.fr, pkg: a.pkg, peers: unionPeers(a.peers, nack.Peers)}, nil
}

// Exchanging streams the package's files one at a time, in order.
type Exchanging struct {
	fr    *framer.Framer
	pkg   blob.Package
	peers []string
}

// Peers returns the offerer's peer set after negotiation: the endpoints
// added with AddPeers, followed by any new ones the acceptor offered.
func (e *Exchanging) Peers() []string { return e.peers }

// SendFile streams the file at index i of the package via open, which
// resolves the file's real path to a positioned read handle (typically
// blockio.Open). ackEvery requests a PieceAck after every ackEvery pieces
// (and always for the final piece); zero disables mid-stream acks.
func (e *Exchanging) SendFile(i int, open func(path string) (*blockio.Handle, error), ackEvery uint64) error {
	f := e.pkg.Files[i]
	wf := wire.File{Path: f.Filename(), Length: f.Length, MD5Sum: f.MD5Sum}
	chunkCount := f.ChunkCount()

	if err := writeMsg(e.fr, wire.TypePieceExchange, wire.PieceExchange{Start: 0, End: chunkCount, File: wf}); err != nil {
		return fmt.Errorf("session: send piece exchange for %s: %w", wf.Path, err)
	}
	if _, err := readMsg[wire.PieceExchangeAck](e.fr, wire.TypePieceExchangeAck); err != nil {
		return fmt.Errorf("session: read piece exchange ack for %s: %w", wf.Path, err)
	}

	h, err := open(f.Path)
	if err != nil {
		return fmt.Errorf("session: open %s: %w", f.Path, err)
	}
	defer h.Close()

	for idx := uint64(0); idx < chunkCount; idx++ {
		data, err := h.ReadBlock(idx)
		if err != nil {
			return fmt.Errorf("session: read block %d of %s: %w", idx, wf.Path, err)
		}
		piece := wire.Piece{Index: idx, Data: data}
		wantAck := idx == chunkCount-1 || (ackEvery > 0 && (idx+1)%ackEvery == 0)
		if wantAck {
			a := idx
			piece.Ack = &a
		}
		if err := writeMsg(e.fr, wire.TypePiece, piece); err != nil {
			return fmt.Errorf("session: send piece %d of %s: %w", idx, wf.Path, err)
		}
		if wantAck {
			pa, err := readMsg[wire.PieceAck](e.fr, wire.TypePieceAck)
			if err != nil {
				return fmt.Errorf("session: read piece ack for %s: %w", wf.Path, err)
			}
			if pa.Piece != idx {
				return fmt.Errorf("session: piece ack mismatch for %s: got %d, want %d", wf.Path, pa.Piece, idx)
			}
		}
	}
	return nil
}

// SendFiles streams every file in the package, in order, via SendFile.
func (e *Exchanging) SendFiles(open func(path string) (*blockio.Handle, error), ackEvery uint64) error {
	for i := range e.pkg.Files {
		if err := e.SendFile(i, open, ackEvery); err != nil {
			return err
		}
	}
	return nil
}

func toWireMyPkg(pkg blob.Package) wire.MyPkg {
	files := make([]wire.File, len(pkg.Files))
	for i, f := range pkg.Files {
		files[i] = wire.File{Path: f.Path, Length: f.Length, MD5Sum: f.MD5Sum}
	}
	return wire.MyPkg{
		Name: pkg.Name, MD5Sum: pkg.MD5Sum, Author: pkg.Author, BuiltOn: pkg.BuiltOn,
		Expires: pkg.Expires, OS: pkg.OS, Arch: pkg.Arch, Tags: pkg.Tags, Commit: pkg.Commit,
		Files: files,
	}
}
