// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package session

import (
	"fmt"
	"io"

	"code.hybscloud.com/blobfish/internal/blob"
	"code.hybscloud.com/blobfish/internal/blockio"
	"code.hybscloud.com/blobfish/internal/metrics"
	"code.hybscloud.com/blobfish/internal/wire"
	"code.hybscloud.com/blobfish/framer"
)

// Offered is an acceptor that has just read an incoming MyPkg and must
// decide how to answer it.
type Offered struct {
	fr  *framer.Framer
	msg wire.MyPkg
}

// ReceiveOffer wraps rw and reads the offerer's MyPkg announcement.
func ReceiveOffer(rw io.ReadWriter, opts ...framer.Option) (*Offered, error) {
	opts = append([]framer.Option{framer.WithValidTypes(wire.IsValidType)}, opts...)
	fr := framer.New(rw, opts...)
	msg, err := readMsg[wire.MyPkg](fr, wire.TypeMyPkg)
	if err != nil {
		return nil, fmt.Errorf("session: read offer: %w", err)
	}
	return &Offered{fr: fr, msg: msg}, nil
}

// Package returns the offered package's announcement.
func (o *Offered) Package() wire.MyPkg { return o.msg }

// Reject answers with "not interested", ending the session.
func (o *Offered) Reject() error {
	return writeMsg(o.fr, wire.TypeMyPkgAck, wire.MyPkgAck{})
}

// Dedup answers that this exact package is already held, ending the
// session without requesting any file.
func (o *Offered) Dedup() error {
	digest := o.msg.MD5Sum
	return writeMsg(o.fr, wire.TypeMyPkgAck, wire.MyPkgAck{MD5Sum: &digest, Files: []wire.File{}})
}

// Accept answers that the package is wanted in full and advances to
// negotiation.
func (o *Offered) Accept() (*Negotiating, error) {
	digest := o.msg.MD5Sum
	if err := writeMsg(o.fr, wire.TypeMyPkgAck, wire.MyPkgAck{MD5Sum: &digest}); err != nil {
		return nil, fmt.Errorf("session: send accept: %w", err)
	}
	return &Negotiating{fr: o.fr, msg: o.msg}, nil
}

// Negotiating has accepted an offer and awaits the offerer's negotiation
// round before piece streaming may begin.
type Negotiating struct {
	fr    *framer.Framer
	msg   wire.MyPkg
	peers []string
}

// AddPeers unions additional peer endpoints into this acceptor's known set,
// to be offered to the offerer on the next Negotiate call. Pure state
// mutation; no I/O.
func (n *Negotiating) AddPeers(peers []string) {
	n.peers = unionPeers(n.peers, peers)
}

// Negotiate reads the offerer's NegotiateMyPkg, checks its digest against
// the offer, and answers with whatever peers AddPeers has accumulated so
// far (nil when none have been added).
func (n *Negotiating) Negotiate() (*Exchanging, error) {
	req, err := readMsg[wire.NegotiateMyPkg](n.fr, wire.TypeNegotiateMyPkg)
	if err != nil {
		return nil, fmt.Errorf("session: read negotiate: %w", err)
	}
	if req.MD5Sum != n.msg.MD5Sum {
		return nil, fmt.Errorf("%w: negotiate: got %s, want %s", ErrDigestMismatch, req.MD5Sum, n.msg.MD5Sum)
	}
	if err := writeMsg(n.fr, wire.TypeNegotiateMyPkgAck, wire.NegotiateMyPkgAck{MD5Sum: n.msg.MD5Sum, Peers: n.peers}); err != nil {
		return nil, fmt.Errorf("session: send negotiate ack: %w", err)
	}
	return &Exchanging{fr: n.fr, msg: n.msg}, nil
}

// Exchanging receives the package's files one at a time, in the order the
// offerer streams them.
type Exchanging struct {
	fr  *framer.Framer
	msg wire.MyPkg
}

// FileCount returns the number of files the offer announced.
func (e *Exchanging) FileCount() int { return len(e.msg.Files) }

// ReceiveFile reads one PieceExchange/Piece stream and writes its pieces
// through store, rooted by the package digest. It returns once the
// exchanged range is fully received. m records per-piece counts and bytes
// written; pass metrics.Noop() if the caller does not care.
func (e *Exchanging) ReceiveFile(store *blockio.Store, m *metrics.Metrics) error {
	pe, err := readMsg[wire.PieceExchange](e.fr, wire.TypePieceExchange)
	if err != nil {
		return fmt.Errorf("session: read piece exchange: %w", err)
	}
	if pe.Start >= pe.End {
		return fmt.Errorf("%w: empty or inverted range [%d, %d)", ErrPieceOutOfBounds, pe.Start, pe.End)
	}

	h, err := store.Create(e.msg.MD5Sum, blob.File{Path: pe.File.Path}.Filename())
	if err != nil {
		return fmt.Errorf("session: create %s: %w", pe.File.Path, err)
	}
	defer h.Close()

	if err := writeMsg(e.fr, wire.TypePieceExchangeAck, wire.PieceExchangeAck{}); err != nil {
		return fmt.Errorf("session: send piece exchange ack for %s: %w", pe.File.Path, err)
	}

	tracker := newAckTracker(pe.Start)
	for received := uint64(0); received < pe.End-pe.Start; received++ {
		piece, err := readMsg[wire.Piece](e.fr, wire.TypePiece)
		if err != nil {
			return fmt.Errorf("session: read piece for %s: %w", pe.File.Path, err)
		}
		// The declared window is the half-open range [Start, End), but the
		// bounds check itself is inclusive of End — an index equal to End is
		// tolerated, only an index past it fails. This mirrors the reference
		// implementation's literal comparison exactly, quirk and all.
		if piece.Index < pe.Start || piece.Index > pe.End {
			return fmt.Errorf("%w: piece %d not in [%d, %d] for %s", ErrPieceOutOfBounds, piece.Index, pe.Start, pe.End, pe.File.Path)
		}
		if err := h.WriteBlock(piece.Index, piece.Data); err != nil {
			return fmt.Errorf("session: write piece %d of %s: %w", piece.Index, pe.File.Path, err)
		}
		m.PiecesReceived.Inc()
		m.BytesWritten.Add(float64(len(piece.Data)))
		tracker.mark(piece.Index)
		if piece.Ack != nil {
			if err := writeMsg(e.fr, wire.TypePieceAck, wire.PieceAck{Piece: tracker.contiguous()}); err != nil {
				return fmt.Errorf("session: send piece ack for %s: %w", pe.File.Path, err)
			}
		}
	}
	return nil
}

// ackTracker applies the single-counter contiguous rule a PieceAck reports:
// contiguous advances to piece when piece is the base index, or, once the
// base index itself has been marked, when piece - 1 equals the current
// contiguous index. Out-of-order delivery does not advance it, and a later
// in-order piece does not retroactively fill a gap left by one delivered
// early.
type ackTracker struct {
	base uint64
	cont uint64
	has  bool
}

func newAckTracker(base uint64) *ackTracker {
	return &ackTracker{base: base}
}

func (t *ackTracker) mark(index uint64) {
	if index == t.base || (t.has && index == t.cont+1) {
		t.cont = index
		t.has = true
	}
}

func (t *ackTracker) contiguous() uint64 {
	if !t.has {
		return t.base
	}
	return t.cont
}
