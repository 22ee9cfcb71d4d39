// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wire defines blobfish's ten protocol messages and the
// bencode-compatible codec that maps between them and framed payloads.
//
// Every message is a dictionary keyed by the field names given in the
// protocol description below; optional fields are present only when the
// sender intends to convey "Some(value)" and are omitted entirely to convey
// "None" — the decoder distinguishes "absent" from "present but empty" by
// map-key presence, not by zero-value checks, since several messages rely on
// exactly that distinction (MyPkgAck's dedup-vs-transfer signal, for one).
package wire

import "fmt"

// Message type codes, big-endian on the wire (see package framer).
const (
	TypeMyPkg             uint16 = 10
	TypeFile              uint16 = 20
	TypeMyPkgAck          uint16 = 30
	TypeNegotiateMyPkg    uint16 = 40
	TypeNegotiateMyPkgAck uint16 = 50
	TypePieceExchange     uint16 = 60
	TypePieceExchangeAck  uint16 = 70
	TypePiece             uint16 = 80
	TypePieceAck          uint16 = 90
	TypeDone              uint16 = 100
)

// IsValidType reports whether code names one of the ten protocol messages.
func IsValidType(code uint16) bool {
	switch code {
	case TypeMyPkg, TypeFile, TypeMyPkgAck, TypeNegotiateMyPkg, TypeNegotiateMyPkgAck,
		TypePieceExchange, TypePieceExchangeAck, TypePiece, TypePieceAck, TypeDone:
		return true
	default:
		return false
	}
}

func typeName(code uint16) string {
	switch code {
	case TypeMyPkg:
		return "MyPkg"
	case TypeFile:
		return "File"
	case TypeMyPkgAck:
		return "MyPkgAck"
	case TypeNegotiateMyPkg:
		return "NegotiateMyPkg"
	case TypeNegotiateMyPkgAck:
		return "NegotiateMyPkgAck"
	case TypePieceExchange:
		return "PieceExchange"
	case TypePieceExchangeAck:
		return "PieceExchangeAck"
	case TypePiece:
		return "Piece"
	case TypePieceAck:
		return "PieceAck"
	case TypeDone:
		return "Done"
	default:
		return fmt.Sprintf("unknown(%d)", code)
	}
}

// MyPkg is the offerer's package announcement.
type MyPkg struct {
	Name    string
	MD5Sum  string // hex MD5 of the concatenated per-file hex digests, in order
	Author  string
	BuiltOn int64  // milliseconds, wall clock
	Expires *int64 // milliseconds, wall clock; nil means no expiry
	OS      string
	Arch    string
	Tags    []string
	Commit  string
	Files   []File
}

// File describes one file within a Package.
type File struct {
	Path   string // offerer: real filesystem path; acceptor: opaque label
	Length uint64
	MD5Sum string
}

// MyPkgAck is the acceptor's response to MyPkg.
//
// MD5Sum == nil && Files == nil means "not interested" (rejection).
// MD5Sum != nil && Files != nil && len(Files) == 0 means "accepted, already
// have it" (dedup). MD5Sum != nil && Files == nil means "accepted, send it".
type MyPkgAck struct {
	MD5Sum *string
	Files  []File
}

// Accepted reports whether the acceptor expressed any interest at all.
func (a MyPkgAck) Accepted() bool { return a.MD5Sum != nil }

// Deduped reports whether the acceptor already holds this package.
func (a MyPkgAck) Deduped() bool { return a.MD5Sum != nil && a.Files != nil }

// NegotiateMyPkg echoes the package digest to begin peer-list negotiation.
type NegotiateMyPkg struct {
	MD5Sum string
}

// NegotiateMyPkgAck echoes the digest back with an optional peer list.
type NegotiateMyPkgAck struct {
	MD5Sum string
	Peers  []string // nil means no peers offered
}

// PieceExchange declares the half-open piece range about to be streamed for File.
type PieceExchange struct {
	Start, End uint64 // [Start, End)
	File       File
}

// PieceExchangeAck optionally names a resume range. Always nil today; the
// field is retained for wire compatibility with a future resume extension.
type PieceExchangeAck struct {
	Pieces *[2]uint64
}

// Piece carries one block of file content.
type Piece struct {
	Index uint64
	Ack   *uint64 // non-nil requests a PieceAck in response
	Data  []byte
}

// PieceAck reports the highest contiguously-received piece index.
type PieceAck struct {
	Piece uint64
}

// Done terminates a transfer. Defined for wire compatibility; the reference
// flows never emit it, and acceptors must not require it.
type Done struct {
	MD5Sum string
}
