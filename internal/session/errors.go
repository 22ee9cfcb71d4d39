// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package session

import "errors"

var (
	// errUnexpectedType reports a message of the wrong type arriving where a
	// specific response was required; the session must terminate.
	errUnexpectedType = errors.New("session: unexpected message type")

	// ErrPieceOutOfBounds reports a Piece index outside the range most
	// recently declared by PieceExchange for the file in flight.
	ErrPieceOutOfBounds = errors.New("session: piece index out of bounds")

	// ErrDigestMismatch reports a digest in a NegotiateMyPkg or
	// NegotiateMyPkgAck that does not match the offered package's digest.
	ErrDigestMismatch = errors.New("session: digest mismatch")
)
