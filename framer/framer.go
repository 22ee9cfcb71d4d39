// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package framer implements blobfish's wire framing: a 16384-byte block size
// with a fixed 4-byte header (u16 big-endian length, u16 big-endian type
// code) in front of every frame, and a segmentation rule that cuts a logical
// message's payload into BlockSizeLessHeader-sized chunks, one frame per
// chunk, terminated by the first frame whose length is less than
// BlockSizeLessHeader.
//
// A payload whose length is an exact multiple of BlockSizeLessHeader
// therefore needs one extra, empty terminal frame; WriteMessage always emits
// it, and ReadMessage always expects it.
package framer

import (
	"fmt"
	"io"
)

// Framer reads and writes length-and-type-prefixed frames over a byte
// stream, reassembling and segmenting logical messages on either side.
type Framer struct {
	fr *framer
}

// New wraps rw (typically a net.Conn) with blobfish's frame format. Deadlines
// configured via WithReadDeadline are applied when rw implements
// SetReadDeadline(time.Time) error.
func New(rw io.ReadWriter, opts ...Option) *Framer {
	return &Framer{fr: newFramer(rw, rw, opts...)}
}

// NewReader wraps a read-only stream; WriteMessage on the result always fails.
func NewReader(r io.Reader, opts ...Option) *Framer {
	return &Framer{fr: newFramer(r, nil, opts...)}
}

// NewWriter wraps a write-only stream; ReadMessage on the result always fails.
func NewWriter(w io.Writer, opts ...Option) *Framer {
	return &Framer{fr: newFramer(nil, w, opts...)}
}

// WriteMessage segments payload into BlockSizeLessHeader-sized frames, all
// carrying typeCode, and writes them in order. An empty payload still writes
// one (empty) frame.
func (f *Framer) WriteMessage(typeCode uint16, payload []byte) error {
	if f.fr.wr == nil {
		return ErrInvalidArgument
	}
	for {
		end := len(payload)
		if end > BlockSizeLessHeader {
			end = BlockSizeLessHeader
		}
		chunk := payload[:end]
		if err := f.fr.writeFrame(typeCode, chunk); err != nil {
			return err
		}
		payload = payload[end:]
		if len(chunk) < BlockSizeLessHeader {
			return nil
		}
		// Exact-multiple payload: loop once more; a zero-length chunk on the
		// next iteration emits the required empty terminal frame.
	}
}

// ReadMessage reads frames until the terminal (short) frame and returns the
// reassembled message's type code and payload. All frames of one message
// must carry the same type code, even though the reference encoder never
// varies it; a later frame with a different code fails with
// ErrFrameTypeMismatch.
func (f *Framer) ReadMessage() (typeCode uint16, payload []byte, err error) {
	if f.fr.rd == nil {
		return 0, nil, ErrInvalidArgument
	}
	fr := f.fr
	fr.accum = fr.accum[:0]
	var firstType uint16
	first := true
	for {
		length, tc, err := fr.readFrameHeader()
		if err != nil {
			return 0, nil, err
		}
		if first {
			firstType = tc
			first = false
		} else if tc != firstType {
			return 0, nil, fmt.Errorf("%w: got %d, want %d", ErrFrameTypeMismatch, tc, firstType)
		}
		if length > 0 {
			start := len(fr.accum)
			fr.accum = append(fr.accum, make([]byte, length)...)
			if err := fr.readOnce(fr.accum[start : start+length]); err != nil {
				return 0, nil, err
			}
		}
		if length < BlockSizeLessHeader {
			out := make([]byte, len(fr.accum))
			copy(out, fr.accum)
			return firstType, out, nil
		}
	}
}
