// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package framer

import (
	"encoding/binary"
	"io"
	"time"
)

// deadlineSetter is implemented by net.Conn and satisfied structurally by any
// transport that supports read deadlines; framer works without one (e.g. for
// io.Pipe endpoints or a bytes.Buffer in tests), simply skipping
// WithReadDeadline.
type deadlineSetter interface {
	SetReadDeadline(t time.Time) error
}

// Wire constants (see the protocol description, §4.1).
const (
	BlockSize = 16384

	msgSizeLen = 2
	msgTypeLen = 2

	// HeaderSize is the fixed per-frame header: u16 length, u16 type.
	HeaderSize = msgSizeLen + msgTypeLen

	// BlockSizeLessHeader is the maximum payload carried by a single frame,
	// and therefore the chunk size used to segment a logical message.
	BlockSizeLessHeader = BlockSize - HeaderSize
)

type framer struct {
	rd io.Reader
	wr io.Writer

	// reusable header scratch, avoids a heap alloc per frame.
	header [HeaderSize]byte

	// reusable accumulation buffer for ReadMessage; grown as needed and
	// kept between calls so steady-state traffic does not reallocate.
	accum []byte

	deadline    deadlineSetter
	readTimeout time.Duration
	validTypes  func(uint16) bool
}

func newFramer(rd io.Reader, wr io.Writer, opts ...Option) *framer {
	o := defaultOptions
	for _, fn := range opts {
		fn(&o)
	}
	fr := &framer{
		rd:          rd,
		wr:          wr,
		readTimeout: o.ReadDeadline,
		validTypes:  o.ValidTypes,
	}
	if ds, ok := rd.(deadlineSetter); ok {
		fr.deadline = ds
	}
	return fr
}

// readOnce reads until p is full or an error occurs, guarding against
// readers that violate the io.Reader contract by returning (0, nil).
func (fr *framer) readOnce(p []byte) error {
	for off := 0; off < len(p); {
		n, err := fr.rd.Read(p[off:])
		if n == 0 && err == nil {
			return io.ErrNoProgress
		}
		off += n
		if err != nil {
			if err == io.EOF && off < len(p) {
				return io.ErrUnexpectedEOF
			}
			if err != io.EOF {
				return err
			}
		}
	}
	return nil
}

func (fr *framer) writeOnce(p []byte) error {
	for off := 0; off < len(p); {
		n, err := fr.wr.Write(p[off:])
		if n == 0 && err == nil {
			return io.ErrShortWrite
		}
		off += n
		if err != nil {
			return err
		}
	}
	return nil
}

// readFrameHeader reads one frame header, validates it, and returns the
// frame's payload length and type code; the caller reads the payload itself.
// It applies the configured read deadline before the header read, matching
// §5's recommended bounded inactivity timer.
func (fr *framer) readFrameHeader() (length int, typeCode uint16, err error) {
	if fr.deadline != nil && fr.readTimeout > 0 {
		_ = fr.deadline.SetReadDeadline(time.Now().Add(fr.readTimeout))
	}
	if err := fr.readOnce(fr.header[:]); err != nil {
		return 0, 0, err
	}
	length = int(binary.BigEndian.Uint16(fr.header[0:msgSizeLen]))
	typeCode = binary.BigEndian.Uint16(fr.header[msgSizeLen:HeaderSize])
	if length > BlockSizeLessHeader {
		return 0, 0, ErrInvalidFrame
	}
	if fr.validTypes != nil && !fr.validTypes(typeCode) {
		return 0, 0, ErrInvalidMessageType
	}
	return length, typeCode, nil
}

func (fr *framer) writeFrame(typeCode uint16, payload []byte) error {
	if len(payload) > BlockSizeLessHeader {
		return ErrInvalidFrame
	}
	binary.BigEndian.PutUint16(fr.header[0:msgSizeLen], uint16(len(payload)))
	binary.BigEndian.PutUint16(fr.header[msgSizeLen:HeaderSize], typeCode)
	if err := fr.writeOnce(fr.header[:]); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	return fr.writeOnce(payload)
}
