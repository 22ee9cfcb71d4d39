// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package framer

import "errors"

var (
	// ErrInvalidArgument reports WriteMessage on a Framer built without a
	// writer (NewReader) or ReadMessage on one built without a reader
	// (NewWriter).
	ErrInvalidArgument = errors.New("framer: invalid argument")

	// ErrInvalidFrame reports a frame header whose declared length exceeds
	// BlockSizeLessHeader.
	ErrInvalidFrame = errors.New("framer: invalid frame length")

	// ErrInvalidMessageType reports a frame header naming a type code the
	// caller did not mark valid (see WithValidTypes).
	ErrInvalidMessageType = errors.New("framer: invalid message type")

	// ErrFrameTypeMismatch reports that a later frame of a multi-frame
	// message carried a different type code than its first frame.
	ErrFrameTypeMismatch = errors.New("framer: frame type mismatch within message")
)
