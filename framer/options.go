// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package framer

import "time"

// Options configures framing behavior.
type Options struct {
	// ReadDeadline, when non-zero, is applied (via SetReadDeadline, if the
	// underlying reader supports it) before every frame-header read. Zero
	// disables any deadline, matching the reference implementation, which
	// has none.
	ReadDeadline time.Duration

	// ValidTypes reports whether a type code is acceptable on this stream.
	// A frame naming any other code fails with ErrInvalidMessageType. The
	// zero value accepts every code; callers normally pass wire.IsValidType.
	ValidTypes func(uint16) bool
}

var defaultOptions = Options{
	ReadDeadline: 0,
	ValidTypes:   func(uint16) bool { return true },
}

type Option func(*Options)

// WithReadDeadline sets a bounded-inactivity timer applied before each frame
// header read. See §5 of the protocol description: no timeout is mandated,
// but one is recommended at the framer read path.
func WithReadDeadline(d time.Duration) Option {
	return func(o *Options) { o.ReadDeadline = d }
}

// WithValidTypes restricts ReadMessage to the given set of type codes.
func WithValidTypes(fn func(uint16) bool) Option {
	return func(o *Options) { o.ValidTypes = fn }
}
