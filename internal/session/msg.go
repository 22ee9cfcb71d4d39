// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package session

import (
	"fmt"

	"code.hybscloud.com/blobfish/internal/wire"
	"code.hybscloud.com/blobfish/framer"
)

// writeMsg encodes msg and writes it as a single framed message, failing if
// its wire type code does not match wantType (a programmer error, not a
// protocol one: every call site names a single, fixed message type).
func writeMsg(fr *framer.Framer, wantType uint16, msg any) error {
	typeCode, payload, err := wire.Encode(msg)
	if err != nil {
		return err
	}
	if typeCode != wantType {
		return fmt.Errorf("session: internal error: encoded type %d, expected %d", typeCode, wantType)
	}
	return fr.WriteMessage(typeCode, payload)
}

// readMsg reads one framed message, requires it to carry wantType, and
// decodes it as T.
func readMsg[T any](fr *framer.Framer, wantType uint16) (T, error) {
	var zero T
	typeCode, payload, err := fr.ReadMessage()
	if err != nil {
		return zero, err
	}
	if typeCode != wantType {
		return zero, fmt.Errorf("%w: got type %d, expected %d", errUnexpectedType, typeCode, wantType)
	}
	msg, err := wire.Decode(typeCode, payload)
	if err != nil {
		return zero, err
	}
	v, ok := msg.(T)
	if !ok {
		return zero, fmt.Errorf("session: internal error: decoded %T, expected %T", msg, zero)
	}
	return v, nil
}
