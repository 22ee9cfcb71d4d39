// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	expires := int64(1234567890)
	ackIdx := uint64(5)

	cases := []struct {
		name string
		msg  any
	}{
		{"MyPkg", MyPkg{
			Name: "demo", MD5Sum: "abc123", Author: "me", BuiltOn: 111,
			Expires: &expires, OS: "linux", Arch: "amd64", Tags: []string{"x", "y"}, Commit: "deadbeef",
			Files: []File{{Path: "a.txt", Length: 3, MD5Sum: "aaa"}},
		}},
		{"MyPkgNoFiles", MyPkg{Name: "demo", MD5Sum: "abc123", Tags: []string{}, Files: []File{}}},
		{"MyPkgAckRejected", MyPkgAck{}},
		{"MyPkgAckDeduped", MyPkgAck{MD5Sum: strPtr("abc123"), Files: []File{}}},
		{"MyPkgAckAccepted", MyPkgAck{MD5Sum: strPtr("abc123")}},
		{"NegotiateMyPkg", NegotiateMyPkg{MD5Sum: "abc123"}},
		{"NegotiateMyPkgAckNoPeers", NegotiateMyPkgAck{MD5Sum: "abc123"}},
		{"NegotiateMyPkgAckWithPeers", NegotiateMyPkgAck{MD5Sum: "abc123", Peers: []string{"1.2.3.4:9"}}},
		{"PieceExchange", PieceExchange{Start: 0, End: 4, File: File{Path: "a.txt", Length: 3, MD5Sum: "aaa"}}},
		{"PieceExchangeAckNoResume", PieceExchangeAck{}},
		{"PieceExchangeAckResume", PieceExchangeAck{Pieces: &[2]uint64{2, 4}}},
		{"Piece", Piece{Index: 1, Data: []byte("hello")}},
		{"PieceWithAck", Piece{Index: 1, Ack: &ackIdx, Data: []byte("hello")}},
		{"PieceAck", PieceAck{Piece: 7}},
		{"Done", Done{MD5Sum: "abc123"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			typeCode, payload, err := Encode(tc.msg)
			require.NoError(t, err)

			got, err := Decode(typeCode, payload)
			require.NoError(t, err)
			assert.Equal(t, tc.msg, got)
		})
	}
}

func TestMyPkgAckAcceptedAndDeduped(t *testing.T) {
	rejected := MyPkgAck{}
	assert.False(t, rejected.Accepted())
	assert.False(t, rejected.Deduped())

	deduped := MyPkgAck{MD5Sum: strPtr("x"), Files: []File{}}
	assert.True(t, deduped.Accepted())
	assert.True(t, deduped.Deduped())

	accepted := MyPkgAck{MD5Sum: strPtr("x")}
	assert.True(t, accepted.Accepted())
	assert.False(t, accepted.Deduped())
}

func TestDecodeInvalidMessageType(t *testing.T) {
	_, err := Decode(9999, []byte("de"))
	assert.ErrorIs(t, err, ErrInvalidMessageType)
}

func TestDecodeMalformedPayload(t *testing.T) {
	_, err := Decode(TypeMyPkg, []byte("not bencode"))
	assert.ErrorIs(t, err, ErrDecode)
	var target error
	assert.True(t, errors.As(err, &target))
}

func TestIsValidType(t *testing.T) {
	assert.True(t, IsValidType(TypeMyPkg))
	assert.True(t, IsValidType(TypeDone))
	assert.False(t, IsValidType(1))
	assert.False(t, IsValidType(99))
}

func strPtr(s string) *string { return &s }
