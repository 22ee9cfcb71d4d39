// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import (
	"errors"
	"fmt"

	"github.com/zeebo/bencode"
)

// ErrInvalidMessageType is returned by Decode for an unrecognized type code.
var ErrInvalidMessageType = errors.New("wire: invalid message type")

// ErrDecode wraps a malformed-payload failure from the bencode layer.
var ErrDecode = errors.New("wire: malformed payload")

// Encode maps an in-memory message to its type code and bencoded payload.
func Encode(msg any) (typeCode uint16, payload []byte, err error) {
	dict, typeCode, err := toDict(msg)
	if err != nil {
		return 0, nil, err
	}
	b, err := bencode.EncodeBytes(dict)
	if err != nil {
		return 0, nil, fmt.Errorf("wire: encode %s: %w", typeName(typeCode), err)
	}
	return typeCode, b, nil
}

// Decode maps a type code and bencoded payload back to the in-memory message.
// The concrete type of the returned value matches typeCode (e.g. TypeMyPkg
// decodes to a MyPkg value).
func Decode(typeCode uint16, payload []byte) (any, error) {
	if !IsValidType(typeCode) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMessageType, typeCode)
	}
	var dict map[string]any
	if err := bencode.DecodeBytes(payload, &dict); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, typeName(typeCode), err)
	}
	msg, err := fromDict(typeCode, dict)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, typeName(typeCode), err)
	}
	return msg, nil
}

func toDict(msg any) (map[string]any, uint16, error) {
	switch m := msg.(type) {
	case MyPkg:
		d := map[string]any{
			"name":     m.Name,
			"md5sum":   m.MD5Sum,
			"author":   m.Author,
			"built_on": m.BuiltOn,
			"os":       m.OS,
			"arch":     m.Arch,
			"tags":     stringsToAny(m.Tags),
			"commit":   m.Commit,
			"files":    filesToAny(m.Files),
		}
		if m.Expires != nil {
			d["expires"] = *m.Expires
		}
		return d, TypeMyPkg, nil
	case File:
		return fileDict(m), TypeFile, nil
	case MyPkgAck:
		d := map[string]any{}
		if m.MD5Sum != nil {
			d["md5sum"] = *m.MD5Sum
		}
		if m.Files != nil {
			d["files"] = filesToAny(m.Files)
		}
		return d, TypeMyPkgAck, nil
	case NegotiateMyPkg:
		return map[string]any{"md5sum": m.MD5Sum}, TypeNegotiateMyPkg, nil
	case NegotiateMyPkgAck:
		d := map[string]any{"md5sum": m.MD5Sum}
		if m.Peers != nil {
			d["peers"] = stringsToAny(m.Peers)
		}
		return d, TypeNegotiateMyPkgAck, nil
	case PieceExchange:
		return map[string]any{
			"pieces": []any{int64(m.Start), int64(m.End)},
			"file":   fileDict(m.File),
		}, TypePieceExchange, nil
	case PieceExchangeAck:
		d := map[string]any{}
		if m.Pieces != nil {
			d["pieces"] = []any{int64(m.Pieces[0]), int64(m.Pieces[1])}
		}
		return d, TypePieceExchangeAck, nil
	case Piece:
		d := map[string]any{
			"piece": int64(m.Index),
			"data":  string(m.Data),
		}
		if m.Ack != nil {
			d["ack"] = int64(*m.Ack)
		}
		return d, TypePiece, nil
	case PieceAck:
		return map[string]any{"piece": int64(m.Piece)}, TypePieceAck, nil
	case Done:
		return map[string]any{"md5sum": m.MD5Sum}, TypeDone, nil
	default:
		return nil, 0, fmt.Errorf("wire: unsupported message type %T", msg)
	}
}

func fileDict(f File) map[string]any {
	return map[string]any{
		"path":   f.Path,
		"length": int64(f.Length),
		"md5sum": f.MD5Sum,
	}
}

func filesToAny(files []File) []any {
	out := make([]any, len(files))
	for i, f := range files {
		out[i] = fileDict(f)
	}
	return out
}

func stringsToAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func fromDict(typeCode uint16, d map[string]any) (any, error) {
	switch typeCode {
	case TypeMyPkg:
		files, err := decodeFiles(d["files"])
		if err != nil {
			return nil, err
		}
		tags, err := decodeStrings(d["tags"])
		if err != nil {
			return nil, err
		}
		builtOn, err := decodeInt(d["built_on"])
		if err != nil {
			return nil, err
		}
		var expires *int64
		if v, ok := d["expires"]; ok {
			e, err := decodeInt(v)
			if err != nil {
				return nil, err
			}
			expires = &e
		}
		name, err := decodeString(d["name"])
		if err != nil {
			return nil, err
		}
		md5sum, err := decodeString(d["md5sum"])
		if err != nil {
			return nil, err
		}
		author, err := decodeString(d["author"])
		if err != nil {
			return nil, err
		}
		osName, err := decodeString(d["os"])
		if err != nil {
			return nil, err
		}
		arch, err := decodeString(d["arch"])
		if err != nil {
			return nil, err
		}
		commit, err := decodeString(d["commit"])
		if err != nil {
			return nil, err
		}
		return MyPkg{
			Name: name, MD5Sum: md5sum, Author: author, BuiltOn: builtOn,
			Expires: expires, OS: osName, Arch: arch, Tags: tags, Commit: commit,
			Files: files,
		}, nil
	case TypeFile:
		return decodeFile(d)
	case TypeMyPkgAck:
		ack := MyPkgAck{}
		if v, ok := d["md5sum"]; ok {
			s, err := decodeString(v)
			if err != nil {
				return nil, err
			}
			ack.MD5Sum = &s
		}
		if v, ok := d["files"]; ok {
			files, err := decodeFiles(v)
			if err != nil {
				return nil, err
			}
			if files == nil {
				files = []File{}
			}
			ack.Files = files
		}
		return ack, nil
	case TypeNegotiateMyPkg:
		md5sum, err := decodeString(d["md5sum"])
		if err != nil {
			return nil, err
		}
		return NegotiateMyPkg{MD5Sum: md5sum}, nil
	case TypeNegotiateMyPkgAck:
		md5sum, err := decodeString(d["md5sum"])
		if err != nil {
			return nil, err
		}
		ack := NegotiateMyPkgAck{MD5Sum: md5sum}
		if v, ok := d["peers"]; ok {
			peers, err := decodeStrings(v)
			if err != nil {
				return nil, err
			}
			if peers == nil {
				peers = []string{}
			}
			ack.Peers = peers
		}
		return ack, nil
	case TypePieceExchange:
		pieces, err := decodePieceRange(d["pieces"])
		if err != nil {
			return nil, err
		}
		fileDict, ok := d["file"].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("missing or malformed %q", "file")
		}
		file, err := decodeFile(fileDict)
		if err != nil {
			return nil, err
		}
		return PieceExchange{Start: pieces[0], End: pieces[1], File: file}, nil
	case TypePieceExchangeAck:
		ack := PieceExchangeAck{}
		if v, ok := d["pieces"]; ok {
			pieces, err := decodePieceRange(v)
			if err != nil {
				return nil, err
			}
			ack.Pieces = &pieces
		}
		return ack, nil
	case TypePiece:
		idx, err := decodeInt(d["piece"])
		if err != nil {
			return nil, err
		}
		data, err := decodeBytes(d["data"])
		if err != nil {
			return nil, err
		}
		p := Piece{Index: uint64(idx), Data: data}
		if v, ok := d["ack"]; ok {
			a, err := decodeInt(v)
			if err != nil {
				return nil, err
			}
			au := uint64(a)
			p.Ack = &au
		}
		return p, nil
	case TypePieceAck:
		idx, err := decodeInt(d["piece"])
		if err != nil {
			return nil, err
		}
		return PieceAck{Piece: uint64(idx)}, nil
	case TypeDone:
		md5sum, err := decodeString(d["md5sum"])
		if err != nil {
			return nil, err
		}
		return Done{MD5Sum: md5sum}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidMessageType, typeCode)
	}
}

func decodePieceRange(v any) ([2]uint64, error) {
	var out [2]uint64
	list, ok := v.([]any)
	if !ok || len(list) != 2 {
		return out, fmt.Errorf("malformed piece range")
	}
	start, err := decodeInt(list[0])
	if err != nil {
		return out, err
	}
	end, err := decodeInt(list[1])
	if err != nil {
		return out, err
	}
	out[0], out[1] = uint64(start), uint64(end)
	return out, nil
}

func decodeFile(d map[string]any) (File, error) {
	path, err := decodeString(d["path"])
	if err != nil {
		return File{}, err
	}
	length, err := decodeInt(d["length"])
	if err != nil {
		return File{}, err
	}
	md5sum, err := decodeString(d["md5sum"])
	if err != nil {
		return File{}, err
	}
	return File{Path: path, Length: uint64(length), MD5Sum: md5sum}, nil
}

func decodeFiles(v any) ([]File, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("malformed file list")
	}
	out := make([]File, len(list))
	for i, item := range list {
		fd, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("malformed file entry")
		}
		f, err := decodeFile(fd)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func decodeStrings(v any) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("malformed string list")
	}
	out := make([]string, len(list))
	for i, item := range list {
		s, err := decodeString(item)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func decodeString(v any) (string, error) {
	b, err := decodeBytes(v)
	return string(b), err
}

func decodeBytes(v any) ([]byte, error) {
	switch s := v.(type) {
	case string:
		return []byte(s), nil
	case []byte:
		return s, nil
	case nil:
		return nil, fmt.Errorf("missing required byte-string field")
	default:
		return nil, fmt.Errorf("expected byte string, got %T", v)
	}
}

func decodeInt(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	case nil:
		return 0, fmt.Errorf("missing required integer field")
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}
