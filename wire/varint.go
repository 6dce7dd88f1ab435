// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wire implements the core's wire-format codecs: VarInt, the
// 80-byte block header, and peer network addresses.
package wire

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// MaxVarIntPayload is the maximum number of bytes a VarInt can occupy.
const MaxVarIntPayload = 9

var (
	littleEndian = binary.LittleEndian
)

// ReadVarInt reads a variable length integer from r and returns it as a
// uint64. Non-canonical encodings (e.g. a 0xfd prefix encoding a value that
// would fit in a single byte) are accepted on input, per the wire format's
// liberal-input rule.
func ReadVarInt(r io.Reader) (uint64, error) {
	var prefix [1]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return 0, errors.Wrap(err, "wire: failed to read varint prefix")
	}

	var rv uint64
	switch prefix[0] {
	case 0xff:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, errors.Wrap(err, "wire: failed to read varint u64")
		}
		rv = littleEndian.Uint64(buf[:])
	case 0xfe:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, errors.Wrap(err, "wire: failed to read varint u32")
		}
		rv = uint64(littleEndian.Uint32(buf[:]))
	case 0xfd:
		var buf [2]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, errors.Wrap(err, "wire: failed to read varint u16")
		}
		rv = uint64(littleEndian.Uint16(buf[:]))
	default:
		rv = uint64(prefix[0])
	}

	return rv, nil
}

// WriteVarInt serializes val to w using the shortest canonical encoding.
func WriteVarInt(w io.Writer, val uint64) error {
	if val < 0xfd {
		_, err := w.Write([]byte{byte(val)})
		return errors.Wrap(err, "wire: failed to write varint u8")
	}
	if val <= 0xffff {
		buf := make([]byte, 3)
		buf[0] = 0xfd
		littleEndian.PutUint16(buf[1:], uint16(val))
		_, err := w.Write(buf)
		return errors.Wrap(err, "wire: failed to write varint u16")
	}
	if val <= 0xffffffff {
		buf := make([]byte, 5)
		buf[0] = 0xfe
		littleEndian.PutUint32(buf[1:], uint32(val))
		_, err := w.Write(buf)
		return errors.Wrap(err, "wire: failed to write varint u32")
	}
	buf := make([]byte, 9)
	buf[0] = 0xff
	littleEndian.PutUint64(buf[1:], val)
	_, err := w.Write(buf)
	return errors.Wrap(err, "wire: failed to write varint u64")
}

// VarIntSerializeSize returns the number of bytes required to canonically
// encode val.
func VarIntSerializeSize(val uint64) int {
	switch {
	case val < 0xfd:
		return 1
	case val <= 0xffff:
		return 3
	case val <= 0xffffffff:
		return 5
	default:
		return 9
	}
}
