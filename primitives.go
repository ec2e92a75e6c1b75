package mysql

import (
	"bytes"
	"encoding/binary"
	"io"
)

// Primitives & Codecs (§4.2). These are pure functions over byte slices;
// none of them touch the network or hold session state.

// readLengthEncodedInteger decodes a lenenc-int per §4.2. The returned bool
// reports whether the encoding was the textual-row NULL sentinel (0xFB on
// its own); that sentinel is only meaningful when decoding a text row and is
// otherwise an error for the caller to reject.
func readLengthEncodedInteger(data []byte) (num uint64, isNull bool, n int, err error) {
	if len(data) == 0 {
		return 0, false, 0, io.ErrUnexpectedEOF
	}

	switch data[0] {
	case 0xfb:
		return 0, true, 1, nil

	case 0xfc:
		if len(data) < 3 {
			return 0, false, 0, io.ErrUnexpectedEOF
		}
		return uint64(data[1]) | uint64(data[2])<<8, false, 3, nil

	case 0xfd:
		if len(data) < 4 {
			return 0, false, 0, io.ErrUnexpectedEOF
		}
		return uint64(data[1]) | uint64(data[2])<<8 | uint64(data[3])<<16, false, 4, nil

	case 0xfe:
		if len(data) < 9 {
			return 0, false, 0, io.ErrUnexpectedEOF
		}
		return binary.LittleEndian.Uint64(data[1:9]), false, 9, nil

	case 0xff:
		return 0, false, 0, &ProtocolError{Msg: "0xFF is not a valid lenenc-int lead byte"}

	default:
		return uint64(data[0]), false, 1, nil
	}
}

// appendLengthEncodedInteger appends the shortest valid lenenc-int encoding
// of n to dst (§8 property 3).
func appendLengthEncodedInteger(dst []byte, n uint64) []byte {
	switch {
	case n < 0xfb:
		return append(dst, byte(n))
	case n <= 0xffff:
		return append(dst, 0xfc, byte(n), byte(n>>8))
	case n <= 0xffffff:
		return append(dst, 0xfd, byte(n), byte(n>>8), byte(n>>16))
	default:
		b := make([]byte, 9)
		b[0] = 0xfe
		binary.LittleEndian.PutUint64(b[1:], n)
		return append(dst, b...)
	}
}

// readLengthEncodedString reads a lenenc-string: a lenenc-int length
// followed by that many bytes.
func readLengthEncodedString(data []byte) (s []byte, isNull bool, n int, err error) {
	num, isNull, n, err := readLengthEncodedInteger(data)
	if err != nil || isNull {
		return nil, isNull, n, err
	}
	if uint64(len(data)) < uint64(n)+num {
		return nil, false, n, io.ErrUnexpectedEOF
	}
	return data[n : uint64(n)+num], false, n + int(num), nil
}

// appendLengthEncodedString appends a lenenc-string encoding of s to dst.
func appendLengthEncodedString(dst []byte, s []byte) []byte {
	dst = appendLengthEncodedInteger(dst, uint64(len(s)))
	return append(dst, s...)
}

// readNULString reads bytes up to (excluding) the first 0x00 and returns the
// number of input bytes consumed, including the terminator.
func readNULString(data []byte) (s []byte, n int, err error) {
	idx := bytes.IndexByte(data, 0x00)
	if idx < 0 {
		return nil, 0, io.ErrUnexpectedEOF
	}
	return data[:idx], idx + 1, nil
}

// appendNULString appends s followed by a NUL terminator.
func appendNULString(dst []byte, s string) []byte {
	dst = append(dst, s...)
	return append(dst, 0x00)
}

// fixed-width little-endian integer codecs.

func readUint16(data []byte) uint16 { return binary.LittleEndian.Uint16(data) }
func readUint32(data []byte) uint32 { return binary.LittleEndian.Uint32(data) }
func readUint64(data []byte) uint64 { return binary.LittleEndian.Uint64(data) }

func appendUint16(dst []byte, v uint16) []byte {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return append(dst, b[:]...)
}

func appendUint24(dst []byte, v uint32) []byte {
	return append(dst, byte(v), byte(v>>8), byte(v>>16))
}

func appendUint32(dst []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(dst, b[:]...)
}

func appendUint64(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

// nullBitmap is the per-row NULL bitmap used by the binary row protocol
// (§4.5). offset accounts for the two reserved bits COM_STMT_EXECUTE
// responses always carry ahead of column 0.
type nullBitmap []byte

func newNullBitmap(numFields, offset int) nullBitmap {
	return make(nullBitmap, (numFields+offset+7)/8)
}

func (b nullBitmap) isNull(i, offset int) bool {
	i += offset
	return b[i/8]&(1<<uint(i%8)) != 0
}

func (b nullBitmap) setNull(i, offset int) {
	i += offset
	b[i/8] |= 1 << uint(i%8)
}
