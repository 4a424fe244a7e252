// Package binconv converts between integers and their big-endian byte
// representation and renders bytes as hex text.
package binconv

import (
	"encoding/binary"
	"encoding/hex"
	"slices"
	"strings"
)

// fold reads up to n bytes of b as a big-endian number. Shorter input reads
// as if it were padded with leading zero bytes.
func fold(b []byte, n int) uint64 {
	if len(b) > n {
		b = b[:n]
	}
	var v uint64
	for _, x := range b {
		v = v<<8 | uint64(x)
	}
	return v
}

func Uint16(b []byte) uint16 { return uint16(fold(b, 2)) }
func Uint32(b []byte) uint32 { return uint32(fold(b, 4)) }
func Uint64(b []byte) uint64 { return fold(b, 8) }

func Int16(b []byte) int16 { return int16(Uint16(b)) }
func Int32(b []byte) int32 { return int32(Uint32(b)) }
func Int64(b []byte) int64 { return int64(Uint64(b)) }

func AppendInt16(dst []byte, v int16) []byte {
	return binary.BigEndian.AppendUint16(dst, uint16(v))
}

func AppendInt32(dst []byte, v int32) []byte {
	return binary.BigEndian.AppendUint32(dst, uint32(v))
}

func AppendInt64(dst []byte, v int64) []byte {
	return binary.BigEndian.AppendUint64(dst, uint64(v))
}

// PutInt16 writes v into the first two bytes of b. It panics if b is too
// short, as do PutInt32 and PutInt64.
func PutInt16(b []byte, v int16) { binary.BigEndian.PutUint16(b, uint16(v)) }
func PutInt32(b []byte, v int32) { binary.BigEndian.PutUint32(b, uint32(v)) }
func PutInt64(b []byte, v int64) { binary.BigEndian.PutUint64(b, uint64(v)) }

// Chunks splits b into consecutive chunks of size bytes; the last chunk holds
// the remainder. The chunks share b's memory. Chunks panics if size < 1.
func Chunks(b []byte, size int) [][]byte {
	var out [][]byte
	for c := range slices.Chunk(b, size) {
		out = append(out, c)
	}
	return out
}

// Hex renders one byte as two lower case hex digits.
func Hex(b byte) string {
	return hex.EncodeToString([]byte{b})
}

// HexBlocks renders b as hex bytes separated by spaces, blockSize bytes per
// line. HexBlocks panics if blockSize < 1.
func HexBlocks(b []byte, blockSize int) string {
	if blockSize < 1 {
		panic("binconv: block size must be positive")
	}
	if len(b) == 0 {
		return ""
	}
	lines := make([]string, 0, len(b)/blockSize+1)
	for _, block := range Chunks(b, blockSize) {
		words := make([]string, 0, len(block))
		for _, x := range block {
			words = append(words, Hex(x))
		}
		lines = append(lines, strings.Join(words, " "))
	}
	return strings.Join(lines, "\n")
}
