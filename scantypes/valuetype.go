// Package scantypes holds the primitive value encoding, candidate item, and
// driver contract shared by the scan engine, its drivers, and its CLI. It
// has no dependency on the engine itself so drivers and the public API can
// both import it without a cycle.
package scantypes

import (
	"encoding/binary"
	"math"
)

// ValueType is the closed set of primitive numeric encodings a scan can
// target. Alignment always equals Size().
type ValueType int

const (
	I8 ValueType = iota
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	F32
	F64
)

func (v ValueType) String() string {
	switch v {
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case U64:
		return "u64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	default:
		return "unknown"
	}
}

// Size returns the width in bytes of the encoding.
func (v ValueType) Size() int {
	switch v {
	case I8, U8:
		return 1
	case I16, U16:
		return 2
	case I32, U32, F32:
		return 4
	case I64, U64, F64:
		return 8
	default:
		return 0
	}
}

// Decode interprets b as a little-endian value of this type and widens it
// to float64, the engine's common currency for relational comparisons. b
// must be at least Size() bytes; shorter input decodes as zero.
func (v ValueType) Decode(b []byte) float64 {
	if len(b) < v.Size() {
		return 0
	}
	switch v {
	case I8:
		return float64(int8(b[0]))
	case U8:
		return float64(b[0])
	case I16:
		return float64(int16(binary.LittleEndian.Uint16(b)))
	case U16:
		return float64(binary.LittleEndian.Uint16(b))
	case I32:
		return float64(int32(binary.LittleEndian.Uint32(b)))
	case U32:
		return float64(binary.LittleEndian.Uint32(b))
	case I64:
		return float64(int64(binary.LittleEndian.Uint64(b)))
	case U64:
		return float64(binary.LittleEndian.Uint64(b))
	case F32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	case F64:
		return math.Float64frombits(binary.LittleEndian.Uint64(b))
	default:
		return 0
	}
}
