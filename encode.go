package tiffvis

import (
	"encoding/binary"
	"math"
)

// encodeSamples converts a typed sample sequence into the canonical
// little-endian byte buffer and its sample format tag.
//
// Integer kinds keep their native width. Floats are always stored as
// binary32: 64-bit values are narrowed and half-precision values widened,
// trading buffer precision for a uniform visualization format.
func encodeSamples(s Samples) ([]byte, SampleFormat) {
	switch s.Kind {
	case KindU8:
		return append([]byte(nil), s.U8...), FormatUint
	case KindU16:
		buf := make([]byte, len(s.U16)*2)
		for i, v := range s.U16 {
			binary.LittleEndian.PutUint16(buf[i*2:], v)
		}
		return buf, FormatUint
	case KindU32:
		buf := make([]byte, len(s.U32)*4)
		for i, v := range s.U32 {
			binary.LittleEndian.PutUint32(buf[i*4:], v)
		}
		return buf, FormatUint
	case KindU64:
		buf := make([]byte, len(s.U64)*8)
		for i, v := range s.U64 {
			binary.LittleEndian.PutUint64(buf[i*8:], v)
		}
		return buf, FormatUint
	case KindI8:
		buf := make([]byte, len(s.I8))
		for i, v := range s.I8 {
			buf[i] = byte(v)
		}
		return buf, FormatInt
	case KindI16:
		buf := make([]byte, len(s.I16)*2)
		for i, v := range s.I16 {
			binary.LittleEndian.PutUint16(buf[i*2:], uint16(v))
		}
		return buf, FormatInt
	case KindI32:
		buf := make([]byte, len(s.I32)*4)
		for i, v := range s.I32 {
			binary.LittleEndian.PutUint32(buf[i*4:], uint32(v))
		}
		return buf, FormatInt
	case KindI64:
		buf := make([]byte, len(s.I64)*8)
		for i, v := range s.I64 {
			binary.LittleEndian.PutUint64(buf[i*8:], uint64(v))
		}
		return buf, FormatInt
	case KindF16:
		buf := make([]byte, len(s.F16)*4)
		for i, v := range s.F16 {
			binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(halfToFloat32(v)))
		}
		return buf, FormatFloat
	case KindF32:
		buf := make([]byte, len(s.F32)*4)
		for i, v := range s.F32 {
			binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
		}
		return buf, FormatFloat
	case KindF64:
		buf := make([]byte, len(s.F64)*4)
		for i, v := range s.F64 {
			binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(float32(v)))
		}
		return buf, FormatFloat
	default:
		return nil, FormatUint
	}
}
