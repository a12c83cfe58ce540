package tiffvis

import (
	"encoding/binary"
	"math"
)

// Float32View reinterprets the canonical byte buffer as a float32 sequence
// for visualization.
//
// Float buffers are reinterpreted directly. Integer buffers are decoded by
// the reported bit depth and read as unsigned regardless of SampleFormat,
// so negative signed samples surface as large positive floats; consumers
// relying on this view already expect that behavior. 64-bit integers are
// not representable here and, like any other unrecognized depth, yield an
// empty sequence rather than an error.
func (r *Result) Float32View() []float32 {
	switch r.SampleFormat {
	case FormatFloat:
		out := make([]float32, len(r.Data)/4)
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(r.Data[i*4:]))
		}
		return out
	case FormatUint, FormatInt:
		switch r.BitsPerSample {
		case 8:
			out := make([]float32, len(r.Data))
			for i, v := range r.Data {
				out[i] = float32(v)
			}
			return out
		case 16:
			out := make([]float32, len(r.Data)/2)
			for i := range out {
				out[i] = float32(binary.LittleEndian.Uint16(r.Data[i*2:]))
			}
			return out
		case 32:
			out := make([]float32, len(r.Data)/4)
			for i := range out {
				out[i] = float32(binary.LittleEndian.Uint32(r.Data[i*4:]))
			}
			return out
		default:
			return nil
		}
	default:
		return nil
	}
}
