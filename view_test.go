package tiffvis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func resultFor(s Samples, bits uint32) *Result {
	data, format := encodeSamples(s)
	return &Result{BitsPerSample: bits, SampleFormat: format, Data: data}
}

func TestFloat32ViewIntegerRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		samples Samples
		bits    uint32
		want    []float32
	}{
		{"u8", Samples{Kind: KindU8, U8: []uint8{10, 20, 30, 40}}, 8, []float32{10, 20, 30, 40}},
		{"u16", Samples{Kind: KindU16, U16: []uint16{0, 256, 65535}}, 16, []float32{0, 256, 65535}},
		{"u32", Samples{Kind: KindU32, U32: []uint32{0, 1 << 20}}, 32, []float32{0, 1 << 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resultFor(tt.samples, tt.bits).Float32View())
		})
	}
}

func TestFloat32ViewFloats(t *testing.T) {
	want := []float32{1.5, -2.25, 0}
	res := resultFor(Samples{Kind: KindF32, F32: want}, 32)
	assert.Equal(t, want, res.Float32View())
}

// Narrowed 64-bit sources view back as the float32 approximation.
func TestFloat32ViewNarrowedF64(t *testing.T) {
	v := 3.14159265358979
	res := resultFor(Samples{Kind: KindF64, F64: []float64{v}}, 64)
	assert.Equal(t, []float32{float32(v)}, res.Float32View())
}

// Integer elements are always read as unsigned in this view, whatever the
// sample format says. A negative int32 therefore surfaces as a large
// positive float. This mirrors the upstream consumer contract; do not fix.
func TestFloat32ViewSignedReadAsUnsigned(t *testing.T) {
	res := resultFor(Samples{Kind: KindI32, I32: []int32{-1}}, 32)
	assert.Equal(t, []float32{float32(uint32(0xFFFFFFFF))}, res.Float32View())

	res = resultFor(Samples{Kind: KindI16, I16: []int16{-2}}, 16)
	assert.Equal(t, []float32{65534}, res.Float32View())
}

// Unrecognized integer bit depths fall back to an empty view, not an error.
func TestFloat32ViewUnsupportedDepth(t *testing.T) {
	res := resultFor(Samples{Kind: KindU64, U64: []uint64{1, 2}}, 64)
	assert.Empty(t, res.Float32View())

	res = resultFor(Samples{Kind: KindI64, I64: []int64{3}}, 64)
	assert.Empty(t, res.Float32View())
}
