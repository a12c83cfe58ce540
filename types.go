package tiffvis

// SampleFormat describes how the canonical byte buffer is reinterpreted.
// Values follow the TIFF SampleFormat tag.
type SampleFormat uint32

const (
	FormatUint  SampleFormat = 1 // unsigned integers, stored bit pattern
	FormatInt   SampleFormat = 2 // signed integers, two's complement bit pattern
	FormatFloat SampleFormat = 3 // IEEE 754 binary32
)

// ColorModel identifies the pixel layout reported by the decoder.
type ColorModel int

const (
	ColorGray ColorModel = iota
	ColorGrayAlpha
	ColorRGB
	ColorRGBA
	ColorCMYK
	ColorOther
)

// ColorType pairs a color model with the per-sample bit depth.
type ColorType struct {
	Model ColorModel
	Bits  uint32
}

// Channels returns the sample count per pixel for the model.
// Unknown models report a single channel.
func (c ColorType) Channels() uint32 {
	switch c.Model {
	case ColorGray:
		return 1
	case ColorGrayAlpha:
		return 2
	case ColorRGB:
		return 3
	case ColorRGBA, ColorCMYK:
		return 4
	default:
		return 1
	}
}

// BitsPerSample returns the reported bit depth, defaulting unknown models
// to 8.
func (c ColorType) BitsPerSample() uint32 {
	if c.Model == ColorOther {
		return 8
	}
	return c.Bits
}

// Kind tags the numeric representation of one raster element.
type Kind int

const (
	KindU8 Kind = iota
	KindU16
	KindU32
	KindU64
	KindI8
	KindI16
	KindI32
	KindI64
	KindF16
	KindF32
	KindF64
)

// Samples is a tagged union over the eleven numeric encodings a decoded
// raster can carry. Exactly the slice selected by Kind is populated; all
// consumers dispatch with an exhaustive switch on Kind.
//
// Half-precision values are carried as raw IEEE 754 binary16 bit patterns.
type Samples struct {
	Kind Kind

	U8  []uint8
	U16 []uint16
	U32 []uint32
	U64 []uint64
	I8  []int8
	I16 []int16
	I32 []int32
	I64 []int64
	F16 []uint16
	F32 []float32
	F64 []float64
}

// Len returns the element count of the populated variant.
func (s Samples) Len() int {
	switch s.Kind {
	case KindU8:
		return len(s.U8)
	case KindU16:
		return len(s.U16)
	case KindU32:
		return len(s.U32)
	case KindU64:
		return len(s.U64)
	case KindI8:
		return len(s.I8)
	case KindI16:
		return len(s.I16)
	case KindI32:
		return len(s.I32)
	case KindI64:
		return len(s.I64)
	case KindF16:
		return len(s.F16)
	case KindF32:
		return len(s.F32)
	case KindF64:
		return len(s.F64)
	default:
		return 0
	}
}

// Result is the normalized form of one decoded raster. It is constructed
// once per Decode call and not mutated afterwards; the caller owns it and
// the Data buffer exclusively.
type Result struct {
	Width    uint32
	Height   uint32
	Channels uint32

	// BitsPerSample is the depth reported by the decoder. For 64-bit and
	// half-precision float sources it intentionally differs from the
	// canonical element width, which is always 4 bytes for floats.
	BitsPerSample uint32

	SampleFormat SampleFormat

	Compression               uint32
	Predictor                 uint32
	PhotometricInterpretation uint32
	PlanarConfiguration       uint32

	// Data is the canonical little-endian byte buffer. Its length is a whole
	// multiple of the element width implied by SampleFormat and the source
	// kind; no padding is ever inserted.
	Data []byte

	// MinValue and MaxValue are computed over finite samples only. If the
	// input has no finite samples they stay at +Inf/-Inf respectively. For
	// an empty integer raster MinValue > MaxValue (the type extremes).
	MinValue float64
	MaxValue float64
}
