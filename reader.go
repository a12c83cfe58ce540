package tiffvis

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/zlib"
	"golang.org/x/image/tiff/lzw"
)

// Tags consulted by the bundled reader beyond the ones in decode.go.
const (
	tagImageWidth      = 256
	tagImageLength     = 257
	tagBitsPerSample   = 258
	tagStripOffsets    = 273
	tagSamplesPerPixel = 277
	tagRowsPerStrip    = 278
	tagStripByteCounts = 279
	tagTileWidth       = 322
	tagTileLength      = 323
	tagSampleFormat    = 339
)

// Compression tag values the reader understands.
const (
	compressionNone       = 1
	compressionLZW        = 5
	compressionDeflate    = 8
	compressionDeflateOld = 32946
)

const (
	leHeader = "II\x2A\x00"
	beHeader = "MM\x00\x2A"
)

var errNotTIFF = errors.New("not a TIFF file")

type ifdEntry struct {
	typ   uint16
	count uint32
	// vals holds integral values (BYTE/SHORT/LONG families). Other field
	// types are recorded but carry no values.
	vals []uint32
}

// Reader is the bundled baseline-TIFF collaborator behind the Decoder
// interface: strip-oriented, first IFD only, chunky planar layout, with
// none/LZW/Deflate compression and horizontal-predictor support.
type Reader struct {
	data      []byte
	byteOrder binary.ByteOrder
	tags      map[uint16]ifdEntry
}

var _ Decoder = (*Reader)(nil)

// NewReader parses the TIFF header and the first IFD's tag table. Pixel
// data is not touched until ReadImage.
func NewReader(data []byte) (*Reader, error) {
	if len(data) < 8 {
		return nil, errNotTIFF
	}
	r := &Reader{data: data, tags: make(map[uint16]ifdEntry)}
	switch string(data[0:4]) {
	case leHeader:
		r.byteOrder = binary.LittleEndian
	case beHeader:
		r.byteOrder = binary.BigEndian
	default:
		return nil, errNotTIFF
	}

	ifdOffset := r.byteOrder.Uint32(data[4:8])
	if err := r.parseIFD(ifdOffset); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reader) parseIFD(offset uint32) error {
	if int64(offset)+2 > int64(len(r.data)) {
		return errors.New("IFD offset out of bounds")
	}
	n := int(r.byteOrder.Uint16(r.data[offset:]))
	pos := int64(offset) + 2
	if pos+int64(n)*12 > int64(len(r.data)) {
		return errors.New("truncated IFD")
	}
	for i := 0; i < n; i++ {
		ent := r.data[pos : pos+12]
		tag := r.byteOrder.Uint16(ent[0:2])
		typ := r.byteOrder.Uint16(ent[2:4])
		count := r.byteOrder.Uint32(ent[4:8])
		vals, err := r.entryValues(typ, count, ent[8:12])
		if err != nil {
			return fmt.Errorf("tag %d: %w", tag, err)
		}
		r.tags[tag] = ifdEntry{typ: typ, count: count, vals: vals}
		pos += 12
	}
	return nil
}

func fieldTypeSize(typ uint16) int {
	switch typ {
	case 1, 2, 6, 7: // BYTE, ASCII, SBYTE, UNDEFINED
		return 1
	case 3, 8: // SHORT, SSHORT
		return 2
	case 4, 9, 11: // LONG, SLONG, FLOAT
		return 4
	case 5, 10, 12: // RATIONAL, SRATIONAL, DOUBLE
		return 8
	default:
		return 0
	}
}

// entryValues decodes the integral value array of one IFD entry. Values fit
// inline in the 4-byte field when size*count <= 4, otherwise the field is
// an offset into the file.
func (r *Reader) entryValues(typ uint16, count uint32, field []byte) ([]uint32, error) {
	size := fieldTypeSize(typ)
	if size == 0 || count == 0 {
		return nil, nil
	}
	total := int64(size) * int64(count)
	var raw []byte
	if total <= 4 {
		raw = field[:total]
	} else {
		off := int64(r.byteOrder.Uint32(field))
		if off+total > int64(len(r.data)) {
			return nil, errors.New("value offset out of bounds")
		}
		raw = r.data[off : off+total]
	}

	switch typ {
	case 1, 6, 7:
		vals := make([]uint32, count)
		for i := range vals {
			vals[i] = uint32(raw[i])
		}
		return vals, nil
	case 3, 8:
		vals := make([]uint32, count)
		for i := range vals {
			vals[i] = uint32(r.byteOrder.Uint16(raw[i*2:]))
		}
		return vals, nil
	case 4, 9:
		vals := make([]uint32, count)
		for i := range vals {
			vals[i] = r.byteOrder.Uint32(raw[i*4:])
		}
		return vals, nil
	default:
		// RATIONAL, FLOAT, DOUBLE, ASCII: present but not consumable as u32.
		return nil, nil
	}
}

// GetTagU32 reports the first value of an integral tag.
func (r *Reader) GetTagU32(tag uint16) (uint32, bool) {
	ent, ok := r.tags[tag]
	if !ok || len(ent.vals) == 0 {
		return 0, false
	}
	return ent.vals[0], true
}

func (r *Reader) tagValues(tag uint16) []uint32 {
	return r.tags[tag].vals
}

// Dimensions reports ImageWidth and ImageLength.
func (r *Reader) Dimensions() (uint32, uint32, error) {
	w, okW := r.GetTagU32(tagImageWidth)
	h, okH := r.GetTagU32(tagImageLength)
	if !okW || !okH {
		return 0, 0, errors.New("missing image dimensions")
	}
	return w, h, nil
}

// ColorType derives the pixel layout from PhotometricInterpretation,
// SamplesPerPixel and BitsPerSample.
func (r *Reader) ColorType() (ColorType, error) {
	photometric := r.tagDefault(tagPhotometricInterpretation, 1)
	spp := r.tagDefault(tagSamplesPerPixel, 1)
	bits := r.tagDefault(tagBitsPerSample, 1)

	switch {
	case photometric <= 1 && spp == 1:
		return ColorType{Model: ColorGray, Bits: bits}, nil
	case photometric <= 1 && spp == 2:
		return ColorType{Model: ColorGrayAlpha, Bits: bits}, nil
	case photometric == 2 && spp == 3:
		return ColorType{Model: ColorRGB, Bits: bits}, nil
	case photometric == 2 && spp == 4:
		return ColorType{Model: ColorRGBA, Bits: bits}, nil
	case photometric == 5 && spp == 4:
		return ColorType{Model: ColorCMYK, Bits: bits}, nil
	default:
		return ColorType{Model: ColorOther, Bits: bits}, nil
	}
}

func (r *Reader) tagDefault(tag uint16, def uint32) uint32 {
	if v, ok := r.GetTagU32(tag); ok {
		return v
	}
	return def
}

// ReadImage assembles and decompresses all strips, undoes the horizontal
// predictor, and reinterprets the bytes into the typed sample union.
func (r *Reader) ReadImage() (Samples, error) {
	if _, tiled := r.tags[tagTileWidth]; tiled {
		return Samples{}, errors.New("tiled images not supported")
	}
	if _, tiled := r.tags[tagTileLength]; tiled {
		return Samples{}, errors.New("tiled images not supported")
	}
	if planar := r.tagDefault(tagPlanarConfiguration, 1); planar != 1 {
		return Samples{}, fmt.Errorf("planar configuration %d not supported", planar)
	}

	width, height, err := r.Dimensions()
	if err != nil {
		return Samples{}, err
	}
	spp := r.tagDefault(tagSamplesPerPixel, 1)
	bits := r.tagDefault(tagBitsPerSample, 1)
	for _, b := range r.tagValues(tagBitsPerSample) {
		if b != bits {
			return Samples{}, errors.New("mixed per-channel bit depths not supported")
		}
	}
	switch bits {
	case 8, 16, 32, 64:
	default:
		return Samples{}, fmt.Errorf("bit depth %d not supported", bits)
	}
	format := r.tagDefault(tagSampleFormat, 1)

	raw, err := r.readStrips(width, height, spp, bits)
	if err != nil {
		return Samples{}, err
	}

	if predictor := r.tagDefault(tagPredictor, 1); predictor != 1 {
		if predictor != 2 {
			return Samples{}, fmt.Errorf("predictor %d not supported", predictor)
		}
		if format == 3 {
			return Samples{}, errors.New("horizontal predictor with floating samples not supported")
		}
		undoHorizontalPredictor(raw, r.byteOrder, int(width), int(spp), int(bits))
	}

	return r.assembleSamples(raw, format, bits)
}

// readStrips concatenates the decompressed pixel data of every strip.
func (r *Reader) readStrips(width, height, spp, bits uint32) ([]byte, error) {
	offsets := r.tagValues(tagStripOffsets)
	counts := r.tagValues(tagStripByteCounts)
	if len(offsets) == 0 || len(counts) != len(offsets) {
		return nil, errors.New("missing or inconsistent strip layout")
	}
	rowsPerStrip := r.tagDefault(tagRowsPerStrip, height)
	if rowsPerStrip == 0 {
		rowsPerStrip = height
	}
	compression := r.tagDefault(tagCompression, compressionNone)

	rowBytes := int64(width) * int64(spp) * int64(bits/8)
	out := make([]byte, 0, rowBytes*int64(height))

	for i, off := range offsets {
		if int64(off)+int64(counts[i]) > int64(len(r.data)) {
			return nil, errors.New("strip out of bounds")
		}
		strip := r.data[off : int64(off)+int64(counts[i])]

		rows := int64(rowsPerStrip)
		if remaining := int64(height) - int64(i)*int64(rowsPerStrip); remaining < rows {
			rows = remaining
		}
		if rows <= 0 {
			return nil, errors.New("more strips than image rows")
		}
		expected := rows * rowBytes

		decoded, err := decompressStrip(compression, strip, expected)
		if err != nil {
			return nil, fmt.Errorf("strip %d: %w", i, err)
		}
		if int64(len(decoded)) < expected {
			return nil, fmt.Errorf("strip %d: short data: got %d bytes, want %d", i, len(decoded), expected)
		}
		out = append(out, decoded[:expected]...)
	}
	return out, nil
}

func decompressStrip(compression uint32, strip []byte, expected int64) ([]byte, error) {
	switch compression {
	case compressionNone:
		return strip, nil
	case compressionLZW:
		rd := lzw.NewReader(bytes.NewReader(strip), lzw.MSB, 8)
		defer rd.Close()
		return io.ReadAll(io.LimitReader(rd, expected))
	case compressionDeflate, compressionDeflateOld:
		rd, err := zlib.NewReader(bytes.NewReader(strip))
		if err != nil {
			return nil, err
		}
		defer rd.Close()
		return io.ReadAll(io.LimitReader(rd, expected))
	default:
		return nil, fmt.Errorf("compression %d not supported", compression)
	}
}

// undoHorizontalPredictor reverses per-row horizontal differencing in place.
// Accumulation wraps in the unsigned domain, which matches two's-complement
// signed samples as well.
func undoHorizontalPredictor(raw []byte, order binary.ByteOrder, width, spp, bits int) {
	bpp := bits / 8
	rowBytes := width * spp * bpp
	for row := 0; row+rowBytes <= len(raw); row += rowBytes {
		line := raw[row : row+rowBytes]
		switch bits {
		case 8:
			for i := spp; i < len(line); i++ {
				line[i] += line[i-spp]
			}
		case 16:
			for i := spp * 2; i < len(line); i += 2 {
				v := order.Uint16(line[i:]) + order.Uint16(line[i-spp*2:])
				order.PutUint16(line[i:], v)
			}
		case 32:
			for i := spp * 4; i < len(line); i += 4 {
				v := order.Uint32(line[i:]) + order.Uint32(line[i-spp*4:])
				order.PutUint32(line[i:], v)
			}
		case 64:
			for i := spp * 8; i < len(line); i += 8 {
				v := order.Uint64(line[i:]) + order.Uint64(line[i-spp*8:])
				order.PutUint64(line[i:], v)
			}
		}
	}
}

// assembleSamples reinterprets the assembled bytes by SampleFormat and bit
// depth into the tagged union, honoring the file byte order.
func (r *Reader) assembleSamples(raw []byte, format, bits uint32) (Samples, error) {
	switch format {
	case 1, 2: // unsigned, signed
	case 3: // IEEE float
		if bits == 8 {
			return Samples{}, errors.New("8-bit floating samples are not valid")
		}
	default:
		return Samples{}, fmt.Errorf("sample format %d not supported", format)
	}

	switch bits {
	case 8:
		if format == 2 {
			vals := make([]int8, len(raw))
			for i, b := range raw {
				vals[i] = int8(b)
			}
			return Samples{Kind: KindI8, I8: vals}, nil
		}
		return Samples{Kind: KindU8, U8: append([]uint8(nil), raw...)}, nil
	case 16:
		vals := make([]uint16, len(raw)/2)
		for i := range vals {
			vals[i] = r.byteOrder.Uint16(raw[i*2:])
		}
		switch format {
		case 2:
			signed := make([]int16, len(vals))
			for i, v := range vals {
				signed[i] = int16(v)
			}
			return Samples{Kind: KindI16, I16: signed}, nil
		case 3:
			return Samples{Kind: KindF16, F16: vals}, nil
		}
		return Samples{Kind: KindU16, U16: vals}, nil
	case 32:
		vals := make([]uint32, len(raw)/4)
		for i := range vals {
			vals[i] = r.byteOrder.Uint32(raw[i*4:])
		}
		switch format {
		case 2:
			signed := make([]int32, len(vals))
			for i, v := range vals {
				signed[i] = int32(v)
			}
			return Samples{Kind: KindI32, I32: signed}, nil
		case 3:
			floats := make([]float32, len(vals))
			for i, v := range vals {
				floats[i] = math.Float32frombits(v)
			}
			return Samples{Kind: KindF32, F32: floats}, nil
		}
		return Samples{Kind: KindU32, U32: vals}, nil
	case 64:
		vals := make([]uint64, len(raw)/8)
		for i := range vals {
			vals[i] = r.byteOrder.Uint64(raw[i*8:])
		}
		switch format {
		case 2:
			signed := make([]int64, len(vals))
			for i, v := range vals {
				signed[i] = int64(v)
			}
			return Samples{Kind: KindI64, I64: signed}, nil
		case 3:
			floats := make([]float64, len(vals))
			for i, v := range vals {
				floats[i] = math.Float64frombits(v)
			}
			return Samples{Kind: KindF64, F64: floats}, nil
		}
		return Samples{Kind: KindU64, U64: vals}, nil
	default:
		return Samples{}, fmt.Errorf("bit depth %d not supported", bits)
	}
}
