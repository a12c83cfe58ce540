package tiffvis

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"
)

type tagSpec struct {
	tag uint16
	typ uint16 // 3 = SHORT, 4 = LONG
	val uint32
}

// buildTIFF assembles a minimal single-strip TIFF: header, pixel data at
// offset 8, then one IFD of single-valued inline entries.
func buildTIFF(t *testing.T, order binary.ByteOrder, tags []tagSpec, pixels []byte) []byte {
	t.Helper()

	if len(pixels)%2 == 1 {
		pixels = append(pixels, 0)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].tag < tags[j].tag })

	ifdOff := 8 + len(pixels)
	buf := make([]byte, ifdOff+2+len(tags)*12+4)

	if order == binary.ByteOrder(binary.LittleEndian) {
		copy(buf, "II")
	} else {
		copy(buf, "MM")
	}
	order.PutUint16(buf[2:], 42)
	order.PutUint32(buf[4:], uint32(ifdOff))
	copy(buf[8:], pixels)

	order.PutUint16(buf[ifdOff:], uint16(len(tags)))
	pos := ifdOff + 2
	for _, tg := range tags {
		order.PutUint16(buf[pos:], tg.tag)
		order.PutUint16(buf[pos+2:], tg.typ)
		order.PutUint32(buf[pos+4:], 1)
		switch tg.typ {
		case 3:
			order.PutUint16(buf[pos+8:], uint16(tg.val))
		case 4:
			order.PutUint32(buf[pos+8:], tg.val)
		}
		pos += 12
	}
	return buf
}

// single-pixel fixture tags, compression none, strip at offset 8.
func onePixelTags(bits, sampleFormat, byteCount uint32) []tagSpec {
	return []tagSpec{
		{tagImageWidth, 4, 1},
		{tagImageLength, 4, 1},
		{tagBitsPerSample, 3, bits},
		{tagCompression, 3, compressionNone},
		{tagPhotometricInterpretation, 3, 1},
		{tagStripOffsets, 4, 8},
		{tagSamplesPerPixel, 3, 1},
		{tagRowsPerStrip, 4, 1},
		{tagStripByteCounts, 4, byteCount},
		{tagSampleFormat, 3, sampleFormat},
	}
}

func TestDecodeEncodedGray8(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 2))
	copy(img.Pix, []uint8{10, 20, 30, 40})

	var buf bytes.Buffer
	require.NoError(t, tiff.Encode(&buf, img, nil))

	res, err := Decode(buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, uint32(2), res.Width)
	assert.Equal(t, uint32(2), res.Height)
	assert.Equal(t, uint32(1), res.Channels)
	assert.Equal(t, uint32(8), res.BitsPerSample)
	assert.Equal(t, FormatUint, res.SampleFormat)
	assert.Equal(t, []byte{10, 20, 30, 40}, res.Data)
	assert.Equal(t, 10.0, res.MinValue)
	assert.Equal(t, 40.0, res.MaxValue)
}

func TestDecodeEncodedGray16(t *testing.T) {
	img := image.NewGray16(image.Rect(0, 0, 2, 1))
	img.SetGray16(0, 0, color.Gray16{Y: 0x0102})
	img.SetGray16(1, 0, color.Gray16{Y: 0xFFEE})

	var buf bytes.Buffer
	require.NoError(t, tiff.Encode(&buf, img, nil))

	res, err := Decode(buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, uint32(1), res.Channels)
	assert.Equal(t, uint32(16), res.BitsPerSample)
	assert.Equal(t, FormatUint, res.SampleFormat)
	assert.Equal(t, []byte{0x02, 0x01, 0xEE, 0xFF}, res.Data)
	assert.Equal(t, 258.0, res.MinValue)
	assert.Equal(t, 65518.0, res.MaxValue)
}

func TestDecodeDeflate(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 2))
	copy(img.Pix, []uint8{5, 9, 200, 3, 0, 255, 128, 64})

	var buf bytes.Buffer
	require.NoError(t, tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate}))

	res, err := Decode(buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, []byte{5, 9, 200, 3, 0, 255, 128, 64}, res.Data)
	assert.Equal(t, uint32(compressionDeflate), res.Compression)
	assert.Equal(t, uint32(1), res.Predictor)
	assert.Equal(t, 0.0, res.MinValue)
	assert.Equal(t, 255.0, res.MaxValue)
}

func TestDecodeHorizontalPredictor(t *testing.T) {
	t.Run("8-bit", func(t *testing.T) {
		// Rows [5 9 200 3] and [0 255 128 64], horizontally differenced.
		pixels := []byte{5, 4, 191, 59, 0, 255, 129, 192}
		tags := []tagSpec{
			{tagImageWidth, 4, 4},
			{tagImageLength, 4, 2},
			{tagBitsPerSample, 3, 8},
			{tagCompression, 3, compressionNone},
			{tagPhotometricInterpretation, 3, 1},
			{tagStripOffsets, 4, 8},
			{tagSamplesPerPixel, 3, 1},
			{tagRowsPerStrip, 4, 2},
			{tagStripByteCounts, 4, 8},
			{tagPredictor, 3, 2},
			{tagSampleFormat, 3, 1},
		}
		data := buildTIFF(t, binary.LittleEndian, tags, pixels)

		res, err := Decode(data)
		require.NoError(t, err)

		assert.Equal(t, []byte{5, 9, 200, 3, 0, 255, 128, 64}, res.Data)
		assert.Equal(t, uint32(2), res.Predictor)
		assert.Equal(t, 0.0, res.MinValue)
		assert.Equal(t, 255.0, res.MaxValue)
	})

	t.Run("16-bit", func(t *testing.T) {
		// Row [1000 1010 900], differenced to [1000 10 -110].
		diffs := []int16{1000, 10, -110}
		pixels := make([]byte, 6)
		for i, d := range diffs {
			binary.LittleEndian.PutUint16(pixels[i*2:], uint16(d))
		}
		tags := []tagSpec{
			{tagImageWidth, 4, 3},
			{tagImageLength, 4, 1},
			{tagBitsPerSample, 3, 16},
			{tagCompression, 3, compressionNone},
			{tagPhotometricInterpretation, 3, 1},
			{tagStripOffsets, 4, 8},
			{tagSamplesPerPixel, 3, 1},
			{tagRowsPerStrip, 4, 1},
			{tagStripByteCounts, 4, 6},
			{tagPredictor, 3, 2},
			{tagSampleFormat, 3, 1},
		}
		data := buildTIFF(t, binary.LittleEndian, tags, pixels)

		res, err := Decode(data)
		require.NoError(t, err)

		want := make([]byte, 6)
		for i, v := range []uint16{1000, 1010, 900} {
			binary.LittleEndian.PutUint16(want[i*2:], v)
		}
		assert.Equal(t, want, res.Data)
		assert.Equal(t, 900.0, res.MinValue)
		assert.Equal(t, 1010.0, res.MaxValue)
	})
}

func TestDecodeEncodedRGBA(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	copy(img.Pix, []uint8{10, 20, 30, 255, 40, 50, 60, 255})

	var buf bytes.Buffer
	require.NoError(t, tiff.Encode(&buf, img, nil))

	res, err := Decode(buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, uint32(2), res.Width)
	assert.Equal(t, uint32(1), res.Height)
	assert.Equal(t, uint32(4), res.Channels)
	assert.Equal(t, FormatUint, res.SampleFormat)
	assert.Equal(t, []byte{10, 20, 30, 255, 40, 50, 60, 255}, res.Data)
}

func TestDecodeFloat32TIFF(t *testing.T) {
	pixels := make([]byte, 4)
	binary.LittleEndian.PutUint32(pixels, math.Float32bits(3.5))
	data := buildTIFF(t, binary.LittleEndian, onePixelTags(32, 3, 4), pixels)

	res, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, FormatFloat, res.SampleFormat)
	assert.Equal(t, uint32(32), res.BitsPerSample)
	assert.Equal(t, pixels, res.Data)
	assert.Equal(t, 3.5, res.MinValue)
	assert.Equal(t, 3.5, res.MaxValue)
}

func TestDecodeHalfFloatTIFF(t *testing.T) {
	pixels := []byte{0x00, 0x3E} // 1.5 in binary16, little endian
	data := buildTIFF(t, binary.LittleEndian, onePixelTags(16, 3, 2), pixels)

	res, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, FormatFloat, res.SampleFormat)
	assert.Equal(t, uint32(16), res.BitsPerSample)
	require.Len(t, res.Data, 4) // widened to binary32 in the canonical buffer
	assert.Equal(t, float32(1.5), math.Float32frombits(binary.LittleEndian.Uint32(res.Data)))
	assert.Equal(t, 1.5, res.MinValue)
	assert.Equal(t, 1.5, res.MaxValue)
}

func TestDecodeBigEndianSigned16(t *testing.T) {
	neg := int16(-5)
	pixels := make([]byte, 2)
	binary.BigEndian.PutUint16(pixels, uint16(neg))
	data := buildTIFF(t, binary.BigEndian, onePixelTags(16, 2, 2), pixels)

	res, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, FormatInt, res.SampleFormat)
	assert.Equal(t, []byte{0xFB, 0xFF}, res.Data) // canonical form is little endian
	assert.Equal(t, -5.0, res.MinValue)
	assert.Equal(t, -5.0, res.MaxValue)
}

func TestDecodeFloat64TIFF(t *testing.T) {
	v := 3.14159265358979
	pixels := make([]byte, 8)
	binary.LittleEndian.PutUint64(pixels, math.Float64bits(v))
	data := buildTIFF(t, binary.LittleEndian, onePixelTags(64, 3, 8), pixels)

	res, err := Decode(data)
	require.NoError(t, err)

	require.Len(t, res.Data, 4)
	assert.Equal(t, float32(v), math.Float32frombits(binary.LittleEndian.Uint32(res.Data)))
	assert.Equal(t, v, res.MinValue)
}

func TestNewReaderRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", []byte("II")},
		{"bad magic", []byte("II\x2B\x00\x08\x00\x00\x00")},
		{"ifd out of bounds", []byte("II\x2A\x00\xFF\xFF\x00\x00")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestDecodeRejectsTiled(t *testing.T) {
	tags := append(onePixelTags(8, 1, 1), tagSpec{tagTileWidth, 4, 16}, tagSpec{tagTileLength, 4, 16})
	data := buildTIFF(t, binary.LittleEndian, tags, []byte{7})

	_, err := Decode(data)
	assert.ErrorIs(t, err, ErrImageRead)
}

func TestReaderGetTagU32(t *testing.T) {
	data := buildTIFF(t, binary.LittleEndian, onePixelTags(8, 1, 1), []byte{7})
	r, err := NewReader(data)
	require.NoError(t, err)

	v, ok := r.GetTagU32(tagBitsPerSample)
	assert.True(t, ok)
	assert.Equal(t, uint32(8), v)

	_, ok = r.GetTagU32(tagPredictor)
	assert.False(t, ok)
}
