package tiffvis

import (
	"errors"
	"fmt"
	"time"
)

// TIFF tag ids consulted by the orchestrator.
const (
	tagCompression               = 259
	tagPhotometricInterpretation = 262
	tagPredictor                 = 317
	tagPlanarConfiguration       = 284
)

// Sentinel errors identifying the decode step that failed. Each wraps the
// collaborator's diagnostic; no partial Result is ever returned.
var (
	ErrDecoderConstruction = errors.New("tiffvis: failed to create decoder")
	ErrDimensions          = errors.New("tiffvis: failed to get dimensions")
	ErrColorType           = errors.New("tiffvis: failed to get color type")
	ErrImageRead           = errors.New("tiffvis: failed to decode image")
)

// Decoder is the boundary to the TIFF decoding collaborator. Any compliant
// TIFF library can sit behind it; the bundled Reader is one implementation.
type Decoder interface {
	// Dimensions reports the pixel width and height.
	Dimensions() (width, height uint32, err error)

	// ColorType reports the pixel layout and per-sample bit depth.
	ColorType() (ColorType, error)

	// GetTagU32 looks up a TIFF tag as an unsigned 32-bit value. Absence is
	// not an error; it reports ok=false.
	GetTagU32(tag uint16) (v uint32, ok bool)

	// ReadImage decodes the pixel data into a typed sample sequence.
	ReadImage() (Samples, error)
}

// Decode normalizes a TIFF file into a Result using the bundled Reader as
// the decoding collaborator.
func Decode(data []byte) (*Result, error) {
	dec, err := NewReader(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecoderConstruction, err)
	}
	return DecodeWith(dec)
}

// DecodeWith runs the normalization pipeline against an already constructed
// decoder: dimensions, color type, defaulted metadata tags, pixel read, then
// one pass of canonical encoding and statistics. Any step failure aborts the
// whole decode.
func DecodeWith(dec Decoder) (*Result, error) {
	start := time.Now()

	width, height, err := dec.Dimensions()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDimensions, err)
	}

	ct, err := dec.ColorType()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrColorType, err)
	}

	// Each tag lookup is independently fallible and independently defaulted;
	// a missing tag never blocks the others.
	compression := tagOrDefault(dec, tagCompression, 1)
	predictor := tagOrDefault(dec, tagPredictor, 1)
	photometric := tagOrDefault(dec, tagPhotometricInterpretation, 1)
	planar := tagOrDefault(dec, tagPlanarConfiguration, 1)

	readStart := time.Now()
	samples, err := dec.ReadImage()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageRead, err)
	}

	data, format := encodeSamples(samples)
	minVal, maxVal := sampleStats(samples)

	res := &Result{
		Width:                     width,
		Height:                    height,
		Channels:                  ct.Channels(),
		BitsPerSample:             ct.BitsPerSample(),
		SampleFormat:              format,
		Compression:               compression,
		Predictor:                 predictor,
		PhotometricInterpretation: photometric,
		PlanarConfiguration:       planar,
		Data:                      data,
		MinValue:                  minVal,
		MaxValue:                  maxVal,
	}

	logTiming(time.Since(start), time.Since(readStart), res)

	return res, nil
}

func tagOrDefault(dec Decoder, tag uint16, def uint32) uint32 {
	if v, ok := dec.GetTagU32(tag); ok {
		return v
	}
	return def
}
