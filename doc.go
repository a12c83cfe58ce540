// Package tiffvis normalizes decoded TIFF rasters into a canonical
// little-endian byte buffer with exact min/max statistics, for transfer to
// visualization consumers.
//
// TIFF container parsing is a collaborator concern behind the Decoder
// interface; a baseline strip-oriented reader is bundled. Whatever the source
// sample encoding (8/16/32/64-bit integers, half/single/double floats), the
// canonical buffer uses little-endian layout with 64-bit and half-precision
// floats narrowed/widened to 32-bit, while statistics keep the original
// precision and skip non-finite values.
package tiffvis
