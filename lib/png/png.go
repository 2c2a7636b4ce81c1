// Copyright 2025 The Zipng Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0> or the MIT license
// <LICENSE-MIT or https://opensource.org/licenses/MIT>, at your
// option. This file may not be copied, modified, or distributed
// except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

// ----------------

// Package png encodes and decodes Portable Network Graphics files (RFC
// 2083): the critical chunk set (IHDR, PLTE, IDAT, IEND) with CRC-32
// framing, the five adaptive scanline filters, all five color types
// across their valid bit depths, optional Adam7 interlacing, and a
// median-cut palette builder for indexed-color output. The compressed
// image data flows through this module's own zlib and DEFLATE
// implementations, not the standard library's.
//
// Unknown ancillary chunks are skipped (their CRCs are still checked);
// unknown critical chunks are fatal. Decoding either returns the complete
// pixel grid or an error, never partial output.
package png

import (
	"errors"

	"github.com/zipng/zipng/lib/deflate"
)

// pngSignature is the 8-byte file signature.
var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// maxIDATPayload is the largest IDAT data length the encoder emits per
// chunk.
const maxIDATPayload = 1<<31 - 1

var (
	errBadSignature         = errors.New("png: invalid input: signature missing")
	errBadCRC               = errors.New("png: invalid input: chunk CRC mismatch")
	errChunkTooShort        = errors.New("png: invalid input: chunk too short")
	errUnknownCriticalChunk = errors.New("png: invalid input: unknown critical chunk")
	errIHDRNotFirst         = errors.New("png: invalid input: first chunk is not IHDR")
	errDuplicateIHDR        = errors.New("png: invalid input: duplicate IHDR chunk")
	errDuplicatePLTE        = errors.New("png: invalid input: duplicate PLTE chunk")
	errMisplacedPLTE        = errors.New("png: invalid input: PLTE after first IDAT")
	errMisplacedIDAT        = errors.New("png: invalid input: IDAT chunks not consecutive")
	errBadPLTELength        = errors.New("png: invalid input: bad PLTE length")
	errMissingPLTE          = errors.New("png: invalid input: indexed color without PLTE")
	errMissingIDAT          = errors.New("png: invalid input: no IDAT chunk")
	errMissingIEND          = errors.New("png: invalid input: missing IEND chunk")

	errBadDimensions       = errors.New("png: invalid input: non-positive dimensions")
	errBadColorType        = errors.New("png: invalid input: unrecognized color type")
	errBadBitDepth         = errors.New("png: invalid bit depth for color type")
	errBadCompression      = errors.New("png: invalid input: unrecognized compression method")
	errBadFilterMethod     = errors.New("png: invalid input: unrecognized filter method")
	errBadInterlace        = errors.New("png: invalid input: unrecognized interlace method")
	errBadFilterType       = errors.New("png: invalid input: unrecognized filter type")
	errBadDataLength       = errors.New("png: invalid input: decompressed data has wrong length")
	errPaletteIndexRange   = errors.New("png: invalid input: palette index out of range")
	errPaletteTooLarge     = errors.New("png: palette does not fit the bit depth")
	errNilImage            = errors.New("png: nil or empty image")
	errShortPix            = errors.New("png: pixel buffer shorter than width*height")
	errMissingPaletteEntry = errors.New("png: color missing from palette")
)

// Level selects the encoder's compression effort. The zero value is
// LevelBest.
type Level int

const (
	LevelBest = Level(0)
	LevelNone = Level(1)
	LevelFast = Level(2)
)

func (l Level) deflateLevel() deflate.Level {
	switch l {
	case LevelNone:
		return deflate.LevelNone
	case LevelFast:
		return deflate.LevelFast
	}
	return deflate.LevelBest
}

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelFast:
		return "fast"
	}
	return "best"
}

// ColorType is the pixel interpretation stored in IHDR. The zero value
// asks the encoder to derive one from the image (see EncoderOptions).
type ColorType uint8

const (
	ColorTypeAuto = ColorType(iota)
	ColorTypeGreyscale
	ColorTypeTruecolor
	ColorTypeIndexed
	ColorTypeGreyscaleAlpha
	ColorTypeTruecolorAlpha
)

// wireByte returns the IHDR encoding of the color type.
func (c ColorType) wireByte() uint8 {
	switch c {
	case ColorTypeGreyscale:
		return 0
	case ColorTypeTruecolor:
		return 2
	case ColorTypeIndexed:
		return 3
	case ColorTypeGreyscaleAlpha:
		return 4
	case ColorTypeTruecolorAlpha:
		return 6
	}
	return 0xFF
}

func colorTypeFromWire(b uint8) (ColorType, error) {
	switch b {
	case 0:
		return ColorTypeGreyscale, nil
	case 2:
		return ColorTypeTruecolor, nil
	case 3:
		return ColorTypeIndexed, nil
	case 4:
		return ColorTypeGreyscaleAlpha, nil
	case 6:
		return ColorTypeTruecolorAlpha, nil
	}
	return 0, errBadColorType
}

// samplesPerPixel returns how many channel samples one pixel carries.
func (c ColorType) samplesPerPixel() int {
	switch c {
	case ColorTypeTruecolor:
		return 3
	case ColorTypeGreyscaleAlpha:
		return 2
	case ColorTypeTruecolorAlpha:
		return 4
	}
	return 1
}

// validBitDepth reports whether the RFC 2083 table permits the
// combination.
func (c ColorType) validBitDepth(depth int) bool {
	switch c {
	case ColorTypeGreyscale:
		return depth == 1 || depth == 2 || depth == 4 || depth == 8 || depth == 16
	case ColorTypeIndexed:
		return depth == 1 || depth == 2 || depth == 4 || depth == 8
	case ColorTypeTruecolor, ColorTypeGreyscaleAlpha, ColorTypeTruecolorAlpha:
		return depth == 8 || depth == 16
	}
	return false
}

func (c ColorType) String() string {
	switch c {
	case ColorTypeAuto:
		return "auto"
	case ColorTypeGreyscale:
		return "greyscale"
	case ColorTypeTruecolor:
		return "truecolor"
	case ColorTypeIndexed:
		return "indexed"
	case ColorTypeGreyscaleAlpha:
		return "greyscale+alpha"
	case ColorTypeTruecolorAlpha:
		return "truecolor+alpha"
	}
	return "invalid"
}

// Interlace is the pixel transmission order stored in IHDR.
type Interlace uint8

const (
	InterlaceNone  = Interlace(0)
	InterlaceAdam7 = Interlace(1)
)

func (i Interlace) String() string {
	if i == InterlaceAdam7 {
		return "adam7"
	}
	return "none"
}

// bitsPerPixel returns the packed size of one pixel in bits.
func bitsPerPixel(c ColorType, depth int) int {
	return c.samplesPerPixel() * depth
}

// bytesPerRow returns the packed scanline size, excluding the filter
// byte.
func bytesPerRow(width int, c ColorType, depth int) int {
	return (width*bitsPerPixel(c, depth) + 7) / 8
}

// filterBPP returns the left-neighbour byte offset used by the scanline
// filters: whole bytes per pixel, floored at one for sub-byte depths.
func filterBPP(c ColorType, depth int) int {
	bpp := bitsPerPixel(c, depth) / 8
	if bpp < 1 {
		bpp = 1
	}
	return bpp
}
