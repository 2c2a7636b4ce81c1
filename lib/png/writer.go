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

package png

import (
	"io"

	"github.com/pkg/errors"

	"github.com/zipng/zipng/lib/pix"
	"github.com/zipng/zipng/lib/zlibstream"
)

// EncoderOptions configure Encode. The zero value asks for the best
// compression level and derives the color type and bit depth from the
// image itself.
type EncoderOptions struct {
	// Level is the compression effort; the zero value is LevelBest.
	Level Level

	// ColorType fixes the output color type. ColorTypeAuto (the zero
	// value) scans the image: greyscale when every pixel has equal color
	// channels (plus alpha when any pixel is translucent), indexed when at
	// most 256 unique opaque colors occur, truecolor (plus alpha)
	// otherwise.
	ColorType ColorType

	// BitDepth fixes the bit depth. Zero selects the smallest depth that
	// represents the image losslessly under the chosen color type.
	BitDepth int

	// Interlace selects the pixel transmission order.
	Interlace Interlace
}

// Encode writes img to w as a complete PNG file. Encoding is infallible
// for a well-formed image and configuration: every returned error is
// either a configuration error (reported before any byte is written) or
// comes from w.
func Encode(w io.Writer, img *pix.Image, opts EncoderOptions) error {
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return errNilImage
	}
	if len(img.Pix) < img.Width*img.Height {
		return errShortPix
	}

	header, palette, err := resolveConfig(img, opts)
	if err != nil {
		return err
	}

	raw, err := serializeImage(img, header, palette, opts.Level)
	if err != nil {
		return err
	}
	compressed := zlibstream.Compress(raw, opts.Level.deflateLevel())

	if _, err := w.Write(pngSignature); err != nil {
		return errors.Wrap(err, "writing signature")
	}
	if err := writeChunk(w, "IHDR", encodeIHDR(header)); err != nil {
		return err
	}
	if palette != nil {
		plte := make([]byte, 0, 3*len(palette.Colors))
		for _, c := range palette.Colors {
			plte = append(plte, c.R, c.G, c.B)
		}
		if err := writeChunk(w, "PLTE", plte); err != nil {
			return err
		}
	}
	for first := true; first || len(compressed) > 0; first = false {
		n := len(compressed)
		if n > maxIDATPayload {
			n = maxIDATPayload
		}
		if err := writeChunk(w, "IDAT", compressed[:n]); err != nil {
			return err
		}
		compressed = compressed[n:]
		if len(compressed) == 0 {
			break
		}
	}
	return writeChunk(w, "IEND", nil)
}

// resolveConfig completes a partial configuration (spec'd auto-selection)
// and validates an explicit one, building the palette for indexed output.
func resolveConfig(img *pix.Image, opts EncoderOptions) (Header, *Palette, error) {
	header := Header{
		Width:     img.Width,
		Height:    img.Height,
		ColorType: opts.ColorType,
		BitDepth:  opts.BitDepth,
		Interlace: opts.Interlace,
	}
	if header.Interlace > InterlaceAdam7 {
		return Header{}, nil, errBadInterlace
	}

	var unique []pix.RGBA
	needUnique := header.ColorType == ColorTypeAuto || header.BitDepth == 0 ||
		header.ColorType == ColorTypeIndexed
	if needUnique {
		unique = img.UniqueColors()
	}

	if header.ColorType == ColorTypeAuto {
		header.ColorType = deriveColorType(unique)
	}
	if header.BitDepth == 0 {
		header.BitDepth = deriveBitDepth(header.ColorType, unique)
	}
	if !header.ColorType.validBitDepth(header.BitDepth) {
		return Header{}, nil, errBadBitDepth
	}

	var palette *Palette
	if header.ColorType == ColorTypeIndexed {
		palette = BuildPalette(unique, header.BitDepth)
		if len(palette.Colors) > 1<<header.BitDepth {
			return Header{}, nil, errPaletteTooLarge
		}
	}
	return header, palette, nil
}

func deriveColorType(unique []pix.RGBA) ColorType {
	allGrey, allOpaque := true, true
	for _, c := range unique {
		if !c.Grey() {
			allGrey = false
		}
		if !c.Opaque() {
			allOpaque = false
		}
	}
	switch {
	case allGrey && allOpaque:
		return ColorTypeGreyscale
	case allGrey:
		return ColorTypeGreyscaleAlpha
	case len(unique) <= 256 && allOpaque:
		return ColorTypeIndexed
	case allOpaque:
		return ColorTypeTruecolor
	}
	return ColorTypeTruecolorAlpha
}

// deriveBitDepth picks the smallest depth that represents the color set
// exactly: for indexed output the smallest palette that holds every
// unique color, for greyscale the smallest depth whose bit-replication
// scaling reproduces every grey level.
func deriveBitDepth(c ColorType, unique []pix.RGBA) int {
	switch c {
	case ColorTypeIndexed:
		for _, depth := range []int{1, 2, 4} {
			if len(unique) <= 1<<depth {
				return depth
			}
		}
		return 8
	case ColorTypeGreyscale:
		for _, depth := range []int{1, 2, 4} {
			ok := true
			for _, col := range unique {
				y := pix.Luma(col)
				if replicateBits(y>>(8-depth), depth) != y {
					ok = false
					break
				}
			}
			if ok {
				return depth
			}
		}
		return 8
	}
	return 8
}

// serializeImage turns the image into the concatenated filtered scanline
// bytes that feed the compressor: one pass for a plain image, seven
// independently filtered passes under Adam7.
func serializeImage(img *pix.Image, header Header, palette *Palette, level Level) ([]byte, error) {
	bpp := filterBPP(header.ColorType, header.BitDepth)

	var passes []*pix.Image
	if header.Interlace == InterlaceAdam7 {
		for _, p := range extractPasses(img) {
			if p != nil {
				passes = append(passes, p)
			}
		}
	} else {
		passes = []*pix.Image{img}
	}

	var out []byte
	for _, pass := range passes {
		rows := make([][]byte, pass.Height)
		for y := 0; y < pass.Height; y++ {
			row, err := serializeRow(pass.Row(y), header.ColorType, header.BitDepth, palette)
			if err != nil {
				return nil, err
			}
			rows[y] = row
		}
		for _, row := range filterScanlines(rows, bpp, level) {
			out = append(out, row...)
		}
	}
	return out, nil
}
