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

import "github.com/zipng/zipng/lib/pix"

// bitPacker packs sub-byte samples MSB-first, the PNG bit order for
// packed scanlines.
type bitPacker struct {
	out   []byte
	cur   uint8
	nBits uint8
}

func (p *bitPacker) push(v uint8, width uint8) {
	for i := width; i > 0; i-- {
		p.cur = p.cur<<1 | (v>>(i-1))&1
		p.nBits++
		if p.nBits == 8 {
			p.out = append(p.out, p.cur)
			p.cur, p.nBits = 0, 0
		}
	}
}

func (p *bitPacker) bytes() []byte {
	if p.nBits != 0 {
		p.out = append(p.out, p.cur<<(8-p.nBits))
		p.cur, p.nBits = 0, 0
	}
	return p.out
}

// bitUnpacker reads sub-byte samples MSB-first.
type bitUnpacker struct {
	in       []byte
	bitIndex int
}

func (u *bitUnpacker) read(width uint8) uint8 {
	var v uint8
	for i := uint8(0); i < width; i++ {
		byteIndex := u.bitIndex >> 3
		shift := 7 - u.bitIndex&7
		v = v<<1 | (u.in[byteIndex]>>shift)&1
		u.bitIndex++
	}
	return v
}

// replicateBits spreads a depth-bit sample across 8 bits, the standard
// PNG scaling for sub-byte samples (0b01 at depth 2 becomes 0b01010101).
func replicateBits(v uint8, depth int) uint8 {
	switch depth {
	case 1:
		return v * 0xFF
	case 2:
		return v * 0x55
	case 4:
		return v * 0x11
	}
	return v
}

// pushSample appends one channel sample at depth 8 or 16. Depth 16
// duplicates the 8-bit value in both bytes, so both bytes of every
// emitted sample equal the source byte.
func pushSample(dst []byte, v uint8, depth int) []byte {
	dst = append(dst, v)
	if depth == 16 {
		dst = append(dst, v)
	}
	return dst
}

// serializeRow packs one pixel row into scanline bytes for the given
// color type and depth. palette is required for ColorTypeIndexed.
func serializeRow(row []pix.RGBA, c ColorType, depth int, palette *Palette) ([]byte, error) {
	if depth < 8 {
		return serializeRowPacked(row, c, depth, palette)
	}

	out := make([]byte, 0, len(row)*c.samplesPerPixel()*depth/8)
	for _, p := range row {
		switch c {
		case ColorTypeGreyscale:
			out = pushSample(out, pix.Luma(p), depth)
		case ColorTypeGreyscaleAlpha:
			out = pushSample(out, pix.Luma(p), depth)
			out = pushSample(out, p.A, depth)
		case ColorTypeTruecolor:
			out = pushSample(out, p.R, depth)
			out = pushSample(out, p.G, depth)
			out = pushSample(out, p.B, depth)
		case ColorTypeTruecolorAlpha:
			out = pushSample(out, p.R, depth)
			out = pushSample(out, p.G, depth)
			out = pushSample(out, p.B, depth)
			out = pushSample(out, p.A, depth)
		case ColorTypeIndexed:
			idx, _, ok := palette.Lookup(p)
			if !ok {
				return nil, errMissingPaletteEntry
			}
			out = append(out, uint8(idx))
		}
	}
	return out, nil
}

// serializeRowPacked handles the sub-byte depths (greyscale and indexed
// only), packing samples MSB-first.
func serializeRowPacked(row []pix.RGBA, c ColorType, depth int, palette *Palette) ([]byte, error) {
	p := bitPacker{out: make([]byte, 0, (len(row)*depth+7)/8)}
	for _, px := range row {
		switch c {
		case ColorTypeGreyscale:
			p.push(pix.Luma(px)>>(8-depth), uint8(depth))
		case ColorTypeIndexed:
			idx, _, ok := palette.Lookup(px)
			if !ok {
				return nil, errMissingPaletteEntry
			}
			p.push(uint8(idx), uint8(depth))
		default:
			return nil, errBadBitDepth
		}
	}
	return p.bytes(), nil
}

// deserializeRow unpacks one scanline into width pixels. For depth 16 the
// high byte of each big-endian sample pair is taken; for sub-byte depths
// greyscale samples are scaled up by bit replication. Greyscale samples
// pass through the neutral-chroma inverse of the luma matrix, which
// reproduces r=g=b exactly.
func deserializeRow(data []byte, width int, c ColorType, depth int, palette []pix.RGBA) ([]pix.RGBA, error) {
	row := make([]pix.RGBA, 0, width)

	if depth < 8 {
		u := bitUnpacker{in: data}
		for x := 0; x < width; x++ {
			v := u.read(uint8(depth))
			switch c {
			case ColorTypeGreyscale:
				y := replicateBits(v, depth)
				row = append(row, pix.YCbCr{Y: y, Cb: 128, Cr: 128}.ToRGBA())
			case ColorTypeIndexed:
				if int(v) >= len(palette) {
					return nil, errPaletteIndexRange
				}
				row = append(row, palette[v])
			default:
				return nil, errBadBitDepth
			}
		}
		return row, nil
	}

	sampleBytes := depth / 8
	pixelBytes := c.samplesPerPixel() * sampleBytes
	sample := func(pixel []byte, i int) uint8 {
		return pixel[i*sampleBytes]
	}

	for x := 0; x < width; x++ {
		pixel := data[x*pixelBytes : (x+1)*pixelBytes]
		switch c {
		case ColorTypeGreyscale:
			row = append(row, pix.YCbCr{Y: sample(pixel, 0), Cb: 128, Cr: 128}.ToRGBA())
		case ColorTypeGreyscaleAlpha:
			p := pix.YCbCr{Y: sample(pixel, 0), Cb: 128, Cr: 128}.ToRGBA()
			p.A = sample(pixel, 1)
			row = append(row, p)
		case ColorTypeTruecolor:
			row = append(row, pix.RGBA{
				R: sample(pixel, 0), G: sample(pixel, 1), B: sample(pixel, 2), A: 0xFF,
			})
		case ColorTypeTruecolorAlpha:
			row = append(row, pix.RGBA{
				R: sample(pixel, 0), G: sample(pixel, 1), B: sample(pixel, 2), A: sample(pixel, 3),
			})
		case ColorTypeIndexed:
			idx := int(pixel[0])
			if idx >= len(palette) {
				return nil, errPaletteIndexRange
			}
			row = append(row, palette[idx])
		}
	}
	return row, nil
}
