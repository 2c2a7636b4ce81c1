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

// Package pix holds the pixel model shared by the codecs: an RGBA value
// type, a rectangular pixel grid, and the BT.601 luma/chroma conversion.
package pix

import "sort"

// RGBA is one pixel: four 8-bit channels, non-premultiplied alpha.
type RGBA struct {
	R, G, B, A uint8
}

// Opaque reports whether the pixel is fully opaque.
func (p RGBA) Opaque() bool {
	return p.A == 0xFF
}

// Grey reports whether the pixel's color channels are all equal.
func (p RGBA) Grey() bool {
	return p.R == p.G && p.G == p.B
}

// Image is a height-by-width grid of pixels in row-major order.
type Image struct {
	Width  int
	Height int
	Pix    []RGBA // len = Width*Height
}

// New returns an all-zero (transparent black) image. Width and height
// must be positive.
func New(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]RGBA, width*height),
	}
}

// At returns the pixel at column x, row y.
func (m *Image) At(x, y int) RGBA {
	return m.Pix[y*m.Width+x]
}

// Set assigns the pixel at column x, row y.
func (m *Image) Set(x, y int, p RGBA) {
	m.Pix[y*m.Width+x] = p
}

// Row returns row y as a slice aliasing the image's pixels.
func (m *Image) Row(y int) []RGBA {
	return m.Pix[y*m.Width : (y+1)*m.Width]
}

// UniqueColors returns the distinct pixel values of m, sorted by
// (R, G, B, A) so that callers iterate deterministically.
func (m *Image) UniqueColors() []RGBA {
	seen := make(map[RGBA]struct{}, 256)
	for _, p := range m.Pix {
		seen[p] = struct{}{}
	}
	colors := make([]RGBA, 0, len(seen))
	for p := range seen {
		colors = append(colors, p)
	}
	sort.Slice(colors, func(i, j int) bool {
		return colorKey(colors[i]) < colorKey(colors[j])
	})
	return colors
}

func colorKey(p RGBA) uint32 {
	return uint32(p.R)<<24 | uint32(p.G)<<16 | uint32(p.B)<<8 | uint32(p.A)
}
