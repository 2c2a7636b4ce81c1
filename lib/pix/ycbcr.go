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

package pix

import "math"

// YCbCr is a luma/chroma triple under the ITU-R BT.601 matrix with the
// JPEG chroma offset of 128.
type YCbCr struct {
	Y, Cb, Cr uint8
}

// The forward matrix, column per input channel, and its exact inverse.
// Constants are fixed to six decimal places so that conversion rounds
// identically on every platform.
var (
	rgbToYCbCr = [3][3]float64{
		{0.299000, 0.587000, 0.114000},
		{-0.168935, -0.331665, 0.500590},
		{0.499813, -0.418531, -0.081282},
	}
	ycbcrToRGB = [3][3]float64{
		{1.000000, 0.000000, 1.402524},
		{1.000000, -0.343729, -0.714401},
		{1.000000, 1.769905, 0.000000},
	}
)

func clampRound(v float64) uint8 {
	r := math.Round(v)
	if r < 0 {
		return 0
	}
	if r > 255 {
		return 255
	}
	return uint8(r)
}

// ToYCbCr converts the pixel's color channels; alpha does not participate.
func ToYCbCr(p RGBA) YCbCr {
	r, g, b := float64(p.R), float64(p.G), float64(p.B)
	return YCbCr{
		Y:  clampRound(rgbToYCbCr[0][0]*r + rgbToYCbCr[0][1]*g + rgbToYCbCr[0][2]*b),
		Cb: clampRound(rgbToYCbCr[1][0]*r + rgbToYCbCr[1][1]*g + rgbToYCbCr[1][2]*b + 128),
		Cr: clampRound(rgbToYCbCr[2][0]*r + rgbToYCbCr[2][1]*g + rgbToYCbCr[2][2]*b + 128),
	}
}

// ToRGBA converts back, producing a fully opaque pixel. For a neutral
// chroma pair (Cb=Cr=128) the result is exactly R=G=B=Y, which is what
// greyscale decoding relies on.
func (c YCbCr) ToRGBA() RGBA {
	y := float64(c.Y)
	cb := float64(c.Cb) - 128
	cr := float64(c.Cr) - 128
	return RGBA{
		R: clampRound(ycbcrToRGB[0][0]*y + ycbcrToRGB[0][1]*cb + ycbcrToRGB[0][2]*cr),
		G: clampRound(ycbcrToRGB[1][0]*y + ycbcrToRGB[1][1]*cb + ycbcrToRGB[1][2]*cr),
		B: clampRound(ycbcrToRGB[2][0]*y + ycbcrToRGB[2][1]*cb + ycbcrToRGB[2][2]*cr),
		A: 0xFF,
	}
}

// Luma returns the BT.601 luma of p.
func Luma(p RGBA) uint8 {
	return ToYCbCr(p).Y
}
