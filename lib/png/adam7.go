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

const numAdam7Passes = 7

// adam7BlockPasses maps (y mod 8, x mod 8) to the zero-based pass the
// pixel belongs to.
var adam7BlockPasses = [8][8]uint8{
	{0, 5, 3, 5, 1, 5, 3, 5},
	{6, 6, 6, 6, 6, 6, 6, 6},
	{4, 5, 4, 5, 4, 5, 4, 5},
	{6, 6, 6, 6, 6, 6, 6, 6},
	{2, 5, 3, 5, 2, 5, 3, 5},
	{6, 6, 6, 6, 6, 6, 6, 6},
	{4, 5, 4, 5, 4, 5, 4, 5},
	{6, 6, 6, 6, 6, 6, 6, 6},
}

// Per-pass sample counts are computed by block arithmetic rather than
// ceiling division: a full 8x8 block contributes fullBlock...[pass]
// rows/columns, and a partial block at the bottom/right edge contributes
// partialBlock...[pass][H mod 8] or [pass][W mod 8] more. The tables are derived from
// adam7BlockPasses and sidestep the off-by-one traps that ceiling
// formulas hit when width exceeds height.
var (
	fullBlockRowsByPass = [numAdam7Passes]int{1, 1, 1, 2, 2, 4, 4}
	fullBlockColsByPass = [numAdam7Passes]int{1, 1, 2, 2, 4, 4, 8}

	partialBlockRowsByPass = [numAdam7Passes][8]int{
		{0, 1, 1, 1, 1, 1, 1, 1},
		{0, 1, 1, 1, 1, 1, 1, 1},
		{0, 0, 0, 0, 0, 1, 1, 1},
		{0, 1, 1, 1, 1, 2, 2, 2},
		{0, 0, 0, 1, 1, 1, 1, 2},
		{0, 1, 1, 2, 2, 3, 3, 4},
		{0, 0, 1, 1, 2, 2, 3, 3},
	}
	partialBlockColsByPass = [numAdam7Passes][8]int{
		{0, 1, 1, 1, 1, 1, 1, 1},
		{0, 0, 0, 0, 0, 1, 1, 1},
		{0, 1, 1, 1, 1, 2, 2, 2},
		{0, 0, 0, 1, 1, 1, 1, 2},
		{0, 1, 1, 2, 2, 3, 3, 4},
		{0, 0, 1, 1, 2, 2, 3, 3},
		{0, 1, 2, 3, 4, 5, 6, 7},
	}
)

// passDimensions returns each reduced image's width and height for a
// width-by-height source.
func passDimensions(width, height int) [numAdam7Passes][2]int {
	var dims [numAdam7Passes][2]int
	for p := 0; p < numAdam7Passes; p++ {
		w := fullBlockColsByPass[p]*(width>>3) + partialBlockColsByPass[p][width&7]
		h := fullBlockRowsByPass[p]*(height>>3) + partialBlockRowsByPass[p][height&7]
		dims[p] = [2]int{w, h}
	}
	return dims
}

// extractPasses splits img into the seven Adam7 reduced images. A pass
// with zero rows or zero columns is returned as nil.
func extractPasses(img *pix.Image) [numAdam7Passes]*pix.Image {
	dims := passDimensions(img.Width, img.Height)

	var passes [numAdam7Passes]*pix.Image
	var cursors [numAdam7Passes]int
	for p := range passes {
		if dims[p][0] > 0 && dims[p][1] > 0 {
			passes[p] = pix.New(dims[p][0], dims[p][1])
		}
	}

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			p := adam7BlockPasses[y&7][x&7]
			passes[p].Pix[cursors[p]] = img.At(x, y)
			cursors[p]++
		}
	}
	return passes
}

// weavePasses reconstructs the full image from its reduced images,
// inverting extractPasses.
func weavePasses(passes [numAdam7Passes]*pix.Image, width, height int) *pix.Image {
	img := pix.New(width, height)
	var cursors [numAdam7Passes]int
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := adam7BlockPasses[y&7][x&7]
			img.Set(x, y, passes[p].Pix[cursors[p]])
			cursors[p]++
		}
	}
	return img
}
