// Copyright 2025 The Zipng Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0> or the MIT license
// <LICENSE-MIT or https://opensource.org/licenses/MIT>, at your
// option. This file may not be copied, modified, or distributed
// except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package png

import (
	"testing"

	"github.com/zipng/zipng/lib/pix"
)

// The block-count tables must agree with a brute-force walk of the 8x8
// pass pattern for every small geometry, including the awkward
// width-greater-than-height shapes.
func TestPassDimensionsMatchPattern(t *testing.T) {
	for height := 1; height <= 17; height++ {
		for width := 1; width <= 17; width++ {
			dims := passDimensions(width, height)
			for p := 0; p < numAdam7Passes; p++ {
				rowSet := map[int]bool{}
				colSet := map[int]bool{}
				cells := 0
				for y := 0; y < height; y++ {
					for x := 0; x < width; x++ {
						if int(adam7BlockPasses[y&7][x&7]) == p {
							rowSet[y] = true
							colSet[x] = true
							cells++
						}
					}
				}
				w, h := dims[p][0], dims[p][1]
				if w*h != cells {
					t.Fatalf("%dx%d pass %d: table says %dx%d=%d samples, pattern has %d",
						width, height, p+1, w, h, w*h, cells)
				}
				if cells > 0 && (h != len(rowSet) || w != len(colSet)) {
					t.Fatalf("%dx%d pass %d: table says %dx%d, pattern has %dx%d",
						width, height, p+1, w, h, len(colSet), len(rowSet))
				}
			}
		}
	}
}

func numberedImage(width, height int) *pix.Image {
	img := pix.New(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			n := y*width + x
			img.Set(x, y, pix.RGBA{R: uint8(n), G: uint8(n >> 8), B: uint8(x), A: 255})
		}
	}
	return img
}

func TestExtractWeaveIdentity(t *testing.T) {
	for _, size := range [][2]int{{1, 1}, {1, 9}, {9, 1}, {8, 8}, {12, 10}, {17, 5}, {3, 16}} {
		width, height := size[0], size[1]
		img := numberedImage(width, height)
		passes := extractPasses(img)
		back := weavePasses(passes, width, height)
		for i := range img.Pix {
			if back.Pix[i] != img.Pix[i] {
				t.Fatalf("%dx%d: pixel %d differs", width, height, i)
			}
		}
	}
}

// Pass sample counts must partition the image exactly.
func TestPassesPartitionImage(t *testing.T) {
	for _, size := range [][2]int{{1, 1}, {7, 3}, {12, 10}, {16, 16}, {17, 17}} {
		width, height := size[0], size[1]
		total := 0
		for _, d := range passDimensions(width, height) {
			total += d[0] * d[1]
		}
		if total != width*height {
			t.Fatalf("%dx%d: passes cover %d samples, want %d", width, height, total, width*height)
		}
	}
}

func TestExtractPassOrderIsRowMajor(t *testing.T) {
	// For an 8x8 image, pass 1 holds only (0,0) and pass 7 holds the odd
	// rows in order.
	img := numberedImage(8, 8)
	passes := extractPasses(img)

	if passes[0].Width != 1 || passes[0].Height != 1 || passes[0].At(0, 0) != img.At(0, 0) {
		t.Fatal("pass 1 of an 8x8 image must be the single top-left pixel")
	}

	p7 := passes[6]
	if p7.Width != 8 || p7.Height != 4 {
		t.Fatalf("pass 7: got %dx%d, want 8x4", p7.Width, p7.Height)
	}
	for row := 0; row < 4; row++ {
		for x := 0; x < 8; x++ {
			if p7.At(x, row) != img.At(x, 2*row+1) {
				t.Fatalf("pass 7 (%d,%d) mismatch", x, row)
			}
		}
	}
}
