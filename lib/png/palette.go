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
	"sort"

	"github.com/zipng/zipng/lib/pix"
)

// Palette maps every color of the source image to a palette index and
// the representative color stored at that index. When the image has at
// most as many unique colors as the palette can hold, every bucket is a
// singleton and the mapping is lossless.
type Palette struct {
	// Colors are the palette entries in index order, all fully opaque.
	Colors []pix.RGBA

	index map[pix.RGBA]int
}

// Lookup returns the palette index and representative for an original
// image color.
func (p *Palette) Lookup(c pix.RGBA) (int, pix.RGBA, bool) {
	i, ok := p.index[c]
	if !ok {
		return 0, pix.RGBA{}, false
	}
	return i, p.Colors[i], true
}

// BuildPalette quantizes uniqueColors down to at most 2^log2Size entries
// by median cut: each bucket is split at the median of its widest color
// channel, log2Size times, singletons excepted. A bucket's entry is its
// componentwise mean, rounded to nearest, with alpha forced opaque.
//
// uniqueColors must be deduplicated; the caller usually passes
// (*pix.Image).UniqueColors, whose sorted order also makes the palette
// deterministic.
func BuildPalette(uniqueColors []pix.RGBA, log2Size int) *Palette {
	buckets := [][]pix.RGBA{append([]pix.RGBA(nil), uniqueColors...)}

	for i := 0; i < log2Size; i++ {
		next := make([][]pix.RGBA, 0, len(buckets)*2)
		for _, b := range buckets {
			if len(b) <= 1 {
				next = append(next, b)
				continue
			}
			lo, hi := medianCut(b)
			next = append(next, lo, hi)
		}
		buckets = next
	}

	p := &Palette{index: make(map[pix.RGBA]int, len(uniqueColors))}
	for i, b := range buckets {
		p.Colors = append(p.Colors, bucketMean(b))
		for _, c := range b {
			p.index[c] = i
		}
	}
	return p
}

// medianCut sorts the bucket along its widest channel (ties resolved red,
// then green, then blue) and splits it at the median.
func medianCut(bucket []pix.RGBA) ([]pix.RGBA, []pix.RGBA) {
	rRange := channelRange(bucket, func(c pix.RGBA) uint8 { return c.R })
	gRange := channelRange(bucket, func(c pix.RGBA) uint8 { return c.G })
	bRange := channelRange(bucket, func(c pix.RGBA) uint8 { return c.B })

	var key func(c pix.RGBA) uint8
	switch {
	case rRange >= gRange && rRange >= bRange:
		key = func(c pix.RGBA) uint8 { return c.R }
	case gRange >= bRange:
		key = func(c pix.RGBA) uint8 { return c.G }
	default:
		key = func(c pix.RGBA) uint8 { return c.B }
	}
	sort.SliceStable(bucket, func(i, j int) bool {
		return key(bucket[i]) < key(bucket[j])
	})

	mid := len(bucket) / 2
	return bucket[:mid], bucket[mid:]
}

func channelRange(bucket []pix.RGBA, key func(pix.RGBA) uint8) int {
	min, max := 255, 0
	for _, c := range bucket {
		v := int(key(c))
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return max - min
}

func bucketMean(bucket []pix.RGBA) pix.RGBA {
	var rSum, gSum, bSum int
	for _, c := range bucket {
		rSum += int(c.R)
		gSum += int(c.G)
		bSum += int(c.B)
	}
	n := len(bucket)
	roundDiv := func(sum int) uint8 {
		return uint8((2*sum + n) / (2 * n))
	}
	return pix.RGBA{R: roundDiv(rSum), G: roundDiv(gSum), B: roundDiv(bSum), A: 0xFF}
}
