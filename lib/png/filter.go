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

import "github.com/zipng/zipng/lib/deflate"

// The five adaptive filter types, RFC 2083 section 6.
type filterType uint8

const (
	filterNone    = filterType(0)
	filterSub     = filterType(1)
	filterUp      = filterType(2)
	filterAverage = filterType(3)
	filterPaeth   = filterType(4)
)

// paeth picks whichever of a (left), b (up), c (up-left) is closest to
// the linear predictor p = a+b-c, breaking ties a, then b, then c.
func paeth(a, b, c uint8) uint8 {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// applyFilter writes the filtered form of cur into dst. prev is the
// unfiltered previous scanline of the same pass, or nil on the first row.
// bpp is the left-neighbour byte offset (filterBPP).
func applyFilter(ft filterType, dst, cur, prev []byte, bpp int) {
	for i := range cur {
		var a, b, c uint8
		if i >= bpp {
			a = cur[i-bpp]
		}
		if prev != nil {
			b = prev[i]
			if i >= bpp {
				c = prev[i-bpp]
			}
		}
		x := cur[i]
		switch ft {
		case filterNone:
			dst[i] = x
		case filterSub:
			dst[i] = x - a
		case filterUp:
			dst[i] = x - b
		case filterAverage:
			dst[i] = x - uint8((int(a)+int(b))/2)
		case filterPaeth:
			dst[i] = x - paeth(a, b, c)
		}
	}
}

// unfilterRow reverses the filter in place. prev is the already
// unfiltered previous scanline, or nil.
func unfilterRow(ft filterType, row, prev []byte, bpp int) error {
	if ft > filterPaeth {
		return errBadFilterType
	}
	for i := range row {
		var a, b, c uint8
		if i >= bpp {
			a = row[i-bpp]
		}
		if prev != nil {
			b = prev[i]
			if i >= bpp {
				c = prev[i-bpp]
			}
		}
		switch ft {
		case filterSub:
			row[i] += a
		case filterUp:
			row[i] += b
		case filterAverage:
			row[i] += uint8((int(a) + int(b)) / 2)
		case filterPaeth:
			row[i] += paeth(a, b, c)
		}
	}
	return nil
}

// chooseFilter picks the filter for one scanline. LevelNone always takes
// None and LevelFast always Paeth; LevelBest filters the row all five
// ways and keeps whichever estimates smallest under a cheap DEFLATE cost
// model.
func chooseFilter(cur, prev []byte, bpp int, level Level) (filterType, []byte) {
	dst := make([]byte, len(cur))
	switch level {
	case LevelNone:
		applyFilter(filterNone, dst, cur, prev, bpp)
		return filterNone, dst
	case LevelFast:
		applyFilter(filterPaeth, dst, cur, prev, bpp)
		return filterPaeth, dst
	}

	best := filterNone
	var bestBytes []byte
	bestCost := int(^uint(0) >> 1)
	for ft := filterNone; ft <= filterPaeth; ft++ {
		applyFilter(ft, dst, cur, prev, bpp)
		cost := deflate.EstimateCostBits(dst)
		if cost < bestCost {
			best, bestCost = ft, cost
			bestBytes = append(bestBytes[:0], dst...)
		}
	}
	return best, bestBytes
}

// filterScanlines filters one pass's scanlines independently of any other
// pass, prefixing each row with its filter type byte.
func filterScanlines(rows [][]byte, bpp int, level Level) [][]byte {
	out := make([][]byte, len(rows))
	var prev []byte
	for i, cur := range rows {
		ft, filtered := chooseFilter(cur, prev, bpp, level)
		row := make([]byte, 0, len(filtered)+1)
		row = append(row, uint8(ft))
		row = append(row, filtered...)
		out[i] = row
		prev = cur
	}
	return out
}

// unfilterScanlines reverses filterScanlines: rows carry a leading filter
// byte which is stripped from the result.
func unfilterScanlines(rows [][]byte, bpp int) ([][]byte, error) {
	out := make([][]byte, len(rows))
	var prev []byte
	for i, row := range rows {
		if len(row) < 1 {
			return nil, errChunkTooShort
		}
		ft := filterType(row[0])
		data := row[1:]
		if err := unfilterRow(ft, data, prev, bpp); err != nil {
			return nil, err
		}
		out[i] = data
		prev = data
	}
	return out, nil
}
