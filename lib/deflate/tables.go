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

package deflate

import "sort"

const (
	maxCodeBits   = 15
	maxCLCodeBits = 7

	numLLSymbols   = 286
	numDistSymbols = 30
	numCLSymbols   = 19

	endOfBlockSymbol = 256

	minMatchLength = 3
	maxMatchLength = 258
	maxDistance    = 32768
	windowSize     = 32768

	maxStoredBlockSize = 65535
)

// clPermutation is the order in which CL-alphabet code lengths are
// transmitted, RFC 1951 section 3.2.7.
var clPermutation = [numCLSymbols]uint8{
	16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15,
}

// These tables are defined in RFC 1951 section 3.2.5. Length codes are
// biased by 257: lengthBases[i] is the base length of symbol 257+i.
var (
	lengthBases = [29]uint16{
		3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 19, 23, 27, 31,
		35, 43, 51, 59, 67, 83, 99, 115, 131, 163, 195, 227, 258,
	}
	lengthExtraBits = [29]uint8{
		0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2,
		3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 0,
	}
	distanceBases = [30]uint16{
		1, 2, 3, 4, 5, 7, 9, 13, 17, 25, 33, 49, 65, 97, 129, 193,
		257, 385, 513, 769, 1025, 1537, 2049, 3073, 4097, 6145, 8193,
		12289, 16385, 24577,
	}
	distanceExtraBits = [30]uint8{
		0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6,
		7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
	}
)

// lengthToCodeIndex[l-minMatchLength] is i such that length l is encoded
// by symbol 257+i.
var lengthToCodeIndex = makeLengthToCodeIndex()

func makeLengthToCodeIndex() [maxMatchLength - minMatchLength + 1]uint8 {
	var t [maxMatchLength - minMatchLength + 1]uint8
	for i, base := range lengthBases {
		hi := int(base) + (1 << lengthExtraBits[i]) - 1
		if hi > maxMatchLength {
			hi = maxMatchLength
		}
		for l := int(base); l <= hi; l++ {
			t[l-minMatchLength] = uint8(i)
		}
	}
	// Length 258 has its own zero-extra-bit code, not the top of code 284's
	// extra-bit range.
	t[maxMatchLength-minMatchLength] = 28
	return t
}

// distanceToCodeIndex returns the distance symbol for d in 1..=32768.
func distanceToCodeIndex(d int) int {
	return sort.Search(len(distanceBases), func(i int) bool {
		return int(distanceBases[i]) > d
	}) - 1
}

// fixedLLLengths returns the fixed-Huffman literal/length code lengths of
// RFC 1951 section 3.2.6. The table covers symbols 0..=287; 286 and 287
// participate in code construction but never appear in a valid stream.
func fixedLLLengths() []uint8 {
	lengths := make([]uint8, 288)
	i := 0
	for ; i < 144; i++ {
		lengths[i] = 8
	}
	for ; i < 256; i++ {
		lengths[i] = 9
	}
	for ; i < 280; i++ {
		lengths[i] = 7
	}
	for ; i < 288; i++ {
		lengths[i] = 8
	}
	return lengths
}

// fixedDistanceLengths returns the fixed distance code lengths: 5 bits for
// all 32 symbols (30 and 31 never appear in a valid stream).
func fixedDistanceLengths() []uint8 {
	lengths := make([]uint8, 32)
	for i := range lengths {
		lengths[i] = 5
	}
	return lengths
}
