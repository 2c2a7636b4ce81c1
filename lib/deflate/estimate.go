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

// EstimateCostBits returns the size in bits that b would occupy as a
// single fixed-Huffman block found with the fast match finder, computed
// from symbol frequencies without serializing anything. The PNG filter
// heuristic uses it to compare candidate scanline filters by how well
// each would compress.
func EstimateCostBits(b []byte) int {
	tokens := encodeLZ77(b, LevelFast)
	var llFreqs [numLLSymbols]uint32
	var distFreqs [numDistSymbols]uint32
	countTokenFreqs(tokens, &llFreqs, &distFreqs)
	llFreqs[endOfBlockSymbol] = 1
	return fixedCostBits(&llFreqs, &distFreqs)
}
