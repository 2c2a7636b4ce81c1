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

// A clCode is one element of the run-length-compressed description of a
// code-length sequence (RFC 1951 section 3.2.7). Symbols 0..=15 state a
// length literally. Symbol 16 repeats the previous length repeat+3 times
// (repeat in 0..=3), 17 emits repeat+3 zeros (repeat in 0..=7) and 18
// emits repeat+11 zeros (repeat in 0..=127).
type clCode struct {
	sym    uint8
	repeat uint8
}

// clExtraBits[sym-16] is the number of extra bits carried by the three
// repeat symbols.
var clExtraBits = [3]uint8{2, 3, 7}

// clEncode run-length compresses a code-length sequence, choosing runs
// greedily from the front. A 16 is always preceded by the literal length
// it repeats.
func clEncode(lengths []uint8) []clCode {
	var out []clCode
	for i := 0; i < len(lengths); {
		l := lengths[i]
		run := 1
		for i+run < len(lengths) && lengths[i+run] == l {
			run++
		}
		i += run

		if l == 0 {
			for run >= 11 {
				n := run
				if n > 138 {
					n = 138
				}
				out = append(out, clCode{sym: 18, repeat: uint8(n - 11)})
				run -= n
			}
			if run >= 3 {
				out = append(out, clCode{sym: 17, repeat: uint8(run - 3)})
				run = 0
			}
		} else if run >= 4 {
			out = append(out, clCode{sym: l})
			run--
			for run >= 3 {
				n := run
				if n > 6 {
					n = 6
				}
				out = append(out, clCode{sym: 16, repeat: uint8(n - 3)})
				run -= n
			}
		}
		for ; run > 0; run-- {
			out = append(out, clCode{sym: l})
		}
	}
	return out
}

// clEncodedBits returns the cost in bits of serializing codes against the
// CL-alphabet code lengths clLengths.
func clEncodedBits(codes []clCode, clLengths []uint8) int {
	bits := 0
	for _, c := range codes {
		bits += int(clLengths[c.sym])
		if c.sym >= 16 {
			bits += int(clExtraBits[c.sym-16])
		}
	}
	return bits
}
