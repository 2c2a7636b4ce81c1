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

import (
	"sort"

	"github.com/zipng/zipng/lib/bitstream"
)

// buildCodeLengths computes length-limited Huffman code lengths for the
// given symbol frequencies using package-merge. freqs is indexed by
// symbol; a zero frequency yields a zero length. Every returned nonzero
// length is at most maxLen and the lengths satisfy the Kraft inequality.
//
// Each symbol starts as a coin of denomination 2^-maxLen whose numismatic
// value is its frequency. maxLen rounds of pairing adjacent coins in the
// sorted list form packages of doubling denomination; a symbol's code
// length is the number of final-round packages that contain it.
func buildCodeLengths(freqs []uint32, maxLen uint32) ([]uint8, error) {
	lengths := make([]uint8, len(freqs))

	type pmItem struct {
		weight uint64
		syms   []uint16
	}

	originals := make([]pmItem, 0, len(freqs))
	for sym, f := range freqs {
		if f != 0 {
			originals = append(originals, pmItem{
				weight: uint64(f),
				syms:   []uint16{uint16(sym)},
			})
		}
	}

	switch {
	case len(originals) == 0:
		return lengths, nil
	case len(originals) == 1:
		// A single-symbol alphabet still needs one bit per occurrence.
		lengths[originals[0].syms[0]] = 1
		return lengths, nil
	case uint32(len(originals)) > 1<<maxLen:
		return nil, errTooManySymbols
	}

	sort.SliceStable(originals, func(i, j int) bool {
		return originals[i].weight < originals[j].weight
	})

	var packages []pmItem
	for round := uint32(0); round < maxLen; round++ {
		current := make([]pmItem, 0, len(originals)+len(packages))
		current = append(current, originals...)
		current = append(current, packages...)
		sort.SliceStable(current, func(i, j int) bool {
			return current[i].weight < current[j].weight
		})

		packages = packages[:0]
		for i := 0; i+1 < len(current); i += 2 {
			a, b := current[i], current[i+1]
			merged := make([]uint16, 0, len(a.syms)+len(b.syms))
			merged = append(merged, a.syms...)
			merged = append(merged, b.syms...)
			packages = append(packages, pmItem{weight: a.weight + b.weight, syms: merged})
		}
	}

	for _, p := range packages {
		for _, sym := range p.syms {
			lengths[sym]++
		}
	}
	return lengths, nil
}

// canonicalCodes assigns the canonical DEFLATE bit patterns for the given
// code lengths (RFC 1951 section 3.2.2): symbols sorted by (length,
// symbol), the first code all zeros, each subsequent code the previous
// plus one, left-shifted when the length increases. codes[sym] holds the
// pattern in its low lengths[sym] bits, most significant bit first when
// emitted with bitstream.Writer.PushCode.
//
// This is the single canonical-assignment routine in the package; the
// decoder's tree construction below derives from the same counts, so the
// two sides cannot drift apart.
func canonicalCodes(lengths []uint8) []uint32 {
	var blCount [maxCodeBits + 1]uint32
	for _, l := range lengths {
		blCount[l]++
	}
	blCount[0] = 0

	var nextCode [maxCodeBits + 1]uint32
	code := uint32(0)
	for bits := 1; bits <= maxCodeBits; bits++ {
		code = (code + blCount[bits-1]) << 1
		nextCode[bits] = code
	}

	codes := make([]uint32, len(lengths))
	for sym, l := range lengths {
		if l != 0 {
			codes[sym] = nextCode[l]
			nextCode[l]++
		}
	}
	return codes
}

// decodeTree is the decoder-side view of a canonical Huffman code:
// counts[i] is the number of codes of length i and symbols lists the
// symbols sorted by (length, symbol).
type decodeTree struct {
	counts     [maxCodeBits + 1]uint32
	symbols    []int32
	numSymbols int
}

// build populates the tree from code lengths, rejecting over-subscribed
// sets. An under-subscribed set is rejected too, except the degenerate
// single code of length 1 that DEFLATE explicitly allows. A tree with no
// symbols at all is permitted; decodeSym on it always fails.
func (t *decodeTree) build(lengths []uint8) error {
	for i := range t.counts {
		t.counts[i] = 0
	}
	t.numSymbols = 0
	for _, l := range lengths {
		t.counts[l]++
		if l != 0 {
			t.numSymbols++
		}
	}
	if t.numSymbols == 0 {
		t.symbols = t.symbols[:0]
		return nil
	}

	remaining := uint32(1)
	for i := 1; i <= maxCodeBits; i++ {
		remaining *= 2
		if remaining < t.counts[i] {
			return errInvalidBadHuffmanTree
		}
		remaining -= t.counts[i]
	}
	if remaining != 0 && !(t.numSymbols == 1 && t.counts[1] == 1) {
		return errInvalidBadHuffmanTree
	}

	var offsets [maxCodeBits + 1]uint32
	for i := 1; i < maxCodeBits; i++ {
		offsets[i+1] = offsets[i] + t.counts[i]
	}

	if cap(t.symbols) < t.numSymbols {
		t.symbols = make([]int32, t.numSymbols)
	}
	t.symbols = t.symbols[:t.numSymbols]
	for sym, l := range lengths {
		if l != 0 {
			t.symbols[offsets[l]] = int32(sym)
			offsets[l]++
		}
	}
	return nil
}

// decodeSym consumes one codeword from r and returns its symbol.
func (t *decodeTree) decodeSym(r *bitstream.Reader) (int32, error) {
	code := uint32(0)
	first := uint32(0)
	symIndex := uint32(0)

	for i := 1; i <= maxCodeBits; i++ {
		bit, err := r.ReadBit()
		if err != nil {
			return 0, errInvalidNotEnoughData
		}
		code |= bit

		count := t.counts[i]
		if code < count+first {
			return t.symbols[symIndex+code-first], nil
		}

		symIndex += count
		first += count
		first <<= 1
		code <<= 1
	}
	return 0, errInvalidBadSymbol
}
