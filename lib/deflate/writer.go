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

import "github.com/zipng/zipng/lib/bitstream"

var (
	fixedLL   = fixedLLLengths()
	fixedDist = fixedDistanceLengths()

	fixedLLCodes   = canonicalCodes(fixedLL)
	fixedDistCodes = canonicalCodes(fixedDist)
)

// Compress encodes src as a raw DEFLATE stream at the given level.
// Encoding never fails: every byte sequence, including the empty one, has
// a valid encoding at every level.
func Compress(src []byte, level Level) []byte {
	w := &bitstream.Writer{}
	switch level {
	case LevelNone:
		writeStoredBlocks(w, src)
	case LevelFast:
		tokens := encodeLZ77(src, LevelFast)
		writeFixedBlock(w, tokens, true)
	default:
		compressBest(w, src)
	}
	return w.Bytes()
}

// writeStoredBlocks emits src as a run of type-0 blocks of at most 65535
// bytes each. An empty src still produces one (empty, final) block.
func writeStoredBlocks(w *bitstream.Writer, src []byte) {
	for first := true; first || len(src) > 0; first = false {
		n := len(src)
		if n > maxStoredBlockSize {
			n = maxStoredBlockSize
		}
		final := n == len(src)
		if final {
			w.PushOne()
		} else {
			w.PushZero()
		}
		w.PushBitsRTL(0, 2)
		w.AlignToByte()
		w.PushU16LE(uint16(n))
		w.PushU16LE(^uint16(n))
		w.PushBytes(src[:n])
		src = src[n:]
		if final {
			break
		}
	}
}

func pushBlockHeader(w *bitstream.Writer, blockType uint32, final bool) {
	if final {
		w.PushOne()
	} else {
		w.PushZero()
	}
	w.PushBitsRTL(blockType, 2)
}

// writeTokens serializes the LZ77 stream plus the end-of-block marker
// against the given code tables. Extra bits follow their Huffman code and
// are emitted LSB-first.
func writeTokens(w *bitstream.Writer, tokens []token, llLengths []uint8, llCodes []uint32, distLengths []uint8, distCodes []uint32) {
	for _, t := range tokens {
		switch t.kind {
		case tokenLiteral:
			w.PushCode(llCodes[t.literal], uint32(llLengths[t.literal]))
		case tokenMatch:
			li := lengthToCodeIndex[t.length-minMatchLength]
			sym := 257 + int(li)
			w.PushCode(llCodes[sym], uint32(llLengths[sym]))
			w.PushBitsRTL(uint32(t.length)-uint32(lengthBases[li]), uint32(lengthExtraBits[li]))

			dist := t.dist()
			di := distanceToCodeIndex(dist)
			w.PushCode(distCodes[di], uint32(distLengths[di]))
			w.PushBitsRTL(uint32(dist)-uint32(distanceBases[di]), uint32(distanceExtraBits[di]))
		}
	}
	w.PushCode(llCodes[endOfBlockSymbol], uint32(llLengths[endOfBlockSymbol]))
}

func writeFixedBlock(w *bitstream.Writer, tokens []token, final bool) {
	pushBlockHeader(w, 1, final)
	writeTokens(w, tokens, fixedLL, fixedLLCodes, fixedDist, fixedDistCodes)
}

// countTokenFreqs adds the literal/length and distance symbol frequencies
// of tokens (excluding the implicit end-of-block) into the accumulators.
func countTokenFreqs(tokens []token, llFreqs *[numLLSymbols]uint32, distFreqs *[numDistSymbols]uint32) {
	for _, t := range tokens {
		switch t.kind {
		case tokenLiteral:
			llFreqs[t.literal]++
		case tokenMatch:
			llFreqs[257+int(lengthToCodeIndex[t.length-minMatchLength])]++
			distFreqs[distanceToCodeIndex(t.dist())]++
		}
	}
}

// fixedCostBits is the exact size in bits of a fixed-Huffman block with
// the given symbol frequencies (which must include the end-of-block).
func fixedCostBits(llFreqs *[numLLSymbols]uint32, distFreqs *[numDistSymbols]uint32) int {
	bits := 3
	for sym, f := range llFreqs {
		if f == 0 {
			continue
		}
		bits += int(f) * int(fixedLL[sym])
		if sym > endOfBlockSymbol {
			bits += int(f) * int(lengthExtraBits[sym-257])
		}
	}
	for sym, f := range distFreqs {
		if f != 0 {
			bits += int(f) * int(fixedDist[sym]+distanceExtraBits[sym])
		}
	}
	return bits
}

// dynamicPlan holds everything needed to emit (or cost) one type-2 block.
type dynamicPlan struct {
	llLengths   []uint8 // numLL entries, trailing zeros stripped
	distLengths []uint8 // numDist entries, at least 1
	clLengths   []uint8 // all 19 CL-alphabet lengths
	clCodesLL   []clCode
	clCodesDist []clCode
	numCL       int // entries transmitted in permutation order, at least 4
	costBits    int
}

// buildDynamicPlan derives the dynamic-Huffman tables for the given
// frequencies (end-of-block included) and the exact encoded size.
func buildDynamicPlan(llFreqs *[numLLSymbols]uint32, distFreqs *[numDistSymbols]uint32) *dynamicPlan {
	// More distinct symbols than 2^15 cannot occur: the alphabets are
	// capped at 286 and 30.
	llAll, _ := buildCodeLengths(llFreqs[:], maxCodeBits)
	distAll, _ := buildCodeLengths(distFreqs[:], maxCodeBits)

	numLL := numLLSymbols
	for numLL > endOfBlockSymbol+1 && llAll[numLL-1] == 0 {
		numLL--
	}
	numDist := numDistSymbols
	for numDist > 1 && distAll[numDist-1] == 0 {
		numDist--
	}

	p := &dynamicPlan{
		llLengths:   llAll[:numLL],
		distLengths: distAll[:numDist],
	}
	p.clCodesLL = clEncode(p.llLengths)
	p.clCodesDist = clEncode(p.distLengths)

	var clFreqs [numCLSymbols]uint32
	for _, c := range p.clCodesLL {
		clFreqs[c.sym]++
	}
	for _, c := range p.clCodesDist {
		clFreqs[c.sym]++
	}
	p.clLengths, _ = buildCodeLengths(clFreqs[:], maxCLCodeBits)

	p.numCL = numCLSymbols
	for p.numCL > 4 && p.clLengths[clPermutation[p.numCL-1]] == 0 {
		p.numCL--
	}

	bits := 3 + 5 + 5 + 4 + 3*p.numCL
	bits += clEncodedBits(p.clCodesLL, p.clLengths)
	bits += clEncodedBits(p.clCodesDist, p.clLengths)
	for sym, f := range llFreqs {
		if f == 0 {
			continue
		}
		bits += int(f) * int(llAll[sym])
		if sym > endOfBlockSymbol {
			bits += int(f) * int(lengthExtraBits[sym-257])
		}
	}
	for sym, f := range distFreqs {
		if f != 0 {
			bits += int(f) * int(distAll[sym]+distanceExtraBits[sym])
		}
	}
	p.costBits = bits
	return p
}

func writeDynamicBlock(w *bitstream.Writer, plan *dynamicPlan, tokens []token, final bool) {
	pushBlockHeader(w, 2, final)
	w.PushBitsRTL(uint32(len(plan.llLengths)-257), 5)
	w.PushBitsRTL(uint32(len(plan.distLengths)-1), 5)
	w.PushBitsRTL(uint32(plan.numCL-4), 4)

	for i := 0; i < plan.numCL; i++ {
		w.PushBitsRTL(uint32(plan.clLengths[clPermutation[i]]), 3)
	}

	clCodes := canonicalCodes(plan.clLengths)
	writeCLCodes := func(codes []clCode) {
		for _, c := range codes {
			w.PushCode(clCodes[c.sym], uint32(plan.clLengths[c.sym]))
			if c.sym >= 16 {
				w.PushBitsRTL(uint32(c.repeat), uint32(clExtraBits[c.sym-16]))
			}
		}
	}
	writeCLCodes(plan.clCodesLL)
	writeCLCodes(plan.clCodesDist)

	llCodes := canonicalCodes(plan.llLengths)
	distCodes := canonicalCodes(plan.distLengths)
	writeTokens(w, tokens, plan.llLengths, llCodes, plan.distLengths, distCodes)
}

// writeBestBlock emits tokens as whichever of a dynamic or fixed block is
// smaller.
func writeBestBlock(w *bitstream.Writer, tokens []token, llFreqs *[numLLSymbols]uint32, distFreqs *[numDistSymbols]uint32, final bool) {
	plan := buildDynamicPlan(llFreqs, distFreqs)
	if plan.costBits < fixedCostBits(llFreqs, distFreqs) {
		writeDynamicBlock(w, plan, tokens, final)
	} else {
		writeFixedBlock(w, tokens, final)
	}
}

// segmentTokens splits the token stream into runs covering roughly
// segBytes source bytes each.
func segmentTokens(tokens []token, segBytes int) [][]token {
	var segments [][]token
	start, covered := 0, 0
	for i, t := range tokens {
		if t.kind == tokenMatch {
			covered += int(t.length)
		} else {
			covered++
		}
		if covered >= segBytes {
			segments = append(segments, tokens[start:i+1])
			start, covered = i+1, 0
		}
	}
	if start < len(tokens) {
		segments = append(segments, tokens[start:])
	}
	return segments
}

// bestCostBits is the size of the cheaper of a dynamic and a fixed block
// for the given frequencies.
func bestCostBits(llFreqs *[numLLSymbols]uint32, distFreqs *[numDistSymbols]uint32) int {
	cost := buildDynamicPlan(llFreqs, distFreqs).costBits
	if f := fixedCostBits(llFreqs, distFreqs); f < cost {
		cost = f
	}
	return cost
}

// compressBest runs the adaptive split strategy: the token stream is cut
// into ~100 segments; each segment is either merged into the open block or
// the open block is closed and a new one begins, whichever the frequency
// cost model says is smaller. Each emitted block is then the cheaper of a
// dynamic and a fixed encoding.
func compressBest(w *bitstream.Writer, src []byte) {
	tokens := encodeLZ77(src, LevelBest)
	segBytes := len(src) / 100
	if segBytes < 1024 {
		segBytes = 1024
	}
	segments := segmentTokens(tokens, segBytes)

	if len(segments) == 0 {
		var llFreqs [numLLSymbols]uint32
		var distFreqs [numDistSymbols]uint32
		llFreqs[endOfBlockSymbol] = 1
		writeBestBlock(w, nil, &llFreqs, &distFreqs, true)
		return
	}

	var openLL [numLLSymbols]uint32
	var openDist [numDistSymbols]uint32
	openStart, openEnd := 0, 0 // token indexes of the open block
	openCost := 0

	flush := func(final bool) {
		writeBestBlock(w, tokens[openStart:openEnd], &openLL, &openDist, final)
	}

	for _, seg := range segments {
		var segLL [numLLSymbols]uint32
		var segDist [numDistSymbols]uint32
		countTokenFreqs(seg, &segLL, &segDist)
		segLL[endOfBlockSymbol] = 1
		segCost := bestCostBits(&segLL, &segDist)

		if openEnd == openStart {
			openLL, openDist = segLL, segDist
			openEnd += len(seg)
			openCost = segCost
			continue
		}

		mergedLL := openLL
		for i, f := range segLL {
			mergedLL[i] += f
		}
		mergedLL[endOfBlockSymbol] = 1
		mergedDist := openDist
		for i, f := range segDist {
			mergedDist[i] += f
		}
		mergedCost := bestCostBits(&mergedLL, &mergedDist)

		if mergedCost <= openCost+segCost {
			openLL, openDist = mergedLL, mergedDist
			openEnd += len(seg)
			openCost = mergedCost
		} else {
			flush(false)
			openStart = openEnd
			openLL, openDist = segLL, segDist
			openEnd += len(seg)
			openCost = segCost
		}
	}
	flush(true)
}
