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

// A token is one element of the LZ77 symbol stream: a literal byte, a
// (distance, length) backreference, or the end-of-block marker.
type token struct {
	kind     tokenKind
	literal  uint8
	length   uint16 // 3..=258
	distance uint16 // 1..=32768, stored as distance-1
}

type tokenKind uint8

const (
	tokenLiteral = tokenKind(0)
	tokenMatch   = tokenKind(1)
	tokenEOB     = tokenKind(2)
)

func literalToken(b uint8) token {
	return token{kind: tokenLiteral, literal: b}
}

func matchToken(distance, length int) token {
	return token{kind: tokenMatch, length: uint16(length), distance: uint16(distance - 1)}
}

func (t token) dist() int {
	return int(t.distance) + 1
}

// maxFastChainLength caps how many chain candidates the Fast level visits.
const maxFastChainLength = 10

type chainEntry struct {
	pos int32
	// run is the number of consecutive bytes equal to the first byte at
	// pos, capped at maxMatchLength. Runs of identical bytes (common in
	// filtered scanlines) are compared once via this count instead of
	// byte-by-byte per candidate.
	run int32
}

// hashChains multi-maps a 3-byte key to the positions where that key
// occurred, most recent last. Entries that fall out of the 32 KiB window
// are evicted from the front on lookup.
type hashChains struct {
	m map[uint32][]chainEntry
}

func newHashChains() *hashChains {
	return &hashChains{m: make(map[uint32][]chainEntry)}
}

func lz77Key(data []byte, pos int) uint32 {
	return uint32(data[pos])<<16 | uint32(data[pos+1])<<8 | uint32(data[pos+2])
}

func (h *hashChains) insert(key uint32, pos int, run int32, level Level) {
	chain := append(h.m[key], chainEntry{pos: int32(pos), run: run})
	if level != LevelBest && len(chain) > maxFastChainLength {
		chain = chain[1:]
	}
	h.m[key] = chain
}

// lookup returns the in-window chain for the key at cursor, evicting stale
// entries first.
func (h *hashChains) lookup(key uint32, cursor int) []chainEntry {
	chain, ok := h.m[key]
	if !ok {
		return nil
	}
	i := 0
	for i < len(chain) && int(chain[i].pos) < cursor-windowSize {
		i++
	}
	if i > 0 {
		chain = chain[i:]
		if len(chain) == 0 {
			delete(h.m, key)
			return nil
		}
		h.m[key] = chain
	}
	return chain
}

// byteRuns[i] is the number of consecutive bytes equal to data[i] starting
// at i, capped at maxMatchLength.
func byteRuns(data []byte) []int32 {
	runs := make([]int32, len(data))
	for i := len(data) - 1; i >= 0; i-- {
		if i+1 < len(data) && data[i] == data[i+1] {
			runs[i] = runs[i+1] + 1
			if runs[i] > maxMatchLength {
				runs[i] = maxMatchLength
			}
		} else {
			runs[i] = 1
		}
	}
	return runs
}

// matchLength compares data[pos:] against data[cursor:], returning how
// many bytes agree, at most maxMatchLength and never past the end of
// data. The cached first-byte run counts let runs of the shared first
// byte be skipped instead of re-compared.
func matchLength(data []byte, pos, cursor int, posRun, cursorRun int32) int {
	limit := len(data) - cursor
	if limit > maxMatchLength {
		limit = maxMatchLength
	}
	if data[pos] != data[cursor] {
		return 0
	}

	n := int(posRun)
	if int(cursorRun) < n {
		n = int(cursorRun)
	}
	if n > limit {
		n = limit
	}
	for n < limit && data[pos+n] == data[cursor+n] {
		n++
	}
	return n
}

// bestMatch scans the chain for the best candidate under the given level's
// policy and returns (distance, length); length 0 means no usable match.
//
// Fast takes the first match of at least minMatchLength starting from the
// most recent candidate. Best takes the longest match, preferring shorter
// distances on ties, and handicaps distances beyond 2048 by one length
// unit so that matches with cheaper distance codes win near-ties.
func bestMatch(data []byte, cursor int, chain []chainEntry, cursorRun int32, level Level) (int, int) {
	bestDist, bestLen, bestScore := 0, 0, 0

	maxAchievable := len(data) - cursor
	if maxAchievable > maxMatchLength {
		maxAchievable = maxMatchLength
	}

	for i := len(chain) - 1; i >= 0; i-- {
		e := chain[i]
		length := matchLength(data, int(e.pos), cursor, e.run, cursorRun)
		if length < minMatchLength {
			continue
		}
		dist := cursor - int(e.pos)

		if level != LevelBest {
			return dist, length
		}

		score := length
		if dist > 2048 {
			score--
		}
		if score > bestScore {
			bestDist, bestLen, bestScore = dist, length, score
			// Chain entries are visited nearest first, so a full-length
			// match at most 2048 away cannot be improved on.
			if bestLen == maxAchievable && dist <= 2048 {
				break
			}
		}
	}
	return bestDist, bestLen
}

// encodeLZ77 produces the LZ77 token stream for data. The caller appends
// the end-of-block marker. LevelNone never calls this.
func encodeLZ77(data []byte, level Level) []token {
	tokens := make([]token, 0, len(data)/2+1)
	runs := byteRuns(data)
	chains := newHashChains()

	cursor := 0
	for cursor < len(data) {
		if cursor+minMatchLength > len(data) {
			tokens = append(tokens, literalToken(data[cursor]))
			cursor++
			continue
		}

		key := lz77Key(data, cursor)
		chain := chains.lookup(key, cursor)
		dist, length := bestMatch(data, cursor, chain, runs[cursor], level)

		if length >= minMatchLength {
			tokens = append(tokens, matchToken(dist, length))
			for end := cursor + length; cursor < end; cursor++ {
				if cursor+minMatchLength <= len(data) {
					chains.insert(lz77Key(data, cursor), cursor, runs[cursor], level)
				}
			}
		} else {
			tokens = append(tokens, literalToken(data[cursor]))
			chains.insert(key, cursor, runs[cursor], level)
			cursor++
		}
	}
	return tokens
}
