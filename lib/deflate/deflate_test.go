// Copyright 2025 The Zipng Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0> or the MIT license
// <LICENSE-MIT or https://opensource.org/licenses/MIT>, at your
// option. This file may not be copied, modified, or distributed
// except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package deflate

import (
	"bytes"
	"compress/flate"
	"io"
	"testing"

	kpflate "github.com/klauspost/compress/flate"

	"github.com/zipng/zipng/lib/bitstream"
)

// testInputs is shared by the round-trip and cross-decoder tests. All
// generators are deterministic.
func testInputs() map[string][]byte {
	lcg := func(n int) []byte {
		b := make([]byte, n)
		state := uint32(12345)
		for i := range b {
			state = state*1664525 + 1013904223
			b[i] = uint8(state >> 24)
		}
		return b
	}
	repeatText := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 500)
	allBytes := make([]byte, 256)
	for i := range allBytes {
		allBytes[i] = uint8(i)
	}

	return map[string][]byte{
		"empty":        nil,
		"one byte":     {97},
		"abcde":        []byte("ABCDEABCD ABCDEABCD"),
		"repeat text":  repeatText,
		"run of a":     bytes.Repeat([]byte{97}, 100000),
		"all bytes":    allBytes,
		"pseudorandom": lcg(50000),
		"stored sizes": lcg(70000),
	}
}

func TestRoundTrip(t *testing.T) {
	for name, input := range testInputs() {
		for _, level := range []Level{LevelNone, LevelFast, LevelBest} {
			encoded := Compress(input, level)
			decoded, err := Decompress(encoded)
			if err != nil {
				t.Errorf("%s/%v: %v", name, level, err)
				continue
			}
			if !bytes.Equal(decoded, input) {
				t.Errorf("%s/%v: round trip mismatch (%d bytes in, %d out)",
					name, level, len(input), len(decoded))
			}
		}
	}
}

// The standard library and klauspost/compress must both accept our
// streams and reproduce the input, at every level.
func TestOutputAcceptedByOtherInflaters(t *testing.T) {
	for name, input := range testInputs() {
		for _, level := range []Level{LevelNone, LevelFast, LevelBest} {
			encoded := Compress(input, level)

			got, err := io.ReadAll(flate.NewReader(bytes.NewReader(encoded)))
			if err != nil {
				t.Errorf("%s/%v: stdlib flate: %v", name, level, err)
			} else if !bytes.Equal(got, input) {
				t.Errorf("%s/%v: stdlib flate decoded %d bytes, want %d",
					name, level, len(got), len(input))
			}

			got, err = io.ReadAll(kpflate.NewReader(bytes.NewReader(encoded)))
			if err != nil {
				t.Errorf("%s/%v: klauspost flate: %v", name, level, err)
			} else if !bytes.Equal(got, input) {
				t.Errorf("%s/%v: klauspost flate decoded %d bytes, want %d",
					name, level, len(got), len(input))
			}
		}
	}
}

// Our decoder must accept streams from other encoders, whatever mix of
// block types and Huffman strategies they choose.
func TestDecodeOtherDeflaters(t *testing.T) {
	for name, input := range testInputs() {
		for _, level := range []int{flate.HuffmanOnly, 1, 6, 9} {
			var buf bytes.Buffer
			zw, err := flate.NewWriter(&buf, level)
			if err != nil {
				t.Fatal(err)
			}
			zw.Write(input)
			zw.Close()

			got, err := Decompress(buf.Bytes())
			if err != nil {
				t.Errorf("%s/stdlib level %d: %v", name, level, err)
				continue
			}
			if !bytes.Equal(got, input) {
				t.Errorf("%s/stdlib level %d: decoded %d bytes, want %d",
					name, level, len(got), len(input))
			}
		}

		var buf bytes.Buffer
		kw, err := kpflate.NewWriter(&buf, 9)
		if err != nil {
			t.Fatal(err)
		}
		kw.Write(input)
		kw.Close()
		got, err := Decompress(buf.Bytes())
		if err != nil {
			t.Errorf("%s/klauspost: %v", name, err)
		} else if !bytes.Equal(got, input) {
			t.Errorf("%s/klauspost: decoded %d bytes, want %d", name, len(got), len(input))
		}
	}
}

// A single literal under fixed Huffman is 18 bits: 3 header, 8 code, 7
// end-of-block. That flushes to exactly 3 bytes.
func TestSingleByteFixedBlockSize(t *testing.T) {
	encoded := Compress([]byte{97}, LevelFast)
	if len(encoded) != 3 {
		t.Fatalf("got %d bytes, want 3 (% 02x)", len(encoded), encoded)
	}
	decoded, err := Decompress(encoded)
	if err != nil || !bytes.Equal(decoded, []byte{97}) {
		t.Fatalf("decoded % 02x, err %v", decoded, err)
	}
}

func TestLongRunCompressesTiny(t *testing.T) {
	input := bytes.Repeat([]byte{97}, 100000)
	encoded := Compress(input, LevelBest)
	if len(encoded) >= 300 {
		t.Fatalf("got %d bytes, want < 300", len(encoded))
	}
	decoded, err := Decompress(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(decoded, input) {
		t.Fatal("round trip mismatch")
	}
}

func TestStoredBlockBoundaries(t *testing.T) {
	for _, n := range []int{0, 1, maxStoredBlockSize - 1, maxStoredBlockSize, maxStoredBlockSize + 1, 2*maxStoredBlockSize + 17} {
		input := bytes.Repeat([]byte{0xA7}, n)
		encoded := Compress(input, LevelNone)
		decoded, err := Decompress(encoded)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if !bytes.Equal(decoded, input) {
			t.Fatalf("n=%d: round trip mismatch", n)
		}
	}
}

func TestDecompressBadBlockType(t *testing.T) {
	// BFINAL=1, BTYPE=3.
	if _, err := Decompress([]byte{0x07}); err != errInvalidBadBlockType {
		t.Fatalf("got %v, want errInvalidBadBlockType", err)
	}
}

func TestDecompressBadStoredLength(t *testing.T) {
	// BFINAL=1, BTYPE=0, LEN=1 but NLEN is not ^LEN.
	if _, err := Decompress([]byte{0x01, 0x01, 0x00, 0xAA, 0xAA, 0x61}); err != errInvalidBadStoredLength {
		t.Fatalf("got %v, want errInvalidBadStoredLength", err)
	}
}

func TestDecompressDistanceTooFar(t *testing.T) {
	// A fixed-Huffman block whose first symbol is a (distance 1, length 3)
	// copy: nothing has been decoded yet, so it must fail.
	w := &bitstream.Writer{}
	w.PushOne()            // BFINAL
	w.PushBitsRTL(1, 2)    // BTYPE fixed
	w.PushCode(0b0000001, 7) // length symbol 257 (length 3)
	w.PushCode(0b00000, 5)   // distance symbol 0 (distance 1)
	w.PushCode(0b0000000, 7) // end of block
	if _, err := Decompress(w.Bytes()); err != errInvalidDistanceTooFar {
		t.Fatalf("got %v, want errInvalidDistanceTooFar", err)
	}
}

func TestDecompressTruncated(t *testing.T) {
	encoded := Compress([]byte("truncate me please, somewhere past the header"), LevelBest)
	for _, n := range []int{0, 1, len(encoded) / 2, len(encoded) - 1} {
		if _, err := Decompress(encoded[:n]); err == nil {
			t.Fatalf("truncation to %d bytes: want error", n)
		}
	}
}

// Overlapping copies (distance < length) exercise the byte-by-byte copy
// rule explicitly.
func TestOverlappingCopy(t *testing.T) {
	input := append([]byte{1, 2, 3}, bytes.Repeat([]byte{1, 2, 3}, 100)...)
	for _, level := range []Level{LevelFast, LevelBest} {
		decoded, err := Decompress(Compress(input, level))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(decoded, input) {
			t.Fatal("round trip mismatch")
		}
	}
}

func TestCompressionIsDeterministic(t *testing.T) {
	input := testInputs()["repeat text"]
	for _, level := range []Level{LevelNone, LevelFast, LevelBest} {
		a := Compress(input, level)
		b := Compress(input, level)
		if !bytes.Equal(a, b) {
			t.Fatalf("%v: two runs differ", level)
		}
	}
}

func TestBestBeatsFastOnRedundantInput(t *testing.T) {
	input := testInputs()["repeat text"]
	best := Compress(input, LevelBest)
	fast := Compress(input, LevelFast)
	if len(best) > len(fast) {
		t.Fatalf("best (%d bytes) larger than fast (%d bytes)", len(best), len(fast))
	}
}

func TestEstimateCostBitsOrdersByCompressibility(t *testing.T) {
	zeros := make([]byte, 1000)
	noisy := testInputs()["pseudorandom"][:1000]
	if EstimateCostBits(zeros) >= EstimateCostBits(noisy) {
		t.Fatal("all-zero input should estimate cheaper than noise")
	}
}

// Scenario: the 19-byte overlap sample forced through a dynamic-Huffman
// block, whatever the cost model would normally pick.
func TestDynamicHuffmanBlockRoundTrip(t *testing.T) {
	input := []byte("ABCDEABCD ABCDEABCD")
	tokens := encodeLZ77(input, LevelBest)

	var llFreqs [numLLSymbols]uint32
	var distFreqs [numDistSymbols]uint32
	countTokenFreqs(tokens, &llFreqs, &distFreqs)
	llFreqs[endOfBlockSymbol] = 1

	plan := buildDynamicPlan(&llFreqs, &distFreqs)
	w := &bitstream.Writer{}
	writeDynamicBlock(w, plan, tokens, true)
	encoded := w.Bytes()

	decoded, err := Decompress(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(decoded, input) {
		t.Fatalf("decoded %q, want %q", decoded, input)
	}

	got, err := io.ReadAll(flate.NewReader(bytes.NewReader(encoded)))
	if err != nil || !bytes.Equal(got, input) {
		t.Fatalf("stdlib flate: %q, %v", got, err)
	}
}

// The cost model must agree bit-for-bit with what the serializers emit;
// the block splitter's decisions depend on it.
func TestCostModelIsExact(t *testing.T) {
	inputs := [][]byte{
		[]byte("ABCDEABCD ABCDEABCD"),
		bytes.Repeat([]byte("abcabcabd"), 40),
		testInputs()["pseudorandom"][:2000],
	}
	for _, input := range inputs {
		tokens := encodeLZ77(input, LevelBest)
		var llFreqs [numLLSymbols]uint32
		var distFreqs [numDistSymbols]uint32
		countTokenFreqs(tokens, &llFreqs, &distFreqs)
		llFreqs[endOfBlockSymbol] = 1

		w := &bitstream.Writer{}
		writeFixedBlock(w, tokens, true)
		if got, want := w.Len(), fixedCostBits(&llFreqs, &distFreqs); got != want {
			t.Errorf("fixed: emitted %d bits, model said %d", got, want)
		}

		plan := buildDynamicPlan(&llFreqs, &distFreqs)
		w = &bitstream.Writer{}
		writeDynamicBlock(w, plan, tokens, true)
		if got := w.Len(); got != plan.costBits {
			t.Errorf("dynamic: emitted %d bits, model said %d", got, plan.costBits)
		}
	}
}
