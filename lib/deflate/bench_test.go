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

import "testing"

func benchInput() []byte {
	return testInputs()["repeat text"]
}

func BenchmarkCompressFast(b *testing.B) {
	input := benchInput()
	b.SetBytes(int64(len(input)))
	for i := 0; i < b.N; i++ {
		Compress(input, LevelFast)
	}
}

func BenchmarkCompressBest(b *testing.B) {
	input := benchInput()
	b.SetBytes(int64(len(input)))
	for i := 0; i < b.N; i++ {
		Compress(input, LevelBest)
	}
}

func BenchmarkDecompress(b *testing.B) {
	input := benchInput()
	encoded := Compress(input, LevelBest)
	b.SetBytes(int64(len(input)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Decompress(encoded); err != nil {
			b.Fatal(err)
		}
	}
}
