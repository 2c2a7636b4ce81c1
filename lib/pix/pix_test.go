// Copyright 2025 The Zipng Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0> or the MIT license
// <LICENSE-MIT or https://opensource.org/licenses/MIT>, at your
// option. This file may not be copied, modified, or distributed
// except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package pix

import "testing"

func TestPredicates(t *testing.T) {
	if !(RGBA{10, 10, 10, 255}).Grey() || !(RGBA{10, 10, 10, 255}).Opaque() {
		t.Fatal("grey opaque pixel misclassified")
	}
	if (RGBA{10, 11, 10, 255}).Grey() {
		t.Fatal("non-grey pixel classified grey")
	}
	if (RGBA{0, 0, 0, 254}).Opaque() {
		t.Fatal("translucent pixel classified opaque")
	}
}

// The BT.601 luma row sums to exactly 1, so grey pixels keep their level.
func TestLumaIdentityOnGrey(t *testing.T) {
	for v := 0; v < 256; v++ {
		p := RGBA{uint8(v), uint8(v), uint8(v), 255}
		if got := Luma(p); got != uint8(v) {
			t.Fatalf("Luma(grey %d): got %d", v, got)
		}
	}
}

// Neutral chroma must invert to r=g=b=y exactly; greyscale PNG decoding
// depends on it.
func TestNeutralChromaInverse(t *testing.T) {
	for v := 0; v < 256; v++ {
		got := YCbCr{Y: uint8(v), Cb: 128, Cr: 128}.ToRGBA()
		want := RGBA{uint8(v), uint8(v), uint8(v), 255}
		if got != want {
			t.Fatalf("y=%d: got %+v, want %+v", v, got, want)
		}
	}
}

func TestYCbCrKnownValues(t *testing.T) {
	testCases := []struct {
		in   RGBA
		want YCbCr
	}{
		{RGBA{255, 0, 0, 255}, YCbCr{76, 85, 255}},
		{RGBA{0, 255, 0, 255}, YCbCr{150, 43, 21}},
		{RGBA{0, 0, 255, 255}, YCbCr{29, 255, 107}},
		{RGBA{255, 255, 255, 255}, YCbCr{255, 128, 128}},
		{RGBA{0, 0, 0, 255}, YCbCr{0, 128, 128}},
	}
	for _, tc := range testCases {
		if got := ToYCbCr(tc.in); got != tc.want {
			t.Errorf("ToYCbCr(%+v): got %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestRoundTripThroughYCbCr(t *testing.T) {
	// Conversion is lossy in general, but each channel must come back
	// within quantization distance.
	colors := []RGBA{
		{12, 34, 56, 255}, {200, 100, 50, 255}, {1, 2, 3, 255}, {254, 253, 252, 255},
	}
	for _, c := range colors {
		back := ToYCbCr(c).ToRGBA()
		for _, d := range []int{
			int(back.R) - int(c.R), int(back.G) - int(c.G), int(back.B) - int(c.B),
		} {
			if d < -2 || d > 2 {
				t.Fatalf("%+v came back as %+v", c, back)
			}
		}
	}
}

func TestImageAccessors(t *testing.T) {
	m := New(3, 2)
	m.Set(2, 1, RGBA{9, 8, 7, 255})
	if got := m.At(2, 1); got != (RGBA{9, 8, 7, 255}) {
		t.Fatalf("At: got %+v", got)
	}
	if got := len(m.Row(1)); got != 3 {
		t.Fatalf("Row length: got %d", got)
	}
	if m.Row(1)[2] != m.At(2, 1) {
		t.Fatal("Row does not alias pixels")
	}
}

func TestUniqueColorsSortedAndDeduplicated(t *testing.T) {
	m := New(2, 2)
	m.Set(0, 0, RGBA{5, 5, 5, 255})
	m.Set(1, 0, RGBA{1, 2, 3, 255})
	m.Set(0, 1, RGBA{5, 5, 5, 255})
	m.Set(1, 1, RGBA{1, 2, 3, 4})

	got := m.UniqueColors()
	want := []RGBA{{1, 2, 3, 4}, {1, 2, 3, 255}, {5, 5, 5, 255}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
