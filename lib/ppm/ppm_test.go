// Copyright 2025 The Zipng Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0> or the MIT license
// <LICENSE-MIT or https://opensource.org/licenses/MIT>, at your
// option. This file may not be copied, modified, or distributed
// except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package ppm

import (
	"bytes"
	"testing"

	"github.com/zipng/zipng/lib/pix"
)

func testImage() *pix.Image {
	img := pix.New(3, 2)
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			img.Set(x, y, pix.RGBA{R: uint8(x * 50), G: uint8(y * 100), B: uint8(x + y), A: 255})
		}
	}
	return img
}

func TestRoundTrip(t *testing.T) {
	img := testImage()
	var buf bytes.Buffer
	if err := Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	decoded, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Width != img.Width || decoded.Height != img.Height {
		t.Fatalf("got %dx%d", decoded.Width, decoded.Height)
	}
	for i := range img.Pix {
		if decoded.Pix[i] != img.Pix[i] {
			t.Fatalf("pixel %d differs", i)
		}
	}
}

func TestDecodeHeaderWithComments(t *testing.T) {
	data := []byte("P6 # a comment\n# another comment\n 2\t1 # width height\n255\n\xff\x00\x00\x00\xff\x00")
	img, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if img.Width != 2 || img.Height != 1 {
		t.Fatalf("got %dx%d, want 2x1", img.Width, img.Height)
	}
	if img.At(0, 0) != (pix.RGBA{255, 0, 0, 255}) || img.At(1, 0) != (pix.RGBA{0, 255, 0, 255}) {
		t.Fatalf("pixels: %+v %+v", img.At(0, 0), img.At(1, 0))
	}
}

func TestDecodeScalesMaxval(t *testing.T) {
	data := []byte("P6\n1 1\n15\n\x0f\x00\x05")
	img, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	got := img.At(0, 0)
	if got.R != 255 || got.G != 0 {
		t.Fatalf("got %+v", got)
	}
	// 5/15 of full scale, rounded.
	if got.B != 85 {
		t.Fatalf("B: got %d, want 85", got.B)
	}
}

func TestDecodeErrors(t *testing.T) {
	testCases := []struct {
		name string
		data string
		want error
	}{
		{"bad magic", "P5\n1 1\n255\nxxx", errBadMagic},
		{"bad maxval", "P6\n1 1\n65535\n", errBadMaxval},
		{"truncated pixels", "P6\n2 2\n255\n\x00\x01\x02", errShortPixels},
		{"garbage header", "P6\nab cd\n255\n", errBadHeader},
	}
	for _, tc := range testCases {
		if _, err := Decode(bytes.NewReader([]byte(tc.data))); err != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}
