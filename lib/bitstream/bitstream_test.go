// Copyright 2025 The Zipng Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0> or the MIT license
// <LICENSE-MIT or https://opensource.org/licenses/MIT>, at your
// option. This file may not be copied, modified, or distributed
// except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package bitstream

import (
	"bytes"
	"testing"
)

func TestWriterRTLOrder(t *testing.T) {
	w := &Writer{}
	w.PushOne()
	w.PushZero()
	w.PushBitsRTL(0b101, 3)
	// Bits in arrival order: 1 0 1 0 1, filling the byte LSB-first.
	got := w.Bytes()
	want := []byte{0b00010101}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % 02x, want % 02x", got, want)
	}
}

func TestWriterCodeOrder(t *testing.T) {
	w := &Writer{}
	w.PushCode(0b110, 3)
	// The code's MSB arrives first: bits 1 1 0 land at positions 0 1 2.
	got := w.Bytes()
	want := []byte{0b00000011}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % 02x, want % 02x", got, want)
	}
}

func TestWriterTwoOrdersDiffer(t *testing.T) {
	rtl := &Writer{}
	rtl.PushBitsRTL(0b110, 3)
	ltr := &Writer{}
	ltr.PushCode(0b110, 3)
	if bytes.Equal(rtl.Bytes(), ltr.Bytes()) {
		t.Fatal("RTL and code order should disagree for an asymmetric value")
	}
}

func TestWriterLen(t *testing.T) {
	w := &Writer{}
	for i := 0; i < 19; i++ {
		w.PushOne()
	}
	if got := w.Len(); got != 19 {
		t.Fatalf("Len: got %d, want 19", got)
	}
	b := w.Bytes()
	if len(b) != 3 {
		t.Fatalf("Bytes: got %d bytes, want 3", len(b))
	}
	// Partial byte is zero-padded in its high positions.
	if b[2] != 0b00000111 {
		t.Fatalf("partial byte: got %08b, want 00000111", b[2])
	}
}

func TestWriterU16LEAndBytes(t *testing.T) {
	w := &Writer{}
	w.PushU16LE(0xBEEF)
	w.PushByte(0x12)
	got := w.Bytes()
	want := []byte{0xEF, 0xBE, 0x12}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % 02x, want % 02x", got, want)
	}
}

func TestWriterAlignToByte(t *testing.T) {
	w := &Writer{}
	w.PushOne()
	w.AlignToByte()
	w.PushByte(0xFF)
	got := w.Bytes()
	want := []byte{0x01, 0xFF}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % 02x, want % 02x", got, want)
	}
}

func TestWriterExtendPreservesBitOrder(t *testing.T) {
	a := &Writer{}
	a.PushBitsRTL(0b10110, 5)

	b := &Writer{}
	b.PushBitsRTL(0b1101, 4)
	b.PushByte(0xA5)

	a.Extend(b)

	direct := &Writer{}
	direct.PushBitsRTL(0b10110, 5)
	direct.PushBitsRTL(0b1101, 4)
	direct.PushByte(0xA5)

	if !bytes.Equal(a.Bytes(), direct.Bytes()) {
		t.Fatalf("Extend: got % 02x, want % 02x", a.Bytes(), direct.Bytes())
	}
}

func TestReaderRoundTrip(t *testing.T) {
	w := &Writer{}
	w.PushBitsRTL(0b1, 1)
	w.PushBitsRTL(0b10, 2)
	w.PushBitsRTL(0x3FFF, 14)
	w.AlignToByte()
	w.PushU16LE(0x1234)
	w.PushBytes([]byte{0xDE, 0xAD})

	r := NewReader(w.Bytes())
	if v, _ := r.ReadBit(); v != 1 {
		t.Fatal("first bit")
	}
	if v, _ := r.ReadBitsLSB(2); v != 0b10 {
		t.Fatalf("2-bit field: got %b", v)
	}
	if v, _ := r.ReadBitsLSB(14); v != 0x3FFF {
		t.Fatalf("14-bit field: got %x", v)
	}
	r.AlignToByte()
	if v, _ := r.ReadU16LE(); v != 0x1234 {
		t.Fatalf("u16le: got %x", v)
	}
	b, err := r.ReadBytesAligned(2)
	if err != nil || !bytes.Equal(b, []byte{0xDE, 0xAD}) {
		t.Fatalf("aligned bytes: got % 02x, %v", b, err)
	}
}

func TestReaderEndOfStream(t *testing.T) {
	r := NewReader([]byte{0xFF})
	if _, err := r.ReadBitsLSB(8); err != nil {
		t.Fatal(err)
	}
	if _, err := r.ReadBit(); err != ErrUnexpectedEndOfStream {
		t.Fatalf("got %v, want ErrUnexpectedEndOfStream", err)
	}
	if _, err := NewReader(nil).ReadBitsLSB(3); err != ErrUnexpectedEndOfStream {
		t.Fatalf("got %v, want ErrUnexpectedEndOfStream", err)
	}
	if _, err := NewReader([]byte{1, 2}).ReadBytesAligned(3); err != ErrUnexpectedEndOfStream {
		t.Fatalf("got %v, want ErrUnexpectedEndOfStream", err)
	}
}

func TestReaderAlignIsIdempotent(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02})
	r.AlignToByte()
	if v, _ := r.ReadBitsLSB(8); v != 0x01 {
		t.Fatalf("got %x, want 01", v)
	}
	r.ReadBit()
	r.AlignToByte()
	if got := r.BytesConsumed(); got != 2 {
		t.Fatalf("BytesConsumed: got %d, want 2", got)
	}
}
