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

// Package ppm reads and writes binary Portable Pixmap (P6) files, the
// CLI's uncompressed interchange format. Only 8-bit samples (maxval up
// to 255) are supported; alpha is dropped on write and assumed opaque on
// read.
package ppm

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/zipng/zipng/lib/pix"
)

var (
	errBadMagic    = errors.New("ppm: invalid input: not a P6 file")
	errBadHeader   = errors.New("ppm: invalid input: malformed header")
	errBadMaxval   = errors.New("ppm: unsupported maxval (only 1..255)")
	errShortPixels = errors.New("ppm: invalid input: truncated pixel data")
)

// Magic is the two-byte P6 signature.
const Magic = "P6"

// Encode writes img as a binary PPM.
func Encode(w io.Writer, img *pix.Image) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P6\n%d %d\n255\n", img.Width, img.Height); err != nil {
		return err
	}
	for _, p := range img.Pix {
		if err := bw.WriteByte(p.R); err != nil {
			return err
		}
		bw.WriteByte(p.G)
		if err := bw.WriteByte(p.B); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Decode reads a binary PPM into a pixel grid.
func Decode(r io.Reader) (*pix.Image, error) {
	br := bufio.NewReader(r)

	var magic [2]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil || string(magic[:]) != Magic {
		return nil, errBadMagic
	}

	width, err := readHeaderNumber(br)
	if err != nil {
		return nil, err
	}
	height, err := readHeaderNumber(br)
	if err != nil {
		return nil, err
	}
	maxval, err := readHeaderNumber(br)
	if err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, errBadHeader
	}
	if maxval < 1 || maxval > 255 {
		return nil, errBadMaxval
	}

	img := pix.New(width, height)
	buf := make([]byte, 3*width)
	for y := 0; y < height; y++ {
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, errShortPixels
		}
		row := img.Row(y)
		for x := 0; x < width; x++ {
			row[x] = pix.RGBA{
				R: scaleSample(buf[3*x+0], maxval),
				G: scaleSample(buf[3*x+1], maxval),
				B: scaleSample(buf[3*x+2], maxval),
				A: 0xFF,
			}
		}
	}
	return img, nil
}

// scaleSample maps a 0..maxval sample onto 0..255, rounding to nearest.
func scaleSample(v uint8, maxval int) uint8 {
	if maxval == 255 {
		return v
	}
	return uint8((int(v)*255*2 + maxval) / (2 * maxval))
}

// readHeaderNumber skips whitespace and '#' comments, then reads one
// decimal number.
func readHeaderNumber(br *bufio.Reader) (int, error) {
	inComment := false
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, errBadHeader
		}
		if inComment {
			if b == '\n' {
				inComment = false
			}
			continue
		}
		switch {
		case b == '#':
			inComment = true
		case b == ' ' || b == '\t' || b == '\r' || b == '\n':
			// Keep skipping.
		case b >= '0' && b <= '9':
			n := int(b - '0')
			for {
				b, err := br.ReadByte()
				if err != nil {
					return n, nil
				}
				if b < '0' || b > '9' {
					// The single byte after the last header number is the
					// separator before pixel data; consuming it here is
					// exactly the format's contract.
					return n, nil
				}
				n = n*10 + int(b-'0')
				if n > 1<<30 {
					return 0, errBadHeader
				}
			}
		default:
			return 0, errBadHeader
		}
	}
}
