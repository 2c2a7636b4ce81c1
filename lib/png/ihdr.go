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

package png

import "encoding/binary"

// Header is the decoded IHDR chunk.
type Header struct {
	Width     int
	Height    int
	BitDepth  int
	ColorType ColorType
	Interlace Interlace
}

const ihdrDataLength = 13

// encodeIHDR serializes the header into its 13-byte chunk payload. The
// compression and filter method bytes are always zero: deflate and
// adaptive filtering are the only defined methods.
func encodeIHDR(h Header) []byte {
	data := make([]byte, ihdrDataLength)
	binary.BigEndian.PutUint32(data[0:4], uint32(h.Width))
	binary.BigEndian.PutUint32(data[4:8], uint32(h.Height))
	data[8] = uint8(h.BitDepth)
	data[9] = h.ColorType.wireByte()
	data[10] = 0 // compression method: deflate
	data[11] = 0 // filter method: adaptive
	data[12] = uint8(h.Interlace)
	return data
}

// parseIHDR validates and decodes an IHDR chunk payload.
func parseIHDR(data []byte) (Header, error) {
	if len(data) != ihdrDataLength {
		return Header{}, errChunkTooShort
	}

	width := binary.BigEndian.Uint32(data[0:4])
	height := binary.BigEndian.Uint32(data[4:8])
	if width == 0 || height == 0 || width > 1<<31-1 || height > 1<<31-1 {
		return Header{}, errBadDimensions
	}

	colorType, err := colorTypeFromWire(data[9])
	if err != nil {
		return Header{}, err
	}
	depth := int(data[8])
	if !colorType.validBitDepth(depth) {
		return Header{}, errBadBitDepth
	}
	if data[10] != 0 {
		return Header{}, errBadCompression
	}
	if data[11] != 0 {
		return Header{}, errBadFilterMethod
	}
	if data[12] > 1 {
		return Header{}, errBadInterlace
	}

	return Header{
		Width:     int(width),
		Height:    int(height),
		BitDepth:  depth,
		ColorType: colorType,
		Interlace: Interlace(data[12]),
	}, nil
}
