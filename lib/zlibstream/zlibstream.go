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

// Package zlibstream wraps and unwraps raw DEFLATE data in the zlib
// format (RFC 1950): a 2-byte CMF/FLG header and a big-endian Adler-32
// trailer over the uncompressed bytes.
package zlibstream

import (
	"errors"

	"github.com/zipng/zipng/lib/checksum"
	"github.com/zipng/zipng/lib/deflate"
)

var (
	errInvalidAdler32       = errors.New("zlibstream: invalid input: Adler-32 mismatch")
	errInvalidHeader        = errors.New("zlibstream: invalid input: bad CMF/FLG header")
	errInvalidMethod        = errors.New("zlibstream: invalid input: unsupported compression method")
	errInvalidNotEnoughData = errors.New("zlibstream: invalid input: not enough data")
)

// flevelForLevel maps the compression level to the advisory FLEVEL header
// bits: 0 fastest, 1 fast, 3 maximum.
func flevelForLevel(level deflate.Level) uint8 {
	switch level {
	case deflate.LevelNone:
		return 0
	case deflate.LevelFast:
		return 1
	}
	return 3
}

// Compress produces a complete zlib stream for src at the given level.
func Compress(src []byte, level deflate.Level) []byte {
	// CM=8 (deflate), CINFO=7 (32 KiB window).
	const cmf = 0x78

	flg := uint16(flevelForLevel(level)) << 6 // FLEVEL, FDICT=0.
	if rem := (uint16(cmf)<<8 | flg) % 31; rem != 0 {
		flg |= 31 - rem // FCHECK
	}

	deflated := deflate.Compress(src, level)
	adler := checksum.Adler32(src)

	out := make([]byte, 0, len(deflated)+6)
	out = append(out, cmf, uint8(flg))
	out = append(out, deflated...)
	out = append(out,
		uint8(adler>>24), uint8(adler>>16), uint8(adler>>8), uint8(adler))
	return out
}

// Decompress unwraps and inflates a complete zlib stream, validating the
// header check bits and the Adler-32 trailer.
func Decompress(src []byte) ([]byte, error) {
	if len(src) < 6 {
		return nil, errInvalidNotEnoughData
	}

	cmf, flg := src[0], src[1]
	if cmf&0x0F != 8 || cmf>>4 > 7 {
		return nil, errInvalidMethod
	}
	if (uint32(cmf)*256+uint32(flg))%31 != 0 {
		return nil, errInvalidHeader
	}

	body := src[2 : len(src)-4]
	if flg&0x20 != 0 {
		// FDICT: skip the 4-byte preset dictionary ID. Streams using it
		// are not produced here but must not be rejected outright.
		if len(body) < 4 {
			return nil, errInvalidNotEnoughData
		}
		body = body[4:]
	}

	decoded, err := deflate.Decompress(body)
	if err != nil {
		return nil, err
	}

	trailer := src[len(src)-4:]
	want := uint32(trailer[0])<<24 | uint32(trailer[1])<<16 |
		uint32(trailer[2])<<8 | uint32(trailer[3])
	if checksum.Adler32(decoded) != want {
		return nil, errInvalidAdler32
	}
	return decoded, nil
}
