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

import (
	"bytes"
	"io"

	"github.com/pkg/errors"

	"github.com/zipng/zipng/lib/pix"
	"github.com/zipng/zipng/lib/zlibstream"
)

// Decode reads a complete PNG file from r and returns its pixel grid.
// Either the whole image decodes or an error is returned; no partial
// output is produced.
func Decode(r io.Reader) (*pix.Image, error) {
	img, _, err := DecodeHeader(r)
	return img, err
}

// DecodeHeader is Decode, also returning the parsed IHDR.
func DecodeHeader(r io.Reader) (*pix.Image, Header, error) {
	var sig [8]byte
	if _, err := io.ReadFull(r, sig[:]); err != nil || !bytes.Equal(sig[:], pngSignature) {
		return nil, Header{}, errBadSignature
	}

	first, err := readChunk(r)
	if err != nil {
		return nil, Header{}, err
	}
	if first.typ != "IHDR" {
		return nil, Header{}, errIHDRNotFirst
	}
	header, err := parseIHDR(first.data)
	if err != nil {
		return nil, Header{}, err
	}

	var palette []pix.RGBA
	var idat bytes.Buffer
	seenIDAT, idatDone := false, false

	for {
		c, err := readChunk(r)
		if err != nil {
			if err == errChunkTooShort {
				return nil, Header{}, errMissingIEND
			}
			return nil, Header{}, err
		}

		if c.typ == "IDAT" {
			if idatDone {
				return nil, Header{}, errMisplacedIDAT
			}
			seenIDAT = true
			idat.Write(c.data)
			continue
		}
		if seenIDAT {
			idatDone = true
		}

		switch c.typ {
		case "IHDR":
			return nil, Header{}, errDuplicateIHDR
		case "PLTE":
			if palette != nil {
				return nil, Header{}, errDuplicatePLTE
			}
			if seenIDAT {
				return nil, Header{}, errMisplacedPLTE
			}
			if len(c.data) == 0 || len(c.data)%3 != 0 || len(c.data) > 768 {
				return nil, Header{}, errBadPLTELength
			}
			for i := 0; i < len(c.data); i += 3 {
				palette = append(palette, pix.RGBA{
					R: c.data[i], G: c.data[i+1], B: c.data[i+2], A: 0xFF,
				})
			}
		case "IEND":
			if !seenIDAT {
				return nil, Header{}, errMissingIDAT
			}
			img, err := decodeImageData(header, palette, idat.Bytes())
			if err != nil {
				return nil, Header{}, err
			}
			return img, header, nil
		default:
			if c.critical() {
				return nil, Header{}, errors.Wrapf(errUnknownCriticalChunk, "chunk %q", c.typ)
			}
			// Ancillary chunks are skipped; their CRC was still checked by
			// readChunk.
		}
	}
}

// decodeImageData inflates the IDAT payload and reverses the scanline
// pipeline: split into passes, unfilter, deserialize, deinterlace.
func decodeImageData(header Header, palette []pix.RGBA, compressed []byte) (*pix.Image, error) {
	if header.ColorType == ColorTypeIndexed && palette == nil {
		return nil, errMissingPLTE
	}

	raw, err := zlibstream.Decompress(compressed)
	if err != nil {
		return nil, err
	}

	bpp := filterBPP(header.ColorType, header.BitDepth)

	if header.Interlace == InterlaceNone {
		rows, err := splitScanlines(raw, header.Width, header.Height, header)
		if err != nil {
			return nil, err
		}
		return deserializePass(rows, header.Width, header.Height, header, palette, bpp)
	}

	dims := passDimensions(header.Width, header.Height)
	var passes [numAdam7Passes]*pix.Image
	offset := 0
	for p := 0; p < numAdam7Passes; p++ {
		w, h := dims[p][0], dims[p][1]
		if w == 0 || h == 0 {
			continue
		}
		rowBytes := 1 + bytesPerRow(w, header.ColorType, header.BitDepth)
		size := h * rowBytes
		if offset+size > len(raw) {
			return nil, errBadDataLength
		}
		rows := sliceRows(raw[offset:offset+size], rowBytes)
		offset += size

		img, err := deserializePass(rows, w, h, header, palette, bpp)
		if err != nil {
			return nil, err
		}
		passes[p] = img
	}
	if offset != len(raw) {
		return nil, errBadDataLength
	}
	return weavePasses(passes, header.Width, header.Height), nil
}

// splitScanlines cuts the whole-image (non-interlaced) data into its
// height scanlines, validating the total size.
func splitScanlines(raw []byte, width, height int, header Header) ([][]byte, error) {
	rowBytes := 1 + bytesPerRow(width, header.ColorType, header.BitDepth)
	if len(raw) != height*rowBytes {
		return nil, errBadDataLength
	}
	return sliceRows(raw, rowBytes), nil
}

func sliceRows(raw []byte, rowBytes int) [][]byte {
	rows := make([][]byte, 0, len(raw)/rowBytes)
	for off := 0; off < len(raw); off += rowBytes {
		rows = append(rows, raw[off:off+rowBytes])
	}
	return rows
}

// deserializePass unfilters one pass's scanlines and unpacks them into a
// pixel grid.
func deserializePass(rows [][]byte, width, height int, header Header, palette []pix.RGBA, bpp int) (*pix.Image, error) {
	unfiltered, err := unfilterScanlines(rows, bpp)
	if err != nil {
		return nil, err
	}
	img := pix.New(width, height)
	for y, data := range unfiltered {
		row, err := deserializeRow(data, width, header.ColorType, header.BitDepth, palette)
		if err != nil {
			return nil, err
		}
		copy(img.Row(y), row)
	}
	return img, nil
}
