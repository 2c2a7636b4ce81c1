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

import "github.com/zipng/zipng/lib/bitstream"

// Decompress decodes a raw DEFLATE stream, reading blocks until one with
// BFINAL set completes. Trailing bytes beyond the final block are ignored
// (zlib places its checksum there).
func Decompress(src []byte) ([]byte, error) {
	d := &decompressor{bits: bitstream.NewReader(src)}
	return d.run()
}

type decompressor struct {
	bits *bitstream.Reader
	out  []byte

	llTree   decodeTree
	distTree decodeTree
	clTree   decodeTree
}

func (d *decompressor) run() ([]byte, error) {
	for {
		final, err := d.bits.ReadBit()
		if err != nil {
			return nil, errInvalidNotEnoughData
		}
		blockType, err := d.bits.ReadBitsLSB(2)
		if err != nil {
			return nil, errInvalidNotEnoughData
		}

		switch blockType {
		case 0:
			err = d.readStoredBlock()
		case 1:
			err = d.readFixedBlock()
		case 2:
			err = d.readDynamicBlock()
		default:
			return nil, errInvalidBadBlockType
		}
		if err != nil {
			return nil, err
		}

		if final == 1 {
			return d.out, nil
		}
	}
}

func (d *decompressor) readStoredBlock() error {
	d.bits.AlignToByte()
	length, err := d.bits.ReadU16LE()
	if err != nil {
		return errInvalidNotEnoughData
	}
	invLength, err := d.bits.ReadU16LE()
	if err != nil {
		return errInvalidNotEnoughData
	}
	if length != ^invLength {
		return errInvalidBadStoredLength
	}
	b, err := d.bits.ReadBytesAligned(int(length))
	if err != nil {
		return errInvalidNotEnoughData
	}
	d.out = append(d.out, b...)
	return nil
}

func (d *decompressor) readFixedBlock() error {
	if err := d.llTree.build(fixedLL); err != nil {
		return err
	}
	if err := d.distTree.build(fixedDist); err != nil {
		return err
	}
	return d.readBlockBody()
}

func (d *decompressor) readDynamicBlock() error {
	hlit, err := d.bits.ReadBitsLSB(5)
	if err != nil {
		return errInvalidNotEnoughData
	}
	hdist, err := d.bits.ReadBitsLSB(5)
	if err != nil {
		return errInvalidNotEnoughData
	}
	hclen, err := d.bits.ReadBitsLSB(4)
	if err != nil {
		return errInvalidNotEnoughData
	}

	numLL := 257 + int(hlit)
	numDist := 1 + int(hdist)
	numCL := 4 + int(hclen)
	if numLL > numLLSymbols || numDist > numDistSymbols {
		return errInvalidTooManyCodes
	}

	var clLengths [numCLSymbols]uint8
	for i := 0; i < numCL; i++ {
		v, err := d.bits.ReadBitsLSB(3)
		if err != nil {
			return errInvalidNotEnoughData
		}
		clLengths[clPermutation[i]] = uint8(v)
	}
	if err := d.clTree.build(clLengths[:]); err != nil {
		return err
	}
	if d.clTree.numSymbols == 0 {
		return errInvalidBadHuffmanTree
	}

	lengths := make([]uint8, numLL+numDist)
	for i := 0; i < len(lengths); {
		sym, err := d.clTree.decodeSym(d.bits)
		if err != nil {
			return err
		}

		var value uint8
		var count int
		switch {
		case sym < 16:
			lengths[i] = uint8(sym)
			i++
			continue
		case sym == 16:
			if i == 0 {
				return errInvalidBadCodeLengths
			}
			value = lengths[i-1]
			repeat, err := d.bits.ReadBitsLSB(2)
			if err != nil {
				return errInvalidNotEnoughData
			}
			count = 3 + int(repeat)
		case sym == 17:
			repeat, err := d.bits.ReadBitsLSB(3)
			if err != nil {
				return errInvalidNotEnoughData
			}
			count = 3 + int(repeat)
		default:
			repeat, err := d.bits.ReadBitsLSB(7)
			if err != nil {
				return errInvalidNotEnoughData
			}
			count = 11 + int(repeat)
		}

		if i+count > len(lengths) {
			return errInvalidBadCodeLengths
		}
		for ; count > 0; count-- {
			lengths[i] = value
			i++
		}
	}

	if err := d.llTree.build(lengths[:numLL]); err != nil {
		return err
	}
	if d.llTree.numSymbols == 0 {
		return errInvalidBadHuffmanTree
	}
	if err := d.distTree.build(lengths[numLL:]); err != nil {
		return err
	}
	return d.readBlockBody()
}

func (d *decompressor) readBlockBody() error {
	for {
		sym, err := d.llTree.decodeSym(d.bits)
		if err != nil {
			return err
		}

		switch {
		case sym < endOfBlockSymbol:
			d.out = append(d.out, uint8(sym))

		case sym == endOfBlockSymbol:
			return nil

		default:
			if sym >= 257+int32(len(lengthBases)) {
				return errInvalidBadSymbol
			}
			li := sym - 257
			extra, err := d.bits.ReadBitsLSB(uint32(lengthExtraBits[li]))
			if err != nil {
				return errInvalidNotEnoughData
			}
			length := int(lengthBases[li]) + int(extra)

			if d.distTree.numSymbols == 0 {
				return errInvalidNoDistanceTree
			}
			dSym, err := d.distTree.decodeSym(d.bits)
			if err != nil {
				return err
			}
			if dSym >= int32(len(distanceBases)) {
				return errInvalidBadSymbol
			}
			extra, err = d.bits.ReadBitsLSB(uint32(distanceExtraBits[dSym]))
			if err != nil {
				return errInvalidNotEnoughData
			}
			distance := int(distanceBases[dSym]) + int(extra)

			if distance > len(d.out) {
				return errInvalidDistanceTooFar
			}
			// A copy may overlap its own output (distance < length), so it
			// must proceed byte by byte.
			start := len(d.out) - distance
			for i := 0; i < length; i++ {
				d.out = append(d.out, d.out[start+i])
			}
		}
	}
}
