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
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/zipng/zipng/lib/checksum"
)

// A chunk is the PNG framing unit: a 4-byte big-endian length, a 4-byte
// type, the data, and a CRC-32 over type and data.
type chunk struct {
	typ  string
	data []byte
}

// critical reports whether the chunk's type marks it critical (uppercase
// first byte).
func (c chunk) critical() bool {
	return len(c.typ) == 4 && c.typ[0] >= 'A' && c.typ[0] <= 'Z'
}

// writeChunk frames data as one chunk of the given type.
func writeChunk(w io.Writer, typ string, data []byte) error {
	var header [8]byte
	binary.BigEndian.PutUint32(header[:4], uint32(len(data)))
	copy(header[4:], typ)

	var crc checksum.CRC32Accumulator
	crc.Reset()
	crc.Update(header[4:])
	crc.Update(data)

	var trailer [4]byte
	binary.BigEndian.PutUint32(trailer[:], crc.Sum())

	if _, err := w.Write(header[:]); err != nil {
		return errors.Wrapf(err, "writing %s chunk header", typ)
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrapf(err, "writing %s chunk data", typ)
	}
	if _, err := w.Write(trailer[:]); err != nil {
		return errors.Wrapf(err, "writing %s chunk CRC", typ)
	}
	return nil
}

// readChunk reads and CRC-checks the next chunk.
func readChunk(r io.Reader) (chunk, error) {
	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return chunk{}, errChunkTooShort
		}
		return chunk{}, errors.Wrap(err, "reading chunk header")
	}

	length := binary.BigEndian.Uint32(header[:4])
	typ := string(header[4:])

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return chunk{}, errChunkTooShort
		}
		return chunk{}, errors.Wrapf(err, "reading %s chunk data", typ)
	}

	var trailer [4]byte
	if _, err := io.ReadFull(r, trailer[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return chunk{}, errChunkTooShort
		}
		return chunk{}, errors.Wrapf(err, "reading %s chunk CRC", typ)
	}

	var crc checksum.CRC32Accumulator
	crc.Reset()
	crc.Update(header[4:])
	crc.Update(data)
	if crc.Sum() != binary.BigEndian.Uint32(trailer[:]) {
		return chunk{}, errBadCRC
	}

	return chunk{typ: typ, data: data}, nil
}
