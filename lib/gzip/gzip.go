// Copyright 2019 The Wuffs Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// ----------------

// Package gzip is the gzip container (RFC 1952): a thin wrapper adding a
// 10-byte header, optional extra fields, and a trailing CRC-32 plus ISIZE
// around lib/deflate's pure byte transform.
//
// This is an external collaborator of the core (spec.md section 1): it
// treats lib/deflate as opaque and contributes only the container framing
// and the checksum.
package gzip

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/pkg/errors"

	"github.com/protokit/protokit/lib/deflate"
)

const (
	magic0 = 0x1f
	magic1 = 0x8b

	methodDeflate = 8

	flagText    = 1 << 0
	flagHCRC    = 1 << 1
	flagExtra   = 1 << 2
	flagName    = 1 << 3
	flagComment = 1 << 4
)

var (
	ErrBadMagic  = errors.New("gzip: bad magic number")
	ErrBadMethod = errors.New("gzip: unsupported compression method")
	ErrBadCRC32  = errors.New("gzip: CRC-32 checksum mismatch")
	ErrBadISIZE  = errors.New("gzip: ISIZE mismatch")
	ErrTruncated = errors.New("gzip: truncated header")
)

// Header holds the gzip metadata fields a caller may want to inspect or set.
type Header struct {
	Name    string
	Comment string
	ModTime uint32
}

// Decode decompresses a complete gzip member, verifying the trailing
// CRC-32 and ISIZE against the decoded output.
func Decode(src []byte) ([]byte, Header, error) {
	var hdr Header
	if len(src) < 10 {
		return nil, hdr, ErrTruncated
	}
	if src[0] != magic0 || src[1] != magic1 {
		return nil, hdr, ErrBadMagic
	}
	if src[2] != methodDeflate {
		return nil, hdr, ErrBadMethod
	}
	flags := src[3]
	hdr.ModTime = binary.LittleEndian.Uint32(src[4:8])
	i := 10

	if flags&flagExtra != 0 {
		if i+2 > len(src) {
			return nil, hdr, ErrTruncated
		}
		xlen := int(binary.LittleEndian.Uint16(src[i : i+2]))
		i += 2 + xlen
		if i > len(src) {
			return nil, hdr, ErrTruncated
		}
	}
	if flags&flagName != 0 {
		start := i
		for i < len(src) && src[i] != 0 {
			i++
		}
		if i >= len(src) {
			return nil, hdr, ErrTruncated
		}
		hdr.Name = string(src[start:i])
		i++
	}
	if flags&flagComment != 0 {
		start := i
		for i < len(src) && src[i] != 0 {
			i++
		}
		if i >= len(src) {
			return nil, hdr, ErrTruncated
		}
		hdr.Comment = string(src[start:i])
		i++
	}
	if flags&flagHCRC != 0 {
		i += 2
	}
	if i+8 > len(src) {
		return nil, hdr, ErrTruncated
	}

	payload := src[i : len(src)-8]
	wantCRC := binary.LittleEndian.Uint32(src[len(src)-8 : len(src)-4])
	wantISize := binary.LittleEndian.Uint32(src[len(src)-4:])

	decoded, err := deflate.Decode(payload)
	if err != nil {
		return nil, hdr, errors.Wrap(err, "gzip: inflating member body")
	}
	if crc32.ChecksumIEEE(decoded) != wantCRC {
		return nil, hdr, ErrBadCRC32
	}
	if uint32(len(decoded)) != wantISize {
		return nil, hdr, ErrBadISIZE
	}
	return decoded, hdr, nil
}

// Encode compresses data into a single complete gzip member. hdr.ModTime is
// always written; hdr.Name and hdr.Comment are written when nonempty.
func Encode(data []byte, hdr Header) []byte {
	out := make([]byte, 10)
	out[0], out[1] = magic0, magic1
	out[2] = methodDeflate
	out[3] = 0
	binary.LittleEndian.PutUint32(out[4:8], hdr.ModTime)
	out[8] = 0 // XFL
	out[9] = 255 // OS: unknown
	if hdr.Name != "" {
		out[3] |= flagName
		out = append(out, hdr.Name...)
		out = append(out, 0)
	}
	if hdr.Comment != "" {
		out[3] |= flagComment
		out = append(out, hdr.Comment...)
		out = append(out, 0)
	}

	out = append(out, deflate.Encode(data)...)

	var trailer [8]byte
	binary.LittleEndian.PutUint32(trailer[0:4], crc32.ChecksumIEEE(data))
	binary.LittleEndian.PutUint32(trailer[4:8], uint32(len(data)))
	return append(out, trailer[:]...)
}
