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

// Package lzwz implements the Unix "compress" / ".Z" file format: a 2-byte
// magic number, a flags byte (block mode and max code width), then
// variable-width LZW codes (9 up to max-bits), least-significant-bit first,
// with a periodic dictionary reset (the "clear code", 256) in block mode.
//
// This is an external collaborator of the core (spec.md section 1),
// independent of lib/deflate; it reuses lib/bitio for its bit-level
// plumbing (the ".Z" bit order is the same least-significant-bit-first
// order lib/bitio already implements for DEFLATE).
package lzwz

import (
	"github.com/pkg/errors"

	"github.com/protokit/protokit/lib/bitio"
)

const (
	magic0 = 0x1f
	magic1 = 0x9d

	blockModeFlag = 0x80
	maxBitsMask   = 0x7f

	clearCode = 256
	firstFreeCodeBlockMode   = 257
	firstFreeCodeNonBlockMode = 256

	minMaxBits = 9
	maxMaxBits = 16
)

var (
	ErrBadMagic      = errors.New("lzwz: bad magic number")
	ErrBadMaxBits    = errors.New("lzwz: max-bits out of range [9,16]")
	ErrBadCode       = errors.New("lzwz: code references an undefined dictionary entry")
	ErrTruncated     = errors.New("lzwz: truncated stream")
)

// Encode compresses data into a complete ".Z" stream. maxBits (clamped to
// [9,16]) bounds the code width; block mode is always enabled, matching the
// default every "compress" implementation ships with.
func Encode(data []byte, maxBits int) []byte {
	if maxBits < minMaxBits {
		maxBits = minMaxBits
	}
	if maxBits > maxMaxBits {
		maxBits = maxMaxBits
	}
	maxCode := uint32(1)<<uint(maxBits) - 1

	var w bitio.Writer
	w.Write(magic0, 8)
	w.Write(magic1, 8)
	w.Write(blockModeFlag|uint32(maxBits), 8)

	codes := make(map[string]uint32, 512)
	for i := 0; i < 256; i++ {
		codes[string([]byte{byte(i)})] = uint32(i)
	}
	nextCode := uint32(firstFreeCodeBlockMode)
	currentWidth := uint(minMaxBits)

	var current []byte
	for _, c := range data {
		current = append(current, c)
		if uint32(1)<<currentWidth < nextCode && currentWidth < maxMaxBits {
			currentWidth++
		}
		if _, ok := codes[string(current)]; !ok {
			if nextCode <= maxCode {
				codes[string(current)] = nextCode
				nextCode++
			}
			prefix := current[:len(current)-1]
			code, ok := codes[string(prefix)]
			if !ok {
				panic("lzwz: internal: prefix not in dictionary")
			}
			w.Write(code, currentWidth)
			current = append(current[:0], c)
		}
	}
	if len(current) > 0 {
		code, ok := codes[string(current)]
		if !ok {
			panic("lzwz: internal: final string not in dictionary")
		}
		w.Write(code, currentWidth)
	}
	w.Flush()
	return w.Bytes()
}

// Decode decompresses a complete ".Z" stream.
func Decode(src []byte) ([]byte, error) {
	r := bitio.NewReader(src)

	readByte := func() (uint32, error) {
		v, err := r.Read(8)
		if err != nil {
			return 0, ErrTruncated
		}
		return uint32(v), nil
	}
	m0, err := readByte()
	if err != nil {
		return nil, err
	}
	m1, err := readByte()
	if err != nil {
		return nil, err
	}
	if m0 != magic0 || m1 != magic1 {
		return nil, ErrBadMagic
	}
	flagsByte, err := readByte()
	if err != nil {
		return nil, err
	}
	blockMode := flagsByte&blockModeFlag != 0
	maxBits := int(flagsByte & maxBitsMask)
	if maxBits < minMaxBits || maxBits > maxMaxBits {
		return nil, ErrBadMaxBits
	}
	maxCode := uint32(1)<<uint(maxBits) - 1

	strings := make(map[uint32][]byte, 512)
	for i := 0; i < 256; i++ {
		strings[uint32(i)] = []byte{byte(i)}
	}
	var nextCode uint32
	if blockMode {
		nextCode = firstFreeCodeBlockMode
	} else {
		nextCode = firstFreeCodeNonBlockMode
	}
	currentWidth := uint(minMaxBits)

	var out []byte
	var previous []byte
	bitsReadInEpoch := int64(0)

	for {
		code64, err := r.Read(currentWidth)
		if err == bitio.ErrExhausted {
			break
		}
		if err != nil {
			return nil, err
		}
		code := uint32(code64)
		bitsReadInEpoch += int64(currentWidth)

		if blockMode && code == clearCode {
			blockBits := int64(currentWidth) * 8
			rem := bitsReadInEpoch % blockBits
			if rem != 0 {
				if err := r.Advance(uint(blockBits - rem)); err != nil {
					break
				}
			}
			currentWidth = minMaxBits
			nextCode = firstFreeCodeNonBlockMode
			bitsReadInEpoch = 0
			previous = nil
			continue
		}

		entry, ok := strings[code]
		if !ok || code >= nextCode {
			if len(previous) == 0 {
				return nil, ErrBadCode
			}
			entry = append(append([]byte(nil), previous...), previous[0])
			strings[code] = entry
		}
		out = append(out, entry...)

		if len(previous) != 0 && nextCode <= maxCode {
			newEntry := append(append([]byte(nil), previous...), entry[0])
			strings[nextCode] = newEntry
			nextCode++
			if uint32(1)<<currentWidth-1 < nextCode && currentWidth < uint(maxBits) {
				currentWidth++
			}
		}
		previous = entry
	}
	return out, nil
}
