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

// Package huffman builds and decodes canonical Huffman codes, as used by
// DEFLATE (RFC 1951 section 3.2.2).
package huffman

import (
	"errors"

	"github.com/protokit/protokit/lib/bitio"
)

// MaxCodeLength is the longest code length DEFLATE allows.
const MaxCodeLength = 15

// ErrBadLengths is returned by Build when the supplied length vector does
// not satisfy the Kraft inequality (it is over-subscribed), or when no
// symbol has a nonzero length.
var ErrBadLengths = errors.New("huffman: code-length vector violates the Kraft inequality")

// ErrLengthTooLong is returned by Build when a length exceeds MaxCodeLength.
var ErrLengthTooLong = errors.New("huffman: code length exceeds 15 bits")

// ErrCodeOverflow is returned by Build if canonical code assignment would
// produce a code that does not fit in its length; this should not happen
// for a length vector that already passed the Kraft check, and indicates
// an internal inconsistency.
var ErrCodeOverflow = errors.New("huffman: internal: code overflowed its length")

// ErrNoSymbol is returned by Decode when no code matches the bits read.
var ErrNoSymbol = errors.New("huffman: no matching code")

type entry struct {
	length uint8
	code   uint16
}

// Table is a canonical Huffman alphabet: a code-length assignment per
// symbol, plus a decode table keyed by (length, code).
type Table struct {
	entries   []entry // entries[symbol]
	minLength uint8
	maxLength uint8

	// decode[length][code] = symbol + 1, or 0 if unused. Indexing by length
	// keeps the table small; 0 is a safe "not present" sentinel because
	// symbol indices are non-negative and we store symbol+1.
	decode [MaxCodeLength + 1][]int32
}

// MinLength returns the shortest code length in use.
func (t *Table) MinLength() int { return int(t.minLength) }

// MaxLength returns the longest code length in use.
func (t *Table) MaxLength() int { return int(t.maxLength) }

// Code returns the canonical code and length assigned to symbol. ok is
// false if the symbol carries length zero (unused).
func (t *Table) Code(symbol int) (code uint32, length uint, ok bool) {
	e := t.entries[symbol]
	if e.length == 0 {
		return 0, 0, false
	}
	return uint32(e.code), uint(e.length), true
}

// Build constructs a canonical Huffman Table from a vector of code lengths
// indexed by symbol (0 meaning "symbol unused"), following RFC 1951
// section 3.2.2:
//
//  1. count the number of codes at each length;
//  2. compute the first code of each length from the previous length's
//     first code and count;
//  3. walk symbols in ascending index order, assigning each the next code
//     of its length.
func Build(lengths []uint8) (*Table, error) {
	var blCount [MaxCodeLength + 1]int
	for _, l := range lengths {
		if l > MaxCodeLength {
			return nil, ErrLengthTooLong
		}
		blCount[l]++
	}
	// Unused symbols (length 0) take no code space.
	blCount[0] = 0

	// Kraft inequality: sum(2^-length) <= 1. Over-subscribed vectors are
	// rejected by the per-length overflow check below; under-subscribed
	// vectors (including a single used symbol) are accepted.
	code := 0
	var nextCode [MaxCodeLength + 2]int
	for l := 1; l <= MaxCodeLength; l++ {
		code = (code + blCount[l-1]) << 1
		nextCode[l] = code
	}
	// Verify no length's codes overflow their bit width: the last code
	// assigned at length l (nextCode[l] + blCount[l] - 1) must be < 2^l.
	for l := 1; l <= MaxCodeLength; l++ {
		if blCount[l] == 0 {
			continue
		}
		if last := nextCode[l] + blCount[l] - 1; last >= (1 << uint(l)) {
			return nil, ErrBadLengths
		}
	}

	t := &Table{entries: make([]entry, len(lengths))}
	for symbol, length := range lengths {
		if length == 0 {
			continue
		}
		c := nextCode[length]
		nextCode[length]++
		if c >= (1 << uint(length)) {
			return nil, ErrCodeOverflow
		}
		t.entries[symbol] = entry{length: length, code: uint16(c)}
		if t.minLength == 0 || length < t.minLength {
			t.minLength = length
		}
		if length > t.maxLength {
			t.maxLength = length
		}
	}
	if len(t.entries) > 0 && t.maxLength == 0 {
		return nil, ErrBadLengths
	}

	for l := 1; l <= int(t.maxLength); l++ {
		t.decode[l] = make([]int32, 1<<uint(l))
	}
	for symbol, e := range t.entries {
		if e.length == 0 {
			continue
		}
		t.decode[e.length][e.code] = int32(symbol) + 1
	}
	return t, nil
}

// Decode reads one symbol from r: MinLength bits are read MSB-first into an
// accumulator, then one more bit is shifted in at a time until (length,
// accumulator) names a used code or length exceeds MaxLength.
func (t *Table) Decode(r *bitio.Reader) (int, error) {
	if t.maxLength == 0 {
		return 0, ErrNoSymbol
	}
	var acc uint32
	length := uint(t.minLength)
	if length == 0 {
		length = 1
	}
	for i := uint(0); i < length; i++ {
		bit, err := r.Read(1)
		if err != nil {
			return 0, err
		}
		acc = (acc << 1) | uint32(bit)
	}
	for {
		if int(acc) < len(t.decode[length]) {
			if sym := t.decode[length][acc]; sym != 0 {
				return int(sym - 1), nil
			}
		}
		length++
		if length > uint(t.maxLength) {
			return 0, ErrNoSymbol
		}
		bit, err := r.Read(1)
		if err != nil {
			return 0, err
		}
		acc = (acc << 1) | uint32(bit)
	}
}
