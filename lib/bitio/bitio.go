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

// Package bitio provides a little-endian bit reader and writer over a byte
// buffer, the shared plumbing that lib/deflate builds on.
//
// Bits within a byte are consumed and emitted least-significant-bit first,
// the order RFC 1951 mandates for everything except the bits of a Huffman
// code itself (see the Writer.WriteHuffmanCode doc comment).
package bitio

import "errors"

// ErrExhausted is returned by Reader methods when the read would need more
// bits than remain in the buffer.
var ErrExhausted = errors.New("bitio: bit stream exhausted")

// Reader is a little-endian bit reader over a byte slice.
//
// The zero value is not usable; construct one with NewReader.
type Reader struct {
	bytes     []byte
	byteCursor int
	bitCursor  uint8 // invariant: bitCursor < 8
}

// NewReader returns a Reader over b. The Reader does not take ownership of
// b's backing array; b must not be mutated while the Reader is in use.
func NewReader(b []byte) *Reader {
	return &Reader{bytes: b}
}

// BitsRemaining returns the number of unread bits.
func (r *Reader) BitsRemaining() int64 {
	return int64(len(r.bytes)-r.byteCursor)*8 - int64(r.bitCursor)
}

// ByteCursor returns the index of the byte currently being consumed.
func (r *Reader) ByteCursor() int {
	return r.byteCursor
}

// Read returns the next k bits (k <= 64), packed least-significant-bit
// first: the first bit read from the stream becomes bit 0 of the result.
// It fails with ErrExhausted if fewer than k bits remain.
func (r *Reader) Read(k uint) (uint64, error) {
	if k > 64 {
		panic("bitio: Read: k > 64")
	}
	if uint64(k) > uint64(r.BitsRemaining()) {
		return 0, ErrExhausted
	}

	var result uint64
	var got uint
	for got < k {
		if r.bitCursor == 0 && k-got >= 8 && r.byteCursor < len(r.bytes) {
			result |= uint64(r.bytes[r.byteCursor]) << got
			r.byteCursor++
			got += 8
			continue
		}
		bit := (r.bytes[r.byteCursor] >> r.bitCursor) & 1
		result |= uint64(bit) << got
		got++
		r.bitCursor++
		if r.bitCursor == 8 {
			r.bitCursor = 0
			r.byteCursor++
		}
	}
	return result, nil
}

// SkipToByte advances the bit cursor to the start of the next byte,
// discarding up to 7 pending bits.
func (r *Reader) SkipToByte() {
	if r.bitCursor != 0 {
		r.bitCursor = 0
		r.byteCursor++
	}
}

// ReadAlignedBytes reads n whole bytes. The reader must be byte-aligned
// (bitCursor == 0); callers needing raw bytes call SkipToByte first, per
// the DEFLATE STORED block framing (spec RFC 1951 section 3.2.4).
func (r *Reader) ReadAlignedBytes(n int) ([]byte, error) {
	if r.bitCursor != 0 {
		panic("bitio: ReadAlignedBytes: reader is not byte-aligned")
	}
	if n < 0 || r.byteCursor+n > len(r.bytes) {
		return nil, ErrExhausted
	}
	out := r.bytes[r.byteCursor : r.byteCursor+n]
	r.byteCursor += n
	return out, nil
}

// Advance moves the cursor forward by k bits without returning them.
func (r *Reader) Advance(k uint) error {
	if uint64(k) > uint64(r.BitsRemaining()) {
		return ErrExhausted
	}
	total := uint(r.bitCursor) + k
	r.byteCursor += int(total / 8)
	r.bitCursor = uint8(total % 8)
	return nil
}

// Writer is a little-endian bit writer, accumulating whole bytes into an
// internal buffer as they fill.
//
// The zero value is ready to use.
type Writer struct {
	out         []byte
	pendingByte uint32 // only the low usedBits bits are meaningful
	usedBits    uint8  // invariant: usedBits < 8
}

// Bytes returns the bytes written so far. Flush must be called first if any
// bits are still pending.
func (w *Writer) Bytes() []byte {
	return w.out
}

// Write emits the low k bits (k <= 32) of value, least-significant-bit
// first, flushing whole bytes to the output buffer as they fill.
func (w *Writer) Write(value uint32, k uint) {
	if k > 32 {
		panic("bitio: Write: k > 32")
	}
	w.pendingByte |= (value & (uint32(1)<<k - 1)) << w.usedBits
	total := uint(w.usedBits) + k
	for total >= 8 {
		w.out = append(w.out, uint8(w.pendingByte))
		w.pendingByte >>= 8
		total -= 8
	}
	w.usedBits = uint8(total)
}

// WriteHuffmanCode emits a Huffman code's length bits most-significant-bit
// first: this is the one place DEFLATE's bit order differs from the
// default least-significant-bit-first emission (spec section 4.1).
func (w *Writer) WriteHuffmanCode(code uint32, length uint) {
	for i := uint(0); i < length; i++ {
		bit := (code >> (length - 1 - i)) & 1
		w.Write(bit, 1)
	}
}

// Flush pads the final partial byte with zero bits and appends it, if any
// bits are pending. After Flush, usedBits == 0.
func (w *Writer) Flush() {
	if w.usedBits != 0 {
		w.out = append(w.out, uint8(w.pendingByte))
		w.pendingByte = 0
		w.usedBits = 0
	}
}
