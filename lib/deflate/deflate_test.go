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

package deflate

import (
	"bytes"
	"testing"

	"github.com/protokit/protokit/lib/bitio"
	"github.com/protokit/protokit/lib/huffman"
)

// TestDecodeStoredBlock is spec.md section 8 scenario 1.
func TestDecodeStoredBlock(t *testing.T) {
	src := append([]byte{0x01, 0x05, 0x00, 0xFA, 0xFF}, []byte("hello")...)
	got, err := Decode(src)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}
}

// TestDecodeFixedHuffmanLiteral is spec.md section 8 scenario 2: the literal
// code for 'A' is the canonical fixed code 0b01110001 (113), length 8.
func TestDecodeFixedHuffmanLiteral(t *testing.T) {
	var w bitio.Writer
	w.Write(1, 1) // BFINAL
	w.Write(1, 2) // BTYPE = fixed
	w.WriteHuffmanCode(0b01110001, 8)
	w.WriteHuffmanCode(0b0000000, 7) // end-of-block, symbol 256, 7 bits
	w.Flush()

	got, err := Decode(w.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if string(got) != "A" {
		t.Errorf("got %q, want %q", got, "A")
	}
}

// TestDecodeOverlappingBackReference is spec.md section 8 scenario 3: a
// literal 'a' followed by a length-4 distance-1 back-reference yields
// "aaaaa".
func TestDecodeOverlappingBackReference(t *testing.T) {
	litTable, err := huffman.Build(fixedLiteralLengthLengths())
	if err != nil {
		t.Fatal(err)
	}
	distTable, err := huffman.Build(fixedDistanceLengths())
	if err != nil {
		t.Fatal(err)
	}

	var w bitio.Writer
	w.Write(1, 1) // BFINAL
	w.Write(1, 2) // BTYPE = fixed

	code, length, _ := litTable.Code('a')
	w.WriteHuffmanCode(code, length)

	// Length 4 is symbol 257+1=258, base 4, 0 extra bits.
	symbol, extra, extraBits := lengthToSymbol(4)
	code, length, _ = litTable.Code(symbol)
	w.WriteHuffmanCode(code, length)
	if extraBits > 0 {
		w.Write(extra, extraBits)
	}

	dSymbol, dExtra, dExtraBits := distanceToSymbol(1)
	dCode, dLength, _ := distTable.Code(dSymbol)
	w.WriteHuffmanCode(dCode, dLength)
	if dExtraBits > 0 {
		w.Write(dExtra, dExtraBits)
	}

	eobCode, eobLength, _ := litTable.Code(endOfBlockSymbol)
	w.WriteHuffmanCode(eobCode, eobLength)
	w.Flush()

	got, err := Decode(w.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if string(got) != "aaaaa" {
		t.Errorf("got %q, want %q", got, "aaaaa")
	}
}

func TestRoundTrip(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte(""),
		[]byte("a"),
		[]byte("hello, world"),
		bytes.Repeat([]byte("abcabcabcabc"), 100),
		bytes.Repeat([]byte{0}, 70000),
		[]byte("the quick brown fox jumps over the lazy dog. the quick brown fox jumps over the lazy dog."),
	}
	for i, src := range cases {
		encoded := Encode(src)
		decoded, err := Decode(encoded)
		if err != nil {
			t.Fatalf("case %d: Decode: %v", i, err)
		}
		if !bytes.Equal(decoded, src) {
			t.Errorf("case %d: round trip mismatch: got %d bytes, want %d bytes", i, len(decoded), len(src))
		}
	}
}

func TestDecodeRejectsReservedBlockType(t *testing.T) {
	var w bitio.Writer
	w.Write(1, 1)
	w.Write(3, 2) // reserved BTYPE
	w.Flush()
	if _, err := Decode(w.Bytes()); err != ErrReservedBlockType {
		t.Errorf("got %v, want ErrReservedBlockType", err)
	}
}

func TestDecodeRejectsBadStoredLength(t *testing.T) {
	// LEN and NLEN must be bitwise complements.
	src := []byte{0x01, 0x05, 0x00, 0x00, 0x00}
	if _, err := Decode(src); err != ErrBadStoredLength {
		t.Errorf("got %v, want ErrBadStoredLength", err)
	}
}
