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

package huffman

import (
	"testing"

	"github.com/protokit/protokit/lib/bitio"
)

// TestConstructABCDEFGH exercises the "Consider the alphabet ABCDEFGH, with
// bit lengths (3, 3, 3, 3, 3, 2, 4, 4)" example from RFC 1951 section 3.2.2.
func TestConstructABCDEFGH(t *testing.T) {
	// symbols: A=0 B=1 C=2 D=3 E=4 F=5 G=6 H=7
	lengths := []uint8{3, 3, 3, 3, 3, 2, 4, 4}
	table, err := Build(lengths)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := map[int]struct {
		code   uint32
		length uint
	}{
		5: {0b00, 2},    // F
		0: {0b010, 3},   // A
		1: {0b011, 3},   // B
		2: {0b100, 3},   // C
		3: {0b101, 3},   // D
		4: {0b110, 3},   // E
		6: {0b1110, 4},  // G
		7: {0b1111, 4},  // H
	}
	for symbol, w := range want {
		code, length, ok := table.Code(symbol)
		if !ok {
			t.Fatalf("symbol %d: not assigned", symbol)
		}
		if code != w.code || length != w.length {
			t.Errorf("symbol %d: got (code=%b len=%d), want (code=%b len=%d)", symbol, code, length, w.code, w.length)
		}
	}
	if table.MinLength() != 2 || table.MaxLength() != 4 {
		t.Errorf("MinLength/MaxLength: got %d/%d, want 2/4", table.MinLength(), table.MaxLength())
	}
}

func TestDecodeHEADFACE(t *testing.T) {
	// Continuing the RFC 1951 example: decoding "1110" (MSB first) should
	// produce the 'G' symbol, and the codes that follow it spell "HEADFACE"
	// (H=1111 E=110 A=010 D=101 F=00 A=010 C=100 E=110).
	lengths := []uint8{3, 3, 3, 3, 3, 2, 4, 4}
	table, err := Build(lengths)
	if err != nil {
		t.Fatal(err)
	}
	var w bitio.Writer
	w.WriteHuffmanCode(0b1110, 4)
	headface := []struct {
		code   uint32
		length uint
	}{{0b1111, 4}, {0b110, 3}, {0b010, 3}, {0b101, 3}, {0b00, 2}, {0b010, 3}, {0b100, 3}, {0b110, 3}}
	for _, c := range headface {
		w.WriteHuffmanCode(c.code, c.length)
	}
	w.Flush()
	r := bitio.NewReader(w.Bytes())
	sym, err := table.Decode(r)
	if err != nil {
		t.Fatal(err)
	}
	if sym != 6 { // G
		t.Errorf("got symbol %d, want 6 (G)", sym)
	}
	want := []int{7, 4, 0, 3, 5, 0, 2, 4} // H E A D F A C E
	for i, ws := range want {
		sym, err := table.Decode(r)
		if err != nil {
			t.Fatalf("HEADFACE symbol %d: %v", i, err)
		}
		if sym != ws {
			t.Errorf("HEADFACE symbol %d: got %d, want %d", i, sym, ws)
		}
	}
}

func TestBuildRejectsOversubscribed(t *testing.T) {
	// Two symbols both of length 1 is already a complete tree; a third
	// symbol of length 1 over-subscribes it.
	if _, err := Build([]uint8{1, 1, 1}); err != ErrBadLengths {
		t.Errorf("got %v, want ErrBadLengths", err)
	}
}

func TestBuildRejectsTooLong(t *testing.T) {
	if _, err := Build([]uint8{16}); err != ErrLengthTooLong {
		t.Errorf("got %v, want ErrLengthTooLong", err)
	}
}

func TestBuildFixedLiteralLengthAlphabet(t *testing.T) {
	// RFC 1951 section 3.2.6: 144x8, 112x9, 24x7, 8x8.
	lengths := make([]uint8, 288)
	i := 0
	for ; i < 144; i++ {
		lengths[i] = 8
	}
	for ; i < 256; i++ {
		lengths[i] = 9
	}
	for ; i < 280; i++ {
		lengths[i] = 7
	}
	for ; i < 288; i++ {
		lengths[i] = 8
	}
	table, err := Build(lengths)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// The literal for 'A' (0x41 = 65) has canonical code 48+65 = 113 =
	// 0b01110001, length 8 (RFC 1951 section 3.2.6: literal codes 0-143
	// start at 0b00110000).
	code, length, ok := table.Code(0x41)
	if !ok || length != 8 || code != 0b01110001 {
		t.Errorf("got (code=%b len=%d ok=%v), want (code=0b01110001 len=8 ok=true)", code, length, ok)
	}
}
