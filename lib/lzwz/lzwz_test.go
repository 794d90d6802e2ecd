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

package lzwz

import (
	"bytes"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte("a"),
		[]byte("hello, hello, hello, world"),
		bytes.Repeat([]byte("TOBEORNOTTOBEORTOBEORNOT"), 50),
		bytes.Repeat([]byte{0x00}, 5000),
	}
	for i, src := range cases {
		encoded := Encode(src, 16)
		decoded, err := Decode(encoded)
		if err != nil {
			t.Fatalf("case %d: Decode: %v", i, err)
		}
		if !bytes.Equal(decoded, src) {
			t.Errorf("case %d: round trip mismatch: got %q, want %q", i, decoded, src)
		}
	}
}

func TestRoundTripSmallMaxBits(t *testing.T) {
	src := bytes.Repeat([]byte("abcdefghij"), 200)
	encoded := Encode(src, 9)
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(decoded, src) {
		t.Errorf("round trip mismatch with max-bits=9")
	}
}

func TestHeaderFraming(t *testing.T) {
	encoded := Encode([]byte("x"), 16)
	if len(encoded) < 3 {
		t.Fatalf("encoded stream too short: %d bytes", len(encoded))
	}
	if encoded[0] != magic0 || encoded[1] != magic1 {
		t.Errorf("bad magic: %x %x", encoded[0], encoded[1])
	}
	if encoded[2]&blockModeFlag == 0 {
		t.Errorf("expected block mode flag set")
	}
	if int(encoded[2]&maxBitsMask) != 16 {
		t.Errorf("max-bits = %d, want 16", encoded[2]&maxBitsMask)
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	if _, err := Decode([]byte{0x00, 0x00, 0x90}); err != ErrBadMagic {
		t.Errorf("got %v, want ErrBadMagic", err)
	}
}

func TestDecodeRejectsBadMaxBits(t *testing.T) {
	src := []byte{magic0, magic1, 0x80 | 20}
	if _, err := Decode(src); err != ErrBadMaxBits {
		t.Errorf("got %v, want ErrBadMaxBits", err)
	}
}

func TestDecodeTruncatedHeader(t *testing.T) {
	if _, err := Decode([]byte{magic0}); err != ErrTruncated {
		t.Errorf("got %v, want ErrTruncated", err)
	}
}
