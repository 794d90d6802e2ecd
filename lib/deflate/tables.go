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

// codeOrder is the permutation RFC 1951 section 3.2.7 uses when storing the
// code-length alphabet's own code lengths in a DYNAMIC block header.
var codeOrder = [19]int{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}

// lengthBase and lengthExtraBits are indexed by (symbol - 257) for
// literal/length symbols 257..285, giving the base match length and the
// count of extra bits to add to it (RFC 1951 section 3.2.5).
var lengthBase = [29]int{
	3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 19, 23, 27, 31,
	35, 43, 51, 59, 67, 83, 99, 115, 131, 163, 195, 227, 258,
}
var lengthExtraBits = [29]uint{
	0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2,
	3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 0,
}

// distBase and distExtraBits are indexed by the distance symbol (0..29),
// giving the base distance and the count of extra bits to add to it.
//
// The source this spec was distilled from carries a conflicting, historical
// copy of this table; the values below are the RFC 1951 section 3.2.5
// values (spec.md section 9's correction), and the extra-bit counts satisfy
// extraBits(d) == max(0, d/2 - 1) for distance symbol d, derived from the
// symbol, never from the distance value itself.
var distBase = [30]int{
	1, 2, 3, 4, 5, 7, 9, 13, 17, 25,
	33, 49, 65, 97, 129, 193, 257, 385, 513, 769,
	1025, 1537, 2049, 3073, 4097, 6145, 8193, 12289, 16385, 24577,
}
var distExtraBits = [30]uint{
	0, 0, 0, 0, 1, 1, 2, 2, 3, 3,
	4, 4, 5, 5, 6, 6, 7, 7, 8, 8,
	9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
}

// fixedLiteralLengthLengths and fixedDistanceLengths are the code-length
// vectors for DEFLATE's fixed Huffman alphabets (RFC 1951 section 3.2.6):
// literal/length: 144 symbols of length 8, 112 of length 9, 24 of length 7,
// 8 of length 8; distance: 32 symbols of length 5.
func fixedLiteralLengthLengths() []uint8 {
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
	return lengths
}

func fixedDistanceLengths() []uint8 {
	lengths := make([]uint8, 32)
	for i := range lengths {
		lengths[i] = 5
	}
	return lengths
}

const (
	endOfBlockSymbol = 256

	// maxHLIT is the spec's mandated ceiling (spec.md section 9's
	// correction against a source revision that permitted 288): the
	// encoder never emits a literal/length alphabet larger than this.
	maxHLIT = 286
	maxHDIST = 32
	maxHCLEN = 19

	maxMatchLength  = 258
	minMatchLength  = 3
	maxMatchDistance = 32768

	maxStoredBlockLen = 0xFFFF
)
