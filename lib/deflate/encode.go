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
	"github.com/cespare/xxhash/v2"

	"github.com/protokit/protokit/lib/bitio"
	"github.com/protokit/protokit/lib/huffman"
)

// maxChainLength bounds the number of earlier positions considered per
// 3-byte hash key: an O(n^2)-in-the-worst-case full position set is an
// acceptable-but-slow match finder (spec.md section 9); bounding the chain
// to the most recent candidates keeps encode time roughly linear without
// changing the decoder-observable output (any match found is still a valid
// DEFLATE back-reference).
const maxChainLength = 32

// Encode compresses data into a single-pass, fixed-Huffman-only DEFLATE
// stream (spec.md section 4.4): no dynamic Huffman tables, no heuristics
// beyond a 3-byte hash match.
func Encode(data []byte) []byte {
	var w bitio.Writer
	litTable := fixedLiteralTable()
	distTable := fixedDistanceTable()

	off := 0
	for {
		blockEnd := off + maxStoredBlockLen
		if blockEnd > len(data) {
			blockEnd = len(data)
		}
		last := blockEnd >= len(data)

		bfinal := uint32(0)
		if last {
			bfinal = 1
		}
		w.Write(bfinal, 1)
		w.Write(blockTypeFixed, 2)

		encodeFixedBlockBody(&w, litTable, distTable, data, off, blockEnd)

		off = blockEnd
		if last {
			break
		}
	}
	w.Flush()
	return w.Bytes()
}

// hashKey hashes the 3-byte sequence starting at p using xxhash; the full
// 64-bit hash is the key of the chain map (SPEC_FULL.md's "DOMAIN STACK": a
// real non-cryptographic hash in place of a hand-rolled multiplicative one).
func hashKey(b []byte, p int) uint64 {
	return xxhash.Sum64(b[p : p+3])
}

func encodeFixedBlockBody(w *bitio.Writer, litTable, distTable *huffman.Table, data []byte, start, end int) {
	chains := make(map[uint64][]int)

	emitLiteral := func(b byte) {
		code, length, _ := litTable.Code(int(b))
		w.WriteHuffmanCode(code, length)
	}
	emitMatch := func(length, distance int) {
		symbol, extra, extraBits := lengthToSymbol(length)
		code, codeLen, _ := litTable.Code(symbol)
		w.WriteHuffmanCode(code, codeLen)
		if extraBits > 0 {
			w.Write(extra, extraBits)
		}
		dSymbol, dExtra, dExtraBits := distanceToSymbol(distance)
		dCode, dCodeLen, _ := distTable.Code(dSymbol)
		w.WriteHuffmanCode(dCode, dCodeLen)
		if dExtraBits > 0 {
			w.Write(dExtra, dExtraBits)
		}
	}

	p := start
	for p < end {
		bestLen, bestDist := 0, 0
		if end-p >= minMatchLength {
			key := hashKey(data, p)
			candidates := chains[key]
			tried := 0
			for i := len(candidates) - 1; i >= 0 && tried < maxChainLength; i-- {
				tried++
				cand := candidates[i]
				if p-cand > maxMatchDistance {
					continue
				}
				l := matchLength(data, cand, p, end)
				if l > bestLen {
					bestLen, bestDist = l, p-cand
					if bestLen >= maxMatchLength {
						break
					}
				}
			}
		}

		if bestLen >= minMatchLength {
			emitMatch(bestLen, bestDist)
			// Record every position the match consumed (that still has a
			// full 3-byte key ahead of it) so future matches can reference
			// into the middle of it.
			matchEnd := p + bestLen
			recordLimit := end - minMatchLength + 1
			if recordLimit > matchEnd {
				recordLimit = matchEnd
			}
			for ; p < recordLimit; p++ {
				key := hashKey(data, p)
				chains[key] = appendBounded(chains[key], p)
			}
			p = matchEnd
		} else {
			if end-p >= minMatchLength {
				key := hashKey(data, p)
				chains[key] = appendBounded(chains[key], p)
			}
			emitLiteral(data[p])
			p++
		}
	}

	code, length, _ := litTable.Code(endOfBlockSymbol)
	w.WriteHuffmanCode(code, length)
}

func appendBounded(positions []int, p int) []int {
	positions = append(positions, p)
	if len(positions) > maxChainLength {
		positions = positions[len(positions)-maxChainLength:]
	}
	return positions
}

func matchLength(data []byte, a, b, end int) int {
	n := 0
	for b+n < end && data[a+n] == data[b+n] && n < maxMatchLength {
		n++
	}
	return n
}

func lengthToSymbol(length int) (symbol int, extra uint32, extraBits uint) {
	for i := len(lengthBase) - 1; i >= 0; i-- {
		if length >= lengthBase[i] {
			return 257 + i, uint32(length - lengthBase[i]), lengthExtraBits[i]
		}
	}
	panic("deflate: internal: length below minimum match length")
}

func distanceToSymbol(distance int) (symbol int, extra uint32, extraBits uint) {
	for i := len(distBase) - 1; i >= 0; i-- {
		if distance >= distBase[i] {
			return i, uint32(distance - distBase[i]), distExtraBits[i]
		}
	}
	panic("deflate: internal: distance below 1")
}
