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

// Package deflate implements the DEFLATE compressed data format (RFC 1951):
// a canonical-Huffman, LZ77 byte stream codec. Inputs and outputs are
// complete in-memory buffers; there is no streaming decoder at this layer
// (spec.md section 5's "no suspension points").
package deflate

import (
	"errors"

	"github.com/protokit/protokit/lib/bitio"
	"github.com/protokit/protokit/lib/huffman"
)

var (
	ErrReservedBlockType  = errors.New("deflate: reserved block type")
	ErrBadStoredLength    = errors.New("deflate: stored block LEN/NLEN mismatch")
	ErrTooManyHLITCodes   = errors.New("deflate: HLIT exceeds 286")
	ErrTooManyHDISTCodes  = errors.New("deflate: HDIST exceeds 32")
	ErrBadRepeatCode      = errors.New("deflate: repeat code 16 with no preceding length")
	ErrBadSymbol          = errors.New("deflate: literal/length symbol out of range")
	ErrDistanceTooFar     = errors.New("deflate: back-reference distance exceeds decoded output")
	ErrTruncated          = errors.New("deflate: truncated stream")
)

const (
	blockTypeStored  = 0
	blockTypeFixed   = 1
	blockTypeDynamic = 2
	blockTypeReserved = 3
)

// Decode decompresses a complete DEFLATE stream, returning the full decoded
// buffer.
func Decode(src []byte) ([]byte, error) {
	r := bitio.NewReader(src)
	var out []byte

	for {
		bfinal, err := r.Read(1)
		if err != nil {
			return nil, wrapTruncated(err)
		}
		btype, err := r.Read(2)
		if err != nil {
			return nil, wrapTruncated(err)
		}

		switch btype {
		case blockTypeStored:
			out, err = decodeStored(r, out)
		case blockTypeFixed:
			out, err = decodeHuffmanBlock(r, out, fixedLiteralTable(), fixedDistanceTable())
		case blockTypeDynamic:
			out, err = decodeDynamicBlock(r, out)
		case blockTypeReserved:
			err = ErrReservedBlockType
		}
		if err != nil {
			return nil, err
		}

		if bfinal == 1 {
			break
		}
	}
	return out, nil
}

func wrapTruncated(err error) error {
	if err == bitio.ErrExhausted {
		return ErrTruncated
	}
	return err
}

func decodeStored(r *bitio.Reader, out []byte) ([]byte, error) {
	r.SkipToByte()
	lenBytes, err := r.ReadAlignedBytes(2)
	if err != nil {
		return nil, wrapTruncated(err)
	}
	nlenBytes, err := r.ReadAlignedBytes(2)
	if err != nil {
		return nil, wrapTruncated(err)
	}
	length := int(lenBytes[0]) | int(lenBytes[1])<<8
	nlen := int(nlenBytes[0]) | int(nlenBytes[1])<<8
	if length != (^nlen)&0xFFFF {
		return nil, ErrBadStoredLength
	}
	data, err := r.ReadAlignedBytes(length)
	if err != nil {
		return nil, wrapTruncated(err)
	}
	return append(out, data...), nil
}

var (
	cachedFixedLiteral  *huffman.Table
	cachedFixedDistance *huffman.Table
)

// fixedLiteralTable and fixedDistanceTable build DEFLATE's two fixed
// alphabets once and reuse them across blocks and across calls, per
// spec.md section 5's "decoder tables ... may be built once ... and reused".
func fixedLiteralTable() *huffman.Table {
	if cachedFixedLiteral == nil {
		t, err := huffman.Build(fixedLiteralLengthLengths())
		if err != nil {
			panic("deflate: internal: fixed literal/length alphabet rejected: " + err.Error())
		}
		cachedFixedLiteral = t
	}
	return cachedFixedLiteral
}

func fixedDistanceTable() *huffman.Table {
	if cachedFixedDistance == nil {
		t, err := huffman.Build(fixedDistanceLengths())
		if err != nil {
			panic("deflate: internal: fixed distance alphabet rejected: " + err.Error())
		}
		cachedFixedDistance = t
	}
	return cachedFixedDistance
}

func decodeDynamicBlock(r *bitio.Reader, out []byte) ([]byte, error) {
	hlitBits, err := r.Read(5)
	if err != nil {
		return nil, wrapTruncated(err)
	}
	hdistBits, err := r.Read(5)
	if err != nil {
		return nil, wrapTruncated(err)
	}
	hclenBits, err := r.Read(4)
	if err != nil {
		return nil, wrapTruncated(err)
	}
	hlit := int(hlitBits) + 257
	hdist := int(hdistBits) + 1
	hclen := int(hclenBits) + 4

	if hlit > maxHLIT {
		return nil, ErrTooManyHLITCodes
	}
	if hdist > maxHDIST {
		return nil, ErrTooManyHDISTCodes
	}
	if hclen > maxHCLEN {
		return nil, errors.New("deflate: HCLEN exceeds 19")
	}

	clLengths := make([]uint8, 19)
	for i := 0; i < hclen; i++ {
		v, err := r.Read(3)
		if err != nil {
			return nil, wrapTruncated(err)
		}
		clLengths[codeOrder[i]] = uint8(v)
	}
	clTable, err := huffman.Build(clLengths)
	if err != nil {
		return nil, err
	}

	total := hlit + hdist
	lengths := make([]uint8, total)
	for i := 0; i < total; {
		symbol, err := clTable.Decode(r)
		if err != nil {
			return nil, err
		}
		switch {
		case symbol <= 15:
			lengths[i] = uint8(symbol)
			i++
		case symbol == 16:
			if i == 0 {
				return nil, ErrBadRepeatCode
			}
			n, err := r.Read(2)
			if err != nil {
				return nil, wrapTruncated(err)
			}
			count := 3 + int(n)
			if i+count > total {
				return nil, errors.New("deflate: repeat code 16 overruns code-length vector")
			}
			prev := lengths[i-1]
			for ; count > 0; count-- {
				lengths[i] = prev
				i++
			}
		case symbol == 17:
			n, err := r.Read(3)
			if err != nil {
				return nil, wrapTruncated(err)
			}
			count := 3 + int(n)
			if i+count > total {
				return nil, errors.New("deflate: repeat code 17 overruns code-length vector")
			}
			i += count
		case symbol == 18:
			n, err := r.Read(7)
			if err != nil {
				return nil, wrapTruncated(err)
			}
			count := 11 + int(n)
			if i+count > total {
				return nil, errors.New("deflate: repeat code 18 overruns code-length vector")
			}
			i += count
		default:
			return nil, ErrBadSymbol
		}
	}

	litTable, err := huffman.Build(lengths[:hlit])
	if err != nil {
		return nil, err
	}
	distTable, err := huffman.Build(lengths[hlit:])
	if err != nil {
		return nil, err
	}
	return decodeHuffmanBlock(r, out, litTable, distTable)
}

// decodeHuffmanBlock decodes the symbol stream of a single FIXED or DYNAMIC
// block, appending to out, per spec.md section 4.3.
func decodeHuffmanBlock(r *bitio.Reader, out []byte, litTable, distTable *huffman.Table) ([]byte, error) {
	for {
		symbol, err := litTable.Decode(r)
		if err != nil {
			return nil, err
		}
		if symbol < 256 {
			out = append(out, byte(symbol))
			continue
		}
		if symbol == endOfBlockSymbol {
			return out, nil
		}
		if symbol > 285 {
			return nil, ErrBadSymbol
		}

		idx := symbol - 257
		extra, err := r.Read(lengthExtraBits[idx])
		if err != nil {
			return nil, wrapTruncated(err)
		}
		length := lengthBase[idx] + int(extra)

		dSymbol, err := distTable.Decode(r)
		if err != nil {
			return nil, err
		}
		if dSymbol > 29 {
			return nil, ErrBadSymbol
		}
		dExtra, err := r.Read(distExtraBits[dSymbol])
		if err != nil {
			return nil, wrapTruncated(err)
		}
		distance := distBase[dSymbol] + int(dExtra)
		if distance > len(out) {
			return nil, ErrDistanceTooFar
		}

		// Copy length bytes one at a time from output.size-distance: this
		// supports the overlapping case where length > distance.
		start := len(out) - distance
		for i := 0; i < length; i++ {
			out = append(out, out[start+i])
		}
	}
}
