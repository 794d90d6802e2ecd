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

package httpmsg

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DecodeChunked decodes a complete chunked-transfer-coding body (RFC 7230
// section 4.1): a sequence of "size[;ext] CRLF chunk-data CRLF" chunks,
// terminated by a zero-size chunk, optional trailer fields, and a final
// CRLF. It returns the decoded body and the trailer fields (if any).
//
// The whole encoded body must already be buffered; there is no
// incremental/streaming mode at this layer (spec.md section 5 — the
// session collaborator re-invokes parsers on accumulated buffers instead).
func DecodeChunked(data []byte) (body []byte, trailer []Header, err error) {
	text := string(data)
	pos := 0
	for {
		lineEnd := indexCRLF(text, pos)
		if lineEnd < 0 {
			return nil, nil, ErrTruncated
		}
		sizeLine := text[pos:lineEnd]
		if idx := strings.IndexByte(sizeLine, ';'); idx >= 0 {
			sizeLine = sizeLine[:idx]
		}
		size, err := strconv.ParseInt(strings.TrimSpace(sizeLine), 16, 64)
		if err != nil || size < 0 {
			return nil, nil, errors.Wrapf(ErrBadChunkSize, "chunk size %q", sizeLine)
		}
		pos = lineEnd + 2

		if size == 0 {
			var trailerLines []string
			for {
				lineEnd := indexCRLF(text, pos)
				if lineEnd < 0 {
					return nil, nil, errors.Wrap(ErrTruncated, "missing trailer terminator")
				}
				line := text[pos:lineEnd]
				consumed := lineEnd + 2
				if !strings.HasPrefix(text[lineEnd:], "\r\n") {
					consumed = lineEnd + 1
				}
				pos = consumed
				if line == "" {
					break
				}
				trailerLines = append(trailerLines, line)
			}
			trailer, err = parseHeaderFields(trailerLines)
			if err != nil {
				return nil, nil, err
			}
			return body, trailer, nil
		}

		end := pos + int(size)
		if end > len(text) {
			return nil, nil, ErrTruncated
		}
		body = append(body, text[pos:end]...)
		pos = end
		if !strings.HasPrefix(text[pos:], "\r\n") && !strings.HasPrefix(text[pos:], "\n") {
			return nil, nil, errors.Wrap(ErrTruncated, "missing CRLF after chunk-data")
		}
		if strings.HasPrefix(text[pos:], "\r\n") {
			pos += 2
		} else {
			pos++
		}
	}
}

func indexCRLF(s string, from int) int {
	rest := s[from:]
	if idx := strings.Index(rest, "\r\n"); idx >= 0 {
		return from + idx
	}
	if idx := strings.IndexByte(rest, '\n'); idx >= 0 {
		return from + idx
	}
	return -1
}

// EncodeChunked frames data as a single chunk followed by the zero-size
// terminating chunk, a convenience encoder for callers that do not need to
// stream output incrementally.
func EncodeChunked(data []byte) []byte {
	var out []byte
	if len(data) > 0 {
		out = append(out, []byte(strconv.FormatInt(int64(len(data)), 16))...)
		out = append(out, '\r', '\n')
		out = append(out, data...)
		out = append(out, '\r', '\n')
	}
	out = append(out, '0', '\r', '\n', '\r', '\n')
	return out
}
