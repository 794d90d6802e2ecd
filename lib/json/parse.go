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

package json

import (
	"fmt"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// ErrSyntax reports a grammar violation at a byte offset.
type ErrSyntax struct {
	Offset int
	Msg    string
}

func (e *ErrSyntax) Error() string {
	return fmt.Sprintf("json: syntax error at offset %d: %s", e.Offset, e.Msg)
}

func syntaxErrorf(src Source, format string, args ...interface{}) error {
	return &ErrSyntax{Offset: src.Offset(), Msg: fmt.Sprintf(format, args...)}
}

// ErrHandlerAborted is returned when a Handler method returns false.
var ErrHandlerAborted = errors.New("json: handler aborted the parse")

type parser struct {
	src Source
	h   Handler
}

// Parse drives h over the JSON document in src (RFC 8259 grammar: value =
// object | array | string | number | true | false | null). It consumes the
// whole of src in one call; there is no incremental or resumable mode at
// this layer.
func Parse(src Source, h Handler) error {
	p := &parser{src: src, h: h}
	if !p.h.StartDocument() {
		return ErrHandlerAborted
	}
	p.skipWhitespace()
	if err := p.parseValue(); err != nil {
		return err
	}
	p.skipWhitespace()
	if !p.src.EOF() {
		return syntaxErrorf(p.src, "trailing data after document")
	}
	if !p.h.EndDocument() {
		return ErrHandlerAborted
	}
	return nil
}

// ParseBytes is a convenience wrapper around Parse for in-memory input.
func ParseBytes(data []byte, h Handler) error {
	return Parse(newByteSource(data), h)
}

func (p *parser) skipWhitespace() {
	for !p.src.EOF() {
		switch p.src.Peek() {
		case ' ', '\t', '\r', '\n':
			p.src.Advance(1)
		default:
			return
		}
	}
}

func (p *parser) parseValue() error {
	if !p.h.StartValue() {
		return ErrHandlerAborted
	}
	if p.src.EOF() {
		return syntaxErrorf(p.src, "unexpected end of input, expected a value")
	}
	var err error
	switch c := p.src.Peek(); {
	case c == '{':
		err = p.parseObject()
	case c == '[':
		err = p.parseArray()
	case c == '"':
		err = p.parseString()
	case c == 't':
		err = p.parseLiteral("true", p.h.OnTrue)
	case c == 'f':
		err = p.parseLiteral("false", p.h.OnFalse)
	case c == 'n':
		err = p.parseLiteral("null", p.h.OnNull)
	case c == '-' || (c >= '0' && c <= '9'):
		err = p.parseNumber()
	default:
		err = syntaxErrorf(p.src, "unexpected character %q, expected a value", c)
	}
	if err != nil {
		return err
	}
	if !p.h.EndValue() {
		return ErrHandlerAborted
	}
	return nil
}

func (p *parser) parseLiteral(word string, emit func() bool) error {
	buf := p.src.Fetch(len(word))
	if string(buf) != word {
		return syntaxErrorf(p.src, "invalid literal, expected %q", word)
	}
	p.src.Advance(len(word))
	if !emit() {
		return ErrHandlerAborted
	}
	return nil
}

func (p *parser) parseArray() error {
	p.src.Advance(1) // '['
	if !p.h.StartArray() {
		return ErrHandlerAborted
	}
	p.skipWhitespace()
	count := 0
	if !p.src.EOF() && p.src.Peek() == ']' {
		p.src.Advance(1)
		if !p.h.EndArray(count) {
			return ErrHandlerAborted
		}
		return nil
	}
	for {
		if !p.h.StartMember(count) {
			return ErrHandlerAborted
		}
		p.skipWhitespace()
		if err := p.parseValue(); err != nil {
			return err
		}
		if !p.h.EndMember() {
			return ErrHandlerAborted
		}
		count++
		p.skipWhitespace()
		if p.src.EOF() {
			return syntaxErrorf(p.src, "unterminated array")
		}
		switch p.src.Peek() {
		case ',':
			p.src.Advance(1)
			p.skipWhitespace()
			continue
		case ']':
			p.src.Advance(1)
			if !p.h.EndArray(count) {
				return ErrHandlerAborted
			}
			return nil
		default:
			return syntaxErrorf(p.src, "expected ',' or ']' in array")
		}
	}
}

func (p *parser) parseObject() error {
	p.src.Advance(1) // '{'
	if !p.h.StartObject() {
		return ErrHandlerAborted
	}
	p.skipWhitespace()
	count := 0
	if !p.src.EOF() && p.src.Peek() == '}' {
		p.src.Advance(1)
		if !p.h.EndObject(count) {
			return ErrHandlerAborted
		}
		return nil
	}
	for {
		if !p.h.StartMember(count) {
			return ErrHandlerAborted
		}
		p.skipWhitespace()
		if p.src.EOF() || p.src.Peek() != '"' {
			return syntaxErrorf(p.src, "expected a string key in object")
		}
		key, err := p.readStringLiteral()
		if err != nil {
			return err
		}
		if !p.h.OnKey(key) {
			return ErrHandlerAborted
		}
		p.skipWhitespace()
		if p.src.EOF() || p.src.Peek() != ':' {
			return syntaxErrorf(p.src, "expected ':' after object key")
		}
		p.src.Advance(1)
		p.skipWhitespace()
		if err := p.parseValue(); err != nil {
			return err
		}
		if !p.h.EndMember() {
			return ErrHandlerAborted
		}
		count++
		p.skipWhitespace()
		if p.src.EOF() {
			return syntaxErrorf(p.src, "unterminated object")
		}
		switch p.src.Peek() {
		case ',':
			p.src.Advance(1)
			p.skipWhitespace()
			continue
		case '}':
			p.src.Advance(1)
			if !p.h.EndObject(count) {
				return ErrHandlerAborted
			}
			return nil
		default:
			return syntaxErrorf(p.src, "expected ',' or '}' in object")
		}
	}
}

func (p *parser) parseString() error {
	s, err := p.readStringLiteral()
	if err != nil {
		return err
	}
	if !p.h.OnString(s) {
		return ErrHandlerAborted
	}
	return nil
}

// readStringLiteral reads a JSON string (the source positioned at the
// opening quote), first copying raw content up to the closing quote while
// tracking only escapes, then unescaping that raw text in a second pass
// (spec.md section 4.5's two-pass string decoding).
func (p *parser) readStringLiteral() (string, error) {
	p.src.Advance(1) // opening '"'
	var raw []byte
	for {
		if p.src.EOF() {
			return "", syntaxErrorf(p.src, "unterminated string")
		}
		c := p.src.Get()
		if c == '"' {
			break
		}
		if c < 0x20 {
			return "", syntaxErrorf(p.src, "raw control byte 0x%02x inside string", c)
		}
		raw = append(raw, c)
		if c == '\\' {
			if p.src.EOF() {
				return "", syntaxErrorf(p.src, "unterminated escape sequence")
			}
			raw = append(raw, p.src.Get())
		}
	}
	return unescapeString(raw, p.src)
}

func unescapeString(raw []byte, src Source) (string, error) {
	var out []byte
	i := 0
	for i < len(raw) {
		c := raw[i]
		if c != '\\' {
			out = append(out, c)
			i++
			continue
		}
		i++
		if i >= len(raw) {
			return "", syntaxErrorf(src, "dangling escape")
		}
		switch raw[i] {
		case '"':
			out = append(out, '"')
			i++
		case '\\':
			out = append(out, '\\')
			i++
		case '/':
			out = append(out, '/')
			i++
		case 'b':
			out = append(out, '\b')
			i++
		case 'f':
			out = append(out, '\f')
			i++
		case 'n':
			out = append(out, '\n')
			i++
		case 'r':
			out = append(out, '\r')
			i++
		case 't':
			out = append(out, '\t')
			i++
		case 'u':
			cp, consumed, err := decodeUnicodeEscape(raw[i:], src)
			if err != nil {
				return "", err
			}
			var buf [utf8.UTFMax]byte
			n := utf8.EncodeRune(buf[:], cp)
			out = append(out, buf[:n]...)
			i += consumed
		default:
			return "", syntaxErrorf(src, "invalid escape \\%c", raw[i])
		}
	}
	return string(out), nil
}

// decodeUnicodeEscape decodes a \uXXXX escape (s starts at the 'u'),
// combining a surrogate pair into one code point when present. It returns
// the number of input bytes consumed starting at s[0].
func decodeUnicodeEscape(s []byte, src Source) (rune, int, error) {
	if len(s) < 5 || s[0] != 'u' {
		return 0, 0, syntaxErrorf(src, "truncated \\u escape")
	}
	hi, err := parseHex4(s[1:5])
	if err != nil {
		return 0, 0, syntaxErrorf(src, "invalid \\u escape")
	}
	if hi < 0xD800 || hi > 0xDBFF {
		return rune(hi), 5, nil
	}
	// High surrogate: the next six characters must be a \uYYYY low
	// surrogate.
	if len(s) < 11 || s[5] != '\\' || s[6] != 'u' {
		return 0, 0, syntaxErrorf(src, "high surrogate not followed by a low surrogate escape")
	}
	lo, err := parseHex4(s[7:11])
	if err != nil {
		return 0, 0, syntaxErrorf(src, "invalid low surrogate escape")
	}
	if lo < 0xDC00 || lo > 0xDFFF {
		return 0, 0, syntaxErrorf(src, "invalid low surrogate value")
	}
	cp := 0x10000 + (rune(hi)-0xD800)<<10 + (rune(lo) - 0xDC00)
	return cp, 11, nil
}

func parseHex4(s []byte) (uint32, error) {
	var v uint32
	for _, c := range s {
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= uint32(c - '0')
		case c >= 'a' && c <= 'f':
			v |= uint32(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v |= uint32(c-'A') + 10
		default:
			return 0, errors.New("json: invalid hex digit in \\u escape")
		}
	}
	return v, nil
}

// parseNumber consumes the RFC 8259 number lexeme
// -? (0 | [1-9][0-9]*) (. [0-9]+)? ([eE] [+-]? [0-9]+)? and emits it as text.
func (p *parser) parseNumber() error {
	start := p.src.Offset()
	var buf []byte
	consume := func() {
		buf = append(buf, p.src.Get())
	}

	if !p.src.EOF() && p.src.Peek() == '-' {
		consume()
	}
	if p.src.EOF() || p.src.Peek() < '0' || p.src.Peek() > '9' {
		return syntaxErrorf(p.src, "invalid number at offset %d", start)
	}
	if p.src.Peek() == '0' {
		consume()
	} else {
		for !p.src.EOF() && p.src.Peek() >= '0' && p.src.Peek() <= '9' {
			consume()
		}
	}
	if !p.src.EOF() && p.src.Peek() == '.' {
		consume()
		if p.src.EOF() || p.src.Peek() < '0' || p.src.Peek() > '9' {
			return syntaxErrorf(p.src, "missing digits after decimal point")
		}
		for !p.src.EOF() && p.src.Peek() >= '0' && p.src.Peek() <= '9' {
			consume()
		}
	}
	if !p.src.EOF() && (p.src.Peek() == 'e' || p.src.Peek() == 'E') {
		consume()
		if !p.src.EOF() && (p.src.Peek() == '+' || p.src.Peek() == '-') {
			consume()
		}
		if p.src.EOF() || p.src.Peek() < '0' || p.src.Peek() > '9' {
			return syntaxErrorf(p.src, "missing digits in exponent")
		}
		for !p.src.EOF() && p.src.Peek() >= '0' && p.src.Peek() <= '9' {
			consume()
		}
	}
	if !p.h.OnNumber(string(buf)) {
		return ErrHandlerAborted
	}
	return nil
}
