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
)

// Walk drives h over v's structure with the same event sequence the parser
// emits, so a single Handler implementation (outputHandler below) serves as
// both a parser target and a serializer.
func Walk(v *Value, h Handler) bool {
	if !h.StartDocument() {
		return false
	}
	if !walkValue(v, h) {
		return false
	}
	return h.EndDocument()
}

func walkValue(v *Value, h Handler) bool {
	if !h.StartValue() {
		return false
	}
	ok := false
	switch v.kind {
	case KindNull:
		ok = h.OnNull()
	case KindBool:
		if v.boolVal {
			ok = h.OnTrue()
		} else {
			ok = h.OnFalse()
		}
	case KindNumber:
		ok = h.OnNumber(v.numberVal)
	case KindString:
		ok = h.OnString(v.stringVal)
	case KindArray:
		ok = walkArray(v, h)
	case KindObject:
		ok = walkObject(v, h)
	}
	if !ok {
		return false
	}
	return h.EndValue()
}

func walkArray(v *Value, h Handler) bool {
	if !h.StartArray() {
		return false
	}
	for i, e := range v.array {
		if !h.StartMember(i) {
			return false
		}
		if !walkValue(e, h) {
			return false
		}
		if !h.EndMember() {
			return false
		}
	}
	return h.EndArray(len(v.array))
}

func walkObject(v *Value, h Handler) bool {
	if !h.StartObject() {
		return false
	}
	for i, k := range v.keys {
		if !h.StartMember(i) {
			return false
		}
		if !h.OnKey(k) {
			return false
		}
		if !walkValue(v.members[k], h) {
			return false
		}
		if !h.EndMember() {
			return false
		}
	}
	return h.EndObject(len(v.keys))
}

// outputHandler concatenates token fragments into compact JSON text (no
// insignificant whitespace, per spec.md section 6).
type outputHandler struct {
	buf        []byte
	needsComma []bool // one entry per open array/object: has it emitted a member yet?
}

func (o *outputHandler) commaIfNeeded() {
	if len(o.needsComma) == 0 {
		return
	}
	top := len(o.needsComma) - 1
	if o.needsComma[top] {
		o.buf = append(o.buf, ',')
	}
	o.needsComma[top] = true
}

func (o *outputHandler) StartDocument() bool { return true }
func (o *outputHandler) EndDocument() bool   { return true }

func (o *outputHandler) StartArray() bool {
	o.commaIfNeeded()
	o.buf = append(o.buf, '[')
	o.needsComma = append(o.needsComma, false)
	return true
}

func (o *outputHandler) EndArray(count int) bool {
	o.needsComma = o.needsComma[:len(o.needsComma)-1]
	o.buf = append(o.buf, ']')
	return true
}

func (o *outputHandler) StartObject() bool {
	o.commaIfNeeded()
	o.buf = append(o.buf, '{')
	o.needsComma = append(o.needsComma, false)
	return true
}

func (o *outputHandler) OnKey(key string) bool {
	o.commaIfNeeded()
	// The comma bookkeeping above already accounted for this member; the
	// value that follows must not add another comma.
	o.needsComma[len(o.needsComma)-1] = false
	o.buf = append(o.buf, encodeJSONString(key)...)
	o.buf = append(o.buf, ':')
	return true
}

func (o *outputHandler) EndObject(count int) bool {
	o.needsComma = o.needsComma[:len(o.needsComma)-1]
	o.buf = append(o.buf, '}')
	return true
}

func (o *outputHandler) StartValue() bool { return true }
func (o *outputHandler) EndValue() bool   { return true }

func (o *outputHandler) StartMember(index int) bool { return true }
func (o *outputHandler) EndMember() bool {
	if len(o.needsComma) > 0 {
		o.needsComma[len(o.needsComma)-1] = true
	}
	return true
}

func (o *outputHandler) OnString(s string) bool {
	o.commaIfNeeded()
	o.buf = append(o.buf, encodeJSONString(s)...)
	return true
}

func (o *outputHandler) OnNull() bool {
	o.commaIfNeeded()
	o.buf = append(o.buf, "null"...)
	return true
}

func (o *outputHandler) OnTrue() bool {
	o.commaIfNeeded()
	o.buf = append(o.buf, "true"...)
	return true
}

func (o *outputHandler) OnFalse() bool {
	o.commaIfNeeded()
	o.buf = append(o.buf, "false"...)
	return true
}

func (o *outputHandler) OnNumber(text string) bool {
	o.commaIfNeeded()
	o.buf = append(o.buf, text...)
	return true
}

func encodeJSONString(s string) string {
	var buf []byte
	buf = append(buf, '"')
	for _, r := range s {
		switch r {
		case '"':
			buf = append(buf, `\"`...)
		case '\\':
			buf = append(buf, `\\`...)
		case '\b':
			buf = append(buf, `\b`...)
		case '\f':
			buf = append(buf, `\f`...)
		case '\n':
			buf = append(buf, `\n`...)
		case '\r':
			buf = append(buf, `\r`...)
		case '\t':
			buf = append(buf, `\t`...)
		default:
			if r < 0x20 {
				buf = append(buf, []byte(fmt.Sprintf(`\u%04x`, r))...)
			} else {
				buf = append(buf, []byte(string(r))...)
			}
		}
	}
	buf = append(buf, '"')
	return string(buf)
}

// Marshal serializes v to compact UTF-8 JSON text.
func Marshal(v *Value) []byte {
	var o outputHandler
	Walk(v, &o)
	return o.buf
}

// Compact parses src and re-serializes it without insignificant whitespace,
// the shape every JSON package in the pack offers as a convenience entry
// point alongside its handler-driven core.
func Compact(src []byte) ([]byte, error) {
	v, err := ParseString(src)
	if err != nil {
		return nil, err
	}
	return Marshal(v), nil
}
