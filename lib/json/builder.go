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

import "github.com/pkg/errors"

// ErrDuplicateKey is raised when an object literal repeats a key: RFC 8259
// says names SHOULD be unique, and this package makes that a parse error.
var ErrDuplicateKey = errors.New("json: duplicate object key")

// builder is the tree-building Handler: it drives Value construction from
// parser events, rejecting duplicate object keys at parse time.
type builder struct {
	stack   []*Value // one entry per open array/object
	pending string   // key awaiting its value, for the innermost open object
	root    *Value
	err     error
}

// ParseString parses a complete JSON document into a Value tree.
func ParseString(data []byte) (*Value, error) {
	b := &builder{}
	if err := ParseBytes(data, b); err != nil {
		if b.err != nil {
			return nil, b.err
		}
		return nil, err
	}
	return b.root, nil
}

func (b *builder) fail(err error) bool {
	if b.err == nil {
		b.err = err
	}
	return false
}

func (b *builder) top() *Value {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}

func (b *builder) attach(v *Value) {
	top := b.top()
	if top == nil {
		b.root = v
		return
	}
	if top.kind == KindArray {
		top.Append(v)
		return
	}
	top.PutMember(b.pending, v)
}

func (b *builder) StartDocument() bool { return true }
func (b *builder) EndDocument() bool   { return true }

func (b *builder) StartArray() bool {
	v := NewArray()
	b.attach(v)
	b.stack = append(b.stack, v)
	return true
}

func (b *builder) EndArray(count int) bool {
	b.stack = b.stack[:len(b.stack)-1]
	return true
}

func (b *builder) StartObject() bool {
	v := NewObject()
	b.attach(v)
	b.stack = append(b.stack, v)
	return true
}

func (b *builder) OnKey(key string) bool {
	if b.top().Has(key) {
		return b.fail(errors.Wrapf(ErrDuplicateKey, "key %q", key))
	}
	b.pending = key
	return true
}

func (b *builder) EndObject(count int) bool {
	b.stack = b.stack[:len(b.stack)-1]
	return true
}

func (b *builder) StartValue() bool { return true }
func (b *builder) EndValue() bool   { return true }

func (b *builder) StartMember(index int) bool { return true }
func (b *builder) EndMember() bool            { return true }

func (b *builder) OnString(s string) bool {
	b.attach(NewString(s))
	return true
}

func (b *builder) OnNull() bool {
	b.attach(NewNull())
	return true
}

func (b *builder) OnTrue() bool {
	b.attach(NewBool(true))
	return true
}

func (b *builder) OnFalse() bool {
	b.attach(NewBool(false))
	return true
}

func (b *builder) OnNumber(text string) bool {
	b.attach(NewNumber(text))
	return true
}
