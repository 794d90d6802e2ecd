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

// Package json is a structural JSON engine: an event-driven parser over a
// pluggable character source, an ordered-member value tree, a serializer
// built on the same handler interface as the parser, and RFC 6901/6902/7396
// (Pointer, Patch, Merge Patch) evaluators on top of the tree.
package json

import "github.com/pkg/errors"

// Kind identifies the tagged variant a Value currently holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Value is the tagged union: null, bool, number, string, array, or object.
//
// number is retained as its original lexical text, not a parsed float, so
// round-tripping never loses precision or formatting; CanonicalNumber
// derives a comparable normal form on demand.
//
// object preserves insertion order of distinct keys: keys is the
// first-occurrence order and members is the key-to-value map, kept in sync
// by every mutator in this file. Array is a plain ordered slice.
type Value struct {
	kind Kind

	boolVal   bool
	numberVal string
	stringVal string

	array []*Value

	keys    []string
	members map[string]*Value
}

// NewNull returns a null value.
func NewNull() *Value { return &Value{kind: KindNull} }

// NewBool returns a bool value.
func NewBool(b bool) *Value { return &Value{kind: KindBool, boolVal: b} }

// NewNumber returns a number value. text must already be a valid JSON
// number lexeme; callers constructing values programmatically are
// responsible for that invariant (ParseString enforces it when parsing
// untrusted input).
func NewNumber(text string) *Value { return &Value{kind: KindNumber, numberVal: text} }

// NewString returns a string value holding UTF-8 text.
func NewString(s string) *Value { return &Value{kind: KindString, stringVal: s} }

// NewArray returns an empty array value.
func NewArray() *Value { return &Value{kind: KindArray} }

// NewObject returns an empty object value.
func NewObject() *Value { return &Value{kind: KindObject, members: map[string]*Value{}} }

func (v *Value) Kind() Kind { return v.kind }

func (v *Value) IsNull() bool   { return v.kind == KindNull }
func (v *Value) IsBool() bool   { return v.kind == KindBool }
func (v *Value) IsNumber() bool { return v.kind == KindNumber }
func (v *Value) IsString() bool { return v.kind == KindString }
func (v *Value) IsArray() bool  { return v.kind == KindArray }
func (v *Value) IsObject() bool { return v.kind == KindObject }

// Bool returns the boolean payload; only meaningful when Kind() == KindBool.
func (v *Value) Bool() bool { return v.boolVal }

// NumberText returns the number's lexical text; only meaningful when
// Kind() == KindNumber.
func (v *Value) NumberText() string { return v.numberVal }

// String returns the string payload; only meaningful when Kind() ==
// KindString.
func (v *Value) String() string { return v.stringVal }

// Len returns the array length or object member count; zero for every
// other kind.
func (v *Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.array)
	case KindObject:
		return len(v.keys)
	}
	return 0
}

// At returns the array element at index, or nil if out of range.
func (v *Value) At(index int) *Value {
	if v.kind != KindArray || index < 0 || index >= len(v.array) {
		return nil
	}
	return v.array[index]
}

// Append adds elem to the end of an array.
func (v *Value) Append(elem *Value) {
	v.array = append(v.array, elem)
}

var ErrIndexOutOfRange = errors.New("json: array index out of range")

// Insert places elem at index, shifting later elements right. index must be
// in [0, Len()].
func (v *Value) Insert(index int, elem *Value) error {
	if v.kind != KindArray || index < 0 || index > len(v.array) {
		return ErrIndexOutOfRange
	}
	v.array = append(v.array, nil)
	copy(v.array[index+1:], v.array[index:])
	v.array[index] = elem
	return nil
}

// Set replaces the array element at index.
func (v *Value) Set(index int, elem *Value) error {
	if v.kind != KindArray || index < 0 || index >= len(v.array) {
		return ErrIndexOutOfRange
	}
	v.array[index] = elem
	return nil
}

// Erase removes the array element at index.
func (v *Value) Erase(index int) error {
	if v.kind != KindArray || index < 0 || index >= len(v.array) {
		return ErrIndexOutOfRange
	}
	v.array = append(v.array[:index], v.array[index+1:]...)
	return nil
}

// Keys returns the object's keys in first-occurrence (insertion) order.
// The caller must not mutate the returned slice.
func (v *Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	return v.keys
}

// Get returns the object member for key, or nil if absent.
func (v *Value) Get(key string) *Value {
	if v.kind != KindObject {
		return nil
	}
	return v.members[key]
}

// Has reports whether the object has key.
func (v *Value) Has(key string) bool {
	if v.kind != KindObject {
		return false
	}
	_, ok := v.members[key]
	return ok
}

// PutMember inserts or replaces an object member. Inserting an existing key
// replaces its value without changing key order.
func (v *Value) PutMember(key string, val *Value) {
	if v.kind != KindObject {
		panic("json: PutMember on a non-object Value")
	}
	if v.members == nil {
		v.members = map[string]*Value{}
	}
	if _, exists := v.members[key]; !exists {
		v.keys = append(v.keys, key)
	}
	v.members[key] = val
}

var ErrNoSuchKey = errors.New("json: no such object key")

// RemoveMember deletes an object member, updating both the key sequence and
// the map.
func (v *Value) RemoveMember(key string) error {
	if v.kind != KindObject {
		return ErrNoSuchKey
	}
	if _, ok := v.members[key]; !ok {
		return ErrNoSuchKey
	}
	delete(v.members, key)
	for i, k := range v.keys {
		if k == key {
			v.keys = append(v.keys[:i], v.keys[i+1:]...)
			break
		}
	}
	return nil
}

// Clone returns a deep independent copy.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	switch v.kind {
	case KindArray:
		out := NewArray()
		out.array = make([]*Value, len(v.array))
		for i, e := range v.array {
			out.array[i] = e.Clone()
		}
		return out
	case KindObject:
		out := NewObject()
		out.keys = append([]string(nil), v.keys...)
		for k, e := range v.members {
			out.members[k] = e.Clone()
		}
		return out
	default:
		cp := *v
		return &cp
	}
}

// Equal is recursive structural equality: type-strict, order-strict for
// arrays, order-insensitive for objects (same key set, pairwise equal
// values). Numbers compare by lexical text equality, not canonical value;
// use CanonicalNumber-based comparison for JSON Patch "test" semantics.
func Equal(a, b *Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.boolVal == b.boolVal
	case KindNumber:
		return a.numberVal == b.numberVal
	case KindString:
		return a.stringVal == b.stringVal
	case KindArray:
		if len(a.array) != len(b.array) {
			return false
		}
		for i := range a.array {
			if !Equal(a.array[i], b.array[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.keys) != len(b.keys) {
			return false
		}
		for k, av := range a.members {
			bv, ok := b.members[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	}
	return false
}
