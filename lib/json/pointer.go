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
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrInvalidPointer = errors.New("json: invalid JSON Pointer")
	ErrPointerNotFound = errors.New("json: JSON Pointer does not resolve")
)

// Pointer is a parsed RFC 6901 JSON Pointer: a sequence of reference
// tokens. An empty Pointer denotes the whole document.
type Pointer struct {
	tokens []string
}

// ParsePointer parses an RFC 6901 string into a Pointer. "" denotes the
// root; a nonempty pointer must start with "/".
func ParsePointer(s string) (Pointer, error) {
	if s == "" {
		return Pointer{}, nil
	}
	if s[0] != '/' {
		return Pointer{}, errors.Wrap(ErrInvalidPointer, "must start with '/'")
	}
	parts := strings.Split(s[1:], "/")
	tokens := make([]string, len(parts))
	for i, part := range parts {
		tokens[i] = unescapePointerToken(part)
	}
	return Pointer{tokens: tokens}, nil
}

func unescapePointerToken(s string) string {
	s = strings.ReplaceAll(s, "~1", "/")
	s = strings.ReplaceAll(s, "~0", "~")
	return s
}

func escapePointerToken(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	s = strings.ReplaceAll(s, "/", "~1")
	return s
}

// String re-serializes the pointer to its RFC 6901 string form.
func (p Pointer) String() string {
	var b strings.Builder
	for _, t := range p.tokens {
		b.WriteByte('/')
		b.WriteString(escapePointerToken(t))
	}
	return b.String()
}

// IsRoot reports whether the pointer addresses the document root.
func (p Pointer) IsRoot() bool { return len(p.tokens) == 0 }

// Parent returns all but the last token.
func (p Pointer) Parent() Pointer {
	if len(p.tokens) == 0 {
		return p
	}
	return Pointer{tokens: p.tokens[:len(p.tokens)-1]}
}

// Last returns the final token; only meaningful when !IsRoot().
func (p Pointer) Last() string {
	return p.tokens[len(p.tokens)-1]
}

// HasPrefix reports whether p is a proper prefix of other — used by JSON
// Patch's "move" to reject a from that contains its own destination.
func (p Pointer) HasPrefix(other Pointer) bool {
	if len(p.tokens) >= len(other.tokens) {
		return false
	}
	for i, t := range p.tokens {
		if other.tokens[i] != t {
			return false
		}
	}
	return true
}

// Location is the outcome of evaluating a pointer's last segment against a
// document: exactly one of the three fields below is populated, matching
// spec.md section 4.7's on_root / on_array / on_object visitor shape.
type Location struct {
	IsRoot bool

	ParentArray *Value
	ArrayIndex  int // valid only when ParentArray != nil; may equal len(array) for "-"

	ParentObject *Value
	ObjectKey    string
}

// Resolve walks root along p and classifies the terminal segment. allowMissingKey
// permits the last segment to name an absent object key (for "add"); any
// other missing segment, or a segment through a non-container, is
// ErrPointerNotFound.
func Resolve(root *Value, p Pointer, allowMissingKey bool) (Location, error) {
	if p.IsRoot() {
		return Location{IsRoot: true}, nil
	}
	cur := root
	for i := 0; i < len(p.tokens)-1; i++ {
		next, err := step(cur, p.tokens[i])
		if err != nil {
			return Location{}, err
		}
		cur = next
	}
	last := p.tokens[len(p.tokens)-1]
	switch cur.Kind() {
	case KindArray:
		if last == "-" {
			return Location{ParentArray: cur, ArrayIndex: cur.Len()}, nil
		}
		idx, err := parseArrayIndex(last)
		if err != nil {
			return Location{}, err
		}
		if idx > cur.Len() || (idx == cur.Len() && !allowMissingKey) {
			return Location{}, errors.Wrap(ErrPointerNotFound, "array index out of range")
		}
		return Location{ParentArray: cur, ArrayIndex: idx}, nil
	case KindObject:
		if !cur.Has(last) && !allowMissingKey {
			return Location{}, errors.Wrapf(ErrPointerNotFound, "no such key %q", last)
		}
		return Location{ParentObject: cur, ObjectKey: last}, nil
	default:
		return Location{}, errors.Wrap(ErrPointerNotFound, "segment addresses a non-container")
	}
}

// Get resolves p fully, returning the addressed value (nil, ErrPointerNotFound
// if absent).
func Get(root *Value, p Pointer) (*Value, error) {
	if p.IsRoot() {
		return root, nil
	}
	loc, err := Resolve(root, p, false)
	if err != nil {
		return nil, err
	}
	return locate(loc), nil
}

func locate(loc Location) *Value {
	switch {
	case loc.IsRoot:
		return nil
	case loc.ParentArray != nil:
		return loc.ParentArray.At(loc.ArrayIndex)
	default:
		return loc.ParentObject.Get(loc.ObjectKey)
	}
}

func step(cur *Value, token string) (*Value, error) {
	switch cur.Kind() {
	case KindArray:
		idx, err := parseArrayIndex(token)
		if err != nil {
			return nil, err
		}
		v := cur.At(idx)
		if v == nil {
			return nil, errors.Wrap(ErrPointerNotFound, "array index out of range")
		}
		return v, nil
	case KindObject:
		v := cur.Get(token)
		if v == nil {
			return nil, errors.Wrapf(ErrPointerNotFound, "no such key %q", token)
		}
		return v, nil
	default:
		return nil, errors.Wrap(ErrPointerNotFound, "segment addresses a non-container")
	}
}

func parseArrayIndex(token string) (int, error) {
	if token == "" || (len(token) > 1 && token[0] == '0') {
		return 0, errors.Wrapf(ErrInvalidPointer, "%q is not a valid array index (leading zero)", token)
	}
	n, err := strconv.Atoi(token)
	if err != nil || n < 0 {
		return 0, errors.Wrapf(ErrInvalidPointer, "%q is not a valid array index", token)
	}
	return n, nil
}
