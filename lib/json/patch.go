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

var (
	ErrInvalidPatchOp  = errors.New("json: invalid JSON Patch operation")
	ErrTestFailed      = errors.New("json: JSON Patch \"test\" operation failed")
	ErrMoveIntoSelf    = errors.New("json: JSON Patch \"move\" from is a prefix of path")
)

// ApplyPatch applies an RFC 6902 JSON Patch (an array of operation objects)
// to target, returning a new document on success. target is never mutated:
// operations run on a clone, committed only if every operation succeeds
// (spec.md section 7 — a failed batch leaves the original untouched).
func ApplyPatch(target *Value, patch *Value) (*Value, error) {
	if !patch.IsArray() {
		return nil, errors.Wrap(ErrInvalidPatchOp, "patch document must be an array")
	}
	doc := target.Clone()
	for i := 0; i < patch.Len(); i++ {
		op := patch.At(i)
		if err := applyOne(&doc, op); err != nil {
			return nil, errors.Wrapf(err, "operation %d", i)
		}
	}
	return doc, nil
}

func applyOne(doc **Value, op *Value) error {
	if !op.IsObject() {
		return errors.Wrap(ErrInvalidPatchOp, "patch operation must be an object")
	}
	opName := op.Get("op")
	pathVal := op.Get("path")
	if opName == nil || !opName.IsString() || pathVal == nil || !pathVal.IsString() {
		return errors.Wrap(ErrInvalidPatchOp, "operation requires string \"op\" and \"path\"")
	}
	path, err := ParsePointer(pathVal.String())
	if err != nil {
		return err
	}

	switch opName.String() {
	case "add":
		val := op.Get("value")
		if val == nil {
			return errors.Wrap(ErrInvalidPatchOp, "\"add\" requires \"value\"")
		}
		return addAt(doc, path, val.Clone())
	case "remove":
		return removeAt(doc, path)
	case "replace":
		val := op.Get("value")
		if val == nil {
			return errors.Wrap(ErrInvalidPatchOp, "\"replace\" requires \"value\"")
		}
		if err := removeAt(doc, path); err != nil {
			return err
		}
		return addAt(doc, path, val.Clone())
	case "move":
		fromVal := op.Get("from")
		if fromVal == nil || !fromVal.IsString() {
			return errors.Wrap(ErrInvalidPatchOp, "\"move\" requires string \"from\"")
		}
		from, err := ParsePointer(fromVal.String())
		if err != nil {
			return err
		}
		if from.HasPrefix(path) {
			return ErrMoveIntoSelf
		}
		v, err := Get(*doc, from)
		if err != nil {
			return err
		}
		v = v.Clone()
		if err := removeAt(doc, from); err != nil {
			return err
		}
		return addAt(doc, path, v)
	case "copy":
		fromVal := op.Get("from")
		if fromVal == nil || !fromVal.IsString() {
			return errors.Wrap(ErrInvalidPatchOp, "\"copy\" requires string \"from\"")
		}
		from, err := ParsePointer(fromVal.String())
		if err != nil {
			return err
		}
		v, err := Get(*doc, from)
		if err != nil {
			return err
		}
		return addAt(doc, path, v.Clone())
	case "test":
		val := op.Get("value")
		if val == nil {
			return errors.Wrap(ErrInvalidPatchOp, "\"test\" requires \"value\"")
		}
		actual, err := Get(*doc, path)
		if err != nil {
			return err
		}
		if !testEqual(actual, val) {
			return errors.Wrapf(ErrTestFailed, "at %q", path.String())
		}
		return nil
	default:
		return errors.Wrapf(ErrInvalidPatchOp, "unknown op %q", opName.String())
	}
}

// addAt implements the "add" target semantics: object sets (creating) a
// key, array inserts at an index or appends for "-", root replaces the
// whole document.
func addAt(doc **Value, path Pointer, val *Value) error {
	if path.IsRoot() {
		*doc = val
		return nil
	}
	loc, err := Resolve(*doc, path, true)
	if err != nil {
		return err
	}
	if loc.ParentArray != nil {
		return loc.ParentArray.Insert(loc.ArrayIndex, val)
	}
	loc.ParentObject.PutMember(loc.ObjectKey, val)
	return nil
}

// removeAt implements "remove": the target must already exist.
func removeAt(doc **Value, path Pointer) error {
	if path.IsRoot() {
		*doc = NewNull()
		return nil
	}
	loc, err := Resolve(*doc, path, false)
	if err != nil {
		return err
	}
	if loc.ParentArray != nil {
		return loc.ParentArray.Erase(loc.ArrayIndex)
	}
	return loc.ParentObject.RemoveMember(loc.ObjectKey)
}

// testEqual is structural equality with canonical number comparison, the
// comparator "test" uses in place of Equal's lexical number comparison
// (spec.md section 4.6/4.7).
func testEqual(a, b *Value) bool {
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
		return Canonicalize(a.numberVal).Equal(Canonicalize(b.numberVal))
	case KindString:
		return a.stringVal == b.stringVal
	case KindArray:
		if len(a.array) != len(b.array) {
			return false
		}
		for i := range a.array {
			if !testEqual(a.array[i], b.array[i]) {
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
			if !ok || !testEqual(av, bv) {
				return false
			}
		}
		return true
	}
	return false
}
