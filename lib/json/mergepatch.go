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

// ApplyMergePatch applies an RFC 7396 JSON Merge Patch to target: if patch
// is an object, each key whose value is null is removed from the result,
// and every other key is merged recursively; any non-object patch replaces
// the target outright. target is not mutated; the result is built over a
// clone.
func ApplyMergePatch(target *Value, patch *Value) *Value {
	return mergePatch(target.Clone(), patch)
}

func mergePatch(target *Value, patch *Value) *Value {
	if !patch.IsObject() {
		return patch.Clone()
	}
	if target == nil || !target.IsObject() {
		target = NewObject()
	}
	for _, key := range patch.Keys() {
		patchVal := patch.Get(key)
		if patchVal.IsNull() {
			target.RemoveMember(key)
			continue
		}
		target.PutMember(key, mergePatch(target.Get(key), patchVal))
	}
	return target
}
