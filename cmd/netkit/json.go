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

package main

import (
	"os"

	"github.com/pkg/errors"

	"github.com/protokit/protokit/lib/json"
)

var errJSONUsage = errors.New("usage: netkit json fmt|patch <patch.json>|mergepatch <patch.json>|get <pointer>")

func doJSON(args []string) error {
	if len(args) == 0 {
		return errJSONUsage
	}
	switch args[0] {
	case "fmt":
		return doJSONFmt()
	case "patch":
		if len(args) != 2 {
			return errJSONUsage
		}
		return doJSONPatch(args[1])
	case "mergepatch":
		if len(args) != 2 {
			return errJSONUsage
		}
		return doJSONMergePatch(args[1])
	case "get":
		if len(args) != 2 {
			return errJSONUsage
		}
		return doJSONGet(args[1])
	default:
		return errJSONUsage
	}
}

func doJSONFmt() error {
	data, err := readAllStdin()
	if err != nil {
		return err
	}
	out, err := json.Compact(data)
	if err != nil {
		return errors.Wrap(err, "json fmt")
	}
	_, err = os.Stdout.Write(append(out, '\n'))
	return err
}

func doJSONPatch(patchPath string) error {
	target, patch, err := readTargetAndFile(patchPath)
	if err != nil {
		return err
	}
	result, err := json.ApplyPatch(target, patch)
	if err != nil {
		return errors.Wrap(err, "json patch")
	}
	_, err = os.Stdout.Write(append(json.Marshal(result), '\n'))
	return err
}

func doJSONMergePatch(patchPath string) error {
	target, patch, err := readTargetAndFile(patchPath)
	if err != nil {
		return err
	}
	result := json.ApplyMergePatch(target, patch)
	_, err = os.Stdout.Write(append(json.Marshal(result), '\n'))
	return err
}

func doJSONGet(pointerText string) error {
	data, err := readAllStdin()
	if err != nil {
		return err
	}
	root, err := json.ParseString(data)
	if err != nil {
		return errors.Wrap(err, "parsing document")
	}
	ptr, err := json.ParsePointer(pointerText)
	if err != nil {
		return errors.Wrap(err, "parsing pointer")
	}
	v, err := json.Get(root, ptr)
	if err != nil {
		return errors.Wrapf(err, "resolving %q", pointerText)
	}
	_, err = os.Stdout.Write(append(json.Marshal(v), '\n'))
	return err
}

func readTargetAndFile(patchPath string) (target, patch *json.Value, err error) {
	targetBytes, err := readAllStdin()
	if err != nil {
		return nil, nil, err
	}
	target, err = json.ParseString(targetBytes)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parsing target document")
	}
	patchBytes, err := os.ReadFile(patchPath)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading %s", patchPath)
	}
	patch, err = json.ParseString(patchBytes)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parsing patch document")
	}
	return target, patch, nil
}
