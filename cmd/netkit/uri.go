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
	"flag"
	"fmt"

	"github.com/pkg/errors"

	"github.com/protokit/protokit/lib/uri"
)

// doURI implements "netkit uri resolve -base <uri> ref [ref...]", printing
// one resolved URI per reference, in order.
func doURI(args []string) error {
	if len(args) == 0 || args[0] != "resolve" {
		return errors.New("usage: netkit uri resolve -base <uri> [-non-strict] ref [ref...]")
	}
	fs := flag.NewFlagSet("uri resolve", flag.ExitOnError)
	baseText := fs.String("base", "", "base URI")
	nonStrict := fs.Bool("non-strict", false, "treat a reference scheme equal to the base's as absent (RFC 3986 section 5.3)")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if *baseText == "" || fs.NArg() == 0 {
		return errors.New("usage: netkit uri resolve -base <uri> [-non-strict] ref [ref...]")
	}

	base, err := uri.Parse(*baseText)
	if err != nil {
		return errors.Wrap(err, "parsing base")
	}
	for _, refText := range fs.Args() {
		ref, err := uri.ParseReference(refText)
		if err != nil {
			return errors.Wrapf(err, "parsing reference %q", refText)
		}
		resolved := uri.Resolve(base, ref, !*nonStrict)
		fmt.Println(resolved.String())
	}
	return nil
}
