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
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/protokit/protokit/lib/deflate"
	"github.com/protokit/protokit/lib/gzip"
	"github.com/protokit/protokit/lib/lzwz"
)

func readAllStdin() ([]byte, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, errors.Wrap(err, "reading stdin")
	}
	return data, nil
}

func doInflate(args []string) error {
	data, err := readAllStdin()
	if err != nil {
		return err
	}
	out, err := deflate.Decode(data)
	if err != nil {
		return errors.Wrap(err, "inflate")
	}
	_, err = os.Stdout.Write(out)
	return err
}

func doDeflate(args []string) error {
	data, err := readAllStdin()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(deflate.Encode(data))
	return err
}

func doGzip(args []string) error {
	data, err := readAllStdin()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(gzip.Encode(data, gzip.Header{}))
	return err
}

func doGunzip(args []string) error {
	data, err := readAllStdin()
	if err != nil {
		return err
	}
	out, _, err := gzip.Decode(data)
	if err != nil {
		return errors.Wrap(err, "gunzip")
	}
	_, err = os.Stdout.Write(out)
	return err
}

func doCompress(args []string) error {
	fs := flag.NewFlagSet("compress", flag.ExitOnError)
	maxBits := fs.Int("b", 16, "maximum code width in bits (9-16)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	data, err := readAllStdin()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(lzwz.Encode(data, *maxBits))
	return err
}

func doUncompress(args []string) error {
	data, err := readAllStdin()
	if err != nil {
		return err
	}
	out, err := lzwz.Decode(data)
	if err != nil {
		return errors.Wrap(err, "uncompress")
	}
	_, err = os.Stdout.Write(out)
	return err
}
