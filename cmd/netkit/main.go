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

// netkit is a tool for working with DEFLATE/gzip/LZW streams, JSON
// documents, and URI references, and for running a toy TCP echo server.
package main

import (
	"flag"
	"fmt"
	"os"
)

var commands = []struct {
	name string
	do   func(args []string) error
}{
	{"inflate", doInflate},
	{"deflate", doDeflate},
	{"gzip", doGzip},
	{"gunzip", doGunzip},
	{"compress", doCompress},
	{"uncompress", doUncompress},
	{"json", doJSON},
	{"uri", doURI},
	{"serve", doServe},
}

func usage() {
	fmt.Fprintf(os.Stderr, `netkit is a tool for DEFLATE/gzip/LZW, JSON, URI and TCP session work.

Usage:

	netkit command [arguments]

The commands are:

	inflate     decompress a raw DEFLATE stream (stdin to stdout)
	deflate     compress to a raw DEFLATE stream (stdin to stdout)
	gzip        compress to a gzip member (stdin to stdout)
	gunzip      decompress a gzip member (stdin to stdout)
	compress    compress to a .Z (LZW) stream (stdin to stdout)
	uncompress  decompress a .Z (LZW) stream (stdin to stdout)
	json        fmt | patch | mergepatch | get (see "netkit json -h")
	uri         resolve a base URI against references
	serve       run a line-echoing TCP server built on lib/session
`)
}

func main() {
	if err := main1(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func main1() error {
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}
	for _, c := range commands {
		if args[0] == c.name {
			return c.do(args[1:])
		}
	}
	usage()
	os.Exit(1)
	return nil
}
