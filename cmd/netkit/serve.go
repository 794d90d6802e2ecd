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
	"bytes"
	"context"
	"flag"
	"log/slog"
	"net"
	"os"
	"os/signal"

	"github.com/pkg/errors"

	"github.com/protokit/protokit/lib/session"
)

// doServe runs a toy line-echoing TCP server on lib/session, for manual
// smoke-testing the multiplexer.
func doServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", "127.0.0.1:8080", "address to listen on")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		return errors.Wrapf(err, "listening on %s", *addr)
	}
	slog.Info("serveListening", "addr", ln.Addr())

	m := &session.Multiplexer{
		Listener: ln,
		Handler: func(conn net.Conn, buf []byte) (int, error) {
			idx := bytes.IndexByte(buf, '\n')
			if idx < 0 {
				return 0, nil
			}
			if _, err := conn.Write(buf[:idx+1]); err != nil {
				return 0, err
			}
			return idx + 1, nil
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	return m.Run(ctx)
}
