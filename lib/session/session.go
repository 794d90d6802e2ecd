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

// Package session is a readiness-driven TCP session multiplexer: it
// accepts connections on a net.Listener, polls each registered
// net.Conn for readiness via a short SetReadDeadline rather than raw
// epoll (the Go runtime netpoller already performs that step), and
// hands whatever bytes accumulate on a connection to a Handler as an
// opaque buffer.
//
// This is an external collaborator (spec.md section 6), not part of
// the core: it is the one package in this module with real
// concurrency, and it never shares core objects (lib/bitio, lib/json,
// lib/uri values) across goroutines — each accepted connection owns
// its own buffer and, where the handler wants one, its own
// lib/httpmsg parser state.
package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Handler processes the bytes accumulated so far on a connection. It
// returns the number of bytes it consumed (the rest stay buffered,
// awaiting more data) and may write a reply directly to conn.
//
// Handlers are called one at a time from the Multiplexer's single
// polling goroutine, so no two Handler calls run concurrently, whether
// for the same connection or for different ones.
type Handler func(conn net.Conn, buf []byte) (consumed int, err error)

// pollInterval is how long a readiness check blocks before moving on
// to the next connection in the registry.
const pollInterval = 50 * time.Millisecond

// Multiplexer accepts connections on a Listener and dispatches
// readable bytes to a Handler, one registered *session per
// connection.
type Multiplexer struct {
	Listener net.Listener
	Handler  Handler

	// MaxBufferSize bounds how much unconsumed input a session may
	// accumulate before it is dropped as misbehaving. Zero means the
	// default of 1<<20 bytes.
	MaxBufferSize int

	mu       sync.Mutex
	sessions map[net.Conn]*session
}

type session struct {
	conn net.Conn
	buf  []byte
}

var ErrBufferFull = errors.New("session: connection exceeded max buffer size")

// Run accepts connections and polls them for readiness until ctx is
// canceled or the listener's Accept fails. It returns the accept loop's
// error, if any; an error on an individual connection is logged and that
// connection is dropped, and is not returned.
func (m *Multiplexer) Run(ctx context.Context) error {
	m.sessions = make(map[net.Conn]*session)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return m.acceptLoop(ctx) })
	g.Go(func() error { return m.pollLoop(ctx) })

	<-ctx.Done()
	m.Listener.Close()
	m.closeAll()

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

func (m *Multiplexer) acceptLoop(ctx context.Context) error {
	for {
		conn, err := m.Listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		slog.Info("sessionAccept", "remote", conn.RemoteAddr())
		m.register(conn)
	}
}

func (m *Multiplexer) register(conn net.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[conn] = &session{conn: conn}
}

func (m *Multiplexer) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for conn := range m.sessions {
		conn.Close()
		delete(m.sessions, conn)
	}
}

func (m *Multiplexer) maxBufferSize() int {
	if m.MaxBufferSize > 0 {
		return m.MaxBufferSize
	}
	return 1 << 20
}

// pollLoop is the housekeeping goroutine: it repeatedly snapshots the
// registry and gives each connection a short readiness window.
func (m *Multiplexer) pollLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		for _, s := range m.snapshot() {
			if err := m.pollOne(s); err != nil {
				slog.Error("sessionError", "remote", s.conn.RemoteAddr(), "err", err)
				m.drop(s.conn)
			}
		}
	}
}

func (m *Multiplexer) snapshot() []*session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

func (m *Multiplexer) drop(conn net.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	conn.Close()
	delete(m.sessions, conn)
}

// pollOne gives one connection a short chance to produce readable
// bytes, appends whatever arrived to its buffer, and invokes Handler
// over the accumulated buffer.
func (m *Multiplexer) pollOne(s *session) error {
	if err := s.conn.SetReadDeadline(time.Now().Add(pollInterval)); err != nil {
		return err
	}
	chunk := make([]byte, 4096)
	n, err := s.conn.Read(chunk)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil
		}
		if errors.Is(err, io.EOF) {
			m.drop(s.conn)
			return nil
		}
		return err
	}
	s.buf = append(s.buf, chunk[:n]...)
	if len(s.buf) > m.maxBufferSize() {
		return ErrBufferFull
	}

	for len(s.buf) > 0 {
		consumed, err := m.Handler(s.conn, s.buf)
		if err != nil {
			return err
		}
		if consumed <= 0 {
			break
		}
		s.buf = s.buf[consumed:]
	}
	return nil
}
