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

// Package uri is an RFC 3986 URI parser and reference resolver: a manual
// recursive-descent-free scan over the five optional parts (scheme,
// authority, path, query, fragment), plus the section 5 reference
// resolution algorithm.
//
// This is one of the core packages (spec.md section 1); lib/httpmsg
// consumes it for request-target parsing.
package uri

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// URI holds the five optional parts an RFC 3986 reference may carry.
//
// Path is kept as the raw path string (including any leading "/"), so
// reconstructing a canonical input is a direct concatenation of the
// pieces, per spec.md's "URI value" invariant.
type URI struct {
	HasScheme bool
	Scheme    string

	HasAuthority bool
	HasUserInfo  bool
	UserInfo     string
	Host         string
	HostLiteral  bool // host was a bracketed IP-literal (IPv6address or IPvFuture)
	HasPort      bool
	Port         string

	Path string

	HasQuery bool
	Query    string

	HasFragment bool
	Fragment    string
}

var (
	ErrInvalidURI    = errors.New("uri: invalid URI")
	ErrMissingScheme = errors.New("uri: URI-reference has no scheme")
)

// Parse parses a strict "URI" (scheme required): URI = scheme ":" hier-part
// [ "?" query ] [ "#" fragment ].
func Parse(s string) (*URI, error) {
	u, err := ParseReference(s)
	if err != nil {
		return nil, err
	}
	if !u.HasScheme {
		return nil, ErrMissingScheme
	}
	return u, nil
}

// ParseReference parses a "URI-reference": URI | relative-ref. A relative
// reference has no scheme.
func ParseReference(s string) (*URI, error) {
	u := &URI{}
	rest := s

	if i := schemeEnd(rest); i >= 0 {
		u.HasScheme = true
		u.Scheme = rest[:i]
		rest = rest[i+1:]
	}

	if idx := strings.IndexAny(rest, "#"); idx >= 0 {
		u.HasFragment = true
		u.Fragment = rest[idx+1:]
		rest = rest[:idx]
	}
	if idx := strings.IndexByte(rest, '?'); idx >= 0 {
		u.HasQuery = true
		u.Query = rest[idx+1:]
		rest = rest[:idx]
	}

	if strings.HasPrefix(rest, "//") {
		u.HasAuthority = true
		rest = rest[2:]
		end := strings.IndexAny(rest, "/")
		authority := rest
		if end >= 0 {
			authority = rest[:end]
			rest = rest[end:]
		} else {
			rest = ""
		}
		if err := parseAuthority(authority, u); err != nil {
			return nil, err
		}
	}
	u.Path = rest
	return u, nil
}

// schemeEnd returns the index of the ":" that terminates a leading scheme,
// or -1 if s has no valid scheme prefix. scheme = ALPHA *( ALPHA / DIGIT /
// "+" / "-" / "." )
func schemeEnd(s string) int {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ':':
			if i == 0 {
				return -1
			}
			return i
		case isAlpha(c):
		case i > 0 && (isDigit(c) || c == '+' || c == '-' || c == '.'):
		default:
			return -1
		}
	}
	return -1
}

func isAlpha(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func parseAuthority(authority string, u *URI) error {
	rest := authority
	if idx := strings.LastIndexByte(rest, '@'); idx >= 0 {
		u.HasUserInfo = true
		u.UserInfo = rest[:idx]
		rest = rest[idx+1:]
	}

	if strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return errors.Wrap(ErrInvalidURI, "unterminated IP-literal host")
		}
		u.Host = rest[1:end]
		u.HostLiteral = true
		rest = rest[end+1:]
		if strings.HasPrefix(rest, ":") {
			u.HasPort = true
			u.Port = rest[1:]
		} else if rest != "" {
			return errors.Wrap(ErrInvalidURI, "trailing data after IP-literal host")
		}
		return nil
	}

	if idx := strings.LastIndexByte(rest, ':'); idx >= 0 {
		u.Host = rest[:idx]
		u.HasPort = true
		u.Port = rest[idx+1:]
		if _, err := strconv.Atoi(u.Port); err != nil && u.Port != "" {
			return errors.Wrap(ErrInvalidURI, "non-numeric port")
		}
		return nil
	}
	u.Host = rest
	return nil
}

// String reconstructs the URI's canonical text form.
func (u *URI) String() string {
	var b strings.Builder
	if u.HasScheme {
		b.WriteString(u.Scheme)
		b.WriteByte(':')
	}
	if u.HasAuthority {
		b.WriteString("//")
		if u.HasUserInfo {
			b.WriteString(u.UserInfo)
			b.WriteByte('@')
		}
		if u.HostLiteral {
			b.WriteByte('[')
			b.WriteString(u.Host)
			b.WriteByte(']')
		} else {
			b.WriteString(u.Host)
		}
		if u.HasPort {
			b.WriteByte(':')
			b.WriteString(u.Port)
		}
	}
	b.WriteString(u.Path)
	if u.HasQuery {
		b.WriteByte('?')
		b.WriteString(u.Query)
	}
	if u.HasFragment {
		b.WriteByte('#')
		b.WriteString(u.Fragment)
	}
	return b.String()
}

// QueryParam is one ordered (key, has-equals, value) triple from a raw
// query string, per spec.md section 4.8.
type QueryParam struct {
	Key        string
	HasEquals  bool
	Value      string
}

// QueryParams decomposes the raw query into ordered parameter triples,
// splitting on "&" and ";" and "=" (the widely deployed, if not RFC-
// mandated, convention).
func (u *URI) QueryParams() []QueryParam {
	if !u.HasQuery || u.Query == "" {
		return nil
	}
	var out []QueryParam
	for _, pair := range strings.FieldsFunc(u.Query, func(r rune) bool { return r == '&' || r == ';' }) {
		if idx := strings.IndexByte(pair, '='); idx >= 0 {
			out = append(out, QueryParam{Key: pair[:idx], HasEquals: true, Value: pair[idx+1:]})
		} else {
			out = append(out, QueryParam{Key: pair})
		}
	}
	return out
}
