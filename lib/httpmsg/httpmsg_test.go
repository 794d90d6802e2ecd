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

package httpmsg

import (
	"bytes"
	"testing"
)

func TestParseRequestOriginForm(t *testing.T) {
	raw := "GET /b/c/d;p?q HTTP/1.1\r\nHost: a\r\nAccept: */*\r\n\r\nbody-bytes"
	req, n, err := ParseRequest([]byte(raw))
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if req.Method != "GET" || req.Form != OriginForm || req.Version != "HTTP/1.1" {
		t.Fatalf("got %+v", req)
	}
	if req.TargetURI == nil || req.TargetURI.Path != "/b/c/d;p" || req.TargetURI.Query != "q" {
		t.Fatalf("target uri = %+v", req.TargetURI)
	}
	if v, ok := HeaderValue(req.Headers, "host"); !ok || v != "a" {
		t.Errorf("Host header = %q, %v", v, ok)
	}
	if got := raw[n:]; got != "body-bytes" {
		t.Errorf("body offset wrong, got remainder %q", got)
	}
}

func TestParseRequestAsteriskAndAuthorityForms(t *testing.T) {
	req, _, err := ParseRequest([]byte("OPTIONS * HTTP/1.1\r\nHost: a\r\n\r\n"))
	if err != nil || req.Form != AsteriskForm {
		t.Fatalf("asterisk-form: %+v, %v", req, err)
	}
	req, _, err = ParseRequest([]byte("CONNECT a:443 HTTP/1.1\r\nHost: a\r\n\r\n"))
	if err != nil || req.Form != AuthorityForm || req.Target != "a:443" {
		t.Fatalf("authority-form: %+v, %v", req, err)
	}
}

func TestParseRequestAbsoluteForm(t *testing.T) {
	req, _, err := ParseRequest([]byte("GET http://a/b/c HTTP/1.1\r\nHost: a\r\n\r\n"))
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if req.Form != AbsoluteForm || req.TargetURI.Scheme != "http" || req.TargetURI.Host != "a" {
		t.Fatalf("got %+v / %+v", req, req.TargetURI)
	}
}

func TestParseRequestAcceptsBareLF(t *testing.T) {
	req, n, err := ParseRequest([]byte("GET / HTTP/1.1\nHost: a\n\nrest"))
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if req.Method != "GET" {
		t.Fatalf("got %+v", req)
	}
	if got := "GET / HTTP/1.1\nHost: a\n\nrest"[n:]; got != "rest" {
		t.Errorf("body offset wrong, got %q", got)
	}
}

func TestParseRequestTruncated(t *testing.T) {
	if _, _, err := ParseRequest([]byte("GET / HTTP/1.1\r\nHost: a\r\n")); err == nil {
		t.Fatal("expected truncation error")
	}
}

func TestParseResponse(t *testing.T) {
	raw := "HTTP/1.1 404 Not Found\r\nContent-Length: 0\r\n\r\n"
	resp, n, err := ParseResponse([]byte(raw))
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if resp.Version != "HTTP/1.1" || resp.StatusCode != 404 || resp.Reason != "Not Found" {
		t.Fatalf("got %+v", resp)
	}
	if n != len(raw) {
		t.Errorf("consumed %d, want %d", n, len(raw))
	}
}

func TestParseResponseNoReasonPhrase(t *testing.T) {
	resp, _, err := ParseResponse([]byte("HTTP/1.1 204\r\n\r\n"))
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if resp.StatusCode != 204 || resp.Reason != "" {
		t.Fatalf("got %+v", resp)
	}
}

func TestContentLength(t *testing.T) {
	headers := []Header{{Name: "Content-Length", Value: "42"}}
	n, ok, err := ContentLength(headers)
	if err != nil || !ok || n != 42 {
		t.Fatalf("got n=%d ok=%v err=%v", n, ok, err)
	}
	if _, ok, _ := ContentLength(nil); ok {
		t.Error("expected ok=false for absent header")
	}
	if _, _, err := ContentLength([]Header{{Name: "Content-Length", Value: "-1"}}); err == nil {
		t.Error("expected error for negative Content-Length")
	}
}

func TestIsChunked(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{"chunked", true},
		{"gzip, chunked", true},
		{"chunked, gzip", false},
		{"gzip", false},
	}
	for _, c := range cases {
		got := IsChunked([]Header{{Name: "Transfer-Encoding", Value: c.value}})
		if got != c.want {
			t.Errorf("IsChunked(%q) = %v, want %v", c.value, got, c.want)
		}
	}
	if IsChunked(nil) {
		t.Error("IsChunked(nil) = true")
	}
}

func TestDecodeChunkedRoundTrip(t *testing.T) {
	body := []byte("Wikipedia in\r\n\r\nchunks.")
	encoded := EncodeChunked(body)
	got, trailer, err := DecodeChunked(encoded)
	if err != nil {
		t.Fatalf("DecodeChunked: %v", err)
	}
	if !bytes.Equal(got, body) {
		t.Errorf("got %q, want %q", got, body)
	}
	if len(trailer) != 0 {
		t.Errorf("unexpected trailer %+v", trailer)
	}
}

// TestDecodeChunkedRFC7230Example decodes the "Wikipedia in chunks."
// example: three chunks, no chunk extensions, no trailer fields.
func TestDecodeChunkedRFC7230Example(t *testing.T) {
	raw := "4\r\nWiki\r\n5\r\npedia\r\nE\r\n in\r\n\r\nchunks.\r\n0\r\n\r\n"
	got, trailer, err := DecodeChunked([]byte(raw))
	if err != nil {
		t.Fatalf("DecodeChunked: %v", err)
	}
	want := "Wikipedia in\r\n\r\nchunks."
	if string(got) != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if len(trailer) != 0 {
		t.Errorf("unexpected trailer %+v", trailer)
	}
}

func TestDecodeChunkedWithTrailer(t *testing.T) {
	raw := "5\r\nhello\r\n0\r\nX-Checksum: abc123\r\nX-Done: yes\r\n\r\n"
	got, trailer, err := DecodeChunked([]byte(raw))
	if err != nil {
		t.Fatalf("DecodeChunked: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("body = %q", got)
	}
	if len(trailer) != 2 {
		t.Fatalf("got %d trailer fields, want 2: %+v", len(trailer), trailer)
	}
	if v, ok := HeaderValue(trailer, "X-Checksum"); !ok || v != "abc123" {
		t.Errorf("X-Checksum = %q, %v", v, ok)
	}
	if v, ok := HeaderValue(trailer, "X-Done"); !ok || v != "yes" {
		t.Errorf("X-Done = %q, %v", v, ok)
	}
}

// TestDecodeChunkedZeroAndOneTrailer verifies that a body ending in a
// zero-size chunk with no trailer fields yields no trailer, and one with a
// single trailer field yields exactly that field.
func TestDecodeChunkedZeroAndOneTrailer(t *testing.T) {
	noTrailer := "3\r\nabc\r\n0\r\n\r\n"
	_, trailer, err := DecodeChunked([]byte(noTrailer))
	if err != nil {
		t.Fatalf("DecodeChunked (no trailer): %v", err)
	}
	if len(trailer) != 0 {
		t.Errorf("expected no trailer fields, got %+v", trailer)
	}

	oneTrailer := "3\r\nabc\r\n0\r\nX-A: 1\r\n\r\n"
	_, trailer, err = DecodeChunked([]byte(oneTrailer))
	if err != nil {
		t.Fatalf("DecodeChunked (one trailer): %v", err)
	}
	if len(trailer) != 1 || trailer[0].Name != "X-A" {
		t.Errorf("got trailer %+v", trailer)
	}
}

func TestDecodeChunkedTruncated(t *testing.T) {
	if _, _, err := DecodeChunked([]byte("5\r\nhel")); err == nil {
		t.Fatal("expected truncation error")
	}
	if _, _, err := DecodeChunked([]byte("5\r\nhello\r\n0\r\nX-A: 1\r\n")); err == nil {
		t.Fatal("expected truncation error for unterminated trailer")
	}
}

func TestDecodeChunkedBadSize(t *testing.T) {
	if _, _, err := DecodeChunked([]byte("zz\r\nhello\r\n0\r\n\r\n")); err == nil {
		t.Fatal("expected bad chunk size error")
	}
}

func TestDecodeChunkedWithExtension(t *testing.T) {
	got, _, err := DecodeChunked([]byte("5;ext=1\r\nhello\r\n0\r\n\r\n"))
	if err != nil {
		t.Fatalf("DecodeChunked: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("got %q", got)
	}
}

func TestHeaderValueCaseInsensitive(t *testing.T) {
	headers := []Header{{Name: "Content-Type", Value: "text/plain"}}
	if v, ok := HeaderValue(headers, "content-type"); !ok || v != "text/plain" {
		t.Errorf("got %q, %v", v, ok)
	}
}
