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

package uri

import "testing"

func TestParseReferenceRoundTrip(t *testing.T) {
	cases := []string{
		"http://a/b/c/d;p?q",
		"g:h", "g", "./g", "g/", "/g", "//g", "?y", "g?y", "#s", "g#s",
		"g?y#s", ";x", "g;x", "g;x?y#s", "", ".", "./", "..", "../",
		"../g", "../..", "../../", "../../g",
	}
	for _, s := range cases {
		u, err := ParseReference(s)
		if err != nil {
			t.Fatalf("%q: ParseReference: %v", s, err)
		}
		if got := u.String(); got != s {
			t.Errorf("%q: round trip got %q", s, got)
		}
	}
}

// TestRFC3986Section5_4 is the full normal/abnormal reference-resolution
// table against the base URI "http://a/b/c/d;p?q".
func TestRFC3986Section5_4(t *testing.T) {
	base, err := Parse("http://a/b/c/d;p?q")
	if err != nil {
		t.Fatalf("Parse(base): %v", err)
	}
	cases := []struct {
		ref    string
		want   string
		strict bool
	}{
		// Normal examples.
		{"g:h", "g:h", true},
		{"g", "http://a/b/c/g", true},
		{"./g", "http://a/b/c/g", true},
		{"g/", "http://a/b/c/g/", true},
		{"/g", "http://a/g", true},
		{"//g", "http://g", true},
		{"?y", "http://a/b/c/d;p?y", true},
		{"g?y", "http://a/b/c/g?y", true},
		{"#s", "http://a/b/c/d;p?q#s", true},
		{"g#s", "http://a/b/c/g#s", true},
		{"g?y#s", "http://a/b/c/g?y#s", true},
		{";x", "http://a/b/c/;x", true},
		{"g;x", "http://a/b/c/g;x", true},
		{"g;x?y#s", "http://a/b/c/g;x?y#s", true},
		{"", "http://a/b/c/d;p?q", true},
		{".", "http://a/b/c/", true},
		{"./", "http://a/b/c/", true},
		{"..", "http://a/b/", true},
		{"../", "http://a/b/", true},
		{"../g", "http://a/b/g", true},
		{"../..", "http://a/", true},
		{"../../", "http://a/", true},
		{"../../g", "http://a/g", true},
		// Abnormal examples.
		{"../../../g", "http://a/g", true},
		{"../../../../g", "http://a/g", true},
		{"/./g", "http://a/g", true},
		{"/../g", "http://a/g", true},
		{"g.", "http://a/b/c/g.", true},
		{".g", "http://a/b/c/.g", true},
		{"g..", "http://a/b/c/g..", true},
		{"..g", "http://a/b/c/..g", true},
		{"./../g", "http://a/b/g", true},
		{"./g/.", "http://a/b/c/g/", true},
		{"g/./h", "http://a/b/c/g/h", true},
		{"g/../h", "http://a/b/c/h", true},
		{"g;x=1/./y", "http://a/b/c/g;x=1/y", true},
		{"g;x=1/../y", "http://a/b/c/y", true},
		{"g?y/./x", "http://a/b/c/g?y/./x", true},
		{"g?y/../x", "http://a/b/c/g?y/../x", true},
		{"g#s/./x", "http://a/b/c/g#s/./x", true},
		{"g#s/../x", "http://a/b/c/g#s/../x", true},
		{"http:g", "http:g", true},
		{"http:g", "http://a/b/c/g", false},
	}
	for _, c := range cases {
		ref, err := ParseReference(c.ref)
		if err != nil {
			t.Fatalf("%q: ParseReference: %v", c.ref, err)
		}
		if got := ref.String(); got != c.ref {
			t.Fatalf("%q: reference round trip got %q", c.ref, got)
		}
		got := Resolve(base, ref, c.strict).String()
		if got != c.want {
			t.Errorf("resolve(base, %q, strict=%v) = %q, want %q", c.ref, c.strict, got, c.want)
		}
	}
}

func TestRemoveDotSegmentsNeverInventsSegments(t *testing.T) {
	cases := map[string]string{
		"/a/b/c":     "/a/b/c",
		"/a/./b":     "/a/b",
		"/a/../b":    "/b",
		"a/b":        "a/b",
		"":           "",
		"/.":         "/",
		"/..":        "/",
	}
	for in, want := range cases {
		if got := RemoveDotSegments(in); got != want {
			t.Errorf("RemoveDotSegments(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIPLiteralHost(t *testing.T) {
	u, err := ParseReference("http://[::1]:8080/p")
	if err != nil {
		t.Fatalf("ParseReference: %v", err)
	}
	if !u.HostLiteral || u.Host != "::1" || u.Port != "8080" {
		t.Errorf("got Host=%q HostLiteral=%v Port=%q", u.Host, u.HostLiteral, u.Port)
	}
	if got := u.String(); got != "http://[::1]:8080/p" {
		t.Errorf("round trip got %q", got)
	}
}

func TestQueryParams(t *testing.T) {
	u, err := ParseReference("http://a/b?x=1&y&z=3")
	if err != nil {
		t.Fatalf("ParseReference: %v", err)
	}
	params := u.QueryParams()
	if len(params) != 3 {
		t.Fatalf("got %d params, want 3", len(params))
	}
	if params[0].Key != "x" || !params[0].HasEquals || params[0].Value != "1" {
		t.Errorf("param 0 = %+v", params[0])
	}
	if params[1].Key != "y" || params[1].HasEquals {
		t.Errorf("param 1 = %+v", params[1])
	}
}
