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

import "strings"

// RemoveDotSegments implements the RFC 3986 section 5.2.4 algorithm:
// repeatedly consume a leading "." or ".." segment from the input buffer,
// popping the last output segment on "..". It never introduces a segment
// that was not already present and never alters a segment that is not "."
// or "..".
func RemoveDotSegments(path string) string {
	in := path
	var out []string // each element already carries its leading "/", if any

	for in != "" {
		switch {
		case strings.HasPrefix(in, "../"):
			in = in[3:]
		case strings.HasPrefix(in, "./"):
			in = in[2:]
		case strings.HasPrefix(in, "/./"):
			in = "/" + in[3:]
		case in == "/.":
			in = "/"
		case strings.HasPrefix(in, "/../"):
			in = "/" + in[4:]
			out = popSegment(out)
		case in == "/..":
			in = "/"
			out = popSegment(out)
		case in == ".", in == "..":
			in = ""
		default:
			seg, rest := firstSegment(in)
			out = append(out, seg)
			in = rest
		}
	}
	return strings.Join(out, "")
}

// firstSegment splits a path that starts with "/" (or is the very first,
// possibly-relative segment) into its first "/seg" (or "seg") piece and
// the remainder.
func firstSegment(in string) (seg, rest string) {
	if in == "" {
		return "", ""
	}
	start := 0
	if in[0] == '/' {
		start = 1
	}
	idx := strings.IndexByte(in[start:], '/')
	if idx < 0 {
		return in, ""
	}
	return in[:start+idx], in[start+idx:]
}

func popSegment(out []string) []string {
	if len(out) == 0 {
		return out
	}
	return out[:len(out)-1]
}

// Resolve implements RFC 3986 section 5.3's reference resolution
// algorithm. In strict mode only a nonempty ref.Scheme triggers the
// scheme-copy branch; in non-strict mode a scheme equal to base's is
// treated as if absent, to absorb the historical "http:g" ambiguity.
func Resolve(base, ref *URI, strict bool) *URI {
	out := &URI{}

	refHasScheme := ref.HasScheme
	if !strict && refHasScheme && ref.Scheme == base.Scheme {
		refHasScheme = false
	}

	switch {
	case refHasScheme:
		out.HasScheme, out.Scheme = true, ref.Scheme
		copyAuthority(out, ref)
		out.Path = RemoveDotSegments(ref.Path)
		out.HasQuery, out.Query = ref.HasQuery, ref.Query
	case ref.HasAuthority:
		out.HasScheme, out.Scheme = base.HasScheme, base.Scheme
		copyAuthority(out, ref)
		out.Path = RemoveDotSegments(ref.Path)
		out.HasQuery, out.Query = ref.HasQuery, ref.Query
	case ref.Path == "":
		out.HasScheme, out.Scheme = base.HasScheme, base.Scheme
		copyAuthority(out, base)
		out.Path = base.Path
		if ref.HasQuery {
			out.HasQuery, out.Query = true, ref.Query
		} else {
			out.HasQuery, out.Query = base.HasQuery, base.Query
		}
	default:
		out.HasScheme, out.Scheme = base.HasScheme, base.Scheme
		copyAuthority(out, base)
		if strings.HasPrefix(ref.Path, "/") {
			out.Path = RemoveDotSegments(ref.Path)
		} else {
			out.Path = RemoveDotSegments(mergePaths(base, ref.Path))
		}
		out.HasQuery, out.Query = ref.HasQuery, ref.Query
	}

	out.HasFragment, out.Fragment = ref.HasFragment, ref.Fragment
	return out
}

// mergePaths implements RFC 3986 section 5.3's merge routine: if base has
// an authority and an empty path, the reference is resolved relative to
// "/"; otherwise it replaces everything in base's path after the last "/".
func mergePaths(base *URI, refPath string) string {
	if base.HasAuthority && base.Path == "" {
		return "/" + refPath
	}
	idx := strings.LastIndexByte(base.Path, '/')
	if idx < 0 {
		return refPath
	}
	return base.Path[:idx+1] + refPath
}

func copyAuthority(out, src *URI) {
	out.HasAuthority = src.HasAuthority
	out.HasUserInfo = src.HasUserInfo
	out.UserInfo = src.UserInfo
	out.Host = src.Host
	out.HostLiteral = src.HostLiteral
	out.HasPort = src.HasPort
	out.Port = src.Port
}
