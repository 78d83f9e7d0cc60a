package router

import (
	"fmt"
	"regexp"
	"strings"
)

// segmentKind identifies how one declared path token participates in
// matching.
type segmentKind int

const (
	// segmentLiteral matches its text exactly.
	segmentLiteral segmentKind = iota

	// segmentParameter matches any single path component and captures it.
	segmentParameter

	// segmentWildcard greedily captures every remaining path component,
	// slashes included.
	segmentWildcard
)

// segment is one classified token of a declared route pattern.
type segment struct {
	raw  string // token as declared, e.g. "users", "{id}", "{rest*}"
	name string // capture name; empty for literals
	kind segmentKind
}

// paramNameRegex constrains capture names to what regexp group syntax
// accepts.
var paramNameRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// classifySegment parses a single /-delimited token into its segment kind.
// Unterminated braces, empty or invalid capture names, and braces inside
// literal tokens are declaration errors.
func classifySegment(token string) (segment, error) {
	if strings.HasPrefix(token, "{") {
		if !strings.HasSuffix(token, "}") {
			return segment{}, fmt.Errorf("unterminated parameter segment %q", token)
		}

		name := token[1 : len(token)-1]
		kind := segmentParameter

		if strings.HasSuffix(name, "*") {
			name = strings.TrimSuffix(name, "*")
			kind = segmentWildcard
		}

		if !paramNameRegex.MatchString(name) {
			return segment{}, fmt.Errorf("invalid parameter name %q in segment %q", name, token)
		}

		return segment{raw: token, name: name, kind: kind}, nil
	}

	if strings.ContainsAny(token, "{}") {
		return segment{}, fmt.Errorf("braces are not allowed inside literal segment %q", token)
	}

	return segment{raw: token, kind: segmentLiteral}, nil
}

// splitPath splits a path into non-empty tokens, ignoring empty tokens
// from leading, trailing, and doubled slashes.
func splitPath(path string) []string {
	parts := strings.Split(path, "/")

	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			tokens = append(tokens, part)
		}
	}

	return tokens
}

// parsePattern classifies every token of a declared route pattern and
// enforces pattern-level rules: capture names are unique within the
// pattern, and a wildcard, when present, is the final segment.
func parsePattern(pattern string) ([]segment, error) {
	tokens := splitPath(pattern)

	segments := make([]segment, 0, len(tokens))
	names := make(map[string]struct{}, len(tokens))

	for i, token := range tokens {
		seg, err := classifySegment(token)
		if err != nil {
			return nil, err
		}

		if seg.kind != segmentLiteral {
			if _, dup := names[seg.name]; dup {
				return nil, fmt.Errorf("duplicate parameter name %q", seg.name)
			}
			names[seg.name] = struct{}{}
		}

		if seg.kind == segmentWildcard && i != len(tokens)-1 {
			return nil, fmt.Errorf("wildcard segment %q must be the final segment", token)
		}

		segments = append(segments, seg)
	}

	return segments, nil
}

// parameterNames returns the capture names of a parsed pattern in
// declaration order.
func parameterNames(segments []segment) []string {
	names := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg.kind != segmentLiteral {
			names = append(names, seg.name)
		}
	}
	return names
}
