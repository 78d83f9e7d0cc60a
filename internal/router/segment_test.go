package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifySegment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		token    string
		expected segment
		wantErr  bool
	}{
		{
			name:     "literal",
			token:    "users",
			expected: segment{raw: "users", kind: segmentLiteral},
		},
		{
			name:     "literal with dash",
			token:    "api-docs",
			expected: segment{raw: "api-docs", kind: segmentLiteral},
		},
		{
			name:     "parameter",
			token:    "{id}",
			expected: segment{raw: "{id}", name: "id", kind: segmentParameter},
		},
		{
			name:     "parameter with underscore prefix",
			token:    "{_id}",
			expected: segment{raw: "{_id}", name: "_id", kind: segmentParameter},
		},
		{
			name:     "wildcard",
			token:    "{rest*}",
			expected: segment{raw: "{rest*}", name: "rest", kind: segmentWildcard},
		},
		{
			name:    "unterminated brace",
			token:   "{id",
			wantErr: true,
		},
		{
			name:    "empty parameter name",
			token:   "{}",
			wantErr: true,
		},
		{
			name:    "wildcard without name",
			token:   "{*}",
			wantErr: true,
		},
		{
			name:    "parameter name starting with digit",
			token:   "{9id}",
			wantErr: true,
		},
		{
			name:    "parameter name with dash",
			token:   "{user-id}",
			wantErr: true,
		},
		{
			name:    "brace inside literal",
			token:   "us{ers",
			wantErr: true,
		},
		{
			name:    "closing brace in literal",
			token:   "id}",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			seg, err := classifySegment(tt.token)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, seg)
		})
	}
}

func TestSplitPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     string
		expected []string
	}{
		{
			name:     "simple path",
			path:     "/a/b/c",
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "root",
			path:     "/",
			expected: []string{},
		},
		{
			name:     "empty",
			path:     "",
			expected: []string{},
		},
		{
			name:     "doubled and trailing slashes",
			path:     "//content//sites/",
			expected: []string{"content", "sites"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, splitPath(tt.path))
		})
	}
}

func TestParsePattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		pattern   string
		wantKinds []segmentKind
		wantErr   string
	}{
		{
			name:      "all literal",
			pattern:   "/content/sites/list",
			wantKinds: []segmentKind{segmentLiteral, segmentLiteral, segmentLiteral},
		},
		{
			name:      "mixed",
			pattern:   "/content/sites/{siteId}/pages/{pageId}",
			wantKinds: []segmentKind{segmentLiteral, segmentLiteral, segmentParameter, segmentLiteral, segmentParameter},
		},
		{
			name:      "trailing wildcard",
			pattern:   "/api-docs/{path*}",
			wantKinds: []segmentKind{segmentLiteral, segmentWildcard},
		},
		{
			name:      "root",
			pattern:   "/",
			wantKinds: []segmentKind{},
		},
		{
			name:    "wildcard not final",
			pattern: "/files/{path*}/meta",
			wantErr: "must be the final segment",
		},
		{
			name:    "duplicate parameter names",
			pattern: "/a/{id}/b/{id}",
			wantErr: "duplicate parameter name",
		},
		{
			name:    "duplicate name between parameter and wildcard",
			pattern: "/a/{x}/{x*}",
			wantErr: "duplicate parameter name",
		},
		{
			name:    "malformed segment",
			pattern: "/a/{id",
			wantErr: "unterminated parameter segment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			segments, err := parsePattern(tt.pattern)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			kinds := make([]segmentKind, 0, len(segments))
			for _, seg := range segments {
				kinds = append(kinds, seg.kind)
			}
			assert.Equal(t, tt.wantKinds, kinds)
		})
	}
}

func TestParameterNames(t *testing.T) {
	t.Parallel()

	segments, err := parsePattern("/content/sites/{siteId}/pages/{pageId}/{rest*}")
	require.NoError(t, err)

	assert.Equal(t, []string{"siteId", "pageId", "rest"}, parameterNames(segments))
}
