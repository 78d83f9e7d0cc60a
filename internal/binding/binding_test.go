package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		kind Kind
		want string
	}{
		{name: "path", kind: KindPath, want: "path"},
		{name: "query", kind: KindQuery, want: "query"},
		{name: "header", kind: KindHeader, want: "header"},
		{name: "cookie", kind: KindCookie, want: "cookie"},
		{name: "body", kind: KindBody, want: "body"},
		{name: "binary", kind: KindBinary, want: "binary"},
		{name: "unknown", kind: Kind(99), want: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.kind.String())
		})
	}
}

func TestPath(t *testing.T) {
	t.Parallel()

	b := Path("id", Int64)

	assert.Equal(t, KindPath, b.Kind)
	assert.Equal(t, "id", b.Name)
	assert.NotNil(t, b.Convert)
	assert.Nil(t, b.Default)
}

func TestQuery(t *testing.T) {
	t.Parallel()

	b := Query("limit", Int)

	assert.Equal(t, KindQuery, b.Kind)
	assert.Equal(t, "limit", b.Name)
	assert.Nil(t, b.Default)
}

func TestQueryDefault(t *testing.T) {
	t.Parallel()

	b := QueryDefault("limit", Int, "20")

	assert.Equal(t, KindQuery, b.Kind)
	require.NotNil(t, b.Default)
	assert.Equal(t, "20", *b.Default)
}

func TestHeader(t *testing.T) {
	t.Parallel()

	b := Header("X-Tenant", String)

	assert.Equal(t, KindHeader, b.Kind)
	assert.Equal(t, "X-Tenant", b.Name)
}

func TestCookie(t *testing.T) {
	t.Parallel()

	b := Cookie("session", String)

	assert.Equal(t, KindCookie, b.Kind)
	assert.Equal(t, "session", b.Name)
}

func TestBody(t *testing.T) {
	t.Parallel()

	type payload struct{}

	b := Body(func() interface{} { return &payload{} })

	assert.Equal(t, KindBody, b.Kind)
	assert.Equal(t, "body", b.Name)
	require.NotNil(t, b.Factory)

	_, ok := b.Factory().(*payload)
	assert.True(t, ok)
}

func TestBinary(t *testing.T) {
	t.Parallel()

	b := Binary()

	assert.Equal(t, KindBinary, b.Kind)
	assert.Nil(t, b.Factory)
}
