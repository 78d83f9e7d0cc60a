package binding

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avrouter/internal/encoding"
	"github.com/vyrodovalexey/avrouter/internal/util"
)

func newTestBinder() *Binder {
	return NewBinder(encoding.NewJSONCodec(nil))
}

func TestBinder_Bind_NoBindings(t *testing.T) {
	t.Parallel()

	binder := newTestBinder()
	req := httptest.NewRequest(http.MethodGet, "/users", nil)

	args, err := binder.Bind(req, nil, nil)

	require.NoError(t, err)
	assert.Nil(t, args)
}

func TestBinder_Bind_Path(t *testing.T) {
	t.Parallel()

	binder := newTestBinder()
	req := httptest.NewRequest(http.MethodGet, "/users/42", nil)
	pathVars := map[string]string{"id": "42"}

	args, err := binder.Bind(req, pathVars, []Binding{Path("id", Int64)})

	require.NoError(t, err)
	require.Len(t, args, 1)
	assert.Equal(t, int64(42), args[0])
}

func TestBinder_Bind_Path_Missing(t *testing.T) {
	t.Parallel()

	binder := newTestBinder()
	req := httptest.NewRequest(http.MethodGet, "/users/42", nil)

	_, err := binder.Bind(req, map[string]string{}, []Binding{Path("id", Int64)})

	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrCoercionFailed)

	var coercionErr *util.CoercionError
	require.ErrorAs(t, err, &coercionErr)
	assert.Equal(t, "id", coercionErr.Parameter)
}

func TestBinder_Bind_Query(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		url      string
		binding  Binding
		want     interface{}
		wantErr  bool
		wantName string
	}{
		{
			name:    "present",
			url:     "/users?limit=10",
			binding: Query("limit", Int),
			want:    10,
		},
		{
			name:    "first of repeated values",
			url:     "/users?limit=10&limit=20",
			binding: Query("limit", Int),
			want:    10,
		},
		{
			name:    "absent with default",
			url:     "/users",
			binding: QueryDefault("limit", Int, "25"),
			want:    25,
		},
		{
			name:    "present overrides default",
			url:     "/users?limit=3",
			binding: QueryDefault("limit", Int, "25"),
			want:    3,
		},
		{
			name:     "absent without default",
			url:      "/users",
			binding:  Query("limit", Int),
			wantErr:  true,
			wantName: "limit",
		},
		{
			name:     "coercion failure",
			url:      "/users?limit=ten",
			binding:  Query("limit", Int),
			wantErr:  true,
			wantName: "limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			binder := newTestBinder()
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)

			args, err := binder.Bind(req, nil, []Binding{tt.binding})

			if tt.wantErr {
				require.Error(t, err)

				var coercionErr *util.CoercionError
				require.ErrorAs(t, err, &coercionErr)
				assert.Equal(t, tt.wantName, coercionErr.Parameter)
				return
			}

			require.NoError(t, err)
			require.Len(t, args, 1)
			assert.Equal(t, tt.want, args[0])
		})
	}
}

func TestBinder_Bind_Header(t *testing.T) {
	t.Parallel()

	binder := newTestBinder()
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("X-Tenant", "acme")

	args, err := binder.Bind(req, nil, []Binding{Header("X-Tenant", String)})

	require.NoError(t, err)
	require.Len(t, args, 1)
	assert.Equal(t, "acme", args[0])
}

func TestBinder_Bind_Header_Missing(t *testing.T) {
	t.Parallel()

	binder := newTestBinder()
	req := httptest.NewRequest(http.MethodGet, "/users", nil)

	_, err := binder.Bind(req, nil, []Binding{Header("X-Tenant", String)})

	require.Error(t, err)

	var coercionErr *util.CoercionError
	require.ErrorAs(t, err, &coercionErr)
	assert.Equal(t, "X-Tenant", coercionErr.Parameter)
	assert.Contains(t, err.Error(), "required header missing")
}

func TestBinder_Bind_Cookie(t *testing.T) {
	t.Parallel()

	binder := newTestBinder()
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "s3cret"})

	args, err := binder.Bind(req, nil, []Binding{Cookie("session", String)})

	require.NoError(t, err)
	require.Len(t, args, 1)
	assert.Equal(t, "s3cret", args[0])
}

func TestBinder_Bind_Cookie_Missing(t *testing.T) {
	t.Parallel()

	binder := newTestBinder()
	req := httptest.NewRequest(http.MethodGet, "/users", nil)

	_, err := binder.Bind(req, nil, []Binding{Cookie("session", String)})

	require.Error(t, err)

	var coercionErr *util.CoercionError
	require.ErrorAs(t, err, &coercionErr)
	assert.Equal(t, "session", coercionErr.Parameter)
}

func TestBinder_Bind_Binary(t *testing.T) {
	t.Parallel()

	binder := newTestBinder()
	req := httptest.NewRequest(http.MethodPost, "/blobs", strings.NewReader("raw bytes"))

	args, err := binder.Bind(req, nil, []Binding{Binary()})

	require.NoError(t, err)
	require.Len(t, args, 1)

	stream, ok := args[0].(*Stream)
	require.True(t, ok)
	assert.Equal(t, int64(len("raw bytes")), stream.ContentLength)
	require.NotNil(t, stream.Body)

	buf := make([]byte, 16)
	n, _ := stream.Body.Read(buf)
	assert.Equal(t, "raw bytes", string(buf[:n]))
}

func TestBinder_Bind_PositionalOrder(t *testing.T) {
	t.Parallel()

	binder := newTestBinder()
	req := httptest.NewRequest(http.MethodGet, "/users/42?limit=5", nil)
	req.Header.Set("X-Trace", "t-1")
	pathVars := map[string]string{"id": "42"}

	args, err := binder.Bind(req, pathVars, []Binding{
		Header("X-Trace", String),
		Path("id", Int64),
		QueryDefault("limit", Int, "20"),
	})

	require.NoError(t, err)
	require.Len(t, args, 3)
	assert.Equal(t, "t-1", args[0])
	assert.Equal(t, int64(42), args[1])
	assert.Equal(t, 5, args[2])
}

func TestBinder_Bind_NilConverterPassesRawString(t *testing.T) {
	t.Parallel()

	binder := newTestBinder()
	req := httptest.NewRequest(http.MethodGet, "/users?q=hello", nil)

	args, err := binder.Bind(req, nil, []Binding{{Kind: KindQuery, Name: "q"}})

	require.NoError(t, err)
	require.Len(t, args, 1)
	assert.Equal(t, "hello", args[0])
}

func TestBinder_Bind_ConverterErrorWrapsCause(t *testing.T) {
	t.Parallel()

	binder := newTestBinder()
	req := httptest.NewRequest(http.MethodGet, "/users?when=notatime", nil)

	_, err := binder.Bind(req, nil, []Binding{Query("when", Time)})

	require.Error(t, err)
	assert.True(t, errors.Is(err, util.ErrCoercionFailed))
	assert.Contains(t, err.Error(), `parameter "when"`)
}

func TestBinder_Bind_DefaultIsCoerced(t *testing.T) {
	t.Parallel()

	binder := newTestBinder()
	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)

	args, err := binder.Bind(req, nil, []Binding{QueryDefault("timeout", Duration, "30s")})

	require.NoError(t, err)
	require.Len(t, args, 1)
	assert.Equal(t, 30*time.Second, args[0])
}
