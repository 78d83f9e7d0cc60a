package binding

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avrouter/internal/util"
)

type createUserRequest struct {
	Name   string  `json:"name"`
	Age    int     `json:"age"`
	Active bool    `json:"active"`
	Score  float64 `json:"score"`

	Ignored string `json:"-"`

	Untagged string

	internal string
}

func userFactory() interface{} {
	return &createUserRequest{}
}

func TestBinder_Bind_Body_DecodesJSON(t *testing.T) {
	t.Parallel()

	binder := newTestBinder()
	body := `{"name":"ada","age":36,"active":true,"score":9.5}`
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	args, err := binder.Bind(req, nil, []Binding{Body(userFactory)})

	require.NoError(t, err)
	require.Len(t, args, 1)

	got, ok := args[0].(*createUserRequest)
	require.True(t, ok)
	assert.Equal(t, "ada", got.Name)
	assert.Equal(t, 36, got.Age)
	assert.True(t, got.Active)
	assert.Equal(t, 9.5, got.Score)
}

func TestBinder_Bind_Body_MalformedJSON(t *testing.T) {
	t.Parallel()

	binder := newTestBinder()
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"name":`))

	_, err := binder.Bind(req, nil, []Binding{Body(userFactory)})

	require.Error(t, err)

	var coercionErr *util.CoercionError
	require.ErrorAs(t, err, &coercionErr)
	assert.Equal(t, "body", coercionErr.Parameter)
}

func TestBinder_Bind_Body_NoBodyPopulatesFromQuery(t *testing.T) {
	t.Parallel()

	binder := newTestBinder()
	req := httptest.NewRequest(http.MethodPost, "/users?name=ada&age=36&active=1&untagged=x", nil)

	args, err := binder.Bind(req, nil, []Binding{Body(userFactory)})

	require.NoError(t, err)
	require.Len(t, args, 1)

	got, ok := args[0].(*createUserRequest)
	require.True(t, ok)
	assert.Equal(t, "ada", got.Name)
	assert.Equal(t, 36, got.Age)
	assert.True(t, got.Active)
	// Untagged fields match on the lowercased field name.
	assert.Equal(t, "x", got.Untagged)
}

func TestBinder_Bind_Body_QueryPopulateBadValue(t *testing.T) {
	t.Parallel()

	binder := newTestBinder()
	req := httptest.NewRequest(http.MethodPost, "/users?age=old", nil)

	_, err := binder.Bind(req, nil, []Binding{Body(userFactory)})

	require.Error(t, err)

	var coercionErr *util.CoercionError
	require.ErrorAs(t, err, &coercionErr)
	assert.Equal(t, "age", coercionErr.Parameter)
}

func TestBinder_Bind_Body_SkippedFields(t *testing.T) {
	t.Parallel()

	binder := newTestBinder()
	req := httptest.NewRequest(http.MethodPost, "/users?-=nope&internal=nope", nil)

	args, err := binder.Bind(req, nil, []Binding{Body(userFactory)})

	require.NoError(t, err)

	got, ok := args[0].(*createUserRequest)
	require.True(t, ok)
	assert.Empty(t, got.Ignored)
	assert.Empty(t, got.internal)
}

func TestBinder_Bind_Body_NoFactory(t *testing.T) {
	t.Parallel()

	binder := newTestBinder()
	req := httptest.NewRequest(http.MethodPost, "/users", nil)

	_, err := binder.Bind(req, nil, []Binding{{Kind: KindBody, Name: "body"}})

	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrCoercionFailed)
}

func TestBinder_Bind_Body_NonStructTarget(t *testing.T) {
	t.Parallel()

	binder := newTestBinder()

	factory := func() interface{} { return &map[string]interface{}{} }

	// Decoding still works for non-struct targets.
	req := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(`{"a":1}`))
	args, err := binder.Bind(req, nil, []Binding{Body(factory)})
	require.NoError(t, err)
	require.Len(t, args, 1)

	// Query population leaves non-struct targets untouched.
	req = httptest.NewRequest(http.MethodPost, "/items?a=1", nil)
	args, err = binder.Bind(req, nil, []Binding{Body(factory)})
	require.NoError(t, err)

	got, ok := args[0].(*map[string]interface{})
	require.True(t, ok)
	assert.Empty(t, *got)
}

func TestPopulateFromQuery_NilTarget(t *testing.T) {
	t.Parallel()

	err := populateFromQuery(nil, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrCoercionFailed)
}

func TestQueryName(t *testing.T) {
	t.Parallel()

	type tagged struct {
		WithTag     string `json:"renamed"`
		WithOptions string `json:"opt,omitempty"`
		DashTag     string `json:"-"`
		NoTag       string
	}

	typ := reflect.TypeOf(tagged{})

	assert.Equal(t, "renamed", queryName(typ.Field(0)))
	assert.Equal(t, "opt", queryName(typ.Field(1)))
	assert.Equal(t, "-", queryName(typ.Field(2)))
	assert.Equal(t, "notag", queryName(typ.Field(3)))
}
