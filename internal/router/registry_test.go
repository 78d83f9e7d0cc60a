package router

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avrouter/internal/binding"
	"github.com/vyrodovalexey/avrouter/internal/util"
)

func okHandler(c *Call) (interface{}, error) {
	return nil, nil
}

// testEndpoint builds a registrable endpoint with one string path binding
// per pattern parameter.
func testEndpoint(t *testing.T, verb, path string) *Endpoint {
	t.Helper()

	segments, err := parsePattern(path)
	require.NoError(t, err)

	var bindings []binding.Binding
	for _, name := range parameterNames(segments) {
		bindings = append(bindings, binding.Path(name, binding.String))
	}

	return &Endpoint{
		Verb:     verb,
		Path:     path,
		Name:     verb + " " + path,
		Handler:  okHandler,
		Bindings: bindings,
	}
}

func TestRegistryRegister_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ep      *Endpoint
		wantErr string
	}{
		{
			name: "invalid verb",
			ep: &Endpoint{
				Verb:    "FETCH",
				Path:    "/a",
				Handler: okHandler,
			},
			wantErr: "invalid HTTP verb",
		},
		{
			name: "options reserved for preflight",
			ep: &Endpoint{
				Verb:    "OPTIONS",
				Path:    "/a",
				Handler: okHandler,
			},
			wantErr: "OPTIONS cannot be registered",
		},
		{
			name: "nil handler",
			ep: &Endpoint{
				Verb: "GET",
				Path: "/a",
			},
			wantErr: "handler must not be nil",
		},
		{
			name: "malformed pattern",
			ep: &Endpoint{
				Verb:    "GET",
				Path:    "/a/{id",
				Handler: okHandler,
			},
			wantErr: "unterminated parameter segment",
		},
		{
			name: "wildcard not final",
			ep: &Endpoint{
				Verb:    "GET",
				Path:    "/files/{path*}/meta",
				Handler: okHandler,
			},
			wantErr: "must be the final segment",
		},
		{
			name: "path binding without matching parameter",
			ep: &Endpoint{
				Verb:    "GET",
				Path:    "/sites/{siteId}",
				Handler: okHandler,
				Bindings: []binding.Binding{
					binding.Path("id", binding.String),
				},
			},
			wantErr: `path binding "id" does not match any pattern parameter`,
		},
		{
			name: "unbound pattern parameter",
			ep: &Endpoint{
				Verb:    "GET",
				Path:    "/sites/{siteId}/pages/{pageId}",
				Handler: okHandler,
				Bindings: []binding.Binding{
					binding.Path("siteId", binding.String),
				},
			},
			wantErr: "declares 2 parameters but 1 are bound",
		},
		{
			name: "duplicate path binding",
			ep: &Endpoint{
				Verb:    "GET",
				Path:    "/sites/{siteId}",
				Handler: okHandler,
				Bindings: []binding.Binding{
					binding.Path("siteId", binding.String),
					binding.Path("siteId", binding.String),
				},
			},
			wantErr: `duplicate path binding "siteId"`,
		},
		{
			name: "two body bindings",
			ep: &Endpoint{
				Verb:    "POST",
				Path:    "/sites",
				Handler: okHandler,
				Bindings: []binding.Binding{
					binding.Body(func() interface{} { return &struct{}{} }),
					binding.Binary(),
				},
			},
			wantErr: "at most one body or binary binding",
		},
		{
			name: "query binding without name",
			ep: &Endpoint{
				Verb:    "GET",
				Path:    "/sites",
				Handler: okHandler,
				Bindings: []binding.Binding{
					binding.Query("", binding.String),
				},
			},
			wantErr: "binding must carry a name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			reg := NewRegistry()
			err := reg.Register(tt.ep)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var validation *util.StartupValidationError
			assert.True(t, errors.As(err, &validation))
		})
	}
}

func TestRegistryRegister_DuplicateShape(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.Register(testEndpoint(t, "GET", "/content/sites/{id}")))

	// Same positions, different parameter name: still the same shape.
	err := reg.Register(testEndpoint(t, "GET", "/content/sites/{other}"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate route")
	assert.Contains(t, err.Error(), "/content/sites/{id}")

	// The same pattern under another verb is fine.
	assert.NoError(t, reg.Register(testEndpoint(t, "DELETE", "/content/sites/{id}")))
}

func TestRegistryRegister_FailureLeavesRegistryUnchanged(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.Register(testEndpoint(t, "GET", "/content/sites/{id}")))

	err := reg.Register(testEndpoint(t, "GET", "/content/sites/{other}"))
	require.Error(t, err)

	assert.Len(t, reg.Routes(), 1)

	match, err := reg.Lookup("GET", "/content/sites/42")
	require.NoError(t, err)
	assert.Equal(t, "/content/sites/{id}", match.Endpoint.Path)
}

func TestRegistryRegister_AfterFreeze(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.Register(testEndpoint(t, "GET", "/a")))

	assert.False(t, reg.Frozen())
	reg.Freeze()
	assert.True(t, reg.Frozen())

	err := reg.Register(testEndpoint(t, "GET", "/b"))
	assert.ErrorIs(t, err, util.ErrRegistryFrozen)
}

func TestRegistryLookup_ConcurrentAfterFreeze(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.Register(testEndpoint(t, "GET", "/content/sites")))
	require.NoError(t, reg.Register(testEndpoint(t, "GET", "/content/sites/{id}")))
	require.NoError(t, reg.Register(testEndpoint(t, "GET", "/content/sites/{id}/settings")))
	require.NoError(t, reg.Register(testEndpoint(t, "GET", "/api-docs/{path*}")))
	reg.Freeze()

	lookups := []struct {
		path string
		want string
	}{
		{"/content/sites", "/content/sites"},
		{"/content/sites/42", "/content/sites/{id}"},
		{"/content/sites/42/settings", "/content/sites/{id}/settings"},
		{"/api-docs/reference/routes.md", "/api-docs/{path*}"},
	}

	failures := make(chan error, 10)
	done := make(chan bool)

	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				for _, l := range lookups {
					match, err := reg.Lookup("GET", l.path)
					if err != nil {
						failures <- err
						done <- true
						return
					}
					if match.Endpoint.Path != l.want {
						failures <- errors.New("resolved " + l.path + " to " + match.Endpoint.Path)
						done <- true
						return
					}
				}
			}
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	select {
	case err := <-failures:
		t.Fatal(err)
	default:
	}
}

func TestRegistryRegister_NormalizesVerb(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.Register(testEndpoint(t, "get", "/a")))

	match, err := reg.Lookup("GET", "/a")
	require.NoError(t, err)
	assert.Equal(t, "GET", match.Endpoint.Verb)

	_, err = reg.Lookup("get", "/a")
	assert.NoError(t, err)
}

func TestRegistryLookup_ErrorTaxonomy(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.Register(testEndpoint(t, "GET", "/content/sites/{id}")))
	require.NoError(t, reg.Register(testEndpoint(t, "GET", "/v1/{id}/settings")))
	require.NoError(t, reg.Register(testEndpoint(t, "GET", "/v1/{siteId}/{section}")))
	reg.Freeze()

	t.Run("verb without routes", func(t *testing.T) {
		t.Parallel()

		_, err := reg.Lookup("POST", "/content/sites/42")
		require.Error(t, err)
		assert.ErrorIs(t, err, util.ErrVerbNotSupported)

		var verbErr *util.VerbNotSupportedError
		require.True(t, errors.As(err, &verbErr))
		assert.Equal(t, "POST", verbErr.Verb)
	})

	t.Run("known verb unknown path", func(t *testing.T) {
		t.Parallel()

		_, err := reg.Lookup("GET", "/unknown")
		require.Error(t, err)
		assert.ErrorIs(t, err, util.ErrRouteNotFound)

		var notFound *util.RouteNotFoundError
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, "/unknown", notFound.Path)
	})

	t.Run("ambiguous dynamic branches", func(t *testing.T) {
		t.Parallel()

		_, err := reg.Lookup("GET", "/v1/42/settings")
		require.Error(t, err)
		assert.ErrorIs(t, err, util.ErrAmbiguousRoute)

		var ambiguous *util.AmbiguousRouteError
		require.True(t, errors.As(err, &ambiguous))
		assert.Len(t, ambiguous.Patterns, 2)
	})

	t.Run("successful match", func(t *testing.T) {
		t.Parallel()

		match, err := reg.Lookup("GET", "/content/sites/42")
		require.NoError(t, err)
		assert.Equal(t, "/content/sites/{id}", match.Endpoint.Path)
		assert.Equal(t, map[string]string{"id": "42"}, match.PathVars("/content/sites/42"))
	})
}

func TestRegistryRoutes(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.Register(testEndpoint(t, "POST", "/content/sites")))
	require.NoError(t, reg.Register(testEndpoint(t, "GET", "/content/sites")))
	require.NoError(t, reg.Register(testEndpoint(t, "GET", "/api-docs/{path*}")))

	routes := reg.Routes()
	require.Len(t, routes, 3)

	assert.Equal(t, "/api-docs/{path*}", routes[0].Path)
	assert.Equal(t, "GET", routes[1].Verb)
	assert.Equal(t, "POST", routes[2].Verb)

	// The snapshot is detached from the registry.
	routes[0].Path = "/mutated"
	assert.Equal(t, "/api-docs/{path*}", reg.Routes()[0].Path)
}

func TestRegistryCountByVerb(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.Register(testEndpoint(t, "GET", "/a")))
	require.NoError(t, reg.Register(testEndpoint(t, "GET", "/b")))
	require.NoError(t, reg.Register(testEndpoint(t, "POST", "/a")))

	assert.Equal(t, map[string]int{"GET": 2, "POST": 1}, reg.CountByVerb())
}
