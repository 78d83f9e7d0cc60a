package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avrouter/internal/binding"
	"github.com/vyrodovalexey/avrouter/internal/config"
	"github.com/vyrodovalexey/avrouter/internal/dispatch"
	"github.com/vyrodovalexey/avrouter/internal/router"
)

type echoPayload struct {
	Message string `json:"message"`
}

func testRegistry(t *testing.T) *router.Registry {
	t.Helper()

	reg := router.NewRegistry()
	require.NoError(t, reg.Register(&router.Endpoint{
		Verb: http.MethodGet,
		Path: "/ping",
		Name: "ping",
		Handler: func(c *router.Call) (interface{}, error) {
			return map[string]string{"message": "pong"}, nil
		},
	}))
	require.NoError(t, reg.Register(&router.Endpoint{
		Verb: http.MethodPost,
		Path: "/echo",
		Name: "echo",
		Handler: func(c *router.Call) (interface{}, error) {
			return c.Arg(0), nil
		},
		Bindings: []binding.Binding{
			binding.Body(func() interface{} { return &echoPayload{} }),
		},
	}))
	reg.Freeze()
	return reg
}

func testServer(t *testing.T, opts ...Option) *Server {
	t.Helper()

	reg := testRegistry(t)
	return New(config.DefaultConfig().Server, reg, dispatch.New(reg), opts...)
}

func TestServer_DispatchesThroughNoRoute(t *testing.T) {
	t.Parallel()

	s := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"pong"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestServer_UnknownRouteIsDispatcherFault(t *testing.T) {
	t.Parallel()

	s := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "message")
}

func TestServer_BodyLimit(t *testing.T) {
	t.Parallel()

	reg := testRegistry(t)
	cfg := config.DefaultConfig().Server
	cfg.MaxBodyBytes = 16
	s := New(cfg, reg, dispatch.New(reg))

	small := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"message":"hi"}`))
	small.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, small)
	assert.Equal(t, http.StatusOK, rec.Code)

	big := httptest.NewRequest(http.MethodPost, "/echo",
		strings.NewReader(`{"message":"`+strings.Repeat("x", 64)+`"}`))
	big.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, big)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Lifecycle(t *testing.T) {
	t.Parallel()

	reg := testRegistry(t)
	cfg := config.DefaultConfig().Server
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	s := New(cfg, reg, dispatch.New(reg))

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	assert.True(t, s.IsRunning())
	assert.NotEmpty(t, s.Addr())

	err := s.Start(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")

	resp, err := http.Get(fmt.Sprintf("http://%s/healthz", s.Addr()))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(stopCtx))
	assert.False(t, s.IsRunning())

	// Stop is idempotent.
	require.NoError(t, s.Stop(stopCtx))
}
