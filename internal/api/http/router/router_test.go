package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chautara/identity/internal/api/http/httpctx"
	"github.com/chautara/identity/internal/metrics"
	"github.com/chautara/identity/internal/repository/memory"
	"github.com/chautara/identity/internal/testutil"
)

func TestRouter_Register(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	metrics.NewCollector(registry)

	r := New(nil, nil, nil, nil, memory.New(3), httpctx.NewManager(), registry, testutil.MakeNoopLogger())
	h := r.Register()
	require.NotNil(t, h)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	t.Parallel()

	r := New(nil, nil, nil, nil, memory.New(3), httpctx.NewManager(), nil, testutil.MakeNoopLogger())
	h := r.Register()

	protected := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/auth/logout"},
		{http.MethodPost, "/api/username"},
		{http.MethodGet, "/api/profile"},
		{http.MethodPut, "/api/profile/avatar"},
		{http.MethodGet, "/api/profile/avatar"},
		{http.MethodGet, "/api/session"},
		{http.MethodGet, "/api/session/stream"},
	}

	for _, route := range protected {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(route.method, route.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", route.method, route.path)
	}
}
