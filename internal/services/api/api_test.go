package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"curator/internal/modkit"
	"curator/internal/modkit/module"
	"curator/internal/platform/config"
	phttp "curator/internal/platform/net/http"
	"curator/internal/services/api"
	statusmod "curator/internal/services/api/status/module"
	catrepo "curator/internal/services/catalog/repo"
	"curator/internal/services/maintenance/repo"

	"github.com/stretchr/testify/assert"
)

func TestFromConfig(t *testing.T) {
	t.Setenv("CURATOR_API_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("CURATOR_API_TOKEN", "tok")
	t.Setenv("CURATOR_API_PROFILER", "true")

	o := api.FromConfig(config.New())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, o.CORSOrigins)
	assert.Equal(t, "tok", o.Token)
	assert.True(t, o.EnableProfiler)
}

func TestMount(t *testing.T) {
	module.Reset()
	t.Cleanup(module.Reset)

	r := phttp.NewServer(config.New()).Router()
	api.Mount(r, modkit.Deps{Cfg: config.New()}, catrepo.NewMemory(), repo.NewMemory(), api.Options{Token: "tok"})

	serve := func(path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		r.Mux().ServeHTTP(rec, req)
		return rec
	}

	rec := serve("/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code, "healthz stays open")
	assert.NotEmpty(t, rec.Header().Get("Cache-Control"))

	assert.Equal(t, http.StatusUnauthorized, serve("/v1/runs", "").Code)
	assert.Equal(t, http.StatusOK, serve("/v1/runs", "tok").Code)
	assert.Equal(t, http.StatusNotFound, serve("/v1/entities/7", "tok").Code)
	assert.Equal(t, http.StatusNotFound, serve("/debug/pprof/", "").Code, "profiler off by default")

	_, ok := module.PortsAs[statusmod.Ports]("status")
	assert.True(t, ok)
}
