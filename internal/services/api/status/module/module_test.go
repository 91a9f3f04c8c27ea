package module_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"curator/internal/core/batch"
	modkit "curator/internal/modkit"
	"curator/internal/modkit/httpkit"
	"curator/internal/platform/config"
	phttp "curator/internal/platform/net/http"
	"curator/internal/services/api/status/module"
	catrepo "curator/internal/services/catalog/repo"
	"curator/internal/services/maintenance/domain"
	"curator/internal/services/maintenance/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

func newAPI(t *testing.T, opts ...modkit.Option) httpkit.Router {
	t.Helper()
	fx, err := catrepo.ReadFixtureFile("../../../catalog/repo/testdata/catalog.yaml")
	require.NoError(t, err)

	ctx := context.Background()
	ledger := repo.NewMemory()
	require.NoError(t, ledger.StartRun(ctx, domain.Run{ID: "run-a", Operation: "gene-mapping", Mode: "always", Concurrency: 2, StartedAt: t0}))
	for _, o := range []batch.Outcome{
		{EntityID: 1, Status: batch.Success, Label: "OK", At: t0},
		{EntityID: 2, Status: batch.Skipped, Detail: "subsumed or merged into another entity", At: t0},
		{EntityID: 4, Status: batch.Skipped, Detail: "kind excluded", At: t0},
		{EntityID: 5, Status: batch.Failed, Detail: "boom", At: t0},
	} {
		require.NoError(t, ledger.RecordOutcome(ctx, domain.RowFrom("run-a", o)))
	}

	m := module.New(catrepo.NewMemoryFrom(fx), ledger, opts...)
	assert.Equal(t, "status", m.Name())

	r := phttp.NewServer(config.New()).Router()
	m.MountRoutes(r)
	return r
}

type envelope struct {
	StatusCode int             `json:"status_code"`
	Error      string          `json:"error"`
	Field      string          `json:"field"`
	Data       json.RawMessage `json:"data"`
}

func get(t *testing.T, r httpkit.Router, path string, hdr ...string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if len(hdr) == 2 {
		req.Header.Set(hdr[0], hdr[1])
	}
	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, req)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func TestEntityAndEvents(t *testing.T) {
	r := newAPI(t)

	code, env := get(t, r, "/v1/entities/1")
	require.Equal(t, http.StatusOK, code)
	var ent struct {
		Accession   string `json:"accession"`
		TroubledNow bool   `json:"troubled_now"`
		Events      int    `json:"events"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &ent))
	assert.Equal(t, "GPL96", ent.Accession)
	assert.Equal(t, 2, ent.Events)

	code, env = get(t, r, "/v1/entities/1/events")
	require.Equal(t, http.StatusOK, code)
	var evs []struct {
		Type string    `json:"type"`
		At   time.Time `json:"at"`
		Note string    `json:"note"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &evs))
	require.Len(t, evs, 2)
	assert.Equal(t, "ArrayDesignSequenceUpdateEvent", evs[0].Type)
	assert.Equal(t, "ArrayDesignSequenceAnalysisEvent", evs[1].Type)
	assert.Equal(t, "blat run", evs[1].Note)

	code, _ = get(t, r, "/v1/entities/99/events")
	assert.Equal(t, http.StatusNotFound, code)

	code, env = get(t, r, "/v1/entities/abc")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "id", env.Field)
}

func TestStaleness(t *testing.T) {
	r := newAPI(t)

	code, env := get(t, r, "/v1/entities/1/staleness?operation=gene-mapping")
	require.Equal(t, http.StatusOK, code)
	var v struct {
		Run       bool   `json:"run"`
		Mode      string `json:"mode"`
		Operation string `json:"operation"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &v))
	assert.True(t, v.Run)
	assert.Equal(t, "always", v.Mode)
	assert.Equal(t, "gene-mapping", v.Operation)

	code, env = get(t, r, "/v1/entities/2/staleness?operation=gene-mapping&force")
	require.Equal(t, http.StatusOK, code)
	var skip struct {
		Run    bool   `json:"run"`
		Mode   string `json:"mode"`
		Reason string `json:"reason"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &skip))
	assert.False(t, skip.Run)
	assert.Equal(t, "force", skip.Mode)
	assert.Equal(t, "subsumed or merged into another entity", skip.Reason)

	cases := map[string]struct {
		path  string
		code  int
		field string
	}{
		"missing operation": {"/v1/entities/1/staleness", http.StatusBadRequest, "operation"},
		"unknown operation": {"/v1/entities/1/staleness?operation=nope", http.StatusUnprocessableEntity, "operation"},
		"bad cutoff":        {"/v1/entities/1/staleness?operation=gene-mapping&cutoff=soon", http.StatusUnprocessableEntity, "cutoff"},
		"auto with cutoff":  {"/v1/entities/1/staleness?operation=gene-mapping&auto&cutoff=30d", http.StatusUnprocessableEntity, ""},
		"unknown entity":    {"/v1/entities/99/staleness?operation=gene-mapping", http.StatusNotFound, ""},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			code, env := get(t, r, tc.path)
			assert.Equal(t, tc.code, code, env.Error)
			if tc.field != "" {
				assert.Equal(t, tc.field, env.Field)
			}
		})
	}
}

func TestRunsAndOutcomes(t *testing.T) {
	r := newAPI(t)

	code, env := get(t, r, "/v1/runs")
	require.Equal(t, http.StatusOK, code)
	var runs []domain.Run
	require.NoError(t, json.Unmarshal(env.Data, &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "run-a", runs[0].ID)

	code, _ = get(t, r, "/v1/runs/run-a")
	assert.Equal(t, http.StatusOK, code)
	code, _ = get(t, r, "/v1/runs/missing")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = get(t, r, "/v1/runs/missing/outcomes")
	assert.Equal(t, http.StatusNotFound, code)

	type page struct {
		Items []domain.OutcomeRow `json:"items"`
		Page  httpkit.Page        `json:"page"`
	}

	code, env = get(t, r, "/v1/runs/run-a/outcomes")
	require.Equal(t, http.StatusOK, code)
	var all page
	require.NoError(t, json.Unmarshal(env.Data, &all))
	assert.Equal(t, 4, all.Page.Total)
	assert.Len(t, all.Items, 4)

	code, env = get(t, r, "/v1/runs/run-a/outcomes?status=skipped&limit=1&offset=1")
	require.Equal(t, http.StatusOK, code)
	var skipped page
	require.NoError(t, json.Unmarshal(env.Data, &skipped))
	assert.Equal(t, httpkit.Page{Total: 2, Offset: 1, Limit: 1}, skipped.Page)
	require.Len(t, skipped.Items, 1)
	assert.Equal(t, int64(4), skipped.Items[0].EntityID)

	code, env = get(t, r, "/v1/runs/run-a/outcomes?status=sideways")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "status", env.Field)
}

func TestToken(t *testing.T) {
	r := newAPI(t, modkit.WithToken("s3cret"))

	code, _ := get(t, r, "/v1/runs")
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = get(t, r, "/v1/runs", "Authorization", "Bearer s3cret")
	assert.Equal(t, http.StatusOK, code)
}
