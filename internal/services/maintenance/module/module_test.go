package module

import (
	"context"
	"testing"
	"time"

	"curator/internal/core/batch"
	"curator/internal/core/staleness"
	"curator/internal/modkit"
	"curator/internal/platform/config"
	catalog "curator/internal/services/catalog/domain"
	catrepo "curator/internal/services/catalog/repo"
	"curator/internal/services/maintenance/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type okProcessor struct{}

func (okProcessor) Process(context.Context, catalog.Entity, staleness.Operation) (domain.Result, error) {
	return domain.Result{}, nil
}

func TestFromConfig(t *testing.T) {
	t.Setenv("CURATOR_RUN_CONCURRENCY", "8")
	t.Setenv("CURATOR_RUN_UNIT_TIMEOUT", "90s")
	t.Setenv("CURATOR_RUN_RETRY_STATUSES", "FAILED, bogus,UNKNOWN")

	o := FromConfig(config.New())
	assert.Equal(t, 8, o.Concurrency)
	assert.Equal(t, 90*time.Second, o.UnitTimeout)
	assert.Equal(t, []batch.Status{batch.Failed, batch.Unknown}, o.RetryStatuses)
	assert.Equal(t, 10, o.ReportFailures)

	req := o.Apply(domain.Request{Staleness: staleness.Options{Concurrency: 2}})
	assert.Equal(t, 2, req.Staleness.Concurrency, "flag wins over env")
	assert.Equal(t, 90*time.Second, req.UnitTimeout)
}

func TestNewMemoryRun(t *testing.T) {
	ctx := context.Background()
	fx, err := catrepo.ReadFixtureFile("../../catalog/repo/testdata/catalog.yaml")
	require.NoError(t, err)
	cat := catrepo.NewMemoryFrom(fx)

	m, err := New(ctx, modkit.Deps{Log: zerolog.Nop(), Cfg: config.New()}, cat, okProcessor{})
	require.NoError(t, err)

	rep, err := m.Run(ctx, domain.Request{Operation: "gene-mapping", Select: domain.Selection{IDs: []int64{1}}})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Counts[batch.Success])

	rows, err := m.Ledger().Outcomes(ctx, rep.RunID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "SUCCESS", rows[0].Status)
}

func TestNewWithoutProcessor(t *testing.T) {
	m, err := New(context.Background(), modkit.Deps{Log: zerolog.Nop(), Cfg: config.New()}, catrepo.NewMemory(), nil)
	require.NoError(t, err)
	assert.Nil(t, m.Ports().(Ports).Runner)
	assert.NotNil(t, m.Ledger())
}
