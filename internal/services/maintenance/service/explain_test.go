package service

import (
	"context"
	"testing"

	"curator/internal/core/eventlog"
	"curator/internal/core/staleness"
	perr "curator/internal/platform/errors"
	catrepo "curator/internal/services/catalog/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExplain(t *testing.T) {
	ctx := context.Background()
	cat := catrepo.NewMemoryFrom(catalogFixture())

	v, err := Explain(ctx, cat, 1, "gene-mapping", staleness.Options{})
	require.NoError(t, err)
	assert.True(t, v.Run)
	assert.Equal(t, "GPL1", v.Accession)
	assert.Equal(t, "always", v.Mode)
	assert.Nil(t, v.LastRun)

	v, err = Explain(ctx, cat, 6, "gene-mapping", staleness.Options{AutoSeek: true})
	require.NoError(t, err)
	assert.False(t, v.Run)
	assert.Equal(t, string(staleness.ReasonUpToDate), v.Reason)
	require.NotNil(t, v.LastRun)
	assert.Equal(t, day(3), *v.LastRun)

	v, err = Explain(ctx, cat, 5, "gene-mapping", staleness.Options{})
	require.NoError(t, err)
	assert.False(t, v.Run)
	assert.Equal(t, string(staleness.ReasonNotReady), v.Reason)

	v, err = Explain(ctx, cat, 7, "gene-mapping", staleness.Options{Force: true})
	require.NoError(t, err)
	assert.True(t, v.Run, "force overrides troubled")

	v, err = Explain(ctx, cat, 2, "sequence-analysis", staleness.Options{})
	require.NoError(t, err)
	assert.Equal(t, string(staleness.ReasonChild), v.Reason)
	require.NotNil(t, v.LastRun, "subsumed entity inherits the parent's run")
	assert.Equal(t, day(2), *v.LastRun)
	assert.Equal(t, int64(1), v.LastRunVia)

	require.NoError(t, cat.AppendEvent(ctx, 3, eventlog.SequenceAnalysis, "", day(4)))
	v, err = Explain(ctx, cat, 3, "sequence-analysis", staleness.Options{})
	require.NoError(t, err)
	require.NotNil(t, v.LastRun)
	assert.Equal(t, day(4), *v.LastRun, "own run newer than the merge target's")
	assert.Zero(t, v.LastRunVia)
}

func TestExplainErrors(t *testing.T) {
	ctx := context.Background()
	cat := catrepo.NewMemoryFrom(catalogFixture())

	_, err := Explain(ctx, cat, 1, "nope", staleness.Options{})
	assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument))

	_, err = Explain(ctx, cat, 99, "gene-mapping", staleness.Options{})
	assert.True(t, perr.IsCode(err, perr.ErrorCodeNotFound))

	cut := day(1)
	_, err = Explain(ctx, cat, 1, "gene-mapping", staleness.Options{AutoSeek: true, Cutoff: &cut})
	assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument))
}
