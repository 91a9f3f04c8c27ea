package mark

import (
	"context"
	"testing"

	"curator/internal/core/staleness"
	catalog "curator/internal/services/catalog/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess(t *testing.T) {
	res, err := New("").Process(context.Background(), catalog.Entity{ID: 1}, staleness.Operation{Name: "repeat-scan"})
	require.NoError(t, err)
	assert.Empty(t, res.Status)
	assert.Equal(t, DefaultNote, res.Note)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New("imported").Process(ctx, catalog.Entity{ID: 1}, staleness.Operation{})
	assert.ErrorIs(t, err, context.Canceled)
}
