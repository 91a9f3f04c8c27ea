package service

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"curator/internal/core/paginate"
	"curator/internal/core/retry"
	perr "curator/internal/platform/errors"
	catalog "curator/internal/services/catalog/domain"
	catrepo "curator/internal/services/catalog/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listSource struct {
	recs    []paginate.Record
	failAt  int // offset that always fails; -1 for none
	fetches []int
}

func (l *listSource) Fetch(_ context.Context, offset, count int, _ bool) (paginate.Page, error) {
	l.fetches = append(l.fetches, offset)
	if offset == l.failAt {
		return paginate.Page{}, perr.Unavailablef("upstream down")
	}
	if offset >= len(l.recs) {
		return paginate.Page{Offset: offset}, nil
	}
	return paginate.Page{Offset: offset, Records: l.recs[offset:min(offset+count, len(l.recs))]}, nil
}

func rec(acc string, day int, title string) paginate.Record {
	return paginate.Record{
		Accession:   acc,
		Title:       title,
		Released:    time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC),
		Platforms:   []string{"GPL570"},
		SampleCount: day,
	}
}

func newBrowser(src paginate.Source) *Service {
	cat := catrepo.NewMemoryFrom(catrepo.Fixture{Entities: []catrepo.FixtureEntity{
		{Entity: catalog.Entity{ID: 1, Accession: "GSE3", Kind: catalog.KindNone}},
	}})
	return New(src, cat, paginate.Options{
		Chunk:    2,
		MaxEmpty: 1,
		Retry:    retry.Policy{MaxAttempts: 2, Delay: time.Millisecond, Linear: true},
	})
}

func TestRunWritesNewRecords(t *testing.T) {
	dir := t.TempDir()
	block := filepath.Join(dir, "block.txt")
	require.NoError(t, os.WriteFile(block, []byte("# noisy\nGSE4  spam\n"), 0o644))

	src := &listSource{failAt: -1, recs: []paginate.Record{
		rec("GSE1", 20, "Liver\ttime course"),
		rec("GSE2", 19, "Kidney"),
		rec("GSE2", 19, "Kidney"),
		rec("GSE3", 18, "Known"),
		rec("GSE4", 17, "Blocked"),
		rec("GSE5", 16, "Heart"),
	}}

	var out bytes.Buffer
	rep, err := newBrowser(src).Run(context.Background(), Request{Blocklist: block}, &out)
	require.NoError(t, err)
	assert.Equal(t, Report{Scanned: 6, New: 3, Known: 1, Blocked: 1, Duplicate: 1, NextOffset: 10}, rep)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, Header, lines[0])
	assert.Equal(t, "GSE1\t2024-03-20\t20\tGPL570\tLiver\\ttime course", lines[1])
	assert.True(t, strings.HasPrefix(lines[3], "GSE5\t"))
}

func TestRunStopsAtLimitAndCap(t *testing.T) {
	src := &listSource{failAt: -1, recs: []paginate.Record{
		rec("GSE1", 20, "a"), rec("GSE2", 19, "b"), rec("GSE5", 16, "c"), rec("GSE6", 15, "d"),
	}}
	var out bytes.Buffer
	rep, err := newBrowser(src).Run(context.Background(), Request{Limit: paginate.Limit{Accession: "GSE5"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.New)

	out.Reset()
	rep, err = newBrowser(src).Run(context.Background(), Request{MaxNew: 3}, &out)
	require.NoError(t, err)
	assert.Equal(t, 3, rep.New)
	assert.Equal(t, 2, rep.NextOffset, "rerun restarts at the page holding the cap")
}

func TestRunReportsResumeOffsetOnFetchFailure(t *testing.T) {
	src := &listSource{failAt: 2, recs: []paginate.Record{rec("GSE1", 20, "a"), rec("GSE2", 19, "b"), rec("GSE7", 14, "c")}}
	var out bytes.Buffer
	rep, err := newBrowser(src).Run(context.Background(), Request{}, &out)
	require.Error(t, err)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeUnavailable))
	assert.Equal(t, 2, rep.New)
	assert.Equal(t, 2, rep.NextOffset)
	assert.Contains(t, out.String(), "GSE2\t")
}

func TestReadBlocklistMissing(t *testing.T) {
	_, err := ReadBlocklist(filepath.Join(t.TempDir(), "nope"))
	assert.True(t, perr.IsFatalConfig(err))

	got, err := ReadBlocklist("")
	require.NoError(t, err)
	assert.Empty(t, got)
}
