package paginate

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"curator/internal/core/retry"
	perr "curator/internal/platform/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

// fakeSource serves a fixed listing, newest first, with optional failures per offset
type fakeSource struct {
	recs    []Record
	fail    map[int]int // offset -> remaining transient failures
	hard    map[int]error
	calls   []string
	emptyAt map[int]bool
}

func listing(n int) []Record {
	out := make([]Record, n)
	for i := range out {
		out[i] = Record{Accession: fmt.Sprintf("GSE%d", 1000-i), Released: day0.AddDate(0, 0, -i)}
	}
	return out
}

func (f *fakeSource) Fetch(_ context.Context, offset, count int, detailed bool) (Page, error) {
	f.calls = append(f.calls, fmt.Sprintf("%d/%v", offset, detailed))
	if err, ok := f.hard[offset]; ok {
		return Page{}, err
	}
	if f.fail[offset] > 0 {
		f.fail[offset]--
		return Page{}, perr.Unavailablef("503 at %d", offset)
	}
	if f.emptyAt[offset] || offset >= len(f.recs) {
		return Page{}, nil
	}
	end := min(len(f.recs), offset+count)
	return Page{Records: f.recs[offset:end]}, nil
}

var fast = retry.Policy{MaxAttempts: 5, Delay: time.Microsecond, Linear: true}

func collect(t *testing.T, s *Scan) ([]string, error) {
	t.Helper()
	var accs []string
	for p, err := range s.Pages(context.Background()) {
		if err != nil {
			return accs, err
		}
		for _, r := range p.Records {
			accs = append(accs, r.Accession)
		}
	}
	return accs, nil
}

func TestScanAllThenStopsAfterEmptyStreak(t *testing.T) {
	src := &fakeSource{recs: listing(25)}
	s := New(src, Options{Chunk: 10, MaxEmpty: 2, Retry: fast})
	accs, err := collect(t, s)
	require.NoError(t, err)
	assert.Len(t, accs, 25)
	assert.Equal(t, "GSE1000", accs[0])
	// three pages of data, then empty chunks 30, 40, 50 (streak 3 > 2)
	assert.Equal(t, []string{"0/true", "10/true", "20/true", "30/true", "40/true", "50/true"}, src.calls)
	assert.Equal(t, 60, s.Offset())
}

func TestEmptyStreakResets(t *testing.T) {
	src := &fakeSource{recs: listing(40), emptyAt: map[int]bool{10: true, 20: true}}
	accs, err := collect(t, New(src, Options{Chunk: 10, MaxEmpty: 2, Retry: fast}))
	require.NoError(t, err)
	assert.Len(t, accs, 20)
}

func TestTransientFailuresRetried(t *testing.T) {
	src := &fakeSource{recs: listing(15), fail: map[int]int{10: 4}}
	accs, err := collect(t, New(src, Options{Chunk: 10, MaxEmpty: 1, Retry: fast}))
	require.NoError(t, err)
	assert.Len(t, accs, 15)
}

func TestEveryChunkFailsTwiceThenSucceeds(t *testing.T) {
	src := &fakeSource{recs: listing(900), fail: map[int]int{0: 2, 100: 2, 200: 2}}
	s := New(src, Options{Chunk: 100, Retry: fast})

	var pages []int
	for p, err := range s.Pages(context.Background()) {
		require.NoError(t, err)
		require.Len(t, p.Records, 100)
		pages = append(pages, p.Offset)
		if len(pages) == 3 {
			break
		}
	}
	assert.Equal(t, []int{0, 100, 200}, pages)
	assert.Equal(t, 300, s.Offset())
	assert.Len(t, src.calls, 9)
}

func TestRetriesExhaustedEndsWithError(t *testing.T) {
	src := &fakeSource{recs: listing(15), fail: map[int]int{10: 5}}
	accs, err := collect(t, New(src, Options{Chunk: 10, Retry: fast}))
	require.Error(t, err)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeUnavailable))
	assert.Contains(t, err.Error(), "too many failures")
	assert.Len(t, accs, 10)
}

func TestPermanentFailureNotRetried(t *testing.T) {
	boom := errors.New("400 bad query")
	src := &fakeSource{recs: listing(15), hard: map[int]error{0: boom}}
	_, err := collect(t, New(src, Options{Chunk: 10, Retry: fast}))
	assert.ErrorIs(t, err, boom)
	assert.Len(t, src.calls, 1)
}

func TestLandmarkRewindsAndSkipsCoarsePages(t *testing.T) {
	src := &fakeSource{recs: listing(50)}
	s := New(src, Options{
		Chunk:    10,
		MaxEmpty: 1,
		Retry:    fast,
		Landmark: Landmark{Accession: "GSE975"}, // index 25, page at offset 20
	})
	assert.False(t, s.Detailed())
	accs, err := collect(t, s)
	require.NoError(t, err)
	assert.True(t, s.Detailed())
	assert.Equal(t, "GSE980", accs[0])
	assert.Len(t, accs, 30)
	assert.Equal(t, []string{"0/false", "10/false", "20/false", "20/true", "30/true", "40/true", "50/true", "60/true"}, src.calls)
}

func TestLandmarkByDateOnFirstPage(t *testing.T) {
	src := &fakeSource{recs: listing(12)}
	s := New(src, Options{Chunk: 10, MaxEmpty: 1, Retry: fast, Landmark: Landmark{Before: day0.AddDate(0, 0, -3)}})
	accs, err := collect(t, s)
	require.NoError(t, err)
	assert.Len(t, accs, 12)
	assert.Equal(t, "0/false", src.calls[0])
	assert.Equal(t, "0/true", src.calls[1])
}

func TestStopLimits(t *testing.T) {
	cases := []struct {
		name  string
		limit Limit
		want  int
	}{
		{"accession mid page", Limit{Accession: "GSE986"}, 14},
		{"accession first on page", Limit{Accession: "GSE990"}, 10},
		{"release date", Limit{Before: day0.AddDate(0, 0, -5)}, 6},
		{"first record", Limit{Accession: "GSE1000"}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := &fakeSource{recs: listing(40)}
			accs, err := collect(t, New(src, Options{Chunk: 10, Retry: fast, Limit: tc.limit}))
			require.NoError(t, err)
			assert.Len(t, accs, tc.want)
		})
	}
}

func TestStartOffsetAndEarlyBreak(t *testing.T) {
	src := &fakeSource{recs: listing(100)}
	s := New(src, Options{Start: 30, Chunk: 10, Retry: fast})
	for p, err := range s.Pages(context.Background()) {
		require.NoError(t, err)
		assert.Equal(t, 30, p.Offset)
		break
	}
	assert.Equal(t, 40, s.Offset())
	assert.Len(t, src.calls, 1)
}

func TestDefaults(t *testing.T) {
	s := New(&fakeSource{}, Options{Start: -5})
	assert.Equal(t, 0, s.Offset())
	assert.Equal(t, DefaultChunk, s.opt.Chunk)
	assert.Equal(t, DefaultMaxEmpty, s.opt.MaxEmpty)
	assert.Equal(t, retry.Default, s.opt.Retry)
	assert.True(t, s.Detailed())
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, err := range New(&fakeSource{recs: listing(5)}, Options{Retry: fast}).Pages(ctx) {
		assert.ErrorIs(t, err, context.Canceled)
	}
}
