package summary

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"curator/internal/core/batch"
	perr "curator/internal/platform/errors"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var metrics = []string{"score", "pvalue"}

func writeSample(t *testing.T, path string) {
	t.Helper()
	s, err := Create(path, metrics)
	require.NoError(t, err)
	for _, o := range []batch.Outcome{
		{EntityID: 12, Status: batch.Success, Label: "OK", Metrics: []float64{0.75, 1e-06}},
		{EntityID: 7, Status: batch.Failed, Detail: "line1\nline2\ttab \\ slash"},
		{EntityID: 30, Status: batch.Skipped, Detail: "already up to date"},
		{EntityID: 31, Status: batch.Success, Metrics: []float64{2}, Detail: "Café ok"},
	} {
		require.NoError(t, s.Write(o))
	}
	require.NoError(t, s.Close())
}

func TestSummaryFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.tsv")
	writeSample(t, path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "summary", b)
}

func TestRowsFlushedBeforeClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.tsv")
	s, err := Create(path, nil)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Write(batch.Outcome{EntityID: 1, Status: batch.Success}))
	rows, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].ID)
}

func TestReadRoundTripsComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.tsv")
	writeSample(t, path)

	rows, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "line1\nline2\ttab \\ slash", rows[1].Comment)
	assert.Equal(t, []string{"0.75", "1e-06"}, rows[0].Metrics)
	assert.Equal(t, "Café ok", rows[3].Comment)
}

func TestEscape(t *testing.T) {
	cases := map[string]string{
		"plain":      "plain",
		"a\tb":       `a\tb`,
		"a\r\nb":     `a\r\nb`,
		`back\slash`: `back\\slash`,
		`\t literal`: `\\t literal`,
		"":           "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Escape(in), in)
		assert.Equal(t, in, Unescape(want), want)
	}
}

func TestResume(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.tsv")
	writeSample(t, path)

	s, seen, err := Resume(path, metrics, nil)
	require.NoError(t, err)
	assert.Equal(t, map[int64]string{12: "SUCCESS", 7: "FAILED", 30: "SKIPPED", 31: "SUCCESS"}, seen)
	require.NoError(t, s.Write(batch.Outcome{EntityID: 40, Status: batch.Success}))
	require.NoError(t, s.Close())

	rows, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}

func TestResumeRetryRewrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.tsv")
	writeSample(t, path)

	s, seen, err := Resume(path, metrics, DefaultRetry)
	require.NoError(t, err)
	assert.NotContains(t, seen, int64(7))
	assert.Len(t, seen, 3)
	require.NoError(t, s.Write(batch.Outcome{EntityID: 7, Status: batch.Success}))
	require.NoError(t, s.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	assert.Equal(t, Header(metrics), lines[0])
	assert.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[4], "7\tSUCCESS\t"))
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestResumeErrors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := Resume(filepath.Join(dir, "missing.tsv"), nil, nil)
	assert.True(t, perr.IsFatalConfig(err))

	empty := filepath.Join(dir, "empty.tsv")
	s, err := Create(empty, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	_, _, err = Resume(empty, nil, nil)
	assert.True(t, perr.IsFatalConfig(err))
	assert.Contains(t, err.Error(), "no rows")

	bad := filepath.Join(dir, "bad.tsv")
	require.NoError(t, os.WriteFile(bad, []byte("id\tstatus\tcomment\nx\tSUCCESS\t\n"), 0o644))
	_, err = ReadFile(bad)
	assert.True(t, perr.IsFatalConfig(err))

	noHeader := filepath.Join(dir, "nohdr.tsv")
	require.NoError(t, os.WriteFile(noHeader, []byte("1\tSUCCESS\t\n"), 0o644))
	_, err = ReadFile(noHeader)
	assert.True(t, perr.IsFatalConfig(err))
}

func TestResumeAppendsDisjointRows(t *testing.T) {
	dir := t.TempDir()
	statuses := []batch.Status{batch.Success, batch.Skipped, batch.Failed, batch.Unsupported}
	n := 0

	rapid.Check(t, func(rt *rapid.T) {
		ids := rapid.SliceOfNDistinct(rapid.Int64Range(1, 5_000), 2, 60, rapid.ID[int64]).Draw(rt, "ids")
		split := rapid.IntRange(1, len(ids)-1).Draw(rt, "split")
		a, b := ids[:split], ids[split:]
		st := rapid.SampledFrom(statuses)

		n++
		path := filepath.Join(dir, fmt.Sprintf("summary-%d.tsv", n))
		s, err := Create(path, nil)
		if err != nil {
			rt.Fatalf("create: %v", err)
		}
		for _, id := range a {
			if err := s.Write(batch.Outcome{EntityID: id, Status: st.Draw(rt, "status")}); err != nil {
				rt.Fatalf("write: %v", err)
			}
		}
		if err := s.Close(); err != nil {
			rt.Fatalf("close: %v", err)
		}

		s, seen, err := Resume(path, nil, nil)
		if err != nil {
			rt.Fatalf("resume: %v", err)
		}
		if len(seen) != len(a) {
			rt.Fatalf("resume saw %d ids, wrote %d", len(seen), len(a))
		}
		for _, id := range b {
			if err := s.Write(batch.Outcome{EntityID: id, Status: st.Draw(rt, "status")}); err != nil {
				rt.Fatalf("write: %v", err)
			}
		}
		if err := s.Close(); err != nil {
			rt.Fatalf("close: %v", err)
		}

		rows, err := ReadFile(path)
		if err != nil {
			rt.Fatalf("read: %v", err)
		}
		got := make([]int64, len(rows))
		for i, r := range rows {
			got[i] = r.ID
		}
		want := slices.Concat(a, b)
		if !slices.Equal(got, want) {
			rt.Fatalf("file ids %v, want %v", got, want)
		}
	})
}
