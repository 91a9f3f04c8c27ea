// Package summary persists per-entity outcomes to a tab separated file that later runs can resume from
package summary

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"curator/internal/core/batch"
	perr "curator/internal/platform/errors"

	"golang.org/x/text/unicode/norm"
)

// DefaultRetry are the statuses a retry run processes again
var DefaultRetry = []batch.Status{batch.Unknown, batch.Failed, batch.Unsupported}

// Row is one parsed summary line
type Row struct {
	ID      int64
	Status  string
	Metrics []string
	Comment string
}

// Sink appends outcome rows and flushes after each one
type Sink struct {
	mu      sync.Mutex
	f       *os.File
	w       *bufio.Writer
	metrics int
}

// Header returns the header line for the given metric column names
func Header(metrics []string) string {
	cols := append([]string{"id", "status"}, metrics...)
	return strings.Join(append(cols, "comment"), "\t")
}

// Create truncates path and writes the header
func Create(path string, metrics []string) (*Sink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeFatalConfig, "create summary %s", path)
	}
	s := &Sink{f: f, w: bufio.NewWriter(f), metrics: len(metrics)}
	if _, err := s.w.WriteString(Header(metrics) + "\n"); err != nil {
		_ = f.Close()
		return nil, perr.Wrap(err, perr.ErrorCodeProcessing, "write summary header")
	}
	return s, s.w.Flush()
}

// Resume reads an existing summary. With retry statuses, rows in that set are dropped and the
// file rewritten before appending. It returns the ids that still count as done.
func Resume(path string, metrics []string, retry []batch.Status) (*Sink, map[int64]string, error) {
	rows, err := ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, perr.FatalConfigf("summary %s has no rows to resume from", path)
	}

	if len(retry) > 0 {
		drop := make(map[string]bool, len(retry))
		for _, st := range retry {
			drop[string(st)] = true
		}
		kept := rows[:0]
		for _, r := range rows {
			if !drop[r.Status] {
				kept = append(kept, r)
			}
		}
		rows = kept
		if err := rewrite(path, metrics, rows); err != nil {
			return nil, nil, err
		}
	}

	seen := make(map[int64]string, len(rows))
	for _, r := range rows {
		seen[r.ID] = r.Status
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, perr.Wrapf(err, perr.ErrorCodeFatalConfig, "open summary %s", path)
	}
	return &Sink{f: f, w: bufio.NewWriter(f), metrics: len(metrics)}, seen, nil
}

func rewrite(path string, metrics []string, rows []Row) error {
	tmp := path + ".tmp"
	s, err := Create(tmp, metrics)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := s.writeRow(r); err != nil {
			_ = s.Close()
			return err
		}
	}
	if err := s.Close(); err != nil {
		return err
	}
	return perr.WrapIf(os.Rename(tmp, path), perr.ErrorCodeProcessing, "replace summary")
}

// Write appends o and flushes
func (s *Sink) Write(o batch.Outcome) error {
	r := Row{ID: o.EntityID, Status: string(o.Status), Comment: comment(o)}
	for _, m := range o.Metrics {
		r.Metrics = append(r.Metrics, strconv.FormatFloat(m, 'g', -1, 64))
	}
	return s.writeRow(r)
}

func (s *Sink) writeRow(r Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cols := make([]string, 0, s.metrics+3)
	cols = append(cols, strconv.FormatInt(r.ID, 10), r.Status)
	for i := range s.metrics {
		v := ""
		if i < len(r.Metrics) {
			v = r.Metrics[i]
		}
		cols = append(cols, v)
	}
	cols = append(cols, Escape(r.Comment))
	if _, err := s.w.WriteString(strings.Join(cols, "\t") + "\n"); err != nil {
		return perr.Wrap(err, perr.ErrorCodeProcessing, "write summary row")
	}
	return perr.WrapIf(s.w.Flush(), perr.ErrorCodeProcessing, "flush summary")
}

// Close flushes and closes the file
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	ferr := s.w.Flush()
	cerr := s.f.Close()
	s.f = nil
	if ferr != nil {
		return ferr
	}
	return cerr
}

func comment(o batch.Outcome) string {
	switch {
	case o.Label != "" && o.Detail != "":
		return o.Label + " " + o.Detail
	case o.Label != "":
		return o.Label
	}
	return o.Detail
}

var (
	escaper   = strings.NewReplacer(`\`, `\\`, "\t", `\t`, "\n", `\n`, "\r", `\r`)
	unescaper = strings.NewReplacer(`\\`, `\`, `\t`, "\t", `\n`, "\n", `\r`, "\r")
)

// Escape normalizes s to NFC and escapes backslash, tab, LF and CR
func Escape(s string) string { return escaper.Replace(norm.NFC.String(s)) }

// Unescape reverses Escape
func Unescape(s string) string { return unescaper.Replace(s) }

// ReadFile parses a summary file; a missing file is a fatal configuration error
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeFatalConfig, "read summary %s", path)
	}
	defer f.Close()
	rows, err := Read(f)
	if err != nil {
		return nil, perr.WithOp(err, path)
	}
	return rows, nil
}

// Read parses a summary stream: a header line, then one row per entity
func Read(r io.Reader) ([]Row, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var rows []Row
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if line == 1 {
			if !strings.HasPrefix(text, "id\tstatus") {
				return nil, perr.FatalConfigf("summary header must start with id, status")
			}
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		cols := strings.Split(text, "\t")
		if len(cols) < 3 {
			return nil, perr.FatalConfigf("summary line %d: want at least id, status and comment", line)
		}
		id, err := strconv.ParseInt(cols[0], 10, 64)
		if err != nil {
			return nil, perr.FatalConfigf("summary line %d: bad id %q", line, cols[0])
		}
		rows = append(rows, Row{
			ID:      id,
			Status:  cols[1],
			Metrics: cols[2 : len(cols)-1],
			Comment: Unescape(cols[len(cols)-1]),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeFatalConfig, "scan summary")
	}
	return rows, nil
}
