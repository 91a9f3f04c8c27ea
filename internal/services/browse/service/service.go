// Package service scans the remote listing for series that the catalog does not hold yet
package service

import (
	"bufio"
	"context"
	"io"
	"os"
	"strconv"
	"strings"

	"curator/internal/core/paginate"
	"curator/internal/core/summary"
	perr "curator/internal/platform/errors"
	"curator/internal/platform/logger"
	catalog "curator/internal/services/catalog/domain"
)

// Header is the first line of the browse output
const Header = "accession\treleased\tsamples\tplatforms\ttitle"

// Request selects the slice of the listing to scan
type Request struct {
	Start     int
	Landmark  paginate.Landmark
	Limit     paginate.Limit
	Blocklist string // file of accessions to ignore
	// MaxNew stops the scan once this many new records were written; zero is unbounded
	MaxNew int
}

// Report counts what the scan saw
type Report struct {
	Scanned    int
	New        int
	Known      int
	Blocked    int
	Duplicate  int
	NextOffset int
}

// Service scans a paginate.Source against the catalog
type Service struct {
	Source  paginate.Source
	Catalog catalog.EntityRepo
	Scan    paginate.Options
}

// New constructs a browser; scan holds chunking and retry defaults
func New(src paginate.Source, cat catalog.EntityRepo, scan paginate.Options) *Service {
	if src == nil || cat == nil {
		panic("browse.Service requires a source and a catalog")
	}
	return &Service{Source: src, Catalog: cat, Scan: scan}
}

// Run writes one tsv row per new record to w. A fetch that exhausted its retries is
// returned with the report so far; NextOffset is where a rerun should start.
func (s *Service) Run(ctx context.Context, req Request, w io.Writer) (Report, error) {
	blocked, err := ReadBlocklist(req.Blocklist)
	if err != nil {
		return Report{}, err
	}

	opt := s.Scan
	opt.Start, opt.Landmark, opt.Limit = req.Start, req.Landmark, req.Limit
	scan := paginate.New(s.Source, opt)

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(Header + "\n"); err != nil {
		return Report{}, perr.Wrap(err, perr.ErrorCodeProcessing, "write browse header")
	}

	log := logger.C(ctx)
	var rep Report
	seen := map[string]bool{}
	done := func(next int, err error) (Report, error) {
		rep.NextOffset = next
		if ferr := bw.Flush(); err == nil && ferr != nil {
			err = perr.Wrap(ferr, perr.ErrorCodeProcessing, "flush browse output")
		}
		return rep, err
	}

	for page, err := range scan.Pages(ctx) {
		if err != nil {
			return done(page.Offset, err)
		}
		for _, r := range page.Records {
			rep.Scanned++
			switch {
			case seen[r.Accession]:
				rep.Duplicate++
				continue
			case blocked[r.Accession]:
				rep.Blocked++
				seen[r.Accession] = true
				continue
			}
			seen[r.Accession] = true

			known, err := s.known(ctx, r.Accession)
			if err != nil {
				return done(page.Offset, err)
			}
			if known {
				rep.Known++
				continue
			}
			if _, err := bw.WriteString(Row(r) + "\n"); err != nil {
				return done(page.Offset, perr.Wrap(err, perr.ErrorCodeProcessing, "write browse row"))
			}
			rep.New++
			if req.MaxNew > 0 && rep.New >= req.MaxNew {
				log.Info().Int("new", rep.New).Msg("browse cap reached")
				return done(page.Offset, nil)
			}
		}
		if err := bw.Flush(); err != nil {
			return done(page.Offset, perr.Wrap(err, perr.ErrorCodeProcessing, "flush browse output"))
		}
		log.Debug().Int("offset", page.Offset).Int("records", len(page.Records)).Int("new", rep.New).Msg("page done")
	}
	return done(scan.Offset(), nil)
}

func (s *Service) known(ctx context.Context, acc string) (bool, error) {
	_, err := s.Catalog.FindByAccession(ctx, acc)
	switch {
	case err == nil:
		return true, nil
	case perr.IsCode(err, perr.ErrorCodeNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Row renders r as one tsv line
func Row(r paginate.Record) string {
	released := ""
	if !r.Released.IsZero() {
		released = r.Released.UTC().Format("2006-01-02")
	}
	return strings.Join([]string{
		r.Accession,
		released,
		strconv.Itoa(r.SampleCount),
		strings.Join(r.Platforms, ","),
		summary.Escape(r.Title),
	}, "\t")
}

// ReadBlocklist reads accessions, one per line, ignoring blanks and # comments.
// An empty path gives an empty set.
func ReadBlocklist(path string) (map[string]bool, error) {
	out := map[string]bool{}
	if path == "" {
		return out, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeFatalConfig, "read blocklist %s", path)
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out[strings.Fields(line)[0]] = true
	}
	return out, perr.WrapIf(sc.Err(), perr.ErrorCodeFatalConfig, "read blocklist")
}
