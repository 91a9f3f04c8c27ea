// Package paginate walks a remote listing chunk by chunk, retrying transient failures
package paginate

import (
	"context"
	"iter"
	"time"

	"curator/internal/core/retry"
	"curator/internal/platform/logger"
)

// Defaults applied by New when Options leaves a field at zero
const (
	DefaultChunk    = 100
	DefaultMaxEmpty = 50
)

// Record is one remote listing entry
type Record struct {
	Accession   string    `json:"accession"`
	Title       string    `json:"title,omitempty"`
	Released    time.Time `json:"released"`
	Platforms   []string  `json:"platforms,omitempty"`
	SampleCount int       `json:"sample_count,omitempty"`
}

// Page is one fetched chunk starting at Offset
type Page struct {
	Offset  int
	Records []Record
}

// Source fetches count records starting at offset; coarse fetches may leave details empty
type Source interface {
	Fetch(ctx context.Context, offset, count int, detailed bool) (Page, error)
}

// Marker matches a record by accession or by a release date strictly before Before
type Marker struct {
	Accession string
	Before    time.Time
}

func (m Marker) zero() bool { return m.Accession == "" && m.Before.IsZero() }

func (m Marker) match(r Record) bool {
	if m.Accession != "" && r.Accession == m.Accession {
		return true
	}
	return !m.Before.IsZero() && !r.Released.IsZero() && r.Released.Before(m.Before)
}

// Landmark is where detailed scanning starts; Limit is where the scan stops
type (
	Landmark = Marker
	Limit    = Marker
)

// Options tune a Scan
type Options struct {
	Start    int
	Chunk    int
	MaxEmpty int
	Retry    retry.Policy
	Landmark Landmark
	Limit    Limit
}

// Scan is a lazy, single-use walk over a Source
type Scan struct {
	src      Source
	opt      Options
	offset   int
	detailed bool
	empty    int
}

// New prepares a scan; nothing is fetched until Pages is ranged over
func New(src Source, opt Options) *Scan {
	if opt.Chunk <= 0 {
		opt.Chunk = DefaultChunk
	}
	if opt.MaxEmpty <= 0 {
		opt.MaxEmpty = DefaultMaxEmpty
	}
	if opt.Retry.MaxAttempts == 0 {
		opt.Retry = retry.Default
	}
	return &Scan{
		src:      src,
		opt:      opt,
		offset:   max(0, opt.Start),
		detailed: opt.Landmark.zero(),
	}
}

// Offset is where the next fetch will start
func (s *Scan) Offset() int { return s.offset }

// Detailed reports whether the scan has passed the landmark
func (s *Scan) Detailed() bool { return s.detailed }

// Pages yields detailed pages in order. A fetch that exhausts its retries yields the
// error once and ends the sequence; every other stop ends it without an error.
func (s *Scan) Pages(ctx context.Context) iter.Seq2[Page, error] {
	return func(yield func(Page, error) bool) {
		log := logger.C(ctx)
		for {
			if err := ctx.Err(); err != nil {
				yield(Page{Offset: s.offset}, err)
				return
			}
			at, detailed := s.offset, s.detailed
			page, err := retry.Do(ctx, s.opt.Retry, func(ctx context.Context) (Page, error) {
				return s.src.Fetch(ctx, at, s.opt.Chunk, detailed)
			})
			if err != nil {
				yield(Page{Offset: at}, err)
				return
			}
			page.Offset = at
			s.offset += s.opt.Chunk

			if len(page.Records) == 0 {
				s.empty++
				if s.empty > s.opt.MaxEmpty {
					log.Info().Int("offset", s.offset).Int("empty_chunks", s.empty).Msg("listing exhausted")
					return
				}
				continue
			}
			s.empty = 0

			if !s.detailed {
				if find(page.Records, s.opt.Landmark) >= 0 {
					s.detailed = true
					s.offset = max(0, s.offset-s.opt.Chunk)
					log.Info().Int("offset", s.offset).Msg("landmark reached, switching to detailed scan")
				}
				continue
			}

			if i := find(page.Records, s.opt.Limit); i >= 0 {
				if i > 0 {
					yield(Page{Offset: at, Records: page.Records[:i]}, nil)
				}
				log.Info().Str("accession", page.Records[i].Accession).Msg("stop limit reached")
				return
			}
			if !yield(page, nil) {
				return
			}
		}
	}
}

func find(recs []Record, m Marker) int {
	if m.zero() {
		return -1
	}
	for i, r := range recs {
		if m.match(r) {
			return i
		}
	}
	return -1
}
