// Package service runs maintenance operations over catalog entities
package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"curator/internal/core/batch"
	"curator/internal/core/relations"
	"curator/internal/core/staleness"
	"curator/internal/core/summary"
	perr "curator/internal/platform/errors"
	"curator/internal/platform/logger"
	catalog "curator/internal/services/catalog/domain"
	"curator/internal/services/maintenance/domain"

	"github.com/google/uuid"
)

// Config for the runner
type Config struct {
	// ReportFailures caps how many failures the end-of-run report lists
	ReportFailures int
}

// Service implements domain.RunnerPort
type Service struct {
	Catalog   catalog.Catalog
	Processor domain.Processor
	Ledger    domain.Ledger
	Archive   domain.Archive // optional
	Cfg       Config

	Now   func() time.Time
	NewID func() string
}

// New constructs a runner; catalog, processor and ledger are required
func New(cat catalog.Catalog, proc domain.Processor, ledger domain.Ledger, archive domain.Archive, cfg Config) *Service {
	if cat == nil || proc == nil || ledger == nil {
		panic("maintenance.Service requires a catalog, a processor and a ledger")
	}
	if cfg.ReportFailures <= 0 {
		cfg.ReportFailures = 10
	}
	return &Service{
		Catalog:   cat,
		Processor: proc,
		Ledger:    ledger,
		Archive:   archive,
		Cfg:       cfg,
		Now:       func() time.Time { return time.Now().UTC() },
		NewID:     newRunID,
	}
}

func newRunID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// plan is everything resolved before dispatch
type plan struct {
	op         staleness.Operation
	cfg        staleness.RunConfig
	candidates []catalog.Entity
	index      *relations.Index
	sink       *summary.Sink
	seen       map[int64]string

	unitTimeout time.Duration
}

// Run executes req. Configuration problems are returned before any entity is touched;
// per-entity failures are recorded as outcomes and never returned.
func (s *Service) Run(ctx context.Context, req domain.Request) (domain.Report, error) {
	p, err := s.prepare(ctx, req)
	if err != nil {
		return domain.Report{}, err
	}
	if p.sink != nil {
		defer p.sink.Close()
	}

	run := domain.Run{
		ID:          s.NewID(),
		Operation:   p.op.Name,
		Mode:        p.cfg.Mode(),
		Concurrency: p.cfg.Concurrency(),
		StartedAt:   s.Now(),
	}
	if c, ok := p.cfg.Cutoff(); ok {
		run.Cutoff = &c
	}
	ctx = logger.WithRun(ctx, run.ID, p.op.Name)
	log := logger.C(ctx)

	if err := s.Ledger.StartRun(ctx, run); err != nil {
		return domain.Report{}, perr.Wrap(err, perr.ErrorCodeDB, "start run")
	}
	log.Info().Str("config", p.cfg.String()).Int("candidates", len(p.candidates)).Int("resumed", len(p.seen)).Msg("run started")

	col := &batch.Collector{Observe: func(o batch.Outcome) {
		if p.sink != nil {
			if err := p.sink.Write(o); err != nil {
				log.Error().Err(err).Int64("entity_id", o.EntityID).Msg("summary write failed")
			}
		}
		if err := s.Ledger.RecordOutcome(ctx, domain.RowFrom(run.ID, o)); err != nil {
			log.Error().Err(err).Int64("entity_id", o.EntityID).Msg("ledger write failed")
		}
	}}

	units := s.decide(ctx, p, col)
	batch.RunAllNotify(ctx, units, p.cfg.Concurrency(), col.Add)

	counts := col.Counts()
	fin := s.Now()
	run.FinishedAt = &fin
	run.Succeeded, run.Skipped, run.Failed = counts[batch.Success], counts[batch.Skipped], counts[batch.Failed]
	run.Unsupported = counts[batch.Unsupported] + counts[batch.Unknown]
	if err := s.Ledger.FinishRun(ctx, run); err != nil {
		log.Error().Err(err).Msg("ledger finish failed")
	}
	if s.Archive != nil {
		if err := s.Archive.Archive(ctx, run, col.Snapshot()); err != nil {
			log.Error().Err(err).Msg("outcome archive failed")
		}
	}

	rep := domain.Report{
		RunID:     run.ID,
		Operation: p.op.Name,
		Counts:    counts,
		Failures:  col.Failures(s.Cfg.ReportFailures),
		Duration:  fin.Sub(run.StartedAt),
	}
	logReport(log, rep)
	return rep, nil
}

// prepare validates req and resolves candidates, relations and the summary file
func (s *Service) prepare(ctx context.Context, req domain.Request) (*plan, error) {
	cfg, err := staleness.NewRunConfig(req.Staleness)
	if err != nil {
		return nil, err
	}
	op, err := domain.Operation(req.Operation)
	if err != nil {
		return nil, err
	}
	so := req.Summary
	switch {
	case so.Retry && !so.Resume:
		return nil, perr.FatalConfigf("retry requires resume")
	case so.Resume && so.Path == "":
		return nil, perr.FatalConfigf("resume requires a summary file")
	}

	cands, err := selectCandidates(ctx, s.Catalog, req.Select)
	if err != nil {
		return nil, err
	}
	nodes, err := s.Catalog.Nodes(ctx)
	if err != nil {
		return nil, err
	}
	ix, err := relations.Build(nodes)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeFatalConfig, "catalog relations")
	}

	p := &plan{op: op, cfg: cfg, candidates: cands, index: ix, unitTimeout: req.UnitTimeout}
	switch {
	case so.Resume:
		var retry []batch.Status
		if so.Retry {
			retry = so.RetryStatuses
			if len(retry) == 0 {
				retry = summary.DefaultRetry
			}
		}
		sink, seen, err := summary.Resume(so.Path, so.Metrics, retry)
		if err != nil {
			return nil, err
		}
		if stray := strayIDs(seen, cands); len(stray) > 0 {
			_ = sink.Close()
			return nil, perr.FatalConfigf("summary %s lists ids that are not candidates: %v", so.Path, stray)
		}
		p.sink, p.seen = sink, seen
		p.candidates = slices.DeleteFunc(p.candidates, func(e catalog.Entity) bool {
			_, done := seen[e.ID]
			return done
		})
	case so.Path != "":
		sink, err := summary.Create(so.Path, so.Metrics)
		if err != nil {
			return nil, err
		}
		p.sink = sink
	}
	// the limit counts work still to do, so a resumed run moves on to the next chunk
	if n := req.Select.Limit; n > 0 && len(p.candidates) > n {
		p.candidates = p.candidates[:n]
	}
	return p, nil
}

func strayIDs(seen map[int64]string, cands []catalog.Entity) []int64 {
	in := make(map[int64]bool, len(cands))
	for _, e := range cands {
		in[e.ID] = true
	}
	var out []int64
	for id := range seen {
		if !in[id] {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

// decide records skips straight into col and returns units for the rest
func (s *Service) decide(ctx context.Context, p *plan, col *batch.Collector) []batch.Unit {
	log := logger.C(ctx)
	var units []batch.Unit
	for _, e := range p.candidates {
		evs, err := s.Catalog.EventsOf(ctx, e.ID)
		if err != nil {
			col.Add(batch.Outcome{EntityID: e.ID, Status: batch.Failed, Detail: "load history: " + err.Error(), Err: err, At: s.Now()})
			continue
		}
		d := staleness.ShouldRun(subjectOf(e, evs, p.index), p.op, p.cfg)
		if !d.Run {
			log.Info().Int64("entity_id", e.ID).Str("accession", e.Accession).Str("reason", d.String()).Msg("skipped")
			col.Add(batch.Outcome{EntityID: e.ID, Status: batch.Skipped, Detail: d.String(), At: s.Now()})
			continue
		}
		units = append(units, batch.Unit{EntityID: e.ID, Do: s.unit(e, p)})
	}
	return units
}

// unit processes one entity, records the event, then marks related children
func (s *Service) unit(e catalog.Entity, p *plan) func(context.Context) (batch.Outcome, error) {
	return func(ctx context.Context) (batch.Outcome, error) {
		ctx, cancel := withUnitTimeout(ctx, p.unitTimeout)
		defer cancel()

		res, err := s.Processor.Process(ctx, e, p.op)
		if err != nil {
			logger.C(ctx).Error().Err(err).Int64("entity_id", e.ID).Str("accession", e.Accession).Msg("processing failed")
			return batch.Outcome{Label: res.Label, Detail: res.Detail}, err
		}
		out := batch.Outcome{Status: res.Status, Label: res.Label, Detail: res.Detail, Metrics: res.Metrics}
		if res.Status != "" && res.Status != batch.Success {
			return out, nil
		}

		at := s.Now()
		if err := s.Catalog.AppendEvent(ctx, e.ID, p.op.Tag, res.Note, at); err != nil {
			return out, perr.Wrap(err, perr.ErrorCodeDB, "record event")
		}
		if err := s.propagate(ctx, e, p, at); err != nil {
			return out, err
		}
		out.At = at
		return out, nil
	}
}

func (s *Service) propagate(ctx context.Context, e catalog.Entity, p *plan, at time.Time) error {
	if !p.op.Propagate.Resolved() {
		return nil
	}
	note := fmt.Sprintf("Parent %s was processed (merged or subsumed by this)", e.Accession)
	for _, child := range p.index.RelatedOf(e.ID) {
		if err := s.Catalog.AppendEvent(ctx, child, p.op.Propagate, note, at); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeDB, "propagate to %d", child)
		}
		logger.C(ctx).Debug().Int64("entity_id", e.ID).Int64("child_id", child).Msg("propagated")
	}
	return nil
}

func logReport(log *logger.Logger, rep domain.Report) {
	ev := log.Info()
	if rep.Counts[batch.Failed] > 0 {
		ev = log.Warn()
	}
	ev.Int("succeeded", rep.Counts[batch.Success]).
		Int("skipped", rep.Counts[batch.Skipped]).
		Int("failed", rep.Counts[batch.Failed]).
		Int("unsupported", rep.Counts[batch.Unsupported]+rep.Counts[batch.Unknown]).
		Dur("took", rep.Duration).
		Msg("run finished")
	for _, f := range rep.Failures {
		log.Warn().Int64("entity_id", f.EntityID).Str("detail", f.Detail).Msg("failed entity")
	}
}
