package repo

import (
	"cmp"
	"context"
	"slices"
	"sync"

	perr "curator/internal/platform/errors"
	"curator/internal/services/maintenance/domain"
)

// Memory is a ledger held in process, for tests and catalogs without a database
type Memory struct {
	mu       sync.Mutex
	runs     map[string]domain.Run
	outcomes map[string]map[int64]domain.OutcomeRow
}

// NewMemory returns an empty ledger
func NewMemory() *Memory {
	return &Memory{runs: map[string]domain.Run{}, outcomes: map[string]map[int64]domain.OutcomeRow{}}
}

// StartRun implements domain.Ledger
func (m *Memory) StartRun(_ context.Context, r domain.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.runs[r.ID]; dup {
		return perr.Newf(perr.ErrorCodeDuplicateKey, "run %s already started", r.ID)
	}
	m.runs[r.ID] = r
	m.outcomes[r.ID] = map[int64]domain.OutcomeRow{}
	return nil
}

// RecordOutcome implements domain.Ledger
func (m *Memory) RecordOutcome(_ context.Context, o domain.OutcomeRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.outcomes[o.RunID]
	if !ok {
		return perr.NotFoundf("run %s not found", o.RunID)
	}
	rows[o.EntityID] = o
	return nil
}

// FinishRun implements domain.Ledger
func (m *Memory) FinishRun(_ context.Context, r domain.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[r.ID]; !ok {
		return perr.NotFoundf("run %s not found", r.ID)
	}
	m.runs[r.ID] = r
	return nil
}

// Outcomes implements domain.Ledger
func (m *Memory) Outcomes(_ context.Context, runID string) ([]domain.OutcomeRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.OutcomeRow, 0, len(m.outcomes[runID]))
	for _, o := range m.outcomes[runID] {
		out = append(out, o)
	}
	slices.SortFunc(out, func(a, b domain.OutcomeRow) int { return cmp.Compare(a.EntityID, b.EntityID) })
	return out, nil
}

// GetRun implements domain.Ledger
func (m *Memory) GetRun(_ context.Context, id string) (domain.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	if !ok {
		return r, perr.NotFoundf("run %s not found", id)
	}
	return r, nil
}

// RecentRuns implements domain.Ledger
func (m *Memory) RecentRuns(_ context.Context, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Run, 0, len(m.runs))
	for _, r := range m.runs {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b domain.Run) int {
		if c := b.StartedAt.Compare(a.StartedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Run returns the stored run, if any
func (m *Memory) Run(id string) (domain.Run, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	return r, ok
}
