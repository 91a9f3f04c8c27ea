package repo

import (
	"cmp"
	"context"
	"io"
	"os"
	"slices"
	"sync"
	"time"

	"curator/internal/core/eventlog"
	"curator/internal/core/relations"
	perr "curator/internal/platform/errors"
	"curator/internal/services/catalog/domain"

	"gopkg.in/yaml.v3"
)

// Fixture is the yaml seed format
//
//	entities:
//	  - id: 1
//	    accession: GPL96
//	    kind: ONECOLOR
//	    events:
//	      - type: ArrayDesignSequenceAnalysisEvent
//	        at: 2024-01-02T00:00:00Z
type Fixture struct {
	Entities []FixtureEntity `yaml:"entities"`
}

// FixtureEntity is an entity with its recorded history
type FixtureEntity struct {
	domain.Entity `yaml:",inline"`
	Events        []eventlog.Event `yaml:"events,omitempty"`
}

// ReadFixture decodes yaml, rejecting unknown fields
func ReadFixture(r io.Reader) (Fixture, error) {
	var fx Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil && err != io.EOF {
		return Fixture{}, perr.Wrap(err, perr.ErrorCodeFatalConfig, "decode catalog fixture")
	}
	return fx, nil
}

// ReadFixtureFile is ReadFixture on a path
func ReadFixtureFile(path string) (Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return Fixture{}, perr.Wrapf(err, perr.ErrorCodeFatalConfig, "open catalog fixture %s", path)
	}
	defer f.Close()
	return ReadFixture(f)
}

// Seed writes every fixture entity and event into st
func Seed(ctx context.Context, st Storage, fx Fixture) error {
	for _, fe := range fx.Entities {
		if err := st.Upsert(ctx, fe.Entity); err != nil {
			return err
		}
	}
	for _, fe := range fx.Entities {
		for _, ev := range fe.Events {
			if !ev.Type.Resolved() {
				continue
			}
			if err := st.AppendEvent(ctx, fe.ID, ev.Type, ev.Note, ev.At); err != nil {
				return err
			}
		}
	}
	return nil
}

// Memory is an in-process catalog for tests and fixture runs
type Memory struct {
	mu       sync.RWMutex
	entities map[int64]domain.Entity
	events   map[int64][]eventlog.Event
}

// NewMemory returns an empty catalog
func NewMemory() *Memory {
	return &Memory{
		entities: map[int64]domain.Entity{},
		events:   map[int64][]eventlog.Event{},
	}
}

// NewMemoryFrom builds a catalog from fx; events of unknown type are dropped, as Seed does
func NewMemoryFrom(fx Fixture) *Memory {
	m := NewMemory()
	for _, fe := range fx.Entities {
		m.entities[fe.ID] = fe.Entity
		for _, ev := range fe.Events {
			if ev.Type.Resolved() {
				ev.At = ev.At.UTC()
				m.events[fe.ID] = append(m.events[fe.ID], ev)
			}
		}
	}
	return m
}

// Upsert implements Storage
func (m *Memory) Upsert(_ context.Context, e domain.Entity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities[e.ID] = e
	return nil
}

// Select implements domain.EntityRepo
func (m *Memory) Select(_ context.Context, f domain.Filter) ([]domain.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Entity
	for _, e := range m.entities {
		if len(f.IDs) > 0 && !slices.Contains(f.IDs, e.ID) {
			continue
		}
		if len(f.Kinds) > 0 && !slices.Contains(f.Kinds, e.Kind) {
			continue
		}
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b domain.Entity) int { return cmp.Compare(a.ID, b.ID) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// Get implements domain.EntityRepo
func (m *Memory) Get(_ context.Context, id int64) (domain.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entities[id]
	if !ok {
		return e, perr.NotFoundf("entity %d not found", id)
	}
	return e, nil
}

// FindByAccession implements domain.EntityRepo
func (m *Memory) FindByAccession(_ context.Context, acc string) (domain.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entities {
		if e.Accession == acc {
			return e, nil
		}
	}
	return domain.Entity{}, perr.NotFoundf("entity %s not found", acc)
}

// AppendEvent implements domain.EventStore
func (m *Memory) AppendEvent(_ context.Context, id int64, tag eventlog.Tag, note string, at time.Time) error {
	if !tag.Resolved() {
		return perr.InvalidArgf("append event to %d: unresolved event type", id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entities[id]; !ok {
		return perr.NotFoundf("entity %d not found", id)
	}
	m.events[id] = append(m.events[id], eventlog.Event{Type: tag, At: at.UTC(), Note: note})
	return nil
}

// EventsOf implements domain.EventStore, in storage order
func (m *Memory) EventsOf(_ context.Context, id int64) ([]eventlog.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return eventlog.FromEvents(m.events[id]).Events(), nil
}

// ChildrenOf implements domain.RelationLookup
func (m *Memory) ChildrenOf(_ context.Context, id int64) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []int64
	for _, e := range m.entities {
		if (e.SubsumedBy != nil && *e.SubsumedBy == id) || (e.MergedInto != nil && *e.MergedInto == id) {
			out = append(out, e.ID)
		}
	}
	slices.Sort(out)
	return out, nil
}

// Nodes implements domain.RelationLookup
func (m *Memory) Nodes(_ context.Context) ([]relations.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]relations.Node, 0, len(m.entities))
	for _, e := range m.entities {
		out = append(out, relations.Node{ID: e.ID, SubsumedBy: e.SubsumedBy, MergedInto: e.MergedInto})
	}
	slices.SortFunc(out, func(a, b relations.Node) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

