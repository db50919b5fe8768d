package memory

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/gruzdev-dev/codex-recipes/core/domain"
)

type pair struct {
	left, right string
}

// Store keeps rows in maps and enforces the constraints a relational engine
// would: required and unique fields, references and join pair uniqueness.
type Store struct {
	mu     sync.RWMutex
	schema *domain.Schema
	tables map[string]map[string]domain.Record
	order  map[string][]string
	pairs  map[string][]pair
	now    func() time.Time
}

func NewStore(schema *domain.Schema) *Store {
	s := &Store{
		schema: schema,
		tables: make(map[string]map[string]domain.Record),
		order:  make(map[string][]string),
		pairs:  make(map[string][]pair),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, e := range schema.Entities() {
		s.tables[e.Name] = make(map[string]domain.Record)
	}
	return s
}

func (s *Store) Create(_ context.Context, entity *domain.Entity, data domain.Record) (domain.Record, error) {
	row, err := entity.Prepare(data, s.now())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(entity, row, ""); err != nil {
		return nil, err
	}
	s.tables[entity.Name][row.ID()] = row
	s.order[entity.Name] = append(s.order[entity.Name], row.ID())
	return row.Clone(), nil
}

func (s *Store) FindByID(_ context.Context, entity *domain.Entity, id string) (domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.tables[entity.Name][id]
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", domain.ErrNotFound, entity.Name, id)
	}
	return row.Clone(), nil
}

func (s *Store) FindAll(_ context.Context, entity *domain.Entity, filter domain.Filter) iter.Seq2[domain.Record, error] {
	return func(yield func(domain.Record, error) bool) {
		s.mu.RLock()
		matches := make([]domain.Record, 0)
		for _, id := range s.order[entity.Name] {
			row := s.tables[entity.Name][id]
			if entity.Matches(row, filter) {
				matches = append(matches, row.Clone())
			}
		}
		s.mu.RUnlock()

		for _, row := range matches {
			if !yield(row, nil) {
				return
			}
		}
	}
}

func (s *Store) Update(_ context.Context, entity *domain.Entity, id string, data domain.Record) (domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.tables[entity.Name][id]
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", domain.ErrNotFound, entity.Name, id)
	}
	row, err := entity.Assign(current, data)
	if err != nil {
		return nil, err
	}
	row[domain.FieldUpdatedAt] = s.now()

	if err := s.check(entity, row, id); err != nil {
		return nil, err
	}
	s.tables[entity.Name][id] = row
	return row.Clone(), nil
}

func (s *Store) Remove(_ context.Context, entity *domain.Entity, id string) (domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.tables[entity.Name][id]
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", domain.ErrNotFound, entity.Name, id)
	}
	s.cascade(entity, id)
	return row, nil
}

// cascade deletes the row and the join pairs naming it. Rows referencing it
// through a required field are deleted too, optional references are cleared,
// like ON DELETE CASCADE and ON DELETE SET NULL foreign keys.
func (s *Store) cascade(entity *domain.Entity, id string) {
	if _, ok := s.tables[entity.Name][id]; !ok {
		return
	}
	delete(s.tables[entity.Name], id)
	s.order[entity.Name] = slices.DeleteFunc(s.order[entity.Name], func(v string) bool { return v == id })

	for _, j := range s.schema.Joins() {
		s.pairs[j.Name] = slices.DeleteFunc(s.pairs[j.Name], func(p pair) bool {
			return (j.Left == entity.Name && p.left == id) || (j.Right == entity.Name && p.right == id)
		})
	}

	for _, other := range s.schema.Entities() {
		for _, f := range other.Fields {
			if f.Type != domain.TypeReference || f.References != entity.Name {
				continue
			}
			for _, childID := range slices.Clone(s.order[other.Name]) {
				child, ok := s.tables[other.Name][childID]
				if !ok || child.String(f.Name) != id {
					continue
				}
				if f.Required {
					s.cascade(other, childID)
					continue
				}
				child[f.Name] = nil
			}
		}
	}
}

func (s *Store) check(entity *domain.Entity, row domain.Record, selfID string) error {
	for _, f := range entity.Fields {
		v := row.String(f.Name)
		if f.Required && row[f.Name] == nil {
			return fmt.Errorf("%w: %s.%s is required", domain.ErrConstraintViolation, entity.Name, f.Name)
		}
		if v == "" {
			continue
		}
		if f.Unique {
			for id, other := range s.tables[entity.Name] {
				if id != selfID && other.String(f.Name) == v {
					return fmt.Errorf("%w: %s.%s must be unique", domain.ErrConstraintViolation, entity.Name, f.Name)
				}
			}
		}
		if f.Type == domain.TypeReference {
			if _, ok := s.tables[f.References][v]; !ok {
				return fmt.Errorf("%w: %s.%s references missing %s %s", domain.ErrConstraintViolation, entity.Name, f.Name, f.References, v)
			}
		}
	}
	return nil
}

func (s *Store) HasPair(_ context.Context, join *domain.Join, leftID, rightID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.pairs[join.Name], pair{leftID, rightID}), nil
}

func (s *Store) AddPair(_ context.Context, join *domain.Join, leftID, rightID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tables[join.Left][leftID]; !ok {
		return fmt.Errorf("%w: %s references missing %s %s", domain.ErrConstraintViolation, join.Name, join.Left, leftID)
	}
	if _, ok := s.tables[join.Right][rightID]; !ok {
		return fmt.Errorf("%w: %s references missing %s %s", domain.ErrConstraintViolation, join.Name, join.Right, rightID)
	}
	p := pair{leftID, rightID}
	if !slices.Contains(s.pairs[join.Name], p) {
		s.pairs[join.Name] = append(s.pairs[join.Name], p)
	}
	return nil
}

func (s *Store) RemovePair(_ context.Context, join *domain.Join, leftID, rightID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := pair{leftID, rightID}
	s.pairs[join.Name] = slices.DeleteFunc(s.pairs[join.Name], func(v pair) bool { return v == p })
	return nil
}

func (s *Store) Pairs(_ context.Context, join *domain.Join, side domain.JoinSide, id string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := []string{}
	for _, p := range s.pairs[join.Name] {
		switch {
		case side == domain.LeftSide && p.left == id:
			ids = append(ids, p.right)
		case side == domain.RightSide && p.right == id:
			ids = append(ids, p.left)
		}
	}
	return ids, nil
}
