package services

import (
	"context"
	"fmt"

	"github.com/gruzdev-dev/codex-recipes/core/domain"
	"github.com/gruzdev-dev/codex-recipes/core/ports"
)

// Service is the uniform operation set exposed for every collection.
type Service interface {
	Find(ctx context.Context, params Params) ([]domain.Record, error)
	Get(ctx context.Context, id string, params Params) (domain.Record, error)
	Create(ctx context.Context, data domain.Record, params Params) (domain.Record, error)
	Update(ctx context.Context, id string, data domain.Record, params Params) (domain.Record, error)
	Patch(ctx context.Context, id string, data domain.Record, params Params) (domain.Record, error)
	Remove(ctx context.Context, id string, params Params) (domain.Record, error)
}

// EntityService passes each operation straight to the store, wrapped in the
// entity's pipeline.
type EntityService struct {
	entity   *domain.Entity
	store    ports.EntityStore
	pipeline *Pipeline
}

func NewEntityService(entity *domain.Entity, store ports.EntityStore, pipeline *Pipeline) *EntityService {
	if pipeline == nil {
		pipeline = NewPipeline()
	}
	return &EntityService{
		entity:   entity,
		store:    store,
		pipeline: pipeline,
	}
}

func (s *EntityService) Entity() *domain.Entity {
	return s.entity
}

func (s *EntityService) Pipeline() *Pipeline {
	return s.pipeline
}

func (s *EntityService) Find(ctx context.Context, params Params) ([]domain.Record, error) {
	call := s.newCall(MethodFind, "", nil, params)
	if err := s.pipeline.Run(ctx, call, s.find); err != nil {
		return nil, err
	}
	records, _ := call.Result.([]domain.Record)
	return records, nil
}

func (s *EntityService) Get(ctx context.Context, id string, params Params) (domain.Record, error) {
	return s.run(ctx, s.newCall(MethodGet, id, nil, params), s.get)
}

func (s *EntityService) Create(ctx context.Context, data domain.Record, params Params) (domain.Record, error) {
	return s.run(ctx, s.newCall(MethodCreate, "", data, params), s.create)
}

func (s *EntityService) Update(ctx context.Context, id string, data domain.Record, params Params) (domain.Record, error) {
	return s.run(ctx, s.newCall(MethodUpdate, id, data, params), s.update)
}

func (s *EntityService) Patch(ctx context.Context, id string, data domain.Record, params Params) (domain.Record, error) {
	return s.run(ctx, s.newCall(MethodPatch, id, data, params), s.patch)
}

func (s *EntityService) Remove(ctx context.Context, id string, params Params) (domain.Record, error) {
	return s.run(ctx, s.newCall(MethodRemove, id, nil, params), s.remove)
}

func (s *EntityService) newCall(method Method, id string, data domain.Record, params Params) *Call {
	return &Call{
		Entity: s.entity.Name,
		Method: method,
		ID:     id,
		Data:   data.Clone(),
		Params: params,
	}
}

func (s *EntityService) run(ctx context.Context, call *Call, handler StageFunc) (domain.Record, error) {
	if call.Method != MethodCreate && call.ID == "" {
		return nil, fmt.Errorf("%w: %s id is required", domain.ErrValidation, s.entity.Name)
	}
	if err := s.pipeline.Run(ctx, call, handler); err != nil {
		return nil, err
	}
	rec, _ := call.Result.(domain.Record)
	return rec, nil
}

func (s *EntityService) find(ctx context.Context, call *Call) error {
	records := []domain.Record{}
	for rec, err := range s.store.FindAll(ctx, s.entity, call.Params.Query) {
		if err != nil {
			return err
		}
		records = append(records, rec)
	}
	call.Result = records
	return nil
}

func (s *EntityService) get(ctx context.Context, call *Call) error {
	rec, err := s.store.FindByID(ctx, s.entity, call.ID)
	if err != nil {
		return err
	}
	call.Result = rec
	return nil
}

func (s *EntityService) create(ctx context.Context, call *Call) error {
	rec, err := s.store.Create(ctx, s.entity, call.Data)
	if err != nil {
		return err
	}
	call.Result = rec
	return nil
}

// update replaces every declared field; fields missing from the payload are cleared.
func (s *EntityService) update(ctx context.Context, call *Call) error {
	if _, err := s.store.FindByID(ctx, s.entity, call.ID); err != nil {
		return err
	}
	data := domain.Record{}
	for _, f := range s.entity.Fields {
		data[f.Name] = nil
	}
	data, err := s.entity.Assign(data, call.Data)
	if err != nil {
		return err
	}
	return s.write(ctx, call, data)
}

func (s *EntityService) patch(ctx context.Context, call *Call) error {
	if _, err := s.store.FindByID(ctx, s.entity, call.ID); err != nil {
		return err
	}
	data, err := s.entity.Assign(domain.Record{}, call.Data)
	if err != nil {
		return err
	}
	return s.write(ctx, call, data)
}

func (s *EntityService) write(ctx context.Context, call *Call, data domain.Record) error {
	rec, err := s.store.Update(ctx, s.entity, call.ID, data)
	if err != nil {
		return err
	}
	call.Result = rec
	return nil
}

func (s *EntityService) remove(ctx context.Context, call *Call) error {
	rec, err := s.store.Remove(ctx, s.entity, call.ID)
	if err != nil {
		return err
	}
	call.Result = rec
	return nil
}
