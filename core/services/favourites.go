package services

import (
	"context"
	"fmt"

	"github.com/gruzdev-dev/codex-recipes/core/domain"
	"github.com/gruzdev-dev/codex-recipes/core/ports"
)

const favouritesRelation = "favouriteRecipes"

// FavouriteService links the calling user to recipes. Both operations ensure
// a state rather than report whether it already held.
type FavouriteService struct {
	schema   *domain.Schema
	store    ports.EntityStore
	resolver *Resolver
	pipeline *Pipeline
}

func NewFavouriteService(schema *domain.Schema, store ports.EntityStore, resolver *Resolver, pipeline *Pipeline) *FavouriteService {
	if pipeline == nil {
		pipeline = NewPipeline()
	}
	return &FavouriteService{
		schema:   schema,
		store:    store,
		resolver: resolver,
		pipeline: pipeline,
	}
}

func (s *FavouriteService) Pipeline() *Pipeline {
	return s.pipeline
}

// Create makes the recipe named by the recipeId route param a favourite of
// the caller. Creating an existing favourite succeeds without writing.
func (s *FavouriteService) Create(ctx context.Context, params Params) (domain.Record, error) {
	return s.run(ctx, MethodCreate, params, s.create)
}

// Remove drops the favourite if present and succeeds either way.
func (s *FavouriteService) Remove(ctx context.Context, params Params) (domain.Record, error) {
	return s.run(ctx, MethodRemove, params, s.remove)
}

func (s *FavouriteService) run(ctx context.Context, method Method, params Params, handler StageFunc) (domain.Record, error) {
	recipeID := params.Route["recipeId"]
	if recipeID == "" {
		return nil, fmt.Errorf("%w: recipe id is required", domain.ErrValidation)
	}
	call := &Call{
		Entity: domain.Favourites,
		Method: method,
		ID:     recipeID,
		Params: params,
	}
	if err := s.pipeline.Run(ctx, call, handler); err != nil {
		return nil, err
	}
	rec, _ := call.Result.(domain.Record)
	return rec, nil
}

func (s *FavouriteService) create(ctx context.Context, call *Call) error {
	userID, err := callerID(call)
	if err != nil {
		return err
	}

	recipes, err := s.schema.Entity(domain.Recipes)
	if err != nil {
		return err
	}
	if _, err := s.store.FindByID(ctx, recipes, call.ID); err != nil {
		return err
	}

	has, err := s.resolver.Has(ctx, domain.Users, favouritesRelation, userID, call.ID)
	if err != nil {
		return err
	}
	if !has {
		if err := s.resolver.Add(ctx, domain.Users, favouritesRelation, userID, call.ID); err != nil {
			return err
		}
	}

	call.Result = favourite(userID, call.ID)
	return nil
}

func (s *FavouriteService) remove(ctx context.Context, call *Call) error {
	userID, err := callerID(call)
	if err != nil {
		return err
	}
	if err := s.resolver.Remove(ctx, domain.Users, favouritesRelation, userID, call.ID); err != nil {
		return err
	}
	call.Result = favourite(userID, call.ID)
	return nil
}

// callerID takes the user from the identity, never from the payload.
func callerID(call *Call) (string, error) {
	if call.Params.Identity == nil || call.Params.Identity.UserID == "" {
		return "", domain.ErrUnauthorized
	}
	return call.Params.Identity.UserID, nil
}

func favourite(userID, recipeID string) domain.Record {
	return domain.Record{"userId": userID, "recipeId": recipeID}
}
