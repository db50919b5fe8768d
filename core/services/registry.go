package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/gruzdev-dev/codex-recipes/core/domain"
	"github.com/gruzdev-dev/codex-recipes/core/ports"
)

// Registry maps collection names to their services.
type Registry struct {
	services   map[string]*EntityService
	favourites *FavouriteService
	resolver   *Resolver
}

// NewRegistry composes the pipelines of every recipes collection.
func NewRegistry(
	schema *domain.Schema,
	store ports.EntityStore,
	resolver *Resolver,
	publisher ports.EventPublisher,
	log logrus.FieldLogger,
) (*Registry, error) {
	entities := make(map[string]*domain.Entity)
	for _, name := range []string{domain.Users, domain.Recipes, domain.Ingredients, domain.Messages} {
		e, err := schema.Entity(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrSchema, err)
		}
		entities[name] = e
	}

	publish := Publish(publisher, log)
	users := entities[domain.Users]
	messages := entities[domain.Messages]
	ownWrites := []Method{MethodUpdate, MethodPatch, MethodRemove}

	r := &Registry{
		services: map[string]*EntityService{
			domain.Users: NewEntityService(users, store, NewPipeline().
				Before(Authenticate(), ownWrites...).
				Before(RequireSelf(), ownWrites...).
				Before(HashPassword("password"), MethodCreate, MethodUpdate, MethodPatch).
				After(Protect(users)).
				After(publish, MutatingMethods...)),

			domain.Recipes: NewEntityService(entities[domain.Recipes], store, NewPipeline().
				After(Populate(resolver, "ingredientItems"), ReadMethods...).
				After(publish, MutatingMethods...)),

			domain.Ingredients: NewEntityService(entities[domain.Ingredients], store, NewPipeline().
				After(publish, MutatingMethods...)),

			domain.Messages: NewEntityService(messages, store, NewPipeline().
				Before(Authenticate(), MutatingMethods...).
				Before(RequireOwner(store, messages, "userId"), ownWrites...).
				Before(AssignOwner("userId"), MethodCreate, MethodUpdate, MethodPatch).
				After(Populate(resolver, "user")).
				After(publish, MutatingMethods...)),
		},
		favourites: NewFavouriteService(schema, store, resolver, NewPipeline().
			Before(Authenticate(), MethodCreate, MethodRemove).
			After(publish, MethodCreate, MethodRemove)),
		resolver: resolver,
	}
	return r, nil
}

func (r *Registry) Service(name string) (*EntityService, error) {
	s, ok := r.services[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown collection %q", domain.ErrNotFound, name)
	}
	return s, nil
}

func (r *Registry) Favourites() *FavouriteService {
	return r.favourites
}

// Related resolves a relation of one record of a collection.
func (r *Registry) Related(ctx context.Context, collection, id, relation string) (any, error) {
	if _, err := r.Service(collection); err != nil {
		return nil, err
	}
	return r.resolver.Related(ctx, collection, id, relation)
}

// Collections returns registered collection names in sorted order.
func (r *Registry) Collections() []string {
	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
