package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/gruzdev-dev/codex-recipes/core/domain"
	"github.com/gruzdev-dev/codex-recipes/core/ports"
)

type RelationKind string

const (
	KindHasMany       RelationKind = "hasMany"
	KindBelongsTo     RelationKind = "belongsTo"
	KindBelongsToMany RelationKind = "belongsToMany"
)

// Relation is a named association declared on Owner.
//
// For KindHasMany ForeignKey is a field of Target holding the owner id, for
// KindBelongsTo it is a field of Owner holding the target id. KindBelongsToMany
// relations go through Join, with Owner on Side.
type Relation struct {
	Name       string
	Kind       RelationKind
	Owner      *domain.Entity
	Target     *domain.Entity
	ForeignKey string
	Join       *domain.Join
	Side       domain.JoinSide
}

// ManyToMany names both ends of a belongsToMany association.
type ManyToMany struct {
	As        string
	InverseAs string
	Through   string
}

// Resolver holds association descriptors and resolves them against the
// store. Descriptors are registered at startup, after the schema is complete.
type Resolver struct {
	schema    *domain.Schema
	store     ports.EntityStore
	joins     ports.JoinStore
	relations map[string]map[string]*Relation
}

func NewResolver(schema *domain.Schema, store ports.EntityStore, joins ports.JoinStore) *Resolver {
	return &Resolver{
		schema:    schema,
		store:     store,
		joins:     joins,
		relations: make(map[string]map[string]*Relation),
	}
}

func (r *Resolver) HasMany(owner, child, foreignKey, as string) error {
	o, c, err := r.pair(owner, child)
	if err != nil {
		return err
	}
	if err := requireReference(c, foreignKey, owner); err != nil {
		return err
	}
	return r.register(&Relation{Name: as, Kind: KindHasMany, Owner: o, Target: c, ForeignKey: foreignKey})
}

func (r *Resolver) BelongsTo(child, parent, foreignKey, as string) error {
	c, p, err := r.pair(child, parent)
	if err != nil {
		return err
	}
	if err := requireReference(c, foreignKey, parent); err != nil {
		return err
	}
	return r.register(&Relation{Name: as, Kind: KindBelongsTo, Owner: c, Target: p, ForeignKey: foreignKey})
}

// BelongsToMany declares a symmetric association materialized by the join
// opts.Through. a must be the join's left entity and b its right entity.
func (r *Resolver) BelongsToMany(a, b string, opts ManyToMany) error {
	ea, eb, err := r.pair(a, b)
	if err != nil {
		return err
	}
	j, err := r.schema.Join(opts.Through)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSchema, err)
	}
	if j.Left != a || j.Right != b {
		return fmt.Errorf("%w: join %s does not link %s to %s", domain.ErrSchema, j.Name, a, b)
	}
	if err := r.register(&Relation{Name: opts.As, Kind: KindBelongsToMany, Owner: ea, Target: eb, Join: j, Side: domain.LeftSide}); err != nil {
		return err
	}
	if opts.InverseAs == "" {
		return nil
	}
	return r.register(&Relation{Name: opts.InverseAs, Kind: KindBelongsToMany, Owner: eb, Target: ea, Join: j, Side: domain.RightSide})
}

func (r *Resolver) Relation(owner, name string) (*Relation, error) {
	rel, ok := r.relations[owner][name]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no relation %q", domain.ErrNotFound, owner, name)
	}
	return rel, nil
}

// Has reports whether ownerID and targetID are linked by a belongsToMany relation.
func (r *Resolver) Has(ctx context.Context, owner, relation, ownerID, targetID string) (bool, error) {
	rel, left, right, err := r.manyToMany(owner, relation, ownerID, targetID)
	if err != nil {
		return false, err
	}
	return r.joins.HasPair(ctx, rel.Join, left, right)
}

// Add links ownerID and targetID. Adding an existing pair is a no-op.
func (r *Resolver) Add(ctx context.Context, owner, relation, ownerID, targetID string) error {
	rel, left, right, err := r.manyToMany(owner, relation, ownerID, targetID)
	if err != nil {
		return err
	}
	return r.joins.AddPair(ctx, rel.Join, left, right)
}

// Remove unlinks ownerID and targetID. Removing an absent pair is a no-op.
func (r *Resolver) Remove(ctx context.Context, owner, relation, ownerID, targetID string) error {
	rel, left, right, err := r.manyToMany(owner, relation, ownerID, targetID)
	if err != nil {
		return err
	}
	return r.joins.RemovePair(ctx, rel.Join, left, right)
}

// Populate returns a copy of rec with the relation inlined under its name.
// Missing targets resolve to nil or an empty list.
func (r *Resolver) Populate(ctx context.Context, owner, relation string, rec domain.Record) (domain.Record, error) {
	rel, err := r.Relation(owner, relation)
	if err != nil {
		return nil, err
	}
	related, err := r.resolve(ctx, rel, rec)
	if err != nil {
		return nil, err
	}
	out := rec.Clone()
	out[rel.Name] = related
	return out, nil
}

// Related loads the owner record by id and resolves one relation of it.
func (r *Resolver) Related(ctx context.Context, owner, id, relation string) (any, error) {
	rel, err := r.Relation(owner, relation)
	if err != nil {
		return nil, err
	}
	rec, err := r.store.FindByID(ctx, rel.Owner, id)
	if err != nil {
		return nil, err
	}
	return r.resolve(ctx, rel, rec)
}

func (r *Resolver) resolve(ctx context.Context, rel *Relation, rec domain.Record) (any, error) {
	switch rel.Kind {
	case KindBelongsTo:
		fk := rec.String(rel.ForeignKey)
		if fk == "" {
			return nil, nil
		}
		target, err := r.store.FindByID(ctx, rel.Target, fk)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return rel.Target.Public(target), nil

	case KindHasMany:
		items := []domain.Record{}
		if rec.ID() == "" {
			return items, nil
		}
		for item, err := range r.store.FindAll(ctx, rel.Target, domain.Filter{rel.ForeignKey: rec.ID()}) {
			if err != nil {
				return nil, err
			}
			items = append(items, rel.Target.Public(item))
		}
		return items, nil

	case KindBelongsToMany:
		items := []domain.Record{}
		if rec.ID() == "" {
			return items, nil
		}
		ids, err := r.joins.Pairs(ctx, rel.Join, rel.Side, rec.ID())
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			item, err := r.store.FindByID(ctx, rel.Target, id)
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			items = append(items, rel.Target.Public(item))
		}
		return items, nil
	}
	return nil, fmt.Errorf("%w: unsupported relation kind %q", domain.ErrSchema, rel.Kind)
}

func (r *Resolver) manyToMany(owner, relation, ownerID, targetID string) (*Relation, string, string, error) {
	rel, err := r.Relation(owner, relation)
	if err != nil {
		return nil, "", "", err
	}
	if rel.Kind != KindBelongsToMany {
		return nil, "", "", fmt.Errorf("%w: %s.%s is not a many-to-many relation", domain.ErrSchema, owner, relation)
	}
	if rel.Side == domain.RightSide {
		return rel, targetID, ownerID, nil
	}
	return rel, ownerID, targetID, nil
}

func (r *Resolver) pair(a, b string) (*domain.Entity, *domain.Entity, error) {
	ea, err := r.schema.Entity(a)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrSchema, err)
	}
	eb, err := r.schema.Entity(b)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrSchema, err)
	}
	return ea, eb, nil
}

func (r *Resolver) register(rel *Relation) error {
	if rel.Name == "" {
		return fmt.Errorf("%w: relation on %s needs a name", domain.ErrSchema, rel.Owner.Name)
	}
	if _, clash := rel.Owner.Field(rel.Name); clash {
		return fmt.Errorf("%w: relation %s.%s shadows a field", domain.ErrSchema, rel.Owner.Name, rel.Name)
	}
	byName, ok := r.relations[rel.Owner.Name]
	if !ok {
		byName = make(map[string]*Relation)
		r.relations[rel.Owner.Name] = byName
	}
	if _, dup := byName[rel.Name]; dup {
		return fmt.Errorf("%w: relation %s.%s already declared", domain.ErrSchema, rel.Owner.Name, rel.Name)
	}
	byName[rel.Name] = rel
	return nil
}

func requireReference(e *domain.Entity, field, target string) error {
	f, ok := e.Field(field)
	if !ok || f.Type != domain.TypeReference || f.References != target {
		return fmt.Errorf("%w: %s.%s is not a reference to %s", domain.ErrSchema, e.Name, field, target)
	}
	return nil
}

// ConfigureRelations declares the associations of the recipes catalog.
func ConfigureRelations(r *Resolver) error {
	steps := []func() error{
		func() error { return r.HasMany(domain.Users, domain.Recipes, "userId", "recipes") },
		func() error { return r.HasMany(domain.Users, domain.Messages, "userId", "messages") },
		func() error {
			return r.BelongsToMany(domain.Users, domain.Recipes, ManyToMany{
				As:        "favouriteRecipes",
				InverseAs: "favouritedBy",
				Through:   domain.Favourites,
			})
		},
		func() error { return r.HasMany(domain.Recipes, domain.Ingredients, "recipeId", "ingredientItems") },
		func() error { return r.BelongsTo(domain.Recipes, domain.Users, "userId", "user") },
		func() error { return r.BelongsTo(domain.Ingredients, domain.Recipes, "recipeId", "recipe") },
		func() error { return r.BelongsTo(domain.Messages, domain.Users, "userId", "user") },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
