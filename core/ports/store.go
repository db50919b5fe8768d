package ports

import (
	"context"
	"iter"

	"github.com/gruzdev-dev/codex-recipes/core/domain"
)

//go:generate mockgen -source=store.go -destination=store_mocks.go -package=ports EntityStore,JoinStore

// EntityStore persists records of entities defined in a domain.Schema.
// Unique and required constraint breaches return domain.ErrConstraintViolation,
// unknown ids return domain.ErrNotFound.
type EntityStore interface {
	Create(ctx context.Context, entity *domain.Entity, data domain.Record) (domain.Record, error)
	FindByID(ctx context.Context, entity *domain.Entity, id string) (domain.Record, error)
	// FindAll yields matching records lazily. Every range over the returned
	// sequence runs the query again.
	FindAll(ctx context.Context, entity *domain.Entity, filter domain.Filter) iter.Seq2[domain.Record, error]
	Update(ctx context.Context, entity *domain.Entity, id string, data domain.Record) (domain.Record, error)
	Remove(ctx context.Context, entity *domain.Entity, id string) (domain.Record, error)
}

// JoinStore persists many-to-many pairs. AddPair and RemovePair are idempotent.
type JoinStore interface {
	HasPair(ctx context.Context, join *domain.Join, leftID, rightID string) (bool, error)
	AddPair(ctx context.Context, join *domain.Join, leftID, rightID string) error
	RemovePair(ctx context.Context, join *domain.Join, leftID, rightID string) error
	// Pairs returns the ids paired with id on the given side of the join.
	Pairs(ctx context.Context, join *domain.Join, side domain.JoinSide, id string) ([]string, error)
}
