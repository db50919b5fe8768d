package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/gruzdev-dev/codex-recipes/core/domain"
	"github.com/gruzdev-dev/codex-recipes/core/ports"
)

// Authenticate rejects calls made without an identity.
func Authenticate() Stage {
	return Stage{
		Name: "authenticate",
		Run: func(_ context.Context, call *Call) error {
			if call.Params.Identity == nil || call.Params.Identity.UserID == "" {
				return fmt.Errorf("%w: %s %s requires authentication", domain.ErrUnauthorized, call.Method, call.Entity)
			}
			return nil
		},
	}
}

// RequireSelf limits the call to the record of the calling user.
func RequireSelf() Stage {
	return Stage{
		Name: "require-self",
		Run: func(_ context.Context, call *Call) error {
			if call.Params.Identity == nil || call.ID != call.Params.Identity.UserID {
				return fmt.Errorf("%w: %s %s is limited to the user's own record", domain.ErrUnauthorized, call.Method, call.Entity)
			}
			return nil
		},
	}
}

// RequireOwner limits the call to records whose field holds the caller's user id.
func RequireOwner(store ports.EntityStore, entity *domain.Entity, field string) Stage {
	return Stage{
		Name: "require-owner",
		Run: func(ctx context.Context, call *Call) error {
			if call.Params.Identity == nil {
				return domain.ErrUnauthorized
			}
			rec, err := store.FindByID(ctx, entity, call.ID)
			if err != nil {
				return err
			}
			if rec.String(field) != call.Params.Identity.UserID {
				return fmt.Errorf("%w: %s %s is limited to its owner", domain.ErrUnauthorized, call.Method, call.Entity)
			}
			return nil
		},
	}
}

// HashPassword replaces a plain-text password in the payload by its bcrypt hash.
func HashPassword(field string) Stage {
	return Stage{
		Name: "hash-password",
		Run: func(_ context.Context, call *Call) error {
			plain, ok := call.Data[field].(string)
			if !ok || plain == "" {
				return nil
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("%w: failed to hash password: %v", domain.ErrInternal, err)
			}
			call.Data = call.Data.Merge(domain.Record{field: string(hash)})
			return nil
		},
	}
}

// AssignOwner sets field to the caller's user id, whatever the payload says.
func AssignOwner(field string) Stage {
	return Stage{
		Name: "assign-owner",
		Run: func(_ context.Context, call *Call) error {
			if call.Params.Identity == nil {
				return domain.ErrUnauthorized
			}
			call.Data = call.Data.Merge(domain.Record{field: call.Params.Identity.UserID})
			return nil
		},
	}
}

// Populate inlines a relation into every record of the result.
func Populate(resolver *Resolver, relation string) Stage {
	return Stage{
		Name: "populate:" + relation,
		Run: func(ctx context.Context, call *Call) error {
			return eachResult(call, func(rec domain.Record) (domain.Record, error) {
				return resolver.Populate(ctx, call.Entity, relation, rec)
			})
		},
	}
}

// Protect strips the entity's hidden fields from the result.
func Protect(entity *domain.Entity) Stage {
	return Stage{
		Name: "protect",
		Run: func(_ context.Context, call *Call) error {
			return eachResult(call, func(rec domain.Record) (domain.Record, error) {
				return entity.Public(rec), nil
			})
		},
	}
}

const publishTimeout = 2 * time.Second

// Publish emits a change event for mutating calls. A failed or timed out
// publish is logged and does not fail the call.
func Publish(publisher ports.EventPublisher, log logrus.FieldLogger) Stage {
	return Stage{
		Name: "publish",
		Run: func(ctx context.Context, call *Call) error {
			action, ok := actions[call.Method]
			if !ok || publisher == nil {
				return nil
			}
			rec, _ := call.Result.(domain.Record)
			ctx, cancel := context.WithTimeout(ctx, publishTimeout)
			defer cancel()
			if err := publisher.Publish(ctx, domain.NewEvent(call.Entity, action, rec)); err != nil {
				log.WithError(err).WithFields(logrus.Fields{
					"entity": call.Entity,
					"action": action,
					"id":     rec.ID(),
				}).Warn("failed to publish change event")
			}
			return nil
		},
	}
}

var actions = map[Method]domain.Action{
	MethodCreate: domain.ActionCreated,
	MethodUpdate: domain.ActionUpdated,
	MethodPatch:  domain.ActionPatched,
	MethodRemove: domain.ActionRemoved,
}

func eachResult(call *Call, fn func(domain.Record) (domain.Record, error)) error {
	switch res := call.Result.(type) {
	case domain.Record:
		if res == nil {
			return nil
		}
		out, err := fn(res)
		if err != nil {
			return err
		}
		call.Result = out
	case []domain.Record:
		out := make([]domain.Record, 0, len(res))
		for _, rec := range res {
			r, err := fn(rec)
			if err != nil {
				return err
			}
			out = append(out, r)
		}
		call.Result = out
	}
	return nil
}
