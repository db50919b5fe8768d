package ports

import (
	"context"

	"github.com/gruzdev-dev/codex-recipes/core/domain"
)

//go:generate mockgen -source=events.go -destination=events_mocks.go -package=ports EventPublisher

type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}
