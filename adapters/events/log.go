package events

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/gruzdev-dev/codex-recipes/core/domain"
)

// LogPublisher records change events in the log only.
type LogPublisher struct {
	log logrus.FieldLogger
}

func NewLogPublisher(log logrus.FieldLogger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, event domain.Event) error {
	p.log.WithFields(logrus.Fields{
		"entity": event.Entity,
		"action": event.Action,
		"id":     event.Record.ID(),
	}).Debug("change event")
	return nil
}
