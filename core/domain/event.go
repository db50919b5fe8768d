package domain

import "time"

type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionPatched Action = "patched"
	ActionRemoved Action = "removed"
)

// Event describes a completed mutation on an entity collection.
type Event struct {
	Entity     string    `json:"entity"`
	Action     Action    `json:"action"`
	Record     Record    `json:"record"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewEvent(entity string, action Action, record Record) Event {
	return Event{
		Entity:     entity,
		Action:     action,
		Record:     record,
		OccurredAt: time.Now().UTC(),
	}
}
