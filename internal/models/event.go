package models

import "time"

// EventLevel is the severity of a ledger event.
type EventLevel string

const (
	LevelInfo      EventLevel = "info"
	LevelWarning   EventLevel = "warning"
	LevelError     EventLevel = "error"
	LevelException EventLevel = "exception"
)

// Event is one entry of the append-only ledger event log.
type Event struct {
	ID        string     `json:"id" bson:"_id"`
	Level     EventLevel `json:"level" bson:"level"`
	Message   string     `json:"message" bson:"message"`
	Error     string     `json:"error,omitempty" bson:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
}
