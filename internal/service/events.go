package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/abkawan/retail-ledger/internal/models"
)

var ErrUnknownEventLevel = errors.New("unknown event level")

// EventStore is the ledger event log
type EventStore interface {
	GetEvents(ctx context.Context, level models.EventLevel, limit, offset int) ([]*models.Event, error)
}

// handles event log queries
type EventService struct {
	store EventStore
}

func NewEventService(store EventStore) *EventService {
	return &EventService{store: store}
}

// lists events newest first; an empty level lists every level
func (s *EventService) GetEvents(ctx context.Context, level models.EventLevel, limit, offset int) ([]*models.Event, error) {
	switch level {
	case "", models.LevelInfo, models.LevelWarning, models.LevelError, models.LevelException:
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownEventLevel, level)
	}

	events, err := s.store.GetEvents(ctx, level, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	return events, nil
}
