package service

import (
	"context"

	"lumina-be/internal/pkg/logger"
	"lumina-be/pkg/events"
)

// eventEmitter publishes best-effort. A failed publish is logged and never
// reaches the caller.
type eventEmitter struct {
	publisher events.Publisher
	log       logger.ILogger
}

func (e eventEmitter) emit(ctx context.Context, evt events.BaseEvent) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(ctx, evt); err != nil {
		e.log.Warn("EVENTS", "Failed to publish event", map[string]interface{}{
			"type":  evt.Type,
			"error": err.Error(),
		})
	}
}
