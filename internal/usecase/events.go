package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nexusmerchants/orderforms-stripe/internal/domain/entity"
)

// Publisher sends a JSON-encoded message to a channel
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
}

// EventEmitter publishes billing events. A nil emitter or publisher drops events.
type EventEmitter struct {
	publisher Publisher
	channel   string
	logger    *zap.Logger
	now       func() time.Time
}

func NewEventEmitter(publisher Publisher, channel string, logger *zap.Logger) *EventEmitter {
	return &EventEmitter{
		publisher: publisher,
		channel:   channel,
		logger:    logger,
		now:       time.Now,
	}
}

// Emit never fails the caller; publish errors are logged.
func (e *EventEmitter) Emit(ctx context.Context, eventType, userID, customerID string, data map[string]any) {
	if e == nil || e.publisher == nil {
		return
	}

	event := entity.BillingEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		UserID:     userID,
		CustomerID: customerID,
		Data:       data,
		OccurredAt: e.now().UTC(),
	}

	if err := e.publisher.Publish(ctx, e.channel, event); err != nil {
		e.logger.Warn("Failed to publish billing event",
			zap.String("event_type", eventType),
			zap.String("customer_id", customerID),
			zap.Error(err))
		return
	}

	e.logger.Debug("Billing event published",
		zap.String("event_id", event.ID),
		zap.String("event_type", eventType))
}
