package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lifeledger-backend-go/pkg/messagequeue"
)

// Domain event types published to the events queue.
const (
	EventLessonCreated    = "lesson.created"
	EventLessonReported   = "lesson.reported"
	EventPaymentCompleted = "payment.completed"
)

// Event is the JSON envelope written to the queue.
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurredAt"`
	Data       interface{} `json:"data"`
}

// EventPublisher publishes domain events after the originating write has succeeded.
// Publishing is best effort: failures are logged and never fail the request.
// A nil *EventPublisher drops every event.
type EventPublisher struct {
	mq     messagequeue.MessageQueue
	queue  string
	logger *zap.Logger
}

// NewEventPublisher creates an EventPublisher writing to queue.
func NewEventPublisher(mq messagequeue.MessageQueue, queue string, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{mq: mq, queue: queue, logger: logger}
}

// Publish sends one event.
func (p *EventPublisher) Publish(ctx context.Context, eventType string, data interface{}) {
	if p == nil || p.mq == nil {
		return
	}
	evt := Event{ID: uuid.NewString(), Type: eventType, OccurredAt: time.Now().UTC(), Data: data}
	body, err := json.Marshal(evt)
	if err != nil {
		p.logger.Error("Failed to encode event", zap.String("type", eventType), zap.Error(err))
		return
	}
	if err := p.mq.Publish(ctx, p.queue, body); err != nil {
		p.logger.Warn("Failed to publish event", zap.String("type", eventType), zap.String("event_id", evt.ID), zap.Error(err))
	}
}
