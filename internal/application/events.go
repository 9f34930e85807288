package application

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Event types published on the events queue.
const (
	EventUserCreated    = "user.created"
	EventUserUpdated    = "user.updated"
	EventUserDeleted    = "user.deleted"
	EventAuthRegistered = "auth.registered"
)

// EventPublisher is satisfied by *helpers.RabbitPublisher.
type EventPublisher interface {
	PublishJSON(ctx context.Context, msgType string, body any) error
}

type UserEvent struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type RegisteredEvent struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// publish is best-effort: a failed publish is logged and never fails the caller.
func publish(ctx context.Context, p EventPublisher, logger *logrus.Logger, msgType string, body any) {
	if p == nil {
		return
	}
	if err := p.PublishJSON(ctx, msgType, body); err != nil && logger != nil {
		logger.WithError(err).WithField("event", msgType).Warn("publish event failed")
	}
}
