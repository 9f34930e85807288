package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/oksasatya/users-api/internal/application"
	"github.com/oksasatya/users-api/pkg/mailer"
	mailtpl "github.com/oksasatya/users-api/pkg/mailer/templates"
)

// errMalformed marks messages that will never succeed; they are dropped
// instead of requeued.
var errMalformed = errors.New("malformed message")

type eventHandler struct {
	sender  mailer.Sender
	appName string
	now     func() time.Time
}

// handle sends a welcome email for auth.registered and ignores every other
// event type. It reports whether an email was sent.
func (h *eventHandler) handle(ctx context.Context, msgType string, body []byte) (bool, error) {
	if msgType != application.EventAuthRegistered {
		return false, nil
	}
	var ev application.RegisteredEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return false, fmt.Errorf("%w: %v", errMalformed, err)
	}
	if ev.Email == "" {
		return false, fmt.Errorf("%w: missing email", errMalformed)
	}

	subject, text, html, err := mailtpl.Render(mailtpl.Welcome, mailtpl.EmailData{
		Name:    ev.Name,
		Email:   ev.Email,
		AppName: h.appName,
		TimeAt:  h.now().UTC(),
	})
	if err != nil {
		return false, fmt.Errorf("%w: render: %v", errMalformed, err)
	}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := h.sender.Send(c, ev.Email, subject, text, html); err != nil {
		return false, err
	}
	return true, nil
}
