package contact

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Zachkp/zach-portfolio/internal/store"
)

// Outbox records submissions and their delivery state.
type Outbox interface {
	SaveMessage(ctx context.Context, m store.ContactMessage) error
	MarkMessage(ctx context.Context, id, status string) error
}

// Service validates, records and sends contact submissions.
type Service struct {
	outbox Outbox
	sender Sender
	now    func() time.Time
}

// NewService returns a Service. outbox may be nil to skip recording.
func NewService(outbox Outbox, sender Sender) *Service {
	return &Service{outbox: outbox, sender: sender, now: time.Now}
}

// Submit validates f and sends it. Validation failures are FieldErrors and
// nothing is recorded. The returned id identifies the stored message.
func (s *Service) Submit(ctx context.Context, f Form) (string, error) {
	f = f.Normalize()
	if err := Validate(f); err != nil {
		return "", err
	}

	id := uuid.NewString()
	if s.outbox != nil {
		msg := store.ContactMessage{
			ID:        id,
			Name:      f.Name,
			Email:     f.Email,
			Subject:   f.Subject,
			Budget:    f.Budget,
			Body:      f.Message,
			Status:    store.MessagePending,
			CreatedAt: s.now(),
		}
		if err := s.outbox.SaveMessage(ctx, msg); err != nil {
			return "", fmt.Errorf("record contact message: %w", err)
		}
	}

	sendErr := s.sender.Send(ctx, Envelope{
		FromName:  f.Name,
		FromEmail: f.Email,
		Subject:   f.Subject,
		Budget:    f.Budget,
		Body:      f.Message,
	})

	status := store.MessageSent
	if sendErr != nil {
		status = store.MessageFailed
		slog.Error("contact email failed", "id", id, "error", sendErr)
	} else {
		slog.Info("contact email sent", "id", id)
	}

	if s.outbox != nil {
		if err := s.outbox.MarkMessage(ctx, id, status); err != nil {
			slog.Warn("mark contact message", "id", id, "error", err)
		}
	}

	if sendErr != nil {
		return id, fmt.Errorf("deliver contact message: %w", sendErr)
	}
	return id, nil
}
