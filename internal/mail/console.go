package mail

import (
	"context"
	"log/slog"
	"sync"
)

// ConsoleSender logs messages instead of delivering them. Used in development
// and by the admin CLI; it keeps every message it accepted.
type ConsoleSender struct {
	logger *slog.Logger

	mu   sync.Mutex
	sent []Message
}

// NewConsoleSender creates a console sender. A nil logger uses slog.Default().
func NewConsoleSender(logger *slog.Logger) *ConsoleSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsoleSender{logger: logger}
}

func (s *ConsoleSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkMessage(msg); err != nil {
		return err
	}

	names := make([]string, len(msg.Attachments))
	for i, a := range msg.Attachments {
		names[i] = a.Filename
	}
	s.logger.Info("mail (console)",
		"from", msg.From,
		"to", msg.To,
		"cc", msg.Cc,
		"subject", msg.Subject,
		"html_bytes", len(msg.HTML),
		"attachments", names,
	)

	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()
	return nil
}

// Sent returns a copy of the accepted messages in send order.
func (s *ConsoleSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}
