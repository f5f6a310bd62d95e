// Package mail provides the outbound mail transport used by notification
// batches: a provider-neutral Message, the Sender interface, and the SendGrid
// and console implementations.
package mail

import (
	"context"
	"errors"
	"strings"
)

// Attachment is a file attached to a message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Message is one outbound email.
type Message struct {
	From        string
	To          string
	Cc          []string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Sender delivers a message or returns a transport error.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ErrNoRecipient is returned for messages without a To address.
var ErrNoRecipient = errors.New("mail: message has no recipient")

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, msg Message) error

func (f SenderFunc) Send(ctx context.Context, msg Message) error { return f(ctx, msg) }

// WithDefaults fills From when the message has none and prefixes the subject.
func WithDefaults(s Sender, from, subjectPrefix string) Sender {
	return SenderFunc(func(ctx context.Context, msg Message) error {
		if strings.TrimSpace(msg.From) == "" {
			msg.From = from
		}
		if subjectPrefix != "" && !strings.HasPrefix(msg.Subject, subjectPrefix) {
			msg.Subject = subjectPrefix + msg.Subject
		}
		return s.Send(ctx, msg)
	})
}

func checkMessage(msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return ErrNoRecipient
	}
	return nil
}
