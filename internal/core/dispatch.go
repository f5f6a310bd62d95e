package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/scidesk/internal/logging"
	"github.com/JonMunkholm/scidesk/internal/mail"
)

// Dispatcher sends one rendered message per recipient and records the outcome
// of each send. Sends run one after another in recipient order; a failed send
// is logged and recorded, never retried, and the batch continues.
type Dispatcher struct {
	sender  mail.Sender
	metrics Metrics
}

// NewDispatcher creates a dispatcher. A nil metrics sink is allowed.
func NewDispatcher(sender mail.Sender, metrics Metrics) *Dispatcher {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Dispatcher{sender: sender, metrics: metrics}
}

// Dispatch renders n.Template for every recipient not listed in n.Exclude and
// sends it. The result holds one outcome per processed recipient, in order.
// Excluded recipients do not appear in the result; exclusions match addresses
// with surrounding whitespace ignored. A recipient with an empty
// address is reported as failed without calling the transport.
func (d *Dispatcher) Dispatch(ctx context.Context, n Notification, recipients []Recipient) []EmailOutcome {
	logger, _ := logging.Batch(ctx, "notify")
	logger = logger.With("kind", n.Kind)

	excluded := make(map[string]bool, len(n.Exclude))
	for _, e := range n.Exclude {
		excluded[strings.TrimSpace(e)] = true
	}

	start := time.Now()
	outcomes := make([]EmailOutcome, 0, len(recipients))
	failed := 0

	for _, r := range recipients {
		if excluded[strings.TrimSpace(r.Email)] {
			logger.Debug("recipient excluded", "email", r.Email)
			continue
		}

		var err error
		if r.Email == "" {
			err = mail.ErrNoRecipient
		} else {
			err = d.send(ctx, mail.Message{
				From:        n.From,
				To:          r.Email,
				Cc:          r.Cc,
				Subject:     n.Subject,
				HTML:        Render(n.Template, r.Values),
				Attachments: r.Attachments,
			})
		}

		ok := err == nil
		if !ok {
			failed++
			logger.Warn("notification send failed", "email", r.Email, "error", err)
		}
		d.metrics.EmailSent(n.Kind, ok)
		outcomes = append(outcomes, EmailOutcome{Email: r.Email, Success: ok})
	}

	logger.Info("notification batch completed",
		"recipients", len(recipients),
		"processed", len(outcomes),
		"failed", failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return outcomes
}

// send turns a transport panic into an error so one bad message cannot end the batch.
func (d *Dispatcher) send(ctx context.Context, msg mail.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mail transport panic: %v", r)
		}
	}()
	return d.sender.Send(ctx, msg)
}
