package mail

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/JonMunkholm/scidesk/internal/config"
)

// Open returns the configured transport wrapped with the default sender
// address and subject prefix.
func Open(cfg config.MailConfig) (Sender, error) {
	var s Sender
	switch strings.ToLower(cfg.Driver) {
	case "", "console":
		s = NewConsoleSender(slog.Default())
	case "sendgrid":
		if cfg.SendGridAPIKey == "" {
			return nil, fmt.Errorf("mail: SENDGRID_API_KEY is required for the sendgrid driver")
		}
		s = NewSendGridSender(cfg.SendGridAPIKey)
	default:
		return nil, fmt.Errorf("mail: unknown driver %q", cfg.Driver)
	}
	return WithDefaults(s, cfg.DefaultFrom, cfg.SubjectPrefix), nil
}
