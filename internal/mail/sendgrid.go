package mail

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/mail"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendGridHost     = "https://api.sendgrid.com"
	sendGridEndpoint = "/v3/mail/send"
)

// SendGridSender delivers messages through the SendGrid v3 API.
type SendGridSender struct {
	key  string
	host string
}

// NewSendGridSender creates a sender authenticated with key.
func NewSendGridSender(key string) *SendGridSender {
	return &SendGridSender{key: key, host: sendGridHost}
}

// Send posts one message. Any status >= 400 is a transport error.
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkMessage(msg); err != nil {
		return err
	}

	req := sendgrid.GetRequest(s.key, sendGridEndpoint, s.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(buildSendGridMail(msg))

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("sendgrid send to %s: %w", msg.To, err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid send to %s: status %d: %s", msg.To, res.StatusCode, res.Body)
	}
	return nil
}

func buildSendGridMail(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(address(msg.To))
	for _, cc := range msg.Cc {
		if cc != "" && cc != msg.To {
			p.AddCCs(address(cc))
		}
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(address(msg.From))
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/html", msg.HTML))

	for _, a := range msg.Attachments {
		m.AddAttachment(&sgmail.Attachment{
			Content:     base64.StdEncoding.EncodeToString(a.Content),
			Type:        a.ContentType,
			Filename:    a.Filename,
			Disposition: "attachment",
		})
	}
	return m
}

// address accepts both "Name <addr>" and bare addresses.
func address(s string) *sgmail.Email {
	if parsed, err := mail.ParseAddress(s); err == nil {
		return sgmail.NewEmail(parsed.Name, parsed.Address)
	}
	return sgmail.NewEmail("", s)
}
