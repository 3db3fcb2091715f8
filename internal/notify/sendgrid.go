package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendGridHost     = "https://api.sendgrid.com"
	sendGridEndpoint = "/v3/mail/send"
	defaultFromName  = "Doctors Portal"
)

// SendGridMailer posts letters to the SendGrid v3 mail API.
type SendGridMailer struct {
	apiKey string
	host   string
	from   *mail.Email
	logger zerolog.Logger
}

// NewSendGridMailer returns nil when apiKey is empty. An empty host means
// the public SendGrid API.
func NewSendGridMailer(apiKey, host, fromEmail, fromName string, logger zerolog.Logger) *SendGridMailer {
	if apiKey == "" {
		return nil
	}
	if host == "" {
		host = sendGridHost
	}
	if fromName == "" {
		fromName = defaultFromName
	}
	return &SendGridMailer{
		apiKey: apiKey,
		host:   host,
		from:   mail.NewEmail(fromName, fromEmail),
		logger: logger,
	}
}

func (m *SendGridMailer) Deliver(ctx context.Context, l Letter) error {
	if m == nil {
		return fmt.Errorf("notify: sendgrid mailer not configured")
	}

	req := sendgrid.GetRequest(m.apiKey, sendGridEndpoint, m.host)
	req.Method = http.MethodPost
	req.Body = mail.GetRequestBody(m.compose(l))

	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("notify: sendgrid request: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		m.logger.Error().Int("status", resp.StatusCode).Str("body", resp.Body).Str("kind", l.Kind).Msg("sendgrid rejected letter")
		return fmt.Errorf("notify: sendgrid status %d", resp.StatusCode)
	}
	m.logger.Debug().Str("kind", l.Kind).Str("to", l.To).Int("status", resp.StatusCode).Msg("letter delivered")
	return nil
}

// compose builds the v3 payload. The letter kind becomes a SendGrid
// category so clinic mail can be filtered in the provider dashboard.
func (m *SendGridMailer) compose(l Letter) *mail.SGMailV3 {
	msg := mail.NewV3Mail()
	msg.SetFrom(m.from)
	msg.Subject = l.Subject

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail(l.ToName, l.To))
	msg.AddPersonalizations(p)

	text := l.Text
	if text == "" {
		text = l.HTML
	}
	msg.AddContent(mail.NewContent("text/plain", text))
	if l.HTML != "" {
		msg.AddContent(mail.NewContent("text/html", l.HTML))
	}
	if l.Kind != "" {
		msg.AddCategories(l.Kind)
	}
	return msg
}
