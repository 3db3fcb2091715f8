package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// Letter is one outgoing clinic email. Kind names the template it came from
// and is used for metrics and provider-side categories.
type Letter struct {
	Kind    string
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers a Letter.
type Mailer interface {
	Deliver(ctx context.Context, l Letter) error
}

// LogMailer only logs letters. It is used when no provider is configured.
type LogMailer struct {
	logger zerolog.Logger
}

func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Deliver(_ context.Context, l Letter) error {
	m.logger.Info().Str("kind", l.Kind).Str("to", l.To).Str("subject", l.Subject).Msg("email not sent: no mail provider configured")
	return nil
}
