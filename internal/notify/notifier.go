package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/markjakearzadon/doctors-portal-gobackend/internal/metrics"
	"github.com/markjakearzadon/doctors-portal-gobackend/internal/models"
)

const (
	KindBookingConfirmation = "booking_confirmation"
	KindPaymentConfirmation = "payment_confirmation"

	sendTimeout = 10 * time.Second
)

// Notifier sends best-effort emails. Sends run detached from the request,
// failures are logged and counted, and nothing is retried.
type Notifier struct {
	mailer  Mailer
	logger  zerolog.Logger
	metrics *metrics.Metrics
	wg      sync.WaitGroup
}

func NewNotifier(mailer Mailer, logger zerolog.Logger, m *metrics.Metrics) *Notifier {
	if mailer == nil {
		mailer = NewLogMailer(logger)
	}
	return &Notifier{mailer: mailer, logger: logger, metrics: m}
}

func (n *Notifier) BookingConfirmed(ctx context.Context, b models.Booking) {
	n.dispatch(ctx, BookingConfirmationLetter(b))
}

func (n *Notifier) PaymentReceived(ctx context.Context, b models.Booking) {
	n.dispatch(ctx, PaymentConfirmationLetter(b))
}

// Wait blocks until in-flight sends finish. Used on shutdown and in tests.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func (n *Notifier) dispatch(ctx context.Context, l Letter) {
	if n == nil {
		return
	}
	if l.To == "" {
		n.logger.Warn().Str("kind", l.Kind).Msg("skipping email without recipient")
		return
	}

	// The request context is cancelled as soon as the handler returns.
	detached := context.WithoutCancel(ctx)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		sendCtx, cancel := context.WithTimeout(detached, sendTimeout)
		defer cancel()

		err := n.mailer.Deliver(sendCtx, l)
		n.metrics.ObserveEmail(l.Kind, err)
		if err != nil {
			n.logger.Error().Err(err).Str("kind", l.Kind).Str("to", l.To).Msg("failed to send email")
		}
	}()
}

func BookingConfirmationLetter(b models.Booking) Letter {
	subject := fmt.Sprintf("Your appointment for %s is on %s at %s is confirmed", b.TreatmentName, b.Date, b.Slot)
	body := fmt.Sprintf("Hello %s,\n\nYour appointment for %s is confirmed.\nDate: %s\nTime: %s\n\nLooking forward to seeing you.\n",
		displayName(b), b.TreatmentName, b.Date, b.Slot)
	html := fmt.Sprintf(`<div><p>Hello %s,</p><h3>Your appointment for %s is confirmed</h3><p>Looking forward to seeing you on %s at %s.</p></div>`,
		displayName(b), b.TreatmentName, b.Date, b.Slot)
	return Letter{Kind: KindBookingConfirmation, To: b.Patient, ToName: b.PatientName, Subject: subject, Text: body, HTML: html}
}

func PaymentConfirmationLetter(b models.Booking) Letter {
	subject := fmt.Sprintf("We have received your payment for %s on %s at %s", b.TreatmentName, b.Date, b.Slot)
	body := fmt.Sprintf("Hello %s,\n\nThank you for your payment.\nTransaction: %s\nTreatment: %s\nDate: %s\nTime: %s\n",
		displayName(b), b.TransactionID, b.TreatmentName, b.Date, b.Slot)
	html := fmt.Sprintf(`<div><p>Hello %s,</p><h3>Thank you for your payment</h3><p>Transaction id: %s</p><p>Your appointment for %s is on %s at %s.</p></div>`,
		displayName(b), b.TransactionID, b.TreatmentName, b.Date, b.Slot)
	return Letter{Kind: KindPaymentConfirmation, To: b.Patient, ToName: b.PatientName, Subject: subject, Text: body, HTML: html}
}

func displayName(b models.Booking) string {
	if b.PatientName != "" {
		return b.PatientName
	}
	return b.Patient
}
