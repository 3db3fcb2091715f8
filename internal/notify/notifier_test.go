package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markjakearzadon/doctors-portal-gobackend/internal/metrics"
	"github.com/markjakearzadon/doctors-portal-gobackend/internal/models"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []Letter
	err  error

	// ctxErrs holds ctx.Err() as seen at send time.
	ctxErrs []error
}

func (r *recordingMailer) Deliver(ctx context.Context, l Letter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, l)
	r.ctxErrs = append(r.ctxErrs, ctx.Err())
	return r.err
}

var booking = models.Booking{
	TreatmentName: "Cleaning",
	Date:          "2024-01-01",
	Slot:          "10:00",
	Patient:       "a@x.com",
	PatientName:   "Alice",
	TransactionID: "pi_123",
}

func TestNotifierSendsDetachedFromRequest(t *testing.T) {
	sender := &recordingMailer{}
	n := NewNotifier(sender, zerolog.Nop(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n.BookingConfirmed(ctx, booking)
	n.Wait()

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "a@x.com", sender.sent[0].To)
	assert.Equal(t, KindBookingConfirmation, sender.sent[0].Kind)
	assert.Contains(t, sender.sent[0].Subject, "Cleaning")
	assert.NoError(t, sender.ctxErrs[0], "send context must outlive the request")
}

func TestNotifierSwallowsFailures(t *testing.T) {
	sender := &recordingMailer{err: errors.New("smtp down")}
	m := metrics.New(prometheus.NewRegistry())
	n := NewNotifier(sender, zerolog.Nop(), m)

	assert.NotPanics(t, func() {
		n.PaymentReceived(context.Background(), booking)
		n.Wait()
	})
	require.Len(t, sender.sent, 1)
}

func TestNotifierSkipsMissingRecipient(t *testing.T) {
	sender := &recordingMailer{}
	n := NewNotifier(sender, zerolog.Nop(), nil)

	n.BookingConfirmed(context.Background(), models.Booking{TreatmentName: "Cleaning"})
	n.Wait()
	assert.Empty(t, sender.sent)
}

func TestNilNotifierIsSafe(t *testing.T) {
	var n *Notifier
	assert.NotPanics(t, func() { n.BookingConfirmed(context.Background(), booking) })
}

func TestBookingConfirmationLetter(t *testing.T) {
	msg := BookingConfirmationLetter(booking)
	assert.Equal(t, "Your appointment for Cleaning is on 2024-01-01 at 10:00 is confirmed", msg.Subject)
	assert.Equal(t, "Alice", msg.ToName)
	assert.Equal(t, KindBookingConfirmation, msg.Kind)
	assert.Contains(t, msg.Text, "Hello Alice")
	assert.Contains(t, msg.HTML, "<h3>")
}

func TestPaymentConfirmationLetterFallsBackToEmail(t *testing.T) {
	b := booking
	b.PatientName = ""
	msg := PaymentConfirmationLetter(b)
	assert.Contains(t, msg.Text, "Hello a@x.com")
	assert.Contains(t, msg.Text, "pi_123")
}

func TestLogMailer(t *testing.T) {
	assert.NoError(t, NewLogMailer(zerolog.Nop()).Deliver(context.Background(), Letter{To: "a@x.com"}))
}

func TestNotifierDefaultsToLogMailer(t *testing.T) {
	n := NewNotifier(nil, zerolog.Nop(), nil)
	_, ok := n.mailer.(*LogMailer)
	assert.True(t, ok)
}
