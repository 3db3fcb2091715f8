package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes counters/histograms for the HTTP surface and the booking
// and notification flows. A nil *Metrics is valid and records nothing.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	bookingsTotal   *prometheus.CounterVec
	emailsTotal     *prometheus.CounterVec
	paymentsTotal   *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "doctors_portal",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "doctors_portal",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "doctors_portal",
			Subsystem: "booking",
			Name:      "create_total",
			Help:      "Booking create attempts by outcome",
		}, []string{"outcome"}),
		emailsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "doctors_portal",
			Subsystem: "notify",
			Name:      "emails_total",
			Help:      "Outbound emails by kind and status",
		}, []string{"kind", "status"}),
		paymentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "doctors_portal",
			Subsystem: "payment",
			Name:      "intents_total",
			Help:      "Payment intent requests by status",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.requestDuration, m.bookingsTotal, m.emailsTotal, m.paymentsTotal)
	return m
}

func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// ObserveBooking records "accepted", "duplicate" or "error".
func (m *Metrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveEmail(kind string, err error) {
	if m == nil {
		return
	}
	status := "sent"
	if err != nil {
		status = "failed"
	}
	m.emailsTotal.WithLabelValues(kind, status).Inc()
}

func (m *Metrics) ObservePaymentIntent(err error) {
	if m == nil {
		return
	}
	status := "created"
	if err != nil {
		status = "failed"
	}
	m.paymentsTotal.WithLabelValues(status).Inc()
}
