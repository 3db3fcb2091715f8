package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/markjakearzadon/doctors-portal-gobackend/internal/auth"
	"github.com/markjakearzadon/doctors-portal-gobackend/internal/metrics"
	"github.com/markjakearzadon/doctors-portal-gobackend/internal/middleware"
	"github.com/markjakearzadon/doctors-portal-gobackend/internal/services"
)

const rootMessage = "doctors portal connect"

// Deps is everything the HTTP layer needs. All fields except Gatherer,
// CORSOrigins and RequestTimeout are required.
type Deps struct {
	Catalog      *services.CatalogService
	Users        *services.UserService
	Doctors      *services.DoctorService
	Bookings     *services.BookingService
	Availability *services.AvailabilityService
	Payments     *services.PaymentService
	Tokens       *auth.TokenService

	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   zerolog.Logger

	CORSOrigins    []string
	RequestTimeout time.Duration
}

func NewRouter(d Deps) http.Handler {
	userHandler := NewUserHandler(d.Users, d.Tokens)
	serviceHandler := NewServiceHandler(d.Catalog)
	availabilityHandler := NewAvailabilityHandler(d.Availability)
	bookingHandler := NewBookingHandler(d.Bookings)
	paymentHandler := NewPaymentHandler(d.Payments)
	doctorHandler := NewDoctorHandler(d.Doctors)

	authed := middleware.Authenticated(d.Tokens)
	admin := func(h http.HandlerFunc) http.Handler {
		return authed(middleware.RequireAdmin(d.Users, d.Logger)(h))
	}
	owner := func(h http.HandlerFunc) http.Handler {
		return authed(middleware.RequireOwner("patient")(h))
	}

	r := mux.NewRouter()
	r.Use(middleware.Metrics(d.Metrics))

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(rootMessage))
	}).Methods(http.MethodGet)

	r.HandleFunc("/service", serviceHandler.GetServices).Methods(http.MethodGet)
	r.HandleFunc("/available", availabilityHandler.GetAvailable).Methods(http.MethodGet)

	r.Handle("/users", authed(http.HandlerFunc(userHandler.GetUsers))).Methods(http.MethodGet)
	r.HandleFunc("/admin/{email}", userHandler.GetAdmin).Methods(http.MethodGet)
	r.Handle("/user/admin/{email}", admin(userHandler.MakeAdmin)).Methods(http.MethodPut)
	r.HandleFunc("/user/{email}", userHandler.UpsertUser).Methods(http.MethodPut)

	r.HandleFunc("/booking", bookingHandler.CreateBooking).Methods(http.MethodPost)
	r.Handle("/booking", owner(bookingHandler.GetBookings)).Methods(http.MethodGet)
	r.Handle("/booking/{id}", authed(http.HandlerFunc(bookingHandler.GetBooking))).Methods(http.MethodGet)
	r.Handle("/booking/{id}", authed(http.HandlerFunc(bookingHandler.MarkPaid))).Methods(http.MethodPatch)

	r.Handle("/create-payment-intent", authed(http.HandlerFunc(paymentHandler.CreatePaymentIntent))).Methods(http.MethodPost)

	r.Handle("/doctors", admin(doctorHandler.GetDoctors)).Methods(http.MethodGet)
	r.Handle("/doctors", admin(doctorHandler.AddDoctor)).Methods(http.MethodPost)
	r.Handle("/doctors/{email}", admin(doctorHandler.DeleteDoctor)).Methods(http.MethodDelete)

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	var h http.Handler = r
	h = middleware.Timeout(d.RequestTimeout)(h)
	h = middleware.RequestLogger(d.Logger)(h)
	h = middleware.Recovery(d.Logger)(h)
	h = middleware.CORS(d.CORSOrigins)(h)
	return h
}
