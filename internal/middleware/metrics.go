package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/markjakearzadon/doctors-portal-gobackend/internal/metrics"
)

// Metrics records request counts and latency per route template, so
// /booking/{id} is one series regardless of id.
func Metrics(m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := record(w)
			next.ServeHTTP(rec, r)

			route := "unmatched"
			if current := mux.CurrentRoute(r); current != nil {
				if tpl, err := current.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			m.ObserveRequest(route, r.Method, rec.status, time.Since(start))
		})
	}
}
