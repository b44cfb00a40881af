package middleware

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/openalpha/fundmarket/metrics"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// MetricsMiddleware records request counts and latency by route template,
// so ids in the path do not create new series
func MetricsMiddleware(c *metrics.Collector) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			timer := metrics.NewTimer()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			path := r.URL.Path
			if route := mux.CurrentRoute(r); route != nil {
				if tpl, err := route.GetPathTemplate(); err == nil {
					path = tpl
				}
			}
			c.RecordAPIRequest(r.Method, path, strconv.Itoa(rec.status), timer.ElapsedMs())
		})
	}
}
