package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/SigNoz/ecommerce-console/internal/metrics"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RequestIDHeader carries the request ID in and out
const RequestIDHeader = "X-Request-ID"

// LoginPath is where the gate sends users who must log in again
const LoginPath = "/login"

type requestIDKey struct{}

// MetricsMiddleware records HTTP request metrics and logs each request
func MetricsMiddleware(m *metrics.AppMetrics, logger zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Wrap response writer to capture status code
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			reqLogger := logger.With().Str("request_id", RequestID(r.Context())).Logger()
			next.ServeHTTP(rw, r.WithContext(reqLogger.WithContext(r.Context())))

			duration := time.Since(start).Milliseconds()
			routePattern := RoutePattern(r)

			ctx := r.Context()
			attrs := []attribute.KeyValue{
				attribute.String("http.method", r.Method),
				attribute.String("http.route", routePattern),
				attribute.Int("http.status_code", rw.statusCode),
			}

			m.HTTPRequestsTotal.Add(ctx, 1, metric.WithAttributes(m.WithServiceName(attrs)...))

			// Record error requests (4xx, 5xx)
			if rw.statusCode >= 400 {
				m.HTTPRequestsErrors.Add(ctx, 1, metric.WithAttributes(m.WithServiceName(attrs)...))
			}

			m.HTTPRequestDuration.Record(ctx, float64(duration), metric.WithAttributes(m.WithServiceName(attrs)...))

			event := reqLogger.Info()
			if rw.statusCode >= 500 {
				event = reqLogger.Error()
			}
			event.
				Str("method", r.Method).
				Str("route", routePattern).
				Str("remote_addr", r.RemoteAddr).
				Int("status", rw.statusCode).
				Int64("duration_ms", duration).
				Msg("request served")
		})
	}
}

// RoutePattern is the mux path template that matched r, or "unknown"
func RoutePattern(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return "unknown"
	}
	if tpl, err := route.GetPathTemplate(); err == nil {
		return tpl
	}
	return "unknown"
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.written = true
	return rw.ResponseWriter.Write(b)
}

// RequestIDMiddleware adds a request ID to the context and the response
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestID returns the ID set by RequestIDMiddleware, or ""
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// CORSMiddleware adds CORS headers
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+RequestIDHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ErrorHandlerMiddleware turns panics into a JSON 500
func ErrorHandlerMiddleware(logger zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error().
						Interface("panic", rec).
						Str("request_id", RequestID(r.Context())).
						Str("path", r.URL.Path).
						Msg("handler panicked")
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{"error": "Internal Server Error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// LoginState reports whether the user has to log in again
type LoginState interface {
	LoginRequired() bool
}

// LoginGate sends every request to LoginPath with 303 See Other while the
// session needs a login. Paths in open pass through.
func LoginGate(state LoginState, open ...string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if state.LoginRequired() && !isOpen(r.URL.Path, open) {
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isOpen(path string, open []string) bool {
	if path == LoginPath {
		return true
	}
	for _, p := range open {
		if path == p {
			return true
		}
	}
	return false
}
