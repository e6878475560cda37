package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SigNoz/ecommerce-console/internal/metrics"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestCORSMiddleware(t *testing.T) {
	called := false
	h := CORSMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/console/products", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, called)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "DELETE")
}

func TestErrorHandlerMiddlewareRecovers(t *testing.T) {
	var buf bytes.Buffer
	h := ErrorHandlerMiddleware(zerolog.New(&buf))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Internal Server Error", body["error"])
	assert.Contains(t, buf.String(), "handler panicked")
}

type fakeLogin bool

func (f fakeLogin) LoginRequired() bool { return bool(f) }

func TestLoginGate(t *testing.T) {
	tests := []struct {
		name     string
		required bool
		path     string
		want     int
	}{
		{"logged in", false, "/console/orders", http.StatusOK},
		{"login required", true, "/console/orders", http.StatusSeeOther},
		{"login page stays open", true, "/login", http.StatusOK},
		{"open path", true, "/health", http.StatusOK},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			h := LoginGate(fakeLogin(tt.required), "/health")(http.HandlerFunc(okHandler))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusSeeOther {
				assert.Equal(t, LoginPath, rec.Header().Get("Location"))
			}
		})
	}
}

func TestMetricsMiddlewareLogsRouteTemplate(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	r := mux.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(MetricsMiddleware(metrics.NewNoop(), logger))
	r.HandleFunc("/console/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Info().Msg("inside")
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/console/products/42", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var inside, served map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &inside))
	require.NoError(t, json.Unmarshal(lines[1], &served))
	assert.Equal(t, rec.Header().Get(RequestIDHeader), inside["request_id"])
	assert.Equal(t, "/console/products/{id}", served["route"])
	assert.EqualValues(t, http.StatusNotFound, served["status"])
	assert.Equal(t, "request served", served["message"])
}

func TestResponseWriterKeepsFirstStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}
	_, _ = rw.Write([]byte("ok"))
	rw.WriteHeader(http.StatusTeapot)
	assert.Equal(t, http.StatusOK, rw.statusCode)
}
