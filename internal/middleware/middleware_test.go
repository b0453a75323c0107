package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func decodeErrorBody(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()

	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestCORS(t *testing.T) {
	t.Run("Preflight is answered without reaching the handler", func(t *testing.T) {
		var called bool
		req := httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
		w := httptest.NewRecorder()

		CORS(okHandler(&called)).ServeHTTP(w, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Regular request carries the headers", func(t *testing.T) {
		var called bool
		req := httptest.NewRequest(http.MethodPut, "/api/product-sales/3", nil)
		w := httptest.NewRecorder()

		CORS(okHandler(&called)).ServeHTTP(w, req)

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
		for _, header := range []string{APIKeyHeader, UserIDHeader, UserRoleHeader, CorrelationHeader} {
			assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), header)
		}
		assert.Equal(t, CorrelationHeader, w.Header().Get("Access-Control-Expose-Headers"))
	})
}

func TestAPIKeyAuth(t *testing.T) {
	const key = "storefront-key"

	tests := []struct {
		name        string
		path        string
		key         string
		wantStatus  int
		wantCalled  bool
		wantMessage string
	}{
		{name: "Matching key", path: "/api/orders", key: key, wantStatus: http.StatusOK, wantCalled: true},
		{name: "Health probe needs no key", path: "/health", wantStatus: http.StatusOK, wantCalled: true},
		{name: "Missing key", path: "/api/orders", wantStatus: http.StatusUnauthorized, wantMessage: "missing API key"},
		{name: "Wrong key", path: "/api/product-sales", key: "nope", wantStatus: http.StatusUnauthorized, wantMessage: "invalid API key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			h := CorrelationID(APIKeyAuth(key, zerolog.Nop())(okHandler(&called)))

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set(CorrelationHeader, "corr-auth")
			if tt.key != "" {
				req.Header.Set(APIKeyHeader, tt.key)
			}
			w := httptest.NewRecorder()

			h.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCalled, called)

			if tt.wantMessage != "" {
				body := decodeErrorBody(t, w)
				assert.Equal(t, model.ErrCodeUnauthorised, body.Error)
				assert.Equal(t, tt.wantMessage, body.Message)
				assert.Equal(t, "corr-auth", body.CorrelationID)
			}
		})
	}
}

func TestLogging(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantLevel  string
		wantStatus float64
		wantBytes  float64
	}{
		{
			name: "Successful request at info",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte(`{"id":1}`))
			},
			wantLevel:  "info",
			wantStatus: http.StatusCreated,
			wantBytes:  8,
		},
		{
			name: "Implicit status is 200",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("ok"))
			},
			wantLevel:  "info",
			wantStatus: http.StatusOK,
			wantBytes:  2,
		},
		{
			name: "Client error stays at info",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusConflict)
			},
			wantLevel:  "info",
			wantStatus: http.StatusConflict,
		},
		{
			name: "Server error at error level",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			wantLevel:  "error",
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := zerolog.New(&buf)
			h := CorrelationID(Logging(logger)(tt.handler))

			req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
			req.Header.Set(CorrelationHeader, "corr-log")
			w := httptest.NewRecorder()

			h.ServeHTTP(w, req)

			var entry map[string]interface{}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, "http request", entry["message"])
			assert.Equal(t, http.MethodPost, entry["method"])
			assert.Equal(t, "/api/orders", entry["path"])
			assert.Equal(t, tt.wantStatus, entry["status"])
			assert.Equal(t, tt.wantBytes, entry["bytes"])
			assert.Equal(t, "corr-log", entry["correlation_id"])
			assert.Contains(t, entry, "duration")
		})
	}
}

func TestResponseWriter_KeepsFirstStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusAccepted)
	rw.WriteHeader(http.StatusInternalServerError)
	n, err := rw.Write([]byte("queued"))

	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, http.StatusAccepted, rw.statusCode)
	assert.Equal(t, 6, rw.written)
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestRecovery(t *testing.T) {
	t.Run("Panic becomes an internal error", func(t *testing.T) {
		h := CorrelationID(Recovery(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("projector exploded")
		})))

		req := httptest.NewRequest(http.MethodPost, "/api/product-sales", nil)
		req.Header.Set(CorrelationHeader, "corr-panic")
		w := httptest.NewRecorder()

		require.NotPanics(t, func() { h.ServeHTTP(w, req) })

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decodeErrorBody(t, w)
		assert.Equal(t, model.ErrCodeInternalError, body.Error)
		assert.Equal(t, "corr-panic", body.CorrelationID)
		assert.NotContains(t, w.Body.String(), "projector exploded")
	})

	t.Run("Abort panics are re-raised", func(t *testing.T) {
		h := Recovery(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic(http.ErrAbortHandler)
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		w := httptest.NewRecorder()

		assert.PanicsWithValue(t, http.ErrAbortHandler, func() { h.ServeHTTP(w, req) })
	})

	t.Run("Normal requests pass through", func(t *testing.T) {
		var called bool
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		w := httptest.NewRecorder()

		Recovery(zerolog.Nop())(okHandler(&called)).ServeHTTP(w, req)

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
