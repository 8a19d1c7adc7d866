package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidora-client/internal/domain"
	"vidora-client/pkg/errors"
	"vidora-client/pkg/logger"
)

type staticIdentity struct {
	identity domain.Identity
}

func (s staticIdentity) Current() domain.Identity {
	return s.identity
}

func (s staticIdentity) Watch(ctx context.Context) <-chan domain.Identity {
	ch := make(chan domain.Identity, 1)
	ch <- s.identity
	return ch
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name           string
		allowed        []string
		origin         string
		method         string
		expectedOrigin string
		expectedStatus int
	}{
		{
			name:           "allowed origin",
			allowed:        []string{"http://localhost:5173"},
			origin:         "http://localhost:5173",
			method:         http.MethodGet,
			expectedOrigin: "http://localhost:5173",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "foreign origin",
			allowed:        []string{"http://localhost:5173"},
			origin:         "http://evil.test",
			method:         http.MethodGet,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "wildcard",
			allowed:        []string{"*"},
			origin:         "http://any.test",
			method:         http.MethodGet,
			expectedOrigin: "http://any.test",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "empty list admits any origin",
			origin:         "http://any.test",
			method:         http.MethodGet,
			expectedOrigin: "http://any.test",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "preflight short-circuits",
			allowed:        []string{"http://localhost:5173"},
			origin:         "http://localhost:5173",
			method:         http.MethodOptions,
			expectedOrigin: "http://localhost:5173",
			expectedStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			h := CORS(tt.allowed, logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(tt.method, "/api/feed", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.expectedOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
			assert.Equal(t, tt.method != http.MethodOptions, called)
		})
	}
}

func TestRequestID(t *testing.T) {
	supplied := uuid.NewString()

	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{name: "generated when absent"},
		{name: "kept when valid", incoming: supplied, keep: true},
		{name: "replaced when malformed", incoming: "not-a-uuid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := RequestID(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = RequestIDFrom(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
			_, err := uuid.Parse(seen)
			assert.NoError(t, err)
			if tt.keep {
				assert.Equal(t, tt.incoming, seen)
			} else {
				assert.NotEqual(t, tt.incoming, seen)
			}
		})
	}
}

func TestRequireSession(t *testing.T) {
	ann := domain.Identity{Key: "ann@example.com", Subject: "u1", Email: "ann@example.com"}

	t.Run("signed out", func(t *testing.T) {
		called := false
		h := RequireSession(staticIdentity{}, logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/subscriptions/c1", nil))

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("signed in", func(t *testing.T) {
		var got domain.Identity
		var ok bool
		h := RequireSession(staticIdentity{identity: ann}, logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok = IdentityFrom(r.Context())
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/subscriptions/c1", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		require.True(t, ok)
		assert.Equal(t, ann, got)
	})
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedType    errors.ErrorType
		expectedMessage string
	}{
		{
			name:            "app error",
			err:             errors.NewValidationError("Query is required", nil),
			expectedStatus:  http.StatusBadRequest,
			expectedType:    errors.ErrorTypeValidation,
			expectedMessage: "Query is required",
		},
		{
			name:            "unsuccessful response without server message",
			err:             errors.NewUnsuccessfulResponseError(http.StatusForbidden, ""),
			expectedStatus:  http.StatusForbidden,
			expectedType:    errors.ErrorTypeUnsuccessful,
			expectedMessage: "Request failed: 403 Forbidden",
		},
		{
			name:            "plain error",
			err:             assert.AnError,
			expectedStatus:  http.StatusInternalServerError,
			expectedType:    errors.ErrorTypeInternal,
			expectedMessage: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err, logger.NewNop())

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body errors.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.expectedType, body.Error.Type)
			assert.Equal(t, tt.expectedMessage, body.Error.Message)
			assert.NotEmpty(t, body.Error.Timestamp)
		})
	}
}
