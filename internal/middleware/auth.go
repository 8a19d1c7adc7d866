package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"vidora-client/internal/domain"
	"vidora-client/internal/service"
	"vidora-client/pkg/errors"
	"vidora-client/pkg/logger"
)

// ContextKey represents keys used in request context
type ContextKey string

const (
	// IdentityContextKey is the key for the signed-in identity in context
	IdentityContextKey ContextKey = "identity"
	// RequestIDContextKey is the key for request ID in context
	RequestIDContextKey ContextKey = "request_id"
)

// RequestIDHeader carries the request ID in both directions
const RequestIDHeader = "X-Request-ID"

// RequireSession rejects requests while nobody is signed in and puts the
// identity in the request context otherwise
func RequireSession(identity service.IdentitySource, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			current := identity.Current()
			if !current.SignedIn() {
				WriteError(w, r, errors.NewAuthenticationError("Sign in required"), logger)
				return
			}

			ctx := context.WithValue(r.Context(), IdentityContextKey, current)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFrom returns the identity RequireSession stored in ctx
func IdentityFrom(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(IdentityContextKey).(domain.Identity)
	return identity, ok
}

// RequestID creates a middleware that adds a unique request ID to each
// request, keeping one supplied by the caller
func RequestID(logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if _, err := uuid.Parse(requestID); err != nil {
				requestID = uuid.NewString()
			}

			ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
			w.Header().Set(RequestIDHeader, requestID)

			logger.WithFields(map[string]interface{}{
				"request_id": requestID,
				"method":     r.Method,
				"path":       r.URL.Path,
			}).Debug("Request received")

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDFrom returns the request ID stored in ctx, empty if none
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDContextKey).(string)
	return id
}

// WriteError writes the JSON error envelope for err
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *logger.Logger) {
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.NewInternalError("Internal server error", err)
	}

	requestID := RequestIDFrom(r.Context())
	log := logger.WithError(appErr).WithField("request_id", requestID)
	if appErr.StatusCode >= http.StatusInternalServerError {
		log.Error("Request error")
	} else {
		log.Info("Request rejected")
	}

	response := &errors.ErrorResponse{}
	response.Error.Type = appErr.Type
	response.Error.Message = errors.UserMessage(appErr)
	response.Error.Details = appErr.Details
	response.Error.RequestID = requestID
	response.Error.Timestamp = time.Now().UTC().Format(time.RFC3339)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.WithError(err).Error("Failed to encode error response")
	}
}
