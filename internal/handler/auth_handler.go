package handler

import (
	"net/http"
	"strings"

	"vidora-client/internal/container"
	"vidora-client/internal/domain"
	"vidora-client/pkg/errors"
)

// AuthHandler handles the bridge session
type AuthHandler struct {
	container *container.Container
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(container *container.Container) *AuthHandler {
	return &AuthHandler{
		container: container,
	}
}

// SignInRequest carries the session token issued by the remote service
type SignInRequest struct {
	Token string `json:"token"`
}

// SessionResponse describes the current session
type SessionResponse struct {
	SignedIn bool            `json:"signed_in"`
	Identity domain.Identity `json:"identity"`
}

// GetSession handles GET /api/session
func (h *AuthHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	identity := h.container.GetAuthProvider().Current()
	writeJSON(w, http.StatusOK, SessionResponse{SignedIn: identity.SignedIn(), Identity: identity},
		"Session retrieved successfully", h.container.GetLogger())
}

// SignIn handles POST /api/session
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	var req SignInRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err, logger)
		return
	}
	if strings.TrimSpace(req.Token) == "" {
		writeError(w, r, errors.NewValidationError("Token is required", map[string]interface{}{
			"field": "token",
		}), logger)
		return
	}

	identity, err := h.container.GetAuthProvider().SignIn(r.Context(), req.Token)
	if err != nil {
		writeError(w, r, err, logger)
		return
	}

	logger.WithField("user_key", identity.Key).Debug("Bridge session started")
	writeJSON(w, http.StatusOK, SessionResponse{SignedIn: true, Identity: identity}, "Signed in successfully", logger)
}

// SignOut handles DELETE /api/session
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	if err := h.container.GetAuthProvider().SignOut(r.Context()); err != nil {
		writeError(w, r, err, logger)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{}, "Signed out successfully", logger)
}
