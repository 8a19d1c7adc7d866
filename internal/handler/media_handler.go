package handler

import (
	"net/http"
	"strings"

	"vidora-client/internal/container"
	"vidora-client/pkg/errors"
)

// maxLocatorsPerRequest bounds one batch resolve
const maxLocatorsPerRequest = 50

// MediaHandler exchanges storage locators for signed URLs
type MediaHandler struct {
	container *container.Container
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(container *container.Container) *MediaHandler {
	return &MediaHandler{
		container: container,
	}
}

// SignedURLResponse carries one resolved locator
type SignedURLResponse struct {
	Locator   string `json:"locator"`
	SignedURL string `json:"signed_url"`
}

// ResolveManyRequest lists the locators to resolve
type ResolveManyRequest struct {
	Locators []string `json:"locators"`
}

// SignedURL handles GET /api/media/signed-url?locator=
func (h *MediaHandler) SignedURL(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()
	locator := r.URL.Query().Get("locator")

	signed, ok := h.container.GetResolver().Resolve(r.Context(), locator)
	if !ok {
		writeError(w, r, errors.NewNotFoundError("Media could not be resolved"), logger)
		return
	}
	writeJSON(w, http.StatusOK, SignedURLResponse{Locator: locator, SignedURL: signed}, "Signed URL resolved", logger)
}

// Invalidate handles DELETE /api/media/signed-url?locator=. A player calls
// it when a signed URL stopped working so the next resolve exchanges anew.
func (h *MediaHandler) Invalidate(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()
	locator := strings.TrimSpace(r.URL.Query().Get("locator"))
	if locator == "" {
		writeError(w, r, errors.NewValidationError("Locator is required", map[string]interface{}{
			"field": "locator",
		}), logger)
		return
	}

	h.container.GetResolver().Invalidate(locator)
	writeJSON(w, http.StatusOK, map[string]string{"locator": locator}, "Signed URL invalidated", logger)
}

// SignedURLs handles POST /api/media/signed-urls. Unresolvable locators are
// left out of the result.
func (h *MediaHandler) SignedURLs(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	var req ResolveManyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err, logger)
		return
	}
	if len(req.Locators) > maxLocatorsPerRequest {
		writeError(w, r, errors.NewValidationError("Too many locators", map[string]interface{}{
			"max": maxLocatorsPerRequest,
		}), logger)
		return
	}

	resolved := h.container.GetResolver().ResolveMany(r.Context(), req.Locators...)
	writeJSON(w, http.StatusOK, resolved, "Signed URLs resolved", logger)
}
