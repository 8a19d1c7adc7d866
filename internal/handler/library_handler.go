package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"vidora-client/internal/domain"
	"vidora-client/internal/service/library"
	"vidora-client/pkg/errors"
	"vidora-client/pkg/logger"
)

// LibraryHandler loads the history, saved and downloads lists
type LibraryHandler struct {
	lists  *library.Lists
	logger *logger.Logger
}

// NewLibraryHandler creates a new library handler
func NewLibraryHandler(screens *Screens, logger *logger.Logger) *LibraryHandler {
	return &LibraryHandler{
		lists:  screens.Library,
		logger: logger,
	}
}

// Load handles GET /api/library/{kind}
func (h *LibraryHandler) Load(w http.ResponseWriter, r *http.Request) {
	kind := domain.LibraryKind(chi.URLParam(r, "kind"))

	done, ok := h.lists.Load(kind)
	if !ok {
		writeError(w, r, errors.NewNotFoundError("Unknown library list"), h.logger)
		return
	}
	if !await(r.Context(), done) {
		writeError(w, r, timeoutError(), h.logger)
		return
	}
	writeJSON(w, http.StatusOK, h.lists.State(kind), "Library list retrieved", h.logger)
}
