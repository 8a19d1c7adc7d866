package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"vidora-client/internal/service/channel"
	"vidora-client/pkg/logger"
)

// ChannelHandler serves the channel page and the profile screen
type ChannelHandler struct {
	page    *channel.Page
	profile *channel.Profile
	logger  *logger.Logger
}

// NewChannelHandler creates a new channel handler
func NewChannelHandler(screens *Screens, logger *logger.Logger) *ChannelHandler {
	return &ChannelHandler{
		page:    screens.Channel,
		profile: screens.Profile,
		logger:  logger,
	}
}

// Channel handles GET /api/channels/{identifier}. The identifier is a
// channel ID or handle.
func (h *ChannelHandler) Channel(w http.ResponseWriter, r *http.Request) {
	if !await(r.Context(), h.page.Load(chi.URLParam(r, "identifier"))) {
		writeError(w, r, timeoutError(), h.logger)
		return
	}
	writeJSON(w, http.StatusOK, h.page.State(), "Channel retrieved", h.logger)
}

// Profile handles GET /api/profile. Signed out the state carries the error.
func (h *ChannelHandler) Profile(w http.ResponseWriter, r *http.Request) {
	if !await(r.Context(), h.profile.Load()) {
		writeError(w, r, timeoutError(), h.logger)
		return
	}
	writeJSON(w, http.StatusOK, h.profile.State(), "Profile retrieved", h.logger)
}
