package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"vidora-client/internal/middleware"
	"vidora-client/internal/service/subscription"
	"vidora-client/pkg/errors"
	"vidora-client/pkg/logger"
)

// SubscriptionHandler handles subscription related requests
type SubscriptionHandler struct {
	store  *subscription.Store
	set    *subscription.Set
	logger *logger.Logger
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(screens *Screens, set *subscription.Set, logger *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		store:  screens.Subscriptions,
		set:    set,
		logger: logger,
	}
}

// ToggleResponse pairs the toggle outcome with the optimistic membership
type ToggleResponse struct {
	Toggle     subscription.ToggleState `json:"toggle"`
	Subscribed bool                     `json:"subscribed"`
}

// MembershipResponse is the local membership view
type MembershipResponse struct {
	ChannelIDs []string `json:"channel_ids"`
}

// Subscribe handles POST /api/subscriptions/{channelId}
func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, true)
}

// Unsubscribe handles DELETE /api/subscriptions/{channelId}
func (h *SubscriptionHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, false)
}

func (h *SubscriptionHandler) toggle(w http.ResponseWriter, r *http.Request, subscribe bool) {
	channelID := strings.TrimSpace(chi.URLParam(r, "channelId"))
	if channelID == "" {
		writeError(w, r, errors.NewValidationError("Channel ID is required", map[string]interface{}{
			"field": "channel_id",
		}), h.logger)
		return
	}

	if identity, ok := middleware.IdentityFrom(r.Context()); ok {
		h.logger.WithFields(map[string]interface{}{
			"user_key":   identity.Key,
			"channel_id": channelID,
			"subscribe":  subscribe,
		}).Debug("Toggling subscription")
	}

	var done <-chan struct{}
	if subscribe {
		done = h.store.Subscribe(channelID)
	} else {
		done = h.store.Unsubscribe(channelID)
	}
	if !await(r.Context(), done) {
		writeError(w, r, timeoutError(), h.logger)
		return
	}

	writeJSON(w, http.StatusOK, ToggleResponse{
		Toggle:     h.store.Toggle(),
		Subscribed: h.store.IsSubscribed(channelID),
	}, "Subscription updated", h.logger)
}

// List handles GET /api/subscriptions
func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	if !await(r.Context(), h.store.ListMine()) {
		writeError(w, r, timeoutError(), h.logger)
		return
	}
	writeJSON(w, http.StatusOK, h.store.List(), "Subscriptions retrieved", h.logger)
}

// Members handles GET /api/subscriptions/members
func (h *SubscriptionHandler) Members(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, MembershipResponse{ChannelIDs: h.set.Members()}, "Membership retrieved", h.logger)
}
