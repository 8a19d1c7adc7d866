package handler

import (
	"net/http"

	"vidora-client/internal/domain"
	"vidora-client/internal/service/feed"
	"vidora-client/pkg/errors"
	"vidora-client/pkg/logger"
)

// FeedHandler drives the home feed and the up-next list
type FeedHandler struct {
	feed   *feed.Feed
	upNext *feed.Feed
	logger *logger.Logger
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(screens *Screens, logger *logger.Logger) *FeedHandler {
	return &FeedHandler{
		feed:   screens.Feed,
		upNext: screens.UpNext,
		logger: logger,
	}
}

// FetchRequest selects the page to load
type FetchRequest struct {
	ChannelID      string `json:"channel_id"`
	Page           int    `json:"page"`
	Limit          int    `json:"limit"`
	ExcludeVideoID string `json:"exclude_video_id"`
}

// UpNextRequest selects the channel whose videos follow the current one
type UpNextRequest struct {
	ChannelID string `json:"channel_id"`
	VideoID   string `json:"video_id"`
}

// State handles GET /api/feed
func (h *FeedHandler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.feed.State(), "Feed state retrieved", h.logger)
}

// Fetch handles POST /api/feed/fetch
func (h *FeedHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	var req FetchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	done := h.feed.FetchPage(domain.FeedQuery{
		ChannelID:      req.ChannelID,
		Page:           req.Page,
		Limit:          req.Limit,
		ExcludeVideoID: req.ExcludeVideoID,
	})
	h.respond(w, r, h.feed, done)
}

// More handles POST /api/feed/more
func (h *FeedHandler) More(w http.ResponseWriter, r *http.Request) {
	done, ok := h.feed.LoadMore()
	if !ok {
		writeJSON(w, http.StatusOK, h.feed.State(), "No more pages", h.logger)
		return
	}
	h.respond(w, r, h.feed, done)
}

// Clear handles DELETE /api/feed
func (h *FeedHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.feed.Clear()
	writeJSON(w, http.StatusOK, h.feed.State(), "Feed cleared", h.logger)
}

// UpNext handles POST /api/feed/up-next
func (h *FeedHandler) UpNext(w http.ResponseWriter, r *http.Request) {
	var req UpNextRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if req.VideoID == "" {
		writeError(w, r, errors.NewValidationError("Video ID is required", map[string]interface{}{
			"field": "video_id",
		}), h.logger)
		return
	}

	done := h.upNext.FetchPage(domain.FeedQuery{ChannelID: req.ChannelID, Page: 1, ExcludeVideoID: req.VideoID})
	h.respond(w, r, h.upNext, done)
}

// respond waits for the fetch and writes the resulting state. Feed errors
// are state, not transport failures, so they are still a 200.
func (h *FeedHandler) respond(w http.ResponseWriter, r *http.Request, f *feed.Feed, done <-chan struct{}) {
	if !await(r.Context(), done) {
		writeError(w, r, timeoutError(), h.logger)
		return
	}
	writeJSON(w, http.StatusOK, f.State(), "Feed state retrieved", h.logger)
}
