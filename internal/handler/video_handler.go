package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"vidora-client/internal/service/interaction"
	"vidora-client/pkg/errors"
	"vidora-client/pkg/logger"
)

// VideoHandler forwards per-video actions to the interaction machine
type VideoHandler struct {
	machine *interaction.Machine
	logger  *logger.Logger
}

// NewVideoHandler creates a new video handler
func NewVideoHandler(screens *Screens, logger *logger.Logger) *VideoHandler {
	return &VideoHandler{
		machine: screens.Interaction,
		logger:  logger,
	}
}

// CommentRequest carries the text of a new comment
type CommentRequest struct {
	Text string `json:"text"`
}

// Snapshot handles GET /api/videos/interaction
func (h *VideoHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.machine.Snapshot(), "Interaction state retrieved", h.logger)
}

// Like handles POST /api/videos/{videoId}/like
func (h *VideoHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.machine.Like)
}

// Dislike handles POST /api/videos/{videoId}/dislike
func (h *VideoHandler) Dislike(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.machine.Dislike)
}

// Comments handles GET /api/videos/{videoId}/comments
func (h *VideoHandler) Comments(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.machine.LoadComments)
}

// AddComment handles POST /api/videos/{videoId}/comments
func (h *VideoHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	var req CommentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	h.act(w, r, func(videoID string) <-chan struct{} {
		return h.machine.AddComment(videoID, req.Text)
	})
}

// DeleteComment handles DELETE /api/videos/{videoId}/comments/{commentId}
func (h *VideoHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	commentID := chi.URLParam(r, "commentId")
	h.act(w, r, func(videoID string) <-chan struct{} {
		return h.machine.DeleteComment(videoID, commentID)
	})
}

// Save handles POST /api/videos/{videoId}/save
func (h *VideoHandler) Save(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.machine.ToggleSaveForLater)
}

// Download handles POST /api/videos/{videoId}/download
func (h *VideoHandler) Download(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.machine.AddDownload)
}

// View handles POST /api/videos/{videoId}/view
func (h *VideoHandler) View(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.machine.AddView)
}

// WatchHistory handles POST /api/videos/{videoId}/history
func (h *VideoHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.machine.AddWatchHistory)
}

// act runs one action and writes the snapshot it left behind. Action
// failures are part of the snapshot.
func (h *VideoHandler) act(w http.ResponseWriter, r *http.Request, action func(videoID string) <-chan struct{}) {
	videoID := strings.TrimSpace(chi.URLParam(r, "videoId"))
	if videoID == "" {
		writeError(w, r, errors.NewValidationError("Video ID is required", map[string]interface{}{
			"field": "video_id",
		}), h.logger)
		return
	}

	if !await(r.Context(), action(videoID)) {
		writeError(w, r, timeoutError(), h.logger)
		return
	}
	writeJSON(w, http.StatusOK, h.machine.Snapshot(), "Interaction applied", h.logger)
}
