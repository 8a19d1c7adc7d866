package handler

import (
	"net/http"
	"strings"

	"vidora-client/internal/service/search"
	"vidora-client/pkg/errors"
	"vidora-client/pkg/logger"
)

// SearchHandler runs searches and exposes the recent-search history
type SearchHandler struct {
	searcher *search.Searcher
	logger   *logger.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(screens *Screens, logger *logger.Logger) *SearchHandler {
	return &SearchHandler{
		searcher: screens.Search,
		logger:   logger,
	}
}

// SearchRequest carries the query text
type SearchRequest struct {
	Query string `json:"query"`
}

// HistoryResponse lists recent queries, most recent first
type HistoryResponse struct {
	Queries []string `json:"queries"`
}

// Search handles POST /api/search
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, r, errors.NewValidationError("Query is required", map[string]interface{}{
			"field": "query",
		}), h.logger)
		return
	}

	if !await(r.Context(), h.searcher.Search(req.Query)) {
		writeError(w, r, timeoutError(), h.logger)
		return
	}
	writeJSON(w, http.StatusOK, h.searcher.State(), "Search completed", h.logger)
}

// History handles GET /api/search/history
func (h *SearchHandler) History(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HistoryResponse{Queries: h.searcher.History()}, "History retrieved", h.logger)
}

// ClearHistory handles DELETE /api/search/history
func (h *SearchHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if !await(r.Context(), h.searcher.ClearHistory()) {
		writeError(w, r, timeoutError(), h.logger)
		return
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Queries: h.searcher.History()}, "History cleared", h.logger)
}
