// Package search keeps the recent-search history and drives the search screen.
package search

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"
	"sync"

	"vidora-client/internal/state"
	"vidora-client/pkg/errors"
	"vidora-client/pkg/logger"
	"vidora-client/pkg/redis"
)

// DefaultMaxSize caps the history when no other bound is configured
const DefaultMaxSize = 20

// History is the persisted, most-recent-first list of search queries.
// Entries are unique and the list never exceeds its bound. Each user has
// their own list; with nobody signed in the history is empty and writes
// are ignored.
type History struct {
	redis   *redis.Client
	maxSize int
	logger  *logger.Logger

	mu      sync.Mutex
	userKey string
	recent  *state.Observable[[]string]
}

// NewHistory creates the history store. maxSize <= 0 selects DefaultMaxSize.
func NewHistory(redisClient *redis.Client, maxSize int, logger *logger.Logger) *History {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &History{
		redis:   redisClient,
		maxSize: maxSize,
		logger:  logger.Component("search_history"),
		recent:  state.NewObservable([]string{}),
	}
}

// SwitchUser makes userKey the observed history. The lock is held across
// the load so a concurrent AddQuery publishes after it, never before.
func (h *History) SwitchUser(ctx context.Context, userKey string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.userKey = userKey
	if userKey == "" {
		h.recent.Set([]string{})
		return nil
	}

	queries, err := h.List(ctx, userKey)
	if err != nil {
		h.recent.Set([]string{})
		return err
	}
	h.recent.Set(queries)
	return nil
}

// AddQuery moves query to the front of userKey's history, dropping any
// earlier occurrence and truncating to maxSize. Blank queries are ignored.
// maxSize <= 0 uses the configured bound.
func (h *History) AddQuery(ctx context.Context, userKey, query string, maxSize int) error {
	query = strings.TrimSpace(query)
	if userKey == "" || query == "" {
		return nil
	}
	if maxSize <= 0 {
		maxSize = h.maxSize
	}

	var updated []string
	err := h.redis.Update(ctx, h.redis.KeyBuilder.KeyRecentSearches(userKey), func(current string, exists bool) (string, error) {
		existing, err := decode(current, exists)
		if err != nil {
			h.logger.WithError(err).Warn("Replacing unreadable search history")
			existing = nil
		}
		updated = prepend(existing, query, maxSize)
		raw, err := json.Marshal(updated)
		return string(raw), err
	})
	if err != nil {
		return errors.NewInternalError("Failed to update search history", err)
	}

	h.publish(userKey, updated)
	return nil
}

// Clear empties userKey's history
func (h *History) Clear(ctx context.Context, userKey string) error {
	if userKey == "" {
		return nil
	}
	if err := h.redis.Delete(ctx, h.redis.KeyBuilder.KeyRecentSearches(userKey)); err != nil {
		return errors.NewInternalError("Failed to clear search history", err)
	}
	h.publish(userKey, []string{})
	return nil
}

// List reads userKey's history, most recent first
func (h *History) List(ctx context.Context, userKey string) ([]string, error) {
	if userKey == "" {
		return []string{}, nil
	}
	raw, err := h.redis.Get(ctx, h.redis.KeyBuilder.KeyRecentSearches(userKey))
	if stderrors.Is(err, redis.Nil) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	queries, err := decode(raw, true)
	if err != nil {
		h.logger.WithError(err).Warn("Ignoring unreadable search history")
		return []string{}, nil
	}
	return queries, nil
}

// User returns the key of the observed user
func (h *History) User() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.userKey
}

// Current returns the observed history
func (h *History) Current() []string {
	return append([]string{}, h.recent.Get()...)
}

// Observe streams the observed history, starting with the current one
func (h *History) Observe(ctx context.Context) <-chan []string {
	return h.recent.Subscribe(ctx)
}

// publish updates the observed history when userKey is the observed user
func (h *History) publish(userKey string, queries []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.userKey != userKey {
		return
	}
	h.recent.Set(append([]string{}, queries...))
}

func decode(raw string, exists bool) ([]string, error) {
	if !exists || raw == "" {
		return []string{}, nil
	}
	var queries []string
	if err := json.Unmarshal([]byte(raw), &queries); err != nil {
		return nil, err
	}
	if queries == nil {
		queries = []string{}
	}
	return queries, nil
}

func prepend(existing []string, query string, maxSize int) []string {
	out := make([]string, 0, maxSize)
	out = append(out, query)
	for _, q := range existing {
		if len(out) >= maxSize {
			break
		}
		if q != query {
			out = append(out, q)
		}
	}
	return out
}
