package search

import (
	"context"
	"strings"

	"vidora-client/internal/domain"
	"vidora-client/internal/service"
	"vidora-client/internal/state"
	"vidora-client/pkg/errors"
	"vidora-client/pkg/logger"
)

// State is the observable outcome of the last search
type State struct {
	Status state.Status         `json:"status"`
	Query  string               `json:"query,omitempty"`
	Result *domain.SearchResult `json:"result,omitempty"`
	Error  string               `json:"error,omitempty"`
}

// Searcher drives one search screen
type Searcher struct {
	api      service.SearchAPI
	history  *History
	identity service.IdentitySource
	logger   *logger.Logger
	scope    *state.Scope

	state *state.Observable[State]
}

// NewSearcher creates an idle searcher
func NewSearcher(api service.SearchAPI, history *History, identity service.IdentitySource, logger *logger.Logger) *Searcher {
	return &Searcher{
		api:      api,
		history:  history,
		identity: identity,
		logger:   logger.Component("searcher"),
		scope:    state.NewScope(context.Background()),
		state:    state.NewObservable(State{Status: state.StatusIdle}),
	}
}

// Search records query in the signed-in user's history and runs it.
// A blank query does nothing.
func (s *Searcher) Search(query string) <-chan struct{} {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.scope.Launch(func(context.Context) {})
	}
	log := s.logger.WithField("query", query)

	return s.scope.Launch(func(ctx context.Context) {
		userKey := s.identity.Current().Key
		if err := s.history.AddQuery(ctx, userKey, query, 0); err != nil {
			log.WithError(err).Warn("Failed to record search query")
		}

		if !s.scope.Publish(func() {
			s.state.Set(State{Status: state.StatusLoading, Query: query})
		}) {
			return
		}

		result, err := s.api.Search(ctx, query)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			log.WithError(err).Warn("Search failed")
			s.scope.Publish(func() {
				s.state.Set(State{Status: state.StatusError, Query: query, Error: errors.UserMessage(err)})
			})
			return
		}

		s.scope.Publish(func() {
			s.state.Set(State{Status: state.StatusSuccess, Query: query, Result: result})
		})
		log.WithField("videos", len(result.Videos)).Debug("Search completed")
	})
}

// ClearHistory empties the signed-in user's history
func (s *Searcher) ClearHistory() <-chan struct{} {
	return s.scope.Launch(func(ctx context.Context) {
		if err := s.history.Clear(ctx, s.identity.Current().Key); err != nil {
			s.logger.WithError(err).Warn("Failed to clear search history")
		}
	})
}

// History returns the signed-in user's recent queries
func (s *Searcher) History() []string {
	return s.history.Current()
}

// State returns the current search state
func (s *Searcher) State() State {
	return s.state.Get()
}

// Watch streams search states
func (s *Searcher) Watch(ctx context.Context) <-chan State {
	return s.state.Subscribe(ctx)
}

// Close cancels an in-flight search. No state is published afterwards.
func (s *Searcher) Close() {
	s.scope.Close()
}
