// Package library loads the signed-in user's history, saved and downloads lists.
package library

import (
	"context"

	"vidora-client/internal/domain"
	"vidora-client/internal/service"
	"vidora-client/internal/state"
	"vidora-client/pkg/errors"
	"vidora-client/pkg/logger"
)

// State is the observable state of one list
type State struct {
	Status state.Status          `json:"status"`
	Videos []domain.LibraryVideo `json:"videos,omitempty"`
	Error  string                `json:"error,omitempty"`
}

// Lists drives the library screen. Each list has its own state.
type Lists struct {
	api    service.LibraryAPI
	logger *logger.Logger
	scope  *state.Scope

	states map[domain.LibraryKind]*state.Observable[State]
}

// New creates idle lists
func New(api service.LibraryAPI, logger *logger.Logger) *Lists {
	states := make(map[domain.LibraryKind]*state.Observable[State], 3)
	for _, kind := range []domain.LibraryKind{domain.LibraryHistory, domain.LibrarySaved, domain.LibraryDownloads} {
		states[kind] = state.NewObservable(State{Status: state.StatusIdle})
	}
	return &Lists{
		api:    api,
		logger: logger.Component("library"),
		scope:  state.NewScope(context.Background()),
		states: states,
	}
}

// Load fetches one list. It reports false for an unknown kind.
func (l *Lists) Load(kind domain.LibraryKind) (<-chan struct{}, bool) {
	obs, ok := l.states[kind]
	if !ok {
		return nil, false
	}
	log := l.logger.WithField("kind", string(kind))

	l.scope.Publish(func() {
		obs.Set(State{Status: state.StatusLoading})
	})

	return l.scope.Launch(func(ctx context.Context) {
		videos, err := l.api.Library(ctx, kind)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			log.WithError(err).Warn("Failed to load library list")
			l.scope.Publish(func() {
				obs.Set(State{Status: state.StatusError, Error: errors.UserMessage(err)})
			})
			return
		}
		if videos == nil {
			videos = []domain.LibraryVideo{}
		}
		l.scope.Publish(func() {
			obs.Set(State{Status: state.StatusSuccess, Videos: videos})
		})
	}), true
}

// State returns the current state of one list; unknown kinds are idle
func (l *Lists) State(kind domain.LibraryKind) State {
	if obs, ok := l.states[kind]; ok {
		return obs.Get()
	}
	return State{Status: state.StatusIdle}
}

// Watch streams the states of one list. It returns nil for an unknown kind.
func (l *Lists) Watch(ctx context.Context, kind domain.LibraryKind) <-chan State {
	if obs, ok := l.states[kind]; ok {
		return obs.Subscribe(ctx)
	}
	return nil
}

// Close cancels in-flight loads. No state is published afterwards.
func (l *Lists) Close() {
	l.scope.Close()
}
