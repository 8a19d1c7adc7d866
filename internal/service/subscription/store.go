// Package subscription keeps the optimistic subscription membership and the
// toggle and list states of the subscription screens.
package subscription

import (
	"context"
	"sync"

	"vidora-client/internal/domain"
	"vidora-client/internal/service"
	"vidora-client/internal/state"
	"vidora-client/pkg/errors"
	"vidora-client/pkg/logger"
)

// ToggleState is the observable outcome of the last subscribe or unsubscribe
type ToggleState struct {
	Status    state.Status            `json:"status"`
	ChannelID string                  `json:"channel_id,omitempty"`
	Result    *domain.SubscribeResult `json:"result,omitempty"`
	Error     string                  `json:"error,omitempty"`
}

// ListState is the observable authoritative list of subscribed channels
type ListState struct {
	Status   state.Status     `json:"status"`
	Channels []domain.Channel `json:"channels,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// Options tune failure handling
type Options struct {
	// RollbackOnFailure restores the pre-optimistic membership when the
	// remote call fails. Off, the optimistic write is kept.
	RollbackOnFailure bool
}

// Store drives one subscription screen. Membership changes are written to
// the shared Set before the remote call is made.
type Store struct {
	set    *Set
	api    service.SubscriptionAPI
	opts   Options
	logger *logger.Logger
	scope  *state.Scope

	toggle *state.Observable[ToggleState]
	list   *state.Observable[ListState]

	// pending tracks the latest optimistic write per channel so a rollback
	// never undoes a newer toggle of the same channel
	mu      sync.Mutex
	seq     uint64
	pending map[string]uint64
}

// NewStore creates a store bound to its own lifecycle scope
func NewStore(set *Set, api service.SubscriptionAPI, opts Options, logger *logger.Logger) *Store {
	return &Store{
		set:     set,
		api:     api,
		opts:    opts,
		logger:  logger.Component("subscription"),
		scope:   state.NewScope(context.Background()),
		toggle:  state.NewObservable(ToggleState{Status: state.StatusIdle}),
		list:    state.NewObservable(ListState{Status: state.StatusIdle}),
		pending: make(map[string]uint64),
	}
}

// Subscribe marks channelID as subscribed locally, then asks the server
func (s *Store) Subscribe(channelID string) <-chan struct{} {
	return s.change(channelID, true)
}

// Unsubscribe marks channelID as not subscribed locally, then asks the server
func (s *Store) Unsubscribe(channelID string) <-chan struct{} {
	return s.change(channelID, false)
}

func (s *Store) change(channelID string, subscribe bool) <-chan struct{} {
	log := s.logger.WithFields(map[string]interface{}{
		"channel_id": channelID,
		"subscribe":  subscribe,
	})

	if !s.scope.Alive() {
		return s.scope.Launch(func(context.Context) {})
	}

	wasMember := s.set.Contains(channelID)
	if err := s.apply(channelID, subscribe); err != nil {
		log.WithError(err).Warn("Failed to persist optimistic membership")
	}
	seq := s.track(channelID)

	s.scope.Publish(func() {
		s.toggle.Set(ToggleState{Status: state.StatusLoading, ChannelID: channelID})
	})

	return s.scope.Launch(func(ctx context.Context) {
		var (
			res *domain.SubscribeResult
			err error
		)
		if subscribe {
			res, err = s.api.Subscribe(ctx, channelID)
		} else {
			res, err = s.api.Unsubscribe(ctx, channelID)
		}
		if ctx.Err() != nil {
			return
		}

		if err != nil {
			log.WithError(err).Warn("Subscription change failed")
			if s.opts.RollbackOnFailure && s.settle(channelID, seq) {
				if rbErr := s.apply(channelID, wasMember); rbErr != nil {
					log.WithError(rbErr).Warn("Failed to roll back membership")
				}
			}
			s.scope.Publish(func() {
				s.toggle.Set(ToggleState{Status: state.StatusError, ChannelID: channelID, Error: errors.UserMessage(err)})
			})
			return
		}

		s.settle(channelID, seq)
		published := s.scope.Publish(func() {
			s.toggle.Set(ToggleState{Status: state.StatusSuccess, ChannelID: channelID, Result: res})
		})
		log.WithField("total_subscribers", res.TotalSubscribers).Debug("Subscription change confirmed")

		if published {
			s.ListMine()
		}
	})
}

// ListMine fetches the authoritative list. The membership view is left alone.
func (s *Store) ListMine() <-chan struct{} {
	s.scope.Publish(func() {
		s.list.Update(func(current ListState) ListState {
			return ListState{Status: state.StatusLoading, Channels: current.Channels}
		})
	})

	return s.scope.Launch(func(ctx context.Context) {
		channels, err := s.api.MySubscriptions(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			s.logger.WithError(err).Warn("Failed to load subscriptions")
			s.scope.Publish(func() {
				s.list.Set(ListState{Status: state.StatusError, Error: errors.UserMessage(err)})
			})
			return
		}
		s.scope.Publish(func() {
			s.list.Set(ListState{Status: state.StatusSuccess, Channels: channels})
		})
	})
}

// IsSubscribed reads the optimistic membership view
func (s *Store) IsSubscribed(channelID string) bool {
	return s.set.Contains(channelID)
}

// Toggle returns the current toggle state
func (s *Store) Toggle() ToggleState {
	return s.toggle.Get()
}

// List returns the current list state
func (s *Store) List() ListState {
	return s.list.Get()
}

// WatchToggle streams toggle states
func (s *Store) WatchToggle(ctx context.Context) <-chan ToggleState {
	return s.toggle.Subscribe(ctx)
}

// WatchList streams list states
func (s *Store) WatchList(ctx context.Context) <-chan ListState {
	return s.list.Subscribe(ctx)
}

// Close cancels in-flight calls. No state is published afterwards.
func (s *Store) Close() {
	s.scope.Close()
}

func (s *Store) apply(channelID string, member bool) error {
	ctx := context.Background()
	if member {
		return s.set.Add(ctx, channelID)
	}
	return s.set.Remove(ctx, channelID)
}

func (s *Store) track(channelID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.pending[channelID] = s.seq
	return s.seq
}

// settle removes the pending entry if seq is still the latest write for the
// channel and reports whether it was
func (s *Store) settle(channelID string, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending[channelID] != seq {
		return false
	}
	delete(s.pending, channelID)
	return true
}
