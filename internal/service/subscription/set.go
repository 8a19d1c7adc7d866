package subscription

import (
	"context"
	"sort"
	"sync"

	"vidora-client/internal/state"
	"vidora-client/pkg/logger"
	"vidora-client/pkg/redis"
)

// Set is the locally persisted membership view: the channel IDs the
// signed-in user is believed to subscribe to. It is shared by every screen
// and keyed by user, so a sign-in never sees another user's membership.
//
// With nobody signed in changes live in memory only and are dropped on the
// next identity switch.
type Set struct {
	redis  *redis.Client
	logger *logger.Logger

	mu      sync.Mutex
	userKey string
	members *state.Observable[[]string]
}

// NewSet creates an empty membership view for no user
func NewSet(redisClient *redis.Client, logger *logger.Logger) *Set {
	return &Set{
		redis:   redisClient,
		logger:  logger.Component("subscription_set"),
		members: state.NewObservable([]string{}),
	}
}

// SwitchUser loads the persisted membership of userKey; empty for no user
func (s *Set) SwitchUser(ctx context.Context, userKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.userKey = userKey
	if userKey == "" {
		s.members.Set([]string{})
		return nil
	}

	ids, err := s.redis.SMembers(ctx, s.redis.KeyBuilder.KeySubscriptions(userKey))
	if err != nil {
		s.members.Set([]string{})
		return err
	}
	s.members.Set(sorted(ids))
	return nil
}

// Add records channelID as subscribed. The in-memory view changes even when
// persisting fails; the error is returned for logging.
func (s *Set) Add(ctx context.Context, channelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.userKey != "" {
		err = s.redis.SAdd(ctx, s.redis.KeyBuilder.KeySubscriptions(s.userKey), channelID)
	}
	s.members.Update(func(current []string) []string {
		if contains(current, channelID) {
			return current
		}
		return sorted(append(append([]string{}, current...), channelID))
	})
	return err
}

// Remove records channelID as not subscribed
func (s *Set) Remove(ctx context.Context, channelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.userKey != "" {
		err = s.redis.SRem(ctx, s.redis.KeyBuilder.KeySubscriptions(s.userKey), channelID)
	}
	s.members.Update(func(current []string) []string {
		next := make([]string, 0, len(current))
		for _, id := range current {
			if id != channelID {
				next = append(next, id)
			}
		}
		return next
	})
	return err
}

// Clear deletes the persisted membership of userKey
func (s *Set) Clear(ctx context.Context, userKey string) error {
	if userKey == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.redis.Delete(ctx, s.redis.KeyBuilder.KeySubscriptions(userKey))
	if s.userKey == userKey {
		s.members.Set([]string{})
	}
	return err
}

// User returns the key of the user the view belongs to
func (s *Set) User() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userKey
}

// Contains reports whether channelID is in the current view
func (s *Set) Contains(channelID string) bool {
	return contains(s.members.Get(), channelID)
}

// Members returns the current view in ascending order
func (s *Set) Members() []string {
	return append([]string{}, s.members.Get()...)
}

// Watch streams the membership view, starting with the current one
func (s *Set) Watch(ctx context.Context) <-chan []string {
	return s.members.Subscribe(ctx)
}

func contains(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

func sorted(ids []string) []string {
	out := append([]string{}, ids...)
	sort.Strings(out)
	return out
}
