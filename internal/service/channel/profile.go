package channel

import (
	"context"
	"sync"

	"vidora-client/internal/domain"
	"vidora-client/internal/service"
	"vidora-client/internal/state"
	"vidora-client/pkg/errors"
	"vidora-client/pkg/logger"
)

// ProfileState is the observable state of the profile screen.
// SignedAvatarURL arrives after the profile itself and stays empty when
// signing fails.
type ProfileState struct {
	Status          state.Status        `json:"status"`
	Profile         *domain.UserProfile `json:"profile,omitempty"`
	SignedAvatarURL string              `json:"signed_avatar_url,omitempty"`
	Error           string              `json:"error,omitempty"`
}

// Profile drives the signed-in user's profile screen
type Profile struct {
	api      service.ProfileAPI
	resolver service.URLResolver
	identity service.IdentitySource
	logger   *logger.Logger
	scope    *state.Scope

	mu    sync.Mutex
	gen   uint64
	state *state.Observable[ProfileState]
}

// NewProfile creates an idle profile screen
func NewProfile(api service.ProfileAPI, resolver service.URLResolver, identity service.IdentitySource, logger *logger.Logger) *Profile {
	return &Profile{
		api:      api,
		resolver: resolver,
		identity: identity,
		logger:   logger.Component("profile"),
		scope:    state.NewScope(context.Background()),
		state:    state.NewObservable(ProfileState{Status: state.StatusIdle}),
	}
}

// Load fetches the profile, publishes it, then signs the avatar
func (p *Profile) Load() <-chan struct{} {
	p.mu.Lock()
	p.gen++
	gen := p.gen
	p.mu.Unlock()

	if !p.identity.Current().SignedIn() {
		p.publish(gen, func(ProfileState) ProfileState {
			return ProfileState{Status: state.StatusError, Error: errors.UserMessage(errors.NewAuthenticationError(""))}
		})
		done := make(chan struct{})
		close(done)
		return done
	}

	p.publish(gen, func(ProfileState) ProfileState {
		return ProfileState{Status: state.StatusLoading}
	})

	return p.scope.Launch(func(ctx context.Context) {
		profile, err := p.api.Profile(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			p.logger.WithError(err).Warn("Failed to load profile")
			p.publish(gen, func(ProfileState) ProfileState {
				return ProfileState{Status: state.StatusError, Error: errors.UserMessage(err)}
			})
			return
		}

		p.publish(gen, func(ProfileState) ProfileState {
			return ProfileState{Status: state.StatusSuccess, Profile: profile}
		})
		if profile.ProfilePictureURL == "" {
			return
		}

		signed, ok := p.resolver.Resolve(ctx, profile.ProfilePictureURL)
		if !ok {
			return
		}
		p.publish(gen, func(current ProfileState) ProfileState {
			current.SignedAvatarURL = signed
			return current
		})
	})
}

// Refresh loads the profile again
func (p *Profile) Refresh() <-chan struct{} {
	return p.Load()
}

// State returns the current state
func (p *Profile) State() ProfileState {
	return p.state.Get()
}

// Watch streams the states, starting with the current one
func (p *Profile) Watch(ctx context.Context) <-chan ProfileState {
	return p.state.Subscribe(ctx)
}

// Close cancels the in-flight load. No state is published afterwards.
func (p *Profile) Close() {
	p.scope.Close()
}

func (p *Profile) publish(gen uint64, fn func(ProfileState) ProfileState) {
	p.scope.Publish(func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if gen == p.gen {
			p.state.Update(fn)
		}
	})
}
