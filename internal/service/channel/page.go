// Package channel drives the channel page and the signed-in user's profile.
package channel

import (
	"context"
	"strings"
	"sync"

	"vidora-client/internal/domain"
	"vidora-client/internal/service"
	"vidora-client/internal/state"
	"vidora-client/pkg/errors"
	"vidora-client/pkg/logger"
)

// PageState is the observable state of a channel page. The signed URLs are
// empty when the channel has no picture or banner, or signing failed.
type PageState struct {
	Status           state.Status        `json:"status"`
	Channel          *domain.ChannelPage `json:"channel,omitempty"`
	SignedProfileURL string              `json:"signed_profile_url,omitempty"`
	SignedBannerURL  string              `json:"signed_banner_url,omitempty"`
	Error            string              `json:"error,omitempty"`
}

// Page loads one channel at a time. A newer Load supersedes an older one,
// whose result is dropped.
type Page struct {
	api      service.ChannelAPI
	resolver service.URLResolver
	logger   *logger.Logger
	scope    *state.Scope

	mu    sync.Mutex
	gen   uint64
	state *state.Observable[PageState]
}

// NewPage creates an idle channel page
func NewPage(api service.ChannelAPI, resolver service.URLResolver, logger *logger.Logger) *Page {
	return &Page{
		api:      api,
		resolver: resolver,
		logger:   logger.Component("channel_page"),
		scope:    state.NewScope(context.Background()),
		state:    state.NewObservable(PageState{Status: state.StatusIdle}),
	}
}

// Load fetches the channel, then signs its picture and banner concurrently
func (p *Page) Load(identifier string) <-chan struct{} {
	identifier = strings.TrimSpace(identifier)
	log := p.logger.WithField("channel", identifier)

	p.mu.Lock()
	p.gen++
	gen := p.gen
	p.mu.Unlock()

	p.publish(gen, PageState{Status: state.StatusLoading})

	return p.scope.Launch(func(ctx context.Context) {
		channel, err := p.api.PublicChannel(ctx, identifier)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			log.WithError(err).Warn("Failed to load channel")
			p.publish(gen, PageState{Status: state.StatusError, Error: errors.UserMessage(err)})
			return
		}

		signed := p.resolver.ResolveMany(ctx, nonBlank(channel.ProfilePictureURL, channel.BannerURL)...)
		if ctx.Err() != nil {
			return
		}

		p.publish(gen, PageState{
			Status:           state.StatusSuccess,
			Channel:          channel,
			SignedProfileURL: signed[channel.ProfilePictureURL],
			SignedBannerURL:  signed[channel.BannerURL],
		})
	})
}

// Refresh loads identifier again
func (p *Page) Refresh(identifier string) <-chan struct{} {
	return p.Load(identifier)
}

// State returns the current state
func (p *Page) State() PageState {
	return p.state.Get()
}

// Watch streams the states, starting with the current one
func (p *Page) Watch(ctx context.Context) <-chan PageState {
	return p.state.Subscribe(ctx)
}

// Close cancels the in-flight load. No state is published afterwards.
func (p *Page) Close() {
	p.scope.Close()
}

func (p *Page) publish(gen uint64, s PageState) {
	p.scope.Publish(func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if gen == p.gen {
			p.state.Set(s)
		}
	})
}

func nonBlank(locators ...string) []string {
	out := make([]string, 0, len(locators))
	for _, l := range locators {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}
