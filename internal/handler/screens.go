package handler

import (
	"vidora-client/internal/container"
	"vidora-client/internal/service/channel"
	"vidora-client/internal/service/feed"
	"vidora-client/internal/service/interaction"
	"vidora-client/internal/service/library"
	"vidora-client/internal/service/search"
	"vidora-client/internal/service/subscription"
)

// Screens holds one instance of every per-screen component the bridge
// drives. State accumulates across requests the way it does on a screen.
type Screens struct {
	Feed          *feed.Feed
	UpNext        *feed.Feed
	Subscriptions *subscription.Store
	Search        *search.Searcher
	Interaction   *interaction.Machine
	Library       *library.Lists
	Channel       *channel.Page
	Profile       *channel.Profile
}

// NewScreens creates the screens from the container's factories
func NewScreens(c *container.Container) *Screens {
	return &Screens{
		Feed:          c.NewFeed(),
		UpNext:        c.NewFeed(),
		Subscriptions: c.NewSubscriptionStore(),
		Search:        c.NewSearcher(),
		Interaction:   c.NewInteraction(),
		Library:       c.NewLibrary(),
		Channel:       c.NewChannelPage(),
		Profile:       c.NewProfile(),
	}
}

// Close tears every screen down. Nothing is published afterwards.
func (s *Screens) Close() {
	s.Feed.Close()
	s.UpNext.Close()
	s.Subscriptions.Close()
	s.Search.Close()
	s.Interaction.Close()
	s.Library.Close()
	s.Channel.Close()
	s.Profile.Close()
}
