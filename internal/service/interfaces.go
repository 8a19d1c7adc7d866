package service

import (
	"context"

	"vidora-client/internal/domain"
)

// MediaExchanger trades a storage locator for a short-lived signed URL
type MediaExchanger interface {
	SignedURL(ctx context.Context, locator string) (string, error)
}

// SubscriptionAPI defines the remote subscription operations
type SubscriptionAPI interface {
	Subscribe(ctx context.Context, channelID string) (*domain.SubscribeResult, error)
	Unsubscribe(ctx context.Context, channelID string) (*domain.SubscribeResult, error)

	// MySubscriptions returns the authoritative list of subscribed channels
	MySubscriptions(ctx context.Context) ([]domain.Channel, error)
}

// VideoLister fetches one page of the video listing
type VideoLister interface {
	ListVideos(ctx context.Context, query domain.FeedQuery) (*domain.FeedPage, error)
}

// InteractionAPI defines the per-video remote actions
type InteractionAPI interface {
	LikeVideo(ctx context.Context, videoID string) (*domain.Reaction, error)
	DislikeVideo(ctx context.Context, videoID string) (*domain.Reaction, error)
	AddComment(ctx context.Context, videoID, text string) error
	Comments(ctx context.Context, videoID string) ([]domain.Comment, error)
	DeleteComment(ctx context.Context, videoID, commentID string) error
	ToggleSaveForLater(ctx context.Context, videoID string) (bool, error)
	AddDownload(ctx context.Context, videoID string) error
	AddView(ctx context.Context, videoID string) error
	AddWatchHistory(ctx context.Context, videoID string) error
}

// SearchAPI runs a remote search
type SearchAPI interface {
	Search(ctx context.Context, query string) (*domain.SearchResult, error)
}

// LibraryAPI fetches the signed-in user's history, saved and downloads lists
type LibraryAPI interface {
	Library(ctx context.Context, kind domain.LibraryKind) ([]domain.LibraryVideo, error)
}

// ChannelAPI fetches public channel pages
type ChannelAPI interface {
	PublicChannel(ctx context.Context, identifier string) (*domain.ChannelPage, error)
}

// ProfileAPI fetches the signed-in user's account
type ProfileAPI interface {
	Profile(ctx context.Context) (*domain.UserProfile, error)
}

// URLResolver turns storage locators into displayable signed URLs.
// Failures are reported as absent, never as errors.
type URLResolver interface {
	Resolve(ctx context.Context, locator string) (string, bool)
	ResolveMany(ctx context.Context, locators ...string) map[string]string
}

// IdentitySource exposes the signed-in user to components that scope state per user
type IdentitySource interface {
	Current() domain.Identity
	Watch(ctx context.Context) <-chan domain.Identity
}
