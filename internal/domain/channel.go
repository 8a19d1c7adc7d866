package domain

// ChannelVideo is the short video entry embedded in a channel listing
type ChannelVideo struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// Channel represents a channel the signed-in user subscribes to
type Channel struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Description       string         `json:"description"`
	ProfilePictureURL string         `json:"profile_picture_url,omitempty"`
	Handle            string         `json:"handle"`
	TotalSubscribers  int            `json:"total_subscribers"`
	Videos            []ChannelVideo `json:"videos"`
}

// ChannelSummary is the channel shape attached to search results
type ChannelSummary struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
	Handle            string `json:"handle"`
}

// SubscribeResult is the server's answer to a subscribe or unsubscribe call
type SubscribeResult struct {
	Subscribed       bool `json:"subscribed"`
	TotalSubscribers int  `json:"total_subscribers"`
}

// SearchResult groups the matches of a search query
type SearchResult struct {
	Channel       *ChannelSummary `json:"channel,omitempty"`
	ChannelVideos []Video         `json:"channel_videos"`
	Videos        []Video         `json:"videos"`
}

// ChannelPage is the public page of a channel. Picture and banner are
// storage locators that still need signing before display.
type ChannelPage struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	Handle            string            `json:"handle"`
	ProfilePictureURL string            `json:"profile_picture_url,omitempty"`
	BannerURL         string            `json:"banner_url,omitempty"`
	SocialLinks       map[string]string `json:"social_links,omitempty"`
	TotalSubscribers  int               `json:"total_subscribers"`
	TotalViews        int               `json:"total_views"`
	Location          string            `json:"location,omitempty"`
	ContactEmail      string            `json:"contact_email,omitempty"`
	VideoIDs          []string          `json:"video_ids"`
	Tags              []string          `json:"tags"`
	CreatedAt         string            `json:"created_at,omitempty"`
}
