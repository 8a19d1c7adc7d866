package domain

// VideoURLs holds the storage locators of a video. They are opaque and must be
// exchanged for signed URLs before playback.
type VideoURLs struct {
	Original    string            `json:"original"`
	Resolutions map[string]string `json:"resolutions,omitempty"`
}

// Video represents a video as shown in feeds and search results
type Video struct {
	ID                       string    `json:"id"`
	Title                    string    `json:"title"`
	Description              string    `json:"description"`
	ChannelID                string    `json:"channel_id"`
	ChannelName              string    `json:"channel_name"`
	ChannelProfilePictureURL string    `json:"channel_profile_picture_url,omitempty"`
	UploaderID               string    `json:"uploader_id"`
	UploaderName             string    `json:"uploader_name"`
	Categories               []string  `json:"categories"`
	Tags                     []string  `json:"tags"`
	Visibility               string    `json:"visibility"`
	URLs                     VideoURLs `json:"video_urls"`
	ThumbnailURL             string    `json:"thumbnail_url,omitempty"`
	Duration                 float64   `json:"duration"`
	SizeInMB                 float64   `json:"size_in_mb"`
	Views                    int       `json:"views"`
	Likes                    []string  `json:"likes"`
	Dislikes                 []string  `json:"dislikes"`
	Comments                 []string  `json:"comments"`
	IsMonetized              bool      `json:"is_monetized"`
	IsAgeRestricted          bool      `json:"is_age_restricted"`
	CreatedAt                string    `json:"created_at,omitempty"`
}

// FeedQuery selects one page of the video listing
type FeedQuery struct {
	ChannelID string `json:"channel_id,omitempty"`
	Page      int    `json:"page"`
	Limit     int    `json:"limit"`
	// ExcludeVideoID drops one video from the result, used for "up next" lists
	ExcludeVideoID string `json:"exclude_video_id,omitempty"`
}

// FeedPage is one page returned by the listing endpoint
type FeedPage struct {
	Page        int     `json:"page"`
	TotalPages  int     `json:"total_pages"`
	TotalVideos int     `json:"total_videos"`
	Videos      []Video `json:"videos"`
}

// Reaction carries the server side like/dislike counters after a toggle
type Reaction struct {
	Likes    int   `json:"likes"`
	Dislikes int   `json:"dislikes"`
	Liked    *bool `json:"liked,omitempty"`
	Disliked *bool `json:"disliked,omitempty"`
}

// CommentAuthor is the user summary embedded in a comment
type CommentAuthor struct {
	ID                string `json:"id"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
}

// Comment represents a comment on a video
type Comment struct {
	ID        string        `json:"id"`
	Content   string        `json:"content"`
	Author    CommentAuthor `json:"author"`
	CreatedAt string        `json:"created_at"`
}

// LibraryVideo is the compact video shape of the history, saved and downloads lists
type LibraryVideo struct {
	ID                       string `json:"id"`
	Title                    string `json:"title"`
	Description              string `json:"description,omitempty"`
	ThumbnailURL             string `json:"thumbnail_url,omitempty"`
	ChannelID                string `json:"channel_id"`
	ChannelName              string `json:"channel_name"`
	ChannelProfilePictureURL string `json:"channel_profile_picture_url,omitempty"`
	Views                    int    `json:"views"`
	Likes                    int    `json:"likes"`
	CreatedAt                string `json:"created_at,omitempty"`
}

// LibraryKind names one of the per-user video lists
type LibraryKind string

const (
	LibraryHistory   LibraryKind = "history"
	LibrarySaved     LibraryKind = "saved"
	LibraryDownloads LibraryKind = "downloads"
)

// Valid reports whether k is a known list
func (k LibraryKind) Valid() bool {
	switch k {
	case LibraryHistory, LibrarySaved, LibraryDownloads:
		return true
	}
	return false
}
