package service

import (
	"strings"

	"vidora-client/internal/domain"
)

// Wire shapes of the remote API. They mirror the server's JSON and are mapped
// to domain types before leaving this package.

type signedURLResponse struct {
	SignedURL string `json:"signedUrl"`
}

type messageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

type subscribeResponse struct {
	Subscribed       bool `json:"subscribed"`
	TotalSubscribers int  `json:"totalSubscribers"`
}

type channelVideoDTO struct {
	ID           string `json:"_id"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

type channelDTO struct {
	ID                string            `json:"_id"`
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	ProfilePictureURL string            `json:"profilePictureUrl"`
	Handle            string            `json:"handleChannelName"`
	TotalSubscribers  int               `json:"totalSubscribers"`
	Videos            []channelVideoDTO `json:"videos"`
}

func (c channelDTO) toDomain() domain.Channel {
	videos := make([]domain.ChannelVideo, 0, len(c.Videos))
	for _, v := range c.Videos {
		videos = append(videos, domain.ChannelVideo{ID: v.ID, Title: v.Title, ThumbnailURL: v.ThumbnailURL})
	}
	return domain.Channel{
		ID:                c.ID,
		Name:              c.Name,
		Description:       c.Description,
		ProfilePictureURL: c.ProfilePictureURL,
		Handle:            c.Handle,
		TotalSubscribers:  c.TotalSubscribers,
		Videos:            videos,
	}
}

type videoChannelDTO struct {
	ID                string `json:"_id"`
	Name              string `json:"name"`
	ProfilePictureURL string `json:"profilePictureUrl"`
	Handle            string `json:"handleChannelName"`
}

type uploaderDTO struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type videoURLsDTO struct {
	Original    string            `json:"original"`
	Resolutions map[string]string `json:"resolutions"`
}

type videoDTO struct {
	ID              string          `json:"_id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Channel         videoChannelDTO `json:"channelId"`
	Uploader        uploaderDTO     `json:"uploader"`
	Categories      []string        `json:"categories"`
	Tags            []string        `json:"tags"`
	Visibility      string          `json:"visibility"`
	VideoURLs       videoURLsDTO    `json:"videoUrls"`
	ThumbnailURL    string          `json:"thumbnailUrl"`
	Duration        float64         `json:"duration"`
	SizeInMB        float64         `json:"sizeInMB"`
	Views           int             `json:"views"`
	Likes           []string        `json:"likes"`
	Dislikes        []string        `json:"dislikes"`
	Comments        []string        `json:"comments"`
	IsMonetized     bool            `json:"isMonetized"`
	IsAgeRestricted bool            `json:"isAgeRestricted"`
	CreatedAt       string          `json:"createdAt"`
}

func (v videoDTO) toDomain() domain.Video {
	return domain.Video{
		ID:                       v.ID,
		Title:                    v.Title,
		Description:              v.Description,
		ChannelID:                v.Channel.ID,
		ChannelName:              v.Channel.Name,
		ChannelProfilePictureURL: v.Channel.ProfilePictureURL,
		UploaderID:               v.Uploader.ID,
		UploaderName:             strings.TrimSpace(v.Uploader.FirstName + " " + v.Uploader.LastName),
		Categories:               nonNil(v.Categories),
		Tags:                     nonNil(v.Tags),
		Visibility:               v.Visibility,
		URLs:                     domain.VideoURLs{Original: v.VideoURLs.Original, Resolutions: v.VideoURLs.Resolutions},
		ThumbnailURL:             v.ThumbnailURL,
		Duration:                 v.Duration,
		SizeInMB:                 v.SizeInMB,
		Views:                    v.Views,
		Likes:                    nonNil(v.Likes),
		Dislikes:                 nonNil(v.Dislikes),
		Comments:                 nonNil(v.Comments),
		IsMonetized:              v.IsMonetized,
		IsAgeRestricted:          v.IsAgeRestricted,
		CreatedAt:                v.CreatedAt,
	}
}

func videosToDomain(dtos []videoDTO) []domain.Video {
	videos := make([]domain.Video, 0, len(dtos))
	for _, v := range dtos {
		videos = append(videos, v.toDomain())
	}
	return videos
}

type listVideosResponse struct {
	Page        int        `json:"page"`
	TotalPages  int        `json:"totalPages"`
	TotalVideos int        `json:"totalVideos"`
	Videos      []videoDTO `json:"videos"`
}

func (r listVideosResponse) toDomain() *domain.FeedPage {
	page := r.Page
	if page < 1 {
		page = 1
	}
	totalPages := r.TotalPages
	if totalPages < 0 {
		totalPages = 0
	}
	// Keep page <= totalPages whenever the server reports any pages
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}
	totalVideos := r.TotalVideos
	if totalVideos < 0 {
		totalVideos = 0
	}
	return &domain.FeedPage{
		Page:        page,
		TotalPages:  totalPages,
		TotalVideos: totalVideos,
		Videos:      videosToDomain(r.Videos),
	}
}

type reactionResponse struct {
	Likes    int   `json:"likes"`
	Dislikes int   `json:"dislikes"`
	Liked    *bool `json:"liked"`
	Disliked *bool `json:"disliked"`
}

type commentUserDTO struct {
	ID                string `json:"_id"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	ProfilePictureURL string `json:"profilePictureUrl"`
}

type commentDTO struct {
	ID        string         `json:"_id"`
	Content   string         `json:"content"`
	User      commentUserDTO `json:"userId"`
	CreatedAt string         `json:"createdAt"`
}

func (c commentDTO) toDomain() domain.Comment {
	return domain.Comment{
		ID:      c.ID,
		Content: c.Content,
		Author: domain.CommentAuthor{
			ID:                c.User.ID,
			FirstName:         c.User.FirstName,
			LastName:          c.User.LastName,
			ProfilePictureURL: c.User.ProfilePictureURL,
		},
		CreatedAt: c.CreatedAt,
	}
}

type addCommentRequest struct {
	Text string `json:"text"`
}

type saveResponse struct {
	Saved *bool `json:"saved"`
}

type searchResponse struct {
	Channel       *videoChannelDTO `json:"channel"`
	ChannelVideos []videoDTO       `json:"channelVideos"`
	Videos        []videoDTO       `json:"videos"`
}

func (r searchResponse) toDomain() *domain.SearchResult {
	result := &domain.SearchResult{
		ChannelVideos: videosToDomain(r.ChannelVideos),
		Videos:        videosToDomain(r.Videos),
	}
	if r.Channel != nil {
		result.Channel = &domain.ChannelSummary{
			ID:                r.Channel.ID,
			Name:              r.Channel.Name,
			ProfilePictureURL: r.Channel.ProfilePictureURL,
			Handle:            r.Channel.Handle,
		}
	}
	return result
}

type libraryVideoDTO struct {
	ID           string `json:"_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Channel      struct {
		ID                string `json:"_id"`
		Name              string `json:"name"`
		ProfilePictureURL string `json:"profilePictureUrl"`
	} `json:"channelId"`
	Views     int      `json:"views"`
	Likes     []string `json:"likes"`
	CreatedAt string   `json:"createdAt"`
}

type libraryResponse struct {
	Videos []libraryVideoDTO `json:"videos"`
}

func (r libraryResponse) toDomain() []domain.LibraryVideo {
	videos := make([]domain.LibraryVideo, 0, len(r.Videos))
	for _, v := range r.Videos {
		videos = append(videos, domain.LibraryVideo{
			ID:                       v.ID,
			Title:                    v.Title,
			Description:              v.Description,
			ThumbnailURL:             v.ThumbnailURL,
			ChannelID:                v.Channel.ID,
			ChannelName:              v.Channel.Name,
			ChannelProfilePictureURL: v.Channel.ProfilePictureURL,
			Views:                    v.Views,
			Likes:                    len(v.Likes),
			CreatedAt:                v.CreatedAt,
		})
	}
	return videos
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type channelPageDTO struct {
	ID                string            `json:"_id"`
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	Handle            string            `json:"handleChannelName"`
	ProfilePictureURL string            `json:"profilePictureUrl"`
	BannerURL         string            `json:"bannerUrl"`
	SocialLinks       map[string]string `json:"socialLinks"`
	TotalSubscribers  int               `json:"totalSubscribers"`
	TotalViews        int               `json:"totalViews"`
	Location          string            `json:"location"`
	ContactEmail      string            `json:"contactEmail"`
	Videos            []string          `json:"videos"`
	Tags              []string          `json:"tags"`
	CreatedAt         string            `json:"createdAt"`
}

func (c channelPageDTO) toDomain() *domain.ChannelPage {
	videos := c.Videos
	if videos == nil {
		videos = []string{}
	}
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	return &domain.ChannelPage{
		ID:                c.ID,
		Name:              c.Name,
		Description:       c.Description,
		Handle:            c.Handle,
		ProfilePictureURL: strings.TrimSpace(c.ProfilePictureURL),
		BannerURL:         strings.TrimSpace(c.BannerURL),
		SocialLinks:       c.SocialLinks,
		TotalSubscribers:  c.TotalSubscribers,
		TotalViews:        c.TotalViews,
		Location:          c.Location,
		ContactEmail:      c.ContactEmail,
		VideoIDs:          videos,
		Tags:              tags,
		CreatedAt:         c.CreatedAt,
	}
}

type userDTO struct {
	ID                string `json:"_id"`
	Email             string `json:"email"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	ProfilePictureURL string `json:"profilePictureUrl"`
	ChannelID         string `json:"channelId"`
}

type profileResponse struct {
	User *userDTO `json:"user"`
}

func (u userDTO) toDomain() *domain.UserProfile {
	return &domain.UserProfile{
		ID:                u.ID,
		Email:             u.Email,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		ProfilePictureURL: strings.TrimSpace(u.ProfilePictureURL),
		ChannelID:         u.ChannelID,
	}
}
