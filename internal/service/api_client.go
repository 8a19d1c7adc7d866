package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"vidora-client/internal/config"
	"vidora-client/internal/domain"
	"vidora-client/pkg/errors"
	"vidora-client/pkg/logger"
)

// maxErrorBody caps how much of a failed response is read for its message
const maxErrorBody = 4 << 10

// APIClient talks to the remote REST API. Every request made while signed in
// carries the bearer credential of the current session.
type APIClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *logger.Logger
}

// NewAPIClient creates a client for cfg.APIBaseURL. tokens may be nil, in
// which case requests go out without an Authorization header.
func NewAPIClient(cfg *config.Config, tokens oauth2.TokenSource, logger *logger.Logger) (*APIClient, error) {
	base, err := url.Parse(cfg.APIBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q: scheme and host are required", cfg.APIBaseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   cfg.ConnectTimeout,
		ResponseHeaderTimeout: cfg.ReadTimeout,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConnsPerHost:   10,
	}

	var roundTripper http.RoundTripper = transport
	if tokens != nil {
		roundTripper = &bearerTransport{source: tokens, base: transport}
	}

	return &APIClient{
		baseURL: base,
		httpClient: &http.Client{
			Transport: roundTripper,
			// Upload-sized requests get the write budget on top of the read budget
			Timeout: cfg.ReadTimeout + cfg.WriteTimeout,
		},
		logger: logger.Component("api"),
	}, nil
}

// bearerTransport attaches the session token through oauth2.Transport. A
// signed-out source yields an empty token, and then the request goes out
// with no Authorization header at all.
type bearerTransport struct {
	source oauth2.TokenSource
	base   http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.source.Token()
	if err != nil {
		if req.Body != nil {
			_ = req.Body.Close()
		}
		return nil, err
	}
	if token == nil || token.AccessToken == "" {
		return t.base.RoundTrip(req)
	}
	return (&oauth2.Transport{Source: oauth2.StaticTokenSource(token), Base: t.base}).RoundTrip(req)
}

// SignedURL exchanges a storage locator for a time-limited playable URL
func (c *APIClient) SignedURL(ctx context.Context, locator string) (string, error) {
	var resp signedURLResponse
	query := url.Values{"fileUrl": {locator}}
	if err := c.do(ctx, http.MethodGet, "files/signed-url", query, nil, &resp); err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.SignedURL) == "" {
		return "", errors.NewEmptyBodyError("Signed URL missing from response", nil)
	}
	return resp.SignedURL, nil
}

// Subscribe subscribes the signed-in user to a channel
func (c *APIClient) Subscribe(ctx context.Context, channelID string) (*domain.SubscribeResult, error) {
	return c.subscription(ctx, http.MethodPost, channelID)
}

// Unsubscribe removes the subscription to a channel
func (c *APIClient) Unsubscribe(ctx context.Context, channelID string) (*domain.SubscribeResult, error) {
	return c.subscription(ctx, http.MethodDelete, channelID)
}

func (c *APIClient) subscription(ctx context.Context, method, channelID string) (*domain.SubscribeResult, error) {
	var resp subscribeResponse
	if err := c.do(ctx, method, path("channels", channelID, "subscribe"), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &domain.SubscribeResult{Subscribed: resp.Subscribed, TotalSubscribers: resp.TotalSubscribers}, nil
}

// MySubscriptions lists the channels the signed-in user subscribes to
func (c *APIClient) MySubscriptions(ctx context.Context) ([]domain.Channel, error) {
	var resp []channelDTO
	if err := c.do(ctx, http.MethodGet, "channels/me/subscriptions", nil, nil, &resp); err != nil {
		return nil, err
	}
	channels := make([]domain.Channel, 0, len(resp))
	for _, ch := range resp {
		channels = append(channels, ch.toDomain())
	}
	return channels, nil
}

// PublicChannel fetches the public page of a channel by ID or handle
func (c *APIClient) PublicChannel(ctx context.Context, identifier string) (*domain.ChannelPage, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, errors.NewValidationError("Channel ID is required", map[string]interface{}{"field": "identifier"})
	}
	var resp channelPageDTO
	if err := c.do(ctx, http.MethodGet, path("channels", "public", identifier), nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.toDomain(), nil
}

// Profile fetches the signed-in user's account
func (c *APIClient) Profile(ctx context.Context) (*domain.UserProfile, error) {
	var resp profileResponse
	if err := c.do(ctx, http.MethodGet, "me", nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, errors.NewEmptyBodyError("User missing from response", nil)
	}
	return resp.User.toDomain(), nil
}

// ListVideos fetches one page of videos, optionally filtered by channel
func (c *APIClient) ListVideos(ctx context.Context, q domain.FeedQuery) (*domain.FeedPage, error) {
	query := url.Values{}
	if q.ChannelID != "" {
		query.Set("channelId", q.ChannelID)
	}
	query.Set("page", fmt.Sprint(q.Page))
	query.Set("limit", fmt.Sprint(q.Limit))

	var resp listVideosResponse
	if err := c.do(ctx, http.MethodGet, "videos", query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.toDomain(), nil
}

// LikeVideo toggles the like of the signed-in user
func (c *APIClient) LikeVideo(ctx context.Context, videoID string) (*domain.Reaction, error) {
	return c.react(ctx, videoID, "like")
}

// DislikeVideo toggles the dislike of the signed-in user
func (c *APIClient) DislikeVideo(ctx context.Context, videoID string) (*domain.Reaction, error) {
	return c.react(ctx, videoID, "dislike")
}

func (c *APIClient) react(ctx context.Context, videoID, action string) (*domain.Reaction, error) {
	var resp reactionResponse
	if err := c.do(ctx, http.MethodPost, path("videos", videoID, action), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &domain.Reaction{Likes: resp.Likes, Dislikes: resp.Dislikes, Liked: resp.Liked, Disliked: resp.Disliked}, nil
}

// AddComment posts a comment on a video
func (c *APIClient) AddComment(ctx context.Context, videoID, text string) error {
	return c.do(ctx, http.MethodPost, path("videos", videoID, "comment"), nil, addCommentRequest{Text: text}, nil)
}

// Comments lists the comments of a video
func (c *APIClient) Comments(ctx context.Context, videoID string) ([]domain.Comment, error) {
	var resp []commentDTO
	if err := c.do(ctx, http.MethodGet, path("videos", videoID, "comments"), nil, nil, &resp); err != nil {
		return nil, err
	}
	comments := make([]domain.Comment, 0, len(resp))
	for _, cm := range resp {
		comments = append(comments, cm.toDomain())
	}
	return comments, nil
}

// DeleteComment deletes one of the signed-in user's comments
func (c *APIClient) DeleteComment(ctx context.Context, videoID, commentID string) error {
	return c.do(ctx, http.MethodDelete, path("videos", videoID, "comments", commentID), nil, nil, nil)
}

// ToggleSaveForLater flips the saved flag and returns the new value
func (c *APIClient) ToggleSaveForLater(ctx context.Context, videoID string) (bool, error) {
	var resp saveResponse
	if err := c.do(ctx, http.MethodPost, path("videos", videoID, "save"), nil, nil, &resp); err != nil {
		return false, err
	}
	if resp.Saved == nil {
		return false, errors.NewEmptyBodyError("Saved flag missing from response", nil)
	}
	return *resp.Saved, nil
}

// AddDownload records a download of the video
func (c *APIClient) AddDownload(ctx context.Context, videoID string) error {
	return c.do(ctx, http.MethodPost, path("videos", videoID, "download"), nil, nil, nil)
}

// AddView counts a view of the video
func (c *APIClient) AddView(ctx context.Context, videoID string) error {
	return c.do(ctx, http.MethodPost, path("videos", videoID, "view"), nil, nil, nil)
}

// AddWatchHistory appends the video to the user's watch history
func (c *APIClient) AddWatchHistory(ctx context.Context, videoID string) error {
	return c.do(ctx, http.MethodPost, path("videos", videoID, "watch"), nil, nil, nil)
}

// Search runs a full-text search over channels and videos
func (c *APIClient) Search(ctx context.Context, query string) (*domain.SearchResult, error) {
	var resp searchResponse
	if err := c.do(ctx, http.MethodGet, "search", url.Values{"query": {query}}, nil, &resp); err != nil {
		return nil, err
	}
	return resp.toDomain(), nil
}

// Library fetches the watch history, saved or downloaded videos of the signed-in user
func (c *APIClient) Library(ctx context.Context, kind domain.LibraryKind) ([]domain.LibraryVideo, error) {
	if !kind.Valid() {
		return nil, errors.NewValidationError("Unknown library list", map[string]interface{}{"kind": kind})
	}
	var resp libraryResponse
	if err := c.do(ctx, http.MethodGet, path("videos", string(kind)), nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.toDomain(), nil
}

// do executes one request. A nil out means the response body is ignored;
// otherwise a 2xx reply must carry a JSON payload that decodes into out.
func (c *APIClient) do(ctx context.Context, method, relPath string, query url.Values, payload interface{}, out interface{}) error {
	ref, err := url.Parse(relPath)
	if err != nil {
		return errors.NewValidationError("Invalid request path", map[string]interface{}{"path": relPath})
	}
	endpoint := c.baseURL.ResolveReference(ref)
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}

	var body io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return errors.NewInternalError("Failed to encode request", err)
		}
		body = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return errors.NewInternalError("Failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := c.logger.WithFields(map[string]interface{}{
		"method": method,
		"path":   relPath,
	})

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Warn("Remote call failed")
		return errors.NewNetworkError("", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		message := serverMessage(raw)
		log.WithFields(map[string]interface{}{
			"status_code": resp.StatusCode,
			"message":     message,
		}).Warn("Remote call returned unsuccessful status")
		return errors.NewUnsuccessfulResponseError(resp.StatusCode, message)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		log.WithField("duration", time.Since(start)).Debug("Remote call succeeded")
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.WithError(err).Warn("Failed to read response body")
		return errors.NewNetworkError("", err)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		log.WithField("status_code", resp.StatusCode).Warn("Remote call returned empty body")
		return errors.NewEmptyBodyError("", nil)
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		log.WithError(err).WithField("status_code", resp.StatusCode).Warn("Failed to parse response body")
		return errors.NewEmptyBodyError("", err)
	}

	log.WithField("duration", time.Since(start)).Debug("Remote call succeeded")
	return nil
}

// serverMessage extracts {"message": ...} or {"error": ...} from an error body
func serverMessage(raw []byte) string {
	var msg messageResponse
	if err := json.Unmarshal(raw, &msg); err != nil {
		return ""
	}
	if msg.Message != "" {
		return msg.Message
	}
	return msg.Error
}

// path joins escaped segments into a relative API path
func path(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return strings.Join(escaped, "/")
}
