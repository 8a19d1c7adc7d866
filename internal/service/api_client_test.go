package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"vidora-client/internal/config"
	"vidora-client/internal/domain"
	"vidora-client/internal/service/auth"
	"vidora-client/pkg/errors"
	"vidora-client/pkg/logger"
)

func newTestAPIClient(t *testing.T, handler http.HandlerFunc) *APIClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		APIBaseURL:     server.URL + "/api/",
		ConnectTimeout: 2 * time.Second,
		ReadTimeout:    2 * time.Second,
		WriteTimeout:   2 * time.Second,
	}
	tokens := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"})

	client, err := NewAPIClient(cfg, tokens, logger.NewNop())
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if s, ok := body.(string); ok {
		_, _ = w.Write([]byte(s))
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

func TestAPIClient_SignedURL(t *testing.T) {
	tests := []struct {
		name           string
		serverResponse interface{}
		serverStatus   int
		expectedURL    string
		expectedType   errors.ErrorType
		expectedMsg    string
	}{
		{
			name:           "successful exchange",
			serverResponse: map[string]string{"signedUrl": "https://cdn.test/v.mp4?sig=abc"},
			serverStatus:   http.StatusOK,
			expectedURL:    "https://cdn.test/v.mp4?sig=abc",
		},
		{
			name:           "server error with message",
			serverResponse: map[string]string{"message": "File not found"},
			serverStatus:   http.StatusNotFound,
			expectedType:   errors.ErrorTypeUnsuccessful,
			expectedMsg:    "File not found",
		},
		{
			name:           "server error without json",
			serverResponse: "Internal Server Error",
			serverStatus:   http.StatusInternalServerError,
			expectedType:   errors.ErrorTypeUnsuccessful,
			expectedMsg:    "Request failed: 500 Internal Server Error",
		},
		{
			name:           "empty body",
			serverResponse: nil,
			serverStatus:   http.StatusOK,
			expectedType:   errors.ErrorTypeEmptyBody,
			expectedMsg:    "Empty response from server",
		},
		{
			name:           "null body",
			serverResponse: "null",
			serverStatus:   http.StatusOK,
			expectedType:   errors.ErrorTypeEmptyBody,
		},
		{
			name:           "invalid json",
			serverResponse: "not a json",
			serverStatus:   http.StatusOK,
			expectedType:   errors.ErrorTypeEmptyBody,
		},
		{
			name:           "missing signed url",
			serverResponse: map[string]string{},
			serverStatus:   http.StatusOK,
			expectedType:   errors.ErrorTypeEmptyBody,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestAPIClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/api/files/signed-url", r.URL.Path)
				assert.Equal(t, "s3://bucket/videos/a b.mp4", r.URL.Query().Get("fileUrl"))
				assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
				writeJSON(w, tt.serverStatus, tt.serverResponse)
			})

			signed, err := client.SignedURL(context.Background(), "s3://bucket/videos/a b.mp4")

			if tt.expectedType != "" {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, tt.expectedType), "got %v", err)
				if tt.expectedMsg != "" {
					assert.Equal(t, tt.expectedMsg, errors.UserMessage(err))
				}
				assert.Empty(t, signed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedURL, signed)
		})
	}
}

func TestAPIClient_ListVideos(t *testing.T) {
	client := newTestAPIClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/videos", r.URL.Path)
		assert.Equal(t, "c1", r.URL.Query().Get("channelId"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "4", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, `{
			"page": 2, "totalPages": 3, "totalVideos": 10,
			"videos": [{
				"_id": "v1", "title": "First", "description": "d",
				"channelId": {"_id": "c1", "name": "Chan", "profilePictureUrl": "s3://p.png", "handleChannelName": "@chan"},
				"uploader": {"_id": "u1", "firstName": "Ann", "lastName": "Lee"},
				"categories": ["music"], "tags": [], "visibility": "public",
				"videoUrls": {"original": "s3://v1.mp4", "resolutions": {"720p": "s3://v1-720.mp4"}},
				"thumbnailUrl": "s3://t.png", "duration": 12.5, "sizeInMB": 3.2, "views": 7,
				"likes": ["u2"], "dislikes": [], "comments": ["k1", "k2"],
				"isMonetized": false, "isAgeRestricted": true, "createdAt": "2024-01-01T00:00:00Z"
			}]
		}`)
	})

	page, err := client.ListVideos(context.Background(), domain.FeedQuery{ChannelID: "c1", Page: 2, Limit: 4})
	require.NoError(t, err)

	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 10, page.TotalVideos)
	require.Len(t, page.Videos, 1)

	v := page.Videos[0]
	assert.Equal(t, "v1", v.ID)
	assert.Equal(t, "c1", v.ChannelID)
	assert.Equal(t, "Chan", v.ChannelName)
	assert.Equal(t, "Ann Lee", v.UploaderName)
	assert.Equal(t, "s3://v1.mp4", v.URLs.Original)
	assert.Equal(t, "s3://v1-720.mp4", v.URLs.Resolutions["720p"])
	assert.Equal(t, []string{"u2"}, v.Likes)
	assert.Len(t, v.Comments, 2)
	assert.True(t, v.IsAgeRestricted)
}

func TestAPIClient_ListVideos_ClampsPageToTotal(t *testing.T) {
	client := newTestAPIClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, hasChannel := r.URL.Query()["channelId"]
		assert.False(t, hasChannel)
		writeJSON(w, http.StatusOK, map[string]interface{}{"page": 9, "totalPages": 2, "totalVideos": 5, "videos": []interface{}{}})
	})

	page, err := client.ListVideos(context.Background(), domain.FeedQuery{Page: 9, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.NotNil(t, page.Videos)
}

func TestAPIClient_SubscribeAndUnsubscribe(t *testing.T) {
	var methods []string
	client := newTestAPIClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/channels/c1/subscribe", r.URL.Path)
		methods = append(methods, r.Method)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"subscribed":       r.Method == http.MethodPost,
			"totalSubscribers": 42,
		})
	})

	res, err := client.Subscribe(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, domain.SubscribeResult{Subscribed: true, TotalSubscribers: 42}, *res)

	res, err = client.Unsubscribe(context.Background(), "c1")
	require.NoError(t, err)
	assert.False(t, res.Subscribed)

	assert.Equal(t, []string{http.MethodPost, http.MethodDelete}, methods)
}

func TestAPIClient_MySubscriptions(t *testing.T) {
	client := newTestAPIClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/channels/me/subscriptions", r.URL.Path)
		writeJSON(w, http.StatusOK, `[{"_id":"c1","name":"One","description":"","handleChannelName":"@one","totalSubscribers":3,
			"videos":[{"_id":"v1","title":"T","thumbnailUrl":"s3://t"}]}]`)
	})

	channels, err := client.MySubscriptions(context.Background())
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, "@one", channels[0].Handle)
	assert.Equal(t, []domain.ChannelVideo{{ID: "v1", Title: "T", ThumbnailURL: "s3://t"}}, channels[0].Videos)
}

func TestAPIClient_PublicChannel(t *testing.T) {
	client := newTestAPIClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/channels/public/@one%20two", r.URL.EscapedPath())
		writeJSON(w, http.StatusOK, `{"_id":"c1","name":"One","handleChannelName":"@one two","profilePictureUrl":" p/c1.png ",
			"bannerUrl":"b/c1.png","socialLinks":{"x":"https://x.test/one"},"totalSubscribers":3,"totalViews":42,
			"location":"Oslo","contactEmail":"one@example.com","videos":["v1","v2"],"createdAt":"2024-01-02T03:04:05Z"}`)
	})

	channel, err := client.PublicChannel(context.Background(), "@one two")
	require.NoError(t, err)
	assert.Equal(t, &domain.ChannelPage{
		ID:                "c1",
		Name:              "One",
		Handle:            "@one two",
		ProfilePictureURL: "p/c1.png",
		BannerURL:         "b/c1.png",
		SocialLinks:       map[string]string{"x": "https://x.test/one"},
		TotalSubscribers:  3,
		TotalViews:        42,
		Location:          "Oslo",
		ContactEmail:      "one@example.com",
		VideoIDs:          []string{"v1", "v2"},
		Tags:              []string{},
		CreatedAt:         "2024-01-02T03:04:05Z",
	}, channel)

	_, err = client.PublicChannel(context.Background(), "  ")
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestAPIClient_Profile(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		expectedErr  errors.ErrorType
		expectedName string
	}{
		{
			name:         "wrapped user",
			body:         `{"user":{"_id":"u1","email":"ann@example.com","firstName":"Ann","lastName":"Lee","channelId":"c1"}}`,
			expectedName: "Ann",
		},
		{
			name:        "user missing",
			body:        `{}`,
			expectedErr: errors.ErrorTypeEmptyBody,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestAPIClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/me", r.URL.Path)
				assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
				writeJSON(w, http.StatusOK, tt.body)
			})

			profile, err := client.Profile(context.Background())
			if tt.expectedErr != "" {
				assert.True(t, errors.IsType(err, tt.expectedErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedName, profile.FirstName)
			assert.Equal(t, "c1", profile.ChannelID)
		})
	}
}

func TestAPIClient_Interactions(t *testing.T) {
	var lastBody []byte
	client := newTestAPIClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/videos/v1/like":
			writeJSON(w, http.StatusOK, map[string]interface{}{"likes": 5, "dislikes": 1, "liked": true})
		case "/api/videos/v1/save":
			writeJSON(w, http.StatusOK, map[string]interface{}{"saved": true})
		case "/api/videos/v1/comment":
			lastBody, _ = io.ReadAll(r.Body)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			writeJSON(w, http.StatusCreated, map[string]string{"_id": "k1"})
		case "/api/videos/v1/comments/k1":
			assert.Equal(t, http.MethodDelete, r.Method)
			w.WriteHeader(http.StatusNoContent)
		case "/api/videos/v1/view", "/api/videos/v1/watch", "/api/videos/v1/download":
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	reaction, err := client.LikeVideo(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, 5, reaction.Likes)
	require.NotNil(t, reaction.Liked)
	assert.True(t, *reaction.Liked)
	assert.Nil(t, reaction.Disliked)

	saved, err := client.ToggleSaveForLater(ctx, "v1")
	require.NoError(t, err)
	assert.True(t, saved)

	require.NoError(t, client.AddComment(ctx, "v1", "nice"))
	assert.JSONEq(t, `{"text":"nice"}`, string(lastBody))

	require.NoError(t, client.DeleteComment(ctx, "v1", "k1"))
	require.NoError(t, client.AddView(ctx, "v1"))
	require.NoError(t, client.AddWatchHistory(ctx, "v1"))
	require.NoError(t, client.AddDownload(ctx, "v1"))
}

func TestAPIClient_ToggleSave_MissingFlag(t *testing.T) {
	client := newTestAPIClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})

	_, err := client.ToggleSaveForLater(context.Background(), "v1")
	assert.True(t, errors.IsType(err, errors.ErrorTypeEmptyBody))
}

func TestAPIClient_SearchAndLibrary(t *testing.T) {
	client := newTestAPIClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/search":
			assert.Equal(t, "cats & dogs", r.URL.Query().Get("query"))
			writeJSON(w, http.StatusOK, `{"channel":{"_id":"c1","name":"Cats","handleChannelName":"@cats"},"channelVideos":[],"videos":[{"_id":"v9","title":"Cat"}]}`)
		case "/api/videos/saved":
			writeJSON(w, http.StatusOK, `{"videos":[{"_id":"v1","title":"Saved","channelId":{"_id":"c1","name":"Cats"},"views":3,"likes":["a","b"]}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	result, err := client.Search(ctx, "cats & dogs")
	require.NoError(t, err)
	require.NotNil(t, result.Channel)
	assert.Equal(t, "@cats", result.Channel.Handle)
	assert.Empty(t, result.ChannelVideos)
	require.Len(t, result.Videos, 1)
	assert.Equal(t, "v9", result.Videos[0].ID)

	saved, err := client.Library(ctx, domain.LibrarySaved)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "Cats", saved[0].ChannelName)
	assert.Equal(t, 2, saved[0].Likes)

	_, err = client.Library(ctx, domain.LibraryKind("favourites"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestAPIClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL + "/api/"
	server.Close()

	client, err := NewAPIClient(&config.Config{APIBaseURL: baseURL, ConnectTimeout: time.Second}, nil, logger.NewNop())
	require.NoError(t, err)

	_, err = client.SignedURL(context.Background(), "s3://x")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNetwork))
	assert.Equal(t, "Unable to reach the server", errors.UserMessage(err))
}

func TestAPIClient_ContextCancellation(t *testing.T) {
	client := newTestAPIClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.MySubscriptions(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNetwork))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAPIClient_Authorization(t *testing.T) {
	tests := []struct {
		name     string
		tokens   oauth2.TokenSource
		expected string
	}{
		{
			name: "no token source",
		},
		{
			name:   "signed-out session",
			tokens: auth.NewProvider(nil, "", logger.NewNop()),
		},
		{
			name:   "empty static token",
			tokens: oauth2.StaticTokenSource(&oauth2.Token{}),
		},
		{
			name:     "signed-in token",
			tokens:   oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"}),
			expected: "Bearer test-token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen []string
			var present bool
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, present = r.Header["Authorization"]
				writeJSON(w, http.StatusOK, map[string]interface{}{"page": 1, "totalPages": 1, "totalVideos": 0, "videos": []interface{}{}})
			}))
			defer server.Close()

			client, err := NewAPIClient(&config.Config{APIBaseURL: server.URL + "/api"}, tt.tokens, logger.NewNop())
			require.NoError(t, err)

			_, err = client.ListVideos(context.Background(), domain.FeedQuery{Page: 1, Limit: 20})
			require.NoError(t, err)

			if tt.expected == "" {
				assert.False(t, present, "unexpected Authorization header %v", seen)
				return
			}
			assert.Equal(t, []string{tt.expected}, seen)
		})
	}
}

func TestNewAPIClient_InvalidBaseURL(t *testing.T) {
	for _, base := range []string{"", "not a url", "/relative/only"} {
		_, err := NewAPIClient(&config.Config{APIBaseURL: base}, nil, logger.NewNop())
		assert.Error(t, err, base)
	}
}
