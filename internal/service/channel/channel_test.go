package channel

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidora-client/internal/domain"
	"vidora-client/internal/state"
	"vidora-client/pkg/errors"
	"vidora-client/pkg/logger"
)

type fakeChannelAPI struct {
	channels map[string]*domain.ChannelPage
	gate     map[string]chan struct{}
}

func (f *fakeChannelAPI) PublicChannel(ctx context.Context, identifier string) (*domain.ChannelPage, error) {
	if gate := f.gate[identifier]; gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, errors.NewNetworkError("", ctx.Err())
		}
	}
	if ch, ok := f.channels[identifier]; ok {
		return ch, nil
	}
	return nil, errors.NewUnsuccessfulResponseError(http.StatusNotFound, "Channel not found")
}

type fakeProfileAPI struct {
	profile *domain.UserProfile
	err     error
}

func (f *fakeProfileAPI) Profile(ctx context.Context) (*domain.UserProfile, error) {
	return f.profile, f.err
}

// fakeResolver signs every locator except those listed in fail
type fakeResolver struct {
	mu    sync.Mutex
	fail  map[string]bool
	asked []string
}

func (f *fakeResolver) Resolve(ctx context.Context, locator string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.asked = append(f.asked, locator)
	if locator == "" || f.fail[locator] {
		return "", false
	}
	return "https://cdn.test/" + locator + "?sig=1", true
}

func (f *fakeResolver) ResolveMany(ctx context.Context, locators ...string) map[string]string {
	out := make(map[string]string, len(locators))
	for _, l := range locators {
		if signed, ok := f.Resolve(ctx, l); ok {
			out[l] = signed
		}
	}
	return out
}

type staticIdentity struct {
	identity domain.Identity
}

func (s staticIdentity) Current() domain.Identity {
	return s.identity
}

func (s staticIdentity) Watch(ctx context.Context) <-chan domain.Identity {
	ch := make(chan domain.Identity, 1)
	ch <- s.identity
	return ch
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("load did not finish")
	}
}

func TestPage_Load(t *testing.T) {
	api := &fakeChannelAPI{channels: map[string]*domain.ChannelPage{
		"c1":     {ID: "c1", Name: "One", ProfilePictureURL: "p/c1.png", BannerURL: "b/c1.png"},
		"bare":   {ID: "bare", Name: "Bare"},
		"broken": {ID: "broken", Name: "Broken", ProfilePictureURL: "p/broken.png", BannerURL: "b/ok.png"},
	}}

	tests := []struct {
		name            string
		identifier      string
		expectedStatus  state.Status
		expectedProfile string
		expectedBanner  string
		expectedError   string
	}{
		{
			name:            "signs picture and banner",
			identifier:      "c1",
			expectedStatus:  state.StatusSuccess,
			expectedProfile: "https://cdn.test/p/c1.png?sig=1",
			expectedBanner:  "https://cdn.test/b/c1.png?sig=1",
		},
		{
			name:           "no artwork",
			identifier:     "bare",
			expectedStatus: state.StatusSuccess,
		},
		{
			name:           "failed signing leaves that URL empty",
			identifier:     "broken",
			expectedStatus: state.StatusSuccess,
			expectedBanner: "https://cdn.test/b/ok.png?sig=1",
		},
		{
			name:           "unknown channel",
			identifier:     "nope",
			expectedStatus: state.StatusError,
			expectedError:  "Channel not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := &fakeResolver{fail: map[string]bool{"p/broken.png": true}}
			page := NewPage(api, resolver, logger.NewNop())
			t.Cleanup(page.Close)
			assert.Equal(t, state.StatusIdle, page.State().Status)

			waitDone(t, page.Load(tt.identifier))

			s := page.State()
			assert.Equal(t, tt.expectedStatus, s.Status)
			assert.Equal(t, tt.expectedProfile, s.SignedProfileURL)
			assert.Equal(t, tt.expectedBanner, s.SignedBannerURL)
			assert.Equal(t, tt.expectedError, s.Error)
			if tt.expectedStatus == state.StatusSuccess {
				require.NotNil(t, s.Channel)
				assert.Equal(t, tt.identifier, s.Channel.ID)
			}
			assert.NotContains(t, resolver.asked, "", "blank locators are never signed")
		})
	}
}

func TestPage_LaterLoadWins(t *testing.T) {
	slow := make(chan struct{})
	api := &fakeChannelAPI{
		channels: map[string]*domain.ChannelPage{"old": {ID: "old"}, "new": {ID: "new"}},
		gate:     map[string]chan struct{}{"old": slow},
	}
	page := NewPage(api, &fakeResolver{}, logger.NewNop())
	t.Cleanup(page.Close)

	first := page.Load("old")
	assert.Equal(t, state.StatusLoading, page.State().Status)
	waitDone(t, page.Refresh("new"))
	close(slow)
	waitDone(t, first)

	s := page.State()
	assert.Equal(t, state.StatusSuccess, s.Status)
	require.NotNil(t, s.Channel)
	assert.Equal(t, "new", s.Channel.ID)
}

func TestPage_CloseStopsPublishing(t *testing.T) {
	gate := make(chan struct{})
	api := &fakeChannelAPI{
		channels: map[string]*domain.ChannelPage{"c1": {ID: "c1"}},
		gate:     map[string]chan struct{}{"c1": gate},
	}
	page := NewPage(api, &fakeResolver{}, logger.NewNop())

	done := page.Load("c1")
	page.Close()
	waitDone(t, done)
	close(gate)

	assert.Equal(t, state.StatusLoading, page.State().Status)
}

func TestProfile_Load(t *testing.T) {
	ann := domain.Identity{Key: "ann@example.com"}

	tests := []struct {
		name           string
		identity       domain.Identity
		api            *fakeProfileAPI
		failAvatar     bool
		expectedStatus state.Status
		expectedAvatar string
		expectedError  string
	}{
		{
			name:           "signed out",
			api:            &fakeProfileAPI{},
			expectedStatus: state.StatusError,
			expectedError:  "Not signed in",
		},
		{
			name:     "profile with avatar",
			identity: ann,
			api: &fakeProfileAPI{profile: &domain.UserProfile{
				ID: "u1", Email: "ann@example.com", ProfilePictureURL: "avatars/u1.png",
			}},
			expectedStatus: state.StatusSuccess,
			expectedAvatar: "https://cdn.test/avatars/u1.png?sig=1",
		},
		{
			name:           "profile without avatar",
			identity:       ann,
			api:            &fakeProfileAPI{profile: &domain.UserProfile{ID: "u1"}},
			expectedStatus: state.StatusSuccess,
		},
		{
			name:     "avatar signing fails",
			identity: ann,
			api: &fakeProfileAPI{profile: &domain.UserProfile{
				ID: "u1", ProfilePictureURL: "avatars/u1.png",
			}},
			failAvatar:     true,
			expectedStatus: state.StatusSuccess,
		},
		{
			name:           "server rejects token",
			identity:       ann,
			api:            &fakeProfileAPI{err: errors.NewUnsuccessfulResponseError(http.StatusUnauthorized, "")},
			expectedStatus: state.StatusError,
			expectedError:  "Request failed: 401 Unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := &fakeResolver{fail: map[string]bool{"avatars/u1.png": tt.failAvatar}}
			profile := NewProfile(tt.api, resolver, staticIdentity{identity: tt.identity}, logger.NewNop())
			t.Cleanup(profile.Close)

			waitDone(t, profile.Load())

			s := profile.State()
			assert.Equal(t, tt.expectedStatus, s.Status)
			assert.Equal(t, tt.expectedAvatar, s.SignedAvatarURL)
			assert.Equal(t, tt.expectedError, s.Error)
			if tt.expectedStatus == state.StatusSuccess {
				assert.Equal(t, tt.api.profile, s.Profile)
			}
		})
	}
}

func TestProfile_WatchSeesSignedAvatar(t *testing.T) {
	api := &fakeProfileAPI{profile: &domain.UserProfile{ID: "u1", ProfilePictureURL: "avatars/u1.png"}}
	profile := NewProfile(api, &fakeResolver{}, staticIdentity{identity: domain.Identity{Key: "ann"}}, logger.NewNop())
	t.Cleanup(profile.Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	states := profile.Watch(ctx)
	assert.Equal(t, state.StatusIdle, (<-states).Status)

	done := profile.Refresh()

	var seen []ProfileState
	for len(seen) == 0 || seen[len(seen)-1].SignedAvatarURL == "" {
		select {
		case s := <-states:
			seen = append(seen, s)
		case <-time.After(2 * time.Second):
			t.Fatalf("avatar never arrived, saw %+v", seen)
		}
	}
	waitDone(t, done)

	last := seen[len(seen)-1]
	assert.Equal(t, state.StatusSuccess, last.Status)
	assert.Equal(t, "u1", last.Profile.ID)
	assert.Equal(t, "https://cdn.test/avatars/u1.png?sig=1", last.SignedAvatarURL)
}
