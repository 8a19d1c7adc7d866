package subscription

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidora-client/internal/domain"
	"vidora-client/internal/state"
	"vidora-client/pkg/errors"
	"vidora-client/pkg/logger"
	"vidora-client/pkg/redis"
)

type fakeSubscriptionAPI struct {
	mu          sync.Mutex
	release     chan struct{}
	subscribeFn func(channelID string) (*domain.SubscribeResult, error)
	listFn      func() ([]domain.Channel, error)
	listCalls   int
}

func (f *fakeSubscriptionAPI) wait(ctx context.Context) error {
	if f.release == nil {
		return nil
	}
	select {
	case <-f.release:
		return nil
	case <-ctx.Done():
		return errors.NewNetworkError("", ctx.Err())
	}
}

func (f *fakeSubscriptionAPI) Subscribe(ctx context.Context, channelID string) (*domain.SubscribeResult, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if f.subscribeFn != nil {
		return f.subscribeFn(channelID)
	}
	return &domain.SubscribeResult{Subscribed: true, TotalSubscribers: 10}, nil
}

func (f *fakeSubscriptionAPI) Unsubscribe(ctx context.Context, channelID string) (*domain.SubscribeResult, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return &domain.SubscribeResult{Subscribed: false, TotalSubscribers: 9}, nil
}

func (f *fakeSubscriptionAPI) MySubscriptions(ctx context.Context) ([]domain.Channel, error) {
	f.mu.Lock()
	f.listCalls++
	f.mu.Unlock()
	if f.listFn != nil {
		return f.listFn()
	}
	return []domain.Channel{{ID: "c1", Name: "One"}}, nil
}

func (f *fakeSubscriptionAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func setupSet(t *testing.T) (*miniredis.Miniredis, *redis.Client, *Set) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := redis.NewClient("redis://"+mr.Addr(), "test", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	set := NewSet(client, logger.NewNop())
	require.NoError(t, set.SwitchUser(context.Background(), "ann@example.com"))
	return mr, client, set
}

func newTestStore(t *testing.T, set *Set, api *fakeSubscriptionAPI, opts Options) *Store {
	t.Helper()
	store := NewStore(set, api, opts, logger.NewNop())
	t.Cleanup(store.Close)
	return store
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("operation did not finish")
	}
}

func TestStore_Subscribe_WritesMembershipBeforeRemoteResolves(t *testing.T) {
	mr, client, set := setupSet(t)
	api := &fakeSubscriptionAPI{release: make(chan struct{})}
	store := newTestStore(t, set, api, Options{})

	done := store.Subscribe("c1")

	assert.True(t, store.IsSubscribed("c1"))
	assert.Equal(t, state.StatusLoading, store.Toggle().Status)
	members, err := mr.Members(client.KeyBuilder.KeySubscriptions("ann@example.com"))
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, members)

	close(api.release)
	waitDone(t, done)

	toggle := store.Toggle()
	assert.Equal(t, state.StatusSuccess, toggle.Status)
	assert.Equal(t, "c1", toggle.ChannelID)
	require.NotNil(t, toggle.Result)
	assert.True(t, toggle.Result.Subscribed)

	// A confirmed change refreshes the authoritative list
	require.Eventually(t, func() bool {
		return store.List().Status == state.StatusSuccess
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, api.calls())
}

func TestStore_Subscribe_FailureKeepsOptimisticWrite(t *testing.T) {
	_, _, set := setupSet(t)
	api := &fakeSubscriptionAPI{subscribeFn: func(string) (*domain.SubscribeResult, error) {
		return nil, errors.NewNetworkError("", nil)
	}}
	store := newTestStore(t, set, api, Options{})

	waitDone(t, store.Subscribe("c1"))

	assert.True(t, store.IsSubscribed("c1"))
	toggle := store.Toggle()
	assert.Equal(t, state.StatusError, toggle.Status)
	assert.Equal(t, "Unable to reach the server", toggle.Error)
	assert.Equal(t, 0, api.calls(), "no list refresh after a failure")
}

func TestStore_Subscribe_FailureRollsBackWhenEnabled(t *testing.T) {
	_, _, set := setupSet(t)
	api := &fakeSubscriptionAPI{subscribeFn: func(string) (*domain.SubscribeResult, error) {
		return nil, errors.NewUnsuccessfulResponseError(http.StatusNotFound, "Channel not found")
	}}
	store := newTestStore(t, set, api, Options{RollbackOnFailure: true})

	waitDone(t, store.Subscribe("c1"))

	assert.False(t, store.IsSubscribed("c1"))
	assert.Equal(t, "Channel not found", store.Toggle().Error)
}

func TestStore_Rollback_DoesNotUndoNewerToggle(t *testing.T) {
	_, _, set := setupSet(t)
	api := &fakeSubscriptionAPI{
		release: make(chan struct{}),
		subscribeFn: func(string) (*domain.SubscribeResult, error) {
			return nil, errors.NewNetworkError("", nil)
		},
	}
	store := newTestStore(t, set, api, Options{RollbackOnFailure: true})

	first := store.Subscribe("c1")
	second := store.Unsubscribe("c1")
	assert.False(t, store.IsSubscribed("c1"))

	close(api.release)
	waitDone(t, first)
	waitDone(t, second)

	assert.False(t, store.IsSubscribed("c1"))
}

func TestStore_Unsubscribe(t *testing.T) {
	_, _, set := setupSet(t)
	require.NoError(t, set.Add(context.Background(), "c1"))
	api := &fakeSubscriptionAPI{}
	store := newTestStore(t, set, api, Options{})

	waitDone(t, store.Unsubscribe("c1"))

	assert.False(t, store.IsSubscribed("c1"))
	toggle := store.Toggle()
	assert.Equal(t, state.StatusSuccess, toggle.Status)
	assert.False(t, toggle.Result.Subscribed)
	assert.Equal(t, 9, toggle.Result.TotalSubscribers)
}

func TestStore_ListMine(t *testing.T) {
	tests := []struct {
		name           string
		listFn         func() ([]domain.Channel, error)
		expectedStatus state.Status
		expectedError  string
		expectedCount  int
	}{
		{
			name:           "loads channels",
			expectedStatus: state.StatusSuccess,
			expectedCount:  1,
		},
		{
			name: "server error",
			listFn: func() ([]domain.Channel, error) {
				return nil, errors.NewUnsuccessfulResponseError(http.StatusUnauthorized, "Unauthorized")
			},
			expectedStatus: state.StatusError,
			expectedError:  "Unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, set := setupSet(t)
			require.NoError(t, set.Add(context.Background(), "c7"))
			store := newTestStore(t, set, &fakeSubscriptionAPI{listFn: tt.listFn}, Options{})

			waitDone(t, store.ListMine())

			list := store.List()
			assert.Equal(t, tt.expectedStatus, list.Status)
			assert.Equal(t, tt.expectedError, list.Error)
			assert.Len(t, list.Channels, tt.expectedCount)
			// The membership view is never reconciled with the list
			assert.Equal(t, []string{"c7"}, set.Members())
		})
	}
}

func TestStore_CloseDiscardsInFlightResults(t *testing.T) {
	_, _, set := setupSet(t)
	api := &fakeSubscriptionAPI{release: make(chan struct{})}
	store := NewStore(set, api, Options{}, logger.NewNop())

	done := store.Subscribe("c1")
	store.Close()
	waitDone(t, done)

	assert.Equal(t, state.StatusLoading, store.Toggle().Status)
	assert.True(t, store.IsSubscribed("c1"))

	// Operations on a closed store are no-ops
	waitDone(t, store.Unsubscribe("c1"))
	assert.True(t, store.IsSubscribed("c1"))
}

func TestSet_ScopedPerUser(t *testing.T) {
	mr, client, set := setupSet(t)
	ctx := context.Background()

	require.NoError(t, set.Add(ctx, "c1"))
	require.NoError(t, set.SwitchUser(ctx, "bob@example.com"))
	assert.Empty(t, set.Members())

	require.NoError(t, set.Add(ctx, "c2"))
	require.NoError(t, set.SwitchUser(ctx, "ann@example.com"))
	assert.Equal(t, []string{"c1"}, set.Members())

	require.NoError(t, set.Clear(ctx, "ann@example.com"))
	assert.Empty(t, set.Members())
	assert.False(t, mr.Exists(client.KeyBuilder.KeySubscriptions("ann@example.com")))
	assert.True(t, mr.Exists(client.KeyBuilder.KeySubscriptions("bob@example.com")))
}

func TestSet_SignedOutChangesStayInMemory(t *testing.T) {
	mr, _, set := setupSet(t)
	ctx := context.Background()

	require.NoError(t, set.SwitchUser(ctx, ""))
	require.NoError(t, set.Add(ctx, "c1"))
	assert.True(t, set.Contains("c1"))
	assert.Empty(t, mr.Keys())

	require.NoError(t, set.SwitchUser(ctx, ""))
	assert.False(t, set.Contains("c1"))
}

func TestSet_SwitchUserLoadsEachUsersMembership(t *testing.T) {
	_, _, set := setupSet(t)
	ctx := context.Background()
	require.NoError(t, set.Add(ctx, "c1"))

	require.NoError(t, set.SwitchUser(ctx, "bob@example.com"))
	assert.Empty(t, set.Members())
	require.NoError(t, set.Add(ctx, "c9"))

	require.NoError(t, set.SwitchUser(ctx, "ann@example.com"))
	assert.Equal(t, []string{"c1"}, set.Members())
	assert.Equal(t, "ann@example.com", set.User())
}

func TestSet_WatchSeesChanges(t *testing.T) {
	_, _, set := setupSet(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := set.Watch(ctx)
	assert.Empty(t, <-ch)

	require.NoError(t, set.Add(ctx, "c2"))
	require.NoError(t, set.Add(ctx, "c1"))

	require.Eventually(t, func() bool {
		select {
		case got := <-ch:
			return assert.ObjectsAreEqual([]string{"c1", "c2"}, got)
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}
