// Package feed accumulates a paginated video listing across repeated fetches.
package feed

import (
	"context"
	"sync"

	"vidora-client/internal/domain"
	"vidora-client/internal/service"
	"vidora-client/internal/state"
	"vidora-client/pkg/errors"
	"vidora-client/pkg/logger"
)

const (
	defaultPage  = 1
	defaultLimit = 20
)

// State is the accumulated feed as seen by observers. While loading it keeps
// the videos accumulated so far; an error state carries none.
type State struct {
	Status      state.Status   `json:"status"`
	Videos      []domain.Video `json:"videos"`
	Page        int            `json:"page"`
	TotalPages  int            `json:"total_pages"`
	TotalVideos int            `json:"total_videos"`
	Error       string         `json:"error,omitempty"`
}

// HasMore reports whether a further page exists
func (s State) HasMore() bool {
	return s.Status == state.StatusSuccess && s.Page < s.TotalPages
}

// Feed drives one feed screen
type Feed struct {
	lister    service.VideoLister
	pageLimit int
	logger    *logger.Logger
	scope     *state.Scope

	state *state.Observable[State]

	mu         sync.Mutex
	generation uint64
	lastQuery  domain.FeedQuery
}

// New creates an idle feed. pageLimit is used when a query leaves Limit unset.
func New(lister service.VideoLister, pageLimit int, logger *logger.Logger) *Feed {
	if pageLimit <= 0 {
		pageLimit = defaultLimit
	}
	return &Feed{
		lister:    lister,
		pageLimit: pageLimit,
		logger:    logger.Component("feed"),
		scope:     state.NewScope(context.Background()),
		state:     state.NewObservable(State{Status: state.StatusIdle, Videos: []domain.Video{}}),
	}
}

// FetchPage loads one page. Page 1 replaces the accumulated list, any later
// page is appended to it. Only the most recently issued fetch may publish
// its result; older ones are dropped when they complete.
func (f *Feed) FetchPage(q domain.FeedQuery) <-chan struct{} {
	if q.Page < 1 {
		q.Page = defaultPage
	}
	if q.Limit < 1 {
		q.Limit = f.pageLimit
	}

	f.mu.Lock()
	f.generation++
	gen := f.generation
	f.lastQuery = q
	f.mu.Unlock()

	log := f.logger.WithFields(map[string]interface{}{
		"channel_id": q.ChannelID,
		"page":       q.Page,
		"generation": gen,
	})

	f.scope.Publish(func() {
		f.state.Update(func(current State) State {
			current.Status = state.StatusLoading
			current.Error = ""
			return current
		})
	})

	return f.scope.Launch(func(ctx context.Context) {
		page, err := f.lister.ListVideos(ctx, q)
		if ctx.Err() != nil {
			return
		}

		if err != nil {
			log.WithError(err).Warn("Failed to fetch feed page")
			f.publishIfCurrent(gen, log, func() {
				f.state.Set(State{Status: state.StatusError, Videos: []domain.Video{}, Error: errors.UserMessage(err)})
			})
			return
		}

		incoming := filter(page.Videos, q.ExcludeVideoID)
		f.publishIfCurrent(gen, log, func() {
			f.state.Update(func(current State) State {
				videos := incoming
				if q.Page > 1 {
					videos = append(append(make([]domain.Video, 0, len(current.Videos)+len(incoming)), current.Videos...), incoming...)
				}
				return State{
					Status:      state.StatusSuccess,
					Videos:      videos,
					Page:        page.Page,
					TotalPages:  page.TotalPages,
					TotalVideos: page.TotalVideos,
				}
			})
		})
		log.WithField("received", len(incoming)).Debug("Feed page loaded")
	})
}

// Refresh reloads the first page of a channel's feed; empty channelID means all videos
func (f *Feed) Refresh(channelID string) <-chan struct{} {
	return f.FetchPage(domain.FeedQuery{ChannelID: channelID, Page: 1})
}

// LoadMore fetches the page after the last loaded one. It reports false and
// does nothing when there is no further page or a fetch is outstanding.
func (f *Feed) LoadMore() (<-chan struct{}, bool) {
	current := f.state.Get()
	if !current.HasMore() {
		return nil, false
	}

	f.mu.Lock()
	next := f.lastQuery
	f.mu.Unlock()

	next.Page = current.Page + 1
	return f.FetchPage(next), true
}

// Clear drops the accumulated list and any outstanding result
func (f *Feed) Clear() {
	f.mu.Lock()
	f.generation++
	f.lastQuery = domain.FeedQuery{}
	f.mu.Unlock()

	f.scope.Publish(func() {
		f.state.Set(State{Status: state.StatusIdle, Videos: []domain.Video{}})
	})
}

// State returns the current feed state
func (f *Feed) State() State {
	return f.state.Get()
}

// Watch streams feed states
func (f *Feed) Watch(ctx context.Context) <-chan State {
	return f.state.Subscribe(ctx)
}

// Close cancels in-flight fetches. No state is published afterwards.
func (f *Feed) Close() {
	f.scope.Close()
}

// publishIfCurrent runs fn only while gen is the newest fetch. The
// generation lock is held across the check and the write.
func (f *Feed) publishIfCurrent(gen uint64, log *logger.Logger, fn func()) {
	f.scope.Publish(func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.generation != gen {
			log.Debug("Dropping superseded feed result")
			return
		}
		fn()
	})
}

func filter(videos []domain.Video, excludeID string) []domain.Video {
	out := make([]domain.Video, 0, len(videos))
	for _, v := range videos {
		if excludeID != "" && v.ID == excludeID {
			continue
		}
		out = append(out, v)
	}
	return out
}
