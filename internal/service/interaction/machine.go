// Package interaction turns per-video user actions into observable snapshots.
package interaction

import (
	"context"
	"strings"

	"vidora-client/internal/domain"
	"vidora-client/internal/service"
	"vidora-client/internal/state"
	"vidora-client/pkg/errors"
	"vidora-client/pkg/logger"
)

// Kind names the event that produced a snapshot
type Kind string

const (
	KindIdle     Kind = "idle"
	KindReaction Kind = "reaction"
	KindComments Kind = "comments"
	KindSaved    Kind = "saved"
	KindMessage  Kind = "message"
	KindError    Kind = "error"
)

// MessageDownloaded is published after a download is recorded
const MessageDownloaded = "Downloaded successfully"

// Snapshot is the transient state of one video. Counters and flags hold the
// last value the server reported in this session; nothing is persisted.
type Snapshot struct {
	Kind       Kind             `json:"kind"`
	VideoID    string           `json:"video_id,omitempty"`
	Likes      int              `json:"likes"`
	Dislikes   int              `json:"dislikes"`
	Saved      bool             `json:"saved"`
	Downloaded bool             `json:"downloaded"`
	Comments   []domain.Comment `json:"comments,omitempty"`
	Message    string           `json:"message,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// Machine drives the interactions of one video screen. Every action is a
// single remote call with no retry and no mutual exclusion; the server
// response decides the published values.
type Machine struct {
	api    service.InteractionAPI
	logger *logger.Logger
	scope  *state.Scope

	snapshot *state.Observable[Snapshot]
}

// NewMachine creates an idle machine
func NewMachine(api service.InteractionAPI, logger *logger.Logger) *Machine {
	return &Machine{
		api:      api,
		logger:   logger.Component("interaction"),
		scope:    state.NewScope(context.Background()),
		snapshot: state.NewObservable(Snapshot{Kind: KindIdle}),
	}
}

// Like toggles the viewer's like and publishes the server counts
func (m *Machine) Like(videoID string) <-chan struct{} {
	return m.react(videoID, "like", m.api.LikeVideo)
}

// Dislike toggles the viewer's dislike and publishes the server counts
func (m *Machine) Dislike(videoID string) <-chan struct{} {
	return m.react(videoID, "dislike", m.api.DislikeVideo)
}

func (m *Machine) react(videoID, action string, call func(context.Context, string) (*domain.Reaction, error)) <-chan struct{} {
	return m.run(videoID, action, func(ctx context.Context) (func(Snapshot) Snapshot, error) {
		reaction, err := call(ctx, videoID)
		if err != nil {
			return nil, err
		}
		return func(s Snapshot) Snapshot {
			s.Kind = KindReaction
			s.Likes = reaction.Likes
			s.Dislikes = reaction.Dislikes
			return s
		}, nil
	})
}

// AddComment posts text and reloads the comment list
func (m *Machine) AddComment(videoID, text string) <-chan struct{} {
	return m.run(videoID, "add_comment", func(ctx context.Context) (func(Snapshot) Snapshot, error) {
		if strings.TrimSpace(text) == "" {
			return nil, errors.NewValidationError("Comment cannot be empty", nil)
		}
		if err := m.api.AddComment(ctx, videoID, text); err != nil {
			return nil, err
		}
		return m.reload(ctx, videoID)
	})
}

// DeleteComment removes one comment and reloads the comment list
func (m *Machine) DeleteComment(videoID, commentID string) <-chan struct{} {
	return m.run(videoID, "delete_comment", func(ctx context.Context) (func(Snapshot) Snapshot, error) {
		if err := m.api.DeleteComment(ctx, videoID, commentID); err != nil {
			return nil, err
		}
		return m.reload(ctx, videoID)
	})
}

// LoadComments fetches the comment list
func (m *Machine) LoadComments(videoID string) <-chan struct{} {
	return m.run(videoID, "load_comments", func(ctx context.Context) (func(Snapshot) Snapshot, error) {
		return m.reload(ctx, videoID)
	})
}

func (m *Machine) reload(ctx context.Context, videoID string) (func(Snapshot) Snapshot, error) {
	comments, err := m.api.Comments(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	return func(s Snapshot) Snapshot {
		s.Kind = KindComments
		s.Comments = comments
		return s
	}, nil
}

// ToggleSaveForLater flips the saved flag on the server
func (m *Machine) ToggleSaveForLater(videoID string) <-chan struct{} {
	return m.run(videoID, "save_for_later", func(ctx context.Context) (func(Snapshot) Snapshot, error) {
		saved, err := m.api.ToggleSaveForLater(ctx, videoID)
		if err != nil {
			return nil, err
		}
		return func(s Snapshot) Snapshot {
			s.Kind = KindSaved
			s.Saved = saved
			return s
		}, nil
	})
}

// AddDownload records a download
func (m *Machine) AddDownload(videoID string) <-chan struct{} {
	return m.run(videoID, "download", func(ctx context.Context) (func(Snapshot) Snapshot, error) {
		if err := m.api.AddDownload(ctx, videoID); err != nil {
			return nil, err
		}
		return func(s Snapshot) Snapshot {
			s.Kind = KindMessage
			s.Message = MessageDownloaded
			s.Downloaded = true
			return s
		}, nil
	})
}

// AddWatchHistory records the video in the viewer's history
func (m *Machine) AddWatchHistory(videoID string) <-chan struct{} {
	return m.run(videoID, "watch_history", func(ctx context.Context) (func(Snapshot) Snapshot, error) {
		if err := m.api.AddWatchHistory(ctx, videoID); err != nil {
			return nil, err
		}
		return func(s Snapshot) Snapshot {
			s.Kind = KindMessage
			s.Message = ""
			return s
		}, nil
	})
}

// AddView counts a view. Success publishes nothing.
func (m *Machine) AddView(videoID string) <-chan struct{} {
	return m.run(videoID, "view", func(ctx context.Context) (func(Snapshot) Snapshot, error) {
		return nil, m.api.AddView(ctx, videoID)
	})
}

// Reset returns to the idle snapshot
func (m *Machine) Reset() {
	m.scope.Publish(func() {
		m.snapshot.Set(Snapshot{Kind: KindIdle})
	})
}

// Snapshot returns the current snapshot
func (m *Machine) Snapshot() Snapshot {
	return m.snapshot.Get()
}

// Watch streams snapshots
func (m *Machine) Watch(ctx context.Context) <-chan Snapshot {
	return m.snapshot.Subscribe(ctx)
}

// Close cancels in-flight actions. No snapshot is published afterwards.
func (m *Machine) Close() {
	m.scope.Close()
}

// run performs one action. A nil apply with a nil error publishes nothing.
func (m *Machine) run(videoID, action string, call func(ctx context.Context) (func(Snapshot) Snapshot, error)) <-chan struct{} {
	log := m.logger.WithFields(map[string]interface{}{
		"video_id": videoID,
		"action":   action,
	})

	return m.scope.Launch(func(ctx context.Context) {
		apply, err := call(ctx)
		if ctx.Err() != nil {
			return
		}

		if err != nil {
			log.WithError(err).Warn("Interaction failed")
			m.scope.Publish(func() {
				m.snapshot.Update(func(current Snapshot) Snapshot {
					next := forVideo(current, videoID)
					next.Kind = KindError
					next.Message = ""
					next.Error = errors.UserMessage(err)
					return next
				})
			})
			return
		}
		if apply == nil {
			return
		}

		m.scope.Publish(func() {
			m.snapshot.Update(func(current Snapshot) Snapshot {
				next := apply(forVideo(current, videoID))
				if next.Kind != KindMessage {
					next.Message = ""
				}
				next.Error = ""
				return next
			})
		})
		log.Debug("Interaction applied")
	})
}

// forVideo carries counters forward only while the snapshot is for videoID
func forVideo(current Snapshot, videoID string) Snapshot {
	if current.VideoID != videoID {
		return Snapshot{VideoID: videoID}
	}
	return current
}
