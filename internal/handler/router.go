package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"vidora-client/internal/container"
	"vidora-client/internal/middleware"
	"vidora-client/pkg/errors"
)

// NewRouter configures the bridge routes over the container and screens
func NewRouter(c *container.Container, screens *Screens) *chi.Mux {
	cfg := c.GetConfig()
	log := c.GetLogger()
	provider := c.GetAuthProvider()

	r := chi.NewRouter()

	r.Use(middleware.CORS(cfg.AllowedOrigins, log))
	r.Use(middleware.RequestID(log))
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Compress(5))
	r.Use(chiMiddleware.Timeout(cfg.ReadTimeout + cfg.WriteTimeout))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, r, errors.NewNotFoundError("Endpoint not found"), log)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		appErr := errors.NewValidationError("Method not allowed", nil)
		appErr.StatusCode = http.StatusMethodNotAllowed
		middleware.WriteError(w, r, appErr, log)
	})

	healthHandler := NewHealthHandler(c)
	authHandler := NewAuthHandler(c)
	mediaHandler := NewMediaHandler(c)
	feedHandler := NewFeedHandler(screens, log)
	subscriptionHandler := NewSubscriptionHandler(screens, c.Services.Subscriptions, log)
	searchHandler := NewSearchHandler(screens, log)
	videoHandler := NewVideoHandler(screens, log)
	libraryHandler := NewLibraryHandler(screens, log)
	channelHandler := NewChannelHandler(screens, log)

	r.Get("/health", healthHandler.Check)

	r.Route("/api", func(r chi.Router) {
		r.Route("/session", func(r chi.Router) {
			r.Get("/", authHandler.GetSession)
			r.Post("/", authHandler.SignIn)
			r.Delete("/", authHandler.SignOut)
		})

		// Public endpoints work signed out; the token is attached when present
		r.Get("/media/signed-url", mediaHandler.SignedURL)
		r.Delete("/media/signed-url", mediaHandler.Invalidate)
		r.Post("/media/signed-urls", mediaHandler.SignedURLs)

		r.Route("/feed", func(r chi.Router) {
			r.Get("/", feedHandler.State)
			r.Delete("/", feedHandler.Clear)
			r.Post("/fetch", feedHandler.Fetch)
			r.Post("/more", feedHandler.More)
			r.Post("/up-next", feedHandler.UpNext)
		})

		r.Post("/search", searchHandler.Search)
		r.Get("/search/history", searchHandler.History)
		r.Delete("/search/history", searchHandler.ClearHistory)

		r.Get("/channels/{identifier}", channelHandler.Channel)
		r.Get("/profile", channelHandler.Profile)

		r.Get("/videos/interaction", videoHandler.Snapshot)
		r.Get("/videos/{videoId}/comments", videoHandler.Comments)
		r.Post("/videos/{videoId}/view", videoHandler.View)

		// Endpoints that act for the signed-in user
		requireSession := middleware.RequireSession(provider, log)

		r.Route("/subscriptions", func(r chi.Router) {
			r.Use(requireSession)

			r.Get("/", subscriptionHandler.List)
			r.Get("/members", subscriptionHandler.Members)
			r.Post("/{channelId}", subscriptionHandler.Subscribe)
			r.Delete("/{channelId}", subscriptionHandler.Unsubscribe)
		})

		r.With(requireSession).Post("/videos/{videoId}/like", videoHandler.Like)
		r.With(requireSession).Post("/videos/{videoId}/dislike", videoHandler.Dislike)
		r.With(requireSession).Post("/videos/{videoId}/comments", videoHandler.AddComment)
		r.With(requireSession).Delete("/videos/{videoId}/comments/{commentId}", videoHandler.DeleteComment)
		r.With(requireSession).Post("/videos/{videoId}/save", videoHandler.Save)
		r.With(requireSession).Post("/videos/{videoId}/download", videoHandler.Download)
		r.With(requireSession).Post("/videos/{videoId}/history", videoHandler.WatchHistory)

		r.With(requireSession).Get("/library/{kind}", libraryHandler.Load)
	})

	log.Info("Router configured successfully")
	return r
}
