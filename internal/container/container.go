package container

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/alicebob/miniredis/v2"

	"vidora-client/internal/config"
	"vidora-client/internal/domain"
	"vidora-client/internal/service"
	"vidora-client/internal/service/auth"
	"vidora-client/internal/service/channel"
	"vidora-client/internal/service/feed"
	"vidora-client/internal/service/interaction"
	"vidora-client/internal/service/library"
	"vidora-client/internal/service/media"
	"vidora-client/internal/service/search"
	"vidora-client/internal/service/subscription"
	"vidora-client/pkg/logger"
	"vidora-client/pkg/redis"
)

// MemoryRedisURL selects an in-process store instead of a Redis server
const MemoryRedisURL = "memory://"

// Services holds the process-wide components. Per-screen components are
// created through the container's New* methods.
type Services struct {
	Auth          *auth.Provider
	API           *service.APIClient
	Resolver      *media.Resolver
	Subscriptions *subscription.Set
	History       *search.History
}

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *logger.Logger
	RedisClient *redis.Client
	Services    *Services

	embedded *miniredis.Miniredis

	closeOnce sync.Once
	closeErr  error
}

// New creates a new dependency injection container and restores any
// stored session
func New(cfg *config.Config, logger *logger.Logger) (*Container, error) {
	redisURL := cfg.RedisURL
	var embedded *miniredis.Miniredis
	if strings.HasPrefix(redisURL, MemoryRedisURL) {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, fmt.Errorf("failed to start in-memory store: %w", err)
		}
		embedded = mr
		redisURL = "redis://" + mr.Addr()
		logger.Info("Using in-memory store; nothing survives a restart")
	}

	redisClient, err := redis.NewClient(redisURL, cfg.Environment, logger.Logger)
	if err != nil {
		if embedded != nil {
			embedded.Close()
		}
		return nil, err
	}
	logger.Info("Redis client initialized successfully")

	provider := auth.NewProvider(redisClient, cfg.JWTSecret, logger)

	api, err := service.NewAPIClient(cfg, provider, logger)
	if err != nil {
		_ = redisClient.Close()
		if embedded != nil {
			embedded.Close()
		}
		return nil, err
	}

	services := &Services{
		Auth: provider,
		API:  api,
		Resolver: media.NewResolver(api, media.Options{
			Coalesce:   cfg.ResolverCoalesce,
			CacheTTL:   cfg.ResolverCacheTTL,
			ExpirySkew: cfg.ResolverExpirySkew,
		}, logger),
		Subscriptions: subscription.NewSet(redisClient, logger),
		History:       search.NewHistory(redisClient, cfg.SearchHistoryMax, logger),
	}

	// Per-user state switches inside SignIn and SignOut, before the identity
	// is published, so a write right after sign-in lands in the new user's set
	provider.OnSignIn(func(ctx context.Context, identity domain.Identity) {
		services.switchUser(ctx, identity.Key, logger)
	})
	provider.OnSignOut(func(ctx context.Context, previous domain.Identity) {
		// Per-user local state does not outlive the session
		if err := services.Subscriptions.Clear(ctx, previous.Key); err != nil {
			logger.WithError(err).Warn("Failed to clear subscriptions on sign-out")
		}
		if err := services.History.Clear(ctx, previous.Key); err != nil {
			logger.WithError(err).Warn("Failed to clear search history on sign-out")
		}
		services.switchUser(ctx, "", logger)
	})

	c := &Container{
		Config:      cfg,
		Logger:      logger,
		RedisClient: redisClient,
		Services:    services,
		embedded:    embedded,
	}

	if _, err := provider.Restore(context.Background()); err != nil {
		logger.WithError(err).Warn("Failed to restore session, starting signed out")
	}

	return c, nil
}

// switchUser points the shared per-user state at userKey
func (s *Services) switchUser(ctx context.Context, userKey string, logger *logger.Logger) {
	if err := s.Subscriptions.SwitchUser(ctx, userKey); err != nil {
		logger.WithError(err).WithField("user_key", userKey).Warn("Failed to load subscriptions")
	}
	if err := s.History.SwitchUser(ctx, userKey); err != nil {
		logger.WithError(err).WithField("user_key", userKey).Warn("Failed to load search history")
	}
}

// NewSubscriptionStore creates the state of one subscription screen
func (c *Container) NewSubscriptionStore() *subscription.Store {
	return subscription.NewStore(c.Services.Subscriptions, c.Services.API, subscription.Options{
		RollbackOnFailure: c.Config.SubscriptionRollback,
	}, c.Logger)
}

// NewFeed creates the state of one feed screen
func (c *Container) NewFeed() *feed.Feed {
	return feed.New(c.Services.API, c.Config.FeedPageSize, c.Logger)
}

// NewSearcher creates the state of one search screen
func (c *Container) NewSearcher() *search.Searcher {
	return search.NewSearcher(c.Services.API, c.Services.History, c.Services.Auth, c.Logger)
}

// NewInteraction creates the state of one video screen
func (c *Container) NewInteraction() *interaction.Machine {
	return interaction.NewMachine(c.Services.API, c.Logger)
}

// NewLibrary creates the state of the library screen
func (c *Container) NewLibrary() *library.Lists {
	return library.New(c.Services.API, c.Logger)
}

// NewChannelPage creates the state of one channel screen
func (c *Container) NewChannelPage() *channel.Page {
	return channel.NewPage(c.Services.API, c.Services.Resolver, c.Logger)
}

// NewProfile creates the state of the profile screen
func (c *Container) NewProfile() *channel.Profile {
	return channel.NewProfile(c.Services.API, c.Services.Resolver, c.Services.Auth, c.Logger)
}

// GetAuthProvider returns the session provider
func (c *Container) GetAuthProvider() *auth.Provider {
	return c.Services.Auth
}

// GetResolver returns the signed URL resolver
func (c *Container) GetResolver() *media.Resolver {
	return c.Services.Resolver
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// GetRedisClient returns the Redis client
func (c *Container) GetRedisClient() *redis.Client {
	return c.RedisClient
}

// Close releases the store. Safe to call twice.
func (c *Container) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.RedisClient.Close()
		if c.embedded != nil {
			c.embedded.Close()
		}
	})
	return c.closeErr
}
