// Package media resolves opaque storage locators into short-lived playable URLs.
package media

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"vidora-client/internal/service"
	"vidora-client/pkg/logger"
)

// maxParallelResolves bounds ResolveMany fan-out
const maxParallelResolves = 4

// Options tune the resolver. The zero value makes exactly one remote
// exchange per Resolve call.
type Options struct {
	// Coalesce shares one in-flight exchange between concurrent callers of the same locator
	Coalesce bool
	// CacheTTL keeps signed URLs in memory for this long. Zero disables caching.
	CacheTTL time.Duration
	// ExpirySkew treats cached entries as expired this long before their deadline
	ExpirySkew time.Duration
}

type cacheEntry struct {
	url       string
	expiresAt time.Time
}

// Resolver exchanges locators for signed URLs. Failures never escape: a
// locator that cannot be resolved is reported as absent.
type Resolver struct {
	exchanger service.MediaExchanger
	opts      Options
	logger    *logger.Logger

	group singleflight.Group

	mu    sync.Mutex
	cache map[string]cacheEntry

	now func() time.Time
}

// NewResolver creates a resolver backed by exchanger
func NewResolver(exchanger service.MediaExchanger, opts Options, logger *logger.Logger) *Resolver {
	return &Resolver{
		exchanger: exchanger,
		opts:      opts,
		logger:    logger.Component("media"),
		cache:     make(map[string]cacheEntry),
		now:       time.Now,
	}
}

// Resolve returns the signed URL for locator. The second result is false for
// a blank locator, which makes no remote call, and for any failed exchange.
func (r *Resolver) Resolve(ctx context.Context, locator string) (string, bool) {
	if strings.TrimSpace(locator) == "" {
		return "", false
	}

	if signed, ok := r.cached(locator); ok {
		return signed, true
	}

	var (
		signed string
		err    error
	)
	if r.opts.Coalesce {
		// The shared exchange must not end when the caller that started it goes away
		shared := context.WithoutCancel(ctx)
		results := r.group.DoChan(locator, func() (interface{}, error) {
			return r.exchanger.SignedURL(shared, locator)
		})
		select {
		case res := <-results:
			err = res.Err
			if err == nil {
				signed = res.Val.(string)
			}
		case <-ctx.Done():
			err = ctx.Err()
		}
	} else {
		signed, err = r.exchanger.SignedURL(ctx, locator)
	}

	if err != nil {
		r.logger.WithError(err).WithField("locator", locator).Warn("Failed to resolve signed URL")
		return "", false
	}

	r.store(locator, signed)
	return signed, true
}

// ResolveMany resolves several locators concurrently. Locators that could not
// be resolved are missing from the result.
func (r *Resolver) ResolveMany(ctx context.Context, locators ...string) map[string]string {
	var (
		mu       sync.Mutex
		resolved = make(map[string]string, len(locators))
		seen     = make(map[string]bool, len(locators))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelResolves)

	for _, locator := range locators {
		if seen[locator] {
			continue
		}
		seen[locator] = true

		g.Go(func() error {
			if signed, ok := r.Resolve(gctx, locator); ok {
				mu.Lock()
				resolved[locator] = signed
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return resolved
}

// Invalidate drops a cached URL, e.g. after playback reported it expired
func (r *Resolver) Invalidate(locator string) {
	r.mu.Lock()
	delete(r.cache, locator)
	r.mu.Unlock()
}

func (r *Resolver) cached(locator string) (string, bool) {
	if r.opts.CacheTTL <= 0 {
		return "", false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.cache[locator]
	if !ok {
		return "", false
	}
	if !r.now().Add(r.opts.ExpirySkew).Before(entry.expiresAt) {
		delete(r.cache, locator)
		return "", false
	}
	return entry.url, true
}

func (r *Resolver) store(locator, signed string) {
	if r.opts.CacheTTL <= 0 {
		return
	}

	r.mu.Lock()
	r.cache[locator] = cacheEntry{url: signed, expiresAt: r.now().Add(r.opts.CacheTTL)}
	r.mu.Unlock()
}
