package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"vidora-client/internal/domain"
	"vidora-client/internal/state"
	"vidora-client/pkg/errors"
	"vidora-client/pkg/logger"
	"vidora-client/pkg/redis"
)

// SessionHook runs synchronously on a session change, before the new
// identity is published. On sign-in it receives the new identity, on
// sign-out the identity that is leaving.
type SessionHook func(ctx context.Context, identity domain.Identity)

// Provider owns the session: the bearer token handed to every remote call
// and the identity that scopes per-user local state. It implements
// oauth2.TokenSource so the API client can attach the credential itself.
type Provider struct {
	redis  *redis.Client
	secret []byte
	logger *logger.Logger

	identity *state.Observable[domain.Identity]

	mu           sync.RWMutex
	token        string
	signInHooks  []SessionHook
	signOutHooks []SessionHook

	now func() time.Time
}

// NewProvider creates a signed-out provider. jwtSecret may be empty, in
// which case token claims are read without signature verification.
func NewProvider(redisClient *redis.Client, jwtSecret string, logger *logger.Logger) *Provider {
	var secret []byte
	if jwtSecret != "" {
		secret = []byte(jwtSecret)
	}
	return &Provider{
		redis:    redisClient,
		secret:   secret,
		logger:   logger.Component("auth"),
		identity: state.NewObservable(domain.Identity{}),
		now:      time.Now,
	}
}

// OnSignIn registers a hook run on every sign-in and restored session
func (p *Provider) OnSignIn(hook SessionHook) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signInHooks = append(p.signInHooks, hook)
}

// OnSignOut registers a hook run on every sign-out
func (p *Provider) OnSignOut(hook SessionHook) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signOutHooks = append(p.signOutHooks, hook)
}

// Restore loads a previously persisted session. A missing, malformed or
// expired token leaves the provider signed out.
func (p *Provider) Restore(ctx context.Context) (domain.Identity, error) {
	token, err := p.redis.Get(ctx, p.redis.KeyBuilder.KeySessionToken())
	if stderrors.Is(err, redis.Nil) {
		p.logger.Debug("No stored session")
		return domain.Identity{}, nil
	}
	if err != nil {
		return domain.Identity{}, fmt.Errorf("failed to read stored session: %w", err)
	}

	identity, err := p.ParseToken(token)
	if err != nil {
		p.logger.WithError(err).Info("Discarding stored session")
		if delErr := p.forget(ctx); delErr != nil {
			return domain.Identity{}, delErr
		}
		return domain.Identity{}, nil
	}

	p.runHooks(ctx, true, identity)
	p.setSession(token, identity)
	p.logger.WithField("user_key", identity.Key).Info("Session restored")
	return identity, nil
}

// SignIn validates token, persists it, runs the sign-in hooks and then
// publishes the new identity
func (p *Provider) SignIn(ctx context.Context, token string) (domain.Identity, error) {
	token = strings.TrimSpace(token)
	identity, err := p.ParseToken(token)
	if err != nil {
		return domain.Identity{}, err
	}

	if err := p.redis.Set(ctx, p.redis.KeyBuilder.KeySessionToken(), token, 0); err != nil {
		return domain.Identity{}, errors.NewInternalError("Failed to store session", err)
	}
	if err := p.redis.Set(ctx, p.redis.KeyBuilder.KeySessionUser(), identity.Key, 0); err != nil {
		return domain.Identity{}, errors.NewInternalError("Failed to store session", err)
	}

	p.runHooks(ctx, true, identity)
	p.setSession(token, identity)
	p.logger.WithField("user_key", identity.Key).Info("Signed in")
	return identity, nil
}

// SignOut forgets the session, runs the sign-out hooks and then publishes
// the signed-out identity
func (p *Provider) SignOut(ctx context.Context) error {
	previous := p.Current()

	if err := p.forget(ctx); err != nil {
		return err
	}
	if previous.SignedIn() {
		p.runHooks(ctx, false, previous)
	}
	p.setSession("", domain.Identity{})

	p.logger.WithField("user_key", previous.Key).Info("Signed out")
	return nil
}

// Current returns the signed-in identity, the zero value when signed out
func (p *Provider) Current() domain.Identity {
	return p.identity.Get()
}

// Watch streams the identity, starting with the current one
func (p *Provider) Watch(ctx context.Context) <-chan domain.Identity {
	return p.identity.Subscribe(ctx)
}

// Token implements oauth2.TokenSource. Signed out it returns an empty
// access token so public endpoints stay reachable.
func (p *Provider) Token() (*oauth2.Token, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &oauth2.Token{AccessToken: p.token, TokenType: "Bearer"}, nil
}

// ParseToken reads the identity out of a session JWT
func (p *Provider) ParseToken(tokenString string) (domain.Identity, error) {
	if !isJWTToken(tokenString) {
		return domain.Identity{}, errors.NewAuthenticationError("Unrecognized token format")
	}

	claims := jwt.MapClaims{}
	if p.secret != nil {
		_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return p.secret, nil
		}, jwt.WithTimeFunc(p.now))
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return domain.Identity{}, errors.NewAuthenticationError("Token has expired")
		}
		if err != nil {
			p.logger.WithError(err).Debug("Failed to verify session token")
			return domain.Identity{}, errors.NewAuthenticationError("Invalid session token")
		}
	} else {
		if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
			return domain.Identity{}, errors.NewAuthenticationError("Invalid session token")
		}
	}

	parsed := domain.AuthClaims{
		Sub:   getStringValue(claims, "sub"),
		Email: getStringValue(claims, "email"),
		Exp:   getInt64Value(claims, "exp"),
		Iat:   getInt64Value(claims, "iat"),
	}

	// ParseUnverified skips claim validation
	if parsed.Exp > 0 && p.now().Unix() > parsed.Exp {
		return domain.Identity{}, errors.NewAuthenticationError("Token has expired")
	}

	identity := domain.Identity{
		Key:     parsed.Email,
		Subject: parsed.Sub,
		Email:   parsed.Email,
	}
	if identity.Key == "" {
		identity.Key = parsed.Sub
	}
	if identity.Key == "" {
		return domain.Identity{}, errors.NewAuthenticationError("Invalid session token: no user identifier")
	}
	if parsed.Exp > 0 {
		identity.ExpiresAt = time.Unix(parsed.Exp, 0).UTC()
	}
	return identity, nil
}

func (p *Provider) setSession(token string, identity domain.Identity) {
	p.mu.Lock()
	p.token = token
	p.mu.Unlock()
	p.identity.Set(identity)
}

func (p *Provider) runHooks(ctx context.Context, signIn bool, identity domain.Identity) {
	p.mu.RLock()
	hooks := p.signOutHooks
	if signIn {
		hooks = p.signInHooks
	}
	hooks = append([]SessionHook(nil), hooks...)
	p.mu.RUnlock()
	for _, hook := range hooks {
		hook(ctx, identity)
	}
}

func (p *Provider) forget(ctx context.Context) error {
	kb := p.redis.KeyBuilder
	if err := p.redis.Delete(ctx, kb.KeySessionToken(), kb.KeySessionUser()); err != nil {
		return errors.NewInternalError("Failed to clear session", err)
	}
	return nil
}

func isJWTToken(token string) bool {
	// JWT tokens have exactly 3 non-empty segments separated by dots
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}
	for _, part := range parts {
		if part == "" {
			return false
		}
	}
	return true
}

func getStringValue(m map[string]interface{}, key string) string {
	if val, ok := m[key].(string); ok {
		return val
	}
	return ""
}

func getInt64Value(m map[string]interface{}, key string) int64 {
	if val, ok := m[key].(float64); ok {
		return int64(val)
	}
	return 0
}
