package redis

import (
	"fmt"
	"strings"
)

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder creates a key builder. Production data lives under "prod",
// everything else under "dev" so a shared local Redis never mixes the two.
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "dev"
	if environment == "production" {
		prefix = "prod"
	}

	return &KeyBuilder{
		prefix: prefix,
	}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

// Session key builders
func (kb *KeyBuilder) KeySessionToken() string {
	return kb.BuildKey(KeySessionToken)
}

func (kb *KeyBuilder) KeySessionUser() string {
	return kb.BuildKey(KeySessionUser)
}

// KeySubscriptions is the membership set of one signed-in user
func (kb *KeyBuilder) KeySubscriptions(userKey string) string {
	return kb.BuildKey(fmt.Sprintf(KeySubscriptions, normalizeUserKey(userKey)))
}

// KeyRecentSearches is the recent-search list of one signed-in user
func (kb *KeyBuilder) KeyRecentSearches(userKey string) string {
	return kb.BuildKey(fmt.Sprintf(KeyRecentSearches, normalizeUserKey(userKey)))
}

// normalizeUserKey makes emails that differ only in case share a key
func normalizeUserKey(userKey string) string {
	return strings.ToLower(strings.TrimSpace(userKey))
}
