package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/99minutos/catalog-gateway/internal/core/domain"
	"github.com/99minutos/catalog-gateway/internal/core/ports"
	"github.com/99minutos/catalog-gateway/internal/pkg/metrics"
)

const (
	identityKeyPrefix  = "identity:"
	defaultIdentityTTL = 30 * time.Second
)

// IdentityCache is a read-through cache in front of an identity lookup. It
// serves the per-request principal resolution, so entries never carry the
// password hash. Redis failures fall through to the backing store.
//
// Role or enabled-flag changes become visible after at most the TTL.
type IdentityCache struct {
	client *redis.Client
	next   ports.IdentityLookup
	ttl    time.Duration
	log    zerolog.Logger
}

func NewIdentityCache(client *redis.Client, next ports.IdentityLookup, ttl time.Duration, log zerolog.Logger) *IdentityCache {
	if ttl <= 0 {
		ttl = defaultIdentityTTL
	}
	return &IdentityCache{client: client, next: next, ttl: ttl, log: log}
}

type cachedIdentity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Roles    string `json:"roles"`
	Enabled  bool   `json:"enabled"`
}

func (c *IdentityCache) FindByUsername(ctx context.Context, username string) (*domain.Identity, error) {
	key := identityKeyPrefix + username

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var entry cachedIdentity
		if err := json.Unmarshal(raw, &entry); err == nil {
			metrics.IdentityCacheTotal.WithLabelValues("hit").Inc()
			return &domain.Identity{
				ID:       entry.ID,
				Username: entry.Username,
				Email:    entry.Email,
				Roles:    entry.Roles,
				Enabled:  entry.Enabled,
			}, nil
		}
		c.log.Warn().Str("key", key).Msg("discarding undecodable identity cache entry")
	case errors.Is(err, redis.Nil):
		metrics.IdentityCacheTotal.WithLabelValues("miss").Inc()
	default:
		metrics.IdentityCacheTotal.WithLabelValues("error").Inc()
		c.log.Warn().Err(err).Msg("identity cache read failed, using store")
	}

	identity, err := c.next.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(cachedIdentity{
		ID:       identity.ID,
		Username: identity.Username,
		Email:    identity.Email,
		Roles:    identity.Roles,
		Enabled:  identity.Enabled,
	})
	if err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.log.Warn().Err(err).Msg("identity cache write failed")
		}
	}
	return identity, nil
}

// Evict drops the cached entry for username.
func (c *IdentityCache) Evict(ctx context.Context, username string) error {
	return c.client.Del(ctx, identityKeyPrefix+username).Err()
}
