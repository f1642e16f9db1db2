package auth

import (
	"context"
	"errors"
	"time"

	"github.com/2beens/formcheck/internal/telemetry/tracing"
	"github.com/2beens/formcheck/pkg"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultCacheTTL       = 10 * time.Minute
	defaultCacheSizeBytes = 512 * 1024
)

// TokenChecker validates API tokens against a bcrypt hash. bcrypt is slow on
// purpose, so tokens that passed once are remembered for a while.
type TokenChecker struct {
	tokenHash string
	cacheTTL  time.Duration
	cache     *freecache.Cache
}

func NewTokenChecker(tokenHash string, cacheTTL time.Duration) *TokenChecker {
	return &TokenChecker{
		tokenHash: tokenHash,
		cacheTTL:  cacheTTL,
		cache:     freecache.NewCache(defaultCacheSizeBytes),
	}
}

// Enabled reports whether a token hash is configured at all.
func (c *TokenChecker) Enabled() bool {
	return c.tokenHash != ""
}

func (c *TokenChecker) IsValid(ctx context.Context, token string) (bool, error) {
	_, span := tracing.GlobalTracer.Start(ctx, "auth.token.check")
	defer span.End()

	if !c.Enabled() || token == "" {
		return false, nil
	}

	key := []byte(token)
	if _, err := c.cache.Get(key); err == nil {
		return true, nil
	} else if !errors.Is(err, freecache.ErrNotFound) {
		log.Warnf("token cache get: %s", err)
	}

	if !pkg.CheckPasswordHash(token, c.tokenHash) {
		return false, nil
	}

	if err := c.cache.Set(key, []byte{1}, int(c.cacheTTL.Seconds())); err != nil {
		return true, err
	}

	return true, nil
}

// Forget drops a cached token, e.g. after the hash was rotated.
func (c *TokenChecker) Forget(token string) {
	c.cache.Del([]byte(token))
}
