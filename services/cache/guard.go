package cache

import (
	"strconv"
	"time"

	"sjsage522/reviewworker/logger"
)

// RateLimitGuard remembers that the render service rate limited a source.
// While the block key lives, fetches for that source are refused.
type RateLimitGuard struct {
	svc       CacheService
	blockTime time.Duration
}

// NewRateLimitGuard creates a guard; a nil svc disables it
func NewRateLimitGuard(svc CacheService, blockTime time.Duration) *RateLimitGuard {
	return &RateLimitGuard{svc: svc, blockTime: blockTime}
}

// BlockTime returns how long a block lasts
func (g *RateLimitGuard) BlockTime() time.Duration {
	if g == nil {
		return 0
	}
	return g.blockTime
}

// Blocked reports whether key is currently blocked
func (g *RateLimitGuard) Blocked(key string) bool {
	if g == nil || g.svc == nil || key == "" {
		return false
	}
	_, err := g.svc.Get(key)
	return err == nil
}

// Block marks key as blocked for the guard's block time
func (g *RateLimitGuard) Block(key string) error {
	if g == nil || g.svc == nil || key == "" || g.blockTime <= 0 {
		return nil
	}
	seconds := strconv.Itoa(int(g.blockTime / time.Second))
	if err := g.svc.Set(key, []byte(seconds), g.blockTime); err != nil {
		logger.ForCache().Warn().Err(err).Str("key", key).Msg("Failed to store rate limit block")
		return err
	}
	logger.ForCache().Info().Str("key", key).Dur("block_time", g.blockTime).Msg("Rate limit block stored")
	return nil
}
