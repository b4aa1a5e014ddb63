package config

import "time"

// CacheConfig controls the occupancy response cache.  Entries are
// keyed by slot and dropped whenever a booking or cancellation touches
// the slot, so the TTL only bounds staleness against writers outside
// this process.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadCacheConfig reads the CACHE_* environment variables, with
// defaults used when they are not set.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled: envBool("CACHE_ENABLED", true),
		TTL:     envDur("CACHE_TTL", 30*time.Second),
		Prefix:  envStr("CACHE_PREFIX", "occupancy"),
	}
}
