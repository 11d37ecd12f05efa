package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/redis/go-redis/v9"
)

const defaultRedisTTL = 24 * time.Hour

// cacheLogger is the logging surface the cache needs.
type cacheLogger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Cache is a two-tier vector cache: an in-process ristretto tier backed
// by an optional shared Redis tier. Either tier may be absent. Redis
// failures degrade to a miss, never an error.
type Cache struct {
	local  *ristretto.Cache[string, []float32]
	remote *redis.Client
	ttl    time.Duration
	logger cacheLogger
}

// CacheConfig configures the embedding cache tiers.
type CacheConfig struct {
	// MaxEntries bounds the in-process tier. Zero disables it.
	MaxEntries int64
	// Redis enables the shared tier when non-nil.
	Redis *redis.Client
	// TTL applies to Redis entries only. Zero uses the default.
	TTL    time.Duration
	Logger cacheLogger
}

// NewCache creates a cache with the configured tiers.
func NewCache(cfg CacheConfig) (*Cache, error) {
	c := &Cache{
		remote: cfg.Redis,
		ttl:    cfg.TTL,
		logger: cfg.Logger,
	}
	if c.ttl <= 0 {
		c.ttl = defaultRedisTTL
	}
	if c.logger == nil {
		c.logger = nopCacheLogger{}
	}

	if cfg.MaxEntries > 0 {
		local, err := ristretto.NewCache(&ristretto.Config[string, []float32]{
			NumCounters: cfg.MaxEntries * 10,
			MaxCost:     cfg.MaxEntries,
			BufferItems: 64,
		})
		if err != nil {
			return nil, err
		}
		c.local = local
	}

	return c, nil
}

// Key derives a stable cache key from the model and input text.
func Key(model, text string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return "emb:" + model + ":" + hex.EncodeToString(sum[:])
}

// Get looks up a vector, checking the local tier before Redis. A Redis
// hit backfills the local tier.
func (c *Cache) Get(ctx context.Context, key string) ([]float32, bool) {
	if c == nil {
		return nil, false
	}

	if c.local != nil {
		if vec, ok := c.local.Get(key); ok {
			return vec, true
		}
	}

	if c.remote != nil {
		raw, err := c.remote.Get(ctx, key).Bytes()
		if err == nil && len(raw) > 0 {
			vec := decodeVector(raw)
			if c.local != nil {
				c.local.Set(key, vec, 1)
			}
			return vec, true
		}
		if err != nil && err != redis.Nil {
			c.logger.Warn("embedding cache: redis get failed", "error", err)
		}
	}

	return nil, false
}

// Set stores a vector in all configured tiers.
func (c *Cache) Set(ctx context.Context, key string, vec []float32) {
	if c == nil || len(vec) == 0 {
		return
	}

	if c.local != nil {
		c.local.Set(key, vec, 1)
	}

	if c.remote != nil {
		if err := c.remote.Set(ctx, key, encodeVector(vec), c.ttl).Err(); err != nil {
			c.logger.Warn("embedding cache: redis set failed", "error", err)
		}
	}
}

// Close releases the local tier. The Redis client is owned by the caller.
func (c *Cache) Close() {
	if c != nil && c.local != nil {
		c.local.Close()
	}
}

// encodeVector serializes a vector as little-endian float32 bytes.
func encodeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeVector deserializes little-endian float32 bytes.
func decodeVector(buf []byte) []float32 {
	n := len(buf) / 4
	v := make([]float32, n)
	for i := 0; i < n; i++ {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return v
}

type nopCacheLogger struct{}

func (nopCacheLogger) Debug(string, ...any) {}
func (nopCacheLogger) Warn(string, ...any)  {}
