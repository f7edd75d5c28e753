// Package cache provides Redis-based caching for analysis results.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"elliott-wave-analyzer/config"
	"elliott-wave-analyzer/internal/elliott"
)

// Key prefix for cached analyses
const analysisKeyPrefix = "elliott:analysis:"

// DefaultAnalysisTTL bounds how long a cached analysis stays valid
const DefaultAnalysisTTL = 5 * time.Minute

// CacheService provides Redis-based caching with graceful degradation.
// When Redis is unavailable, lookups miss and writes are dropped; callers
// recompute and carry on.
type CacheService struct {
	client *redis.Client
	ttl    time.Duration

	mu            sync.RWMutex
	healthy       bool
	failureCount  int
	maxFailures   int
	lastCheck     time.Time
	checkInterval time.Duration
}

// NewCacheService creates a new CacheService with the provided
// configuration and verifies connectivity. A failed initial connection
// returns the service in degraded mode, not an error.
func NewCacheService(cfg config.RedisConfig, ttl time.Duration) (*CacheService, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("redis is not enabled in configuration")
	}
	if ttl <= 0 {
		ttl = DefaultAnalysisTTL
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	cs := &CacheService{
		client:        client,
		ttl:           ttl,
		maxFailures:   3,
		checkInterval: 30 * time.Second,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return cs, nil // degraded mode, checkHealth retries later
	}
	cs.healthy = true
	cs.lastCheck = time.Now()
	return cs, nil
}

// IsHealthy returns whether Redis is currently available
func (cs *CacheService) IsHealthy() bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.healthy
}

// AnalysisKey derives the cache key for a price series and sensitivity.
// Identical inputs always map to the same key.
func AnalysisKey(prices []float64, sensitivity float64) string {
	h := sha256.New()
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, math.Float64bits(sensitivity))
	h.Write(buf)
	for _, p := range prices {
		binary.BigEndian.PutUint64(buf, math.Float64bits(p))
		h.Write(buf)
	}
	return analysisKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

// GetAnalysis fetches a cached analysis. A miss, an unhealthy connection
// or a decode failure all return ok=false.
func (cs *CacheService) GetAnalysis(ctx context.Context, key string) (*elliott.Analysis, bool) {
	cs.checkHealth()

	if !cs.IsHealthy() {
		return nil, false
	}

	data, err := cs.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			cs.recordFailure()
		}
		return nil, false
	}
	cs.recordSuccess()

	var analysis elliott.Analysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil, false
	}
	return &analysis, true
}

// SetAnalysis stores an analysis under the given key. Failures degrade the
// service; they are never surfaced to the caller.
func (cs *CacheService) SetAnalysis(ctx context.Context, key string, analysis *elliott.Analysis) {
	cs.checkHealth()

	if !cs.IsHealthy() {
		return
	}

	data, err := json.Marshal(analysis)
	if err != nil {
		return
	}
	if err := cs.client.Set(ctx, key, data, cs.ttl).Err(); err != nil {
		cs.recordFailure()
		return
	}
	cs.recordSuccess()
}

// checkHealth re-pings Redis in the background once checkInterval has
// elapsed with the breaker open. A successful ping closes the breaker,
// so a transient outage only disables the cache until the next check.
func (cs *CacheService) checkHealth() {
	cs.mu.RLock()
	shouldCheck := !cs.healthy && time.Since(cs.lastCheck) >= cs.checkInterval
	cs.mu.RUnlock()

	if !shouldCheck {
		return
	}

	cs.mu.Lock()
	cs.lastCheck = time.Now()
	cs.mu.Unlock()

	go func() {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := cs.client.Ping(pingCtx).Err(); err == nil {
			cs.recordSuccess()
		}
	}()
}

// Close releases the Redis connection
func (cs *CacheService) Close() error {
	return cs.client.Close()
}

func (cs *CacheService) recordFailure() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.failureCount++
	if cs.failureCount >= cs.maxFailures {
		cs.healthy = false
	}
}

func (cs *CacheService) recordSuccess() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.healthy = true
	cs.failureCount = 0
	cs.lastCheck = time.Now()
}
