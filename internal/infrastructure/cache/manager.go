package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"chefmind/internal/infrastructure/config"
	"chefmind/internal/pkg/common"

	"go.uber.org/zap"
)

// Manager is an in-memory TTL cache for external catalog payloads. The free
// catalog is rate-limited and detail lookups fan out one call per id, so repeated
// filter/lookup responses are worth keeping for a while.
type Manager struct {
	config *config.Config
	mu     sync.RWMutex
	store  map[string]cacheEntry
	stats  cacheStats
}

type cacheEntry struct {
	value       string
	expiresAt   time.Time
	createdAt   time.Time
	lastAccess  time.Time
	accessCount int
}

type cacheStats struct {
	hits      int64
	misses    int64
	evictions int64
	errors    int64
}

// NewManager creates a cache manager, or nil when caching is disabled.
func NewManager(cfg *config.Config) *Manager {
	if !cfg.Cache.Enabled {
		common.LogInfo("Cache disabled")
		return nil
	}

	m := &Manager{
		config: cfg,
		store:  make(map[string]cacheEntry),
		stats:  cacheStats{},
	}

	go m.startCleanup()

	common.LogInfo("cache manager initialized",
		zap.Int("max_size", cfg.Cache.MaxSize),
		zap.Duration("ttl", cfg.Cache.TTL),
		zap.Duration("cleanup_interval", cfg.Cache.CleanupInterval),
	)

	return m
}

// Get returns the cached value for namespace+key, or ErrCacheDisabled on a miss.
func (m *Manager) Get(ctx context.Context, namespace, key string) (string, error) {
	if m == nil || !m.config.Cache.Enabled {
		return "", common.ErrCacheDisabled
	}

	cacheKey := m.generateKey(namespace, key)

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.store[cacheKey]
	if !exists {
		m.stats.misses++
		common.LogCacheMiss(namespace, key)
		return "", common.ErrCacheDisabled
	}

	if time.Now().After(entry.expiresAt) {
		delete(m.store, cacheKey)
		m.stats.evictions++
		m.stats.misses++
		common.LogCacheMiss(namespace, key)
		return "", common.ErrCacheDisabled
	}

	entry.lastAccess = time.Now()
	entry.accessCount++
	m.store[cacheKey] = entry
	m.stats.hits++

	common.LogCacheHit(namespace, key)
	return entry.value, nil
}

// Set stores a value under namespace+key.
func (m *Manager) Set(ctx context.Context, namespace, key, value string) error {
	if m == nil || !m.config.Cache.Enabled {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.store) >= m.config.Cache.MaxSize {
		evicted := m.cleanupLocked()
		common.LogDebug("cache cleanup ran", zap.Int("evicted", evicted))

		if len(m.store) >= m.config.Cache.MaxSize {
			m.evictLRULocked()
		}

		if len(m.store) >= m.config.Cache.MaxSize {
			m.stats.errors++
			common.LogWarn("cache full", zap.Int("size", len(m.store)))
			return common.ErrCacheFull
		}
	}

	now := time.Now()
	m.store[m.generateKey(namespace, key)] = cacheEntry{
		value:       value,
		expiresAt:   now.Add(m.config.Cache.TTL),
		createdAt:   now,
		lastAccess:  now,
		accessCount: 0,
	}

	return nil
}

func (m *Manager) generateKey(namespace, key string) string {
	hash := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%s:%s", namespace, hex.EncodeToString(hash[:]))
}

func (m *Manager) startCleanup() {
	ticker := time.NewTicker(m.config.Cache.CleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		m.mu.Lock()
		m.cleanupLocked()
		m.mu.Unlock()
	}
}

func (m *Manager) cleanupLocked() int {
	now := time.Now()
	count := 0

	for key, entry := range m.store {
		if now.After(entry.expiresAt) {
			delete(m.store, key)
			count++
			m.stats.evictions++
		}
	}

	return count
}

// evictLRULocked removes the least-recently-used entry.
func (m *Manager) evictLRULocked() {
	var oldestKey string
	var oldestAccess time.Time
	var lowestAccessCount int

	for key, entry := range m.store {
		if oldestKey == "" ||
			entry.accessCount < lowestAccessCount ||
			(entry.accessCount == lowestAccessCount && entry.lastAccess.Before(oldestAccess)) {
			oldestKey = key
			oldestAccess = entry.lastAccess
			lowestAccessCount = entry.accessCount
		}
	}

	if oldestKey != "" {
		delete(m.store, oldestKey)
		m.stats.evictions++
	}
}

// GetStats returns cache statistics.
func (m *Manager) GetStats() map[string]interface{} {
	if m == nil {
		return map[string]interface{}{"enabled": false}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	total := m.stats.hits + m.stats.misses
	hitRatio := 0.0
	if total > 0 {
		hitRatio = float64(m.stats.hits) / float64(total)
	}

	return map[string]interface{}{
		"size":      len(m.store),
		"max_size":  m.config.Cache.MaxSize,
		"hits":      m.stats.hits,
		"misses":    m.stats.misses,
		"evictions": m.stats.evictions,
		"errors":    m.stats.errors,
		"hit_ratio": hitRatio,
	}
}

// Close clears the cache.
func (m *Manager) Close() error {
	if m == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.store = make(map[string]cacheEntry)
	common.LogInfo("cache manager closed",
		zap.Int64("hits", m.stats.hits),
		zap.Int64("misses", m.stats.misses),
		zap.Int64("evictions", m.stats.evictions),
	)
	return nil
}
