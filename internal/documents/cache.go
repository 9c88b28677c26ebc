package documents

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/spigell/skillbridge-assistant/internal/logger"
	"github.com/spigell/skillbridge-assistant/internal/metrics"
)

// Cache holds the loaded documents for the whole process. It is populated on
// first use and concurrent first uses share a single load.
type Cache struct {
	loader  Loader
	logger  *zap.Logger
	metrics *metrics.Metrics

	group singleflight.Group

	mu     sync.RWMutex
	docs   []Document
	loaded bool
	gen    uint64
}

// NewCache creates an empty cache over loader.
func NewCache(loader Loader, log *zap.Logger, m *metrics.Metrics) *Cache {
	return &Cache{loader: loader, logger: logger.OrNop(log), metrics: m}
}

// Documents returns the cached documents, loading them if needed. An empty
// load is not cached so the next call tries again.
func (c *Cache) Documents(ctx context.Context) ([]Document, error) {
	c.mu.RLock()
	if c.loaded {
		docs := c.docs
		c.mu.RUnlock()
		return docs, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do("load", func() (any, error) {
		c.mu.RLock()
		if c.loaded {
			docs := c.docs
			c.mu.RUnlock()
			return docs, nil
		}
		gen := c.gen
		c.mu.RUnlock()

		// The load is shared by every waiting caller, so one caller going
		// away must not cancel it for the others.
		docs, err := c.loader.LoadAll(context.WithoutCancel(ctx))
		if err != nil {
			c.metrics.ObserveDocumentLoad(metrics.LoadError)
			return nil, err
		}
		if len(docs) == 0 {
			c.metrics.ObserveDocumentLoad(metrics.LoadEmpty)
			return docs, nil
		}
		c.metrics.ObserveDocumentLoad(metrics.LoadOK)

		c.mu.Lock()
		// An invalidation during the load makes this result stale.
		if c.gen == gen {
			c.docs = docs
			c.loaded = true
		}
		c.mu.Unlock()

		return docs, nil
	})
	if err != nil {
		c.logger.Warn("failed to load documents", zap.Error(err))
		return nil, err
	}

	docs, _ := v.([]Document)
	return docs, nil
}

// Invalidate drops the cached documents; the next call reloads them.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.docs = nil
	c.loaded = false
	c.gen++
	c.mu.Unlock()

	c.group.Forget("load")
	c.logger.Debug("document cache invalidated")
}
