package render

import (
	"context"
	"image"
	"log/slog"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	rp "github.com/rmmh/blockfaces/go/resourcepack"
)

type cacheEntry struct {
	val any
	err error
}

// cachedSource remembers every definition it loads. Concurrent requests for
// the same key share one load. Failures are remembered too, except for
// cancellations, which belong to the caller and not to the definition.
type cachedSource struct {
	src    rp.Source
	logger *slog.Logger

	group   singleflight.Group
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

func newCachedSource(src rp.Source, logger *slog.Logger) *cachedSource {
	return &cachedSource{src: src, logger: logger, entries: map[string]cacheEntry{}}
}

func (c *cachedSource) lookup(key string) (cacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

func (c *cachedSource) load(key string, fetch func() (any, error)) (any, error) {
	if e, ok := c.lookup(key); ok {
		return e.val, e.err
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if e, ok := c.lookup(key); ok {
			return e.val, e.err
		}
		c.logger.Debug("loading definition", "key", key)
		val, err := fetch()
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			c.mu.Lock()
			c.entries[key] = cacheEntry{val, err}
			c.mu.Unlock()
		}
		return val, err
	})
	return v, err
}

func cached[T any](c *cachedSource, key string, fetch func() (T, error)) (T, error) {
	v, err := c.load(key, func() (any, error) { return fetch() })
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func (c *cachedSource) BlockNames(ctx context.Context) ([]string, error) {
	return c.src.BlockNames(ctx)
}

func (c *cachedSource) BlockState(ctx context.Context, name string) (*rp.BlockState, error) {
	return cached(c, "blockstate:"+rp.ModelName(name), func() (*rp.BlockState, error) {
		return c.src.BlockState(ctx, name)
	})
}

func (c *cachedSource) Model(ctx context.Context, name string) (*rp.Model, error) {
	return cached(c, "model:"+rp.ModelName(name), func() (*rp.Model, error) {
		return c.src.Model(ctx, name)
	})
}

func (c *cachedSource) Texture(ctx context.Context, path string) (image.Image, error) {
	return cached(c, "texture:"+path, func() (image.Image, error) {
		return c.src.Texture(ctx, path)
	})
}

func (c *cachedSource) TextureMeta(ctx context.Context, path string) (*rp.TextureMeta, error) {
	return cached(c, "mcmeta:"+path, func() (*rp.TextureMeta, error) {
		return c.src.TextureMeta(ctx, path)
	})
}
