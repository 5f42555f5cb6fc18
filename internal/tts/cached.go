package tts

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/doc2convo/doc2convo/internal/cache"
)

// CachedBackend serves repeated requests from a clip cache. Cache errors
// never fail a synthesis.
type CachedBackend struct {
	Backend
	cache  cache.Cache
	logger *log.Logger
}

// NewCachedBackend wraps b with c.
func NewCachedBackend(b Backend, c cache.Cache, logger *log.Logger) *CachedBackend {
	if logger == nil {
		logger = log.Default()
	}
	return &CachedBackend{Backend: b, cache: c, logger: logger}
}

// Synthesize returns the cached clip for the request or calls the wrapped
// backend and stores its result.
func (c *CachedBackend) Synthesize(ctx context.Context, text, voice string, rate int) (*Speech, error) {
	info := c.Backend.Info()
	key := cache.Key(string(info.Name), voice, rate, text)

	if data, ok := c.cache.Get(key); ok {
		c.logger.Debug("Clip cache hit", "voice", voice)
		return &Speech{Data: data, Format: info.Format}, nil
	}

	speech, err := c.Backend.Synthesize(ctx, text, voice, rate)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Put(key, speech.Data); err != nil {
		c.logger.Debug("Failed to cache clip", "err", err)
	}
	return speech, nil
}

// Close closes the cache and the wrapped backend.
func (c *CachedBackend) Close() error {
	cerr := c.cache.Close()
	if err := c.Backend.Close(); err != nil {
		return err
	}
	return cerr
}
