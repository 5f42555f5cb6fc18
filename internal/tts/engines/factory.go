package engines

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/doc2convo/doc2convo/internal/cache"
	"github.com/doc2convo/doc2convo/internal/tts"
)

// Config selects and configures a backend.
type Config struct {
	Backend tts.BackendType
	Edge    EdgeConfig
	Orpheus OrpheusConfig
	Google  GoogleConfig
	Cache   CacheConfig
	Logger  *log.Logger
}

// CacheConfig enables the clip cache in front of the backend.
type CacheConfig struct {
	Enabled  bool
	Dir      string
	Capacity int64 // bytes
}

// New creates the configured backend and validates its dependencies.
func New(cfg Config) (tts.Backend, error) {
	var b tts.Backend
	switch cfg.Backend {
	case tts.BackendEdge:
		b = NewEdgeBackend(cfg.Edge)
	case tts.BackendOrpheus:
		b = NewOrpheusBackend(cfg.Orpheus)
	case tts.BackendGoogle:
		b = NewGoogleBackend(cfg.Google)
	case tts.BackendMock:
		b = NewMockBackend()
	case tts.BackendNone:
		return nil, tts.ErrNoBackendConfigured
	default:
		return nil, fmt.Errorf("%w: %s", tts.ErrInvalidBackend, cfg.Backend)
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}

	if !cfg.Cache.Enabled || cfg.Backend == tts.BackendMock {
		return b, nil
	}

	dc, err := cache.NewDiskCache(cache.Options{
		Dir:              filepath.Join(cfg.Cache.Dir, string(cfg.Backend)),
		Capacity:         cfg.Cache.Capacity,
		CompressionLevel: cache.DefaultCompressionLevel,
		Logger:           cfg.Logger,
	})
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("failed to open clip cache: %w", err)
	}
	return tts.NewCachedBackend(b, dc, cfg.Logger), nil
}
