package cache

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zstd"
)

const (
	indexFile = "clips.index"

	// Clips smaller than this are stored raw.
	minCompressSize = 1024
)

// DefaultCompressionLevel is a balanced zstd level.
const DefaultCompressionLevel = 3

// Options configures a DiskCache.
type Options struct {
	Dir              string
	Capacity         int64 // bytes
	CompressionLevel int   // zstd level, 0 disables compression
	Logger           *log.Logger
}

// DiskCache is a size-bounded clip store with least-recently-used
// eviction. It is safe for concurrent use.
type DiskCache struct {
	dir      string
	capacity int64
	size     int64

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	index map[string]*entry
	stats Stats
	mu    sync.Mutex

	logger *log.Logger
}

type entry struct {
	Key          string
	File         string
	Size         int64 // on disk
	OriginalSize int64
	Created      time.Time
	LastAccess   time.Time
	Hits         int64
	Compressed   bool
}

// NewDiskCache opens or creates the cache in opts.Dir. An unreadable index
// is discarded rather than treated as an error.
func NewDiskCache(opts Options) (*DiskCache, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("cache directory not set")
	}
	if opts.Capacity <= 0 {
		return nil, fmt.Errorf("cache capacity must be positive, got %d", opts.Capacity)
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dc := &DiskCache{
		dir:      opts.Dir,
		capacity: opts.Capacity,
		index:    make(map[string]*entry),
		stats:    Stats{Capacity: opts.Capacity},
		logger:   opts.Logger,
	}
	if dc.logger == nil {
		dc.logger = log.Default()
	}

	if opts.CompressionLevel > 0 {
		var err error
		dc.encoder, err = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(opts.CompressionLevel)))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		dc.decoder, err = zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
	}

	if err := dc.loadIndex(); err != nil {
		dc.logger.Warn("Discarding clip cache index", "dir", dc.dir, "err", err)
		dc.index = make(map[string]*entry)
	}
	dc.dropMissing()

	return dc, nil
}

// Get returns the clip stored under key.
func (dc *DiskCache) Get(key string) ([]byte, bool) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	e, ok := dc.index[key]
	if !ok {
		dc.stats.Misses++
		return nil, false
	}

	data, err := os.ReadFile(e.File)
	if err == nil && e.Compressed {
		if dc.decoder == nil {
			err = fmt.Errorf("compressed entry but compression disabled")
		} else {
			data, err = dc.decoder.DecodeAll(data, nil)
		}
	}
	if err != nil {
		dc.logger.Debug("Dropping unreadable cache entry", "key", key[:12], "err", err)
		dc.remove(key, e)
		dc.stats.Misses++
		return nil, false
	}

	now := time.Now()
	e.LastAccess = now
	e.Hits++
	dc.stats.Hits++
	dc.stats.LastAccess = now

	return data, true
}

// Put stores value under key, evicting least recently used clips to stay
// within capacity.
func (dc *DiskCache) Put(key string, value []byte) error {
	data, compressed := value, false
	if dc.encoder != nil && len(value) > minCompressSize {
		if c := dc.encoder.EncodeAll(value, nil); len(c) < len(value) {
			data, compressed = c, true
		}
	}
	diskSize := int64(len(data))
	if diskSize > dc.capacity {
		return ErrItemTooLarge
	}

	dc.mu.Lock()
	defer dc.mu.Unlock()

	if old, ok := dc.index[key]; ok {
		dc.remove(key, old)
	}
	for dc.size+diskSize > dc.capacity && len(dc.index) > 0 {
		dc.evictOldest()
	}

	path := filepath.Join(dc.dir, key+".clip")
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	now := time.Now()
	dc.index[key] = &entry{
		Key:          key,
		File:         path,
		Size:         diskSize,
		OriginalSize: int64(len(value)),
		Created:      now,
		LastAccess:   now,
		Compressed:   compressed,
	}
	dc.size += diskSize

	return nil
}

// Delete removes key from the cache. Deleting a missing key is not an error.
func (dc *DiskCache) Delete(key string) error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if e, ok := dc.index[key]; ok {
		dc.remove(key, e)
	}
	return nil
}

// Clear removes every clip and persists the empty index.
func (dc *DiskCache) Clear() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	for key, e := range dc.index {
		dc.remove(key, e)
	}
	return dc.saveIndex()
}

// Prune removes clips created more than maxAge ago and returns how many
// were removed.
func (dc *DiskCache) Prune(maxAge time.Duration) int {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for key, e := range dc.index {
		if e.Created.Before(cutoff) {
			dc.remove(key, e)
			removed++
		}
	}
	return removed
}

// Stats returns a snapshot of the cache counters.
func (dc *DiskCache) Stats() Stats {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	s := dc.stats
	s.Size = dc.size
	s.ItemCount = int64(len(dc.index))
	if s.Hits+s.Misses > 0 {
		s.HitRate = float64(s.Hits) / float64(s.Hits+s.Misses)
	}
	return s
}

// Close persists the index.
func (dc *DiskCache) Close() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if dc.encoder != nil {
		_ = dc.encoder.Close()
	}
	if dc.decoder != nil {
		dc.decoder.Close()
	}
	return dc.saveIndex()
}

// remove deletes an entry. Callers hold mu.
func (dc *DiskCache) remove(key string, e *entry) {
	_ = os.Remove(e.File)
	dc.size -= e.Size
	delete(dc.index, key)
}

func (dc *DiskCache) evictOldest() {
	entries := make([]*entry, 0, len(dc.index))
	for _, e := range dc.index {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LastAccess.Before(entries[j].LastAccess)
	})

	oldest := entries[0]
	dc.remove(oldest.Key, oldest)
	dc.stats.Evictions++
	dc.stats.LastEvict = time.Now()
}

// dropMissing forgets index entries whose files are gone and recomputes
// the size.
func (dc *DiskCache) dropMissing() {
	dc.size = 0
	for key, e := range dc.index {
		if _, err := os.Stat(e.File); err != nil {
			delete(dc.index, key)
			continue
		}
		dc.size += e.Size
	}
}

func (dc *DiskCache) loadIndex() error {
	f, err := os.Open(filepath.Join(dc.dir, indexFile))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	return gob.NewDecoder(f).Decode(&dc.index)
}

func (dc *DiskCache) saveIndex() error {
	path := filepath.Join(dc.dir, indexFile)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	err = gob.NewEncoder(f).Encode(dc.index)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
