// Package cache provides on-disk storage for the speech subsystem: a
// compressed cache for synthesized audio and a plain-file store for
// downloaded neural voice models.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// DiskCache stores byte blobs on disk, optionally zstd-compressed, and
// evicts least-recently-used entries once capacity is exceeded.
type DiskCache struct {
	basePath string
	capacity int64 // max bytes on disk; 0 means unlimited
	size     int64

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	index map[string]*diskEntry
	mu    sync.Mutex

	stats Stats
}

// Stats counts cache activity.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int64
	Capacity  int64
}

type diskEntry struct {
	path       string
	size       int64
	lastAccess time.Time
	compressed bool
}

// NewDiskCache opens (or creates) a disk cache rooted at basePath.
// compressionLevel <= 0 disables compression.
func NewDiskCache(basePath string, capacity int64, compressionLevel int) (*DiskCache, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dc := &DiskCache{
		basePath: basePath,
		capacity: capacity,
		index:    make(map[string]*diskEntry),
		stats:    Stats{Capacity: capacity},
	}

	if compressionLevel > 0 {
		var err error
		dc.encoder, err = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(compressionLevel)))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
	}

	// Entries written under an earlier compression setting must stay
	// readable, so the decoder exists even when compression is off.
	var err error
	dc.decoder, err = zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	if err := dc.loadIndex(); err != nil {
		return nil, err
	}
	return dc, nil
}

// loadIndex rebuilds the in-memory index from files already on disk.
func (dc *DiskCache) loadIndex() error {
	entries, err := os.ReadDir(dc.basePath)
	if err != nil {
		return fmt.Errorf("failed to read cache directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		name := e.Name()
		key := name
		compressed := false
		if filepath.Ext(name) == ".zst" {
			key = name[:len(name)-len(".zst")]
			compressed = true
		}
		dc.index[key] = &diskEntry{
			path:       filepath.Join(dc.basePath, name),
			size:       info.Size(),
			lastAccess: info.ModTime(),
			compressed: compressed,
		}
		dc.size += info.Size()
	}
	dc.stats.Size = dc.size
	return nil
}

// Key derives a stable cache key from its parts.
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:32]
}

// Get retrieves a blob. The boolean reports whether the key was present and
// readable.
func (dc *DiskCache) Get(key string) ([]byte, bool) {
	dc.mu.Lock()
	entry, ok := dc.index[key]
	if !ok {
		dc.stats.Misses++
		dc.mu.Unlock()
		return nil, false
	}
	entry.lastAccess = time.Now()
	path, compressed := entry.path, entry.compressed
	dc.stats.Hits++
	dc.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		// Index is stale; drop the entry.
		dc.Delete(key)
		return nil, false
	}
	if compressed {
		out, err := dc.decoder.DecodeAll(data, nil)
		if err != nil {
			dc.Delete(key)
			return nil, false
		}
		return out, true
	}
	return data, true
}

// Put stores a blob, evicting old entries if needed.
func (dc *DiskCache) Put(key string, data []byte) error {
	stored := data
	name := key
	compressed := false
	if dc.encoder != nil {
		stored = dc.encoder.EncodeAll(data, nil)
		name += ".zst"
		compressed = true
	}

	path := filepath.Join(dc.basePath, name)
	if err := os.WriteFile(path, stored, 0o644); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	dc.mu.Lock()
	defer dc.mu.Unlock()
	if old, ok := dc.index[key]; ok {
		dc.size -= old.size
		if old.path != path {
			os.Remove(old.path)
		}
	}
	dc.index[key] = &diskEntry{
		path:       path,
		size:       int64(len(stored)),
		lastAccess: time.Now(),
		compressed: compressed,
	}
	dc.size += int64(len(stored))
	dc.evictLocked()
	dc.stats.Size = dc.size
	return nil
}

// evictLocked removes least-recently-used entries until size fits capacity.
func (dc *DiskCache) evictLocked() {
	if dc.capacity <= 0 || dc.size <= dc.capacity {
		return
	}
	type kv struct {
		key   string
		entry *diskEntry
	}
	entries := make([]kv, 0, len(dc.index))
	for k, e := range dc.index {
		entries = append(entries, kv{k, e})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].entry.lastAccess.Before(entries[j].entry.lastAccess)
	})
	for _, e := range entries {
		if dc.size <= dc.capacity {
			break
		}
		os.Remove(e.entry.path)
		dc.size -= e.entry.size
		delete(dc.index, e.key)
		dc.stats.Evictions++
	}
}

// Delete removes a single entry. Missing keys are a no-op.
func (dc *DiskCache) Delete(key string) error {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	entry, ok := dc.index[key]
	if !ok {
		return nil
	}
	os.Remove(entry.path)
	dc.size -= entry.size
	delete(dc.index, key)
	dc.stats.Size = dc.size
	return nil
}

// Clear removes every entry.
func (dc *DiskCache) Clear() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	for k, e := range dc.index {
		os.Remove(e.path)
		delete(dc.index, k)
	}
	dc.size = 0
	dc.stats.Size = 0
	return nil
}

// Size returns the current on-disk size in bytes.
func (dc *DiskCache) Size() int64 {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	return dc.size
}

// Stats returns a snapshot of cache counters.
func (dc *DiskCache) Stats() Stats {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	return dc.stats
}
