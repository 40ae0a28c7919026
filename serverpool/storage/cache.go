package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/glls/rankPrivateVPNServers/internal/shared/logger"
	"github.com/glls/rankPrivateVPNServers/serverpool/model"
)

const cacheBaseName = ".pvpn_servers.json"

// Cache persists a retrieved server list between runs.
type Cache interface {
	// Load returns the cached snapshot and its retrieval time when one
	// exists and is younger than maxAge. A miss is (nil, zero, nil);
	// only I/O trouble on an existing file is an error.
	Load(maxAge time.Duration) (*model.ServerData, time.Time, error)
	Save(data *model.ServerData) error
}

// FileCache implements Cache as a JSON dot-file, by default under the OS
// temp directory.
type FileCache struct {
	filePath string
	mu       sync.RWMutex
}

// DefaultPath returns the cache file location used when none is configured.
func DefaultPath() string {
	return filepath.Join(os.TempDir(), cacheBaseName)
}

// NewFileCache creates a cache at filePath, or at DefaultPath when empty.
func NewFileCache(filePath string) *FileCache {
	if filePath == "" {
		filePath = DefaultPath()
	}
	return &FileCache{filePath: filePath}
}

// Load reads the cached snapshot when it is still fresh.
func (fc *FileCache) Load(maxAge time.Duration) (*model.ServerData, time.Time, error) {
	fc.mu.RLock()
	defer fc.mu.RUnlock()

	l := logger.WithComponent("ServerPool/Cache")

	info, err := os.Stat(fc.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, time.Time{}, nil
		}
		return nil, time.Time{}, err
	}

	mtime := info.ModTime()
	if time.Since(mtime) >= maxAge {
		l.Debug().Str("path", fc.filePath).Time("mtime", mtime).Msg("Cache file expired.")
		return nil, time.Time{}, nil
	}

	raw, err := os.ReadFile(fc.filePath)
	if err != nil {
		return nil, time.Time{}, err
	}

	var data model.ServerData
	if err := json.Unmarshal(raw, &data); err != nil {
		// A corrupt cache is treated as a miss so the caller falls
		// back to a fresh retrieval.
		l.Warn().Err(err).Str("path", fc.filePath).Msg("Failed to parse cache file, ignoring it.")
		return nil, time.Time{}, nil
	}

	l.Info().Int("count", len(data.Servers)).Str("path", fc.filePath).Msg("Loaded server list from cache.")
	return &data, mtime, nil
}

// Save writes the snapshot to the cache file.
func (fc *FileCache) Save(data *model.ServerData) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(fc.filePath, raw, 0644); err != nil {
		return err
	}

	l := logger.WithComponent("ServerPool/Cache")
	l.Debug().Int("count", len(data.Servers)).Str("path", fc.filePath).Msg("Saved server list to cache.")
	return nil
}
