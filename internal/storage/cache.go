package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// Cache materializes remote refs into a process-local download directory.
// Entries are keyed by basename and never invalidated: a re-uploaded blob
// with the same name keeps serving the first downloaded copy for the life
// of the process.
type Cache struct {
	store Store

	mu  sync.Mutex
	dir string
}

func NewCache(store Store) *Cache {
	return &Cache{store: store}
}

// Materialize returns a locally readable path for ref. Local refs pass
// through untouched; remote refs are downloaded once into the cache dir,
// created lazily on first use.
func (c *Cache) Materialize(ctx context.Context, ref string) (string, error) {
	if !IsRemote(ref) {
		return ref, nil
	}
	_, key, err := ParseRef(ref)
	if err != nil {
		return "", err
	}

	dir, err := c.cacheDir()
	if err != nil {
		return "", err
	}
	local := filepath.Join(dir, filepath.Base(key))
	if _, err := os.Stat(local); err == nil {
		log.Debug().Str("ref", ref).Str("path", local).Msg("using cached asset")
		return local, nil
	}

	log.Info().Str("ref", ref).Str("path", local).Msg("downloading asset")
	if err := c.store.Download(ctx, ref, local); err != nil {
		return "", err
	}
	return local, nil
}

func (c *Cache) cacheDir() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dir != "" {
		return c.dir, nil
	}
	dir, err := os.MkdirTemp("", "cover_gen_cache_")
	if err != nil {
		return "", err
	}
	log.Info().Str("dir", dir).Msg("created asset cache directory")
	c.dir = dir
	return dir, nil
}
