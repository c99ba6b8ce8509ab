package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/qimenscout/covergen/internal/util"
)

// Local serves refs straight off the filesystem. It exists so the service
// runs without a bucket configured: the same resolver and cache code paths
// work against plain directories.
type Local struct{}

func (Local) List(_ context.Context, dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (Local) Download(_ context.Context, ref, dest string) error {
	data, err := os.ReadFile(ref)
	if err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}

func (Local) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	if err := util.EnsureDir(filepath.Dir(key)); err != nil {
		return "", err
	}
	if err := os.WriteFile(key, data, 0o644); err != nil {
		return "", err
	}
	return key, nil
}
