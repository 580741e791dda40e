package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// CacheResolver resolves dataset ids against a local download cache laid out
// as <root>/<owner>/<dataset>, optionally with versions/<n> subdirectories.
// Archives found in the bundle are unpacked in place.
type CacheResolver struct {
	Root   string
	Logger *zap.Logger
}

func (c CacheResolver) Resolve(ctx context.Context, datasetID string) (string, error) {
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if c.Root == "" {
		return "", fmt.Errorf("bundle root is not configured")
	}
	id := strings.Trim(datasetID, "/")
	if id == "" || strings.Contains(id, "..") {
		return "", fmt.Errorf("invalid dataset id %q", datasetID)
	}

	dir := filepath.Join(c.Root, filepath.FromSlash(id))
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("dataset %s: %w", id, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("dataset %s: %s is not a directory", id, dir)
	}
	if v, ok := latestVersion(dir); ok {
		dir = v
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		unpacked, err := unpackArchive(path)
		if err != nil {
			logger.Warn("cannot unpack bundle archive", zap.String("file", e.Name()), zap.Error(err))
			continue
		}
		if unpacked != "" {
			logger.Debug("bundle archive unpacked", zap.String("file", e.Name()), zap.String("to", filepath.Base(unpacked)))
		}
	}
	return dir, nil
}

// latestVersion picks the highest numeric subdirectory of dir/versions.
func latestVersion(dir string) (string, bool) {
	entries, err := os.ReadDir(filepath.Join(dir, "versions"))
	if err != nil {
		return "", false
	}
	best := -1
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if n, err := strconv.Atoi(e.Name()); err == nil && n > best {
			best = n
		}
	}
	if best < 0 {
		return "", false
	}
	return filepath.Join(dir, "versions", strconv.Itoa(best)), true
}
