package artwork

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"gamedex/internal/logging"
)

type cacheFile struct {
	path    string
	size    int64
	modTime time.Time
}

// Sweep enforces the file-count and byte budgets. Both passes operate
// on one directory snapshot taken up front; files vanishing between
// stat and unlink are tolerated. Deletion is best-effort and never
// fatal.
func (c *Cache) Sweep() {
	files, totalBytes := c.snapshotDir()
	if files == nil {
		return
	}

	// Oldest last-access first.
	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.Before(files[j].modTime)
	})

	if c.maxFiles > 0 && len(files) > c.maxFiles {
		target := c.maxFiles - sweepFloor
		if target < 0 {
			target = 0
		}
		removed := 0
		for i := 0; i < len(files) && len(files)-removed > target; i++ {
			if c.remove(files[i]) {
				totalBytes -= files[i].size
				files[i].size = 0
				removed++
			}
		}
		c.logger.Info("cache sweep evicted by count",
			logging.Int("removed", removed),
			logging.Int("target", target))
	}

	if c.maxBytes > 0 && totalBytes > c.maxBytes {
		target := int64(float64(c.maxBytes) * byteTarget)
		removed := 0
		for i := 0; i < len(files) && totalBytes > target; i++ {
			if files[i].size == 0 {
				continue
			}
			if c.remove(files[i]) {
				totalBytes -= files[i].size
				removed++
			}
		}
		c.logger.Info("cache sweep evicted by size",
			logging.Int("removed", removed),
			logging.Int64("bytes", totalBytes))
	}
}

// snapshotDir stats the cache directory exactly once per sweep.
// Usage reports the number of cached covers and their combined size in
// bytes, from a fresh directory snapshot.
func (c *Cache) Usage() (int, int64) {
	files, totalBytes := c.snapshotDir()
	return len(files), totalBytes
}

func (c *Cache) snapshotDir() ([]cacheFile, int64) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		c.logger.Warn("read cache directory", logging.Error(err))
		return nil, 0
	}

	files := make([]cacheFile, 0, len(entries))
	var total int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(c.dir, entry.Name())
		if path == c.placeholder {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, cacheFile{path: path, size: info.Size(), modTime: info.ModTime()})
		total += info.Size()
	}
	return files, total
}

func (c *Cache) remove(file cacheFile) bool {
	if err := os.Remove(file.path); err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("sweep delete failed", logging.String("path", file.path), logging.Error(err))
			return false
		}
	}
	return true
}
