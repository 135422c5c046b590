package storage

import (
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Stats 存储统计信息
type Stats struct {
	Objects      int64
	TotalSize    int64
	LastModified time.Time
	ByExtension  map[string]int64
}

// Summarize 统计对象数量、总大小和文件类型分布
func Summarize(objects []ObjectInfo) Stats {
	stats := Stats{ByExtension: make(map[string]int64)}
	for _, obj := range objects {
		stats.Objects++
		stats.TotalSize += obj.Size
		if obj.LastModified.After(stats.LastModified) {
			stats.LastModified = obj.LastModified
		}
		stats.ByExtension[extensionOf(obj.Key)]++
	}
	return stats
}

// Extensions returns the extensions seen, most frequent first.
func (s Stats) Extensions() []string {
	exts := make([]string, 0, len(s.ByExtension))
	for ext := range s.ByExtension {
		exts = append(exts, ext)
	}
	sort.Slice(exts, func(i, j int) bool {
		if s.ByExtension[exts[i]] != s.ByExtension[exts[j]] {
			return s.ByExtension[exts[i]] > s.ByExtension[exts[j]]
		}
		return exts[i] < exts[j]
	})
	return exts
}

func extensionOf(key string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(key), "."))
	if ext == "" {
		return "unknown"
	}
	return ext
}
