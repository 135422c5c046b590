package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryBackend keeps objects in memory. It is safe for concurrent use and is
// mostly useful in tests; setting FailWith makes every Store fail.
type MemoryBackend struct {
	mu       sync.RWMutex
	objects  map[string][]byte
	modTimes map[string]time.Time
	baseURL  string

	FailWith error
}

// NewMemoryBackend creates an empty backend. With a baseURL, Store returns
// absolute URLs like a bucket does; otherwise it returns /uploads/ references.
func NewMemoryBackend(baseURL string) *MemoryBackend {
	return &MemoryBackend{
		objects:  make(map[string][]byte),
		modTimes: make(map[string]time.Time),
		baseURL:  baseURL,
	}
}

func (m *MemoryBackend) Name() string { return "memory" }

func (m *MemoryBackend) Store(ctx context.Context, r io.Reader, name string) (string, error) {
	if m.FailWith != nil {
		return "", m.FailWith
	}
	safe := SanitizeFilename(name)
	if safe == "" {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}

	m.mu.Lock()
	m.objects[safe] = data
	m.modTimes[safe] = time.Now()
	m.mu.Unlock()

	if m.baseURL != "" {
		return strings.TrimRight(m.baseURL, "/") + "/" + safe, nil
	}
	return UploadsPrefix + safe, nil
}

func (m *MemoryBackend) Open(ctx context.Context, name string) (*Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[name]
	if !ok {
		return nil, ErrNotFound
	}
	return &Object{
		Content: nopSeekCloser{bytes.NewReader(data)},
		Size:    int64(len(data)),
		ModTime: m.modTimes[name],
	}, nil
}

func (m *MemoryBackend) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []ObjectInfo
	for key, data := range m.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		out = append(out, ObjectInfo{
			Key:          key,
			Size:         int64(len(data)),
			LastModified: m.modTimes[key],
			ContentType:  ContentTypeFor(key),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Len is the number of stored objects.
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

type nopSeekCloser struct {
	io.ReadSeeker
}

func (nopSeekCloser) Close() error { return nil }
