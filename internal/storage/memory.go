package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"
)

// MemoryStore keeps objects in process memory. Signed URLs point at
// baseURL and carry the expiry as a query parameter; they are not
// cryptographically signed. Used by tests and local runs without a bucket.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	baseURL string
}

// NewMemory creates an empty MemoryStore.
func NewMemory(baseURL string) *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte), baseURL: baseURL}
}

func (m *MemoryStore) Put(_ context.Context, name string, r io.Reader, _ string) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}
	m.mu.Lock()
	m.objects[name] = buf.Bytes()
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Size(_ context.Context, name string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.objects[name]
	if !ok {
		return 0, fmt.Errorf("stat %s: object not found", name)
	}
	return int64(len(b)), nil
}

func (m *MemoryStore) SignedURL(_ context.Context, name string, ttl time.Duration) (string, error) {
	m.mu.RLock()
	_, ok := m.objects[name]
	m.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("sign %s: object not found", name)
	}
	q := url.Values{"expires": {fmt.Sprint(time.Now().Add(ttl).Unix())}}
	return m.baseURL + "/" + url.PathEscape(name) + "?" + q.Encode(), nil
}

// Get returns a copy of the stored bytes.
func (m *MemoryStore) Get(name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.objects[name]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), b...), true
}
