// Package memory implements an in-memory archive Store for tests.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"ideospace/internal/archive/store"
)

type object struct {
	info store.Info
	data []byte
}

// Store implements store.Store backed by process memory.
type Store struct {
	mu   sync.RWMutex
	objs map[string]object
	now  func() time.Time
}

// New returns an empty in-memory archive.
func New() *Store {
	return &Store{objs: make(map[string]object), now: func() time.Time { return time.Now().UTC() }}
}

// Driver returns the archive driver identifier.
func (s *Store) Driver() store.Driver { return store.DriverMemory }

// Put stores a new object; it fails with store.ErrExists if key is taken.
func (s *Store) Put(_ context.Context, key string, r io.Reader, opts store.PutOptions) (store.Info, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return store.Info{}, fmt.Errorf("read %s: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.objs[key]; exists {
		return store.Info{}, fmt.Errorf("put %s: %w", key, store.ErrExists)
	}
	info := store.Info{Key: key, Size: int64(len(b)), ContentType: opts.ContentType, Metadata: maps.Clone(opts.Metadata), LastModified: s.now()}
	s.objs[key] = object{info: info, data: b}
	return cloneInfo(info), nil
}

// Get returns object metadata and a reader over a copy of its content.
func (s *Store) Get(_ context.Context, key string) (store.Info, io.ReadCloser, error) {
	s.mu.RLock()
	obj, ok := s.objs[key]
	s.mu.RUnlock()
	if !ok {
		return store.Info{}, nil, fmt.Errorf("get %s: %w", key, store.ErrNotFound)
	}
	return cloneInfo(obj.info), io.NopCloser(bytes.NewReader(bytes.Clone(obj.data))), nil
}

// Delete removes the object, reporting whether it existed.
func (s *Store) Delete(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objs[key]
	delete(s.objs, key)
	return ok, nil
}

// List returns every object whose key starts with prefix, sorted by key.
func (s *Store) List(_ context.Context, prefix string) ([]store.Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.Info, 0, len(s.objs))
	for k, v := range s.objs {
		if strings.HasPrefix(k, prefix) {
			out = append(out, cloneInfo(v.info))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func cloneInfo(in store.Info) store.Info {
	in.Metadata = maps.Clone(in.Metadata)
	return in
}
