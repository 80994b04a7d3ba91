package blob

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"grantflow/pkg/platform/sentinel"
)

type entry struct {
	data        []byte
	contentType string
}

// InMemoryStore keeps blobs in process memory. Suitable for tests and
// single-node deployments; references look like "mem://<uuid>/<filename>".
type InMemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{blobs: make(map[string]entry)}
}

func (s *InMemoryStore) Put(_ context.Context, filename, contentType string, data []byte) (string, error) {
	ref := fmt.Sprintf("mem://%s/%s", uuid.NewString(), filename)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[ref] = entry{data: append([]byte(nil), data...), contentType: contentType}
	return ref, nil
}

func (s *InMemoryStore) Get(_ context.Context, ref string) ([]byte, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.blobs[ref]
	if !ok {
		return nil, "", sentinel.ErrNotFound
	}
	return append([]byte(nil), e.data...), e.contentType, nil
}

func (s *InMemoryStore) Delete(_ context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[ref]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.blobs, ref)
	return nil
}
