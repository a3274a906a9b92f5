package storage

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore keeps documents in a map. Safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]Document)}
}

func (s *MemoryStore) Create(ctx context.Context, name string, snapshot []byte) (*Document, error) {
	doc := newDocument(name, slices.Clone(snapshot))
	s.mu.Lock()
	s.docs[doc.ID] = *doc
	s.mu.Unlock()
	return doc, nil
}

func (s *MemoryStore) Put(ctx context.Context, doc *Document) error {
	if err := CheckID(doc.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if old, ok := s.docs[doc.ID]; ok {
		doc.CreatedAt = old.CreatedAt
	} else if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	stored := *doc
	stored.Snapshot = slices.Clone(doc.Snapshot)
	s.docs[doc.ID] = stored
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Document, error) {
	if err := CheckID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	doc.Snapshot = slices.Clone(doc.Snapshot)
	return &doc, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := CheckID(id); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.docs, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]Document, 0, len(s.docs))
	for _, d := range s.docs {
		d.Snapshot = nil
		docs = append(docs, d)
	}
	slices.SortFunc(docs, func(a, b Document) int {
		return cmp.Or(b.UpdatedAt.Compare(a.UpdatedAt), cmp.Compare(a.ID, b.ID))
	})
	return docs, nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
