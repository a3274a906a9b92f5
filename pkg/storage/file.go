package storage

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"
)

// FileStore keeps each document as a JSON file named after its id.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// fileRecord embeds the snapshot as raw JSON so stored files stay
// readable.
type fileRecord struct {
	Document
	Snapshot json.RawMessage `json:"snapshot"`
}

// NewFileStore creates a file-based document store.
// If baseDir is empty, defaults to ~/.config/wiregraph/documents/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("get config dir: %w", err)
		}
		baseDir = filepath.Join(dir, "wiregraph", "documents")
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create document dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Create(ctx context.Context, name string, snapshot []byte) (*Document, error) {
	doc := newDocument(name, snapshot)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *FileStore) Put(ctx context.Context, doc *Document) error {
	if err := CheckID(doc.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if old, err := s.read(doc.ID); err == nil {
		doc.CreatedAt = old.CreatedAt
	} else if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	return s.write(doc)
}

func (s *FileStore) Get(ctx context.Context, id string) (*Document, error) {
	if err := CheckID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(id)
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := CheckID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove document file: %w", err)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read document dir: %w", err)
	}
	var docs []Document
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		doc, err := s.read(name[:len(name)-len(".json")])
		if err != nil {
			continue
		}
		doc.Snapshot = nil
		docs = append(docs, *doc)
	}
	slices.SortFunc(docs, func(a, b Document) int {
		return cmp.Or(b.UpdatedAt.Compare(a.UpdatedAt), cmp.Compare(a.ID, b.ID))
	})
	return docs, nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for document files.
func (s *FileStore) Path() string { return s.baseDir }

func (s *FileStore) read(id string) (*Document, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read document file: %w", err)
	}
	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse document %s: %w", id, err)
	}
	doc := rec.Document
	doc.Snapshot = []byte(rec.Snapshot)
	return &doc, nil
}

func (s *FileStore) write(doc *Document) error {
	rec := fileRecord{Document: *doc, Snapshot: json.RawMessage(doc.Snapshot)}
	if len(rec.Snapshot) == 0 {
		rec.Snapshot = json.RawMessage("null")
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if err := os.WriteFile(s.path(doc.ID), data, 0o600); err != nil {
		return fmt.Errorf("write document file: %w", err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
