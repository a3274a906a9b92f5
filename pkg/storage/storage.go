// Package storage persists schematic snapshots as named documents.
//
// Three backends implement [Store]:
//   - [MemoryStore]: in-process, for tests and the stateless API mode
//   - [FileStore]: one JSON file per document, for the CLI
//   - [MongoStore]: a MongoDB collection, for multi-instance API servers
//
// Documents are addressed by UUID. The snapshot itself is stored verbatim,
// as produced by [io.WriteJSON]; the store never decodes it.
//
// # Usage
//
//	store, err := storage.NewFileStore("")  // ~/.config/wiregraph/documents
//	doc, err := store.Create(ctx, "amplifier", snapshot)
//	...
//	doc, err = store.Get(ctx, doc.ID)
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for document operations.
var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrInvalidID is returned for ids that are not UUIDs.
	ErrInvalidID = errors.New("invalid document id")
)

// Document is one stored schematic.
type Document struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Snapshot  []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is the interface for document storage backends.
type Store interface {
	// Create stores a new document under a fresh id.
	Create(ctx context.Context, name string, snapshot []byte) (*Document, error)

	// Put creates or replaces the document doc.ID. CreatedAt is kept
	// when the document exists.
	Put(ctx context.Context, doc *Document) error

	// Get returns ErrNotFound if the document doesn't exist.
	Get(ctx context.Context, id string) (*Document, error)

	// Delete is a no-op for missing documents.
	Delete(ctx context.Context, id string) error

	// List returns all documents without their snapshots, most recently
	// updated first.
	List(ctx context.Context) ([]Document, error)

	Close() error
}

// NewID returns a fresh document id.
func NewID() string { return uuid.NewString() }

// CheckID returns ErrInvalidID unless id is a UUID.
func CheckID(id string) error {
	if err := uuid.Validate(id); err != nil {
		return ErrInvalidID
	}
	return nil
}

func newDocument(name string, snapshot []byte) *Document {
	now := time.Now().UTC()
	return &Document{
		ID:        NewID(),
		Name:      name,
		Snapshot:  snapshot,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
