package promptpick

import (
	"context"
	"sync"
	"time"
)

// MemoryStorage is an in-memory DocumentStorage.
// It is primarily intended for testing and development.
type MemoryStorage struct {
	mu        sync.RWMutex
	documents map[string][]*StoredDocument // name -> versions, newest first
	byID      map[DocumentID]*StoredDocument
	closed    bool
}

// MemoryStorageDriver is the driver for creating MemoryStorage instances.
type MemoryStorageDriver struct{}

func init() {
	RegisterStorageDriver(StorageDriverNameMemory, &MemoryStorageDriver{})
}

// Open creates a new MemoryStorage. The connection string is ignored.
func (d *MemoryStorageDriver) Open(connectionString string) (DocumentStorage, error) {
	return NewMemoryStorage(), nil
}

// NewMemoryStorage creates a new in-memory document storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		documents: make(map[string][]*StoredDocument),
		byID:      make(map[DocumentID]*StoredDocument),
	}
}

// Get retrieves the latest version of a document by name.
func (s *MemoryStorage) Get(ctx context.Context, name string) (*StoredDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	versions := s.documents[name]
	if len(versions) == 0 {
		return nil, NewStorageDocumentNotFoundError(name)
	}
	return copyStoredDocument(versions[0]), nil
}

// GetByID retrieves a specific document version by ID.
func (s *MemoryStorage) GetByID(ctx context.Context, id DocumentID) (*StoredDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	doc, ok := s.byID[id]
	if !ok {
		return nil, NewStorageDocumentNotFoundError(string(id))
	}
	return copyStoredDocument(doc), nil
}

// GetVersion retrieves a specific version of a document.
func (s *MemoryStorage) GetVersion(ctx context.Context, name string, version int) (*StoredDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	for _, doc := range s.documents[name] {
		if doc.Version == version {
			return copyStoredDocument(doc), nil
		}
	}
	return nil, NewStorageVersionNotFoundError(name, version)
}

// Save stores doc as the next version of its name.
func (s *MemoryStorage) Save(ctx context.Context, doc *StoredDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateDocumentName(doc.Name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}

	versions := s.documents[doc.Name]
	next := 1
	if len(versions) > 0 {
		next = versions[0].Version + 1
	}

	stored := prepareVersion(doc, next, time.Now())
	s.documents[doc.Name] = append([]*StoredDocument{stored}, versions...)
	s.byID[stored.ID] = stored
	return nil
}

// Delete removes all versions of a document.
func (s *MemoryStorage) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}

	versions, ok := s.documents[name]
	if !ok {
		return NewStorageDocumentNotFoundError(name)
	}
	for _, doc := range versions {
		delete(s.byID, doc.ID)
	}
	delete(s.documents, name)
	return nil
}

// DeleteVersion removes one version of a document.
func (s *MemoryStorage) DeleteVersion(ctx context.Context, name string, version int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}

	versions := s.documents[name]
	for i, doc := range versions {
		if doc.Version != version {
			continue
		}
		delete(s.byID, doc.ID)
		s.documents[name] = append(versions[:i:i], versions[i+1:]...)
		if len(s.documents[name]) == 0 {
			delete(s.documents, name)
		}
		return nil
	}
	return NewStorageVersionNotFoundError(name, version)
}

// List returns documents matching the query.
func (s *MemoryStorage) List(ctx context.Context, query *DocumentQuery) ([]*StoredDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}
	if query == nil {
		query = &DocumentQuery{}
	}

	var results []*StoredDocument
	for _, versions := range s.documents {
		if !query.IncludeAllVersions {
			versions = versions[:1]
		}
		for _, doc := range versions {
			if matchesDocumentQuery(doc, query) {
				results = append(results, copyStoredDocument(doc))
			}
		}
	}
	return sortAndPage(results, query), nil
}

// Exists checks if a document with the given name exists.
func (s *MemoryStorage) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, NewStorageClosedError()
	}
	return len(s.documents[name]) > 0, nil
}

// ListVersions returns all version numbers for a document, newest first.
func (s *MemoryStorage) ListVersions(ctx context.Context, name string) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	versions := s.documents[name]
	result := make([]int, len(versions))
	for i, doc := range versions {
		result[i] = doc.Version
	}
	return result, nil
}

// Close marks the storage as closed.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.documents = nil
	s.byID = nil
	return nil
}
