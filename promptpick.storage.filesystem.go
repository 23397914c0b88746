package promptpick

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// FilesystemStorage stores each document version as a JSON file.
//
// Directory structure:
//
//	<root>/
//	  <document-name>/
//	    v1.json
//	    v2.json
type FilesystemStorage struct {
	mu     sync.RWMutex
	root   string
	closed bool
}

// Filesystem storage error messages
const (
	ErrMsgInvalidStorageRoot = "storage root directory is required"
	ErrMsgCreateStorageDir   = "failed to create storage directory"
	ErrMsgReadStorageDir     = "failed to read storage directory"
	ErrMsgDeleteDocument     = "failed to delete document"
)

// FilesystemStorageDriver is the driver for creating FilesystemStorage instances.
type FilesystemStorageDriver struct{}

func init() {
	RegisterStorageDriver(StorageDriverNameFilesystem, &FilesystemStorageDriver{})
}

// Open creates a FilesystemStorage rooted at the connection string.
func (d *FilesystemStorageDriver) Open(connectionString string) (DocumentStorage, error) {
	return NewFilesystemStorage(connectionString)
}

// NewFilesystemStorage creates a filesystem storage. The root directory is
// created if it doesn't exist.
func NewFilesystemStorage(root string) (*FilesystemStorage, error) {
	if root == "" {
		return nil, &StorageError{Message: ErrMsgInvalidStorageRoot}
	}
	if err := os.MkdirAll(root, FilesystemDirPermissions); err != nil {
		return nil, &StorageError{Message: ErrMsgCreateStorageDir, Name: root, Cause: err}
	}
	return &FilesystemStorage{root: filepath.Clean(root)}, nil
}

// Root returns the storage directory
func (s *FilesystemStorage) Root() string {
	return s.root
}

// Get retrieves the latest version of a document by name.
func (s *FilesystemStorage) Get(ctx context.Context, name string) (*StoredDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateDocumentName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	versions, err := s.versions(name)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, NewStorageDocumentNotFoundError(name)
	}
	return s.load(name, versions[0])
}

// GetByID scans every stored version for id.
func (s *FilesystemStorage) GetByID(ctx context.Context, id DocumentID) (*StoredDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	names, err := s.names()
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		versions, err := s.versions(name)
		if err != nil {
			continue
		}
		for _, v := range versions {
			doc, err := s.load(name, v)
			if err == nil && doc.ID == id {
				return doc, nil
			}
		}
	}
	return nil, NewStorageDocumentNotFoundError(string(id))
}

// GetVersion retrieves a specific version of a document.
func (s *FilesystemStorage) GetVersion(ctx context.Context, name string, version int) (*StoredDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateDocumentName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}
	return s.load(name, version)
}

// Save writes doc as the next version file of its name.
func (s *FilesystemStorage) Save(ctx context.Context, doc *StoredDocument) error {
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

	dir := filepath.Join(s.root, doc.Name)
	if err := os.MkdirAll(dir, FilesystemDirPermissions); err != nil {
		return &StorageError{Message: ErrMsgCreateStorageDir, Name: dir, Cause: err}
	}

	versions, err := s.versions(doc.Name)
	if err != nil {
		return err
	}
	next := 1
	if len(versions) > 0 {
		next = versions[0] + 1
	}

	stored := prepareVersion(doc, next, time.Now())
	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return &StorageError{Message: ErrMsgStorageWriteFailed, Name: doc.Name, Cause: err}
	}
	if err := os.WriteFile(s.versionFile(doc.Name, next), data, FilesystemFilePermissions); err != nil {
		return &StorageError{Message: ErrMsgStorageWriteFailed, Name: doc.Name, Version: next, Cause: err}
	}
	return nil
}

// Delete removes the document directory.
func (s *FilesystemStorage) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateDocumentName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}

	dir := filepath.Join(s.root, name)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return NewStorageDocumentNotFoundError(name)
	}
	if err := os.RemoveAll(dir); err != nil {
		return &StorageError{Message: ErrMsgDeleteDocument, Name: name, Cause: err}
	}
	return nil
}

// DeleteVersion removes one version file; the directory goes with the last one.
func (s *FilesystemStorage) DeleteVersion(ctx context.Context, name string, version int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateDocumentName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}

	file := s.versionFile(name, version)
	if err := os.Remove(file); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewStorageVersionNotFoundError(name, version)
		}
		return &StorageError{Message: ErrMsgDeleteDocument, Name: name, Version: version, Cause: err}
	}

	if remaining, err := s.versions(name); err == nil && len(remaining) == 0 {
		_ = os.RemoveAll(filepath.Join(s.root, name))
	}
	return nil
}

// List returns documents matching the query.
func (s *FilesystemStorage) List(ctx context.Context, query *DocumentQuery) ([]*StoredDocument, error) {
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

	names, err := s.names()
	if err != nil {
		return nil, err
	}

	var results []*StoredDocument
	for _, name := range names {
		versions, err := s.versions(name)
		if err != nil || len(versions) == 0 {
			continue
		}
		if !query.IncludeAllVersions {
			versions = versions[:1]
		}
		for _, v := range versions {
			doc, err := s.load(name, v)
			if err != nil {
				continue
			}
			if matchesDocumentQuery(doc, query) {
				results = append(results, doc)
			}
		}
	}
	return sortAndPage(results, query), nil
}

// Exists checks if a document with the given name exists.
func (s *FilesystemStorage) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := validateDocumentName(name); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, NewStorageClosedError()
	}

	versions, err := s.versions(name)
	if err != nil {
		return false, err
	}
	return len(versions) > 0, nil
}

// ListVersions returns all version numbers for a document, newest first.
func (s *FilesystemStorage) ListVersions(ctx context.Context, name string) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateDocumentName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}
	return s.versions(name)
}

// Close marks the storage as closed.
func (s *FilesystemStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Watch calls fn with the document name whenever a version file is written,
// until ctx is done. Documents created after Watch starts are picked up.
func (s *FilesystemStorage) Watch(ctx context.Context, debounce time.Duration, logger *zap.Logger, fn func(name string) error) error {
	w, err := NewFileWatcher(debounce, logger)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(s.root); err != nil {
		return err
	}
	names, err := s.names()
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := w.Add(filepath.Join(s.root, name)); err != nil {
			return err
		}
	}

	return w.Run(ctx, func(path string) error {
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		name := parts[0]
		if validateDocumentName(name) != nil {
			return nil
		}
		if len(parts) == 1 {
			// new document directory; its first version may already be written
			info, err := os.Stat(path)
			if err != nil || !info.IsDir() {
				return nil
			}
			if err := w.Add(path); err != nil {
				return err
			}
		} else if !strings.HasSuffix(parts[len(parts)-1], FilesystemVersionSuffix) {
			return nil
		}
		return fn(name)
	})
}

func (s *FilesystemStorage) versionFile(name string, version int) string {
	return filepath.Join(s.root, name, FilesystemVersionPrefix+strconv.Itoa(version)+FilesystemVersionSuffix)
}

// names lists the document directories in the root.
func (s *FilesystemStorage) names() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, &StorageError{Message: ErrMsgReadStorageDir, Name: s.root, Cause: err}
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// versions lists the version numbers stored for name, newest first.
func (s *FilesystemStorage) versions(name string) ([]int, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []int{}, nil
		}
		return nil, &StorageError{Message: ErrMsgReadStorageDir, Name: name, Cause: err}
	}

	versions := []int{}
	for _, e := range entries {
		fname := e.Name()
		if e.IsDir() || !strings.HasPrefix(fname, FilesystemVersionPrefix) || !strings.HasSuffix(fname, FilesystemVersionSuffix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(fname, FilesystemVersionPrefix), FilesystemVersionSuffix))
		if err != nil || n < 1 {
			continue
		}
		versions = append(versions, n)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(versions)))
	return versions, nil
}

func (s *FilesystemStorage) load(name string, version int) (*StoredDocument, error) {
	data, err := os.ReadFile(s.versionFile(name, version))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, NewStorageVersionNotFoundError(name, version)
		}
		return nil, &StorageError{Message: ErrMsgStorageReadFailed, Name: name, Version: version, Cause: err}
	}
	var doc StoredDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &StorageError{Message: ErrMsgStorageReadFailed, Name: name, Version: version, Cause: err}
	}
	return &doc, nil
}
