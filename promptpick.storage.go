package promptpick

import (
	"cmp"
	"context"
	"errors"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DocumentID is a unique identifier for one stored document version.
// Format: "doc_" followed by a UUID.
type DocumentID string

// StoredDocument is a prompt document version held by a storage backend.
type StoredDocument struct {
	// ID is the unique identifier for this version.
	ID DocumentID `json:"id"`

	// Name is the document name used for lookups.
	Name string `json:"name"`

	// Source is the raw document text.
	Source string `json:"source"`

	// Format is the serialization of Source.
	Format Format `json:"format"`

	// Hash is the sha256 digest of Source, set by the storage.
	Hash string `json:"hash"`

	// Version is the version number (1, 2, 3, ...). Higher versions are newer.
	Version int `json:"version"`

	Metadata  map[string]string `json:"metadata,omitempty"`
	Tags      []string          `json:"tags,omitempty"`
	CreatedBy string            `json:"created_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentQuery defines filters for listing documents.
type DocumentQuery struct {
	NamePrefix   string
	NameContains string
	// Tags matches documents carrying every listed tag.
	Tags      []string
	Format    Format
	CreatedBy string

	// Limit caps the result count; 0 returns everything after Offset.
	Limit  int
	Offset int

	// IncludeAllVersions returns every version instead of the newest per name.
	IncludeAllVersions bool
}

// DocumentStorage is the interface for pluggable document storage backends.
// Implementations must be safe for concurrent use.
type DocumentStorage interface {
	// Get retrieves the latest version of a document by name.
	Get(ctx context.Context, name string) (*StoredDocument, error)

	// GetByID retrieves a specific document version by ID.
	GetByID(ctx context.Context, id DocumentID) (*StoredDocument, error)

	// GetVersion retrieves a specific version of a document.
	GetVersion(ctx context.Context, name string, version int) (*StoredDocument, error)

	// Save stores doc as a new version of doc.Name. ID, Hash, Version,
	// CreatedAt and UpdatedAt are set by the storage and written back to doc.
	Save(ctx context.Context, doc *StoredDocument) error

	// Delete removes all versions of a document.
	Delete(ctx context.Context, name string) error

	// DeleteVersion removes one version of a document.
	DeleteVersion(ctx context.Context, name string, version int) error

	// List returns documents matching the query, ordered by name then version descending.
	List(ctx context.Context, query *DocumentQuery) ([]*StoredDocument, error)

	// Exists checks if a document with the given name exists.
	Exists(ctx context.Context, name string) (bool, error)

	// ListVersions returns all version numbers for a document, newest first.
	// Returns an empty slice if the document doesn't exist.
	ListVersions(ctx context.Context, name string) ([]int, error)

	Close() error
}

// StorageDriver opens a DocumentStorage from a driver-specific connection
// string. The memory, filesystem and postgres drivers are registered by init.
type StorageDriver interface {
	Open(connectionString string) (DocumentStorage, error)
}

var driverRegistry = struct {
	sync.RWMutex
	drivers map[string]StorageDriver
}{drivers: map[string]StorageDriver{}}

// RegisterStorageDriver makes a driver available to OpenStorage under name.
// It panics on a nil driver or a name that is taken.
func RegisterStorageDriver(name string, driver StorageDriver) {
	if driver == nil {
		panic(ErrMsgNilStorageDriver)
	}

	driverRegistry.Lock()
	defer driverRegistry.Unlock()
	if driverRegistry.drivers[name] != nil {
		panic(ErrMsgDriverAlreadyRegistered + ": " + name)
	}
	driverRegistry.drivers[name] = driver
}

// OpenStorage opens a storage with the named driver.
//
//	storage, err := promptpick.OpenStorage("memory", "")
//	storage, err := promptpick.OpenStorage("filesystem", "/var/lib/prompts")
func OpenStorage(driverName, connectionString string) (DocumentStorage, error) {
	driverRegistry.RLock()
	driver := driverRegistry.drivers[driverName]
	driverRegistry.RUnlock()

	if driver == nil {
		return nil, NewStorageDriverNotFoundError(driverName)
	}
	return driver.Open(connectionString)
}

// ListStorageDrivers returns the registered driver names in sorted order.
func ListStorageDrivers() []string {
	driverRegistry.RLock()
	defer driverRegistry.RUnlock()
	return slices.Sorted(maps.Keys(driverRegistry.drivers))
}

// Storage error message constants
const (
	ErrMsgNilStorageDriver        = "storage driver is nil"
	ErrMsgDriverAlreadyRegistered = "storage driver already registered"
	ErrMsgStorageDriverNotFound   = "storage driver not found"
	ErrMsgStorageClosed           = "storage is closed"
	ErrMsgDocumentNotFound        = "document not found"
	ErrMsgVersionNotFound         = "document version not found"
	ErrMsgInvalidDocumentName     = "invalid document name"
	ErrMsgDocumentNameTooLong     = "document name too long"
	ErrMsgStorageReadFailed       = "failed to read stored document"
	ErrMsgStorageWriteFailed      = "failed to write stored document"
	ErrMsgStorageQueryFailed      = "storage query failed"
	ErrMsgStorageConnFailed       = "storage connection failed"
	ErrMsgMigrationFailed         = "storage migration failed"
)

// ErrStorageNotFound is the cause of every not-found StorageError.
var ErrStorageNotFound = errors.New(ErrMsgDocumentNotFound)

// StorageError is returned by every storage backend. Version is 0 when the
// error is not about one version.
type StorageError struct {
	Message string
	Name    string
	Version int
	Cause   error
}

func (e *StorageError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)
	if e.Name != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Name)
		if e.Version > 0 {
			sb.WriteString(" v")
			sb.WriteString(strconv.Itoa(e.Version))
		}
	}
	// not-found causes only repeat the message
	if e.Cause != nil && !errors.Is(e.Cause, ErrStorageNotFound) {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// IsNotFound reports whether err is a missing document or version.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrStorageNotFound)
}

func NewStorageDriverNotFoundError(name string) error {
	return &StorageError{Message: ErrMsgStorageDriverNotFound, Name: name}
}

// NewStorageDocumentNotFoundError creates an error for a missing document.
func NewStorageDocumentNotFoundError(name string) error {
	return &StorageError{Message: ErrMsgDocumentNotFound, Name: name, Cause: ErrStorageNotFound}
}

// NewStorageVersionNotFoundError creates an error for a missing version.
func NewStorageVersionNotFoundError(name string, version int) error {
	return &StorageError{Message: ErrMsgVersionNotFound, Name: name, Version: version, Cause: ErrStorageNotFound}
}

// NewStorageClosedError is returned by every call after Close.
func NewStorageClosedError() error {
	return &StorageError{Message: ErrMsgStorageClosed}
}

// NewStorageInvalidNameError creates an error for a rejected document name.
func NewStorageInvalidNameError(name string) error {
	return &StorageError{Message: ErrMsgInvalidDocumentName, Name: name}
}

// generateDocumentID generates a unique document ID.
func generateDocumentID() DocumentID {
	return DocumentID(DocumentIDPrefix + uuid.NewString())
}

// validateDocumentName rejects names that cannot be stored safely by every backend.
func validateDocumentName(name string) error {
	if name == "" || strings.TrimSpace(name) != name {
		return NewStorageInvalidNameError(name)
	}
	if len(name) > FilesystemMaxNameLength {
		return &StorageError{Message: ErrMsgDocumentNameTooLong, Name: name[:32] + "..."}
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return NewStorageInvalidNameError(name)
	}
	return nil
}

// matchesDocumentQuery checks a document version against the query filters.
func matchesDocumentQuery(doc *StoredDocument, query *DocumentQuery) bool {
	if query.NamePrefix != "" && !strings.HasPrefix(doc.Name, query.NamePrefix) {
		return false
	}
	if query.NameContains != "" && !strings.Contains(doc.Name, query.NameContains) {
		return false
	}
	if query.Format != "" && doc.Format != query.Format {
		return false
	}
	if query.CreatedBy != "" && doc.CreatedBy != query.CreatedBy {
		return false
	}
	for _, tag := range query.Tags {
		if !slices.Contains(doc.Tags, tag) {
			return false
		}
	}
	return true
}

// sortAndPage orders results by name then version descending and applies offset and limit.
func sortAndPage(results []*StoredDocument, query *DocumentQuery) []*StoredDocument {
	slices.SortFunc(results, func(a, b *StoredDocument) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(b.Version, a.Version))
	})

	start := min(query.Offset, len(results))
	end := len(results)
	if query.Limit > 0 {
		end = min(start+query.Limit, end)
	}
	return results[start:end:end]
}

// copyStoredDocument creates a deep copy of a StoredDocument.
func copyStoredDocument(doc *StoredDocument) *StoredDocument {
	if doc == nil {
		return nil
	}
	out := *doc
	out.Metadata = maps.Clone(doc.Metadata)
	out.Tags = slices.Clone(doc.Tags)
	return &out
}

// prepareVersion fills the storage-owned fields of a new version.
func prepareVersion(doc *StoredDocument, version int, now time.Time) *StoredDocument {
	stored := copyStoredDocument(doc)
	stored.ID = generateDocumentID()
	stored.Hash = HashSource(doc.Source)
	stored.Version = version
	stored.CreatedAt = now
	stored.UpdatedAt = now
	if stored.Format == "" {
		stored.Format = DefaultFormat
	}

	doc.ID = stored.ID
	doc.Hash = stored.Hash
	doc.Version = stored.Version
	doc.Format = stored.Format
	doc.CreatedAt = now
	doc.UpdatedAt = now
	return stored
}
