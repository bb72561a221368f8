package backend

import (
	"context"

	"finfamily/internal/ports"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// BackendResult contains the persistence port and optional cleanup function
type BackendResult struct {
	Type        BackendType
	Persistence ports.Persistence
	Cleanup     CleanupFunc
}

// Close runs the cleanup function if there is one.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Local
	DataDirectory string
	SQLiteDBPath  string

	// Remote
	PostgresDSN string
	RemoteURL   string
	RemoteKey   string
	MongoURI    string
	MongoDB     string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	FileBackend     BackendType = "file"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
	RESTBackend     BackendType = "rest"
	MongoBackend    BackendType = "mongo"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, FileBackend, SQLiteBackend, PostgresBackend, RESTBackend, MongoBackend:
		return true
	default:
		return false
	}
}

// IsRemote reports whether the backend talks to a network service.
func (bt BackendType) IsRemote() bool {
	switch bt {
	case PostgresBackend, RESTBackend, MongoBackend:
		return true
	default:
		return false
	}
}
