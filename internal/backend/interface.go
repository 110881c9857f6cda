package backend

import (
	"context"

	"financas/internal/events"
	"financas/internal/services"
	"financas/internal/session"
)

// Backend bundles the local persistence used by the services. Snapshots is
// nil when the backend keeps no offline copy.
type Backend struct {
	Type      BackendType
	Sessions  session.Store
	Snapshots services.SnapshotStore
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Close runs Cleanup when set.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
	// CreatePublisher never fails: without a reachable broker it returns events.Nop.
	CreatePublisher(ctx context.Context, config Config) events.Publisher
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SessionFile  string
	SQLiteDBPath string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, FileBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
