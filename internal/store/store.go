package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// FileMetadata describes one shared file. Immutable once written:
// the id is assigned by the server at upload time and the upload
// timestamp is server-observed.
type FileMetadata struct {
	ID             string
	GroupID        string
	Name           string
	UploadDateTime time.Time
}

// GroupMember records that a user belongs to a call group.
type GroupMember struct {
	GroupID string
	UserID  string
	AddedAt time.Time
}

// MembershipStore handles group membership persistence.
type MembershipStore interface {
	// AddMember records a (group, user) pair. Idempotent.
	AddMember(ctx context.Context, groupID, userID string) error

	// IsMember reports whether the user was registered in the group.
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
}

// FileStore handles file metadata persistence.
type FileStore interface {
	// SaveFileMetadata persists metadata for an uploaded file.
	SaveFileMetadata(ctx context.Context, meta *FileMetadata) error

	// GetFileMetadata retrieves metadata by group and file id.
	// Returns ErrNotFound when absent.
	GetFileMetadata(ctx context.Context, groupID, fileID string) (*FileMetadata, error)

	// ListFileMetadata lists a group's files, newest upload first.
	ListFileMetadata(ctx context.Context, groupID string) ([]*FileMetadata, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	MembershipStore
	FileStore

	// Close closes the underlying database connection.
	Close() error
}
