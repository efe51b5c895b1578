package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/smolyakov/huddle/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS group_members (
	group_id TEXT NOT NULL,
	user_id  TEXT NOT NULL,
	added_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (group_id, user_id)
);

CREATE TABLE IF NOT EXISTS files (
	id               TEXT NOT NULL,
	group_id         TEXT NOT NULL,
	name             TEXT NOT NULL,
	upload_date_time DATETIME NOT NULL,
	PRIMARY KEY (group_id, id)
);

CREATE INDEX IF NOT EXISTS idx_files_group_uploaded
	ON files(group_id, upload_date_time DESC);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file (":memory:" for tests).
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== MembershipStore implementation ====

// AddMember records a (group, user) pair. Re-registration is a no-op.
func (s *SQLiteStore) AddMember(ctx context.Context, groupID, userID string) error {
	query := `
		INSERT OR IGNORE INTO group_members (group_id, user_id, added_at)
		VALUES (?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, groupID, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

// IsMember reports whether the user was registered in the group.
func (s *SQLiteStore) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	query := `SELECT 1 FROM group_members WHERE group_id = ? AND user_id = ?`

	var one int
	err := s.db.QueryRowContext(ctx, query, groupID, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return true, nil
}

// ==== FileStore implementation ====

// SaveFileMetadata persists metadata for an uploaded file.
func (s *SQLiteStore) SaveFileMetadata(ctx context.Context, meta *store.FileMetadata) error {
	query := `
		INSERT INTO files (id, group_id, name, upload_date_time)
		VALUES (?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query, meta.ID, meta.GroupID, meta.Name, meta.UploadDateTime.UTC())
	if err != nil {
		return fmt.Errorf("save file metadata: %w", err)
	}
	return nil
}

// GetFileMetadata retrieves metadata by group and file id.
func (s *SQLiteStore) GetFileMetadata(ctx context.Context, groupID, fileID string) (*store.FileMetadata, error) {
	query := `
		SELECT id, group_id, name, upload_date_time
		FROM files
		WHERE group_id = ? AND id = ?
	`

	meta := &store.FileMetadata{}
	err := s.db.QueryRowContext(ctx, query, groupID, fileID).
		Scan(&meta.ID, &meta.GroupID, &meta.Name, &meta.UploadDateTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get file metadata: %w", err)
	}
	return meta, nil
}

// ListFileMetadata lists a group's files, newest upload first.
func (s *SQLiteStore) ListFileMetadata(ctx context.Context, groupID string) ([]*store.FileMetadata, error) {
	query := `
		SELECT id, group_id, name, upload_date_time
		FROM files
		WHERE group_id = ?
		ORDER BY upload_date_time DESC, id DESC
	`

	rows, err := s.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("list file metadata: %w", err)
	}
	defer rows.Close()

	var files []*store.FileMetadata
	for rows.Next() {
		meta := &store.FileMetadata{}
		if err := rows.Scan(&meta.ID, &meta.GroupID, &meta.Name, &meta.UploadDateTime); err != nil {
			return nil, fmt.Errorf("scan file metadata: %w", err)
		}
		files = append(files, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate file metadata: %w", err)
	}
	return files, nil
}

// Ensure SQLiteStore implements store.Store.
var _ store.Store = (*SQLiteStore)(nil)
