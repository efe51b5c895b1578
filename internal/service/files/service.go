package files

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smolyakov/huddle/internal/blob"
	"github.com/smolyakov/huddle/internal/store"
)

// Common errors for file exchange operations.
var (
	ErrNotMember    = errors.New("caller is not a member of this group")
	ErrFileNotFound = errors.New("file not found")
	ErrEmptyUpload  = errors.New("upload has no content")
	ErrBadImage     = errors.New("image payload is not valid base64")
)

// Download bundles file metadata with its resolved content.
type Download struct {
	Meta    *store.FileMetadata
	Content []byte
}

// Service moves file content and metadata between callers and durable storage.
// Bytes live in blob storage keyed by group and file id; descriptors live
// in the metadata table.
type Service struct {
	store store.Store
	blobs blob.Store
}

// New creates a file exchange service.
func New(st store.Store, blobs blob.Store) *Service {
	return &Service{
		store: st,
		blobs: blobs,
	}
}

// RegisterMember records the caller as a member of the group.
// Safe to call more than once.
func (s *Service) RegisterMember(ctx context.Context, groupID, userID string) error {
	if err := s.store.AddMember(ctx, groupID, userID); err != nil {
		return fmt.Errorf("register member: %w", err)
	}
	return nil
}

// List returns the group's file metadata, newest upload first.
func (s *Service) List(ctx context.Context, groupID, userID string) ([]*store.FileMetadata, error) {
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	metas, err := s.store.ListFileMetadata(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return metas, nil
}

// Upload stores file bytes and metadata under a server-assigned id.
// The blob write happens first so a stored descriptor always has content
// behind it.
func (s *Service) Upload(ctx context.Context, groupID, userID, name string, content []byte) (*store.FileMetadata, error) {
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return nil, ErrEmptyUpload
	}

	meta := &store.FileMetadata{
		ID:             uuid.New().String(),
		GroupID:        groupID,
		Name:           name,
		UploadDateTime: time.Now().UTC(),
	}

	if err := s.blobs.Put(ctx, blobKey(groupID, meta.ID), content); err != nil {
		return nil, fmt.Errorf("store file content: %w", err)
	}
	if err := s.store.SaveFileMetadata(ctx, meta); err != nil {
		return nil, fmt.Errorf("store file metadata: %w", err)
	}
	return meta, nil
}

// UploadImage decodes a base64 image payload and runs the generic upload path.
// Accepts both raw base64 and data-URL form ("data:image/png;base64,....").
func (s *Service) UploadImage(ctx context.Context, groupID, userID, name, payload string) (*store.FileMetadata, error) {
	if idx := strings.Index(payload, ","); idx >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[idx+1:]
	}

	content, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrBadImage
	}
	return s.Upload(ctx, groupID, userID, name, content)
}

// Get retrieves a file's metadata and content.
func (s *Service) Get(ctx context.Context, groupID, userID, fileID string) (*Download, error) {
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	meta, err := s.store.GetFileMetadata(ctx, groupID, fileID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get file metadata: %w", err)
	}

	content, err := s.blobs.Get(ctx, blobKey(groupID, fileID))
	if errors.Is(err, blob.ErrNotFound) {
		// Metadata without bytes means a half-finished upload; callers
		// see it the same way as a missing descriptor.
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get file content: %w", err)
	}

	return &Download{Meta: meta, Content: content}, nil
}

func (s *Service) requireMember(ctx context.Context, groupID, userID string) error {
	ok, err := s.store.IsMember(ctx, groupID, userID)
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if !ok {
		return ErrNotMember
	}
	return nil
}

func blobKey(groupID, fileID string) string {
	return fmt.Sprintf("groups/%s/%s", groupID, fileID)
}
