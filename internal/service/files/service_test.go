package files

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/smolyakov/huddle/internal/blob/memory"
	"github.com/smolyakov/huddle/internal/store/sqlite"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	return New(st, memory.New())
}

func TestOperationsRequireMembership(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.List(ctx, "group-1", "stranger"); !errors.Is(err, ErrNotMember) {
		t.Errorf("List: expected ErrNotMember, got %v", err)
	}
	if _, err := svc.Upload(ctx, "group-1", "stranger", "a.txt", []byte("x")); !errors.Is(err, ErrNotMember) {
		t.Errorf("Upload: expected ErrNotMember, got %v", err)
	}
	if _, err := svc.Get(ctx, "group-1", "stranger", "some-id"); !errors.Is(err, ErrNotMember) {
		t.Errorf("Get: expected ErrNotMember, got %v", err)
	}
}

func TestUploadThenList(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.RegisterMember(ctx, "group-1", "user-1"); err != nil {
		t.Fatalf("RegisterMember: %v", err)
	}

	first, err := svc.Upload(ctx, "group-1", "user-1", "first.txt", []byte("one"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if first.ID == "" {
		t.Error("expected server-assigned file id")
	}

	second, err := svc.Upload(ctx, "group-1", "user-1", "a.png", []byte("two"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	metas, err := svc.List(ctx, "group-1", "user-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("expected 2 files, got %d", len(metas))
	}
	// Newest upload first.
	if metas[0].ID != second.ID {
		t.Errorf("expected %q first, got %q", second.ID, metas[0].ID)
	}
	if metas[0].Name != "a.png" {
		t.Errorf("expected name 'a.png' first, got %q", metas[0].Name)
	}
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.RegisterMember(ctx, "group-1", "user-1"); err != nil {
		t.Fatalf("RegisterMember: %v", err)
	}

	content := []byte{0x00, 0x01, 0xff, 0x7f, 0x80}
	meta, err := svc.Upload(ctx, "group-1", "user-1", "bin.dat", content)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	dl, err := svc.Get(ctx, "group-1", "user-1", meta.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(dl.Content, content) {
		t.Errorf("downloaded bytes differ: got %v, want %v", dl.Content, content)
	}
	if dl.Meta.Name != "bin.dat" {
		t.Errorf("expected name 'bin.dat', got %q", dl.Meta.Name)
	}
}

func TestGetUnknownFile(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.RegisterMember(ctx, "group-1", "user-1"); err != nil {
		t.Fatalf("RegisterMember: %v", err)
	}

	if _, err := svc.Get(ctx, "group-1", "user-1", "no-such-id"); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}

func TestUploadEmptyContent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.RegisterMember(ctx, "group-1", "user-1"); err != nil {
		t.Fatalf("RegisterMember: %v", err)
	}

	if _, err := svc.Upload(ctx, "group-1", "user-1", "empty.txt", nil); !errors.Is(err, ErrEmptyUpload) {
		t.Errorf("expected ErrEmptyUpload, got %v", err)
	}
}

func TestUploadImage(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.RegisterMember(ctx, "group-1", "user-1"); err != nil {
		t.Fatalf("RegisterMember: %v", err)
	}

	raw := []byte("fake-png-bytes")
	payload := base64.StdEncoding.EncodeToString(raw)

	meta, err := svc.UploadImage(ctx, "group-1", "user-1", "shot.png", payload)
	if err != nil {
		t.Fatalf("UploadImage: %v", err)
	}

	dl, err := svc.Get(ctx, "group-1", "user-1", meta.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(dl.Content, raw) {
		t.Errorf("decoded image bytes differ: got %q, want %q", dl.Content, raw)
	}
}

func TestUploadImageDataURL(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.RegisterMember(ctx, "group-1", "user-1"); err != nil {
		t.Fatalf("RegisterMember: %v", err)
	}

	raw := []byte("camera-capture")
	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)

	meta, err := svc.UploadImage(ctx, "group-1", "user-1", "capture.png", payload)
	if err != nil {
		t.Fatalf("UploadImage: %v", err)
	}

	dl, err := svc.Get(ctx, "group-1", "user-1", meta.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(dl.Content, raw) {
		t.Errorf("decoded image bytes differ: got %q, want %q", dl.Content, raw)
	}
}

func TestUploadImageBadPayload(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.RegisterMember(ctx, "group-1", "user-1"); err != nil {
		t.Fatalf("RegisterMember: %v", err)
	}

	if _, err := svc.UploadImage(ctx, "group-1", "user-1", "x.png", "%%%not-base64%%%"); !errors.Is(err, ErrBadImage) {
		t.Errorf("expected ErrBadImage, got %v", err)
	}
}
