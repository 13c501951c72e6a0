package app

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/wyatt-herkamp/nitro-share/internal/adapter/memory"
	"github.com/wyatt-herkamp/nitro-share/internal/domain"
	"github.com/wyatt-herkamp/nitro-share/internal/storage"
)

func newTestImageService(t *testing.T) *ImageService {
	t.Helper()
	files, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	return NewImageService(memory.NewImageRepo(memory.New()), files)
}

func TestImageUpload(t *testing.T) {
	svc := newTestImageService(t)
	ctx := context.Background()
	owner := userAuth(1, domain.DefaultPermissions())

	body := strings.Repeat("x", 100)
	img, err := svc.Upload(ctx, owner, "cat.png", "image/png", strings.NewReader(body), domain.Visibility{})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if img.Size != int64(len(body)) {
		t.Fatalf("size = %d, want %d", img.Size, len(body))
	}
	if img.FileName == "cat.png" {
		t.Fatalf("stored file name must not be the uploader-supplied name")
	}

	got, f, err := svc.Get(ctx, asViewer(owner), img.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != body {
		t.Fatalf("stored bytes differ")
	}
	if got.ContentType != "image/png" {
		t.Fatalf("content type = %q", got.ContentType)
	}
}

func TestImageUpload_Rejected(t *testing.T) {
	svc := newTestImageService(t)
	ctx := context.Background()

	owner := userAuth(1, domain.DefaultPermissions())
	if _, err := svc.Upload(ctx, owner, "evil.html", "text/html", strings.NewReader("x"), domain.Visibility{}); !errors.Is(err, ErrUnsupportedImageType) {
		t.Fatalf("expected ErrUnsupportedImageType, got %v", err)
	}

	noCreate := userAuth(2, domain.AnonymousPermissions())
	if _, err := svc.Upload(ctx, noCreate, "cat.png", "image/png", strings.NewReader("x"), domain.Visibility{}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestImageGet_Visibility(t *testing.T) {
	svc := newTestImageService(t)
	ctx := context.Background()

	owner := userAuth(1, domain.DefaultPermissions())
	stranger := userAuth(2, domain.DefaultPermissions())

	img, err := svc.Upload(ctx, owner, "cat.png", "image/png", strings.NewReader("x"),
		domain.Visibility{Kind: domain.VisibilityPrivate})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if _, _, err := svc.Get(ctx, asViewer(stranger), img.ID); !errors.Is(err, ErrImageNotFound) {
		t.Fatalf("stranger: expected ErrImageNotFound, got %v", err)
	}
	if _, _, err := svc.Get(ctx, anonymous(), img.ID); !errors.Is(err, ErrImageNotFound) {
		t.Fatalf("anonymous: expected ErrImageNotFound, got %v", err)
	}
	_, f, err := svc.Get(ctx, asViewer(owner), img.ID)
	if err != nil {
		t.Fatalf("owner: %v", err)
	}
	f.Close()
}

func TestImageDelete_RemovesBytes(t *testing.T) {
	svc := newTestImageService(t)
	ctx := context.Background()
	owner := userAuth(1, domain.DefaultPermissions())

	img, err := svc.Upload(ctx, owner, "cat.png", "image/png", strings.NewReader("x"), domain.Visibility{})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := svc.Delete(ctx, owner, img.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, _, err := svc.Get(ctx, asViewer(owner), img.ID); !errors.Is(err, ErrImageNotFound) {
		t.Fatalf("expected ErrImageNotFound after delete, got %v", err)
	}
}
