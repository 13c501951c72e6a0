package memory

import (
	"context"
	"testing"

	"github.com/wyatt-herkamp/nitro-share/internal/domain"
)

func TestUserRepository(t *testing.T) {
	db := New()
	ctx := context.Background()

	u, err := db.Create(ctx, domain.NewUser{
		Name:         "Alice",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		Permissions:  domain.DefaultPermissions(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u == nil || u.ID == 0 {
		t.Fatalf("expected created user with id, got %+v", u)
	}

	dup, err := db.Create(ctx, domain.NewUser{Username: "alice", Email: "other@example.com"})
	if err != nil {
		t.Fatalf("Create dup: %v", err)
	}
	if dup != nil {
		t.Fatalf("expected nil for duplicate username, got %+v", dup)
	}

	byLogin, err := db.GetByLogin(ctx, "alice@example.com")
	if err != nil || byLogin == nil || byLogin.ID != u.ID {
		t.Fatalf("GetByLogin by email: %v, %+v", err, byLogin)
	}

	taken, err := db.LoginTaken(ctx, "alice", "nobody@example.com")
	if err != nil || !taken {
		t.Fatalf("LoginTaken: %v, %v", err, taken)
	}

	n, err := db.Count(ctx)
	if err != nil || n != 1 {
		t.Fatalf("Count: %v, %d", err, n)
	}
}

func TestTokenRepository(t *testing.T) {
	db := New()
	ctx := context.Background()

	user, err := db.Create(ctx, domain.NewUser{Username: "bob", Email: "bob@example.com"})
	if err != nil || user == nil {
		t.Fatalf("Create user: %v", err)
	}

	repo := NewTokenRepo(db)
	tok, err := repo.Create(ctx, user.ID, "ci", "hash-1")
	if err != nil || tok == nil {
		t.Fatalf("Create token: %v", err)
	}

	gotTok, gotUser, err := repo.FindActiveByHash(ctx, "hash-1")
	if err != nil {
		t.Fatalf("FindActiveByHash: %v", err)
	}
	if gotTok == nil || gotTok.ID != tok.ID {
		t.Fatalf("expected token %d, got %+v", tok.ID, gotTok)
	}
	if gotUser == nil || gotUser.ID != user.ID {
		t.Fatalf("expected user %d, got %+v", user.ID, gotUser)
	}

	if err := repo.Revoke(ctx, tok.ID); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	gotTok, _, err = repo.FindActiveByHash(ctx, "hash-1")
	if err != nil {
		t.Fatalf("FindActiveByHash after revoke: %v", err)
	}
	if gotTok != nil {
		t.Fatalf("revoked token still resolves: %+v", gotTok)
	}

	// The row stays for listing even after revocation.
	list, err := repo.ListByUser(ctx, user.ID)
	if err != nil || len(list) != 1 || !list[0].Revoked {
		t.Fatalf("ListByUser after revoke: %v, %+v", err, list)
	}

	exists, err := repo.HashExists(ctx, "hash-1")
	if err != nil || !exists {
		t.Fatalf("HashExists: %v, %v", err, exists)
	}
}

func TestPasteRepository(t *testing.T) {
	db := New()
	ctx := context.Background()
	repo := NewPasteRepo(db)

	p, err := repo.Create(ctx, domain.NewPaste{
		UserID:      1,
		Name:        "snippet",
		ContentType: "text/plain",
		Content:     "hello",
		Visibility:  domain.PublicVisibility(),
	}, "abc1234")
	if err != nil || p == nil {
		t.Fatalf("Create: %v", err)
	}

	exists, err := repo.SlugExists(ctx, "abc1234")
	if err != nil || !exists {
		t.Fatalf("SlugExists: %v, %v", err, exists)
	}

	got, err := repo.GetBySlug(ctx, "abc1234")
	if err != nil || got == nil || got.ID != p.ID {
		t.Fatalf("GetBySlug: %v, %+v", err, got)
	}

	if err := repo.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err = repo.GetBySlug(ctx, "abc1234")
	if err != nil || got != nil {
		t.Fatalf("expected nil after delete, got %v, %+v", err, got)
	}
}

func TestImageRepository(t *testing.T) {
	db := New()
	ctx := context.Background()
	repo := NewImageRepo(db)

	img, err := repo.Create(ctx, domain.NewImage{
		UserID:      1,
		Name:        "cat.png",
		FileName:    "f1.png",
		ContentType: "image/png",
		Size:        1024,
		Visibility:  domain.PublicVisibility(),
	})
	if err != nil || img == nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, img.ID)
	if err != nil || got == nil || got.FileName != "f1.png" {
		t.Fatalf("GetByID: %v, %+v", err, got)
	}

	list, err := repo.ListByUser(ctx, 1, 10)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListByUser: %v, %+v", err, list)
	}
}
