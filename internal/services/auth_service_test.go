package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/dto"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/models"
	"github.com/google/uuid"
)

func TestRegisterAndLogin(t *testing.T) {
	auth, db := newTestAuth(t)
	ctx := context.Background()

	author, token, err := auth.Register(ctx, &dto.RegisterRequest{
		FirstName: " Ada ",
		LastName:  "Lovelace",
		Email:     "Ada@Example.com",
		Password:  "password123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if token == "" {
		t.Fatalf("register returned no token")
	}
	if author.Email != "ada@example.com" || author.FirstName != "Ada" {
		t.Fatalf("author not normalised: %+v", author)
	}

	var stored models.Author
	if err := db.First(&stored, "id = ?", author.ID).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if stored.Password == "" || stored.Password == "password123" {
		t.Fatalf("password stored as %q", stored.Password)
	}

	loginToken, _, err := auth.Login(ctx, &dto.LoginRequest{Email: "ADA@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	id, err := auth.tokens.Verify(loginToken)
	if err != nil || id != author.ID {
		t.Fatalf("login token resolves to %s (%v), want %s", id, err, author.ID)
	}
}

func TestLoginFailures(t *testing.T) {
	auth, _ := newTestAuth(t)
	registerAuthor(t, auth, "bob@example.com")
	ctx := context.Background()

	if _, _, err := auth.Login(ctx, &dto.LoginRequest{Email: "bob@example.com", Password: "wrong-password"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: %v", err)
	}
	if _, _, err := auth.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "password123"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	auth, _ := newTestAuth(t)
	registerAuthor(t, auth, "taken@example.com")
	ctx := context.Background()

	cases := map[string]dto.RegisterRequest{
		"missing name":   {LastName: "X", Email: "a@example.com", Password: "password123"},
		"bad email":      {FirstName: "A", LastName: "X", Email: "nope", Password: "password123"},
		"short password": {FirstName: "A", LastName: "X", Email: "a@example.com", Password: "short"},
		"duplicate":      {FirstName: "A", LastName: "X", Email: "Taken@example.com", Password: "password123"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			if _, _, err := auth.Register(ctx, &req); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestChangePassword(t *testing.T) {
	auth, _ := newTestAuth(t)
	author := registerAuthor(t, auth, "carol@example.com")
	ctx := context.Background()

	err := auth.ChangePassword(ctx, author.ID, &dto.ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "new-password"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong current password: %v", err)
	}
	err = auth.ChangePassword(ctx, author.ID, &dto.ChangePasswordRequest{CurrentPassword: "password123", NewPassword: "new-password"})
	if err != nil {
		t.Fatalf("change: %v", err)
	}
	if _, _, err := auth.Login(ctx, &dto.LoginRequest{Email: "carol@example.com", Password: "new-password"}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestResolveUnknownAuthor(t *testing.T) {
	auth, _ := newTestAuth(t)
	author := registerAuthor(t, auth, "dan@example.com")
	got, err := auth.Resolve(context.Background(), author.ID)
	if err != nil || got.Email != "dan@example.com" {
		t.Fatalf("resolve: %v %+v", err, got)
	}

	if _, err := auth.Resolve(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFindOrCreateGoogleAuthor(t *testing.T) {
	auth, _ := newTestAuth(t)
	ctx := context.Background()
	profile := GoogleProfile{
		Subject:       "google-123",
		GivenName:     "Grace",
		FamilyName:    "Hopper",
		Email:         "Grace@Example.com",
		EmailVerified: true,
		Picture:       "https://example.com/grace.png",
	}

	first, created, err := auth.FindOrCreateGoogleAuthor(ctx, profile)
	if err != nil || !created {
		t.Fatalf("first sign-in: created=%v err=%v", created, err)
	}
	if first.HasPassword() || first.BirthDate != nil || first.Email != "grace@example.com" {
		t.Fatalf("unexpected google author: %+v", first)
	}

	second, created, err := auth.FindOrCreateGoogleAuthor(ctx, profile)
	if err != nil || created {
		t.Fatalf("second sign-in: created=%v err=%v", created, err)
	}
	if second.ID != first.ID {
		t.Fatalf("second sign-in created a new author")
	}
}

func TestGoogleLinksVerifiedEmailOnly(t *testing.T) {
	auth, _ := newTestAuth(t)
	local := registerAuthor(t, auth, "eve@example.com")
	ctx := context.Background()

	_, _, err := auth.FindOrCreateGoogleAuthor(ctx, GoogleProfile{Subject: "g-1", Email: "eve@example.com"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("unverified email should not link, got %v", err)
	}

	linked, created, err := auth.FindOrCreateGoogleAuthor(ctx, GoogleProfile{Subject: "g-1", Email: "eve@example.com", EmailVerified: true})
	if err != nil || created {
		t.Fatalf("link: created=%v err=%v", created, err)
	}
	if linked.ID != local.ID || linked.GoogleID == nil || *linked.GoogleID != "g-1" {
		t.Fatalf("account not linked: %+v", linked)
	}
}
