package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/config"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/database"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/dto"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/identity"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/models"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(&config.Config{
		DBDriver:   "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("db open: %v", err)
	}
	if err := database.Migrate(db, true); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func newTestAuth(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	return NewAuthService(db, NewTokenService("test-secret", 0)), db
}

func registerAuthor(t *testing.T, auth *AuthService, email string) *models.Author {
	t.Helper()
	author, _, err := auth.Register(context.Background(), &dto.RegisterRequest{
		FirstName: "Test",
		LastName:  "Author",
		Email:     email,
		Password:  "password123",
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return author
}

func principalOf(a *models.Author) *identity.Principal {
	return &identity.Principal{ID: a.ID, Email: a.Email, Role: a.Role}
}
