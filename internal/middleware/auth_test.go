package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/config"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/identity"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/models"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type stubResolver map[uuid.UUID]*models.Author

func (s stubResolver) Resolve(_ context.Context, id uuid.UUID) (*models.Author, error) {
	if a, ok := s[id]; ok {
		return a, nil
	}
	return nil, services.ErrAuthorNotFound
}

type failingResolver struct{}

func (failingResolver) Resolve(context.Context, uuid.UUID) (*models.Author, error) {
	return nil, errors.New("db down")
}

func whoami(c *fiber.Ctx) error {
	p, ok := identity.From(c)
	if !ok {
		return c.SendString("anonymous")
	}
	author, _ := identity.Author(c)
	if author.Password != "" {
		return c.Status(fiber.StatusInternalServerError).SendString("password leaked")
	}
	return c.SendString(p.Email)
}

func newAuthApp(tokens *services.TokenService, resolver AuthorResolver) *fiber.App {
	app := fiber.New()
	app.Get("/private", AuthRequired(tokens, resolver), whoami)
	app.Get("/public", OptionalAuth(tokens, resolver), whoami)
	return app
}

func do(t *testing.T, app *fiber.App, path, auth string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	buf := make([]byte, 512)
	n, _ := resp.Body.Read(buf)
	return resp.StatusCode, string(buf[:n])
}

func TestAuthRequired(t *testing.T) {
	tokens := services.NewTokenService("secret", time.Hour)
	author := &models.Author{ID: uuid.New(), Email: "a@x.com", Password: "hash"}
	app := newAuthApp(tokens, stubResolver{author.ID: author})

	valid, _ := tokens.Issue(author.ID)
	ghost, _ := tokens.Issue(uuid.New())
	foreign, _ := services.NewTokenService("other", time.Hour).Issue(author.ID)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Basic " + valid, fiber.StatusUnauthorized},
		{"garbage", "Bearer nope", fiber.StatusUnauthorized},
		{"foreign signature", "Bearer " + foreign, fiber.StatusUnauthorized},
		{"unknown author", "Bearer " + ghost, fiber.StatusUnauthorized},
		{"valid", "Bearer " + valid, fiber.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := do(t, app, "/private", tc.header)
			if status != tc.status {
				t.Fatalf("status %d, want %d (%s)", status, tc.status, body)
			}
			if status == fiber.StatusOK && body != "a@x.com" {
				t.Fatalf("body %q", body)
			}
			if status == fiber.StatusUnauthorized {
				var resp struct {
					Error   bool   `json:"error"`
					Message string `json:"message"`
				}
				if err := json.Unmarshal([]byte(body), &resp); err != nil || !resp.Error || resp.Message == "" {
					t.Fatalf("401 body %q", body)
				}
			}
		})
	}

	// The stored author keeps its hash; only the request copy is stripped.
	if author.Password != "hash" {
		t.Fatalf("attach mutated the resolved author")
	}
}

func TestAuthRequiredStoreFailure(t *testing.T) {
	tokens := services.NewTokenService("secret", time.Hour)
	app := newAuthApp(tokens, failingResolver{})
	valid, _ := tokens.Issue(uuid.New())

	if status, _ := do(t, app, "/private", "Bearer "+valid); status != fiber.StatusInternalServerError {
		t.Fatalf("status %d", status)
	}
}

func TestOptionalAuth(t *testing.T) {
	tokens := services.NewTokenService("secret", time.Hour)
	author := &models.Author{ID: uuid.New(), Email: "a@x.com"}
	app := newAuthApp(tokens, stubResolver{author.ID: author})
	valid, _ := tokens.Issue(author.ID)

	if _, body := do(t, app, "/public", ""); body != "anonymous" {
		t.Fatalf("no token: %q", body)
	}
	if _, body := do(t, app, "/public", "Bearer broken"); body != "anonymous" {
		t.Fatalf("bad token: %q", body)
	}
	if _, body := do(t, app, "/public", "Bearer "+valid); body != "a@x.com" {
		t.Fatalf("valid token: %q", body)
	}
}

func TestAdminRequired(t *testing.T) {
	tokens := services.NewTokenService("secret", time.Hour)
	admin := &models.Author{ID: uuid.New(), Email: "boss@x.com", Role: "author"}
	roleAdmin := &models.Author{ID: uuid.New(), Email: "root@x.com", Role: "admin"}
	plain := &models.Author{ID: uuid.New(), Email: "plain@x.com", Role: "author"}
	resolver := stubResolver{admin.ID: admin, roleAdmin.ID: roleAdmin, plain.ID: plain}
	cfg := &config.Config{AdminEmails: []string{" Boss@x.com "}, AdminToken: "let-me-in"}

	app := fiber.New()
	app.Delete("/admin", OptionalAuth(tokens, resolver), AdminRequired(cfg), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	send := func(header, value string) int {
		req := httptest.NewRequest("DELETE", "/admin", nil)
		if header != "" {
			req.Header.Set(header, value)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		return resp.StatusCode
	}
	bearer := func(a *models.Author) string {
		tok, _ := tokens.Issue(a.ID)
		return "Bearer " + tok
	}

	if got := send("", ""); got != fiber.StatusUnauthorized {
		t.Fatalf("anonymous: %d", got)
	}
	if got := send("Authorization", bearer(plain)); got != fiber.StatusForbidden {
		t.Fatalf("plain author: %d", got)
	}
	if got := send("Authorization", bearer(admin)); got != fiber.StatusNoContent {
		t.Fatalf("listed email: %d", got)
	}
	if got := send("Authorization", bearer(roleAdmin)); got != fiber.StatusNoContent {
		t.Fatalf("admin role: %d", got)
	}
	if got := send("X-Admin-Token", "let-me-in"); got != fiber.StatusNoContent {
		t.Fatalf("admin token: %d", got)
	}
	if got := send("X-Admin-Token", "wrong"); got != fiber.StatusUnauthorized {
		t.Fatalf("wrong admin token: %d", got)
	}
}
