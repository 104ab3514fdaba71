// Package identity carries the authenticated caller through a request.
//
// A request either has a Principal attached by the auth gateway or it is
// anonymous. Handlers that need a caller use Require; handlers that serve
// both kinds of request use From.
package identity

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	principalKey = "principal"
	authorKey    = "author"
)

// ErrAnonymous is returned by Require when no identity was attached.
var ErrAnonymous = errors.New("authentication required")

// Principal is the resolved identity of an authenticated request.
type Principal struct {
	ID    uuid.UUID
	Email string
	Role  string
}

// Attach stores the author and its principal on the request. The stored
// author never carries the password hash.
func Attach(c *fiber.Ctx, author *models.Author) *Principal {
	clean := *author
	clean.Password = ""
	p := &Principal{ID: clean.ID, Email: clean.Email, Role: clean.Role}
	c.Locals(authorKey, &clean)
	c.Locals(principalKey, p)
	return p
}

// From returns the principal, if any, without failing anonymous requests.
func From(c *fiber.Ctx) (*Principal, bool) {
	p, ok := c.Locals(principalKey).(*Principal)
	return p, ok && p != nil
}

func Require(c *fiber.Ctx) (*Principal, error) {
	p, ok := From(c)
	if !ok {
		return nil, ErrAnonymous
	}
	return p, nil
}

// Author returns the full author record attached by the gateway.
func Author(c *fiber.Ctx) (*models.Author, bool) {
	a, ok := c.Locals(authorKey).(*models.Author)
	return a, ok && a != nil
}
