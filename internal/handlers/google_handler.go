package handlers

import (
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/services"
	"github.com/gofiber/fiber/v2"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateTTL    = 10 * time.Minute
)

// GoogleHandler drives the browser through the Google sign-in redirects.
// Callback failures always end in a redirect to the login page, never in an
// error response, because the client is a browser navigation.
type GoogleHandler struct {
	google      *services.GoogleService
	frontendURL string
	secure      bool
}

func NewGoogleHandler(google *services.GoogleService, frontendURL string) *GoogleHandler {
	frontendURL = strings.TrimRight(frontendURL, "/")
	return &GoogleHandler{
		google:      google,
		frontendURL: frontendURL,
		secure:      strings.HasPrefix(frontendURL, "https://"),
	}
}

func (h *GoogleHandler) Start(c *fiber.Ctx) error {
	if !h.google.Enabled() {
		return errorJSON(c, fiber.StatusNotFound, "Google sign-in is not configured")
	}
	state, err := h.google.NewState()
	if err != nil {
		return respondError(c, err)
	}

	h.setState(c, state, time.Now().Add(oauthStateTTL))
	return c.Redirect(h.google.AuthCodeURL(state), fiber.StatusFound)
}

func (h *GoogleHandler) Callback(c *fiber.Ctx) error {
	expected := c.Cookies(oauthStateCookie)
	// A state is good for one callback.
	h.setState(c, "", time.Unix(0, 0))

	if errParam := c.Query("error"); errParam != "" {
		slog.Warn("google sign-in denied", "reason", errParam)
		return h.failure(c)
	}
	if expected == "" || c.Query("state") != expected {
		slog.Warn("google sign-in state mismatch")
		return h.failure(c)
	}

	login, err := h.google.Complete(c.UserContext(), c.Query("code"))
	if err != nil {
		slog.Error("google sign-in failed", "request_id", requestID(c), "error", err.Error())
		return h.failure(c)
	}

	return c.Redirect(h.frontendURL+"/?token="+url.QueryEscape(login.Token), fiber.StatusFound)
}

// setState writes the state cookie. Clearing must reuse the same path or
// browsers keep the original cookie.
func (h *GoogleHandler) setState(c *fiber.Ctx, value string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    value,
		Path:     "/api/auth/google",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   h.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *GoogleHandler) failure(c *fiber.Ctx) error {
	return c.Redirect(h.frontendURL+"/login?error=auth_failed", fiber.StatusFound)
}
