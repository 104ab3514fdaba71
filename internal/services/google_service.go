package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// GoogleScopes are the scopes requested when a sign-in starts.
var GoogleScopes = []string{"profile", "email"}

var ErrGoogleDisabled = errors.New("google sign-in is not configured")

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// Endpoint and UserInfoURL default to Google's production endpoints.
	Endpoint    oauth2.Endpoint
	UserInfoURL string
	HTTPClient  *http.Client
}

// GoogleService bridges a Google account to a local author and session token.
type GoogleService struct {
	oauth       *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
	auth        *AuthService
	tokens      *TokenService
}

func NewGoogleService(cfg GoogleConfig, auth *AuthService, tokens *TokenService) *GoogleService {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = google.Endpoint
	}
	userInfoURL := cfg.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = googleUserInfoURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &GoogleService{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       GoogleScopes,
		},
		userInfoURL: userInfoURL,
		httpClient:  httpClient,
		auth:        auth,
		tokens:      tokens,
	}
}

func (s *GoogleService) Enabled() bool {
	return s != nil && s.oauth.ClientID != "" && s.oauth.ClientSecret != ""
}

// NewState returns a random value binding a sign-in start to its callback.
func (s *GoogleService) NewState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate oauth state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// AuthCodeURL is where the browser is sent to start a Google sign-in.
func (s *GoogleService) AuthCodeURL(state string) string {
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// GoogleLogin is the outcome of a completed callback.
type GoogleLogin struct {
	Token   string
	Author  *models.Author
	Created bool
}

// Complete exchanges the authorization code, resolves the Google profile to
// a local author (creating one on first sign-in) and issues a session token.
func (s *GoogleService) Complete(ctx context.Context, code string) (*GoogleLogin, error) {
	if !s.Enabled() {
		return nil, ErrGoogleDisabled
	}
	if code == "" {
		return nil, errors.New("missing authorization code")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange google code: %w", err)
	}

	profile, err := s.fetchProfile(ctx, tok)
	if err != nil {
		return nil, err
	}

	author, created, err := s.auth.FindOrCreateGoogleAuthor(ctx, *profile)
	if err != nil {
		return nil, err
	}
	if created {
		slog.Info("google author created", "author_id", author.ID.String())
	}

	token, err := s.tokens.Issue(author.ID)
	if err != nil {
		return nil, err
	}
	return &GoogleLogin{Token: token, Author: author, Created: created}, nil
}

func (s *GoogleService) fetchProfile(ctx context.Context, tok *oauth2.Token) (*GoogleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch google profile: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google profile request returned status %d", resp.StatusCode)
	}

	var profile GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode google profile: %w", err)
	}
	return &profile, nil
}
