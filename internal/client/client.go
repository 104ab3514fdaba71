package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/dto"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/models"
	"github.com/google/uuid"
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned %d", e.Status)
	}
	return fmt.Sprintf("api returned %d: %s", e.Status, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Client calls the blog API, sending the session token as a bearer token
// whenever one is set.
type Client struct {
	baseURL string
	session *Session
	http    *http.Client
}

func New(baseURL string, session *Session, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if session == nil {
		session, _ = OpenSession("")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: session,
		http:    httpClient,
	}
}

func (c *Client) Session() *Session { return c.session }

// Login exchanges credentials for a token and stores it in the session.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var resp dto.LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", dto.LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return err
	}
	return c.session.Set(resp.Token)
}

// Logout forgets the token. Tokens are stateless, so nothing is sent.
func (c *Client) Logout() error {
	return c.session.Clear()
}

// Me returns the signed-in author. A 401 clears the stale session token.
func (c *Client) Me(ctx context.Context) (*models.Author, error) {
	var author models.Author
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &author); err != nil {
		if IsUnauthorized(err) {
			_ = c.session.Clear()
		}
		return nil, err
	}
	return &author, nil
}

func (c *Client) ListPosts(ctx context.Context, title string, page, limit int) (*dto.PostListResponse, error) {
	q := url.Values{}
	if title != "" {
		q.Set("title", title)
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/posts"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp dto.PostListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetPost(ctx context.Context, id uuid.UUID) (*dto.PostDetailResponse, error) {
	var resp dto.PostDetailResponse
	if err := c.do(ctx, http.MethodGet, "/api/posts/"+id.String(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) AddComment(ctx context.Context, postID uuid.UUID, content string) (*models.Comment, error) {
	var comment models.Comment
	path := "/api/posts/" + postID.String() + "/comments"
	if err := c.do(ctx, http.MethodPost, path, dto.CommentRequest{Content: content}, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (c *Client) DeletePost(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/posts/"+id.String(), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp dto.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		return &APIError{Status: resp.StatusCode, Message: errResp.Message}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
