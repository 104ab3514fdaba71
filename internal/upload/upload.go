// Package upload stores images sent as multipart form files on local disk
// and returns the public URL they are served from.
package upload

import (
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// PublicPrefix is the route the upload directory is served under.
const PublicPrefix = "/uploads"

var (
	ErrTooLarge        = errors.New("file is too large")
	ErrUnsupportedType = errors.New("unsupported file type")
)

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type Store struct {
	dir      string
	baseURL  string
	maxBytes int64
}

func NewStore(dir, baseURL string, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Store{dir: dir, baseURL: strings.TrimRight(baseURL, "/"), maxBytes: maxBytes}, nil
}

func (s *Store) Dir() string { return s.dir }

// FromForm saves the file in the given multipart field. It returns "" with
// a nil error when the request has no such file.
func (s *Store) FromForm(c *fiber.Ctx, field string) (string, error) {
	if !strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		return "", nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return "", fmt.Errorf("failed to read multipart form: %w", err)
	}
	files := form.File[field]
	if len(files) == 0 {
		return "", nil
	}
	return s.save(c, field, files[0])
}

// Remove deletes a file returned by FromForm. URLs this store did not
// produce are ignored.
func (s *Store) Remove(fileURL string) error {
	name, ok := strings.CutPrefix(fileURL, s.baseURL+PublicPrefix+"/")
	if !ok || name == "" || name != filepath.Base(name) {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove upload: %w", err)
	}
	return nil
}

func (s *Store) save(c *fiber.Ctx, field string, fh *multipart.FileHeader) (string, error) {
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return "", ErrTooLarge
	}
	ext, ok := allowedTypes[strings.ToLower(fh.Header.Get(fiber.HeaderContentType))]
	if !ok {
		return "", ErrUnsupportedType
	}

	name := field + "-" + uuid.NewString() + ext
	if err := c.SaveFile(fh, filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("failed to save upload: %w", err)
	}
	return s.baseURL + PublicPrefix + "/" + name, nil
}
