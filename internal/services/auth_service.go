package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/dto"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// passwordCost is the bcrypt work factor. bcrypt salts every hash itself.
const passwordCost = 10

type AuthService struct {
	db     *gorm.DB
	tokens *TokenService
}

func NewAuthService(db *gorm.DB, tokens *TokenService) *AuthService {
	return &AuthService{db: db, tokens: tokens}
}

// Register creates a locally authenticated author and signs them in.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*models.Author, string, error) {
	req.Email = normalizeEmail(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if err := validateRequest(req); err != nil {
		return nil, "", err
	}

	taken, err := s.emailTaken(ctx, req.Email)
	if err != nil {
		return nil, "", err
	}
	if taken {
		return nil, "", ErrEmailTaken
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	author := models.Author{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  hash,
		BirthDate: optional(req.BirthDate),
		Avatar:    optional(req.Avatar),
	}
	if err := s.db.WithContext(ctx).Create(&author).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("failed to create author: %w", err)
	}

	token, err := s.tokens.Issue(author.ID)
	if err != nil {
		return nil, "", err
	}
	return &author, token, nil
}

// Login checks the password of a local author and issues a session token.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (string, *models.Author, error) {
	email := normalizeEmail(req.Email)

	var author models.Author
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&author).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to load author: %w", err)
	}
	if !author.HasPassword() || !checkPassword(author.Password, req.Password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(author.ID)
	if err != nil {
		return "", nil, err
	}
	return token, &author, nil
}

// Resolve loads the author a verified token refers to.
func (s *AuthService) Resolve(ctx context.Context, id uuid.UUID) (*models.Author, error) {
	var author models.Author
	if err := s.db.WithContext(ctx).First(&author, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuthorNotFound
		}
		return nil, fmt.Errorf("failed to load author: %w", err)
	}
	return &author, nil
}

// ChangePassword re-hashes the password of the given author. Authors that
// already have a password must confirm it; Google authors may set a first one.
func (s *AuthService) ChangePassword(ctx context.Context, id uuid.UUID, req *dto.ChangePasswordRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	author, err := s.Resolve(ctx, id)
	if err != nil {
		return err
	}
	if author.HasPassword() && !checkPassword(author.Password, req.CurrentPassword) {
		return ErrInvalidCredentials
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(author).Update("password", hash).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// GoogleProfile is the subset of the Google userinfo payload used to build
// a local author.
type GoogleProfile struct {
	Subject       string `json:"sub"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Picture       string `json:"picture"`
}

// FindOrCreateGoogleAuthor returns the author linked to the Google subject,
// linking an existing local account with the same verified email or creating
// a new author. created reports whether a new record was inserted.
func (s *AuthService) FindOrCreateGoogleAuthor(ctx context.Context, profile GoogleProfile) (author *models.Author, created bool, err error) {
	if profile.Subject == "" {
		return nil, false, errors.New("google profile has no subject")
	}
	email := normalizeEmail(profile.Email)
	if email == "" {
		return nil, false, errors.New("google profile has no email")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Author
		err := tx.Where("google_id = ?", profile.Subject).First(&existing).Error
		if err == nil {
			author = &existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up google author: %w", err)
		}

		err = tx.Where("email = ?", email).First(&existing).Error
		if err == nil {
			if !profile.EmailVerified {
				return ErrEmailTaken
			}
			if err := tx.Model(&existing).Update("google_id", profile.Subject).Error; err != nil {
				return fmt.Errorf("failed to link google account: %w", err)
			}
			existing.GoogleID = &profile.Subject
			author = &existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up author by email: %w", err)
		}

		local := strings.Split(email, "@")[0]
		subject := profile.Subject
		fresh := models.Author{
			FirstName: firstNonEmpty(profile.GivenName, profile.Name, local),
			LastName:  firstNonEmpty(profile.FamilyName, "-"),
			Email:     email,
			GoogleID:  &subject,
			Avatar:    optional(profile.Picture),
		}
		if err := tx.Create(&fresh).Error; err != nil {
			return fmt.Errorf("failed to create google author: %w", err)
		}
		author = &fresh
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return author, created, nil
}

func (s *AuthService) emailTaken(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Author{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// checkPassword relies on bcrypt, which compares digests in constant time.
func checkPassword(hash, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
