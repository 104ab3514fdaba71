package services

import (
	"context"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/dto"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/identity"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthorService struct {
	db    *gorm.DB
	auth  *AuthService
	posts *PostService
}

func NewAuthorService(db *gorm.DB, auth *AuthService, posts *PostService) *AuthorService {
	return &AuthorService{db: db, auth: auth, posts: posts}
}

func (s *AuthorService) List(ctx context.Context, page Page) (*dto.AuthorListResponse, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Author{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count authors: %w", err)
	}

	authors := []models.Author{}
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&authors).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list authors: %w", err)
	}

	return &dto.AuthorListResponse{
		Authors:    authors,
		Page:       page.Number,
		Limit:      page.Limit,
		Total:      total,
		TotalPages: page.TotalPages(total),
	}, nil
}

func (s *AuthorService) Get(ctx context.Context, id uuid.UUID) (*models.Author, error) {
	return s.auth.Resolve(ctx, id)
}

// Update changes profile fields. Authors may only edit themselves; the email
// is immutable because posts reference their author by email.
func (s *AuthorService) Update(ctx context.Context, p *identity.Principal, id uuid.UUID, req *dto.UpdateAuthorRequest) (*models.Author, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	author, err := s.editable(ctx, p, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.BirthDate != nil {
		updates["birth_date"] = optional(*req.BirthDate)
	}
	if req.Avatar != nil {
		updates["avatar"] = optional(*req.Avatar)
	}
	if len(updates) == 0 {
		return author, nil
	}
	if err := s.db.WithContext(ctx).Model(author).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update author: %w", err)
	}
	return s.auth.Resolve(ctx, id)
}

func (s *AuthorService) SetAvatar(ctx context.Context, p *identity.Principal, id uuid.UUID, avatar string) (*models.Author, error) {
	author, err := s.editable(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(author).Update("avatar", avatar).Error; err != nil {
		return nil, fmt.Errorf("failed to update avatar: %w", err)
	}
	author.Avatar = &avatar
	return author, nil
}

// Delete removes the author row, which frees its email and Google id for a
// later registration. Callers gate this behind admin access.
func (s *AuthorService) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Unscoped().Delete(&models.Author{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete author: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAuthorNotFound
	}
	return nil
}

// Posts lists the posts written by the author with the given id.
func (s *AuthorService) Posts(ctx context.Context, id uuid.UUID, page Page) (*dto.PostListResponse, error) {
	author, err := s.auth.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.posts.List(ctx, PostQuery{Author: author.Email, Page: page})
}

func (s *AuthorService) editable(ctx context.Context, p *identity.Principal, id uuid.UUID) (*models.Author, error) {
	if p == nil {
		return nil, ErrUnauthenticated
	}
	author, err := s.auth.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	if author.ID != p.ID {
		return nil, ErrForbidden
	}
	return author, nil
}
