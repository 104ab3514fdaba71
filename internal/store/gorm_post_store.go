package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPostStore keeps posts in a relational table with comments in a JSON column.
type GormPostStore struct {
	db *gorm.DB
}

func NewGormPostStore(db *gorm.DB) *GormPostStore {
	return &GormPostStore{db: db}
}

func (s *GormPostStore) CreatePost(ctx context.Context, post *models.Post) error {
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (s *GormPostStore) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return s.getPost(s.db.WithContext(ctx), id)
}

func (s *GormPostStore) getPost(tx *gorm.DB, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	if err := tx.First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	if post.Comments == nil {
		post.Comments = datatypes.JSONSlice[models.Comment]{}
	}
	return &post, nil
}

func (s *GormPostStore) ListPosts(ctx context.Context, filter PostFilter) ([]models.Post, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Post{})
	if filter.Title != "" {
		q = q.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(filter.Title)+"%")
	}
	if filter.Author != "" {
		q = q.Where("author = ?", filter.Author)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	var posts []models.Post
	q = q.Order("created_at DESC").Offset(filter.Offset)
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if err := q.Find(&posts).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, total, nil
}

func (s *GormPostStore) UpdatePost(ctx context.Context, id uuid.UUID, changes PostChanges) (*models.Post, error) {
	updates := map[string]interface{}{}
	if changes.Category != nil {
		updates["category"] = *changes.Category
	}
	if changes.Title != nil {
		updates["title"] = *changes.Title
	}
	if changes.Cover != nil {
		updates["cover"] = *changes.Cover
	}
	if changes.ReadTime != nil {
		updates["read_time_value"] = changes.ReadTime.Value
		updates["read_time_unit"] = changes.ReadTime.Unit
	}
	if changes.Content != nil {
		updates["content"] = *changes.Content
	}

	var post *models.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		post, err = s.getPost(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
		if err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(post).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update post: %w", err)
		}
		post, err = s.getPost(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *GormPostStore) DeletePost(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&models.Post{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete post: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

// mutateComments loads the post under a row lock, applies fn to its comments
// and writes the array back inside the same transaction.
func (s *GormPostStore) mutateComments(ctx context.Context, postID uuid.UUID, fn func(post *models.Post) error) (*models.Post, error) {
	var post *models.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		post, err = s.getPost(tx.Clauses(clause.Locking{Strength: "UPDATE"}), postID)
		if err != nil {
			return err
		}
		if err := fn(post); err != nil {
			return err
		}
		if err := tx.Model(post).Update("comments", post.Comments).Error; err != nil {
			return fmt.Errorf("failed to save comments: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *GormPostStore) AppendComment(ctx context.Context, postID uuid.UUID, comment models.Comment) (*models.Post, error) {
	return s.mutateComments(ctx, postID, func(post *models.Post) error {
		post.Comments = append(post.Comments, comment)
		return nil
	})
}

func (s *GormPostStore) UpdateComment(ctx context.Context, postID, commentID uuid.UUID, content string, at time.Time) (*models.Comment, error) {
	var updated models.Comment
	_, err := s.mutateComments(ctx, postID, func(post *models.Post) error {
		i := post.FindComment(commentID)
		if i < 0 {
			return ErrCommentNotFound
		}
		post.Comments[i].Content = content
		post.Comments[i].UpdatedAt = at
		updated = post.Comments[i]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *GormPostStore) RemoveComment(ctx context.Context, postID, commentID uuid.UUID) error {
	_, err := s.mutateComments(ctx, postID, func(post *models.Post) error {
		i := post.FindComment(commentID)
		if i < 0 {
			return ErrCommentNotFound
		}
		post.Comments = append(post.Comments[:i], post.Comments[i+1:]...)
		return nil
	})
	return err
}
