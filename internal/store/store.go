// Package store persists posts together with their embedded comments.
//
// Every comment mutation is applied to a single post record in one atomic
// step, so concurrent comment writes on the same post never lose updates.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/models"
	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrPostNotFound    = fmt.Errorf("post %w", ErrNotFound)
	ErrCommentNotFound = fmt.Errorf("comment %w", ErrNotFound)
)

// PostFilter narrows a post listing. Zero values mean "no constraint".
type PostFilter struct {
	Title  string
	Author string
	Offset int
	Limit  int
}

// PostChanges holds the mutable fields of a post. Nil fields are left as is.
type PostChanges struct {
	Category *string
	Title    *string
	Cover    *string
	ReadTime *models.ReadTime
	Content  *string
}

type PostStore interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error)
	ListPosts(ctx context.Context, filter PostFilter) ([]models.Post, int64, error)
	UpdatePost(ctx context.Context, id uuid.UUID, changes PostChanges) (*models.Post, error)
	DeletePost(ctx context.Context, id uuid.UUID) error

	AppendComment(ctx context.Context, postID uuid.UUID, comment models.Comment) (*models.Post, error)
	UpdateComment(ctx context.Context, postID, commentID uuid.UUID, content string, at time.Time) (*models.Comment, error)
	RemoveComment(ctx context.Context, postID, commentID uuid.UUID) error
}
