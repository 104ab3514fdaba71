package dto

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/models"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/policy"
)

const defaultReadTimeUnit = "minutes"

type ReadTime struct {
	Value int    `json:"value" validate:"gt=0"`
	Unit  string `json:"unit" validate:"required"`
}

// PostRequest creates a post. Multipart forms send the read time as the flat
// read_time_value / read_time_unit fields.
type PostRequest struct {
	Category      string   `json:"category" form:"category" validate:"required"`
	Title         string   `json:"title" form:"title" validate:"required"`
	Cover         string   `json:"cover" form:"cover" validate:"required"`
	ReadTime      ReadTime `json:"read_time" form:"-"`
	ReadTimeValue int      `json:"-" form:"read_time_value" validate:"-"`
	ReadTimeUnit  string   `json:"-" form:"read_time_unit" validate:"-"`
	Content       string   `json:"content" form:"content" validate:"required"`
}

// Normalize folds the flat form fields into ReadTime.
func (r *PostRequest) Normalize() {
	if r.ReadTime.Value == 0 {
		r.ReadTime.Value = r.ReadTimeValue
	}
	if r.ReadTime.Unit == "" {
		r.ReadTime.Unit = r.ReadTimeUnit
	}
	if r.ReadTime.Unit == "" {
		r.ReadTime.Unit = defaultReadTimeUnit
	}
}

type UpdatePostRequest struct {
	Category *string   `json:"category" validate:"omitempty,min=1"`
	Title    *string   `json:"title" validate:"omitempty,min=1"`
	Cover    *string   `json:"cover" validate:"omitempty,min=1"`
	ReadTime *ReadTime `json:"read_time"`
	Content  *string   `json:"content" validate:"omitempty,min=1"`
}

// Normalize trims the text fields the same way creation does, so a blank
// value fails the min=1 check instead of being stored.
func (r *UpdatePostRequest) Normalize() {
	for _, f := range []*string{r.Category, r.Title, r.Cover} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
	if r.Content != nil && strings.TrimSpace(*r.Content) == "" {
		*r.Content = ""
	}
}

type PostListResponse struct {
	Posts      []models.Post `json:"posts"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	Total      int64         `json:"total"`
	TotalPages int           `json:"total_pages"`
}

type PostDetailResponse struct {
	models.Post
	Permissions policy.Permissions `json:"permissions"`
}

// CommentRequest adds a comment. The comment email is always the caller's;
// Name defaults to the caller's full name.
type CommentRequest struct {
	Name    string `json:"name"`
	Content string `json:"content" validate:"required"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required"`
}
