package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ReadTime is the estimated reading time of a post, e.g. {5, "minutes"}.
type ReadTime struct {
	Value int    `gorm:"not null" json:"value"`
	Unit  string `gorm:"size:20;not null" json:"unit"`
}

// Comment lives inside its post and has no lifecycle of its own.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Post is a blog article. Author holds the author's email, not a foreign key.
type Post struct {
	ID        uuid.UUID                    `gorm:"type:uuid;primaryKey" json:"id"`
	Category  string                       `gorm:"size:100;not null;index" json:"category"`
	Title     string                       `gorm:"size:255;not null" json:"title"`
	Cover     string                       `gorm:"size:512;not null" json:"cover"`
	ReadTime  ReadTime                     `gorm:"embedded;embeddedPrefix:read_time_" json:"read_time"`
	Author    string                       `gorm:"size:255;not null;index" json:"author"`
	Content   string                       `gorm:"type:text;not null" json:"content"`
	Comments  datatypes.JSONSlice[Comment] `json:"comments"`
	CreatedAt time.Time                    `gorm:"index" json:"created_at"`
	UpdatedAt time.Time                    `json:"updated_at"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Comments == nil {
		p.Comments = datatypes.JSONSlice[Comment]{}
	}
	return nil
}

// FindComment returns the index of the comment with the given id, or -1.
func (p *Post) FindComment(id uuid.UUID) int {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			return i
		}
	}
	return -1
}
