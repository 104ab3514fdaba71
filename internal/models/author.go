package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Author is a registered blog user. Locally registered authors carry a
// bcrypt hash in Password; Google authors carry GoogleID instead.
type Author struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName string    `gorm:"size:100;not null" json:"first_name"`
	LastName  string    `gorm:"size:100;not null" json:"last_name"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	BirthDate *string   `gorm:"size:32" json:"birth_date,omitempty"`
	Avatar    *string   `gorm:"size:512" json:"avatar,omitempty"`
	Password  string    `gorm:"size:255" json:"-"`
	GoogleID  *string   `gorm:"size:255;uniqueIndex" json:"-"`
	Role      string    `gorm:"size:20;default:'author'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Author) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// HasPassword reports whether the author can sign in with a password.
func (a *Author) HasPassword() bool {
	return a.Password != ""
}
