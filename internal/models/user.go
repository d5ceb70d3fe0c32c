package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents an account in the system.
// The ID is opaque and immutable once assigned; email and username are
// globally unique (email is stored lower-cased, so uniqueness is
// case-insensitive at the database level).
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Username  string    `gorm:"uniqueIndex;size:30;not null" json:"username"`
	Name      string    `gorm:"size:50;not null" json:"name"`
	Password  string    `gorm:"size:255;not null" json:"-"` // Hashed, never exposed in JSON
	Role      Role      `gorm:"size:20;not null;default:user" json:"role"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	Profile   *Profile  `gorm:"constraint:OnDelete:CASCADE" json:"profile,omitempty"`
}

// BeforeCreate assigns the opaque identifier and the default role.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// IsAuthenticated satisfies the principal capability check: a loaded
// User is always an authenticated principal.
func (u *User) IsAuthenticated() bool { return true }

// UserID returns the account identifier.
func (u *User) UserID() uuid.UUID { return u.ID }

// UserRole returns the account role.
func (u *User) UserRole() Role { return u.Role }

// HasPermission reports whether the account's role grants the permission.
func (u *User) HasPermission(p Permission) bool { return u.Role.Grants(p) }
