package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile holds the auxiliary data attached 1:1 to a User.
// It is created in the same transaction as its owner and is destroyed
// only as a cascade of the owner's destruction; no direct profile-delete
// operation exists.
type Profile struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	UserID       uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Bio          string     `gorm:"size:250" json:"bio,omitempty"`
	BirthdayDate *time.Time `json:"birthday_date,omitempty"`
	Avatar       string     `gorm:"size:255" json:"avatar,omitempty"`
}

func (p *Profile) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// AgeAt derives the age from the birthday by exact year/month/day
// comparison: one year is subtracted when the birthday has not yet
// occurred in the current year. Returns false when no birthday is set.
func (p *Profile) AgeAt(today time.Time) (int, bool) {
	if p.BirthdayDate == nil {
		return 0, false
	}
	b := *p.BirthdayDate
	age := today.Year() - b.Year()
	if today.Month() < b.Month() || (today.Month() == b.Month() && today.Day() < b.Day()) {
		age--
	}
	return age, true
}

// Age derives the current age. The value is never stored.
func (p *Profile) Age() (int, bool) {
	return p.AgeAt(time.Now())
}
