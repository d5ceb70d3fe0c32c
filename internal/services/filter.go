package services

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// UserFilter narrows the user listing. Zero-valued fields are ignored;
// Empty reports whether any condition was actually supplied, which the
// query service needs to tell "no data at all" from "no matches".
type UserFilter struct {
	Username string // case-insensitive substring
	Name     string // case-insensitive substring
	Email    string // case-insensitive exact
	IsActive *bool

	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	UpdatedAfter  *time.Time
	UpdatedBefore *time.Time
}

func (f *UserFilter) Empty() bool {
	return f.Username == "" && f.Name == "" && f.Email == "" &&
		f.IsActive == nil &&
		f.CreatedAfter == nil && f.CreatedBefore == nil &&
		f.UpdatedAfter == nil && f.UpdatedBefore == nil
}

// apply adds the filter conditions to a query builder. LOWER() on both
// sides keeps the substring/exact matches case-insensitive on SQLite
// and Postgres alike.
func (f *UserFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Username != "" {
		q = q.Where("LOWER(username) LIKE ?", "%"+strings.ToLower(f.Username)+"%")
	}
	if f.Name != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(f.Name)+"%")
	}
	if f.Email != "" {
		q = q.Where("LOWER(email) = ?", strings.ToLower(f.Email))
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if f.CreatedAfter != nil {
		q = q.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		q = q.Where("created_at <= ?", *f.CreatedBefore)
	}
	if f.UpdatedAfter != nil {
		q = q.Where("updated_at >= ?", *f.UpdatedAfter)
	}
	if f.UpdatedBefore != nil {
		q = q.Where("updated_at <= ?", *f.UpdatedBefore)
	}
	return q
}
