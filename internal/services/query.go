// Package services implements the account query and mutation services
// on top of the GORM store.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/soundscene/accounts/internal/apperr"
	"github.com/soundscene/accounts/internal/gid"
	"github.com/soundscene/accounts/internal/messages"
	"github.com/soundscene/accounts/internal/models"
)

// QueryService answers user lookups and listings.
type QueryService struct {
	db *gorm.DB
}

func NewQueryService(db *gorm.DB) *QueryService {
	return &QueryService{db: db}
}

// List returns the filtered, ordered user collection.
// An empty unfiltered table and a filter matching nothing are distinct
// failures; the latter is only evaluated when a filter was supplied.
func (s *QueryService) List(ctx context.Context, orderBy string, filter *UserFilter) ([]models.User, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if total == 0 {
		return nil, apperr.NotFound(messages.UserListEmpty)
	}

	filtered := filter != nil && !filter.Empty()
	if filtered {
		var matches int64
		q := filter.apply(s.db.WithContext(ctx).Model(&models.User{}))
		if err := q.Count(&matches).Error; err != nil {
			return nil, fmt.Errorf("count filtered users: %w", err)
		}
		if matches == 0 {
			return nil, apperr.NotFound(messages.UserSearchEmpty)
		}
	}

	terms, err := parseOrderBy(orderBy)
	if err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Model(&models.User{})
	if filtered {
		q = filter.apply(q)
	}
	for _, t := range terms {
		q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: t.Column}, Desc: t.Desc})
	}

	var users []models.User
	if err := q.Preload("Profile").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// GetByID resolves a user from an opaque identifier. Each malformed
// stage reports its own message; a well-formed identifier that matches
// nothing reports the single not-found message.
func (s *QueryService) GetByID(ctx context.Context, opaqueID string) (*models.User, error) {
	opaqueID = strings.TrimSpace(opaqueID)
	if opaqueID == "" {
		return nil, apperr.New(apperr.CodeBadUserInput, messages.UserIDRequired)
	}

	typeTag, id, err := gid.Decode(opaqueID)
	if errors.Is(err, gid.ErrUndecodable) {
		return nil, apperr.New(apperr.CodeBadUserInput, messages.UserIDUndecoded)
	}
	if typeTag != gid.TypeUser {
		return nil, apperr.New(apperr.CodeBadUserInput, messages.UserIDWrongType)
	}
	if err != nil {
		return nil, apperr.New(apperr.CodeBadUserInput, messages.UserIDInvalidUID)
	}

	var user models.User
	err = s.db.WithContext(ctx).Preload("Profile").First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound(messages.UserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &user, nil
}

// GetByUsername resolves a user by exact (trimmed) username.
func (s *QueryService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if len(username) <= 2 {
		return nil, apperr.New(apperr.CodeBadUserInput, messages.UsernameTooShort)
	}

	var user models.User
	err := s.db.WithContext(ctx).Preload("Profile").First(&user, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound(messages.UserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return &user, nil
}
