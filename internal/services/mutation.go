package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/soundscene/accounts/internal/apperr"
	"github.com/soundscene/accounts/internal/messages"
	"github.com/soundscene/accounts/internal/models"
	"github.com/soundscene/accounts/internal/validation"
)

// MutationService executes the account write flows: signup, login,
// profile update and account deletion.
type MutationService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewMutationService(db *gorm.DB) *MutationService {
	return &MutationService{db: db, now: time.Now}
}

// SignupInput carries the raw signup arguments.
type SignupInput struct {
	Email           string
	Username        string
	Name            string
	Password        string
	ConfirmPassword string
}

// Signup validates all fields, then creates the account and its profile
// in one transaction. Validation failures are aggregated; a uniqueness
// race at creation time surfaces as a CONFLICT (the database unique
// indexes guarantee exactly one of two racing signups wins).
func (s *MutationService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	email := strings.TrimSpace(in.Email)
	username := strings.TrimSpace(in.Username)
	name := strings.TrimSpace(in.Name)

	fieldErrors := map[string]any{}
	if msgs := validation.Email(email); len(msgs) > 0 {
		fieldErrors["email"] = msgs
	}
	if msgs := validation.Username(username); len(msgs) > 0 {
		fieldErrors["username"] = msgs
	}
	if msgs := validation.Name(name); len(msgs) > 0 {
		fieldErrors["name"] = msgs
	}
	if msgs := validation.Password(in.Password); len(msgs) > 0 {
		fieldErrors["password"] = msgs
	}
	if in.Password != in.ConfirmPassword {
		fieldErrors["confirm_password"] = []string{"Passwords do not match."}
	}
	if len(fieldErrors) > 0 {
		return nil, apperr.InvalidInput(fieldErrors)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:    strings.ToLower(email),
		Username: username,
		Name:     name,
		Password: string(hashed),
		Role:     models.RoleUser,
		IsActive: true,
	}
	var profile models.Profile

	// The profile is created inside the same transaction as the user,
	// so "every account has exactly one profile" holds on the creation
	// path itself.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		profile = models.Profile{UserID: user.ID}
		return tx.Create(&profile).Error
	})
	if err != nil {
		if apperr.IsUniqueViolation(err) {
			return nil, apperr.ConflictFromError(err, map[string]string{
				"email":    user.Email,
				"username": user.Username,
			})
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	user.Profile = &profile
	return &user, nil
}

// Login verifies credentials and returns the account. The unknown-email
// and wrong-password messages are deliberately distinct (observed
// behavior; it does leak account existence).
func (s *MutationService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)

	fieldErrors := map[string]any{}
	if email == "" {
		fieldErrors["email"] = []string{"Email is required."}
	} else if msgs := validation.Email(email); len(msgs) > 0 {
		fieldErrors["email"] = msgs
	}
	if password == "" {
		fieldErrors["password"] = []string{"Password is required."}
	}
	if len(fieldErrors) > 0 {
		return nil, apperr.InvalidInput(fieldErrors)
	}

	var user models.User
	err := s.db.WithContext(ctx).Preload("Profile").
		First(&user, "email = ?", strings.ToLower(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Unauthenticated(messages.LoginNoAccount)
	}
	if err != nil {
		return nil, fmt.Errorf("look up account: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, apperr.Unauthenticated(messages.LoginWrongPassword)
	}
	return &user, nil
}

// UpdateProfileInput carries the optional profile fields; nil means
// "leave unchanged".
type UpdateProfileInput struct {
	Bio          *string
	BirthdayDate *time.Time
	Avatar       *validation.Upload
}

// UpdateProfile validates and applies the profile changes for the given
// account.
func (s *MutationService) UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*models.Profile, error) {
	today := s.now()

	fieldErrors := map[string]any{}
	if in.Bio != nil {
		if msgs := validation.Bio(*in.Bio); len(msgs) > 0 {
			fieldErrors["bio"] = msgs
		}
	}
	if in.BirthdayDate != nil {
		var msgs []string
		msgs = append(msgs, validation.Birthday(in.BirthdayDate, today)...)
		msgs = append(msgs, validation.AgeRange(in.BirthdayDate, today)...)
		if len(msgs) > 0 {
			fieldErrors["birthday_date"] = msgs
		}
	}
	if in.Avatar != nil {
		if msgs := validation.Avatar(*in.Avatar); len(msgs) > 0 {
			fieldErrors["avatar"] = msgs
		}
	}
	if len(fieldErrors) > 0 {
		return nil, apperr.InvalidInput(fieldErrors)
	}

	var user models.User
	err := s.db.WithContext(ctx).Preload("Profile").First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && user.Profile == nil) {
		return nil, apperr.NotFound(messages.ProfileNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	profile := user.Profile
	if in.Bio != nil {
		profile.Bio = *in.Bio
	}
	if in.BirthdayDate != nil {
		profile.BirthdayDate = in.BirthdayDate
	}
	if in.Avatar != nil {
		profile.Avatar = avatarPath(user.Username, in.Avatar.Filename)
	}

	if err := s.db.WithContext(ctx).Save(profile).Error; err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	return profile, nil
}

// avatarPath builds the storage path for a user's avatar image,
// e.g. "avatars/profile_johndoe/avatar.png".
func avatarPath(username, filename string) string {
	return path.Join("avatars", "profile_"+username, filename)
}

// DeleteUser removes an account. The profile is removed in the same
// transaction; there is deliberately no operation that deletes a
// profile on its own.
func (s *MutationService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(messages.UserNotFound)
	}
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Profile{}).Error; err != nil {
			return fmt.Errorf("delete profile: %w", err)
		}
		if err := tx.Delete(&user).Error; err != nil {
			return fmt.Errorf("delete account: %w", err)
		}
		return nil
	})
}
