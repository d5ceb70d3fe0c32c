package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/soundscene/accounts/internal/apperr"
	"github.com/soundscene/accounts/internal/messages"
	"github.com/soundscene/accounts/internal/models"
	"github.com/soundscene/accounts/internal/validation"
)

func validSignup() SignupInput {
	return SignupInput{
		Email:           "Jane.Doe@Example.com",
		Username:        "janedoe",
		Name:            "Jane Doe",
		Password:        "PassW0rd122?!",
		ConfirmPassword: "PassW0rd122?!",
	}
}

func TestSignup_Success(t *testing.T) {
	db := openTestDB(t)
	svc := NewMutationService(db)

	user, err := svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)

	assert.Equal(t, "jane.doe@example.com", user.Email, "email stored lowercased")
	assert.Equal(t, "janedoe", user.Username)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "PassW0rd122?!", user.Password, "password must be hashed")
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("PassW0rd122?!")))

	require.NotNil(t, user.Profile)
	assert.Equal(t, user.ID, user.Profile.UserID)

	var count int64
	require.NoError(t, db.Model(&models.Profile{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count, "exactly one profile per account")
}

func TestSignup_AggregatesValidationErrors(t *testing.T) {
	svc := NewMutationService(openTestDB(t))

	in := validSignup()
	in.Email = "not-an-email"
	in.Username = "9bad"
	in.Password = "short"
	in.ConfirmPassword = "short"

	_, err := svc.Signup(context.Background(), in)
	e := requireAppErr(t, err, apperr.CodeBadUserInput)
	assert.Equal(t, "Invalid input in the following field(s): email, password, username.", e.Message)

	fields, ok := e.Extensions["errors"].(map[string]any)
	require.True(t, ok, "extensions.errors must be a map, got %T", e.Extensions["errors"])
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "password")
	assert.NotContains(t, fields, "name")
}

func TestSignup_ConfirmPasswordMismatch(t *testing.T) {
	svc := NewMutationService(openTestDB(t))

	in := validSignup()
	in.ConfirmPassword = "Different1?!"

	_, err := svc.Signup(context.Background(), in)
	e := requireAppErr(t, err, apperr.CodeBadUserInput)
	assert.Equal(t, "Invalid input in the following field(s): confirm_password.", e.Message)

	fields := e.Extensions["errors"].(map[string]any)
	assert.Equal(t, []any{"Passwords do not match."}, fields["confirm_password"])
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc := NewMutationService(openTestDB(t))
	ctx := context.Background()

	_, err := svc.Signup(ctx, validSignup())
	require.NoError(t, err)

	in := validSignup()
	in.Username = "otherperson"
	_, err = svc.Signup(ctx, in)
	e := requireAppErr(t, err, apperr.CodeConflict)
	assert.Equal(t, "A user with email 'jane.doe@example.com' already exists.", e.Message)
}

func TestSignup_DuplicateEmailDifferentCase(t *testing.T) {
	svc := NewMutationService(openTestDB(t))
	ctx := context.Background()

	_, err := svc.Signup(ctx, validSignup())
	require.NoError(t, err)

	in := validSignup()
	in.Email = "JANE.DOE@EXAMPLE.COM"
	in.Username = "otherperson"
	_, err = svc.Signup(ctx, in)
	requireAppErr(t, err, apperr.CodeConflict)
}

func TestSignup_DuplicateUsername(t *testing.T) {
	svc := NewMutationService(openTestDB(t))
	ctx := context.Background()

	_, err := svc.Signup(ctx, validSignup())
	require.NoError(t, err)

	in := validSignup()
	in.Email = "other@example.com"
	_, err = svc.Signup(ctx, in)
	e := requireAppErr(t, err, apperr.CodeConflict)
	assert.Equal(t, "A user with username 'janedoe' already exists.", e.Message)
}

func TestLogin(t *testing.T) {
	svc := NewMutationService(openTestDB(t))
	ctx := context.Background()

	_, err := svc.Signup(ctx, validSignup())
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		user, err := svc.Login(ctx, "jane.doe@example.com", "PassW0rd122?!")
		require.NoError(t, err)
		assert.Equal(t, "janedoe", user.Username)
		require.NotNil(t, user.Profile)
	})

	t.Run("email case does not matter", func(t *testing.T) {
		_, err := svc.Login(ctx, "Jane.Doe@Example.COM", "PassW0rd122?!")
		require.NoError(t, err)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody@example.com", "PassW0rd122?!")
		e := requireAppErr(t, err, apperr.CodeUnauthenticated)
		assert.Equal(t, messages.LoginNoAccount, e.Message)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "jane.doe@example.com", "WrongPass1?!")
		e := requireAppErr(t, err, apperr.CodeUnauthenticated)
		assert.Equal(t, messages.LoginWrongPassword, e.Message)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := svc.Login(ctx, "", "")
		e := requireAppErr(t, err, apperr.CodeBadUserInput)
		assert.Equal(t, "Invalid input in the following field(s): email, password.", e.Message)
	})
}

func TestUpdateProfile(t *testing.T) {
	db := openTestDB(t)
	svc := NewMutationService(db)
	svc.now = func() time.Time { return time.Date(2026, time.August, 25, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	user, err := svc.Signup(ctx, validSignup())
	require.NoError(t, err)

	t.Run("sets all fields", func(t *testing.T) {
		bio := "Curious about everything."
		birthday := time.Date(1990, time.June, 15, 0, 0, 0, 0, time.UTC)
		profile, err := svc.UpdateProfile(ctx, user.ID, UpdateProfileInput{
			Bio:          &bio,
			BirthdayDate: &birthday,
			Avatar:       &validation.Upload{Filename: "me.png", Size: 1024},
		})
		require.NoError(t, err)
		assert.Equal(t, bio, profile.Bio)
		require.NotNil(t, profile.BirthdayDate)
		assert.True(t, birthday.Equal(*profile.BirthdayDate))
		assert.Equal(t, "avatars/profile_janedoe/me.png", profile.Avatar)
	})

	t.Run("nil fields leave values alone", func(t *testing.T) {
		profile, err := svc.UpdateProfile(ctx, user.ID, UpdateProfileInput{})
		require.NoError(t, err)
		assert.Equal(t, "Curious about everything.", profile.Bio)
		assert.Equal(t, "avatars/profile_janedoe/me.png", profile.Avatar)
	})

	t.Run("rejects invalid birthday", func(t *testing.T) {
		future := time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC)
		_, err := svc.UpdateProfile(ctx, user.ID, UpdateProfileInput{BirthdayDate: &future})
		e := requireAppErr(t, err, apperr.CodeBadUserInput)
		assert.Equal(t, "Invalid input in the following field(s): birthday_date.", e.Message)
	})

	t.Run("rejects oversized avatar", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, user.ID, UpdateProfileInput{
			Avatar: &validation.Upload{Filename: "huge.png", Size: 3 << 20},
		})
		requireAppErr(t, err, apperr.CodeBadUserInput)
	})

	t.Run("unknown account", func(t *testing.T) {
		bio := "hello"
		_, err := svc.UpdateProfile(ctx, uuid.New(), UpdateProfileInput{Bio: &bio})
		e := requireAppErr(t, err, apperr.CodeNotFound)
		assert.Equal(t, messages.ProfileNotFound, e.Message)
	})
}

func TestDeleteUser(t *testing.T) {
	db := openTestDB(t)
	svc := NewMutationService(db)
	ctx := context.Background()

	user, err := svc.Signup(ctx, validSignup())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, user.ID))

	var users, profiles int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Profile{}).Count(&profiles).Error)
	assert.EqualValues(t, 0, users)
	assert.EqualValues(t, 0, profiles, "profile goes with the account")

	err = svc.DeleteUser(ctx, user.ID)
	e := requireAppErr(t, err, apperr.CodeNotFound)
	assert.Equal(t, messages.UserNotFound, e.Message)
}
