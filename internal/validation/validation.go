// Package validation holds the pure field validators for account and
// profile input. Each validator returns the full list of messages for
// every failing rule; an empty slice means the value is valid.
package validation

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`)

	// Starts with a letter, then letters, numbers, dots, underscores, hyphens.
	usernameLeadRegex    = regexp.MustCompile(`^[a-zA-Z]`)
	usernameCharsetRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

	// Letters (incl. accented), spaces, hyphens and apostrophes.
	nameRegex = regexp.MustCompile(`^[A-Za-zÀ-ÖØ-öø-ÿ\s'-]+$`)

	digitsOnlyRegex = regexp.MustCompile(`^\d+$`)
)

// PasswordSpecials is the fixed set of accepted special characters.
const PasswordSpecials = "@$!%*#?&"

// Email validates the address against a standard address grammar.
func Email(value string) []string {
	if !emailRegex.MatchString(value) {
		return []string{"Enter a valid email address (e.g., user@example.com)."}
	}
	return nil
}

// Username enforces length 3-30, a leading letter and the restricted
// charset. Each failing rule reports its own message.
func Username(value string) []string {
	var msgs []string
	if len(value) < 3 {
		msgs = append(msgs, "Username must be at least 3 characters long.")
	}
	if len(value) > 30 {
		msgs = append(msgs, "Username cannot exceed 30 characters.")
	}
	if value != "" && !usernameLeadRegex.MatchString(value) {
		msgs = append(msgs, "Username must start with a letter.")
	}
	if value != "" && !usernameCharsetRegex.MatchString(value) {
		msgs = append(msgs, "Username can only contain letters, numbers, underscores (_), hyphens (-), and dots (.).")
	}
	return msgs
}

// Name enforces length 2-50 and the letters/space/hyphen/apostrophe
// charset. A whitespace-only value is rejected even when its raw length
// would pass the range checks.
func Name(value string) []string {
	var msgs []string
	if strings.TrimSpace(value) == "" {
		msgs = append(msgs, "Name cannot be empty or only spaces.")
	}
	runes := len([]rune(value))
	if runes < 2 {
		msgs = append(msgs, "Name must be at least 2 characters.")
	}
	if runes > 50 {
		msgs = append(msgs, "Name cannot exceed 50 characters.")
	}
	if value != "" && !nameRegex.MatchString(value) {
		msgs = append(msgs, "Name can only contain letters, spaces, hyphens (-) and apostrophes (').")
	}
	return msgs
}

// Password enforces a minimum length of 8 and at least one uppercase
// letter, one lowercase letter, one digit and one special character.
// Every missing class is reported, not just the first.
func Password(value string) []string {
	var msgs []string
	if len(value) < 8 {
		msgs = append(msgs, "Password must be at least 8 characters long.")
	}
	var upper, lower, digit, special bool
	for _, r := range value {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSpecials, r):
			special = true
		}
	}
	if !upper {
		msgs = append(msgs, "Password must contain at least one uppercase letter.")
	}
	if !lower {
		msgs = append(msgs, "Password must contain at least one lowercase letter.")
	}
	if !digit {
		msgs = append(msgs, "Password must contain at least one digit.")
	}
	if !special {
		msgs = append(msgs, fmt.Sprintf("Password must contain at least one special character (%s).", PasswordSpecials))
	}
	return msgs
}

// Bio is optional: an empty value is valid. A present bio must be 2-250
// characters and must not be composed solely of digits.
func Bio(value string) []string {
	if value == "" {
		return nil
	}
	var msgs []string
	runes := len([]rune(value))
	if runes < 2 {
		msgs = append(msgs, "Your bio is too short. Please enter at least 2 characters.")
	}
	if runes > 250 {
		msgs = append(msgs, "Your bio is too long. Please keep it under 250 characters.")
	}
	if digitsOnlyRegex.MatchString(value) {
		msgs = append(msgs, "Bio cannot contain only numbers.")
	}
	return msgs
}

// Birthday rejects dates before 1900 and dates in the future. A nil
// birthday is valid (the field is optional).
func Birthday(birthday *time.Time, today time.Time) []string {
	if birthday == nil {
		return nil
	}
	var msgs []string
	if birthday.Year() < 1900 {
		msgs = append(msgs, "Birthday date is unrealistic — too far in the past.")
	}
	if birthday.After(today) {
		msgs = append(msgs, "Birthday date cannot be in the future.")
	}
	return msgs
}

// AgeRange enforces an age between 12 and 90 inclusive, derived by
// exact year/month/day comparison: one year is subtracted when the
// birthday has not yet occurred in the current year. A nil birthday is
// valid.
func AgeRange(birthday *time.Time, today time.Time) []string {
	if birthday == nil {
		return nil
	}
	age := today.Year() - birthday.Year()
	if today.Month() < birthday.Month() ||
		(today.Month() == birthday.Month() && today.Day() < birthday.Day()) {
		age--
	}
	var msgs []string
	if age < 12 {
		msgs = append(msgs, "Too young — must be at least 12 years old.")
	}
	// The upper bound is day-precise: the 90th birthday itself is still
	// valid, one day past it is not.
	pastBirthdayThisYear := today.Month() > birthday.Month() ||
		(today.Month() == birthday.Month() && today.Day() > birthday.Day())
	if age > 90 || (age == 90 && pastBirthdayThisYear) {
		msgs = append(msgs, "Too old — must be less than 90 years old.")
	}
	return msgs
}

// MaxAvatarSize is the upload ceiling for avatar images.
const MaxAvatarSize = 2 * 1024 * 1024

var allowedAvatarExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Upload describes an uploaded avatar file as seen by the validators.
// Size is in bytes; a non-positive size means the size is unknown.
type Upload struct {
	Filename string
	Size     int64
}

// Avatar checks the upload's size and file extension. A missing size or
// missing filename is itself an error.
func Avatar(u Upload) []string {
	var msgs []string
	if u.Size <= 0 {
		msgs = append(msgs, "Avatar file size is missing.")
	} else if u.Size > MaxAvatarSize {
		msgs = append(msgs, "Avatar file size must be under 2MB.")
	}
	if u.Filename == "" {
		msgs = append(msgs, "Image file name is missing.")
	} else if !allowedAvatarExtensions[strings.ToLower(filepath.Ext(u.Filename))] {
		msgs = append(msgs, "Only JPG, PNG and JPEG files are allowed.")
	}
	return msgs
}
