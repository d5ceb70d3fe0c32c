// Package messages is the static catalog of user-facing strings.
package messages

// User messages.
const (
	UserListEmpty     = "No users available at the moment."
	UserSearchEmpty   = "No users matched your search. Try adjusting your filters."
	UserNotFound      = "We couldn't find the user you're looking for."
	UserSignupSuccess = "User account created successfully."
	UserLoginSuccess  = "Login successful. Welcome back!"
	UserDeleteSuccess = "User account deleted successfully."

	LoginNoAccount     = "No account was found with this email address."
	LoginWrongPassword = "Incorrect password. Please try again."
)

// Profile messages.
const (
	ProfileNotFound      = "Profile not found."
	ProfileUpdateSuccess = "Profile updated successfully."
)

// Guard messages.
const (
	AuthRequiredAction   = "Authentication Required: You must be logged in to perform this action."
	AuthRequiredResource = "Authentication Required: You must be logged in to access this resource."
	NotResourceOwner     = "Access Denied: This resource belongs to another user. You are not authorized to access it."
)

// Lookup messages for the opaque-identifier pipeline. Each malformed
// stage has its own message; every well-formed miss shares UserNotFound.
const (
	UserIDRequired   = "Requires a valid user UUID."
	UserIDUndecoded  = "User ID could not be decoded."
	UserIDWrongType  = "The provided ID does not refer to a user."
	UserIDInvalidUID = "User ID does not contain a valid UUID."

	UsernameTooShort = "Please enter a valid username with at least 3 characters."
)
