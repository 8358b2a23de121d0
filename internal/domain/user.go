package domain

import (
	"strings"
	"time"
)

// User is the signed-in identity the shell works with.
type User struct {
	ID       UserID `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Valid reports whether u carries the fields a restored session needs.
func (u User) Valid() bool {
	return u.ID != "" && u.Email != ""
}

// Account is a locally managed identity with its password hash.
type Account struct {
	ID           UserID
	Email        string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Profile is the public part of an account.
type Profile struct {
	UserID   UserID `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// AuthSession is the token material returned by a successful sign-in.
type AuthSession struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// AuthResult is what sign-up and sign-in resolve to. Session is nil when the
// identity backend still requires e-mail confirmation.
type AuthResult struct {
	User    User         `json:"user"`
	Session *AuthSession `json:"session,omitempty"`
}

// EmailLocalPart returns the part of an address before '@'.
func EmailLocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
