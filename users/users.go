package users

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is a stored account. The secret fields are never serialised; use
// Public for anything that leaves the service.
type User struct {
	ID           string    `json:"id,omitempty"`
	Username     string    `json:"username,omitempty"` // Unique, lower-cased
	Email        string    `json:"email,omitempty"`    // Unique
	FullName     string    `json:"fullName,omitempty"`
	Avatar       string    `json:"avatar,omitempty"`     // Media URL
	CoverImage   string    `json:"coverImage,omitempty"` // Media URL, optional
	WatchHistory []string  `json:"watchHistory"`         // Video IDs
	PasswordHash string    `json:"-"`                    // bcrypt hash - never serialize
	RefreshToken string    `json:"-"`                    // Current refresh token, empty when logged out - never serialize
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicUser is the projection of a User without credential material.
type PublicUser struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	Avatar       string    `json:"avatar"`
	CoverImage   string    `json:"coverImage,omitempty"`
	WatchHistory []string  `json:"watchHistory"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Summary is the short identity embedded in other resources.
type Summary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FullName:     u.FullName,
		Avatar:       u.Avatar,
		CoverImage:   u.CoverImage,
		WatchHistory: copyHistory(u.WatchHistory),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (u *User) Summary() Summary {
	return Summary{ID: u.ID, Username: u.Username, Email: u.Email, FullName: u.FullName}
}

// Clone returns a deep copy so stores never hand out shared state.
func (u *User) Clone() *User {
	c := *u
	c.WatchHistory = copyHistory(u.WatchHistory)
	return &c
}

// copyHistory never returns nil so watchHistory always serialises as a list.
func copyHistory(history []string) []string {
	c := make([]string, len(history))
	copy(c, history)
	return c
}

// NormalizeUsername trims and lower-cases a username.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

var (
	emailPattern       = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	passwordAlphabet   = regexp.MustCompile(`^[A-Za-z\d@$!%*?&]{8,}$`)
	passwordHasLower   = regexp.MustCompile(`[a-z]`)
	passwordHasUpper   = regexp.MustCompile(`[A-Z]`)
	passwordHasDigit   = regexp.MustCompile(`\d`)
	passwordHasSpecial = regexp.MustCompile(`[@$!%*?&]`)

	ErrWeakPassword = errors.New("Password should be at least eight characters long and contain at least one uppercase, one lower case, one special character and at least one number.")
)

// ValidEmail reports whether email has the shape local@domain.tld.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePasswordStrength checks the password policy:
// - At least 8 characters, only letters, digits and @$!%*?&
// - At least one lowercase and one uppercase letter
// - At least one digit and one of @$!%*?&
func ValidatePasswordStrength(password string) error {
	if !passwordAlphabet.MatchString(password) ||
		!passwordHasLower.MatchString(password) ||
		!passwordHasUpper.MatchString(password) ||
		!passwordHasDigit.MatchString(password) ||
		!passwordHasSpecial.MatchString(password) {
		return ErrWeakPassword
	}
	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CheckPassword checks a password against the user's hash
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.PasswordHash)
}
