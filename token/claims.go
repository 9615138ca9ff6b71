package token

import (
	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Kind distinguishes access tokens from refresh tokens. Each kind is signed
// with its own secret and carries its kind in the "typ" claim.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Claims are the JWT claims of both token kinds. Refresh tokens only carry
// the subject; access tokens add the identity snapshot taken at issuance.
type Claims struct {
	Type     Kind   `json:"typ"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	FullName string `json:"fullName,omitempty"`
	jwtlib.RegisteredClaims
}

// UserID returns the subject of the token.
func (c *Claims) UserID() string {
	return c.Subject
}

// Pair is the result of issuing or rotating tokens.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
