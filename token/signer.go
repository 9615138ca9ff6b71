package token

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// HMACsigner signs and parses the tokens of one kind with a symmetric
// HMAC-SHA256 secret. Each token kind gets its own signer, so a token of
// one kind never verifies as the other.
type HMACsigner struct {
	secret []byte
}

func NewHMACSigner(secret string) *HMACsigner {
	return &HMACsigner{
		secret: []byte(secret),
	}
}

func (h *HMACsigner) Sign(claims *Claims) (string, error) {
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(h.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token with HMAC")
	}
	return signedToken, nil
}

// Parse validates the signature and expiry of tokenString and fills claims.
// Expiry is required and judged against now.
func (h *HMACsigner) Parse(tokenString string, claims *Claims, now func() time.Time) (*jwtlib.Token, error) {
	return jwtlib.ParseWithClaims(tokenString, claims, h.verificationKey,
		jwtlib.WithValidMethods([]string{h.signingMethod().Alg()}),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(now),
	)
}

func (h *HMACsigner) verificationKey(token *jwtlib.Token) (any, error) {
	if _, ok := token.Method.(*jwtlib.SigningMethodHMAC); !ok {
		return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return h.secret, nil
}

func (h *HMACsigner) signingMethod() jwtlib.SigningMethod {
	return jwtlib.SigningMethodHS256
}
