package token

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/videotube-server/internal/errors"
	"github.com/jrsteele09/videotube-server/users"
)

const (
	msgIssueFailed    = "Something went wrong while generating access or refresh token."
	msgUnauthorized   = "unauthorized request"
	msgInvalidAccess  = "Invalid access token"
	msgInvalidRefresh = "Invalid refresh token"
	msgRefreshUsed    = "Refresh token is expired or used"
)

// Config holds the signing secrets and lifetimes of both token kinds.
type Config struct {
	AccessSecret  string
	AccessExpiry  time.Duration
	RefreshSecret string
	RefreshExpiry time.Duration
}

func (c Config) Validate() error {
	if c.AccessSecret == "" {
		return fmt.Errorf("access token secret is required")
	}
	if c.RefreshSecret == "" {
		return fmt.Errorf("refresh token secret is required")
	}
	if c.AccessExpiry <= 0 {
		return fmt.Errorf("access token expiry must be positive")
	}
	if c.RefreshExpiry <= 0 {
		return fmt.Errorf("refresh token expiry must be positive")
	}
	return nil
}

// CredentialStore is the part of users.UserRepo the manager needs.
type CredentialStore interface {
	GetByID(ctx context.Context, id string) (*users.User, error)
	SetRefreshToken(ctx context.Context, id, token string) error
	SwapRefreshToken(ctx context.Context, id, expected, next string) (bool, error)
}

// Manager issues, verifies, rotates and revokes access/refresh token pairs.
// A user has at most one live refresh token: the one stored on the user record.
type Manager struct {
	store   CredentialStore
	config  Config
	signers map[Kind]*HMACsigner
	nowFunc func() time.Time
}

type ManagerOption func(*Manager)

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func New(store CredentialStore, config Config, options ...ManagerOption) (*Manager, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("[token New] %w", err)
	}

	m := &Manager{
		store:  store,
		config: config,
		signers: map[Kind]*HMACsigner{
			KindAccess:  NewHMACSigner(config.AccessSecret),
			KindRefresh: NewHMACSigner(config.RefreshSecret),
		},
	}
	for _, opt := range options {
		opt(m)
	}
	if m.nowFunc == nil {
		m.nowFunc = time.Now
	}
	return m, nil
}

// Issue signs a new pair for userID and stores the refresh token, replacing
// any previous one.
func (m *Manager) Issue(ctx context.Context, userID string) (*Pair, error) {
	user, err := m.store.GetByID(ctx, userID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized(msgUnauthorized, err)
		}
		return nil, apperrors.Internal(msgIssueFailed, err)
	}

	pair, err := m.sign(user)
	if err != nil {
		return nil, apperrors.Internal(msgIssueFailed, err)
	}

	if err := m.store.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return nil, apperrors.Internal(msgIssueFailed, err)
	}
	return pair, nil
}

// Verify checks the signature, expiry and kind of tokenString.
func (m *Manager) Verify(tokenString string, kind Kind) (*Claims, error) {
	invalid := msgInvalidAccess
	if kind == KindRefresh {
		invalid = msgInvalidRefresh
	}

	signer, err := m.signer(kind)
	if err != nil {
		return nil, apperrors.Unauthorized(invalid, err)
	}

	claims := &Claims{}
	parsed, err := signer.Parse(tokenString, claims, m.nowFunc)
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, apperrors.Unauthorized(invalid, apperrors.ErrTokenExpired)
		}
		return nil, apperrors.Unauthorized(invalid, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err))
	}
	if !parsed.Valid || claims.Type != kind || claims.Subject == "" {
		return nil, apperrors.Unauthorized(invalid, apperrors.ErrInvalidToken)
	}
	return claims, nil
}

// Rotate exchanges a stored refresh token for a new pair. The presented
// token must equal the stored one; the replacement is a compare-and-swap so
// concurrent rotations of the same token produce exactly one winner.
func (m *Manager) Rotate(ctx context.Context, refreshToken string) (*Pair, error) {
	if refreshToken == "" {
		return nil, apperrors.Unauthorized(msgUnauthorized)
	}

	claims, err := m.Verify(refreshToken, KindRefresh)
	if err != nil {
		return nil, err
	}

	user, err := m.store.GetByID(ctx, claims.UserID())
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized(msgInvalidRefresh, err)
		}
		return nil, apperrors.Internal(msgIssueFailed, err)
	}

	if subtle.ConstantTimeCompare([]byte(user.RefreshToken), []byte(refreshToken)) != 1 {
		return nil, apperrors.Unauthorized(msgRefreshUsed, apperrors.ErrRefreshTokenUsed)
	}

	pair, err := m.sign(user)
	if err != nil {
		return nil, apperrors.Internal(msgIssueFailed, err)
	}

	swapped, err := m.store.SwapRefreshToken(ctx, user.ID, refreshToken, pair.RefreshToken)
	if err != nil {
		return nil, apperrors.Internal(msgIssueFailed, err)
	}
	if !swapped {
		return nil, apperrors.Unauthorized(msgRefreshUsed, apperrors.ErrRefreshTokenUsed)
	}
	return pair, nil
}

// Revoke clears the stored refresh token of userID. Revoking an unknown or
// already revoked user is not an error.
func (m *Manager) Revoke(ctx context.Context, userID string) error {
	if err := m.store.SetRefreshToken(ctx, userID, ""); err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return apperrors.Internal("Something went wrong while logging out.", err)
	}
	return nil
}

func (m *Manager) sign(user *users.User) (*Pair, error) {
	now := m.nowFunc()

	access := &Claims{
		Type:     KindAccess,
		Email:    user.Email,
		Username: user.Username,
		FullName: user.FullName,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.New().String(),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(m.config.AccessExpiry)),
		},
	}
	accessToken, err := m.signers[KindAccess].Sign(access)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refresh := &Claims{
		Type: KindRefresh,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.New().String(),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(m.config.RefreshExpiry)),
		},
	}
	refreshToken, err := m.signers[KindRefresh].Sign(refresh)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &Pair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (m *Manager) signer(kind Kind) (*HMACsigner, error) {
	signer, ok := m.signers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown token kind %q", apperrors.ErrInvalidToken, kind)
	}
	return signer, nil
}
