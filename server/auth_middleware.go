package server

import (
	"context"
	"net/http"

	apperrors "github.com/jrsteele09/videotube-server/internal/errors"
	"github.com/jrsteele09/videotube-server/token"
	"github.com/jrsteele09/videotube-server/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyUser stores the authenticated users.PublicUser
	ContextKeyUser ContextKey = "user"
)

const msgUnauthorizedRequest = "Unauthorized request"

// RequireAuth is middleware that authenticates the request from the
// accessToken cookie or a Bearer token. Requests without a valid token for
// an existing user are rejected with 401.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user, err := s.authenticate(r)
			if err != nil {
				writeError(w, r, err)
				return
			}
			next(w, r.WithContext(context.WithValue(r.Context(), ContextKeyUser, user)))
		}
	}
}

// OptionalAuth authenticates the request when it can and otherwise lets it
// through anonymously.
func (s *Server) OptionalAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if user, err := s.authenticate(r); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), ContextKeyUser, user))
			}
			next(w, r)
		}
	}
}

func (s *Server) authenticate(r *http.Request) (*users.PublicUser, error) {
	accessToken := accessTokenFromRequest(r)
	if accessToken == "" {
		return nil, apperrors.Unauthorized(msgUnauthorizedRequest)
	}

	claims, err := s.tokens.Verify(accessToken, token.KindAccess)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(r.Context(), claims.UserID())
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("Invalid access token", err)
		}
		return nil, apperrors.Internal("Something went wrong", err)
	}

	public := user.Public()
	return &public, nil
}

// currentUser returns the user placed in ctx by RequireAuth or OptionalAuth.
func currentUser(ctx context.Context) (*users.PublicUser, bool) {
	user, ok := ctx.Value(ContextKeyUser).(*users.PublicUser)
	return user, ok && user != nil
}
