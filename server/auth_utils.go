package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/videotube-server/token"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

func (s *Server) setTokenCookies(w http.ResponseWriter, pair *token.Pair) {
	setTokenCookie(w, accessTokenCookie, pair.AccessToken, 0)
	setTokenCookie(w, refreshTokenCookie, pair.RefreshToken, 0)
}

func (s *Server) clearTokenCookies(w http.ResponseWriter) {
	setTokenCookie(w, accessTokenCookie, "", -1)
	setTokenCookie(w, refreshTokenCookie, "", -1)
}

func setTokenCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// accessTokenFromRequest prefers the accessToken cookie and falls back to
// an "Authorization: Bearer" header.
func accessTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(accessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
