package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/jrsteele09/videotube-server/auth"
	apperrors "github.com/jrsteele09/videotube-server/internal/errors"
)

// multipartOverhead leaves room for the text fields around uploaded files.
const multipartOverhead = 1 << 20

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type updateDetailsRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// RegisterHandler creates an account from a multipart form carrying the
// text fields plus an avatar and an optional coverImage file.
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.parseUpload(w, r, 2); err != nil {
			writeError(w, r, err)
			return
		}

		avatar, closeAvatar, err := formFile(r, "avatar")
		if err != nil {
			writeError(w, r, err)
			return
		}
		defer closeAvatar()

		cover, closeCover, err := formFile(r, "coverImage")
		if err != nil {
			writeError(w, r, err)
			return
		}
		defer closeCover()

		user, err := s.accounts.Register(r.Context(), auth.RegisterInput{
			Username:   r.FormValue("username"),
			Email:      r.FormValue("email"),
			FullName:   r.FormValue("fullName"),
			Password:   r.FormValue("password"),
			Avatar:     avatar,
			CoverImage: cover,
		})
		s.recordAuthEvent("register", err)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusCreated, user, "User registered Successfully")
	}
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		result, err := s.accounts.Login(r.Context(), auth.LoginInput{
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
		})
		s.recordAuthEvent("login", err)
		if err != nil {
			writeError(w, r, err)
			return
		}

		setTokenCookie(w, accessTokenCookie, result.AccessToken, 0)
		setTokenCookie(w, refreshTokenCookie, result.RefreshToken, 0)
		writeData(w, http.StatusOK, result, "User logged in successfully")
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := currentUser(r.Context())

		err := s.accounts.Logout(r.Context(), user.ID)
		s.recordAuthEvent("logout", err)
		if err != nil {
			writeError(w, r, err)
			return
		}

		s.clearTokenCookies(w)
		writeData(w, http.StatusOK, nil, "User logged out.")
	}
}

// RefreshTokenHandler rotates the refresh token taken from the refreshToken
// cookie or, failing that, from the request body.
func (s *Server) RefreshTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var refreshToken string
		if cookie, err := r.Cookie(refreshTokenCookie); err == nil {
			refreshToken = cookie.Value
		}
		if refreshToken == "" {
			var req refreshRequest
			if err := decodeJSON(r, &req); err != nil {
				writeError(w, r, err)
				return
			}
			refreshToken = req.RefreshToken
		}

		pair, err := s.accounts.Refresh(r.Context(), refreshToken)
		s.recordAuthEvent("refresh", err)
		if err != nil {
			writeError(w, r, err)
			return
		}

		s.setTokenCookies(w, pair)
		writeData(w, http.StatusOK, pair, "Access token refreshed")
	}
}

func (s *Server) ChangePasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := currentUser(r.Context())

		var req changePasswordRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		if err := s.accounts.ChangePassword(r.Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, nil, "Password updated successfully.")
	}
}

func (s *Server) CurrentUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := currentUser(r.Context())
		writeData(w, http.StatusOK, user, "User fetched successfully.")
	}
}

func (s *Server) UpdateDetailsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := currentUser(r.Context())

		var req updateDetailsRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		updated, err := s.accounts.UpdateDetails(r.Context(), user.ID, req.FullName, req.Email)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, updated, "User updated successfully.")
	}
}

func (s *Server) UpdateAvatarHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := currentUser(r.Context())
		if err := s.parseUpload(w, r, 1); err != nil {
			writeError(w, r, err)
			return
		}

		file, closeFile, err := formFile(r, "avatar")
		if err != nil {
			writeError(w, r, err)
			return
		}
		defer closeFile()

		updated, err := s.accounts.UpdateAvatar(r.Context(), user.ID, file)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, updated, "Avatar updated successfully.")
	}
}

func (s *Server) UpdateCoverImageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := currentUser(r.Context())
		if err := s.parseUpload(w, r, 1); err != nil {
			writeError(w, r, err)
			return
		}

		file, closeFile, err := formFile(r, "coverImage")
		if err != nil {
			writeError(w, r, err)
			return
		}
		defer closeFile()

		updated, err := s.accounts.UpdateCoverImage(r.Context(), user.ID, file)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, updated, "Cover image updated successfully.")
	}
}

// parseUpload bounds the request body to files uploads plus form overhead
// and parses it. Non-multipart bodies are parsed as plain forms.
func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request, files int64) error {
	maxBytes := s.config.GetMaxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, files*maxBytes+multipartOverhead)

	if err := r.ParseMultipartForm(maxBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperrors.BadRequest("The file exceeds the maximum upload size.", apperrors.ErrMediaTooLarge)
		}
		return apperrors.BadRequest("Invalid form data", err)
	}
	return nil
}

// formFile returns the named upload or nil when the field is absent.
func formFile(r *http.Request, name string) (io.Reader, func(), error) {
	file, _, err := r.FormFile(name)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, func() {}, apperrors.BadRequest("Invalid form data", err)
	}
	return file, func() { file.Close() }, nil
}

func (s *Server) recordAuthEvent(event string, err error) {
	if s.metrics != nil {
		s.metrics.AuthEvent(event, err)
	}
}
