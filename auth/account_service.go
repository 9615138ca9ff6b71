// Package auth implements the account operations of the platform:
// registration, login, logout, token refresh and profile maintenance.
package auth

import (
	"context"
	"io"
	"strings"

	apperrors "github.com/jrsteele09/videotube-server/internal/errors"
	"github.com/jrsteele09/videotube-server/internal/utils"
	"github.com/jrsteele09/videotube-server/media"
	"github.com/jrsteele09/videotube-server/token"
	"github.com/jrsteele09/videotube-server/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// RegisterInput is the payload of a registration. Avatar is required,
// CoverImage is optional; nil means the file was not supplied.
type RegisterInput struct {
	Username   string
	Email      string
	FullName   string
	Password   string
	Avatar     io.Reader
	CoverImage io.Reader
}

// LoginInput identifies the user by username or email.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	User         users.PublicUser `json:"user"`
	AccessToken  string           `json:"accessToken"`
	RefreshToken string           `json:"refreshToken"`
}

// AccountService provides the account operations on top of the user store,
// the token manager and the media pipeline.
type AccountService struct {
	users    users.UserRepo
	tokens   *token.Manager
	uploader *media.Uploader
}

func NewAccountService(userRepo users.UserRepo, tokens *token.Manager, uploader *media.Uploader) (*AccountService, error) {
	if userRepo == nil {
		return nil, errors.New("[NewAccountService] Users repo is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewAccountService] token manager is required")
	}
	if uploader == nil {
		return nil, errors.New("[NewAccountService] uploader is required")
	}
	return &AccountService{
		users:    userRepo,
		tokens:   tokens,
		uploader: uploader,
	}, nil
}

// Register creates a new user. Media uploaded for the user is removed again
// if the user cannot be stored.
func (as *AccountService) Register(ctx context.Context, in RegisterInput) (*users.PublicUser, error) {
	fields := registrationFields{
		Username: users.NormalizeUsername(in.Username),
		Email:    strings.TrimSpace(in.Email),
		FullName: strings.TrimSpace(in.FullName),
		Password: in.Password,
	}
	if err := check(fields, msgAllFieldsRequired); err != nil {
		return nil, err
	}

	existing, err := as.users.FindByUsernameOrEmail(ctx, fields.Username, fields.Email)
	if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, errors.Wrap(err, "[Register] FindByUsernameOrEmail")
	}
	if existing != nil {
		return nil, apperrors.Conflict(msgUserExists)
	}

	if in.Avatar == nil {
		return nil, apperrors.BadRequest(msgAvatarRequired)
	}
	avatarURL, err := as.uploader.Upload(ctx, media.KindAvatar, in.Avatar)
	if err != nil {
		return nil, uploadError(err, apperrors.BadRequest(msgAvatarRequired, err))
	}

	var coverURL string
	if in.CoverImage != nil {
		coverURL, err = as.uploader.Upload(ctx, media.KindCoverImage, in.CoverImage)
		if err != nil {
			as.discardMedia(ctx, avatarURL)
			return nil, uploadError(err, apperrors.Internal(msgUploadFailed, err))
		}
	}

	passwordHash, err := users.HashPassword(fields.Password)
	if err != nil {
		as.discardMedia(ctx, avatarURL, coverURL)
		return nil, apperrors.Internal(msgRegisterFailed, err)
	}

	user := &users.User{
		Username:     fields.Username,
		Email:        fields.Email,
		FullName:     fields.FullName,
		Avatar:       avatarURL,
		CoverImage:   coverURL,
		WatchHistory: []string{},
		PasswordHash: passwordHash,
	}
	if err := as.users.Create(ctx, user); err != nil {
		as.discardMedia(ctx, avatarURL, coverURL)
		if apperrors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, apperrors.Conflict(msgUserExists, err)
		}
		return nil, apperrors.Internal(msgRegisterFailed, errors.Wrap(err, "[Register] Create"))
	}

	created, err := as.users.GetByID(ctx, user.ID)
	if err != nil {
		return nil, apperrors.Internal(msgRegisterFailed, errors.Wrap(err, "[Register] GetByID"))
	}
	public := created.Public()
	return &public, nil
}

// Login checks the credentials and issues a fresh token pair.
func (as *AccountService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	fields := loginFields{
		Username: users.NormalizeUsername(in.Username),
		Email:    strings.TrimSpace(in.Email),
	}
	if err := check(fields, msgLoginIdentity); err != nil {
		return nil, err
	}

	user, err := as.users.FindByUsernameOrEmail(ctx, fields.Username, fields.Email)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized(msgInvalidCredentials, apperrors.ErrInvalidCredentials)
		}
		return nil, errors.Wrap(err, "[Login] FindByUsernameOrEmail")
	}
	if !user.CheckPassword(in.Password) {
		return nil, apperrors.Unauthorized(msgInvalidCredentials, apperrors.ErrInvalidCredentials)
	}

	pair, err := as.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		User:         user.Public(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Logout revokes the user's refresh token.
func (as *AccountService) Logout(ctx context.Context, userID string) error {
	return as.tokens.Revoke(ctx, userID)
}

// Refresh exchanges a refresh token for a new pair.
func (as *AccountService) Refresh(ctx context.Context, refreshToken string) (*token.Pair, error) {
	return as.tokens.Rotate(ctx, strings.TrimSpace(refreshToken))
}

// ChangePassword replaces the password hash after checking the old password.
// The current refresh token stays valid.
func (as *AccountService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if err := check(passwordChangeFields{OldPassword: oldPassword, NewPassword: newPassword}, msgPasswordsRequired); err != nil {
		return err
	}

	user, err := as.user(ctx, userID, "[ChangePassword]")
	if err != nil {
		return err
	}
	if !user.CheckPassword(oldPassword) {
		return apperrors.Unauthorized(msgIncorrectPassword, apperrors.ErrIncorrectPassword)
	}
	if err := users.ValidatePasswordStrength(newPassword); err != nil {
		return apperrors.BadRequest(err.Error(), err)
	}

	hash, err := users.HashPassword(newPassword)
	if err != nil {
		return errors.Wrap(err, "[ChangePassword] HashPassword")
	}
	if err := as.users.SetPasswordHash(ctx, user.ID, hash); err != nil {
		return errors.Wrap(err, "[ChangePassword] SetPasswordHash")
	}
	return nil
}

func (as *AccountService) CurrentUser(ctx context.Context, userID string) (*users.PublicUser, error) {
	user, err := as.user(ctx, userID, "[CurrentUser]")
	if err != nil {
		return nil, err
	}
	public := user.Public()
	return &public, nil
}

// UpdateDetails changes the full name and/or email. Empty values are left unchanged.
func (as *AccountService) UpdateDetails(ctx context.Context, userID, fullName, email string) (*users.PublicUser, error) {
	fields := detailsFields{FullName: strings.TrimSpace(fullName), Email: strings.TrimSpace(email)}
	if err := check(fields, msgDetailsRequired); err != nil {
		return nil, err
	}

	user, err := as.users.UpdateProfile(ctx, userID, users.ProfileUpdate{
		FullName: utils.PtrIfSet(fields.FullName),
		Email:    utils.PtrIfSet(fields.Email),
	})
	if err != nil {
		switch {
		case apperrors.Is(err, apperrors.ErrAlreadyExists):
			return nil, apperrors.Conflict(msgEmailTaken, err)
		case apperrors.Is(err, apperrors.ErrNotFound):
			return nil, apperrors.Unauthorized(msgUnauthorizedRequest, err)
		}
		return nil, errors.Wrap(err, "[UpdateDetails] UpdateProfile")
	}
	public := user.Public()
	return &public, nil
}

func (as *AccountService) UpdateAvatar(ctx context.Context, userID string, file io.Reader) (*users.PublicUser, error) {
	if file == nil {
		return nil, apperrors.BadRequest(msgAvatarRequired)
	}
	return as.replaceMedia(ctx, userID, media.KindAvatar, users.MediaAvatar, file)
}

func (as *AccountService) UpdateCoverImage(ctx context.Context, userID string, file io.Reader) (*users.PublicUser, error) {
	if file == nil {
		return nil, apperrors.BadRequest(msgCoverRequired)
	}
	return as.replaceMedia(ctx, userID, media.KindCoverImage, users.MediaCoverImage, file)
}

// replaceMedia uploads file, points the user's field at it and then removes
// the image it replaced. Removing the old image is best effort.
func (as *AccountService) replaceMedia(ctx context.Context, userID string, kind media.Kind, field users.MediaField, file io.Reader) (*users.PublicUser, error) {
	current, err := as.user(ctx, userID, "[replaceMedia]")
	if err != nil {
		return nil, err
	}

	url, err := as.uploader.Upload(ctx, kind, file)
	if err != nil {
		return nil, uploadError(err, apperrors.Internal(msgUploadFailed, err))
	}

	updated, err := as.users.SetMedia(ctx, userID, field, url)
	if err != nil {
		as.discardMedia(ctx, url)
		return nil, errors.Wrapf(err, "[replaceMedia] SetMedia %s", field)
	}

	previous := current.Avatar
	if field == users.MediaCoverImage {
		previous = current.CoverImage
	}
	if previous != "" && previous != url {
		as.discardMedia(ctx, previous)
	}

	public := updated.Public()
	return &public, nil
}

func (as *AccountService) user(ctx context.Context, userID, op string) (*users.User, error) {
	user, err := as.users.GetByID(ctx, userID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized(msgUnauthorizedRequest, err)
		}
		return nil, errors.Wrap(err, op+" GetByID")
	}
	return user, nil
}

func (as *AccountService) discardMedia(ctx context.Context, urls ...string) {
	for _, url := range urls {
		if url == "" {
			continue
		}
		if err := as.uploader.Delete(ctx, url); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("url", url).Msg("failed to delete media")
		}
	}
}

// uploadError reports rejected files as bad requests and everything else as fallback.
func uploadError(err error, fallback error) error {
	switch {
	case apperrors.Is(err, apperrors.ErrUnsupportedMedia):
		return apperrors.BadRequest(msgUnsupportedMedia, err)
	case apperrors.Is(err, apperrors.ErrMediaTooLarge):
		return apperrors.BadRequest(msgMediaTooLarge, err)
	}
	return fallback
}
