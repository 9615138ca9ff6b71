package auth_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/videotube-server/auth"
	apperrors "github.com/jrsteele09/videotube-server/internal/errors"
	"github.com/jrsteele09/videotube-server/media"
	"github.com/jrsteele09/videotube-server/media/storefake"
	"github.com/jrsteele09/videotube-server/token"
	"github.com/jrsteele09/videotube-server/users"
	fakeuserrepo "github.com/jrsteele09/videotube-server/users/repofake"
	"github.com/stretchr/testify/require"
)

const (
	testUsername = "jdoe"
	testEmail    = "john.doe@example.com"
	testFullName = "John Doe"
	testPassword = "Secret123!"
)

// testFixture holds all test dependencies
type testFixture struct {
	userRepo *fakeuserrepo.FakeUserRepo
	store    *storefake.FakeStore
	tokens   *token.Manager
	service  *auth.AccountService
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	ur := fakeuserrepo.NewFakeUserRepo()
	store := storefake.NewFakeStore()

	tm, err := token.New(ur, token.Config{
		AccessSecret:  "access-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshSecret: "refresh-secret",
		RefreshExpiry: 24 * time.Hour,
	})
	require.NoError(t, err)

	service, err := auth.NewAccountService(ur, tm, media.NewUploader(store))
	require.NoError(t, err)

	return &testFixture{userRepo: ur, store: store, tokens: tm, service: service}
}

func pngImage(t *testing.T, w, h int) io.Reader {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 200, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &buf
}

func (f *testFixture) registerInput(t *testing.T) auth.RegisterInput {
	return auth.RegisterInput{
		Username: testUsername,
		Email:    testEmail,
		FullName: testFullName,
		Password: testPassword,
		Avatar:   pngImage(t, 64, 64),
	}
}

func (f *testFixture) register(t *testing.T) *users.PublicUser {
	t.Helper()
	u, err := f.service.Register(context.Background(), f.registerInput(t))
	require.NoError(t, err)
	return u
}

func TestNewAccountServiceRequiresDependencies(t *testing.T) {
	_, err := auth.NewAccountService(nil, nil, nil)
	require.Error(t, err)
}

func TestRegister(t *testing.T) {
	f := setupTestFixture(t)

	in := f.registerInput(t)
	in.Username = "  JDoe "
	in.CoverImage = pngImage(t, 32, 32)

	u, err := f.service.Register(context.Background(), in)
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	require.Equal(t, testUsername, u.Username)
	require.Equal(t, testEmail, u.Email)
	require.True(t, strings.HasPrefix(u.Avatar, storefake.BaseURL+"avatar/"))
	require.True(t, strings.HasPrefix(u.CoverImage, storefake.BaseURL+"cover-image/"))
	require.Equal(t, []string{}, u.WatchHistory)
	require.Equal(t, 2, f.store.Len())

	stored, err := f.userRepo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.NotEqual(t, testPassword, stored.PasswordHash)
	require.True(t, stored.CheckPassword(testPassword))
	require.Empty(t, stored.RefreshToken)
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *auth.RegisterInput)
		kind    apperrors.Kind
		message string
	}{
		{"blank full name", func(in *auth.RegisterInput) { in.FullName = "   " }, apperrors.KindBadRequest, "All fields are required."},
		{"bad email", func(in *auth.RegisterInput) { in.Email = "not-an-email" }, apperrors.KindBadRequest, "Please provide a valid email address."},
		{"weak password", func(in *auth.RegisterInput) { in.Password = "abc12345" }, apperrors.KindBadRequest, users.ErrWeakPassword.Error()},
		{"missing avatar", func(in *auth.RegisterInput) { in.Avatar = nil }, apperrors.KindBadRequest, "Avatar file is required."},
		{"avatar not an image", func(in *auth.RegisterInput) { in.Avatar = strings.NewReader("hello") }, apperrors.KindBadRequest, "Only jpeg, png, gif and webp images are supported."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t)
			in := f.registerInput(t)
			tt.mutate(&in)

			_, err := f.service.Register(context.Background(), in)
			require.Error(t, err)
			require.Equal(t, tt.kind, apperrors.KindOf(err))
			require.Equal(t, tt.message, apperrors.MessageOf(err))
			require.Zero(t, f.store.Len())
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	f := setupTestFixture(t)
	f.register(t)

	for _, in := range []auth.RegisterInput{
		{Username: testUsername, Email: "other@example.com", FullName: "Other", Password: testPassword, Avatar: pngImage(t, 8, 8)},
		{Username: "other", Email: testEmail, FullName: "Other", Password: testPassword, Avatar: pngImage(t, 8, 8)},
	} {
		_, err := f.service.Register(context.Background(), in)
		require.Error(t, err)
		require.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
		require.Equal(t, "User with this email or username already exists.", apperrors.MessageOf(err))
	}
	require.Equal(t, 1, f.store.Len())
}

func TestRegisterAvatarStoreFailure(t *testing.T) {
	f := setupTestFixture(t)
	f.store.FailPut = true

	_, err := f.service.Register(context.Background(), f.registerInput(t))
	require.Error(t, err)
	require.Equal(t, apperrors.KindBadRequest, apperrors.KindOf(err))
	require.Equal(t, "Avatar file is required.", apperrors.MessageOf(err))
}

func TestLogin(t *testing.T) {
	f := setupTestFixture(t)
	u := f.register(t)

	for _, in := range []auth.LoginInput{
		{Username: "JDOE", Password: testPassword},
		{Email: testEmail, Password: testPassword},
	} {
		res, err := f.service.Login(context.Background(), in)
		require.NoError(t, err)
		require.Equal(t, u.ID, res.User.ID)
		require.NotEmpty(t, res.AccessToken)
		require.NotEmpty(t, res.RefreshToken)

		claims, err := f.tokens.Verify(res.AccessToken, token.KindAccess)
		require.NoError(t, err)
		require.Equal(t, u.ID, claims.UserID())
		require.Equal(t, testUsername, claims.Username)

		stored, err := f.userRepo.GetByID(context.Background(), u.ID)
		require.NoError(t, err)
		require.Equal(t, res.RefreshToken, stored.RefreshToken)
	}
}

func TestLoginFailures(t *testing.T) {
	f := setupTestFixture(t)
	f.register(t)

	_, err := f.service.Login(context.Background(), auth.LoginInput{Password: testPassword})
	require.Equal(t, apperrors.KindBadRequest, apperrors.KindOf(err))
	require.Equal(t, "username or email is required to login", apperrors.MessageOf(err))

	_, err = f.service.Login(context.Background(), auth.LoginInput{Username: "nobody", Password: testPassword})
	require.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))
	require.True(t, apperrors.Is(err, apperrors.ErrInvalidCredentials))

	_, err = f.service.Login(context.Background(), auth.LoginInput{Username: testUsername, Password: "Wrong123!"})
	require.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))
	require.Equal(t, "invalid credentials", apperrors.MessageOf(err))
}

func TestLogoutThenRefreshFails(t *testing.T) {
	f := setupTestFixture(t)
	f.register(t)
	ctx := context.Background()

	res, err := f.service.Login(ctx, auth.LoginInput{Username: testUsername, Password: testPassword})
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(ctx, res.User.ID))
	require.NoError(t, f.service.Logout(ctx, res.User.ID))

	_, err = f.service.Refresh(ctx, res.RefreshToken)
	require.Error(t, err)
	require.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))
}

func TestRefreshRotates(t *testing.T) {
	f := setupTestFixture(t)
	f.register(t)
	ctx := context.Background()

	res, err := f.service.Login(ctx, auth.LoginInput{Username: testUsername, Password: testPassword})
	require.NoError(t, err)

	pair, err := f.service.Refresh(ctx, res.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, res.RefreshToken, pair.RefreshToken)

	_, err = f.service.Refresh(ctx, res.RefreshToken)
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.ErrRefreshTokenUsed))

	_, err = f.service.Refresh(ctx, "")
	require.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))
}

func TestChangePassword(t *testing.T) {
	f := setupTestFixture(t)
	u := f.register(t)
	ctx := context.Background()

	err := f.service.ChangePassword(ctx, u.ID, "", "NewSecret1!")
	require.Equal(t, "Please provide the old password and new password", apperrors.MessageOf(err))

	err = f.service.ChangePassword(ctx, u.ID, "Wrong123!", "NewSecret1!")
	require.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))
	require.Equal(t, "Incorrect password provided", apperrors.MessageOf(err))

	err = f.service.ChangePassword(ctx, u.ID, testPassword, "weak")
	require.Equal(t, apperrors.KindBadRequest, apperrors.KindOf(err))

	require.NoError(t, f.service.ChangePassword(ctx, u.ID, testPassword, "NewSecret1!"))

	_, err = f.service.Login(ctx, auth.LoginInput{Username: testUsername, Password: testPassword})
	require.Error(t, err)
	_, err = f.service.Login(ctx, auth.LoginInput{Username: testUsername, Password: "NewSecret1!"})
	require.NoError(t, err)
}

func TestChangePasswordKeepsRefreshToken(t *testing.T) {
	f := setupTestFixture(t)
	f.register(t)
	ctx := context.Background()

	res, err := f.service.Login(ctx, auth.LoginInput{Username: testUsername, Password: testPassword})
	require.NoError(t, err)
	require.NoError(t, f.service.ChangePassword(ctx, res.User.ID, testPassword, "NewSecret1!"))

	_, err = f.service.Refresh(ctx, res.RefreshToken)
	require.NoError(t, err)
}

func TestCurrentUser(t *testing.T) {
	f := setupTestFixture(t)
	u := f.register(t)

	got, err := f.service.CurrentUser(context.Background(), u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Username, got.Username)

	_, err = f.service.CurrentUser(context.Background(), "missing")
	require.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))
}

func TestUpdateDetails(t *testing.T) {
	f := setupTestFixture(t)
	u := f.register(t)
	ctx := context.Background()

	_, err := f.service.UpdateDetails(ctx, u.ID, "", "")
	require.Equal(t, "Please provide email or fullName to update the details.", apperrors.MessageOf(err))

	updated, err := f.service.UpdateDetails(ctx, u.ID, "Johnny Doe", "")
	require.NoError(t, err)
	require.Equal(t, "Johnny Doe", updated.FullName)
	require.Equal(t, testEmail, updated.Email)

	updated, err = f.service.UpdateDetails(ctx, u.ID, "", "johnny@example.com")
	require.NoError(t, err)
	require.Equal(t, "johnny@example.com", updated.Email)
	require.Equal(t, "Johnny Doe", updated.FullName)

	_, err = f.service.UpdateDetails(ctx, u.ID, "", "broken")
	require.Equal(t, apperrors.KindBadRequest, apperrors.KindOf(err))
}

func TestUpdateDetailsEmailTaken(t *testing.T) {
	f := setupTestFixture(t)
	u := f.register(t)
	ctx := context.Background()

	_, err := f.service.Register(ctx, auth.RegisterInput{
		Username: "other", Email: "other@example.com", FullName: "Other", Password: testPassword, Avatar: pngImage(t, 8, 8),
	})
	require.NoError(t, err)

	_, err = f.service.UpdateDetails(ctx, u.ID, "", "other@example.com")
	require.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestUpdateAvatarReplacesOldMedia(t *testing.T) {
	f := setupTestFixture(t)
	u := f.register(t)
	ctx := context.Background()

	updated, err := f.service.UpdateAvatar(ctx, u.ID, pngImage(t, 16, 16))
	require.NoError(t, err)
	require.NotEqual(t, u.Avatar, updated.Avatar)
	require.Equal(t, []string{u.Avatar}, f.store.Deleted())

	_, ok := f.store.Get(updated.Avatar)
	require.True(t, ok)

	_, err = f.service.UpdateAvatar(ctx, u.ID, nil)
	require.Equal(t, "Avatar file is required.", apperrors.MessageOf(err))
}

func TestUpdateCoverImage(t *testing.T) {
	f := setupTestFixture(t)
	u := f.register(t)
	ctx := context.Background()

	updated, err := f.service.UpdateCoverImage(ctx, u.ID, pngImage(t, 16, 16))
	require.NoError(t, err)
	require.NotEmpty(t, updated.CoverImage)
	require.Empty(t, f.store.Deleted())

	_, err = f.service.UpdateCoverImage(ctx, u.ID, nil)
	require.Equal(t, "Cover Image file is required.", apperrors.MessageOf(err))

	f.store.FailPut = true
	_, err = f.service.UpdateCoverImage(ctx, u.ID, pngImage(t, 16, 16))
	require.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
	require.Equal(t, "Failed to upload the file, please try again", apperrors.MessageOf(err))
}
