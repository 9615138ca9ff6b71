package users

import "context"

// ProfileUpdate carries the optional fields of a details update. Nil means unchanged.
type ProfileUpdate struct {
	FullName *string
	Email    *string
}

// MediaField names a user column holding a media URL.
type MediaField string

const (
	MediaAvatar     MediaField = "avatar"
	MediaCoverImage MediaField = "cover_image"
)

// UserRepo persists users. Lookups return errors wrapping
// internal/errors.ErrNotFound when nothing matches, and Create / UpdateProfile
// return errors wrapping ErrAlreadyExists on a unique username or email clash.
type UserRepo interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	// FindByUsernameOrEmail returns the first user matching either value. Empty values never match.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error)
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*User, error)
	SetMedia(ctx context.Context, id string, field MediaField, url string) (*User, error)
	SetPasswordHash(ctx context.Context, id, hash string) error

	// SetRefreshToken overwrites the stored refresh token without touching any other field.
	SetRefreshToken(ctx context.Context, id, token string) error
	// SwapRefreshToken replaces the stored refresh token only if it still equals expected.
	// It reports whether the swap happened.
	SwapRefreshToken(ctx context.Context, id, expected, next string) (bool, error)

	Ping(ctx context.Context) error
}
