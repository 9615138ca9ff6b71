package fakeuserrepo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/videotube-server/internal/errors"
	"github.com/jrsteele09/videotube-server/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	users       map[string]*users.User
	usernameIds map[string]string // username to user id
	emailIds    map[string]string // email to user id
	lock        sync.RWMutex
	nowFunc     func() time.Time
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:       make(map[string]*users.User),
		usernameIds: make(map[string]string),
		emailIds:    make(map[string]string),
		nowFunc:     time.Now,
	}
}

func (ur *FakeUserRepo) Create(_ context.Context, user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if _, ok := ur.usernameIds[user.Username]; ok {
		return apperrors.Wrapf(apperrors.ErrAlreadyExists, "username %s", user.Username)
	}
	if _, ok := ur.emailIds[user.Email]; ok {
		return apperrors.Wrapf(apperrors.ErrAlreadyExists, "email %s", user.Email)
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := ur.nowFunc()
	user.CreatedAt, user.UpdatedAt = now, now

	ur.users[user.ID] = user.Clone()
	ur.usernameIds[user.Username] = user.ID
	ur.emailIds[user.Email] = user.ID
	return nil
}

func (ur *FakeUserRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	u, ok := ur.users[id]
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "user %s", id)
	}
	return u.Clone(), nil
}

func (ur *FakeUserRepo) GetByUsername(_ context.Context, username string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.usernameIds[username]
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "username %s", username)
	}
	return ur.users[id].Clone(), nil
}

func (ur *FakeUserRepo) FindByUsernameOrEmail(_ context.Context, username, email string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	if id, ok := ur.usernameIds[username]; ok && username != "" {
		return ur.users[id].Clone(), nil
	}
	if id, ok := ur.emailIds[email]; ok && email != "" {
		return ur.users[id].Clone(), nil
	}
	return nil, apperrors.Wrapf(apperrors.ErrNotFound, "username %q or email %q", username, email)
}

func (ur *FakeUserRepo) UpdateProfile(_ context.Context, id string, update users.ProfileUpdate) (*users.User, error) {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	u, ok := ur.users[id]
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "user %s", id)
	}

	if update.Email != nil && *update.Email != u.Email {
		if _, taken := ur.emailIds[*update.Email]; taken {
			return nil, apperrors.Wrapf(apperrors.ErrAlreadyExists, "email %s", *update.Email)
		}
		delete(ur.emailIds, u.Email)
		u.Email = *update.Email
		ur.emailIds[u.Email] = u.ID
	}
	if update.FullName != nil {
		u.FullName = *update.FullName
	}
	u.UpdatedAt = ur.nowFunc()
	return u.Clone(), nil
}

func (ur *FakeUserRepo) SetMedia(_ context.Context, id string, field users.MediaField, url string) (*users.User, error) {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	u, ok := ur.users[id]
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "user %s", id)
	}

	switch field {
	case users.MediaAvatar:
		u.Avatar = url
	case users.MediaCoverImage:
		u.CoverImage = url
	default:
		return nil, apperrors.Wrapf(apperrors.ErrUnsupported, "media field %s", field)
	}
	u.UpdatedAt = ur.nowFunc()
	return u.Clone(), nil
}

func (ur *FakeUserRepo) SetPasswordHash(_ context.Context, id, hash string) error {
	return ur.update(id, func(u *users.User) {
		u.PasswordHash = hash
		u.UpdatedAt = ur.nowFunc()
	})
}

func (ur *FakeUserRepo) SetRefreshToken(_ context.Context, id, token string) error {
	return ur.update(id, func(u *users.User) {
		u.RefreshToken = token
	})
}

func (ur *FakeUserRepo) SwapRefreshToken(_ context.Context, id, expected, next string) (bool, error) {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	u, ok := ur.users[id]
	if !ok {
		return false, apperrors.Wrapf(apperrors.ErrNotFound, "user %s", id)
	}
	if u.RefreshToken != expected {
		return false, nil
	}
	u.RefreshToken = next
	return true, nil
}

func (ur *FakeUserRepo) Ping(context.Context) error {
	return nil
}

func (ur *FakeUserRepo) update(id string, fn func(u *users.User)) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	u, ok := ur.users[id]
	if !ok {
		return apperrors.Wrapf(apperrors.ErrNotFound, "user %s", id)
	}
	fn(u)
	return nil
}
