// Package repopg is the Postgres implementation of users.UserRepo.
package repopg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jrsteele09/videotube-server/internal/database"
	apperrors "github.com/jrsteele09/videotube-server/internal/errors"
	"github.com/jrsteele09/videotube-server/users"
)

const userColumns = `id, username, email, full_name, avatar, cover_image, watch_history, password_hash, refresh_token, created_at, updated_at`

var _ users.UserRepo = (*PostgresRepository)(nil)

type PostgresRepository struct {
	db database.DBTX
}

func NewPostgresRepository(db database.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *users.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	history, err := encodeHistory(user.WatchHistory)
	if err != nil {
		return err
	}

	query :=
		`INSERT INTO users (id, username, email, full_name, avatar, cover_image, watch_history, password_hash, refresh_token)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query,
		user.ID, user.Username, user.Email, user.FullName, user.Avatar, user.CoverImage,
		history, user.PasswordHash, user.RefreshToken,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Wrapf(apperrors.ErrAlreadyExists, "user %s", user.Username)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*users.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "user %s", id)
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.queryOne(ctx, query, id)
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.queryOne(ctx, query, username)
}

func (r *PostgresRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*users.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		 WHERE ($1 <> '' AND username = $1) OR ($2 <> '' AND email = $2)
		 ORDER BY (username = $1) DESC
		 LIMIT 1`
	return r.queryOne(ctx, query, username, email)
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, id string, update users.ProfileUpdate) (*users.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "user %s", id)
	}
	query := `UPDATE users
		 SET full_name = COALESCE($2, full_name), email = COALESCE($3, email), updated_at = now()
		 WHERE id = $1
		 RETURNING ` + userColumns
	return r.queryOne(ctx, query, id, update.FullName, update.Email)
}

func (r *PostgresRepository) SetMedia(ctx context.Context, id string, field users.MediaField, url string) (*users.User, error) {
	switch field {
	case users.MediaAvatar, users.MediaCoverImage:
	default:
		return nil, apperrors.Wrapf(apperrors.ErrUnsupported, "media field %s", field)
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "user %s", id)
	}
	query := fmt.Sprintf(`UPDATE users SET %s = $2, updated_at = now() WHERE id = $1 RETURNING `+userColumns, field)
	return r.queryOne(ctx, query, id, url)
}

func (r *PostgresRepository) SetPasswordHash(ctx context.Context, id, hash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`
	return r.execOne(ctx, id, query, id, hash)
}

func (r *PostgresRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	query := `UPDATE users SET refresh_token = $2 WHERE id = $1`
	return r.execOne(ctx, id, query, id, token)
}

func (r *PostgresRepository) SwapRefreshToken(ctx context.Context, id, expected, next string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, apperrors.Wrapf(apperrors.ErrNotFound, "user %s", id)
	}
	query := `UPDATE users SET refresh_token = $3 WHERE id = $1 AND refresh_token = $2`
	res, err := r.db.ExecContext(ctx, query, id, expected, next)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *PostgresRepository) queryOne(ctx context.Context, query string, args ...any) (*users.User, error) {
	var (
		u       users.User
		history []byte
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&u.ID, &u.Username, &u.Email, &u.FullName, &u.Avatar, &u.CoverImage,
		&history, &u.PasswordHash, &u.RefreshToken, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Wrapf(apperrors.ErrNotFound, "user")
		}
		if database.IsUniqueViolation(err) {
			return nil, apperrors.Wrapf(apperrors.ErrAlreadyExists, "user")
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := json.Unmarshal(history, &u.WatchHistory); err != nil {
		return nil, fmt.Errorf("decode watch history: %w", err)
	}
	return &u, nil
}

func (r *PostgresRepository) execOne(ctx context.Context, id, query string, args ...any) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.Wrapf(apperrors.ErrNotFound, "user %s", id)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return apperrors.Wrapf(apperrors.ErrNotFound, "user %s", id)
	}
	return nil
}

func encodeHistory(history []string) (string, error) {
	if history == nil {
		history = []string{}
	}
	b, err := json.Marshal(history)
	if err != nil {
		return "", fmt.Errorf("encode watch history: %w", err)
	}
	return string(b), nil
}
