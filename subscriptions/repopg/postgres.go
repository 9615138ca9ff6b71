// Package repopg is the Postgres implementation of subscriptions.Repo.
package repopg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jrsteele09/videotube-server/internal/database"
	apperrors "github.com/jrsteele09/videotube-server/internal/errors"
	"github.com/jrsteele09/videotube-server/subscriptions"
)

var _ subscriptions.Repo = (*PostgresRepository)(nil)

type PostgresRepository struct {
	db database.DBTX
}

func NewPostgresRepository(db database.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, sub *subscriptions.Subscription) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}

	query :=
		`INSERT INTO subscriptions (id, subscriber_id, channel_id)
		 VALUES ($1, $2, $3)
		 RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query, sub.ID, sub.SubscriberID, sub.ChannelID).Scan(&sub.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Wrapf(apperrors.ErrAlreadyExists, "subscription %s -> %s", sub.SubscriberID, sub.ChannelID)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, subscriberID, channelID string) (*subscriptions.Subscription, error) {
	if !validIDs(subscriberID, channelID) {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "subscription %s -> %s", subscriberID, channelID)
	}

	query :=
		`SELECT id, subscriber_id, channel_id, created_at FROM subscriptions
		 WHERE subscriber_id = $1 AND channel_id = $2`

	sub := &subscriptions.Subscription{}
	err := r.db.QueryRowContext(ctx, query, subscriberID, channelID).Scan(&sub.ID, &sub.SubscriberID, &sub.ChannelID, &sub.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Wrapf(apperrors.ErrNotFound, "subscription %s -> %s", subscriberID, channelID)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return sub, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, subscriberID, channelID string) error {
	if !validIDs(subscriberID, channelID) {
		return apperrors.Wrapf(apperrors.ErrNotFound, "subscription %s -> %s", subscriberID, channelID)
	}

	query := `DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2`
	res, err := r.db.ExecContext(ctx, query, subscriberID, channelID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return apperrors.Wrapf(apperrors.ErrNotFound, "subscription %s -> %s", subscriberID, channelID)
	}
	return nil
}

func (r *PostgresRepository) CountSubscribers(ctx context.Context, channelID string) (int, error) {
	return r.count(ctx, `SELECT count(*) FROM subscriptions WHERE channel_id = $1`, channelID)
}

func (r *PostgresRepository) CountSubscribedTo(ctx context.Context, subscriberID string) (int, error) {
	return r.count(ctx, `SELECT count(*) FROM subscriptions WHERE subscriber_id = $1`, subscriberID)
}

func (r *PostgresRepository) count(ctx context.Context, query, id string) (int, error) {
	if !validIDs(id) {
		return 0, nil
	}
	var n int
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func validIDs(ids ...string) bool {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return false
		}
	}
	return true
}
