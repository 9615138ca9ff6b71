package subscriptions

import (
	"context"
	"time"

	"github.com/jrsteele09/videotube-server/users"
)

// Subscription records that SubscriberID follows the channel owned by ChannelID.
type Subscription struct {
	ID           string    `json:"id"`
	SubscriberID string    `json:"subscriberId"`
	ChannelID    string    `json:"channelId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// View is a subscription with both parties resolved.
type View struct {
	ID           string        `json:"id"`
	Subscriber   users.Summary `json:"subscriber"`
	SubscribedTo users.Summary `json:"subscribedTo"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// ChannelProfile is the public view of a user's channel.
type ChannelProfile struct {
	ID                string `json:"id"`
	FullName          string `json:"fullName"`
	Username          string `json:"username"`
	Email             string `json:"email"`
	Avatar            string `json:"avatar"`
	CoverImage        string `json:"coverImage"`
	SubscribersCount  int    `json:"subscribersCount"`
	SubscribedToCount int    `json:"subscribedToCount"`
	IsSubscribed      bool   `json:"isSubscribed"`
}

// Repo persists subscriptions. Get and Delete return errors wrapping
// internal/errors.ErrNotFound, Create wraps ErrAlreadyExists for a repeated pair.
type Repo interface {
	Create(ctx context.Context, sub *Subscription) error
	Get(ctx context.Context, subscriberID, channelID string) (*Subscription, error)
	Delete(ctx context.Context, subscriberID, channelID string) error
	CountSubscribers(ctx context.Context, channelID string) (int, error)
	CountSubscribedTo(ctx context.Context, subscriberID string) (int, error)
}

// UserLookup is the part of users.UserRepo the service needs.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*users.User, error)
	GetByUsername(ctx context.Context, username string) (*users.User, error)
}
