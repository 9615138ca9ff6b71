package subscriptions

import (
	"context"
	"strings"

	apperrors "github.com/jrsteele09/videotube-server/internal/errors"
	"github.com/jrsteele09/videotube-server/users"
	"github.com/pkg/errors"
)

type Service struct {
	repo  Repo
	users UserLookup
}

func NewService(repo Repo, userLookup UserLookup) *Service {
	return &Service{repo: repo, users: userLookup}
}

// Subscribe makes subscriberID a subscriber of channelID.
func (s *Service) Subscribe(ctx context.Context, subscriberID, channelID string) (*View, error) {
	channelID = strings.TrimSpace(channelID)
	if channelID == "" {
		return nil, apperrors.BadRequest("Provide channel to subscribe")
	}

	channel, err := s.channel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if channel.ID == subscriberID {
		return nil, apperrors.BadRequest("You cannot subscribe to your own channel.")
	}

	subscriber, err := s.users.GetByID(ctx, subscriberID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("Invalid access token", err)
		}
		return nil, errors.Wrap(err, "[Subscribe] GetByID subscriber")
	}

	sub := &Subscription{SubscriberID: subscriberID, ChannelID: channel.ID}
	if err := s.repo.Create(ctx, sub); err != nil {
		if apperrors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, apperrors.BadRequest("Channel is already subscribed.", err)
		}
		return nil, errors.Wrap(err, "[Subscribe] Create")
	}

	return &View{
		ID:           sub.ID,
		Subscriber:   subscriber.Summary(),
		SubscribedTo: channel.Summary(),
		CreatedAt:    sub.CreatedAt,
	}, nil
}

// Unsubscribe removes an existing subscription.
func (s *Service) Unsubscribe(ctx context.Context, subscriberID, channelID string) error {
	channelID = strings.TrimSpace(channelID)
	if channelID == "" {
		return apperrors.BadRequest("Provide channel to unsubscribe")
	}

	channel, err := s.channel(ctx, channelID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, subscriberID, channel.ID); err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return apperrors.BadRequest("Subscribe the channel first to unsubscribe it.", err)
		}
		return errors.Wrap(err, "[Unsubscribe] Delete")
	}
	return nil
}

// ChannelProfile returns the channel of username with its subscription counts.
// viewerID may be empty for anonymous viewers.
func (s *Service) ChannelProfile(ctx context.Context, username, viewerID string) (*ChannelProfile, error) {
	username = users.NormalizeUsername(username)
	if username == "" {
		return nil, apperrors.BadRequest("Please provide username.")
	}

	channel, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("Channel does not exist with given username", err)
		}
		return nil, errors.Wrap(err, "[ChannelProfile] GetByUsername")
	}

	subscribers, err := s.repo.CountSubscribers(ctx, channel.ID)
	if err != nil {
		return nil, errors.Wrap(err, "[ChannelProfile] CountSubscribers")
	}
	subscribedTo, err := s.repo.CountSubscribedTo(ctx, channel.ID)
	if err != nil {
		return nil, errors.Wrap(err, "[ChannelProfile] CountSubscribedTo")
	}

	isSubscribed := false
	if viewerID != "" {
		_, err := s.repo.Get(ctx, viewerID, channel.ID)
		switch {
		case err == nil:
			isSubscribed = true
		case !apperrors.Is(err, apperrors.ErrNotFound):
			return nil, errors.Wrap(err, "[ChannelProfile] Get")
		}
	}

	return &ChannelProfile{
		ID:                channel.ID,
		FullName:          channel.FullName,
		Username:          channel.Username,
		Email:             channel.Email,
		Avatar:            channel.Avatar,
		CoverImage:        channel.CoverImage,
		SubscribersCount:  subscribers,
		SubscribedToCount: subscribedTo,
		IsSubscribed:      isSubscribed,
	}, nil
}

func (s *Service) channel(ctx context.Context, channelID string) (*users.User, error) {
	channel, err := s.users.GetByID(ctx, channelID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("Channel does not exists.", err)
		}
		return nil, errors.Wrap(err, "[channel] GetByID")
	}
	return channel, nil
}
