package fakesubscriptionrepo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/videotube-server/internal/errors"
	"github.com/jrsteele09/videotube-server/subscriptions"
)

var _ subscriptions.Repo = (*FakeSubscriptionRepo)(nil)

type pair struct {
	subscriberID string
	channelID    string
}

type FakeSubscriptionRepo struct {
	subs map[pair]*subscriptions.Subscription
	lock sync.RWMutex
}

func NewFakeSubscriptionRepo() *FakeSubscriptionRepo {
	return &FakeSubscriptionRepo{
		subs: make(map[pair]*subscriptions.Subscription),
	}
}

func (r *FakeSubscriptionRepo) Create(_ context.Context, sub *subscriptions.Subscription) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	key := pair{sub.SubscriberID, sub.ChannelID}
	if _, ok := r.subs[key]; ok {
		return apperrors.Wrapf(apperrors.ErrAlreadyExists, "subscription %s -> %s", sub.SubscriberID, sub.ChannelID)
	}
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	sub.CreatedAt = time.Now()
	stored := *sub
	r.subs[key] = &stored
	return nil
}

func (r *FakeSubscriptionRepo) Get(_ context.Context, subscriberID, channelID string) (*subscriptions.Subscription, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	sub, ok := r.subs[pair{subscriberID, channelID}]
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "subscription %s -> %s", subscriberID, channelID)
	}
	c := *sub
	return &c, nil
}

func (r *FakeSubscriptionRepo) Delete(_ context.Context, subscriberID, channelID string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	key := pair{subscriberID, channelID}
	if _, ok := r.subs[key]; !ok {
		return apperrors.Wrapf(apperrors.ErrNotFound, "subscription %s -> %s", subscriberID, channelID)
	}
	delete(r.subs, key)
	return nil
}

func (r *FakeSubscriptionRepo) CountSubscribers(_ context.Context, channelID string) (int, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	n := 0
	for k := range r.subs {
		if k.channelID == channelID {
			n++
		}
	}
	return n, nil
}

func (r *FakeSubscriptionRepo) CountSubscribedTo(_ context.Context, subscriberID string) (int, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	n := 0
	for k := range r.subs {
		if k.subscriberID == subscriberID {
			n++
		}
	}
	return n, nil
}
