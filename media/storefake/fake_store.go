package storefake

import (
	"context"
	"errors"
	"sync"

	"github.com/jrsteele09/videotube-server/media"
)

const BaseURL = "https://media.test/"

var _ media.Store = (*FakeStore)(nil)

type Object struct {
	ContentType string
	Body        []byte
}

type FakeStore struct {
	objects map[string]Object
	deleted []string
	lock    sync.Mutex

	// FailPut makes every Put fail.
	FailPut bool
}

func NewFakeStore() *FakeStore {
	return &FakeStore{objects: make(map[string]Object)}
}

func (s *FakeStore) Put(_ context.Context, key, contentType string, body []byte) (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.FailPut {
		return "", errors.New("store unavailable")
	}
	url := BaseURL + key
	s.objects[url] = Object{ContentType: contentType, Body: append([]byte(nil), body...)}
	return url, nil
}

func (s *FakeStore) Delete(_ context.Context, url string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.objects, url)
	s.deleted = append(s.deleted, url)
	return nil
}

func (s *FakeStore) Get(url string) (Object, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	o, ok := s.objects[url]
	return o, ok
}

func (s *FakeStore) Deleted() []string {
	s.lock.Lock()
	defer s.lock.Unlock()

	return append([]string(nil), s.deleted...)
}

func (s *FakeStore) Len() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return len(s.objects)
}
