package goRecover

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type fakeUser struct {
	email      string
	question   string
	answer     string
	credential string
}

type fakeStore struct {
	mu    sync.Mutex
	users map[string]*fakeUser

	findErr      error
	verifyErr    error
	updateErr    error
	rejectUpdate bool

	findCalls   int
	verifyCalls int
	updateCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[string]*fakeUser{}}
}

func (s *fakeStore) add(identity, question, answer, credential string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[identity] = &fakeUser{
		email:      identity + "@example.com",
		question:   question,
		answer:     answer,
		credential: credential,
	}
}

func (s *fakeStore) credential(identity string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[identity]; ok {
		return u.credential
	}
	return ""
}

func (s *fakeStore) FindChallengeQuestion(_ context.Context, identity string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findCalls++
	if s.findErr != nil {
		return "", false, s.findErr
	}
	u, ok := s.users[identity]
	if !ok {
		return "", false, nil
	}
	return u.question, true, nil
}

func (s *fakeStore) VerifyAnswer(_ context.Context, identity, question, answer string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifyCalls++
	if s.verifyErr != nil {
		return false, s.verifyErr
	}
	u, ok := s.users[identity]
	return ok && u.question == question && u.answer == answer, nil
}

func (s *fakeStore) UpdateCredential(_ context.Context, identity, newSecret string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateCalls++
	if s.updateErr != nil {
		return false, s.updateErr
	}
	if s.rejectUpdate {
		return false, nil
	}
	u, ok := s.users[identity]
	if !ok {
		return false, nil
	}
	u.credential = newSecret
	return true, nil
}

func (s *fakeStore) VerifyCredential(_ context.Context, identity, secret string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[identity]
	return ok && u.credential == secret, nil
}

func (s *fakeStore) IdentifierExists(_ context.Context, kind, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for identity, u := range s.users {
		switch kind {
		case IdentifierUsername:
			if identity == value {
				return true, nil
			}
		case IdentifierEmail:
			if strings.EqualFold(u.email, value) {
				return true, nil
			}
		}
	}
	return false, nil
}

// minimalStore implements only CredentialStore.
type minimalStore struct {
	s *fakeStore
}

func (m minimalStore) FindChallengeQuestion(ctx context.Context, identity string) (string, bool, error) {
	return m.s.FindChallengeQuestion(ctx, identity)
}

func (m minimalStore) VerifyAnswer(ctx context.Context, identity, question, answer string) (bool, error) {
	return m.s.VerifyAnswer(ctx, identity, question, answer)
}

func (m minimalStore) UpdateCredential(ctx context.Context, identity, newSecret string) (bool, error) {
	return m.s.UpdateCredential(ctx, identity, newSecret)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func newTestEngine(t *testing.T, store CredentialStore, configure func(*Builder)) *Engine {
	t.Helper()

	b := New().WithCredentialStore(store)
	if configure != nil {
		configure(b)
	}
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func aliceStore() *fakeStore {
	s := newFakeStore()
	s.add("alice", "pet name?", "rex", "oldpass123")
	return s
}
