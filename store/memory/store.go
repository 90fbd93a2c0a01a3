// Package memory is an in-process credential store keyed by username.
// Data is lost on restart.
package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	goRecover "github.com/MrEthical07/goRecover"
	"github.com/MrEthical07/goRecover/password"
	"github.com/MrEthical07/goRecover/store"
)

var (
	_ goRecover.CredentialStore    = (*Store)(nil)
	_ goRecover.CredentialVerifier = (*Store)(nil)
	_ goRecover.IdentifierChecker  = (*Store)(nil)
)

// Store keeps accounts in a map guarded by a RWMutex.
type Store struct {
	mu      sync.RWMutex
	byName  map[string]*store.Account
	byEmail map[string]string

	hasher *password.Argon2
	minLen int
	now    func() time.Time
}

type Option func(*Store)

// WithMinCredentialLength sets the shortest credential UpdateCredential
// accepts. Shorter credentials are rejected with (false, nil).
func WithMinCredentialLength(n int) Option {
	return func(s *Store) { s.minLen = n }
}

// WithClock overrides the clock used for CreatedAt and UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(hasher *password.Argon2, opts ...Option) *Store {
	s := &Store{
		byName:  make(map[string]*store.Account),
		byEmail: make(map[string]string),
		hasher:  hasher,
		minLen:  store.DefaultMinCredentialLength,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add registers an account. Username and email must be unique.
func (s *Store) Add(_ context.Context, n store.NewAccount) (store.Account, error) {
	acct, err := store.HashAccount(s.hasher, n, s.now())
	if err != nil {
		return store.Account{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byName[acct.Username]; ok {
		return store.Account{}, store.ErrDuplicate
	}
	email := strings.ToLower(acct.Email)
	if email != "" {
		if _, ok := s.byEmail[email]; ok {
			return store.Account{}, store.ErrDuplicate
		}
		s.byEmail[email] = acct.Username
	}
	s.byName[acct.Username] = &acct
	return acct, nil
}

// Get returns a copy of the stored account.
func (s *Store) Get(_ context.Context, identity string) (store.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.byName[identity]
	if !ok {
		return store.Account{}, store.ErrAccountNotFound
	}
	return *acct, nil
}

func (s *Store) FindChallengeQuestion(_ context.Context, identity string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.byName[identity]
	if !ok {
		return "", false, nil
	}
	return acct.Question, true, nil
}

// VerifyAnswer requires the stored question to match exactly before the
// answer hash is checked.
func (s *Store) VerifyAnswer(_ context.Context, identity, question, answer string) (bool, error) {
	s.mu.RLock()
	acct, ok := s.byName[identity]
	var q, hash string
	if ok {
		q, hash = acct.Question, acct.AnswerHash
	}
	s.mu.RUnlock()

	if !ok || q != question || hash == "" {
		return false, nil
	}
	return s.verifyHash(answer, hash)
}

func (s *Store) VerifyCredential(_ context.Context, identity, secret string) (bool, error) {
	s.mu.RLock()
	acct, ok := s.byName[identity]
	var hash string
	if ok {
		hash = acct.CredentialHash
	}
	s.mu.RUnlock()

	if !ok {
		return false, nil
	}
	matched, err := s.verifyHash(secret, hash)
	if err != nil || !matched {
		return matched, err
	}
	s.rehash(identity, secret, hash)
	return true, nil
}

// rehash upgrades a legacy or under-parameterized credential hash after a
// successful verification. Failures leave the old hash in place.
func (s *Store) rehash(identity, secret, old string) {
	if stale, err := s.hasher.NeedsRehash(old); err != nil || !stale {
		return
	}
	hash, err := s.hasher.Hash(secret)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if acct, ok := s.byName[identity]; ok && acct.CredentialHash == old {
		acct.CredentialHash = hash
	}
}

// UpdateCredential hashes outside the lock and swaps the hash in. Unknown
// identities and credentials outside the length policy return (false, nil).
func (s *Store) UpdateCredential(_ context.Context, identity, newSecret string) (bool, error) {
	if len(newSecret) < s.minLen {
		return false, nil
	}

	s.mu.RLock()
	_, ok := s.byName[identity]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}

	hash, err := s.hasher.Hash(newSecret)
	if errors.Is(err, password.ErrSecretLength) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.byName[identity]
	if !ok {
		return false, nil
	}
	acct.CredentialHash = hash
	acct.UpdatedAt = s.now()
	return true, nil
}

func (s *Store) IdentifierExists(_ context.Context, kind, value string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch kind {
	case goRecover.IdentifierUsername:
		_, ok := s.byName[value]
		return ok, nil
	case goRecover.IdentifierEmail:
		_, ok := s.byEmail[strings.ToLower(value)]
		return ok, nil
	default:
		return false, goRecover.ErrInvalidArgument
	}
}

func (s *Store) verifyHash(secret, hash string) (bool, error) {
	ok, err := s.hasher.Verify(secret, hash)
	if errors.Is(err, password.ErrSecretLength) {
		return false, nil
	}
	return ok, err
}
