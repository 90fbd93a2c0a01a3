package memory

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	goRecover "github.com/MrEthical07/goRecover"
	"github.com/MrEthical07/goRecover/password"
	"github.com/MrEthical07/goRecover/store"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	hasher, err := password.NewArgon2(password.Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	require.NoError(t, err)
	return New(hasher, opts...)
}

func seedAlice(t *testing.T, s *Store) {
	t.Helper()
	_, err := s.Add(context.Background(), store.NewAccount{
		Username:   "alice",
		Email:      "Alice@Example.com",
		Question:   "pet name?",
		Answer:     "rex",
		Credential: "oldpass123",
	})
	require.NoError(t, err)
}

func TestStore_FindChallengeQuestion(t *testing.T) {
	s := newTestStore(t)
	seedAlice(t, s)
	ctx := context.Background()

	q, found, err := s.FindChallengeQuestion(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "pet name?", q)

	_, found, err = s.FindChallengeQuestion(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_VerifyAnswer(t *testing.T) {
	s := newTestStore(t)
	seedAlice(t, s)
	ctx := context.Background()

	ok, err := s.VerifyAnswer(ctx, "alice", "pet name?", "rex")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.VerifyAnswer(ctx, "alice", "pet name?", "max")
	require.NoError(t, err)
	assert.False(t, ok, "wrong answer")

	ok, err = s.VerifyAnswer(ctx, "alice", "first car?", "rex")
	require.NoError(t, err)
	assert.False(t, ok, "question must match")

	ok, err = s.VerifyAnswer(ctx, "bob", "pet name?", "rex")
	require.NoError(t, err)
	assert.False(t, ok, "unknown identity")
}

func TestStore_VerifyCredentialUpgradesLegacyHash(t *testing.T) {
	s := newTestStore(t)
	seedAlice(t, s)
	ctx := context.Background()

	legacy, err := bcrypt.GenerateFromPassword([]byte("legacypass1"), bcrypt.MinCost)
	require.NoError(t, err)
	s.mu.Lock()
	s.byName["alice"].CredentialHash = string(legacy)
	s.mu.Unlock()

	ok, err := s.VerifyCredential(ctx, "alice", "wrongpass1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, string(legacy), s.byName["alice"].CredentialHash)

	ok, err = s.VerifyCredential(ctx, "alice", "legacypass1")
	require.NoError(t, err)
	assert.True(t, ok)

	acct, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(acct.CredentialHash, "$argon2id$"))

	ok, err = s.VerifyCredential(ctx, "alice", "legacypass1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_UpdateCredential(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newTestStore(t, WithClock(func() time.Time { return fixed }))
	seedAlice(t, s)
	ctx := context.Background()

	ok, err := s.UpdateCredential(ctx, "alice", "newpass123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.VerifyCredential(ctx, "alice", "newpass123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.VerifyCredential(ctx, "alice", "oldpass123")
	require.NoError(t, err)
	assert.False(t, ok)

	acct, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, fixed, acct.UpdatedAt)
}

func TestStore_UpdateCredentialRejections(t *testing.T) {
	s := newTestStore(t)
	seedAlice(t, s)
	ctx := context.Background()

	ok, err := s.UpdateCredential(ctx, "bob", "newpass123")
	require.NoError(t, err)
	assert.False(t, ok, "unknown identity")

	ok, err = s.UpdateCredential(ctx, "alice", "short")
	require.NoError(t, err)
	assert.False(t, ok, "below minimum length")

	ok, err = s.VerifyCredential(ctx, "alice", "oldpass123")
	require.NoError(t, err)
	assert.True(t, ok, "credential unchanged after rejection")
}

func TestStore_AddDuplicate(t *testing.T) {
	s := newTestStore(t)
	seedAlice(t, s)
	ctx := context.Background()

	_, err := s.Add(ctx, store.NewAccount{Username: "alice", Credential: "whatever123"})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	_, err = s.Add(ctx, store.NewAccount{Username: "alice2", Email: "alice@example.com", Credential: "whatever123"})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	_, err = s.Add(ctx, store.NewAccount{Username: " ", Credential: "whatever123"})
	assert.ErrorIs(t, err, store.ErrInvalidAccount)
}

func TestStore_IdentifierExists(t *testing.T) {
	s := newTestStore(t)
	seedAlice(t, s)
	ctx := context.Background()

	tests := []struct {
		kind  string
		value string
		want  bool
	}{
		{goRecover.IdentifierUsername, "alice", true},
		{goRecover.IdentifierUsername, "bob", false},
		{goRecover.IdentifierEmail, "alice@example.com", true},
		{goRecover.IdentifierEmail, "ALICE@EXAMPLE.COM", true},
		{goRecover.IdentifierEmail, "bob@example.com", false},
	}
	for _, tt := range tests {
		got, err := s.IdentifierExists(ctx, tt.kind, tt.value)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s=%s", tt.kind, tt.value)
	}

	_, err := s.IdentifierExists(ctx, "phone", "555")
	assert.ErrorIs(t, err, goRecover.ErrInvalidArgument)
}

func TestStore_ConcurrentUpdates(t *testing.T) {
	s := newTestStore(t)
	seedAlice(t, s)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.UpdateCredential(ctx, "alice", "concurrent123")
			assert.NoError(t, err)
			assert.True(t, ok)
		}()
	}
	wg.Wait()

	ok, err := s.VerifyCredential(ctx, "alice", "concurrent123")
	require.NoError(t, err)
	assert.True(t, ok)
}
