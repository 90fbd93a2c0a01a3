// Package store holds the account model shared by the credential store
// adapters in store/memory and store/postgres.
package store

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	goRecover "github.com/MrEthical07/goRecover"
	"github.com/MrEthical07/goRecover/password"
)

// DefaultMinCredentialLength is the shortest credential UpdateCredential accepts.
const DefaultMinCredentialLength = 8

var (
	ErrDuplicate       = errors.New("identifier already registered")
	ErrInvalidAccount  = errors.New("invalid account")
	ErrAccountNotFound = errors.New("account not found")
)

// Account is a stored identity. Answers and credentials are kept only as
// password hashes.
type Account struct {
	ID             uuid.UUID
	Username       string
	Email          string
	Question       string
	AnswerHash     string
	CredentialHash string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewAccount is the plaintext registration input for a store.
type NewAccount struct {
	Username   string
	Email      string
	Question   string
	Answer     string
	Credential string
}

// Validate checks the fields every store requires. The question may be blank.
func (n NewAccount) Validate() error {
	if strings.TrimSpace(n.Username) == "" {
		return errors.Join(ErrInvalidAccount, errors.New("username is required"))
	}
	if strings.TrimSpace(n.Credential) == "" {
		return errors.Join(ErrInvalidAccount, errors.New("credential is required"))
	}
	return nil
}

// NewHasher builds the password hasher stores use for answers and
// credentials from the engine's password configuration.
func NewHasher(cfg goRecover.PasswordConfig) (*password.Argon2, error) {
	return password.NewArgon2(password.Config{
		Memory:      cfg.Memory,
		Time:        cfg.Time,
		Parallelism: cfg.Parallelism,
		SaltLength:  cfg.SaltLength,
		KeyLength:   cfg.KeyLength,
	})
}

// HashAccount converts registration input into an Account with a fresh ID.
func HashAccount(hasher *password.Argon2, n NewAccount, now time.Time) (Account, error) {
	if err := n.Validate(); err != nil {
		return Account{}, err
	}

	acct := Account{
		ID:        uuid.New(),
		Username:  n.Username,
		Email:     n.Email,
		Question:  n.Question,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var err error
	if n.Answer != "" {
		if acct.AnswerHash, err = hasher.Hash(n.Answer); err != nil {
			return Account{}, err
		}
	}
	if acct.CredentialHash, err = hasher.Hash(n.Credential); err != nil {
		return Account{}, err
	}
	return acct, nil
}

// ParseSeed parses "identity:question:answer:credential". The question may
// contain no colons; the credential may.
func ParseSeed(s string) (NewAccount, error) {
	parts := strings.SplitN(s, ":", 4)
	if len(parts) != 4 {
		return NewAccount{}, errors.Join(ErrInvalidAccount, errors.New("seed must be identity:question:answer:credential"))
	}
	n := NewAccount{
		Username:   parts[0],
		Question:   parts[1],
		Answer:     parts[2],
		Credential: parts[3],
	}
	return n, n.Validate()
}
