// Package postgres is a credential store backed by PostgreSQL through the
// pgx database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	goRecover "github.com/MrEthical07/goRecover"
	"github.com/MrEthical07/goRecover/password"
	"github.com/MrEthical07/goRecover/store"
)

const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS recovery_accounts (
	id              UUID PRIMARY KEY,
	username        TEXT NOT NULL UNIQUE,
	email           TEXT NOT NULL DEFAULT '',
	question        TEXT NOT NULL DEFAULT '',
	answer_hash     TEXT NOT NULL DEFAULT '',
	credential_hash TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS recovery_accounts_email_idx
	ON recovery_accounts (lower(email)) WHERE email <> '';
`

var (
	_ goRecover.CredentialStore    = (*Store)(nil)
	_ goRecover.CredentialVerifier = (*Store)(nil)
	_ goRecover.IdentifierChecker  = (*Store)(nil)
)

// Open connects with the pgx driver and pings the server.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Store persists accounts in the recovery_accounts table. Secrets are
// hashed before they reach the database.
type Store struct {
	db     *sql.DB
	hasher *password.Argon2
	minLen int
	now    func() time.Time
}

func New(db *sql.DB, hasher *password.Argon2) *Store {
	return &Store{
		db:     db,
		hasher: hasher,
		minLen: store.DefaultMinCredentialLength,
		now:    time.Now,
	}
}

// SetMinCredentialLength overrides the shortest accepted credential.
func (s *Store) SetMinCredentialLength(n int) { s.minLen = n }

// EnsureSchema creates the accounts table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *Store) Add(ctx context.Context, n store.NewAccount) (store.Account, error) {
	acct, err := store.HashAccount(s.hasher, n, s.now().UTC())
	if err != nil {
		return store.Account{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO recovery_accounts (id, username, email, question, answer_hash, credential_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		acct.ID, acct.Username, acct.Email, acct.Question,
		acct.AnswerHash, acct.CredentialHash, acct.CreatedAt, acct.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return store.Account{}, store.ErrDuplicate
		}
		return store.Account{}, fmt.Errorf("insert account: %w", err)
	}
	return acct, nil
}

func (s *Store) Get(ctx context.Context, identity string) (store.Account, error) {
	var acct store.Account
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, email, question, answer_hash, credential_hash, created_at, updated_at
		FROM recovery_accounts
		WHERE username = $1`, identity,
	).Scan(
		&acct.ID, &acct.Username, &acct.Email, &acct.Question,
		&acct.AnswerHash, &acct.CredentialHash, &acct.CreatedAt, &acct.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Account{}, store.ErrAccountNotFound
	}
	if err != nil {
		return store.Account{}, fmt.Errorf("get account: %w", err)
	}
	return acct, nil
}

func (s *Store) FindChallengeQuestion(ctx context.Context, identity string) (string, bool, error) {
	var question string
	err := s.db.QueryRowContext(ctx,
		`SELECT question FROM recovery_accounts WHERE username = $1`, identity,
	).Scan(&question)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("find challenge question: %w", err)
	}
	return question, true, nil
}

func (s *Store) VerifyAnswer(ctx context.Context, identity, question, answer string) (bool, error) {
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT answer_hash FROM recovery_accounts WHERE username = $1 AND question = $2`,
		identity, question,
	).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("verify answer: %w", err)
	}
	if hash == "" {
		return false, nil
	}
	return s.verifyHash(answer, hash)
}

func (s *Store) VerifyCredential(ctx context.Context, identity, secret string) (bool, error) {
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT credential_hash FROM recovery_accounts WHERE username = $1`, identity,
	).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("verify credential: %w", err)
	}
	return s.verifyHash(secret, hash)
}

// UpdateCredential reports false with a nil error when no row matched or
// the credential is outside the length policy.
func (s *Store) UpdateCredential(ctx context.Context, identity, newSecret string) (bool, error) {
	if len(newSecret) < s.minLen {
		return false, nil
	}
	hash, err := s.hasher.Hash(newSecret)
	if errors.Is(err, password.ErrSecretLength) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE recovery_accounts SET credential_hash = $1, updated_at = $2 WHERE username = $3`,
		hash, s.now().UTC(), identity,
	)
	if err != nil {
		return false, fmt.Errorf("update credential: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update credential: %w", err)
	}
	return n == 1, nil
}

func (s *Store) IdentifierExists(ctx context.Context, kind, value string) (bool, error) {
	var query string
	switch kind {
	case goRecover.IdentifierUsername:
		query = `SELECT EXISTS (SELECT 1 FROM recovery_accounts WHERE username = $1)`
	case goRecover.IdentifierEmail:
		query = `SELECT EXISTS (SELECT 1 FROM recovery_accounts WHERE email <> '' AND lower(email) = $1)`
		value = strings.ToLower(value)
	default:
		return false, goRecover.ErrInvalidArgument
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, value).Scan(&exists); err != nil {
		return false, fmt.Errorf("identifier exists: %w", err)
	}
	return exists, nil
}

func (s *Store) verifyHash(secret, hash string) (bool, error) {
	ok, err := s.hasher.Verify(secret, hash)
	if errors.Is(err, password.ErrSecretLength) {
		return false, nil
	}
	return ok, err
}
