package repository

import (
	"context"
	"database/sql"
	"errors"
)

// TokenRepo caches the ledger access token so repeated runs skip the login
// dance until the token ages out.
type TokenRepo struct {
	db *sql.DB
}

func NewTokenRepo(db *sql.DB) *TokenRepo {
	return &TokenRepo{db: db}
}

func (r *TokenRepo) Put(ctx context.Context, t SessionToken) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO session_tokens(account, token, fetched_at)
	VALUES (?, ?, ?)
	ON CONFLICT(account) DO UPDATE SET
	 token=excluded.token,
	 fetched_at=excluded.fetched_at;
	`, t.Account, t.Token, t.FetchedAt)
	return err
}

// Get returns the cached token for the account, or ok=false when absent.
func (r *TokenRepo) Get(ctx context.Context, account string) (SessionToken, bool, error) {
	var t SessionToken
	err := r.db.QueryRowContext(ctx, `
	SELECT account, token, fetched_at FROM session_tokens WHERE account = ?
	`, account).Scan(&t.Account, &t.Token, &t.FetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return SessionToken{}, false, nil
	}
	if err != nil {
		return SessionToken{}, false, err
	}
	return t, true, nil
}

func (r *TokenRepo) Delete(ctx context.Context, account string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM session_tokens WHERE account = ?`, account)
	return err
}
