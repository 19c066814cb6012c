package repository

import (
	"context"
	"database/sql"
)

// CategoryRepo caches wallet categories between runs.
type CategoryRepo struct {
	db *sql.DB
}

func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// Replace swaps the cached set for the wallet with a fresh snapshot. The
// old rows go first so removed categories do not linger.
func (r *CategoryRepo) Replace(ctx context.Context, walletID string, cats []CachedCategory) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE wallet_id = ?`, walletID); err != nil {
		return err
	}
	for _, c := range cats {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO categories(wallet_id, id, name, type, parent_id, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
		`, walletID, c.ID, c.Name, c.Type, c.ParentID, c.FetchedAt)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// List returns the cached categories for a wallet, parents first.
func (r *CategoryRepo) List(ctx context.Context, walletID string) ([]CachedCategory, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT wallet_id, id, name, type, parent_id, fetched_at
	FROM categories
	WHERE wallet_id = ?
	ORDER BY parent_id IS NOT NULL, name
	`, walletID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CachedCategory
	for rows.Next() {
		var c CachedCategory
		if err := rows.Scan(&c.WalletID, &c.ID, &c.Name, &c.Type, &c.ParentID, &c.FetchedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
