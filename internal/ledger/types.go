// Package ledger is a client for the wallet service holding the durable
// transaction record. It only reads and appends; the server is the single
// source of truth and never dedupes on our behalf.
package ledger

import "time"

// Category transaction types as exposed by the API.
const (
	TypeDebtLoan = "debt/loan"
	TypeIncome   = "income"
	TypeExpense  = "expense"
)

// Wallet is a container for transactions, analogous to an account.
type Wallet struct {
	ID           string
	Name         string
	BalanceCents int64
	Currency     string
}

// Category is one label in a wallet's taxonomy.
type Category struct {
	ID       string
	WalletID string
	Name     string
	Type     string // TypeIncome, TypeExpense or TypeDebtLoan
	ParentID string
}

// Entry is one record already present in the wallet. AmountCents is signed:
// income positive, expense negative. Read-only snapshot, never mutated here.
type Entry struct {
	ID           string
	Date         time.Time // midnight UTC
	AmountCents  int64
	Category     string
	CategoryType string
	Note         string
}

// CreateRequest describes a record to append to a wallet. AmountCents is a
// magnitude; the server derives the sign from the category's type.
type CreateRequest struct {
	WalletID    string
	CategoryID  string
	AmountCents int64
	Note        string
	Date        time.Time
}
