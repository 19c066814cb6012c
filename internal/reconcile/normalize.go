// Package reconcile classifies bank statement entries against a ledger
// window, auto-labels them from user presets, and drives an idempotent
// transfer of the resolved entries into the ledger.
package reconcile

import (
	"fmt"
	"time"

	"github.com/mvolkov/moneymover/internal/ledger"
	"github.com/mvolkov/moneymover/internal/statement"
)

// Key identifies a transaction for dedup purposes: calendar day plus signed
// amount in minor units (credits positive, debits negative).
type Key struct {
	Date  string // ISO calendar date
	Cents int64
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.Date, ledger.FormatCents(k.Cents))
}

// MalformedEntryError marks a statement entry that cannot be normalized into
// a comparable key. Such entries are excluded from matching and reported,
// never silently dropped.
type MalformedEntryError struct {
	Entry  statement.Entry
	Reason string
}

func (e *MalformedEntryError) Error() string {
	return fmt.Sprintf("malformed entry %q (%s): %s", e.Entry.Name, e.Entry.ID, e.Reason)
}

// StatementKey normalizes a statement entry into its dedup key.
func StatementKey(e statement.Entry) (Key, error) {
	if e.Date.IsZero() {
		return Key{}, &MalformedEntryError{Entry: e, Reason: "missing date"}
	}
	if e.AmountCents < 0 {
		return Key{}, &MalformedEntryError{Entry: e, Reason: "negative amount magnitude"}
	}
	if e.Direction != statement.Debit && e.Direction != statement.Credit {
		return Key{}, &MalformedEntryError{Entry: e, Reason: fmt.Sprintf("unknown direction %q", e.Direction)}
	}
	return Key{Date: e.Date.Format(time.DateOnly), Cents: e.SignedCents()}, nil
}

// LedgerKey normalizes a ledger entry; its amount is already signed.
func LedgerKey(e ledger.Entry) Key {
	return Key{Date: e.Date.Format(time.DateOnly), Cents: e.AmountCents}
}

// Index is a multiset of ledger keys for the active window. Matching is by
// key membership: any count of equal-valued ledger entries satisfies every
// statement entry sharing that key. Deliberate over-matching, surfaced to
// the user during review rather than resolved here.
type Index map[Key]int

// NewIndex builds the dedup index from a ledger window snapshot.
func NewIndex(entries []ledger.Entry) Index {
	ix := make(Index, len(entries))
	for _, e := range entries {
		ix[LedgerKey(e)]++
	}
	return ix
}

// Has reports key membership.
func (ix Index) Has(k Key) bool { return ix[k] > 0 }

// Count returns how many ledger entries share the key.
func (ix Index) Count(k Key) int { return ix[k] }
