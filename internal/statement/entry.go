// Package statement parses bank statement exports into a normalized row format.
package statement

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Direction marks which side of the account a statement line sits on.
type Direction string

const (
	Debit  Direction = "Debit"
	Credit Direction = "Credit"
)

// Entry is one transaction from a bank statement. Immutable once parsed.
// AmountCents is a magnitude; Direction carries the sign.
type Entry struct {
	ID           string
	Date         time.Time // midnight UTC, day granularity
	Name         string
	AmountCents  int64
	Direction    Direction
	Account      string
	Counterparty string
	Code         string
	Narrative    string
}

// SignedCents returns the amount with the sign convention used for matching:
// credits positive, debits negative.
func (e Entry) SignedCents() int64 {
	if e.Direction == Debit {
		return -e.AmountCents
	}
	return e.AmountCents
}

// RowError records a statement row that could not be parsed. Such rows are
// excluded from matching but must stay enumerable by the caller.
type RowError struct {
	Line int
	Err  error
}

func (r RowError) Error() string { return fmt.Sprintf("line %d: %v", r.Line, r.Err) }

func (r RowError) Unwrap() error { return r.Err }

// Result is the outcome of parsing one statement file.
type Result struct {
	Entries   []Entry
	Malformed []RowError
}

// Range is the date window covered by a statement.
type Range struct {
	From time.Time
	To   time.Time
}

// Contains reports whether d falls inside the window, inclusive on both ends.
func (r Range) Contains(d time.Time) bool {
	return !d.Before(r.From) && !d.After(r.To)
}

// entryID derives a stable identifier so repeated parses of the same file
// produce the same ids.
func entryID(account, name string, date time.Time, cents int64, dir Direction) string {
	key := strings.Join([]string{
		strings.ToLower(account),
		strings.ToLower(name),
		date.Format(time.DateOnly),
		fmt.Sprintf("%d", cents),
		string(dir),
	}, "|")
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
}
