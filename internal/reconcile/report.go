package reconcile

import (
	"time"

	"github.com/mvolkov/moneymover/internal/statement"
)

// RowStatus summarizes a classified entry for display.
type RowStatus string

const (
	StatusRecorded   RowStatus = "recorded"   // already present in the ledger
	StatusRecognized RowStatus = "recognized" // a preset fired
	StatusManual     RowStatus = "manual"     // needs human review
)

// DisplayRow is a structured display record; the interaction surface
// renders it however it likes.
type DisplayRow struct {
	Index       int
	Date        time.Time
	Name        string
	SignedCents int64
	Direction   statement.Direction
	Status      RowStatus
	Category    string // proposed category when a preset fired
	Ambiguous   bool   // more than one preset fired
}

// DisplayRows projects the classified session items into display records,
// in processing order.
func (s *Session) DisplayRows() []DisplayRow {
	rows := make([]DisplayRow, 0, len(s.items))
	for i, it := range s.items {
		row := DisplayRow{
			Index:       i,
			Date:        it.Entry.Date,
			Name:        it.Entry.Name,
			SignedCents: it.Entry.SignedCents(),
			Direction:   it.Entry.Direction,
		}
		switch it.State {
		case AutoRecorded:
			row.Status = StatusRecorded
		case AutoLabeled:
			row.Status = StatusRecognized
		default:
			if len(it.Matches) > 1 {
				row.Status = StatusRecognized
				row.Ambiguous = true
			} else {
				row.Status = StatusManual
			}
		}
		if proposed := it.Proposed(); proposed != nil {
			row.Category = proposed.CategoryName
		}
		rows = append(rows, row)
	}
	return rows
}
