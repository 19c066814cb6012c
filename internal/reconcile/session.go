package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/mvolkov/moneymover/internal/ledger"
	"github.com/mvolkov/moneymover/internal/statement"
)

// State is the lifecycle position of one statement entry in a session.
type State int

const (
	Pending State = iota
	AutoRecorded
	AutoLabeled
	NeedsReview
	Decided
	Committed
	Skipped
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case AutoRecorded:
		return "auto-recorded"
	case AutoLabeled:
		return "auto-labeled"
	case NeedsReview:
		return "needs-review"
	case Decided:
		return "decided"
	case Committed:
		return "committed"
	case Skipped:
		return "skipped"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Item tracks one statement entry through the session. Matches holds every
// preset that fired, in declaration order; Label is the resolved label once
// the entry is Decided; Err records a commit failure (the entry then stays
// Decided and is reported, it does not abort the rest of the batch).
type Item struct {
	Entry   statement.Entry
	Key     Key
	State   State
	Matches []RuleMatch
	Label   *Label
	Err     error
}

// Proposed returns the first-priority firing rule's label, if any fired.
func (it Item) Proposed() *Label {
	if len(it.Matches) == 0 {
		return nil
	}
	l := it.Matches[0].Preset.Label
	return &l
}

// CreateRequest is the resolved entry handed to the ledger boundary.
type CreateRequest struct {
	WalletID     string
	Date         time.Time
	AmountCents  int64 // magnitude
	Direction    statement.Direction
	Note         string
	CategoryID   string
	CategoryName string
	Type         string
}

// Writer issues create-entry calls against the ledger. It must be callable
// repeatedly; the server does not dedupe, this session owns dedup.
type Writer interface {
	CreateEntry(ctx context.Context, req CreateRequest) (string, error)
}

// Decision is the user's answer for one entry under review.
type Decision struct {
	Skip         bool
	Type         string
	CategoryName string
	Note         string
}

// Interactor is the synchronous interaction surface. Implementations block
// until the user answers; rendering is entirely up to them.
type Interactor interface {
	// ConfirmBatch presents every auto-labeled entry at once. Confirm commits
	// them all; decline demotes them to individual review.
	ConfirmBatch(items []Item) (bool, error)
	// Resolve prompts for a single unresolved entry. Implementations must
	// re-prompt on invalid input rather than fail, and may only return
	// categories present in the taxonomy, or a skip.
	Resolve(item Item, taxonomy Taxonomy) (Decision, error)
}

// Config carries the explicit session context: no ambient wallet state.
type Config struct {
	WalletID   string
	Window     statement.Range
	Presets    []Preset
	Categories []ledger.Category
}

// Session orchestrates one reconciliation run over a statement window.
// Single-threaded and strictly sequential; it holds no durable state of its
// own, the ledger is the only source of truth.
type Session struct {
	cfg       Config
	taxonomy  Taxonomy
	engine    Engine
	items     []Item
	malformed []*MalformedEntryError
}

// NewSession validates the presets against the wallet taxonomy and admits
// the statement entries in ascending date order (ties keep input order). A
// preset referencing an unknown category prevents the session from starting.
func NewSession(cfg Config, entries []statement.Entry) (*Session, error) {
	taxonomy := NewTaxonomy(cfg.Categories)
	if err := ValidatePresets(cfg.Presets, taxonomy); err != nil {
		return nil, err
	}

	s := &Session{
		cfg:      cfg,
		taxonomy: taxonomy,
		engine:   NewEngine(cfg.Presets),
	}

	sorted := make([]statement.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	for _, e := range sorted {
		key, err := StatementKey(e)
		if err != nil {
			var malformed *MalformedEntryError
			if !errors.As(err, &malformed) {
				return nil, err
			}
			s.malformed = append(s.malformed, malformed)
			continue
		}
		s.items = append(s.items, Item{Entry: e, Key: key, State: Pending})
	}
	return s, nil
}

// Classify runs dedup and rule matching over the admitted entries.
// Read-only against the ledger snapshot; repeated runs over the same inputs
// give the same classification.
func (s *Session) Classify(ledgerEntries []ledger.Entry) {
	ix := NewIndex(ledgerEntries)
	for i := range s.items {
		it := &s.items[i]
		if ix.Has(it.Key) {
			it.State = AutoRecorded
			continue
		}
		it.Matches = s.engine.Evaluate(it.Entry)
		if len(it.Matches) == 1 {
			it.State = AutoLabeled
		} else {
			// zero rules or an ambiguous tie both need a human
			it.State = NeedsReview
		}
	}
}

// Items returns a snapshot of the session items in processing order.
func (s *Session) Items() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Malformed enumerates the statement entries excluded from matching.
func (s *Session) Malformed() []*MalformedEntryError {
	return s.malformed
}

// Taxonomy exposes the wallet taxonomy the session was started with.
func (s *Session) Taxonomy() Taxonomy { return s.taxonomy }

// CommitFailure pairs an entry with the ledger error that blocked it.
type CommitFailure struct {
	Item Item
	Err  error
}

// Report is the outcome of a session run. Partial success is expected;
// every entry ends up in exactly one list.
type Report struct {
	Recorded  []Item
	Committed []Item
	Failed    []CommitFailure
	Skipped   []Item
	Abandoned []Item
}

// Run drives the state machine to completion: batch confirmation for
// auto-labeled entries, per-entry prompts for the rest, create-entry calls
// for everything decided. Cancelling ctx abandons all entries that have not
// been committed yet; committed ones stay committed.
func (s *Session) Run(ctx context.Context, w Writer, ui Interactor) (Report, error) {
	var report Report

	batch := s.collect(AutoLabeled)
	if len(batch) > 0 {
		ok, err := ui.ConfirmBatch(batch)
		if err != nil {
			return s.finish(report), err
		}
		if ok {
			for _, idx := range s.indexes(AutoLabeled) {
				if err := ctx.Err(); err != nil {
					return s.finish(report), err
				}
				it := &s.items[idx]
				label := it.Proposed()
				it.Label = label
				it.State = Decided
				s.commit(ctx, w, it, &report)
			}
		} else {
			for _, idx := range s.indexes(AutoLabeled) {
				s.items[idx].State = NeedsReview
			}
		}
	}

	for _, idx := range s.indexes(NeedsReview) {
		if err := ctx.Err(); err != nil {
			return s.finish(report), err
		}
		it := &s.items[idx]
		decision, err := ui.Resolve(*it, s.taxonomy)
		if err != nil {
			return s.finish(report), err
		}
		if decision.Skip {
			it.State = Skipped
			report.Skipped = append(report.Skipped, *it)
			continue
		}
		if _, ok := s.taxonomy.Lookup(decision.CategoryName, decision.Type); !ok {
			return s.finish(report), fmt.Errorf("resolve %s: category %q (%s) not in taxonomy", it.Entry.ID, decision.CategoryName, decision.Type)
		}
		it.Label = &Label{Note: decision.Note, CategoryName: decision.CategoryName, Type: decision.Type}
		it.State = Decided
		s.commit(ctx, w, it, &report)
	}

	report.Recorded = s.collect(AutoRecorded)
	return report, nil
}

// commit issues one create-entry call. Failures are isolated: the entry
// stays Decided, carries the error, and the run continues.
func (s *Session) commit(ctx context.Context, w Writer, it *Item, report *Report) {
	cat, _ := s.taxonomy.Lookup(it.Label.CategoryName, it.Label.Type)
	req := CreateRequest{
		WalletID:     s.cfg.WalletID,
		Date:         it.Entry.Date,
		AmountCents:  it.Entry.AmountCents,
		Direction:    it.Entry.Direction,
		Note:         it.Label.Note,
		CategoryID:   cat.ID,
		CategoryName: cat.Name,
		Type:         cat.Type,
	}
	if _, err := w.CreateEntry(ctx, req); err != nil {
		it.Err = err
		report.Failed = append(report.Failed, CommitFailure{Item: *it, Err: err})
		return
	}
	it.State = Committed
	report.Committed = append(report.Committed, *it)
}

// finish folds everything still undecided into the abandoned list so a
// cancelled run reports exactly where it stopped.
func (s *Session) finish(report Report) Report {
	report.Recorded = s.collect(AutoRecorded)
	for _, it := range s.items {
		switch it.State {
		case Pending, AutoLabeled, NeedsReview:
			report.Abandoned = append(report.Abandoned, it)
		}
	}
	return report
}

func (s *Session) collect(state State) []Item {
	var out []Item
	for _, it := range s.items {
		if it.State == state {
			out = append(out, it)
		}
	}
	return out
}

func (s *Session) indexes(state State) []int {
	var out []int
	for i, it := range s.items {
		if it.State == state {
			out = append(out, i)
		}
	}
	return out
}
