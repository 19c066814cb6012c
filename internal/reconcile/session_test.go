package reconcile

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mvolkov/moneymover/internal/ledger"
	"github.com/mvolkov/moneymover/internal/statement"
)

// fakeWriter records create requests and simulates a write-through ledger
// so committed entries show up in the next window snapshot.
type fakeWriter struct {
	requests []CreateRequest
	failName string // requests with this note fail with failErr
	failErr  error
	created  []ledger.Entry
}

func (w *fakeWriter) CreateEntry(_ context.Context, req CreateRequest) (string, error) {
	if w.failName != "" && req.Note == w.failName {
		return "", w.failErr
	}
	w.requests = append(w.requests, req)
	signed := req.AmountCents
	if req.Direction == statement.Debit {
		signed = -signed
	}
	w.created = append(w.created, ledger.Entry{
		ID:          fmt.Sprintf("created-%d", len(w.created)),
		Date:        req.Date,
		AmountCents: signed,
		Category:    req.CategoryName,
		Note:        req.Note,
	})
	return fmt.Sprintf("created-%d", len(w.created)), nil
}

// scriptedUI is a deterministic interaction surface for tests.
type scriptedUI struct {
	confirmBatch bool
	batchSeen    []Item
	decisions    map[string]Decision // by entry name
	resolved     []string
}

func (u *scriptedUI) ConfirmBatch(items []Item) (bool, error) {
	u.batchSeen = items
	return u.confirmBatch, nil
}

func (u *scriptedUI) Resolve(item Item, _ Taxonomy) (Decision, error) {
	u.resolved = append(u.resolved, item.Entry.Name)
	if d, ok := u.decisions[item.Entry.Name]; ok {
		return d, nil
	}
	return Decision{Skip: true}, nil
}

func sessionConfig(presets ...Preset) Config {
	return Config{
		WalletID:   "w1",
		Window:     statement.Range{From: day("2024-01-01"), To: day("2024-01-31")},
		Presets:    presets,
		Categories: testCategories(),
	}
}

func TestClassifyScenarioSupermarketPreset(t *testing.T) {
	t.Parallel()

	s, err := NewSession(sessionConfig(namePreset("expenses[0]", ".*supermarket", "Groceries")),
		[]statement.Entry{stmtEntry("2024-01-01", "Jumbo Supermarket", 12543, statement.Debit)})
	require.NoError(t, err)

	s.Classify(nil) // no matching ledger entry
	items := s.Items()
	require.Len(t, items, 1)
	require.Equal(t, AutoLabeled, items[0].State)
	require.Equal(t, "Groceries", items[0].Proposed().CategoryName)
}

func TestClassifySharedKeyOverMatches(t *testing.T) {
	t.Parallel()

	// two statement entries on the same key, one ledger entry: both are
	// considered recorded. Documented over-matching, not a bug.
	s, err := NewSession(sessionConfig(),
		[]statement.Entry{
			stmtEntry("2024-01-05", "Coffee A", 5000, statement.Debit),
			stmtEntry("2024-01-05", "Coffee B", 5000, statement.Debit),
		})
	require.NoError(t, err)

	s.Classify([]ledger.Entry{ledgerEntry("2024-01-05", -5000)})
	for _, it := range s.Items() {
		require.Equal(t, AutoRecorded, it.State)
	}
}

func TestClassifyAmbiguousTieNeedsReview(t *testing.T) {
	t.Parallel()

	s, err := NewSession(sessionConfig(
		namePreset("expenses[0]", "jumbo", "Groceries"),
		namePreset("expenses[1]", "supermarket", "Transport"),
	), []statement.Entry{stmtEntry("2024-01-01", "Jumbo Supermarket", 100, statement.Debit)})
	require.NoError(t, err)

	s.Classify(nil)
	items := s.Items()
	require.Equal(t, NeedsReview, items[0].State)
	require.Len(t, items[0].Matches, 2)
	require.Equal(t, "Groceries", items[0].Proposed().CategoryName)
}

func TestNewSessionRefusesInvalidPresetCategory(t *testing.T) {
	t.Parallel()

	bad := namePreset("expenses[0]", "jumbo", "Grocerys")
	_, err := NewSession(sessionConfig(bad), nil)
	var invalid *InvalidPresetCategoryError
	require.ErrorAs(t, err, &invalid)
}

func TestNewSessionOrdersByDateStable(t *testing.T) {
	t.Parallel()

	s, err := NewSession(sessionConfig(), []statement.Entry{
		stmtEntry("2024-01-20", "third", 1, statement.Debit),
		stmtEntry("2024-01-05", "first", 2, statement.Debit),
		stmtEntry("2024-01-05", "second", 3, statement.Debit),
	})
	require.NoError(t, err)

	items := s.Items()
	require.Equal(t, "first", items[0].Entry.Name)
	require.Equal(t, "second", items[1].Entry.Name)
	require.Equal(t, "third", items[2].Entry.Name)
}

func TestNewSessionReportsMalformedEntries(t *testing.T) {
	t.Parallel()

	broken := stmtEntry("2024-01-05", "broken", 100, statement.Debit)
	broken.Date = time.Time{}

	s, err := NewSession(sessionConfig(), []statement.Entry{
		stmtEntry("2024-01-01", "fine", 100, statement.Debit),
		broken,
	})
	require.NoError(t, err)
	require.Len(t, s.Items(), 1)
	require.Len(t, s.Malformed(), 1)
	require.Equal(t, "broken", s.Malformed()[0].Entry.Name)
}

func TestRunCommitsConfirmedBatch(t *testing.T) {
	t.Parallel()

	s, err := NewSession(sessionConfig(namePreset("expenses[0]", "supermarket", "Groceries")),
		[]statement.Entry{
			stmtEntry("2024-01-01", "Jumbo Supermarket", 12543, statement.Debit),
			stmtEntry("2024-01-02", "Coop Supermarket", 812, statement.Debit),
		})
	require.NoError(t, err)
	s.Classify(nil)

	w := &fakeWriter{}
	ui := &scriptedUI{confirmBatch: true}
	report, err := s.Run(context.Background(), w, ui)
	require.NoError(t, err)

	require.Len(t, ui.batchSeen, 2)
	require.Len(t, report.Committed, 2)
	require.Empty(t, report.Failed)
	require.Empty(t, report.Skipped)
	require.Len(t, w.requests, 2)
	require.Equal(t, "w1", w.requests[0].WalletID)
	require.Equal(t, "c1", w.requests[0].CategoryID)
	require.Equal(t, int64(12543), w.requests[0].AmountCents)
}

func TestRunDeclinedBatchFallsBackToReview(t *testing.T) {
	t.Parallel()

	s, err := NewSession(sessionConfig(namePreset("expenses[0]", "supermarket", "Groceries")),
		[]statement.Entry{stmtEntry("2024-01-01", "Jumbo Supermarket", 12543, statement.Debit)})
	require.NoError(t, err)
	s.Classify(nil)

	w := &fakeWriter{}
	ui := &scriptedUI{
		confirmBatch: false,
		decisions: map[string]Decision{
			"Jumbo Supermarket": {Type: ledger.TypeExpense, CategoryName: "Transport", Note: "actually a ride"},
		},
	}
	report, err := s.Run(context.Background(), w, ui)
	require.NoError(t, err)

	require.Equal(t, []string{"Jumbo Supermarket"}, ui.resolved)
	require.Len(t, report.Committed, 1)
	require.Equal(t, "c2", w.requests[0].CategoryID)
}

func TestRunSkipIssuesNoWrite(t *testing.T) {
	t.Parallel()

	s, err := NewSession(sessionConfig(),
		[]statement.Entry{stmtEntry("2024-01-01", "Mystery shop", 999, statement.Debit)})
	require.NoError(t, err)
	s.Classify(nil)
	require.Equal(t, NeedsReview, s.Items()[0].State)

	w := &fakeWriter{}
	report, err := s.Run(context.Background(), w, &scriptedUI{})
	require.NoError(t, err)

	require.Empty(t, w.requests)
	require.Len(t, report.Skipped, 1)
	require.Equal(t, Skipped, s.Items()[0].State)
}

func TestRunCommitFailureIsIsolated(t *testing.T) {
	t.Parallel()

	s, err := NewSession(sessionConfig(
		Preset{
			Source:     "expenses[0]",
			Conditions: Conditions{NamePattern: regexp.MustCompile("(?i)jumbo")},
			Label:      Label{Note: "doomed", CategoryName: "Groceries", Type: ledger.TypeExpense},
		},
		Preset{
			Source:     "expenses[1]",
			Conditions: Conditions{NamePattern: regexp.MustCompile("(?i)coop")},
			Label:      Label{Note: "fine", CategoryName: "Groceries", Type: ledger.TypeExpense},
		},
	), []statement.Entry{
		stmtEntry("2024-01-01", "Jumbo", 100, statement.Debit),
		stmtEntry("2024-01-02", "Coop", 200, statement.Debit),
	})
	require.NoError(t, err)
	s.Classify(nil)

	w := &fakeWriter{failName: "doomed", failErr: &ledger.APIError{Code: "500", Msg: "boom"}}
	report, err := s.Run(context.Background(), w, &scriptedUI{confirmBatch: true})
	require.NoError(t, err)

	require.Len(t, report.Failed, 1)
	require.Equal(t, "Jumbo", report.Failed[0].Item.Entry.Name)
	require.ErrorContains(t, report.Failed[0].Err, "boom")
	require.Len(t, report.Committed, 1)
	require.Equal(t, "Coop", report.Committed[0].Entry.Name)

	// the failed entry stays Decided, never Committed
	for _, it := range s.Items() {
		if it.Entry.Name == "Jumbo" {
			require.Equal(t, Decided, it.State)
		}
	}
}

func TestRunIdempotenceAfterCommit(t *testing.T) {
	t.Parallel()

	entries := []statement.Entry{stmtEntry("2024-01-01", "Jumbo Supermarket", 12543, statement.Debit)}
	preset := namePreset("expenses[0]", "supermarket", "Groceries")

	first, err := NewSession(sessionConfig(preset), entries)
	require.NoError(t, err)
	first.Classify(nil)

	w := &fakeWriter{}
	report, err := first.Run(context.Background(), w, &scriptedUI{confirmBatch: true})
	require.NoError(t, err)
	require.Len(t, report.Committed, 1)

	// re-run over the updated ledger: everything becomes auto-recorded
	second, err := NewSession(sessionConfig(preset), entries)
	require.NoError(t, err)
	second.Classify(w.created)

	for _, it := range second.Items() {
		require.Equal(t, AutoRecorded, it.State)
	}
	report2, err := second.Run(context.Background(), &fakeWriter{}, &scriptedUI{confirmBatch: true})
	require.NoError(t, err)
	require.Empty(t, report2.Committed)
	require.Len(t, report2.Recorded, 1)
}

func TestRunCancellationKeepsCommitted(t *testing.T) {
	t.Parallel()

	s, err := NewSession(sessionConfig(namePreset("expenses[0]", "shop", "Groceries")),
		[]statement.Entry{
			stmtEntry("2024-01-01", "shop one", 100, statement.Debit),
			stmtEntry("2024-01-02", "shop two", 200, statement.Debit),
		})
	require.NoError(t, err)
	s.Classify(nil)

	ctx, cancel := context.WithCancel(context.Background())
	w := &cancellingWriter{inner: &fakeWriter{}, cancel: cancel}
	report, err := s.Run(ctx, w, &scriptedUI{confirmBatch: true})
	require.ErrorIs(t, err, context.Canceled)

	require.Len(t, report.Committed, 1)
	require.Len(t, report.Abandoned, 1)
	require.Equal(t, "shop two", report.Abandoned[0].Entry.Name)
}

// cancellingWriter cancels the session after the first successful commit.
type cancellingWriter struct {
	inner  *fakeWriter
	cancel context.CancelFunc
}

func (w *cancellingWriter) CreateEntry(ctx context.Context, req CreateRequest) (string, error) {
	id, err := w.inner.CreateEntry(ctx, req)
	w.cancel()
	return id, err
}
