package ui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/mvolkov/moneymover/internal/ledger"
	"github.com/mvolkov/moneymover/internal/reconcile"
	"github.com/mvolkov/moneymover/internal/statement"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestConfirmModelAnswers(t *testing.T) {
	t.Parallel()

	m, _ := newConfirm("sure?", "").Update(key("y"))
	cm := m.(confirmModel)
	require.True(t, cm.done)
	require.True(t, cm.answer)

	m, _ = newConfirm("sure?", "").Update(key("n"))
	cm = m.(confirmModel)
	require.True(t, cm.done)
	require.False(t, cm.answer)

	m, _ = newConfirm("sure?", "").Update(key("enter"))
	require.True(t, m.(confirmModel).answer)

	m, _ = newConfirm("sure?", "").Update(key("ctrl+c"))
	require.True(t, m.(confirmModel).aborted)
}

func TestPickerFiltersAndSelects(t *testing.T) {
	t.Parallel()

	var m tea.Model = newPicker("category", []pickerItem{
		{ID: "c1", Label: "Groceries"},
		{ID: "c2", Label: "Transport"},
		{ID: "c3", Label: "Gifts"},
	})

	// narrow to entries containing "gr"
	m, _ = m.Update(key("g"))
	m, _ = m.Update(key("r"))
	pm := m.(pickerModel)
	require.Len(t, pm.list.Items(), 1)

	m, _ = m.Update(key("enter"))
	pm = m.(pickerModel)
	require.NotNil(t, pm.selected)
	require.Equal(t, "c1", pm.selected.ID)
}

func TestPickerEscCancels(t *testing.T) {
	t.Parallel()

	var m tea.Model = newPicker("category", []pickerItem{{ID: "c1", Label: "Groceries"}})
	m, _ = m.Update(key("esc"))
	require.True(t, m.(pickerModel).cancelled)
}

func TestRenderRows(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	out := RenderRows([]reconcile.DisplayRow{
		{Index: 0, Date: day, Name: "Jumbo Supermarket", SignedCents: -12543, Direction: statement.Debit, Status: reconcile.StatusRecognized, Category: "Groceries"},
		{Index: 1, Date: day, Name: "Rent", SignedCents: -95000, Direction: statement.Debit, Status: reconcile.StatusRecorded},
		{Index: 2, Date: day, Name: "Mystery", SignedCents: -999, Direction: statement.Debit, Status: reconcile.StatusManual},
		{Index: 3, Date: day, Name: "Both", SignedCents: -100, Direction: statement.Debit, Status: reconcile.StatusRecognized, Category: "Groceries", Ambiguous: true},
	}, "EUR")

	require.Contains(t, out, "Jumbo Supermarket")
	require.Contains(t, out, "Groceries")
	require.Contains(t, out, "2024-01-05")
	require.Contains(t, out, "(ambiguous)")
}

func TestRenderSummarySkipsEmptyBuckets(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	item := reconcile.Item{Entry: statement.Entry{Date: day, Name: "Jumbo", AmountCents: 100, Direction: statement.Debit}}

	out := RenderSummary(reconcile.Report{Committed: []reconcile.Item{item}}, "EUR")
	require.Contains(t, out, "transferred (1)")
	require.NotContains(t, out, "skipped")
	require.NotContains(t, out, "failed")
}

// scriptPrograms replaces the bubbletea runner with a scripted key feed,
// one sequence per prompt in order.
func scriptPrograms(t *testing.T, sequences ...[]string) {
	t.Helper()
	prev := runProgram
	t.Cleanup(func() { runProgram = prev })
	i := 0
	runProgram = func(m tea.Model) (tea.Model, error) {
		require.Less(t, i, len(sequences), "unexpected extra prompt")
		for _, k := range sequences[i] {
			m, _ = m.Update(key(k))
		}
		i++
		return m, nil
	}
}

func reviewItem() reconcile.Item {
	return reconcile.Item{
		Entry: statement.Entry{
			Date:        time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
			Name:        "Jumbo Supermarket",
			AmountCents: 12543,
			Direction:   statement.Debit,
		},
	}
}

func testTaxonomy() reconcile.Taxonomy {
	return reconcile.NewTaxonomy([]ledger.Category{
		{ID: "c1", Name: "Groceries", Type: ledger.TypeExpense},
		{ID: "c2", Name: "Transport", Type: ledger.TypeExpense},
		{ID: "c3", Name: "Salary", Type: ledger.TypeIncome},
	})
}

func TestPrompterResolveManualExpense(t *testing.T) {
	p := &Prompter{Currency: "EUR"}
	// action list: pick "expense...", category list: pick Groceries, keep note
	scriptPrograms(t,
		[]string{"expense", "enter"},
		[]string{"groc", "enter"},
		[]string{"enter"},
	)

	d, err := p.Resolve(reviewItem(), testTaxonomy())
	require.NoError(t, err)
	require.False(t, d.Skip)
	require.Equal(t, ledger.TypeExpense, d.Type)
	require.Equal(t, "Groceries", d.CategoryName)
	require.Equal(t, "Jumbo Supermarket", d.Note)
}

func TestPrompterResolveSkip(t *testing.T) {
	p := &Prompter{Currency: "EUR"}
	scriptPrograms(t, []string{"skip", "enter"})

	d, err := p.Resolve(reviewItem(), testTaxonomy())
	require.NoError(t, err)
	require.True(t, d.Skip)
}

func TestPrompterResolvePresetAlternate(t *testing.T) {
	p := &Prompter{Currency: "EUR"}
	item := reviewItem()
	item.Matches = []reconcile.RuleMatch{
		{Index: 0, Preset: reconcile.Preset{Source: "expenses[0]", Label: reconcile.Label{Note: "weekly shop", CategoryName: "Groceries", Type: ledger.TypeExpense}}},
		{Index: 1, Preset: reconcile.Preset{Source: "expenses[1]", Label: reconcile.Label{Note: "ride", CategoryName: "Transport", Type: ledger.TypeExpense}}},
	}
	// filter down to the second firing preset and take it
	scriptPrograms(t, []string{"transport", "enter"})

	d, err := p.Resolve(item, testTaxonomy())
	require.NoError(t, err)
	require.Equal(t, "Transport", d.CategoryName)
	require.Equal(t, "ride", d.Note)
}

func TestPrompterConfirmBatch(t *testing.T) {
	p := &Prompter{Currency: "EUR"}
	item := reviewItem()
	item.Matches = []reconcile.RuleMatch{
		{Index: 0, Preset: reconcile.Preset{Source: "expenses[0]", Label: reconcile.Label{CategoryName: "Groceries", Type: ledger.TypeExpense}}},
	}

	scriptPrograms(t, []string{"y"})
	ok, err := p.ConfirmBatch([]reconcile.Item{item})
	require.NoError(t, err)
	require.True(t, ok)

	scriptPrograms(t, []string{"n"})
	ok, err = p.ConfirmBatch([]reconcile.Item{item})
	require.NoError(t, err)
	require.False(t, ok)
}
