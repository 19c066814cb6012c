package reconcile

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mvolkov/moneymover/internal/ledger"
	"github.com/mvolkov/moneymover/internal/statement"
)

func TestDisplayRows(t *testing.T) {
	t.Parallel()

	s, err := NewSession(sessionConfig(
		namePreset("expenses[0]", "supermarket", "Groceries"),
		namePreset("expenses[1]", "jumbo", "Transport"),
	), []statement.Entry{
		stmtEntry("2024-01-01", "Rent Payment", 95000, statement.Debit),
		stmtEntry("2024-01-02", "Coop Supermarket", 812, statement.Debit),
		stmtEntry("2024-01-03", "Jumbo Supermarket", 12543, statement.Debit),
	})
	require.NoError(t, err)
	s.Classify([]ledger.Entry{ledgerEntry("2024-01-01", -95000)})

	rows := s.DisplayRows()
	require.Len(t, rows, 3)

	require.Equal(t, StatusRecorded, rows[0].Status)
	require.Equal(t, int64(-95000), rows[0].SignedCents)

	require.Equal(t, StatusRecognized, rows[1].Status)
	require.False(t, rows[1].Ambiguous)
	require.Equal(t, "Groceries", rows[1].Category)

	// both presets fire on the third entry: recognized but flagged
	require.Equal(t, StatusRecognized, rows[2].Status)
	require.True(t, rows[2].Ambiguous)
	require.Equal(t, "Groceries", rows[2].Category)
}
