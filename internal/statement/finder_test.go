package statement

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
}

func TestFindLatestPicksClosestEndDate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, dir, "NL20INGB0001234567_01-01-2024_31-01-2024.csv")
	touch(t, dir, "NL20INGB0001234567_01-02-2024_29-02-2024.csv")
	touch(t, dir, "notes.txt")
	touch(t, dir, "random.csv")

	now := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	path, window, err := FindLatest(dir, now)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "NL20INGB0001234567_01-02-2024_29-02-2024.csv"), path)
	require.Equal(t, "2024-02-01", window.From.Format(time.DateOnly))
	require.Equal(t, "2024-02-29", window.To.Format(time.DateOnly))
	require.True(t, window.Contains(time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)))
	require.False(t, window.Contains(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestFindLatestNoStatement(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, dir, "unrelated.csv")

	_, _, err := FindLatest(dir, time.Now())
	require.ErrorIs(t, err, ErrNoStatement)
}
