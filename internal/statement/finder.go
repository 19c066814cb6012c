package statement

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// ING names exports "<IBAN>_<from>_<to>.csv" with dd-mm-yyyy dates.
var ingFilePattern = regexp.MustCompile(`^(.+)_(\d{2}-\d{2}-\d{4})_(\d{2}-\d{2}-\d{4})\.csv$`)

const ingFileDateFormat = "02-01-2006"

// ErrNoStatement is returned when the statement folder holds no recognizable export.
var ErrNoStatement = fmt.Errorf("no bank statement found")

// FindLatest scans dir for ING CSV exports and returns the one whose
// period ends closest to now, together with the period it covers.
func FindLatest(dir string, now time.Time) (string, Range, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", Range{}, fmt.Errorf("read statement dir: %w", err)
	}

	var (
		best     string
		bestR    Range
		bestDiff time.Duration
		found    bool
	)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := ingFilePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		from, err := time.Parse(ingFileDateFormat, m[2])
		if err != nil {
			continue
		}
		to, err := time.Parse(ingFileDateFormat, m[3])
		if err != nil {
			continue
		}
		diff := now.Sub(to)
		if diff < 0 {
			diff = -diff
		}
		if !found || diff < bestDiff {
			found = true
			best = entry.Name()
			bestR = Range{From: from.UTC(), To: to.UTC()}
			bestDiff = diff
		}
	}
	if !found {
		return "", Range{}, fmt.Errorf("%w in %s", ErrNoStatement, dir)
	}
	return filepath.Join(dir, best), bestR, nil
}
