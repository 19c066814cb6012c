package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mvolkov/moneymover/internal/statement"
)

// loadStatement parses the statement to reconcile. With an explicit file the
// window is derived from the entry dates; otherwise the newest export in the
// statement directory is used and the window comes from its filename.
func (a *app) loadStatement(file string) (statement.Result, statement.Range, error) {
	var window statement.Range

	if file == "" {
		path, rng, err := statement.FindLatest(a.cfg.Statements.Dir, nowFunc())
		if err != nil {
			return statement.Result{}, statement.Range{}, err
		}
		file, window = path, rng
	}

	f, err := os.Open(file)
	if err != nil {
		return statement.Result{}, statement.Range{}, err
	}
	defer f.Close()

	var res statement.Result
	switch strings.ToLower(filepath.Ext(file)) {
	case ".ofx", ".qfx":
		res, err = statement.ParseOFX(f)
	case ".csv":
		res, err = statement.ParseING(f)
	default:
		return statement.Result{}, statement.Range{}, fmt.Errorf("unsupported statement format %q", filepath.Ext(file))
	}
	if err != nil {
		return statement.Result{}, statement.Range{}, fmt.Errorf("parse %s: %w", file, err)
	}

	if window.From.IsZero() {
		window = entryWindow(res)
	}
	return res, window, nil
}

// entryWindow spans the parsed entries' dates, padded to whole days.
func entryWindow(res statement.Result) statement.Range {
	var w statement.Range
	for _, e := range res.Entries {
		if w.From.IsZero() || e.Date.Before(w.From) {
			w.From = e.Date
		}
		if e.Date.After(w.To) {
			w.To = e.Date
		}
	}
	w.To = w.To.Add(24*time.Hour - time.Nanosecond)
	return w
}
