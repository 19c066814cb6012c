package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/mvolkov/moneymover/internal/reconcile"
)

// RenderRows formats the classified statement as an aligned, colored table.
// Green rows are already in the ledger, blue rows were recognized by a
// preset, red rows need manual review.
func RenderRows(rows []reconcile.DisplayRow, currency string) string {
	var b strings.Builder
	b.WriteString(styleHeader.Render(fmt.Sprintf("%-4s %-10s %-32s %12s  %s", "#", "date", "name", "amount", "category")))
	b.WriteByte('\n')
	for _, row := range rows {
		cat := row.Category
		if row.Ambiguous {
			cat += " (ambiguous)"
		}
		line := fmt.Sprintf("%-4d %-10s %-32s %12s  %s",
			row.Index+1,
			row.Date.Format(time.DateOnly),
			truncate(row.Name, 32),
			FormatAmount(row.SignedCents, currency),
			cat,
		)
		switch {
		case row.Status == reconcile.StatusRecorded:
			line = styleRecorded.Render(line)
		case row.Ambiguous:
			line = styleAmbiguous.Render(line)
		case row.Status == reconcile.StatusRecognized:
			line = styleRecognized.Render(line)
		default:
			line = styleManual.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// RenderSummary formats the session outcome, one line per bucket, empty
// buckets omitted.
func RenderSummary(report reconcile.Report, currency string) string {
	var b strings.Builder
	section := func(label string, items []reconcile.Item) {
		if len(items) == 0 {
			return
		}
		b.WriteString(styleHeader.Render(fmt.Sprintf("%s (%d)", label, len(items))))
		b.WriteByte('\n')
		for _, it := range items {
			b.WriteString(fmt.Sprintf("  %s  %s  %s\n",
				it.Entry.Date.Format(time.DateOnly),
				truncate(it.Entry.Name, 40),
				FormatAmount(it.Entry.SignedCents(), currency)))
		}
	}
	section("already recorded", report.Recorded)
	section("transferred", report.Committed)
	section("skipped", report.Skipped)
	section("abandoned", report.Abandoned)
	if len(report.Failed) > 0 {
		b.WriteString(styleManual.Render(fmt.Sprintf("failed (%d)", len(report.Failed))))
		b.WriteByte('\n')
		for _, f := range report.Failed {
			b.WriteString(fmt.Sprintf("  %s  %s: %v\n",
				f.Item.Entry.Date.Format(time.DateOnly),
				truncate(f.Item.Entry.Name, 40),
				f.Err))
		}
	}
	return b.String()
}

// RenderMalformed lists statement rows excluded from matching.
func RenderMalformed(malformed []*reconcile.MalformedEntryError) string {
	if len(malformed) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(styleMuted.Render(fmt.Sprintf("excluded %d malformed entries:", len(malformed))))
	b.WriteByte('\n')
	for _, m := range malformed {
		b.WriteString(styleMuted.Render("  " + m.Error()))
		b.WriteByte('\n')
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
