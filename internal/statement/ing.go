package statement

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ING CSV export columns, in order. The header row is localized (NL or EN)
// so parsing goes by position, not by header name.
const (
	ingColDate = iota
	ingColName
	ingColAccount
	ingColCounterparty
	ingColCode
	ingColDirection
	ingColAmount
	ingColKind
	ingColNarrative
	ingColumns = 9
)

const ingDateFormat = "20060102"

// ParseING reads an ING bank CSV export. Rows with an unparseable date or
// amount are collected in Result.Malformed and skipped; a broken file (bad
// CSV framing) fails outright.
func ParseING(r io.Reader) (Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	res := Result{}
	line := 0
	for {
		line++
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read csv row: %w", err)
		}
		if line == 1 && looksLikeHeader(rec) {
			continue
		}
		if len(rec) < ingColumns {
			res.Malformed = append(res.Malformed, RowError{Line: line, Err: fmt.Errorf("expected %d columns, got %d", ingColumns, len(rec))})
			continue
		}

		date, err := time.Parse(ingDateFormat, strings.TrimSpace(rec[ingColDate]))
		if err != nil {
			res.Malformed = append(res.Malformed, RowError{Line: line, Err: fmt.Errorf("parse date %q: %w", rec[ingColDate], err)})
			continue
		}
		cents, err := parseAmountCents(rec[ingColAmount])
		if err != nil {
			res.Malformed = append(res.Malformed, RowError{Line: line, Err: fmt.Errorf("parse amount %q: %w", rec[ingColAmount], err)})
			continue
		}
		dir, err := parseDirection(rec[ingColDirection])
		if err != nil {
			res.Malformed = append(res.Malformed, RowError{Line: line, Err: err})
			continue
		}

		e := Entry{
			Date:         date.UTC().Truncate(24 * time.Hour),
			Name:         strings.TrimSpace(rec[ingColName]),
			AmountCents:  cents,
			Direction:    dir,
			Account:      strings.TrimSpace(rec[ingColAccount]),
			Counterparty: strings.TrimSpace(rec[ingColCounterparty]),
			Code:         strings.TrimSpace(rec[ingColCode]),
			Narrative:    strings.TrimSpace(rec[ingColNarrative]),
		}
		e.ID = entryID(e.Account, e.Name, e.Date, e.AmountCents, e.Direction)
		res.Entries = append(res.Entries, e)
	}
	return res, nil
}

// parseAmountCents converts an ING amount string ("1234,56" or "1234.56")
// to integer cents without going through a float.
func parseAmountCents(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("amount magnitude must not be negative")
	}
	shifted := d.Shift(2)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("more than two decimal places")
	}
	return shifted.IntPart(), nil
}

func parseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debit", "af":
		return Debit, nil
	case "credit", "bij":
		return Credit, nil
	}
	return "", fmt.Errorf("unknown direction %q", s)
}

// looksLikeHeader detects the localized ING header row by its first cell.
func looksLikeHeader(rec []string) bool {
	if len(rec) == 0 {
		return false
	}
	first := strings.ToLower(strings.Trim(strings.TrimSpace(rec[0]), `"`))
	return first == "date" || first == "datum"
}
