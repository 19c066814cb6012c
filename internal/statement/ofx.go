package statement

import (
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
)

// ParseOFX reads an OFX/QFX export and converts bank and credit card
// transaction lists into statement entries. Transactions whose amount
// cannot be represented in whole cents are reported as malformed.
func ParseOFX(r io.Reader) (Result, error) {
	resp, err := ofxgo.ParseResponse(r)
	if err != nil {
		return Result{}, fmt.Errorf("parse ofx: %w", err)
	}

	res := Result{}
	parsed := false
	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		parsed = true
		account := stmt.BankAcctFrom.AcctID.String()
		convertOFXList(&res, account, stmt.BankTranList.Transactions)
	}
	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		parsed = true
		account := stmt.CCAcctFrom.AcctID.String()
		convertOFXList(&res, account, stmt.BankTranList.Transactions)
	}
	if !parsed {
		return res, fmt.Errorf("parse ofx: no bank or credit card statement in file")
	}
	return res, nil
}

func convertOFXList(res *Result, account string, txns []ofxgo.Transaction) {
	for i, txn := range txns {
		e, err := convertOFXTransaction(account, txn)
		if err != nil {
			res.Malformed = append(res.Malformed, RowError{Line: i + 1, Err: err})
			continue
		}
		res.Entries = append(res.Entries, e)
	}
}

func convertOFXTransaction(account string, txn ofxgo.Transaction) (Entry, error) {
	date := txn.DtPosted.Time
	if date.IsZero() {
		date = txn.DtUser.Time
	}
	if date.IsZero() {
		return Entry{}, fmt.Errorf("transaction %s has no date", txn.FiTID.String())
	}

	cents, err := ratToCents(&txn.TrnAmt.Rat)
	if err != nil {
		return Entry{}, fmt.Errorf("transaction %s amount: %w", txn.FiTID.String(), err)
	}
	dir := Credit
	if cents < 0 {
		dir = Debit
		cents = -cents
	}

	name := strings.TrimSpace(txn.Name.String())
	if name == "" {
		name = strings.TrimSpace(txn.Memo.String())
	}

	e := Entry{
		Date:        date.UTC().Truncate(24 * time.Hour),
		Name:        name,
		AmountCents: cents,
		Direction:   dir,
		Account:     account,
		Code:        txn.FiTID.String(),
		Narrative:   strings.TrimSpace(txn.Memo.String()),
	}
	e.ID = entryID(e.Account, e.Name, e.Date, e.AmountCents, e.Direction)
	return e, nil
}

func ratToCents(r *big.Rat) (int64, error) {
	scaled := new(big.Rat).Mul(r, big.NewRat(100, 1))
	if !scaled.IsInt() {
		return 0, fmt.Errorf("not a whole number of cents")
	}
	return scaled.Num().Int64(), nil
}
