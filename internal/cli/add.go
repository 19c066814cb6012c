package cli

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/mvolkov/moneymover/internal/ledger"
	"github.com/mvolkov/moneymover/internal/reconcile"
	"github.com/mvolkov/moneymover/internal/ui"
)

type addCmd struct {
	amount   string
	typ      string
	category string
	note     string
	date     string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add a single entry to the ledger" }
func (*addCmd) Usage() string {
	return `moneymover add -amount <value> -type <income|expense> [-category <name>] [-note <text>] [-date <yyyy-mm-dd>]

  Writes one entry directly, outside any statement. Without -category a
  picker is shown. The date defaults to today.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "amount", "", "amount in major units, e.g. 12.50 (required)")
	f.StringVar(&c.typ, "type", ledger.TypeExpense, "entry type: income or expense")
	f.StringVar(&c.category, "category", "", "category name; picked interactively when empty")
	f.StringVar(&c.note, "note", "", "free-form note")
	f.StringVar(&c.date, "date", "", "entry date, defaults to today")
}

func (c *addCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cents, err := parseAmount(c.amount)
	if err != nil {
		return fail(err)
	}
	if c.typ != ledger.TypeIncome && c.typ != ledger.TypeExpense {
		return fail(fmt.Errorf("type must be %q or %q", ledger.TypeIncome, ledger.TypeExpense))
	}
	date := time.Now().UTC().Truncate(24 * time.Hour)
	if c.date != "" {
		date, err = time.Parse(time.DateOnly, c.date)
		if err != nil {
			return fail(fmt.Errorf("parse date: %w", err))
		}
	}

	a, err := newApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	wallet, err := a.wallet(ctx)
	if err != nil {
		return fail(err)
	}
	cats, err := a.walletCategories(ctx, wallet.ID, false)
	if err != nil {
		return fail(err)
	}
	taxonomy := reconcile.NewTaxonomy(cats)

	cat, err := c.resolveCategory(taxonomy)
	if err != nil {
		return fail(err)
	}

	id, err := a.client.CreateEntry(ctx, ledger.CreateRequest{
		WalletID:    wallet.ID,
		CategoryID:  cat.ID,
		AmountCents: cents,
		Note:        c.note,
		Date:        date,
	})
	if err != nil {
		return fail(err)
	}
	fmt.Printf("created %s: %s %s (%s)\n", id, ui.FormatAmount(cents, a.cfg.UI.CurrencyCode), cat.Name, c.typ)
	return subcommands.ExitSuccess
}

func (c *addCmd) resolveCategory(taxonomy reconcile.Taxonomy) (ledger.Category, error) {
	if c.category != "" {
		cat, ok := taxonomy.Lookup(c.category, c.typ)
		if !ok {
			return ledger.Category{}, fmt.Errorf("category %q (%s) not found", c.category, c.typ)
		}
		return cat, nil
	}

	group := taxonomy.ByType(c.typ)
	opts := make([]ui.Option, 0, len(group))
	for _, cat := range group {
		opts = append(opts, ui.Option{ID: cat.ID, Label: cat.Name, Desc: c.typ})
	}
	id, ok, err := ui.PickOne("category ("+c.typ+")", opts)
	if err != nil {
		return ledger.Category{}, err
	}
	if !ok {
		return ledger.Category{}, fmt.Errorf("no category selected")
	}
	for _, cat := range group {
		if cat.ID == id {
			return cat, nil
		}
	}
	return ledger.Category{}, fmt.Errorf("category %q not found", id)
}

func parseAmount(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("-amount is required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	shifted := d.Shift(2)
	if !shifted.IsInteger() || !shifted.IsPositive() {
		return 0, fmt.Errorf("amount %q must be positive with at most two decimals", s)
	}
	return shifted.IntPart(), nil
}
