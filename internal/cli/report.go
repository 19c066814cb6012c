package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/mvolkov/moneymover/internal/reconcile"
	"github.com/mvolkov/moneymover/internal/ui"
)

type reportCmd struct {
	file string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "show the statement classified against the ledger" }
func (*reportCmd) Usage() string {
	return `moneymover report [-file <statement>]

  Parses the newest statement export (or the given file), classifies each
  entry against the ledger window and the presets, and prints the colored
  report. Read-only: nothing is written to the ledger.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "file", "", "statement file to use instead of the newest export")
}

func (c *reportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	session, err := a.classify(ctx, c.file)
	if err != nil {
		return fail(err)
	}

	fmt.Print(ui.RenderRows(session.DisplayRows(), a.cfg.UI.CurrencyCode))
	fmt.Print(ui.RenderMalformed(session.Malformed()))
	return subcommands.ExitSuccess
}

// classify runs the read-only half of a reconciliation: parse, fetch the
// ledger window, dedup and rule-match.
func (a *app) classify(ctx context.Context, file string) (*reconcile.Session, error) {
	wallet, err := a.wallet(ctx)
	if err != nil {
		return nil, err
	}
	cats, err := a.walletCategories(ctx, wallet.ID, false)
	if err != nil {
		return nil, err
	}
	presets, err := reconcile.LoadPresets(a.cfg.Statements.PresetsPath)
	if err != nil {
		return nil, err
	}
	res, window, err := a.loadStatement(file)
	if err != nil {
		return nil, err
	}

	session, err := reconcile.NewSession(reconcile.Config{
		WalletID:   wallet.ID,
		Window:     window,
		Presets:    presets,
		Categories: cats,
	}, res.Entries)
	if err != nil {
		return nil, err
	}
	for _, row := range res.Malformed {
		fmt.Printf("skipping line %d: %v\n", row.Line, row.Err)
	}

	entries, err := a.client.Entries(ctx, wallet.ID, window.From, window.To)
	if err != nil {
		return nil, err
	}
	session.Classify(entries)
	return session, nil
}
