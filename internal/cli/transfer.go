package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/mvolkov/moneymover/internal/ui"
)

type transferCmd struct {
	file string
}

func (*transferCmd) Name() string     { return "transfer" }
func (*transferCmd) Synopsis() string { return "reconcile a statement into the ledger" }
func (*transferCmd) Usage() string {
	return `moneymover transfer [-file <statement>]

  Full reconciliation run: classifies the statement, asks one confirmation
  for everything a preset recognized, walks the remaining entries one by
  one, and writes the decided entries to the ledger. Entries already in the
  ledger are never written again.
`
}

func (c *transferCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "file", "", "statement file to use instead of the newest export")
}

func (c *transferCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	prompter := &ui.Prompter{Currency: a.cfg.UI.CurrencyCode}
	report, runErr := session.Run(ctx, ledgerWriter{client: a.client}, prompter)

	fmt.Print(ui.RenderSummary(report, a.cfg.UI.CurrencyCode))
	if runErr != nil {
		return fail(runErr)
	}
	if len(report.Failed) > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
