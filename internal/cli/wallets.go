package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/mvolkov/moneymover/internal/ui"
)

type walletsCmd struct{}

func (*walletsCmd) Name() string     { return "wallets" }
func (*walletsCmd) Synopsis() string { return "list the wallets on the account" }
func (*walletsCmd) Usage() string {
	return `moneymover wallets

  Lists every wallet with its id, name and current balance. Use the id as
  ledger.wallet_id in the config to pin a wallet.
`
}

func (*walletsCmd) SetFlags(_ *flag.FlagSet) {}

func (c *walletsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	wallets, err := a.client.Wallets(ctx)
	if err != nil {
		return fail(err)
	}
	for _, w := range wallets {
		fmt.Printf("%-26s %-24s %s\n", w.ID, w.Name, ui.FormatAmount(w.BalanceCents, w.Currency))
	}
	return subcommands.ExitSuccess
}
