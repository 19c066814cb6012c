package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/mvolkov/moneymover/internal/reconcile"
)

type presetsCmd struct{}

func (*presetsCmd) Name() string     { return "presets" }
func (*presetsCmd) Synopsis() string { return "validate the preset file against the wallet" }
func (*presetsCmd) Usage() string {
	return `moneymover presets

  Loads the preset file, lists every rule and checks each label against the
  wallet's categories. A rule naming an unknown category fails the check,
  with the closest existing name suggested.
`
}

func (*presetsCmd) SetFlags(_ *flag.FlagSet) {}

func (c *presetsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	presets, err := reconcile.LoadPresets(a.cfg.Statements.PresetsPath)
	if err != nil {
		return fail(err)
	}
	for _, p := range presets {
		fmt.Printf("%-14s -> %s (%s)\n", p.Source, p.Label.CategoryName, p.Label.Type)
	}

	wallet, err := a.wallet(ctx)
	if err != nil {
		return fail(err)
	}
	cats, err := a.walletCategories(ctx, wallet.ID, false)
	if err != nil {
		return fail(err)
	}
	if err := reconcile.ValidatePresets(presets, reconcile.NewTaxonomy(cats)); err != nil {
		return fail(err)
	}
	fmt.Printf("%d presets ok against wallet %s\n", len(presets), wallet.Name)
	return subcommands.ExitSuccess
}
