package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/mvolkov/moneymover/internal/ledger"
	"github.com/mvolkov/moneymover/internal/reconcile"
)

type categoriesCmd struct {
	reload bool
}

func (*categoriesCmd) Name() string     { return "categories" }
func (*categoriesCmd) Synopsis() string { return "list the wallet's categories" }
func (*categoriesCmd) Usage() string {
	return `moneymover categories [-reload]

  Lists the wallet's categories grouped by type, sub-categories indented
  under their parent. Categories are cached locally; -reload refetches them.
`
}

func (c *categoriesCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.reload, "reload", false, "refetch categories instead of using the cache")
}

func (c *categoriesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	wallet, err := a.wallet(ctx)
	if err != nil {
		return fail(err)
	}
	cats, err := a.walletCategories(ctx, wallet.ID, c.reload)
	if err != nil {
		return fail(err)
	}

	taxonomy := reconcile.NewTaxonomy(cats)
	for _, typ := range []string{ledger.TypeIncome, ledger.TypeExpense, ledger.TypeDebtLoan} {
		group := taxonomy.ByType(typ)
		if len(group) == 0 {
			continue
		}
		fmt.Printf("%s:\n", typ)
		for _, cat := range group {
			indent := "  "
			if cat.ParentID != "" {
				indent = "    "
			}
			fmt.Printf("%s%s\n", indent, cat.Name)
		}
	}
	return subcommands.ExitSuccess
}
