// Package cli wires the subcommands: shared setup (config, cache, ledger
// session) lives here, each command stays a thin flag-to-service shim.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/subcommands"

	"github.com/mvolkov/moneymover/internal/config"
	"github.com/mvolkov/moneymover/internal/database"
	"github.com/mvolkov/moneymover/internal/database/repository"
	"github.com/mvolkov/moneymover/internal/ledger"
	"github.com/mvolkov/moneymover/internal/reconcile"
	"github.com/mvolkov/moneymover/internal/ui"
)

// Register adds every command to the commander.
func Register(c *subcommands.Commander) {
	c.Register(&walletsCmd{}, "ledger")
	c.Register(&categoriesCmd{}, "ledger")
	c.Register(&addCmd{}, "ledger")

	c.Register(&presetsCmd{}, "reconcile")
	c.Register(&reportCmd{}, "reconcile")
	c.Register(&transferCmd{}, "reconcile")
}

// app is the shared command context: configuration, the sqlite cache and an
// authenticated ledger client.
type app struct {
	cfg    config.Config
	db     *sql.DB
	client *ledger.Client

	tokens     *repository.TokenRepo
	categories *repository.CategoryRepo
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Cache.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	db, err := database.Open(cfg.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	if err := database.RunMigrationsWithDB(db, cfg.Cache.MigrationsPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cache: %w", err)
	}

	a := &app{
		cfg:        cfg,
		db:         db,
		client:     ledger.NewClient(ledger.WithBaseURL(cfg.Ledger.BaseURL), ledger.WithTokenURL(cfg.Ledger.TokenURL)),
		tokens:     repository.NewTokenRepo(db),
		categories: repository.NewCategoryRepo(db),
	}
	if err := a.authenticate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) Close() error { return a.db.Close() }

// authenticate reuses the cached token while it is fresh, otherwise logs in
// and caches the new one.
func (a *app) authenticate(ctx context.Context) error {
	email := a.cfg.Ledger.Email
	if email == "" {
		return fmt.Errorf("no ledger email configured (set MONEYMOVER_LEDGER_EMAIL)")
	}

	if cached, ok, err := a.tokens.Get(ctx, email); err != nil {
		return err
	} else if ok && cached.Fresh(database.Now(), a.cfg.Ledger.TokenTTL) {
		a.client.SetToken(cached.Token)
		return nil
	}

	if a.cfg.Ledger.Password == "" {
		return fmt.Errorf("no ledger password configured (set MONEYMOVER_LEDGER_PASSWORD)")
	}
	token, err := a.client.Login(ctx, email, a.cfg.Ledger.Password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return a.tokens.Put(ctx, repository.SessionToken{Account: email, Token: token, FetchedAt: database.Now()})
}

// wallet resolves the working wallet: the configured one when set, the only
// wallet when there is exactly one, an interactive pick otherwise.
func (a *app) wallet(ctx context.Context) (ledger.Wallet, error) {
	wallets, err := a.client.Wallets(ctx)
	if err != nil {
		return ledger.Wallet{}, err
	}
	if len(wallets) == 0 {
		return ledger.Wallet{}, fmt.Errorf("account has no wallets")
	}

	if id := a.cfg.Ledger.WalletID; id != "" {
		for _, w := range wallets {
			if w.ID == id {
				return w, nil
			}
		}
		return ledger.Wallet{}, fmt.Errorf("configured wallet %q not found", id)
	}
	if len(wallets) == 1 {
		return wallets[0], nil
	}

	opts := make([]ui.Option, 0, len(wallets))
	for _, w := range wallets {
		opts = append(opts, ui.Option{
			ID:    w.ID,
			Label: w.Name,
			Desc:  ui.FormatAmount(w.BalanceCents, w.Currency),
		})
	}
	id, ok, err := ui.PickOne("wallet", opts)
	if err != nil {
		return ledger.Wallet{}, err
	}
	if !ok {
		return ledger.Wallet{}, fmt.Errorf("no wallet selected")
	}
	for _, w := range wallets {
		if w.ID == id {
			return w, nil
		}
	}
	return ledger.Wallet{}, fmt.Errorf("wallet %q not found", id)
}

// walletCategories returns the category taxonomy, served from the cache
// unless it is empty or reload is set.
func (a *app) walletCategories(ctx context.Context, walletID string, reload bool) ([]ledger.Category, error) {
	if !reload {
		cached, err := a.categories.List(ctx, walletID)
		if err != nil {
			return nil, err
		}
		if len(cached) > 0 {
			out := make([]ledger.Category, 0, len(cached))
			for _, c := range cached {
				cat := ledger.Category{ID: c.ID, WalletID: c.WalletID, Name: c.Name, Type: c.Type}
				if c.ParentID != nil {
					cat.ParentID = *c.ParentID
				}
				out = append(out, cat)
			}
			return out, nil
		}
	}

	cats, err := a.client.Categories(ctx, walletID)
	if err != nil {
		return nil, err
	}
	now := database.Now()
	rows := make([]repository.CachedCategory, 0, len(cats))
	for _, c := range cats {
		row := repository.CachedCategory{WalletID: walletID, ID: c.ID, Name: c.Name, Type: c.Type, FetchedAt: now}
		if c.ParentID != "" {
			pid := c.ParentID
			row.ParentID = &pid
		}
		rows = append(rows, row)
	}
	if err := a.categories.Replace(ctx, walletID, rows); err != nil {
		return nil, err
	}
	return cats, nil
}

// ledgerWriter adapts the ledger client to the session's writer interface.
type ledgerWriter struct {
	client *ledger.Client
}

func (w ledgerWriter) CreateEntry(ctx context.Context, req reconcile.CreateRequest) (string, error) {
	return w.client.CreateEntry(ctx, ledger.CreateRequest{
		WalletID:    req.WalletID,
		CategoryID:  req.CategoryID,
		AmountCents: req.AmountCents,
		Note:        req.Note,
		Date:        req.Date,
	})
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, err)
	return subcommands.ExitFailure
}

var nowFunc = time.Now
