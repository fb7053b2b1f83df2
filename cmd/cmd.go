package cmd

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/etnz/cambio"
	"github.com/google/subcommands"
)

// Register the subcommands.
func Register(c *subcommands.Commander) {
	c.Register(&createWalletCmd{}, "wallets")
	c.Register(&renameWalletCmd{}, "wallets")
	c.Register(&deleteWalletCmd{}, "wallets")
	c.Register(&switchCmd{}, "wallets")
	c.Register(&walletsCmd{}, "wallets")

	c.Register(&buyCmd{}, "transactions")
	c.Register(&sellCmd{}, "transactions")
	c.Register(&exchangeCmd{}, "transactions")
	c.Register(&deleteTxCmd{}, "transactions")
	c.Register(&historyCmd{}, "transactions")
	c.Register(&importCmd{}, "transactions")

	c.Register(&summaryCmd{}, "reports")

	c.Register(&capitalSetCmd{}, "capital")
	c.Register(&capitalAddCmd{}, "capital")
	c.Register(&capitalResetCmd{}, "capital")
}

var configFile = flag.String("config", "", "Path to the config file (defaults to <data-dir>/config.yaml)")

// openBook loads the configuration and the book snapshot. A corrupt snapshot
// is reported as a warning and the book starts empty, per the store contract.
func openBook() (*cambio.Engine, cambio.Store, error) {
	cfg, err := LoadConfig(*configFile)
	if err != nil {
		return nil, nil, err
	}
	store := cambio.NewFileStore(cfg.DataDir)
	engine, err := cambio.LoadEngine(store, cfg.HomeCurrency, cfg.DefaultWallet)
	if errors.Is(err, cambio.ErrCorruptState) {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		err = nil
	}
	return engine, store, err
}

// saveBook persists the book after a successful mutation.
func saveBook(store cambio.Store, e *cambio.Engine) subcommands.ExitStatus {
	if err := cambio.SaveEngine(store, e); err != nil {
		fmt.Fprintln(os.Stderr, "Error saving book:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// resolveWallet maps a -w flag value to a wallet. Empty means the active
// selection; the name is matched case-insensitively.
func resolveWallet(e *cambio.Engine, name string) (cambio.WalletID, error) {
	if name == "" {
		if id, ok := e.Registry().Active().WalletID(); ok {
			return id, nil
		}
		return "", fmt.Errorf("the consolidated view is selected; use -w to name a wallet")
	}
	if w, ok := e.Registry().ByName(name); ok {
		return w.ID, nil
	}
	return "", fmt.Errorf("unknown wallet %q", name)
}

// resolveRef is like resolveWallet but accepts "all" for the consolidated view.
func resolveRef(e *cambio.Engine, name string) (cambio.WalletRef, error) {
	switch strings.ToLower(name) {
	case "":
		return e.Registry().Active(), nil
	case "all", "consolidated":
		return cambio.Consolidated, nil
	}
	if w, ok := e.Registry().ByName(name); ok {
		return cambio.Ref(w.ID), nil
	}
	return cambio.WalletRef{}, fmt.Errorf("unknown wallet %q", name)
}

// parseTime parses a -t flag value: RFC 3339, a plain date, or empty for now.
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("cannot parse time %q, want RFC3339 or YYYY-MM-DD", s)
}

// walletName returns the display name for a wallet id.
func walletName(e *cambio.Engine, id cambio.WalletID) string {
	if w, ok := e.Registry().Get(id); ok {
		return w.Name
	}
	return string(id)
}
