package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type createWalletCmd struct {
	name  string
	color string
}

func (*createWalletCmd) Name() string     { return "create-wallet" }
func (*createWalletCmd) Synopsis() string { return "create a new cash wallet" }
func (*createWalletCmd) Usage() string {
	return `cx create-wallet -name <name> [-color <tag>]

  Creates a new, empty cash wallet. Names are unique among live wallets,
  case-insensitively.
`
}

func (c *createWalletCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Wallet name (required)")
	f.StringVar(&c.color, "color", "", "Color tag for the UI")
}

func (c *createWalletCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.name == "" {
		fmt.Fprintln(os.Stderr, "Error: -name is required.")
		return subcommands.ExitUsageError
	}
	engine, store, err := openBook()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	w, err := engine.CreateWallet(c.name, c.color)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Created wallet %q (%s)\n", w.Name, w.ID)
	return saveBook(store, engine)
}

type renameWalletCmd struct {
	wallet string
	name   string
}

func (*renameWalletCmd) Name() string     { return "rename-wallet" }
func (*renameWalletCmd) Synopsis() string { return "rename a wallet" }
func (*renameWalletCmd) Usage() string {
	return `cx rename-wallet -w <wallet> -name <new name>

  Renames a wallet. The new name must not collide with a live wallet.
`
}

func (c *renameWalletCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.wallet, "w", "", "Wallet to rename (defaults to the active one)")
	f.StringVar(&c.name, "name", "", "New wallet name (required)")
}

func (c *renameWalletCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.name == "" {
		fmt.Fprintln(os.Stderr, "Error: -name is required.")
		return subcommands.ExitUsageError
	}
	engine, store, err := openBook()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	id, err := resolveWallet(engine, c.wallet)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	if err := engine.RenameWallet(id, c.name); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	return saveBook(store, engine)
}

type deleteWalletCmd struct {
	wallet string
}

func (*deleteWalletCmd) Name() string     { return "delete-wallet" }
func (*deleteWalletCmd) Synopsis() string { return "delete an empty wallet" }
func (*deleteWalletCmd) Usage() string {
	return `cx delete-wallet -w <wallet>

  Deletes a wallet. The default wallet cannot be deleted, and a wallet still
  owning transactions must be cleared first.
`
}

func (c *deleteWalletCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.wallet, "w", "", "Wallet to delete (required)")
}

func (c *deleteWalletCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.wallet == "" {
		fmt.Fprintln(os.Stderr, "Error: -w is required.")
		return subcommands.ExitUsageError
	}
	engine, store, err := openBook()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	id, err := resolveWallet(engine, c.wallet)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	if err := engine.DeleteWallet(id); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	return saveBook(store, engine)
}

type switchCmd struct {
	wallet string
}

func (*switchCmd) Name() string     { return "switch" }
func (*switchCmd) Synopsis() string { return "select the active wallet" }
func (*switchCmd) Usage() string {
	return `cx switch -w <wallet|all>

  Selects the wallet unqualified commands apply to. "all" selects the
  consolidated view over every wallet.
`
}

func (c *switchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.wallet, "w", "", "Wallet name, or \"all\" (required)")
}

func (c *switchCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.wallet == "" {
		fmt.Fprintln(os.Stderr, "Error: -w is required.")
		return subcommands.ExitUsageError
	}
	engine, store, err := openBook()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	ref, err := resolveRef(engine, c.wallet)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	if err := engine.SwitchActive(ref); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	return saveBook(store, engine)
}

type walletsCmd struct{}

func (*walletsCmd) Name() string             { return "wallets" }
func (*walletsCmd) Synopsis() string         { return "list all wallets" }
func (*walletsCmd) Usage() string            { return "cx wallets\n\n  Lists all wallets.\n" }
func (*walletsCmd) SetFlags(f *flag.FlagSet) {}

func (c *walletsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	engine, _, err := openBook()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	active := engine.Registry().Active()
	for w := range engine.Registry().Wallets() {
		marker := " "
		if id, ok := active.WalletID(); ok && id == w.ID {
			marker = "*"
		}
		tag := ""
		if w.IsDefault {
			tag = " (default)"
		}
		fmt.Printf("%s %s%s\n", marker, w.Name, tag)
	}
	if active.IsConsolidated() {
		fmt.Println("* consolidated view")
	}
	return subcommands.ExitSuccess
}
