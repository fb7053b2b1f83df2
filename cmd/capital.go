package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/cambio"
	"github.com/google/subcommands"
)

type capitalSetCmd struct {
	wallet string
	amount string
}

func (*capitalSetCmd) Name() string     { return "set-capital" }
func (*capitalSetCmd) Synopsis() string { return "declare a wallet's initial capital" }
func (*capitalSetCmd) Usage() string {
	return `cx set-capital -a <amount> [-w <wallet>]

  Declares the starting capital of a wallet in home currency. Net change and
  percentage return are computed against this figure.
`
}

func (c *capitalSetCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.wallet, "w", "", "Wallet (defaults to the active one)")
	f.StringVar(&c.amount, "a", "", "Initial capital in home currency (required)")
}

func (c *capitalSetCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	amount, err := parseDec("a", c.amount)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	if err := engine.SetInitialCapital(id, cambio.M(amount, engine.HomeCurrency())); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	return saveBook(store, engine)
}

type capitalAddCmd struct {
	wallet string
	kind   string
	amount string
	at     string
}

func (*capitalAddCmd) Name() string     { return "add-capital" }
func (*capitalAddCmd) Synopsis() string { return "record a manual capital movement" }
func (*capitalAddCmd) Usage() string {
	return `cx add-capital -kind <deposit|withdrawal|adjustment> -a <amount> [-w <wallet>] [-t <time>]

  Records a manual, non-trading capital movement in home currency. Deposits
  and withdrawals take a positive amount; adjustments are signed.
`
}

func (c *capitalAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.wallet, "w", "", "Wallet (defaults to the active one)")
	f.StringVar(&c.kind, "kind", "", "Movement kind: deposit, withdrawal or adjustment (required)")
	f.StringVar(&c.amount, "a", "", "Amount in home currency (required)")
	f.StringVar(&c.at, "t", "", "Movement time (RFC3339 or YYYY-MM-DD, defaults to now)")
}

func (c *capitalAddCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	amount, err := parseDec("a", c.amount)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	at, err := parseTime(c.at)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	m, err := engine.AddCapitalMovement(id, cambio.MovementKind(c.kind), cambio.M(amount, engine.HomeCurrency()), at)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Recorded %s of %s in %q\n", m.Kind, m.Amount, walletName(engine, id))
	return saveBook(store, engine)
}

type capitalResetCmd struct {
	wallet string
}

func (*capitalResetCmd) Name() string     { return "reset-capital" }
func (*capitalResetCmd) Synopsis() string { return "clear capital movements and realized results" }
func (*capitalResetCmd) Usage() string {
	return `cx reset-capital [-w <wallet|all>]

  Clears the covered wallets' capital movements and realized profit/loss
  accumulation. Transactions are untouched.
`
}

func (c *capitalResetCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.wallet, "w", "", "Wallet name, or \"all\" (defaults to the active selection)")
}

func (c *capitalResetCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	if err := engine.ResetCapital(ref); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	return saveBook(store, engine)
}
