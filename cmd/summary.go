package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	wallet string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display positions and capital for a wallet" }
func (*summaryCmd) Usage() string {
	return `cx summary [-w <wallet|all>]

  Displays the held balances per currency with their average acquisition
  cost, followed by the capital figures of the covered wallets.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.wallet, "w", "", "Wallet name, or \"all\" (defaults to the active selection)")
}

func (c *summaryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	engine, _, err := openBook()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	ref, err := resolveRef(engine, c.wallet)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	if ref.IsConsolidated() {
		fmt.Println("Summary for all wallets")
	} else if id, ok := ref.WalletID(); ok {
		fmt.Printf("Summary for %q\n", walletName(engine, id))
	}

	held := false
	for currency := range engine.Currencies(ref) {
		balance := engine.Balance(ref, currency)
		if balance.IsZero() {
			continue
		}
		held = true
		if avg, ok := engine.AverageCost(ref, currency); ok {
			fmt.Printf("  %s %s  avg cost %s\n", balance, currency, avg)
		} else {
			fmt.Printf("  %s %s\n", balance, currency)
		}
	}
	if !held {
		fmt.Println("  no currency held")
	}

	s := engine.CapitalSummary(ref)
	fmt.Println()
	fmt.Printf("  Initial capital: %s\n", s.Initial)
	fmt.Printf("  Total in:        %s\n", s.TotalIn)
	fmt.Printf("  Total out:       %s\n", s.TotalOut)
	fmt.Printf("  Realized P&L:    %s\n", s.Realized.SignedString())
	fmt.Printf("  Current capital: %s\n", s.Current)
	fmt.Printf("  Net change:      %s (%.2f%%)\n", s.NetChange.SignedString(), s.PercentChange)

	return subcommands.ExitSuccess
}
