package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/cambio"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// parseDec parses a flag value into a decimal, rejecting empty input.
func parseDec(name, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Decimal{}, fmt.Errorf("-%s is required", name)
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("-%s: cannot parse %q as a number", name, value)
	}
	return d, nil
}

type buyCmd struct {
	wallet   string
	currency string
	amount   string
	rate     string
	at       string
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "record the purchase of foreign cash" }
func (*buyCmd) Usage() string {
	return `cx buy -c <currency> -a <amount> -r <rate> [-w <wallet>] [-t <time>]

  Records a buy: amount units of the currency acquired at rate home-currency
  units each, opening a new inventory lot.
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.wallet, "w", "", "Wallet (defaults to the active one)")
	f.StringVar(&c.currency, "c", "", "Currency bought, e.g. USD (required)")
	f.StringVar(&c.amount, "a", "", "Amount of currency bought (required)")
	f.StringVar(&c.rate, "r", "", "Rate in home currency per unit (required)")
	f.StringVar(&c.at, "t", "", "Transaction time (RFC3339 or YYYY-MM-DD, defaults to now)")
}

func (c *buyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return recordLeg(c.currency, c.amount, c.rate, c.at, c.wallet, (*cambio.Engine).RecordBuy)
}

type sellCmd struct {
	wallet   string
	currency string
	amount   string
	rate     string
	at       string
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "record the sale of foreign cash" }
func (*sellCmd) Usage() string {
	return `cx sell -c <currency> -a <amount> -r <rate> [-w <wallet>] [-t <time>]

  Records a sell: amount units of the currency disposed of at rate
  home-currency units each, consuming inventory lots oldest-first and
  realizing the gain or loss against their cost.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.wallet, "w", "", "Wallet (defaults to the active one)")
	f.StringVar(&c.currency, "c", "", "Currency sold, e.g. USD (required)")
	f.StringVar(&c.amount, "a", "", "Amount of currency sold (required)")
	f.StringVar(&c.rate, "r", "", "Rate in home currency per unit (required)")
	f.StringVar(&c.at, "t", "", "Transaction time (RFC3339 or YYYY-MM-DD, defaults to now)")
}

func (c *sellCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return recordLeg(c.currency, c.amount, c.rate, c.at, c.wallet, (*cambio.Engine).RecordSell)
}

type exchangeCmd struct {
	wallet   string
	from     string
	amount   string
	fromRate string
	to       string
	toRate   string
	at       string
}

func (*exchangeCmd) Name() string     { return "exchange" }
func (*exchangeCmd) Synopsis() string { return "convert one foreign currency into another" }
func (*exchangeCmd) Usage() string {
	return `cx exchange -from <currency> -a <amount> -fr <rate> -to <currency> -tr <rate> [-w <wallet>] [-t <time>]

  Converts within one wallet: a sell of the outgoing currency followed by a
  buy of the incoming one at the implied cross rate. If the sell leg cannot
  be satisfied nothing is recorded.
`
}

func (c *exchangeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.wallet, "w", "", "Wallet (defaults to the active one)")
	f.StringVar(&c.from, "from", "", "Outgoing currency (required)")
	f.StringVar(&c.amount, "a", "", "Amount of outgoing currency (required)")
	f.StringVar(&c.fromRate, "fr", "", "Outgoing rate in home currency per unit (required)")
	f.StringVar(&c.to, "to", "", "Incoming currency (required)")
	f.StringVar(&c.toRate, "tr", "", "Incoming rate in home currency per unit (required)")
	f.StringVar(&c.at, "t", "", "Transaction time (RFC3339 or YYYY-MM-DD, defaults to now)")
}

func (c *exchangeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	fromRate, err := parseDec("fr", c.fromRate)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	toRate, err := parseDec("tr", c.toRate)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	at, err := parseTime(c.at)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	home := engine.HomeCurrency()
	tx, err := engine.RecordExchange(id, c.from, cambio.A(amount), cambio.M(fromRate, home), c.to, cambio.M(toRate, home), at)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Exchanged %s %s for %s %s in %q (realized %s)\n",
		tx.Amount, tx.Currency, tx.ToAmount, tx.ToCurrency, walletName(engine, id), tx.RealizedPnL().SignedString())
	return saveBook(store, engine)
}

type deleteTxCmd struct {
	id string
}

func (*deleteTxCmd) Name() string     { return "delete-tx" }
func (*deleteTxCmd) Synopsis() string { return "delete a transaction and replay the ledger" }
func (*deleteTxCmd) Usage() string {
	return `cx delete-tx -id <transaction id>

  Removes a transaction and rebuilds inventory from the remaining history.
  Deletion is rejected if a later transaction depended on the inventory this
  one created.
`
}

func (c *deleteTxCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Transaction id, as shown by history (required)")
}

func (c *deleteTxCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		fmt.Fprintln(os.Stderr, "Error: -id is required.")
		return subcommands.ExitUsageError
	}
	engine, store, err := openBook()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := engine.DeleteTransaction(c.id); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	return saveBook(store, engine)
}

type historyCmd struct {
	wallet string
	head   int
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "list transactions, newest first" }
func (*historyCmd) Usage() string {
	return `cx history [-w <wallet|all>] [-head <n>]

  Lists transactions newest first. With -w all, the consolidated listing
  tags each transaction with its owning wallet.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.wallet, "w", "", "Wallet name, or \"all\" (defaults to the active selection)")
	f.IntVar(&c.head, "head", 0, "Show only the first N transactions.")
}

func (c *historyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	txs := engine.Transactions(ref)
	if c.head > 0 && len(txs) > c.head {
		txs = txs[:c.head]
	}
	for _, tx := range txs {
		line := fmt.Sprintf("%s  %-8s %10s %-3s @ %s", tx.Time.Format("2006-01-02 15:04"), tx.Kind, tx.Amount, tx.Currency, tx.Rate)
		if tx.Kind == cambio.Exchange {
			line += fmt.Sprintf(" -> %s %s", tx.ToAmount, tx.ToCurrency)
		}
		if tx.Disposes() {
			line += fmt.Sprintf("  pnl %s", tx.RealizedPnL().SignedString())
		}
		if ref.IsConsolidated() {
			line += fmt.Sprintf("  [%s]", walletName(engine, tx.Wallet))
		}
		fmt.Printf("%s  id=%s\n", line, tx.ID)
	}
	return subcommands.ExitSuccess
}

// recordLeg factors the shared buy/sell flow.
func recordLeg(currency, amount, rate, at, wallet string, record func(*cambio.Engine, cambio.WalletID, string, cambio.Amount, cambio.Money, time.Time) (cambio.Transaction, error)) subcommands.ExitStatus {
	if currency == "" {
		fmt.Fprintln(os.Stderr, "Error: -c is required.")
		return subcommands.ExitUsageError
	}
	engine, store, err := openBook()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	id, err := resolveWallet(engine, wallet)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	a, err := parseDec("a", amount)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	r, err := parseDec("r", rate)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	t, err := parseTime(at)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	tx, err := record(engine, id, currency, cambio.A(a), cambio.M(r, engine.HomeCurrency()), t)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	msg := fmt.Sprintf("Recorded %s %s %s @ %s in %q", tx.Kind, tx.Amount, tx.Currency, tx.Rate, walletName(engine, id))
	if tx.Disposes() {
		msg += fmt.Sprintf(" (realized %s)", tx.RealizedPnL().SignedString())
	}
	fmt.Println(msg)
	return saveBook(store, engine)
}
