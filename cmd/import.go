package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/cambio"
	"github.com/google/subcommands"
)

// importCmd holds the flags for the 'import' subcommand.
type importCmd struct {
	wallet  string
	file    string
	mapping string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import transactions from a foreign JSON export" }
func (*importCmd) Usage() string {
	return `cx import -f <export.json> -m <mapping.json> [-w <wallet>]

  Imports transactions from another app's JSON export. The mapping file
  locates each transaction field inside one row with jsonpath expressions:

    {
      "rows": "$.operations",
      "kind": "$.type", "currency": "$.cur", "amount": "$.qty",
      "rate": "$.price", "time": "$.date", "timeLayout": "2006-01-02"
    }

  The import fails fast on the first invalid row; rows imported before the
  failure stay recorded.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.wallet, "w", "", "Wallet receiving the transactions (defaults to the active one)")
	f.StringVar(&c.file, "f", "", "JSON export to import, \"-\" for stdin (required)")
	f.StringVar(&c.mapping, "m", "", "Mapping file describing the export's shape (required)")
}

func (c *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.file == "" || c.mapping == "" {
		fmt.Fprintln(os.Stderr, "Error: -f and -m are required")
		return subcommands.ExitUsageError
	}

	raw, err := os.ReadFile(c.mapping)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading mapping %q: %v\n", c.mapping, err)
		return subcommands.ExitFailure
	}
	var mapping cambio.ImportMapping
	if err := json.Unmarshal(raw, &mapping); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing mapping %q: %v\n", c.mapping, err)
		return subcommands.ExitFailure
	}

	in := os.Stdin
	if c.file != "-" {
		in, err = os.Open(c.file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening %q: %v\n", c.file, err)
			return subcommands.ExitFailure
		}
		defer in.Close()
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

	count, err := cambio.ImportTransactions(engine, id, in, mapping)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error after %d rows: %v\n", count, err)
		if count > 0 {
			// Imported rows stay recorded, persist them.
			saveBook(store, engine)
		}
		return subcommands.ExitFailure
	}
	fmt.Printf("Imported %d transactions into %q\n", count, walletName(engine, id))
	return saveBook(store, engine)
}
