// Package cambio is the bookkeeping core of a currency-exchange cash desk.
// It lets an operator count physical cash across isolated wallets, record
// buy/sell/exchange operations against a home currency, and answer at any
// time how much of each currency is held, at what cost basis, and what the
// realized profit or loss is.
//
// The core functionalities include:
//   - Wallet Registry: a set of isolated cash wallets with one default
//     wallet, an active selection, and a virtual consolidated view that owns
//     no state of its own.
//   - Transaction Ledger: the chronological record of buys, sells and
//     exchanges; the single source of truth every other figure is derived
//     from, surviving edits and deletions without drift.
//   - Inventory Costing: a FIFO lot engine rebuilt by full deterministic
//     replay of the ledger, yielding balances, amount-weighted average costs
//     and per-lot realized gain attribution.
//   - Capital Tracking: operator-declared capital and manual movements,
//     combined with realized results into net change and percentage return.
//   - Data Persistence: encoding and decoding the book to a human-readable
//     JSONL snapshot; lot state is never stored, always rederived.
//
// This package serves as the foundational logic for the `cx` command-line
// tool, ensuring that all operations are consistent and based on a single
// source of truth.
package cambio
