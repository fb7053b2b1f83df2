package cambio

import "iter"

// Read-side queries of the engine. Every one of them accepts a WalletRef, so
// the consolidated pseudo-wallet is served by the same code path: a pointwise
// sum over member wallets computed at query time. The consolidated view owns
// no lots, no transactions and no capital of its own.

// Balance returns the held amount of a currency for the covered wallets.
// The conservation invariant ties it to the lot set: it is always the sum of
// remaining lot amounts.
func (e *Engine) Balance(ref WalletRef, currency string) Amount {
	return e.inv.balance(e.registry.Members(ref), currency)
}

// AverageCost returns the amount-weighted mean unit cost of the remaining
// lots for a currency, or false when no position is held. Callers must not
// conflate "no position" with a zero-cost position.
func (e *Engine) AverageCost(ref WalletRef, currency string) (Money, bool) {
	return e.inv.averageCost(e.registry.Members(ref), currency)
}

// Transactions returns the covered transactions, newest first. Consolidated
// listings keep each transaction tagged with its owning wallet; lots of
// different wallets are never merged.
func (e *Engine) Transactions(ref WalletRef) []Transaction {
	return e.ledger.ForWallet(ref)
}

// Transaction returns a single transaction by id.
func (e *Engine) Transaction(id string) (Transaction, bool) {
	return e.ledger.Get(id)
}

// Currencies iterates over the currencies traded by the covered wallets, in
// order of first appearance in the ledger.
func (e *Engine) Currencies(ref WalletRef) iter.Seq[string] {
	return e.ledger.Currencies(ref)
}

// RealizedGains returns the net realized trading result of the covered
// wallets since inception, before any capital reset baseline.
func (e *Engine) RealizedGains(ref WalletRef) Money {
	pnl := M(0, e.home)
	for _, id := range e.registry.Members(ref) {
		pnl = pnl.Add(e.walletRealized(id))
	}
	return pnl
}

// CapitalSummary derives the capital figures for the covered wallets:
// declared capital, movement totals, realized results, net change and
// percentage return.
func (e *Engine) CapitalSummary(ref WalletRef) CapitalSummary {
	return e.capital.Summary(e.registry.Members(ref), e.home, e.walletRealized)
}

// CapitalMovements returns the manual movements of the covered wallets,
// oldest first.
func (e *Engine) CapitalMovements(ref WalletRef) []CapitalMovement {
	return e.capital.Movements(e.registry.Members(ref))
}
