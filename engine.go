package cambio

import (
	"fmt"
	"time"
)

// Engine owns the whole bookkeeping state: the wallet registry, the
// transaction ledger, the capital tracker and the derived FIFO inventory.
// It replaces the ambient mutable stores of a reactive UI with one explicit
// object exposing queries, mutations and a change-notification channel.
//
// The engine is single-threaded by contract: every mutation runs to
// completion before observers are notified, and no operation blocks on I/O.
// Persistence is an external observer's concern.
type Engine struct {
	registry *WalletRegistry
	ledger   *Ledger
	capital  *CapitalTracker
	inv      *inventory
	home     string

	subs []chan struct{}
}

// DefaultHomeCurrency is the home currency of a Cuban exchange desk.
const DefaultHomeCurrency = "CUP"

// NewEngine creates an engine with a single default wallet and an empty
// ledger. home is the currency rates and capital are denominated in.
func NewEngine(home, defaultWalletName string) *Engine {
	e := &Engine{
		registry: NewWalletRegistry(defaultWalletName),
		ledger:   NewLedger(),
		capital:  NewCapitalTracker(),
		home:     home,
	}
	e.inv, _ = rebuild(e.ledger) // empty ledger cannot fail
	return e
}

// HomeCurrency returns the currency rates and capital are denominated in.
func (e *Engine) HomeCurrency() string { return e.home }

// Registry exposes the wallet registry for read purposes.
func (e *Engine) Registry() *WalletRegistry { return e.registry }

// Subscribe returns a channel receiving one signal per successful mutation.
// Signals are coalesced: a slow observer misses intermediate signals, never
// blocks a mutation.
func (e *Engine) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	e.subs = append(e.subs, ch)
	return ch
}

func (e *Engine) notify() {
	for _, ch := range e.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// --- wallet mutations ---

// CreateWallet adds a wallet to the registry.
func (e *Engine) CreateWallet(name, colorTag string) (Wallet, error) {
	w, err := e.registry.Create(name, colorTag)
	if err != nil {
		return Wallet{}, err
	}
	e.notify()
	return w, nil
}

// RenameWallet changes a wallet's name.
func (e *Engine) RenameWallet(id WalletID, name string) error {
	if err := e.registry.Rename(id, name); err != nil {
		return err
	}
	e.notify()
	return nil
}

// DeleteWallet removes an empty wallet. A wallet owning transactions must be
// cleared (or merged by an outer layer) first.
func (e *Engine) DeleteWallet(id WalletID) error {
	if !e.registry.Has(id) {
		return fmt.Errorf("cannot delete wallet %s: %w", id, ErrUnknownWallet)
	}
	if e.ledger.OwnsTransactions(id) {
		return fmt.Errorf("cannot delete wallet %s: %w", id, ErrWalletNotEmpty)
	}
	if err := e.registry.Remove(id); err != nil {
		return err
	}
	e.capital.forget(id)
	e.notify()
	return nil
}

// SwitchActive selects the active wallet, or the consolidated view.
func (e *Engine) SwitchActive(ref WalletRef) error {
	if err := e.registry.SwitchActive(ref); err != nil {
		return err
	}
	e.notify()
	return nil
}

// --- transaction mutations ---

// RecordBuy records the purchase of foreign cash, opening a new lot.
func (e *Engine) RecordBuy(wallet WalletID, currency string, amount Amount, rate Money, at time.Time) (Transaction, error) {
	return e.record(NewBuy(wallet, currency, amount, rate, at))
}

// RecordSell records the disposal of foreign cash, consuming lots FIFO.
// The returned transaction carries the consumption detail and, through
// RealizedPnL, the realized result.
func (e *Engine) RecordSell(wallet WalletID, currency string, amount Amount, rate Money, at time.Time) (Transaction, error) {
	return e.record(NewSell(wallet, currency, amount, rate, at))
}

// RecordExchange converts one foreign currency into another within the same
// wallet: a sell of the outgoing leg then a buy of the incoming leg at the
// implied cross rate. If the sell leg cannot be satisfied nothing happens.
func (e *Engine) RecordExchange(wallet WalletID, fromCurrency string, amount Amount, fromRate Money, toCurrency string, toRate Money, at time.Time) (Transaction, error) {
	return e.record(NewExchange(wallet, fromCurrency, amount, fromRate, toCurrency, toRate, at))
}

// record validates the transaction, replays the ledger with it inserted in
// its chronological slot, and commits all or nothing.
func (e *Engine) record(tx Transaction) (Transaction, error) {
	if !e.registry.Has(tx.Wallet) {
		return Transaction{}, fmt.Errorf("cannot record %s: wallet %s: %w", tx.Kind, tx.Wallet, ErrUnknownWallet)
	}
	if err := tx.Validate(); err != nil {
		return Transaction{}, err
	}

	candidate := e.ledger.clone()
	tx = candidate.Append(tx)
	inv, err := rebuild(candidate)
	if err != nil {
		return Transaction{}, err
	}

	e.ledger = candidate
	e.inv = inv
	recorded, _ := e.ledger.Get(tx.ID) // re-read: replay filled Consumed
	e.notify()
	return recorded, nil
}

// DeleteTransaction removes a transaction and restores inventory to the
// state it would have had if that transaction had never been recorded, by
// full replay of the remaining ledger. When the remaining history cannot
// satisfy a dependent later consumption, the deletion is rejected with
// ErrInconsistentHistory and the original state is preserved.
func (e *Engine) DeleteTransaction(id string) error {
	candidate := e.ledger.clone()
	removed, ok := candidate.Remove(id)
	if !ok {
		return fmt.Errorf("cannot delete transaction %s: not found: %w", id, ErrInconsistentHistory)
	}
	inv, err := rebuild(candidate)
	if err != nil {
		return fmt.Errorf("deleting %s %s %s from wallet %s breaks a later consumption (%v): %w",
			removed.Kind, removed.Amount, removed.Currency, removed.Wallet, err, ErrInconsistentHistory)
	}
	e.ledger = candidate
	e.inv = inv
	e.notify()
	return nil
}

// --- capital mutations ---

// SetInitialCapital declares a wallet's starting capital in home currency.
func (e *Engine) SetInitialCapital(id WalletID, amount Money) error {
	if !e.registry.Has(id) {
		return fmt.Errorf("cannot set capital: wallet %s: %w", id, ErrUnknownWallet)
	}
	if amount.IsNegative() {
		return fmt.Errorf("initial capital %s must not be negative: %w", amount, ErrInvalidAmount)
	}
	e.capital.SetInitial(id, amount)
	e.notify()
	return nil
}

// AddCapitalMovement records a manual deposit, withdrawal or adjustment.
func (e *Engine) AddCapitalMovement(id WalletID, kind MovementKind, amount Money, at time.Time) (CapitalMovement, error) {
	if !e.registry.Has(id) {
		return CapitalMovement{}, fmt.Errorf("cannot add movement: wallet %s: %w", id, ErrUnknownWallet)
	}
	m := NewCapitalMovement(id, kind, amount, at)
	if err := e.capital.Add(m); err != nil {
		return CapitalMovement{}, err
	}
	e.notify()
	return m, nil
}

// ResetCapital clears movements and realized P&L accumulation for the
// covered wallets. Transactions are untouched.
func (e *Engine) ResetCapital(ref WalletRef) error {
	ids := e.registry.Members(ref)
	if id, ok := ref.WalletID(); ok && len(ids) == 0 {
		return fmt.Errorf("cannot reset capital: wallet %s: %w", id, ErrUnknownWallet)
	}
	for _, id := range ids {
		e.capital.Reset(id, e.walletRealized(id))
	}
	e.notify()
	return nil
}

// walletRealized sums the realized P&L of a wallet's ledger since inception.
func (e *Engine) walletRealized(id WalletID) Money {
	pnl := M(0, e.home)
	for tx := range e.ledger.Entries() {
		if tx.Wallet == id {
			pnl = pnl.Add(tx.RealizedPnL())
		}
	}
	return pnl
}
