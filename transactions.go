package cambio

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// TxKind identifies the kind of a ledger transaction.
type TxKind string

const (
	// Buy acquires foreign cash against home currency, opening a new lot.
	Buy TxKind = "buy"
	// Sell disposes of foreign cash against home currency, consuming lots FIFO.
	Sell TxKind = "sell"
	// Exchange disposes of one foreign currency and acquires another within
	// the same wallet: a sell of the outgoing leg immediately followed by a
	// buy of the incoming leg at the implied cross rate.
	Exchange TxKind = "exchange"
)

// LotConsumption records how much was drawn from one lot and at what unit
// cost, enabling exact realized gain attribution.
type LotConsumption struct {
	LotID    string
	Amount   Amount
	UnitCost Money // home currency per unit of the consumed currency
}

// Transaction is one recorded operation of the ledger.
//
// Amount, Rate and Total describe the (only, or outgoing) leg: Rate is the
// home-currency price of one unit of Currency, and Total = Amount x Rate.
// Exchange transactions carry the incoming leg in the To fields, with
// ToAmount = Total / ToRate.
//
// Consumed is populated for disposing kinds (Sell, and the outgoing leg of
// Exchange). It is derived state: the replay of the ledger rebuilds it
// deterministically, so it is never persisted.
type Transaction struct {
	ID       string
	Wallet   WalletID
	Kind     TxKind
	Currency string
	Amount   Amount
	Rate     Money
	Total    Money
	Time     time.Time

	ToCurrency string
	ToAmount   Amount
	ToRate     Money

	Consumed []LotConsumption

	// seq is the insertion sequence, assigned by the ledger on append. It
	// breaks chronological ties so that the replay order is total and stable.
	seq uint64
}

// NewBuy creates a buy transaction: amount units of currency acquired at
// rate home-currency units each.
func NewBuy(wallet WalletID, currency string, amount Amount, rate Money, at time.Time) Transaction {
	return Transaction{
		ID:       ulid.Make().String(),
		Wallet:   wallet,
		Kind:     Buy,
		Currency: currency,
		Amount:   amount,
		Rate:     rate,
		Total:    rate.Mul(amount),
		Time:     at,
	}
}

// NewSell creates a sell transaction: amount units of currency disposed of
// at rate home-currency units each.
func NewSell(wallet WalletID, currency string, amount Amount, rate Money, at time.Time) Transaction {
	return Transaction{
		ID:       ulid.Make().String(),
		Wallet:   wallet,
		Kind:     Sell,
		Currency: currency,
		Amount:   amount,
		Rate:     rate,
		Total:    rate.Mul(amount),
		Time:     at,
	}
}

// NewExchange creates an exchange transaction converting amount units of
// fromCurrency into toCurrency within the same wallet. Both rates are in
// home currency per unit; the incoming amount is implied: Total / toRate.
func NewExchange(wallet WalletID, fromCurrency string, amount Amount, fromRate Money, toCurrency string, toRate Money, at time.Time) Transaction {
	total := fromRate.Mul(amount)
	return Transaction{
		ID:         ulid.Make().String(),
		Wallet:     wallet,
		Kind:       Exchange,
		Currency:   fromCurrency,
		Amount:     amount,
		Rate:       fromRate,
		Total:      total,
		Time:       at,
		ToCurrency: toCurrency,
		ToAmount:   A(total.value.Div(toRate.value)),
		ToRate:     toRate,
	}
}

// Validate checks the transaction's own fields, before any inventory effect.
func (t Transaction) Validate() error {
	if !t.Amount.IsPositive() {
		return fmt.Errorf("%s %s in wallet %s: amount %s must be positive: %w", t.Kind, t.Currency, t.Wallet, t.Amount, ErrInvalidAmount)
	}
	if !t.Rate.IsPositive() {
		return fmt.Errorf("%s %s in wallet %s: rate %s must be positive: %w", t.Kind, t.Currency, t.Wallet, t.Rate, ErrInvalidAmount)
	}
	switch t.Kind {
	case Buy, Sell:
	case Exchange:
		if t.ToCurrency == "" || t.ToCurrency == t.Currency {
			return fmt.Errorf("exchange in wallet %s: target currency %q must differ from %q: %w", t.Wallet, t.ToCurrency, t.Currency, ErrInvalidAmount)
		}
		if !t.ToRate.IsPositive() {
			return fmt.Errorf("exchange %s->%s in wallet %s: rate %s must be positive: %w", t.Currency, t.ToCurrency, t.Wallet, t.ToRate, ErrInvalidAmount)
		}
	default:
		return fmt.Errorf("unknown transaction kind %q: %w", t.Kind, ErrInvalidAmount)
	}
	return nil
}

// Disposes reports whether the transaction consumes lots.
func (t Transaction) Disposes() bool { return t.Kind == Sell || t.Kind == Exchange }

// RealizedPnL returns the gain or loss locked in by this transaction's lot
// consumption: sum of (sale rate - lot unit cost) x amount drawn per lot.
// Zero for non-disposing transactions.
func (t Transaction) RealizedPnL() Money {
	var pnl Money
	for _, c := range t.Consumed {
		pnl = pnl.Add(t.Rate.Sub(c.UnitCost).Mul(c.Amount))
	}
	return pnl
}

// MovementKind identifies a manual capital movement.
type MovementKind string

const (
	Deposit    MovementKind = "deposit"
	Withdrawal MovementKind = "withdrawal"
	Adjustment MovementKind = "adjustment"
)

// CapitalMovement is a manual, non-trading change to declared capital.
// Deposits and withdrawals carry a positive amount; adjustments are signed.
type CapitalMovement struct {
	ID     string
	Wallet WalletID
	Kind   MovementKind
	Amount Money
	Time   time.Time
}

// NewCapitalMovement creates a capital movement.
func NewCapitalMovement(wallet WalletID, kind MovementKind, amount Money, at time.Time) CapitalMovement {
	return CapitalMovement{
		ID:     ulid.Make().String(),
		Wallet: wallet,
		Kind:   kind,
		Amount: amount,
		Time:   at,
	}
}

// Validate checks the movement's fields.
func (m CapitalMovement) Validate() error {
	switch m.Kind {
	case Deposit, Withdrawal:
		if !m.Amount.IsPositive() {
			return fmt.Errorf("%s in wallet %s: amount %s must be positive: %w", m.Kind, m.Wallet, m.Amount, ErrInvalidAmount)
		}
	case Adjustment:
		if m.Amount.IsZero() {
			return fmt.Errorf("adjustment in wallet %s: amount must not be zero: %w", m.Wallet, ErrInvalidAmount)
		}
	default:
		return fmt.Errorf("unknown movement kind %q: %w", m.Kind, ErrInvalidAmount)
	}
	return nil
}
