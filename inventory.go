package cambio

import (
	"fmt"
)

// invKey addresses one lot set.
type invKey struct {
	wallet   WalletID
	currency string
}

// inventory is the FIFO lot state of every (wallet, currency) pair.
//
// It is never mutated in place by callers: it is rebuilt by a full
// deterministic replay of the ledger after every mutation, which is the only
// approach that keeps deletion of arbitrary transactions correct when later
// transactions consumed earlier lots.
type inventory struct {
	lots map[invKey]lots
}

// rebuild replays the ledger chronologically into a fresh inventory. The
// consumption detail of each disposing transaction is recomputed and written
// back into the returned ledger, so Consumed is always consistent with the
// replay. A replay that cannot satisfy a disposal reports which transaction
// failed, wrapping ErrInsufficientInventory.
func rebuild(l *Ledger) (*inventory, error) {
	inv := &inventory{lots: make(map[invKey]lots)}
	for i := range l.entries {
		tx := &l.entries[i]
		tx.Consumed = nil
		if tx.Disposes() {
			key := invKey{tx.Wallet, tx.Currency}
			rest, consumed, _, err := inv.lots[key].consume(tx.Amount, tx.Rate)
			if err != nil {
				return nil, fmt.Errorf("%s %s %s in wallet %s on %s: %w",
					tx.Kind, tx.Amount, tx.Currency, tx.Wallet, tx.Time.Format("2006-01-02"), err)
			}
			inv.lots[key] = rest
			tx.Consumed = consumed
		}
		switch tx.Kind {
		case Buy:
			inv.open(tx.Wallet, tx.Currency, tx.ID, tx.Amount, tx.Rate, tx)
		case Exchange:
			// The incoming leg opens a lot at the implied cross rate.
			inv.open(tx.Wallet, tx.ToCurrency, tx.ID+"/in", tx.ToAmount, tx.ToRate, tx)
		}
	}
	return inv, nil
}

// open appends a new lot for the pair. Replay order is chronological, so
// appending keeps the FIFO order by (acquiredAt, insertion sequence).
func (v *inventory) open(wallet WalletID, currency, lotID string, amount Amount, unitCost Money, tx *Transaction) {
	key := invKey{wallet, currency}
	v.lots[key] = append(v.lots[key], lot{
		id:         lotID,
		original:   amount,
		remaining:  amount,
		unitCost:   unitCost,
		acquiredAt: tx.Time,
		seq:        tx.seq,
	})
}

// balance returns the held amount of a currency for the covered wallets.
func (v *inventory) balance(ids []WalletID, currency string) Amount {
	var total Amount
	for _, id := range ids {
		total = total.Add(v.lots[invKey{id, currency}].available())
	}
	return total
}

// averageCost returns the amount-weighted mean unit cost over the remaining
// lots of the covered wallets, or false when no amount remains.
func (v *inventory) averageCost(ids []WalletID, currency string) (Money, bool) {
	var amount Amount
	var cost Money
	for _, id := range ids {
		set := v.lots[invKey{id, currency}]
		amount = amount.Add(set.available())
		cost = cost.Add(set.totalCost())
	}
	if amount.IsZero() {
		return Money{}, false
	}
	return cost.Div(amount), true
}
