package cambio

import (
	"fmt"
	"time"
)

// lot is a single acquisition of foreign cash at a known unit cost, consumed
// oldest-first on disposal.
type lot struct {
	id         string
	original   Amount
	remaining  Amount
	unitCost   Money // home currency per unit
	acquiredAt time.Time
	seq        uint64 // insertion sequence of the opening transaction
}

// lots is the active lot set for one (wallet, currency) pair, kept ordered
// by (acquiredAt, seq). The replay appends in chronological ledger order, so
// the slice order is the FIFO consumption order.
type lots []lot

// available returns the total remaining amount across all lots.
func (l lots) available() Amount {
	var total Amount
	for _, c := range l {
		total = total.Add(c.remaining)
	}
	return total
}

// consume drains amount from the lot set FIFO, at the given sale rate.
// It returns the reduced lot set, the per-lot consumption detail, and the
// realized gain or loss. Availability is checked before any lot is touched:
// on ErrInsufficientInventory the receiver is returned unchanged.
func (l lots) consume(amount Amount, rate Money) (lots, []LotConsumption, Money, error) {
	if held := l.available(); held.LessThan(amount) {
		return l, nil, Money{}, fmt.Errorf("requested %s but only %s held: %w", amount, held, ErrInsufficientInventory)
	}

	remainingLots := make(lots, 0, len(l))
	var consumed []LotConsumption
	var pnl Money
	toSell := amount

	for _, current := range l {
		if toSell.IsZero() {
			remainingLots = append(remainingLots, current)
			continue
		}

		drawn := current.remaining
		if drawn.GreaterThan(toSell) {
			drawn = toSell
		}
		consumed = append(consumed, LotConsumption{LotID: current.id, Amount: drawn, UnitCost: current.unitCost})
		pnl = pnl.Add(rate.Sub(current.unitCost).Mul(drawn))
		toSell = toSell.Sub(drawn)

		current.remaining = current.remaining.Sub(drawn)
		if current.remaining.IsPositive() {
			// Partially drained lot stays in place.
			remainingLots = append(remainingLots, current)
		}
		// A fully drained lot leaves the active set; its record survives in
		// the ledger's consumption detail for audit.
	}
	return remainingLots, consumed, pnl, nil
}

// averageCost is the amount-weighted mean unit cost over remaining lots.
// The second result is false when no amount remains, so callers can tell
// "no position" from a zero-cost position.
func (l lots) averageCost() (Money, bool) {
	total := l.available()
	if total.IsZero() {
		return Money{}, false
	}
	return l.totalCost().Div(total), true
}

// totalCost is the cost basis of the remaining amounts.
func (l lots) totalCost() Money {
	var total Money
	for _, c := range l {
		total = total.Add(c.unitCost.Mul(c.remaining))
	}
	return total
}
