package cambio

import (
	"fmt"
	"sort"
)

// CapitalTracker tracks operator-declared capital per wallet: the initial
// amount and manual movements. Realized trading results are not stored here;
// they are recomputed from the ledger and folded in at query time, minus the
// part cleared by past resets.
type CapitalTracker struct {
	initial   map[WalletID]Money
	cleared   map[WalletID]Money // realized P&L consumed by resets
	movements []CapitalMovement
}

// NewCapitalTracker creates an empty tracker.
func NewCapitalTracker() *CapitalTracker {
	return &CapitalTracker{
		initial: make(map[WalletID]Money),
		cleared: make(map[WalletID]Money),
	}
}

// SetInitial declares the starting capital of a wallet.
func (c *CapitalTracker) SetInitial(id WalletID, amount Money) {
	c.initial[id] = amount
}

// Initial returns the declared starting capital of a wallet.
func (c *CapitalTracker) Initial(id WalletID) Money { return c.initial[id] }

// Add records a manual capital movement.
func (c *CapitalTracker) Add(m CapitalMovement) error {
	if err := m.Validate(); err != nil {
		return err
	}
	c.movements = append(c.movements, m)
	sort.SliceStable(c.movements, func(i, j int) bool {
		return c.movements[i].Time.Before(c.movements[j].Time)
	})
	return nil
}

// Movements returns the movements of the covered wallets, oldest first.
func (c *CapitalTracker) Movements(ids []WalletID) []CapitalMovement {
	covered := make(map[WalletID]struct{}, len(ids))
	for _, id := range ids {
		covered[id] = struct{}{}
	}
	var out []CapitalMovement
	for _, m := range c.movements {
		if _, ok := covered[m.Wallet]; ok {
			out = append(out, m)
		}
	}
	return out
}

// Reset clears a wallet's movements and its realized P&L accumulation.
// realizedToDate is the wallet's ledger-derived realized result at the time
// of the reset; it becomes the new baseline. Transactions are untouched.
func (c *CapitalTracker) Reset(id WalletID, realizedToDate Money) {
	kept := c.movements[:0]
	for _, m := range c.movements {
		if m.Wallet != id {
			kept = append(kept, m)
		}
	}
	c.movements = kept
	c.cleared[id] = realizedToDate
}

// forget drops every trace of a deleted wallet.
func (c *CapitalTracker) forget(id WalletID) {
	delete(c.initial, id)
	delete(c.cleared, id)
	kept := c.movements[:0]
	for _, m := range c.movements {
		if m.Wallet != id {
			kept = append(kept, m)
		}
	}
	c.movements = kept
}

// realized returns the effective realized result of a wallet, after resets.
func (c *CapitalTracker) realized(id WalletID, ledgerRealized Money) Money {
	return ledgerRealized.Sub(c.cleared[id])
}

// CapitalSummary is the derived capital state for a wallet or for the
// consolidated view.
type CapitalSummary struct {
	Initial   Money
	TotalIn   Money // deposits, positive adjustments and realized gains
	TotalOut  Money // withdrawals, negative adjustments and realized losses
	Realized  Money // net realized trading result folded into the totals
	Current   Money // Initial + TotalIn - TotalOut
	NetChange Money // Current - Initial
	// PercentChange is NetChange over Initial, in percent. Defined as 0 when
	// Initial is zero so downstream display stays well-formed.
	PercentChange float64
}

// Summary derives the capital figures for the covered wallets. realized maps
// each wallet to its ledger-derived realized P&L since inception; the
// tracker subtracts what previous resets cleared.
func (c *CapitalTracker) Summary(ids []WalletID, home string, ledgerRealized func(WalletID) Money) CapitalSummary {
	s := CapitalSummary{
		Initial:  M(0, home),
		TotalIn:  M(0, home),
		TotalOut: M(0, home),
		Realized: M(0, home),
	}
	for _, id := range ids {
		s.Initial = s.Initial.Add(c.initial[id])
		s.Realized = s.Realized.Add(c.realized(id, ledgerRealized(id)))
	}
	for _, m := range c.Movements(ids) {
		switch m.Kind {
		case Deposit:
			s.TotalIn = s.TotalIn.Add(m.Amount)
		case Withdrawal:
			s.TotalOut = s.TotalOut.Add(m.Amount)
		case Adjustment:
			if m.Amount.IsNegative() {
				s.TotalOut = s.TotalOut.Add(m.Amount.Neg())
			} else {
				s.TotalIn = s.TotalIn.Add(m.Amount)
			}
		}
	}
	if s.Realized.IsNegative() {
		s.TotalOut = s.TotalOut.Add(s.Realized.Neg())
	} else {
		s.TotalIn = s.TotalIn.Add(s.Realized)
	}
	s.Current = s.Initial.Add(s.TotalIn).Sub(s.TotalOut)
	s.NetChange = s.Current.Sub(s.Initial)
	if !s.Initial.IsZero() {
		s.PercentChange = s.NetChange.InexactFloat64() / s.Initial.InexactFloat64() * 100
	}
	return s
}

// String renders the summary compactly for logs and errors.
func (s CapitalSummary) String() string {
	return fmt.Sprintf("capital %s (net %s, %.2f%%)", s.Current, s.NetChange.SignedString(), s.PercentChange)
}
