package cambio

import (
	"iter"
	"sort"
)

// Ledger is the record of all transactions, kept in chronological order.
//
// Chronological order is by transaction time, ties broken by insertion
// sequence, so a backdated entry lands in its correct costing slot while
// same-instant entries keep the order they were recorded in.
type Ledger struct {
	entries []Transaction
	nextSeq uint64
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Append inserts a transaction into its chronological slot and returns it
// with its insertion sequence assigned.
func (l *Ledger) Append(tx Transaction) Transaction {
	l.nextSeq++
	tx.seq = l.nextSeq
	l.entries = append(l.entries, tx)
	l.stableSort()
	return tx
}

// Remove deletes the transaction with this id, returning it.
func (l *Ledger) Remove(id string) (Transaction, bool) {
	for i, tx := range l.entries {
		if tx.ID == id {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return tx, true
		}
	}
	return Transaction{}, false
}

// Get returns the transaction with this id.
func (l *Ledger) Get(id string) (Transaction, bool) {
	for _, tx := range l.entries {
		if tx.ID == id {
			return tx, true
		}
	}
	return Transaction{}, false
}

// Len returns the number of transactions.
func (l *Ledger) Len() int { return len(l.entries) }

// Entries iterates over all transactions in chronological order. This is the
// replay order of the inventory engine.
func (l *Ledger) Entries() iter.Seq[Transaction] {
	return func(yield func(Transaction) bool) {
		for _, tx := range l.entries {
			if !yield(tx) {
				return
			}
		}
	}
}

// ForWallet returns the transactions covered by ref, newest first, for
// display. Consumption order is independent of this order.
func (l *Ledger) ForWallet(ref WalletRef) []Transaction {
	var out []Transaction
	for _, tx := range l.entries {
		if id, ok := ref.WalletID(); ok && tx.Wallet != id {
			continue
		}
		out = append(out, tx)
	}
	// Reverse of chronological order: newest first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// OwnsTransactions reports whether the wallet has any recorded transaction.
func (l *Ledger) OwnsTransactions(id WalletID) bool {
	for _, tx := range l.entries {
		if tx.Wallet == id {
			return true
		}
	}
	return false
}

// Currencies iterates over the currencies appearing in transactions covered
// by ref, in order of first appearance. Exchange target currencies count.
func (l *Ledger) Currencies(ref WalletRef) iter.Seq[string] {
	return func(yield func(string) bool) {
		seen := make(map[string]struct{})
		process := func(c string) bool {
			if c == "" {
				return true
			}
			if _, ok := seen[c]; ok {
				return true
			}
			seen[c] = struct{}{}
			return yield(c)
		}
		for _, tx := range l.entries {
			if id, ok := ref.WalletID(); ok && tx.Wallet != id {
				continue
			}
			if !process(tx.Currency) || !process(tx.ToCurrency) {
				return
			}
		}
	}
}

// clone returns a deep enough copy for a tentative mutation: the entry slice
// is copied, entries themselves are values.
func (l *Ledger) clone() *Ledger {
	c := &Ledger{nextSeq: l.nextSeq}
	c.entries = make([]Transaction, len(l.entries))
	copy(c.entries, l.entries)
	return c
}

// stableSort sorts entries chronologically, ties by insertion sequence.
func (l *Ledger) stableSort() {
	sort.SliceStable(l.entries, func(i, j int) bool {
		if l.entries[i].Time.Equal(l.entries[j].Time) {
			return l.entries[i].seq < l.entries[j].seq
		}
		return l.entries[i].Time.Before(l.entries[j].Time)
	})
}
