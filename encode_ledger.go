package cambio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// The snapshot is a JSONL stream: one record per line, discriminated by the
// "record" property. It holds wallets, transactions, capital movements and
// declared capital. Lot state is deliberately absent: inventory is rederived
// by replaying transactions at load time, which doubles as a self-healing
// mechanism against corrupt lot state.
const (
	recBook     = "book"
	recWallet   = "wallet"
	recCapital  = "capital"
	recMovement = "movement"
	recTx       = "tx"
)

// EncodeSnapshot writes the engine state to w, one canonical JSON line per
// record: the book header, wallets in creation order, capital declarations,
// movements and transactions in chronological order.
func EncodeSnapshot(w io.Writer, e *Engine) error {
	var head jsonObjectWriter
	head.Append("record", recBook)
	head.Append("home", e.home)
	head.Append("active", e.registry.Active().String())
	if err := writeLine(w, &head); err != nil {
		return err
	}

	for wallet := range e.registry.Wallets() {
		var line jsonObjectWriter
		line.Append("record", recWallet)
		line.Append("id", wallet.ID)
		line.Append("name", wallet.Name)
		line.Optional("color", wallet.ColorTag)
		line.Optional("default", wallet.IsDefault)
		line.Append("createdAt", wallet.CreatedAt.Format(time.RFC3339Nano))
		if err := writeLine(w, &line); err != nil {
			return err
		}
	}

	for wallet := range e.registry.Wallets() {
		initial := e.capital.initial[wallet.ID]
		cleared := e.capital.cleared[wallet.ID]
		if initial.IsZero() && cleared.IsZero() {
			continue
		}
		var line jsonObjectWriter
		line.Append("record", recCapital)
		line.Append("wallet", wallet.ID)
		line.Append("initial", initial.value)
		line.Optional("cleared", cleared.value)
		if err := writeLine(w, &line); err != nil {
			return err
		}
	}

	for _, m := range e.capital.movements {
		var line jsonObjectWriter
		line.Append("record", recMovement)
		line.Append("id", m.ID)
		line.Append("wallet", m.Wallet)
		line.Append("kind", m.Kind)
		line.Append("amount", m.Amount.value)
		line.Append("time", m.Time.Format(time.RFC3339Nano))
		if err := writeLine(w, &line); err != nil {
			return err
		}
	}

	for tx := range e.ledger.Entries() {
		var line jsonObjectWriter
		line.Append("record", recTx)
		line.Append("id", tx.ID)
		line.Append("wallet", tx.Wallet)
		line.Append("kind", tx.Kind)
		line.Append("currency", tx.Currency)
		line.Append("amount", tx.Amount)
		line.Append("rate", tx.Rate.value)
		line.Append("time", tx.Time.Format(time.RFC3339Nano))
		line.Optional("toCurrency", tx.ToCurrency)
		if tx.Kind == Exchange {
			line.Append("toRate", tx.ToRate.value)
		}
		// Total, ToAmount and the consumption detail are derived values,
		// recomputed on load.
		if err := writeLine(w, &line); err != nil {
			return err
		}
	}
	return nil
}

func writeLine(w io.Writer, line *jsonObjectWriter) error {
	data, err := line.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot record: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write snapshot record: %w", err)
	}
	return nil
}

// DecodeSnapshot reads a snapshot back into a fully replayed engine. Any
// structural problem aborts the load with an error wrapping ErrCorruptState;
// there is no partial load.
func DecodeSnapshot(r io.Reader) (*Engine, error) {
	e := &Engine{
		registry: &WalletRegistry{},
		ledger:   NewLedger(),
		capital:  NewCapitalTracker(),
	}
	var active string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var identifier struct {
			Record string `json:"record"`
		}
		if err := json.Unmarshal(line, &identifier); err != nil {
			return nil, fmt.Errorf("cannot identify record in line %q: %v: %w", string(line), err, ErrCorruptState)
		}

		switch identifier.Record {
		case recBook:
			var rec struct {
				Home   string `json:"home"`
				Active string `json:"active"`
			}
			if err := json.Unmarshal(line, &rec); err != nil {
				return nil, fmt.Errorf("bad book record: %v: %w", err, ErrCorruptState)
			}
			if rec.Home == "" {
				return nil, fmt.Errorf("book record has no home currency: %w", ErrCorruptState)
			}
			e.home = rec.Home
			active = rec.Active
		case recWallet:
			var rec struct {
				ID        WalletID `json:"id"`
				Name      string   `json:"name"`
				Color     string   `json:"color"`
				Default   bool     `json:"default"`
				CreatedAt string   `json:"createdAt"`
			}
			if err := json.Unmarshal(line, &rec); err != nil {
				return nil, fmt.Errorf("bad wallet record: %v: %w", err, ErrCorruptState)
			}
			if rec.ID == "" || rec.Name == "" {
				return nil, fmt.Errorf("wallet record misses id or name: %w", ErrCorruptState)
			}
			createdAt, err := time.Parse(time.RFC3339Nano, rec.CreatedAt)
			if err != nil {
				return nil, fmt.Errorf("bad wallet createdAt %q: %w", rec.CreatedAt, ErrCorruptState)
			}
			e.registry.wallets = append(e.registry.wallets, Wallet{
				ID: rec.ID, Name: rec.Name, ColorTag: rec.Color,
				IsDefault: rec.Default, CreatedAt: createdAt,
			})
		case recCapital:
			var rec struct {
				Wallet  WalletID        `json:"wallet"`
				Initial decimal.Decimal `json:"initial"`
				Cleared decimal.Decimal `json:"cleared"`
			}
			if err := json.Unmarshal(line, &rec); err != nil {
				return nil, fmt.Errorf("bad capital record: %v: %w", err, ErrCorruptState)
			}
			e.capital.initial[rec.Wallet] = M(rec.Initial, e.home)
			if !rec.Cleared.IsZero() {
				e.capital.cleared[rec.Wallet] = M(rec.Cleared, e.home)
			}
		case recMovement:
			var rec struct {
				ID     string          `json:"id"`
				Wallet WalletID        `json:"wallet"`
				Kind   MovementKind    `json:"kind"`
				Amount decimal.Decimal `json:"amount"`
				Time   string          `json:"time"`
			}
			if err := json.Unmarshal(line, &rec); err != nil {
				return nil, fmt.Errorf("bad movement record: %v: %w", err, ErrCorruptState)
			}
			at, err := time.Parse(time.RFC3339Nano, rec.Time)
			if err != nil {
				return nil, fmt.Errorf("bad movement time %q: %w", rec.Time, ErrCorruptState)
			}
			m := CapitalMovement{ID: rec.ID, Wallet: rec.Wallet, Kind: rec.Kind, Amount: M(rec.Amount, e.home), Time: at}
			if err := m.Validate(); err != nil {
				return nil, fmt.Errorf("bad movement %s: %v: %w", rec.ID, err, ErrCorruptState)
			}
			e.capital.movements = append(e.capital.movements, m)
		case recTx:
			tx, err := decodeTxRecord(line, e.home)
			if err != nil {
				return nil, err
			}
			e.ledger.Append(tx)
		default:
			return nil, fmt.Errorf("unknown record kind %q: %w", identifier.Record, ErrCorruptState)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading snapshot: %v: %w", err, ErrCorruptState)
	}

	if err := e.validateLoaded(active); err != nil {
		return nil, err
	}

	// Rederive the full inventory; replay failure means the stored ledger
	// itself is inconsistent.
	inv, err := rebuild(e.ledger)
	if err != nil {
		return nil, fmt.Errorf("stored ledger does not replay: %v: %w", err, ErrCorruptState)
	}
	e.inv = inv
	return e, nil
}

func decodeTxRecord(line []byte, home string) (Transaction, error) {
	var rec struct {
		ID         string          `json:"id"`
		Wallet     WalletID        `json:"wallet"`
		Kind       TxKind          `json:"kind"`
		Currency   string          `json:"currency"`
		Amount     Amount          `json:"amount"`
		Rate       decimal.Decimal `json:"rate"`
		Time       string          `json:"time"`
		ToCurrency string          `json:"toCurrency"`
		ToRate     decimal.Decimal `json:"toRate"`
	}
	if err := json.Unmarshal(line, &rec); err != nil {
		return Transaction{}, fmt.Errorf("bad tx record: %v: %w", err, ErrCorruptState)
	}
	at, err := time.Parse(time.RFC3339Nano, rec.Time)
	if err != nil {
		return Transaction{}, fmt.Errorf("bad tx time %q: %w", rec.Time, ErrCorruptState)
	}
	rate := M(rec.Rate, home)
	tx := Transaction{
		ID:       rec.ID,
		Wallet:   rec.Wallet,
		Kind:     rec.Kind,
		Currency: rec.Currency,
		Amount:   rec.Amount,
		Rate:     rate,
		Total:    rate.Mul(rec.Amount),
		Time:     at,
	}
	if rec.Kind == Exchange {
		tx.ToCurrency = rec.ToCurrency
		tx.ToRate = M(rec.ToRate, home)
		if tx.ToRate.IsPositive() {
			tx.ToAmount = A(tx.Total.value.Div(tx.ToRate.value))
		}
	}
	if err := tx.Validate(); err != nil {
		return Transaction{}, fmt.Errorf("bad tx %s: %v: %w", rec.ID, err, ErrCorruptState)
	}
	if tx.ID == "" {
		return Transaction{}, fmt.Errorf("tx record misses id: %w", ErrCorruptState)
	}
	return tx, nil
}

// validateLoaded checks the structural invariants a snapshot must satisfy
// before it can become the live state.
func (e *Engine) validateLoaded(active string) error {
	if e.home == "" {
		return fmt.Errorf("snapshot has no book record: %w", ErrCorruptState)
	}
	defaults := 0
	for w := range e.registry.Wallets() {
		if w.IsDefault {
			defaults++
		}
	}
	if defaults != 1 {
		return fmt.Errorf("snapshot declares %d default wallets, want exactly one: %w", defaults, ErrCorruptState)
	}
	for tx := range e.ledger.Entries() {
		if !e.registry.Has(tx.Wallet) {
			return fmt.Errorf("transaction %s references unknown wallet %s: %w", tx.ID, tx.Wallet, ErrCorruptState)
		}
	}
	for _, m := range e.capital.movements {
		if !e.registry.Has(m.Wallet) {
			return fmt.Errorf("movement %s references unknown wallet %s: %w", m.ID, m.Wallet, ErrCorruptState)
		}
	}

	switch {
	case active == "" || active == Consolidated.String():
		e.registry.active = Consolidated
	case e.registry.Has(WalletID(active)):
		e.registry.active = Ref(WalletID(active))
	default:
		return fmt.Errorf("active wallet %q not in snapshot: %w", active, ErrCorruptState)
	}
	return nil
}
