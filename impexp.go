package cambio

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// This file handles importing transactions from foreign JSON exports
// (spreadsheet dumps, other apps' backups). The caller describes where each
// field lives with jsonpath expressions, so the engine does not need to know
// every export shape up front.

// ImportMapping locates transaction fields inside one row of a foreign JSON
// export. All paths are jsonpath expressions. Rows selects the array of rows
// in the document; when empty the document itself must be an array.
type ImportMapping struct {
	Rows     string
	Kind     string
	Currency string
	Amount   string
	Rate     string
	Time     string

	// Optional, only read on exchange rows.
	ToCurrency string
	ToRate     string

	// TimeLayout defaults to RFC 3339.
	TimeLayout string
}

// Validate checks that the required paths are present.
func (m ImportMapping) Validate() error {
	missing := []string{}
	for name, path := range map[string]string{
		"kind": m.Kind, "currency": m.Currency, "amount": m.Amount,
		"rate": m.Rate, "time": m.Time,
	} {
		if path == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("import mapping misses paths for: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ImportTransactions reads a foreign JSON export from r and records every
// row as a transaction of the given wallet. It fails fast: the first invalid
// row aborts the import, and rows already recorded stay recorded (each row
// is one ordinary mutation).
// It returns the number of transactions recorded.
func ImportTransactions(e *Engine, wallet WalletID, r io.Reader, m ImportMapping) (int, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}

	var doc interface{}
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return 0, fmt.Errorf("cannot parse import document: %w", err)
	}

	rowsVal := doc
	if m.Rows != "" {
		var err error
		rowsVal, err = jsonpath.Get(m.Rows, doc)
		if err != nil {
			return 0, fmt.Errorf("rows path %q: %w", m.Rows, err)
		}
	}
	rows, ok := rowsVal.([]interface{})
	if !ok {
		return 0, fmt.Errorf("rows path %q does not select an array (got %T)", m.Rows, rowsVal)
	}

	layout := m.TimeLayout
	if layout == "" {
		layout = time.RFC3339
	}

	count := 0
	for i, row := range rows {
		if err := importRow(e, wallet, row, m, layout); err != nil {
			return count, fmt.Errorf("row %d: %w", i, err)
		}
		count++
	}
	return count, nil
}

func importRow(e *Engine, wallet WalletID, row interface{}, m ImportMapping, layout string) error {
	kindStr, err := pathString(m.Kind, row)
	if err != nil {
		return err
	}
	currency, err := pathString(m.Currency, row)
	if err != nil {
		return err
	}
	amount, err := pathDecimal(m.Amount, row)
	if err != nil {
		return err
	}
	rate, err := pathDecimal(m.Rate, row)
	if err != nil {
		return err
	}
	timeStr, err := pathString(m.Time, row)
	if err != nil {
		return err
	}
	at, err := time.Parse(layout, timeStr)
	if err != nil {
		return fmt.Errorf("cannot parse time %q with layout %q: %w", timeStr, layout, err)
	}

	switch kind := TxKind(strings.ToLower(kindStr)); kind {
	case Buy:
		_, err = e.RecordBuy(wallet, currency, A(amount), M(rate, e.home), at)
	case Sell:
		_, err = e.RecordSell(wallet, currency, A(amount), M(rate, e.home), at)
	case Exchange:
		if m.ToCurrency == "" || m.ToRate == "" {
			return fmt.Errorf("exchange row but mapping has no toCurrency/toRate paths")
		}
		toCurrency, err2 := pathString(m.ToCurrency, row)
		if err2 != nil {
			return err2
		}
		toRate, err2 := pathDecimal(m.ToRate, row)
		if err2 != nil {
			return err2
		}
		_, err = e.RecordExchange(wallet, currency, A(amount), M(rate, e.home), toCurrency, M(toRate, e.home), at)
	default:
		return fmt.Errorf("unknown transaction kind %q", kindStr)
	}
	return err
}

func pathString(path string, row interface{}) (string, error) {
	v, err := jsonpath.Get(path, row)
	if err != nil {
		return "", fmt.Errorf("path %q: %w", path, err)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("path %q selects %T, want a string", path, v)
	}
	return s, nil
}

func pathDecimal(path string, row interface{}) (decimal.Decimal, error) {
	v, err := jsonpath.Get(path, row)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("path %q: %w", path, err)
	}
	switch n := v.(type) {
	case json.Number:
		return decimal.NewFromString(n.String())
	case string:
		return decimal.NewFromString(n)
	case float64:
		return decimal.NewFromFloat(n), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("path %q selects %T, want a number", path, v)
	}
}
