package cambio

import (
	"errors"
	"testing"
	"time"
)

// newTestEngine creates an engine with a CUP book and one default wallet.
func newTestEngine(t *testing.T) (*Engine, WalletID) {
	t.Helper()
	e := NewEngine("CUP", "Caja principal")
	return e, e.Registry().Default().ID
}

func day(d int) time.Time {
	return time.Date(2025, time.June, d, 12, 0, 0, 0, time.UTC)
}

func TestEngine_BuySellCycle(t *testing.T) {
	e, caja := newTestEngine(t)
	ref := Ref(caja)

	if _, err := e.RecordBuy(caja, "USD", A(100), M(320, "CUP"), day(1)); err != nil {
		t.Fatalf("RecordBuy() failed: %v", err)
	}
	if got := e.Balance(ref, "USD"); !got.Equal(A(100)) {
		t.Errorf("Balance() = %s, want 100", got)
	}
	if avg, ok := e.AverageCost(ref, "USD"); !ok || !avg.Equal(M(320, "CUP")) {
		t.Errorf("AverageCost() = %s, %v, want 320 CUP", avg, ok)
	}

	sell, err := e.RecordSell(caja, "USD", A(40), M(330, "CUP"), day(2))
	if err != nil {
		t.Fatalf("RecordSell() failed: %v", err)
	}
	if got := e.Balance(ref, "USD"); !got.Equal(A(60)) {
		t.Errorf("Balance() after sell = %s, want 60", got)
	}
	// 40 x (330 - 320)
	if want := M(400, "CUP"); !sell.RealizedPnL().Equal(want) {
		t.Errorf("RealizedPnL() = %s, want %s", sell.RealizedPnL(), want)
	}
	if len(sell.Consumed) != 1 || !sell.Consumed[0].UnitCost.Equal(M(320, "CUP")) {
		t.Errorf("Consumed = %+v, want one draw at unit cost 320", sell.Consumed)
	}

	if _, err := e.RecordBuy(caja, "USD", A(50), M(340, "CUP"), day(3)); err != nil {
		t.Fatalf("RecordBuy() failed: %v", err)
	}
	if got := e.Balance(ref, "USD"); !got.Equal(A(110)) {
		t.Errorf("Balance() after second buy = %s, want 110", got)
	}
	// (60 x 320 + 50 x 340) / 110
	want := M(36200, "CUP").Div(A(110))
	if avg, ok := e.AverageCost(ref, "USD"); !ok || !avg.Equal(want) {
		t.Errorf("AverageCost() = %s, want %s", avg, want)
	}
}

func TestEngine_SellBeyondInventory(t *testing.T) {
	e, caja := newTestEngine(t)

	if _, err := e.RecordBuy(caja, "USD", A(110), M(320, "CUP"), day(1)); err != nil {
		t.Fatalf("RecordBuy() failed: %v", err)
	}
	_, err := e.RecordSell(caja, "USD", A(200), M(330, "CUP"), day(2))
	if !errors.Is(err, ErrInsufficientInventory) {
		t.Fatalf("RecordSell() error = %v, want ErrInsufficientInventory", err)
	}
	// The failed sell left no trace.
	if got := e.Balance(Ref(caja), "USD"); !got.Equal(A(110)) {
		t.Errorf("Balance() after failed sell = %s, want 110", got)
	}
	if got := len(e.Transactions(Ref(caja))); got != 1 {
		t.Errorf("ledger holds %d transactions after failed sell, want 1", got)
	}
}

func TestEngine_RecordValidation(t *testing.T) {
	e, caja := newTestEngine(t)

	testCases := []struct {
		name    string
		record  func() error
		wantErr error
	}{
		{
			name: "zero amount",
			record: func() error {
				_, err := e.RecordBuy(caja, "USD", A(0), M(320, "CUP"), day(1))
				return err
			},
			wantErr: ErrInvalidAmount,
		},
		{
			name: "negative rate",
			record: func() error {
				_, err := e.RecordBuy(caja, "USD", A(10), M(-1, "CUP"), day(1))
				return err
			},
			wantErr: ErrInvalidAmount,
		},
		{
			name: "unknown wallet",
			record: func() error {
				_, err := e.RecordBuy("nope", "USD", A(10), M(320, "CUP"), day(1))
				return err
			},
			wantErr: ErrUnknownWallet,
		},
		{
			name: "exchange to same currency",
			record: func() error {
				_, err := e.RecordExchange(caja, "USD", A(10), M(320, "CUP"), "USD", M(320, "CUP"), day(1))
				return err
			},
			wantErr: ErrInvalidAmount,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.record(); !errors.Is(err, tc.wantErr) {
				t.Errorf("record error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestEngine_Exchange(t *testing.T) {
	e, caja := newTestEngine(t)
	ref := Ref(caja)

	if _, err := e.RecordBuy(caja, "USD", A(100), M(320, "CUP"), day(1)); err != nil {
		t.Fatalf("RecordBuy() failed: %v", err)
	}
	ex, err := e.RecordExchange(caja, "USD", A(50), M(330, "CUP"), "EUR", M(150, "CUP"), day(2))
	if err != nil {
		t.Fatalf("RecordExchange() failed: %v", err)
	}

	// 50 x 330 = 16500 CUP buys 110 EUR at 150.
	if !ex.ToAmount.Equal(A(110)) {
		t.Errorf("ToAmount = %s, want 110", ex.ToAmount)
	}
	if got := e.Balance(ref, "USD"); !got.Equal(A(50)) {
		t.Errorf("USD balance = %s, want 50", got)
	}
	if got := e.Balance(ref, "EUR"); !got.Equal(A(110)) {
		t.Errorf("EUR balance = %s, want 110", got)
	}
	// The outgoing leg realizes 50 x (330 - 320).
	if want := M(500, "CUP"); !ex.RealizedPnL().Equal(want) {
		t.Errorf("RealizedPnL() = %s, want %s", ex.RealizedPnL(), want)
	}
	// The incoming leg opens a lot at the target rate.
	if avg, ok := e.AverageCost(ref, "EUR"); !ok || !avg.Equal(M(150, "CUP")) {
		t.Errorf("EUR AverageCost() = %s, %v, want 150 CUP", avg, ok)
	}
}

func TestEngine_ExchangeInsufficientSourceLeavesNothing(t *testing.T) {
	e, caja := newTestEngine(t)

	_, err := e.RecordExchange(caja, "USD", A(50), M(330, "CUP"), "EUR", M(150, "CUP"), day(1))
	if !errors.Is(err, ErrInsufficientInventory) {
		t.Fatalf("RecordExchange() error = %v, want ErrInsufficientInventory", err)
	}
	if got := e.Balance(Ref(caja), "EUR"); !got.IsZero() {
		t.Errorf("EUR balance after failed exchange = %s, want 0", got)
	}
}

func TestEngine_DeleteTransactionRestoresInventory(t *testing.T) {
	e, caja := newTestEngine(t)
	ref := Ref(caja)

	if _, err := e.RecordBuy(caja, "USD", A(100), M(320, "CUP"), day(1)); err != nil {
		t.Fatalf("RecordBuy() failed: %v", err)
	}
	sell, err := e.RecordSell(caja, "USD", A(40), M(330, "CUP"), day(2))
	if err != nil {
		t.Fatalf("RecordSell() failed: %v", err)
	}

	if err := e.DeleteTransaction(sell.ID); err != nil {
		t.Fatalf("DeleteTransaction() failed: %v", err)
	}
	// The consumed lot portion is restored, as if the sell never happened.
	if got := e.Balance(ref, "USD"); !got.Equal(A(100)) {
		t.Errorf("Balance() after delete = %s, want 100", got)
	}
	if _, ok := e.Transaction(sell.ID); ok {
		t.Error("Transaction() still finds the deleted sell")
	}
}

func TestEngine_DeleteDependedOnBuyIsRejected(t *testing.T) {
	e, caja := newTestEngine(t)

	buy, err := e.RecordBuy(caja, "USD", A(100), M(320, "CUP"), day(1))
	if err != nil {
		t.Fatalf("RecordBuy() failed: %v", err)
	}
	if _, err := e.RecordSell(caja, "USD", A(40), M(330, "CUP"), day(2)); err != nil {
		t.Fatalf("RecordSell() failed: %v", err)
	}

	// Without the buy the sell cannot replay.
	err = e.DeleteTransaction(buy.ID)
	if !errors.Is(err, ErrInconsistentHistory) {
		t.Fatalf("DeleteTransaction() error = %v, want ErrInconsistentHistory", err)
	}
	// The rejection preserved everything.
	if got := e.Balance(Ref(caja), "USD"); !got.Equal(A(60)) {
		t.Errorf("Balance() after rejected delete = %s, want 60", got)
	}
	if _, ok := e.Transaction(buy.ID); !ok {
		t.Error("Transaction() lost the buy after a rejected delete")
	}
}

func TestEngine_DeleteUnknownTransaction(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.DeleteTransaction("no-such-id"); !errors.Is(err, ErrInconsistentHistory) {
		t.Errorf("DeleteTransaction() error = %v, want ErrInconsistentHistory", err)
	}
}

func TestEngine_BackdatedBuyReordersCosting(t *testing.T) {
	e, caja := newTestEngine(t)

	if _, err := e.RecordBuy(caja, "USD", A(100), M(340, "CUP"), day(10)); err != nil {
		t.Fatalf("RecordBuy() failed: %v", err)
	}
	sell, err := e.RecordSell(caja, "USD", A(50), M(330, "CUP"), day(20))
	if err != nil {
		t.Fatalf("RecordSell() failed: %v", err)
	}
	// 50 x (330 - 340)
	if want := M(-500, "CUP"); !sell.RealizedPnL().Equal(want) {
		t.Fatalf("RealizedPnL() = %s, want %s", sell.RealizedPnL(), want)
	}

	// A backdated cheaper buy becomes the oldest lot, so the replay recosts
	// the existing sell against it.
	if _, err := e.RecordBuy(caja, "USD", A(100), M(300, "CUP"), day(5)); err != nil {
		t.Fatalf("backdated RecordBuy() failed: %v", err)
	}
	recosted, ok := e.Transaction(sell.ID)
	if !ok {
		t.Fatal("Transaction() lost the sell")
	}
	// 50 x (330 - 300)
	if want := M(1500, "CUP"); !recosted.RealizedPnL().Equal(want) {
		t.Errorf("RealizedPnL() after backdated buy = %s, want %s", recosted.RealizedPnL(), want)
	}
}

func TestEngine_WalletsAreIsolated(t *testing.T) {
	e, caja := newTestEngine(t)
	mlc, err := e.CreateWallet("MLC", "blue")
	if err != nil {
		t.Fatalf("CreateWallet() failed: %v", err)
	}

	if _, err := e.RecordBuy(caja, "USD", A(100), M(320, "CUP"), day(1)); err != nil {
		t.Fatalf("RecordBuy() failed: %v", err)
	}
	if _, err := e.RecordBuy(mlc.ID, "USD", A(40), M(310, "CUP"), day(2)); err != nil {
		t.Fatalf("RecordBuy() failed: %v", err)
	}

	// The consolidated balance is the pointwise sum.
	if got := e.Balance(Consolidated, "USD"); !got.Equal(A(140)) {
		t.Errorf("consolidated Balance() = %s, want 140", got)
	}
	// Consolidated average cost is weighted across wallets.
	want := M(100*320+40*310, "CUP").Div(A(140))
	if avg, ok := e.AverageCost(Consolidated, "USD"); !ok || !avg.Equal(want) {
		t.Errorf("consolidated AverageCost() = %s, want %s", avg, want)
	}

	// A wallet can only sell what it holds, even when the consolidated
	// inventory would cover the amount.
	if _, err := e.RecordSell(mlc.ID, "USD", A(100), M(330, "CUP"), day(3)); !errors.Is(err, ErrInsufficientInventory) {
		t.Errorf("cross-wallet RecordSell() error = %v, want ErrInsufficientInventory", err)
	}
	if got := e.Balance(Ref(caja), "USD"); !got.Equal(A(100)) {
		t.Errorf("caja Balance() = %s, want 100 untouched", got)
	}
}

func TestEngine_DeleteWallet(t *testing.T) {
	e, caja := newTestEngine(t)
	mlc, err := e.CreateWallet("MLC", "")
	if err != nil {
		t.Fatalf("CreateWallet() failed: %v", err)
	}

	if _, err := e.RecordBuy(mlc.ID, "USD", A(10), M(320, "CUP"), day(1)); err != nil {
		t.Fatalf("RecordBuy() failed: %v", err)
	}
	if err := e.DeleteWallet(mlc.ID); !errors.Is(err, ErrWalletNotEmpty) {
		t.Errorf("DeleteWallet() on a non-empty wallet = %v, want ErrWalletNotEmpty", err)
	}

	tx := e.Transactions(Ref(mlc.ID))[0]
	if err := e.DeleteTransaction(tx.ID); err != nil {
		t.Fatalf("DeleteTransaction() failed: %v", err)
	}
	if err := e.DeleteWallet(mlc.ID); err != nil {
		t.Fatalf("DeleteWallet() on an emptied wallet failed: %v", err)
	}

	if err := e.DeleteWallet(caja); !errors.Is(err, ErrCannotDeleteDefault) {
		t.Errorf("DeleteWallet() on the default wallet = %v, want ErrCannotDeleteDefault", err)
	}
	if err := e.DeleteWallet("nope"); !errors.Is(err, ErrUnknownWallet) {
		t.Errorf("DeleteWallet() on an unknown wallet = %v, want ErrUnknownWallet", err)
	}
}

func TestEngine_DeleteActiveWalletFallsBackToDefault(t *testing.T) {
	e, caja := newTestEngine(t)
	mlc, err := e.CreateWallet("MLC", "")
	if err != nil {
		t.Fatalf("CreateWallet() failed: %v", err)
	}
	if err := e.SwitchActive(Ref(mlc.ID)); err != nil {
		t.Fatalf("SwitchActive() failed: %v", err)
	}
	if err := e.DeleteWallet(mlc.ID); err != nil {
		t.Fatalf("DeleteWallet() failed: %v", err)
	}
	if id, ok := e.Registry().Active().WalletID(); !ok || id != caja {
		t.Errorf("Active() after deleting the active wallet = %s, want the default wallet", e.Registry().Active())
	}
}

func TestEngine_SubscribeCoalescesSignals(t *testing.T) {
	e, caja := newTestEngine(t)
	ch := e.Subscribe()

	// Two mutations while nobody listens collapse into one pending signal.
	if _, err := e.RecordBuy(caja, "USD", A(10), M(320, "CUP"), day(1)); err != nil {
		t.Fatalf("RecordBuy() failed: %v", err)
	}
	if _, err := e.RecordBuy(caja, "USD", A(10), M(320, "CUP"), day(2)); err != nil {
		t.Fatalf("RecordBuy() failed: %v", err)
	}
	if got := len(ch); got != 1 {
		t.Fatalf("pending signals = %d, want 1", got)
	}
	<-ch
	if got := len(ch); got != 0 {
		t.Errorf("pending signals after drain = %d, want 0", got)
	}

	// A failed mutation signals nothing.
	if _, err := e.RecordSell(caja, "USD", A(1000), M(330, "CUP"), day(3)); err == nil {
		t.Fatal("RecordSell() should have failed")
	}
	if got := len(ch); got != 0 {
		t.Errorf("pending signals after failed mutation = %d, want 0", got)
	}
}

func TestEngine_CurrenciesFirstAppearance(t *testing.T) {
	e, caja := newTestEngine(t)

	if _, err := e.RecordBuy(caja, "USD", A(10), M(320, "CUP"), day(1)); err != nil {
		t.Fatalf("RecordBuy() failed: %v", err)
	}
	if _, err := e.RecordBuy(caja, "EUR", A(10), M(350, "CUP"), day(2)); err != nil {
		t.Fatalf("RecordBuy() failed: %v", err)
	}
	if _, err := e.RecordExchange(caja, "USD", A(5), M(330, "CUP"), "MXN", M(17, "CUP"), day(3)); err != nil {
		t.Fatalf("RecordExchange() failed: %v", err)
	}

	var got []string
	for c := range e.Currencies(Ref(caja)) {
		got = append(got, c)
	}
	want := []string{"USD", "EUR", "MXN"}
	if len(got) != len(want) {
		t.Fatalf("Currencies() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Currencies()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
