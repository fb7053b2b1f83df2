package cambio

import (
	"errors"
	"testing"
)

func TestWalletRegistry_CreateRejectsDuplicates(t *testing.T) {
	r := NewWalletRegistry("Caja principal")

	if _, err := r.Create("MLC", ""); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	// Uniqueness is case-insensitive.
	if _, err := r.Create("mlc", ""); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("Create() with a duplicate name = %v, want ErrDuplicateName", err)
	}
	// A blank name is a validation failure, not a name collision.
	if _, err := r.Create("  ", ""); err == nil {
		t.Error("Create() with a blank name = nil error, want one")
	} else if errors.Is(err, ErrDuplicateName) {
		t.Errorf("Create() with a blank name = %v, want a plain validation error", err)
	}
}

func TestWalletRegistry_Rename(t *testing.T) {
	r := NewWalletRegistry("Caja principal")
	w, err := r.Create("MLC", "")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if err := r.Rename(w.ID, "Divisas"); err != nil {
		t.Fatalf("Rename() failed: %v", err)
	}
	if got, _ := r.Get(w.ID); got.Name != "Divisas" {
		t.Errorf("Get() after rename = %q, want %q", got.Name, "Divisas")
	}
	// Renaming to itself, with different casing, is allowed.
	if err := r.Rename(w.ID, "divisas"); err != nil {
		t.Errorf("Rename() to own name = %v, want nil", err)
	}
	if err := r.Rename(w.ID, "Caja principal"); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("Rename() to a taken name = %v, want ErrDuplicateName", err)
	}
	if err := r.Rename("nope", "x"); !errors.Is(err, ErrUnknownWallet) {
		t.Errorf("Rename() of an unknown wallet = %v, want ErrUnknownWallet", err)
	}
}

func TestWalletRegistry_DefaultIsProtected(t *testing.T) {
	r := NewWalletRegistry("Caja principal")
	if err := r.Remove(r.Default().ID); !errors.Is(err, ErrCannotDeleteDefault) {
		t.Errorf("Remove() of the default wallet = %v, want ErrCannotDeleteDefault", err)
	}
}

func TestWalletRegistry_SwitchActive(t *testing.T) {
	r := NewWalletRegistry("Caja principal")
	w, err := r.Create("MLC", "")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if err := r.SwitchActive(Ref(w.ID)); err != nil {
		t.Fatalf("SwitchActive() failed: %v", err)
	}
	if id, ok := r.Active().WalletID(); !ok || id != w.ID {
		t.Errorf("Active() = %s, want %s", r.Active(), w.ID)
	}

	if err := r.SwitchActive(Consolidated); err != nil {
		t.Fatalf("SwitchActive(Consolidated) failed: %v", err)
	}
	if !r.Active().IsConsolidated() {
		t.Error("Active() is not the consolidated view")
	}

	if err := r.SwitchActive(Ref("nope")); !errors.Is(err, ErrUnknownWallet) {
		t.Errorf("SwitchActive() to an unknown wallet = %v, want ErrUnknownWallet", err)
	}
}

func TestWalletRegistry_Members(t *testing.T) {
	r := NewWalletRegistry("Caja principal")
	w, err := r.Create("MLC", "")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if got := r.Members(Ref(w.ID)); len(got) != 1 || got[0] != w.ID {
		t.Errorf("Members(single) = %v, want [%s]", got, w.ID)
	}
	if got := r.Members(Consolidated); len(got) != 2 {
		t.Errorf("Members(Consolidated) covers %d wallets, want 2", len(got))
	}
	if got := r.Members(Ref("nope")); got != nil {
		t.Errorf("Members(unknown) = %v, want nil", got)
	}
}
