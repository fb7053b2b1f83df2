package cambio

import (
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/google/uuid"
)

// WalletID is the stable identifier of a wallet, referenced by every other
// entity in the book.
type WalletID string

// Wallet is an isolated cash drawer with its own ledger and inventory.
type Wallet struct {
	ID        WalletID
	Name      string
	ColorTag  string
	IsDefault bool
	CreatedAt time.Time
}

// WalletRef designates either one wallet or the consolidated view over all
// of them. Read operations accept either; mutations take a plain WalletID so
// the consolidated view can never be their target.
type WalletRef struct {
	id  WalletID
	all bool
}

// Consolidated is the reserved reference meaning "all wallets".
var Consolidated = WalletRef{all: true}

// Ref returns a reference to a single wallet.
func Ref(id WalletID) WalletRef { return WalletRef{id: id} }

func (r WalletRef) IsConsolidated() bool { return r.all }

// WalletID returns the referenced wallet id, or false for the consolidated view.
func (r WalletRef) WalletID() (WalletID, bool) { return r.id, !r.all }

func (r WalletRef) String() string {
	if r.all {
		return "consolidated"
	}
	return string(r.id)
}

// WalletRegistry owns the set of wallets and the active selection.
//
// Wallets are kept in creation order. Exactly one wallet is the default one;
// it is created on first run and cannot be deleted.
type WalletRegistry struct {
	wallets []Wallet
	active  WalletRef
}

// NewWalletRegistry creates a registry holding a single default wallet with
// the given name, which is also the active selection.
func NewWalletRegistry(defaultName string) *WalletRegistry {
	w := Wallet{
		ID:        WalletID(uuid.NewString()),
		Name:      defaultName,
		IsDefault: true,
		CreatedAt: time.Now(),
	}
	return &WalletRegistry{wallets: []Wallet{w}, active: Ref(w.ID)}
}

// Create adds a new wallet. Names are unique among live wallets,
// case-insensitively.
func (r *WalletRegistry) Create(name, colorTag string) (Wallet, error) {
	if strings.TrimSpace(name) == "" {
		return Wallet{}, fmt.Errorf("wallet name must not be blank")
	}
	if _, ok := r.byName(name); ok {
		return Wallet{}, fmt.Errorf("wallet %q already exists: %w", name, ErrDuplicateName)
	}
	w := Wallet{
		ID:        WalletID(uuid.NewString()),
		Name:      name,
		ColorTag:  colorTag,
		CreatedAt: time.Now(),
	}
	r.wallets = append(r.wallets, w)
	return w, nil
}

// Rename changes a wallet's name, keeping the uniqueness rule.
func (r *WalletRegistry) Rename(id WalletID, name string) error {
	i, ok := r.index(id)
	if !ok {
		return fmt.Errorf("cannot rename wallet %s: %w", id, ErrUnknownWallet)
	}
	if other, ok := r.byName(name); ok && other.ID != id {
		return fmt.Errorf("cannot rename wallet to %q: %w", name, ErrDuplicateName)
	}
	r.wallets[i].Name = name
	return nil
}

// Remove deletes a wallet from the registry. The caller is responsible for
// checking the wallet owns no transactions beforehand.
func (r *WalletRegistry) Remove(id WalletID) error {
	i, ok := r.index(id)
	if !ok {
		return fmt.Errorf("cannot delete wallet %s: %w", id, ErrUnknownWallet)
	}
	if r.wallets[i].IsDefault {
		return fmt.Errorf("wallet %q is the default wallet: %w", r.wallets[i].Name, ErrCannotDeleteDefault)
	}
	r.wallets = append(r.wallets[:i], r.wallets[i+1:]...)
	// Deleting the active wallet falls back to the default one.
	if cur, ok := r.active.WalletID(); ok && cur == id {
		r.active = Ref(r.Default().ID)
	}
	return nil
}

// SwitchActive selects the wallet all unqualified operations apply to.
// The consolidated reference is a valid selection for read purposes.
func (r *WalletRegistry) SwitchActive(ref WalletRef) error {
	if id, ok := ref.WalletID(); ok {
		if _, found := r.index(id); !found {
			return fmt.Errorf("cannot switch to wallet %s: %w", id, ErrUnknownWallet)
		}
	}
	r.active = ref
	return nil
}

// Active returns the current selection.
func (r *WalletRegistry) Active() WalletRef { return r.active }

// Default returns the default wallet.
func (r *WalletRegistry) Default() Wallet {
	for _, w := range r.wallets {
		if w.IsDefault {
			return w
		}
	}
	// The registry is constructed with a default wallet and Remove refuses
	// to delete it, so this is unreachable.
	panic("registry has no default wallet")
}

// Get returns the wallet with this id.
func (r *WalletRegistry) Get(id WalletID) (Wallet, bool) {
	if i, ok := r.index(id); ok {
		return r.wallets[i], true
	}
	return Wallet{}, false
}

// Has reports whether a wallet with this id exists.
func (r *WalletRegistry) Has(id WalletID) bool {
	_, ok := r.index(id)
	return ok
}

// Wallets iterates over wallets in creation order.
func (r *WalletRegistry) Wallets() iter.Seq[Wallet] {
	return func(yield func(Wallet) bool) {
		for _, w := range r.wallets {
			if !yield(w) {
				return
			}
		}
	}
}

// Members resolves a reference to the wallet ids it covers.
func (r *WalletRegistry) Members(ref WalletRef) []WalletID {
	if id, ok := ref.WalletID(); ok {
		if r.Has(id) {
			return []WalletID{id}
		}
		return nil
	}
	ids := make([]WalletID, 0, len(r.wallets))
	for _, w := range r.wallets {
		ids = append(ids, w.ID)
	}
	return ids
}

func (r *WalletRegistry) index(id WalletID) (int, bool) {
	for i, w := range r.wallets {
		if w.ID == id {
			return i, true
		}
	}
	return 0, false
}

func (r *WalletRegistry) byName(name string) (Wallet, bool) {
	for _, w := range r.wallets {
		if strings.EqualFold(w.Name, name) {
			return w, true
		}
	}
	return Wallet{}, false
}

// ByName returns the wallet with this name, matched case-insensitively.
func (r *WalletRegistry) ByName(name string) (Wallet, bool) { return r.byName(name) }
