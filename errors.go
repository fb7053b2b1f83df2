package cambio

import "errors"

// Every rejection the engine produces wraps one of these sentinels, so
// callers can branch with errors.Is while the message carries the wallet,
// currency and amount context needed for a precise user-facing message.
var (
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrDuplicateName         = errors.New("duplicate wallet name")
	ErrCannotDeleteDefault   = errors.New("cannot delete the default wallet")
	ErrWalletNotEmpty        = errors.New("wallet still owns transactions")
	ErrUnknownWallet         = errors.New("unknown wallet")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrInconsistentHistory   = errors.New("inconsistent history")
	ErrCorruptState          = errors.New("corrupt persisted state")
)
