package chain

import (
	"errors"
	"fmt"
)

// ErrTransactionFailed is returned when a state-changing call is rejected or
// reverts. Transports that cannot distinguish submission failure from
// confirmation failure collapse both into this error.
var ErrTransactionFailed = errors.New("transaction rejected or reverted")

// TxError carries the revert reason when the transport exposes one.
type TxError struct {
	Reason string
}

func (e *TxError) Error() string {
	if e.Reason == "" {
		return ErrTransactionFailed.Error()
	}
	return fmt.Sprintf("transaction reverted: %s", e.Reason)
}

func (e *TxError) Unwrap() error {
	return ErrTransactionFailed
}

// Revert builds a TxError with the given reason.
func Revert(reason string) error {
	return &TxError{Reason: reason}
}

// RevertReason extracts the revert reason from err, or "" when the transport
// did not expose one.
func RevertReason(err error) string {
	var txErr *TxError
	if errors.As(err, &txErr) {
		return txErr.Reason
	}
	return ""
}
