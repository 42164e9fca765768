package loan

import "errors"

var (
	ErrNotFound            = errors.New("loan not found")
	ErrTransactionNotFound = errors.New("transaction not found")
)

// IsNotFound reports whether err means the loan or transaction is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrTransactionNotFound)
}
