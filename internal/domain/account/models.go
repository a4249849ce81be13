// Package account holds the slice of the accounts domain this core
// depends on. Accounts are managed by another service; cards and
// installments only reference them by id, so existence checks are the
// sole operation consumed here.
package account

import "errors"

// Domain errors
var (
	ErrAccountNotFound = errors.New("account not found")
)
