package payment

import (
	"context"
	"errors"
	"time"

	"parcela/internal/domain/ledger"
	"parcela/internal/domain/purchase"
)

// Domain errors
var (
	ErrInstallmentNotFound = errors.New("installment not found")
	ErrAccountRequired     = errors.New("payment account is required")
	ErrInvalidAmount       = errors.New("installment amount must be positive")
	ErrConflict            = errors.New("could not complete, try again")
)

// PayParams describes a pay transition. Entry fields are a prototype
// for the ledger entry to create when no pre-existing machine entry can
// be linked; the store decides inside its transaction which branch
// applies.
type PayParams struct {
	InstallmentID string
	AccountID     string
	EntryID       string // deterministic, derived from the installment id
	EntryDate     time.Time
	Description   string
	CategoryID    *string
}

// PayResult reports the outcome of a pay transition
type PayResult struct {
	Installment *purchase.Installment
	Entry       *ledger.Entry
	Created     bool // a new ledger entry was written
	AlreadyPaid bool // installment was already paid and linked; nothing changed
}

// UnpayResult reports the outcome of an unpay transition
type UnpayResult struct {
	Installment    *purchase.Installment
	DeletedEntryID *string
	AlreadyUnpaid  bool
}

// Store is the atomic read-modify-write surface over installments and
// the ledger. Each call re-reads the installment's current state inside
// one transaction, so concurrent toggles serialize on the row and the
// deterministic entry id makes duplicate creation impossible.
type Store interface {
	Pay(ctx context.Context, params PayParams) (*PayResult, error)
	Unpay(ctx context.Context, installmentID string) (*UnpayResult, error)

	// ListOverdueUnlinked returns unpaid installments with due date at
	// or before cutoff and no linked ledger entry or legacy transaction,
	// oldest first, at most limit rows.
	ListOverdueUnlinked(ctx context.Context, userID int64, cutoff time.Time, limit int) ([]*purchase.Installment, error)
}
