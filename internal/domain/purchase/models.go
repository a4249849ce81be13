package purchase

import (
	"errors"
	"time"
)

// Purchase status values
var purchaseStatuses = map[string]struct{}{
	"OPEN":   {},
	"CLOSED": {},
}

const (
	// MaxInstallmentCount is the upper bound on installments per purchase
	MaxInstallmentCount = 48

	// MaxListLimit caps unbounded owner-scoped installment listings
	MaxListLimit = 5000
)

// Domain errors
var (
	ErrPurchaseNotFound = errors.New("purchase not found")
	ErrForbidden        = errors.New("access forbidden")
	ErrInvalidStatus    = errors.New("invalid purchase status")
)

// Purchase represents a credit card purchase paid in installments.
// Status is informational only; it never gates any operation.
type Purchase struct {
	ID               string    `json:"id"`
	UserID           int64     `json:"userId"`
	CardID           string    `json:"cardId"`
	Description      string    `json:"description"`
	CategoryID       *string   `json:"categoryId,omitempty"`
	PurchaseDate     time.Time `json:"purchaseDate"`
	InstallmentCount int       `json:"installmentCount"`
	Amounts          []float64 `json:"amounts"`
	SameValue        bool      `json:"sameValue"`
	FirstDueDate     time.Time `json:"firstDueDate"`
	Status           string    `json:"status"` // OPEN or CLOSED
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Installment is one scheduled repayment unit of a purchase.
// AccountID is a snapshot of the card's payment account taken when the
// installment was created; it may diverge from the card's current account.
// LedgerEntryID links the installment to at most one ledger entry.
type Installment struct {
	ID                  string     `json:"id"`
	PurchaseID          string     `json:"purchaseId"`
	CardID              string     `json:"cardId"`
	UserID              int64      `json:"userId"`
	Number              int        `json:"number"` // 1-based, unique per purchase
	Amount              float64    `json:"amount"`
	DueDate             time.Time  `json:"dueDate"`
	AccountID           string     `json:"accountId"`
	Paid                bool       `json:"paid"`
	PaidAt              *time.Time `json:"paidAt,omitempty"`
	LedgerEntryID       *string    `json:"ledgerEntryId,omitempty"`
	LegacyTransactionID *string    `json:"legacyTransactionId,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// CreateParams contains parameters for creating a new purchase
type CreateParams struct {
	UserID           int64
	CardID           string
	Description      string
	CategoryID       *string
	PurchaseDate     time.Time
	InstallmentCount int
	Amounts          []float64
	SameValue        bool
	FirstDueDate     time.Time
	Status           string
}

// Validate validates the create parameters
func (p CreateParams) Validate() error {
	if p.UserID <= 0 {
		return errors.New("valid user ID is required")
	}
	if p.CardID == "" {
		return errors.New("card ID is required")
	}
	if p.Description == "" {
		return errors.New("description is required")
	}
	if p.InstallmentCount < 1 || p.InstallmentCount > MaxInstallmentCount {
		return errors.New("installment count must be between 1 and 48")
	}
	if p.FirstDueDate.IsZero() {
		return errors.New("first due date is required")
	}
	if p.Status != "" && !IsValidStatus(p.Status) {
		return ErrInvalidStatus
	}
	for _, amount := range NormalizeAmounts(p.Amounts, p.InstallmentCount, p.SameValue) {
		if amount <= 0 {
			return errors.New("installment amounts must be positive")
		}
	}
	return nil
}

// UpdateParams contains parameters for editing a purchase in place
type UpdateParams struct {
	CardID           *string
	Description      *string
	CategoryID       *string
	PurchaseDate     *time.Time
	InstallmentCount *int
	Amounts          []float64
	SameValue        *bool
	FirstDueDate     *time.Time
	Status           *string
}

// Validate validates the update parameters
func (p UpdateParams) Validate() error {
	if p.CardID != nil && *p.CardID == "" {
		return errors.New("card ID cannot be empty")
	}
	if p.Description != nil && *p.Description == "" {
		return errors.New("description cannot be empty")
	}
	if p.InstallmentCount != nil && (*p.InstallmentCount < 1 || *p.InstallmentCount > MaxInstallmentCount) {
		return errors.New("installment count must be between 1 and 48")
	}
	if p.FirstDueDate != nil && p.FirstDueDate.IsZero() {
		return errors.New("first due date is required")
	}
	if p.Status != nil && !IsValidStatus(*p.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// MergedInstallment carries caller-supplied payment state for an
// installment number during a purchase edit. The call site pre-merges
// this state before invoking the merge engine; numbers absent from the
// slice default to unpaid when newly created.
type MergedInstallment struct {
	Number        int        `json:"number"`
	Paid          bool       `json:"paid"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
	LedgerEntryID *string    `json:"ledgerEntryId,omitempty"`
}

// IsValidStatus checks if the provided status is valid
func IsValidStatus(s string) bool {
	_, ok := purchaseStatuses[s]
	return ok
}
