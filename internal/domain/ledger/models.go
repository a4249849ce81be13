package ledger

import "time"

const (
	// TypeExpense marks an entry that moves money out of an account
	TypeExpense = "EXPENSE"

	// TagInstallmentPayment identifies machine-generated entries created
	// when a credit installment is paid. The tag scopes every idempotent
	// lookup so user-entered movements are never matched.
	TagInstallmentPayment = "credit_installment_payment"
)

// Entry is a record in the general financial ledger. The purchase and
// installment back-references exist solely for idempotent lookup; the
// ledger owns its own lifecycle and survives purchase deletion.
type Entry struct {
	ID                string    `json:"id"`
	UserID            int64     `json:"userId"`
	Type              string    `json:"type"`
	Amount            float64   `json:"amount"`
	EntryDate         time.Time `json:"entryDate"`
	AccountID         string    `json:"accountId"`
	CategoryID        *string   `json:"categoryId,omitempty"`
	Description       string    `json:"description"`
	Tag               string    `json:"tag,omitempty"`
	PurchaseID        *string   `json:"purchaseId,omitempty"`
	InstallmentID     *string   `json:"installmentId,omitempty"`
	InstallmentNumber *int      `json:"installmentNumber,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

