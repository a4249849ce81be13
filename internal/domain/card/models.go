package card

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrCardNotFound = errors.New("card not found")
	ErrCardInUse    = errors.New("card has purchases and cannot be deleted")
	ErrForbidden    = errors.New("access forbidden")
	ErrInvalidInput = errors.New("invalid input")
)

// Card represents a credit card registered by a user.
type Card struct {
	ID          string     `json:"id"`
	UserID      int64      `json:"userId"`
	Name        string     `json:"name"`
	Brand       *string    `json:"brand,omitempty"`
	CreditLimit *float64   `json:"creditLimit,omitempty"`
	ClosingDay  *int       `json:"closingDay,omitempty"` // statement closing day-of-month
	DueDay      int        `json:"dueDay"`               // payment due day-of-month
	AccountID   string     `json:"accountId"`            // default payment account
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// CreateParams contains parameters for creating a new card
type CreateParams struct {
	UserID      int64
	Name        string
	Brand       *string
	CreditLimit *float64
	ClosingDay  *int
	DueDay      int
	AccountID   string
}

// Validate validates the create parameters
func (p CreateParams) Validate() error {
	if p.UserID <= 0 {
		return errors.New("valid user ID is required")
	}
	if p.Name == "" {
		return errors.New("card name is required")
	}
	if p.AccountID == "" {
		return errors.New("payment account is required")
	}
	if p.DueDay < 1 || p.DueDay > 31 {
		return errors.New("due day must be between 1 and 31")
	}
	if p.ClosingDay != nil && (*p.ClosingDay < 1 || *p.ClosingDay > 31) {
		return errors.New("closing day must be between 1 and 31")
	}
	if p.CreditLimit != nil && *p.CreditLimit <= 0 {
		return errors.New("credit limit must be positive")
	}
	return nil
}

// UpdateParams contains parameters for updating a card
type UpdateParams struct {
	Name        *string
	Brand       *string
	CreditLimit *float64
	ClosingDay  *int
	DueDay      *int
	AccountID   *string
}

// Validate validates the update parameters
func (p UpdateParams) Validate() error {
	if p.Name != nil && *p.Name == "" {
		return errors.New("card name cannot be empty")
	}
	if p.AccountID != nil && *p.AccountID == "" {
		return errors.New("payment account cannot be empty")
	}
	if p.DueDay != nil && (*p.DueDay < 1 || *p.DueDay > 31) {
		return errors.New("due day must be between 1 and 31")
	}
	if p.ClosingDay != nil && (*p.ClosingDay < 1 || *p.ClosingDay > 31) {
		return errors.New("closing day must be between 1 and 31")
	}
	if p.CreditLimit != nil && *p.CreditLimit <= 0 {
		return errors.New("credit limit must be positive")
	}
	return nil
}
