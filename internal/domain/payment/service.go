package payment

import (
	"context"
	"fmt"
	"log"
	"time"

	"parcela/internal/domain/card"
	"parcela/internal/domain/purchase"
)

// PurchaseReader provides point reads of purchases
type PurchaseReader interface {
	GetByID(ctx context.Context, id string) (*purchase.Purchase, error)
}

// CardReader provides point reads of cards
type CardReader interface {
	GetByID(ctx context.Context, id string) (*card.Card, error)
}

// Service toggles the payment state of individual installments. Paying
// creates (or relinks) exactly one ledger entry; reversing deletes it.
type Service struct {
	store        Store
	installments purchase.InstallmentRepository
	purchases    PurchaseReader
	cards        CardReader
	now          func() time.Time
}

// NewService creates a new payment service
func NewService(store Store, installments purchase.InstallmentRepository, purchases PurchaseReader, cards CardReader) *Service {
	return &Service{
		store:        store,
		installments: installments,
		purchases:    purchases,
		cards:        cards,
		now:          time.Now,
	}
}

// SetInstallmentPaid pays or reverses a single installment of a
// purchase. Paying is idempotent: a second call finds the installment
// already paid and linked and changes nothing. The ledger entry for a
// manual payment is dated to today, not to the installment's due date.
func (s *Service) SetInstallmentPaid(ctx context.Context, purchaseID, installmentID, accountID string, paid bool) (*purchase.Installment, error) {
	inst, err := s.installments.GetByID(ctx, installmentID)
	if err != nil {
		return nil, err
	}
	if inst == nil || inst.PurchaseID != purchaseID {
		return nil, ErrInstallmentNotFound
	}

	if !paid {
		result, err := s.store.Unpay(ctx, installmentID)
		if err != nil {
			return nil, err
		}
		if result.DeletedEntryID != nil {
			log.Printf("Reversed installment %s, deleted ledger entry %s", installmentID, *result.DeletedEntryID)
		}
		return result.Installment, nil
	}

	if accountID == "" {
		return nil, ErrAccountRequired
	}
	if inst.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	p, err := s.purchases.GetByID(ctx, inst.PurchaseID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, purchase.ErrPurchaseNotFound
	}

	c, err := s.cards.GetByID(ctx, inst.CardID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, card.ErrCardNotFound
	}

	result, err := s.store.Pay(ctx, PayParams{
		InstallmentID: installmentID,
		AccountID:     accountID,
		EntryID:       EntryIDFor(installmentID),
		EntryDate:     dateOnly(s.now()),
		Description:   BuildEntryDescription(c.Name, p.Description, inst.Number, p.InstallmentCount),
		CategoryID:    p.CategoryID,
	})
	if err != nil {
		return nil, err
	}

	if result.Created {
		log.Printf("Paid installment %s, created ledger entry %s", installmentID, result.Entry.ID)
	} else if !result.AlreadyPaid {
		log.Printf("Paid installment %s, linked existing ledger entry %s", installmentID, result.Entry.ID)
	}

	return result.Installment, nil
}

// BuildEntryDescription builds the ledger entry description for an
// installment payment.
func BuildEntryDescription(cardName, purchaseDescription string, number, count int) string {
	return fmt.Sprintf("%s - %s (parcela %d/%d)", cardName, purchaseDescription, number, count)
}

// dateOnly truncates a timestamp to its calendar date.
func dateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
