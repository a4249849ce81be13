package payment

import (
	"context"
	"time"

	"parcela/internal/domain/card"
	"parcela/internal/domain/purchase"
)

// AutoPayService is the purchase-scoped variant of the sweep, invoked
// when a purchase's installments are displayed. Unlike the sweep it
// runs eagerly on every display and stops at the first failure so the
// problem surfaces to the user.
type AutoPayService struct {
	store Store
	cards CardReader
	now   func() time.Time
}

// NewAutoPayService creates a new auto-pay service
func NewAutoPayService(store Store, cards CardReader) *AutoPayService {
	return &AutoPayService{
		store: store,
		cards: cards,
		now:   time.Now,
	}
}

// CheckAutoPaidInstallments pays every unpaid installment of the
// purchase whose due date has passed and which has no linked ledger
// entry yet. Entries are dated to the due date. Returns how many
// installments were paid; the first failure aborts and is returned.
func (s *AutoPayService) CheckAutoPaidInstallments(ctx context.Context, p *purchase.Purchase, installments []*purchase.Installment) (int, error) {
	today := dateOnly(s.now())

	c, err := s.cards.GetByID(ctx, p.CardID)
	if err != nil {
		return 0, err
	}
	if c == nil {
		return 0, card.ErrCardNotFound
	}

	paid := 0
	for _, inst := range installments {
		if inst.Paid || inst.LedgerEntryID != nil || inst.LegacyTransactionID != nil {
			continue
		}
		if dateOnly(inst.DueDate).After(today) {
			continue
		}

		_, err := s.store.Pay(ctx, PayParams{
			InstallmentID: inst.ID,
			AccountID:     inst.AccountID,
			EntryID:       EntryIDFor(inst.ID),
			EntryDate:     dateOnly(inst.DueDate),
			Description:   BuildEntryDescription(c.Name, p.Description, inst.Number, p.InstallmentCount),
			CategoryID:    p.CategoryID,
		})
		if err != nil {
			return paid, err
		}
		paid++
	}

	return paid, nil
}
