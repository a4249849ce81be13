package payment

import (
	"context"
	"errors"
	"log"
	"time"

	"parcela/internal/domain/purchase"
)

var errCardMissing = errors.New("card not found for installment")

// SweepBatchLimit bounds how many overdue installments one sweep
// processes, oldest first.
const SweepBatchLimit = 2000

// Notifier is told when a sweep reconciled installments. May be nil.
type Notifier interface {
	NotifyReconciled(ctx context.Context, userID int64, count int)
}

// SweepService reconciles overdue unpaid installments against the
// ledger: for each unpaid installment past due with no linked entry it
// creates exactly one ledger entry dated to the due date and marks the
// installment paid. Installments are processed independently; a failure
// on one is logged and skipped.
type SweepService struct {
	store     Store
	purchases PurchaseReader
	cards     CardReader
	tracker   *RunTracker
	notifier  Notifier
	now       func() time.Time
}

// NewSweepService creates a new reconciliation sweep service.
// notifier may be nil.
func NewSweepService(store Store, purchases PurchaseReader, cards CardReader, tracker *RunTracker, notifier Notifier) *SweepService {
	return &SweepService{
		store:     store,
		purchases: purchases,
		cards:     cards,
		tracker:   tracker,
		notifier:  notifier,
		now:       time.Now,
	}
}

// Reconcile runs the sweep for one user and returns how many
// installments were reconciled. At most one sweep per user runs per
// day; later invocations on the same day return 0 immediately.
func (s *SweepService) Reconcile(ctx context.Context, userID int64) (int, error) {
	today := dateOnly(s.now())

	if !s.tracker.MarkRan(userID, today) {
		return 0, nil
	}

	overdue, err := s.store.ListOverdueUnlinked(ctx, userID, today, SweepBatchLimit)
	if err != nil {
		// Free the day slot so the caller's retry is not a no-op.
		s.tracker.Reset(userID)
		return 0, err
	}

	processed := 0
	for _, inst := range overdue {
		if err := s.reconcileOne(ctx, inst); err != nil {
			log.Printf("Sweep skipped installment %s: %v", inst.ID, err)
			continue
		}
		processed++
	}

	if processed > 0 {
		log.Printf("Sweep reconciled %d of %d overdue installments for user %d", processed, len(overdue), userID)
		if s.notifier != nil {
			s.notifier.NotifyReconciled(ctx, userID, processed)
		}
	}

	return processed, nil
}

// reconcileOne pays a single overdue installment, dating the ledger
// entry to the due date rather than today. Missing purchase or card
// rows are data integrity issues, not fatal to the batch.
func (s *SweepService) reconcileOne(ctx context.Context, inst *purchase.Installment) error {
	p, err := s.purchases.GetByID(ctx, inst.PurchaseID)
	if err != nil {
		return err
	}
	if p == nil {
		return purchase.ErrPurchaseNotFound
	}

	c, err := s.cards.GetByID(ctx, inst.CardID)
	if err != nil {
		return err
	}
	if c == nil {
		// Installment without a card row; skip, don't fail the sweep.
		return errCardMissing
	}

	_, err = s.store.Pay(ctx, PayParams{
		InstallmentID: inst.ID,
		AccountID:     inst.AccountID,
		EntryID:       EntryIDFor(inst.ID),
		EntryDate:     dateOnly(inst.DueDate),
		Description:   BuildEntryDescription(c.Name, p.Description, inst.Number, p.InstallmentCount),
		CategoryID:    p.CategoryID,
	})
	return err
}
