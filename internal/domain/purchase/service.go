package purchase

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"parcela/internal/domain/card"
	"parcela/internal/domain/category"
)

// CardReader provides point reads of cards. Implemented by the card
// repository; used to snapshot the payment account on create/edit.
type CardReader interface {
	GetByID(ctx context.Context, id string) (*card.Card, error)
}

// CategoryChecker reports whether a category exists. Implemented by
// the category repository; categories themselves are managed elsewhere.
type CategoryChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Service contains the business logic for purchase operations
type Service struct {
	repo         Repository
	installments InstallmentRepository
	cards        CardReader
	categories   CategoryChecker
	newID        func() string
}

// NewService creates a new purchase service
func NewService(repo Repository, installments InstallmentRepository, cards CardReader, categories CategoryChecker) *Service {
	return &Service{
		repo:         repo,
		installments: installments,
		cards:        cards,
		categories:   categories,
		newID:        uuid.NewString,
	}
}

func (s *Service) checkCategory(ctx context.Context, categoryID *string) error {
	if categoryID == nil {
		return nil
	}
	ok, err := s.categories.Exists(ctx, *categoryID)
	if err != nil {
		return err
	}
	if !ok {
		return category.ErrCategoryNotFound
	}
	return nil
}

// CreatePurchase creates a purchase and its full installment set in one
// atomic write. Each installment carries its ordinal number, its due
// date from the schedule, its normalized amount and a snapshot of the
// card's current payment account.
func (s *Service) CreatePurchase(ctx context.Context, params CreateParams) (*Purchase, []*Installment, error) {
	if err := params.Validate(); err != nil {
		return nil, nil, err
	}

	c, err := s.cards.GetByID(ctx, params.CardID)
	if err != nil {
		return nil, nil, err
	}
	if c == nil {
		return nil, nil, card.ErrCardNotFound
	}
	if c.UserID != params.UserID {
		return nil, nil, ErrForbidden
	}

	if err := s.checkCategory(ctx, params.CategoryID); err != nil {
		return nil, nil, err
	}

	status := params.Status
	if status == "" {
		status = "OPEN"
	}

	p := &Purchase{
		ID:               s.newID(),
		UserID:           params.UserID,
		CardID:           params.CardID,
		Description:      params.Description,
		CategoryID:       params.CategoryID,
		PurchaseDate:     params.PurchaseDate,
		InstallmentCount: params.InstallmentCount,
		Amounts:          NormalizeAmounts(params.Amounts, params.InstallmentCount, params.SameValue),
		SameValue:        params.SameValue,
		FirstDueDate:     params.FirstDueDate,
		Status:           status,
	}

	schedule := BuildSchedule(p.FirstDueDate, p.InstallmentCount)

	installments := make([]*Installment, 0, p.InstallmentCount)
	for i := 0; i < p.InstallmentCount; i++ {
		installments = append(installments, &Installment{
			ID:         s.newID(),
			PurchaseID: p.ID,
			CardID:     p.CardID,
			UserID:     p.UserID,
			Number:     i + 1,
			Amount:     p.Amounts[i],
			DueDate:    schedule[i],
			AccountID:  c.AccountID,
		})
	}

	if err := s.repo.CreateWithInstallments(ctx, p, installments); err != nil {
		return nil, nil, err
	}

	log.Printf("Created purchase %s with %d installments for user %d", p.ID, len(installments), p.UserID)

	return p, installments, nil
}

// GetPurchase retrieves a purchase by ID and verifies user ownership
func (s *Service) GetPurchase(ctx context.Context, purchaseID string, userID int64) (*Purchase, error) {
	p, err := s.repo.GetByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPurchaseNotFound
	}

	if p.UserID != userID {
		return nil, ErrForbidden
	}

	return p, nil
}

// ListPurchasesByUserID retrieves purchases for a specific user
func (s *Service) ListPurchasesByUserID(ctx context.Context, userID int64, limit, offset int) ([]*Purchase, error) {
	if userID <= 0 {
		return nil, errors.New("valid user ID is required")
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.ListByUserID(ctx, userID, limit, offset)
}

// UpdatePurchase edits a purchase in place and reconciles its
// installment set against the new count, amounts and schedule without
// discarding payment history. The merged slice carries caller-supplied
// payment state for installment numbers that should not start unpaid.
// The whole merge is applied in one transaction.
func (s *Service) UpdatePurchase(ctx context.Context, purchaseID string, userID int64, params UpdateParams, merged []MergedInstallment) (*Purchase, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	p, err := s.GetPurchase(ctx, purchaseID, userID)
	if err != nil {
		return nil, err
	}

	updated := *p
	if params.CardID != nil {
		updated.CardID = *params.CardID
	}
	if params.Description != nil {
		updated.Description = *params.Description
	}
	if params.CategoryID != nil {
		if err := s.checkCategory(ctx, params.CategoryID); err != nil {
			return nil, err
		}
		updated.CategoryID = params.CategoryID
	}
	if params.PurchaseDate != nil {
		updated.PurchaseDate = *params.PurchaseDate
	}
	if params.InstallmentCount != nil {
		updated.InstallmentCount = *params.InstallmentCount
	}
	if params.Amounts != nil {
		updated.Amounts = params.Amounts
	}
	if params.SameValue != nil {
		updated.SameValue = *params.SameValue
	}
	if params.FirstDueDate != nil {
		updated.FirstDueDate = *params.FirstDueDate
	}
	if params.Status != nil {
		updated.Status = *params.Status
	}
	updated.Amounts = NormalizeAmounts(updated.Amounts, updated.InstallmentCount, updated.SameValue)

	for _, amount := range updated.Amounts {
		if amount <= 0 {
			return nil, errors.New("installment amounts must be positive")
		}
	}

	c, err := s.cards.GetByID(ctx, updated.CardID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, card.ErrCardNotFound
	}
	if c.UserID != userID {
		return nil, ErrForbidden
	}

	existing, err := s.installments.ListByPurchaseID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}

	plan := BuildMergePlan(&updated, existing, merged, c.AccountID, s.newID)

	if err := s.repo.ApplyMerge(ctx, &updated, plan); err != nil {
		return nil, err
	}

	log.Printf("Merged purchase %s: %d updated, %d created, %d deleted",
		purchaseID, len(plan.Updates), len(plan.Creates), len(plan.DeleteIDs))

	return &updated, nil
}

// DeletePurchase deletes a purchase and all its installments after
// verifying ownership. Ledger entries already created for paid
// installments are left untouched; they become informational orphans.
func (s *Service) DeletePurchase(ctx context.Context, purchaseID string, userID int64) error {
	if _, err := s.GetPurchase(ctx, purchaseID, userID); err != nil {
		return err
	}

	return s.repo.Delete(ctx, purchaseID)
}

// ListInstallments returns all installments of a purchase, ordered by
// number, after verifying ownership.
func (s *Service) ListInstallments(ctx context.Context, purchaseID string, userID int64) ([]*Installment, error) {
	if _, err := s.GetPurchase(ctx, purchaseID, userID); err != nil {
		return nil, err
	}

	return s.installments.ListByPurchaseID(ctx, purchaseID)
}

// ListInstallmentsByUserID returns installments across all of a user's
// purchases, for dashboards and diagnostics. The limit is capped to
// avoid pathological scans.
func (s *Service) ListInstallmentsByUserID(ctx context.Context, userID int64, limit int) ([]*Installment, error) {
	if userID <= 0 {
		return nil, errors.New("valid user ID is required")
	}
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}

	return s.installments.ListByUserID(ctx, userID, limit)
}
