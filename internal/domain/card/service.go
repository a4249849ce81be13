package card

import (
	"context"
	"errors"

	"parcela/internal/domain/account"
)

// AccountChecker reports whether a payment account exists. Implemented
// by the account repository; accounts themselves are managed elsewhere.
type AccountChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Service contains the business logic for card operations
type Service struct {
	repo      Repository
	purchases PurchaseCounter
	accounts  AccountChecker
}

// NewService creates a new card service
func NewService(repo Repository, purchases PurchaseCounter, accounts AccountChecker) *Service {
	return &Service{repo: repo, purchases: purchases, accounts: accounts}
}

// CreateCard creates a new card with business validation
func (s *Service) CreateCard(ctx context.Context, params CreateParams) (*Card, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	if err := s.checkAccount(ctx, params.AccountID); err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, params)
}

func (s *Service) checkAccount(ctx context.Context, accountID string) error {
	ok, err := s.accounts.Exists(ctx, accountID)
	if err != nil {
		return err
	}
	if !ok {
		return account.ErrAccountNotFound
	}
	return nil
}

// GetCard retrieves a card by ID and verifies user ownership
func (s *Service) GetCard(ctx context.Context, cardID string, userID int64) (*Card, error) {
	c, err := s.repo.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCardNotFound
	}

	if c.UserID != userID {
		return nil, ErrForbidden
	}

	return c, nil
}

// ListCardsByUserID retrieves all cards for a specific user
func (s *Service) ListCardsByUserID(ctx context.Context, userID int64) ([]*Card, error) {
	if userID <= 0 {
		return nil, errors.New("valid user ID is required")
	}

	return s.repo.ListByUserID(ctx, userID)
}

// UpdateCard updates a card after verifying ownership
func (s *Service) UpdateCard(ctx context.Context, cardID string, userID int64, params UpdateParams) (*Card, error) {
	if _, err := s.GetCard(ctx, cardID, userID); err != nil {
		return nil, err
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}

	if params.AccountID != nil {
		if err := s.checkAccount(ctx, *params.AccountID); err != nil {
			return nil, err
		}
	}

	return s.repo.Update(ctx, cardID, params)
}

// DeleteCard deletes a card after verifying ownership.
// Deletion is blocked while any purchase still references the card.
func (s *Service) DeleteCard(ctx context.Context, cardID string, userID int64) error {
	if _, err := s.GetCard(ctx, cardID, userID); err != nil {
		return err
	}

	count, err := s.purchases.CountByCardID(ctx, cardID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCardInUse
	}

	return s.repo.Delete(ctx, cardID)
}
