package card

import (
	"context"
)

// Repository defines the interface for card data access
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Card, error)
	GetByID(ctx context.Context, id string) (*Card, error)
	ListByUserID(ctx context.Context, userID int64) ([]*Card, error)
	Update(ctx context.Context, id string, params UpdateParams) (*Card, error)
	Delete(ctx context.Context, id string) error
}

// PurchaseCounter reports how many purchases reference a card.
// Implemented by the purchase repository; used for the delete guard.
type PurchaseCounter interface {
	CountByCardID(ctx context.Context, cardID string) (int64, error)
}
