package purchase

import (
	"context"
)

// Repository defines the interface for purchase data access.
// CreateWithInstallments, ApplyMerge and Delete are atomic: either the
// purchase row and its full installment set change together or nothing
// does.
type Repository interface {
	CreateWithInstallments(ctx context.Context, p *Purchase, installments []*Installment) error
	GetByID(ctx context.Context, id string) (*Purchase, error)
	ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*Purchase, error)
	CountByCardID(ctx context.Context, cardID string) (int64, error)
	ApplyMerge(ctx context.Context, p *Purchase, plan MergePlan) error
	Delete(ctx context.Context, id string) error
}

// InstallmentRepository defines the interface for installment reads.
// Writes happen through the purchase repository's atomic operations and
// the payment store.
type InstallmentRepository interface {
	GetByID(ctx context.Context, id string) (*Installment, error)
	ListByPurchaseID(ctx context.Context, purchaseID string) ([]*Installment, error)
	ListByUserID(ctx context.Context, userID int64, limit int) ([]*Installment, error)
}
