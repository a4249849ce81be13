package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"parcela/internal/domain/purchase"
)

type PurchaseRepository struct {
	db *DB
}

func NewPurchaseRepository(db *DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

const purchaseColumns = `id, user_id, card_id, description, category_id, purchase_date,
	installment_count, amounts, same_value, first_due_date, status, created_at, updated_at`

const insertInstallmentQuery = `
	INSERT INTO credit_installments
		(id, purchase_id, card_id, user_id, number, amount, due_date, account_id,
		 paid, paid_at, ledger_entry_id, legacy_transaction_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`

// CreateWithInstallments writes the purchase row and its full
// installment set in one transaction.
func (r *PurchaseRepository) CreateWithInstallments(ctx context.Context, p *purchase.Purchase, installments []*purchase.Installment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO credit_purchases
			(id, user_id, card_id, description, category_id, purchase_date,
			 installment_count, amounts, same_value, first_due_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = tx.ExecContext(
		ctx, query,
		p.ID, p.UserID, p.CardID, p.Description, p.CategoryID, p.PurchaseDate,
		p.InstallmentCount, pq.Array(p.Amounts), p.SameValue, p.FirstDueDate, p.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create purchase: %w", err)
	}

	for _, inst := range installments {
		_, err = tx.ExecContext(
			ctx, insertInstallmentQuery,
			inst.ID, inst.PurchaseID, inst.CardID, inst.UserID, inst.Number,
			inst.Amount, inst.DueDate, inst.AccountID,
			inst.Paid, inst.PaidAt, inst.LedgerEntryID, inst.LegacyTransactionID,
		)
		if err != nil {
			return fmt.Errorf("failed to create installment %d: %w", inst.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit purchase: %w", err)
	}

	return nil
}

func (r *PurchaseRepository) GetByID(ctx context.Context, id string) (*purchase.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM credit_purchases WHERE id = $1`

	p, err := scanPurchase(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase: %w", err)
	}

	return p, nil
}

func (r *PurchaseRepository) ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*purchase.Purchase, error) {
	query := `
		SELECT ` + purchaseColumns + `
		FROM credit_purchases
		WHERE user_id = $1
		ORDER BY purchase_date DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	defer rows.Close()

	var purchases []*purchase.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		purchases = append(purchases, p)
	}

	return purchases, rows.Err()
}

func (r *PurchaseRepository) CountByCardID(ctx context.Context, cardID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM credit_purchases WHERE card_id = $1`, cardID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count purchases: %w", err)
	}

	return count, nil
}

// ApplyMerge applies a purchase edit and its computed installment merge
// plan in one transaction: either the purchase row, every update,
// every create and every delete land together, or none do.
func (r *PurchaseRepository) ApplyMerge(ctx context.Context, p *purchase.Purchase, plan purchase.MergePlan) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE credit_purchases
		SET card_id = $1, description = $2, category_id = $3, purchase_date = $4,
		    installment_count = $5, amounts = $6, same_value = $7, first_due_date = $8,
		    status = $9, updated_at = CURRENT_TIMESTAMP
		WHERE id = $10
	`
	result, err := tx.ExecContext(
		ctx, query,
		p.CardID, p.Description, p.CategoryID, p.PurchaseDate,
		p.InstallmentCount, pq.Array(p.Amounts), p.SameValue, p.FirstDueDate,
		p.Status, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update purchase: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return purchase.ErrPurchaseNotFound
	}

	// Deletes first so freed installment numbers can be reused by
	// creates without tripping the unique constraint.
	for _, id := range plan.DeleteIDs {
		if _, err := tx.ExecContext(ctx, `DELETE FROM credit_installments WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete installment: %w", err)
		}
	}

	// The plan was computed from a read outside this transaction. The
	// CASE re-checks payment state on the live row so an installment
	// paid in between keeps its snapshot account.
	for _, inst := range plan.Updates {
		_, err := tx.ExecContext(ctx, `
			UPDATE credit_installments
			SET card_id = $1, number = $2, amount = $3, due_date = $4,
			    account_id = CASE WHEN paid OR ledger_entry_id IS NOT NULL
			                      THEN account_id ELSE $5 END,
			    updated_at = CURRENT_TIMESTAMP
			WHERE id = $6
		`, inst.CardID, inst.Number, inst.Amount, inst.DueDate, inst.AccountID, inst.ID)
		if err != nil {
			return fmt.Errorf("failed to update installment %d: %w", inst.Number, err)
		}
	}

	for _, inst := range plan.Creates {
		_, err := tx.ExecContext(
			ctx, insertInstallmentQuery,
			inst.ID, inst.PurchaseID, inst.CardID, inst.UserID, inst.Number,
			inst.Amount, inst.DueDate, inst.AccountID,
			inst.Paid, inst.PaidAt, inst.LedgerEntryID, inst.LegacyTransactionID,
		)
		if err != nil {
			return fmt.Errorf("failed to create installment %d: %w", inst.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit merge: %w", err)
	}

	return nil
}

// Delete removes the purchase; its installments go with it via the
// foreign key cascade. Ledger entries are deliberately left untouched.
func (r *PurchaseRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM credit_purchases WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete purchase: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return purchase.ErrPurchaseNotFound
	}

	return nil
}

func scanPurchase(row rowScanner) (*purchase.Purchase, error) {
	var p purchase.Purchase
	var categoryID sql.NullString
	var amounts pq.Float64Array

	err := row.Scan(
		&p.ID, &p.UserID, &p.CardID, &p.Description, &categoryID, &p.PurchaseDate,
		&p.InstallmentCount, &amounts, &p.SameValue, &p.FirstDueDate, &p.Status,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if categoryID.Valid {
		p.CategoryID = &categoryID.String
	}
	p.Amounts = []float64(amounts)

	return &p, nil
}
