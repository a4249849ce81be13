package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"parcela/internal/domain/purchase"
)

type InstallmentRepository struct {
	db *DB
}

func NewInstallmentRepository(db *DB) *InstallmentRepository {
	return &InstallmentRepository{db: db}
}

const installmentColumns = `id, purchase_id, card_id, user_id, number, amount, due_date,
	account_id, paid, paid_at, ledger_entry_id, legacy_transaction_id, created_at, updated_at`

func (r *InstallmentRepository) GetByID(ctx context.Context, id string) (*purchase.Installment, error) {
	query := `SELECT ` + installmentColumns + ` FROM credit_installments WHERE id = $1`

	inst, err := scanInstallment(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get installment: %w", err)
	}

	return inst, nil
}

func (r *InstallmentRepository) ListByPurchaseID(ctx context.Context, purchaseID string) ([]*purchase.Installment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM credit_installments
		WHERE purchase_id = $1
		ORDER BY number
	`

	rows, err := r.db.QueryContext(ctx, query, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list installments: %w", err)
	}
	defer rows.Close()

	return collectInstallments(rows)
}

func (r *InstallmentRepository) ListByUserID(ctx context.Context, userID int64, limit int) ([]*purchase.Installment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM credit_installments
		WHERE user_id = $1
		ORDER BY due_date, number
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list installments by user: %w", err)
	}
	defer rows.Close()

	return collectInstallments(rows)
}

func collectInstallments(rows *sql.Rows) ([]*purchase.Installment, error) {
	var installments []*purchase.Installment
	for rows.Next() {
		inst, err := scanInstallment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan installment: %w", err)
		}
		installments = append(installments, inst)
	}

	return installments, rows.Err()
}

func scanInstallment(row rowScanner) (*purchase.Installment, error) {
	var inst purchase.Installment
	var paidAt sql.NullTime
	var ledgerEntryID, legacyTransactionID sql.NullString

	err := row.Scan(
		&inst.ID, &inst.PurchaseID, &inst.CardID, &inst.UserID, &inst.Number,
		&inst.Amount, &inst.DueDate, &inst.AccountID,
		&inst.Paid, &paidAt, &ledgerEntryID, &legacyTransactionID,
		&inst.CreatedAt, &inst.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if paidAt.Valid {
		inst.PaidAt = &paidAt.Time
	}
	if ledgerEntryID.Valid {
		inst.LedgerEntryID = &ledgerEntryID.String
	}
	if legacyTransactionID.Valid {
		inst.LegacyTransactionID = &legacyTransactionID.String
	}

	return &inst, nil
}
