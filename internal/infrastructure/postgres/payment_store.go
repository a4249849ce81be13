package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"parcela/internal/domain/ledger"
	"parcela/internal/domain/payment"
	"parcela/internal/domain/purchase"
)

// PaymentStore implements payment.Store. Every transition re-reads the
// installment row under a row lock inside one transaction, performs the
// idempotent ledger lookup in the same transaction, and relies on the
// deterministic entry id plus the partial unique index to make a
// duplicate machine entry impossible even under concurrent callers.
type PaymentStore struct {
	db *DB
}

func NewPaymentStore(db *DB) *PaymentStore {
	return &PaymentStore{db: db}
}

const uniqueViolation = "23505"

// Pay transitions an installment to paid-linked. Idempotent: when the
// installment is already paid and linked nothing changes. A found
// pre-existing machine entry (by installment id, then by the legacy
// purchase+number+account key) is linked instead of creating a new one.
func (s *PaymentStore) Pay(ctx context.Context, params payment.PayParams) (*payment.PayResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	inst, err := lockInstallment(ctx, tx, params.InstallmentID)
	if err != nil {
		return nil, err
	}

	if inst.Paid && inst.LedgerEntryID != nil {
		entry, err := getEntryTx(ctx, tx, *inst.LedgerEntryID)
		if err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit: %w", err)
		}
		return &payment.PayResult{Installment: inst, Entry: entry, AlreadyPaid: true}, nil
	}

	entry, err := findExistingEntryTx(ctx, tx, inst, params.AccountID)
	if err != nil {
		return nil, err
	}

	created := false
	if entry == nil {
		entry, err = insertEntryTx(ctx, tx, inst, params)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
				// Another transaction created the entry between our
				// snapshot and this insert.
				return nil, payment.ErrConflict
			}
			return nil, err
		}
		created = true
	} else if entry.InstallmentID == nil {
		// Legacy entry found by the composite key; tag it with the
		// installment id so future lookups are a point read.
		_, err = tx.ExecContext(
			ctx,
			`UPDATE ledger_entries SET installment_id = $1 WHERE id = $2`,
			inst.ID, entry.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to adopt legacy entry: %w", err)
		}
		entry.InstallmentID = &inst.ID
	}

	updated, err := markPaidTx(ctx, tx, inst.ID, entry.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit payment: %w", err)
	}

	return &payment.PayResult{Installment: updated, Entry: entry, Created: created}, nil
}

// Unpay reverses a paid installment: the linked ledger entry is hard
// deleted and paid, paid-at and the link are cleared. A no-op when the
// installment is not paid.
func (s *PaymentStore) Unpay(ctx context.Context, installmentID string) (*payment.UnpayResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	inst, err := lockInstallment(ctx, tx, installmentID)
	if err != nil {
		return nil, err
	}

	if !inst.Paid {
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit: %w", err)
		}
		return &payment.UnpayResult{Installment: inst, AlreadyUnpaid: true}, nil
	}

	var deletedEntryID *string
	if inst.LedgerEntryID != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM ledger_entries WHERE id = $1`, *inst.LedgerEntryID); err != nil {
			return nil, fmt.Errorf("failed to delete ledger entry: %w", err)
		}
		deletedEntryID = inst.LedgerEntryID
	}

	row := tx.QueryRowContext(ctx, `
		UPDATE credit_installments
		SET paid = FALSE, paid_at = NULL, ledger_entry_id = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING `+installmentColumns,
		installmentID,
	)
	updated, err := scanInstallment(row)
	if err != nil {
		return nil, fmt.Errorf("failed to clear installment payment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reversal: %w", err)
	}

	return &payment.UnpayResult{Installment: updated, DeletedEntryID: deletedEntryID}, nil
}

// ListOverdueUnlinked returns unpaid installments due at or before
// cutoff with no ledger link and no legacy transaction, oldest first.
func (s *PaymentStore) ListOverdueUnlinked(ctx context.Context, userID int64, cutoff time.Time, limit int) ([]*purchase.Installment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM credit_installments
		WHERE user_id = $1
		  AND paid = FALSE
		  AND due_date <= $2
		  AND ledger_entry_id IS NULL
		  AND legacy_transaction_id IS NULL
		ORDER BY due_date, number
		LIMIT $3
	`

	rows, err := s.db.QueryContext(ctx, query, userID, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue installments: %w", err)
	}
	defer rows.Close()

	return collectInstallments(rows)
}

func lockInstallment(ctx context.Context, tx *sql.Tx, id string) (*purchase.Installment, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT `+installmentColumns+`
		FROM credit_installments
		WHERE id = $1
		FOR UPDATE
	`, id)

	inst, err := scanInstallment(row)
	if err == sql.ErrNoRows {
		return nil, payment.ErrInstallmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read installment: %w", err)
	}

	return inst, nil
}

// findExistingEntryTx performs the idempotent lookup inside the
// transaction: first the point read by installment id, then the legacy
// composite key for entries created before id tagging existed.
func findExistingEntryTx(ctx context.Context, tx *sql.Tx, inst *purchase.Installment, accountID string) (*ledger.Entry, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT `+ledgerColumns+`
		FROM ledger_entries
		WHERE installment_id = $1 AND tag = $2
	`, inst.ID, ledger.TagInstallmentPayment)

	entry, err := scanLedgerEntry(row)
	if err == nil {
		return entry, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to look up ledger entry: %w", err)
	}

	row = tx.QueryRowContext(ctx, `
		SELECT `+ledgerColumns+`
		FROM ledger_entries
		WHERE purchase_id = $1 AND installment_number = $2 AND account_id = $3
		  AND tag = $4 AND installment_id IS NULL
		ORDER BY created_at
		LIMIT 1
	`, inst.PurchaseID, inst.Number, accountID, ledger.TagInstallmentPayment)

	entry, err = scanLedgerEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up legacy ledger entry: %w", err)
	}

	return entry, nil
}

func insertEntryTx(ctx context.Context, tx *sql.Tx, inst *purchase.Installment, params payment.PayParams) (*ledger.Entry, error) {
	row := tx.QueryRowContext(ctx, `
		INSERT INTO ledger_entries
			(id, user_id, entry_type, amount, entry_date, account_id, category_id,
			 description, tag, purchase_id, installment_id, installment_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+ledgerColumns,
		params.EntryID, inst.UserID, ledger.TypeExpense, inst.Amount, params.EntryDate,
		params.AccountID, params.CategoryID, params.Description, ledger.TagInstallmentPayment,
		inst.PurchaseID, inst.ID, inst.Number,
	)

	entry, err := scanLedgerEntry(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger entry: %w", err)
	}

	return entry, nil
}

func markPaidTx(ctx context.Context, tx *sql.Tx, installmentID, entryID string) (*purchase.Installment, error) {
	row := tx.QueryRowContext(ctx, `
		UPDATE credit_installments
		SET paid = TRUE,
		    paid_at = COALESCE(paid_at, CURRENT_TIMESTAMP),
		    ledger_entry_id = $1,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
		RETURNING `+installmentColumns,
		entryID, installmentID,
	)

	inst, err := scanInstallment(row)
	if err != nil {
		return nil, fmt.Errorf("failed to mark installment paid: %w", err)
	}

	return inst, nil
}

func getEntryTx(ctx context.Context, tx *sql.Tx, id string) (*ledger.Entry, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+ledgerColumns+` FROM ledger_entries WHERE id = $1`, id)

	entry, err := scanLedgerEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}

	return entry, nil
}
