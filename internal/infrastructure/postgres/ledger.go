package postgres

import (
	"database/sql"

	"parcela/internal/domain/ledger"
)

// Ledger entries are written and deleted exclusively inside the payment
// store's transactions; these helpers are shared by its statements.

const ledgerColumns = `id, user_id, entry_type, amount, entry_date, account_id, category_id,
	description, tag, purchase_id, installment_id, installment_number, created_at`

func scanLedgerEntry(row rowScanner) (*ledger.Entry, error) {
	var e ledger.Entry
	var categoryID, tag, purchaseID, installmentID sql.NullString
	var installmentNumber sql.NullInt64

	err := row.Scan(
		&e.ID, &e.UserID, &e.Type, &e.Amount, &e.EntryDate, &e.AccountID, &categoryID,
		&e.Description, &tag, &purchaseID, &installmentID, &installmentNumber, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if categoryID.Valid {
		e.CategoryID = &categoryID.String
	}
	if tag.Valid {
		e.Tag = tag.String
	}
	if purchaseID.Valid {
		e.PurchaseID = &purchaseID.String
	}
	if installmentID.Valid {
		e.InstallmentID = &installmentID.String
	}
	if installmentNumber.Valid {
		number := int(installmentNumber.Int64)
		e.InstallmentNumber = &number
	}

	return &e, nil
}
