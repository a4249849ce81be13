package postgres

import (
	"context"
	"fmt"
	"log"
)

// schemaStatements creates the tables and indexes this core owns.
// accounts and categories belong to external collaborators; they are
// created here only so a fresh database is usable in development.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id UUID PRIMARY KEY,
		user_id BIGINT NOT NULL,
		name TEXT NOT NULL,
		account_type TEXT NOT NULL DEFAULT 'BANK',
		currency TEXT NOT NULL DEFAULT 'BRL',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id UUID PRIMARY KEY,
		user_id BIGINT NOT NULL,
		name TEXT NOT NULL,
		kind TEXT NOT NULL DEFAULT 'EXPENSE',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS credit_cards (
		id UUID PRIMARY KEY,
		user_id BIGINT NOT NULL,
		name TEXT NOT NULL,
		brand TEXT,
		credit_limit DOUBLE PRECISION,
		closing_day INT,
		due_day INT NOT NULL,
		account_id UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS credit_purchases (
		id UUID PRIMARY KEY,
		user_id BIGINT NOT NULL,
		card_id UUID NOT NULL REFERENCES credit_cards(id),
		description TEXT NOT NULL,
		category_id UUID,
		purchase_date DATE NOT NULL,
		installment_count INT NOT NULL,
		amounts DOUBLE PRECISION[] NOT NULL,
		same_value BOOLEAN NOT NULL DEFAULT FALSE,
		first_due_date DATE NOT NULL,
		status TEXT NOT NULL DEFAULT 'OPEN',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS credit_installments (
		id UUID PRIMARY KEY,
		purchase_id UUID NOT NULL REFERENCES credit_purchases(id) ON DELETE CASCADE,
		card_id UUID NOT NULL,
		user_id BIGINT NOT NULL,
		number INT NOT NULL,
		amount DOUBLE PRECISION NOT NULL,
		due_date DATE NOT NULL,
		account_id UUID NOT NULL,
		paid BOOLEAN NOT NULL DEFAULT FALSE,
		paid_at TIMESTAMPTZ,
		ledger_entry_id UUID,
		legacy_transaction_id TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (purchase_id, number)
	)`,
	`CREATE TABLE IF NOT EXISTS ledger_entries (
		id UUID PRIMARY KEY,
		user_id BIGINT NOT NULL,
		entry_type TEXT NOT NULL,
		amount DOUBLE PRECISION NOT NULL,
		entry_date DATE NOT NULL,
		account_id UUID NOT NULL,
		category_id UUID,
		description TEXT NOT NULL,
		tag TEXT,
		purchase_id UUID,
		installment_id UUID,
		installment_number INT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	// At most one machine-generated payment entry per installment,
	// enforced at write time.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_ledger_entries_installment_payment
		ON ledger_entries (installment_id)
		WHERE tag = 'credit_installment_payment' AND installment_id IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS idx_credit_installments_overdue
		ON credit_installments (user_id, due_date)
		WHERE paid = FALSE`,
	`CREATE TABLE IF NOT EXISTS device_tokens (
		token TEXT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		platform TEXT NOT NULL DEFAULT 'android',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// EnsureSchema creates any missing tables and indexes. Statements are
// idempotent, so running it on every startup is safe.
func EnsureSchema(ctx context.Context, db *DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}

	log.Println("Database schema ensured")
	return nil
}
