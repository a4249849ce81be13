package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"parcela/internal/domain/card"
)

type CardRepository struct {
	db *DB
}

func NewCardRepository(db *DB) *CardRepository {
	return &CardRepository{db: db}
}

const cardColumns = `id, user_id, name, brand, credit_limit, closing_day, due_day, account_id, created_at, updated_at`

func (r *CardRepository) Create(ctx context.Context, params card.CreateParams) (*card.Card, error) {
	query := `
		INSERT INTO credit_cards (id, user_id, name, brand, credit_limit, closing_day, due_day, account_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + cardColumns

	row := r.db.QueryRowContext(
		ctx, query,
		uuid.NewString(), params.UserID, params.Name, params.Brand,
		params.CreditLimit, params.ClosingDay, params.DueDay, params.AccountID,
	)

	c, err := scanCard(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create card: %w", err)
	}

	return c, nil
}

func (r *CardRepository) GetByID(ctx context.Context, id string) (*card.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM credit_cards WHERE id = $1`

	c, err := scanCard(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}

	return c, nil
}

func (r *CardRepository) ListByUserID(ctx context.Context, userID int64) ([]*card.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM credit_cards WHERE user_id = $1 ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	var cards []*card.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, c)
	}

	return cards, rows.Err()
}

func (r *CardRepository) Update(ctx context.Context, id string, params card.UpdateParams) (*card.Card, error) {
	setClauses := []string{"updated_at = CURRENT_TIMESTAMP"}
	args := []any{}
	argIndex := 1

	addClause := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if params.Name != nil {
		addClause("name", *params.Name)
	}
	if params.Brand != nil {
		addClause("brand", *params.Brand)
	}
	if params.CreditLimit != nil {
		addClause("credit_limit", *params.CreditLimit)
	}
	if params.ClosingDay != nil {
		addClause("closing_day", *params.ClosingDay)
	}
	if params.DueDay != nil {
		addClause("due_day", *params.DueDay)
	}
	if params.AccountID != nil {
		addClause("account_id", *params.AccountID)
	}

	query := fmt.Sprintf(
		`UPDATE credit_cards SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), argIndex, cardColumns,
	)
	args = append(args, id)

	c, err := scanCard(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, card.ErrCardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update card: %w", err)
	}

	return c, nil
}

func (r *CardRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM credit_cards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return card.ErrCardNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*card.Card, error) {
	var c card.Card
	var brand sql.NullString
	var creditLimit sql.NullFloat64
	var closingDay sql.NullInt64

	err := row.Scan(
		&c.ID, &c.UserID, &c.Name, &brand, &creditLimit, &closingDay,
		&c.DueDay, &c.AccountID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if brand.Valid {
		c.Brand = &brand.String
	}
	if creditLimit.Valid {
		c.CreditLimit = &creditLimit.Float64
	}
	if closingDay.Valid {
		day := int(closingDay.Int64)
		c.ClosingDay = &day
	}

	return &c, nil
}
