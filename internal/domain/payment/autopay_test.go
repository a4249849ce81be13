package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"parcela/internal/domain/card"
	"parcela/internal/domain/ledger"
	"parcela/internal/domain/purchase"
)

func autoPayFixture(store *MockStore) (*AutoPayService, *purchase.Purchase) {
	_, cards := readers()
	s := NewAutoPayService(store, cards)
	s.now = func() time.Time { return date(2024, time.March, 10) }

	p := &purchase.Purchase{
		ID:               "pur-1",
		UserID:           1,
		CardID:           "card-1",
		Description:      "Notebook",
		InstallmentCount: 4,
	}
	return s, p
}

func TestCheckAutoPaidInstallments(t *testing.T) {
	ctx := context.Background()

	entryID := "entry-1"
	legacyID := "tx-legacy"
	paidAt := date(2024, time.January, 16)

	installments := []*purchase.Installment{
		// Paid and linked: untouched.
		{ID: "inst-1", PurchaseID: "pur-1", CardID: "card-1", Number: 1, Amount: 100.0,
			DueDate: date(2024, time.January, 15), AccountID: "acc-1",
			Paid: true, PaidAt: &paidAt, LedgerEntryID: &entryID},
		// Overdue, unlinked: paid by the pass.
		{ID: "inst-2", PurchaseID: "pur-1", CardID: "card-1", Number: 2, Amount: 100.0,
			DueDate: date(2024, time.February, 15), AccountID: "acc-1"},
		// Linked to a legacy transaction: untouched.
		{ID: "inst-3", PurchaseID: "pur-1", CardID: "card-1", Number: 3, Amount: 100.0,
			DueDate: date(2024, time.March, 1), AccountID: "acc-1",
			LegacyTransactionID: &legacyID},
		// Future due date: untouched.
		{ID: "inst-4", PurchaseID: "pur-1", CardID: "card-1", Number: 4, Amount: 100.0,
			DueDate: date(2024, time.April, 15), AccountID: "acc-1"},
	}

	var gotParams []PayParams
	store := &MockStore{
		PayFunc: func(ctx context.Context, params PayParams) (*PayResult, error) {
			gotParams = append(gotParams, params)
			return &PayResult{Installment: &purchase.Installment{ID: params.InstallmentID, Paid: true}, Entry: &ledger.Entry{ID: params.EntryID}, Created: true}, nil
		},
	}

	service, p := autoPayFixture(store)

	paid, err := service.CheckAutoPaidInstallments(ctx, p, installments)
	if err != nil {
		t.Fatalf("CheckAutoPaidInstallments() unexpected error: %v", err)
	}
	if paid != 1 {
		t.Fatalf("CheckAutoPaidInstallments() = %d, want 1", paid)
	}

	if len(gotParams) != 1 || gotParams[0].InstallmentID != "inst-2" {
		t.Fatalf("expected only inst-2 paid, got %+v", gotParams)
	}
	if !gotParams[0].EntryDate.Equal(date(2024, time.February, 15)) {
		t.Errorf("entry dated %v, want the due date", gotParams[0].EntryDate)
	}
}

func TestCheckAutoPaidInstallments_DueTodayIsPaid(t *testing.T) {
	ctx := context.Background()

	store := &MockStore{
		PayFunc: func(ctx context.Context, params PayParams) (*PayResult, error) {
			return &PayResult{Installment: &purchase.Installment{ID: params.InstallmentID, Paid: true}, Entry: &ledger.Entry{ID: params.EntryID}, Created: true}, nil
		},
	}

	service, p := autoPayFixture(store)

	installments := []*purchase.Installment{
		{ID: "inst-1", PurchaseID: "pur-1", CardID: "card-1", Number: 1, Amount: 100.0,
			DueDate: date(2024, time.March, 10), AccountID: "acc-1"},
	}

	paid, err := service.CheckAutoPaidInstallments(ctx, p, installments)
	if err != nil {
		t.Fatalf("CheckAutoPaidInstallments() unexpected error: %v", err)
	}
	if paid != 1 {
		t.Errorf("installment due today should be paid, got %d", paid)
	}
}

func TestCheckAutoPaidInstallments_StopsAtFirstFailure(t *testing.T) {
	ctx := context.Background()

	calls := 0
	store := &MockStore{
		PayFunc: func(ctx context.Context, params PayParams) (*PayResult, error) {
			calls++
			if calls == 2 {
				return nil, errors.New("db error")
			}
			return &PayResult{Installment: &purchase.Installment{ID: params.InstallmentID, Paid: true}, Entry: &ledger.Entry{ID: params.EntryID}, Created: true}, nil
		},
	}

	service, p := autoPayFixture(store)

	installments := []*purchase.Installment{
		{ID: "inst-1", PurchaseID: "pur-1", CardID: "card-1", Number: 1, Amount: 100.0,
			DueDate: date(2024, time.January, 15), AccountID: "acc-1"},
		{ID: "inst-2", PurchaseID: "pur-1", CardID: "card-1", Number: 2, Amount: 100.0,
			DueDate: date(2024, time.February, 15), AccountID: "acc-1"},
		{ID: "inst-3", PurchaseID: "pur-1", CardID: "card-1", Number: 3, Amount: 100.0,
			DueDate: date(2024, time.March, 1), AccountID: "acc-1"},
	}

	paid, err := service.CheckAutoPaidInstallments(ctx, p, installments)
	if err == nil {
		t.Fatal("CheckAutoPaidInstallments() expected error, got nil")
	}
	if paid != 1 {
		t.Errorf("paid = %d before failure, want 1", paid)
	}
	if calls != 2 {
		t.Errorf("pay calls = %d, want 2 (stopped at failure)", calls)
	}
}

func TestCheckAutoPaidInstallments_CardMissing(t *testing.T) {
	ctx := context.Background()

	cards := &MockCardReader{
		GetByIDFunc: func(ctx context.Context, id string) (*card.Card, error) {
			return nil, nil
		},
	}

	service := NewAutoPayService(&MockStore{}, cards)

	p := &purchase.Purchase{ID: "pur-1", CardID: "card-1"}
	_, err := service.CheckAutoPaidInstallments(ctx, p, nil)
	if !errors.Is(err, card.ErrCardNotFound) {
		t.Errorf("CheckAutoPaidInstallments() error = %v, want ErrCardNotFound", err)
	}
}
