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

// MockStore is a mock implementation of Store interface
type MockStore struct {
	PayFunc                 func(ctx context.Context, params PayParams) (*PayResult, error)
	UnpayFunc               func(ctx context.Context, installmentID string) (*UnpayResult, error)
	ListOverdueUnlinkedFunc func(ctx context.Context, userID int64, cutoff time.Time, limit int) ([]*purchase.Installment, error)
}

func (m *MockStore) Pay(ctx context.Context, params PayParams) (*PayResult, error) {
	if m.PayFunc != nil {
		return m.PayFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockStore) Unpay(ctx context.Context, installmentID string) (*UnpayResult, error) {
	if m.UnpayFunc != nil {
		return m.UnpayFunc(ctx, installmentID)
	}
	return nil, nil
}

func (m *MockStore) ListOverdueUnlinked(ctx context.Context, userID int64, cutoff time.Time, limit int) ([]*purchase.Installment, error) {
	if m.ListOverdueUnlinkedFunc != nil {
		return m.ListOverdueUnlinkedFunc(ctx, userID, cutoff, limit)
	}
	return nil, nil
}

// MockInstallmentRepository is a mock implementation of purchase.InstallmentRepository
type MockInstallmentRepository struct {
	GetByIDFunc          func(ctx context.Context, id string) (*purchase.Installment, error)
	ListByPurchaseIDFunc func(ctx context.Context, purchaseID string) ([]*purchase.Installment, error)
	ListByUserIDFunc     func(ctx context.Context, userID int64, limit int) ([]*purchase.Installment, error)
}

func (m *MockInstallmentRepository) GetByID(ctx context.Context, id string) (*purchase.Installment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockInstallmentRepository) ListByPurchaseID(ctx context.Context, purchaseID string) ([]*purchase.Installment, error) {
	if m.ListByPurchaseIDFunc != nil {
		return m.ListByPurchaseIDFunc(ctx, purchaseID)
	}
	return nil, nil
}

func (m *MockInstallmentRepository) ListByUserID(ctx context.Context, userID int64, limit int) ([]*purchase.Installment, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID, limit)
	}
	return nil, nil
}

// MockPurchaseReader is a mock implementation of PurchaseReader interface
type MockPurchaseReader struct {
	GetByIDFunc func(ctx context.Context, id string) (*purchase.Purchase, error)
}

func (m *MockPurchaseReader) GetByID(ctx context.Context, id string) (*purchase.Purchase, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

// MockCardReader is a mock implementation of CardReader interface
type MockCardReader struct {
	GetByIDFunc func(ctx context.Context, id string) (*card.Card, error)
}

func (m *MockCardReader) GetByID(ctx context.Context, id string) (*card.Card, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func testInstallment() *purchase.Installment {
	return &purchase.Installment{
		ID:         "inst-1",
		PurchaseID: "pur-1",
		CardID:     "card-1",
		UserID:     1,
		Number:     2,
		Amount:     150.0,
		DueDate:    date(2024, time.February, 15),
		AccountID:  "acc-1",
	}
}

func readers() (*MockPurchaseReader, *MockCardReader) {
	purchases := &MockPurchaseReader{
		GetByIDFunc: func(ctx context.Context, id string) (*purchase.Purchase, error) {
			return &purchase.Purchase{
				ID:               id,
				UserID:           1,
				CardID:           "card-1",
				Description:      "Notebook",
				InstallmentCount: 3,
			}, nil
		},
	}
	cards := &MockCardReader{
		GetByIDFunc: func(ctx context.Context, id string) (*card.Card, error) {
			return &card.Card{ID: id, UserID: 1, Name: "Nubank", DueDay: 15, AccountID: "acc-1"}, nil
		},
	}
	return purchases, cards
}

func TestSetInstallmentPaid_Pay(t *testing.T) {
	ctx := context.Background()
	now := date(2024, time.March, 3)

	var gotParams PayParams
	store := &MockStore{
		PayFunc: func(ctx context.Context, params PayParams) (*PayResult, error) {
			gotParams = params
			paidAt := now
			inst := testInstallment()
			inst.Paid = true
			inst.PaidAt = &paidAt
			inst.LedgerEntryID = &params.EntryID
			return &PayResult{
				Installment: inst,
				Entry:       &ledger.Entry{ID: params.EntryID},
				Created:     true,
			}, nil
		},
	}
	installments := &MockInstallmentRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*purchase.Installment, error) {
			return testInstallment(), nil
		},
	}
	purchases, cards := readers()

	service := NewService(store, installments, purchases, cards)
	service.now = func() time.Time { return now }

	inst, err := service.SetInstallmentPaid(ctx, "pur-1", "inst-1", "acc-1", true)
	if err != nil {
		t.Fatalf("SetInstallmentPaid() unexpected error: %v", err)
	}
	if !inst.Paid {
		t.Error("installment should be paid")
	}

	if gotParams.EntryID != EntryIDFor("inst-1") {
		t.Errorf("entry id = %q, want deterministic id %q", gotParams.EntryID, EntryIDFor("inst-1"))
	}
	if !gotParams.EntryDate.Equal(now) {
		t.Errorf("manual payment should be dated today, got %v", gotParams.EntryDate)
	}
	want := "Nubank - Notebook (parcela 2/3)"
	if gotParams.Description != want {
		t.Errorf("description = %q, want %q", gotParams.Description, want)
	}
}

func TestSetInstallmentPaid_PayIsIdempotent(t *testing.T) {
	ctx := context.Background()

	calls := 0
	store := &MockStore{
		PayFunc: func(ctx context.Context, params PayParams) (*PayResult, error) {
			calls++
			entryID := params.EntryID
			inst := testInstallment()
			inst.Paid = true
			inst.LedgerEntryID = &entryID
			result := &PayResult{Installment: inst, Entry: &ledger.Entry{ID: entryID}}
			if calls == 1 {
				result.Created = true
			} else {
				result.AlreadyPaid = true
			}
			return result, nil
		},
	}
	installments := &MockInstallmentRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*purchase.Installment, error) {
			return testInstallment(), nil
		},
	}
	purchases, cards := readers()

	service := NewService(store, installments, purchases, cards)

	first, err := service.SetInstallmentPaid(ctx, "pur-1", "inst-1", "acc-1", true)
	if err != nil {
		t.Fatalf("first pay failed: %v", err)
	}
	second, err := service.SetInstallmentPaid(ctx, "pur-1", "inst-1", "acc-1", true)
	if err != nil {
		t.Fatalf("second pay failed: %v", err)
	}

	if *first.LedgerEntryID != *second.LedgerEntryID {
		t.Errorf("repeated pay produced a different ledger entry: %q vs %q",
			*first.LedgerEntryID, *second.LedgerEntryID)
	}
}

func TestSetInstallmentPaid_Unpay(t *testing.T) {
	ctx := context.Background()

	entryID := "entry-1"
	unpaid := false
	store := &MockStore{
		UnpayFunc: func(ctx context.Context, installmentID string) (*UnpayResult, error) {
			unpaid = true
			return &UnpayResult{
				Installment:    testInstallment(),
				DeletedEntryID: &entryID,
			}, nil
		},
	}
	installments := &MockInstallmentRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*purchase.Installment, error) {
			inst := testInstallment()
			inst.Paid = true
			inst.LedgerEntryID = &entryID
			return inst, nil
		},
	}
	purchases, cards := readers()

	service := NewService(store, installments, purchases, cards)

	inst, err := service.SetInstallmentPaid(ctx, "pur-1", "inst-1", "", false)
	if err != nil {
		t.Fatalf("SetInstallmentPaid() unexpected error: %v", err)
	}
	if !unpaid {
		t.Error("unpay never reached the store")
	}
	if inst.Paid {
		t.Error("installment should be reopened")
	}
}

func TestSetInstallmentPaid_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		installment *purchase.Installment
		accountID   string
		wantErr     error
	}{
		{
			name:        "Installment Not Found",
			installment: nil,
			accountID:   "acc-1",
			wantErr:     ErrInstallmentNotFound,
		},
		{
			name: "Wrong Purchase",
			installment: func() *purchase.Installment {
				inst := testInstallment()
				inst.PurchaseID = "pur-other"
				return inst
			}(),
			accountID: "acc-1",
			wantErr:   ErrInstallmentNotFound,
		},
		{
			name:        "Account Required",
			installment: testInstallment(),
			accountID:   "",
			wantErr:     ErrAccountRequired,
		},
		{
			name: "Invalid Amount",
			installment: func() *purchase.Installment {
				inst := testInstallment()
				inst.Amount = 0
				return inst
			}(),
			accountID: "acc-1",
			wantErr:   ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			installments := &MockInstallmentRepository{
				GetByIDFunc: func(ctx context.Context, id string) (*purchase.Installment, error) {
					return tt.installment, nil
				},
			}
			purchases, cards := readers()

			service := NewService(&MockStore{}, installments, purchases, cards)

			_, err := service.SetInstallmentPaid(ctx, "pur-1", "inst-1", tt.accountID, true)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SetInstallmentPaid() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSetInstallmentPaid_ConflictPropagates(t *testing.T) {
	ctx := context.Background()

	store := &MockStore{
		PayFunc: func(ctx context.Context, params PayParams) (*PayResult, error) {
			return nil, ErrConflict
		},
	}
	installments := &MockInstallmentRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*purchase.Installment, error) {
			return testInstallment(), nil
		},
	}
	purchases, cards := readers()

	service := NewService(store, installments, purchases, cards)

	_, err := service.SetInstallmentPaid(ctx, "pur-1", "inst-1", "acc-1", true)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("SetInstallmentPaid() error = %v, want ErrConflict", err)
	}
}

func TestEntryIDFor_Deterministic(t *testing.T) {
	a := EntryIDFor("inst-1")
	b := EntryIDFor("inst-1")
	c := EntryIDFor("inst-2")

	if a != b {
		t.Errorf("EntryIDFor() is not deterministic: %q vs %q", a, b)
	}
	if a == c {
		t.Error("EntryIDFor() collided across installments")
	}
}

func TestBuildEntryDescription(t *testing.T) {
	got := BuildEntryDescription("Nubank", "Geladeira", 3, 10)
	want := "Nubank - Geladeira (parcela 3/10)"
	if got != want {
		t.Errorf("BuildEntryDescription() = %q, want %q", got, want)
	}
}
