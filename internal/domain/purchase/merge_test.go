package purchase

import (
	"fmt"
	"testing"
	"time"
)

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func testPurchase(count int, amounts []float64) *Purchase {
	return &Purchase{
		ID:               "pur-1",
		UserID:           1,
		CardID:           "card-1",
		Description:      "Notebook",
		InstallmentCount: count,
		Amounts:          amounts,
		FirstDueDate:     date(2024, time.January, 15),
	}
}

func testInstallment(number int, amount float64) *Installment {
	return &Installment{
		ID:         fmt.Sprintf("inst-%d", number),
		PurchaseID: "pur-1",
		CardID:     "card-1",
		UserID:     1,
		Number:     number,
		Amount:     amount,
		DueDate:    date(2024, time.Month(number), 15),
		AccountID:  "acc-old",
	}
}

func TestBuildMergePlan_ShrinkPreservesPaidHistory(t *testing.T) {
	p := testPurchase(2, []float64{50.0, 50.0})

	paidAt := date(2024, time.January, 20)
	entryID := "entry-1"
	first := testInstallment(1, 100.0)
	first.Paid = true
	first.PaidAt = &paidAt
	first.LedgerEntryID = &entryID

	existing := []*Installment{first, testInstallment(2, 100.0), testInstallment(3, 100.0)}

	plan := BuildMergePlan(p, existing, nil, "acc-new", sequentialIDs("new"))

	if len(plan.Updates) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(plan.Updates))
	}
	if len(plan.Creates) != 0 {
		t.Fatalf("expected 0 creates, got %d", len(plan.Creates))
	}
	if len(plan.DeleteIDs) != 1 || plan.DeleteIDs[0] != "inst-3" {
		t.Fatalf("expected installment 3 deleted, got %v", plan.DeleteIDs)
	}

	updated := plan.Updates[0]
	if !updated.Paid {
		t.Error("paid state should survive the merge")
	}
	if updated.PaidAt == nil || !updated.PaidAt.Equal(paidAt) {
		t.Errorf("paidAt should survive the merge, got %v", updated.PaidAt)
	}
	if updated.LedgerEntryID == nil || *updated.LedgerEntryID != entryID {
		t.Errorf("ledger link should survive the merge, got %v", updated.LedgerEntryID)
	}
	if updated.AccountID != "acc-old" {
		t.Errorf("paid installment account should not be re-snapshotted, got %q", updated.AccountID)
	}
	if updated.Amount != 50.0 {
		t.Errorf("amount should follow the edit, got %v", updated.Amount)
	}
}

func TestBuildMergePlan_GrowCreatesUnpaidTail(t *testing.T) {
	p := testPurchase(4, []float64{25.0, 25.0, 25.0, 25.0})
	existing := []*Installment{testInstallment(1, 50.0), testInstallment(2, 50.0)}

	plan := BuildMergePlan(p, existing, nil, "acc-new", sequentialIDs("new"))

	if len(plan.Updates) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(plan.Updates))
	}
	if len(plan.Creates) != 2 {
		t.Fatalf("expected 2 creates, got %d", len(plan.Creates))
	}
	if len(plan.DeleteIDs) != 0 {
		t.Fatalf("expected no deletes, got %v", plan.DeleteIDs)
	}

	for i, created := range plan.Creates {
		wantNumber := i + 3
		if created.Number != wantNumber {
			t.Errorf("create %d has number %d, want %d", i, created.Number, wantNumber)
		}
		if created.Paid || created.PaidAt != nil || created.LedgerEntryID != nil {
			t.Errorf("created installment %d should start unpaid", created.Number)
		}
		if created.AccountID != "acc-new" {
			t.Errorf("created installment %d account = %q, want acc-new", created.Number, created.AccountID)
		}
		if created.ID == "" {
			t.Errorf("created installment %d has no ID", created.Number)
		}
	}

	wantDue := date(2024, time.March, 15)
	if !plan.Creates[0].DueDate.Equal(wantDue) {
		t.Errorf("created installment 3 due %v, want %v", plan.Creates[0].DueDate, wantDue)
	}
}

func TestBuildMergePlan_UnpaidUnlinkedResnapshotsAccount(t *testing.T) {
	p := testPurchase(1, []float64{100.0})
	existing := []*Installment{testInstallment(1, 100.0)}

	plan := BuildMergePlan(p, existing, nil, "acc-new", sequentialIDs("new"))

	if len(plan.Updates) != 1 {
		t.Fatalf("expected 1 update, got %d", len(plan.Updates))
	}
	if plan.Updates[0].AccountID != "acc-new" {
		t.Errorf("unpaid unlinked installment should follow the card's account, got %q", plan.Updates[0].AccountID)
	}
}

func TestBuildMergePlan_UnpaidLinkedKeepsAccount(t *testing.T) {
	p := testPurchase(1, []float64{100.0})

	entryID := "entry-9"
	inst := testInstallment(1, 100.0)
	inst.LedgerEntryID = &entryID

	plan := BuildMergePlan(p, []*Installment{inst}, nil, "acc-new", sequentialIDs("new"))

	if plan.Updates[0].AccountID != "acc-old" {
		t.Errorf("linked installment account should not change, got %q", plan.Updates[0].AccountID)
	}
}

func TestBuildMergePlan_MergedPayloadSeedsCreatedState(t *testing.T) {
	p := testPurchase(2, []float64{30.0, 30.0})

	paidAt := date(2024, time.February, 1)
	entryID := "entry-2"
	merged := []MergedInstallment{
		{Number: 2, Paid: true, PaidAt: &paidAt, LedgerEntryID: &entryID},
	}

	plan := BuildMergePlan(p, []*Installment{testInstallment(1, 30.0)}, merged, "acc-new", sequentialIDs("new"))

	if len(plan.Creates) != 1 {
		t.Fatalf("expected 1 create, got %d", len(plan.Creates))
	}

	created := plan.Creates[0]
	if !created.Paid {
		t.Error("merged payload paid state should apply to the created installment")
	}
	if created.PaidAt == nil || !created.PaidAt.Equal(paidAt) {
		t.Errorf("merged paidAt not applied, got %v", created.PaidAt)
	}
	if created.LedgerEntryID == nil || *created.LedgerEntryID != entryID {
		t.Errorf("merged ledger link not applied, got %v", created.LedgerEntryID)
	}
}

func TestBuildMergePlan_DuplicateNumbersDropped(t *testing.T) {
	p := testPurchase(2, []float64{40.0, 40.0})

	dup := testInstallment(1, 40.0)
	dup.ID = "inst-1-dup"

	existing := []*Installment{testInstallment(1, 40.0), dup, testInstallment(2, 40.0)}

	plan := BuildMergePlan(p, existing, nil, "acc-new", sequentialIDs("new"))

	if len(plan.DeleteIDs) != 1 || plan.DeleteIDs[0] != "inst-1-dup" {
		t.Fatalf("expected duplicate row deleted, got %v", plan.DeleteIDs)
	}
	if len(plan.Updates) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(plan.Updates))
	}
}

func TestBuildMergePlan_EmptyExistingCreatesFullSet(t *testing.T) {
	p := testPurchase(3, []float64{10.0, 20.0, 30.0})

	plan := BuildMergePlan(p, nil, nil, "acc-new", sequentialIDs("new"))

	if len(plan.Creates) != 3 {
		t.Fatalf("expected 3 creates, got %d", len(plan.Creates))
	}
	for i, created := range plan.Creates {
		if created.Number != i+1 {
			t.Errorf("create %d has number %d, want %d", i, created.Number, i+1)
		}
		if created.Amount != p.Amounts[i] {
			t.Errorf("create %d amount = %v, want %v", i, created.Amount, p.Amounts[i])
		}
	}
}
