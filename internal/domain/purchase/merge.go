package purchase

import "time"

// MergePlan is the computed outcome of reconciling an existing
// installment set against an edited purchase. The store applies the
// whole plan in one transaction.
type MergePlan struct {
	Updates   []*Installment
	Creates   []*Installment
	DeleteIDs []string
}

// BuildMergePlan reconciles existing installments with the edited
// purchase by installment number:
//
//   - numbers that persist are updated in place (card, amount, due
//     date) with paid, paidAt and ledger link left untouched; the
//     payment account is only re-snapshotted from the card when the
//     installment is unpaid and unlinked, so historical attribution
//     survives edits
//   - numbers with no existing installment are created, unpaid unless
//     a merged payload supplies payment state for that number
//   - existing numbers beyond the new count are deleted
//
// After the plan is applied the set of numbers is exactly 1..count.
// currentAccountID is the card's payment account at edit time; newID
// supplies identifiers for created installments.
func BuildMergePlan(p *Purchase, existing []*Installment, merged []MergedInstallment, currentAccountID string, newID func() string) MergePlan {
	schedule := BuildSchedule(p.FirstDueDate, p.InstallmentCount)
	amounts := NormalizeAmounts(p.Amounts, p.InstallmentCount, p.SameValue)

	byNumber := make(map[int]*Installment, len(existing))
	var plan MergePlan
	for _, inst := range existing {
		if _, ok := byNumber[inst.Number]; ok {
			// Duplicate numbers only occur on corrupted data; keep the
			// first row and drop the rest so the invariant holds.
			plan.DeleteIDs = append(plan.DeleteIDs, inst.ID)
			continue
		}
		byNumber[inst.Number] = inst
	}

	mergedByNumber := make(map[int]MergedInstallment, len(merged))
	for _, m := range merged {
		mergedByNumber[m.Number] = m
	}

	for number := 1; number <= p.InstallmentCount; number++ {
		amount := amounts[number-1]
		dueDate := schedule[number-1]

		if ex, ok := byNumber[number]; ok {
			updated := *ex
			updated.CardID = p.CardID
			updated.Amount = amount
			updated.DueDate = dueDate
			if !ex.Paid && ex.LedgerEntryID == nil {
				updated.AccountID = currentAccountID
			}
			plan.Updates = append(plan.Updates, &updated)
			continue
		}

		created := &Installment{
			ID:         newID(),
			PurchaseID: p.ID,
			CardID:     p.CardID,
			UserID:     p.UserID,
			Number:     number,
			Amount:     amount,
			DueDate:    dueDate,
			AccountID:  currentAccountID,
		}
		if m, ok := mergedByNumber[number]; ok {
			created.Paid = m.Paid
			created.PaidAt = copyTime(m.PaidAt)
			created.LedgerEntryID = copyString(m.LedgerEntryID)
		}
		plan.Creates = append(plan.Creates, created)
	}

	for number, inst := range byNumber {
		if number > p.InstallmentCount {
			plan.DeleteIDs = append(plan.DeleteIDs, inst.ID)
		}
	}

	return plan
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
