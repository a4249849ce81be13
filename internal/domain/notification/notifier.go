package notification

import (
	"context"
	"fmt"
	"log"
)

// SweepNotifier pushes a summary to the user's devices after the
// reconciliation sweep marks overdue installments as paid. Delivery is
// best-effort: failures are logged, never propagated to the sweep.
type SweepNotifier struct {
	tokens    TokenRepository
	messenger Messenger
}

// NewSweepNotifier creates a new sweep notifier
func NewSweepNotifier(tokens TokenRepository, messenger Messenger) *SweepNotifier {
	return &SweepNotifier{tokens: tokens, messenger: messenger}
}

// NotifyReconciled informs the user that count installments were
// automatically reconciled against the ledger.
func (n *SweepNotifier) NotifyReconciled(ctx context.Context, userID int64, count int) {
	tokens, err := n.tokens.ListActiveByUserID(ctx, userID)
	if err != nil {
		log.Printf("Failed to list device tokens for user %d: %v", userID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	body := fmt.Sprintf("%d parcelas vencidas foram conciliadas automaticamente.", count)
	if count == 1 {
		body = "1 parcela vencida foi conciliada automaticamente."
	}

	err = n.messenger.SendMulticast(ctx, tokens, "Parcelas conciliadas", body, map[string]string{
		"type":  "installments_reconciled",
		"count": fmt.Sprintf("%d", count),
	})
	if err != nil {
		log.Printf("Failed to send reconciliation notification to user %d: %v", userID, err)
	}
}
