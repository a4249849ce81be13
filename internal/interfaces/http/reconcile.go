package http

import (
	"encoding/json"
	"log"
	"net/http"

	"parcela/internal/domain/payment"
	"parcela/internal/shared/middleware"
)

type ReconcileHandler struct {
	sweep *payment.SweepService
}

func NewReconcileHandler(sweep *payment.SweepService) *ReconcileHandler {
	return &ReconcileHandler{sweep: sweep}
}

type ReconcileResponse struct {
	Reconciled int `json:"reconciled"`
}

// HandleReconcile settles every overdue installment of the caller that
// still has no ledger entry. At most one sweep runs per user per day;
// repeat calls on the same day report zero.
func (h *ReconcileHandler) HandleReconcile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	count, err := h.sweep.Reconcile(r.Context(), userID)
	if err != nil {
		log.Printf("Error reconciling installments for user %d: %v", userID, err)
		http.Error(w, "Failed to reconcile installments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ReconcileResponse{Reconciled: count})
}
