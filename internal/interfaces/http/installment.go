package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"parcela/internal/domain/payment"
	"parcela/internal/domain/purchase"
	"parcela/internal/shared/middleware"
)

type InstallmentHandler struct {
	payments  *payment.Service
	purchases *purchase.Service
}

func NewInstallmentHandler(payments *payment.Service, purchases *purchase.Service) *InstallmentHandler {
	return &InstallmentHandler{payments: payments, purchases: purchases}
}

type SetPaidRequest struct {
	PurchaseID string `json:"purchaseId"`
	AccountID  string `json:"accountId,omitempty"`
	Paid       bool   `json:"paid"`
}

// HandleSetPaid pays or reverses a single installment. Paying writes
// exactly one ledger entry for the installment; repeating the call is a
// no-op. Reversing deletes the linked entry and reopens the installment.
func (h *InstallmentHandler) HandleSetPaid(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	installmentID := r.PathValue("id")
	if installmentID == "" {
		http.Error(w, "Installment ID is required", http.StatusBadRequest)
		return
	}

	var req SetPaidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding set paid request: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.PurchaseID == "" {
		http.Error(w, "purchaseId is required", http.StatusBadRequest)
		return
	}

	// Ownership runs through the purchase.
	if _, err := h.purchases.GetPurchase(r.Context(), req.PurchaseID, userID); err != nil {
		writePurchaseError(w, req.PurchaseID, err)
		return
	}

	inst, err := h.payments.SetInstallmentPaid(r.Context(), req.PurchaseID, installmentID, req.AccountID, req.Paid)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrInstallmentNotFound):
			http.Error(w, "Installment not found", http.StatusNotFound)
		case errors.Is(err, payment.ErrAccountRequired):
			http.Error(w, "accountId is required to pay an installment", http.StatusBadRequest)
		case errors.Is(err, payment.ErrInvalidAmount):
			http.Error(w, "Installment amount must be positive", http.StatusBadRequest)
		case errors.Is(err, payment.ErrConflict):
			http.Error(w, "Could not complete, try again", http.StatusConflict)
		default:
			log.Printf("Error setting paid state for installment %s: %v", installmentID, err)
			http.Error(w, "Failed to update installment", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(inst)
}
