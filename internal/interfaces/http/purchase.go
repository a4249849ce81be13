package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"parcela/internal/domain/card"
	"parcela/internal/domain/payment"
	"parcela/internal/domain/purchase"
	"parcela/internal/shared/middleware"
)

type PurchaseHandler struct {
	purchases *purchase.Service
	autoPay   *payment.AutoPayService
}

func NewPurchaseHandler(purchases *purchase.Service, autoPay *payment.AutoPayService) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases, autoPay: autoPay}
}

// Request/Response DTOs

type CreatePurchaseRequest struct {
	CardID           string    `json:"cardId"`
	Description      string    `json:"description"`
	CategoryID       *string   `json:"categoryId,omitempty"`
	PurchaseDate     string    `json:"purchaseDate"`
	InstallmentCount int       `json:"installmentCount"`
	Amounts          []float64 `json:"amounts,omitempty"`
	SameValue        bool      `json:"sameValue"`
	FirstDueDate     string    `json:"firstDueDate"`
	Status           string    `json:"status,omitempty"` // OPEN or CLOSED, defaults to OPEN
}

type UpdatePurchaseRequest struct {
	CardID           *string                      `json:"cardId,omitempty"`
	Description      *string                      `json:"description,omitempty"`
	CategoryID       *string                      `json:"categoryId,omitempty"`
	PurchaseDate     *string                      `json:"purchaseDate,omitempty"`
	InstallmentCount *int                         `json:"installmentCount,omitempty"`
	Amounts          []float64                    `json:"amounts,omitempty"`
	SameValue        *bool                        `json:"sameValue,omitempty"`
	FirstDueDate     *string                      `json:"firstDueDate,omitempty"`
	Status           *string                      `json:"status,omitempty"`
	Installments     []purchase.MergedInstallment `json:"installments,omitempty"`
}

type CreatePurchaseResponse struct {
	Purchase     *purchase.Purchase      `json:"purchase"`
	Installments []*purchase.Installment `json:"installments"`
}

// HandlePurchases routes requests to the appropriate handler based on method
func (h *PurchaseHandler) HandlePurchases(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleListPurchases(w, r)
	case http.MethodPost:
		h.handleCreatePurchase(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandlePurchaseByID routes requests for a specific purchase
func (h *PurchaseHandler) HandlePurchaseByID(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGetPurchase(w, r)
	case http.MethodPut:
		h.handleUpdatePurchase(w, r)
	case http.MethodDelete:
		h.handleDeletePurchase(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *PurchaseHandler) handleListPurchases(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	limit := 50
	offset := 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 {
			limit = parsedLimit
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if parsedOffset, err := strconv.Atoi(offsetStr); err == nil && parsedOffset >= 0 {
			offset = parsedOffset
		}
	}

	purchases, err := h.purchases.ListPurchasesByUserID(r.Context(), userID, limit, offset)
	if err != nil {
		log.Printf("Error listing purchases for user %d: %v", userID, err)
		http.Error(w, "Failed to list purchases", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(purchases)
}

func (h *PurchaseHandler) handleCreatePurchase(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreatePurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding create purchase request: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	purchaseDate, err := time.Parse("2006-01-02", req.PurchaseDate)
	if err != nil {
		http.Error(w, "Invalid purchaseDate format (use YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	firstDueDate, err := time.Parse("2006-01-02", req.FirstDueDate)
	if err != nil {
		http.Error(w, "Invalid firstDueDate format (use YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	p, installments, err := h.purchases.CreatePurchase(r.Context(), purchase.CreateParams{
		UserID:           userID,
		CardID:           req.CardID,
		Description:      req.Description,
		CategoryID:       req.CategoryID,
		PurchaseDate:     purchaseDate,
		InstallmentCount: req.InstallmentCount,
		Amounts:          req.Amounts,
		SameValue:        req.SameValue,
		FirstDueDate:     firstDueDate,
		Status:           req.Status,
	})
	if err != nil {
		if errors.Is(err, card.ErrCardNotFound) {
			http.Error(w, "Card not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, purchase.ErrForbidden) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		log.Printf("Error creating purchase for user %d: %v", userID, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(CreatePurchaseResponse{Purchase: p, Installments: installments})
}

func (h *PurchaseHandler) handleGetPurchase(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	purchaseID := r.PathValue("id")
	if purchaseID == "" {
		http.Error(w, "Purchase ID is required", http.StatusBadRequest)
		return
	}

	p, err := h.purchases.GetPurchase(r.Context(), purchaseID, userID)
	if err != nil {
		writePurchaseError(w, purchaseID, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

func (h *PurchaseHandler) handleUpdatePurchase(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	purchaseID := r.PathValue("id")
	if purchaseID == "" {
		http.Error(w, "Purchase ID is required", http.StatusBadRequest)
		return
	}

	var req UpdatePurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding update purchase request: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	params := purchase.UpdateParams{
		CardID:           req.CardID,
		Description:      req.Description,
		CategoryID:       req.CategoryID,
		InstallmentCount: req.InstallmentCount,
		Amounts:          req.Amounts,
		SameValue:        req.SameValue,
		Status:           req.Status,
	}

	if req.PurchaseDate != nil {
		purchaseDate, err := time.Parse("2006-01-02", *req.PurchaseDate)
		if err != nil {
			http.Error(w, "Invalid purchaseDate format (use YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		params.PurchaseDate = &purchaseDate
	}
	if req.FirstDueDate != nil {
		firstDueDate, err := time.Parse("2006-01-02", *req.FirstDueDate)
		if err != nil {
			http.Error(w, "Invalid firstDueDate format (use YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		params.FirstDueDate = &firstDueDate
	}

	p, err := h.purchases.UpdatePurchase(r.Context(), purchaseID, userID, params, req.Installments)
	if err != nil {
		if errors.Is(err, card.ErrCardNotFound) {
			http.Error(w, "Card not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, purchase.ErrPurchaseNotFound) || errors.Is(err, purchase.ErrForbidden) {
			writePurchaseError(w, purchaseID, err)
			return
		}
		log.Printf("Error updating purchase %s: %v", purchaseID, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

func (h *PurchaseHandler) handleDeletePurchase(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	purchaseID := r.PathValue("id")
	if purchaseID == "" {
		http.Error(w, "Purchase ID is required", http.StatusBadRequest)
		return
	}

	if err := h.purchases.DeletePurchase(r.Context(), purchaseID, userID); err != nil {
		writePurchaseError(w, purchaseID, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleInstallments returns the installments of a purchase. Before
// responding it settles any overdue installments still unpaid, so the
// list the client renders never shows an overdue installment as open.
func (h *PurchaseHandler) HandleInstallments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	purchaseID := r.PathValue("id")
	if purchaseID == "" {
		http.Error(w, "Purchase ID is required", http.StatusBadRequest)
		return
	}

	p, err := h.purchases.GetPurchase(r.Context(), purchaseID, userID)
	if err != nil {
		writePurchaseError(w, purchaseID, err)
		return
	}

	installments, err := h.purchases.ListInstallments(r.Context(), purchaseID, userID)
	if err != nil {
		log.Printf("Error listing installments for purchase %s: %v", purchaseID, err)
		http.Error(w, "Failed to list installments", http.StatusInternalServerError)
		return
	}

	paid, err := h.autoPay.CheckAutoPaidInstallments(r.Context(), p, installments)
	if err != nil {
		log.Printf("Error auto-paying installments for purchase %s: %v", purchaseID, err)
		http.Error(w, "Failed to settle overdue installments", http.StatusInternalServerError)
		return
	}

	// Re-read so the response reflects the settled state.
	if paid > 0 {
		installments, err = h.purchases.ListInstallments(r.Context(), purchaseID, userID)
		if err != nil {
			log.Printf("Error re-listing installments for purchase %s: %v", purchaseID, err)
			http.Error(w, "Failed to list installments", http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(installments)
}

func writePurchaseError(w http.ResponseWriter, purchaseID string, err error) {
	switch {
	case errors.Is(err, purchase.ErrPurchaseNotFound):
		http.Error(w, "Purchase not found", http.StatusNotFound)
	case errors.Is(err, purchase.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	default:
		log.Printf("Error handling purchase %s: %v", purchaseID, err)
		http.Error(w, "Failed to process purchase", http.StatusInternalServerError)
	}
}
