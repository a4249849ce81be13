package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"parcela/internal/domain/account"
	"parcela/internal/domain/card"
	"parcela/internal/shared/middleware"
)

type CardHandler struct {
	cards *card.Service
}

func NewCardHandler(cards *card.Service) *CardHandler {
	return &CardHandler{cards: cards}
}

// Request/Response DTOs

type CreateCardRequest struct {
	Name        string   `json:"name"`
	Brand       *string  `json:"brand,omitempty"`
	CreditLimit *float64 `json:"creditLimit,omitempty"`
	ClosingDay  *int     `json:"closingDay,omitempty"`
	DueDay      int      `json:"dueDay"`
	AccountID   string   `json:"accountId"`
}

type UpdateCardRequest struct {
	Name        *string  `json:"name,omitempty"`
	Brand       *string  `json:"brand,omitempty"`
	CreditLimit *float64 `json:"creditLimit,omitempty"`
	ClosingDay  *int     `json:"closingDay,omitempty"`
	DueDay      *int     `json:"dueDay,omitempty"`
	AccountID   *string  `json:"accountId,omitempty"`
}

// HandleCards routes requests to the appropriate handler based on method
func (h *CardHandler) HandleCards(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleListCards(w, r)
	case http.MethodPost:
		h.handleCreateCard(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleCardByID routes requests for a specific card
func (h *CardHandler) HandleCardByID(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGetCard(w, r)
	case http.MethodPut:
		h.handleUpdateCard(w, r)
	case http.MethodDelete:
		h.handleDeleteCard(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CardHandler) handleListCards(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	cards, err := h.cards.ListCardsByUserID(r.Context(), userID)
	if err != nil {
		log.Printf("Error listing cards for user %d: %v", userID, err)
		http.Error(w, "Failed to list cards", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cards)
}

func (h *CardHandler) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding create card request: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	params := card.CreateParams{
		UserID:      userID,
		Name:        req.Name,
		Brand:       req.Brand,
		CreditLimit: req.CreditLimit,
		ClosingDay:  req.ClosingDay,
		DueDay:      req.DueDay,
		AccountID:   req.AccountID,
	}

	c, err := h.cards.CreateCard(r.Context(), params)
	if err != nil {
		if errors.Is(err, card.ErrForbidden) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		log.Printf("Error creating card for user %d: %v", userID, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(c)
}

func (h *CardHandler) handleGetCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	cardID := r.PathValue("id")
	if cardID == "" {
		http.Error(w, "Card ID is required", http.StatusBadRequest)
		return
	}

	c, err := h.cards.GetCard(r.Context(), cardID, userID)
	if err != nil {
		writeCardError(w, cardID, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(c)
}

func (h *CardHandler) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	cardID := r.PathValue("id")
	if cardID == "" {
		http.Error(w, "Card ID is required", http.StatusBadRequest)
		return
	}

	var req UpdateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding update card request: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	params := card.UpdateParams{
		Name:        req.Name,
		Brand:       req.Brand,
		CreditLimit: req.CreditLimit,
		ClosingDay:  req.ClosingDay,
		DueDay:      req.DueDay,
		AccountID:   req.AccountID,
	}

	c, err := h.cards.UpdateCard(r.Context(), cardID, userID, params)
	if err != nil {
		if errors.Is(err, card.ErrCardNotFound) || errors.Is(err, card.ErrForbidden) {
			writeCardError(w, cardID, err)
			return
		}
		log.Printf("Error updating card %s: %v", cardID, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(c)
}

func (h *CardHandler) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	cardID := r.PathValue("id")
	if cardID == "" {
		http.Error(w, "Card ID is required", http.StatusBadRequest)
		return
	}

	if err := h.cards.DeleteCard(r.Context(), cardID, userID); err != nil {
		if errors.Is(err, card.ErrCardInUse) {
			http.Error(w, "Card has purchases and cannot be deleted", http.StatusConflict)
			return
		}
		writeCardError(w, cardID, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeCardError(w http.ResponseWriter, cardID string, err error) {
	switch {
	case errors.Is(err, card.ErrCardNotFound):
		http.Error(w, "Card not found", http.StatusNotFound)
	case errors.Is(err, card.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, account.ErrAccountNotFound):
		http.Error(w, "Account not found", http.StatusBadRequest)
	default:
		log.Printf("Error handling card %s: %v", cardID, err)
		http.Error(w, "Failed to process card", http.StatusInternalServerError)
	}
}
